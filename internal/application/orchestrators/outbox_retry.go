package orchestrators

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	emailAdapter "gymdesk/internal/adapters/email"
	"gymdesk/internal/domain/member"
	"gymdesk/internal/domain/outbox"
)

// OutboxRetryDeps provides the dependencies for retrying outbox entries.
type OutboxRetryDeps struct {
	OutboxStore OutboxStore
	MemberStore RecordPaymentMemberStore
	EmailSender emailAdapter.Sender
	FromAddress string
	Now         func() time.Time
}

// OutboxStore is the full outbox interface the retry loop needs.
type OutboxStore interface {
	Save(ctx context.Context, e outbox.Entry) error
	ListPending(ctx context.Context, limit int) ([]outbox.Entry, error)
}

// emailPayload is the outbox payload for deferred email delivery.
type emailPayload struct {
	To      []string `json:"to"`
	Subject string   `json:"subject"`
	HTML    string   `json:"html"`
}

// ExecuteOutboxRetry processes pending and retryable failed outbox entries.
// It implements exponential backoff and respects max attempts.
// PRE: Deps are valid and store is connected
// POST: All eligible entries are processed, results logged
func ExecuteOutboxRetry(ctx context.Context, deps OutboxRetryDeps) error {
	entries, err := deps.OutboxStore.ListPending(ctx, 100)
	if err != nil {
		return fmt.Errorf("failed to list retryable outbox entries: %w", err)
	}
	if len(entries) == 0 {
		return nil
	}
	now := time.Now
	if deps.Now != nil {
		now = deps.Now
	}

	slog.Info("outbox_retry_start", "count", len(entries))

	var processed, succeeded, failed int
	baseDelay := 1 * time.Minute
	maxDelay := 1 * time.Hour

	for _, entry := range entries {
		processed++

		// Honor the backoff window from the previous attempt.
		if !entry.LastAttemptedAt.IsZero() {
			nextRetry := entry.LastAttemptedAt.Add(entry.NextRetryDelay(baseDelay, maxDelay))
			if now().Before(nextRetry) {
				slog.Debug("outbox_retry_skipped_backoff", "entry_id", entry.ID, "next_retry", nextRetry)
				continue
			}
		}

		entry.MarkAttempt()

		var err error
		switch entry.ActionType {
		case outbox.ActionTypeEmail:
			err = retryEmail(ctx, entry, deps)
		case outbox.ActionTypeMemberExpiration:
			err = retryMemberExpiration(ctx, entry, deps)
		default:
			err = fmt.Errorf("unknown action type: %s", entry.ActionType)
		}

		if err != nil {
			entry.MarkFailed(err)
			failed++
			slog.Error("outbox_retry_failed", "entry_id", entry.ID, "action", entry.ActionType, "attempt", entry.Attempts, "error", err)
		} else {
			entry.MarkSuccess("")
			succeeded++
			slog.Info("outbox_retry_succeeded", "entry_id", entry.ID, "action", entry.ActionType, "attempt", entry.Attempts)
		}

		if saveErr := deps.OutboxStore.Save(ctx, entry); saveErr != nil {
			slog.Error("outbox_retry_save_failed", "entry_id", entry.ID, "error", saveErr)
		}
	}

	slog.Info("outbox_retry_complete", "processed", processed, "succeeded", succeeded, "failed", failed)
	return nil
}

// retryEmail delivers a queued email through the configured provider.
// PRE: Entry payload contains valid email data
// POST: Email sent or error returned
func retryEmail(ctx context.Context, entry outbox.Entry, deps OutboxRetryDeps) error {
	if deps.EmailSender == nil {
		return fmt.Errorf("no email sender configured")
	}

	var payload emailPayload
	if err := json.Unmarshal([]byte(entry.Payload), &payload); err != nil {
		return fmt.Errorf("failed to unmarshal email payload: %w", err)
	}
	if len(payload.To) == 0 {
		return fmt.Errorf("email payload has no recipients")
	}

	_, err := deps.EmailSender.Send(ctx, emailAdapter.SendRequest{
		To:      payload.To,
		From:    deps.FromAddress,
		Subject: payload.Subject,
		HTML:    payload.HTML,
	})
	return err
}

// retryMemberExpiration replays the member half of a renewal whose payment
// row was already written. The write is idempotent: re-applying the same
// plan and expiration converges on the same member state.
// PRE: Entry payload contains the member ID and the expiration to apply
// POST: Member carries the queued plan reference and expiration date
func retryMemberExpiration(ctx context.Context, entry outbox.Entry, deps OutboxRetryDeps) error {
	if deps.MemberStore == nil {
		return fmt.Errorf("no member store configured")
	}

	var payload memberExpirationPayload
	if err := json.Unmarshal([]byte(entry.Payload), &payload); err != nil {
		return fmt.Errorf("failed to unmarshal member expiration payload: %w", err)
	}

	expiration, err := time.ParseInLocation("2006-01-02", payload.Expiration, time.Local)
	if err != nil {
		return fmt.Errorf("invalid expiration in payload: %w", err)
	}

	m, err := deps.MemberStore.GetByID(ctx, payload.MemberID)
	if err != nil {
		return fmt.Errorf("member %s not found for replay: %w", payload.MemberID, err)
	}

	// A later renewal may already have pushed the expiration further out;
	// never rewind it.
	if m.ExpirationDate.After(expiration) {
		slog.Info("outbox_retry_member_expiration_superseded", "member_id", m.ID, "queued", payload.Expiration, "current", m.ExpirationDate.Format("2006-01-02"))
		return nil
	}

	m.PlanID = payload.PlanID
	m.PlanNameHint = payload.PlanNameHint
	m.ExpirationDate = expiration
	m.StatusHint = member.StatusHintActive
	return deps.MemberStore.Save(ctx, m)
}

// OutboxRetryConfig holds configuration for the retry scheduler.
type OutboxRetryConfig struct {
	Interval time.Duration // How often to run retries
	Enabled  bool
}

// DefaultOutboxRetryConfig returns sensible defaults.
func DefaultOutboxRetryConfig() OutboxRetryConfig {
	return OutboxRetryConfig{
		Interval: 5 * time.Minute,
		Enabled:  true,
	}
}

// StartOutboxRetryScheduler starts a background goroutine that periodically retries outbox entries.
// PRE: Context is valid, deps are initialized
// POST: Goroutine started, returns cancel function
func StartOutboxRetryScheduler(ctx context.Context, deps OutboxRetryDeps, cfg OutboxRetryConfig) func() {
	if !cfg.Enabled {
		return func() {}
	}

	ctx, cancel := context.WithCancel(ctx)

	go func() {
		ticker := time.NewTicker(cfg.Interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if err := ExecuteOutboxRetry(ctx, deps); err != nil {
					slog.Error("outbox_retry_scheduler_error", "error", err)
				}
			}
		}
	}()

	return cancel
}
