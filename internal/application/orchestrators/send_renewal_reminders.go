package orchestrators

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	memberStore "gymdesk/internal/adapters/storage/member"
	"gymdesk/internal/domain/member"
	"gymdesk/internal/domain/membership"
	"gymdesk/internal/domain/outbox"
	"gymdesk/internal/domain/plan"

	"github.com/google/uuid"
	"github.com/yuin/goldmark"
	goldmarkHTML "github.com/yuin/goldmark/renderer/html"
)

// reminderRenderer is a goldmark instance configured for safe HTML output.
// Raw HTML in markdown input is escaped (WithUnsafe is NOT set), preventing XSS.
var reminderRenderer = goldmark.New(
	goldmark.WithRendererOptions(
		goldmarkHTML.WithHardWraps(),
	),
)

// ReminderMemberStore lists members for the reminder sweep and records
// which expiration each member was last reminded about.
type ReminderMemberStore interface {
	List(ctx context.Context, filter memberStore.ListFilter) ([]member.Member, error)
	Save(ctx context.Context, m member.Member) error
}

// DefaultReminderTemplate is the markdown body used when no custom
// template is configured. {{name}}, {{plan}} and {{date}} are replaced
// before rendering.
const DefaultReminderTemplate = `Hi {{name}},

Your **{{plan}}** membership expires on **{{date}}**.

Renew at the front desk on your next visit to keep training without interruption.`

// SendRenewalRemindersInput carries input for the reminder sweep.
type SendRenewalRemindersInput struct {
	// Template is a markdown body with {{name}}, {{plan}} and {{date}}
	// placeholders. Empty uses DefaultReminderTemplate.
	Template string
	Subject  string
}

// SendRenewalRemindersResult summarizes a reminder sweep.
type SendRenewalRemindersResult struct {
	Scanned     int
	Queued      int
	Skipped     int // expiring members without an email address
	AlreadySent int // members already reminded about their current expiration
}

// SendRenewalRemindersDeps holds dependencies for SendRenewalReminders.
type SendRenewalRemindersDeps struct {
	MemberStore ReminderMemberStore
	PlanStore   RecordPaymentPlanStore
	OutboxStore OutboxSaver
	Now         func() time.Time
}

// ExecuteSendRenewalReminders queues a reminder email for every member
// whose membership is inside the expiring-soon window. Delivery happens
// asynchronously through the outbox so a provider outage never blocks
// the sweep.
//
// PRE: Stores are connected
// POST: One email outbox entry per expiring member with an email address
// INVARIANT: Expired and active-beyond-window members are never mailed;
// a member is mailed at most once per expiration window
func ExecuteSendRenewalReminders(ctx context.Context, input SendRenewalRemindersInput, deps SendRenewalRemindersDeps) (SendRenewalRemindersResult, error) {
	if deps.OutboxStore == nil {
		return SendRenewalRemindersResult{}, errors.New("outbox store is required")
	}
	now := time.Now
	if deps.Now != nil {
		now = deps.Now
	}
	template := input.Template
	if template == "" {
		template = DefaultReminderTemplate
	}
	subject := input.Subject
	if subject == "" {
		subject = "Your membership is expiring soon"
	}

	asOf := now()
	result := SendRenewalRemindersResult{}
	planCache := map[string]*plan.Plan{}

	const pageSize = 500
	for offset := 0; ; offset += pageSize {
		members, err := deps.MemberStore.List(ctx, memberStore.ListFilter{Limit: pageSize, Offset: offset})
		if err != nil {
			return result, fmt.Errorf("failed to list members: %w", err)
		}
		if len(members) == 0 {
			break
		}

		for _, m := range members {
			if m.Archived {
				continue
			}
			result.Scanned++

			var p *plan.Plan
			if m.PlanID != "" && deps.PlanStore != nil {
				cached, seen := planCache[m.PlanID]
				if !seen {
					if loaded, err := deps.PlanStore.GetByID(ctx, m.PlanID); err == nil {
						cached = &loaded
					}
					planCache[m.PlanID] = cached
				}
				p = cached
			}

			status, ok := membership.StatusOf(m, p, asOf)
			if !ok || status != membership.StatusExpiringSoon {
				continue
			}
			if m.Email == "" {
				result.Skipped++
				slog.Debug("reminder_skipped_no_email", "member_id", m.ID)
				continue
			}

			expiration, _ := membership.ResolveExpiration(m, p)
			// Repeated sweeps must not re-mail a member about the same
			// expiration. A renewal moves the expiration forward, which
			// re-arms the reminder for the next window.
			if !m.ReminderSentFor.IsZero() && m.ReminderSentFor.Equal(expiration) {
				result.AlreadySent++
				continue
			}
			html, err := renderReminder(template, m, expiration)
			if err != nil {
				slog.Error("reminder_render_failed", "member_id", m.ID, "error", err)
				continue
			}

			payload, _ := json.Marshal(emailPayload{
				To:      []string{m.Email},
				Subject: subject,
				HTML:    html,
			})
			entry := outbox.Entry{
				ID:          uuid.New().String(),
				ActionType:  outbox.ActionTypeEmail,
				Payload:     string(payload),
				Status:      outbox.StatusPending,
				MaxAttempts: 5,
				CreatedAt:   asOf,
			}
			if err := deps.OutboxStore.Save(ctx, entry); err != nil {
				return result, fmt.Errorf("failed to queue reminder for member %s: %w", m.ID, err)
			}
			m.ReminderSentFor = expiration
			if err := deps.MemberStore.Save(ctx, m); err != nil {
				// The reminder is queued either way; a failed marker just
				// risks one duplicate on the next sweep.
				slog.Error("reminder_mark_failed", "member_id", m.ID, "error", err)
			}
			result.Queued++
		}

		if len(members) < pageSize {
			break
		}
	}

	slog.Info("reminder_sweep_complete", "scanned", result.Scanned, "queued", result.Queued, "skipped", result.Skipped)
	return result, nil
}

// renderReminder substitutes placeholders and converts markdown to HTML.
func renderReminder(template string, m member.Member, expiration time.Time) (string, error) {
	planName := m.PlanNameHint
	if planName == "" {
		planName = "gym"
	}
	body := strings.NewReplacer(
		"{{name}}", m.Name,
		"{{plan}}", planName,
		"{{date}}", expiration.Format("2006-01-02"),
	).Replace(template)

	var buf bytes.Buffer
	if err := reminderRenderer.Convert([]byte(body), &buf); err != nil {
		return "", err
	}
	return buf.String(), nil
}
