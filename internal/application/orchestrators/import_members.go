package orchestrators

import (
	"context"
	"encoding/csv"
	"io"
	"log/slog"
	"net/mail"
	"strings"
	"time"

	planStore "gymdesk/internal/adapters/storage/plan"
	domain "gymdesk/internal/domain/member"
	domainPlan "gymdesk/internal/domain/plan"
)

// ImportMembersInput carries the parsed CSV reader and import options.
// PRE: Reader is a valid CSV stream with a header row; AdminAccountID is non-empty.
// POST: Returns aggregate counts and per-row errors; writes are skipped when DryRun=true.
// INVARIANT: Existing members are never deleted; IDs are preserved on update.
type ImportMembersInput struct {
	Reader         io.Reader
	AdminAccountID string
	DryRun         bool
	UpdateMode     bool
}

// ImportMembersResult holds aggregate counts and per-row errors from an import run.
type ImportMembersResult struct {
	Total   int
	Created int
	Updated int
	Skipped int
	Errors  []ImportMembersRowError
	DryRun  bool
	Unknown []string
}

// ImportMembersRowError describes a validation or processing error for a single CSV row.
type ImportMembersRowError struct {
	Row     int
	Message string
}

// ImportPlanStore lists plans so the PLAN column can be resolved by name.
type ImportPlanStore interface {
	List(ctx context.Context, filter planStore.ListFilter) ([]domainPlan.Plan, error)
}

// ImportMembersDeps holds external dependencies for the import orchestrator.
type ImportMembersDeps struct {
	MemberStore MemberStore
	PlanStore   ImportPlanStore
	GenerateID  func() string
}

// Accepted header spellings per logical column. Legacy exports disagree
// on naming, so each column accepts a small synonym set.
var importColumnSynonyms = map[string][]string{
	"NAME":       {"NAME", "FULL NAME", "MEMBER", "MEMBER NAME"},
	"DOCUMENT":   {"DOCUMENT", "DOC", "ID NUMBER", "NATIONAL ID"},
	"EMAIL":      {"EMAIL", "E-MAIL", "MAIL"},
	"PHONE":      {"PHONE", "TELEPHONE", "MOBILE", "CELL"},
	"PLAN":       {"PLAN", "MEMBERSHIP", "PLAN NAME"},
	"ENROLLMENT": {"ENROLLMENT", "ENROLLMENT DATE", "JOINED", "START DATE", "SIGNUP DATE"},
	"EXPIRATION": {"EXPIRATION", "EXPIRATION DATE", "EXPIRES", "VALID UNTIL", "END DATE"},
}

// importDateLayouts are tried in order for date-valued columns.
var importDateLayouts = []string{"2006-01-02", "02/01/2006", "01-02-2006", "2006/01/02"}

// ExecuteImportMembers parses a CSV stream and creates or updates member records.
// Rows are keyed on the DOCUMENT column; rows without a document are always
// treated as new members.
// PRE: Input.Reader contains a valid CSV with at least a NAME column.
// POST: Members are created/updated/skipped according to DryRun and UpdateMode flags;
//
//	aggregate counts and per-row errors are returned; audit log is emitted.
//
// INVARIANT: When DryRun=true no writes occur; existing member IDs are always preserved on update.
func ExecuteImportMembers(ctx context.Context, input ImportMembersInput, deps ImportMembersDeps) (ImportMembersResult, error) {
	cr := csv.NewReader(input.Reader)
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if err != nil {
		return ImportMembersResult{}, err
	}

	colIdx := make(map[string]int, len(header))
	recognized := make(map[int]bool, len(header))
	for i, h := range header {
		normalized := strings.ToUpper(strings.TrimSpace(h))
		for logical, synonyms := range importColumnSynonyms {
			for _, s := range synonyms {
				if normalized == s {
					if _, taken := colIdx[logical]; !taken {
						colIdx[logical] = i
					}
					recognized[i] = true
				}
			}
		}
	}

	if _, ok := colIdx["NAME"]; !ok {
		return ImportMembersResult{}, &ImportMembersValidationError{Message: "CSV missing required column: NAME"}
	}

	var unknownCols []string
	for i, h := range header {
		if !recognized[i] {
			unknownCols = append(unknownCols, h)
		}
	}

	getCol := func(row []string, col string) string {
		i, ok := colIdx[col]
		if !ok || i >= len(row) {
			return ""
		}
		return strings.TrimSpace(row[i])
	}

	plansByName, err := loadPlansByName(ctx, deps.PlanStore)
	if err != nil {
		return ImportMembersResult{}, err
	}

	result := ImportMembersResult{DryRun: input.DryRun, Unknown: unknownCols}
	rowNum := 1

	for {
		row, err := cr.Read()
		if err != nil {
			break
		}
		rowNum++
		result.Total++

		name := getCol(row, "NAME")
		if name == "" {
			result.Errors = append(result.Errors, ImportMembersRowError{Row: rowNum, Message: "name is required"})
			continue
		}

		email := ""
		if rawEmail := getCol(row, "EMAIL"); rawEmail != "" {
			addr, parseErr := mail.ParseAddress(rawEmail)
			if parseErr != nil {
				result.Errors = append(result.Errors, ImportMembersRowError{Row: rowNum, Message: "invalid email: " + rawEmail})
				continue
			}
			email = strings.ToLower(addr.Address)
		}

		document := getCol(row, "DOCUMENT")
		phone := getCol(row, "PHONE")

		planID, planName := "", ""
		if rawPlan := getCol(row, "PLAN"); rawPlan != "" {
			p, ok := plansByName[strings.ToLower(rawPlan)]
			if !ok {
				result.Errors = append(result.Errors, ImportMembersRowError{Row: rowNum, Message: "unknown plan: " + rawPlan})
				continue
			}
			planID, planName = p.ID, p.Name
		}

		enrollment, enrollErr := parseImportDate(getCol(row, "ENROLLMENT"))
		if enrollErr != nil {
			result.Errors = append(result.Errors, ImportMembersRowError{Row: rowNum, Message: "invalid enrollment date: " + getCol(row, "ENROLLMENT")})
			continue
		}
		expiration, expErr := parseImportDate(getCol(row, "EXPIRATION"))
		if expErr != nil {
			result.Errors = append(result.Errors, ImportMembersRowError{Row: rowNum, Message: "invalid expiration date: " + getCol(row, "EXPIRATION")})
			continue
		}

		var existing domain.Member
		exists := false
		if document != "" {
			if found, lookupErr := deps.MemberStore.GetByDocument(ctx, document); lookupErr == nil {
				existing, exists = found, true
			}
		}

		if exists && !input.UpdateMode {
			result.Skipped++
			continue
		}

		if input.DryRun {
			if exists {
				result.Updated++
			} else {
				result.Created++
			}
			continue
		}

		if exists {
			existing.Name = name
			if email != "" {
				existing.Email = email
			}
			if phone != "" {
				existing.Phone = phone
			}
			if planID != "" {
				existing.PlanID = planID
				existing.PlanNameHint = planName
			}
			if !enrollment.IsZero() {
				existing.EnrollmentDate = enrollment
			}
			if !expiration.IsZero() {
				existing.ExpirationDate = expiration
			}
			if err := deps.MemberStore.Save(ctx, existing); err != nil {
				slog.Error("members_import_save_failed", "row", rowNum, "document", document, "err", err)
				result.Errors = append(result.Errors, ImportMembersRowError{Row: rowNum, Message: "save failed (see server log)"})
				continue
			}
			result.Updated++
		} else {
			m := domain.Member{
				ID:             deps.GenerateID(),
				Name:           name,
				Document:       document,
				Email:          email,
				Phone:          phone,
				PlanID:         planID,
				PlanNameHint:   planName,
				EnrollmentDate: enrollment,
				ExpirationDate: expiration,
			}
			if err := deps.MemberStore.Save(ctx, m); err != nil {
				slog.Error("members_import_save_failed", "row", rowNum, "document", document, "err", err)
				result.Errors = append(result.Errors, ImportMembersRowError{Row: rowNum, Message: "save failed (see server log)"})
				continue
			}
			result.Created++
		}
	}

	slog.Info("members_import",
		"admin", input.AdminAccountID,
		"dry_run", input.DryRun,
		"update_mode", input.UpdateMode,
		"total", result.Total,
		"created", result.Created,
		"updated", result.Updated,
		"skipped", result.Skipped,
		"errors", len(result.Errors),
	)

	return result, nil
}

// loadPlansByName indexes all plans by lowercased name for PLAN resolution.
func loadPlansByName(ctx context.Context, store ImportPlanStore) (map[string]domainPlan.Plan, error) {
	index := map[string]domainPlan.Plan{}
	if store == nil {
		return index, nil
	}
	plans, err := store.List(ctx, planStore.ListFilter{Limit: 1000})
	if err != nil {
		return nil, err
	}
	for _, p := range plans {
		index[strings.ToLower(p.Name)] = p
	}
	return index, nil
}

// parseImportDate tries the accepted layouts; empty input is not an error.
func parseImportDate(value string) (time.Time, error) {
	if value == "" {
		return time.Time{}, nil
	}
	var lastErr error
	for _, layout := range importDateLayouts {
		t, err := time.ParseInLocation(layout, value, time.Local)
		if err == nil {
			return t, nil
		}
		lastErr = err
	}
	return time.Time{}, lastErr
}

// ImportMembersValidationError is returned when the CSV structure is invalid (e.g. missing required columns).
type ImportMembersValidationError struct {
	Message string
}

// Error implements the error interface.
// PRE: e.Message is set.
// POST: returns the validation error message string.
// INVARIANT: message is never empty for a valid ImportMembersValidationError.
func (e *ImportMembersValidationError) Error() string {
	return e.Message
}
