package clinic

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/poiesic/asha/core"
	"github.com/poiesic/asha/storage"
)

const (
	summaryHeading = "### Embryology summary"
	summaryNudge   = "*Please discuss next steps with your clinical team.*"
	noUpdatesText  = "No daily embryology updates have been recorded yet. " +
		"Once the clinic enters updates (for example fertilization, cleavage, " +
		"blastocyst counts and grades), they will be summarized here."
	fallbackNotice = "_A written summary is unavailable right now. Showing a plain summary instead._"
	ledgerDate     = "2006-01-02"
)

// Narrator turns a patient's embryology ledger into a short patient-facing
// summary. The ledger is a pipe-separated table, one row per update.
type Narrator interface {
	Narrate(ctx context.Context, ledger string) (string, error)
}

// LabEntry describes an embryology update to record. Counts the lab did not
// report are core.NotReported.
type LabEntry struct {
	PatientID string
	Day       int
	Stage     string
	Total     int
	Good      int
	Grades    string
	Notes     string
	Date      time.Time // defaults to now
}

// Summary is a rendered embryology summary.
type Summary struct {
	Markdown string
	Narrated bool // produced by the Narrator rather than the plain renderer
	Updates  []*core.EmbryologyUpdate
}

// Results manages daily embryology updates.
type Results struct {
	repo     storage.EmbryologyRepository
	narrator Narrator
	now      func() time.Time
	logger   *slog.Logger
}

// NewResults creates an embryology results service over repo.
func NewResults(repo storage.EmbryologyRepository, opts ...Option) (*Results, error) {
	if repo == nil {
		return nil, ErrEmbryologyRepositoryRequired
	}
	o := newOptions(opts)
	return &Results{
		repo:     repo,
		narrator: o.narrator,
		now:      o.now,
		logger:   o.logger.With("component", "results"),
	}, nil
}

// Record stores one lab update.
func (r *Results) Record(ctx context.Context, e LabEntry) (*core.EmbryologyUpdate, error) {
	date := e.Date
	if date.IsZero() {
		date = r.now()
	}
	update := &core.EmbryologyUpdate{
		PatientID: e.PatientID,
		Day:       e.Day,
		Stage:     strings.TrimSpace(e.Stage),
		Total:     e.Total,
		Good:      e.Good,
		Grades:    strings.TrimSpace(e.Grades),
		Notes:     strings.TrimSpace(e.Notes),
		Date:      date.UTC(),
	}
	if err := core.ValidateEmbryologyUpdate(update); err != nil {
		return nil, err
	}

	added, err := r.repo.AddEmbryologyUpdates(ctx, update)
	if err != nil {
		return nil, fmt.Errorf("record embryology update: %w", err)
	}
	r.logger.Info("recorded embryology update", "id", added[0].Id, "patient_id", update.PatientID, "day", update.Day)
	return added[0], nil
}

// Updates returns the patient's updates in date order.
func (r *Results) Updates(ctx context.Context, patientID string) ([]*core.EmbryologyUpdate, error) {
	if patientID == "" {
		return nil, core.ErrEmptyPatientID
	}
	updates, err := r.repo.GetEmbryologyUpdatesByPatient(ctx, patientID)
	if err != nil {
		return nil, fmt.Errorf("list embryology updates: %w", err)
	}
	return updates, nil
}

// Summarize renders the patient's updates. With a Narrator configured the
// narrative is tried first; any failure or empty answer falls back to one
// plain bullet per update.
func (r *Results) Summarize(ctx context.Context, patientID string) (*Summary, error) {
	updates, err := r.Updates(ctx, patientID)
	if err != nil {
		return nil, err
	}
	if len(updates) == 0 {
		return &Summary{Markdown: summaryHeading + "\n" + noUpdatesText}, nil
	}

	if r.narrator != nil {
		text, err := r.narrator.Narrate(ctx, Ledger(updates))
		text = strings.TrimSpace(text)
		switch {
		case err != nil:
			r.logger.Warn("narrative summary failed", "patient_id", patientID, "err", err)
		case text == "":
			r.logger.Warn("narrative summary was empty", "patient_id", patientID)
		default:
			md := summaryHeading + " (auto-generated)\n\n" + text + "\n\n" + summaryNudge
			return &Summary{Markdown: md, Narrated: true, Updates: updates}, nil
		}
		md := summaryHeading + "\n" + fallbackNotice + "\n\n" + PlainBullets(updates) + "\n\n" + summaryNudge
		return &Summary{Markdown: md, Updates: updates}, nil
	}

	md := summaryHeading + "\n\n" + PlainBullets(updates) + "\n\n" + summaryNudge
	return &Summary{Markdown: md, Updates: updates}, nil
}

// PlainBullets renders one markdown bullet per update.
func PlainBullets(updates []*core.EmbryologyUpdate) string {
	if len(updates) == 0 {
		return "- No daily embryology updates have been recorded yet."
	}

	lines := make([]string, 0, len(updates))
	for _, u := range updates {
		parts := []string{fmt.Sprintf("**Day %d** (%s) on %s: total=%s",
			u.Day, orDash(u.Stage), formatLedgerDate(u.Date), formatCount(u.Total))}
		if u.Good != core.NotReported {
			parts = append(parts, fmt.Sprintf("good=%d", u.Good))
		}
		if u.Grades != "" {
			parts = append(parts, "grades: "+u.Grades)
		}
		line := strings.Join(parts, ", ")
		if u.Notes != "" {
			line += ". Notes: " + u.Notes
		}
		lines = append(lines, "- "+line)
	}
	return strings.Join(lines, "\n")
}

// Ledger renders updates as the pipe table handed to a Narrator.
func Ledger(updates []*core.EmbryologyUpdate) string {
	var b strings.Builder
	b.WriteString("Day | Stage | Total | Good | Grades | Date (UTC) | Notes\n")
	b.WriteString("--- | --- | --- | --- | --- | --- | ---")
	for _, u := range updates {
		fmt.Fprintf(&b, "\n%d | %s | %s | %s | %s | %s | %s",
			u.Day, u.Stage, formatCount(u.Total), formatCount(u.Good), u.Grades, formatLedgerDate(u.Date), u.Notes)
	}
	return b.String()
}

func formatCount(n int) string {
	if n == core.NotReported {
		return "-"
	}
	return fmt.Sprint(n)
}

func formatLedgerDate(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return t.UTC().Format(ledgerDate)
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
