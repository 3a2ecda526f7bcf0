package clinic

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/poiesic/asha/core"
	"github.com/poiesic/asha/storage"
)

// DefaultHistoryLimit is the number of plans History returns when the caller
// passes a non-positive limit.
const DefaultHistoryLimit = 10

// Plan describes a treatment plan to record.
type Plan struct {
	PatientID string
	Regimen   string
	Protocol  string
	Notes     string
	StartedAt time.Time // defaults to now
}

// Treatments manages patient treatment plans.
type Treatments struct {
	repo   storage.TreatmentRepository
	now    func() time.Time
	logger *slog.Logger
}

// NewTreatments creates a treatment service over repo.
func NewTreatments(repo storage.TreatmentRepository, opts ...Option) (*Treatments, error) {
	if repo == nil {
		return nil, ErrTreatmentRepositoryRequired
	}
	o := newOptions(opts)
	return &Treatments{
		repo:   repo,
		now:    o.now,
		logger: o.logger.With("component", "treatments"),
	}, nil
}

// SetPlan records an ongoing plan. Setting the same regimen again for a
// patient replaces the earlier plan.
func (t *Treatments) SetPlan(ctx context.Context, p Plan) (*core.Treatment, error) {
	started := p.StartedAt
	if started.IsZero() {
		started = t.now()
	}
	treatment := &core.Treatment{
		PatientID: p.PatientID,
		Regimen:   p.Regimen,
		Protocol:  p.Protocol,
		Notes:     p.Notes,
		Status:    core.TreatmentOngoing,
		StartedAt: started.UTC(),
	}
	if err := core.ValidateTreatment(treatment); err != nil {
		return nil, err
	}

	saved, err := t.repo.UpsertTreatment(ctx, treatment)
	if err != nil {
		return nil, fmt.Errorf("set treatment plan: %w", err)
	}
	t.logger.Info("set treatment plan", "id", saved.Id, "patient_id", saved.PatientID, "regimen", saved.Regimen)
	return saved, nil
}

// Status returns the patient's most recently started plan, or
// storage.ErrNotFound when none is recorded.
func (t *Treatments) Status(ctx context.Context, patientID string) (*core.Treatment, error) {
	plans, err := t.History(ctx, patientID, 1)
	if err != nil {
		return nil, err
	}
	if len(plans) == 0 {
		return nil, fmt.Errorf("no treatment plan for %q: %w", patientID, storage.ErrNotFound)
	}
	return plans[0], nil
}

// History returns the patient's plans, most recently started first.
func (t *Treatments) History(ctx context.Context, patientID string, limit int) ([]*core.Treatment, error) {
	if patientID == "" {
		return nil, core.ErrEmptyPatientID
	}
	if limit <= 0 {
		limit = DefaultHistoryLimit
	}
	plans, err := t.repo.GetTreatmentsByPatient(ctx, patientID, limit)
	if err != nil {
		return nil, fmt.Errorf("list treatment plans: %w", err)
	}
	return plans, nil
}
