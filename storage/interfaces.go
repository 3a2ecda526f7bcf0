package storage

import (
	"context"
	"time"

	"github.com/poiesic/asha/core"
)

// Repository provides common storage operations shared across all repositories.
// Implementations must be thread-safe and support concurrent access.
type Repository interface {
	// WithTransaction executes a function within a transaction. Repository
	// calls made with the ctx passed to fn share that transaction.
	// If fn returns an error, the transaction is rolled back.
	// If fn returns nil, the transaction is committed.
	WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error

	// Close releases resources held by the repository.
	Close() error
}

// AppointmentRepository provides operations for managing clinic appointments.
type AppointmentRepository interface {
	Repository

	// AddAppointments stores new appointments.
	// IDs are generated from a sequence; InsertedAt and UpdatedAt are set.
	// Returns the appointments with IDs and timestamps populated.
	AddAppointments(ctx context.Context, appts ...*core.Appointment) ([]*core.Appointment, error)

	// UpdateAppointments overwrites existing appointments and refreshes UpdatedAt.
	// Returns ErrNotFound if any appointment doesn't exist.
	UpdateAppointments(ctx context.Context, appts ...*core.Appointment) ([]*core.Appointment, error)

	// GetAppointment retrieves a single appointment by ID.
	// Returns ErrNotFound if the appointment doesn't exist.
	GetAppointment(ctx context.Context, id core.ID) (*core.Appointment, error)

	// GetAppointmentsByPatient returns a patient's appointments with When >= from,
	// ordered by When ascending, up to limit results. A limit <= 0 means no limit.
	GetAppointmentsByPatient(ctx context.Context, patientID string, from time.Time, limit int) ([]*core.Appointment, error)
}

// TreatmentRepository provides operations for managing treatment plans.
type TreatmentRepository interface {
	Repository

	// UpsertTreatment stores a treatment plan under its content-based ID
	// (core.TreatmentID of patient and regimen). An existing plan keeps its
	// InsertedAt; UpdatedAt is always refreshed.
	UpsertTreatment(ctx context.Context, treatment *core.Treatment) (*core.Treatment, error)

	// GetTreatment retrieves a single treatment plan by ID.
	// Returns ErrNotFound if the plan doesn't exist.
	GetTreatment(ctx context.Context, id core.ID) (*core.Treatment, error)

	// GetTreatmentsByPatient returns a patient's plans ordered by StartedAt
	// descending, up to limit results. A limit <= 0 means no limit.
	GetTreatmentsByPatient(ctx context.Context, patientID string, limit int) ([]*core.Treatment, error)
}

// EmbryologyRepository provides operations for daily embryology lab updates.
type EmbryologyRepository interface {
	Repository

	// AddEmbryologyUpdates stores new updates.
	// IDs are generated from a sequence; InsertedAt is set.
	AddEmbryologyUpdates(ctx context.Context, updates ...*core.EmbryologyUpdate) ([]*core.EmbryologyUpdate, error)

	// GetEmbryologyUpdate retrieves a single update by ID.
	// Returns ErrNotFound if the update doesn't exist.
	GetEmbryologyUpdate(ctx context.Context, id core.ID) (*core.EmbryologyUpdate, error)

	// GetEmbryologyUpdatesByPatient returns all of a patient's updates ordered
	// by Date ascending, then by insertion.
	GetEmbryologyUpdatesByPatient(ctx context.Context, patientID string) ([]*core.EmbryologyUpdate, error)
}
