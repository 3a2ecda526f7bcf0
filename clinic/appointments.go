package clinic

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/poiesic/asha/core"
	"github.com/poiesic/asha/storage"
)

// DefaultUpcomingLimit is the number of appointments Upcoming returns when
// the caller passes a non-positive limit.
const DefaultUpcomingLimit = 5

// Booking describes an appointment to create.
type Booking struct {
	PatientID string
	When      time.Time
	TZ        string // IANA zone the patient sees the time in; defaults to UTC
	Type      string
	Clinician string
	Notes     string
}

// Appointments manages patient appointments.
type Appointments struct {
	repo   storage.AppointmentRepository
	now    func() time.Time
	logger *slog.Logger
}

// NewAppointments creates an appointment service over repo.
func NewAppointments(repo storage.AppointmentRepository, opts ...Option) (*Appointments, error) {
	if repo == nil {
		return nil, ErrAppointmentRepositoryRequired
	}
	o := newOptions(opts)
	return &Appointments{
		repo:   repo,
		now:    o.now,
		logger: o.logger.With("component", "appointments"),
	}, nil
}

// Book schedules a new appointment.
func (a *Appointments) Book(ctx context.Context, b Booking) (*core.Appointment, error) {
	tz := b.TZ
	if tz == "" {
		tz = "UTC"
	}
	appt := &core.Appointment{
		PatientID: b.PatientID,
		When:      b.When.UTC(),
		TZ:        tz,
		Type:      b.Type,
		Clinician: b.Clinician,
		Notes:     b.Notes,
		Status:    core.AppointmentScheduled,
	}
	if err := core.ValidateAppointment(appt); err != nil {
		return nil, err
	}

	added, err := a.repo.AddAppointments(ctx, appt)
	if err != nil {
		return nil, fmt.Errorf("book appointment: %w", err)
	}
	a.logger.Info("booked appointment", "id", added[0].Id, "patient_id", appt.PatientID, "when", appt.When)
	return added[0], nil
}

// Upcoming returns the patient's scheduled appointments from now on,
// soonest first. Cancelled appointments are skipped.
func (a *Appointments) Upcoming(ctx context.Context, patientID string, limit int) ([]*core.Appointment, error) {
	if patientID == "" {
		return nil, core.ErrEmptyPatientID
	}
	if limit <= 0 {
		limit = DefaultUpcomingLimit
	}

	// Fetch without a limit so cancelled entries don't eat into it.
	all, err := a.repo.GetAppointmentsByPatient(ctx, patientID, a.now(), 0)
	if err != nil {
		return nil, fmt.Errorf("list appointments: %w", err)
	}

	upcoming := make([]*core.Appointment, 0, min(limit, len(all)))
	for _, appt := range all {
		if appt.Status != core.AppointmentScheduled {
			continue
		}
		upcoming = append(upcoming, appt)
		if len(upcoming) == limit {
			break
		}
	}
	return upcoming, nil
}

// Next returns the patient's soonest scheduled appointment, or
// storage.ErrNotFound when none is booked.
func (a *Appointments) Next(ctx context.Context, patientID string) (*core.Appointment, error) {
	upcoming, err := a.Upcoming(ctx, patientID, 1)
	if err != nil {
		return nil, err
	}
	if len(upcoming) == 0 {
		return nil, fmt.Errorf("no upcoming appointment for %q: %w", patientID, storage.ErrNotFound)
	}
	return upcoming[0], nil
}

// Cancel marks an appointment cancelled. Cancelling twice is not an error.
// The read and the status write share one transaction.
func (a *Appointments) Cancel(ctx context.Context, id core.ID) (*core.Appointment, error) {
	var appt *core.Appointment
	err := a.repo.WithTransaction(ctx, func(ctx context.Context) error {
		var err error
		appt, err = a.repo.GetAppointment(ctx, id)
		if err != nil {
			if errors.Is(err, storage.ErrNotFound) {
				return fmt.Errorf("appointment %d: %w", id, err)
			}
			return err
		}
		if appt.Status == core.AppointmentCancelled {
			return nil
		}

		appt.Status = core.AppointmentCancelled
		if _, err := a.repo.UpdateAppointments(ctx, appt); err != nil {
			return fmt.Errorf("cancel appointment %d: %w", id, err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	a.logger.Info("cancelled appointment", "id", id, "patient_id", appt.PatientID)
	return appt, nil
}
