package core

import (
	"fmt"
	"time"
)

func ValidateAppointment(appt *Appointment) error {
	if appt == nil {
		return fmt.Errorf("%w: appointment is nil", ErrInvalidAppointment)
	}

	if appt.PatientID == "" {
		return fmt.Errorf("%w: %w", ErrInvalidAppointment, ErrEmptyPatientID)
	}

	if appt.When.IsZero() {
		return fmt.Errorf("%w: %w", ErrInvalidAppointment, ErrMissingTime)
	}

	if err := ValidateAppointmentStatus(appt.Status); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidAppointment, err)
	}

	if appt.TZ != "" {
		if _, err := time.LoadLocation(appt.TZ); err != nil {
			return fmt.Errorf("%w: unknown time zone %q", ErrInvalidAppointment, appt.TZ)
		}
	}

	return nil
}

func ValidateTreatment(treatment *Treatment) error {
	if treatment == nil {
		return fmt.Errorf("%w: treatment is nil", ErrInvalidTreatment)
	}

	if treatment.PatientID == "" {
		return fmt.Errorf("%w: %w", ErrInvalidTreatment, ErrEmptyPatientID)
	}

	if treatment.Regimen == "" {
		return fmt.Errorf("%w: %w", ErrInvalidTreatment, ErrEmptyRegimen)
	}

	if treatment.Status != TreatmentOngoing && treatment.Status != TreatmentCompleted {
		return fmt.Errorf("%w: %w: %q", ErrInvalidTreatment, ErrInvalidStatus, treatment.Status)
	}

	return nil
}

func ValidateAppointmentStatus(status AppointmentStatus) error {
	if status != AppointmentScheduled && status != AppointmentCancelled {
		return fmt.Errorf("%w: %q", ErrInvalidStatus, status)
	}
	return nil
}

// MaxCultureDay is the last day embryos are kept in culture.
const MaxCultureDay = 7

func ValidateEmbryologyUpdate(u *EmbryologyUpdate) error {
	if u == nil {
		return fmt.Errorf("%w: update is nil", ErrInvalidEmbryologyUpdate)
	}

	if u.PatientID == "" {
		return fmt.Errorf("%w: %w", ErrInvalidEmbryologyUpdate, ErrEmptyPatientID)
	}

	if u.Day < 0 || u.Day > MaxCultureDay {
		return fmt.Errorf("%w: %w: %d", ErrInvalidEmbryologyUpdate, ErrInvalidDay, u.Day)
	}

	if u.Date.IsZero() {
		return fmt.Errorf("%w: %w", ErrInvalidEmbryologyUpdate, ErrMissingTime)
	}

	for _, n := range []int{u.Total, u.Good} {
		if n < NotReported {
			return fmt.Errorf("%w: %w: %d", ErrInvalidEmbryologyUpdate, ErrInvalidCount, n)
		}
	}
	if u.Total != NotReported && u.Good > u.Total {
		return fmt.Errorf("%w: %w: %d good of %d", ErrInvalidEmbryologyUpdate, ErrInvalidCount, u.Good, u.Total)
	}

	return nil
}
