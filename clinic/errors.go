package clinic

import "errors"

var (
	// ErrAppointmentRepositoryRequired is returned when no appointment repository is supplied.
	ErrAppointmentRepositoryRequired = errors.New("appointment repository is required")

	// ErrTreatmentRepositoryRequired is returned when no treatment repository is supplied.
	ErrTreatmentRepositoryRequired = errors.New("treatment repository is required")

	// ErrEmbryologyRepositoryRequired is returned when no embryology repository is supplied.
	ErrEmbryologyRepositoryRequired = errors.New("embryology repository is required")

	// ErrPatientRequired is returned when an action needs a patient and the decision has none.
	ErrPatientRequired = errors.New("patient id is required")

	// ErrUnsupportedAction is returned for actions handled outside the clinic.
	ErrUnsupportedAction = errors.New("action not handled by clinic service")
)
