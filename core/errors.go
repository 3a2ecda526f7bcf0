package core

import "errors"

var (
	// ErrInvalidAppointment indicates an Appointment failed validation.
	ErrInvalidAppointment = errors.New("invalid appointment")

	// ErrInvalidTreatment indicates a Treatment failed validation.
	ErrInvalidTreatment = errors.New("invalid treatment")

	// ErrInvalidEmbryologyUpdate indicates an EmbryologyUpdate failed validation.
	ErrInvalidEmbryologyUpdate = errors.New("invalid embryology update")

	// ErrEmptyPatientID indicates the PatientID field is empty.
	ErrEmptyPatientID = errors.New("patient id cannot be empty")

	// ErrMissingTime indicates a required timestamp is zero.
	ErrMissingTime = errors.New("time cannot be zero")

	// ErrEmptyRegimen indicates the treatment Regimen field is empty.
	ErrEmptyRegimen = errors.New("regimen cannot be empty")

	// ErrInvalidCount indicates a negative embryo count other than NotReported,
	// or more good embryos than observed ones.
	ErrInvalidCount = errors.New("invalid embryo count")

	// ErrInvalidDay indicates a culture day outside 0..7.
	ErrInvalidDay = errors.New("culture day must be between 0 and 7")

	// ErrInvalidStatus indicates an unknown status value.
	ErrInvalidStatus = errors.New("invalid status")
)
