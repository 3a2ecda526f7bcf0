package badger

import "github.com/poiesic/asha/storage"

// NewMemoryRepositories creates in-memory appointment and treatment repositories for testing.
// Returns apptRepo, treatmentRepo, backend, and error.
// Caller must close both repos and backend when done.
func NewMemoryRepositories() (storage.AppointmentRepository, storage.TreatmentRepository, *Backend, error) {
	backend, err := OpenBackend("", true)
	if err != nil {
		return nil, nil, nil, err
	}

	apptRepo, err := NewAppointmentRepository(backend)
	if err != nil {
		backend.Close()
		return nil, nil, nil, err
	}

	treatmentRepo, err := NewTreatmentRepository(backend)
	if err != nil {
		apptRepo.Close()
		backend.Close()
		return nil, nil, nil, err
	}

	return apptRepo, treatmentRepo, backend, nil
}

