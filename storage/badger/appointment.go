package badger

import (
	"context"
	"errors"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/poiesic/asha/core"
	"github.com/poiesic/asha/storage"
)

// AppointmentRepository implements storage.AppointmentRepository for BadgerDB.
type AppointmentRepository struct {
	backend *Backend
	idSeq   *badger.Sequence
}

var _ storage.AppointmentRepository = (*AppointmentRepository)(nil)

// NewAppointmentRepository creates a new AppointmentRepository.
func NewAppointmentRepository(backend *Backend) (*AppointmentRepository, error) {
	idSeq, err := backend.GetSequence(appointmentIDSeq)
	if err != nil {
		return nil, err
	}

	return &AppointmentRepository{
		backend: backend,
		idSeq:   idSeq,
	}, nil
}

// Close releases the ID sequence.
func (r *AppointmentRepository) Close() error {
	return r.idSeq.Release()
}

// WithTransaction delegates to the backend.
func (r *AppointmentRepository) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return r.backend.WithTransaction(ctx, fn)
}

// AddAppointments stores new appointments with sequence-generated IDs.
func (r *AppointmentRepository) AddAppointments(ctx context.Context, appts ...*core.Appointment) ([]*core.Appointment, error) {
	err := r.backend.WithTx(ctx, func(tx *badger.Txn) error {
		for _, appt := range appts {
			nextID, err := r.idSeq.Next()
			if err != nil {
				return err
			}
			// BadgerDB sequences can return 0 on first call, so we skip it
			if nextID == 0 {
				nextID, err = r.idSeq.Next()
				if err != nil {
					return err
				}
			}
			appt.Id = core.ID(nextID)
			appt.When = storedTime(appt.When)
			appt.InsertedAt = storedTime(time.Now())
			appt.UpdatedAt = appt.InsertedAt

			if err := tx.Set(makeAppointmentKey(appt.Id), storage.MarshalAppointment(appt)); err != nil {
				return err
			}
			indexKey := makePatientTimeKey(appointmentPatientPrefix, appt.PatientID, appt.When, appt.Id)
			if err := tx.Set(indexKey, storage.MarshalID(appt.Id)); err != nil {
				return err
			}
		}
		return nil
	}, true)
	if err != nil {
		return nil, err
	}

	r.backend.logger.Debug("added appointments", "count", len(appts))
	return appts, nil
}

// UpdateAppointments overwrites existing appointments.
func (r *AppointmentRepository) UpdateAppointments(ctx context.Context, appts ...*core.Appointment) ([]*core.Appointment, error) {
	err := r.backend.WithTx(ctx, func(tx *badger.Txn) error {
		for _, appt := range appts {
			key := makeAppointmentKey(appt.Id)

			old, err := readAppointment(tx, key)
			if err != nil {
				return err
			}
			if old == nil {
				return storage.ErrNotFound
			}

			appt.When = storedTime(appt.When)
			appt.InsertedAt = old.InsertedAt
			appt.UpdatedAt = storedTime(time.Now())
			if err := tx.Set(key, storage.MarshalAppointment(appt)); err != nil {
				return err
			}

			// Reindex if the time or owner moved
			if !old.When.Equal(appt.When) || old.PatientID != appt.PatientID {
				if err := tx.Delete(makePatientTimeKey(appointmentPatientPrefix, old.PatientID, old.When, old.Id)); err != nil {
					return err
				}
				newKey := makePatientTimeKey(appointmentPatientPrefix, appt.PatientID, appt.When, appt.Id)
				if err := tx.Set(newKey, storage.MarshalID(appt.Id)); err != nil {
					return err
				}
			}
		}
		return nil
	}, true)
	if err != nil {
		return nil, err
	}
	return appts, nil
}

// GetAppointment retrieves a single appointment by ID.
func (r *AppointmentRepository) GetAppointment(ctx context.Context, id core.ID) (*core.Appointment, error) {
	var result *core.Appointment
	err := r.backend.WithTx(ctx, func(tx *badger.Txn) error {
		var err error
		result, err = readAppointment(tx, makeAppointmentKey(id))
		if err != nil {
			return err
		}
		if result == nil {
			return storage.ErrNotFound
		}
		return nil
	}, false)
	return result, err
}

// GetAppointmentsByPatient returns a patient's appointments from the given time on.
func (r *AppointmentRepository) GetAppointmentsByPatient(ctx context.Context, patientID string, from time.Time, limit int) ([]*core.Appointment, error) {
	var results []*core.Appointment
	err := r.backend.WithTx(ctx, func(tx *badger.Txn) error {
		prefix := makePatientPrefix(appointmentPatientPrefix, patientID)
		opts := badger.DefaultIteratorOptions
		opts.Prefix = prefix
		iter := tx.NewIterator(opts)
		defer iter.Close()

		for iter.Seek(makePartialPatientTimeKey(appointmentPatientPrefix, patientID, from)); iter.ValidForPrefix(prefix); iter.Next() {
			if limit > 0 && len(results) >= limit {
				break
			}

			var id core.ID
			if err := iter.Item().Value(func(val []byte) error {
				var err error
				id, err = storage.UnmarshalID(val)
				return err
			}); err != nil {
				return err
			}

			appt, err := readAppointment(tx, makeAppointmentKey(id))
			if err != nil {
				return err
			}
			if appt != nil && appt.PatientID == patientID {
				results = append(results, appt)
			}
		}
		return nil
	}, false)
	return results, err
}

// readAppointment reads an appointment from the transaction.
// Returns nil without error if the key doesn't exist.
func readAppointment(tx *badger.Txn, key []byte) (*core.Appointment, error) {
	item, err := tx.Get(key)
	if err != nil {
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil, nil
		}
		return nil, err
	}

	var appt *core.Appointment
	err = item.Value(func(val []byte) error {
		var unmarshalErr error
		appt, unmarshalErr = storage.UnmarshalAppointment(val)
		return unmarshalErr
	})
	return appt, err
}
