package badger

import (
	"bytes"
	"context"
	"errors"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/poiesic/asha/core"
	"github.com/poiesic/asha/storage"
)

// TreatmentRepository implements storage.TreatmentRepository for BadgerDB.
type TreatmentRepository struct {
	backend *Backend
}

var _ storage.TreatmentRepository = (*TreatmentRepository)(nil)

// NewTreatmentRepository creates a new TreatmentRepository.
func NewTreatmentRepository(backend *Backend) (*TreatmentRepository, error) {
	return &TreatmentRepository{backend: backend}, nil
}

// Close is a no-op; the backend owns the database handle.
func (r *TreatmentRepository) Close() error {
	return nil
}

// WithTransaction delegates to the backend.
func (r *TreatmentRepository) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return r.backend.WithTransaction(ctx, fn)
}

// UpsertTreatment stores a plan under core.TreatmentID(PatientID, Regimen).
func (r *TreatmentRepository) UpsertTreatment(ctx context.Context, treatment *core.Treatment) (*core.Treatment, error) {
	treatment.Id = core.TreatmentID(treatment.PatientID, treatment.Regimen)
	treatment.StartedAt = storedTime(treatment.StartedAt)

	err := r.backend.WithTx(ctx, func(tx *badger.Txn) error {
		key := makeTreatmentKey(treatment.Id)
		old, err := readTreatment(tx, key)
		if err != nil {
			return err
		}

		now := storedTime(time.Now())
		treatment.InsertedAt = now
		if old != nil {
			treatment.InsertedAt = old.InsertedAt
			oldIndex := makePatientTimeKey(treatmentPatientPrefix, old.PatientID, old.StartedAt, old.Id)
			if err := tx.Delete(oldIndex); err != nil {
				return err
			}
		}
		treatment.UpdatedAt = now

		if err := tx.Set(key, storage.MarshalTreatment(treatment)); err != nil {
			return err
		}
		index := makePatientTimeKey(treatmentPatientPrefix, treatment.PatientID, treatment.StartedAt, treatment.Id)
		if err := tx.Set(index, storage.MarshalID(treatment.Id)); err != nil {
			return err
		}
		return nil
	}, true)
	if err != nil {
		return nil, err
	}

	r.backend.logger.Debug("upserted treatment", "id", treatment.Id, "regimen", treatment.Regimen)
	return treatment, nil
}

// GetTreatment retrieves a single treatment plan by ID.
func (r *TreatmentRepository) GetTreatment(ctx context.Context, id core.ID) (*core.Treatment, error) {
	var result *core.Treatment
	err := r.backend.WithTx(ctx, func(tx *badger.Txn) error {
		var err error
		result, err = readTreatment(tx, makeTreatmentKey(id))
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

// GetTreatmentsByPatient returns a patient's plans, most recently started first.
func (r *TreatmentRepository) GetTreatmentsByPatient(ctx context.Context, patientID string, limit int) ([]*core.Treatment, error) {
	var results []*core.Treatment
	err := r.backend.WithTx(ctx, func(tx *badger.Txn) error {
		prefix := makePatientPrefix(treatmentPatientPrefix, patientID)
		opts := badger.DefaultIteratorOptions
		opts.Prefix = prefix
		opts.Reverse = true
		iter := tx.NewIterator(opts)
		defer iter.Close()

		// Reverse iteration seeks to the largest key <= the seek key, so seek
		// past every timestamp:id suffix.
		seek := append(bytes.Clone(prefix), bytes.Repeat([]byte{0xff}, 17)...)
		for iter.Seek(seek); iter.ValidForPrefix(prefix); iter.Next() {
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

			treatment, err := readTreatment(tx, makeTreatmentKey(id))
			if err != nil {
				return err
			}
			if treatment != nil && treatment.PatientID == patientID {
				results = append(results, treatment)
			}
		}
		return nil
	}, false)
	return results, err
}

// readTreatment reads a treatment plan from the transaction.
// Returns nil without error if the key doesn't exist.
func readTreatment(tx *badger.Txn, key []byte) (*core.Treatment, error) {
	item, err := tx.Get(key)
	if err != nil {
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil, nil
		}
		return nil, err
	}

	var treatment *core.Treatment
	err = item.Value(func(val []byte) error {
		var unmarshalErr error
		treatment, unmarshalErr = storage.UnmarshalTreatment(val)
		return unmarshalErr
	})
	return treatment, err
}
