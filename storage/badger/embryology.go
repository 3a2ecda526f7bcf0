package badger

import (
	"context"
	"errors"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/poiesic/asha/core"
	"github.com/poiesic/asha/storage"
)

// EmbryologyRepository implements storage.EmbryologyRepository for BadgerDB.
type EmbryologyRepository struct {
	backend *Backend
	idSeq   *badger.Sequence
}

var _ storage.EmbryologyRepository = (*EmbryologyRepository)(nil)

// NewEmbryologyRepository creates a new EmbryologyRepository.
func NewEmbryologyRepository(backend *Backend) (*EmbryologyRepository, error) {
	idSeq, err := backend.GetSequence(embryologyIDSeq)
	if err != nil {
		return nil, err
	}
	return &EmbryologyRepository{backend: backend, idSeq: idSeq}, nil
}

// Close releases the ID sequence.
func (r *EmbryologyRepository) Close() error {
	return r.idSeq.Release()
}

// WithTransaction delegates to the backend.
func (r *EmbryologyRepository) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return r.backend.WithTransaction(ctx, fn)
}

// AddEmbryologyUpdates stores new updates with sequence-generated IDs.
func (r *EmbryologyRepository) AddEmbryologyUpdates(ctx context.Context, updates ...*core.EmbryologyUpdate) ([]*core.EmbryologyUpdate, error) {
	err := r.backend.WithTx(ctx, func(tx *badger.Txn) error {
		for _, u := range updates {
			nextID, err := r.idSeq.Next()
			if err != nil {
				return err
			}
			if nextID == 0 {
				if nextID, err = r.idSeq.Next(); err != nil {
					return err
				}
			}
			u.Id = core.ID(nextID)
			u.Date = storedTime(u.Date)
			u.InsertedAt = storedTime(time.Now())

			if err := tx.Set(makeEmbryologyKey(u.Id), storage.MarshalEmbryologyUpdate(u)); err != nil {
				return err
			}
			index := makePatientTimeKey(embryologyPatientPrefix, u.PatientID, u.Date, u.Id)
			if err := tx.Set(index, storage.MarshalID(u.Id)); err != nil {
				return err
			}
		}
		return nil
	}, true)
	if err != nil {
		return nil, err
	}

	r.backend.logger.Debug("added embryology updates", "count", len(updates))
	return updates, nil
}

// GetEmbryologyUpdate retrieves a single update by ID.
func (r *EmbryologyRepository) GetEmbryologyUpdate(ctx context.Context, id core.ID) (*core.EmbryologyUpdate, error) {
	var result *core.EmbryologyUpdate
	err := r.backend.WithTx(ctx, func(tx *badger.Txn) error {
		var err error
		result, err = readEmbryologyUpdate(tx, makeEmbryologyKey(id))
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

// GetEmbryologyUpdatesByPatient returns every update for a patient in date order.
func (r *EmbryologyRepository) GetEmbryologyUpdatesByPatient(ctx context.Context, patientID string) ([]*core.EmbryologyUpdate, error) {
	var results []*core.EmbryologyUpdate
	err := r.backend.WithTx(ctx, func(tx *badger.Txn) error {
		prefix := makePatientPrefix(embryologyPatientPrefix, patientID)
		opts := badger.DefaultIteratorOptions
		opts.Prefix = prefix
		iter := tx.NewIterator(opts)
		defer iter.Close()

		for iter.Rewind(); iter.ValidForPrefix(prefix); iter.Next() {
			var id core.ID
			if err := iter.Item().Value(func(val []byte) error {
				var err error
				id, err = storage.UnmarshalID(val)
				return err
			}); err != nil {
				return err
			}

			u, err := readEmbryologyUpdate(tx, makeEmbryologyKey(id))
			if err != nil {
				return err
			}
			if u != nil && u.PatientID == patientID {
				results = append(results, u)
			}
		}
		return nil
	}, false)
	return results, err
}

// readEmbryologyUpdate reads an update from the transaction.
// Returns nil without error if the key doesn't exist.
func readEmbryologyUpdate(tx *badger.Txn, key []byte) (*core.EmbryologyUpdate, error) {
	item, err := tx.Get(key)
	if err != nil {
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil, nil
		}
		return nil, err
	}

	var u *core.EmbryologyUpdate
	err = item.Value(func(val []byte) error {
		var unmarshalErr error
		u, unmarshalErr = storage.UnmarshalEmbryologyUpdate(val)
		return unmarshalErr
	})
	return u, err
}
