package stores

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"erc20/sender/internal/models"

	bolt "go.etcd.io/bbolt"
)

// another process holding the file makes Open fail instead of hang
const openTimeout = 2 * time.Second

var (
	bucketTransfers = []byte("transfers")

	ErrTransferNotFound = errors.New("transfer not found")
)

type TransferStore interface {
	PutIfAbsent(ctx context.Context, rec *models.TransferRecord) error
	Put(ctx context.Context, rec *models.TransferRecord) error
	Get(ctx context.Context, id string) (*models.TransferRecord, error)
	Scan(ctx context.Context, visit func(*models.TransferRecord) error) error
	Close() error
}

type LocalTransferStore struct {
	db *bolt.DB
}

func NewLocalTransferStore(path string) (*LocalTransferStore, error) {
	db, err := bolt.Open(path, 0600, &bolt.Options{Timeout: openTimeout})
	if err != nil {
		return nil, err
	}
	if err := db.Update(func(tx *bolt.Tx) error {
		_, e := tx.CreateBucketIfNotExists(bucketTransfers)
		return e
	}); err != nil {
		_ = db.Close()
		return nil, err
	}
	return &LocalTransferStore{db: db}, nil
}

func (s *LocalTransferStore) PutIfAbsent(ctx context.Context, rec *models.TransferRecord) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucketTransfers)
		if b.Get([]byte(rec.ID)) != nil {
			return nil
		}
		blob, err := json.Marshal(rec)
		if err != nil {
			return err
		}
		return b.Put([]byte(rec.ID), blob)
	})
}

func (s *LocalTransferStore) Put(ctx context.Context, rec *models.TransferRecord) error {
	blob, err := json.Marshal(rec)
	if err != nil {
		return err
	}
	return s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(bucketTransfers).Put([]byte(rec.ID), blob)
	})
}

func (s *LocalTransferStore) Get(ctx context.Context, id string) (*models.TransferRecord, error) {
	var out models.TransferRecord
	err := s.db.View(func(tx *bolt.Tx) error {
		v := tx.Bucket(bucketTransfers).Get([]byte(id))
		if v == nil {
			return ErrTransferNotFound
		}
		return json.Unmarshal(v, &out)
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// Visits every record in key order. Stops on the first visitor error or when ctx is done.
func (s *LocalTransferStore) Scan(ctx context.Context, visit func(*models.TransferRecord) error) error {
	return s.db.View(func(tx *bolt.Tx) error {
		c := tx.Bucket(bucketTransfers).Cursor()
		for k, v := c.First(); k != nil; k, v = c.Next() {
			select {
			case <-ctx.Done():
				return ctx.Err()
			default:
			}
			var rec models.TransferRecord
			if err := json.Unmarshal(v, &rec); err != nil {
				return err
			}
			if err := visit(&rec); err != nil {
				return err
			}
		}
		return nil
	})
}

func (s *LocalTransferStore) Close() error {
	return s.db.Close()
}
