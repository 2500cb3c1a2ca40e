// Package boltstore persists the cost-basis book in a single-file bolt
// database: one bucket, JSON-encoded records keyed by mint.
package boltstore

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	bolt "go.etcd.io/bbolt"
	"go.uber.org/zap"

	"github.com/mcintyre94/swapsies/internal/basis"
)

const bucketRecords = "cost_basis"

type Store struct {
	db     *bolt.DB
	logger *zap.Logger
}

// Open creates or opens the database file, creating parent directories as
// needed. The open timeout keeps a second process from blocking forever on
// the file lock.
func Open(path string, logger *zap.Logger) (*Store, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("failed to create db directory: %w", err)
		}
	}

	db, err := bolt.Open(path, 0o600, &bolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, fmt.Errorf("failed to open cost basis db at %s: %w", path, err)
	}

	err = db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists([]byte(bucketRecords))
		return err
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create bucket: %w", err)
	}

	logger.Info("📦 Cost basis store opened", zap.String("path", path))
	return &Store{db: db, logger: logger}, nil
}

func (s *Store) Get(_ context.Context, mint string) (*basis.Record, error) {
	var rec basis.Record
	err := s.db.View(func(tx *bolt.Tx) error {
		data := tx.Bucket([]byte(bucketRecords)).Get([]byte(mint))
		if data == nil {
			return fmt.Errorf("%w: %s", basis.ErrNotFound, mint)
		}
		return json.Unmarshal(data, &rec)
	})
	if err != nil {
		return nil, err
	}
	return &rec, nil
}

func (s *Store) Put(_ context.Context, rec *basis.Record) error {
	if err := rec.Validate(); err != nil {
		return err
	}

	data, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("failed to marshal record for %s: %w", rec.Mint, err)
	}

	return s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket([]byte(bucketRecords)).Put([]byte(rec.Mint), data)
	})
}

func (s *Store) Delete(_ context.Context, mint string) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket([]byte(bucketRecords))
		if b.Get([]byte(mint)) == nil {
			return fmt.Errorf("%w: %s", basis.ErrNotFound, mint)
		}
		return b.Delete([]byte(mint))
	})
}

// List returns every stored record sorted by mint. A record that no longer
// unmarshals is skipped and logged rather than failing the whole book.
func (s *Store) List(_ context.Context) ([]*basis.Record, error) {
	var out []*basis.Record
	err := s.db.View(func(tx *bolt.Tx) error {
		return tx.Bucket([]byte(bucketRecords)).ForEach(func(k, v []byte) error {
			var rec basis.Record
			if err := json.Unmarshal(v, &rec); err != nil {
				s.logger.Warn("⚠️ Skipping corrupt cost basis record",
					zap.String("mint", string(k)),
					zap.Error(err))
				return nil
			}
			out = append(out, &rec)
			return nil
		})
	})
	if err != nil {
		return nil, err
	}

	sort.Slice(out, func(i, j int) bool { return out[i].Mint < out[j].Mint })
	return out, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}
