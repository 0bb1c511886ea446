// Package store is the persistent storage of the interpreter: the command
// history shared by all sessions and the checkpoints saved with :save.
package store

import (
	"fmt"
	"time"

	bolt "go.etcd.io/bbolt"
	"src.rook.sh/pkg/logutil"
	"src.rook.sh/pkg/store/storedefs"
)

var logger = logutil.GetLogger("[store] ")

// Names of the buckets.
const (
	bucketCmd        = "cmd"
	bucketCheckpoint = "checkpoint"
)

// initDB holds the functions that create the buckets, keyed by description.
var initDB = map[string](func(*bolt.Tx) error){}

// DBStore is the persistent store backed by a database file.
type DBStore interface {
	storedefs.Store
	Close() error
}

type dbStore struct {
	db *bolt.DB
}

// NewStore opens the database at dbname, creating it if necessary.
func NewStore(dbname string) (DBStore, error) {
	db, err := bolt.Open(dbname, 0644, &bolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, fmt.Errorf("cannot open history database %s: %w", dbname, err)
	}
	return NewStoreFromDB(db)
}

// NewStoreFromDB creates a new store from a bolt DB.
func NewStoreFromDB(db *bolt.DB) (DBStore, error) {
	logger.Println("initializing store")
	defer logger.Println("initialized store")
	st := &dbStore{db: db}

	err := db.Update(func(tx *bolt.Tx) error {
		for name, fn := range initDB {
			if err := fn(tx); err != nil {
				return fmt.Errorf("failed to %s: %w", name, err)
			}
		}
		return nil
	})
	if err != nil {
		db.Close()
		return nil, err
	}
	return st, nil
}

// Close closes the database.
func (s *dbStore) Close() error {
	return s.db.Close()
}
