package store

import (
	"encoding/json"

	bolt "go.etcd.io/bbolt"
	"src.rook.sh/pkg/replay"
	. "src.rook.sh/pkg/store/storedefs"
)

func init() {
	initDB["initialize checkpoint table"] = func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists([]byte(bucketCheckpoint))
		return err
	}
}

// SaveCheckpoint stores the serialized form of a checkpoint under a name,
// replacing any checkpoint with the same name.
func (s *dbStore) SaveCheckpoint(name string, c replay.Checkpoint) error {
	data, err := json.Marshal(c)
	if err != nil {
		return err
	}
	logger.Printf("saving checkpoint %s (%d bytes)", name, len(data))
	return s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket([]byte(bucketCheckpoint)).Put([]byte(name), data)
	})
}

// Checkpoint loads a saved checkpoint. Only its serialized fields survive.
func (s *dbStore) Checkpoint(name string) (replay.Checkpoint, error) {
	var c replay.Checkpoint
	err := s.db.View(func(tx *bolt.Tx) error {
		v := tx.Bucket([]byte(bucketCheckpoint)).Get([]byte(name))
		if v == nil {
			return ErrNoCheckpoint
		}
		return json.Unmarshal(v, &c)
	})
	return c, err
}

// DelCheckpoint deletes a saved checkpoint.
func (s *dbStore) DelCheckpoint(name string) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket([]byte(bucketCheckpoint)).Delete([]byte(name))
	})
}

// CheckpointNames returns the names of the saved checkpoints in sorted order.
func (s *dbStore) CheckpointNames() ([]string, error) {
	var names []string
	err := s.db.View(func(tx *bolt.Tx) error {
		return tx.Bucket([]byte(bucketCheckpoint)).ForEach(func(k, _ []byte) error {
			names = append(names, string(k))
			return nil
		})
	})
	return names, err
}
