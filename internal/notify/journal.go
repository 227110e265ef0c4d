package notify

import (
	"encoding/binary"
	"encoding/json"
	"fmt"
	"time"

	"github.com/boltdb/bolt"
)

var failuresBucket = []byte("notification_failures")

// Failure is a notification that could not be rendered or delivered
type Failure struct {
	At         time.Time `json:"at"`
	Kind       string    `json:"kind"`
	Authority  string    `json:"authority"`
	RefID      string    `json:"refId"`
	Error      string    `json:"error"`
	Recipients []string  `json:"recipients"`
	ID         uint64    `json:"id"`
}

// Journal records failed notifications for later inspection
type Journal interface {
	Record(f Failure) error
	List(limit int) ([]Failure, error)
}

// BoltJournal keeps failures in a local bolt file, keyed by a monotonic sequence
type BoltJournal struct {
	db *bolt.DB
}

// OpenBoltJournal opens (or creates) the journal file at path.
func OpenBoltJournal(path string) (*BoltJournal, error) {
	db, err := bolt.Open(path, 0o600, &bolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, fmt.Errorf("failed to open notification journal: %w", err)
	}

	err = db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(failuresBucket)
		return err
	})
	if err != nil {
		_ = db.Close() //nolint:errcheck // already failing
		return nil, fmt.Errorf("failed to create journal bucket: %w", err)
	}

	return &BoltJournal{db: db}, nil
}

// Close releases the file lock
func (j *BoltJournal) Close() error {
	return j.db.Close()
}

// Record appends f, assigning its ID and, when unset, its timestamp.
func (j *BoltJournal) Record(f Failure) error {
	return j.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(failuresBucket)

		seq, err := b.NextSequence()
		if err != nil {
			return err
		}
		f.ID = seq
		if f.At.IsZero() {
			f.At = time.Now().UTC()
		}

		data, err := json.Marshal(f)
		if err != nil {
			return err
		}
		return b.Put(sequenceKey(seq), data)
	})
}

// List returns up to limit failures, newest first. A limit <= 0 returns all.
func (j *BoltJournal) List(limit int) ([]Failure, error) {
	failures := []Failure{}

	err := j.db.View(func(tx *bolt.Tx) error {
		c := tx.Bucket(failuresBucket).Cursor()
		for k, v := c.Last(); k != nil; k, v = c.Prev() {
			if limit > 0 && len(failures) >= limit {
				break
			}
			var f Failure
			if err := json.Unmarshal(v, &f); err != nil {
				return fmt.Errorf("corrupt journal entry %d: %w", binary.BigEndian.Uint64(k), err)
			}
			failures = append(failures, f)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return failures, nil
}

func sequenceKey(seq uint64) []byte {
	k := make([]byte, 8)
	binary.BigEndian.PutUint64(k, seq)
	return k
}
