// Package cache remembers which documents are up to date so repeated runs
// only regenerate what changed.
//
// A [Store] maps each output path to the [Fingerprint] of the inputs it was
// last generated from. It is backed by a bbolt database file.
package cache

import (
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"time"

	"go.etcd.io/bbolt"
)

// SchemaVersion is the version of the stored entries. Opening a database
// written with another version discards its entries.
const SchemaVersion = 1

// Sentinel errors returned by the cache package.
var (
	ErrOpen  = errors.New("open cache")
	ErrStore = errors.New("cache store")
)

var (
	bucketOutputs    = []byte("outputs")
	bucketMeta       = []byte("meta")
	keySchemaVersion = []byte("schema_version")
)

// Fingerprint identifies the inputs of one generated document.
type Fingerprint string

// NewFingerprint hashes parts into a [Fingerprint]. Each part is length
// prefixed, so moving bytes between parts changes the result.
func NewFingerprint(parts ...[]byte) Fingerprint {
	h := sha256.New()

	var size [8]byte

	for _, p := range parts {
		binary.BigEndian.PutUint64(size[:], uint64(len(p)))
		h.Write(size[:])
		h.Write(p)
	}

	return Fingerprint(hex.EncodeToString(h.Sum(nil)))
}

// Entry is the stored state of one output.
type Entry struct {
	Fingerprint Fingerprint `json:"fingerprint"`
	Source      string      `json:"source"`
	GeneratedAt time.Time   `json:"generated_at"`
}

// Store is a persistent map from output path to [Entry]. It is safe for
// concurrent use.
type Store struct {
	db  *bbolt.DB
	now func() time.Time
}

// Open opens or creates the cache database at path.
func Open(path string) (*Store, error) {
	db, err := bbolt.Open(path, 0o600, &bbolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrOpen, path, err)
	}

	err = db.Update(migrate)
	if err != nil {
		closeErr := db.Close()

		return nil, fmt.Errorf("%w: %s: %w", ErrOpen, path, errors.Join(err, closeErr))
	}

	return &Store{db: db, now: time.Now}, nil
}

// migrate creates the buckets and drops entries of other schema versions.
func migrate(tx *bbolt.Tx) error {
	meta, err := tx.CreateBucketIfNotExists(bucketMeta)
	if err != nil {
		return fmt.Errorf("create bucket %s: %w", bucketMeta, err)
	}

	var version int

	data := meta.Get(keySchemaVersion)
	if data != nil {
		err = json.Unmarshal(data, &version)
		if err != nil {
			version = 0
		}
	}

	if version != SchemaVersion && tx.Bucket(bucketOutputs) != nil {
		err = tx.DeleteBucket(bucketOutputs)
		if err != nil {
			return fmt.Errorf("reset bucket %s: %w", bucketOutputs, err)
		}
	}

	_, err = tx.CreateBucketIfNotExists(bucketOutputs)
	if err != nil {
		return fmt.Errorf("create bucket %s: %w", bucketOutputs, err)
	}

	versionData, err := json.Marshal(SchemaVersion)
	if err != nil {
		return err
	}

	return meta.Put(keySchemaVersion, versionData)
}

// Close closes the database.
func (s *Store) Close() error {
	err := s.db.Close()
	if err != nil {
		return fmt.Errorf("%w: close: %w", ErrStore, err)
	}

	return nil
}

// Get returns the entry stored for output. ok is false when there is none.
func (s *Store) Get(output string) (Entry, bool, error) {
	var (
		entry Entry
		ok    bool
	)

	err := s.db.View(func(tx *bbolt.Tx) error {
		data := tx.Bucket(bucketOutputs).Get([]byte(output))
		if data == nil {
			return nil
		}

		ok = true

		return json.Unmarshal(data, &entry)
	})
	if err != nil {
		return Entry{}, false, fmt.Errorf("%w: get %s: %w", ErrStore, output, err)
	}

	return entry, ok, nil
}

// Fresh reports whether output was generated from inputs with fingerprint
// fp and still exists on disk.
func (s *Store) Fresh(output string, fp Fingerprint) (bool, error) {
	entry, ok, err := s.Get(output)
	if err != nil || !ok || entry.Fingerprint != fp {
		return false, err
	}

	_, err = os.Stat(output)
	if errors.Is(err, fs.ErrNotExist) {
		return false, nil
	}

	if err != nil {
		return false, fmt.Errorf("%w: %w", ErrStore, err)
	}

	return true, nil
}

// Put records that output was generated from source with fingerprint fp.
func (s *Store) Put(output, source string, fp Fingerprint) error {
	data, err := json.Marshal(Entry{
		Fingerprint: fp,
		Source:      source,
		GeneratedAt: s.now().UTC(),
	})
	if err != nil {
		return fmt.Errorf("%w: encode entry: %w", ErrStore, err)
	}

	err = s.db.Update(func(tx *bbolt.Tx) error {
		return tx.Bucket(bucketOutputs).Put([]byte(output), data)
	})
	if err != nil {
		return fmt.Errorf("%w: put %s: %w", ErrStore, output, err)
	}

	return nil
}

// Delete removes the entry for output.
func (s *Store) Delete(output string) error {
	err := s.db.Update(func(tx *bbolt.Tx) error {
		return tx.Bucket(bucketOutputs).Delete([]byte(output))
	})
	if err != nil {
		return fmt.Errorf("%w: delete %s: %w", ErrStore, output, err)
	}

	return nil
}

// Len returns the number of stored entries.
func (s *Store) Len() (int, error) {
	var n int

	err := s.db.View(func(tx *bbolt.Tx) error {
		n = tx.Bucket(bucketOutputs).Stats().KeyN

		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("%w: %w", ErrStore, err)
	}

	return n, nil
}
