//go:build linux

package cgroup

import (
	"encoding/json"
	"fmt"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	bolt "go.etcd.io/bbolt"
)

// leaseBucket is the single bbolt bucket holding one record per slot name.
var leaseBucket = []byte("leases")

// lease is the persisted record for an in-use slot.
type lease struct {
	RunID    string    `json:"run_id"`
	LeasedAt time.Time `json:"leased_at"`
}

// Pool leases a bounded set of pre-provisioned cgroup directories
// ("slots") out of a single parent directory, so repeated invocations
// reuse the same small set of kernel cgroup directories instead of
// creating and tearing one down per call. Persisted in a bbolt database
// so the lease table survives process restarts, the same way the
// teacher's IP allocator persists its leases.
type Pool struct {
	db     *bolt.DB
	parent string
	slots  int
}

// NewPool opens (creating if absent) a lease database at dbPath for a
// pool of n slot directories under parentPath.
func NewPool(dbPath, parentPath string, n int) (*Pool, error) {
	db, err := bolt.Open(dbPath, 0o600, &bolt.Options{Timeout: 2 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("open lease db %s: %w", dbPath, err)
	}
	if err := db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(leaseBucket)
		return err
	}); err != nil {
		db.Close()
		return nil, fmt.Errorf("init lease bucket: %w", err)
	}
	return &Pool{db: db, parent: parentPath, slots: n}, nil
}

// Close releases the underlying lease database.
func (p *Pool) Close() error {
	return p.db.Close()
}

// Lease finds a free slot and records it as held by runID, returning the
// slot name and its cgroup directory path. It fails if every slot is
// currently leased.
func (p *Pool) Lease(runID uuid.UUID) (slot, dirPath string, err error) {
	err = p.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(leaseBucket)
		for i := 0; i < p.slots; i++ {
			name := slotName(i)
			if b.Get([]byte(name)) != nil {
				continue
			}
			rec := lease{RunID: runID.String(), LeasedAt: stampedNow()}
			data, err := json.Marshal(rec)
			if err != nil {
				return err
			}
			if err := b.Put([]byte(name), data); err != nil {
				return err
			}
			slot = name
			return nil
		}
		return fmt.Errorf("no free cgroup slot (pool size %d)", p.slots)
	})
	if err != nil {
		return "", "", err
	}
	return slot, filepath.Join(p.parent, slot), nil
}

// Release frees a previously leased slot, making it immediately available
// to the next Lease call.
func (p *Pool) Release(slot string) error {
	return p.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(leaseBucket)
		return b.Delete([]byte(slot))
	})
}

func slotName(i int) string {
	return fmt.Sprintf("slot-%d", i)
}

// stampedNow returns the time recorded as a new lease's LeasedAt.
func stampedNow() time.Time {
	return time.Now()
}
