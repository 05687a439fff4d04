// Package pinning records content digests of previously seen entity
// descriptions and detects silent drift between scans ("rug pulls").
// Records live in a key→value store with two buckets: pins (the rolling
// baseline, overwritten every scan) and whitelist (operator-approved
// digests, mutated only by explicit action).
package pinning

import "errors"

// ErrNotFound is returned by Store.Get when the key has no record.
var ErrNotFound = errors.New("not found")

// Bucket names used by the pinner.
const (
	BucketPins      = "pins"
	BucketWhitelist = "whitelist"
)

// Store is the key→value contract the pinner relies on. The file
// backend is the default; the Badger backend serves installations with
// thousands of entities.
type Store interface {
	Put(bucket, key string, value []byte) error
	Get(bucket, key string) ([]byte, error)
	ForEach(bucket string, fn func(key, value []byte) error) error
	Delete(bucket, key string) error
	Close() error
}
