package pinning

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"
)

// FileStore keeps each bucket as one JSON document under a storage root.
// The whole document is loaded at open and rewritten on every mutation,
// acceptable at tens to low thousands of entities, and deliberately not
// designed for concurrent writers: scanners sharing a storage root must
// serialize externally.
type FileStore struct {
	root string

	mu   sync.Mutex
	docs map[string]map[string]json.RawMessage
}

// OpenFileStore loads all bucket documents under root. A missing or
// unreadable document is treated as an empty baseline rather than an
// error: a storage fault disables drift detection for that scan, it
// does not abort it.
func OpenFileStore(root string) (*FileStore, error) {
	if err := os.MkdirAll(root, 0o700); err != nil {
		return nil, fmt.Errorf("create storage root: %w", err)
	}
	s := &FileStore{
		root: root,
		docs: make(map[string]map[string]json.RawMessage),
	}
	for _, bucket := range []string{BucketPins, BucketWhitelist} {
		s.docs[bucket] = loadDocument(s.documentPath(bucket))
	}
	return s, nil
}

func (s *FileStore) documentPath(bucket string) string {
	return filepath.Join(s.root, bucket+".json")
}

// loadDocument parses one bucket file, returning an empty map on any
// failure.
func loadDocument(path string) map[string]json.RawMessage {
	doc := make(map[string]json.RawMessage)
	data, err := os.ReadFile(path)
	if err != nil {
		return doc
	}
	if err := json.Unmarshal(data, &doc); err != nil {
		return make(map[string]json.RawMessage)
	}
	return doc
}

func (s *FileStore) Put(bucket, key string, value []byte) error {
	if bucket == "" || key == "" {
		return fmt.Errorf("bucket and key are required")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.docs[bucket] == nil {
		s.docs[bucket] = make(map[string]json.RawMessage)
	}
	s.docs[bucket][key] = append(json.RawMessage(nil), value...)
	return s.persist(bucket)
}

func (s *FileStore) Get(bucket, key string) ([]byte, error) {
	if bucket == "" || key == "" {
		return nil, fmt.Errorf("bucket and key are required")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	value, ok := s.docs[bucket][key]
	if !ok {
		return nil, ErrNotFound
	}
	return append([]byte(nil), value...), nil
}

func (s *FileStore) ForEach(bucket string, fn func(key, value []byte) error) error {
	s.mu.Lock()
	doc := s.docs[bucket]
	keys := make([]string, 0, len(doc))
	for k := range doc {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	snapshot := make(map[string][]byte, len(doc))
	for _, k := range keys {
		snapshot[k] = append([]byte(nil), doc[k]...)
	}
	s.mu.Unlock()

	for _, k := range keys {
		if err := fn([]byte(k), snapshot[k]); err != nil {
			return err
		}
	}
	return nil
}

func (s *FileStore) Delete(bucket, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.docs[bucket][key]; !ok {
		return nil
	}
	delete(s.docs[bucket], key)
	return s.persist(bucket)
}

func (s *FileStore) Close() error { return nil }

// persist rewrites the bucket document atomically: full marshal, temp
// file, rename. Caller holds the lock.
func (s *FileStore) persist(bucket string) error {
	data, err := json.MarshalIndent(s.docs[bucket], "", "  ")
	if err != nil {
		return fmt.Errorf("encode %s document: %w", bucket, err)
	}
	path := s.documentPath(bucket)
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return fmt.Errorf("write %s document: %w", bucket, err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("replace %s document: %w", bucket, err)
	}
	return nil
}
