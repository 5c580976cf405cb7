package metastore

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/your-org/imageflow/pkg/storage/objectstore"
)

// ObjectStore persists metadata records as JSON sidecar objects in the same
// bucket the pipeline writes processed images to, under a dedicated prefix.
type ObjectStore struct {
	client    objectstore.Client
	prefix    string
	opTimeout time.Duration
}

// NewObjectStore wraps an object store client as a metadata store.
func NewObjectStore(client objectstore.Client, prefix string, opTimeout time.Duration) *ObjectStore {
	return &ObjectStore{client: client, prefix: prefix, opTimeout: opTimeout}
}

func (s *ObjectStore) objectKey(key string) string {
	return s.prefix + key + ".json"
}

// Get fetches and decodes the record for key.
func (s *ObjectStore) Get(ctx context.Context, key string) (*Metadata, error) {
	ctx, cancel := context.WithTimeout(ctx, s.opTimeout)
	defer cancel()

	rc, err := s.client.Get(ctx, s.objectKey(key))
	if err != nil {
		if errors.Is(err, objectstore.ErrNotExist) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get metadata object: %w", err)
	}
	defer rc.Close()

	raw, err := io.ReadAll(rc)
	if err != nil {
		return nil, fmt.Errorf("read metadata object: %w", err)
	}

	md := &Metadata{}
	if err := json.Unmarshal(raw, md); err != nil {
		return nil, fmt.Errorf("decode metadata object: %w", err)
	}
	return md, nil
}

// Put encodes and stores the record, overwriting any previous version.
func (s *ObjectStore) Put(ctx context.Context, md *Metadata) error {
	ctx, cancel := context.WithTimeout(ctx, s.opTimeout)
	defer cancel()

	raw, err := json.Marshal(md)
	if err != nil {
		return fmt.Errorf("encode metadata object: %w", err)
	}

	reader := bytes.NewReader(raw)
	if err := s.client.Put(ctx, s.objectKey(md.Key), reader, int64(len(raw)), "application/json"); err != nil {
		return fmt.Errorf("put metadata object: %w", err)
	}
	return nil
}
