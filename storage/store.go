// Package storage persists flat crosswalk documents in a NATS JetStream
// key-value bucket, keyed by the id of their root resource.
package storage

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"slices"

	"github.com/nats-io/nats.go/jetstream"

	"github.com/c360studio/crosswalk/document"
	"github.com/c360studio/crosswalk/graph"
	"github.com/c360studio/crosswalk/vocabulary/codemeta"
)

// DefaultBucket is the KV bucket used when none is configured.
const DefaultBucket = "CROSSWALK_DOCUMENTS"

// Store reads and writes documents in a KV bucket.
type Store struct {
	kv     jetstream.KeyValue
	vocab  *codemeta.Vocabulary
	logger *slog.Logger
}

// Option configures a Store.
type Option func(*Store)

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(s *Store) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithVocabulary sets the vocabulary used to compact stored documents.
func WithVocabulary(v *codemeta.Vocabulary) Option {
	return func(s *Store) {
		if v != nil {
			s.vocab = v
		}
	}
}

// NewStore opens the bucket, creating it if it doesn't exist. An empty
// bucket name uses DefaultBucket.
func NewStore(ctx context.Context, js jetstream.JetStream, bucket string, opts ...Option) (*Store, error) {
	if bucket == "" {
		bucket = DefaultBucket
	}
	kv, err := getOrCreateBucket(ctx, js, bucket)
	if err != nil {
		return nil, fmt.Errorf("open bucket %s: %w", bucket, err)
	}

	s := &Store{
		kv:     kv,
		vocab:  codemeta.NewVocabulary(),
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

func getOrCreateBucket(ctx context.Context, js jetstream.JetStream, name string) (jetstream.KeyValue, error) {
	kv, err := js.KeyValue(ctx, name)
	if err == nil {
		return kv, nil
	}
	if !errors.Is(err, jetstream.ErrBucketNotFound) {
		return nil, err
	}
	return js.CreateKeyValue(ctx, jetstream.KeyValueConfig{
		Bucket:      name,
		Description: "Crosswalk flat JSON-LD documents",
		History:     5, // Keep last 5 revisions
	})
}

// Key returns the KV key for a root id.
func Key(rootID string) string {
	return base64.RawURLEncoding.EncodeToString([]byte(rootID))
}

// RootID decodes a KV key back into the root id.
func RootID(key string) (string, error) {
	b, err := base64.RawURLEncoding.DecodeString(key)
	if err != nil {
		return "", fmt.Errorf("decode key %q: %w: %w", key, ErrInvalidKey, err)
	}
	return string(b), nil
}

// Put stores g as the document for rootID and returns the new revision.
func (s *Store) Put(ctx context.Context, rootID string, g *graph.Graph) (uint64, error) {
	if rootID == "" {
		return 0, fmt.Errorf("put document: %w", ErrInvalidKey)
	}
	data, err := json.Marshal(document.CompactGraph(document.FromGraph(g), s.vocab))
	if err != nil {
		return 0, fmt.Errorf("marshal document %s: %w", rootID, err)
	}

	rev, err := s.kv.Put(ctx, Key(rootID), data)
	if err != nil {
		return 0, fmt.Errorf("store document %s: %w", rootID, err)
	}
	s.logger.Debug("Stored document", "root", rootID, "triples", g.Len(), "revision", rev)
	return rev, nil
}

// Get loads the document stored for rootID.
func (s *Store) Get(ctx context.Context, rootID string) (*graph.Graph, error) {
	if rootID == "" {
		return nil, fmt.Errorf("get document: %w", ErrInvalidKey)
	}
	entry, err := s.kv.Get(ctx, Key(rootID))
	if err != nil {
		if errors.Is(err, jetstream.ErrKeyNotFound) {
			return nil, fmt.Errorf("get document %s: %w", rootID, ErrNotFound)
		}
		return nil, fmt.Errorf("get document %s: %w", rootID, err)
	}

	nodes, err := document.ParseJSONLD(bytes.NewReader(entry.Value()), s.vocab)
	if err != nil {
		return nil, fmt.Errorf("decode document %s: %w", rootID, err)
	}
	return document.ToGraph(nodes), nil
}

// Delete removes the document for rootID.
func (s *Store) Delete(ctx context.Context, rootID string) error {
	if _, err := s.kv.Get(ctx, Key(rootID)); err != nil {
		if errors.Is(err, jetstream.ErrKeyNotFound) {
			return fmt.Errorf("delete document %s: %w", rootID, ErrNotFound)
		}
		return fmt.Errorf("delete document %s: %w", rootID, err)
	}
	if err := s.kv.Delete(ctx, Key(rootID)); err != nil {
		return fmt.Errorf("delete document %s: %w", rootID, err)
	}
	return nil
}

// List returns the root ids of all stored documents, sorted.
func (s *Store) List(ctx context.Context) ([]string, error) {
	lister, err := s.kv.ListKeys(ctx)
	if err != nil {
		if errors.Is(err, jetstream.ErrNoKeysFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("list document keys: %w", err)
	}

	var ids []string
	for key := range lister.Keys() {
		id, err := RootID(key)
		if err != nil {
			s.logger.Warn("Skipping undecodable key", "key", key, "error", err)
			continue
		}
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return ids, nil
}
