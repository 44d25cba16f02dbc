// Package s3store is a remote-object storage.Adapter backed by S3 (or an
// S3-compatible service), for off-device durability across devices.
package s3store

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"

	"github.com/aeonsync/core/pkg/storage"
)

// snapshotObject is the single object holding the whole persisted
// record set, keyed by Prefix+"snapshot.json".
type snapshotObject struct {
	Records []storage.Record `json:"records"`
}

// Store persists the queue's snapshot as a single JSON object under a
// configurable bucket/prefix.
type Store struct {
	client *s3.Client
	bucket string
	prefix string
}

// New constructs a Store using the default AWS credential chain.
func New(ctx context.Context, bucket, prefix, region string) (*Store, error) {
	cfg, err := config.LoadDefaultConfig(ctx, config.WithRegion(region))
	if err != nil {
		return nil, fmt.Errorf("s3store: load aws config: %w", err)
	}
	if !strings.HasSuffix(prefix, "/") && prefix != "" {
		prefix += "/"
	}
	return &Store{client: s3.NewFromConfig(cfg), bucket: bucket, prefix: prefix}, nil
}

func (s *Store) snapshotKey() string {
	return s.prefix + "snapshot.json"
}

func (s *Store) Snapshot(ctx context.Context, records []storage.Record) error {
	body, err := json.Marshal(snapshotObject{Records: records})
	if err != nil {
		return fmt.Errorf("s3store: marshal snapshot: %w", err)
	}
	_, err = s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(s.snapshotKey()),
		Body:   bytes.NewReader(body),
	})
	if err != nil {
		return fmt.Errorf("s3store: put snapshot: %w", err)
	}
	return nil
}

func (s *Store) Restore(ctx context.Context) ([]storage.Record, error) {
	out, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(s.snapshotKey()),
	})
	if err != nil {
		var nsk *types.NoSuchKey
		if errors.As(err, &nsk) {
			return nil, nil
		}
		return nil, fmt.Errorf("s3store: get snapshot: %w", err)
	}
	defer out.Body.Close()

	var snap snapshotObject
	if err := json.NewDecoder(out.Body).Decode(&snap); err != nil {
		return nil, fmt.Errorf("s3store: decode snapshot: %w", err)
	}
	return snap.Records, nil
}

// Delete removes a single record from S3's perspective by rewriting the
// snapshot without it; S3 has no notion of per-record deletion within
// the single snapshot object this adapter uses.
func (s *Store) Delete(ctx context.Context, id string) error {
	records, err := s.Restore(ctx)
	if err != nil {
		return err
	}
	filtered := records[:0]
	for _, r := range records {
		if r.ID != id {
			filtered = append(filtered, r)
		}
	}
	return s.Snapshot(ctx, filtered)
}

func (s *Store) Close() error { return nil }
