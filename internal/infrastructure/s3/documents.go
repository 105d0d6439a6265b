package s3infra

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/key-verify-api/internal/domain"
)

// DocumentStore keeps each document as a JSON object at {prefix}{path}.json.
//
// Patch is a read-merge-write and is not atomic: two concurrent patches of the
// same path race and the last PutObject wins.
type DocumentStore struct {
	client *s3.Client
	bucket string
	prefix string
}

// NewDocumentStore creates a DocumentStore for bucket. prefix may be empty.
func NewDocumentStore(client *s3.Client, bucket, prefix string) *DocumentStore {
	return &DocumentStore{client: client, bucket: bucket, prefix: prefix}
}

// Get returns the document at path, or nil when the object does not exist.
func (s *DocumentStore) Get(ctx context.Context, path string) (domain.Document, error) {
	out, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(objectKey(s.prefix, path)),
	})
	if err != nil {
		var nsk *types.NoSuchKey
		if errors.As(err, &nsk) {
			return nil, nil
		}
		return nil, fmt.Errorf("s3 get object %s: %w: %w", path, domain.ErrStoreUnavailable, err)
	}
	defer out.Body.Close()

	body, err := io.ReadAll(out.Body)
	if err != nil {
		return nil, fmt.Errorf("s3 read object %s: %w: %w", path, domain.ErrStoreUnavailable, err)
	}
	return decodeDocument(body)
}

// Patch shallow-merges doc into the stored object and writes it back.
func (s *DocumentStore) Patch(ctx context.Context, path string, doc domain.Document) error {
	current, err := s.Get(ctx, path)
	if err != nil {
		return err
	}
	payload, err := json.Marshal(merge(current, doc))
	if err != nil {
		return fmt.Errorf("s3 marshal %s: %w", path, err)
	}
	_, err = s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(objectKey(s.prefix, path)),
		Body:        bytes.NewReader(payload),
		ContentType: aws.String("application/json"),
	})
	if err != nil {
		return fmt.Errorf("s3 put object %s: %w: %w", path, domain.ErrStoreUnavailable, err)
	}
	return nil
}

func objectKey(prefix, path string) string {
	if prefix != "" && !strings.HasSuffix(prefix, "/") {
		prefix += "/"
	}
	return prefix + strings.Trim(path, "/") + ".json"
}

// decodeDocument treats a JSON null body as an absent document.
func decodeDocument(body []byte) (domain.Document, error) {
	var v any
	if err := json.Unmarshal(body, &v); err != nil {
		return nil, fmt.Errorf("decode object: %v: %w", err, domain.ErrMalformedDocument)
	}
	switch doc := v.(type) {
	case nil:
		return nil, nil
	case map[string]any:
		return domain.Document(doc), nil
	default:
		return nil, fmt.Errorf("expected object, got %T: %w", v, domain.ErrMalformedDocument)
	}
}

// merge returns base with every field of patch applied on top.
func merge(base, patch domain.Document) domain.Document {
	out := make(domain.Document, len(base)+len(patch))
	for k, v := range base {
		out[k] = v
	}
	for k, v := range patch {
		out[k] = v
	}
	return out
}
