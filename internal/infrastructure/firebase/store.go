package firebase

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/key-verify-api/internal/config"
	"github.com/key-verify-api/internal/domain"
)

// maxBodyBytes caps how much of a store response is read.
const maxBodyBytes = 4 << 20

// Store reads and merge-writes documents through the Realtime Database REST API.
// A path "a/b" maps to {baseURL}/a/b.json.
type Store struct {
	baseURL string
	auth    string
	client  *http.Client
}

// NewStore builds a Store with a pooled transport bounded by cfg.StoreTimeout.
func NewStore(cfg *config.Config) *Store {
	transport := &http.Transport{
		Proxy: http.ProxyFromEnvironment,
		DialContext: (&net.Dialer{
			Timeout:   cfg.StoreTimeout,
			KeepAlive: 30 * time.Second,
		}).DialContext,
		ForceAttemptHTTP2:   true,
		MaxIdleConns:        100,
		MaxIdleConnsPerHost: 100,
		IdleConnTimeout:     90 * time.Second,
		TLSHandshakeTimeout: cfg.StoreTimeout,
	}
	return NewStoreWithClient(cfg.FirebaseURL, cfg.FirebaseAuth, &http.Client{
		Transport: transport,
		Timeout:   cfg.StoreTimeout,
	})
}

// NewStoreWithClient builds a Store on an existing client.
func NewStoreWithClient(baseURL, auth string, client *http.Client) *Store {
	return &Store{baseURL: strings.TrimRight(baseURL, "/"), auth: auth, client: client}
}

// Get returns the document at path, or nil when nothing is stored there.
func (s *Store) Get(ctx context.Context, path string) (domain.Document, error) {
	u, err := s.url(path)
	if err != nil {
		return nil, fmt.Errorf("firebase get: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, fmt.Errorf("firebase get %s: %w", path, err)
	}
	body, err := s.do(req)
	if err != nil {
		return nil, fmt.Errorf("firebase get %s: %w", path, err)
	}

	var v any
	if err := json.Unmarshal(body, &v); err != nil {
		return nil, fmt.Errorf("firebase get %s: decode: %v: %w", path, err, domain.ErrMalformedDocument)
	}
	switch doc := v.(type) {
	case nil:
		return nil, nil
	case map[string]any:
		return domain.Document(doc), nil
	default:
		return nil, fmt.Errorf("firebase get %s: expected object, got %T: %w", path, v, domain.ErrMalformedDocument)
	}
}

// Patch merge-writes doc at path. Children not named in doc are left untouched.
func (s *Store) Patch(ctx context.Context, path string, doc domain.Document) error {
	u, err := s.url(path)
	if err != nil {
		return fmt.Errorf("firebase patch: %w", err)
	}
	payload, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("firebase patch %s: marshal: %w", path, err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPatch, u, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("firebase patch %s: %w", path, err)
	}
	req.Header.Set("Content-Type", "application/json")
	if _, err := s.do(req); err != nil {
		return fmt.Errorf("firebase patch %s: %w", path, err)
	}
	return nil
}

// do sends req and returns the body of a 2xx response. Transport failures and
// non-2xx statuses wrap domain.ErrStoreUnavailable.
func (s *Store) do(req *http.Request) ([]byte, error) {
	req.Header.Set("Accept", "application/json")
	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrStoreUnavailable, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, fmt.Errorf("%w: read body: %w", domain.ErrStoreUnavailable, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("%w: status %d: %s", domain.ErrStoreUnavailable, resp.StatusCode, firebaseError(body))
	}
	return body, nil
}

// url maps path to its REST address. Every segment must be a valid key so a
// path can never climb out of its parent node.
func (s *Store) url(path string) (string, error) {
	segs := strings.Split(strings.Trim(path, "/"), "/")
	for i, seg := range segs {
		if !domain.ValidKey(seg) {
			return "", fmt.Errorf("%q: %w", path, domain.ErrInvalidPath)
		}
		segs[i] = url.PathEscape(seg)
	}
	u := s.baseURL + "/" + strings.Join(segs, "/") + ".json"
	if s.auth != "" {
		u += "?" + url.Values{"auth": {s.auth}}.Encode()
	}
	return u, nil
}

// firebaseError extracts the {"error": "..."} message the REST API returns.
func firebaseError(body []byte) string {
	var e struct {
		Error string `json:"error"`
	}
	if json.Unmarshal(body, &e) == nil && e.Error != "" {
		return e.Error
	}
	if len(body) > 200 {
		body = body[:200]
	}
	return string(body)
}
