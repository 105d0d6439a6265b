package firebase

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/key-verify-api/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeRTDB is a tiny stand-in for the Realtime Database REST API.
type fakeRTDB struct {
	mu      sync.Mutex
	nodes   map[string]map[string]any
	status  int
	lastURL string
}

func (f *fakeRTDB) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.lastURL = r.URL.String()
	if f.status != 0 {
		w.WriteHeader(f.status)
		_, _ = w.Write([]byte(`{"error":"Permission denied"}`))
		return
	}
	path := r.URL.Path
	switch r.Method {
	case http.MethodGet:
		_ = json.NewEncoder(w).Encode(f.nodes[path])
	case http.MethodPatch:
		var patch map[string]any
		body, _ := io.ReadAll(r.Body)
		if err := json.Unmarshal(body, &patch); err != nil {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		node := f.nodes[path]
		if node == nil {
			node = map[string]any{}
			f.nodes[path] = node
		}
		for k, v := range patch {
			node[k] = v
		}
		_ = json.NewEncoder(w).Encode(patch)
	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

func newFake(t *testing.T) (*fakeRTDB, *Store) {
	t.Helper()
	f := &fakeRTDB{nodes: map[string]map[string]any{}}
	srv := httptest.NewServer(f)
	t.Cleanup(srv.Close)
	return f, NewStoreWithClient(srv.URL+"/", "", srv.Client())
}

func TestGet_Missing_ReturnsNil(t *testing.T) {
	_, st := newFake(t)

	doc, err := st.Get(context.Background(), "tokens/K1")

	require.NoError(t, err)
	assert.Nil(t, doc)
}

func TestGet_ReturnsDocument(t *testing.T) {
	f, st := newFake(t)
	f.nodes["/tokens/K1.json"] = map[string]any{"status": "active", "token": "abc123"}

	doc, err := st.Get(context.Background(), "tokens/K1")

	require.NoError(t, err)
	assert.Equal(t, domain.Document{"status": "active", "token": "abc123"}, doc)
}

func TestPatch_MergesWithoutClobbering(t *testing.T) {
	f, st := newFake(t)
	f.nodes["/validated_users/U1.json"] = map[string]any{"key": "K0", "note": "keep me"}

	err := st.Patch(context.Background(), "validated_users/U1", domain.Document{"key": "K1", "userId": "U1"})
	require.NoError(t, err)

	doc, err := st.Get(context.Background(), "validated_users/U1")
	require.NoError(t, err)
	assert.Equal(t, "K1", doc["key"])
	assert.Equal(t, "U1", doc["userId"])
	assert.Equal(t, "keep me", doc["note"])
}

func TestGet_Non2xx_IsStoreUnavailable(t *testing.T) {
	f, st := newFake(t)
	f.status = http.StatusUnauthorized

	_, err := st.Get(context.Background(), "tokens/K1")

	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrStoreUnavailable))
	assert.ErrorContains(t, err, "Permission denied")
}

func TestPatch_Non2xx_IsStoreUnavailable(t *testing.T) {
	f, st := newFake(t)
	f.status = http.StatusInternalServerError

	err := st.Patch(context.Background(), "validated_users/U1", domain.Document{"key": "K1"})

	assert.True(t, errors.Is(err, domain.ErrStoreUnavailable))
}

func TestGet_NonObject_IsMalformed(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`"just a string"`))
	}))
	defer srv.Close()
	st := NewStoreWithClient(srv.URL, "", srv.Client())

	_, err := st.Get(context.Background(), "tokens/K1")

	assert.True(t, errors.Is(err, domain.ErrMalformedDocument))
}

func TestGet_InvalidJSON_IsMalformed(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`<html>`))
	}))
	defer srv.Close()
	st := NewStoreWithClient(srv.URL, "", srv.Client())

	_, err := st.Get(context.Background(), "tokens/K1")

	assert.True(t, errors.Is(err, domain.ErrMalformedDocument))
}

func TestGet_Unreachable_IsStoreUnavailable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()
	st := NewStoreWithClient(url, "", &http.Client{Timeout: time.Second})

	_, err := st.Get(context.Background(), "tokens/K1")

	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrStoreUnavailable))
}

func TestURL_EscapesSegmentsAndAddsAuth(t *testing.T) {
	st := NewStoreWithClient("https://db.example.app/", "s3cr3t", http.DefaultClient)

	u, err := st.url("tokens/a b")
	require.NoError(t, err)
	assert.Equal(t, "https://db.example.app/tokens/a%20b.json?auth=s3cr3t", u)

	u, err = st.url("validated_users/u?x")
	require.NoError(t, err)
	assert.Equal(t, "https://db.example.app/validated_users/u%3Fx.json?auth=s3cr3t", u)
}

func TestURL_RejectsSegmentsThatLeaveTheNode(t *testing.T) {
	st := NewStoreWithClient("https://db.example.app", "", http.DefaultClient)

	for _, p := range []string{"validated_users/../tokens/K2", "tokens/.", "tokens//K1", "tokens/K1.json", "tokens/K1#x"} {
		_, err := st.url(p)
		assert.True(t, errors.Is(err, domain.ErrInvalidPath), p)
	}
}

func TestPatch_TraversalPath_NeverReachesServer(t *testing.T) {
	f, st := newFake(t)
	f.nodes["/tokens/K2.json"] = map[string]any{"status": "active", "token": "secret"}

	err := st.Patch(context.Background(), "validated_users/../tokens/K2", domain.Document{"token": "abc123"})

	assert.True(t, errors.Is(err, domain.ErrInvalidPath))
	assert.Empty(t, f.lastURL)
	assert.Equal(t, "secret", f.nodes["/tokens/K2.json"]["token"])
}
