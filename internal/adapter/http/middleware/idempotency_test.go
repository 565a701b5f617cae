package middleware

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/rs/zerolog"
	"go.uber.org/mock/gomock"

	"github.com/iho/gobudget/internal/infrastructure/metrics"
	"github.com/iho/gobudget/internal/usecase/mocks"
)

type fakeIdempotencyStore struct {
	checkAndSetFn func(ctx context.Context, key string, response []byte, ttl time.Duration) (bool, []byte, error)
	updateFn      func(ctx context.Context, key string, response []byte, ttl time.Duration) error
	deleteFn      func(ctx context.Context, key string) error
}

func (f *fakeIdempotencyStore) CheckAndSet(ctx context.Context, key string, response []byte, ttl time.Duration) (bool, []byte, error) {
	if f.checkAndSetFn != nil {
		return f.checkAndSetFn(ctx, key, response, ttl)
	}
	return false, nil, nil
}

func (f *fakeIdempotencyStore) Update(ctx context.Context, key string, response []byte, ttl time.Duration) error {
	if f.updateFn != nil {
		return f.updateFn(ctx, key, response, ttl)
	}
	return nil
}

func (f *fakeIdempotencyStore) Delete(ctx context.Context, key string) error {
	if f.deleteFn != nil {
		return f.deleteFn(ctx, key)
	}
	return nil
}

func newIdempotencyMiddleware(store *fakeIdempotencyStore) (*IdempotencyMiddleware, *metrics.Metrics) {
	m := metrics.New(prometheus.NewRegistry())
	return NewIdempotencyMiddleware(store, time.Hour, m, zerolog.Nop()), m
}

func TestIdempotencyMiddleware_StoreErrorFailsRequest(t *testing.T) {
	var called bool
	store := &fakeIdempotencyStore{
		checkAndSetFn: func(ctx context.Context, key string, response []byte, ttl time.Duration) (bool, []byte, error) {
			return false, nil, context.DeadlineExceeded
		},
	}
	mw, _ := newIdempotencyMiddleware(store)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/expenses", bytes.NewBufferString(`{}`))
	req.Header.Set(IdempotencyKeyHeader, "key-err")
	rr := httptest.NewRecorder()

	mw.Wrap(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	})).ServeHTTP(rr, req)

	if called {
		t.Fatalf("handler should not be called when store errors")
	}

	if rr.Code != http.StatusInternalServerError {
		t.Fatalf("expected status 500, got %d", rr.Code)
	}
}

func TestIdempotencyMiddleware_ReleasesKeyOnFailure(t *testing.T) {
	var updated bool
	var released string
	store := &fakeIdempotencyStore{
		updateFn: func(ctx context.Context, key string, response []byte, ttl time.Duration) error {
			updated = true
			return nil
		},
		deleteFn: func(ctx context.Context, key string) error {
			released = key
			return nil
		},
	}
	mw, _ := newIdempotencyMiddleware(store)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/expenses", bytes.NewBufferString(`{}`))
	req.Header.Set(IdempotencyKeyHeader, "key-fail")
	rr := httptest.NewRecorder()

	mw.Wrap(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
	})).ServeHTTP(rr, req)

	if updated {
		t.Fatalf("expected error responses not to be cached")
	}
	if released != "POST:/api/v1/expenses:key-fail" {
		t.Fatalf("expected key to be released, got %q", released)
	}
}

func TestIdempotencyMiddleware_SkipsNonMutatingRequests(t *testing.T) {
	store := &fakeIdempotencyStore{
		checkAndSetFn: func(ctx context.Context, key string, response []byte, ttl time.Duration) (bool, []byte, error) {
			t.Fatalf("store should not be consulted for GET")
			return false, nil, nil
		},
	}
	mw, _ := newIdempotencyMiddleware(store)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/expenses", nil)
	req.Header.Set(IdempotencyKeyHeader, "key-get")
	rr := httptest.NewRecorder()

	called := false
	mw.Wrap(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	})).ServeHTTP(rr, req)

	if !called {
		t.Fatalf("expected next handler to be called")
	}
}

func TestIdempotencyMiddleware_ReplaysCachedResponse(t *testing.T) {
	store := &fakeIdempotencyStore{
		checkAndSetFn: func(ctx context.Context, key string, response []byte, ttl time.Duration) (bool, []byte, error) {
			return true, []byte(`{"status":201,"body":{"cached":true}}`), nil
		},
	}
	mw, m := newIdempotencyMiddleware(store)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/expenses", bytes.NewBufferString(`{}`))
	req.Header.Set(IdempotencyKeyHeader, "key-123")
	rr := httptest.NewRecorder()

	mw.Wrap(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatalf("handler should not be called when cached response exists")
	})).ServeHTTP(rr, req)

	if rr.Header().Get(IdempotencyReplayHeader) != "true" {
		t.Fatalf("expected X-Idempotency-Replay header to be set")
	}
	if rr.Code != http.StatusCreated {
		t.Fatalf("expected replayed status 201, got %d", rr.Code)
	}
	if got := rr.Body.String(); got != `{"cached":true}` {
		t.Fatalf("unexpected cached body: %s", got)
	}
	if got := testutil.ToFloat64(m.IdempotencyReplays); got != 1 {
		t.Fatalf("expected one replay, got %v", got)
	}
}

func TestIdempotencyMiddleware_InFlightConflict(t *testing.T) {
	store := &fakeIdempotencyStore{
		checkAndSetFn: func(ctx context.Context, key string, response []byte, ttl time.Duration) (bool, []byte, error) {
			return true, nil, nil
		},
	}
	mw, _ := newIdempotencyMiddleware(store)

	req := httptest.NewRequest(http.MethodPut, "/api/v1/categories/c1/goal", bytes.NewBufferString(`{}`))
	req.Header.Set(IdempotencyKeyHeader, "key-busy")
	rr := httptest.NewRecorder()

	mw.Wrap(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatalf("handler should not run while the key is in flight")
	})).ServeHTTP(rr, req)

	if rr.Code != http.StatusConflict {
		t.Fatalf("expected 409, got %d", rr.Code)
	}
}

func TestIdempotencyMiddleware_StoresSuccessfulResponse(t *testing.T) {
	var updatedBody []byte
	var ttlSeen time.Duration
	store := &fakeIdempotencyStore{
		updateFn: func(ctx context.Context, key string, response []byte, ttl time.Duration) error {
			updatedBody = append([]byte(nil), response...)
			ttlSeen = ttl
			return nil
		},
	}
	mw, _ := newIdempotencyMiddleware(store)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/expenses", bytes.NewBufferString(`{}`))
	req.Header.Set(IdempotencyKeyHeader, "key-456")
	rr := httptest.NewRecorder()

	mw.Wrap(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"ok":true}`))
	})).ServeHTTP(rr, req)

	if rr.Code != http.StatusCreated {
		t.Fatalf("unexpected status code: %d", rr.Code)
	}
	if string(updatedBody) != `{"status":201,"body":{"ok":true}}` {
		t.Fatalf("unexpected stored payload: %s", updatedBody)
	}
	if ttlSeen != time.Hour {
		t.Fatalf("expected configured ttl, got %v", ttlSeen)
	}
}

func TestIdempotencyMiddleware_ScopesKeyByRoute(t *testing.T) {
	ctrl := gomock.NewController(t)
	store := mocks.NewMockIdempotencyStore(ctrl)

	const key = "PUT:/api/v1/categories/c1/goal:tab-1"
	gomock.InOrder(
		store.EXPECT().CheckAndSet(gomock.Any(), key, gomock.Nil(), 30*time.Minute).Return(false, nil, nil),
		store.EXPECT().Update(gomock.Any(), key, []byte(`{"status":200,"body":{"id":"c1"}}`), 30*time.Minute).Return(nil),
	)

	mw := NewIdempotencyMiddleware(store, 30*time.Minute, metrics.New(prometheus.NewRegistry()), zerolog.Nop())

	req := httptest.NewRequest(http.MethodPut, "/api/v1/categories/c1/goal", bytes.NewBufferString(`{"goal":"300"}`))
	req.Header.Set(IdempotencyKeyHeader, "tab-1")
	rr := httptest.NewRecorder()

	mw.Wrap(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"id":"c1"}`))
	})).ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("unexpected status code: %d", rr.Code)
	}
}

func TestIdempotencyMiddleware_ReleasesKeyOnPanic(t *testing.T) {
	var released string
	store := &fakeIdempotencyStore{
		deleteFn: func(ctx context.Context, key string) error {
			released = key
			return nil
		},
	}
	mw, _ := newIdempotencyMiddleware(store)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/expenses", bytes.NewBufferString(`{}`))
	req.Header.Set(IdempotencyKeyHeader, "key-panic")
	rr := httptest.NewRecorder()

	handler := Recovery(zerolog.Nop())(mw.Wrap(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("ledger exploded")
	})))
	handler.ServeHTTP(rr, req)

	if rr.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500 from recovery, got %d", rr.Code)
	}
	if released != "POST:/api/v1/expenses:key-panic" {
		t.Fatalf("expected key to be released after panic, got %q", released)
	}
}
