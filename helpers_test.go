package gymdesk

import (
	"encoding/base64"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/MrEthical07/gymdesk/jwt"
	"github.com/MrEthical07/gymdesk/storage"
)

var testSecret = []byte("0123456789abcdef0123456789abcdef")

func mintToken(t *testing.T, role, gymID string) string {
	t.Helper()
	signer, err := jwt.NewSigner(jwt.Config{SigningMethod: jwt.MethodHS256, PrivateKey: testSecret})
	if err != nil {
		t.Fatalf("new signer: %v", err)
	}
	token, err := signer.Sign(jwt.Claims{
		SubjectID: "7",
		Email:     "a@b.com",
		Role:      role,
		GymID:     gymID,
	}, time.Hour)
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	return token
}

func rawToken(payload string) string {
	enc := base64.RawURLEncoding
	return enc.EncodeToString([]byte(`{"alg":"none"}`)) + "." + enc.EncodeToString([]byte(payload)) + ".sig"
}

type fakeBackend struct {
	srv *httptest.Server

	loginCalls atomic.Int64
	otherCalls atomic.Int64

	mu          sync.Mutex
	loginStatus int
	loginBody   string
	loginGate   chan struct{}
	routes      map[string]string
	seenAuth    []string
}

func newFakeBackend(t *testing.T) *fakeBackend {
	t.Helper()
	b := &fakeBackend{loginStatus: http.StatusOK, routes: map[string]string{}}
	b.srv = httptest.NewServer(http.HandlerFunc(b.serve))
	t.Cleanup(b.srv.Close)
	return b
}

func (b *fakeBackend) respondLogin(status int, body string) {
	b.mu.Lock()
	b.loginStatus, b.loginBody = status, body
	b.mu.Unlock()
}

func (b *fakeBackend) route(path, body string) {
	b.mu.Lock()
	b.routes[path] = body
	b.mu.Unlock()
}

func (b *fakeBackend) lastAuth() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	if len(b.seenAuth) == 0 {
		return ""
	}
	return b.seenAuth[len(b.seenAuth)-1]
}

func (b *fakeBackend) serve(w http.ResponseWriter, r *http.Request) {
	b.mu.Lock()
	b.seenAuth = append(b.seenAuth, r.Header.Get("Authorization"))
	status, body, gate := b.loginStatus, b.loginBody, b.loginGate
	routeBody, routed := b.routes[r.URL.Path]
	b.mu.Unlock()

	w.Header().Set("Content-Type", "application/json")
	if r.URL.Path == "/api/auth/login" {
		b.loginCalls.Add(1)
		if gate != nil {
			<-gate
		}
		w.WriteHeader(status)
		w.Write([]byte(body))
		return
	}

	b.otherCalls.Add(1)
	if !routed {
		w.WriteHeader(http.StatusNotFound)
		w.Write([]byte(`{"message":"missing"}`))
		return
	}
	w.Write([]byte(routeBody))
}

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

type testEngine struct {
	*Engine
	backend *fakeBackend
	store   *storage.MemoryStore
	clock   *fakeClock
}

func newTestEngine(t *testing.T, mutate func(*Builder)) *testEngine {
	t.Helper()
	backend := newFakeBackend(t)
	clock := &fakeClock{now: time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)}

	cfg := DefaultConfig()
	cfg.API.BaseURL = backend.srv.URL
	store, err := storage.NewMemoryStore(cfg.StorageKeys(), storage.WithClock(clock.Now))
	if err != nil {
		t.Fatalf("memory store: %v", err)
	}

	builder := New().
		WithConfig(cfg).
		WithStore(store).
		WithHTTPClient(backend.srv.Client()).
		WithMetricsEnabled(true)
	if mutate != nil {
		mutate(builder)
	}
	engine, err := builder.Build()
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	t.Cleanup(engine.Close)

	return &testEngine{Engine: engine, backend: backend, store: store, clock: clock}
}
