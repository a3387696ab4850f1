package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"dmchat/internal/app/auth"
	"dmchat/internal/app/chat"
	"dmchat/internal/app/presence"
	"dmchat/internal/app/storage"
	"dmchat/internal/app/store/sqlite"
	"dmchat/internal/app/user"
	"dmchat/internal/configs"
	"dmchat/internal/pkg/auth/jwt"
	"dmchat/internal/pkg/pow"
)

const testPublicURL = "https://cdn.dmchat.test"

// memStorage is an in-memory storage.StorageService.
type memStorage struct {
	mu      sync.Mutex
	objects map[string][]byte
	deleted chan string
}

var _ storage.StorageService = (*memStorage)(nil)

func newMemStorage() *memStorage {
	return &memStorage{
		objects: make(map[string][]byte),
		deleted: make(chan string, 16),
	}
}

func (m *memStorage) Upload(_ context.Context, key, _ string, body []byte) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.objects[key] = body
	return testPublicURL + "/" + key, nil
}

func (m *memStorage) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	delete(m.objects, key)
	m.mu.Unlock()

	m.deleted <- key
	return nil
}

func (m *memStorage) KeyFromURL(publicURL string) (string, bool) {
	key, ok := strings.CutPrefix(publicURL, testPublicURL+"/")
	return key, ok && key != ""
}

type testServer struct {
	*httptest.Server
	deps    *AppDeps
	storage *memStorage
}

type serverOption func(ctx context.Context, d *AppDeps)

func withoutStorage() serverOption {
	return func(_ context.Context, d *AppDeps) { d.Storage = nil }
}

func withPowDifficulty(difficulty int) serverOption {
	return func(ctx context.Context, d *AppDeps) { d.Pow = pow.NewPoWManager(ctx, difficulty) }
}

func newTestServer(t *testing.T, opts ...serverOption) *testServer {
	t.Helper()

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	db, err := sqlite.Open(ctx, ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	tokens, err := jwt.NewTokenService("handler-test-secret", 0)
	require.NoError(t, err)

	registry := presence.NewRegistry()
	hub := chat.NewHub(registry)
	go hub.Run()
	t.Cleanup(hub.Shutdown)

	mem := newMemStorage()
	deps := &AppDeps{
		Config: &configs.AppConfig{
			Environment: configs.EnvDevelopment,
			JWTSecret:   "handler-test-secret",
		},
		Store:      db,
		Tokens:     tokens,
		Guard:      auth.NewGuard(tokens, db.Users()),
		Registry:   registry,
		Hub:        hub,
		Dispatcher: chat.NewDispatcher(registry),
		Storage:    mem,
		Pow:        pow.NewPoWManager(ctx, 0),
	}

	for _, opt := range opts {
		opt(ctx, deps)
	}

	srv := httptest.NewServer(Router(ctx, deps))
	t.Cleanup(srv.Close)

	return &testServer{Server: srv, deps: deps, storage: mem}
}

// envelope mirrors resp.JSONResponse with a raw payload.
type envelope struct {
	Code    int             `json:"code"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

// apiClient is one browser: it keeps its own cookie jar.
type apiClient struct {
	t    *testing.T
	base string
	http *http.Client
}

func (s *testServer) client(t *testing.T) *apiClient {
	t.Helper()

	jar, err := cookiejar.New(nil)
	require.NoError(t, err)

	return &apiClient{t: t, base: s.URL, http: &http.Client{Jar: jar, Timeout: 5 * time.Second}}
}

func (c *apiClient) do(method, path string, body any, headers ...string) (*http.Response, envelope) {
	c.t.Helper()

	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(c.t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	r, err := http.NewRequest(method, c.base+path, reader)
	require.NoError(c.t, err)
	if body != nil {
		r.Header.Set("Content-Type", "application/json")
	}
	for i := 0; i+1 < len(headers); i += 2 {
		r.Header.Set(headers[i], headers[i+1])
	}

	res, err := c.http.Do(r)
	require.NoError(c.t, err)
	defer res.Body.Close()

	var env envelope
	require.NoError(c.t, json.NewDecoder(res.Body).Decode(&env))
	return res, env
}

func decode[T any](t *testing.T, raw json.RawMessage) T {
	t.Helper()

	var v T
	require.NoError(t, json.Unmarshal(raw, &v))
	return v
}

func (c *apiClient) signup(fullName, email, password string) user.Profile {
	c.t.Helper()

	res, env := c.do(http.MethodPost, "/api/auth/signup", SignupInput{
		FullName: fullName,
		Email:    email,
		Password: password,
	})
	require.Equal(c.t, http.StatusCreated, res.StatusCode, env.Message)
	return decode[user.Profile](c.t, env.Data)
}
