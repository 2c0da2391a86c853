package http

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/garyjia/surat-menyurat/internal/application/port"
	"github.com/garyjia/surat-menyurat/internal/application/service"
	"github.com/garyjia/surat-menyurat/internal/application/workflow"
	"github.com/garyjia/surat-menyurat/internal/domain/apperr"
	"github.com/garyjia/surat-menyurat/internal/domain/entity"
	"github.com/garyjia/surat-menyurat/internal/infrastructure/persistence/memory"
	"github.com/garyjia/surat-menyurat/internal/infrastructure/persistence/repository"
	"github.com/garyjia/surat-menyurat/internal/infrastructure/sheets"
)

type nopLogger struct{}

func (nopLogger) Info(string, ...interface{})  {}
func (nopLogger) Error(string, ...interface{}) {}

type plainHasher struct{}

func (plainHasher) Hash(pw string) (string, error) { return "h:" + pw, nil }
func (plainHasher) Compare(hash, pw string) bool   { return hash == "h:"+pw }

type stubWriter struct{}

func (stubWriter) WriteLetters(letters []*entity.Letter) ([]byte, error) {
	return []byte(fmt.Sprintf("%d letters", len(letters))), nil
}
func (stubWriter) ContentType() string { return "application/test" }

// quotaStore fails every call as if the spreadsheet quota were exhausted
type quotaStore struct{}

func (quotaStore) ReadAll(ctx context.Context, sheet string) ([]port.Row, error) {
	return nil, fmt.Errorf("read %s: %w", sheet, apperr.ErrRateLimited)
}
func (quotaStore) Append(ctx context.Context, sheet string, headers []string, row port.Row) error {
	return fmt.Errorf("append %s: %w", sheet, apperr.ErrRateLimited)
}
func (quotaStore) UpdateRow(ctx context.Context, sheet string, index int, headers []string, row port.Row) error {
	return fmt.Errorf("update %s: %w", sheet, apperr.ErrRateLimited)
}
func (quotaStore) EnsureSchema(ctx context.Context) error { return apperr.ErrRateLimited }

type testEnv struct {
	server *Server
	auth   service.AuthService
	users  port.UserRepository
}

func newTestEnv(t *testing.T, store port.TabularStore, bypass bool) *testEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)

	zl := zap.NewNop()
	log := nopLogger{}

	users := repository.NewUserRepository(store, zl)
	memberRepo := repository.NewMemberRepository(store, zl)
	letterRepo := repository.NewLetterRepository(store, users, memberRepo, zl)
	reads := repository.NewLetterReadRepository(store, zl)

	periods := service.NewPeriodService(repository.NewPeriodRepository(store, zl), log)
	members := service.NewMemberService(memberRepo, users, periods, log)
	letters := service.NewLetterService(letterRepo, reads, members, log)
	auth := service.NewAuthService(users, plainHasher{}, service.AuthConfig{
		JWTSecret:     "test-secret",
		AdminEmail:    "admin@example.org",
		AdminPassword: "admin-pass",
	}, log)

	services := Services{
		Auth:        auth,
		Users:       service.NewUserService(users, log),
		Periods:     periods,
		Departments: service.NewDepartmentService(repository.NewDepartmentRepository(store, zl), periods, log),
		Members:     members,
		Catalog: service.NewCatalogService(
			repository.NewAwardeeRepository(store, zl),
			repository.NewProgramRepository(store, zl),
			repository.NewTransactionRepository(store, zl),
			repository.NewTemplateRepository(store, zl),
		),
		Letters:   letters,
		Dashboard: service.NewDashboardService(letterRepo, reads, members, log),
		Archive:   service.NewArchiveService(letters, stubWriter{}, log),
		Workflow:  workflow.NewEngine(letterRepo, users, members),
		Setup:     store.EnsureSchema,
	}

	cfg := DefaultServerConfig()
	cfg.BypassAuth = bypass
	return &testEnv{server: NewServer(cfg, services, log), auth: auth, users: users}
}

func newMemoryEnv(t *testing.T) *testEnv {
	t.Helper()
	store := memory.NewStore()
	require.NoError(t, store.EnsureSchema(context.Background()))
	env := newTestEnv(t, store, false)

	for _, u := range []*entity.User{
		{ID: "u1", Name: "Sari", Email: "sari@example.org", Role: entity.RoleCreator, Status: entity.UserStatusActive, PasswordHash: "h:pw"},
		{ID: "u2", Name: "Budi", Email: "budi@example.org", Role: entity.RoleApprover, Status: entity.UserStatusActive, PasswordHash: "h:pw"},
	} {
		require.NoError(t, env.users.Create(context.Background(), u))
	}
	return env
}

func (e *testEnv) token(t *testing.T, actor entity.Actor) string {
	t.Helper()
	tok, err := e.auth.IssueToken(actor)
	require.NoError(t, err)
	return tok
}

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   string          `json:"error"`
}

func (e *testEnv) do(t *testing.T, method, path, token string, body interface{}) (int, envelope) {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	e.server.Router().ServeHTTP(w, req)

	var env envelope
	if w.Header().Get("Content-Type") != "application/test" {
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env), w.Body.String())
	}
	return w.Code, env
}

func TestHealthCheck(t *testing.T) {
	env := newMemoryEnv(t)
	code, body := env.do(t, http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusOK, code)
	assert.True(t, body.Success)
}

func TestAuthMiddleware(t *testing.T) {
	env := newMemoryEnv(t)

	code, body := env.do(t, http.MethodGet, "/api/letters", "", nil)
	assert.Equal(t, http.StatusUnauthorized, code)
	assert.False(t, body.Success)

	code, _ = env.do(t, http.MethodGet, "/api/letters", "not-a-jwt", nil)
	assert.Equal(t, http.StatusUnauthorized, code)

	store := memory.NewStore()
	require.NoError(t, store.EnsureSchema(context.Background()))
	guest := newTestEnv(t, store, true)
	code, body = guest.do(t, http.MethodGet, "/api/letters", "", nil)
	assert.Equal(t, http.StatusOK, code)
	assert.JSONEq(t, `[]`, string(body.Data))

	code, body = guest.do(t, http.MethodGet, "/api/me", "", nil)
	assert.Equal(t, http.StatusOK, code)
	assert.Contains(t, string(body.Data), `"role":"viewer"`)
}

func TestLoginAndMe(t *testing.T) {
	env := newMemoryEnv(t)

	code, body := env.do(t, http.MethodPost, "/api/login", "", map[string]string{"email": "sari@example.org", "password": "pw"})
	require.Equal(t, http.StatusOK, code)
	var res service.LoginResult
	require.NoError(t, json.Unmarshal(body.Data, &res))
	assert.Equal(t, "u1", res.User.ID)

	code, body = env.do(t, http.MethodGet, "/api/me", res.Token, nil)
	require.Equal(t, http.StatusOK, code)
	assert.Contains(t, string(body.Data), `"name":"Sari"`)
	assert.NotContains(t, string(body.Data), "h:pw")

	code, body = env.do(t, http.MethodPost, "/api/login", "", map[string]string{"email": "sari@example.org", "password": "bad"})
	assert.Equal(t, http.StatusUnauthorized, code)
	assert.Equal(t, "Invalid credentials", body.Error)
}

func TestLetterLifecycleOverHTTP(t *testing.T) {
	env := newMemoryEnv(t)
	sari := env.token(t, entity.Actor{ID: "u1", Name: "Sari", Role: entity.RoleCreator})
	budi := env.token(t, entity.Actor{ID: "u2", Name: "Budi", Role: entity.RoleApprover})

	code, body := env.do(t, http.MethodPost, "/api/letters", sari, map[string]interface{}{
		"subject":     "Permohonan Dana",
		"to":          "Bendahara",
		"content":     "Isi surat",
		"approverIds": []string{"u2"},
		"submit":      true,
	})
	require.Equal(t, http.StatusCreated, code, body.Error)
	var letter entity.Letter
	require.NoError(t, json.Unmarshal(body.Data, &letter))
	assert.Equal(t, entity.LetterStatusPendingApproval, letter.Status)
	path := "/api/letters/" + letter.ID

	code, _ = env.do(t, http.MethodPost, path+"/approve", sari, nil)
	assert.Equal(t, http.StatusForbidden, code)

	code, body = env.do(t, http.MethodPost, path+"/approve", budi, map[string]string{"comment": "setuju"})
	require.Equal(t, http.StatusOK, code, body.Error)
	require.NoError(t, json.Unmarshal(body.Data, &letter))
	assert.Equal(t, entity.LetterStatusApproved, letter.Status)
	assert.Regexp(t, `^SU/\d{4}/[A-Z0-9]{4}$`, letter.ReferenceNumber)

	// approving grants no read access
	code, _ = env.do(t, http.MethodGet, path, budi, nil)
	assert.Equal(t, http.StatusNotFound, code)

	code, body = env.do(t, http.MethodGet, path+"/actions", sari, nil)
	require.Equal(t, http.StatusOK, code, body.Error)
	assert.JSONEq(t, `{"letterId":"`+letter.ID+`","actions":["ARCHIVE","FORWARD","SIGN"]}`, string(body.Data))

	code, body = env.do(t, http.MethodPost, path+"/send", sari, nil)
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Contains(t, body.Error, "ditandatangani")

	tamu := env.token(t, entity.Actor{ID: "u9", Name: "Tamu", Role: entity.RoleViewer})
	code, body = env.do(t, http.MethodPost, path+"/sign", tamu, map[string]string{"signatureDataUrl": "data:image/png;base64,AA"})
	assert.Equal(t, http.StatusNotFound, code)
	assert.Empty(t, body.Data)

	code, _ = env.do(t, http.MethodPost, path+"/sign", budi, map[string]string{"signatureDataUrl": "data:image/png;base64,AA"})
	require.Equal(t, http.StatusOK, code)

	code, body = env.do(t, http.MethodPost, path+"/send", sari, nil)
	require.Equal(t, http.StatusOK, code, body.Error)

	code, body = env.do(t, http.MethodPost, path+"/read", sari, nil)
	assert.Equal(t, http.StatusOK, code, body.Error)

	code, body = env.do(t, http.MethodGet, "/api/dashboard/stats", sari, nil)
	require.Equal(t, http.StatusOK, code)
	assert.JSONEq(t, `{"outbox":0,"drafts":0,"pendingApproval":0,"awaitingMyApproval":0}`, string(body.Data))

	req := httptest.NewRequest(http.MethodGet, "/api/archive/export", nil)
	req.Header.Set("Authorization", "Bearer "+sari)
	w := httptest.NewRecorder()
	env.server.Router().ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "1 letters", w.Body.String())
	assert.Contains(t, w.Header().Get("Content-Disposition"), "arsip-surat.xlsx")
}

func TestCreateLetterValidation(t *testing.T) {
	env := newMemoryEnv(t)
	sari := env.token(t, entity.Actor{ID: "u1", Role: entity.RoleCreator})

	code, body := env.do(t, http.MethodPost, "/api/letters", sari, map[string]interface{}{
		"subject": "Tanpa isi",
		"submit":  true,
	})
	assert.Equal(t, http.StatusBadRequest, code)
	assert.NotEmpty(t, body.Error)

	code, _ = env.do(t, http.MethodGet, "/api/letters/L404", sari, nil)
	assert.Equal(t, http.StatusNotFound, code)
}

func TestStoreUnavailable(t *testing.T) {
	env := newTestEnv(t, sheets.Unavailable(), false)
	tok := env.token(t, entity.Actor{ID: "u1", Role: entity.RoleCreator})

	for _, path := range []string{"/api/letters", "/api/members", "/api/periods", "/api/templates"} {
		code, body := env.do(t, http.MethodGet, path, tok, nil)
		assert.Equal(t, http.StatusOK, code, path)
		assert.JSONEq(t, `[]`, string(body.Data), path)
	}

	code, body := env.do(t, http.MethodGet, "/api/dashboard/stats", tok, nil)
	assert.Equal(t, http.StatusOK, code)
	assert.JSONEq(t, `{"outbox":0,"drafts":0,"pendingApproval":0,"awaitingMyApproval":0}`, string(body.Data))

	code, _ = env.do(t, http.MethodGet, "/api/setup", "", nil)
	assert.Equal(t, http.StatusServiceUnavailable, code)
}

func TestRateLimitedStore(t *testing.T) {
	env := newTestEnv(t, quotaStore{}, false)
	tok := env.token(t, entity.Actor{ID: "u1", Role: entity.RoleCreator})

	code, body := env.do(t, http.MethodPost, "/api/letters/L1/approve", tok, nil)
	assert.Equal(t, http.StatusServiceUnavailable, code)
	assert.Equal(t, quotaMessage, body.Error)
}

func TestStatusFor(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{apperr.Validationf("x"), http.StatusBadRequest},
		{apperr.Unauthenticatedf("x"), http.StatusUnauthorized},
		{apperr.Forbiddenf("x"), http.StatusForbidden},
		{apperr.NotFoundf("x"), http.StatusNotFound},
		{fmt.Errorf("wrapped: %w", apperr.Conflictf("x")), http.StatusConflict},
		{apperr.ErrStoreUnavailable, http.StatusServiceUnavailable},
		{apperr.ErrRateLimited, http.StatusServiceUnavailable},
		{fmt.Errorf("boom"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, statusFor(tt.err), tt.err.Error())
	}
}
