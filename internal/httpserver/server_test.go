package httpserver

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrSnakeDoc/shelf/internal/auth"
	"github.com/MrSnakeDoc/shelf/internal/config"
	"github.com/MrSnakeDoc/shelf/internal/httpserver/deps"
	"github.com/MrSnakeDoc/shelf/internal/httpserver/dto"
	"github.com/MrSnakeDoc/shelf/internal/httpserver/mw"
	"github.com/MrSnakeDoc/shelf/internal/logger"
	"github.com/MrSnakeDoc/shelf/internal/service"
	"github.com/MrSnakeDoc/shelf/internal/store/memory"
)

const testSecret = "test-secret-test-secret-test-secret"

func newTestHandler(t *testing.T) http.Handler {
	t.Helper()

	cfg := &config.Config{
		ListenPort:     ":0",
		RequestTimeout: 5 * time.Second,
		BasePath:       "/Bookmark",
	}
	d := deps.Deps{
		Logger:       logger.NewNop(),
		StartTime:    time.Now(),
		TimeNow:      time.Now,
		BasePath:     cfg.BasePath,
		StoreBackend: config.StoreMemory,
		Bookmarks:    service.NewBookmarkService(memory.NewStore(), logger.NewNop(), time.Second),
		Verifier:     auth.NewJWTVerifier(testSecret, ""),
		AllowedCIDRS: []string{"192.0.2.0/24"},
		RateLimit:    mw.RateLimitConfig{Burst: 1000, RefillPerIPPerMin: 1000},
	}
	return New(cfg, logger.NewNop(), d).Handler()
}

func bearer(t *testing.T, userID string) string {
	t.Helper()
	token, err := auth.NewJWTSigner(testSecret, "", time.Hour).Issue(userID)
	require.NoError(t, err)
	return "Bearer " + token
}

func send(t *testing.T, h http.Handler, method, target, body, authz string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	req.RemoteAddr = "192.0.2.10:40000"
	if authz != "" {
		req.Header.Set("Authorization", authz)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestBookmarkLifecycle(t *testing.T) {
	h := newTestHandler(t)
	alice := bearer(t, "alice")

	rec := send(t, h, http.MethodPost, "/Bookmark", `{"title":"A","url":"http://a"}`, alice)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.NotEmpty(t, rec.Header().Get("X-Request-Id"))

	var created dto.Response[dto.Bookmark]
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))
	require.Len(t, created.Data(), 1)
	id := created.Data()[0].ID

	rec = send(t, h, http.MethodPut, "/Bookmark/", `{"id":"`+id+`","title":"A2","url":"https://a2"}`, alice)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Contains(t, rec.Body.String(), `"title":"A2"`)

	rec = send(t, h, http.MethodGet, "/Bookmark", "", bearer(t, "bob"))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"data":[]}`, rec.Body.String())

	rec = send(t, h, http.MethodDelete, "/Bookmark", `{"id":"`+id+`"}`, alice)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"data":[]}`, rec.Body.String())
}

func TestDiagnosticNeedsNoCredentials(t *testing.T) {
	rec := send(t, newTestHandler(t), http.MethodGet, "/Bookmark/test", "", "")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"data":["My first bookmark item"]}`, rec.Body.String())
}

func TestBookmarkRoutesRequireCredentials(t *testing.T) {
	h := newTestHandler(t)

	for _, method := range []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete} {
		t.Run(method, func(t *testing.T) {
			rec := send(t, h, method, "/Bookmark", `{}`, "")
			assert.Equal(t, http.StatusUnauthorized, rec.Code)
			assert.JSONEq(t, `{"error":"missing credentials"}`, rec.Body.String())
		})
	}
}

func TestRequestBodyLimit(t *testing.T) {
	big := `{"title":"` + strings.Repeat("x", 2<<20) + `","url":"http://a"}`
	rec := send(t, newTestHandler(t), http.MethodPost, "/Bookmark", big, bearer(t, "alice"))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), `"error"`)
}

func TestProbes(t *testing.T) {
	h := newTestHandler(t)

	rec := send(t, h, http.MethodGet, "/healthz", "", "")
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = send(t, h, http.MethodGet, "/readyz", "", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"ready":true,"store":"memory"}`, rec.Body.String())

	req := httptest.NewRequest(http.MethodGet, "/readyz", nil)
	req.RemoteAddr = "198.51.100.1:40000"
	out := httptest.NewRecorder()
	h.ServeHTTP(out, req)
	assert.Equal(t, http.StatusForbidden, out.Code, "probes are restricted to allowed CIDRs")
}

func TestUnknownRoute(t *testing.T) {
	rec := send(t, newTestHandler(t), http.MethodGet, "/nope", "", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
