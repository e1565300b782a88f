package handlers

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vdubya/aca-viewer/services"
	"github.com/vdubya/aca-viewer/store"
)

func newTestServer(t *testing.T) (*Server, sqlmock.Sqlmock) {
	t.Helper()

	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	return NewServer(store.NewRepository(db), services.NewPipelineService(nil, true)), mock
}

func documentRows(id, name, ext, text, offsets, toc string) *sqlmock.Rows {
	return sqlmock.NewRows([]string{
		"id", "name", "ext", "content_type", "size", "raw", "text_content", "rendered", "page_offsets", "toc", "uploaded_at",
	}).AddRow(id, name, ext, "application/octet-stream", int64(len(text)), []byte("raw"), text, "", []byte(offsets), []byte(toc), time.Now().UTC())
}

func TestCORSMiddlewarePreflight(t *testing.T) {
	s, _ := newTestServer(t)

	req := httptest.NewRequest(http.MethodOptions, "/api/documents", nil)
	rec := httptest.NewRecorder()
	s.Routes().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
	assert.Contains(t, rec.Header().Get("Access-Control-Allow-Headers"), "Authorization")
}

func TestAdminGateRequiresFlag(t *testing.T) {
	t.Setenv("ADMIN_JWT_SECRET", "")

	gate := AdminGate(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	rec := httptest.NewRecorder()
	gate.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/admin/overview", nil))
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = httptest.NewRecorder()
	gate.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/admin/overview?admin=1", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestAdminGateJWT(t *testing.T) {
	t.Setenv("ADMIN_JWT_SECRET", "gate-secret")

	gate := AdminGate(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	rec := httptest.NewRecorder()
	gate.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/?admin=1", nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{"sub": "admin"}).
		SignedString([]byte("gate-secret"))
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/?admin=1", nil)
	req.Header.Set("Authorization", "Bearer "+signed)
	rec = httptest.NewRecorder()
	gate.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)

	forged, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{"sub": "admin"}).
		SignedString([]byte("wrong-secret"))
	require.NoError(t, err)

	req = httptest.NewRequest(http.MethodGet, "/?admin=1", nil)
	req.Header.Set("Authorization", "Bearer "+forged)
	rec = httptest.NewRecorder()
	gate.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAdminOverview(t *testing.T) {
	t.Setenv("ADMIN_JWT_SECRET", "")
	s, mock := newTestServer(t)

	mock.ExpectQuery("SELECT term, hits, color, created_at FROM searches").
		WillReturnRows(sqlmock.NewRows([]string{"term", "hits", "color", "created_at"}).
			AddRow("sealant", int64(4), "#FFC107", time.Now().UTC()))
	mock.ExpectQuery("SELECT (.+) FROM comments ORDER BY").
		WillReturnRows(sqlmock.NewRows([]string{"id", "file", "snippet", "note", "created_at"}).
			AddRow("c1", "spec.pdf", "ASTM C 920", "verify grade", time.Now().UTC()))

	req := httptest.NewRequest(http.MethodGet, "/api/admin/overview?admin=1", nil)
	rec := httptest.NewRecorder()
	s.Routes().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"sealant"`)
	assert.Contains(t, rec.Body.String(), `"verify grade"`)
	assert.NoError(t, mock.ExpectationsWereMet())
}
