package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDiff(t *testing.T) {
	s, mock := newTestServer(t)

	mock.ExpectQuery("SELECT (.+) FROM documents WHERE id").
		WithArgs("a1").
		WillReturnRows(documentRows("a1", "rev1.sec", "sec", "alpha\nbeta", "[0]", "[]"))
	mock.ExpectQuery("SELECT (.+) FROM documents WHERE id").
		WithArgs("b2").
		WillReturnRows(documentRows("b2", "rev2.sec", "sec", "alpha\ngamma", "[0]", "[]"))

	req := httptest.NewRequest(http.MethodGet, "/api/diff?docA=a1&docB=b2", nil)
	rec := httptest.NewRecorder()
	s.Diff(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var resp diffResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Equal(t, "rev1.sec", resp.DocA)
	assert.Equal(t, "rev2.sec", resp.DocB)
	require.NotEmpty(t, resp.Lines)
	assert.Equal(t, "--- Doc A", resp.Lines[0])
	assert.Equal(t, "+++ Doc B", resp.Lines[1])
	assert.Contains(t, resp.Lines, "-beta")
	assert.Contains(t, resp.Lines, "+gamma")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDiffIdenticalDocuments(t *testing.T) {
	s, mock := newTestServer(t)

	mock.ExpectQuery("SELECT (.+) FROM documents WHERE id").
		WithArgs("a1").
		WillReturnRows(documentRows("a1", "rev1.sec", "sec", "same text", "[0]", "[]"))
	mock.ExpectQuery("SELECT (.+) FROM documents WHERE id").
		WithArgs("b2").
		WillReturnRows(documentRows("b2", "rev2.sec", "sec", "same text", "[0]", "[]"))

	req := httptest.NewRequest(http.MethodGet, "/api/diff?docA=a1&docB=b2", nil)
	rec := httptest.NewRecorder()
	s.Diff(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var resp diffResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Empty(t, resp.Lines)
}

func TestDiffBadContext(t *testing.T) {
	s, mock := newTestServer(t)

	mock.ExpectQuery("SELECT (.+) FROM documents WHERE id").
		WithArgs("a1").
		WillReturnRows(documentRows("a1", "rev1.sec", "sec", "a", "[0]", "[]"))
	mock.ExpectQuery("SELECT (.+) FROM documents WHERE id").
		WithArgs("b2").
		WillReturnRows(documentRows("b2", "rev2.sec", "sec", "b", "[0]", "[]"))

	req := httptest.NewRequest(http.MethodGet, "/api/diff?docA=a1&docB=b2&context=-1", nil)
	rec := httptest.NewRecorder()
	s.Diff(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestDiffMissingParam(t *testing.T) {
	s, _ := newTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/api/diff", nil)
	rec := httptest.NewRecorder()
	s.Diff(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "docA")
}
