package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Stattrackrr/stattrackr-sub000/pkg/utils"
)

func newSelectionRouter(t *testing.T) *gin.Engine {
	t.Helper()
	handler := NewSelectionHandler(handlerTestDB(t), quietLogger())

	router := gin.New()
	router.GET("/selection", handler.GetSelection)
	router.PUT("/selection", handler.PutSelection)
	return router
}

func doSelectionRequest(router *gin.Engine, method, body, clientID string) (*httptest.ResponseRecorder, utils.Response) {
	w := httptest.NewRecorder()
	var reader *strings.Reader
	if body != "" {
		reader = strings.NewReader(body)
	} else {
		reader = strings.NewReader("")
	}
	req := httptest.NewRequest(method, "/selection", reader)
	if clientID != "" {
		req.Header.Set("X-Client-Id", clientID)
	}
	router.ServeHTTP(w, req)

	var resp utils.Response
	_ = json.Unmarshal(w.Body.Bytes(), &resp)
	return w, resp
}

func TestPutSelectionRequiresClientID(t *testing.T) {
	router := newSelectionRouter(t)

	w, resp := doSelectionRequest(router, http.MethodPut, `{"stat":"pts"}`, "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.False(t, resp.Success)
}

func TestPutSelectionRejectsInvalidJSON(t *testing.T) {
	router := newSelectionRouter(t)

	w, _ := doSelectionRequest(router, http.MethodPut, `{"stat":`, "abc")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestPutSelectionRejectsEmptyBody(t *testing.T) {
	router := newSelectionRouter(t)

	w, _ := doSelectionRequest(router, http.MethodPut, "", "abc")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestSelectionRoundTrip(t *testing.T) {
	router := newSelectionRouter(t)

	payload := `{"stat":"pts","timeframe":"last10","line":24.5}`
	w, resp := doSelectionRequest(router, http.MethodPut, payload, "abc")
	require.Equal(t, http.StatusOK, w.Code)
	require.True(t, resp.Success)

	w, resp = doSelectionRequest(router, http.MethodGet, "", "abc")
	require.Equal(t, http.StatusOK, w.Code)
	require.True(t, resp.Success)

	data, ok := resp.Data.(map[string]interface{})
	require.True(t, ok)

	stored, err := json.Marshal(data["payload"])
	require.NoError(t, err)
	assert.JSONEq(t, payload, string(stored))
}

func TestGetSelectionMissing(t *testing.T) {
	router := newSelectionRouter(t)

	w, resp := doSelectionRequest(router, http.MethodGet, "", "nobody")
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.False(t, resp.Success)
}

func TestSelectionClientsAreIsolated(t *testing.T) {
	router := newSelectionRouter(t)

	_, _ = doSelectionRequest(router, http.MethodPut, `{"stat":"pts"}`, "client-a")
	_, _ = doSelectionRequest(router, http.MethodPut, `{"stat":"reb"}`, "client-b")

	w, resp := doSelectionRequest(router, http.MethodGet, "", "client-a")
	require.Equal(t, http.StatusOK, w.Code)

	data := resp.Data.(map[string]interface{})
	stored, err := json.Marshal(data["payload"])
	require.NoError(t, err)
	assert.JSONEq(t, `{"stat":"pts"}`, string(stored))
}
