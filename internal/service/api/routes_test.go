package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	_ "github.com/darkkaiser/app-runtime/docs"
	"github.com/darkkaiser/app-runtime/internal/pkg/version"
	"github.com/darkkaiser/app-runtime/internal/service/api/handler/system"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegisterRoutes(t *testing.T) {
	e := NewHTTPServer(HTTPServerConfig{AllowOrigins: []string{"*"}})
	RegisterRoutes(e, system.NewHandler(version.Info{Version: "v1.0.0"}, nil))

	tests := []struct {
		name       string
		path       string
		wantStatus int
	}{
		{name: "헬스체크", path: "/health", wantStatus: http.StatusOK},
		{name: "버전 정보", path: "/version", wantStatus: http.StatusOK},
		{name: "Swagger UI", path: "/swagger/index.html", wantStatus: http.StatusOK},
		{name: "Swagger 문서", path: "/swagger/doc.json", wantStatus: http.StatusOK},
		{name: "등록되지 않은 경로", path: "/unknown", wantStatus: http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, tt.path, nil)
			rec := httptest.NewRecorder()

			e.ServeHTTP(rec, req)

			assert.Equal(t, tt.wantStatus, rec.Code)
		})
	}
}

func TestSwaggerDoc_DescribesLifecycleRoutes(t *testing.T) {
	e := NewHTTPServer(HTTPServerConfig{AllowOrigins: []string{"*"}})
	RegisterRoutes(e, system.NewHandler(version.Info{}, nil))

	req := httptest.NewRequest(http.MethodGet, "/swagger/doc.json", nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	var doc struct {
		Swagger string                    `json:"swagger"`
		Paths   map[string]map[string]any `json:"paths"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &doc))

	assert.Equal(t, "2.0", doc.Swagger)
	for path, method := range map[string]string{
		"/health":                            "get",
		"/version":                           "get",
		"/api/v1/instances":                  "post",
		"/api/v1/instances/{partyId}/{guid}": "get",
		"/api/v1/instances/{partyId}/{guid}/data":                           "post",
		"/api/v1/instances/{partyId}/{guid}/process/tasks/{taskId}/start":   "post",
		"/api/v1/instances/{partyId}/{guid}/process/tasks/{taskId}/can-end": "post",
		"/api/v1/instances/{partyId}/{guid}/process/tasks/{taskId}/end":     "post",
	} {
		assert.Contains(t, doc.Paths[path], method, "문서에 %s %s 경로가 있어야 합니다", method, path)
	}
}
