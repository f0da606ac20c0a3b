package handler

import (
	"ManadaBook/internal/model"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupEngagementRouter(svc *fakeEngagementService, userID uint64) *gin.Engine {
	r := gin.New()
	h := NewEngagementHandler(svc)

	group := r.Group("/api/engagement")
	group.Use(stubAuth(userID))
	{
		group.POST("/:relation/:target_id/toggle", h.Toggle)
		group.POST("/block/:target_id", h.Block)
		group.GET("/:relation/:target_id/count", h.GetEdgeCount)
		group.GET("/:relation/:target_id/state", h.GetEdgeState)
	}
	return r
}

func TestToggleEndpoint(t *testing.T) {
	r := setupEngagementRouter(&fakeEngagementService{state: model.EdgeActive}, 1)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/engagement/like/m1/toggle", nil)
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	res := decodeResponse(t, w)
	assert.Equal(t, 200, res.Code)

	data, err := json.Marshal(res.Data)
	require.NoError(t, err)
	var body struct {
		State string `json:"state"`
	}
	require.NoError(t, json.Unmarshal(data, &body))
	assert.Equal(t, "active", body.State)
}

func TestBlockEndpointRejectsBadTarget(t *testing.T) {
	r := setupEngagementRouter(&fakeEngagementService{}, 1)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/engagement/block/not-a-uid", nil)
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	res := decodeResponse(t, w)
	assert.Equal(t, 400, res.Code)
}

func TestEdgeStateEndpoint(t *testing.T) {
	r := setupEngagementRouter(&fakeEngagementService{count: 12, active: true}, 1)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/engagement/follow/42/state", nil)
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	res := decodeResponse(t, w)
	assert.Equal(t, 200, res.Code)

	data, err := json.Marshal(res.Data)
	require.NoError(t, err)
	var body struct {
		Count  int64 `json:"count"`
		Active bool  `json:"active"`
	}
	require.NoError(t, json.Unmarshal(data, &body))
	assert.Equal(t, int64(12), body.Count)
	assert.True(t, body.Active)
}
