package handler

import (
	"ManadaBook/internal/model"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupMomentRouter(svc *fakeMomentService) *gin.Engine {
	r := gin.New()
	h := NewMomentHandler(svc)
	r.GET("/api/moments", h.ListMoments)
	return r
}

func TestListMomentsLive(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	svc := &fakeMomentService{
		moments: []*model.Moment{
			{
				ID:        "m1",
				AuthorID:  7,
				MediaURL:  "https://cdn.example.com/a.jpg",
				MediaType: "image",
				CreatedAt: now,
				ExpiresAt: now.Add(24 * time.Hour),
				IsActive:  true,
			},
		},
	}
	r := setupMomentRouter(svc)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/moments?limit=10", nil)
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	res := decodeResponse(t, w)
	assert.Equal(t, 200, res.Code)

	data, err := json.Marshal(res.Data)
	require.NoError(t, err)
	var list struct {
		List   []map[string]interface{} `json:"list"`
		Total  int                      `json:"total"`
		Source string                   `json:"source"`
	}
	require.NoError(t, json.Unmarshal(data, &list))

	assert.Equal(t, "live", list.Source)
	assert.Equal(t, 1, list.Total)
	require.Len(t, list.List, 1)
	assert.Equal(t, "m1", list.List[0]["id"])
}

func TestListMomentsFallbackOnStoreFailure(t *testing.T) {
	svc := &fakeMomentService{listErr: errors.New("mongo down")}
	r := setupMomentRouter(svc)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/moments", nil)
	r.ServeHTTP(w, req)

	// 存储故障时接口依旧 200，退化为示例数据
	require.Equal(t, http.StatusOK, w.Code)
	res := decodeResponse(t, w)
	assert.Equal(t, 200, res.Code)

	data, err := json.Marshal(res.Data)
	require.NoError(t, err)
	var list struct {
		List   []map[string]interface{} `json:"list"`
		Source string                   `json:"source"`
	}
	require.NoError(t, json.Unmarshal(data, &list))

	assert.Equal(t, "fallback", list.Source)
	assert.NotEmpty(t, list.List)
}
