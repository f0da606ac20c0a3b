package handler

import (
	"ManadaBook/internal/api/dto"
	"ManadaBook/internal/model"
	"context"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/goccy/go-json"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// stubAuth 测试里代替 JWT 中间件注入用户身份
func stubAuth(userID uint64) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set("user_id", userID)
		c.Next()
	}
}

func decodeResponse(t *testing.T, w *httptest.ResponseRecorder) *dto.Response {
	t.Helper()
	var res dto.Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &res))
	return &res
}

type fakeMomentService struct {
	moments  []*model.Moment
	listErr  error
	viewErr  error
	delErr   error
	swept    int64
	sweepErr error
}

func (f *fakeMomentService) CreateMoment(_ context.Context, authorID uint64, req *dto.MomentCreateReq) (*model.Moment, error) {
	return &model.Moment{
		ID:        "created",
		AuthorID:  authorID,
		MediaURL:  req.MediaURL,
		MediaType: req.MediaType,
		IsActive:  true,
	}, nil
}

func (f *fakeMomentService) ListMoments(_ context.Context, _, _ uint64, _ int64) ([]*model.Moment, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	return f.moments, nil
}

func (f *fakeMomentService) RecordView(_ context.Context, _ string, _ uint64, _ bool) error {
	return f.viewErr
}

func (f *fakeMomentService) DeleteMoment(_ context.Context, _ string, _ uint64) error {
	return f.delErr
}

func (f *fakeMomentService) SweepExpired(_ context.Context) (int64, error) {
	return f.swept, f.sweepErr
}

type fakeEngagementService struct {
	state    model.EdgeState
	count    int64
	active   bool
	blockErr error
}

func (f *fakeEngagementService) Toggle(_ context.Context, relation model.RelationType, _ uint64, _ string) (model.EdgeState, error) {
	return f.state, nil
}

func (f *fakeEngagementService) Block(_ context.Context, _, _ uint64) error {
	return f.blockErr
}

func (f *fakeEngagementService) GetEdgeCount(_ context.Context, _ model.RelationType, _ string) (int64, error) {
	return f.count, nil
}

func (f *fakeEngagementService) HasEdge(_ context.Context, _ model.RelationType, _ uint64, _ string) (bool, error) {
	return f.active, nil
}

func (f *fakeEngagementService) Reconcile(_ context.Context) (int64, error) {
	return 0, nil
}
