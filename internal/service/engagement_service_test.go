package service

import (
	"ManadaBook/internal/api/dto"
	"ManadaBook/internal/model"
	"ManadaBook/internal/pkg/consts"
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestEngagementService(er *fakeEngagementRepo, mr *fakeMomentRepo, now time.Time) *engagementServiceImpl {
	return &engagementServiceImpl{
		engagementRepo: er,
		momentRepo:     mr,
		pushSvc:        &fakePushService{},
		now:            func() time.Time { return now },
	}
}

func seedMoment(t *testing.T, repo *fakeMomentRepo, authorID uint64, at time.Time) *model.Moment {
	t.Helper()
	svc := newTestMomentService(repo, at)
	moment, err := svc.CreateMoment(context.Background(), authorID, &dto.MomentCreateReq{
		MediaURL:  "https://cdn.example.com/a.jpg",
		MediaType: consts.MediaTypeImage,
	})
	require.NoError(t, err)
	return moment
}

func TestToggleRejectsInvalidRelation(t *testing.T) {
	svc := newTestEngagementService(newFakeEngagementRepo(), newFakeMomentRepo(), time.Now())

	_, err := svc.Toggle(context.Background(), "poke", 1, "x")
	assert.ErrorIs(t, err, ErrRelationInvalid)

	// block 不是可翻转的关系，有专门的入口
	_, err = svc.Toggle(context.Background(), model.RelationBlock, 1, "2")
	assert.ErrorIs(t, err, ErrRelationInvalid)

	_, err = svc.Toggle(context.Background(), model.RelationLike, 1, "")
	assert.ErrorIs(t, err, ErrParamInvalid)
}

func TestToggleLikeUnknownMoment(t *testing.T) {
	setupTestRedis(t)
	svc := newTestEngagementService(newFakeEngagementRepo(), newFakeMomentRepo(), time.Now())

	_, err := svc.Toggle(context.Background(), model.RelationLike, 1, "missing")
	assert.ErrorIs(t, err, ErrMomentNotFound)
}

func TestToggleFollowValidation(t *testing.T) {
	setupTestRedis(t)
	svc := newTestEngagementService(newFakeEngagementRepo(), newFakeMomentRepo(), time.Now())

	_, err := svc.Toggle(context.Background(), model.RelationFollow, 1, "1")
	assert.ErrorIs(t, err, ErrFollowSelf)

	_, err = svc.Toggle(context.Background(), model.RelationFollow, 1, "not-a-uid")
	assert.ErrorIs(t, err, ErrParamInvalid)
}

func TestToggleIsSelfInverse(t *testing.T) {
	setupTestRedis(t)
	er := newFakeEngagementRepo()
	mr := newFakeMomentRepo()
	t0 := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	moment := seedMoment(t, mr, 2, t0)
	svc := newTestEngagementService(er, mr, t0.Add(time.Hour))

	state, err := svc.Toggle(context.Background(), model.RelationLike, 1, moment.ID)
	require.NoError(t, err)
	assert.Equal(t, model.EdgeActive, state)
	assert.Equal(t, int64(1), er.counters[counterKey(model.RelationLike, moment.ID)])

	// 第二次翻转回到原点，计数不会变成负数
	state, err = svc.Toggle(context.Background(), model.RelationLike, 1, moment.ID)
	require.NoError(t, err)
	assert.Equal(t, model.EdgeInactive, state)
	assert.Equal(t, int64(0), er.counters[counterKey(model.RelationLike, moment.ID)])
	assert.Empty(t, er.edges)
}

func TestToggleNotifiesMomentAuthor(t *testing.T) {
	setupTestRedis(t)
	er := newFakeEngagementRepo()
	mr := newFakeMomentRepo()
	t0 := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	moment := seedMoment(t, mr, 2, t0)
	svc := newTestEngagementService(er, mr, t0.Add(time.Hour))

	_, err := svc.Toggle(context.Background(), model.RelationLike, 1, moment.ID)
	require.NoError(t, err)

	require.Len(t, er.notifs, 1)
	notif := er.notifs[0]
	assert.Equal(t, uint64(2), notif.UserID)
	assert.Equal(t, "like", notif.Kind)
	assert.Equal(t, uint64(1), notif.ActorID)
	assert.Equal(t, moment.ID, notif.TargetID)
}

func TestToggleNoSelfNotification(t *testing.T) {
	setupTestRedis(t)
	er := newFakeEngagementRepo()
	mr := newFakeMomentRepo()
	t0 := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	moment := seedMoment(t, mr, 2, t0)
	svc := newTestEngagementService(er, mr, t0.Add(time.Hour))

	state, err := svc.Toggle(context.Background(), model.RelationLike, 2, moment.ID)
	require.NoError(t, err)
	assert.Equal(t, model.EdgeActive, state)
	assert.Empty(t, er.notifs)
}

func TestToggleMemberSkipsTargetValidation(t *testing.T) {
	setupTestRedis(t)
	er := newFakeEngagementRepo()
	svc := newTestEngagementService(er, newFakeMomentRepo(), time.Now())

	// 圈子与活动由外部服务管理，这里不校验存在性也不发通知
	state, err := svc.Toggle(context.Background(), model.RelationMember, 1, "circle-9")
	require.NoError(t, err)
	assert.Equal(t, model.EdgeActive, state)
	assert.Equal(t, int64(1), er.counters[counterKey(model.RelationMember, "circle-9")])
	assert.Empty(t, er.notifs)
}

func TestBlockCascadesFollows(t *testing.T) {
	setupTestRedis(t)
	er := newFakeEngagementRepo()
	svc := newTestEngagementService(er, newFakeMomentRepo(), time.Now())

	// 双向关注
	_, err := svc.Toggle(context.Background(), model.RelationFollow, 1, "2")
	require.NoError(t, err)
	_, err = svc.Toggle(context.Background(), model.RelationFollow, 2, "1")
	require.NoError(t, err)

	require.NoError(t, svc.Block(context.Background(), 1, 2))

	has, err := er.HasEdge(context.Background(), model.RelationBlock, 1, "2")
	require.NoError(t, err)
	assert.True(t, has)

	has, err = er.HasEdge(context.Background(), model.RelationFollow, 1, "2")
	require.NoError(t, err)
	assert.False(t, has)
	has, err = er.HasEdge(context.Background(), model.RelationFollow, 2, "1")
	require.NoError(t, err)
	assert.False(t, has)

	assert.Equal(t, int64(0), er.counters[counterKey(model.RelationFollow, "1")])
	assert.Equal(t, int64(0), er.counters[counterKey(model.RelationFollow, "2")])

	// 重复拉黑是幂等的，计数不会被重复扣减
	require.NoError(t, svc.Block(context.Background(), 1, 2))
	assert.Equal(t, int64(0), er.counters[counterKey(model.RelationFollow, "1")])
	assert.Equal(t, int64(0), er.counters[counterKey(model.RelationFollow, "2")])
}

func TestBlockValidation(t *testing.T) {
	svc := newTestEngagementService(newFakeEngagementRepo(), newFakeMomentRepo(), time.Now())

	assert.ErrorIs(t, svc.Block(context.Background(), 1, 1), ErrBlockSelf)
	assert.ErrorIs(t, svc.Block(context.Background(), 1, 0), ErrParamInvalid)
}

func TestGetEdgeCountReadThroughCache(t *testing.T) {
	setupTestRedis(t)
	er := newFakeEngagementRepo()
	svc := newTestEngagementService(er, newFakeMomentRepo(), time.Now())

	_, err := svc.Toggle(context.Background(), model.RelationMember, 1, "circle-9")
	require.NoError(t, err)
	_, err = svc.Toggle(context.Background(), model.RelationMember, 2, "circle-9")
	require.NoError(t, err)

	count, err := svc.GetEdgeCount(context.Background(), model.RelationMember, "circle-9")
	require.NoError(t, err)
	assert.Equal(t, int64(2), count)
	assert.Equal(t, 1, er.countEdgesCalls)

	// 第二次读走缓存
	count, err = svc.GetEdgeCount(context.Background(), model.RelationMember, "circle-9")
	require.NoError(t, err)
	assert.Equal(t, int64(2), count)
	assert.Equal(t, 1, er.countEdgesCalls)

	// 翻转会打掉缓存，下一次读重新回源
	_, err = svc.Toggle(context.Background(), model.RelationMember, 2, "circle-9")
	require.NoError(t, err)
	count, err = svc.GetEdgeCount(context.Background(), model.RelationMember, "circle-9")
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)
	assert.Equal(t, 2, er.countEdgesCalls)
}

func TestHasEdge(t *testing.T) {
	setupTestRedis(t)
	er := newFakeEngagementRepo()
	svc := newTestEngagementService(er, newFakeMomentRepo(), time.Now())

	_, err := svc.Toggle(context.Background(), model.RelationMember, 1, "circle-9")
	require.NoError(t, err)

	has, err := svc.HasEdge(context.Background(), model.RelationMember, 1, "circle-9")
	require.NoError(t, err)
	assert.True(t, has)

	// 匿名访问直接判为无边
	has, err = svc.HasEdge(context.Background(), model.RelationMember, 0, "circle-9")
	require.NoError(t, err)
	assert.False(t, has)

	_, err = svc.HasEdge(context.Background(), "poke", 1, "circle-9")
	assert.ErrorIs(t, err, ErrRelationInvalid)
}

func TestReconcileFixesDrift(t *testing.T) {
	setupTestRedis(t)
	er := newFakeEngagementRepo()
	mr := newFakeMomentRepo()
	t0 := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	moment := seedMoment(t, mr, 9, t0)
	svc := newTestEngagementService(er, mr, t0.Add(time.Hour))

	_, err := svc.Toggle(context.Background(), model.RelationLike, 1, moment.ID)
	require.NoError(t, err)
	_, err = svc.Toggle(context.Background(), model.RelationLike, 2, moment.ID)
	require.NoError(t, err)

	// 人为制造漂移：点赞计数被多加，另有一个早已没有任何边的陈旧粉丝计数
	er.counters[counterKey(model.RelationLike, moment.ID)] = 5
	er.counters[counterKey(model.RelationFollow, "7")] = 3

	fixed, err := svc.Reconcile(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(2), fixed)

	assert.Equal(t, int64(2), er.counters[counterKey(model.RelationLike, moment.ID)])
	assert.Equal(t, int64(0), er.counters[counterKey(model.RelationFollow, "7")])

	// 已经一致时对账不再产生修正
	fixed, err = svc.Reconcile(context.Background())
	require.NoError(t, err)
	assert.Zero(t, fixed)
}
