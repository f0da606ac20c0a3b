package service

import (
	"ManadaBook/internal/model"
	redispkg "ManadaBook/internal/pkg/redis"
	"context"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"
)

// setupTestRedis 把包级 Redis 客户端指向一个内存实例
func setupTestRedis(t *testing.T) *miniredis.Miniredis {
	t.Helper()
	mr := miniredis.RunT(t)
	redispkg.Rdb = goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	return mr
}

type fakeMomentRepo struct {
	mu            sync.Mutex
	moments       map[string]*model.Moment
	views         []*model.MomentView
	status        map[uint64]bool
	lastListLimit int64
}

func newFakeMomentRepo() *fakeMomentRepo {
	return &fakeMomentRepo{
		moments: make(map[string]*model.Moment),
		status:  make(map[uint64]bool),
	}
}

func (f *fakeMomentRepo) CreateMoment(_ context.Context, moment *model.Moment) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	cp := *moment
	f.moments[moment.ID] = &cp
	return nil
}

func (f *fakeMomentRepo) GetMoment(_ context.Context, id string) (*model.Moment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	m, ok := f.moments[id]
	if !ok {
		return nil, nil
	}
	cp := *m
	return &cp, nil
}

func (f *fakeMomentRepo) ListVisible(_ context.Context, authorID, circleID uint64, now time.Time, limit int64) ([]*model.Moment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.lastListLimit = limit

	var res []*model.Moment
	for _, m := range f.moments {
		if !m.Visible(now) {
			continue
		}
		if authorID != 0 && m.AuthorID != authorID {
			continue
		}
		if circleID != 0 && m.CircleID != circleID {
			continue
		}
		cp := *m
		res = append(res, &cp)
	}
	return res, nil
}

func (f *fakeMomentRepo) RetireMoment(_ context.Context, id, reason string, deletedAt *time.Time) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	m, ok := f.moments[id]
	if !ok || !m.IsActive {
		return false, nil
	}
	m.IsActive = false
	m.RetiredReason = reason
	m.DeletedAt = deletedAt
	return true, nil
}

func (f *fakeMomentRepo) RetireExpired(_ context.Context, now time.Time) (int64, []uint64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	var retired int64
	authorSet := make(map[uint64]struct{})
	for _, m := range f.moments {
		if m.IsActive && !m.ExpiresAt.After(now) {
			m.IsActive = false
			m.RetiredReason = "expiry"
			retired++
			authorSet[m.AuthorID] = struct{}{}
		}
	}

	authors := make([]uint64, 0, len(authorSet))
	for id := range authorSet {
		authors = append(authors, id)
	}
	return retired, authors, nil
}

func (f *fakeMomentRepo) AppendView(_ context.Context, view *model.MomentView) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.views = append(f.views, view)
	if m, ok := f.moments[view.MomentID]; ok {
		m.Stats.ViewsCount++
	}
	return nil
}

func (f *fakeMomentRepo) CountActiveByAuthor(_ context.Context, authorID uint64, now time.Time) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var count int64
	for _, m := range f.moments {
		if m.AuthorID == authorID && m.Visible(now) {
			count++
		}
	}
	return count, nil
}

func (f *fakeMomentRepo) SetAuthorStatus(_ context.Context, authorID uint64, active bool) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.status[authorID] = active
	return nil
}

func edgeKey(relation model.RelationType, sourceUserID uint64, targetID string) string {
	return string(relation) + "|" + formatUint(sourceUserID) + "|" + targetID
}

func counterKey(relation model.RelationType, targetID string) string {
	return string(relation) + "|" + targetID
}

func formatUint(v uint64) string {
	if v == 0 {
		return "0"
	}
	var buf [20]byte
	i := len(buf)
	for v > 0 {
		i--
		buf[i] = byte('0' + v%10)
		v /= 10
	}
	return string(buf[i:])
}

type fakeEngagementRepo struct {
	mu              sync.Mutex
	edges           map[string]*model.EngagementEdge
	counters        map[string]int64
	notifs          []*model.Notification
	countEdgesCalls int
}

func newFakeEngagementRepo() *fakeEngagementRepo {
	return &fakeEngagementRepo{
		edges:    make(map[string]*model.EngagementEdge),
		counters: make(map[string]int64),
	}
}

func (f *fakeEngagementRepo) Toggle(_ context.Context, edge *model.EngagementEdge, notif *model.Notification) (model.EdgeState, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	key := edgeKey(edge.RelationType, edge.SourceUserID, edge.TargetID)
	ck := counterKey(edge.RelationType, edge.TargetID)

	if _, ok := f.edges[key]; ok {
		delete(f.edges, key)
		f.counters[ck]--
		return model.EdgeInactive, nil
	}

	f.edges[key] = edge
	f.counters[ck]++
	if notif != nil {
		f.notifs = append(f.notifs, notif)
	}
	return model.EdgeActive, nil
}

func (f *fakeEngagementRepo) Block(_ context.Context, sourceUserID, targetUserID uint64, now time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	sourceID := formatUint(sourceUserID)
	targetID := formatUint(targetUserID)

	blockKey := edgeKey(model.RelationBlock, sourceUserID, targetID)
	if _, ok := f.edges[blockKey]; !ok {
		f.edges[blockKey] = &model.EngagementEdge{
			RelationType: model.RelationBlock,
			SourceUserID: sourceUserID,
			TargetID:     targetID,
			CreatedAt:    now,
		}
	}

	if _, ok := f.edges[edgeKey(model.RelationFollow, sourceUserID, targetID)]; ok {
		delete(f.edges, edgeKey(model.RelationFollow, sourceUserID, targetID))
		f.counters[counterKey(model.RelationFollow, targetID)]--
	}
	if _, ok := f.edges[edgeKey(model.RelationFollow, targetUserID, sourceID)]; ok {
		delete(f.edges, edgeKey(model.RelationFollow, targetUserID, sourceID))
		f.counters[counterKey(model.RelationFollow, sourceID)]--
	}
	return nil
}

func (f *fakeEngagementRepo) HasEdge(_ context.Context, relation model.RelationType, sourceUserID uint64, targetID string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	_, ok := f.edges[edgeKey(relation, sourceUserID, targetID)]
	return ok, nil
}

func (f *fakeEngagementRepo) CountEdges(_ context.Context, relation model.RelationType, targetID string) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.countEdgesCalls++

	var count int64
	for _, e := range f.edges {
		if e.RelationType == relation && e.TargetID == targetID {
			count++
		}
	}
	return count, nil
}

func (f *fakeEngagementRepo) EdgeCounts(_ context.Context, relation model.RelationType) (map[string]int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	counts := make(map[string]int64)
	for _, e := range f.edges {
		if e.RelationType == relation {
			counts[e.TargetID]++
		}
	}
	return counts, nil
}

func (f *fakeEngagementRepo) CountedTargetIDs(_ context.Context, relation model.RelationType) ([]string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	prefix := string(relation) + "|"
	var ids []string
	for key, count := range f.counters {
		if count != 0 && len(key) > len(prefix) && key[:len(prefix)] == prefix {
			ids = append(ids, key[len(prefix):])
		}
	}
	return ids, nil
}

func (f *fakeEngagementRepo) SyncCounter(_ context.Context, relation model.RelationType, targetID string, count int64) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	ck := counterKey(relation, targetID)
	if f.counters[ck] == count {
		return false, nil
	}
	f.counters[ck] = count
	return true, nil
}

type fakePushService struct {
	mu   sync.Mutex
	sent []*model.Notification
}

func (f *fakePushService) Send(_ context.Context, notif *model.Notification) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = append(f.sent, notif)
}

type fakeNotificationRepo struct {
	mu               sync.Mutex
	notifications    []*model.Notification
	countUnreadCalls int
}

func (f *fakeNotificationRepo) GetByUser(_ context.Context, userID uint64, limit, offset int64) ([]*model.Notification, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	var res []*model.Notification
	for _, n := range f.notifications {
		if n.UserID == userID {
			res = append(res, n)
		}
	}
	if offset >= int64(len(res)) {
		return nil, nil
	}
	res = res[offset:]
	if limit < int64(len(res)) {
		res = res[:limit]
	}
	return res, nil
}

func (f *fakeNotificationRepo) CountUnread(_ context.Context, userID uint64) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.countUnreadCalls++

	var count int64
	for _, n := range f.notifications {
		if n.UserID == userID && !n.Read {
			count++
		}
	}
	return count, nil
}

func (f *fakeNotificationRepo) MarkRead(_ context.Context, userID uint64, ids []string) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	idSet := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		idSet[id] = struct{}{}
	}

	var updated int64
	for _, n := range f.notifications {
		if n.UserID != userID || n.Read {
			continue
		}
		if _, ok := idSet[n.ID]; ok {
			n.Read = true
			updated++
		}
	}
	return updated, nil
}
