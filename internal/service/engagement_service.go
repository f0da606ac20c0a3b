package service

import (
	"ManadaBook/internal/model"
	"ManadaBook/internal/pkg/consts"
	"ManadaBook/internal/pkg/redis"
	"ManadaBook/internal/repository"
	"context"
	log "log/slog"
	"strconv"
	"time"

	"github.com/google/uuid"
)

const countCacheExpiration = 1 * time.Hour

type EngagementService interface {
	Toggle(ctx context.Context, relation model.RelationType, sourceUserID uint64, targetID string) (model.EdgeState, error)
	Block(ctx context.Context, sourceUserID, targetUserID uint64) error
	GetEdgeCount(ctx context.Context, relation model.RelationType, targetID string) (int64, error)
	HasEdge(ctx context.Context, relation model.RelationType, sourceUserID uint64, targetID string) (bool, error)
	Reconcile(ctx context.Context) (int64, error)
}

type engagementServiceImpl struct {
	engagementRepo repository.EngagementRepo
	momentRepo     repository.MomentRepo
	pushSvc        PushService
	now            func() time.Time
}

func NewEngagementService(
	engagementRepo repository.EngagementRepo,
	momentRepo repository.MomentRepo,
	pushSvc PushService,
) EngagementService {
	return &engagementServiceImpl{
		engagementRepo: engagementRepo,
		momentRepo:     momentRepo,
		pushSvc:        pushSvc,
		now:            time.Now,
	}
}

// Toggle 翻转一条互动边：不存在则创建并 +1，存在则删除并 -1
// 边变更、计数调整和通知写入由仓储层放进同一个事务
func (s *engagementServiceImpl) Toggle(ctx context.Context, relation model.RelationType, sourceUserID uint64, targetID string) (model.EdgeState, error) {
	if !relation.Valid() || relation == model.RelationBlock {
		return "", ErrRelationInvalid
	}
	if targetID == "" {
		return "", ErrParamInvalid
	}

	notifyUserID, err := s.resolveTarget(ctx, relation, sourceUserID, targetID)
	if err != nil {
		return "", err
	}

	edge := &model.EngagementEdge{
		RelationType: relation,
		SourceUserID: sourceUserID,
		TargetID:     targetID,
		CreatedAt:    s.now(),
	}

	var notif *model.Notification
	if relation.Notifiable() && notifyUserID != 0 && notifyUserID != sourceUserID {
		notif = &model.Notification{
			ID:        uuid.NewString(),
			UserID:    notifyUserID,
			Kind:      string(relation),
			ActorID:   sourceUserID,
			TargetID:  targetID,
			CreatedAt: s.now(),
		}
	}

	state, err := s.engagementRepo.Toggle(ctx, edge, notif)
	if err != nil {
		return "", err
	}

	s.invalidateCount(ctx, relation, targetID)

	if state == model.EdgeActive && notif != nil {
		_ = redis.DeleteKey(ctx, consts.NotificationUnreadKey+strconv.FormatUint(notif.UserID, 10))
		go s.pushSvc.Send(context.Background(), notif)
	}

	return state, nil
}

// Block 拉黑：创建 block 边并级联删除双向 follow 边，全部在一个事务里
func (s *engagementServiceImpl) Block(ctx context.Context, sourceUserID, targetUserID uint64) error {
	if sourceUserID == targetUserID {
		return ErrBlockSelf
	}
	if targetUserID == 0 {
		return ErrParamInvalid
	}

	if err := s.engagementRepo.Block(ctx, sourceUserID, targetUserID, s.now()); err != nil {
		return err
	}

	s.invalidateCount(ctx, model.RelationFollow, repository.FormatUserID(sourceUserID))
	s.invalidateCount(ctx, model.RelationFollow, repository.FormatUserID(targetUserID))
	return nil
}

// GetEdgeCount 读目标的边数量，Redis 读穿缓存
func (s *engagementServiceImpl) GetEdgeCount(ctx context.Context, relation model.RelationType, targetID string) (int64, error) {
	if !relation.Valid() {
		return 0, ErrRelationInvalid
	}

	key := edgeCountKey(relation, targetID)
	count, err := redis.GetInt64(ctx, key)
	if err == nil {
		return count, nil
	}

	realCount, err := s.engagementRepo.CountEdges(ctx, relation, targetID)
	if err != nil {
		return 0, err
	}
	_ = redis.SetWithExpiration(ctx, key, realCount, countCacheExpiration)
	return realCount, nil
}

func (s *engagementServiceImpl) HasEdge(ctx context.Context, relation model.RelationType, sourceUserID uint64, targetID string) (bool, error) {
	if !relation.Valid() {
		return false, ErrRelationInvalid
	}
	if sourceUserID == 0 {
		return false, nil
	}
	return s.engagementRepo.HasEdge(ctx, relation, sourceUserID, targetID)
}

// Reconcile 对账：以边的真实数量为准校正所有冗余计数，返回修正条数
// TODO: follow 关系发起方的 following_count 目前不在对账范围内，需要按 source 聚合的一版
func (s *engagementServiceImpl) Reconcile(ctx context.Context) (int64, error) {
	relations := []model.RelationType{
		model.RelationLike,
		model.RelationReaction,
		model.RelationFollow,
		model.RelationMember,
		model.RelationAttend,
	}

	var fixed int64
	for _, relation := range relations {
		counts, err := s.engagementRepo.EdgeCounts(ctx, relation)
		if err != nil {
			return fixed, err
		}

		// 已无任何边但计数仍非零的目标也要清回零
		countedIDs, err := s.engagementRepo.CountedTargetIDs(ctx, relation)
		if err != nil {
			return fixed, err
		}
		for _, id := range countedIDs {
			if _, ok := counts[id]; !ok {
				counts[id] = 0
			}
		}

		for targetID, count := range counts {
			changed, err := s.engagementRepo.SyncCounter(ctx, relation, targetID, count)
			if err != nil {
				log.ErrorContext(ctx, "failed to sync counter",
					"relation", relation, "targetID", targetID, "err", err)
				continue
			}
			if changed {
				fixed++
				s.invalidateCount(ctx, relation, targetID)
			}
		}
	}
	return fixed, nil
}

// resolveTarget 校验目标并返回需要收通知的用户
// like/reaction 的目标是动态，通知发给作者；follow 的目标就是用户本身；
// member/attend 的圈子与活动由外部服务管理，这里不做存在性校验
func (s *engagementServiceImpl) resolveTarget(ctx context.Context, relation model.RelationType, sourceUserID uint64, targetID string) (uint64, error) {
	switch relation {
	case model.RelationLike, model.RelationReaction:
		moment, err := s.momentRepo.GetMoment(ctx, targetID)
		if err != nil {
			return 0, err
		}
		if moment == nil {
			return 0, ErrMomentNotFound
		}
		return moment.AuthorID, nil
	case model.RelationFollow:
		targetUserID, err := strconv.ParseUint(targetID, 10, 64)
		if err != nil || targetUserID == 0 {
			return 0, ErrParamInvalid
		}
		if targetUserID == sourceUserID {
			return 0, ErrFollowSelf
		}
		return targetUserID, nil
	}
	return 0, nil
}

func (s *engagementServiceImpl) invalidateCount(ctx context.Context, relation model.RelationType, targetID string) {
	_ = redis.DeleteKey(ctx, edgeCountKey(relation, targetID))
}

func edgeCountKey(relation model.RelationType, targetID string) string {
	return consts.EdgeCountKey + string(relation) + ":" + targetID
}
