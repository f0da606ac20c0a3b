package service

import (
	"ManadaBook/internal/api/dto"
	"ManadaBook/internal/model"
	"ManadaBook/internal/pkg/consts"
	"ManadaBook/internal/pkg/redis"
	"ManadaBook/internal/pkg/util"
	"ManadaBook/internal/repository"
	"context"
	log "log/slog"
	"time"

	"github.com/google/uuid"
)

const sweepLockTTL = 5 * time.Minute

type MomentService interface {
	CreateMoment(ctx context.Context, authorID uint64, req *dto.MomentCreateReq) (*model.Moment, error)
	ListMoments(ctx context.Context, authorID, circleID uint64, limit int64) ([]*model.Moment, error)
	RecordView(ctx context.Context, momentID string, viewerID uint64, completed bool) error
	DeleteMoment(ctx context.Context, momentID string, requesterID uint64) error
	SweepExpired(ctx context.Context) (int64, error)
}

type momentServiceImpl struct {
	momentRepo repository.MomentRepo
	now        func() time.Time
}

func NewMomentService(momentRepo repository.MomentRepo) MomentService {
	return &momentServiceImpl{
		momentRepo: momentRepo,
		now:        time.Now,
	}
}

// CreateMoment 发布限时动态，expires_at 在创建时定死为 created_at + 24h，之后不再变化
func (s *momentServiceImpl) CreateMoment(ctx context.Context, authorID uint64, req *dto.MomentCreateReq) (*model.Moment, error) {
	if req.MediaURL == "" {
		return nil, ErrMediaRequired
	}
	if req.MediaType != consts.MediaTypeImage && req.MediaType != consts.MediaTypeVideo {
		return nil, ErrMediaTypeInvalid
	}

	tags := req.Tags
	if len(tags) == 0 {
		tags = util.ExtractTags(req.Content)
	}

	now := s.now()
	moment := &model.Moment{
		ID:        uuid.NewString(),
		AuthorID:  authorID,
		MediaURL:  req.MediaURL,
		MediaType: req.MediaType,
		Content:   req.Content,
		Duration:  req.Duration,
		CircleID:  req.CircleID,
		Tags:      tags,
		CreatedAt: now,
		ExpiresAt: now.Add(consts.MomentTTL * time.Second),
		IsActive:  true,
	}

	if err := s.momentRepo.CreateMoment(ctx, moment); err != nil {
		return nil, err
	}

	// 发现标记是第二个冗余信号，只做尽力维护，失败不影响发布结果
	if err := s.momentRepo.SetAuthorStatus(ctx, authorID, true); err != nil {
		log.WarnContext(ctx, "failed to flag author status", "authorID", authorID, "err", err)
	}

	return moment, nil
}

func (s *momentServiceImpl) ListMoments(ctx context.Context, authorID, circleID uint64, limit int64) ([]*model.Moment, error) {
	if limit <= 0 {
		limit = consts.DefaultMomentListLimit
	}
	if limit > consts.MaxMomentListLimit {
		limit = consts.MaxMomentListLimit
	}
	return s.momentRepo.ListVisible(ctx, authorID, circleID, s.now(), limit)
}

// RecordView 上报一次浏览，同一观看者重复上报会重复计数
func (s *momentServiceImpl) RecordView(ctx context.Context, momentID string, viewerID uint64, completed bool) error {
	moment, err := s.momentRepo.GetMoment(ctx, momentID)
	if err != nil {
		return err
	}
	if moment == nil {
		return ErrMomentNotFound
	}

	return s.momentRepo.AppendView(ctx, &model.MomentView{
		MomentID:  momentID,
		ViewerID:  viewerID,
		Completed: completed,
		ViewedAt:  s.now(),
	})
}

// DeleteMoment 作者主动下线自己的动态，软删除并记录 deleted_at
func (s *momentServiceImpl) DeleteMoment(ctx context.Context, momentID string, requesterID uint64) error {
	moment, err := s.momentRepo.GetMoment(ctx, momentID)
	if err != nil {
		return err
	}
	if moment == nil {
		return ErrMomentNotFound
	}
	if moment.AuthorID != requesterID {
		return ErrPermissionDenied
	}

	deletedAt := s.now()
	if _, err = s.momentRepo.RetireMoment(ctx, momentID, consts.RetireReasonOwnerDelete, &deletedAt); err != nil {
		return err
	}

	s.refreshAuthorStatus(ctx, moment.AuthorID)
	return nil
}

// SweepExpired 下线所有已过期的动态并返回数量
// 锁只用来避免多实例同时空跑，过滤条件本身是幂等的，并发执行也不会出错
func (s *momentServiceImpl) SweepExpired(ctx context.Context) (int64, error) {
	lockValue := uuid.NewString()
	locked, err := redis.TryLock(ctx, consts.MomentSweepLock, lockValue, sweepLockTTL, 0)
	if err != nil {
		return 0, err
	}
	if !locked {
		log.InfoContext(ctx, "moment sweep already running, skipped")
		return 0, nil
	}
	defer redis.UnLock(ctx, consts.MomentSweepLock, lockValue)

	retired, authors, err := s.momentRepo.RetireExpired(ctx, s.now())
	if err != nil {
		return 0, err
	}

	for _, authorID := range authors {
		s.refreshAuthorStatus(ctx, authorID)
	}

	return retired, nil
}

// refreshAuthorStatus 作者已无活跃动态时摘掉发现标记
func (s *momentServiceImpl) refreshAuthorStatus(ctx context.Context, authorID uint64) {
	count, err := s.momentRepo.CountActiveByAuthor(ctx, authorID, s.now())
	if err != nil {
		log.WarnContext(ctx, "failed to count active moments", "authorID", authorID, "err", err)
		return
	}
	if count == 0 {
		if err := s.momentRepo.SetAuthorStatus(ctx, authorID, false); err != nil {
			log.WarnContext(ctx, "failed to clear author status", "authorID", authorID, "err", err)
		}
	}
}
