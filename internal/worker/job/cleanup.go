package job

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"onchain-health/internal/worker/model"
	"onchain-health/internal/worker/repository"
)

// CleanupJob 清理过期的历史快照
type CleanupJob struct {
	repo      repository.Repository
	retention time.Duration
	now       func() time.Time
	logger    *zap.Logger
}

func NewCleanupJob(repo repository.Repository, retentionDays int, logger *zap.Logger) *CleanupJob {
	return &CleanupJob{
		repo:      repo,
		retention: time.Duration(retentionDays) * 24 * time.Hour,
		now:       time.Now,
		logger:    logger,
	}
}

// Cutoff 早于该毫秒时间戳的快照会被删除
func (j *CleanupJob) Cutoff() int64 {
	return j.now().Add(-j.retention).UnixMilli()
}

// Run 删除 retention 之前生成的快照
func (j *CleanupJob) Run(ctx context.Context) error {
	db := j.repo.GetDB()
	if db == nil {
		return fmt.Errorf("db is nil")
	}
	cutoff := j.Cutoff()
	res := db.WithContext(ctx).Where("generated_at < ?", cutoff).Delete(&model.MetricsSnapshot{})
	if res.Error != nil {
		return res.Error
	}
	j.logger.Info("cleaned old snapshots", zap.Int64("cutoff", cutoff), zap.Int64("rows", res.RowsAffected))
	return nil
}
