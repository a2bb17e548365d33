package snapshot

import (
	"context"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"onchain-health/internal/worker/model"
	"onchain-health/internal/worker/writer"
)

// DbSnapshotWriter 追加写入历史快照表
type DbSnapshotWriter struct {
	db *gorm.DB
	tl *zap.Logger
}

func NewDbSnapshotWriter(db *gorm.DB, tl *zap.Logger) writer.BatchWriter[model.TokenSnapshot] {
	return &DbSnapshotWriter{db: db, tl: tl}
}

func (w *DbSnapshotWriter) BWrite(ctx context.Context, snapshots []model.TokenSnapshot) error {
	if len(snapshots) == 0 {
		return nil
	}

	rows := make([]*model.MetricsSnapshot, 0, len(snapshots))
	for _, s := range snapshots {
		row, err := model.NewMetricsSnapshot(s)
		if err != nil {
			w.tl.Warn("build snapshot row failed", zap.String("token", s.ContractAddress), zap.Error(err))
			continue
		}
		rows = append(rows, row)
	}
	if len(rows) == 0 {
		return nil
	}

	newCtx, cancel := context.WithTimeout(ctx, 15*time.Second)
	defer cancel()

	var err error
	for attempt := 0; attempt < retryCount; attempt++ {
		err = w.db.WithContext(newCtx).CreateInBatches(rows, 500).Error
		if err == nil {
			break
		}
	}
	if err != nil {
		w.tl.Warn("❌ DB write failed, exceeded the maximum number of retries", zap.Error(err), zap.Int("rows", len(rows)))
		return err
	}
	return nil
}

func (w *DbSnapshotWriter) Close() error {
	return nil
}
