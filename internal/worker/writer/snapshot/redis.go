package snapshot

import (
	"context"
	"time"

	"github.com/bytedance/sonic"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"onchain-health/internal/worker/model"
	"onchain-health/internal/worker/writer"
	"onchain-health/pkg/utils"
)

const retryCount = 3

// RedisSnapshotWriter 每个代币只保留最新一份快照，供前端直接读取
type RedisSnapshotWriter struct {
	redis redis.Cmdable
	tl    *zap.Logger
	ttl   time.Duration
}

func NewRedisSnapshotWriter(rdb redis.Cmdable, tl *zap.Logger, ttl time.Duration) writer.BatchWriter[model.TokenSnapshot] {
	return &RedisSnapshotWriter{redis: rdb, tl: tl, ttl: ttl}
}

func (w *RedisSnapshotWriter) BWrite(ctx context.Context, snapshots []model.TokenSnapshot) error {
	if len(snapshots) == 0 {
		return nil
	}

	keys := make([]string, 0, len(snapshots))
	values := make([][]byte, 0, len(snapshots))
	for _, s := range latestPerToken(snapshots) {
		data, err := sonic.Marshal(s)
		if err != nil {
			w.tl.Warn("marshal snapshot failed", zap.String("token", s.ContractAddress), zap.Error(err))
			continue
		}
		keys = append(keys, utils.SnapshotKey(s.Chain, s.ContractAddress))
		values = append(values, data)
	}
	if len(keys) == 0 {
		return nil
	}

	// Exec 之后 pipeline 会被清空，每次重试重新组装
	var err error
	for attempt := 0; attempt < retryCount; attempt++ {
		pipe := w.redis.Pipeline()
		for i := range keys {
			pipe.Set(ctx, keys[i], values[i], w.ttl)
		}
		_, err = pipe.Exec(ctx)
		if err == nil {
			break
		}
		time.Sleep(100 * time.Millisecond)
	}
	if err != nil {
		w.tl.Warn("❌ Redis pipeline exec failed, exceeded the maximum number of retries", zap.Error(err))
		return err
	}
	return nil
}

func (w *RedisSnapshotWriter) Close() error {
	return nil
}

// latestPerToken 同一批里同一代币只保留生成时间最新的一份，保持首次出现的顺序
func latestPerToken(snapshots []model.TokenSnapshot) []model.TokenSnapshot {
	index := make(map[string]int, len(snapshots))
	out := make([]model.TokenSnapshot, 0, len(snapshots))
	for _, s := range snapshots {
		key := utils.SnapshotKey(s.Chain, s.ContractAddress)
		if i, ok := index[key]; ok {
			if s.GeneratedAt >= out[i].GeneratedAt {
				out[i] = s
			}
			continue
		}
		index[key] = len(out)
		out = append(out, s)
	}
	return out
}
