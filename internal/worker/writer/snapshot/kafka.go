package snapshot

import (
	"context"
	"time"

	"github.com/bytedance/sonic"
	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	"onchain-health/internal/worker/model"
	"onchain-health/internal/worker/writer"
	"onchain-health/pkg/utils"
)

// MessageWriter kafka.Writer 的最小接口
type MessageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
}

type KafkaSnapshotWriter struct {
	mq    MessageWriter
	tl    *zap.Logger
	topic string
}

func NewKafkaSnapshotWriter(mq MessageWriter, tl *zap.Logger, topic string) writer.BatchWriter[model.TokenSnapshot] {
	return &KafkaSnapshotWriter{mq: mq, tl: tl, topic: topic}
}

func (w *KafkaSnapshotWriter) BWrite(ctx context.Context, snapshots []model.TokenSnapshot) error {
	if len(snapshots) == 0 {
		return nil
	}

	msgs := make([]kafka.Message, 0, len(snapshots))
	for _, s := range snapshots {
		msg, err := w.marshalToMsg(s)
		if err != nil {
			w.tl.Warn("marshal snapshot failed", zap.String("token", s.ContractAddress), zap.Error(err))
			continue
		}
		msgs = append(msgs, msg)
	}
	if len(msgs) == 0 {
		return nil
	}

	newCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	var err error
	for attempt := 0; attempt < retryCount; attempt++ {
		err = w.mq.WriteMessages(newCtx, msgs...)
		if err == nil {
			break
		}
	}
	if err != nil {
		w.tl.Warn("❌ MQ write failed, exceeded the maximum number of retries", zap.Error(err))
		return err
	}
	return nil
}

func (w *KafkaSnapshotWriter) Close() error {
	return nil
}

func (w *KafkaSnapshotWriter) marshalToMsg(s model.TokenSnapshot) (kafka.Message, error) {
	data, err := sonic.Marshal(s)
	if err != nil {
		return kafka.Message{}, err
	}
	return kafka.Message{
		Topic: w.topic,
		Key:   []byte(utils.SnapshotTopicKey(s.Chain, s.ContractAddress)),
		Value: data,
	}, nil
}
