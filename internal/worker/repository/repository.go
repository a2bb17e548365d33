package repository

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"onchain-health/internal/worker/config"
	"onchain-health/internal/worker/model"
	"onchain-health/pkg/database"
)

// New 按配置初始化各个下游，地址为空的下游跳过。postgres 连接失败返回错误，redis ping 失败只告警
func New(cfg config.Config, logger *zap.Logger) (Repository, error) {
	r := &repositoryImpl{cfg: cfg, logger: logger}
	if err := r.init(); err != nil {
		_ = r.Close()
		return nil, err
	}
	return r, nil
}

type repositoryImpl struct {
	cfg    config.Config
	logger *zap.Logger
	db     *gorm.DB
	rdb    *redis.Client
	mq     *kafka.Writer
}

func (r *repositoryImpl) init() error {
	if dsn := strings.TrimSpace(r.cfg.Postgres.DSN); dsn != "" {
		db, err := database.InitPG(dsn)
		if err != nil {
			return err
		}
		if err := db.AutoMigrate(&model.MetricsSnapshot{}); err != nil {
			return err
		}
		r.db = db
	} else {
		r.logger.Info("postgres dsn empty, skip snapshot history")
	}

	if r.cfg.Redis.Address != "" {
		r.rdb = redis.NewClient(&redis.Options{
			Addr:     r.cfg.Redis.Address,
			Password: r.cfg.Redis.Password,
			DB:       r.cfg.Redis.DB,
			PoolSize: 10,
		})
		ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer cancel()
		if err := r.rdb.Ping(ctx).Err(); err != nil {
			r.logger.Warn("failed to connect to redis, continue", zap.Error(err))
		}
	} else {
		r.logger.Info("redis address empty, skip snapshot cache")
	}

	if brokers := splitBrokers(r.cfg.Kafka.Brokers); len(brokers) > 0 {
		r.mq = &kafka.Writer{
			Addr:         kafka.TCP(brokers...),
			Balancer:     &kafka.Hash{},
			BatchSize:    100,
			BatchTimeout: 50 * time.Millisecond,
			RequiredAcks: kafka.RequireOne,
			Compression:  kafka.Snappy,
			MaxAttempts:  3,
			WriteTimeout: 2 * time.Second,
		}
	} else {
		r.logger.Info("kafka brokers empty, skip snapshot events")
	}
	return nil
}

func splitBrokers(s string) []string {
	var out []string
	for _, b := range strings.Split(s, ",") {
		if b = strings.TrimSpace(b); b != "" {
			out = append(out, b)
		}
	}
	return out
}

func (r *repositoryImpl) GetRDB() *redis.Client {
	return r.rdb
}

func (r *repositoryImpl) GetDB() *gorm.DB {
	return r.db
}

func (r *repositoryImpl) GetMQ() MQClient {
	return r.mq
}

func (r *repositoryImpl) Close() error {
	var errs []error
	if r.db != nil {
		if sqlDB, err := r.db.DB(); err == nil {
			errs = append(errs, sqlDB.Close())
		}
	}
	if r.rdb != nil {
		errs = append(errs, r.rdb.Close())
	}
	if r.mq != nil {
		errs = append(errs, r.mq.Close())
	}
	return errors.Join(errs...)
}
