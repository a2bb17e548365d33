package config

import (
	"errors"
	"fmt"
	"strings"

	"onchain-health/internal/worker/model"
	"onchain-health/pkg/logger"

	"github.com/fsnotify/fsnotify"
	"github.com/go-viper/mapstructure/v2"
	"github.com/spf13/viper"
)

// Config 定义整个配置的结构
type Config struct {
	Log         LogConfig         `mapstructure:"log"`
	Monitor     MonitorConfig     `mapstructure:"monitor"`
	DexScreener DexScreenerConfig `mapstructure:"dexscreener"`
	Worker      WorkerConfig      `mapstructure:"worker"`
	Tokens      []TokenConfig     `mapstructure:"tokens"`
	Redis       RedisConfig       `mapstructure:"redis"`
	Kafka       KafkaConfig       `mapstructure:"kafka"`
	Postgres    PostgresConfig    `mapstructure:"postgres"`
}

// LogConfig Log 日志配置
type LogConfig struct {
	Level string `mapstructure:"level"`
	Dir   string `mapstructure:"dir"`
}

type MonitorConfig struct {
	Enable         bool   `mapstructure:"enable"`
	PrometheusAddr string `mapstructure:"prometheus_addr"`
}

// DexScreenerConfig 行情源配置
type DexScreenerConfig struct {
	BaseURL   string `mapstructure:"base_url"`
	RateLimit int    `mapstructure:"rate_limit"` // 每分钟请求数
	Timeout   int    `mapstructure:"timeout"`    // 秒
	UserAgent string `mapstructure:"user_agent"`
}

type WorkerConfig struct {
	WorkerNum       int `mapstructure:"worker_num"`
	IntervalSeconds int `mapstructure:"interval_seconds"`
	TimeoutSeconds  int `mapstructure:"timeout_seconds"`
}

// TokenConfig 需要定时计算的代币
type TokenConfig struct {
	Name    string       `mapstructure:"name"`
	Chain   string       `mapstructure:"chain"`
	Address string       `mapstructure:"address"`
	Supply  SupplyConfig `mapstructure:"supply"`
}

type SupplyConfig struct {
	Total       string `mapstructure:"total"`
	Circulating string `mapstructure:"circulating"`
	Burned      string `mapstructure:"burned"`
	Locked      string `mapstructure:"locked"`
}

// RedisConfig Redis 配置，Address 为空则不写 redis
type RedisConfig struct {
	Address    string `mapstructure:"address"`
	Password   string `mapstructure:"password"`
	DB         int    `mapstructure:"db"`
	TTLSeconds int    `mapstructure:"ttl_seconds"`
}

// KafkaConfig Kafka 配置，Brokers 为空则不写 kafka
type KafkaConfig struct {
	Brokers       string `mapstructure:"brokers"`
	TopicSnapshot string `mapstructure:"topic_snapshot"`
}

// PostgresConfig PostgreSQL 配置，DSN 为空则不落库
type PostgresConfig struct {
	DSN           string `mapstructure:"dsn"`
	RetentionDays int    `mapstructure:"retention_days"`
}

// ToModel 转换为分析服务使用的代币配置
func (t TokenConfig) ToModel() model.TokenConfig {
	return model.TokenConfig{
		Name:            t.Name,
		Chain:           t.Chain,
		ContractAddress: t.Address,
		Supply: model.SupplyConfig{
			Total:       t.Supply.Total,
			Circulating: t.Supply.Circulating,
			Burned:      t.Supply.Burned,
			Locked:      t.Supply.Locked,
		},
	}
}

// WithDefaults 填充缺省值
func (c Config) WithDefaults() Config {
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Log.Dir == "" {
		c.Log.Dir = "logs"
	}
	if c.Worker.WorkerNum <= 0 {
		c.Worker.WorkerNum = 4
	}
	if c.Worker.IntervalSeconds <= 0 {
		c.Worker.IntervalSeconds = 300
	}
	if c.Worker.TimeoutSeconds <= 0 {
		c.Worker.TimeoutSeconds = 15
	}
	if c.DexScreener.Timeout <= 0 {
		c.DexScreener.Timeout = 10
	}
	if c.Redis.TTLSeconds <= 0 {
		c.Redis.TTLSeconds = 3600
	}
	if c.Postgres.RetentionDays <= 0 {
		c.Postgres.RetentionDays = 30
	}
	if c.Kafka.TopicSnapshot == "" {
		c.Kafka.TopicSnapshot = "onchain_health_snapshot"
	}
	return c
}

// Validate 只做结构校验，地址/链的合法性由分析服务构造时检查
func (c Config) Validate() error {
	var errs []error
	seen := make(map[string]struct{}, len(c.Tokens))
	for i, t := range c.Tokens {
		if strings.TrimSpace(t.Chain) == "" || strings.TrimSpace(t.Address) == "" {
			errs = append(errs, fmt.Errorf("tokens[%d]: chain and address are required", i))
			continue
		}
		key := strings.ToLower(t.Chain + ":" + t.Address)
		if _, ok := seen[key]; ok {
			errs = append(errs, fmt.Errorf("tokens[%d]: duplicate token %s", i, key))
		}
		seen[key] = struct{}{}
	}
	if c.Monitor.Enable && c.Monitor.PrometheusAddr == "" {
		errs = append(errs, errors.New("monitor.prometheus_addr is required when monitor is enabled"))
	}
	return errors.Join(errs...)
}

func InitConfig() Config {
	var config Config

	viper.SetConfigName("config.worker")
	viper.SetConfigType("yaml")
	viper.AddConfigPath("./config/")

	err := viper.ReadInConfig()
	if err != nil {
		panic(fmt.Errorf("fatal error config file: %s", err))
	}

	config, err = Decode(viper.AllSettings())
	if err != nil {
		panic(fmt.Errorf("fatal error config file: %s", err))
	}

	return config
}

// Decode 将 viper 读出的配置解码为 Config 并校验
func Decode(settings map[string]interface{}) (Config, error) {
	var config Config
	if err := mapstructure.Decode(settings, &config); err != nil {
		return Config{}, err
	}
	config = config.WithDefaults()
	if err := config.Validate(); err != nil {
		return Config{}, err
	}
	return config, nil
}

// WatchConfig 监听配置文件变化，解码失败时保留旧配置
func WatchConfig(config *Config, onChange func(Config)) {
	viper.WatchConfig()
	viper.OnConfigChange(func(e fsnotify.Event) {
		newConfig, err := Decode(viper.AllSettings())
		if err != nil {
			return
		}
		*config = newConfig
		logger.SetLogLevel(config.Log.Level)
		if onChange != nil {
			onChange(newConfig)
		}
	})
}
