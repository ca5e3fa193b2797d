package config

import (
	"errors"
	"fmt"
	log "log/slog"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Cfg 全局可访问的配置实例
var Cfg *Config

// LoadConfig 从文件加载配置并填充到 Cfg，环境变量 HUDDLE_* 覆盖文件值
func LoadConfig() error {
	if err := godotenv.Load(); err != nil {
		log.Debug("no .env file loaded", "err", err)
	}

	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath("./configs")
	v.SetEnvPrefix("HUDDLE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var configFileNotFoundError viper.ConfigFileNotFoundError
		if !errors.As(err, &configFileNotFoundError) {
			return fmt.Errorf("failed to read config: %w", err)
		}
		log.Warn("config file not found, using defaults and env", "err", err)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return fmt.Errorf("failed to unmarshal config: %w", err)
	}

	Cfg = &cfg

	return nil
}

// Default 未加载配置文件时使用的默认配置，测试中也会用到
func Default() *Config {
	v := viper.New()
	setDefaults(v)
	var cfg Config
	_ = v.Unmarshal(&cfg)
	return &cfg
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.mode", "release")
	v.SetDefault("database.driver", "postgres")
	v.SetDefault("database.max_idle", 10)
	v.SetDefault("database.max_open", 50)
	v.SetDefault("database.max_lifetime", 30)
	v.SetDefault("redis.addr", "127.0.0.1:6379")
	v.SetDefault("redis.pool_size", 20)
	v.SetDefault("minio.main_bucket", "huddle")
	v.SetDefault("minio.max_upload_size", 20<<20)
	v.SetDefault("logstash.index", "logstash-huddle")
	v.SetDefault("kafka_relay_consumer.group_id", "huddle-change-relay")
	v.SetDefault("kafka_relay_consumer.topics", []string{"huddle.messages", "huddle.reactions", "huddle.message_files"})
	v.SetDefault("kafka.consumer.session_timeout", 10)
	v.SetDefault("kafka.consumer.heartbeat_interval", 3)
	v.SetDefault("kafka.consumer.rebalance_timeout", 60)
	v.SetDefault("kafka.consumer.initial_offset", "newest")
	v.SetDefault("kafka.consumer.client_id", "huddle-change-relay")
	v.SetDefault("sync.initial_load_limit", 100)
	v.SetDefault("sync.fetch_timeout", 3000)
	v.SetDefault("sync.reconcile_spec", "0 */5 * * * *")
	v.SetDefault("rate_limit.http_rate", 20)
	v.SetDefault("rate_limit.http_burst", 40)
	v.SetDefault("rate_limit.ws_rate", 10)
	v.SetDefault("rate_limit.ws_burst", 20)
	v.SetDefault("websocket.write_buffer", 256)
	v.SetDefault("websocket.ping_interval", 30)
	v.SetDefault("websocket.read_timeout", 60)
	v.SetDefault("change_stream.channel_prefix", "huddle:change:")
	v.SetDefault("change_stream.buffer_size", 256)
}
