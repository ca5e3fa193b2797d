package config

// Config 配置主体
type Config struct {
	Server       ServerConfig       `mapstructure:"server"`
	DB           DBConfig           `mapstructure:"database"`
	Redis        RedisConfig        `mapstructure:"redis"`
	MinIO        MinIOConfig        `mapstructure:"minio"`
	Logstash     LogstashConfig     `mapstructure:"logstash"`
	Auth         AuthConfig         `mapstructure:"auth"`
	Kafka        KafkaConfig        `mapstructure:"kafka"`
	KafkaRelay   KafkaRelayConsumer `mapstructure:"kafka_relay_consumer"`
	Sync         SyncConfig         `mapstructure:"sync"`
	RateLimit    RateLimitConfig    `mapstructure:"rate_limit"`
	WebSocket    WebSocketConfig    `mapstructure:"websocket"`
	ChangeStream ChangeStreamConfig `mapstructure:"change_stream"`
}

// ServerConfig Server配置
type ServerConfig struct {
	Port           int      `mapstructure:"port"`
	Mode           string   `mapstructure:"mode"`
	AllowedOrigins []string `mapstructure:"allowed_origins"` // 为空时放行所有来源
}

// DBConfig 数据库配置
type DBConfig struct {
	Driver      string `mapstructure:"driver"` // postgres | mysql
	DSN         string `mapstructure:"dsn"`
	MaxIdle     int    `mapstructure:"max_idle"`
	MaxOpen     int    `mapstructure:"max_open"`
	MaxLifetime int    `mapstructure:"max_lifetime"`
	AutoMigrate bool   `mapstructure:"auto_migrate"`
}

type RedisConfig struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
	PoolSize int    `mapstructure:"pool_size"`
}

// MinIOConfig MinIO配置
type MinIOConfig struct {
	InternalEndpoint string `mapstructure:"internal_endpoint"`
	ExternalEndpoint string `mapstructure:"external_endpoint"`
	AccessKey        string `mapstructure:"access_key"`
	SecretKey        string `mapstructure:"secret_key"`
	MainBucket       string `mapstructure:"main_bucket"`
	InternalUseSSL   bool   `mapstructure:"internal_use_ssl"`
	MaxUploadSize    int64  `mapstructure:"max_upload_size"`
}

// LogstashConfig 远程日志
type LogstashConfig struct {
	Address string `mapstructure:"address"`
	Index   string `mapstructure:"index"`
	Token   string `mapstructure:"token"`
}

// AuthConfig 认证方签发的 JWT 校验参数
type AuthConfig struct {
	Secret string `mapstructure:"secret"`
	Issuer string `mapstructure:"issuer"`
}

type KafkaConfig struct {
	Enable   bool           `mapstructure:"enable"`
	Brokers  []string       `mapstructure:"brokers"`
	Sasl     SaslConfig     `mapstructure:"sasl"`
	Consumer ConsumerConfig `mapstructure:"consumer"`
}

type SaslConfig struct {
	Enable   bool   `mapstructure:"enable"`
	Username string `mapstructure:"username"`
	Password string `mapstructure:"password"`
}

type ConsumerConfig struct {
	SessionTimeout    int    `mapstructure:"session_timeout"`
	HeartbeatInterval int    `mapstructure:"heartbeat_interval"`
	RebalanceTimeout  int    `mapstructure:"rebalance_timeout"`
	InitialOffset     string `mapstructure:"initial_offset"` // newest | oldest
	ClientID          string `mapstructure:"client_id"`
}

// KafkaRelayConsumer canal 变更转发消费者
type KafkaRelayConsumer struct {
	Topics  []string `mapstructure:"topics"`
	GroupID string   `mapstructure:"group_id"`
}

// SyncConfig 实时同步参数
type SyncConfig struct {
	InitialLoadLimit int    `mapstructure:"initial_load_limit"`
	FetchTimeout     int    `mapstructure:"fetch_timeout"` // 毫秒
	EnrichFullRows   bool   `mapstructure:"enrich_full_rows"`
	ReconcileSpec    string `mapstructure:"reconcile_spec"`
}

// RateLimitConfig 令牌桶参数
type RateLimitConfig struct {
	HTTPRate  float64 `mapstructure:"http_rate"`
	HTTPBurst int     `mapstructure:"http_burst"`
	WSRate    float64 `mapstructure:"ws_rate"`
	WSBurst   int     `mapstructure:"ws_burst"`
}

type WebSocketConfig struct {
	WriteBuffer  int `mapstructure:"write_buffer"`
	PingInterval int `mapstructure:"ping_interval"` // 秒
	ReadTimeout  int `mapstructure:"read_timeout"`  // 秒
}

// ChangeStreamConfig Redis 变更订阅参数
type ChangeStreamConfig struct {
	ChannelPrefix string `mapstructure:"channel_prefix"`
	BufferSize    int    `mapstructure:"buffer_size"`
}
