package config

// Config 配置主体
type Config struct {
	Server  ServerConfig  `mapstructure:"server"`
	Mongo   MongoConfig   `mapstructure:"mongo"`
	Redis   RedisConfig   `mapstructure:"redis"`
	MinIO   MinIOConfig   `mapstructure:"minio"`
	Cleanup CleanupConfig `mapstructure:"cleanup"`
	Push    PushConfig    `mapstructure:"push"`
	JWT     JWTConfig     `mapstructure:"jwt"`
}

// ServerConfig Server配置
type ServerConfig struct {
	Port int `mapstructure:"port"`
}

// MongoConfig 文档库配置
type MongoConfig struct {
	URL      string `mapstructure:"url"`
	Database string `mapstructure:"database"`
}

type RedisConfig struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
	PoolSize int    `mapstructure:"pool_size"`
}

// MinIOConfig MinIO配置
type MinIOConfig struct {
	Endpoint   string `mapstructure:"endpoint"`
	AccessKey  string `mapstructure:"access_key"`
	SecretKey  string `mapstructure:"secret_key"`
	MainBucket string `mapstructure:"main_bucket"`
	UseSSL     bool   `mapstructure:"use_ssl"`
}

// CleanupConfig 清理端点的共享密钥，由外部调度器调用时携带
type CleanupConfig struct {
	Secret string `mapstructure:"secret"`
}

// PushConfig 推送网关配置，为空则不推送
type PushConfig struct {
	GatewayURL string `mapstructure:"gateway_url"`
	APIKey     string `mapstructure:"api_key"`
	Timeout    int    `mapstructure:"timeout"` // 秒
}

// JWTConfig 签名配置，身份签发由外部服务负责，这里只做校验
type JWTConfig struct {
	Secret string `mapstructure:"secret"`
	Issuer string `mapstructure:"issuer"`
}
