// Package config 提供应用程序的配置加载和管理功能
// 使用 TOML 格式的配置文件，支持多路径查找，敏感字段可由环境变量 / .env 覆盖
package config

import (
	"fmt"
	"os"
	"time"

	"github.com/BurntSushi/toml" // TOML 配置文件解析库
	"github.com/joho/godotenv"   // .env 文件加载
)

// MainConfig 主配置，包含应用基本信息
type MainConfig struct {
	AppName string `toml:"appName"` // 应用名称，用于日志标识等
	Host    string `toml:"host"`    // 服务器监听地址，如 "0.0.0.0"
	Port    int    `toml:"port"`    // 服务器监听端口，如 8000
	Mode    string `toml:"mode"`    // 运行模式：dev 或 release
}

// MysqlConfig MySQL 数据库连接配置
type MysqlConfig struct {
	Host         string `toml:"host"`         // MySQL 服务器地址
	Port         int    `toml:"port"`         // MySQL 端口，默认 3306
	User         string `toml:"user"`         // 数据库用户名
	Password     string `toml:"password"`     // 数据库密码
	DatabaseName string `toml:"databaseName"` // 数据库名称
	// AutoMigrate 启动时是否自动建表
	// 关闭后若 group_memberships 表未创建，入群申请会降级到 Redis 备用存储
	AutoMigrate bool `toml:"autoMigrate"`
}

// RedisConfig Redis 连接配置
type RedisConfig struct {
	Host     string `toml:"host"`     // Redis 服务器地址
	Port     int    `toml:"port"`     // Redis 端口，默认 6379
	Password string `toml:"password"` // Redis 密码，无密码留空
	Db       int    `toml:"db"`       // Redis 数据库编号，默认 0
}

// LogConfig 日志配置，使用 lumberjack 进行日志轮转
type LogConfig struct {
	LogPath    string `toml:"logPath"`    // 日志文件存储目录
	FileName   string `toml:"fileName"`   // 日志文件名
	MaxSize    int    `toml:"maxSize"`    // 单个日志文件最大大小（MB）
	MaxBackups int    `toml:"maxBackups"` // 保留旧日志文件的最大个数
	MaxAge     int    `toml:"maxAge"`     // 保留旧日志文件的最大天数
	Level      string `toml:"level"`      // 日志级别：debug, info, warn, error
}

// KafkaConfig Kafka 消息队列配置
type KafkaConfig struct {
	MessageMode     string        `toml:"messageMode"`     // 消息模式："channel" 或 "kafka"
	HostPort        string        `toml:"hostPort"`        // Kafka 服务器地址，如 "localhost:9092"
	PostTopic       string        `toml:"postTopic"`       // 群组帖子广播主题
	MembershipTopic string        `toml:"membershipTopic"` // 入群申请事件主题
	ConsumerGroup   string        `toml:"consumerGroup"`   // 消费者组，每个实例需唯一才能收到全量帖子
	Timeout         time.Duration `toml:"timeout"`         // 超时时间（秒）
}

// StaticSrcConfig 静态资源路径配置
type StaticSrcConfig struct {
	StaticAvatarPath string `toml:"staticAvatarPath"` // 头像文件存储路径
	StaticMediaPath  string `toml:"staticMediaPath"`  // 讲道音频、音乐、封面等媒体存储路径
}

// JWTConfig JWT 认证配置
type JWTConfig struct {
	Secret             string `toml:"secret"`             // JWT 签名密钥，建议 32 字符以上
	AccessTokenExpiry  int    `toml:"accessTokenExpiry"`  // Access Token 有效期（分钟）
	RefreshTokenExpiry int    `toml:"refreshTokenExpiry"` // Refresh Token 有效期（小时）
}

// SentryConfig 错误上报配置，Dsn 为空则不启用
type SentryConfig struct {
	Dsn         string  `toml:"dsn"`
	Environment string  `toml:"environment"`
	SampleRate  float64 `toml:"sampleRate"`
}

// GeminiConfig 灵修助手使用的生成式模型配置
type GeminiConfig struct {
	ApiKey string `toml:"apiKey"`
	Model  string `toml:"model"` // 如 "gemini-1.5-flash"
}

// SecurityConfig 安全相关配置
type SecurityConfig struct {
	TlsRedirect bool `toml:"tlsRedirect"` // 是否将 HTTP 请求重定向到 HTTPS（由 Nginx 处理 SSL 时关闭）
}

// Config 应用程序总配置，聚合所有子配置
type Config struct {
	MainConfig      `toml:"mainConfig"`
	MysqlConfig     `toml:"mysqlConfig"`
	RedisConfig     `toml:"redisConfig"`
	LogConfig       `toml:"logConfig"`
	KafkaConfig     `toml:"kafkaConfig"`
	StaticSrcConfig `toml:"staticSrcConfig"`
	JWTConfig       `toml:"jwtConfig"`
	SentryConfig    `toml:"sentryConfig"`
	GeminiConfig    `toml:"geminiConfig"`
	SecurityConfig  `toml:"securityConfig"`
}

// config 全局配置单例，延迟加载
var config *Config

// 候选配置文件路径（优先加载本地配置）
var searchPaths = []string{
	"configs/config_local.toml",
	"configs/config.toml",
	"../../configs/config_local.toml", // 从子目录运行时的路径
	"../../configs/config.toml",
}

// LoadConfig 从多个候选路径加载配置文件，找到第一个可用的即停止
// 随后读取 .env 与环境变量覆盖敏感字段
func LoadConfig(cfg *Config) error {
	loaded := false
	for _, path := range searchPaths {
		if _, err := toml.DecodeFile(path, cfg); err == nil {
			loaded = true
			break
		}
	}

	// .env 不存在时忽略
	_ = godotenv.Load()
	applyEnvOverrides(cfg)
	applyDefaults(cfg)

	if !loaded {
		return fmt.Errorf("could not find configuration file in any of the search paths")
	}
	return nil
}

// applyEnvOverrides 环境变量优先于配置文件
func applyEnvOverrides(cfg *Config) {
	overrides := map[string]*string{
		"CHURCH_JWT_SECRET":     &cfg.JWTConfig.Secret,
		"CHURCH_MYSQL_PASSWORD": &cfg.MysqlConfig.Password,
		"CHURCH_REDIS_PASSWORD": &cfg.RedisConfig.Password,
		"CHURCH_GEMINI_API_KEY": &cfg.GeminiConfig.ApiKey,
		"CHURCH_SENTRY_DSN":     &cfg.SentryConfig.Dsn,
	}
	for env, target := range overrides {
		if v, ok := os.LookupEnv(env); ok && v != "" {
			*target = v
		}
	}
}

func applyDefaults(cfg *Config) {
	if cfg.MainConfig.AppName == "" {
		cfg.MainConfig.AppName = "church_app_server"
	}
	if cfg.MainConfig.Port == 0 {
		cfg.MainConfig.Port = 8000
	}
	if cfg.MainConfig.Mode == "" {
		cfg.MainConfig.Mode = "dev"
	}
	if cfg.KafkaConfig.MessageMode == "" {
		cfg.KafkaConfig.MessageMode = "channel"
	}
	if cfg.KafkaConfig.ConsumerGroup == "" {
		cfg.KafkaConfig.ConsumerGroup = cfg.MainConfig.AppName
	}
	if cfg.JWTConfig.AccessTokenExpiry == 0 {
		cfg.JWTConfig.AccessTokenExpiry = 30
	}
	if cfg.JWTConfig.RefreshTokenExpiry == 0 {
		cfg.JWTConfig.RefreshTokenExpiry = 168
	}
	if cfg.GeminiConfig.Model == "" {
		cfg.GeminiConfig.Model = "gemini-1.5-flash"
	}
	if cfg.StaticSrcConfig.StaticAvatarPath == "" {
		cfg.StaticSrcConfig.StaticAvatarPath = "./static/avatars"
	}
	if cfg.StaticSrcConfig.StaticMediaPath == "" {
		cfg.StaticSrcConfig.StaticMediaPath = "./static/media"
	}
}

// GetConfig 获取全局配置实例（单例模式）
// 首次调用时会自动加载配置文件，找不到文件时使用默认值
func GetConfig() *Config {
	if config == nil {
		config = new(Config)
		_ = LoadConfig(config)
	}
	return config
}
