// Package config 提供应用程序的配置加载和管理功能
// 使用 TOML 格式的配置文件，支持多路径查找
package config

import (
	"fmt"
	"sync"
	"time"

	"class_chat_server/pkg/constants"

	"github.com/BurntSushi/toml" // TOML 配置文件解析库
)

// MainConfig 主配置，包含应用基本信息
type MainConfig struct {
	AppName     string `toml:"appName"`     // 应用名称，用于日志标识等
	Host        string `toml:"host"`        // 服务器监听地址，如 "0.0.0.0"
	Port        int    `toml:"port"`        // 服务器监听端口，如 8000
	Mode        string `toml:"mode"`        // 运行模式：dev / release
	TlsRedirect bool   `toml:"tlsRedirect"` // 是否将 HTTP 重定向到 HTTPS（由 Nginx 处理 SSL 时关闭）
}

// MysqlConfig 数据库连接配置
type MysqlConfig struct {
	Driver       string `toml:"driver"`       // 驱动："mysql"（默认）或 "sqlite"（本地开发）
	Host         string `toml:"host"`         // MySQL 服务器地址
	Port         int    `toml:"port"`         // MySQL 端口，默认 3306
	User         string `toml:"user"`         // 数据库用户名
	Password     string `toml:"password"`     // 数据库密码
	DatabaseName string `toml:"databaseName"` // 数据库名称
	SqlitePath   string `toml:"sqlitePath"`   // sqlite 文件路径，driver 为 sqlite 时生效
}

// RedisConfig Redis 连接配置
type RedisConfig struct {
	Host     string `toml:"host"`     // Redis 服务器地址，默认 127.0.0.1
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

// KafkaConfig 广播分发配置
type KafkaConfig struct {
	MessageMode string        `toml:"messageMode"` // 分发模式："channel"（单机）、"kafka" 或 "redis"
	HostPort    string        `toml:"hostPort"`    // Kafka 服务器地址，如 "localhost:9092"
	ChatTopic   string        `toml:"chatTopic"`   // 聊天广播主题
	Timeout     time.Duration `toml:"timeout"`     // 超时时间（秒）
}

// StaticSrcConfig 静态资源路径配置
type StaticSrcConfig struct {
	StaticFilePath string `toml:"staticFilePath"` // 聊天附件存储路径
}

// JWTConfig JWT 认证配置
type JWTConfig struct {
	Secret            string `toml:"secret"`            // JWT 签名密钥，需与账号中心一致
	AccessTokenExpiry int    `toml:"accessTokenExpiry"` // Access Token 有效期（分钟），仅签发测试 Token 时使用
}

// SnowflakeConfig 雪花算法配置
type SnowflakeConfig struct {
	MachineID int64 `toml:"machineId"` // 雪花算法节点 ID，范围 0-1023，分布式部署时每台机器需唯一
}

// ChatConfig 班级聊天配置
type ChatConfig struct {
	MaxConnectionsPerUser int   `toml:"maxConnectionsPerUser"` // 单用户最大连接数
	HistoryDefaultLimit   int   `toml:"historyDefaultLimit"`   // 历史消息默认分页大小
	HistoryMaxLimit       int   `toml:"historyMaxLimit"`       // 历史消息最大分页大小
	MaxUploadSize         int64 `toml:"maxUploadSize"`         // 附件最大字节数
	RoomCacheMinutes      int   `toml:"roomCacheMinutes"`      // 聊天室缓存有效期（分钟）
}

// Config 应用程序总配置，聚合所有子配置
type Config struct {
	MainConfig      `toml:"mainConfig"`      // 主配置
	MysqlConfig     `toml:"mysqlConfig"`     // 数据库配置
	RedisConfig     `toml:"redisConfig"`     // Redis 配置
	LogConfig       `toml:"logConfig"`       // 日志配置
	KafkaConfig     `toml:"kafkaConfig"`     // 广播分发配置
	StaticSrcConfig `toml:"staticSrcConfig"` // 静态资源配置
	JWTConfig       `toml:"jwtConfig"`       // JWT 配置
	SnowflakeConfig `toml:"snowflakeConfig"` // 雪花算法配置
	ChatConfig      `toml:"chatConfig"`      // 聊天配置
}

var (
	config     *Config
	configOnce sync.Once
)

// searchPaths 候选配置文件路径（优先加载本地配置）
var searchPaths = []string{
	"configs/config_local.toml",       // 本地开发配置（优先）
	"configs/config.toml",             // 默认配置
	"../../configs/config_local.toml", // 从子目录运行时的路径
	"../../configs/config.toml",       // 从子目录运行时的路径
}

// LoadConfig 从多个候选路径加载配置文件
// 按顺序尝试加载，找到第一个可用的配置文件即停止
func LoadConfig(cfg *Config, paths ...string) error {
	if len(paths) == 0 {
		paths = searchPaths
	}
	for _, path := range paths {
		if _, err := toml.DecodeFile(path, cfg); err == nil {
			return nil
		}
	}
	return fmt.Errorf("could not find configuration file in any of the search paths")
}

// Decode 从 TOML 文本解析配置并补全默认值
func Decode(data string) (*Config, error) {
	cfg := new(Config)
	if _, err := toml.Decode(data, cfg); err != nil {
		return nil, err
	}
	cfg.applyDefaults()
	return cfg, nil
}

// GetConfig 获取全局配置实例（单例模式）
// 首次调用时会自动加载配置文件，找不到文件时全部使用默认值
func GetConfig() *Config {
	configOnce.Do(func() {
		config = new(Config)
		_ = LoadConfig(config) // 忽略加载错误，使用默认值
		config.applyDefaults()
	})
	return config
}

// applyDefaults 补全未配置的字段
func (c *Config) applyDefaults() {
	if c.AppName == "" {
		c.AppName = "class_chat_server"
	}
	if c.MainConfig.Host == "" {
		c.MainConfig.Host = "0.0.0.0"
	}
	if c.MainConfig.Port == 0 {
		c.MainConfig.Port = 8000
	}
	if c.Mode == "" {
		c.Mode = "dev"
	}
	if c.RedisConfig.Host == "" {
		c.RedisConfig.Host = "127.0.0.1"
	}
	if c.RedisConfig.Port == 0 {
		c.RedisConfig.Port = 6379
	}
	if c.Driver == "" {
		c.Driver = "mysql"
	}
	if c.SqlitePath == "" {
		c.SqlitePath = "class_chat.db"
	}
	if c.MessageMode == "" {
		c.MessageMode = "channel"
	}
	if c.ChatTopic == "" {
		c.ChatTopic = "class_chat"
	}
	if c.KafkaConfig.Timeout == 0 {
		c.KafkaConfig.Timeout = 1
	}
	if c.StaticFilePath == "" {
		c.StaticFilePath = "./static/files"
	}
	if c.LogPath == "" {
		c.LogPath = "./logs"
	}
	if c.MaxConnectionsPerUser <= 0 {
		c.MaxConnectionsPerUser = constants.MAX_CONNECTIONS_PER_USER
	}
	if c.HistoryDefaultLimit <= 0 {
		c.HistoryDefaultLimit = constants.HISTORY_DEFAULT_LIMIT
	}
	if c.HistoryMaxLimit <= 0 {
		c.HistoryMaxLimit = constants.HISTORY_MAX_LIMIT
	}
	if c.HistoryDefaultLimit > c.HistoryMaxLimit {
		c.HistoryDefaultLimit = c.HistoryMaxLimit
	}
	if c.MaxUploadSize <= 0 {
		c.MaxUploadSize = constants.FILE_MAX_SIZE
	}
	if c.RoomCacheMinutes <= 0 {
		c.RoomCacheMinutes = constants.REDIS_TIMEOUT
	}
}

// RoomCacheTTL 聊天室缓存有效期
func (c *ChatConfig) RoomCacheTTL() time.Duration {
	return time.Duration(c.RoomCacheMinutes) * time.Minute
}
