package config

import (
	"log"
	"os"
	"strings"
	"sync"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
)

const defaultConfigPath = "configs/config_local.toml"

type MainConfig struct {
	AppName     string `toml:"appName"`
	Host        string `toml:"host"`
	Port        int    `toml:"port"`
	EnableTLS   bool   `toml:"enableTLS"`
	CertFile    string `toml:"certFile"`
	KeyFile     string `toml:"keyFile"`
	InternalKey string `toml:"internalKey"`
}

type MysqlConfig struct {
	Host         string `toml:"host"`
	Port         int    `toml:"port"`
	User         string `toml:"user"`
	Password     string `toml:"password"`
	DatabaseName string `toml:"databaseName"`
}

type LogConfig struct {
	LogPath string `toml:"logPath"`
	Level   string `toml:"level"`
}

type JwtConfig struct {
	Key         string `toml:"key"`
	ExpireHours int    `toml:"expireHours"`
	Issuer      string `toml:"issuer"`
}

type KafkaConfig struct {
	Brokers         []string `toml:"brokers"`
	ClientID        string   `toml:"clientID"`
	EventTopic      string   `toml:"eventTopic"`
	DeadLetterTopic string   `toml:"deadLetterTopic"`
	ConsumerGroupID string   `toml:"consumerGroupID"`
	Partitions      int32    `toml:"partitions"`
	Replication     int16    `toml:"replication"`
}

type RedisConfig struct {
	Host         string `toml:"host"`
	Port         int    `toml:"port"`
	Password     string `toml:"password"`
	DB           int    `toml:"db"`
	PoolSize     int    `toml:"poolSize"`
	MinIdleConns int    `toml:"minIdleConns"`
}

// GatewayConfig WebSocket 推送通道配置
type GatewayConfig struct {
	Path                    string  `toml:"path"`
	HandshakeTimeoutSeconds int     `toml:"handshakeTimeoutSeconds"`
	PongWaitSeconds         int     `toml:"pongWaitSeconds"`
	SendBufferSize          int     `toml:"sendBufferSize"`
	ReadLimitBytes          int64   `toml:"readLimitBytes"`
	MessagesPerSecond       float64 `toml:"messagesPerSecond"`
	MessageBurst            int     `toml:"messageBurst"`
}

type Config struct {
	MainConfig    `toml:"mainConfig"`
	MysqlConfig   `toml:"mysqlConfig"`
	JwtConfig     `toml:"jwtConfig"`
	KafkaConfig   `toml:"kafkaConfig"`
	LogConfig     `toml:"logConfig"`
	RedisConfig   `toml:"redisConfig"`
	GatewayConfig `toml:"gatewayConfig"`
}

var (
	config *Config
	once   sync.Once
)

// LoadConfig 读取 TOML 配置文件，再用环境变量覆盖敏感项
func LoadConfig(path string) (*Config, error) {
	// .env 不存在时忽略
	_ = godotenv.Load()

	if v := strings.TrimSpace(os.Getenv("NOTIFYLINK_CONFIG")); v != "" && path == "" {
		path = v
	}
	if path == "" {
		path = defaultConfigPath
	}

	c := new(Config)
	var err error
	if _, err = toml.DecodeFile(path, c); err != nil {
		log.Printf("加载配置文件失败: %v, 使用默认设置", err)
	}
	applyEnv(c)
	applyDefaults(c)
	return c, err
}

func applyEnv(c *Config) {
	if v := os.Getenv("NOTIFYLINK_JWT_KEY"); v != "" {
		c.JwtConfig.Key = v
	}
	if v := os.Getenv("NOTIFYLINK_MYSQL_PASSWORD"); v != "" {
		c.MysqlConfig.Password = v
	}
	if v := os.Getenv("NOTIFYLINK_REDIS_PASSWORD"); v != "" {
		c.RedisConfig.Password = v
	}
	if v := os.Getenv("NOTIFYLINK_INTERNAL_KEY"); v != "" {
		c.MainConfig.InternalKey = v
	}
}

func applyDefaults(c *Config) {
	if c.MainConfig.AppName == "" {
		c.MainConfig.AppName = "notifylink"
	}
	if c.MainConfig.Host == "" {
		c.MainConfig.Host = "0.0.0.0"
	}
	if c.MainConfig.Port == 0 {
		c.MainConfig.Port = 8080
	}
	if c.JwtConfig.ExpireHours <= 0 {
		c.JwtConfig.ExpireHours = 24
	}
	if c.KafkaConfig.EventTopic == "" {
		c.KafkaConfig.EventTopic = "notification.events"
	}
	if c.KafkaConfig.DeadLetterTopic == "" {
		c.KafkaConfig.DeadLetterTopic = c.KafkaConfig.EventTopic + ".dlq"
	}
	if c.KafkaConfig.ConsumerGroupID == "" {
		c.KafkaConfig.ConsumerGroupID = c.MainConfig.AppName + "-notification"
	}
	g := &c.GatewayConfig
	if g.Path == "" {
		g.Path = "/ws/notifications"
	}
	if g.HandshakeTimeoutSeconds <= 0 {
		g.HandshakeTimeoutSeconds = 10
	}
	if g.PongWaitSeconds <= 0 {
		g.PongWaitSeconds = 60
	}
	if g.SendBufferSize <= 0 {
		g.SendBufferSize = 64
	}
	if g.ReadLimitBytes <= 0 {
		g.ReadLimitBytes = 1 << 16
	}
	if g.MessagesPerSecond <= 0 {
		g.MessagesPerSecond = 5
	}
	if g.MessageBurst <= 0 {
		g.MessageBurst = 10
	}
}

// GetConfig 返回进程级配置，首次调用时加载
func GetConfig() *Config {
	once.Do(func() {
		config, _ = LoadConfig("")
	})
	return config
}
