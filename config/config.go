// Package config 服务配置: 可选 YAML 文件 + .env + 环境变量覆盖
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"palace-guide/algo"
	"palace-guide/gps"

	"gopkg.in/yaml.v3"
)

// Config 全部配置项
type Config struct {
	Port     string           `yaml:"port"`
	Database DatabaseConfig   `yaml:"database"`
	JWT      JWTConfig        `yaml:"jwt"`
	Kakao    KakaoConfig      `yaml:"kakao"`
	Redis    RedisConfig      `yaml:"redis"`
	MQTT     MQTTConfig       `yaml:"mqtt"`
	Sampling gps.Config       `yaml:"sampling"`
	Area     algo.ManagedArea `yaml:"area"`
}

// DatabaseConfig PostgreSQL 连接参数
type DatabaseConfig struct {
	Host       string `yaml:"host"`
	Port       string `yaml:"port"`
	User       string `yaml:"user"`
	Password   string `yaml:"password"`
	Name       string `yaml:"name"`
	MaxRetries int    `yaml:"max_retries"`
}

// DSN gorm postgres 连接串
func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s user=%s password=%s dbname=%s port=%s sslmode=disable TimeZone=Asia/Seoul",
		d.Host, d.User, d.Password, d.Name, d.Port,
	)
}

// JWTConfig 令牌签名参数
type JWTConfig struct {
	Secret string        `yaml:"secret"`
	TTL    time.Duration `yaml:"ttl"`
}

// KakaoConfig 地点搜索服务
type KakaoConfig struct {
	RestKey string `yaml:"rest_key"`
	BaseURL string `yaml:"base_url"`
}

// RedisConfig 地点搜索缓存; Addr 为空时不启用
type RedisConfig struct {
	Addr     string        `yaml:"addr"`
	Password string        `yaml:"password"`
	DB       int           `yaml:"db"`
	TTL      time.Duration `yaml:"ttl"`
}

// MQTTConfig 定位事件发布; Broker 为空时不启用
type MQTTConfig struct {
	Broker   string `yaml:"broker"`
	ClientID string `yaml:"client_id"`
	Username string `yaml:"username"`
	Password string `yaml:"password"`
	Topic    string `yaml:"topic"`
}

// Default 默认配置
func Default() Config {
	return Config{
		Port: "8080",
		Database: DatabaseConfig{
			Host:       "localhost",
			Port:       "5432",
			User:       "palace",
			Password:   "palace",
			Name:       "palaceguide",
			MaxRetries: 30,
		},
		JWT:      JWTConfig{Secret: "your-secret-key-change-in-production", TTL: 24 * time.Hour},
		Kakao:    KakaoConfig{BaseURL: "https://dapi.kakao.com"},
		Redis:    RedisConfig{TTL: 10 * time.Minute},
		MQTT:     MQTTConfig{ClientID: "palace-guide", Topic: "palace-guide/locate"},
		Sampling: gps.DefaultConfig(),
		Area:     algo.Gyeongbokgung,
	}
}

// Load 读取配置: 默认值 -> YAML 文件 (path 为空或文件不存在时跳过) -> 环境变量
func Load(path string) (Config, error) {
	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case err == nil:
			if err := yaml.Unmarshal(data, &cfg); err != nil {
				return Config{}, fmt.Errorf("parsing config YAML: %w", err)
			}
		case !os.IsNotExist(err):
			return Config{}, fmt.Errorf("reading config file: %w", err)
		}
	}
	applyEnv(&cfg)
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate 检查配置是否合理
func (c Config) Validate() error {
	if c.Port == "" {
		return fmt.Errorf("port is required")
	}
	if c.Area.North <= c.Area.South || c.Area.East <= c.Area.West {
		return fmt.Errorf("area bounds are inverted: %+v", c.Area)
	}
	if c.Sampling.SampleCount <= 0 {
		return fmt.Errorf("sampling.sample_count must be positive")
	}
	if c.Sampling.MinSamples <= 0 || c.Sampling.MinSamples > c.Sampling.SampleCount {
		return fmt.Errorf("sampling.min_samples must be in [1, sample_count]")
	}
	if c.Sampling.MaxRetries < 0 {
		return fmt.Errorf("sampling.max_retries must not be negative")
	}
	return nil
}

// applyEnv 环境变量优先于文件 (为了 Docker 部署方便)
func applyEnv(c *Config) {
	c.Port = getEnvOrDefault("PORT", c.Port)

	c.Database.Host = getEnvOrDefault("DB_HOST", c.Database.Host)
	c.Database.Port = getEnvOrDefault("DB_PORT", c.Database.Port)
	c.Database.User = getEnvOrDefault("DB_USER", c.Database.User)
	c.Database.Password = getEnvOrDefault("DB_PASSWORD", c.Database.Password)
	c.Database.Name = getEnvOrDefault("DB_NAME", c.Database.Name)

	c.JWT.Secret = getEnvOrDefault("JWT_SECRET", c.JWT.Secret)
	c.Kakao.RestKey = getEnvOrDefault("KAKAO_REST_KEY", c.Kakao.RestKey)
	c.Kakao.BaseURL = getEnvOrDefault("KAKAO_BASE_URL", c.Kakao.BaseURL)

	if host := os.Getenv("REDIS_HOST"); host != "" {
		c.Redis.Addr = host + ":" + getEnvOrDefault("REDIS_PORT", "6379")
	}
	c.Redis.Password = getEnvOrDefault("REDIS_PASS", c.Redis.Password)
	if v := os.Getenv("REDIS_DB"); v != "" {
		// 解析失败时保留原值
		if n, err := strconv.Atoi(v); err == nil && n >= 0 {
			c.Redis.DB = n
		}
	}

	c.MQTT.Broker = getEnvOrDefault("MQTT_BROKER", c.MQTT.Broker)
	c.MQTT.ClientID = getEnvOrDefault("MQTT_CLIENT_ID", c.MQTT.ClientID)
	c.MQTT.Username = getEnvOrDefault("MQTT_USERNAME", c.MQTT.Username)
	c.MQTT.Password = getEnvOrDefault("MQTT_PASSWORD", c.MQTT.Password)
	c.MQTT.Topic = getEnvOrDefault("MQTT_TOPIC", c.MQTT.Topic)
}

// getEnvOrDefault 获取环境变量，如果不存在则返回默认值
func getEnvOrDefault(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}
