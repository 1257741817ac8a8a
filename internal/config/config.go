package config

import (
	"io/ioutil"

	"gopkg.in/yaml.v3"
)

// 主配置结构 - 简化命名
type Config struct {
	App       App    `yaml:"app"`
	Server    Server `yaml:"server"`
	Database  DB     `yaml:"database"`
	Cache     Cache  `yaml:"cache"`
	Auth      Auth   `yaml:"auth"`
	RateLimit Limit  `yaml:"rate_limit"`
	Link      Link   `yaml:"link"`
}

// 应用配置
type App struct {
	Name    string `yaml:"name"`
	Mode    string `yaml:"mode"`
	Version string `yaml:"version"`
}

// 服务器配置
type Server struct {
	Port         int `yaml:"port"`
	ReadTimeout  int `yaml:"read_timeout"`
	WriteTimeout int `yaml:"write_timeout"`
}

// 数据库配置
type DB struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	Name     string `yaml:"name"`
	Charset  string `yaml:"charset"`
}

// 缓存配置（Redis）
type Cache struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

// 认证配置
type Auth struct {
	Secret          string `yaml:"secret"`
	Issuer          string `yaml:"issuer"`
	ExpirationHours int    `yaml:"expiration_hours"`
}

// 限流配置
type Limit struct {
	Enabled   bool     `yaml:"enabled"`
	Requests  int64    `yaml:"requests_per_minute"`
	Burst     int64    `yaml:"burst"`
	SkipPaths []string `yaml:"skip_paths"`
}

// 链接策略配置
type Link struct {
	AnonymousTTLDays int `yaml:"anonymous_ttl_days"` // 匿名链接有效天数
	MaxAllocAttempts int `yaml:"max_alloc_attempts"` // 随机短码冲突重试上限
	CacheTTLHours    int `yaml:"cache_ttl_hours"`    // 解析缓存时长上限
	StoreTimeoutSecs int `yaml:"store_timeout_secs"` // 单次存储调用超时
}

// 加载配置
func Load(path string) (*Config, error) {
	data, err := ioutil.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}
