package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config 结构体定义了应用程序的所有配置项
// 它与 config.yaml 文件的结构完全对应
type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Database DatabaseConfig `mapstructure:"database"`
	Redis    RedisConfig    `mapstructure:"redis"`
	Auth     AuthConfig     `mapstructure:"auth"`
	Gacha    GachaConfig    `mapstructure:"gacha"`
	Ranking  RankingConfig  `mapstructure:"ranking"`
	Log      LogConfig      `mapstructure:"log"`
}

// ServerConfig 定义了服务器相关的配置
type ServerConfig struct {
	Mode    string     `mapstructure:"mode"`
	Address string     `mapstructure:"address"`
	Cors    CorsConfig `mapstructure:"cors"`
}

// CorsConfig 定义了CORS相关的配置
type CorsConfig struct {
	AllowedOrigins []string `mapstructure:"allowedOrigins"`
}

// DatabaseConfig 定义了持久化存储的配置
// Driver 目前支持 sqlite 与 postgres
type DatabaseConfig struct {
	Driver       string `mapstructure:"driver"`
	DSN          string `mapstructure:"dsn"`
	MaxOpenConns int    `mapstructure:"maxOpenConns"`
}

// RedisConfig 定义了Redis的配置
type RedisConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	Address  string `mapstructure:"address"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// AuthConfig 定义了Bearer令牌的校验参数
// HMACSecret 与 RSAPublicKeyPEM 二选一，后者优先
type AuthConfig struct {
	Issuer          string `mapstructure:"issuer"`
	Audience        string `mapstructure:"audience"`
	HMACSecret      string `mapstructure:"hmacSecret"`
	RSAPublicKeyPEM string `mapstructure:"rsaPublicKeyPEM"`
	RolesClaim      string `mapstructure:"rolesClaim"`
}

// GachaConfig 定义了每日抽奖的参数
type GachaConfig struct {
	Timezone           string        `mapstructure:"timezone"`
	MinReward          int           `mapstructure:"minReward"`
	MaxRewardExclusive int           `mapstructure:"maxRewardExclusive"`
	LockTTL            time.Duration `mapstructure:"lockTTL"`
}

// RankingConfig 定义了排行榜查询的参数
type RankingConfig struct {
	CacheTTL     time.Duration `mapstructure:"cacheTTL"`
	DefaultLimit int           `mapstructure:"defaultLimit"`
	MaxLimit     int           `mapstructure:"maxLimit"`
}

// LogConfig 定义了日志的参数
type LogConfig struct {
	Level       string `mapstructure:"level"`
	Development bool   `mapstructure:"development"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.mode", "release")
	v.SetDefault("server.address", ":8080")
	v.SetDefault("server.cors.allowedOrigins", []string{"http://localhost:3000"})

	v.SetDefault("database.driver", "sqlite")
	v.SetDefault("database.dsn", "gacha.db")
	v.SetDefault("database.maxOpenConns", 0)

	v.SetDefault("redis.enabled", false)
	v.SetDefault("redis.address", "localhost:6379")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)

	v.SetDefault("auth.issuer", "")
	v.SetDefault("auth.audience", "")
	v.SetDefault("auth.hmacSecret", "")
	v.SetDefault("auth.rsaPublicKeyPEM", "")
	v.SetDefault("auth.rolesClaim", "roles")

	v.SetDefault("gacha.timezone", "Asia/Tokyo")
	v.SetDefault("gacha.minReward", 5)
	v.SetDefault("gacha.maxRewardExclusive", 16)
	v.SetDefault("gacha.lockTTL", 5*time.Second)

	v.SetDefault("ranking.cacheTTL", 30*time.Second)
	v.SetDefault("ranking.defaultLimit", 20)
	v.SetDefault("ranking.maxLimit", 100)

	v.SetDefault("log.level", "info")
	v.SetDefault("log.development", false)
}

// LoadConfig 函数负责查找、加载和解析配置文件
// 配置文件不存在时完全依赖默认值与环境变量
func LoadConfig() (*Config, error) {
	// .env 只是可选的环境变量来源
	_ = godotenv.Load()

	v := viper.New()
	setDefaults(v)

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath("./config")
	v.AddConfigPath(".")

	// 允许通过环境变量覆盖配置，例如 SERVER_ADDRESS=:8888
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("无法读取配置文件: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("无法解析配置: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate 检查配置之间的约束
func (c *Config) Validate() error {
	switch c.Database.Driver {
	case "sqlite", "postgres":
	default:
		return fmt.Errorf("不支持的数据库驱动: %q", c.Database.Driver)
	}
	if c.Gacha.MinReward < 0 || c.Gacha.MaxRewardExclusive <= c.Gacha.MinReward {
		return fmt.Errorf("抽奖奖励区间无效: [%d, %d)", c.Gacha.MinReward, c.Gacha.MaxRewardExclusive)
	}
	if c.Ranking.DefaultLimit < 0 || c.Ranking.MaxLimit < c.Ranking.DefaultLimit {
		return fmt.Errorf("排行榜条数配置无效: default=%d max=%d", c.Ranking.DefaultLimit, c.Ranking.MaxLimit)
	}
	if c.Auth.HMACSecret == "" && c.Auth.RSAPublicKeyPEM == "" {
		return fmt.Errorf("auth.hmacSecret 与 auth.rsaPublicKeyPEM 至少需要配置一个")
	}
	return nil
}
