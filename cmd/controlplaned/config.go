package main

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/cludbox/control-plane/internal/db"
)

type Config struct {
	Log          LogConfig          `mapstructure:"log"`
	DB           db.Config          `mapstructure:"db"`
	HTTP         HTTPConfig         `mapstructure:"http"`
	ForwardProxy ForwardProxyConfig `mapstructure:"forward_proxy"`
	Monitor      MonitorConfig      `mapstructure:"monitor"`
	Auth         AuthConfig         `mapstructure:"auth"`
	Admin        AdminConfig        `mapstructure:"admin"`
}

type LogConfig struct {
	Level string `mapstructure:"level"`
}

// HTTPConfig is the combined gin engine serving the gateway proxy and the
// admin bootstrap surface.
type HTTPConfig struct {
	Port uint `mapstructure:"port"`
}

type ForwardProxyConfig struct {
	Addr string `mapstructure:"addr"`
}

type MonitorConfig struct {
	IntervalSeconds int `mapstructure:"interval_seconds"`
}

func (c MonitorConfig) Interval() time.Duration {
	if c.IntervalSeconds <= 0 {
		return 60 * time.Second
	}
	return time.Duration(c.IntervalSeconds) * time.Second
}

type AuthConfig struct {
	JWTSecret     string `mapstructure:"jwt_secret"`
	DefaultTTLMin int    `mapstructure:"default_ttl_minutes"`
}

func (c AuthConfig) DefaultTTL() time.Duration {
	if c.DefaultTTLMin <= 0 {
		return 24 * time.Hour
	}
	return time.Duration(c.DefaultTTLMin) * time.Minute
}

type AdminConfig struct {
	// APIKeyHash is the bcrypt hash of the bootstrap admin key, generated
	// ahead of time with auth.HashAPIKey — the plaintext key is never
	// configured directly.
	APIKeyHash string `mapstructure:"api_key_hash"`
}

var config Config

func InitConfig() {
	_ = godotenv.Load()

	viper.SetConfigName("application")
	viper.AddConfigPath(".")
	viper.AddConfigPath("./cmd/controlplaned")
	viper.SetConfigType("yaml")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	_ = viper.BindEnv("db.url", "DATABASE_URL")
	_ = viper.BindEnv("db.schema", "DATABASE_SCHEMA")
	_ = viper.BindEnv("auth.jwt_secret", "JWT_SECRET")
	_ = viper.BindEnv("admin.api_key_hash", "ADMIN_API_KEY_HASH")

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			panic(err)
		}
	}

	if err := viper.Unmarshal(&config); err != nil {
		panic(err)
	}

	initLogger(config.Log.Level)

	if strings.ToUpper(config.Log.Level) == logLevelDebug {
		configJSON, err := json.MarshalIndent(config, "", "  ")
		if err == nil {
			fmt.Println("Config loaded:")
			fmt.Println(string(configJSON))
		}
	}
}
