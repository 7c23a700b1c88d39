package config

import (
	"fmt"
	"strings"
	"sync"

	"github.com/spf13/viper"
)

type ServerConfig struct {
	Address string `mapstructure:"address"`
	Port    int    `mapstructure:"port"`
	Mode    string `mapstructure:"mode"`
}

type DatabaseConfig struct {
	Path    string `mapstructure:"path"`
	LogMode bool   `mapstructure:"log_mode"`
}

type JWTConfig struct {
	Secret      string `mapstructure:"secret"`
	ExpireHours int    `mapstructure:"expire_hours"`
}

type SecurityConfig struct {
	BcryptCost int    `mapstructure:"bcrypt_cost"`
	CodeKey    string `mapstructure:"code_key"` // 查詢碼加密金鑰，啟動必填
}

type MailConfig struct {
	From           string `mapstructure:"from"`
	SendGridAPIKey string `mapstructure:"sendgrid_api_key"`
}

type SweepConfig struct {
	DaysClosedDelete    int `mapstructure:"days_closed_delete"`
	DaysInactiveDisable int `mapstructure:"days_inactive_disable"`
}

type AppSubConfig struct {
	BaseURL string `mapstructure:"base_url"` // 組重設密碼連結用
}

type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Database DatabaseConfig `mapstructure:"database"`
	JWT      JWTConfig      `mapstructure:"jwt"`
	Security SecurityConfig `mapstructure:"security"`
	Mail     MailConfig     `mapstructure:"mail"`
	Sweep    SweepConfig    `mapstructure:"sweep"`
	App      AppSubConfig   `mapstructure:"app"`
}

var (
	appConfig *Config
	once      sync.Once
)

// Load loads configuration from given file path (e.g. "config.yaml").
// If path is empty, it defaults to "config.yaml" in current working directory.
func Load(path string) (*Config, error) {
	var err error
	once.Do(func() {
		v := viper.New()

		if path == "" {
			v.SetConfigName("config")
			v.SetConfigType("yaml")
			v.AddConfigPath(".")
		} else {
			v.SetConfigFile(path)
		}

		// environment overrides, e.g. WHE_SECURITY_CODE_KEY、WHE_SERVER_PORT
		v.SetEnvPrefix("WHE") // working hours e
		v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
		v.AutomaticEnv()

		// 清理工作預設：結案 60 天刪案、90 天未登入停用帳號
		v.SetDefault("sweep.days_closed_delete", 60)
		v.SetDefault("sweep.days_inactive_disable", 90)

		if err = v.ReadInConfig(); err != nil {
			err = fmt.Errorf("read config: %w", err)
			return
		}

		var c Config
		if err = v.Unmarshal(&c); err != nil {
			err = fmt.Errorf("unmarshal config: %w", err)
			return
		}

		// 查詢碼金鑰缺失是部署錯誤，直接讓程式起不來，
		// 不能等到單筆請求才發現密文解不開
		if c.Security.CodeKey == "" {
			err = fmt.Errorf("config: missing security.code_key（查詢碼加密金鑰）")
			return
		}

		appConfig = &c
	})

	if err != nil {
		return nil, err
	}
	return appConfig, nil
}

// Get returns the loaded global configuration.
// Call Load() once at application startup.
func Get() *Config {
	return appConfig
}
