package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config 应用配置
// 所有组件在构造时显式接收配置，不依赖任何包级可变状态
type Config struct {
	App struct {
		Name string `yaml:"name"`
		Env  string `yaml:"env"`
	} `yaml:"app"`

	DataSource struct {
		MarketData struct {
			APIKey    string        `yaml:"api_key"`
			BaseURL   string        `yaml:"base_url"`
			Symbol    string        `yaml:"symbol"`
			Timeout   time.Duration `yaml:"timeout"`
			RateLimit time.Duration `yaml:"rate_limit"`
		} `yaml:"marketdata"`
	} `yaml:"data_source"`

	Database struct {
		Postgres struct {
			Host     string `yaml:"host"`
			Port     int    `yaml:"port"`
			User     string `yaml:"user"`
			Password string `yaml:"password"`
			DBName   string `yaml:"dbname"`
			SSLMode  string `yaml:"sslmode"`
		} `yaml:"postgres"`
	} `yaml:"database"`

	NATS struct {
		URL string `yaml:"url"`
	} `yaml:"nats"`

	API struct {
		Port         string        `yaml:"port"`
		ReadTimeout  time.Duration `yaml:"read_timeout"`
		WriteTimeout time.Duration `yaml:"write_timeout"`
	} `yaml:"api"`

	Scheduler struct {
		Cron string `yaml:"cron"`
	} `yaml:"scheduler"`
}

// DefaultConfig 返回带文档化默认值的配置
// 默认值：本地Postgres、AAPL、上游限速1.1秒、工作日17:30定时任务
func DefaultConfig() *Config {
	cfg := &Config{}
	cfg.App.Name = "optionflow"
	cfg.App.Env = "dev"
	cfg.DataSource.MarketData.BaseURL = "https://api.marketdata.app"
	cfg.DataSource.MarketData.Symbol = "AAPL"
	cfg.DataSource.MarketData.Timeout = 10 * time.Second
	cfg.DataSource.MarketData.RateLimit = 1100 * time.Millisecond
	cfg.Database.Postgres.Host = "localhost"
	cfg.Database.Postgres.Port = 5432
	cfg.Database.Postgres.User = "optionflow"
	cfg.Database.Postgres.DBName = "optionflow"
	cfg.Database.Postgres.SSLMode = "disable"
	cfg.API.Port = "8080"
	cfg.API.ReadTimeout = 10 * time.Second
	cfg.API.WriteTimeout = 10 * time.Second
	cfg.Scheduler.Cron = "0 30 17 * * 1-5"
	return cfg
}

// LoadConfig 从文件加载配置，文件中未设置的字段保留默认值
func LoadConfig(path string) (*Config, error) {
	// 读取配置文件
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("读取配置文件失败: %w", err)
	}

	// 解析YAML，覆盖默认值
	config := DefaultConfig()
	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("解析配置文件失败: %w", err)
	}

	// 环境变量覆盖
	overrideFromEnv(config)

	return config, nil
}

// overrideFromEnv 使用环境变量覆盖配置
func overrideFromEnv(config *Config) {
	// 应用配置
	if env := os.Getenv("APP_NAME"); env != "" {
		config.App.Name = env
	}
	if env := os.Getenv("APP_ENV"); env != "" {
		config.App.Env = env
	}

	// 数据源配置
	if env := os.Getenv("MARKETDATA_API_KEY"); env != "" {
		config.DataSource.MarketData.APIKey = env
	}
	if env := os.Getenv("MARKETDATA_BASE_URL"); env != "" {
		config.DataSource.MarketData.BaseURL = env
	}
	if env := os.Getenv("MARKETDATA_SYMBOL"); env != "" {
		config.DataSource.MarketData.Symbol = env
	}

	// 数据库配置
	if env := os.Getenv("DB_HOST"); env != "" {
		config.Database.Postgres.Host = env
	}
	if env := os.Getenv("DB_PORT"); env != "" {
		var port int
		fmt.Sscanf(env, "%d", &port)
		if port > 0 {
			config.Database.Postgres.Port = port
		}
	}
	if env := os.Getenv("DB_USER"); env != "" {
		config.Database.Postgres.User = env
	}
	if env := os.Getenv("DB_PASSWORD"); env != "" {
		config.Database.Postgres.Password = env
	}
	if env := os.Getenv("DB_NAME"); env != "" {
		config.Database.Postgres.DBName = env
	}

	// NATS配置
	if env := os.Getenv("NATS_URL"); env != "" {
		config.NATS.URL = env
	}

	// API配置
	if env := os.Getenv("API_PORT"); env != "" {
		config.API.Port = env
	}

	// 调度配置
	if env := os.Getenv("SCHEDULER_CRON"); env != "" {
		config.Scheduler.Cron = env
	}
}

// GetDefaultConfigPath 获取默认配置文件路径
func GetDefaultConfigPath() string {
	env := os.Getenv("APP_ENV")
	if env == "" {
		env = "dev" // 默认开发环境
	}

	return fmt.Sprintf("configs/%s/app.yaml", env)
}
