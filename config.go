package main

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"go.uber.org/zap/zapcore"
	"gopkg.in/yaml.v3"
)

// Config defines the structure of the configuration file.
type Config struct {
	GitCommit          string          `yaml:"git_commit" envconfig:"LMA_GIT_COMMIT"`
	GitTag             string          `yaml:"git_tag" envconfig:"LMA_GIT_TAG"`
	BuildTime          string          `yaml:"build_time" envconfig:"LMA_BUILD_TIME"`
	IsProduction       bool            `yaml:"is_production" envconfig:"LMA_IS_PRODUCTION"`
	LogLevel           zapcore.Level   `yaml:"log_level" envconfig:"LMA_LOG_LEVEL"`
	LogFile            string          `yaml:"log_file" envconfig:"LMA_LOG_FILE"`
	ProfilerEnable     bool            `yaml:"profiler_enable" envconfig:"LMA_PROFILER_ENABLE"`
	OpsEndpointsEnable bool            `yaml:"ops_endpoints_enable" envconfig:"LMA_OPS_ENDPOINTS_ENABLE"`
	Server             ServerConfig    `yaml:"server"`
	SQLite             SQLiteConfig    `yaml:"sqlite"`
	Redis              RedisConfig     `yaml:"redis"`
	RateLimit          RateLimitConfig `yaml:"rate_limit"`
}

type ServerConfig struct {
	Host            string        `yaml:"host" envconfig:"LMA_SERVER_HOST"`
	Port            string        `yaml:"port" envconfig:"LMA_SERVER_PORT"`
	CertsFile       string        `yaml:"certs_file" envconfig:"LMA_SERVER_CERTS_FILE"`
	KeyFile         string        `yaml:"key_file" envconfig:"LMA_SERVER_KEY_FILE"`
	ReadTimeout     time.Duration `yaml:"read_timeout" envconfig:"LMA_SERVER_READ_TIMEOUT"`
	WriteTimeout    time.Duration `yaml:"write_timeout" envconfig:"LMA_SERVER_WRITE_TIMEOUT"`
	RequestTimeout  time.Duration `yaml:"request_timeout" envconfig:"LMA_SERVER_REQUEST_TIMEOUT"` // Time to wait for a request to finish
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" envconfig:"LMA_SERVER_SHUTDOWN_TIMEOUT"`
}

type SQLiteConfig struct {
	FilePath string `yaml:"filepath" envconfig:"LMA_SQLITE_FILE_PATH"`
}

type RedisConfig struct {
	Host          string        `yaml:"host" envconfig:"LMA_REDIS_HOST"`
	Port          string        `yaml:"port" envconfig:"LMA_REDIS_PORT"`
	DialTimeout   time.Duration `yaml:"dial_timeout" envconfig:"LMA_REDIS_DIAL_TIMEOUT"`
	ReadTimeout   time.Duration `yaml:"read_timeout" envconfig:"LMA_REDIS_READ_TIMEOUT"`
	WriteTimeout  time.Duration `yaml:"write_timeout" envconfig:"LMA_REDIS_WRITE_TIMEOUT"`
	PoolSize      int           `yaml:"pool_size" envconfig:"LMA_REDIS_POOL_SIZE"`
	PoolTimeout   time.Duration `yaml:"pool_timeout" envconfig:"LMA_REDIS_POOL_TIMEOUT"`
	Username      string        `yaml:"username" envconfig:"LMA_REDIS_USERNAME"`
	Password      string        `yaml:"password" envconfig:"LMA_REDIS_PASSWORD"`
	DatabaseIndex int           `yaml:"db_index" envconfig:"LMA_REDIS_DATABASE_INDEX"`
}

type RateLimitConfig struct {
	Enable   bool          `yaml:"enable" envconfig:"LMA_RATE_LIMIT_ENABLE"`
	Requests int           `yaml:"requests" envconfig:"LMA_RATE_LIMIT_REQUESTS"`
	Window   time.Duration `yaml:"window" envconfig:"LMA_RATE_LIMIT_WINDOW"`
}

// LoadConfigFile provides an instance of config structure for the all application.
func LoadConfigFile(configFile string) (*Config, error) {
	file, err := os.Open(configFile)
	if err != nil {
		return nil, err
	}
	defer file.Close()
	cfg := &Config{}
	yd := yaml.NewDecoder(file)
	err = yd.Decode(cfg)

	if err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadConfigEnvs reads the environments variables and provides an instance of the App config.
func LoadConfigEnvs(prefix string, config *Config) error {
	return envconfig.Process(prefix, config)
}

// InitConfig setup defaults values for non provided parameters
// and configures build tags values to be used if provided.
func InitConfig(config *Config, gitCommit, gitTag, buildTime string) error {
	if len(gitCommit) != 0 {
		config.GitCommit = gitCommit
	}

	if len(gitTag) != 0 {
		config.GitTag = gitTag
	}

	if len(buildTime) != 0 {
		config.BuildTime = buildTime
	}

	if len(config.Server.Host) == 0 || len(config.Server.Port) == 0 {
		return errors.New("make sure to set valid server address and port in configuration file")
	}

	if len(config.SQLite.FilePath) == 0 {
		return errors.New("make sure to set a valid sqlite database path in configuration file")
	}

	if config.RateLimit.Enable && (len(config.Redis.Host) == 0 || len(config.Redis.Port) == 0) {
		return errors.New("make sure to set valid redis address and port in configuration file")
	}

	if config.RateLimit.Enable && (config.RateLimit.Requests <= 0 || config.RateLimit.Window <= 0) {
		return errors.New("make sure to set positive rate limit requests and window in configuration file")
	}

	return nil
}

// LoadAndInitConfigs loads in order the configs from various predefined sources
// then build the App configuration data.
func LoadAndInitConfigs(gitCommit, gitTag, buildTime string) (*Config, error) {
	// Setup the yaml configuration from file.
	config, err := LoadConfigFile("./config.yml")
	if err != nil {
		return config, fmt.Errorf("failed to load configurations from file: %s", err)
	}

	// Set the environment configuration.
	err = godotenv.Load("./config.env")
	if err != nil {
		return config, fmt.Errorf("failed to set environment configurations: %s", err)
	}

	// Use environment variables with prefix `LMA`.
	err = LoadConfigEnvs("LMA", config)
	if err != nil {
		return config, fmt.Errorf("failed to load configurations from environment: %s", err)
	}

	err = InitConfig(config, gitCommit, gitTag, buildTime)
	if err != nil {
		return config, fmt.Errorf("failed to initialize configurations: %s", err)
	}
	return config, nil
}
