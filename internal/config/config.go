package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

const defaultMaxUploadBytes = 16 << 20 // 16 MiB

type Config struct {
	Server struct {
		Port int `yaml:"port"`
	} `yaml:"server"`

	// SecretKey signs session cookies.
	SecretKey string `yaml:"secretKey"`

	Session struct {
		TTLHours int `yaml:"ttlHours"`
	} `yaml:"session"`

	Database struct {
		Driver   string `yaml:"driver"` // mysql | postgres
		Host     string `yaml:"host"`
		Port     int    `yaml:"port"`
		User     string `yaml:"user"`
		Password string `yaml:"password"`
		Name     string `yaml:"name"`
		// DSN overrides the individual fields when set.
		DSN string `yaml:"dsn"`
	} `yaml:"database"`

	Inference struct {
		Endpoint       string `yaml:"endpoint"`
		TimeoutSeconds int    `yaml:"timeoutSeconds"`
	} `yaml:"inference"`

	Generation struct {
		APIKey         string `yaml:"apiKey"`
		Model          string `yaml:"model"`
		Language       string `yaml:"language"`
		TimeoutSeconds int    `yaml:"timeoutSeconds"`
	} `yaml:"generation"`

	Upload struct {
		MaxSizeBytes int64 `yaml:"maxSizeBytes"`
	} `yaml:"upload"`

	// RateLimit carries the external-service quota numbers. Only
	// requestsPerMinute is enforced (per user, by middleware); the rest
	// document the provider's free-tier limits.
	RateLimit struct {
		RequestsPerMinute int `yaml:"requestsPerMinute"`
		RequestsPerDay    int `yaml:"requestsPerDay"`
		RetryDelaySeconds int `yaml:"retryDelaySeconds"`
		MaxRetries        int `yaml:"maxRetries"`
	} `yaml:"rateLimit"`

	Minio struct {
		Enabled    bool   `yaml:"enabled"`
		Endpoint   string `yaml:"endpoint"`
		AccessKey  string `yaml:"accessKey"`
		SecretKey  string `yaml:"secretKey"`
		BucketName string `yaml:"bucketName"`
		Region     string `yaml:"region"`
		UseSSL     bool   `yaml:"useSSL"`
	} `yaml:"minio"`
}

// Load reads the yaml config, applies environment overrides and validates the
// result. The process must fail fast here when the generation API key is
// missing; discovering that mid-upload would waste a scoring pass.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}

	// Environment wins over the file for secrets and endpoints.
	if v := os.Getenv("SECRET_KEY"); v != "" {
		cfg.SecretKey = v
	}
	if v := os.Getenv("DATABASE_DSN"); v != "" {
		cfg.Database.DSN = v
	}
	if v := os.Getenv("GENERATION_API_KEY"); v != "" {
		cfg.Generation.APIKey = v
	}
	if v := os.Getenv("INFERENCE_ENDPOINT"); v != "" {
		cfg.Inference.Endpoint = v
	}

	cfg.applyDefaults()

	if cfg.SecretKey == "" {
		return nil, fmt.Errorf("secretKey is required (set SECRET_KEY or secretKey in %s)", path)
	}
	if cfg.Generation.APIKey == "" {
		return nil, fmt.Errorf("generation API key is required (set GENERATION_API_KEY or generation.apiKey in %s)", path)
	}
	if cfg.Inference.Endpoint == "" {
		return nil, fmt.Errorf("inference endpoint is required (set INFERENCE_ENDPOINT or inference.endpoint in %s)", path)
	}
	if cfg.Database.Driver != "mysql" && cfg.Database.Driver != "postgres" {
		return nil, fmt.Errorf("unsupported database driver: %s", cfg.Database.Driver)
	}

	return &cfg, nil
}

func (c *Config) applyDefaults() {
	if c.Server.Port == 0 {
		c.Server.Port = 8080
	}
	if c.Session.TTLHours <= 0 {
		c.Session.TTLHours = 24
	}
	if c.Database.Driver == "" {
		c.Database.Driver = "mysql"
	}
	if c.Upload.MaxSizeBytes <= 0 {
		c.Upload.MaxSizeBytes = defaultMaxUploadBytes
	}
	if c.Generation.Language == "" {
		c.Generation.Language = "English"
	}
	if c.Generation.TimeoutSeconds <= 0 {
		c.Generation.TimeoutSeconds = 60
	}
	if c.Inference.TimeoutSeconds <= 0 {
		c.Inference.TimeoutSeconds = 30
	}
	// Provider free-tier numbers from the deployment this replaces.
	if c.RateLimit.RequestsPerMinute <= 0 {
		c.RateLimit.RequestsPerMinute = 60
	}
	if c.RateLimit.RequestsPerDay <= 0 {
		c.RateLimit.RequestsPerDay = 1000
	}
	if c.RateLimit.RetryDelaySeconds <= 0 {
		c.RateLimit.RetryDelaySeconds = 40
	}
	if c.RateLimit.MaxRetries <= 0 {
		c.RateLimit.MaxRetries = 3
	}
}

// DSN returns the connection string for the configured driver.
func (c *Config) DSN() string {
	if c.Database.DSN != "" {
		return c.Database.DSN
	}
	switch c.Database.Driver {
	case "postgres":
		return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=disable",
			c.Database.Host, c.Database.Port, c.Database.User, c.Database.Password, c.Database.Name)
	default:
		return fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?parseTime=true&charset=utf8mb4&loc=UTC",
			c.Database.User, c.Database.Password, c.Database.Host, c.Database.Port, c.Database.Name)
	}
}
