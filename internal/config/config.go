package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const (
	ProviderBedrock = "bedrock"
	ProviderOpenAI  = "openai"

	DefaultBedrockModel = "anthropic.claude-3-5-haiku-20241022-v1:0"
	DefaultOpenAIModel  = "gpt-4o-mini"
)

type Config struct {
	Server struct {
		Port int `yaml:"port"`
	} `yaml:"server"`

	Database struct {
		URL      string `yaml:"url"`
		Host     string `yaml:"host"`
		Port     int    `yaml:"port"`
		User     string `yaml:"user"`
		Password string `yaml:"password"`
		Name     string `yaml:"name"`
		SSLMode  string `yaml:"sslmode"`
	} `yaml:"database"`

	Analysis struct {
		AppID        string `yaml:"appId"`
		OrgBatchSize int    `yaml:"orgBatchSize"`
		IssueLimit   int    `yaml:"issueLimit"`
		ResultsDir   string `yaml:"resultsDir"`
	} `yaml:"analysis"`

	Model struct {
		Provider  string `yaml:"provider"`
		ID        string `yaml:"id"`
		MaxTokens int    `yaml:"maxTokens"`
		Region    string `yaml:"region"`
		APIKey    string `yaml:"apiKey"`
	} `yaml:"model"`

	Archive struct {
		Driver string `yaml:"driver"`
		MySQL  struct {
			Host     string `yaml:"host"`
			Port     int    `yaml:"port"`
			User     string `yaml:"user"`
			Password string `yaml:"password"`
			Name     string `yaml:"name"`
		} `yaml:"mysql"`
	} `yaml:"archive"`

	Minio struct {
		Endpoint   string `yaml:"endpoint"`
		AccessKey  string `yaml:"accessKey"`
		SecretKey  string `yaml:"secretKey"`
		BucketName string `yaml:"bucketName"`
		Region     string `yaml:"region"`
		UseSSL     bool   `yaml:"useSSL"`
	} `yaml:"minio"`

	S3 struct {
		Bucket string `yaml:"bucket"`
		Prefix string `yaml:"prefix"`
		Region string `yaml:"region"`
	} `yaml:"s3"`

	Auth struct {
		APIKeys map[string]string `yaml:"apiKeys"` // tenant -> key
	} `yaml:"auth"`

	RateLimit struct {
		Capacity     int `yaml:"capacity"`
		RefillPerMin int `yaml:"refillPerMinute"`
	} `yaml:"rateLimit"`
}

// Path resolves the config file: explicit flag, then $CONFIG_PATH, then config.yaml.
func Path(flag string) string {
	if flag != "" {
		return flag
	}
	if p := os.Getenv("CONFIG_PATH"); p != "" {
		return p
	}
	return "config.yaml"
}

// Load baca .env (kalau ada), lalu file config yaml. File yaml yang tidak ada
// tidak dianggap error: semua nilai bisa datang dari default + env.
func Load(path string) (*Config, error) {
	_ = godotenv.Load()

	var cfg Config
	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("parse %s: %w", path, err)
		}
	case errors.Is(err, os.ErrNotExist):
	default:
		return nil, err
	}

	cfg.applyEnv()
	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) applyEnv() {
	if v := os.Getenv("DATABASE_URL"); v != "" {
		c.Database.URL = v
	}
	if v := os.Getenv("OPENAI_API_KEY"); v != "" && c.Model.APIKey == "" {
		c.Model.APIKey = v
	}
	if v := os.Getenv("AWS_REGION"); v != "" && c.Model.Region == "" {
		c.Model.Region = v
	}
	if v := os.Getenv("RISKSCAN_API_KEY"); v != "" {
		if c.Auth.APIKeys == nil {
			c.Auth.APIKeys = map[string]string{}
		}
		c.Auth.APIKeys["default"] = v
	}
}

func (c *Config) applyDefaults() {
	if c.Server.Port == 0 {
		c.Server.Port = 8080
	}
	if c.Database.Port == 0 {
		c.Database.Port = 5432
	}
	if c.Database.Name == "" {
		c.Database.Name = "postgres"
	}
	if c.Database.SSLMode == "" {
		c.Database.SSLMode = "disable"
	}
	if c.Analysis.AppID == "" {
		c.Analysis.AppID = "c9515829-aa66-4ed3-8b8e-71a7b729ad09"
	}
	if c.Analysis.OrgBatchSize == 0 {
		c.Analysis.OrgBatchSize = 20
	}
	if c.Analysis.IssueLimit == 0 {
		c.Analysis.IssueLimit = 300
	}
	if c.Analysis.ResultsDir == "" {
		c.Analysis.ResultsDir = "results"
	}
	if c.Model.Provider == "" {
		c.Model.Provider = ProviderBedrock
	}
	if c.Model.ID == "" {
		switch c.Model.Provider {
		case ProviderOpenAI:
			c.Model.ID = DefaultOpenAIModel
		default:
			c.Model.ID = DefaultBedrockModel
		}
	}
	if c.Model.MaxTokens == 0 {
		c.Model.MaxTokens = 4000
	}
	if c.Model.Region == "" {
		c.Model.Region = "us-west-2"
	}
	if c.Archive.MySQL.Port == 0 {
		c.Archive.MySQL.Port = 3306
	}
	if c.S3.Region == "" {
		c.S3.Region = c.Model.Region
	}
	if c.RateLimit.Capacity == 0 {
		c.RateLimit.Capacity = 10
	}
	if c.RateLimit.RefillPerMin == 0 {
		c.RateLimit.RefillPerMin = 10
	}
}

// Validate checks the values the pipeline cannot run without.
func (c *Config) Validate() error {
	switch c.Model.Provider {
	case ProviderBedrock, ProviderOpenAI:
	default:
		return fmt.Errorf("model.provider: unknown provider %q", c.Model.Provider)
	}
	if c.Model.MaxTokens <= 0 {
		return fmt.Errorf("model.maxTokens: must be positive, got %d", c.Model.MaxTokens)
	}
	if c.Analysis.IssueLimit <= 0 {
		return fmt.Errorf("analysis.issueLimit: must be positive, got %d", c.Analysis.IssueLimit)
	}
	if c.Analysis.OrgBatchSize <= 0 {
		return fmt.Errorf("analysis.orgBatchSize: must be positive, got %d", c.Analysis.OrgBatchSize)
	}
	switch c.Archive.Driver {
	case "", "postgres", "mysql":
	default:
		return fmt.Errorf("archive.driver: unknown driver %q", c.Archive.Driver)
	}
	if c.Model.Provider == ProviderOpenAI && c.Model.APIKey == "" {
		return errors.New("model.apiKey: required for the openai provider (or set OPENAI_API_KEY)")
	}
	return nil
}

// Helper untuk build DSN Postgres (lib/pq). database.url menang kalau diisi.
func (c *Config) PostgresDSN() string {
	if c.Database.URL != "" {
		return c.Database.URL
	}
	u := url.URL{
		Scheme: "postgres",
		User:   url.UserPassword(c.Database.User, c.Database.Password),
		Host:   fmt.Sprintf("%s:%d", c.Database.Host, c.Database.Port),
		Path:   "/" + c.Database.Name,
	}
	q := url.Values{}
	q.Set("sslmode", c.Database.SSLMode)
	u.RawQuery = q.Encode()
	return u.String()
}

// Helper untuk build DSN MySQL (archive)
func (c *Config) MySQLDSN() string {
	m := c.Archive.MySQL
	return fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?parseTime=true&charset=utf8mb4&loc=UTC",
		m.User,
		m.Password,
		m.Host,
		m.Port,
		m.Name,
	)
}

// MinioEnabled reports whether the MinIO mirror is configured.
func (c *Config) MinioEnabled() bool {
	return strings.TrimSpace(c.Minio.Endpoint) != "" && c.Minio.BucketName != ""
}

// S3Enabled reports whether the S3 mirror is configured.
func (c *Config) S3Enabled() bool { return strings.TrimSpace(c.S3.Bucket) != "" }
