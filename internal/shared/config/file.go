package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

type fileConfig struct {
	Port     string   `yaml:"port"`
	Env      string   `yaml:"env"`
	LogLevel string   `yaml:"log_level"`
	LogFmt   string   `yaml:"log_format"`
	CORS     []string `yaml:"cors_allow_origins"`
	LLM      struct {
		Provider string        `yaml:"provider"`
		Model    string        `yaml:"model"`
		Timeout  time.Duration `yaml:"timeout"`
	} `yaml:"llm"`
	Secrets struct {
		GoogleAPIKey string `yaml:"google_api_key"`
		OpenAIAPIKey string `yaml:"openai_api_key"`
	} `yaml:"secrets"`
	Storage struct {
		Type     string `yaml:"type"`
		LocalDir string `yaml:"local_dir"`
		S3       struct {
			Region   string `yaml:"region"`
			Bucket   string `yaml:"bucket"`
			Prefix   string `yaml:"prefix"`
			KMSKeyID string `yaml:"kms_key_id"`
			Endpoint string `yaml:"endpoint"`
		} `yaml:"s3"`
		Minio struct {
			Endpoint  string `yaml:"endpoint"`
			AccessKey string `yaml:"access_key"`
			SecretKey string `yaml:"secret_key"`
			Bucket    string `yaml:"bucket"`
			UseSSL    bool   `yaml:"use_ssl"`
		} `yaml:"minio"`
	} `yaml:"storage"`
	DatabaseURL string `yaml:"database_url"`
	Redis       struct {
		Addr     string        `yaml:"addr"`
		Password string        `yaml:"password"`
		DB       int           `yaml:"db"`
		TTL      time.Duration `yaml:"generation_ttl"`
	} `yaml:"redis"`
	AMQP struct {
		URL      string `yaml:"url"`
		Exchange string `yaml:"exchange"`
	} `yaml:"amqp"`
	RateLimit struct {
		GenerateRPM   float64 `yaml:"generate_rpm"`
		GenerateBurst int     `yaml:"generate_burst"`
	} `yaml:"rate_limit"`
	Tracing struct {
		ServiceName string `yaml:"service_name"`
		Endpoint    string `yaml:"otlp_endpoint"`
		Insecure    bool   `yaml:"insecure"`
	} `yaml:"tracing"`
}

// LoadFile overlays the YAML file at path onto base. Empty values in the
// file keep the base value.
func LoadFile(path string, base Config) (Config, error) {
	data, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return base, fmt.Errorf("read config: %w", err)
	}
	var fc fileConfig
	if err := yaml.Unmarshal(data, &fc); err != nil {
		return base, fmt.Errorf("parse config: %w", err)
	}

	cfg := base
	setString(&cfg.Port, fc.Port)
	if strings.TrimSpace(fc.Env) != "" {
		cfg.Env = normalizeEnv(fc.Env)
	}
	setString(&cfg.LogLevel, fc.LogLevel)
	setString(&cfg.LogFormat, fc.LogFmt)
	if len(fc.CORS) > 0 {
		cfg.CORSAllowOrigin = fc.CORS
	}
	if strings.TrimSpace(fc.LLM.Provider) != "" {
		cfg.LLMProvider = normalizeProvider(fc.LLM.Provider)
	}
	setString(&cfg.LLMModel, fc.LLM.Model)
	if fc.LLM.Timeout > 0 {
		cfg.LLMTimeout = fc.LLM.Timeout
	}
	setString(&cfg.GoogleAPIKey, fc.Secrets.GoogleAPIKey)
	setString(&cfg.OpenAIAPIKey, fc.Secrets.OpenAIAPIKey)
	if strings.TrimSpace(fc.Storage.Type) != "" {
		cfg.ObjectStoreType = normalizeStoreType(fc.Storage.Type)
	}
	setString(&cfg.LocalStoreDir, fc.Storage.LocalDir)
	setString(&cfg.AWSRegion, fc.Storage.S3.Region)
	setString(&cfg.S3Bucket, fc.Storage.S3.Bucket)
	setString(&cfg.S3Prefix, fc.Storage.S3.Prefix)
	setString(&cfg.SSEKMSKeyID, fc.Storage.S3.KMSKeyID)
	setString(&cfg.S3Endpoint, fc.Storage.S3.Endpoint)
	setString(&cfg.MinioEndpoint, fc.Storage.Minio.Endpoint)
	setString(&cfg.MinioAccessKey, fc.Storage.Minio.AccessKey)
	setString(&cfg.MinioSecretKey, fc.Storage.Minio.SecretKey)
	setString(&cfg.MinioBucket, fc.Storage.Minio.Bucket)
	if fc.Storage.Minio.UseSSL {
		cfg.MinioUseSSL = true
	}
	setString(&cfg.DatabaseURL, fc.DatabaseURL)
	setString(&cfg.RedisAddr, fc.Redis.Addr)
	setString(&cfg.AMQPURL, fc.AMQP.URL)
	setString(&cfg.AMQPExchange, fc.AMQP.Exchange)
	setString(&cfg.RedisPassword, fc.Redis.Password)
	if fc.Redis.DB > 0 {
		cfg.RedisDB = fc.Redis.DB
	}
	if fc.Redis.TTL > 0 {
		cfg.GenerationTTL = fc.Redis.TTL
	}
	if fc.RateLimit.GenerateRPM > 0 {
		cfg.GenerateRPM = fc.RateLimit.GenerateRPM
	}
	if fc.RateLimit.GenerateBurst > 0 {
		cfg.GenerateBurst = fc.RateLimit.GenerateBurst
	}
	setString(&cfg.ServiceName, fc.Tracing.ServiceName)
	setString(&cfg.OTLPEndpoint, fc.Tracing.Endpoint)
	if fc.Tracing.Insecure {
		cfg.OTLPInsecure = true
	}
	return cfg, nil
}

func setString(dst *string, val string) {
	if v := strings.TrimSpace(val); v != "" {
		*dst = v
	}
}
