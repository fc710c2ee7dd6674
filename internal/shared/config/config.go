package config

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds application configuration.
type Config struct {
	Port            string
	Env             string
	LogLevel        string
	LogFormat       string
	CORSAllowOrigin []string

	LLMProvider  string
	LLMModel     string
	LLMTimeout   time.Duration
	GoogleAPIKey string
	OpenAIAPIKey string

	ObjectStoreType string
	LocalStoreDir   string
	AWSRegion       string
	S3Bucket        string
	S3Prefix        string
	S3Endpoint      string
	S3AccessKey     string
	S3SecretKey     string
	SSEKMSKeyID     string
	MinioEndpoint   string
	MinioAccessKey  string
	MinioSecretKey  string
	MinioBucket     string
	MinioUseSSL     bool

	DatabaseURL string

	RedisAddr     string
	RedisPassword string
	RedisDB       int
	GenerationTTL time.Duration

	AMQPURL      string
	AMQPExchange string

	GenerateRPM   float64
	GenerateBurst int

	ServiceName  string
	OTLPEndpoint string
	OTLPInsecure bool
}

// Defaults returns the configuration used when nothing is set.
func Defaults() Config {
	return Config{
		Port:            "8080",
		Env:             "dev",
		LogLevel:        "info",
		LogFormat:       "json",
		CORSAllowOrigin: []string{"http://localhost:5173"},
		LLMProvider:     "gemini",
		LLMTimeout:      120 * time.Second,
		ObjectStoreType: "local",
		LocalStoreDir:   "./data",
		GenerateRPM:     6,
		GenerateBurst:   3,
		GenerationTTL:   24 * time.Hour,
		ServiceName:     "resume-builder",
	}
}

// Load reads configuration from env files, an optional YAML file named by
// CONFIG_FILE and environment variables, in increasing priority.
func Load() Config {
	return LoadFrom(os.Getenv("CONFIG_FILE"))
}

// LoadFrom is Load with an explicit YAML path; an empty path skips the file.
func LoadFrom(configFile string) Config {
	// Best-effort load of local env files for dev convenience.
	loadEnvFiles(".env", "cmd/.env")

	cfg := Defaults()
	if path := strings.TrimSpace(configFile); path != "" {
		fromFile, err := LoadFile(path, cfg)
		if err != nil {
			log.Printf("config file %s ignored: %v", path, err)
		} else {
			cfg = fromFile
		}
	}
	return applyEnv(cfg)
}

func applyEnv(cfg Config) Config {
	cfg.Port = getEnv("PORT", cfg.Port)
	cfg.Env = normalizeEnv(getEnv("ENV", cfg.Env))
	cfg.LogLevel = getEnv("LOG_LEVEL", cfg.LogLevel)
	cfg.LogFormat = getEnv("LOG_FORMAT", cfg.LogFormat)
	if raw := os.Getenv("CORS_ALLOW_ORIGINS"); raw != "" {
		cfg.CORSAllowOrigin = splitAndTrim(raw)
	}

	cfg.LLMProvider = normalizeProvider(getEnv("LLM_PROVIDER", cfg.LLMProvider))
	cfg.LLMModel = getEnv("LLM_MODEL", cfg.LLMModel)
	if secs, ok := getEnvInt("LLM_TIMEOUT_SECONDS"); ok && secs > 0 {
		cfg.LLMTimeout = time.Duration(secs) * time.Second
	}
	cfg.GoogleAPIKey = getEnv("GOOGLE_API_KEY", cfg.GoogleAPIKey)
	cfg.OpenAIAPIKey = getEnv("OPENAI_API_KEY", cfg.OpenAIAPIKey)

	cfg.ObjectStoreType = normalizeStoreType(getEnv("OBJECT_STORE", cfg.ObjectStoreType))
	cfg.LocalStoreDir = getEnv("LOCAL_STORE_DIR", cfg.LocalStoreDir)
	cfg.AWSRegion = getEnv("AWS_REGION", cfg.AWSRegion)
	cfg.S3Bucket = getEnv("S3_BUCKET", cfg.S3Bucket)
	cfg.S3Prefix = getEnv("S3_PREFIX", cfg.S3Prefix)
	cfg.S3Endpoint = getEnv("S3_ENDPOINT", cfg.S3Endpoint)
	cfg.S3AccessKey = getEnv("S3_ACCESS_KEY_ID", cfg.S3AccessKey)
	cfg.S3SecretKey = getEnv("S3_SECRET_ACCESS_KEY", cfg.S3SecretKey)
	cfg.SSEKMSKeyID = getEnv("SSE_KMS_KEY_ID", cfg.SSEKMSKeyID)
	cfg.MinioEndpoint = getEnv("MINIO_ENDPOINT", cfg.MinioEndpoint)
	cfg.MinioAccessKey = getEnv("MINIO_ACCESS_KEY", cfg.MinioAccessKey)
	cfg.MinioSecretKey = getEnv("MINIO_SECRET_KEY", cfg.MinioSecretKey)
	cfg.MinioBucket = getEnv("MINIO_BUCKET", cfg.MinioBucket)
	if raw := os.Getenv("MINIO_USE_SSL"); raw != "" {
		cfg.MinioUseSSL = parseBool(raw)
	}

	cfg.DatabaseURL = getEnv("DATABASE_URL", cfg.DatabaseURL)
	cfg.RedisAddr = getEnv("REDIS_ADDR", cfg.RedisAddr)
	cfg.RedisPassword = getEnv("REDIS_PASSWORD", cfg.RedisPassword)
	if v, ok := getEnvInt("REDIS_DB"); ok && v >= 0 {
		cfg.RedisDB = v
	}
	if hours, ok := getEnvInt("GENERATION_TTL_HOURS"); ok && hours > 0 {
		cfg.GenerationTTL = time.Duration(hours) * time.Hour
	}
	cfg.AMQPURL = getEnv("AMQP_URL", cfg.AMQPURL)
	cfg.AMQPExchange = getEnv("AMQP_EXCHANGE", cfg.AMQPExchange)
	if cfg.Env == "production" && cfg.DatabaseURL == "" && cfg.RedisAddr == "" {
		log.Printf("neither DATABASE_URL nor REDIS_ADDR is set in production")
	}

	if raw := strings.TrimSpace(os.Getenv("RATE_LIMIT_GENERATE_RPM")); raw != "" {
		if v, err := strconv.ParseFloat(raw, 64); err == nil {
			cfg.GenerateRPM = v
		}
	}
	if v, ok := getEnvInt("RATE_LIMIT_GENERATE_BURST"); ok {
		cfg.GenerateBurst = v
	}

	cfg.ServiceName = getEnv("OTEL_SERVICE_NAME", cfg.ServiceName)
	cfg.OTLPEndpoint = getEnv("OTEL_EXPORTER_OTLP_ENDPOINT", cfg.OTLPEndpoint)
	if raw := os.Getenv("OTEL_EXPORTER_OTLP_INSECURE"); raw != "" {
		cfg.OTLPInsecure = parseBool(raw)
	}
	return cfg
}

// APIKey returns the secret for the configured LLM provider.
func (c Config) APIKey() string {
	if c.LLMProvider == "openai" {
		return c.OpenAIAPIKey
	}
	return c.GoogleAPIKey
}

func getEnv(key, def string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return def
}

func getEnvInt(key string) (int, bool) {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return 0, false
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		log.Printf("config env %s invalid int: %v", key, err)
		return 0, false
	}
	return v, true
}

func parseBool(raw string) bool {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "1", "true", "yes", "on":
		return true
	default:
		return false
	}
}

func splitAndTrim(raw string) []string {
	parts := strings.Split(raw, ",")
	var out []string
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

func normalizeEnv(raw string) string {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "production", "prod":
		return "production"
	case "staging":
		return "staging"
	case "local":
		return "local"
	default:
		return "dev"
	}
}

func normalizeStoreType(raw string) string {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "s3":
		return "s3"
	case "minio":
		return "minio"
	default:
		return "local"
	}
}

func normalizeProvider(raw string) string {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "openai":
		return "openai"
	default:
		return "gemini"
	}
}
