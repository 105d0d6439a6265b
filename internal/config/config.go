package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Store backends.
const (
	BackendFirebase = "firebase"
	BackendDynamo   = "dynamodb"
	BackendS3       = "s3"
	BackendRedis    = "redis"
)

// Event sinks.
const (
	SinkNone  = "none"
	SinkSNS   = "sns"
	SinkKafka = "kafka"
)

// Config holds all runtime configuration loaded from environment variables.
// It is read once at startup and passed to constructors.
type Config struct {
	AppPort   string
	AppEnv    string
	LogLevel  string
	LogFormat string

	StoreBackend string
	StoreTimeout time.Duration

	FirebaseURL  string // RTDB base address, e.g. https://<db>.firebasedatabase.app
	FirebaseAuth string // optional database secret or ID token, sent as ?auth=

	AWSRegion      string
	AWSEndpointURL string // empty in prod, set to LocalStack URL in dev
	AWSAccessKeyID string
	AWSSecretKey   string
	DynamoTable    string
	S3BucketName   string
	S3Prefix       string

	RedisURL string

	EventSink    string
	SNSTopicARN  string
	KafkaBrokers []string
	KafkaTopic   string

	AllowedOrigins    []string // CORS allowed origins
	TrustProxyHeaders bool     // take the client IP from X-Forwarded-For/X-Real-Ip
}

// Load reads all configuration from environment variables.
func Load() *Config {
	return &Config{
		AppPort:   getEnv("APP_PORT", "3000"),
		AppEnv:    getEnv("APP_ENV", "development"),
		LogLevel:  getEnv("LOG_LEVEL", "info"),
		LogFormat: getEnv("LOG_FORMAT", ""),

		StoreBackend: strings.ToLower(getEnv("STORE_BACKEND", BackendFirebase)),
		StoreTimeout: getEnvDuration("STORE_TIMEOUT", 5*time.Second),

		FirebaseURL:  strings.TrimRight(getEnv("FIREBASE_URL", ""), "/"),
		FirebaseAuth: getEnv("FIREBASE_AUTH", ""),

		AWSRegion:      getEnv("AWS_REGION", "us-east-1"),
		AWSEndpointURL: getEnv("AWS_ENDPOINT_URL", ""),
		AWSAccessKeyID: getEnv("AWS_ACCESS_KEY_ID", ""),
		AWSSecretKey:   getEnv("AWS_SECRET_ACCESS_KEY", ""),
		DynamoTable:    getEnv("DYNAMO_TABLE_DOCUMENTS", "documents"),
		S3BucketName:   getEnv("S3_BUCKET_NAME", "key-verify-documents"),
		S3Prefix:       getEnv("S3_PREFIX", ""),

		RedisURL: getEnv("REDIS_URL", "redis://localhost:6379/0"),

		EventSink:    strings.ToLower(getEnv("EVENT_SINK", SinkNone)),
		SNSTopicARN:  getEnv("SNS_TOPIC_ARN", ""),
		KafkaBrokers: splitList(getEnv("KAFKA_BROKERS", "")),
		KafkaTopic:   getEnv("KAFKA_TOPIC", "user-validations"),

		AllowedOrigins:    splitList(getEnv("ALLOWED_ORIGINS", "*")),
		TrustProxyHeaders: getEnvBool("TRUST_PROXY_HEADERS", false),
	}
}

// Validate reports settings that would make the service unusable.
func (c *Config) Validate() error {
	switch c.StoreBackend {
	case BackendFirebase:
		if c.FirebaseURL == "" {
			return fmt.Errorf("FIREBASE_URL is required for the %s backend", BackendFirebase)
		}
	case BackendDynamo, BackendS3, BackendRedis:
	default:
		return fmt.Errorf("unknown STORE_BACKEND %q", c.StoreBackend)
	}

	switch c.EventSink {
	case SinkNone:
	case SinkSNS:
		if c.SNSTopicARN == "" {
			return fmt.Errorf("SNS_TOPIC_ARN is required when EVENT_SINK=%s", SinkSNS)
		}
	case SinkKafka:
		if len(c.KafkaBrokers) == 0 {
			return fmt.Errorf("KAFKA_BROKERS is required when EVENT_SINK=%s", SinkKafka)
		}
	default:
		return fmt.Errorf("unknown EVENT_SINK %q", c.EventSink)
	}

	if c.StoreTimeout <= 0 {
		return fmt.Errorf("STORE_TIMEOUT must be positive")
	}
	return nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
		if n, err := strconv.Atoi(v); err == nil {
			return time.Duration(n) * time.Second
		}
	}
	return fallback
}

func splitList(v string) []string {
	var out []string
	for _, s := range strings.Split(v, ",") {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}
