package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("FIREBASE_URL", "https://db.example.app/")

	cfg := Load()

	assert.Equal(t, "3000", cfg.AppPort)
	assert.Equal(t, BackendFirebase, cfg.StoreBackend)
	assert.Equal(t, "https://db.example.app", cfg.FirebaseURL)
	assert.Equal(t, 5*time.Second, cfg.StoreTimeout)
	assert.Equal(t, SinkNone, cfg.EventSink)
	assert.Equal(t, []string{"*"}, cfg.AllowedOrigins)
	assert.Empty(t, cfg.KafkaBrokers)
	assert.False(t, cfg.TrustProxyHeaders)
	require.NoError(t, cfg.Validate())
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("STORE_BACKEND", "DynamoDB")
	t.Setenv("STORE_TIMEOUT", "250ms")
	t.Setenv("EVENT_SINK", "kafka")
	t.Setenv("KAFKA_BROKERS", "k1:9092, k2:9092,")
	t.Setenv("ALLOWED_ORIGINS", "https://a.example,https://b.example")
	t.Setenv("TRUST_PROXY_HEADERS", "true")

	cfg := Load()
	assert.True(t, cfg.TrustProxyHeaders)

	assert.Equal(t, BackendDynamo, cfg.StoreBackend)
	assert.Equal(t, 250*time.Millisecond, cfg.StoreTimeout)
	assert.Equal(t, []string{"k1:9092", "k2:9092"}, cfg.KafkaBrokers)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.AllowedOrigins)
	require.NoError(t, cfg.Validate())
}

func TestGetEnvDuration_BareSeconds(t *testing.T) {
	t.Setenv("STORE_TIMEOUT", "3")
	assert.Equal(t, 3*time.Second, Load().StoreTimeout)
}

func TestValidate(t *testing.T) {
	cases := []struct {
		name string
		cfg  Config
		want string
	}{
		{"firebase without url", Config{StoreBackend: BackendFirebase, EventSink: SinkNone, StoreTimeout: time.Second}, "FIREBASE_URL"},
		{"unknown backend", Config{StoreBackend: "mongo", EventSink: SinkNone, StoreTimeout: time.Second}, "STORE_BACKEND"},
		{"sns without topic", Config{StoreBackend: BackendRedis, EventSink: SinkSNS, StoreTimeout: time.Second}, "SNS_TOPIC_ARN"},
		{"kafka without brokers", Config{StoreBackend: BackendRedis, EventSink: SinkKafka, StoreTimeout: time.Second}, "KAFKA_BROKERS"},
		{"unknown sink", Config{StoreBackend: BackendS3, EventSink: "webhook", StoreTimeout: time.Second}, "EVENT_SINK"},
		{"zero timeout", Config{StoreBackend: BackendS3, EventSink: SinkNone}, "STORE_TIMEOUT"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.ErrorContains(t, tc.cfg.Validate(), tc.want)
		})
	}
}
