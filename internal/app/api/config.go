package api

import (
	"fmt"
	"os"
	"strings"

	"go.temporal.io/sdk/client"
)

// Config carries environment-driven settings for the API process.
type Config struct {
	Port                   string
	PostgresDSN            string
	TemporalAddress        string
	TemporalNamespace      string
	TemporalDisabled       bool
	KafkaBrokers           []string
	KafkaInvalidationTopic string
}

// LoadConfig reads environment variables, applies defaults, and validates
// basic constraints.
func LoadConfig() (Config, error) {
	cfg := Config{
		Port:                   envDefault("PORT", "8080"),
		PostgresDSN:            strings.TrimSpace(os.Getenv("POSTGRES_DSN")),
		TemporalAddress:        envDefault("TEMPORAL_ADDRESS", client.DefaultHostPort),
		TemporalNamespace:      envDefault("TEMPORAL_NAMESPACE", client.DefaultNamespace),
		TemporalDisabled:       isTruthy(os.Getenv("TEMPORAL_DISABLED")),
		KafkaInvalidationTopic: envDefault("KAFKA_INVALIDATION_TOPIC", "storefront.view-invalidations"),
	}
	if raw := strings.TrimSpace(os.Getenv("KAFKA_BROKERS")); raw != "" {
		for _, broker := range strings.Split(raw, ",") {
			broker = strings.TrimSpace(broker)
			if broker == "" {
				return Config{}, fmt.Errorf("KAFKA_BROKERS contains an empty broker address")
			}
			cfg.KafkaBrokers = append(cfg.KafkaBrokers, broker)
		}
	}
	return cfg, nil
}

// KafkaEnabled reports whether view invalidations should also be published
// to Kafka.
func (c Config) KafkaEnabled() bool {
	return len(c.KafkaBrokers) > 0
}

func envDefault(key, fallback string) string {
	if val := strings.TrimSpace(os.Getenv(key)); val != "" {
		return val
	}
	return fallback
}

func isTruthy(value string) bool {
	value = strings.TrimSpace(strings.ToLower(value))
	return value == "1" || value == "true" || value == "yes"
}
