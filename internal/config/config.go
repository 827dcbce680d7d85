// Package config loads the webhook receiver's runtime configuration from the
// environment, with .env support for local development.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// Config captures the runtime configuration of the webhook receiver.
type Config struct {
	App      AppConfig
	WhatsApp WhatsAppConfig
	Webhook  WebhookConfig
	Kafka    KafkaConfig
}

// AppConfig contains generic application level settings.
type AppConfig struct {
	Env      string
	Port     int
	LogLevel string
}

// WhatsAppConfig holds the Cloud API credentials and identity.
type WhatsAppConfig struct {
	AccessToken       string
	PhoneNumberID     string
	BusinessAccountID string
	APIVersion        string
}

// WebhookConfig holds the inbound verification material.
type WebhookConfig struct {
	VerifyToken string
	AppSecret   string
	Path        string
}

// KafkaConfig defines where normalized events are relayed to.
type KafkaConfig struct {
	Brokers     []string
	EventsTopic string
}

// Load reads environment variables, applies defaults, validates required
// values and returns a populated Config instance.
func Load() (*Config, error) {
	_ = godotenv.Load()

	ldr := &envLoader{}

	cfg := &Config{}
	cfg.App.Env = ldr.getString("APP_ENV", "development", false)
	cfg.App.Port = ldr.getInt("APP_PORT", 8080, false)
	cfg.App.LogLevel = ldr.getString("LOG_LEVEL", "info", false)

	cfg.WhatsApp.AccessToken = ldr.getString("WHATSAPP_ACCESS_TOKEN", "", true)
	cfg.WhatsApp.PhoneNumberID = ldr.getString("WHATSAPP_PHONE_NUMBER_ID", "", true)
	cfg.WhatsApp.BusinessAccountID = ldr.getString("WHATSAPP_BUSINESS_ACCOUNT_ID", "", false)
	cfg.WhatsApp.APIVersion = ldr.getString("WHATSAPP_API_VERSION", "", false)

	cfg.Webhook.VerifyToken = ldr.getString("WEBHOOK_VERIFY_TOKEN", "", true)
	cfg.Webhook.AppSecret = ldr.getString("WEBHOOK_APP_SECRET", "", true)
	cfg.Webhook.Path = ldr.getString("WEBHOOK_PATH", "/webhook", false)

	cfg.Kafka.Brokers = ldr.getStringSlice("KAFKA_BROKERS", true)
	cfg.Kafka.EventsTopic = ldr.getString("KAFKA_EVENTS_TOPIC", "", true)

	if err := ldr.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

type envLoader struct {
	errs []string
}

func (l *envLoader) validate() error {
	if len(l.errs) == 0 {
		return nil
	}
	return fmt.Errorf("config validation failed: %s", strings.Join(l.errs, "; "))
}

func (l *envLoader) addError(msg string) {
	l.errs = append(l.errs, msg)
}

func (l *envLoader) getString(key, def string, required bool) string {
	val := strings.TrimSpace(os.Getenv(key))
	if val == "" {
		if required {
			l.addError(fmt.Sprintf("%s is required", key))
		}
		return def
	}
	return val
}

func (l *envLoader) getInt(key string, def int, required bool) int {
	val := l.getString(key, "", required)
	if val == "" {
		return def
	}
	i, err := strconv.Atoi(val)
	if err != nil {
		l.addError(fmt.Sprintf("%s must be a valid integer", key))
		return def
	}
	return i
}

func (l *envLoader) getStringSlice(key string, required bool) []string {
	val := l.getString(key, "", required)
	if val == "" {
		return nil
	}
	parts := strings.Split(val, ",")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
