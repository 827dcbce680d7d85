package config

import (
	"strings"
	"testing"
)

func setRequired(t *testing.T) {
	t.Helper()
	t.Setenv("WHATSAPP_ACCESS_TOKEN", "token")
	t.Setenv("WHATSAPP_PHONE_NUMBER_ID", "12345")
	t.Setenv("WEBHOOK_VERIFY_TOKEN", "verify")
	t.Setenv("WEBHOOK_APP_SECRET", "secret")
	t.Setenv("KAFKA_BROKERS", "localhost:9092, localhost:9093")
	t.Setenv("KAFKA_EVENTS_TOPIC", "wa.events")
}

func TestLoadDefaults(t *testing.T) {
	setRequired(t)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.App.Env != "development" || cfg.App.Port != 8080 || cfg.App.LogLevel != "info" {
		t.Fatalf("unexpected app defaults: %+v", cfg.App)
	}
	if cfg.Webhook.Path != "/webhook" {
		t.Fatalf("unexpected webhook path default: %q", cfg.Webhook.Path)
	}
	if len(cfg.Kafka.Brokers) != 2 || cfg.Kafka.Brokers[1] != "localhost:9093" {
		t.Fatalf("broker list not trimmed/split: %v", cfg.Kafka.Brokers)
	}
	if cfg.WhatsApp.BusinessAccountID != "" {
		t.Fatalf("business account id must default to empty, got %q", cfg.WhatsApp.BusinessAccountID)
	}
}

func TestLoadMissingRequired(t *testing.T) {
	setRequired(t)
	t.Setenv("WHATSAPP_ACCESS_TOKEN", "")

	_, err := Load()
	if err == nil {
		t.Fatal("expected validation error")
	}
	if !strings.Contains(err.Error(), "WHATSAPP_ACCESS_TOKEN") {
		t.Fatalf("expected error to name the missing variable, got %v", err)
	}
}

func TestLoadInvalidPort(t *testing.T) {
	setRequired(t)
	t.Setenv("APP_PORT", "not-a-number")

	_, err := Load()
	if err == nil {
		t.Fatal("expected validation error for bad port")
	}
	if !strings.Contains(err.Error(), "APP_PORT") {
		t.Fatalf("expected error to name APP_PORT, got %v", err)
	}
}
