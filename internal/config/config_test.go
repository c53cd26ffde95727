package config

import (
	"reflect"
	"testing"
)

func TestGetEnv(t *testing.T) {
	t.Setenv("PHONESCOUT_TEST_STR", "value")

	if got := getEnv("PHONESCOUT_TEST_STR", "fallback"); got != "value" {
		t.Errorf("expected value, got %q", got)
	}
	if got := getEnv("PHONESCOUT_TEST_MISSING", "fallback"); got != "fallback" {
		t.Errorf("expected fallback, got %q", got)
	}
}

func TestGetEnvAsInt(t *testing.T) {
	t.Setenv("PHONESCOUT_TEST_INT", "42")
	t.Setenv("PHONESCOUT_TEST_BAD_INT", "not a number")

	if got := getEnvAsInt("PHONESCOUT_TEST_INT", 7); got != 42 {
		t.Errorf("expected 42, got %d", got)
	}
	if got := getEnvAsInt("PHONESCOUT_TEST_BAD_INT", 7); got != 7 {
		t.Errorf("expected fallback 7, got %d", got)
	}
	if got := getEnvAsInt("PHONESCOUT_TEST_MISSING", 7); got != 7 {
		t.Errorf("expected fallback 7, got %d", got)
	}
}

func TestGetEnvAsList(t *testing.T) {
	t.Setenv("PHONESCOUT_TEST_LIST", "one, two ,three,")

	got := getEnvAsList("PHONESCOUT_TEST_LIST", nil)
	want := []string{"one", "two", "three"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("expected %v, got %v", want, got)
	}

	fallback := []string{"a", "b"}
	if got := getEnvAsList("PHONESCOUT_TEST_MISSING", fallback); !reflect.DeepEqual(got, fallback) {
		t.Errorf("expected fallback %v, got %v", fallback, got)
	}
}

func TestLoadConfigDefaults(t *testing.T) {
	LoadConfig()

	if AppConfig.HTTPPort == "" {
		t.Error("expected a default port")
	}
	if AppConfig.BreakerFailureThreshold != 5 {
		t.Errorf("expected default threshold 5, got %d", AppConfig.BreakerFailureThreshold)
	}
	if AppConfig.MaxQueryLength != 500 {
		t.Errorf("expected default max query length 500, got %d", AppConfig.MaxQueryLength)
	}
	if len(AppConfig.BlockedKeywords) == 0 {
		t.Error("expected default blocked keywords")
	}
}
