package utils

import (
	"reflect"
	"testing"
)

func TestSafeEnv(t *testing.T) {
	const key = "_VALORACION_TEST_SAFEENV"
	t.Setenv(key, "")
	if got := SafeEnv(key, "fallback"); got != "fallback" {
		t.Fatalf("expected fallback, got %q", got)
	}
	t.Setenv(key, "  value ")
	if got := SafeEnv(key, "fallback"); got != "value" {
		t.Fatalf("expected 'value', got %q", got)
	}
}

func TestEnvInt(t *testing.T) {
	const key = "_VALORACION_TEST_ENVINT"
	t.Setenv(key, "42")
	if got := EnvInt(key, 7); got != 42 {
		t.Fatalf("expected 42, got %d", got)
	}
	t.Setenv(key, "forty-two")
	if got := EnvInt(key, 7); got != 7 {
		t.Fatalf("expected fallback 7, got %d", got)
	}
}

func TestEnvList(t *testing.T) {
	const key = "_VALORACION_TEST_ENVLIST"
	t.Setenv(key, " a, ,b ,c")
	if got := EnvList(key, nil); !reflect.DeepEqual(got, []string{"a", "b", "c"}) {
		t.Fatalf("unexpected list %v", got)
	}
	t.Setenv(key, " , ")
	if got := EnvList(key, []string{"*"}); !reflect.DeepEqual(got, []string{"*"}) {
		t.Fatalf("expected fallback, got %v", got)
	}
}
