package config

import (
	"os"
	"testing"
)

func TestParseOrigins(t *testing.T) {
	if got := parseOrigins(""); got != nil {
		t.Errorf("empty input should mean allow-all (nil), got %v", got)
	}

	got := parseOrigins("https://a.example, https://b.example ,, ")
	want := []string{"https://a.example", "https://b.example"}
	if len(got) != len(want) {
		t.Fatalf("parsed %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("origin[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestGetEnvInt(t *testing.T) {
	const key = "VIGILO_TEST_INT"
	defer os.Unsetenv(key)

	os.Unsetenv(key)
	if got := getEnvInt(key, 7); got != 7 {
		t.Errorf("missing var: got %d, want fallback 7", got)
	}

	os.Setenv(key, "42")
	if got := getEnvInt(key, 7); got != 42 {
		t.Errorf("set var: got %d, want 42", got)
	}

	os.Setenv(key, "not-a-number")
	if got := getEnvInt(key, 7); got != 7 {
		t.Errorf("bad var: got %d, want fallback 7", got)
	}
}
