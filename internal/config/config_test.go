package config

import (
	"os"
	"path/filepath"
	"testing"
)

const validYAML = `
port: "8080"
logLevel: debug
databaseURL: postgres://localhost/lumira
identityProviderURL: https://id.example.com
redisAddr: localhost:6379
geminiAPIKey: file-key
generationModel: gemini-2.0-flash
elevenLabsAPIKey: el-key
minioEndpoint: localhost:9000
minioBucket: lumira-audio
`

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoadValidConfig(t *testing.T) {
	cfg, err := Load(writeConfig(t, validYAML))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Port != "8080" || cfg.GenerationModel != "gemini-2.0-flash" {
		t.Fatalf("unexpected config: %+v", cfg)
	}
	if !cfg.AudioEnabled() {
		t.Fatal("expected audio branch enabled")
	}
}

func TestLoadEnvOverridesSecret(t *testing.T) {
	t.Setenv("GEMINI_API_KEY", "env-key")
	cfg, err := Load(writeConfig(t, validYAML))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.GeminiAPIKey != "env-key" {
		t.Fatalf("env override not applied: %q", cfg.GeminiAPIKey)
	}
}

func TestLoadRejectsMissingRequiredFields(t *testing.T) {
	if _, err := Load(writeConfig(t, "port: \"8080\"\n")); err == nil {
		t.Fatal("expected validation error")
	}
}

func TestAudioDisabledWithoutSpeechKey(t *testing.T) {
	cfg := FileConfig{MinioEndpoint: "localhost:9000"}
	if cfg.AudioEnabled() {
		t.Fatal("audio must be disabled without a speech key")
	}
}
