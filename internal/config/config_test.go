package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	if cfg.Server.Addr != ":8080" {
		t.Fatalf("expected default addr :8080, got %q", cfg.Server.Addr)
	}
	if cfg.LLM.Provider != ProviderArk {
		t.Fatalf("expected default provider ark, got %q", cfg.LLM.Provider)
	}
	if cfg.LLM.RetryAttempts != 3 {
		t.Fatalf("expected 3 retry attempts, got %d", cfg.LLM.RetryAttempts)
	}
	if cfg.LLM.RetryDelay != time.Second {
		t.Fatalf("expected 1s retry delay, got %s", cfg.LLM.RetryDelay)
	}
	if cfg.LLM.AttemptTimeout != 30*time.Second {
		t.Fatalf("expected 30s attempt timeout, got %s", cfg.LLM.AttemptTimeout)
	}
	if cfg.Chat.TranscriptCap != 50 || cfg.Chat.ContextWindow != 15 || cfg.Chat.ChunkLimit != 4000 {
		t.Fatalf("unexpected chat defaults: %+v", cfg.Chat)
	}
}

func TestLoadServerAddrForms(t *testing.T) {
	t.Setenv("PORT", "9000")
	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Server.Addr != ":9000" {
		t.Fatalf("expected :9000, got %q", cfg.Server.Addr)
	}

	t.Setenv("PORT", "127.0.0.1:9000")
	cfg, err = Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Server.Addr != "127.0.0.1:9000" {
		t.Fatalf("expected verbatim addr, got %q", cfg.Server.Addr)
	}
}

func TestLoadRejectsBadProvider(t *testing.T) {
	t.Setenv("LLM_PROVIDER", "openai")
	if _, err := Load(); err == nil {
		t.Fatal("expected error for unsupported provider")
	}
}

func TestLoadAnthropicProvider(t *testing.T) {
	t.Setenv("LLM_PROVIDER", "anthropic")
	t.Setenv("ANTHROPIC_API_KEY", "sk-test")
	t.Setenv("LLM_MODEL", "claude-3-5-sonnet-latest")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.LLM.Provider != ProviderAnthropic {
		t.Fatalf("expected anthropic provider, got %q", cfg.LLM.Provider)
	}
	if !cfg.LLM.Enabled() {
		t.Fatal("expected provider enabled with key and model")
	}
}

func TestLLMEnabledRequiresCredentials(t *testing.T) {
	cfg := LLMConfig{Provider: ProviderArk, Model: "doubao-pro"}
	if cfg.Enabled() {
		t.Fatal("ark without credentials should be disabled")
	}
	cfg.ArkAPIKey = "key"
	if !cfg.Enabled() {
		t.Fatal("ark with api key should be enabled")
	}

	cfg = LLMConfig{Provider: ProviderAnthropic, AnthropicAPIKey: "key"}
	if cfg.Enabled() {
		t.Fatal("anthropic without model should be disabled")
	}
}

func TestMatrixConfig(t *testing.T) {
	cfg := MatrixConfig{}
	if cfg.Enabled() {
		t.Fatal("empty matrix config should be disabled")
	}

	t.Setenv("MATRIX_HOMESERVER", "https://matrix.example.org")
	t.Setenv("MATRIX_USER_ID", "@salon:example.org")
	t.Setenv("MATRIX_ACCESS_TOKEN", "token")
	t.Setenv("MATRIX_ROOMS", "!a:example.org, !b:example.org ,")

	loaded, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if !loaded.Matrix.Enabled() {
		t.Fatal("expected matrix enabled")
	}
	if len(loaded.Matrix.Rooms) != 2 {
		t.Fatalf("expected 2 rooms, got %v", loaded.Matrix.Rooms)
	}
}

func TestInvalidIntEnv(t *testing.T) {
	t.Setenv("CHAT_TRANSCRIPT_CAP", "many")
	if _, err := Load(); err == nil {
		t.Fatal("expected error for non-numeric cap")
	}
}
