package config

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/cloudwego/eino-ext/components/model/ark"
	"github.com/cloudwego/eino/components/model"
)

// Config aggregates every setting the service reads at startup.
type Config struct {
	Server    ServerConfig
	LLM       LLMConfig
	Chat      ChatConfig
	Store     StoreConfig
	Knowledge KnowledgeConfig
	Matrix    MatrixConfig
}

// Load reads configuration from environment variables.
func Load() (*Config, error) {
	server, err := loadServerConfig()
	if err != nil {
		return nil, err
	}

	llmCfg, err := loadLLMConfig()
	if err != nil {
		return nil, err
	}

	chatCfg, err := loadChatConfig()
	if err != nil {
		return nil, err
	}

	knowledgeCfg, err := loadKnowledgeConfig()
	if err != nil {
		return nil, err
	}

	return &Config{
		Server:    server,
		LLM:       llmCfg,
		Chat:      chatCfg,
		Store:     loadStoreConfig(),
		Knowledge: knowledgeCfg,
		Matrix:    loadMatrixConfig(),
	}, nil
}

// ServerConfig describes the HTTP listener.
type ServerConfig struct {
	Addr string
}

func loadServerConfig() (ServerConfig, error) {
	port := strings.TrimSpace(os.Getenv("PORT"))
	if port == "" {
		port = "8080"
	}

	if strings.Contains(port, ":") {
		// Allow ":8080" or "127.0.0.1:8080" verbatim.
		return ServerConfig{Addr: port}, nil
	}

	if strings.Contains(port, " ") {
		return ServerConfig{}, fmt.Errorf("invalid PORT value: %q", port)
	}

	return ServerConfig{Addr: ":" + port}, nil
}

// Completion providers selectable via LLM_PROVIDER.
const (
	ProviderArk       = "ark"
	ProviderAnthropic = "anthropic"
)

// LLMConfig describes the completion backend and its retry policy.
type LLMConfig struct {
	Provider    string
	Model       string
	Temperature *float64
	MaxTokens   int

	ArkAPIKey    string
	ArkAccessKey string
	ArkSecretKey string
	ArkBaseURL   string
	ArkRegion    string

	AnthropicAPIKey  string
	AnthropicBaseURL string

	RetryAttempts  int
	RetryDelay     time.Duration
	AttemptTimeout time.Duration
}

// Enabled reports whether the selected provider has the credentials it needs.
func (c LLMConfig) Enabled() bool {
	if c.Model == "" {
		return false
	}
	switch c.Provider {
	case ProviderAnthropic:
		return c.AnthropicAPIKey != ""
	default:
		return c.ArkAPIKey != "" || (c.ArkAccessKey != "" && c.ArkSecretKey != "")
	}
}

// NewArkModel creates the Ark chat model backing the completion chain.
func (c LLMConfig) NewArkModel(ctx context.Context) (model.ChatModel, error) {
	if !c.Enabled() {
		return nil, fmt.Errorf("ark credentials or model missing: provide ARK_API_KEY + LLM_MODEL, or the AK/SK pair")
	}

	var temperature *float32
	if c.Temperature != nil {
		val := float32(*c.Temperature)
		temperature = &val
	}

	var maxTokens *int
	if c.MaxTokens > 0 {
		val := c.MaxTokens
		maxTokens = &val
	}

	cfg := &ark.ChatModelConfig{
		BaseURL:     c.ArkBaseURL,
		Region:      c.ArkRegion,
		APIKey:      c.ArkAPIKey,
		AccessKey:   c.ArkAccessKey,
		SecretKey:   c.ArkSecretKey,
		Model:       c.Model,
		MaxTokens:   maxTokens,
		Temperature: temperature,
	}

	return ark.NewChatModel(ctx, cfg)
}

func loadLLMConfig() (LLMConfig, error) {
	temperature, err := parseOptionalFloatEnv("LLM_TEMPERATURE")
	if err != nil {
		return LLMConfig{}, err
	}

	maxTokens, err := parseIntEnv("LLM_MAX_TOKENS", 2000)
	if err != nil {
		return LLMConfig{}, err
	}

	attempts, err := parseIntEnv("LLM_RETRY_ATTEMPTS", 3)
	if err != nil {
		return LLMConfig{}, err
	}

	delayMS, err := parseIntEnv("LLM_RETRY_DELAY_MS", 1000)
	if err != nil {
		return LLMConfig{}, err
	}

	timeoutSeconds, err := parseIntEnv("LLM_TIMEOUT_SECONDS", 30)
	if err != nil {
		return LLMConfig{}, err
	}

	provider := strings.ToLower(getEnvOrDefault("LLM_PROVIDER", ProviderArk))
	if provider != ProviderArk && provider != ProviderAnthropic {
		return LLMConfig{}, fmt.Errorf("invalid LLM_PROVIDER value %q", provider)
	}

	return LLMConfig{
		Provider:         provider,
		Model:            strings.TrimSpace(os.Getenv("LLM_MODEL")),
		Temperature:      temperature,
		MaxTokens:        maxTokens,
		ArkAPIKey:        strings.TrimSpace(os.Getenv("ARK_API_KEY")),
		ArkAccessKey:     strings.TrimSpace(os.Getenv("ARK_ACCESS_KEY")),
		ArkSecretKey:     strings.TrimSpace(os.Getenv("ARK_SECRET_KEY")),
		ArkBaseURL:       getEnvOrDefault("ARK_BASE_URL", "https://ark.cn-beijing.volces.com/api/v3"),
		ArkRegion:        getEnvOrDefault("ARK_REGION", "cn-beijing"),
		AnthropicAPIKey:  strings.TrimSpace(os.Getenv("ANTHROPIC_API_KEY")),
		AnthropicBaseURL: strings.TrimSpace(os.Getenv("ANTHROPIC_BASE_URL")),
		RetryAttempts:    attempts,
		RetryDelay:       time.Duration(delayMS) * time.Millisecond,
		AttemptTimeout:   time.Duration(timeoutSeconds) * time.Second,
	}, nil
}

// ChatConfig bounds conversation state and reply delivery.
type ChatConfig struct {
	TranscriptCap int
	ContextWindow int
	ChunkLimit    int
}

func loadChatConfig() (ChatConfig, error) {
	transcriptCap, err := parseIntEnv("CHAT_TRANSCRIPT_CAP", 50)
	if err != nil {
		return ChatConfig{}, err
	}

	contextWindow, err := parseIntEnv("CHAT_CONTEXT_WINDOW", 15)
	if err != nil {
		return ChatConfig{}, err
	}

	chunkLimit, err := parseIntEnv("CHAT_CHUNK_LIMIT", 4000)
	if err != nil {
		return ChatConfig{}, err
	}

	return ChatConfig{
		TranscriptCap: transcriptCap,
		ContextWindow: contextWindow,
		ChunkLimit:    chunkLimit,
	}, nil
}

// StoreConfig selects the correction log backend. An empty CorrectionsDB
// keeps the log in memory. Sessions are in-memory regardless and do not
// survive a restart.
type StoreConfig struct {
	CorrectionsDB string
	PersonasFile  string
}

func loadStoreConfig() StoreConfig {
	return StoreConfig{
		CorrectionsDB: strings.TrimSpace(os.Getenv("CORRECTIONS_DB")),
		PersonasFile:  strings.TrimSpace(os.Getenv("PERSONAS_FILE")),
	}
}

// KnowledgeConfig toggles the Wikipedia fact enrichment.
type KnowledgeConfig struct {
	WikipediaEnabled bool
	WikipediaBaseURL string
}

func loadKnowledgeConfig() (KnowledgeConfig, error) {
	enabled, err := parseBoolEnv("KNOWLEDGE_WIKIPEDIA", false)
	if err != nil {
		return KnowledgeConfig{}, err
	}
	return KnowledgeConfig{
		WikipediaEnabled: enabled,
		WikipediaBaseURL: strings.TrimSpace(os.Getenv("KNOWLEDGE_WIKIPEDIA_URL")),
	}, nil
}

// MatrixConfig describes the bot transport, enabled when credentials are
// complete. An empty Rooms list accepts invites from anywhere.
type MatrixConfig struct {
	Homeserver  string
	UserID      string
	AccessToken string
	Rooms       []string
	ChunkLimit  int
}

// Enabled reports whether the Matrix credentials are complete.
func (c MatrixConfig) Enabled() bool {
	return c.Homeserver != "" && c.UserID != "" && c.AccessToken != ""
}

func loadMatrixConfig() MatrixConfig {
	var rooms []string
	for _, room := range strings.Split(os.Getenv("MATRIX_ROOMS"), ",") {
		if room = strings.TrimSpace(room); room != "" {
			rooms = append(rooms, room)
		}
	}

	chunkLimit, err := parseIntEnv("MATRIX_CHUNK_LIMIT", 4000)
	if err != nil {
		chunkLimit = 4000
	}

	return MatrixConfig{
		Homeserver:  strings.TrimSpace(os.Getenv("MATRIX_HOMESERVER")),
		UserID:      strings.TrimSpace(os.Getenv("MATRIX_USER_ID")),
		AccessToken: strings.TrimSpace(os.Getenv("MATRIX_ACCESS_TOKEN")),
		Rooms:       rooms,
		ChunkLimit:  chunkLimit,
	}
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		return value
	}
	return defaultValue
}

func parseBoolEnv(key string, defaultValue bool) (bool, error) {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return defaultValue, nil
	}

	val, err := strconv.ParseBool(raw)
	if err != nil {
		return false, fmt.Errorf("invalid %s value %q: %w", key, raw, err)
	}
	return val, nil
}

func parseIntEnv(key string, defaultValue int) (int, error) {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return defaultValue, nil
	}

	val, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid %s value %q: %w", key, raw, err)
	}
	return val, nil
}

func parseOptionalFloatEnv(key string) (*float64, error) {
	raw, ok := os.LookupEnv(key)
	if !ok {
		return nil, nil
	}

	value := strings.TrimSpace(raw)
	if value == "" {
		return nil, nil
	}

	val, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid %s value %q: %w", key, value, err)
	}
	return &val, nil
}
