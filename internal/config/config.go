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
	"github.com/go-playground/validator/v10"
	"github.com/samber/oops"
)

// Config 聚合整个服务的配置项。
type Config struct {
	Server  ServerConfig
	Log     LogConfig
	Auth    AuthConfig
	Storage StorageConfig
	AI      AIConfig
	Chat    ChatConfig
}

// Load 从环境变量加载配置并进行校验。
func Load() (*Config, error) {
	server, err := loadServerConfig()
	if err != nil {
		return nil, err
	}

	ai, err := loadAIConfig()
	if err != nil {
		return nil, err
	}

	chat, err := loadChatConfig()
	if err != nil {
		return nil, err
	}

	logCfg, err := loadLogConfig()
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		Server:  server,
		Log:     logCfg,
		Auth:    loadAuthConfig(),
		Storage: loadStorageConfig(),
		AI:      ai,
		Chat:    chat,
	}

	validate := validator.New(validator.WithRequiredStructEnabled())
	if err := validate.Struct(cfg); err != nil {
		return nil, oops.In("config").Wrapf(err, "failed to validate config")
	}

	return cfg, nil
}

// ServerConfig 描述 HTTP 服务配置。
type ServerConfig struct {
	Addr string `validate:"required"`
	// AllowedOrigins 用于 CORS 中间件，"*" 表示允许任意来源。
	AllowedOrigins []string `validate:"min=1"`
}

func loadServerConfig() (ServerConfig, error) {
	port := strings.TrimSpace(os.Getenv("PORT"))
	if port == "" {
		port = "8080"
	}

	origins := splitList(getEnvOrDefault("CORS_ALLOWED_ORIGINS", "*"))

	if strings.Contains(port, ":") {
		// 允许用户直接传入 ":8080" 或 "127.0.0.1:8080"。
		return ServerConfig{Addr: port, AllowedOrigins: origins}, nil
	}

	if strings.Contains(port, " ") {
		return ServerConfig{}, fmt.Errorf("invalid PORT value: %q", port)
	}

	return ServerConfig{Addr: ":" + port, AllowedOrigins: origins}, nil
}

// LogConfig 描述日志输出配置。
type LogConfig struct {
	Level string `validate:"oneof=debug info warn error"`
	// File 非空时额外写入 JSON 格式日志。
	File      string
	AddSource bool
}

func loadLogConfig() (LogConfig, error) {
	addSource, err := parseBoolEnv("LOG_SOURCE", false)
	if err != nil {
		return LogConfig{}, err
	}

	return LogConfig{
		Level:     strings.ToLower(getEnvOrDefault("LOG_LEVEL", "info")),
		File:      strings.TrimSpace(os.Getenv("LOG_FILE")),
		AddSource: addSource,
	}, nil
}

// AuthConfig 描述托管的认证与数据库项目。
type AuthConfig struct {
	SupabaseURL string `validate:"omitempty,url"`
	AnonKey     string `validate:"required_with=SupabaseURL"`
	// PasswordRedirect 随重置密码邮件一起发送。
	PasswordRedirect string
}

// Enabled 表示是否配置了 Supabase 项目。
func (c AuthConfig) Enabled() bool {
	return c.SupabaseURL != ""
}

func loadAuthConfig() AuthConfig {
	return AuthConfig{
		SupabaseURL:      strings.TrimRight(strings.TrimSpace(os.Getenv("SUPABASE_URL")), "/"),
		AnonKey:          strings.TrimSpace(os.Getenv("SUPABASE_ANON_KEY")),
		PasswordRedirect: getEnvOrDefault("AUTH_PASSWORD_REDIRECT", "http://localhost:3000/auth/updatePassword"),
	}
}

// 存储后端。
const (
	BackendSupabase = "supabase"
	BackendSQLite   = "sqlite"
	BackendMemory   = "memory"
)

// StorageConfig 选择健康记录的读取来源以及会话的持久化位置。
type StorageConfig struct {
	RecordBackend string `validate:"oneof=supabase sqlite memory"`
	ChatStore     string `validate:"oneof=sqlite memory"`
	SQLitePath    string `validate:"required_if=ChatStore sqlite"`
}

func loadStorageConfig() StorageConfig {
	recordBackend := BackendMemory
	if strings.TrimSpace(os.Getenv("SUPABASE_URL")) != "" {
		recordBackend = BackendSupabase
	}

	return StorageConfig{
		RecordBackend: strings.ToLower(getEnvOrDefault("RECORD_BACKEND", recordBackend)),
		ChatStore:     strings.ToLower(getEnvOrDefault("CHAT_STORE", BackendMemory)),
		SQLitePath:    getEnvOrDefault("SQLITE_PATH", "data/healthai.db"),
	}
}

// AI 服务提供方。
const (
	ProviderGemini = "gemini"
	ProviderArk    = "ark"
)

// AIConfig 描述大模型相关配置。
type AIConfig struct {
	Provider     string `validate:"oneof=gemini ark"`
	SystemPrompt string

	GeminiAPIKey string
	GeminiModel  string

	APIKey      string
	AccessKey   string
	SecretKey   string
	Model       string
	BaseURL     string
	Region      string
	Temperature *float64
	TopP        *float64
	MaxTokens   *int
}

// Enabled 表示所选提供方是否具备必需的密钥。
func (c AIConfig) Enabled() bool {
	switch c.Provider {
	case ProviderArk:
		return c.Model != "" && (c.APIKey != "" || (c.AccessKey != "" && c.SecretKey != ""))
	default:
		return c.GeminiAPIKey != "" && c.GeminiModel != ""
	}
}

// NewChatModel 使用配置创建一个 Ark 模型实例。
func (c AIConfig) NewChatModel(ctx context.Context) (model.ChatModel, error) {
	if c.Provider != ProviderArk || !c.Enabled() {
		return nil, fmt.Errorf("ark credentials or model missing, provide ARK_API_KEY + Model or an AK/SK pair")
	}

	var temperature *float32
	if c.Temperature != nil {
		val := float32(*c.Temperature)
		temperature = &val
	}

	var topP *float32
	if c.TopP != nil {
		val := float32(*c.TopP)
		topP = &val
	}

	cfg := &ark.ChatModelConfig{
		BaseURL:     c.BaseURL,
		Region:      c.Region,
		APIKey:      c.APIKey,
		AccessKey:   c.AccessKey,
		SecretKey:   c.SecretKey,
		Model:       c.Model,
		MaxTokens:   c.MaxTokens,
		Temperature: temperature,
		TopP:        topP,
	}

	return ark.NewChatModel(ctx, cfg)
}

func loadAIConfig() (AIConfig, error) {
	temperature, err := parseOptionalFloatEnv("ARK_TEMPERATURE")
	if err != nil {
		return AIConfig{}, err
	}

	topP, err := parseOptionalFloatEnv("ARK_TOP_P")
	if err != nil {
		return AIConfig{}, err
	}

	maxTokens, err := parseOptionalIntEnv("ARK_MAX_TOKENS")
	if err != nil {
		return AIConfig{}, err
	}

	return AIConfig{
		Provider:     strings.ToLower(getEnvOrDefault("AI_PROVIDER", ProviderGemini)),
		SystemPrompt: strings.TrimSpace(os.Getenv("AI_SYSTEM_PROMPT")),
		GeminiAPIKey: strings.TrimSpace(os.Getenv("GEMINI_API_KEY")),
		GeminiModel:  getEnvOrDefault("GEMINI_MODEL", "gemini-2.0-flash"),
		APIKey:       strings.TrimSpace(os.Getenv("ARK_API_KEY")),
		AccessKey:    strings.TrimSpace(os.Getenv("ARK_ACCESS_KEY")),
		SecretKey:    strings.TrimSpace(os.Getenv("ARK_SECRET_KEY")),
		Model:        strings.TrimSpace(os.Getenv("Model")),
		BaseURL:      getEnvOrDefault("ARK_BASE_URL", "https://ark.cn-beijing.volces.com/api/v3"),
		Region:       getEnvOrDefault("ARK_REGION", "cn-beijing"),
		Temperature:  temperature,
		TopP:         topP,
		MaxTokens:    maxTokens,
	}, nil
}

// ChatConfig 描述聊天页的默认参数。
type ChatConfig struct {
	DailyQuota     int            `validate:"gte=1"`
	InitialUsed    int            `validate:"gte=0"`
	HealthLogLimit int            `validate:"gte=1"`
	DateLayout     string         `validate:"required"`
	Location       *time.Location `validate:"required"`
}

func loadChatConfig() (ChatConfig, error) {
	quota := 5
	if override, err := parseOptionalIntEnv("CHAT_DAILY_QUOTA"); err != nil {
		return ChatConfig{}, err
	} else if override != nil {
		quota = *override
	}

	// 免费账户的模拟用量：5 次中已使用 3 次。
	used := 3
	if override, err := parseOptionalIntEnv("CHAT_QUOTA_USED"); err != nil {
		return ChatConfig{}, err
	} else if override != nil {
		used = *override
	}

	logLimit := 3
	if override, err := parseOptionalIntEnv("CHAT_HEALTH_LOG_LIMIT"); err != nil {
		return ChatConfig{}, err
	} else if override != nil {
		logLimit = *override
	}

	zone := getEnvOrDefault("CHAT_TIMEZONE", "Local")
	loc, err := time.LoadLocation(zone)
	if err != nil {
		return ChatConfig{}, fmt.Errorf("invalid CHAT_TIMEZONE value %q: %w", zone, err)
	}

	return ChatConfig{
		DailyQuota:     quota,
		InitialUsed:    used,
		HealthLogLimit: logLimit,
		DateLayout:     getEnvOrDefault("CHAT_DATE_LAYOUT", "1/2/2006, 3:04:05 PM"),
		Location:       loc,
	}, nil
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		return value
	}
	return defaultValue
}

func splitList(raw string) []string {
	var out []string
	for _, item := range strings.Split(raw, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
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

func parseOptionalIntEnv(key string) (*int, error) {
	raw, ok := os.LookupEnv(key)
	if !ok {
		return nil, nil
	}

	value := strings.TrimSpace(raw)
	if value == "" {
		return nil, nil
	}

	val, err := strconv.Atoi(value)
	if err != nil {
		return nil, fmt.Errorf("invalid %s value %q: %w", key, value, err)
	}
	return &val, nil
}
