package config

import (
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"
)

// Config is the root configuration for the reverselearn server.
// Values come from Defaults, then an optional YAML file, then environment
// overrides. Secrets (API keys, JWT secret) are env-only.
type Config struct {
	Server ServerConfig `yaml:"server"`
	Mongo  MongoConfig  `yaml:"mongo"`
	Redis  RedisConfig  `yaml:"redis"`
	Auth   AuthConfig   `yaml:"auth"`
	AI     AIConfig     `yaml:"ai"`
	Speech SpeechConfig `yaml:"speech"`
}

type ServerConfig struct {
	Port string `yaml:"port"`
}

type MongoConfig struct {
	URI      string `yaml:"uri"`
	Database string `yaml:"database"`
}

type RedisConfig struct {
	Addr string `yaml:"addr"`
}

type AuthConfig struct {
	JWTSecret     string `yaml:"-"`
	TokenTTLHours int    `yaml:"tokenTtlHours"`
}

// AIConfig points at an Azure-OpenAI-style chat completions deployment
type AIConfig struct {
	Endpoint   string `yaml:"endpoint"`
	Deployment string `yaml:"deployment"`
	APIVersion string `yaml:"apiVersion"`
	APIKey     string `yaml:"-"`
	TimeoutMS  int    `yaml:"timeoutMs"`
}

// IsEnabled returns true if the completion API is configured
func (c *AIConfig) IsEnabled() bool {
	return c.APIKey != "" && c.Endpoint != ""
}

// ChatCompletionsURL returns the full endpoint for the configured deployment
func (c *AIConfig) ChatCompletionsURL() string {
	return fmt.Sprintf("%s/openai/deployments/%s/chat/completions?api-version=%s",
		c.Endpoint, c.Deployment, c.APIVersion)
}

// SpeechConfig points at a cognitive-services speech recognition endpoint
type SpeechConfig struct {
	Endpoint  string `yaml:"endpoint"`
	Language  string `yaml:"language"`
	Key       string `yaml:"-"`
	TimeoutMS int    `yaml:"timeoutMs"`
}

// IsEnabled returns true if the speech API is configured
func (c *SpeechConfig) IsEnabled() bool {
	return c.Key != "" && c.Endpoint != ""
}

// RecognizeURL returns the short-audio recognition endpoint
func (c *SpeechConfig) RecognizeURL() string {
	return fmt.Sprintf("%s/speech/recognition/conversation/cognitiveservices/v1?language=%s",
		c.Endpoint, c.Language)
}

// Defaults returns the default configuration
func Defaults() *Config {
	return &Config{
		Server: ServerConfig{Port: "8080"},
		Mongo: MongoConfig{
			URI:      "mongodb://localhost:27017",
			Database: "reverselearn",
		},
		Redis: RedisConfig{Addr: "localhost:6379"},
		Auth: AuthConfig{
			JWTSecret:     "super-secret-key-change-in-production",
			TokenTTLHours: 24,
		},
		AI: AIConfig{
			APIVersion: "2023-05-15",
			Deployment: "gpt-35-turbo",
			TimeoutMS:  10000,
		},
		Speech: SpeechConfig{
			Language:  "en-US",
			TimeoutMS: 30000,
		},
	}
}

// Load builds the config from defaults, the YAML file at path (if it exists)
// and environment overrides.
func Load(path string) (*Config, error) {
	cfg := Defaults()

	if path != "" {
		data, err := os.ReadFile(path)
		if err == nil {
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("parse %s: %w", path, err)
			}
		} else if !os.IsNotExist(err) {
			return nil, err
		}
	}

	applyEnv(cfg)

	if err := Validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func applyEnv(cfg *Config) {
	cfg.Server.Port = getEnv("PORT", cfg.Server.Port)
	cfg.Mongo.URI = getEnv("MONGO_URI", cfg.Mongo.URI)
	cfg.Mongo.Database = getEnv("MONGO_DATABASE", cfg.Mongo.Database)
	cfg.Redis.Addr = stripRedisScheme(getEnv("REDIS_ADDR", cfg.Redis.Addr))
	cfg.Auth.JWTSecret = getEnv("JWT_SECRET", cfg.Auth.JWTSecret)
	cfg.AI.Endpoint = getEnv("OPENAI_ENDPOINT", cfg.AI.Endpoint)
	cfg.AI.Deployment = getEnv("OPENAI_DEPLOYMENT", cfg.AI.Deployment)
	cfg.AI.APIKey = getEnv("OPENAI_API_KEY", cfg.AI.APIKey)
	cfg.Speech.Endpoint = getEnv("SPEECH_ENDPOINT", cfg.Speech.Endpoint)
	cfg.Speech.Key = getEnv("SPEECH_KEY", cfg.Speech.Key)
	cfg.Speech.Language = getEnv("SPEECH_LANGUAGE", cfg.Speech.Language)
}

// Validate checks value ranges before the server starts
func Validate(cfg *Config) error {
	port, err := strconv.Atoi(cfg.Server.Port)
	if err != nil || port < 1 || port > 65535 {
		return fmt.Errorf("server.port must be 1-65535, got %q", cfg.Server.Port)
	}
	if cfg.Mongo.URI == "" {
		return fmt.Errorf("mongo.uri must not be empty")
	}
	if cfg.Mongo.Database == "" {
		return fmt.Errorf("mongo.database must not be empty")
	}
	if cfg.Redis.Addr == "" {
		return fmt.Errorf("redis.addr must not be empty")
	}
	if cfg.Auth.TokenTTLHours < 1 {
		return fmt.Errorf("auth.tokenTtlHours must be >= 1, got %d", cfg.Auth.TokenTTLHours)
	}
	if cfg.AI.TimeoutMS < 1 {
		return fmt.Errorf("ai.timeoutMs must be >= 1, got %d", cfg.AI.TimeoutMS)
	}
	if cfg.Speech.TimeoutMS < 1 {
		return fmt.Errorf("speech.timeoutMs must be >= 1, got %d", cfg.Speech.TimeoutMS)
	}
	return nil
}

func getEnv(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

func stripRedisScheme(addr string) string {
	if len(addr) > 8 && addr[:8] == "redis://" {
		return addr[8:]
	}
	return addr
}
