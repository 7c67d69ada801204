package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"github.com/pelletier/go-toml/v2"

	apperrors "github.com/agenthands/distill/internal/errors"
)

const DefaultPath = "config/config.toml"

// ExtractionPrompts drive the knowledge extractor. User is a format string
// with one %s for the conversation text.
type ExtractionPrompts struct {
	System    string `toml:"system"`
	User      string `toml:"user"`
	MaxTokens int    `toml:"max_tokens"`
}

// QueryPrompts drive the answering call. User takes the question and the
// serialized retrieval package, in that order.
type QueryPrompts struct {
	System    string `toml:"system"`
	User      string `toml:"user"`
	MaxTokens int    `toml:"max_tokens"`
	// Matcher picks how concept names are found in a question:
	// "substring" (default), "word" or "stem".
	Matcher string `toml:"matcher"`
}

type ConversationPrompts struct {
	Interviewer string `toml:"interviewer"`
	AutoReply   string `toml:"auto_reply"`
	// AutoReplyUser takes the assistant's last message.
	AutoReplyUser string `toml:"auto_reply_user"`
	MaxTokens     int    `toml:"max_tokens"`
}

type LLMConfig struct {
	Provider string `toml:"provider"`
	Model    string `toml:"model"`
	APIKey   string `toml:"api_key"`
	BaseURL  string `toml:"base_url"`
}

type StoreConfig struct {
	// Backend is one of memory, file, sqlite, postgres, memgraph.
	Backend string `toml:"backend"`
	// Path is the JSON document (file) or database file (sqlite).
	Path string `toml:"path"`
	// DSN is the postgres connection string.
	DSN string `toml:"dsn"`
	// KnowledgeBase names the knowledge base inside shared backends.
	KnowledgeBase string `toml:"knowledge_base"`
}

type MemgraphConfig struct {
	URI      string `toml:"uri"`
	User     string `toml:"user"`
	Password string `toml:"password"`
}

type AudioConfig struct {
	TranscriptionModel string `toml:"transcription_model"`
	SpeechModel        string `toml:"speech_model"`
	Voice              string `toml:"voice"`
	Dir                string `toml:"dir"`
}

type ConcurrencyConfig struct {
	BulkIngest int `toml:"bulk_ingest"`
}

type ServerConfig struct {
	Port string `toml:"port"`
	Env  string `toml:"env"`
}

type Config struct {
	LLM          LLMConfig           `toml:"llm"`
	Store        StoreConfig         `toml:"store"`
	Memgraph     MemgraphConfig      `toml:"memgraph"`
	Audio        AudioConfig         `toml:"audio"`
	Extraction   ExtractionPrompts   `toml:"extraction"`
	Query        QueryPrompts        `toml:"query"`
	Conversation ConversationPrompts `toml:"conversation"`
	Concurrency  ConcurrencyConfig   `toml:"concurrency"`
	Server       ServerConfig        `toml:"server"`
}

// Load reads a TOML file on top of Default, so a file only needs the keys
// it wants to change.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file '%s': %w", path, err)
	}

	cfg := Default()
	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse TOML: %w", err)
	}

	return cfg, nil
}

// LoadFromEnvironment is the startup path: .env, then the TOML file named
// by path or CONFIG_PATH (defaults if it does not exist), then env
// overrides.
func LoadFromEnvironment(path string) (*Config, error) {
	_ = godotenv.Load()

	if path == "" {
		path = os.Getenv("CONFIG_PATH")
	}
	if path == "" {
		path = DefaultPath
	}

	cfg, err := Load(path)
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			return nil, err
		}
		cfg = Default()
	}

	cfg.ApplyEnv()
	return cfg, nil
}

// ApplyEnv overrides file values with environment variables when set.
func (c *Config) ApplyEnv() {
	setString(&c.LLM.Provider, "LLM_PROVIDER")
	setString(&c.LLM.Model, "LLM_MODEL")
	setString(&c.LLM.BaseURL, "LLM_BASE_URL")
	// OPENAI_API_KEY is what the audio endpoints and most users already have.
	if c.LLM.APIKey == "" {
		setString(&c.LLM.APIKey, "OPENAI_API_KEY")
	}
	setString(&c.LLM.APIKey, "LLM_API_KEY")

	setString(&c.Store.Backend, "STORE_BACKEND")
	setString(&c.Store.Path, "STORE_PATH")
	setString(&c.Store.DSN, "STORE_DSN")
	setString(&c.Store.KnowledgeBase, "STORE_KNOWLEDGE_BASE")

	setString(&c.Memgraph.URI, "MEMGRAPH_URI")
	setString(&c.Memgraph.User, "MEMGRAPH_USER")
	setString(&c.Memgraph.Password, "MEMGRAPH_PASSWORD")

	setString(&c.Audio.Dir, "AUDIO_DIR")

	setString(&c.Server.Port, "PORT")
	setString(&c.Server.Env, "ENV")

	if v := os.Getenv("BULK_INGEST_CONCURRENCY"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			c.Concurrency.BulkIngest = n
		}
	}
}

func setString(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

var knownBackends = map[string]bool{
	"memory":   true,
	"file":     true,
	"sqlite":   true,
	"postgres": true,
	"memgraph": true,
}

// Validate checks the settings the store needs. A missing model credential
// is reported separately by ValidateLLM because it must not stop the store
// from being browsed.
func (c *Config) Validate() error {
	backend := strings.ToLower(c.Store.Backend)
	if !knownBackends[backend] {
		return apperrors.NewBaseError(apperrors.ErrorTypeConfig, fmt.Sprintf("unknown store backend: %s", c.Store.Backend), nil)
	}
	switch backend {
	case "file", "sqlite":
		if c.Store.Path == "" {
			return apperrors.NewConfigMissingRequired("store.path")
		}
	case "postgres":
		if c.Store.DSN == "" {
			return apperrors.NewConfigMissingRequired("store.dsn")
		}
	case "memgraph":
		if c.Memgraph.URI == "" {
			return apperrors.NewConfigMissingRequired("memgraph.uri")
		}
	}
	return nil
}

// ValidateLLM reports a missing credential. Ollama runs locally and needs
// none.
func (c *Config) ValidateLLM() error {
	if c.LLM.Provider == "" {
		return apperrors.NewConfigMissingRequired("llm.provider")
	}
	if strings.ToLower(c.LLM.Provider) != "ollama" && c.LLM.APIKey == "" {
		return apperrors.NewConfigMissingRequired("llm.api_key")
	}
	return nil
}

func (c *Config) IsProduction() bool {
	return c.Server.Env == "production"
}
