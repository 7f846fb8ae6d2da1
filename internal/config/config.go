// Package config provides configuration loading and management for stockhand.
package config

import (
	"fmt"
	"time"
)

// Config is the root configuration.
type Config struct {
	LLM     LLMConfig     `json:"llm"               mapstructure:"llm"`
	Gate    GateConfig    `json:"gate,omitempty"    mapstructure:"gate"`
	Clarify ClarifyConfig `json:"clarify,omitempty" mapstructure:"clarify"`
	Context ContextConfig `json:"context,omitempty" mapstructure:"context"`
	DB      DBConfig      `json:"db,omitempty"      mapstructure:"db"`
	Serve   ServeConfig   `json:"serve,omitempty"   mapstructure:"serve"`
}

// LLMConfig describes the chat completion backend.
type LLMConfig struct {
	Model           string  `json:"model"                       mapstructure:"model"`
	BaseURL         string  `json:"base_url,omitempty"          mapstructure:"base_url"`
	APIKeyEnv       string  `json:"api_key_env,omitempty"       mapstructure:"api_key_env"`
	Timeout         int     `json:"timeout,omitempty"           mapstructure:"timeout"`
	Temperature     float64 `json:"temperature,omitempty"       mapstructure:"temperature"`
	MaxOutputTokens int     `json:"max_output_tokens,omitempty" mapstructure:"max_output_tokens"`
}

// GateConfig holds the confidence thresholds for the two
// interpretation stages.
type GateConfig struct {
	Stage1Threshold float64 `json:"stage1_threshold,omitempty" mapstructure:"stage1_threshold"`
	Stage2Threshold float64 `json:"stage2_threshold,omitempty" mapstructure:"stage2_threshold"`
}

// ClarifyConfig bounds how long a clarification dialogue may stay open.
type ClarifyConfig struct {
	MaxTurns   int `json:"max_turns,omitempty"    mapstructure:"max_turns"`
	MaxAgeSecs int `json:"max_age_secs,omitempty" mapstructure:"max_age_secs"`
}

// ContextConfig bounds the conversation history fed to the model.
type ContextConfig struct {
	MaxExchanges int `json:"max_exchanges,omitempty" mapstructure:"max_exchanges"`
}

// DBConfig locates the inventory database.
type DBConfig struct {
	Path string `json:"path,omitempty" mapstructure:"path"`
	Seed bool   `json:"seed,omitempty" mapstructure:"seed"`
}

// ServeConfig configures the HTTP API.
type ServeConfig struct {
	Addr string `json:"addr,omitempty" mapstructure:"addr"`
}

// Default returns the configuration used when no file overrides it.
func Default() Config {
	return Config{
		LLM: LLMConfig{
			Model:           "gpt-4o-mini",
			APIKeyEnv:       "OPENAI_API_KEY",
			Timeout:         15,
			Temperature:     0.1,
			MaxOutputTokens: 512,
		},
		Gate: GateConfig{
			Stage1Threshold: 0.7,
			Stage2Threshold: 0.7,
		},
		Clarify: ClarifyConfig{
			MaxTurns:   3,
			MaxAgeSecs: 300,
		},
		Context: ContextConfig{
			MaxExchanges: 5,
		},
		DB: DBConfig{
			Path: "stockhand.db",
			Seed: true,
		},
		Serve: ServeConfig{
			Addr: ":8080",
		},
	}
}

// Normalize fills zero values with defaults and rejects nonsense.
func (c *Config) Normalize() error {
	d := Default()
	if c.LLM.Model == "" {
		c.LLM.Model = d.LLM.Model
	}
	if c.LLM.APIKeyEnv == "" {
		c.LLM.APIKeyEnv = d.LLM.APIKeyEnv
	}
	if c.LLM.Timeout <= 0 {
		c.LLM.Timeout = d.LLM.Timeout
	}
	if c.LLM.Temperature <= 0 {
		c.LLM.Temperature = d.LLM.Temperature
	}
	if c.LLM.MaxOutputTokens <= 0 {
		c.LLM.MaxOutputTokens = d.LLM.MaxOutputTokens
	}
	if c.Gate.Stage1Threshold == 0 {
		c.Gate.Stage1Threshold = d.Gate.Stage1Threshold
	}
	if c.Gate.Stage2Threshold == 0 {
		c.Gate.Stage2Threshold = d.Gate.Stage2Threshold
	}
	if c.Gate.Stage1Threshold < 0 || c.Gate.Stage1Threshold > 1 {
		return fmt.Errorf("gate.stage1_threshold must be in [0,1], got %v", c.Gate.Stage1Threshold)
	}
	if c.Gate.Stage2Threshold < 0 || c.Gate.Stage2Threshold > 1 {
		return fmt.Errorf("gate.stage2_threshold must be in [0,1], got %v", c.Gate.Stage2Threshold)
	}
	if c.Clarify.MaxTurns <= 0 {
		c.Clarify.MaxTurns = d.Clarify.MaxTurns
	}
	if c.Clarify.MaxAgeSecs <= 0 {
		c.Clarify.MaxAgeSecs = d.Clarify.MaxAgeSecs
	}
	if c.Context.MaxExchanges <= 0 {
		c.Context.MaxExchanges = d.Context.MaxExchanges
	}
	if c.DB.Path == "" {
		c.DB.Path = d.DB.Path
	}
	if c.Serve.Addr == "" {
		c.Serve.Addr = d.Serve.Addr
	}
	return nil
}

// LLMTimeout returns the backend timeout as a duration.
func (c Config) LLMTimeout() time.Duration {
	return time.Duration(c.LLM.Timeout) * time.Second
}

// ClarifyMaxAge returns the dialogue age cutoff as a duration.
func (c Config) ClarifyMaxAge() time.Duration {
	return time.Duration(c.Clarify.MaxAgeSecs) * time.Second
}
