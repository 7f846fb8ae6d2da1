package config

import "testing"

func TestNormalize_FillsDefaults(t *testing.T) {
	t.Parallel()

	cfg := Config{}
	if err := cfg.Normalize(); err != nil {
		t.Fatalf("Normalize returned error: %v", err)
	}
	if cfg.LLM.Model == "" {
		t.Fatal("llm.model not defaulted")
	}
	if cfg.Gate.Stage1Threshold != 0.7 || cfg.Gate.Stage2Threshold != 0.7 {
		t.Fatalf("gate thresholds = %v/%v, want 0.7/0.7", cfg.Gate.Stage1Threshold, cfg.Gate.Stage2Threshold)
	}
	if cfg.Clarify.MaxTurns != 3 {
		t.Fatalf("clarify.max_turns = %d, want 3", cfg.Clarify.MaxTurns)
	}
	if cfg.DB.Path == "" {
		t.Fatal("db.path not defaulted")
	}
}

func TestNormalize_KeepsExplicitValues(t *testing.T) {
	t.Parallel()

	cfg := Config{
		LLM:  LLMConfig{Model: "gpt-4o", Timeout: 30},
		Gate: GateConfig{Stage1Threshold: 0.9, Stage2Threshold: 0.5},
	}
	if err := cfg.Normalize(); err != nil {
		t.Fatalf("Normalize returned error: %v", err)
	}
	if cfg.LLM.Model != "gpt-4o" || cfg.LLM.Timeout != 30 {
		t.Fatalf("llm = %+v, want explicit values kept", cfg.LLM)
	}
	if cfg.Gate.Stage1Threshold != 0.9 || cfg.Gate.Stage2Threshold != 0.5 {
		t.Fatalf("gate = %+v, want explicit values kept", cfg.Gate)
	}
}

func TestNormalize_RejectsOutOfRangeThreshold(t *testing.T) {
	t.Parallel()

	cfg := Config{Gate: GateConfig{Stage1Threshold: 1.5}}
	if err := cfg.Normalize(); err == nil {
		t.Fatal("Normalize returned nil error, want error")
	}
}

func TestValidateSettings_AcceptsFullConfig(t *testing.T) {
	t.Parallel()

	settings := map[string]any{
		"llm": map[string]any{
			"model":       "gpt-4o-mini",
			"api_key_env": "OPENAI_API_KEY",
			"timeout":     20,
		},
		"gate": map[string]any{
			"stage1_threshold": 0.8,
			"stage2_threshold": 0.75,
		},
		"clarify": map[string]any{
			"max_turns":    3,
			"max_age_secs": 300,
		},
		"db": map[string]any{
			"path": "inventory.db",
			"seed": true,
		},
	}

	if err := ValidateSettings(settings); err != nil {
		t.Fatalf("ValidateSettings returned error: %v", err)
	}
}

func TestValidateSettings_RejectsUnknownKey(t *testing.T) {
	t.Parallel()

	settings := map[string]any{
		"llm":     map[string]any{"model": "gpt-4o-mini"},
		"budgets": map[string]any{"max_iterations": 5},
	}

	if err := ValidateSettings(settings); err == nil {
		t.Fatal("ValidateSettings returned nil error, want error")
	}
}

func TestValidateSettings_RejectsBadThresholdType(t *testing.T) {
	t.Parallel()

	settings := map[string]any{
		"gate": map[string]any{"stage1_threshold": "high"},
	}

	if err := ValidateSettings(settings); err == nil {
		t.Fatal("ValidateSettings returned nil error, want error")
	}
}
