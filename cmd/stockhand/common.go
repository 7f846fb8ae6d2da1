package main

import (
	"context"
	"database/sql"

	"stockhand/internal/catalog"
	"stockhand/internal/config"
	"stockhand/internal/executor"
	"stockhand/internal/gate"
	"stockhand/internal/interpret"
	"stockhand/internal/inventory"
	"stockhand/internal/llm"
	"stockhand/internal/session"
)

// deps holds everything a command needs to process utterances.
type deps struct {
	cfg     config.Config
	catalog *catalog.Catalog
	db      *sql.DB
	client  *llm.Client
	exec    *executor.Executor
}

func openDeps(ctx context.Context) (*deps, func(), error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, func() {}, err
	}

	db, err := inventory.Open(cfg.DB.Path)
	if err != nil {
		return nil, func() {}, err
	}
	closeFn := func() { _ = db.Close() }

	if cfg.DB.Seed {
		if err := inventory.Seed(ctx, db); err != nil {
			closeFn()
			return nil, func() {}, err
		}
	}

	client, err := llm.NewClient(llm.Config{
		Model:     cfg.LLM.Model,
		BaseURL:   cfg.LLM.BaseURL,
		APIKeyEnv: cfg.LLM.APIKeyEnv,
		Timeout:   cfg.LLMTimeout(),
	}, nil)
	if err != nil {
		closeFn()
		return nil, func() {}, err
	}

	cat := catalog.MustDefault()
	exec, err := executor.New(cat, inventory.NewSQLiteStore(db))
	if err != nil {
		closeFn()
		return nil, func() {}, err
	}

	return &deps{cfg: cfg, catalog: cat, db: db, client: client, exec: exec}, closeFn, nil
}

func (d *deps) newSession() *session.Session {
	opts := llm.Options{
		Temperature:     float32(d.cfg.LLM.Temperature),
		MaxOutputTokens: d.cfg.LLM.MaxOutputTokens,
	}
	return session.New(session.Params{
		Catalog:    d.catalog,
		Classifier: interpret.NewClassifier(d.client, d.catalog, opts),
		Extractor:  interpret.NewExtractor(d.client, opts),
		Executor:   d.exec,
		Thresholds: gate.Thresholds{
			Stage1: d.cfg.Gate.Stage1Threshold,
			Stage2: d.cfg.Gate.Stage2Threshold,
		},
		MaxExchanges:    d.cfg.Context.MaxExchanges,
		ClarifyMaxTurns: d.cfg.Clarify.MaxTurns,
		ClarifyMaxAge:   d.cfg.ClarifyMaxAge(),
	})
}
