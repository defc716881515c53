package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/nbryan/concierge/internal/bridge"
	"github.com/nbryan/concierge/internal/classifier"
	"github.com/nbryan/concierge/internal/config"
	"github.com/nbryan/concierge/internal/conversation"
	"github.com/nbryan/concierge/internal/db"
	"github.com/nbryan/concierge/internal/executor"
	"github.com/nbryan/concierge/internal/feedback"
	"github.com/nbryan/concierge/internal/resolver"
	"github.com/nbryan/concierge/internal/store"
	syncer "github.com/nbryan/concierge/internal/sync"
	"github.com/nbryan/concierge/internal/transcript"
)

// app bundles the wired-up interpreter for the CLI entry points.
type app struct {
	cfg     *config.Config
	db      *db.DB
	store   *store.SQLStore
	manager *conversation.Manager
	bridge  *bridge.Bridge
}

// buildApp assembles the full pipeline from configuration and
// rehydrates the session transcript.
func buildApp(cfg *config.Config) (*app, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	apiKey := config.APIKey()
	if apiKey == "" {
		return nil, fmt.Errorf("no API key: set CONCIERGE_API_KEY or OPENAI_API_KEY")
	}

	database, err := db.Open(cfg.DBPath)
	if err != nil {
		return nil, err
	}

	dataStore := store.NewSQLStore(database)
	buffer := transcript.NewBuffer(cfg.SessionID, transcript.NewSQLPersister(database))
	if err := buffer.Rehydrate(context.Background()); err != nil {
		database.Close()
		return nil, fmt.Errorf("rehydrating session: %w", err)
	}

	port := bridge.NewPort()
	exec := executor.New(executor.Config{
		Store:      dataStore,
		Resolver:   resolver.New(dataStore),
		Remote:     syncer.New(cfg.RemoteSyncURL),
		Port:       port,
		SpeechHost: cfg.SpeechHost,
	})

	manager := conversation.New(conversation.Config{
		Buffer:     buffer,
		Classifier: classifier.NewOpenAIClassifier(apiKey, cfg.BaseURL, cfg.Model),
		Executor:   exec,
		Recorder:   feedback.NewRecorder(feedback.NewStore(database)),
		Store:      dataStore,
		Port:       port,
		SpeechHost: cfg.SpeechHost,
		PendingTTL: time.Duration(cfg.PendingTTLSeconds) * time.Second,
	})

	return &app{
		cfg:     cfg,
		db:      database,
		store:   dataStore,
		manager: manager,
		bridge:  bridge.New(port, manager),
	}, nil
}

func (a *app) Close() {
	a.db.Close()
}

func loadConfig() (*config.Config, error) {
	return config.Load(cfgFile)
}
