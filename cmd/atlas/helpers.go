package main

import (
	"context"
	"fmt"

	"github.com/spf13/viper"

	"github.com/Veraticus/receipt-atlas/internal/common"
	"github.com/Veraticus/receipt-atlas/internal/config"
	"github.com/Veraticus/receipt-atlas/internal/engine"
	"github.com/Veraticus/receipt-atlas/internal/storage"
)

// initStorage opens the configured database and brings its schema up to date.
func initStorage(ctx context.Context) (*storage.SQLiteStorage, error) {
	dbPath := config.DatabasePath(viper.GetViper())

	store, err := storage.NewSQLiteStorage(dbPath)
	if err != nil {
		return nil, common.NewUserError("could not open database "+dbPath, err)
	}

	if err := store.Migrate(ctx); err != nil {
		_ = store.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return store, nil
}

// initEngine builds a location engine over store using the configured
// inference parameters.
func initEngine(store *storage.SQLiteStorage) (*engine.LocationEngine, error) {
	params, err := config.InferenceParams(viper.GetViper())
	if err != nil {
		return nil, common.NewUserError("invalid inference settings", err)
	}
	return engine.New(store, store, params)
}
