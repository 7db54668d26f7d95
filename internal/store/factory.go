package store

import (
	"fmt"

	"go-fracture-classifier/internal/config"
)

// NewModelStore selects the artifact backend from configuration.
func NewModelStore(cfg *config.Config) (ModelStore, error) {
	switch cfg.StorageBackend {
	case "local":
		return NewFileModelStore(cfg.ModelDir), nil
	case "azure":
		return NewAzureModelStore(cfg.AzureAccount, cfg.AzureKey, cfg.AzureContainer)
	default:
		return nil, fmt.Errorf("unsupported storage backend: %s", cfg.StorageBackend)
	}
}
