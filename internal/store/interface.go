package store

import (
	"context"
	"os"
	"path/filepath"

	"github.com/ambry-data/ambryctl/internal/models"
)

// DefaultPath returns the default history store location
func DefaultPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".ambry/ambryctl.db"
	}
	return filepath.Join(home, ".ambry", "ambryctl.db")
}

// Config holds history store configuration
type Config struct {
	Path string // sqlite database file path
}

// Store defines the interface for the provisioning run history store
type Store interface {
	Connect(ctx context.Context) error
	Disconnect(ctx context.Context) error
	Ping(ctx context.Context) error

	SaveRun(ctx context.Context, run *models.Run) error
	GetRun(ctx context.Context, id string) (*models.Run, error)
	ListRuns(ctx context.Context, limit int) ([]*models.Run, error)
}
