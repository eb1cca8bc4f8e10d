package ports

import (
	"github.com/spf13/pflag"
	"go.trai.ch/kiln/internal/core/domain"
)

// ConfigLoader resolves the project configuration.
//
//go:generate mockgen -source=config_loader.go -destination=mocks/mock_config_loader.go -package=mocks
type ConfigLoader interface {
	// Load layers defaults, the project config file, the environment and the
	// changed flags of flags (highest precedence) for the project at root.
	Load(root string, flags *pflag.FlagSet) (*domain.Config, error)
}
