// Package monolith provides the application container and module interface.
package monolith

import (
	"context"

	"github.com/fd1az/cryptoquery/internal/asset"
	"github.com/fd1az/cryptoquery/internal/config"
	"github.com/fd1az/cryptoquery/internal/di"
	"github.com/fd1az/cryptoquery/internal/logger"
)

// Registry keys for the shared infrastructure.
const (
	ConfigKey        = "config"
	LoggerKey        = "logger"
	AssetRegistryKey = "assetRegistry"
)

// Monolith is the main application container providing access to shared infrastructure.
type Monolith interface {
	Config() *config.Config
	Logger() logger.LoggerInterface
	AssetRegistry() *asset.Registry
	Services() di.ServiceRegistry
}

// Module represents a bounded context module that can register services and start up.
type Module interface {
	RegisterServices(di.Container) error
	Startup(context.Context, Monolith) error
}

// App implements Monolith.
type App struct {
	config        *config.Config
	logger        logger.LoggerInterface
	assetRegistry *asset.Registry
	container     di.Container
}

// New creates the container and registers the shared infrastructure.
func New(cfg *config.Config, log logger.LoggerInterface) *App {
	assetRegistry := asset.RegistryFor(cfg.Query.Universe)

	container := di.NewContainer()
	container.Register(ConfigKey, cfg)
	container.Register(LoggerKey, log)
	container.Register(AssetRegistryKey, assetRegistry)

	return &App{
		config:        cfg,
		logger:        log,
		assetRegistry: assetRegistry,
		container:     container,
	}
}

func (a *App) Config() *config.Config {
	return a.config
}

func (a *App) Logger() logger.LoggerInterface {
	return a.logger
}

func (a *App) AssetRegistry() *asset.Registry {
	return a.assetRegistry
}

func (a *App) Services() di.ServiceRegistry {
	return a.container
}

// Container returns the DI container for module registration.
func (a *App) Container() di.Container {
	return a.container
}

// RegisterModules registers all provided modules.
func (a *App) RegisterModules(modules ...Module) error {
	for _, m := range modules {
		if err := m.RegisterServices(a.container); err != nil {
			return err
		}
	}
	return nil
}

// StartModules starts all provided modules.
func (a *App) StartModules(ctx context.Context, modules ...Module) error {
	for _, m := range modules {
		if err := m.Startup(ctx, a); err != nil {
			return err
		}
	}
	return nil
}
