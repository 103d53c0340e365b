package runs

import (
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// Feature implements the loader.Feature interface.
type Feature struct {
	coordinator *Coordinator
	handler     *Handler
}

// NewFeature creates the runs feature around an already wired coordinator.
func NewFeature(coordinator *Coordinator, store Store, log *zap.Logger) *Feature {
	return &Feature{
		coordinator: coordinator,
		handler:     NewHandler(coordinator, store, log),
	}
}

// Name returns the name of the feature.
func (f *Feature) Name() string {
	return "runs"
}

// IsEnabled checks if the feature is enabled.
func (f *Feature) IsEnabled() bool {
	return true
}

// Load registers the feature's routes.
func (f *Feature) Load(app fiber.Router) error {
	f.handler.RegisterRoutes(app)
	return nil
}
