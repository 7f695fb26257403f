package routes

import (
	"context"

	"github.com/danielgtaylor/huma/v2"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	appmiddleware "github.com/janisto/huma-items-filter/internal/middleware"
)

// Register wires all huma operations into the provided API.
func Register(api huma.API) {
	registerHealth(api)
	registerItems(api)
}

// Mount adds the plain chi routes that sit outside the huma API.
func Mount(router chi.Router) {
	router.Get(itemsRedirectPath, redirectItems)
}

// HealthData models the success payload for the health route.
type HealthData struct {
	Message string `json:"message" doc:"Health status message" example:"healthy"`
}

// HealthOutput is the response wrapper for the health endpoint.
type HealthOutput struct {
	Body HealthData
}

func registerHealth(api huma.API) {
	huma.Get(api, "/health", func(ctx context.Context, _ *struct{}) (*HealthOutput, error) {
		appmiddleware.LogInfo(ctx, "health check", zap.String("path", "/health"))
		return &HealthOutput{Body: HealthData{Message: "healthy"}}, nil
	}, func(op *huma.Operation) {
		op.Tags = []string{"Health"}
	})
}
