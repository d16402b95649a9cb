package http

import (
	"github.com/gofiber/fiber/v2"
)

// NewRouter wires the API routes and the subdomain proxy into a fiber app.
func NewRouter(h *Handler, proxy *ProxyHandler) *fiber.App {
	app := fiber.New(fiber.Config{DisableStartupMessage: true})

	// The proxy runs first: subdomain requests never reach the API.
	app.Use(proxy.ProxyRequest)

	app.Get("/healthz", h.Health)

	api := app.Group("/api")
	v1 := api.Group("/v1")

	builds := v1.Group("/builds")
	builds.Post("/", h.Build)
	builds.Get("/", h.BuildHistory)

	v1.Post("/deployments", h.Deploy)

	containers := v1.Group("/containers")
	containers.Get("/", h.ListContainers)
	containers.Delete("/:id", h.StopContainer)
	containers.Get("/:id/logs", h.GetContainerLogs)

	return app
}
