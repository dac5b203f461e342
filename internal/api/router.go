package api

import "github.com/gofiber/fiber/v2"

// RegisterRoutes attaches the computation and network endpoints
func RegisterRoutes(app *fiber.App, h *NetworkHandlers) {
	compute := app.Group("/api/compute")
	compute.Post("/distance", ComputeDistance)
	compute.Post("/route-length", ComputeRouteLength)
	compute.Post("/station-cost", ComputeStationCost)
	compute.Post("/track-cost", ComputeTrackCost)
	compute.Post("/crossover-cost", ComputeCrossoverCost)
	compute.Post("/terrain-modifier", ComputeTerrainModifier)
	compute.Post("/network-stats", ComputeNetworkStats)

	network := app.Group("/network")
	network.Post("/init", h.Init)
	network.Get("/:id", h.Get)
	network.Get("/:id/stats", h.Stats)
	network.Post("/:id/stations", h.AddStation)
	network.Post("/:id/tracks", h.AddTrack)
	network.Post("/:id/crossovers", h.AddCrossover)
	network.Delete("/:id/stations/:stationId", h.RemoveStation)
	network.Delete("/:id/tracks/:trackId", h.RemoveTrack)
	network.Delete("/:id/crossovers/:crossoverId", h.RemoveCrossover)
}
