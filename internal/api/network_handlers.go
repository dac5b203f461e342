package api

import (
	"github.com/gofiber/fiber/v2"

	"github.com/MiguelIbrahimE/TrainBuilder/internal/apperr"
	"github.com/MiguelIbrahimE/TrainBuilder/internal/models"
	"github.com/MiguelIbrahimE/TrainBuilder/internal/network"
)

// NetworkHandlers wraps the network service with the HTTP contract. Every
// mutation persists synchronously before the response is written.
type NetworkHandlers struct {
	svc *network.Service
}

// NewNetworkHandlers builds the handler set
func NewNetworkHandlers(svc *network.Service) *NetworkHandlers {
	return &NetworkHandlers{svc: svc}
}

// InitRequest is the payload for POST /network/init
type InitRequest struct {
	Name     string `json:"name"`
	RegionID string `json:"regionId"`
}

// InitResponse returns the fresh network and echoes the region
type InitResponse struct {
	Network  *models.Network `json:"network"`
	RegionID string          `json:"regionId"`
}

// Init handles POST /network/init
func (h *NetworkHandlers) Init(c *fiber.Ctx) error {
	var req InitRequest
	if err := c.BodyParser(&req); err != nil {
		return apperr.Validationf("invalid request body: %v", err)
	}

	net, err := h.svc.Create(c.Context(), req.Name, req.RegionID)
	if err != nil {
		return err
	}

	return c.Status(fiber.StatusCreated).JSON(InitResponse{
		Network:  net,
		RegionID: req.RegionID,
	})
}

// Get handles GET /network/:id
func (h *NetworkHandlers) Get(c *fiber.Ctx) error {
	net, err := h.svc.Get(c.Context(), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(net)
}

// StationResponse returns the created station and the remaining budget
type StationResponse struct {
	Station *models.Station `json:"station"`
	Budget  int64           `json:"budget"`
}

// AddStation handles POST /network/:id/stations
func (h *NetworkHandlers) AddStation(c *fiber.Ctx) error {
	var req network.AddStationRequest
	if err := c.BodyParser(&req); err != nil {
		return apperr.Validationf("invalid request body: %v", err)
	}

	station, budget, err := h.svc.AddStation(c.Context(), c.Params("id"), req)
	if err != nil {
		return err
	}

	return c.Status(fiber.StatusCreated).JSON(StationResponse{Station: station, Budget: budget})
}

// TrackResponse returns the created track and the remaining budget
type TrackResponse struct {
	Track  *models.Track `json:"track"`
	Budget int64         `json:"budget"`
}

// AddTrack handles POST /network/:id/tracks
func (h *NetworkHandlers) AddTrack(c *fiber.Ctx) error {
	var req network.AddTrackRequest
	if err := c.BodyParser(&req); err != nil {
		return apperr.Validationf("invalid request body: %v", err)
	}

	track, budget, err := h.svc.AddTrack(c.Context(), c.Params("id"), req)
	if err != nil {
		return err
	}

	return c.Status(fiber.StatusCreated).JSON(TrackResponse{Track: track, Budget: budget})
}

// CrossoverResponse returns the created crossover and the remaining budget
type CrossoverResponse struct {
	Crossover *models.Crossover `json:"crossover"`
	Budget    int64             `json:"budget"`
}

// AddCrossover handles POST /network/:id/crossovers
func (h *NetworkHandlers) AddCrossover(c *fiber.Ctx) error {
	var req network.AddCrossoverRequest
	if err := c.BodyParser(&req); err != nil {
		return apperr.Validationf("invalid request body: %v", err)
	}

	crossover, budget, err := h.svc.AddCrossover(c.Context(), c.Params("id"), req)
	if err != nil {
		return err
	}

	return c.Status(fiber.StatusCreated).JSON(CrossoverResponse{Crossover: crossover, Budget: budget})
}

// RemoveResponse returns the refund credited by a demolition
type RemoveResponse struct {
	Budget int64 `json:"budget"`
	Refund int64 `json:"refund"`
}

// RemoveStation handles DELETE /network/:id/stations/:stationId
func (h *NetworkHandlers) RemoveStation(c *fiber.Ctx) error {
	budget, refund, err := h.svc.RemoveStation(c.Context(), c.Params("id"), c.Params("stationId"))
	if err != nil {
		return err
	}
	return c.JSON(RemoveResponse{Budget: budget, Refund: refund})
}

// RemoveTrack handles DELETE /network/:id/tracks/:trackId
func (h *NetworkHandlers) RemoveTrack(c *fiber.Ctx) error {
	budget, refund, err := h.svc.RemoveTrack(c.Context(), c.Params("id"), c.Params("trackId"))
	if err != nil {
		return err
	}
	return c.JSON(RemoveResponse{Budget: budget, Refund: refund})
}

// RemoveCrossover handles DELETE /network/:id/crossovers/:crossoverId
func (h *NetworkHandlers) RemoveCrossover(c *fiber.Ctx) error {
	budget, refund, err := h.svc.RemoveCrossover(c.Context(), c.Params("id"), c.Params("crossoverId"))
	if err != nil {
		return err
	}
	return c.JSON(RemoveResponse{Budget: budget, Refund: refund})
}

// Stats handles GET /network/:id/stats
func (h *NetworkHandlers) Stats(c *fiber.Ctx) error {
	stats, err := h.svc.GetStats(c.Context(), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(stats)
}
