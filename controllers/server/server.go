package server

import (
	"context"

	"github.com/gofiber/fiber/v2"

	"pharma-supply/types"
	"pharma-supply/types/drug"
)

// HealthChecker reports ledger reachability.
type HealthChecker interface {
	Health(ctx context.Context) drug.HealthResponse
}

type ServerController struct {
	ledger HealthChecker
}

func NewServerController(ledger HealthChecker) *ServerController {
	return &ServerController{ledger: ledger}
}

func (h *ServerController) Root(c *fiber.Ctx) error {
	return c.JSON(types.MessageResponse{Message: "Pharma Supply Backend is running!"})
}

// Health always answers 200; connected tells whether the RPC endpoint responded.
func (h *ServerController) Health(c *fiber.Ctx) error {
	return c.JSON(h.ledger.Health(c.UserContext()))
}
