package routes

import (
	"github.com/gofiber/fiber/v2"

	"github.com/switchbank/switch-ledger/internal/funding"
)

// RegisterFundingRoutes wires liquidity endpoints.
func RegisterFundingRoutes(r fiber.Router, h *funding.Handler) {
	r.Post("/funding/recharge", h.Recharge)
	r.Get("/funding/available/:bic/:amount", h.Available)
}
