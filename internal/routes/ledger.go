package routes

import (
	"github.com/gofiber/fiber/v2"

	"github.com/switchbank/switch-ledger/internal/ledger"
)

// RegisterLedgerRoutes wires the ledger endpoints.
func RegisterLedgerRoutes(r fiber.Router, h *ledger.Handler) {
	r.Post("/ledger/accounts", h.CreateAccount)
	r.Get("/ledger/accounts/:bic", h.GetAccount)
	r.Get("/ledger/accounts/:bic/movements", h.AccountMovements)
	r.Post("/ledger/movements", h.RegisterMovement)
	r.Get("/ledger/movements/range", h.MovementsRange)
	r.Post("/ledger/reserve", h.Reserve)
	r.Post("/ledger/settlements", h.Settle)
	r.Post("/ledger/returns", h.Return)
}
