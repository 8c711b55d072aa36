package funding

import (
	"net/http"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"

	"github.com/switchbank/switch-ledger/internal/ledger"
)

// Handler exposes HTTP endpoints for liquidity operations.
type Handler struct {
	service *Service
}

// NewHandler constructs a funding handler.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// Recharge processes a liquidity injection.
func (h *Handler) Recharge(c *fiber.Ctx) error {
	var req RechargeRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}

	acc, err := h.service.Recharge(c.UserContext(), RechargeInput{
		BIC:           req.BIC,
		InstructionID: req.InstructionID,
		Amount:        req.Amount,
	})
	if err != nil {
		return ledger.HTTPError(err)
	}
	return c.JSON(fiber.Map{
		"bic":               acc.BIC,
		"available_balance": acc.Available.StringFixed(2),
		"blocked_funds":     acc.Blocked.StringFixed(2),
	})
}

// Available runs the boolean sufficient-funds check.
func (h *Handler) Available(c *fiber.Ctx) error {
	amount, err := decimal.NewFromString(c.Params("amount"))
	if err != nil {
		return fiber.NewError(http.StatusBadRequest, "amount must be a decimal")
	}
	bic := c.Params("bic")

	ok, err := h.service.Available(c.UserContext(), bic, amount)
	if err != nil {
		return ledger.HTTPError(err)
	}
	return c.JSON(AvailabilityResponse{BIC: bic, Available: ok, RequiredAmount: amount.StringFixed(2)})
}
