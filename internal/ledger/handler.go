package ledger

import (
	"errors"
	"net/http"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/switchbank/switch-ledger/internal/movement"
)

// Handler exposes the ledger over HTTP.
type Handler struct {
	service *Service
}

// NewHandler constructs a ledger handler.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// CreateAccount initializes a technical account for a bank.
func (h *Handler) CreateAccount(c *fiber.Ctx) error {
	var req CreateAccountRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}

	acc, err := h.service.CreateAccount(c.UserContext(), req.BIC)
	if err != nil {
		return HTTPError(err)
	}
	return c.Status(http.StatusCreated).JSON(toAccountResponse(acc))
}

// GetAccount returns the stored snapshot for a BIC.
func (h *Handler) GetAccount(c *fiber.Ctx) error {
	acc, err := h.service.GetAccount(c.UserContext(), c.Params("bic"))
	if err != nil {
		return HTTPError(err)
	}
	return c.JSON(toAccountResponse(acc))
}

// AccountMovements returns the journaled history for a BIC.
func (h *Handler) AccountMovements(c *fiber.Ctx) error {
	movs, err := h.service.MovementsByAccount(c.UserContext(), c.Params("bic"))
	if err != nil {
		return HTTPError(err)
	}
	return c.JSON(toMovementResponses(movs))
}

// RegisterMovement books a debit or credit.
func (h *Handler) RegisterMovement(c *fiber.Ctx) error {
	var req RegisterMovementRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}
	movType, err := movement.ParseType(req.Type)
	if err != nil {
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}

	acc, err := h.service.RegisterMovement(c.UserContext(), MovementInput{
		BIC:           req.BIC,
		InstructionID: req.InstructionID,
		Type:          movType,
		Amount:        req.Amount,
	})
	if err != nil {
		return HTTPError(err)
	}
	return c.Status(http.StatusCreated).JSON(toAccountResponse(acc))
}

// Reserve blocks funds as a pre-authorization hold.
func (h *Handler) Reserve(c *fiber.Ctx) error {
	var req ReserveRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}

	acc, err := h.service.ReserveFunds(c.UserContext(), req.BIC, req.InstructionID, req.Amount)
	if err != nil {
		return HTTPError(err)
	}
	return c.JSON(toAccountResponse(acc))
}

// Return reverses a previously booked movement.
func (h *Handler) Return(c *fiber.Ctx) error {
	var req ReturnRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}

	acc, err := h.service.ReverseMovement(c.UserContext(), ReversalInput{
		OriginalInstructionID: req.OriginalInstructionID,
		ReturnInstructionID:   req.ReturnInstructionID,
		Amount:                req.Amount,
	})
	if err != nil {
		return HTTPError(err)
	}
	return c.Status(http.StatusCreated).JSON(toAccountResponse(acc))
}

// Settle applies a settlement batch and reports per-position outcomes.
func (h *Handler) Settle(c *fiber.Ctx) error {
	var req SettlementRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}

	positions := make([]SettlementPosition, 0, len(req.Positions))
	for _, p := range req.Positions {
		positions = append(positions, SettlementPosition{
			BIC:          p.BIC,
			TotalDebits:  p.TotalDebits,
			TotalCredits: p.TotalCredits,
			NetPosition:  p.NetPosition,
		})
	}

	results, err := h.service.ApplySettlementBatch(c.UserContext(), SettlementBatch{CycleID: req.CycleID, Positions: positions})
	if err != nil {
		return HTTPError(err)
	}

	out := make([]SettlementPositionResponse, 0, len(results))
	for _, r := range results {
		resp := SettlementPositionResponse{BIC: r.BIC, Status: "applied"}
		if r.Err != nil {
			resp.Status = "failed"
			resp.Error = r.Err.Error()
		} else {
			acc := toAccountResponse(r.Account)
			resp.Account = &acc
		}
		out = append(out, resp)
	}
	return c.JSON(fiber.Map{"cycle_id": req.CycleID, "positions": out})
}

// MovementsRange lists movements in an inclusive timestamp range.
func (h *Handler) MovementsRange(c *fiber.Ctx) error {
	start, err := time.Parse(time.RFC3339, c.Query("start"))
	if err != nil {
		return fiber.NewError(http.StatusBadRequest, "start must be RFC3339")
	}
	end, err := time.Parse(time.RFC3339, c.Query("end"))
	if err != nil {
		return fiber.NewError(http.StatusBadRequest, "end must be RFC3339")
	}

	movs, err := h.service.MovementsByRange(c.UserContext(), start, end)
	if err != nil {
		return HTTPError(err)
	}
	return c.JSON(toMovementResponses(movs))
}

// HTTPError maps ledger taxonomy errors onto fiber errors. Integrity
// violations map to 409 with a terse body; the detailed alert is already
// logged at error level by the service.
func HTTPError(err error) error {
	switch {
	case errors.Is(err, ErrAccountNotFound), errors.Is(err, ErrMovementNotFound):
		return fiber.NewError(http.StatusNotFound, err.Error())
	case errors.Is(err, ErrAccountAlreadyExists), errors.Is(err, ErrDuplicateReversal):
		return fiber.NewError(http.StatusConflict, err.Error())
	case errors.Is(err, ErrIntegrityViolation):
		return fiber.NewError(http.StatusConflict, ErrIntegrityViolation.Error())
	case errors.Is(err, ErrInsufficientFunds),
		errors.Is(err, ErrAmountMismatch),
		errors.Is(err, ErrInvalidMovementType),
		errors.Is(err, ErrReversalWindowExpired),
		errors.Is(err, ErrInvalidRequest):
		return fiber.NewError(http.StatusBadRequest, err.Error())
	default:
		return fiber.NewError(http.StatusInternalServerError, err.Error())
	}
}
