package transaction

import (
	"strconv"

	"github.com/gofiber/fiber/v2"

	"pharma-supply/apperror"
	"pharma-supply/logger"
	txService "pharma-supply/services/transaction"
	txTypes "pharma-supply/types/transaction"
	"pharma-supply/utils"
)

type TransactionController struct {
	recorder     *txService.Recorder
	exposeErrors bool
}

func NewTransactionController(recorder *txService.Recorder, exposeErrors bool) *TransactionController {
	return &TransactionController{recorder: recorder, exposeErrors: exposeErrors}
}

// Purchase stores a free-form purchase payload.
func (h *TransactionController) Purchase(c *fiber.Ctx) error {
	var payload map[string]interface{}
	if err := c.BodyParser(&payload); err != nil {
		logger.Error("Error parsing purchase body", err)
		return utils.SendError(c, apperror.Validation("Invalid purchase payload: %v", err), h.exposeErrors)
	}

	id, err := h.recorder.RecordPurchase(c.UserContext(), payload)
	if err != nil {
		return utils.SendError(c, err, h.exposeErrors)
	}
	return c.JSON(txTypes.PurchaseResponse{Message: "Purchase recorded successfully", ID: id})
}

// Revenue sums purchases of the month given by the month and year query parameters.
func (h *TransactionController) Revenue(c *fiber.Ctx) error {
	month, err := queryInt(c, "month")
	if err != nil {
		return utils.SendError(c, err, h.exposeErrors)
	}
	year, err := queryInt(c, "year")
	if err != nil {
		return utils.SendError(c, err, h.exposeErrors)
	}

	resp, err := h.recorder.GetRevenue(c.UserContext(), month, year)
	if err != nil {
		return utils.SendError(c, err, h.exposeErrors)
	}
	return c.JSON(resp)
}

// List returns the newest purchases.
func (h *TransactionController) List(c *fiber.Ctx) error {
	return c.JSON(h.recorder.ListTransactions(c.UserContext()))
}

// UserStats returns per-customer purchase totals.
func (h *TransactionController) UserStats(c *fiber.Ctx) error {
	resp, err := h.recorder.UserStats(c.UserContext())
	if err != nil {
		return utils.SendError(c, err, h.exposeErrors)
	}
	return c.JSON(resp)
}

func queryInt(c *fiber.Ctx, key string) (int, error) {
	raw := c.Query(key)
	if raw == "" {
		return 0, apperror.Validation("%s is required", key)
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, apperror.Validation("%s must be an integer", key)
	}
	return n, nil
}
