package drug

import (
	"context"
	"strconv"

	"github.com/gofiber/fiber/v2"

	"pharma-supply/apperror"
	"pharma-supply/logger"
	"pharma-supply/middleware"
	drugTypes "pharma-supply/types/drug"
	"pharma-supply/utils"
)

// Ledger is the contract façade the drug routes need.
type Ledger interface {
	ListDrugs(ctx context.Context) ([]drugTypes.Drug, error)
	GetDrug(ctx context.Context, id int64) (*drugTypes.Drug, error)
	AddDrug(ctx context.Context, name, batch string) (*drugTypes.AddDrugResponse, error)
	TransferDrug(ctx context.Context, id int64, nextStage int, to string) (string, error)
}

type DrugController struct {
	ledger       Ledger
	exposeErrors bool
}

func NewDrugController(ledger Ledger, exposeErrors bool) *DrugController {
	return &DrugController{ledger: ledger, exposeErrors: exposeErrors}
}

func (h *DrugController) fail(c *fiber.Ctx, err error) error {
	return utils.SendError(c, err, h.exposeErrors)
}

// List returns every drug on the ledger.
func (h *DrugController) List(c *fiber.Ctx) error {
	drugs, err := h.ledger.ListDrugs(c.UserContext())
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(drugs)
}

// Get returns the drug named by the :id path parameter.
func (h *DrugController) Get(c *fiber.Ctx) error {
	id, err := strconv.ParseInt(c.Params("id"), 10, 64)
	if err != nil {
		return h.fail(c, apperror.Validation("id must be an integer"))
	}

	d, err := h.ledger.GetDrug(c.UserContext(), id)
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(d)
}

// Add registers a drug and waits for the transaction to be mined.
func (h *DrugController) Add(c *fiber.Ctx) error {
	var req drugTypes.AddDrugRequest
	if err := c.BodyParser(&req); err != nil {
		logger.Error("Error parsing request body", err)
		return h.fail(c, apperror.Validation("%v", err))
	}
	if err := req.Validate(); err != nil {
		return h.fail(c, apperror.Validation("%v", err))
	}

	resp, err := h.ledger.AddDrug(c.UserContext(), req.Name, req.Batch)
	if err != nil {
		return h.fail(c, err)
	}

	if u := middleware.CurrentUser(c); u != nil {
		logger.Success("Drug " + req.Name + " added by " + u.Phone + " in tx " + resp.Tx)
	}
	return c.JSON(resp)
}

// Transfer moves a drug to its next stage and owner.
func (h *DrugController) Transfer(c *fiber.Ctx) error {
	var req drugTypes.TransferDrugRequest
	if err := c.BodyParser(&req); err != nil {
		logger.Error("Error parsing request body", err)
		return h.fail(c, apperror.Validation("%v", err))
	}
	if err := req.Validate(); err != nil {
		return h.fail(c, apperror.Validation("%v", err))
	}

	to := ""
	if req.ToAddress != nil {
		to = *req.ToAddress
	}
	tx, err := h.ledger.TransferDrug(c.UserContext(), *req.ID, *req.NextStage, to)
	if err != nil {
		return h.fail(c, err)
	}

	logger.Success("Drug " + strconv.FormatInt(*req.ID, 10) + " transferred in tx " + tx)
	return c.JSON(drugTypes.TransferDrugResponse{Tx: tx})
}
