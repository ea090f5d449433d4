package httpapi

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/jubaworks/juba/internal/engine"
	"github.com/jubaworks/juba/internal/payments"
)

type PaymentRequest struct {
	Method string `json:"payment_method"`
}

// ProcessPayment charges the job's pending transaction through the payment
// collaborator and, on success, marks the ledger entry completed. A failed
// charge leaves the transaction pending so the client can retry.
func (h *Handler) ProcessPayment(c echo.Context) error {
	req := new(PaymentRequest)
	if err := c.Bind(req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request"})
	}
	if req.Method == "" {
		req.Method = "card"
	}

	ctx := c.Request().Context()
	jobID := c.Param("id")

	job, err := h.Jobs.GetByID(ctx, jobID)
	if err != nil {
		return writeError(c, err)
	}
	actorID, _ := c.Get("user_id").(string)
	if job.ClientID != actorID {
		return writeError(c, &engine.NotOwnerError{JobID: jobID, ActorID: actorID})
	}

	tr, err := h.Ledger.GetByJob(ctx, jobID)
	if err != nil {
		return writeError(c, err)
	}

	result, err := h.Payments.Charge(ctx, payments.ChargeRequest{
		JobID:        tr.JobID,
		ClientID:     tr.ClientID,
		FreelancerID: tr.FreelancerID,
		Amount:       tr.Amount,
		Method:       req.Method,
	})
	if err != nil {
		h.Log.Warn().Err(err).Str("job_id", jobID).Msg("payment charge failed")
		return writeError(c, &engine.PaymentFailedError{JobID: jobID, Err: err})
	}

	tr, err = h.Ledger.MarkCompleted(ctx, jobID, result.Reference)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, tr)
}
