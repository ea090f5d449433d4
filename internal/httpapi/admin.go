package httpapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

// GET /admin/transactions
func (h *Handler) AdminTransactions(c echo.Context) error {
	txs, err := h.Ledger.List(c.Request().Context())
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"transactions": txs})
}

// POST /admin/jobs/:id/refund
func (h *Handler) AdminRefund(c echo.Context) error {
	if err := h.Ledger.MarkRefunded(c.Request().Context(), c.Param("id")); err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "payment refunded"})
}

// POST /admin/jobs/:id/dispute
func (h *Handler) AdminDispute(c echo.Context) error {
	if err := h.Ledger.MarkDisputed(c.Request().Context(), c.Param("id")); err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "payment disputed"})
}

// POST /admin/jobs/:id/cancel is the admin override: it may cancel an
// in_progress job, which clients cannot.
func (h *Handler) AdminCancelJob(c echo.Context) error {
	if err := h.Jobs.CancelInProgress(c.Request().Context(), c.Param("id")); err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "job cancelled"})
}

// GET /admin/stats
func (h *Handler) AdminStats(c echo.Context) error {
	ctx := c.Request().Context()

	jobs, err := h.Store.Jobs().Count(ctx)
	if err != nil {
		return writeError(c, err)
	}
	applications, err := h.Store.Applications().Count(ctx)
	if err != nil {
		return writeError(c, err)
	}
	transactions, err := h.Store.Ledger().Count(ctx)
	if err != nil {
		return writeError(c, err)
	}

	return c.JSON(http.StatusOK, echo.Map{
		"jobs":         jobs,
		"applications": applications,
		"transactions": transactions,
	})
}
