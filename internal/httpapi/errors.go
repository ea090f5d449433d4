package httpapi

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/jubaworks/juba/internal/engine"
)

// writeError maps the engine's typed errors onto HTTP statuses in one place
// so handlers stay thin.
func writeError(c echo.Context, err error) error {
	var (
		validation *engine.ValidationError
		conflict   *engine.ConflictError
		notFound   *engine.NotFoundError
		notOwner   *engine.NotOwnerError
		transition *engine.InvalidTransitionError
		notOpen    *engine.JobNotOpenError
		profile    *engine.ProfileNotApprovedError
		duplicate  *engine.DuplicateApplicationError
		taken      *engine.AlreadyInProgressError
		payment    *engine.PaymentFailedError
	)

	switch {
	case errors.As(err, &validation):
		return c.JSON(http.StatusBadRequest, echo.Map{"error": validation.Error()})
	case errors.As(err, &notFound):
		return c.JSON(http.StatusNotFound, echo.Map{"error": notFound.Error()})
	case errors.As(err, &notOwner):
		return c.JSON(http.StatusForbidden, echo.Map{"error": notOwner.Error()})
	case errors.As(err, &taken):
		return c.JSON(http.StatusConflict, echo.Map{"error": taken.Error()})
	case errors.As(err, &conflict):
		return c.JSON(http.StatusConflict, echo.Map{"error": conflict.Error()})
	case errors.As(err, &duplicate):
		return c.JSON(http.StatusConflict, echo.Map{"error": duplicate.Error()})
	case errors.As(err, &notOpen):
		return c.JSON(http.StatusUnprocessableEntity, echo.Map{"error": notOpen.Error()})
	case errors.As(err, &profile):
		return c.JSON(http.StatusUnprocessableEntity, echo.Map{"error": profile.Error()})
	case errors.As(err, &transition):
		return c.JSON(http.StatusUnprocessableEntity, echo.Map{"error": transition.Error()})
	case errors.As(err, &payment):
		return c.JSON(http.StatusBadGateway, echo.Map{"error": payment.Error()})
	default:
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal error"})
	}
}
