package handlers

import (
	"errors"
	"net/http"

	"bookify/models"
	"bookify/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// respondError maps the service error taxonomy onto HTTP statuses. Anything
// unrecognized is a 500 with the detail kept out of the response body.
func respondError(c *gin.Context, err error) {
	var (
		validation *models.ValidationError
		conflict   *models.ConflictError
		notFound   *models.NotFoundError
		transition *models.InvalidTransitionError
	)
	switch {
	case errors.As(err, &validation):
		utils.JSONError(c, http.StatusUnprocessableEntity, "validation failed", validation.Reason)
	case errors.As(err, &conflict):
		c.JSON(http.StatusConflict, gin.H{
			"error":               "slot conflict",
			"details":             conflict.Reason,
			"conflicting_booking": conflict.BookingID,
		})
	case errors.As(err, &notFound):
		utils.JSONError(c, http.StatusNotFound, notFound.Resource+" not found", notFound.ID)
	case errors.As(err, &transition):
		utils.JSONError(c, http.StatusConflict, "invalid transition", transition.Error())
	default:
		utils.GetLogger().Error("request failed", zap.String("path", c.FullPath()), zap.Error(err))
		utils.JSONError(c, http.StatusInternalServerError, "internal error", "")
	}
}
