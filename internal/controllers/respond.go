package controllers

import (
	"errors"
	"net/http"

	"linklytics-be/internal/apperrors"

	"github.com/gin-gonic/gin"
)

// respondError translates service errors into the machine-readable
// status/message pair clients get. Anything unrecognized becomes a 500
// without leaking internals.
func respondError(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	message := "Internal Server Error"

	var ve *apperrors.ValidationError
	switch {
	case errors.Is(err, apperrors.ErrNotFound):
		status, message = http.StatusNotFound, apperrors.ErrNotFound.Error()
	case errors.Is(err, apperrors.ErrAliasTaken):
		status, message = http.StatusConflict, apperrors.ErrAliasTaken.Error()
	case errors.Is(err, apperrors.ErrEmailTaken):
		status, message = http.StatusConflict, apperrors.ErrEmailTaken.Error()
	case errors.Is(err, apperrors.ErrInvalidLogin):
		status, message = http.StatusUnauthorized, apperrors.ErrInvalidLogin.Error()
	case errors.Is(err, apperrors.ErrNoCredits):
		status, message = http.StatusPaymentRequired, "You have no credits left."
	case errors.Is(err, apperrors.ErrPremiumRequired):
		status, message = http.StatusForbidden, "Premium plan required for these features."
	case errors.Is(err, apperrors.ErrInvalidUTMField):
		status, message = http.StatusBadRequest, apperrors.ErrInvalidUTMField.Error()
	case errors.As(err, &ve):
		status, message = http.StatusBadRequest, ve.Error()
	}

	c.JSON(status, gin.H{"status": "error", "message": message})
}

// respondBadRequest reports a binding/validation failure with field details.
func respondBadRequest(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, gin.H{
		"status":  "error",
		"message": "Invalid request body",
		"details": err.Error(),
	})
}
