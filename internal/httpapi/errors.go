package httpapi

import (
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"tennis-score-go/internal/apperrors"
)

// writeAPIError maps a domain error to an HTTP status and a safe body. It
// never echoes raw internal errors back to the caller.
func writeAPIError(c *gin.Context, err error) {
	switch {
	case err == nil:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
	case errors.Is(err, apperrors.ErrInvalidPlayers):
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid players"})
	case errors.Is(err, apperrors.ErrInvalidSide):
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid side"})
	case errors.Is(err, apperrors.ErrUnknownMatch):
		c.JSON(http.StatusNotFound, gin.H{"error": "unknown match"})
	case errors.Is(err, apperrors.ErrAlreadyCompleted):
		c.JSON(http.StatusConflict, gin.H{"error": "match already completed"})
	case errors.Is(err, apperrors.ErrNotResettable):
		c.JSON(http.StatusConflict, gin.H{"error": "match not resettable"})
	case errors.Is(err, apperrors.ErrStorageFailure):
		log.Printf("storage failure: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "storage failure"})
	default:
		log.Printf("internal error: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
	}
}
