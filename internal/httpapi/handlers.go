// Package httpapi exposes the match service over JSON, the way this
// codebase's gin handlers expose game state: parse, resolve, call the
// domain, map errors.
package httpapi

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"tennis-score-go/internal/apperrors"
	"tennis-score-go/internal/matchsvc"
	"tennis-score-go/internal/scoreengine"
)

type createMatchRequest struct {
	PlayerOneName string `json:"player_one_name" binding:"required"`
	PlayerTwoName string `json:"player_two_name" binding:"required"`
}

func CreateMatchHandler(svc *matchsvc.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req createMatchRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
			return
		}

		view, err := svc.CreateMatch(c.Request.Context(), req.PlayerOneName, req.PlayerTwoName)
		if err != nil {
			writeAPIError(c, err)
			return
		}
		c.JSON(http.StatusCreated, view)
	}
}

type awardPointRequest struct {
	Side string `json:"side" binding:"required"`
}

func AwardPointHandler(svc *matchsvc.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		matchUUID := c.Param("uuid")

		var req awardPointRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
			return
		}

		view, err := svc.UpdateScore(c.Request.Context(), matchUUID, scoreengine.Side(req.Side))
		if err != nil {
			statusForViewError(c, err, view)
			return
		}
		c.JSON(http.StatusOK, view)
	}
}

func ResetHandler(svc *matchsvc.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		matchUUID := c.Param("uuid")

		view, err := svc.Reset(c.Request.Context(), matchUUID)
		if err != nil {
			statusForViewError(c, err, view)
			return
		}
		c.JSON(http.StatusOK, view)
	}
}

func GetMatchHandler(svc *matchsvc.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		matchUUID := c.Param("uuid")

		view, ok, err := svc.GetMatch(c.Request.Context(), matchUUID)
		if err != nil {
			writeAPIError(c, err)
			return
		}
		if !ok {
			c.JSON(http.StatusNotFound, gin.H{"error": "unknown match"})
			return
		}
		c.JSON(http.StatusOK, view)
	}
}

func ListMatchesHandler(svc *matchsvc.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		page := atoiDefault(c.Query("page"), 1)
		perPage := atoiDefault(c.Query("per_page"), 20)
		filter := c.Query("filter")

		views, totalPages, err := svc.ListMatches(c.Request.Context(), page, perPage, filter)
		if err != nil {
			writeAPIError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"matches":     views,
			"page":        page,
			"total_pages": totalPages,
		})
	}
}

func atoiDefault(s string, def int) int {
	if s == "" {
		return def
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return def
	}
	return n
}

// statusForViewError responds with the match view (which already carries a
// human-readable error field from the service) alongside the right status
// code for the sentinel error it came with.
func statusForViewError(c *gin.Context, err error, view matchsvc.MatchView) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, apperrors.ErrInvalidSide):
		status = http.StatusBadRequest
	case errors.Is(err, apperrors.ErrUnknownMatch):
		status = http.StatusNotFound
	case errors.Is(err, apperrors.ErrAlreadyCompleted), errors.Is(err, apperrors.ErrNotResettable):
		status = http.StatusConflict
	case errors.Is(err, apperrors.ErrStorageFailure):
		status = http.StatusInternalServerError
	}
	c.JSON(status, view)
}
