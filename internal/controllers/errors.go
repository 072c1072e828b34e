package controllers

import (
	"errors"
	"net/http"

	"github.com/budgetbuddy/backend/internal/models"
	"github.com/budgetbuddy/backend/internal/syncer"
)

type httpError struct {
	Error string `json:"error" example:"there is no budget matching your query"`
}

// status returns the appropriate status for an error
func status(err error) int {
	if errors.Is(err, models.ErrGeneral) {
		return http.StatusInternalServerError
	}

	if errors.Is(err, models.ErrResourceNotFound) {
		return http.StatusNotFound
	}

	if errors.Is(err, syncer.ErrInvalidCollaborationCode) {
		return http.StatusNotFound
	}

	if errors.Is(err, syncer.ErrSync) {
		return http.StatusBadGateway
	}

	return http.StatusBadRequest
}

// Selection errors
var (
	errSelectionInactive      = errors.New("selection mode is not active")
	errSelectionActionInvalid = errors.New("the specified selection action is invalid")
)
