// internal/handlers/respond.go
package handlers

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/takeoneapp/takeone-be/internal/core/domain"
)

// response is the envelope every endpoint replies with
type response struct {
	Success bool        `json:"success"`
	Message string      `json:"message,omitempty"`
	Data    interface{} `json:"data,omitempty"`
}

func respondJSON(w http.ResponseWriter, logger *slog.Logger, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(payload); err != nil {
		logger.Error("failed to encode JSON response",
			slog.String("error", err.Error()))
	}
}

func respondSuccess(w http.ResponseWriter, logger *slog.Logger, status int, message string, data interface{}) {
	respondJSON(w, logger, status, response{
		Success: true,
		Message: message,
		Data:    data,
	})
}

func respondError(w http.ResponseWriter, logger *slog.Logger, status int, message string) {
	respondJSON(w, logger, status, response{
		Success: false,
		Message: message,
	})
}

// respondDomainError maps domain errors to HTTP status codes. Unknown
// errors collapse to a plain 500 so internals never leak to clients.
func respondDomainError(w http.ResponseWriter, logger *slog.Logger, err error, fallback string) {
	var (
		validationErr *domain.ValidationError
		duplicateErr  *domain.DuplicateItemError
		priceErr      *domain.PriceTooLowError
		uploadErr     *domain.UploadError
		deleteErr     *domain.DeleteError
	)

	switch {
	case errors.Is(err, domain.ErrItemNotFound):
		respondError(w, logger, http.StatusNotFound, "Item not found")
	case errors.Is(err, domain.ErrOutOfStock):
		respondError(w, logger, http.StatusBadRequest, "Item is out of stock")
	case errors.As(err, &validationErr):
		respondError(w, logger, http.StatusBadRequest, validationErr.Error())
	case errors.As(err, &priceErr):
		respondError(w, logger, http.StatusBadRequest, priceErr.Error())
	case errors.As(err, &duplicateErr):
		respondJSON(w, logger, http.StatusConflict, response{
			Success: false,
			Message: duplicateErr.Error(),
			Data:    duplicateErr.Existing,
		})
	case errors.As(err, &uploadErr):
		respondError(w, logger, http.StatusBadRequest, uploadErr.Error())
	case errors.As(err, &deleteErr):
		respondError(w, logger, http.StatusBadRequest, deleteErr.Error())
	default:
		respondError(w, logger, http.StatusInternalServerError, fallback)
	}
}
