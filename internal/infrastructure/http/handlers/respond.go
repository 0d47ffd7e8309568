// Package handlers provides HTTP handlers for the REST API
package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	apperrors "github.com/planifia/planner/pkg/errors"
)

// maxBodyBytes caps request bodies; the longest legitimate body is the
// notes text.
const maxBodyBytes = 64 << 10

// APIResponse represents a standard API response
type APIResponse struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Message string      `json:"message,omitempty"`
}

// responder is shared by every handler group
type responder struct {
	logger   *zap.Logger
	validate *validator.Validate
}

func newResponder(logger *zap.Logger) responder {
	return responder{logger: logger, validate: validator.New()}
}

// writeJSON writes a JSON response
func (h responder) writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.logger.Error("Failed to encode JSON response", zap.Error(err))
	}
}

func (h responder) ok(w http.ResponseWriter, data interface{}) {
	h.writeJSON(w, http.StatusOK, APIResponse{Success: true, Data: data})
}

// writeError maps err onto the AppError envelope. Errors that are not
// AppErrors become INTERNAL_ERROR and are logged.
func (h responder) writeError(w http.ResponseWriter, r *http.Request, err error) {
	var appErr *apperrors.AppError
	if !errors.As(err, &appErr) {
		h.logger.Error("Unhandled error", zap.String("path", r.URL.Path), zap.Error(err))
		appErr = apperrors.NewInternalError("Internal server error")
	} else if appErr.StatusCode() >= http.StatusInternalServerError {
		h.logger.Error("Request failed",
			zap.String("path", r.URL.Path),
			zap.String("code", string(appErr.Code)),
			zap.Error(err),
		)
	}

	h.writeJSON(w, appErr.StatusCode(), apperrors.ToErrorResponse(appErr, chimiddleware.GetReqID(r.Context())))
}

// decode reads a JSON body into dst and runs its validate tags
func (h responder) decode(r *http.Request, dst interface{}) error {
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		return apperrors.NewBadRequestError(fmt.Sprintf("invalid JSON body: %v", err))
	}

	if err := h.validate.Struct(dst); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			details := make([]apperrors.ValidationError, 0, len(verrs))
			for _, fe := range verrs {
				details = append(details, apperrors.ValidationError{
					Field:   fe.Field(),
					Value:   fe.Value(),
					Tag:     fe.Tag(),
					Message: fmt.Sprintf("%s failed on %s", fe.Field(), fe.Tag()),
				})
			}
			return apperrors.NewValidationErrors(details)
		}
		return apperrors.NewValidationError(err.Error())
	}
	return nil
}
