// Package handlers provides HTTP handlers for the REST API
package handlers

import (
	"encoding/json"
	stderrors "errors"
	"io"
	"net/http"

	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/pantrychef/backend/pkg/errors"
)

// maxBodyBytes bounds request bodies
const maxBodyBytes = 1 << 20

const genericErrorMessage = "An unexpected error occurred"

// APIResponse represents a standard API response
type APIResponse struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
	Code    string      `json:"code,omitempty"`
	Details string      `json:"details,omitempty"`
	Message string      `json:"message,omitempty"`
}

// responder carries the helpers shared by all handler groups
type responder struct {
	logger *zap.Logger
}

// writeJSON writes a JSON response
func (h responder) writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.logger.Error("Failed to encode JSON response", zap.Error(err))
	}
}

// writeSuccess wraps data in the success envelope
func (h responder) writeSuccess(w http.ResponseWriter, status int, data interface{}, message string) {
	h.writeJSON(w, status, APIResponse{
		Success: true,
		Data:    data,
		Message: message,
	})
}

// writeError maps err onto the error envelope. Server errors are logged with
// their cause and answered with a generic message.
func (h responder) writeError(w http.ResponseWriter, r *http.Request, err error) {
	var appErr *errors.AppError
	if !stderrors.As(err, &appErr) {
		appErr = errors.NewInternalError(genericErrorMessage).WithCause(err)
	}

	status := appErr.StatusCode()
	if status >= http.StatusInternalServerError {
		h.logger.Error("Request failed",
			zap.String("request_id", chimiddleware.GetReqID(r.Context())),
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.String("code", string(appErr.Code)),
			zap.String("details", appErr.Details),
			zap.Error(appErr.Cause))

		h.writeJSON(w, status, APIResponse{
			Error: genericErrorMessage,
			Code:  string(appErr.Code),
		})
		return
	}

	h.logger.Debug("Request rejected",
		zap.String("path", r.URL.Path),
		zap.String("code", string(appErr.Code)),
		zap.String("message", appErr.Message))

	h.writeJSON(w, status, APIResponse{
		Error:   appErr.Message,
		Code:    string(appErr.Code),
		Details: appErr.Details,
	})
}

// decode reads an optional JSON body into dst and validates it. An empty body
// leaves dst at its zero value.
func (h responder) decode(w http.ResponseWriter, r *http.Request, dst interface{}) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)

	if err := json.NewDecoder(r.Body).Decode(dst); err != nil && !stderrors.Is(err, io.EOF) {
		var maxErr *http.MaxBytesError
		if stderrors.As(err, &maxErr) {
			return errors.NewBadRequestError("Request body too large")
		}
		if stderrors.Is(err, errInvalidNumber) {
			return errors.NewValidationError("Quantity must be a valid number").WithCause(err)
		}
		return errors.NewBadRequestError("Invalid JSON body").WithCause(err)
	}

	return validateStruct(dst)
}

// Fallback answers unknown routes and methods with the error envelope
type Fallback struct {
	responder
}

// NewFallback creates the not-found and method-not-allowed handlers
func NewFallback(logger *zap.Logger) *Fallback {
	return &Fallback{responder: responder{logger: logger.Named("api")}}
}

// NotFound handles unknown routes
func (h *Fallback) NotFound(w http.ResponseWriter, r *http.Request) {
	h.writeError(w, r, errors.NewNotFoundError("Route"))
}

// MethodNotAllowed handles known routes called with the wrong method
func (h *Fallback) MethodNotAllowed(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusMethodNotAllowed, APIResponse{
		Error: "Method " + r.Method + " not allowed",
		Code:  string(errors.CodeBadRequest),
	})
}
