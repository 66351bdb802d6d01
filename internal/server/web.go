package server

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-playground/validator/v10"

	"recdocs/internal/api"
	"recdocs/internal/docs"
	"recdocs/internal/drive"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// decodeValidate decodes a JSON body into body and validates its struct tags.
func decodeValidate(r *http.Request, body any) error {
	if err := json.NewDecoder(r.Body).Decode(body); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			return api.StatusErrorf(http.StatusRequestEntityTooLarge, "request body exceeds %d bytes", maxErr.Limit)
		}
		return api.StatusErrorf(http.StatusBadRequest, "body is invalid json")
	}
	if err := validate.Struct(body); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			return api.StatusErrorf(http.StatusBadRequest, "invalid field %s: %s", verrs[0].Namespace(), verrs[0].Tag())
		}
		return api.StatusErrorf(http.StatusBadRequest, "required fields missing")
	}
	return nil
}

// statusFor maps backend errors to HTTP status codes.
func statusFor(err error) int {
	var withStatus *api.ErrorWithStatusCode
	switch {
	case errors.As(err, &withStatus):
		return withStatus.StatusCode
	case errors.Is(err, docs.ErrFolderExists):
		return http.StatusConflict
	case errors.Is(err, drive.ErrInvalidBatch):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func writeError(w http.ResponseWriter, err error) {
	status := statusFor(err)
	msg := err.Error()
	if status == http.StatusInternalServerError {
		msg = http.StatusText(status)
	}
	writeJSON(w, status, api.ErrorResponse{Error: msg})
}
