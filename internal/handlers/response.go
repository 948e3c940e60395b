package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/gorilla/mux"

	"bank-reconciliation-service/internal/apperrors"
	"bank-reconciliation-service/internal/logging"
)

type ErrorResponse struct {
	Error string `json:"error"`
}

func respondWithError(w http.ResponseWriter, code int, message string) {
	respondWithJSON(w, code, ErrorResponse{Error: message})
}

func respondWithJSON(w http.ResponseWriter, code int, payload interface{}) {
	response, err := json.Marshal(payload)
	if err != nil {
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte(`{"error": "Error marshaling JSON response"}`))
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	w.Write(response)
}

// statusFor maps a service error onto an HTTP status.
func statusFor(err error) int {
	var maxBytes *http.MaxBytesError
	switch {
	case errors.As(err, &maxBytes):
		return http.StatusRequestEntityTooLarge
	case errors.Is(err, apperrors.ErrValidation), errors.Is(err, apperrors.ErrParse):
		return http.StatusBadRequest
	case errors.Is(err, apperrors.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, apperrors.ErrPrecondition), errors.Is(err, apperrors.ErrConflict):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// respondWithServiceError writes err with the status it maps to. Unclassified
// errors are logged and reported without their cause.
func respondWithServiceError(w http.ResponseWriter, r *http.Request, err error) {
	code := statusFor(err)
	if code < http.StatusInternalServerError {
		respondWithError(w, code, err.Error())
		return
	}

	logging.FromContext(r.Context()).Error("Request failed", "error", err)
	if errors.Is(err, apperrors.ErrPersistence) || errors.Is(err, apperrors.ErrMatchUpdate) {
		respondWithError(w, code, err.Error())
		return
	}
	respondWithError(w, code, "Internal server error")
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// decodeAndValidate reads a JSON body into dst and runs its validate tags.
func decodeAndValidate(r *http.Request, dst any) error {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return apperrors.Validationf("invalid request payload")
	}
	if err := validate.Struct(dst); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			fe := verrs[0]
			return apperrors.Validationf("field %s failed on the '%s' rule", fe.Field(), fe.Tag())
		}
		return apperrors.Validationf("%v", err)
	}
	return nil
}

func pathID(r *http.Request, name string) (int64, error) {
	raw := mux.Vars(r)[name]
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, apperrors.Validationf("invalid %s %q", name, raw)
	}
	return id, nil
}

// queryInt reads an optional non-negative integer query parameter.
func queryInt(r *http.Request, name string) (int, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		return 0, apperrors.Validationf("invalid %s %q", name, raw)
	}
	return n, nil
}

func queryID(r *http.Request, name string) (int64, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return 0, nil
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, apperrors.Validationf("invalid %s %q", name, raw)
	}
	return id, nil
}
