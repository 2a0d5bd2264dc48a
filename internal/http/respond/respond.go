package respond

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/detroitcommons/commons/internal/expense"
	"github.com/detroitcommons/commons/internal/member"
)

// Machine-readable error codes of the external contract. The HTTP status is
// presentation; clients branch on the code.
const (
	CodeValidation        = "validation_error"
	CodeUnauthorized      = "unauthorized"
	CodeNotFound          = "not_found"
	CodeInvalidTransition = "invalid_state_transition"
	CodeInvalidAmount     = "invalid_amount"
	CodeUploadFailed      = "upload_error"
	CodeAnalysisFailed    = "analysis_parse_error"
	CodeInternal          = "internal_error"
)

type errorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type errorEnvelope struct {
	Error errorBody `json:"error"`
}

func JSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}

func Error(w http.ResponseWriter, status int, code, message string) {
	JSON(w, status, errorEnvelope{Error: errorBody{Code: code, Message: message}})
}

// DomainError maps a lifecycle error to the contract's status/code pair:
// 400 validation/authorization, 404 not found, 409 invalid transition,
// 500 upload/analysis and anything unrecognized.
func DomainError(w http.ResponseWriter, err error) {
	var (
		validationErr       *expense.ValidationError
		memberValidationErr *member.ValidationError
		transitionErr       *expense.InvalidTransitionError
		uploadErr           *expense.UploadError
		analysisErr         *expense.AnalysisError
	)

	switch {
	case errors.As(err, &validationErr), errors.As(err, &memberValidationErr):
		Error(w, http.StatusBadRequest, CodeValidation, err.Error())
	case errors.Is(err, member.ErrUnauthorized):
		Error(w, http.StatusBadRequest, CodeUnauthorized, err.Error())
	case errors.Is(err, expense.ErrNotFound), errors.Is(err, expense.ErrImageNotFound), errors.Is(err, member.ErrNotFound):
		Error(w, http.StatusNotFound, CodeNotFound, err.Error())
	case errors.As(err, &transitionErr):
		Error(w, http.StatusConflict, CodeInvalidTransition, err.Error())
	case errors.Is(err, expense.ErrInvalidAmount):
		Error(w, http.StatusBadRequest, CodeInvalidAmount, err.Error())
	case errors.As(err, &uploadErr):
		Error(w, http.StatusInternalServerError, CodeUploadFailed, err.Error())
	case errors.As(err, &analysisErr):
		Error(w, http.StatusInternalServerError, CodeAnalysisFailed, err.Error())
	default:
		slog.Error("unhandled error", "error", err)
		Error(w, http.StatusInternalServerError, CodeInternal, "internal error")
	}
}
