package respond_test

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/detroitcommons/commons/internal/expense"
	"github.com/detroitcommons/commons/internal/http/respond"
	"github.com/detroitcommons/commons/internal/member"
)

func TestDomainError(t *testing.T) {
	type testCase struct {
		name       string
		err        error
		wantStatus int
		wantCode   string
	}

	tests := []testCase{
		{
			name:       "Validation",
			err:        &expense.ValidationError{Field: "amount_cents", Reason: "must be positive"},
			wantStatus: http.StatusBadRequest,
			wantCode:   respond.CodeValidation,
		},
		{
			name:       "MemberValidation",
			err:        &member.ValidationError{Field: "email", Reason: "must look like local@domain"},
			wantStatus: http.StatusBadRequest,
			wantCode:   respond.CodeValidation,
		},
		{
			name:       "Unauthorized",
			err:        member.ErrUnauthorized,
			wantStatus: http.StatusBadRequest,
			wantCode:   respond.CodeUnauthorized,
		},
		{
			name:       "NotFound",
			err:        expense.ErrNotFound,
			wantStatus: http.StatusNotFound,
			wantCode:   respond.CodeNotFound,
		},
		{
			name:       "ImageNotFound",
			err:        expense.ErrImageNotFound,
			wantStatus: http.StatusNotFound,
			wantCode:   respond.CodeNotFound,
		},
		{
			name:       "InvalidTransition",
			err:        &expense.InvalidTransitionError{Current: expense.StatusCompleted, Event: expense.EventPay},
			wantStatus: http.StatusConflict,
			wantCode:   respond.CodeInvalidTransition,
		},
		{
			name:       "InvalidAmount",
			err:        expense.ErrInvalidAmount,
			wantStatus: http.StatusBadRequest,
			wantCode:   respond.CodeInvalidAmount,
		},
		{
			name:       "UploadFailure",
			err:        &expense.UploadError{Err: errors.New("bucket unavailable")},
			wantStatus: http.StatusInternalServerError,
			wantCode:   respond.CodeUploadFailed,
		},
		{
			name:       "AnalysisFailure",
			err:        &expense.AnalysisError{Err: errors.New("not a JSON object")},
			wantStatus: http.StatusInternalServerError,
			wantCode:   respond.CodeAnalysisFailed,
		},
		{
			name:       "Unrecognized",
			err:        errors.New("driver: bad connection"),
			wantStatus: http.StatusInternalServerError,
			wantCode:   respond.CodeInternal,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()

			respond.DomainError(rec, tt.err)

			assert.Equal(t, tt.wantStatus, rec.Code)
			assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

			var envelope struct {
				Error struct {
					Code    string `json:"code"`
					Message string `json:"message"`
				} `json:"error"`
			}

			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &envelope))
			assert.Equal(t, tt.wantCode, envelope.Error.Code)
			assert.NotEmpty(t, envelope.Error.Message)
		})
	}
}

// Wrapping must not defeat the mapping.
func TestDomainError_WrappedErrorsStillMap(t *testing.T) {
	rec := httptest.NewRecorder()

	respond.DomainError(rec, fmt.Errorf("fetching expense: %w", expense.ErrNotFound))

	assert.Equal(t, http.StatusNotFound, rec.Code)
}
