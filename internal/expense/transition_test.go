package expense_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/detroitcommons/commons/internal/expense"
)

func TestTransition(t *testing.T) {
	type testCase struct {
		name    string
		current expense.Status
		event   expense.Event
		want    expense.Status
		wantErr bool
	}

	tests := []testCase{
		{
			name:    "ApprovePendingApproval",
			current: expense.StatusPendingApproval,
			event:   expense.EventApprove,
			want:    expense.StatusPending,
		},
		{
			name:    "RejectPendingApproval",
			current: expense.StatusPendingApproval,
			event:   expense.EventReject,
			want:    expense.StatusRejected,
		},
		{
			name:    "PayPending",
			current: expense.StatusPending,
			event:   expense.EventPay,
			want:    expense.StatusCompleted,
		},
		{
			name:    "ApprovePending",
			current: expense.StatusPending,
			event:   expense.EventApprove,
			wantErr: true,
		},
		{
			name:    "RejectPending",
			current: expense.StatusPending,
			event:   expense.EventReject,
			wantErr: true,
		},
		{
			name:    "PayPendingApproval",
			current: expense.StatusPendingApproval,
			event:   expense.EventPay,
			wantErr: true,
		},
		{
			name:    "ApproveCompleted",
			current: expense.StatusCompleted,
			event:   expense.EventApprove,
			wantErr: true,
		},
		{
			name:    "PayCompleted",
			current: expense.StatusCompleted,
			event:   expense.EventPay,
			wantErr: true,
		},
		{
			name:    "ApproveRejected",
			current: expense.StatusRejected,
			event:   expense.EventApprove,
			wantErr: true,
		},
		{
			name:    "PayRejected",
			current: expense.StatusRejected,
			event:   expense.EventPay,
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := expense.Transition(tt.current, tt.event)

			if tt.wantErr {
				var transitionErr *expense.InvalidTransitionError

				require.ErrorAs(t, err, &transitionErr)
				assert.Equal(t, tt.current, transitionErr.Current)
				assert.Equal(t, tt.event, transitionErr.Event)

				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestSourceState(t *testing.T) {
	type testCase struct {
		name    string
		event   expense.Event
		want    expense.Status
		wantErr bool
	}

	tests := []testCase{
		{name: "Approve", event: expense.EventApprove, want: expense.StatusPendingApproval},
		{name: "Reject", event: expense.EventReject, want: expense.StatusPendingApproval},
		{name: "Pay", event: expense.EventPay, want: expense.StatusPending},
		{name: "Unknown", event: expense.Event("archive"), wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := expense.SourceState(tt.event)

			if tt.wantErr {
				assert.Error(t, err)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
