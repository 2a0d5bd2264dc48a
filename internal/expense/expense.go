package expense

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

// Status is the payout lifecycle state of an expense.
type Status string

const (
	StatusPendingApproval Status = "pending_approval"
	StatusPending         Status = "pending"
	StatusCompleted       Status = "completed"
	StatusRejected        Status = "rejected"
)

// Event is a lifecycle transition request on an existing expense.
type Event string

const (
	EventApprove Event = "approve"
	EventReject  Event = "reject"
	EventPay     Event = "pay"
)

var (
	ErrNotFound      = errors.New("expense not found")
	ErrImageNotFound = errors.New("expense image not found")
	// ErrInvalidAmount is returned when a payout is requested for an expense
	// whose amount is missing or not strictly positive.
	ErrInvalidAmount = errors.New("expense amount is missing or not positive")
)

// ValidationError reports malformed or missing caller input. Always detected
// before any write.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return e.Field + ": " + e.Reason
}

// InvalidTransitionError reports a lifecycle operation attempted from a
// disallowed source state. Current carries the state observed at the time of
// the attempt to aid caller debugging.
type InvalidTransitionError struct {
	Current Status
	Event   Event
}

func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("cannot %s an expense in state %q", e.Event, e.Current)
}

// UploadError wraps a storage collaborator failure during receipt intake.
// The submission is aborted; no partial expense is created.
type UploadError struct {
	Err error
}

func (e *UploadError) Error() string { return "receipt upload failed: " + e.Err.Error() }
func (e *UploadError) Unwrap() error { return e.Err }

// AnalysisError wraps a receipt-analysis collaborator failure during intake.
// A malformed analysis response cannot be trusted at all, so intake aborts
// rather than silently defaulting.
type AnalysisError struct {
	Err error
}

func (e *AnalysisError) Error() string { return "receipt analysis failed: " + e.Err.Error() }
func (e *AnalysisError) Unwrap() error { return e.Err }

// SourceState returns the state an expense must be in for the event to apply.
func SourceState(event Event) (Status, error) {
	switch event {
	case EventApprove, EventReject:
		return StatusPendingApproval, nil
	case EventPay:
		return StatusPending, nil
	}

	return "", fmt.Errorf("unknown event %q", event)
}

// Transition is the single source of truth for the payout state machine:
//
//	pending_approval -> pending -> completed
//	pending_approval -> rejected
//
// rejected and completed are terminal. Any other (state, event) pair yields
// an InvalidTransitionError.
func Transition(current Status, event Event) (Status, error) {
	switch {
	case current == StatusPendingApproval && event == EventApprove:
		return StatusPending, nil
	case current == StatusPendingApproval && event == EventReject:
		return StatusRejected, nil
	case current == StatusPending && event == EventPay:
		return StatusCompleted, nil
	}

	return "", &InvalidTransitionError{Current: current, Event: event}
}

// Expense is the central entity of the reimbursement workflow. Monetary
// amounts are integer cents; AmountCents is nullable because receipt intake
// may fail to resolve an amount (the payout guard rejects such rows later).
type Expense struct {
	ID          int64
	Title       string
	Merchant    *string
	Category    *string
	Notes       *string
	AmountCents *int64
	Currency    string
	ExpenseDate *time.Time

	SubmittedBy *int64
	ReceiptURL  *string
	Metadata    json.RawMessage

	PayoutAddress     *string
	PayoutStatus      Status
	PayoutTxHash      *string
	PayoutAmountCents *int64
	PayoutDate        *time.Time

	ApprovedBy      *string
	ApprovedAt      *time.Time
	RejectedBy      *string
	RejectedAt      *time.Time
	RejectionReason *string

	CreatedAt time.Time
	UpdatedAt *time.Time
}

// Image is a supporting image attached to an expense. Images live and die
// independently of the parent row; deleting an expense does not cascade.
type Image struct {
	ID          int64
	ExpenseID   int64
	ImageURL    string
	Description *string
	ImageType   string
	UploadedBy  *string
	CreatedAt   time.Time
}

const DefaultImageType = "proof"
