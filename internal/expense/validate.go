package expense

import (
	"strings"
	"time"
)

const payoutAddressLen = 42

// SubmitParams carries the fields of a submission. Exactly one of the two
// submitter identifications may be present: a member id plus modification key
// (self-service), or a bare name/email pair (public intake).
type SubmitParams struct {
	Title       string
	Merchant    string
	Category    string
	Notes       string
	AmountCents int64
	Currency    string
	ExpenseDate *time.Time

	PayoutAddress string

	SubmittedBy     *int64
	ModificationKey string

	SubmitterName  string
	SubmitterEmail string
}

// validPayoutAddress is a syntactic check only: 42 characters starting with
// "0x". No checksum or chain validation.
func validPayoutAddress(addr string) bool {
	return len(addr) == payoutAddressLen && strings.HasPrefix(addr, "0x")
}

// validateSubmit enforces the shared guard logic of both submission entry
// points. Runs before any write; a failure means no side effects at all.
func validateSubmit(params SubmitParams) error {
	if strings.TrimSpace(params.Title) == "" {
		return &ValidationError{Field: "title", Reason: "must not be empty"}
	}

	if params.AmountCents <= 0 {
		return &ValidationError{Field: "amount_cents", Reason: "must be strictly positive"}
	}

	if !validPayoutAddress(params.PayoutAddress) {
		return &ValidationError{Field: "payout_address", Reason: "must be a 42-character 0x-prefixed address"}
	}

	if params.Currency != "" && len(params.Currency) != 3 {
		return &ValidationError{Field: "currency", Reason: "must be a 3-letter code"}
	}

	return nil
}

// trimToNil normalizes optional text fields so that "absent" and "empty" are
// the same thing downstream.
func trimToNil(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}

	return &s
}
