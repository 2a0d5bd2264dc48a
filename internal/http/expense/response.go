package expense

import (
	"encoding/json"
	"time"

	"github.com/detroitcommons/commons/internal/expense"
)

type expenseResponse struct {
	ID          int64      `json:"id"`
	Title       string     `json:"title"`
	Merchant    *string    `json:"merchant,omitempty"`
	Category    *string    `json:"category,omitempty"`
	Notes       *string    `json:"notes,omitempty"`
	AmountCents *int64     `json:"amount_cents"`
	Currency    string     `json:"currency"`
	ExpenseDate *time.Time `json:"expense_date,omitempty"`

	SubmittedBy *int64          `json:"submitted_by,omitempty"`
	ReceiptURL  *string         `json:"receipt_url,omitempty"`
	Metadata    json.RawMessage `json:"metadata,omitempty"`

	PayoutAddress     *string        `json:"payout_address,omitempty"`
	PayoutStatus      expense.Status `json:"payout_status"`
	PayoutTxHash      *string        `json:"payout_tx_hash,omitempty"`
	PayoutAmountCents *int64         `json:"payout_amount_cents,omitempty"`
	PayoutDate        *time.Time     `json:"payout_date,omitempty"`

	ApprovedBy      *string    `json:"approved_by,omitempty"`
	ApprovedAt      *time.Time `json:"approved_at,omitempty"`
	RejectedBy      *string    `json:"rejected_by,omitempty"`
	RejectedAt      *time.Time `json:"rejected_at,omitempty"`
	RejectionReason *string    `json:"rejection_reason,omitempty"`

	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt *time.Time `json:"updated_at,omitempty"`
}

func toResponse(e *expense.Expense) expenseResponse {
	return expenseResponse{
		ID:                e.ID,
		Title:             e.Title,
		Merchant:          e.Merchant,
		Category:          e.Category,
		Notes:             e.Notes,
		AmountCents:       e.AmountCents,
		Currency:          e.Currency,
		ExpenseDate:       e.ExpenseDate,
		SubmittedBy:       e.SubmittedBy,
		ReceiptURL:        e.ReceiptURL,
		Metadata:          e.Metadata,
		PayoutAddress:     e.PayoutAddress,
		PayoutStatus:      e.PayoutStatus,
		PayoutTxHash:      e.PayoutTxHash,
		PayoutAmountCents: e.PayoutAmountCents,
		PayoutDate:        e.PayoutDate,
		ApprovedBy:        e.ApprovedBy,
		ApprovedAt:        e.ApprovedAt,
		RejectedBy:        e.RejectedBy,
		RejectedAt:        e.RejectedAt,
		RejectionReason:   e.RejectionReason,
		CreatedAt:         e.CreatedAt,
		UpdatedAt:         e.UpdatedAt,
	}
}

func toResponseList(expenses []*expense.Expense) []expenseResponse {
	resp := make([]expenseResponse, len(expenses))
	for i, e := range expenses {
		resp[i] = toResponse(e)
	}

	return resp
}

type imageResponse struct {
	ID          int64     `json:"id"`
	ExpenseID   int64     `json:"expense_id"`
	ImageURL    string    `json:"image_url"`
	Description *string   `json:"description,omitempty"`
	ImageType   string    `json:"image_type"`
	UploadedBy  *string   `json:"uploaded_by,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

func toImageResponse(img *expense.Image) imageResponse {
	return imageResponse{
		ID:          img.ID,
		ExpenseID:   img.ExpenseID,
		ImageURL:    img.ImageURL,
		Description: img.Description,
		ImageType:   img.ImageType,
		UploadedBy:  img.UploadedBy,
		CreatedAt:   img.CreatedAt,
	}
}

func toImageResponseList(images []*expense.Image) []imageResponse {
	resp := make([]imageResponse, len(images))
	for i, img := range images {
		resp[i] = toImageResponse(img)
	}

	return resp
}
