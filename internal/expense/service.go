package expense

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/detroitcommons/commons/internal/member"
)

//go:generate mockgen -source=service.go -destination=service_mock.go -package=expense
type Repository interface {
	CreateExpense(ctx context.Context, e *Expense) error
	GetExpense(ctx context.Context, id int64) (*Expense, error)
	ListExpenses(ctx context.Context, filter ListFilter) ([]*Expense, error)

	// The Mark* methods perform the status write as a conditional update
	// (compare-and-swap on payout_status) so that guard-check-then-write is
	// atomic at the storage layer. A stale source state yields an
	// InvalidTransitionError carrying the state actually observed.
	MarkApproved(ctx context.Context, id int64, approver string) (*Expense, error)
	MarkRejected(ctx context.Context, id int64, rejector string, reason *string) (*Expense, error)
	MarkPaid(ctx context.Context, id int64, txHash *string, amountCents int64) (*Expense, error)

	CreateImage(ctx context.Context, img *Image) error
	GetImage(ctx context.Context, id int64) (*Image, error)
	ListImages(ctx context.Context, expenseID int64) ([]*Image, error)
	UpdateImage(ctx context.Context, img *Image) error
	DeleteImage(ctx context.Context, id int64) error
}

// Uploader stores a binary payload and returns a public URL.
type Uploader interface {
	Upload(ctx context.Context, data []byte, fileName, mimeType, folder string) (string, error)
}

// ReceiptAnalysis is the best-effort structured guess an analyzer produces
// for a receipt image. Every field is optional; the output is untrusted.
type ReceiptAnalysis struct {
	Title       string     `json:"title,omitempty"`
	Merchant    *string    `json:"merchant,omitempty"`
	Category    *string    `json:"category,omitempty"`
	Notes       *string    `json:"notes,omitempty"`
	AmountCents *int64     `json:"amount_cents,omitempty"`
	Currency    string     `json:"currency,omitempty"`
	Date        *time.Time `json:"date,omitempty"`
	Confidence  *float64   `json:"confidence,omitempty"`
}

type Analyzer interface {
	AnalyzeReceipt(ctx context.Context, imageURL string) (*ReceiptAnalysis, error)
}

type NotificationKind string

const (
	NotifySubmitted NotificationKind = "submitted"
	NotifyApproved  NotificationKind = "approved"
	NotifyRejected  NotificationKind = "rejected"
	NotifyPaid      NotificationKind = "paid"
)

// Notification carries the minimum data needed to render a human-readable
// message for a lifecycle event.
type Notification struct {
	Kind          NotificationKind
	RecipientName string
	RecipientAddr string
	Title         string
	AmountCents   *int64
	Currency      string
	Reason        string
	TxHash        string
}

type Notifier interface {
	Send(ctx context.Context, n Notification) error
}

// MemberDirectory resolves and authorizes submitters. Satisfied by
// member.Service.
type MemberDirectory interface {
	Get(ctx context.Context, id int64) (*member.Member, error)
	Authorize(ctx context.Context, id int64, key string) (*member.Member, error)
	FindOrCreate(ctx context.Context, name, email string) (*member.Member, error)
}

type ListFilter struct {
	SubmitterID *int64
	Status      *Status
}

type Service struct {
	repo     Repository
	members  MemberDirectory
	uploader Uploader
	analyzer Analyzer
	notifier Notifier
}

func NewService(repo Repository, members MemberDirectory, uploader Uploader, analyzer Analyzer, notifier Notifier) *Service {
	return &Service{
		repo:     repo,
		members:  members,
		uploader: uploader,
		analyzer: analyzer,
		notifier: notifier,
	}
}

type submissionContext struct {
	Channel     string   `json:"channel"`
	SubmittedAt string   `json:"submitted_at"`
	SubmittedBy string   `json:"submitted_by,omitempty"`
	Confidence  *float64 `json:"analysis_confidence,omitempty"`
}

// Submit creates a new expense in pending_approval. The self-service path
// authorizes the caller against the referenced member's modification key; the
// public path resolves the submitter by email. Validation and authorization
// both run before any write.
func (s *Service) Submit(ctx context.Context, params SubmitParams) (*Expense, error) {
	if err := validateSubmit(params); err != nil {
		return nil, err
	}

	channel := "public"

	var submitter *member.Member

	switch {
	case params.SubmittedBy != nil:
		m, err := s.members.Authorize(ctx, *params.SubmittedBy, params.ModificationKey)
		if err != nil {
			return nil, err
		}

		submitter = m
		channel = "self_service"
	case params.SubmitterEmail != "":
		m, err := s.members.FindOrCreate(ctx, params.SubmitterName, params.SubmitterEmail)
		if err != nil {
			return nil, err
		}

		submitter = m
	}

	currency := strings.ToUpper(params.Currency)
	if currency == "" {
		currency = "USD"
	}

	amount := params.AmountCents
	addr := params.PayoutAddress

	e := &Expense{
		Title:         strings.TrimSpace(params.Title),
		Merchant:      trimToNil(params.Merchant),
		Category:      trimToNil(params.Category),
		Notes:         trimToNil(params.Notes),
		AmountCents:   &amount,
		Currency:      currency,
		ExpenseDate:   params.ExpenseDate,
		PayoutAddress: &addr,
		PayoutStatus:  StatusPendingApproval,
	}

	sc := submissionContext{
		Channel:     channel,
		SubmittedAt: time.Now().UTC().Format(time.RFC3339),
	}

	if submitter != nil {
		e.SubmittedBy = &submitter.ID
		sc.SubmittedBy = submitter.Email
	}

	e.Metadata, _ = json.Marshal(sc)

	if err := s.repo.CreateExpense(ctx, e); err != nil {
		return nil, fmt.Errorf("creating expense: %w", err)
	}

	s.notify(ctx, Notification{
		Kind:        NotifySubmitted,
		Title:       e.Title,
		AmountCents: e.AmountCents,
		Currency:    e.Currency,
	})

	return e, nil
}

// SubmitFromReceipt creates an expense from an uploaded receipt image. The
// analysis output is untrusted: omitted fields stay null, a missing title
// defaults to "Receipt", and a missing amount leaves the row unpayable until
// corrected. Upload and analysis failures abort intake entirely. This channel
// is admin-initiated, so no notification is sent.
func (s *Service) SubmitFromReceipt(ctx context.Context, data []byte, fileName, mimeType, uploadedBy string) (*Expense, *ReceiptAnalysis, error) {
	if len(data) == 0 {
		return nil, nil, &ValidationError{Field: "receipt", Reason: "image payload is empty"}
	}

	if !strings.HasPrefix(http.DetectContentType(data), "image/") {
		return nil, nil, &ValidationError{Field: "receipt", Reason: "payload does not decode as an image"}
	}

	url, err := s.uploader.Upload(ctx, data, fileName, mimeType, "receipts")
	if err != nil {
		return nil, nil, &UploadError{Err: err}
	}

	result, err := s.analyzer.AnalyzeReceipt(ctx, url)
	if err != nil {
		return nil, nil, &AnalysisError{Err: err}
	}

	title := strings.TrimSpace(result.Title)
	if title == "" {
		title = "Receipt"
	}

	currency := strings.ToUpper(result.Currency)
	if len(currency) != 3 {
		currency = "USD"
	}

	e := &Expense{
		Title:        title,
		Merchant:     result.Merchant,
		Category:     result.Category,
		Notes:        result.Notes,
		AmountCents:  result.AmountCents,
		Currency:     currency,
		ExpenseDate:  result.Date,
		ReceiptURL:   &url,
		PayoutStatus: StatusPendingApproval,
	}

	snapshot := struct {
		submissionContext
		Analysis *ReceiptAnalysis `json:"analysis"`
	}{
		submissionContext: submissionContext{
			Channel:     "receipt",
			SubmittedAt: time.Now().UTC().Format(time.RFC3339),
			SubmittedBy: uploadedBy,
			Confidence:  result.Confidence,
		},
		Analysis: result,
	}
	e.Metadata, _ = json.Marshal(snapshot)

	if err := s.repo.CreateExpense(ctx, e); err != nil {
		return nil, nil, fmt.Errorf("creating expense: %w", err)
	}

	return e, result, nil
}

// Approve moves an expense from pending_approval to pending.
func (s *Service) Approve(ctx context.Context, id int64, approver string) (*Expense, error) {
	if strings.TrimSpace(approver) == "" {
		return nil, &ValidationError{Field: "approver", Reason: "must not be empty"}
	}

	e, err := s.repo.MarkApproved(ctx, id, approver)
	if err != nil {
		return nil, err
	}

	s.notifySubmitter(ctx, e, Notification{
		Kind:        NotifyApproved,
		Title:       e.Title,
		AmountCents: e.AmountCents,
		Currency:    e.Currency,
	})

	return e, nil
}

// Reject moves an expense from pending_approval to rejected.
func (s *Service) Reject(ctx context.Context, id int64, rejector, reason string) (*Expense, error) {
	if strings.TrimSpace(rejector) == "" {
		return nil, &ValidationError{Field: "rejector", Reason: "must not be empty"}
	}

	e, err := s.repo.MarkRejected(ctx, id, rejector, trimToNil(reason))
	if err != nil {
		return nil, err
	}

	s.notifySubmitter(ctx, e, Notification{
		Kind:        NotifyRejected,
		Title:       e.Title,
		AmountCents: e.AmountCents,
		Currency:    e.Currency,
		Reason:      strings.TrimSpace(reason),
	})

	return e, nil
}

// RecordPayout moves an approved expense from pending to completed, stamping
// the payout fields. The amount must still resolve to a positive number of
// cents; receipt-intake rows without one are rejected here.
func (s *Service) RecordPayout(ctx context.Context, id int64, txHash string) (*Expense, error) {
	e, err := s.repo.GetExpense(ctx, id)
	if err != nil {
		return nil, err
	}

	if e.AmountCents == nil || *e.AmountCents <= 0 {
		return nil, ErrInvalidAmount
	}

	e, err = s.repo.MarkPaid(ctx, id, trimToNil(txHash), *e.AmountCents)
	if err != nil {
		return nil, err
	}

	s.notifySubmitter(ctx, e, Notification{
		Kind:        NotifyPaid,
		Title:       e.Title,
		AmountCents: e.PayoutAmountCents,
		Currency:    e.Currency,
		TxHash:      strings.TrimSpace(txHash),
	})

	return e, nil
}

func (s *Service) Get(ctx context.Context, id int64) (*Expense, error) {
	return s.repo.GetExpense(ctx, id)
}

func (s *Service) List(ctx context.Context, filter ListFilter) ([]*Expense, error) {
	return s.repo.ListExpenses(ctx, filter)
}

// AttachImage uploads a supporting image and links it to the expense.
func (s *Service) AttachImage(ctx context.Context, expenseID int64, data []byte, fileName, mimeType string, description, uploadedBy string) (*Image, error) {
	if _, err := s.repo.GetExpense(ctx, expenseID); err != nil {
		return nil, err
	}

	if len(data) == 0 {
		return nil, &ValidationError{Field: "image", Reason: "image payload is empty"}
	}

	url, err := s.uploader.Upload(ctx, data, fileName, mimeType, "expense-images")
	if err != nil {
		return nil, &UploadError{Err: err}
	}

	img := &Image{
		ExpenseID:   expenseID,
		ImageURL:    url,
		Description: trimToNil(description),
		ImageType:   DefaultImageType,
		UploadedBy:  trimToNil(uploadedBy),
	}
	if err := s.repo.CreateImage(ctx, img); err != nil {
		return nil, fmt.Errorf("creating expense image: %w", err)
	}

	return img, nil
}

func (s *Service) ListImages(ctx context.Context, expenseID int64) ([]*Image, error) {
	return s.repo.ListImages(ctx, expenseID)
}

// UpdateImage changes image metadata only; the stored object is immutable.
func (s *Service) UpdateImage(ctx context.Context, id int64, description *string, imageType *string) (*Image, error) {
	img, err := s.repo.GetImage(ctx, id)
	if err != nil {
		return nil, err
	}

	if description != nil {
		img.Description = trimToNil(*description)
	}

	if imageType != nil && strings.TrimSpace(*imageType) != "" {
		img.ImageType = strings.TrimSpace(*imageType)
	}

	if err := s.repo.UpdateImage(ctx, img); err != nil {
		return nil, fmt.Errorf("updating expense image: %w", err)
	}

	return img, nil
}

func (s *Service) DeleteImage(ctx context.Context, id int64) error {
	return s.repo.DeleteImage(ctx, id)
}

// notifySubmitter resolves the submitter's address and delivers the
// notification. Expenses without a submitter reference (receipt intake) have
// nobody to notify.
func (s *Service) notifySubmitter(ctx context.Context, e *Expense, n Notification) {
	if e.SubmittedBy == nil {
		return
	}

	m, err := s.members.Get(ctx, *e.SubmittedBy)
	if err != nil {
		slog.Error("failed to resolve notification recipient", "expense_id", e.ID, "error", err)
		return
	}

	n.RecipientName = m.Name
	n.RecipientAddr = m.Email
	s.notify(ctx, n)
}

// notify delivers best-effort: failures are logged and swallowed so that
// lifecycle correctness never depends on email deliverability.
func (s *Service) notify(ctx context.Context, n Notification) {
	if s.notifier == nil {
		return
	}

	if err := s.notifier.Send(ctx, n); err != nil {
		slog.Error("failed to send notification", "kind", n.Kind, "error", err)
	}
}
