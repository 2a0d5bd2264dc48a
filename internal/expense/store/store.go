package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/detroitcommons/commons/internal/expense"
)

type Store struct {
	db *sql.DB
}

func New(db *sql.DB) *Store {
	return &Store{db: db}
}

// scanner is satisfied by both *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

const selectExpenseColumns = `
	id, title, merchant, category, notes, amount_cents, currency, expense_date,
	submitted_by, receipt_url, metadata, payout_address, payout_status,
	payout_tx_hash, payout_amount_cents, payout_date,
	approved_by, approved_at, rejected_by, rejected_at, rejection_reason,
	created_at, updated_at
`

// scanExpense reads an expense row in selectExpenseColumns order.
func scanExpense(s scanner) (*expense.Expense, error) {
	var e expense.Expense

	var statusStr string

	if err := s.Scan(
		&e.ID, &e.Title, &e.Merchant, &e.Category, &e.Notes, &e.AmountCents,
		&e.Currency, &e.ExpenseDate,
		&e.SubmittedBy, &e.ReceiptURL, &e.Metadata, &e.PayoutAddress, &statusStr,
		&e.PayoutTxHash, &e.PayoutAmountCents, &e.PayoutDate,
		&e.ApprovedBy, &e.ApprovedAt, &e.RejectedBy, &e.RejectedAt, &e.RejectionReason,
		&e.CreatedAt, &e.UpdatedAt,
	); err != nil {
		return nil, err
	}

	e.PayoutStatus = expense.Status(statusStr)

	return &e, nil
}

func (s *Store) CreateExpense(ctx context.Context, e *expense.Expense) error {
	query := `
		INSERT INTO expenses (
			title, merchant, category, notes, amount_cents, currency, expense_date,
			submitted_by, receipt_url, metadata, payout_address, payout_status, created_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, NOW())
		RETURNING id, created_at
	`

	err := s.db.QueryRowContext(ctx, query,
		e.Title,
		e.Merchant,
		e.Category,
		e.Notes,
		e.AmountCents,
		e.Currency,
		e.ExpenseDate,
		e.SubmittedBy,
		e.ReceiptURL,
		e.Metadata,
		e.PayoutAddress,
		e.PayoutStatus,
	).Scan(&e.ID, &e.CreatedAt)
	if err != nil {
		return fmt.Errorf("creating expense: %w", err)
	}

	return nil
}

func (s *Store) GetExpense(ctx context.Context, id int64) (*expense.Expense, error) {
	query := `SELECT ` + selectExpenseColumns + ` FROM expenses WHERE id = $1`

	e, err := scanExpense(s.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, expense.ErrNotFound
		}

		return nil, fmt.Errorf("getting expense: %w", err)
	}

	return e, nil
}

func (s *Store) ListExpenses(ctx context.Context, filter expense.ListFilter) ([]*expense.Expense, error) {
	query := `SELECT ` + selectExpenseColumns + ` FROM expenses WHERE 1=1`

	var args []any

	argIdx := 1

	if filter.Status != nil {
		query += fmt.Sprintf(" AND payout_status = $%d", argIdx)

		args = append(args, *filter.Status)
		argIdx++
	}

	if filter.SubmitterID != nil {
		query += fmt.Sprintf(" AND submitted_by = $%d", argIdx)

		args = append(args, *filter.SubmitterID)
		argIdx++
	}

	query += " ORDER BY created_at ASC"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing expenses: %w", err)
	}
	defer rows.Close()

	var expenses []*expense.Expense

	for rows.Next() {
		e, err := scanExpense(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning expense: %w", err)
		}

		expenses = append(expenses, e)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating expense rows: %w", err)
	}

	return expenses, nil
}

// markStatus runs a conditional update: the status write only lands when the
// row is still in the event's required source state. Zero rows affected means
// the row is gone or the state is stale; a follow-up read decides which.
func (s *Store) markStatus(ctx context.Context, id int64, event expense.Event, setClause string, args ...any) (*expense.Expense, error) {
	from, err := expense.SourceState(event)
	if err != nil {
		return nil, err
	}

	to, err := expense.Transition(from, event)
	if err != nil {
		return nil, err
	}

	// $1 = id, $2 = target status, $3 = required source status; extra args
	// start at $4.
	query := fmt.Sprintf(`
		UPDATE expenses
		SET payout_status = $2, updated_at = NOW()%s
		WHERE id = $1 AND payout_status = $3
		RETURNING `+selectExpenseColumns, setClause)

	queryArgs := append([]any{id, to, from}, args...)

	e, scanErr := scanExpense(s.db.QueryRowContext(ctx, query, queryArgs...))
	if scanErr == nil {
		return e, nil
	}

	if scanErr != sql.ErrNoRows {
		return nil, fmt.Errorf("updating expense status: %w", scanErr)
	}

	current, getErr := s.GetExpense(ctx, id)
	if getErr != nil {
		return nil, getErr
	}

	return nil, &expense.InvalidTransitionError{Current: current.PayoutStatus, Event: event}
}

func (s *Store) MarkApproved(ctx context.Context, id int64, approver string) (*expense.Expense, error) {
	return s.markStatus(ctx, id, expense.EventApprove,
		", approved_by = $4, approved_at = NOW()", approver)
}

func (s *Store) MarkRejected(ctx context.Context, id int64, rejector string, reason *string) (*expense.Expense, error) {
	return s.markStatus(ctx, id, expense.EventReject,
		", rejected_by = $4, rejected_at = NOW(), rejection_reason = $5", rejector, reason)
}

func (s *Store) MarkPaid(ctx context.Context, id int64, txHash *string, amountCents int64) (*expense.Expense, error) {
	return s.markStatus(ctx, id, expense.EventPay,
		", payout_tx_hash = $4, payout_amount_cents = $5, payout_date = NOW()", txHash, amountCents)
}

// Expected column order: id, expense_id, image_url, description, image_type, uploaded_by, created_at
func scanImage(s scanner) (*expense.Image, error) {
	var img expense.Image

	if err := s.Scan(
		&img.ID, &img.ExpenseID, &img.ImageURL, &img.Description,
		&img.ImageType, &img.UploadedBy, &img.CreatedAt,
	); err != nil {
		return nil, err
	}

	return &img, nil
}

const selectImageColumns = `
	id, expense_id, image_url, description, image_type, uploaded_by, created_at
`

func (s *Store) CreateImage(ctx context.Context, img *expense.Image) error {
	query := `
		INSERT INTO expense_images (expense_id, image_url, description, image_type, uploaded_by, created_at)
		VALUES ($1, $2, $3, $4, $5, NOW())
		RETURNING id, created_at
	`

	err := s.db.QueryRowContext(ctx, query,
		img.ExpenseID,
		img.ImageURL,
		img.Description,
		img.ImageType,
		img.UploadedBy,
	).Scan(&img.ID, &img.CreatedAt)
	if err != nil {
		return fmt.Errorf("creating expense image: %w", err)
	}

	return nil
}

func (s *Store) GetImage(ctx context.Context, id int64) (*expense.Image, error) {
	query := `SELECT ` + selectImageColumns + ` FROM expense_images WHERE id = $1`

	img, err := scanImage(s.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, expense.ErrImageNotFound
		}

		return nil, fmt.Errorf("getting expense image: %w", err)
	}

	return img, nil
}

func (s *Store) ListImages(ctx context.Context, expenseID int64) ([]*expense.Image, error) {
	query := `SELECT ` + selectImageColumns + `
		FROM expense_images
		WHERE expense_id = $1
		ORDER BY created_at ASC`

	rows, err := s.db.QueryContext(ctx, query, expenseID)
	if err != nil {
		return nil, fmt.Errorf("listing expense images: %w", err)
	}
	defer rows.Close()

	var images []*expense.Image

	for rows.Next() {
		img, err := scanImage(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning expense image: %w", err)
		}

		images = append(images, img)
	}

	return images, nil
}

func (s *Store) UpdateImage(ctx context.Context, img *expense.Image) error {
	query := `
		UPDATE expense_images
		SET description = $1, image_type = $2
		WHERE id = $3
	`

	_, err := s.db.ExecContext(ctx, query, img.Description, img.ImageType, img.ID)
	if err != nil {
		return fmt.Errorf("updating expense image: %w", err)
	}

	return nil
}

// DeleteImage removes the row only; the stored object is retained as
// historical proof.
func (s *Store) DeleteImage(ctx context.Context, id int64) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM expense_images WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("deleting expense image: %w", err)
	}

	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return expense.ErrImageNotFound
	}

	return nil
}
