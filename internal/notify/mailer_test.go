package notify

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/detroitcommons/commons/internal/expense"
)

func newMailer() *Mailer {
	return &Mailer{
		from:      "noreply@example.com",
		adminAddr: "treasury@example.com",
		printer:   message.NewPrinter(language.AmericanEnglish),
	}
}

func TestFormatAmount(t *testing.T) {
	m := newMailer()

	cents := int64(150000)
	assert.Equal(t, "1,500.00 USD", m.formatAmount(&cents, "USD"))

	cents = 575
	assert.Equal(t, "5.75 EUR", m.formatAmount(&cents, "EUR"))

	assert.Equal(t, "an unresolved amount", m.formatAmount(nil, "USD"))
}

func TestRender(t *testing.T) {
	m := newMailer()
	cents := int64(15000)

	t.Run("Submitted", func(t *testing.T) {
		subject, body := m.render(expense.Notification{
			Kind:        expense.NotifySubmitted,
			Title:       "Conference ticket",
			AmountCents: &cents,
			Currency:    "USD",
		})

		assert.Equal(t, "New expense submitted: Conference ticket", subject)
		assert.Contains(t, body, "150.00 USD")
		assert.Contains(t, body, "waiting for review")
	})

	t.Run("Approved", func(t *testing.T) {
		subject, body := m.render(expense.Notification{
			Kind:          expense.NotifyApproved,
			RecipientName: "Ada",
			Title:         "Conference ticket",
			AmountCents:   &cents,
			Currency:      "USD",
		})

		assert.Equal(t, "Your expense was approved: Conference ticket", subject)
		assert.Contains(t, body, "Hi Ada,")
		assert.Contains(t, body, "queued for payout")
	})

	t.Run("RejectedWithReason", func(t *testing.T) {
		_, body := m.render(expense.Notification{
			Kind:          expense.NotifyRejected,
			RecipientName: "Ada",
			Title:         "Conference ticket",
			AmountCents:   &cents,
			Currency:      "USD",
			Reason:        "not a community expense",
		})

		assert.Contains(t, body, "was rejected")
		assert.Contains(t, body, "Reason: not a community expense")
	})

	t.Run("RejectedWithoutReason", func(t *testing.T) {
		_, body := m.render(expense.Notification{
			Kind:  expense.NotifyRejected,
			Title: "Conference ticket",
		})

		assert.NotContains(t, body, "Reason:")
		assert.Contains(t, body, "Hi there,")
	})

	t.Run("Paid", func(t *testing.T) {
		subject, body := m.render(expense.Notification{
			Kind:          expense.NotifyPaid,
			RecipientName: "Ada",
			Title:         "Conference ticket",
			AmountCents:   &cents,
			Currency:      "USD",
			TxHash:        "0xdeadbeef",
		})

		assert.Equal(t, "Your expense was paid: Conference ticket", subject)
		assert.Contains(t, body, "Transaction: 0xdeadbeef")
	})

	t.Run("NullAmount", func(t *testing.T) {
		_, body := m.render(expense.Notification{
			Kind:  expense.NotifyApproved,
			Title: "Receipt",
		})

		require.Contains(t, body, "an unresolved amount")
	})
}
