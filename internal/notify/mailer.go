package notify

import (
	"context"
	"fmt"

	"github.com/wneessen/go-mail"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/detroitcommons/commons/internal/expense"
)

// Mailer delivers lifecycle notifications over SMTP. Delivery is best-effort
// by contract: callers swallow errors, so Send just reports them.
type Mailer struct {
	client    *mail.Client
	from      string
	adminAddr string
	printer   *message.Printer
}

func New(host string, port int, user, password, from, adminAddr string) (*Mailer, error) {
	client, err := mail.NewClient(host,
		mail.WithPort(port),
		mail.WithSMTPAuth(mail.SMTPAuthPlain),
		mail.WithUsername(user),
		mail.WithPassword(password),
	)
	if err != nil {
		return nil, fmt.Errorf("creating mail client: %w", err)
	}

	return &Mailer{
		client:    client,
		from:      from,
		adminAddr: adminAddr,
		printer:   message.NewPrinter(language.AmericanEnglish),
	}, nil
}

func (m *Mailer) Send(ctx context.Context, n expense.Notification) error {
	subject, body := m.render(n)

	to := n.RecipientAddr
	if n.Kind == expense.NotifySubmitted {
		to = m.adminAddr
	}

	if to == "" {
		return nil
	}

	msg := mail.NewMsg()
	if err := msg.From(m.from); err != nil {
		return fmt.Errorf("setting sender: %w", err)
	}

	if err := msg.To(to); err != nil {
		return fmt.Errorf("setting recipient: %w", err)
	}

	msg.Subject(subject)
	msg.SetBodyString(mail.TypeTextPlain, body)

	if err := m.client.DialAndSendWithContext(ctx, msg); err != nil {
		return fmt.Errorf("sending %s notification: %w", n.Kind, err)
	}

	return nil
}

// formatAmount renders cents as a grouped decimal, e.g. 150000 -> "1,500.00 USD".
func (m *Mailer) formatAmount(cents *int64, currency string) string {
	if cents == nil {
		return "an unresolved amount"
	}

	return m.printer.Sprintf("%.2f %s", float64(*cents)/100.0, currency)
}

func (m *Mailer) render(n expense.Notification) (string, string) {
	name := n.RecipientName
	if name == "" {
		name = "there"
	}

	amount := m.formatAmount(n.AmountCents, n.Currency)

	switch n.Kind {
	case expense.NotifySubmitted:
		return fmt.Sprintf("New expense submitted: %s", n.Title),
			fmt.Sprintf("A new expense %q for %s is waiting for review.\n", n.Title, amount)

	case expense.NotifyApproved:
		return fmt.Sprintf("Your expense was approved: %s", n.Title),
			fmt.Sprintf("Hi %s,\n\nYour expense %q for %s was approved and is queued for payout.\n", name, n.Title, amount)

	case expense.NotifyRejected:
		body := fmt.Sprintf("Hi %s,\n\nYour expense %q for %s was rejected.\n", name, n.Title, amount)
		if n.Reason != "" {
			body += fmt.Sprintf("\nReason: %s\n", n.Reason)
		}

		return fmt.Sprintf("Your expense was rejected: %s", n.Title), body

	case expense.NotifyPaid:
		body := fmt.Sprintf("Hi %s,\n\nYour expense %q was reimbursed for %s.\n", name, n.Title, amount)
		if n.TxHash != "" {
			body += fmt.Sprintf("\nTransaction: %s\n", n.TxHash)
		}

		return fmt.Sprintf("Your expense was paid: %s", n.Title), body
	}

	return fmt.Sprintf("Expense update: %s", n.Title),
		fmt.Sprintf("Hi %s,\n\nThere is an update on your expense %q.\n", name, n.Title)
}
