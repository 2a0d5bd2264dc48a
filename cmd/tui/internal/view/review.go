package view

import (
	"context"
	"fmt"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/detroitcommons/commons/internal/category"
	"github.com/detroitcommons/commons/internal/expense"
)

// ReviewModel steps through the pending_approval queue one expense at a
// time: approve, or reject with a reason.
type ReviewModel struct {
	CommonModel
	expenseService  *expense.Service
	categoryService *category.Service
	reviewer        string

	state ReviewState

	queue      []*expense.Expense
	current    *expense.Expense
	suggestion string

	reasonInput textinput.Model

	status     string
	loading    bool
	totalCount int
}

type ReviewState int

const (
	StateReviewing ReviewState = iota
	StateInputReason
)

func NewReviewModel(expSvc *expense.Service, catSvc *category.Service, reviewer string) ReviewModel {
	ri := textinput.New()
	ri.Placeholder = "Reason for rejection"
	ri.Width = 50

	return ReviewModel{
		expenseService:  expSvc,
		categoryService: catSvc,
		reviewer:        reviewer,
		reasonInput:     ri,
		state:           StateReviewing,
		status:          "Loading pending expenses...",
		loading:         true,
	}
}

func (m ReviewModel) Init() tea.Cmd {
	return m.loadPendingCmd()
}

func (m ReviewModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyMsg:
		if m.loading {
			return m, nil
		}

		switch msg.Type {
		case tea.KeyEsc:
			if m.state == StateInputReason {
				m.state = StateReviewing
				m.reasonInput.Blur()

				return m, nil
			}

			return m, Back

		case tea.KeyEnter:
			if m.state == StateInputReason && m.current != nil {
				m.loading = true
				return m, m.rejectCmd(m.reasonInput.Value())
			}
		}

		if m.state == StateReviewing && m.current != nil {
			switch msg.String() {
			case "a":
				m.loading = true
				return m, m.approveCmd()
			case "r":
				m.state = StateInputReason
				m.reasonInput.SetValue("")
				m.reasonInput.Focus()

				return m, textinput.Blink
			case "s":
				m.nextExpense()
				return m, nil
			}
		}

	case loadPendingMsg:
		m.loading = false
		if msg.err != nil {
			m.status = fmt.Sprintf("Error loading expenses: %v", msg.err)
			break
		}

		m.queue = msg.expenses
		m.totalCount = len(m.queue)

		if len(m.queue) > 0 {
			m.nextExpense()
			break
		}

		m.status = "No pending expenses."

	case decisionResultMsg:
		m.loading = false
		m.state = StateReviewing
		m.reasonInput.Blur()

		if msg.err != nil {
			m.status = fmt.Sprintf("Error saving decision: %v", msg.err)
			break
		}

		m.nextExpense()
	}

	if m.state == StateInputReason {
		m.reasonInput, cmd = m.reasonInput.Update(msg)
	}

	return m, cmd
}

func (m ReviewModel) View() string {
	content := ""

	switch {
	case m.loading:
		content = "Working..."
	case m.current != nil:
		merchant := "—"
		if m.current.Merchant != nil {
			merchant = *m.current.Merchant
		}

		category := "—"
		if m.current.Category != nil {
			category = *m.current.Category
		} else if m.suggestion != "" {
			category = m.suggestion + " (suggested)"
		}

		receipt := ""
		if m.current.ReceiptURL != nil {
			receipt = fmt.Sprintf("Receipt: %s\n", *m.current.ReceiptURL)
		}

		info := fmt.Sprintf(
			"Title:    %s\nMerchant: %s\nCategory: %s\nAmount:   %s\nSubmitted: %s\n%s",
			m.current.Title,
			merchant,
			category,
			FormatAmount(m.current.AmountCents, m.current.Currency),
			FormatDate(m.current.CreatedAt),
			receipt,
		)

		if m.state == StateInputReason {
			content = fmt.Sprintf("%s\n%s\n\nRejection reason:\n%s\n\n(Enter to reject, Esc to cancel)",
				m.status, info, m.reasonInput.View())
		} else {
			content = fmt.Sprintf("%s\n%s\n\n(a: approve, r: reject, s: skip, Esc to quit)", m.status, info)
		}
	default:
		content = m.status + "\n\n(Esc to back)"
	}

	return lipgloss.NewStyle().Padding(2).Render(content)
}

type loadPendingMsg struct {
	expenses []*expense.Expense
	err      error
}

func (m ReviewModel) loadPendingCmd() tea.Cmd {
	return func() tea.Msg {
		status := expense.StatusPendingApproval
		filter := expense.ListFilter{Status: &status}

		expenses, err := m.expenseService.List(context.Background(), filter)

		return loadPendingMsg{expenses: expenses, err: err}
	}
}

func (m *ReviewModel) nextExpense() {
	if len(m.queue) == 0 {
		m.current = nil
		m.status = "All done! No more pending expenses."

		return
	}

	e := m.queue[0]
	m.queue = m.queue[1:]
	m.current = e
	m.suggestion = ""

	currentIdx := m.totalCount - len(m.queue)
	m.status = fmt.Sprintf("Reviewing %d/%d", currentIdx, m.totalCount)

	if e.Category == nil && e.Merchant != nil {
		s, _ := m.categoryService.Suggest(context.Background(), *e.Merchant)
		m.suggestion = s
	}
}

type decisionResultMsg struct {
	err error
}

func (m ReviewModel) approveCmd() tea.Cmd {
	e := m.current

	return func() tea.Msg {
		ctx, cancel := DbCtx()
		defer cancel()

		// Remember the merchant's category so future submissions get
		// prefilled.
		if e.Merchant != nil && e.Category != nil {
			_ = m.categoryService.Learn(ctx, *e.Merchant, *e.Category)
		}

		_, err := m.expenseService.Approve(ctx, e.ID, m.reviewer)

		return decisionResultMsg{err: err}
	}
}

func (m ReviewModel) rejectCmd(reason string) tea.Cmd {
	e := m.current

	return func() tea.Msg {
		ctx, cancel := DbCtx()
		defer cancel()

		_, err := m.expenseService.Reject(ctx, e.ID, m.reviewer, reason)

		return decisionResultMsg{err: err}
	}
}
