package view

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/detroitcommons/commons/internal/expense"
)

type browseState int

const (
	browseStateTable browseState = iota
	browseStatePayout
)

// BrowseModel shows all expenses in a filterable table and records payouts
// for approved ones.
type BrowseModel struct {
	CommonModel
	expenseService *expense.Service

	state    browseState
	table    table.Model
	expenses []*expense.Expense
	form     *huh.Form

	statusFilterIdx int

	filter  expense.ListFilter
	loading bool
	err     error
	status  string

	formTxHash string
}

func NewBrowseModel(expSvc *expense.Service) BrowseModel {
	columns := []table.Column{
		{Title: "ID", Width: 6},
		{Title: "Created", Width: 12},
		{Title: "Status", Width: 18},
		{Title: "Amount", Width: 14},
		{Title: "Title", Width: 34},
		{Title: "Tx Hash", Width: 24},
	}

	t := table.New(
		table.WithColumns(columns),
		table.WithFocused(true),
		table.WithHeight(15),
	)

	s := table.DefaultStyles()
	s.Header = s.Header.
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(lipgloss.Color("240")).
		BorderBottom(true).
		Bold(false)
	s.Selected = s.Selected.
		Foreground(lipgloss.Color("229")).
		Background(lipgloss.Color("57")).
		Bold(false)
	t.SetStyles(s)

	return BrowseModel{
		expenseService: expSvc,
		table:          t,
		filter:         expense.ListFilter{},
	}
}

func (m BrowseModel) Init() tea.Cmd {
	return m.loadExpensesCmd()
}

func (m BrowseModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case loadBrowseMsg:
		m.loading = false
		if msg.err != nil {
			m.err = msg.err
			return m, nil
		}

		m.expenses = msg.expenses
		m.refreshTable()

		return m, nil

	case payoutSaveMsg:
		if msg.err != nil {
			m.status = fmt.Sprintf("Error recording payout: %v", msg.err)
		} else {
			m.status = "Payout recorded."
		}

		m.state = browseStateTable
		m.form = nil
		m.table.Focus()

		return m, m.loadExpensesCmd()

	case tea.WindowSizeMsg:
		m.table.SetHeight(msg.Height - 10)
		return m, nil
	}

	switch m.state {
	case browseStateTable:
		return m.updateTable(msg)
	case browseStatePayout:
		return m.updatePayout(msg)
	}

	return m, nil
}

func (m BrowseModel) updateTable(msg tea.Msg) (tea.Model, tea.Cmd) {
	keyMsg, ok := msg.(tea.KeyMsg)
	if ok {
		switch keyMsg.String() {
		case "esc":
			return m, Back
		case "r":
			m.loading = true
			return m, m.loadExpensesCmd()
		case "p":
			return m.enterPayoutMode()
		case "s":
			m.statusFilterIdx = (m.statusFilterIdx + 1) % 5
			m.applyFilter()

			return m, m.loadExpensesCmd()
		}
	}

	var cmd tea.Cmd
	m.table, cmd = m.table.Update(msg)

	return m, cmd
}

func (m BrowseModel) enterPayoutMode() (tea.Model, tea.Cmd) {
	idx := m.table.Cursor()
	if idx < 0 || idx >= len(m.expenses) {
		return m, nil
	}

	e := m.expenses[idx]
	if e.PayoutStatus != expense.StatusPending {
		m.status = fmt.Sprintf("Expense %d is %s, not pending payout", e.ID, e.PayoutStatus)
		return m, nil
	}

	m.formTxHash = ""
	m.form = huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Key("tx_hash").
				Title("Transaction Hash").
				Placeholder("0x...").
				Value(&m.formTxHash).
				Validate(func(s string) error {
					if s != "" && !strings.HasPrefix(s, "0x") {
						return fmt.Errorf("hash must start with 0x")
					}
					return nil
				}),
		),
	).WithWidth(45).WithShowHelp(false)

	m.state = browseStatePayout
	m.table.Blur()

	return m, m.form.Init()
}

func (m BrowseModel) updatePayout(msg tea.Msg) (tea.Model, tea.Cmd) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok {
		if keyMsg.Type == tea.KeyEsc {
			m.state = browseStateTable
			m.form = nil
			m.table.Focus()

			return m, nil
		}
	}

	form, cmd := m.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		m.form = f
	}

	if m.form.State != huh.StateCompleted {
		return m, cmd
	}

	return m, m.payoutCmd()
}

func (m BrowseModel) View() string {
	if m.loading {
		return lipgloss.NewStyle().Padding(2).Render("Loading expenses...")
	}

	if m.err != nil {
		return lipgloss.NewStyle().Padding(2).Render(fmt.Sprintf("Error: %v", m.err))
	}

	statusLabels := []string{"All", "Pending Approval", "Pending", "Completed", "Rejected"}

	header := fmt.Sprintf(
		"Filter: [s] Status: %s | [p] record payout | [r] refresh",
		activeStyle(statusLabels[m.statusFilterIdx]),
	)

	tableView := lipgloss.NewStyle().
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(lipgloss.Color("240")).
		Render(m.table.View())

	content := lipgloss.JoinVertical(lipgloss.Left,
		lipgloss.NewStyle().PaddingBottom(1).Render(header),
		tableView,
	)

	if m.state == browseStatePayout && m.form != nil {
		idx := m.table.Cursor()

		title := ""
		if idx >= 0 && idx < len(m.expenses) {
			title = m.expenses[idx].Title
		}

		panel := lipgloss.NewStyle().
			Padding(1, 2).
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("63")).
			Width(48).
			Render(
				fmt.Sprintf("Record Payout\n\nExpense: %s\n\n%s", title, m.form.View()),
			)

		content = lipgloss.JoinHorizontal(lipgloss.Top, content, panel)
	}

	if m.status != "" {
		content = lipgloss.NewStyle().Faint(true).Render(m.status) + "\n" + content
	}

	return lipgloss.NewStyle().Padding(1).Render(content)
}

func activeStyle(s string) string {
	return lipgloss.NewStyle().Foreground(lipgloss.Color("205")).Render(s)
}

func (m *BrowseModel) applyFilter() {
	statuses := []expense.Status{
		"",
		expense.StatusPendingApproval,
		expense.StatusPending,
		expense.StatusCompleted,
		expense.StatusRejected,
	}

	if m.statusFilterIdx == 0 {
		m.filter.Status = nil
		return
	}

	status := statuses[m.statusFilterIdx]
	m.filter.Status = &status
}

func (m *BrowseModel) refreshTable() {
	rows := make([]table.Row, 0, len(m.expenses))
	for _, e := range m.expenses {
		txHash := ""
		if e.PayoutTxHash != nil {
			txHash = *e.PayoutTxHash
		}

		rows = append(rows, table.Row{
			fmt.Sprintf("%d", e.ID),
			FormatDate(e.CreatedAt),
			string(e.PayoutStatus),
			FormatAmount(e.AmountCents, e.Currency),
			e.Title,
			txHash,
		})
	}

	m.table.SetRows(rows)
}

// Messages

type loadBrowseMsg struct {
	expenses []*expense.Expense
	err      error
}

func (m BrowseModel) loadExpensesCmd() tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := DbCtx()
		defer cancel()

		expenses, err := m.expenseService.List(ctx, m.filter)

		return loadBrowseMsg{expenses: expenses, err: err}
	}
}

type payoutSaveMsg struct {
	err error
}

func (m BrowseModel) payoutCmd() tea.Cmd {
	idx := m.table.Cursor()
	if idx < 0 || idx >= len(m.expenses) {
		return nil
	}

	e := m.expenses[idx]
	txHash := m.formTxHash

	return func() tea.Msg {
		ctx, cancel := DbCtx()
		defer cancel()

		_, err := m.expenseService.RecordPayout(ctx, e.ID, txHash)

		return payoutSaveMsg{err: err}
	}
}
