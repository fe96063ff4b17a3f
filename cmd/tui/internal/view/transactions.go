package view

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/notemarket/internal/transaction"
)

type txState int

const (
	txStateList txState = iota
	txStateChecklist
	txStateForm
)

type formPurpose int

const (
	formCompleteTask formPurpose = iota
	formSkipTask
	formCancel
)

// txItem wraps a transaction to implement list.Item.
type txItem struct {
	tx *transaction.Transaction
}

func (i txItem) Title() string {
	status := faintStyle.Render(fmt.Sprintf("[%s]", i.tx.Status))

	amount := "no amount"
	if i.tx.FinalAmount != nil {
		amount = FormatCents(*i.tx.FinalAmount)
	}

	return fmt.Sprintf("%s  %s  %s  %s", FormatDate(i.tx.CreatedAt), amount, status, i.tx.ID.String()[:8])
}

func (i txItem) Description() string {
	return fmt.Sprintf("Phase: %s | Listing %s", i.tx.CurrentPhase, i.tx.ListingID.String()[:8])
}

func (i txItem) FilterValue() string {
	return i.tx.ID.String() + " " + string(i.tx.Status)
}

var txStatusFilters = []struct {
	label  string
	status *transaction.Status
}{
	{label: "All"},
	{label: "Negotiations", status: new(transaction.StatusNegotiations)},
	{label: "Closing", status: new(transaction.StatusClosing)},
	{label: "Completed", status: new(transaction.StatusCompleted)},
	{label: "Cancelled", status: new(transaction.StatusCancelled)},
}

// ExportRequestMsg asks the console to open the closing package export for a
// transaction.
type ExportRequestMsg struct {
	TransactionID uuid.UUID
}

// TransactionsModel lists transactions and works a transaction's checklist as
// the platform.
type TransactionsModel struct {
	CommonModel
	txService *transaction.Service

	state    txState
	list     list.Model
	txs      []*transaction.Transaction
	filter   int
	detail   *transaction.Detail
	cursor   int
	form     *huh.Form
	purpose  formPurpose
	formText string

	loading bool
	status  string
}

func NewTransactionsModel(common CommonModel, txSvc *transaction.Service) TransactionsModel {
	l := list.New([]list.Item{}, txItemDelegate{}, 0, 0)
	l.Title = "Transactions"
	l.SetShowStatusBar(true)
	l.SetFilteringEnabled(true)
	l.SetShowHelp(true)

	return TransactionsModel{
		CommonModel: common,
		txService:   txSvc,
		list:        l,
		loading:     true,
	}
}

func (m TransactionsModel) Title() string { return "Transactions" }

func (m TransactionsModel) ShortHelp() string {
	switch m.state {
	case txStateList:
		return "Esc: back | Enter: open | s: status filter | /: filter"
	case txStateChecklist:
		return "↑/↓: task | c: complete | s: skip | a: advance | x: cancel | e: export | Esc: back"
	case txStateForm:
		return "Esc: cancel | Enter: submit"
	}

	return ""
}

func (m TransactionsModel) Init() tea.Cmd {
	return m.loadTxsCmd()
}

func (m TransactionsModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case loadTxsMsg:
		m.loading = false
		if msg.err != nil {
			m.status = errorStyle.Render(fmt.Sprintf("Error: %v", msg.err))
			return m, nil
		}

		m.txs = msg.txs
		m.refreshListItems()

		m.status = ""
		if len(msg.txs) == 0 {
			m.status = "No transactions found."
		}

		return m, nil

	case loadDetailMsg:
		m.loading = false
		if msg.err != nil {
			m.status = errorStyle.Render(fmt.Sprintf("Error: %v", msg.err))
			return m, nil
		}

		m.detail = msg.detail
		m.state = txStateChecklist

		if m.cursor >= len(m.detail.Tasks) {
			m.cursor = 0
		}

		return m, nil

	case txActionMsg:
		m.state = txStateChecklist
		m.form = nil

		if msg.err != nil {
			m.status = errorStyle.Render(fmt.Sprintf("Error: %v", msg.err))
		} else {
			m.status = okStyle.Render(msg.done)
		}

		return m, m.loadDetailCmd(m.detail.Transaction.ID)

	case tea.WindowSizeMsg:
		m.list.SetSize(msg.Width-4, msg.Height-8)
		return m, nil
	}

	switch m.state {
	case txStateList:
		return m.updateList(msg)
	case txStateChecklist:
		return m.updateChecklist(msg)
	case txStateForm:
		return m.updateForm(msg)
	}

	return m, nil
}

func (m TransactionsModel) updateList(msg tea.Msg) (tea.Model, tea.Cmd) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok && m.list.FilterState() != list.Filtering {
		switch keyMsg.String() {
		case "esc":
			return m, Back
		case "s":
			m.filter = (m.filter + 1) % len(txStatusFilters)
			m.loading = true

			return m, m.loadTxsCmd()
		case "enter":
			selected, ok := m.list.SelectedItem().(txItem)
			if !ok {
				return m, nil
			}

			m.loading = true
			m.cursor = 0
			m.status = ""

			return m, m.loadDetailCmd(selected.tx.ID)
		}
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)

	return m, cmd
}

func (m TransactionsModel) updateChecklist(msg tea.Msg) (tea.Model, tea.Cmd) {
	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok || m.detail == nil {
		return m, nil
	}

	t := m.detail.Transaction

	switch keyMsg.String() {
	case "esc":
		m.state = txStateList
		m.detail = nil
		m.status = ""

		return m, m.loadTxsCmd()
	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
		}
	case "down", "j":
		if m.cursor < len(m.detail.Tasks)-1 {
			m.cursor++
		}
	case "c":
		if task := m.selectedTask(); task != nil {
			return m.openForm(formCompleteTask, "Completion note (optional)", false)
		}
	case "s":
		if task := m.selectedTask(); task != nil {
			return m.openForm(formSkipTask, "Why is this task being skipped?", true)
		}
	case "x":
		return m.openForm(formCancel, "Cancellation reason", true)
	case "a":
		return m, m.actionCmd("Phase advanced.", func() error {
			ctx, cancel := DbCtx()
			defer cancel()

			_, err := m.txService.AdvancePhase(ctx, m.Operator, t.ID)

			return err
		})
	case "e":
		return m, func() tea.Msg { return ExportRequestMsg{TransactionID: t.ID} }
	}

	return m, nil
}

func (m TransactionsModel) selectedTask() *transaction.Task {
	if m.detail == nil || m.cursor < 0 || m.cursor >= len(m.detail.Tasks) {
		return nil
	}

	return m.detail.Tasks[m.cursor]
}

func (m TransactionsModel) openForm(purpose formPurpose, title string, required bool) (tea.Model, tea.Cmd) {
	m.purpose = purpose
	m.formText = ""

	input := huh.NewText().Key("text").Title(title).Value(&m.formText)
	if required {
		input = input.Validate(func(s string) error {
			if strings.TrimSpace(s) == "" {
				return fmt.Errorf("this field is required")
			}

			return nil
		})
	}

	m.form = huh.NewForm(huh.NewGroup(input)).WithWidth(60).WithShowHelp(false)
	m.state = txStateForm

	return m, m.form.Init()
}

func (m TransactionsModel) updateForm(msg tea.Msg) (tea.Model, tea.Cmd) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok && keyMsg.Type == tea.KeyEsc {
		m.state = txStateChecklist
		m.form = nil

		return m, nil
	}

	form, cmd := m.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		m.form = f
	}

	if m.form.State != huh.StateCompleted {
		return m, cmd
	}

	text := strings.TrimSpace(m.form.GetString("text"))
	txID := m.detail.Transaction.ID
	task := m.selectedTask()

	switch m.purpose {
	case formCompleteTask:
		return m, m.actionCmd("Task completed.", func() error {
			ctx, cancel := DbCtx()
			defer cancel()

			_, err := m.txService.CompleteTask(ctx, m.Operator, task.ID, text)

			return err
		})
	case formSkipTask:
		return m, m.actionCmd("Task skipped.", func() error {
			ctx, cancel := DbCtx()
			defer cancel()

			_, err := m.txService.SkipTask(ctx, m.Operator, task.ID, text)

			return err
		})
	case formCancel:
		return m, m.actionCmd("Transaction cancelled.", func() error {
			ctx, cancel := DbCtx()
			defer cancel()

			_, err := m.txService.Cancel(ctx, m.Operator, txID, text)

			return err
		})
	}

	return m, nil
}

func (m TransactionsModel) View() string {
	if m.loading {
		return lipgloss.NewStyle().Padding(2).Render("Loading transactions...")
	}

	switch m.state {
	case txStateList:
		header := fmt.Sprintf("[s] Status: %s", activeStyle(txStatusFilters[m.filter].label))
		if m.status != "" {
			header += "  " + faintStyle.Render(m.status)
		}

		return lipgloss.NewStyle().Padding(1).Render(header + "\n\n" + m.list.View())

	case txStateChecklist, txStateForm:
		content := m.checklistView()

		if m.state == txStateForm && m.form != nil {
			content = lipgloss.JoinHorizontal(lipgloss.Top, content, panelStyle.Width(64).Render(m.form.View()))
		}

		return lipgloss.NewStyle().Padding(1).Render(content)
	}

	return ""
}

func (m TransactionsModel) checklistView() string {
	if m.detail == nil {
		return ""
	}

	t := m.detail.Transaction

	amount := "not set"
	if t.FinalAmount != nil {
		amount = FormatCents(*t.FinalAmount)
	}

	var b strings.Builder

	fmt.Fprintf(&b, "%s\n", headerStyle.Render("Transaction "+t.ID.String()))
	fmt.Fprintf(&b, "Status: %s | Phase: %s | Final amount: %s\n", t.Status, t.CurrentPhase, amount)

	if t.CancelReason != "" {
		fmt.Fprintf(&b, "Cancelled: %s\n", t.CancelReason)
	}

	b.WriteString("\n")

	phase := transaction.Phase("")

	for i, task := range m.detail.Tasks {
		if task.Phase != phase {
			phase = task.Phase
			fmt.Fprintf(&b, "%s\n", activeStyle(strings.ToUpper(string(phase))))
		}

		cursor := "  "
		if i == m.cursor {
			cursor = "> "
		}

		required := ""
		if task.Required {
			required = " *"
		}

		line := fmt.Sprintf("%s%s %s (%s)%s", cursor, taskMark(task.Status), task.Title, task.Assignee, required)
		if i == m.cursor {
			line = lipgloss.NewStyle().Bold(true).Render(line)
		}

		b.WriteString(line + "\n")
	}

	if len(m.detail.Events) > 0 {
		b.WriteString("\n" + activeStyle("TIMELINE") + "\n")

		start := max(0, len(m.detail.Events)-5)
		for _, e := range m.detail.Events[start:] {
			fmt.Fprintf(&b, "%s  %-7s %s\n", e.CreatedAt.Format("2006-01-02 15:04"), e.Type, e.Title)
		}
	}

	if m.status != "" {
		b.WriteString("\n" + m.status + "\n")
	}

	b.WriteString("\n" + faintStyle.Render(m.ShortHelp()))

	return b.String()
}

func taskMark(s transaction.TaskStatus) string {
	switch s {
	case transaction.TaskComplete:
		return okStyle.Render("[x]")
	case transaction.TaskSkipped:
		return faintStyle.Render("[-]")
	case transaction.TaskFailed:
		return errorStyle.Render("[!]")
	}

	return "[ ]"
}

func (m *TransactionsModel) refreshListItems() {
	items := make([]list.Item, len(m.txs))
	for i, tx := range m.txs {
		items[i] = txItem{tx: tx}
	}

	m.list.SetItems(items)
}

// Messages

type loadTxsMsg struct {
	txs []*transaction.Transaction
	err error
}

func (m TransactionsModel) loadTxsCmd() tea.Cmd {
	status := txStatusFilters[m.filter].status

	return func() tea.Msg {
		ctx, cancel := DbCtx()
		defer cancel()

		txs, err := m.txService.ListAll(ctx, m.Operator, status)

		return loadTxsMsg{txs: txs, err: err}
	}
}

type loadDetailMsg struct {
	detail *transaction.Detail
	err    error
}

func (m TransactionsModel) loadDetailCmd(id uuid.UUID) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := DbCtx()
		defer cancel()

		d, err := m.txService.Get(ctx, m.Operator, id)

		return loadDetailMsg{detail: d, err: err}
	}
}

type txActionMsg struct {
	done string
	err  error
}

func (m TransactionsModel) actionCmd(done string, fn func() error) tea.Cmd {
	return func() tea.Msg {
		return txActionMsg{done: done, err: fn()}
	}
}

// txItemDelegate renders items in the list.
type txItemDelegate struct{}

func (d txItemDelegate) Height() int                             { return 2 }
func (d txItemDelegate) Spacing() int                            { return 0 }
func (d txItemDelegate) Update(_ tea.Msg, _ *list.Model) tea.Cmd { return nil }

func (d txItemDelegate) Render(w io.Writer, m list.Model, index int, item list.Item) {
	i, ok := item.(txItem)
	if !ok {
		return
	}

	title := i.Title()
	if index == m.Index() {
		title = lipgloss.NewStyle().Foreground(lipgloss.Color("205")).Bold(true).Render("> " + title)
	}

	fmt.Fprintf(w, "  %s\n", title)
	fmt.Fprintf(w, "    %s\n", faintStyle.Render(i.Description()))
}
