package view

import (
	"fmt"
	"strconv"

	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/MrJamesThe3rd/notemarket/internal/listing"
)

type listState int

const (
	listStateBrowse listState = iota
	listStateEdit
)

var statusFilters = []struct {
	label  string
	status []listing.Status
}{
	{label: "All"},
	{label: "Draft", status: []listing.Status{listing.StatusDraft}},
	{label: "Active", status: []listing.Status{listing.StatusActive}},
	{label: "Pending", status: []listing.Status{listing.StatusPending}},
	{label: "Sold", status: []listing.Status{listing.StatusSold}},
	{label: "Expired", status: []listing.Status{listing.StatusExpired}},
}

var sortOrders = []listing.SortField{
	listing.SortNewest, listing.SortPopular, listing.SortPriceDesc, listing.SortYieldDesc,
}

// ListingsModel browses every listing and lets the operator correct the
// engagement counters.
type ListingsModel struct {
	CommonModel
	listingService *listing.Service

	state    listState
	table    table.Model
	listings []*listing.Listing
	total    int
	form     *huh.Form

	statusFilterIdx int
	sortIdx         int

	loading bool
	err     error
	status  string

	formViews     string
	formFavorites string
	formInquiries string
}

func NewListingsModel(common CommonModel, svc *listing.Service) ListingsModel {
	columns := []table.Column{
		{Title: "Created", Width: 11},
		{Title: "Status", Width: 8},
		{Title: "Review", Width: 9},
		{Title: "Asking", Width: 14},
		{Title: "Yield", Width: 7},
		{Title: "Views", Width: 6},
		{Title: "Favs", Width: 5},
		{Title: "Inq", Width: 4},
		{Title: "Title", Width: 40},
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

	return ListingsModel{
		CommonModel:    common,
		listingService: svc,
		table:          t,
		loading:        true,
	}
}

func (m ListingsModel) Title() string { return "Listings" }

func (m ListingsModel) ShortHelp() string {
	if m.state == listStateEdit {
		return "Navigate form | Esc: cancel"
	}

	return "Esc: back | c: counters | s: status filter | o: sort | r: refresh"
}

func (m ListingsModel) Init() tea.Cmd {
	return m.loadCmd()
}

func (m ListingsModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case loadListingsMsg:
		m.loading = false
		if msg.err != nil {
			m.err = msg.err
			return m, nil
		}

		m.err = nil
		m.listings = msg.listings
		m.total = msg.total
		m.refreshTable()

		return m, nil

	case countersSavedMsg:
		m.status = "Counters updated."
		if msg.err != nil {
			m.status = fmt.Sprintf("Error saving: %v", msg.err)
		}

		m.state = listStateBrowse
		m.form = nil
		m.table.Focus()

		return m, m.loadCmd()

	case tea.WindowSizeMsg:
		m.table.SetHeight(msg.Height - 10)
		return m, nil
	}

	switch m.state {
	case listStateBrowse:
		return m.updateBrowse(msg)
	case listStateEdit:
		return m.updateEdit(msg)
	}

	return m, nil
}

func (m ListingsModel) updateBrowse(msg tea.Msg) (tea.Model, tea.Cmd) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok {
		switch keyMsg.String() {
		case "esc":
			return m, Back
		case "r":
			m.loading = true
			return m, m.loadCmd()
		case "c":
			return m.enterEditMode()
		case "s":
			m.statusFilterIdx = (m.statusFilterIdx + 1) % len(statusFilters)
			return m, m.loadCmd()
		case "o":
			m.sortIdx = (m.sortIdx + 1) % len(sortOrders)
			return m, m.loadCmd()
		}
	}

	var cmd tea.Cmd
	m.table, cmd = m.table.Update(msg)

	return m, cmd
}

func (m ListingsModel) enterEditMode() (tea.Model, tea.Cmd) {
	idx := m.table.Cursor()
	if idx < 0 || idx >= len(m.listings) {
		return m, nil
	}

	l := m.listings[idx]
	m.formViews = strconv.FormatInt(l.ViewCount, 10)
	m.formFavorites = strconv.FormatInt(l.FavoriteCount, 10)
	m.formInquiries = strconv.FormatInt(l.InquiryCount, 10)

	m.form = huh.NewForm(
		huh.NewGroup(
			huh.NewInput().Key("views").Title("Views").Value(&m.formViews).Validate(nonNegative),
			huh.NewInput().Key("favorites").Title("Favorites").Value(&m.formFavorites).Validate(nonNegative),
			huh.NewInput().Key("inquiries").Title("Inquiries").Value(&m.formInquiries).Validate(nonNegative),
		),
	).WithWidth(40).WithShowHelp(false)

	m.state = listStateEdit
	m.table.Blur()

	return m, m.form.Init()
}

func nonNegative(s string) error {
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil || n < 0 {
		return fmt.Errorf("enter a whole number of zero or more")
	}

	return nil
}

func (m ListingsModel) updateEdit(msg tea.Msg) (tea.Model, tea.Cmd) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok && keyMsg.Type == tea.KeyEsc {
		m.state = listStateBrowse
		m.form = nil
		m.table.Focus()

		return m, nil
	}

	form, cmd := m.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		m.form = f
	}

	if m.form.State != huh.StateCompleted {
		return m, cmd
	}

	return m, m.saveCountersCmd()
}

func (m ListingsModel) View() string {
	if m.loading {
		return lipgloss.NewStyle().Padding(2).Render("Loading listings...")
	}

	if m.err != nil {
		return lipgloss.NewStyle().Padding(2).Render(errorStyle.Render(fmt.Sprintf("Error: %v", m.err)))
	}

	header := fmt.Sprintf(
		"Filter: [s] Status: %s | [o] Sort: %s | %d listings",
		activeStyle(statusFilters[m.statusFilterIdx].label),
		activeStyle(string(sortOrders[m.sortIdx])),
		m.total,
	)

	tableView := lipgloss.NewStyle().
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(lipgloss.Color("240")).
		Render(m.table.View())

	content := lipgloss.JoinVertical(lipgloss.Left,
		lipgloss.NewStyle().PaddingBottom(1).Render(header),
		tableView,
	)

	if m.state == listStateEdit && m.form != nil {
		title := ""
		if idx := m.table.Cursor(); idx >= 0 && idx < len(m.listings) {
			title = m.listings[idx].Title
		}

		panel := panelStyle.Width(44).Render(fmt.Sprintf("Adjust counters\n\n%s\n\n%s", title, m.form.View()))
		content = lipgloss.JoinHorizontal(lipgloss.Top, content, panel)
	}

	if m.status != "" {
		content = faintStyle.Render(m.status) + "\n" + content
	}

	return lipgloss.NewStyle().Padding(1).Render(content)
}

func (m *ListingsModel) refreshTable() {
	rows := make([]table.Row, 0, len(m.listings))
	for _, l := range m.listings {
		rows = append(rows, table.Row{
			FormatDate(l.CreatedAt),
			string(l.Status),
			string(l.VerificationStatus),
			FormatCents(l.AskingPrice),
			l.Yield.StringFixed(2),
			strconv.FormatInt(l.ViewCount, 10),
			strconv.FormatInt(l.FavoriteCount, 10),
			strconv.FormatInt(l.InquiryCount, 10),
			l.Title,
		})
	}

	m.table.SetRows(rows)
}

type loadListingsMsg struct {
	listings []*listing.Listing
	total    int
	err      error
}

func (m ListingsModel) loadCmd() tea.Cmd {
	filter := listing.ListFilter{
		Statuses: statusFilters[m.statusFilterIdx].status,
		Sort:     sortOrders[m.sortIdx],
		Limit:    200,
	}

	return func() tea.Msg {
		ctx, cancel := DbCtx()
		defer cancel()

		page, err := m.listingService.List(ctx, m.Operator, filter)
		if err != nil {
			return loadListingsMsg{err: err}
		}

		return loadListingsMsg{listings: page.Listings, total: page.Total}
	}
}

type countersSavedMsg struct {
	err error
}

func (m ListingsModel) saveCountersCmd() tea.Cmd {
	idx := m.table.Cursor()
	if idx < 0 || idx >= len(m.listings) {
		return nil
	}

	id := m.listings[idx].ID
	views, _ := strconv.ParseInt(m.form.GetString("views"), 10, 64)
	favorites, _ := strconv.ParseInt(m.form.GetString("favorites"), 10, 64)
	inquiries, _ := strconv.ParseInt(m.form.GetString("inquiries"), 10, 64)

	return func() tea.Msg {
		ctx, cancel := DbCtx()
		defer cancel()

		_, err := m.listingService.AdjustCounters(ctx, m.Operator, id, listing.Counters{
			Views:     views,
			Favorites: favorites,
			Inquiries: inquiries,
		})

		return countersSavedMsg{err: err}
	}
}
