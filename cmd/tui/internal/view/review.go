package view

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/MrJamesThe3rd/notemarket/internal/listing"
)

type reviewState int

const (
	reviewStateBrowse reviewState = iota
	reviewStateNote
)

// ReviewModel walks the queue of listings waiting for verification.
type ReviewModel struct {
	CommonModel
	listingService *listing.Service

	state      reviewState
	queue      []*listing.Listing
	current    *listing.Listing
	totalCount int

	form     *huh.Form
	decision listing.VerificationStatus
	note     string

	status  string
	loading bool
}

func NewReviewModel(common CommonModel, svc *listing.Service) ReviewModel {
	return ReviewModel{
		CommonModel:    common,
		listingService: svc,
		status:         "Loading review queue...",
		loading:        true,
	}
}

func (m ReviewModel) Title() string { return "Listing Review" }

func (m ReviewModel) ShortHelp() string {
	if m.state == reviewStateNote {
		return "Enter: submit | Esc: cancel"
	}

	return "v: verify | x: reject | n: skip | Esc: back"
}

func (m ReviewModel) Init() tea.Cmd {
	return m.loadQueueCmd()
}

func (m ReviewModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case loadQueueMsg:
		m.loading = false
		if msg.err != nil {
			m.status = fmt.Sprintf("Error loading queue: %v", msg.err)
			return m, nil
		}

		m.queue = msg.listings
		m.totalCount = msg.total
		m.next()

		return m, nil

	case reviewResultMsg:
		m.state = reviewStateBrowse
		m.form = nil

		if msg.err != nil {
			m.status = errorStyle.Render(fmt.Sprintf("Error saving review: %v", msg.err))
			return m, nil
		}

		m.next()

		return m, nil
	}

	if m.state == reviewStateNote {
		return m.updateNote(msg)
	}

	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok || m.loading {
		return m, nil
	}

	switch keyMsg.String() {
	case "esc":
		return m, Back
	case "n":
		if m.current != nil {
			m.next()
		}
	case "v":
		if m.current != nil {
			return m.askNote(listing.VerificationVerified)
		}
	case "x":
		if m.current != nil {
			return m.askNote(listing.VerificationRejected)
		}
	}

	return m, nil
}

func (m ReviewModel) askNote(decision listing.VerificationStatus) (tea.Model, tea.Cmd) {
	m.decision = decision
	m.note = ""

	note := huh.NewText().
		Key("note").
		Title("Note for the seller").
		Value(&m.note)

	if decision == listing.VerificationRejected {
		note = note.Validate(func(s string) error {
			if strings.TrimSpace(s) == "" {
				return fmt.Errorf("explain why the listing was rejected")
			}

			return nil
		})
	}

	m.form = huh.NewForm(huh.NewGroup(note)).WithWidth(60).WithShowHelp(false)
	m.state = reviewStateNote

	return m, m.form.Init()
}

func (m ReviewModel) updateNote(msg tea.Msg) (tea.Model, tea.Cmd) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok && keyMsg.Type == tea.KeyEsc {
		m.state = reviewStateBrowse
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

	return m, m.reviewCmd(m.current, m.decision, m.form.GetString("note"))
}

func (m *ReviewModel) next() {
	if len(m.queue) == 0 {
		m.current = nil
		m.status = okStyle.Render("Review queue is empty.")

		return
	}

	m.current = m.queue[0]
	m.queue = m.queue[1:]
	m.status = fmt.Sprintf("Reviewing %d/%d", m.totalCount-len(m.queue), m.totalCount)
}

func (m ReviewModel) View() string {
	if m.loading || m.current == nil {
		return lipgloss.NewStyle().Padding(2).Render(m.status + "\n\n" + faintStyle.Render("(Esc to back)"))
	}

	l := m.current
	details := fmt.Sprintf(
		"%s\n\n"+
			"Address:   %s, %s, %s %s\n"+
			"Note:      %s, lien %d, %s\n"+
			"Property:  %s valued at %s\n"+
			"UPB:       %s at %s%%\n"+
			"Payment:   %s/mo, %d months left\n"+
			"Asking:    %s (yield %s%%, LTV %s%%)\n"+
			"Submitted: %s\n",
		headerStyle.Render(l.Title),
		l.Address, l.City, l.State, l.Zip,
		l.NoteType, l.LienPosition, l.PerformanceStatus,
		l.PropertyType, FormatCents(l.PropertyValue),
		FormatCents(l.UnpaidBalance), l.InterestRate.StringFixed(3),
		FormatCents(l.MonthlyPayment), l.RemainingTermMonths,
		FormatCents(l.AskingPrice), l.Yield.StringFixed(2), l.LoanToValue().StringFixed(2),
		FormatDate(l.CreatedAt),
	)

	if l.Description != "" {
		details += "\n" + faintStyle.Render(l.Description) + "\n"
	}

	content := lipgloss.JoinVertical(lipgloss.Left, m.status, "", details)

	if m.state == reviewStateNote && m.form != nil {
		title := "Verify listing"
		if m.decision == listing.VerificationRejected {
			title = "Reject listing"
		}

		content = lipgloss.JoinHorizontal(lipgloss.Top, content,
			panelStyle.Width(64).Render(title+"\n\n"+m.form.View()))
	}

	return lipgloss.NewStyle().Padding(2).Render(content + "\n\n" + faintStyle.Render(m.ShortHelp()))
}

type loadQueueMsg struct {
	listings []*listing.Listing
	total    int
	err      error
}

func (m ReviewModel) loadQueueCmd() tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := DbCtx()
		defer cancel()

		page, err := m.listingService.List(ctx, m.Operator, listing.ListFilter{
			Verification: new(listing.VerificationPending),
			Sort:         listing.SortNewest,
			Limit:        200,
		})
		if err != nil {
			return loadQueueMsg{err: err}
		}

		return loadQueueMsg{listings: page.Listings, total: len(page.Listings)}
	}
}

type reviewResultMsg struct {
	err error
}

func (m ReviewModel) reviewCmd(l *listing.Listing, decision listing.VerificationStatus, note string) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := DbCtx()
		defer cancel()

		_, err := m.listingService.Review(ctx, m.Operator, l.ID, decision, strings.TrimSpace(note))

		return reviewResultMsg{err: err}
	}
}
