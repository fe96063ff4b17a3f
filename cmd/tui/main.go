package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/google/uuid"
	"github.com/joho/godotenv"

	"github.com/MrJamesThe3rd/notemarket/cmd/tui/internal/view"
	"github.com/MrJamesThe3rd/notemarket/internal/auth"
	"github.com/MrJamesThe3rd/notemarket/internal/config"
	"github.com/MrJamesThe3rd/notemarket/internal/database"
	"github.com/MrJamesThe3rd/notemarket/internal/events"
	"github.com/MrJamesThe3rd/notemarket/internal/export"
	"github.com/MrJamesThe3rd/notemarket/internal/listing"
	listingStore "github.com/MrJamesThe3rd/notemarket/internal/listing/store"
	"github.com/MrJamesThe3rd/notemarket/internal/transaction"
	txStore "github.com/MrJamesThe3rd/notemarket/internal/transaction/store"
	"github.com/MrJamesThe3rd/notemarket/internal/user"
	userStore "github.com/MrJamesThe3rd/notemarket/internal/user/store"
)

type model struct {
	common         view.CommonModel
	listingService *listing.Service
	txService      *transaction.Service
	exportService  *export.Service

	currentView View

	reviewView   view.ReviewModel
	listingsView view.ListingsModel
	txView       view.TransactionsModel
	exportView   view.ExportModel
}

type View int

const (
	ViewMenu         View = 0
	ViewReview       View = 1
	ViewListings     View = 2
	ViewTransactions View = 3
	ViewExport       View = 4
)

func initialModel() (model, error) {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		return model{}, fmt.Errorf("loading config: %w", err)
	}

	db, err := database.New(cfg.ConnectionString(), database.Options{
		MaxOpenConns: cfg.DB.MaxOpenConns,
		MaxIdleConns: cfg.DB.MaxIdleConns,
	})
	if err != nil {
		return model{}, fmt.Errorf("connecting to database: %w", err)
	}

	operatorID, err := uuid.Parse(cfg.Console.OperatorID)
	if err != nil {
		return model{}, fmt.Errorf("CONSOLE_OPERATOR_ID must be a user id: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	operator, err := user.NewService(userStore.New(db)).Authenticate(ctx, operatorID)
	if err != nil {
		return model{}, fmt.Errorf("loading operator: %w", err)
	}

	if !operator.Can(auth.CapReview) {
		return model{}, fmt.Errorf("operator %s is a %s, the console needs an admin", operator.Email, operator.Role)
	}

	listingSvc := listing.NewService(listingStore.New(db), events.Nop{})
	txSvc := transaction.NewService(txStore.New(db), events.Nop{})
	expSvc := export.NewService(txSvc, cfg.Storage.Token)

	common := view.CommonModel{Operator: operator}

	return model{
		common:         common,
		listingService: listingSvc,
		txService:      txSvc,
		exportService:  expSvc,
		currentView:    ViewMenu,
	}, nil
}

func (m model) Init() tea.Cmd {
	return nil
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.common.Width, m.common.Height = msg.Width, msg.Height
	case tea.KeyMsg:
		if m.currentView == ViewMenu {
			switch msg.String() {
			case "ctrl+c", "q":
				return m, tea.Quit
			case "1":
				m.currentView = ViewReview
				m.reviewView = view.NewReviewModel(m.common, m.listingService)

				return m, m.reviewView.Init()
			case "2":
				m.currentView = ViewListings
				m.listingsView = view.NewListingsModel(m.common, m.listingService)

				return m, tea.Batch(m.listingsView.Init(), m.resize)
			case "3":
				m.currentView = ViewTransactions
				m.txView = view.NewTransactionsModel(m.common, m.txService)

				return m, tea.Batch(m.txView.Init(), m.resize)
			}
		}
	case view.ExportRequestMsg:
		m.currentView = ViewExport
		m.exportView = view.NewExportModel(m.common, m.exportService, msg.TransactionID)

		return m, m.exportView.Init()
	case view.BackMsg:
		if m.currentView == ViewExport {
			m.currentView = ViewTransactions
			return m, nil
		}

		m.currentView = ViewMenu

		return m, nil
	}

	switch m.currentView {
	case ViewReview:
		var newModel tea.Model
		newModel, cmd = m.reviewView.Update(msg)
		m.reviewView = newModel.(view.ReviewModel)
	case ViewListings:
		var newModel tea.Model
		newModel, cmd = m.listingsView.Update(msg)
		m.listingsView = newModel.(view.ListingsModel)
	case ViewTransactions:
		var newModel tea.Model
		newModel, cmd = m.txView.Update(msg)
		m.txView = newModel.(view.TransactionsModel)
	case ViewExport:
		var newModel tea.Model
		newModel, cmd = m.exportView.Update(msg)
		m.exportView = newModel.(view.ExportModel)
	}

	return m, cmd
}

// resize replays the last known window size so a freshly built list view
// lays itself out.
func (m model) resize() tea.Msg {
	return tea.WindowSizeMsg{Width: m.common.Width, Height: m.common.Height}
}

func (m model) View() string {
	switch m.currentView {
	case ViewMenu:
		return lipgloss.NewStyle().Padding(2).Render(
			"NoteMarket Console\n" +
				lipgloss.NewStyle().Faint(true).Render("signed in as "+m.common.Operator.Email) + "\n\n" +
				"1. Review Queue\n" +
				"2. Listings\n" +
				"3. Transactions\n\n" +
				"q. Quit",
		)
	case ViewReview:
		return m.reviewView.View()
	case ViewListings:
		return m.listingsView.View()
	case ViewTransactions:
		return m.txView.View()
	case ViewExport:
		return m.exportView.View()
	}

	return "Unknown View"
}

func main() {
	m, err := initialModel()
	if err != nil {
		slog.Error("failed to start console", "error", err)
		os.Exit(1)
	}

	p := tea.NewProgram(m)
	if _, err := p.Run(); err != nil {
		slog.Error("failed to run TUI", "error", err)
		os.Exit(1)
	}
}
