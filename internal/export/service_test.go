package export

import (
	"archive/zip"
	"bytes"
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/notemarket/internal/auth"
	"github.com/MrJamesThe3rd/notemarket/internal/transaction"
)

type fakeTransactions struct {
	detail *transaction.Detail
	err    error
}

func (f *fakeTransactions) Get(context.Context, auth.Session, uuid.UUID) (*transaction.Detail, error) {
	return f.detail, f.err
}

func newFileServer(t *testing.T) *httptest.Server {
	t.Helper()

	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Token test-token" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}

		switch r.URL.Path {
		case "/note.pdf":
			w.Header().Set("Content-Type", "application/pdf")
			w.Header().Set("Content-Disposition", "attachment; filename=\"endorsed note.pdf\"")
			w.Write([]byte("note bytes"))
		case "/history":
			w.Header().Set("Content-Type", "application/pdf")
			w.Write([]byte("history bytes"))
		case "/dup":
			w.Header().Set("Content-Disposition", "attachment; filename=\"endorsed note.pdf\"")
			w.Write([]byte("second note"))
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	t.Cleanup(ts.Close)

	return ts
}

func sampleDetail(base string) *transaction.Detail {
	amount := int64(165_000_00)
	opened := time.Date(2026, 3, 2, 9, 30, 0, 0, time.UTC)

	return &transaction.Detail{
		Transaction: &transaction.Transaction{
			ID:           uuid.New(),
			Status:       transaction.StatusClosing,
			CurrentPhase: transaction.PhaseClosing,
			FinalAmount:  &amount,
			CreatedAt:    opened,
		},
		Tasks: []*transaction.Task{
			{Phase: transaction.PhaseNegotiations, Title: "Confirm purchase price", Assignee: transaction.AssigneeBuyer, Required: true, Status: transaction.TaskComplete},
			{Phase: transaction.PhaseClosing, Title: "Fund escrow", Assignee: transaction.AssigneeBuyer, Required: true, Status: transaction.TaskPending},
		},
		Files: []*transaction.File{
			{ID: uuid.New(), Name: "Note", URL: base + "/note.pdf"},
			{ID: uuid.New(), Name: "Payment history", URL: base + "/history"},
			{ID: uuid.New(), Name: "Note copy", URL: base + "/dup"},
		},
		Events: []*transaction.Event{
			{Type: transaction.EventInfo, Title: "Transaction opened", Description: "Opened from an accepted inquiry at $165,000.00.", CreatedAt: opened},
		},
	}
}

func TestExportService_Export(t *testing.T) {
	ts := newFileServer(t)
	tmpDir := t.TempDir()

	service := NewService(&fakeTransactions{detail: sampleDetail(ts.URL)}, "test-token")

	pkg, err := service.Export(context.Background(), auth.Session{}, uuid.New(), tmpDir)
	if err != nil {
		t.Fatalf("Export failed: %v", err)
	}

	if len(pkg.Items) != 3 {
		t.Fatalf("expected 3 items, got %d", len(pkg.Items))
	}

	want := []string{"endorsed_note.pdf", "Payment_history.pdf", "endorsed_note_2.pdf"}
	for i, name := range want {
		if got := filepath.Base(pkg.Items[i].FilePath); got != name {
			t.Errorf("item %d: expected %s, got %s", i, name, got)
		}
	}

	content, _ := os.ReadFile(pkg.Items[0].FilePath)
	if string(content) != "note bytes" {
		t.Errorf("file content mismatch")
	}

	summary, err := os.ReadFile(pkg.SummaryPath)
	if err != nil {
		t.Fatalf("reading summary: %v", err)
	}

	for _, sub := range []string{
		"Final amount: $165,000.00",
		"[x] negotiations | Confirm purchase price | buyer *",
		"[ ] closing | Fund escrow | buyer *",
		"* Payment history | Payment_history.pdf",
		"2026-03-02 09:30 | info | Transaction opened",
	} {
		if !strings.Contains(string(summary), sub) {
			t.Errorf("expected summary to contain %q\n%s", sub, summary)
		}
	}
}

func TestExportService_Export_DownloadFails(t *testing.T) {
	ts := newFileServer(t)

	service := NewService(&fakeTransactions{detail: sampleDetail(ts.URL)}, "wrong-token")

	if _, err := service.Export(context.Background(), auth.Session{}, uuid.New(), t.TempDir()); err == nil {
		t.Fatal("expected an error for an unauthorized download")
	}
}

func TestExportService_Export_NotVisible(t *testing.T) {
	service := NewService(&fakeTransactions{err: transaction.ErrNotFound}, "")

	_, err := service.Export(context.Background(), auth.Session{}, uuid.New(), t.TempDir())
	if err != transaction.ErrNotFound {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestExportService_Archive(t *testing.T) {
	ts := newFileServer(t)
	service := NewService(&fakeTransactions{detail: sampleDetail(ts.URL)}, "test-token")

	var buf bytes.Buffer
	if err := service.Archive(context.Background(), auth.Session{}, uuid.New(), &buf); err != nil {
		t.Fatalf("Archive failed: %v", err)
	}

	zr, err := zip.NewReader(bytes.NewReader(buf.Bytes()), int64(buf.Len()))
	if err != nil {
		t.Fatalf("reading zip: %v", err)
	}

	names := map[string]string{}

	for _, f := range zr.File {
		rc, err := f.Open()
		if err != nil {
			t.Fatalf("opening %s: %v", f.Name, err)
		}

		body, _ := io.ReadAll(rc)
		rc.Close()

		names[f.Name] = string(body)
	}

	if len(names) != 4 {
		t.Fatalf("expected summary plus 3 files, got %v", names)
	}

	if names["endorsed_note_2.pdf"] != "second note" {
		t.Errorf("unexpected content for duplicate name: %q", names["endorsed_note_2.pdf"])
	}

	if !strings.HasPrefix(names[summaryName], "Transaction ") {
		t.Errorf("summary missing header: %q", names[summaryName])
	}
}

func TestSanitize(t *testing.T) {
	cases := map[string]string{
		"Collateral file.zip": "Collateral_file.zip",
		"../../etc/passwd":    ".._.._etc_passwd",
		"   ":                 "file",
	}

	for in, want := range cases {
		if got := sanitize(in); got != want {
			t.Errorf("sanitize(%q) = %q, want %q", in, got, want)
		}
	}
}
