package export

import (
	"archive/zip"
	"context"
	"fmt"
	"io"
	"mime"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/notemarket/internal/auth"
	"github.com/MrJamesThe3rd/notemarket/internal/transaction"
)

const summaryName = "summary.txt"

// Transactions loads a transaction with what the viewer is allowed to see.
type Transactions interface {
	Get(ctx context.Context, viewer auth.Session, id uuid.UUID) (*transaction.Detail, error)
}

// Item is one downloaded transaction file.
type Item struct {
	File     *transaction.File
	FilePath string
}

// Package is a closing package written to disk.
type Package struct {
	Dir         string
	SummaryPath string
	Items       []Item
}

// Service assembles closing packages for transactions.
type Service struct {
	transactions Transactions
	client       *http.Client
	storageToken string
}

// NewService creates a new export Service. storageToken authenticates file
// downloads against the document store when set.
func NewService(transactions Transactions, storageToken string) *Service {
	return &Service{
		transactions: transactions,
		client:       &http.Client{Timeout: 30 * time.Second},
		storageToken: storageToken,
	}
}

// Export downloads every file the viewer can see on the transaction into
// outputDir and writes summary.txt next to them.
func (s *Service) Export(ctx context.Context, viewer auth.Session, id uuid.UUID, outputDir string) (*Package, error) {
	detail, err := s.transactions.Get(ctx, viewer, id)
	if err != nil {
		return nil, err
	}

	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return nil, fmt.Errorf("creating output directory: %w", err)
	}

	pkg := &Package{Dir: outputDir, Items: make([]Item, 0, len(detail.Files))}
	used := map[string]int{summaryName: 1}

	for _, f := range detail.Files {
		path, err := s.download(ctx, f, outputDir, used)
		if err != nil {
			return nil, fmt.Errorf("downloading file %s: %w", f.ID, err)
		}

		pkg.Items = append(pkg.Items, Item{File: f, FilePath: path})
	}

	pkg.SummaryPath = filepath.Join(outputDir, summaryName)
	if err := os.WriteFile(pkg.SummaryPath, []byte(Summary(detail, pkg.Items)), 0o644); err != nil {
		return nil, fmt.Errorf("writing summary: %w", err)
	}

	return pkg, nil
}

// Archive builds the closing package in a scratch directory and streams it
// to w as a zip.
func (s *Service) Archive(ctx context.Context, viewer auth.Session, id uuid.UUID, w io.Writer) error {
	dir, err := os.MkdirTemp("", "closing-package-*")
	if err != nil {
		return fmt.Errorf("creating scratch directory: %w", err)
	}
	defer os.RemoveAll(dir)

	pkg, err := s.Export(ctx, viewer, id, dir)
	if err != nil {
		return err
	}

	zw := zip.NewWriter(w)

	paths := []string{pkg.SummaryPath}
	for _, item := range pkg.Items {
		paths = append(paths, item.FilePath)
	}

	for _, path := range paths {
		if err := addToZip(zw, path); err != nil {
			return err
		}
	}

	return zw.Close()
}

func addToZip(zw *zip.Writer, path string) error {
	src, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("opening %s: %w", path, err)
	}
	defer src.Close()

	dst, err := zw.Create(filepath.Base(path))
	if err != nil {
		return fmt.Errorf("adding %s to archive: %w", path, err)
	}

	if _, err := io.Copy(dst, src); err != nil {
		return fmt.Errorf("writing %s to archive: %w", path, err)
	}

	return nil
}

func (s *Service) download(ctx context.Context, f *transaction.File, dir string, used map[string]int) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, f.URL, nil)
	if err != nil {
		return "", fmt.Errorf("creating request: %w", err)
	}

	if s.storageToken != "" {
		req.Header.Set("Authorization", "Token "+s.storageToken)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("executing request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("unexpected status code %d for url %s", resp.StatusCode, f.URL)
	}

	path := filepath.Join(dir, unique(s.determineFilename(resp, f), used))

	out, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("creating file: %w", err)
	}
	defer out.Close()

	if _, err := io.Copy(out, resp.Body); err != nil {
		return "", fmt.Errorf("writing file: %w", err)
	}

	return path, nil
}

func (s *Service) determineFilename(resp *http.Response, f *transaction.File) string {
	// 1. Try to get filename from Content-Disposition header.
	if cd := resp.Header.Get("Content-Disposition"); cd != "" {
		if _, params, err := mime.ParseMediaType(cd); err == nil {
			if filename, ok := params["filename"]; ok && filename != "" {
				return sanitize(filepath.Base(filename))
			}
		}
	}

	// 2. Fallback: the uploaded name, with an extension from the content type.
	name := sanitize(f.Name)
	if filepath.Ext(name) != "" {
		return name
	}

	ext := ".pdf"

	contentType := resp.Header.Get("Content-Type")
	if contentType == "" {
		contentType = f.ContentType
	}

	if contentType != "" {
		if exts, _ := mime.ExtensionsByType(contentType); len(exts) > 0 {
			ext = exts[0]
		}
	}

	return name + ext
}

func sanitize(name string) string {
	name = strings.Map(func(r rune) rune {
		if (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') || r == '-' || r == '_' || r == '.' {
			return r
		}

		return '_'
	}, strings.TrimSpace(name))

	if strings.Trim(name, "._") == "" {
		return "file"
	}

	return name
}

// unique suffixes repeated names: note.pdf, note_2.pdf, ...
func unique(name string, used map[string]int) string {
	used[name]++
	if used[name] == 1 {
		return name
	}

	ext := filepath.Ext(name)

	return fmt.Sprintf("%s_%d%s", strings.TrimSuffix(name, ext), used[name], ext)
}

// Summary renders the transaction, its checklist and timeline as plain text.
func Summary(d *transaction.Detail, items []Item) string {
	var sb strings.Builder

	t := d.Transaction

	fmt.Fprintf(&sb, "Transaction %s\n", t.ID)
	fmt.Fprintf(&sb, "Status: %s (phase %s)\n", t.Status, t.CurrentPhase)

	amount := "not set"
	if t.FinalAmount != nil {
		amount = transaction.FormatCents(*t.FinalAmount)
	}

	fmt.Fprintf(&sb, "Final amount: %s\n", amount)
	fmt.Fprintf(&sb, "Listing: %s\nBuyer: %s\nSeller: %s\n", t.ListingID, t.BuyerID, t.SellerID)
	fmt.Fprintf(&sb, "Opened: %s\n", t.CreatedAt.Format("2006-01-02"))

	if t.CompletedAt != nil {
		fmt.Fprintf(&sb, "Completed: %s\n", t.CompletedAt.Format("2006-01-02"))
	}

	if t.CancelledAt != nil {
		fmt.Fprintf(&sb, "Cancelled: %s (%s)\n", t.CancelledAt.Format("2006-01-02"), t.CancelReason)
	}

	sb.WriteString("\nChecklist\n")

	for _, task := range d.Tasks {
		required := ""
		if task.Required {
			required = " *"
		}

		fmt.Fprintf(&sb, "[%s] %s | %s | %s%s\n", mark(task.Status), task.Phase, task.Title, task.Assignee, required)
	}

	sb.WriteString("\nFiles\n")

	if len(items) == 0 {
		sb.WriteString("(none)\n")
	}

	for _, item := range items {
		fmt.Fprintf(&sb, "* %s | %s\n", item.File.Name, filepath.Base(item.FilePath))
	}

	sb.WriteString("\nTimeline\n")

	for _, e := range d.Events {
		line := fmt.Sprintf("%s | %s | %s", e.CreatedAt.Format("2006-01-02 15:04"), e.Type, e.Title)
		if e.Description != "" {
			line += " | " + e.Description
		}

		sb.WriteString(line + "\n")
	}

	return sb.String()
}

func mark(s transaction.TaskStatus) string {
	switch s {
	case transaction.TaskComplete:
		return "x"
	case transaction.TaskSkipped:
		return "-"
	case transaction.TaskFailed:
		return "!"
	}

	return " "
}
