package tape

import (
	"bufio"
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	enc "github.com/MrJamesThe3rd/notemarket/internal/encoding"
	"github.com/MrJamesThe3rd/notemarket/internal/listing"
)

// Parser reads loan tapes exported from servicing systems and spreadsheets
// and produces listing params. It auto-detects the header profile and the
// delimiter.
type Parser struct{}

func NewParser() *Parser {
	return &Parser{}
}

func (p *Parser) Parse(r io.Reader) ([]listing.CreateParams, error) {
	utf8r, err := enc.NewUTF8Reader(r)
	if err != nil {
		return nil, fmt.Errorf("detect encoding: %w", err)
	}

	br := bufio.NewReader(utf8r)

	head, _ := br.Peek(2048)

	reader := csv.NewReader(br)
	reader.Comma = detectDelimiter(string(head))
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true
	reader.TrimLeadingSpace = true

	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read csv: %w", err)
	}

	profile, cols, headerIdx := detectProfile(rows)
	if profile == nil {
		return nil, fmt.Errorf("no matching loan tape format found: expected address, city, state, zip, unpaid balance, rate and asking price columns")
	}

	return parseRows(profile, cols, rows[headerIdx+1:], headerIdx+1)
}

// detectDelimiter picks semicolon for European spreadsheet exports, tab for
// TSV and comma otherwise, judging by the first line.
func detectDelimiter(head string) rune {
	line, _, _ := strings.Cut(head, "\n")

	best, count := ',', strings.Count(line, ",")
	for _, d := range []rune{';', '\t'} {
		if n := strings.Count(line, string(d)); n > count {
			best, count = d, n
		}
	}

	return best
}

// colIndex maps lower-cased header names to their index in the row.
type colIndex map[string]int

// detectProfile scans rows for a header that matches a known profile.
// Returns the matched profile, column index map, and header row index.
func detectProfile(rows [][]string) (*Profile, colIndex, int) {
	for rowIdx, row := range rows {
		cols := make(colIndex)

		for i, cell := range row {
			name := strings.ToLower(strings.TrimSpace(cell))
			if name != "" {
				cols[name] = i
			}
		}

		for i := range profiles {
			if matchesProfile(&profiles[i], cols) {
				return &profiles[i], cols, rowIdx
			}
		}
	}

	return nil, nil, 0
}

func matchesProfile(p *Profile, cols colIndex) bool {
	for _, name := range p.requiredCols() {
		if _, ok := cols[name]; !ok {
			return false
		}
	}

	return true
}

// row reads the cells of one data row through a profile.
type row struct {
	profile *Profile
	cols    colIndex
	cells   []string
	num     int
}

func (r row) get(f field) string {
	name, ok := r.profile.Columns[f]
	if !ok {
		return ""
	}

	idx, ok := r.cols[name]
	if !ok || idx >= len(r.cells) {
		return ""
	}

	return strings.TrimSpace(r.cells[idx])
}

func (r row) empty() bool {
	for _, c := range r.cells {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}

	return true
}

func (r row) errorf(f field, format string, args ...any) error {
	return fmt.Errorf("row %d: %s: %s", r.num, f, fmt.Sprintf(format, args...))
}

// parseRows converts data rows. headerRowNum is the 0-based index of the
// first data row in the original file (for error messages).
func parseRows(p *Profile, cols colIndex, rows [][]string, headerRowNum int) ([]listing.CreateParams, error) {
	var out []listing.CreateParams

	for i, cells := range rows {
		r := row{profile: p, cols: cols, cells: cells, num: headerRowNum + i + 1}
		if r.empty() {
			continue
		}

		params, err := parseRow(r)
		if err != nil {
			return nil, err
		}

		out = append(out, params)
	}

	return out, nil
}

func parseRow(r row) (listing.CreateParams, error) {
	for _, f := range r.profile.Required {
		if r.get(f) == "" {
			return listing.CreateParams{}, fmt.Errorf("row %d: missing %s", r.num, f)
		}
	}

	params := listing.CreateParams{
		Address:           r.get(fieldAddress),
		City:              r.get(fieldCity),
		State:             strings.ToUpper(r.get(fieldState)),
		Zip:               r.get(fieldZip),
		Description:       r.get(fieldDescription),
		NoteType:          listing.NoteTypeMortgage,
		LienPosition:      1,
		PerformanceStatus: listing.PerformancePerforming,
		PropertyType:      listing.PropertySingleFamily,
	}

	amounts := []struct {
		f    field
		dest *int64
	}{
		{fieldUnpaidBalance, &params.UnpaidBalance},
		{fieldAskingPrice, &params.AskingPrice},
		{fieldPropertyValue, &params.PropertyValue},
		{fieldOriginalBalance, &params.OriginalBalance},
		{fieldPayment, &params.MonthlyPayment},
	}

	for _, a := range amounts {
		s := r.get(a.f)
		if s == "" {
			continue
		}

		cents, err := parseUSAmount(s)
		if err != nil {
			return params, r.errorf(a.f, "%v", err)
		}

		*a.dest = cents
	}

	rate, err := parseRate(r.get(fieldRate))
	if err != nil {
		return params, r.errorf(fieldRate, "%v", err)
	}

	params.InterestRate = rate

	if s := r.get(fieldNoteType); s != "" {
		params.NoteType = lookup(noteTypeAliases, s)
	}

	if s := r.get(fieldPerformance); s != "" {
		params.PerformanceStatus = lookup(performanceAliases, s)
	}

	if s := r.get(fieldPropertyType); s != "" {
		params.PropertyType = lookup(propertyAliases, s)
	}

	if s := r.get(fieldLien); s != "" {
		lien, err := parseLien(s)
		if err != nil {
			return params, r.errorf(fieldLien, "%v", err)
		}

		params.LienPosition = lien
	}

	if s := r.get(fieldRemainingTerm); s != "" {
		months, err := strconv.Atoi(s)
		if err != nil {
			return params, r.errorf(fieldRemainingTerm, "invalid month count %q", s)
		}

		params.RemainingTermMonths = months
	}

	dates := []struct {
		f    field
		dest **time.Time
	}{
		{fieldOriginationDate, &params.OriginationDate},
		{fieldMaturityDate, &params.MaturityDate},
	}

	for _, d := range dates {
		s := r.get(d.f)
		if s == "" {
			continue
		}

		t, err := parseDate(s)
		if err != nil {
			return params, r.errorf(d.f, "%v", err)
		}

		*d.dest = &t
	}

	params.Title = r.get(fieldTitle)
	if params.Title == "" {
		params.Title = defaultTitle(params)
	}

	return params, nil
}

// defaultTitle names an untitled tape row, e.g. "1st lien mortgage in Austin, TX".
func defaultTitle(p listing.CreateParams) string {
	return fmt.Sprintf("%s lien %s in %s, %s",
		ordinal(p.LienPosition), strings.ReplaceAll(string(p.NoteType), "_", " "), p.City, p.State)
}

func ordinal(n int) string {
	switch n {
	case 1:
		return "1st"
	case 2:
		return "2nd"
	case 3:
		return "3rd"
	}

	return strconv.Itoa(n) + "th"
}
