// Package gened scrapes the general-education cluster table, the source of
// the theme tags attached to scraped courses.
package gened

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"go.uber.org/zap"
	"golang.org/x/net/html"
)

const DefaultURL = "https://gened.aua.am/courses-and-their-clusters/"

// Header cells are told apart from data cells only by their background.
const headerStyle = "background: #d9d9d9"

var (
	ErrNoHeaders = errors.New("no header cells found")
	ErrNoTable   = errors.New("no table contains the header cells")
	ErrNoRows    = errors.New("no course rows found")
)

type Table struct {
	Headers []string
	Rows    [][]string
}

func isHeaderCell(s *goquery.Selection) bool {
	style, _ := s.Attr("style")
	return strings.Contains(style, headerStyle)
}

// cellText joins the trimmed text nodes under n without separators.
func cellText(n *html.Node) string {
	var b strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			b.WriteString(strings.TrimSpace(n.Data))
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return b.String()
}

// ParseTable extracts the cluster table from a page.
func ParseTable(r io.Reader) (*Table, error) {
	document, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, err
	}

	headerCells := document.Find("td").FilterFunction(func(i int, s *goquery.Selection) bool {
		return isHeaderCell(s)
	})
	if headerCells.Length() == 0 {
		return nil, ErrNoHeaders
	}

	var headers []string
	for _, cell := range headerCells.Nodes {
		if text := cellText(cell); text != "" {
			headers = append(headers, text)
		}
	}
	if len(headers) == 0 {
		return nil, ErrNoHeaders
	}

	table := headerCells.First().Closest("table")
	if table.Length() == 0 {
		return nil, ErrNoTable
	}

	var rows [][]string
	for _, root := range table.Find("tr").Nodes {
		if row := parseRow(root, len(headers)); row != nil {
			rows = append(rows, row)
		}
	}
	if len(rows) == 0 {
		return nil, ErrNoRows
	}

	return &Table{Headers: headers, Rows: rows}, nil
}

// parseRow returns the first width cells of a data row, or nil for header
// rows, short rows and blank rows.
func parseRow(root *html.Node, width int) []string {
	cells := goquery.NewDocumentFromNode(root).Find("td")
	if cells.Length() == 0 || isHeaderCell(cells.First()) {
		return nil
	}
	if cells.Length() < width {
		return nil
	}

	row := make([]string, width)
	blank := true
	for i, cell := range cells.Nodes[:width] {
		row[i] = cellText(cell)
		if row[i] != "" {
			blank = false
		}
	}
	if blank {
		for _, cell := range cells.Nodes[width:] {
			if cellText(cell) != "" {
				blank = false
				break
			}
		}
	}
	if blank {
		return nil
	}
	return row
}

func (t *Table) WriteCSV(w io.Writer) error {
	writer := csv.NewWriter(w)
	if err := writer.Write(t.Headers); err != nil {
		return err
	}
	if err := writer.WriteAll(t.Rows); err != nil {
		return err
	}
	return writer.Error()
}

// Scraper fetches and parses the cluster page, retrying transient failures.
type Scraper struct {
	Client   *http.Client
	Logger   *zap.Logger
	Attempts int
	Backoff  time.Duration
}

func NewScraper(client *http.Client, logger *zap.Logger) *Scraper {
	if client == nil {
		client = http.DefaultClient
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Scraper{Client: client, Logger: logger, Attempts: 3, Backoff: 500 * time.Millisecond}
}

type statusError struct {
	code int
}

func (e *statusError) Error() string {
	return fmt.Sprintf("unexpected status %d", e.code)
}

func retryable(err error) bool {
	var pe *permanentError
	if errors.As(err, &pe) {
		return false
	}
	var se *statusError
	if errors.As(err, &se) {
		return se.code >= 500 || se.code == http.StatusTooManyRequests
	}
	return true
}

func (s *Scraper) Scrape(ctx context.Context, url string) (*Table, error) {
	var lastErr error
	for attempt := 1; attempt <= s.Attempts; attempt++ {
		table, err := s.scrapeOnce(ctx, url)
		if err == nil {
			return table, nil
		}
		lastErr = err

		if !retryable(err) || attempt == s.Attempts || ctx.Err() != nil {
			break
		}
		s.Logger.Warn("Cluster page fetch failed, retrying",
			zap.String("url", url),
			zap.Int("attempt", attempt),
			zap.Error(err))

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(time.Duration(attempt) * s.Backoff):
		}
	}
	return nil, fmt.Errorf("scrape %s: %w", url, lastErr)
}

func (s *Scraper) scrapeOnce(ctx context.Context, url string) (*Table, error) {
	request, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}

	response, err := s.Client.Do(request)
	if err != nil {
		return nil, err
	}
	defer response.Body.Close()

	if response.StatusCode != http.StatusOK {
		return nil, &statusError{code: response.StatusCode}
	}

	table, err := ParseTable(response.Body)
	if err != nil {
		return nil, &permanentError{err}
	}
	return table, nil
}

// permanentError marks page-structure failures, which a retry cannot fix.
type permanentError struct {
	err error
}

func (e *permanentError) Error() string { return e.err.Error() }
func (e *permanentError) Unwrap() error { return e.err }
