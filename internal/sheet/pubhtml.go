package sheet

import (
	"fmt"
	"io"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// ParsePublishedHTML extracts workout rows from a Google Sheets
// "Publish to the web" page. The published page renders the sheet as a
// plain HTML table; the first data row must be the same header the CSV
// parser expects.
func ParsePublishedHTML(r io.Reader) (ParseResult, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return ParseResult{}, fmt.Errorf("parse html: %w", err)
	}

	var records [][]string
	doc.Find("table").First().Find("tr").Each(func(_ int, row *goquery.Selection) {
		var cells []string
		// Published sheets prepend a th with the row number; data lives
		// in td cells only.
		row.Find("td").Each(func(_ int, cell *goquery.Selection) {
			cells = append(cells, strings.TrimSpace(cell.Text()))
		})
		if len(cells) > 0 && !emptyRow(cells) {
			records = append(records, cells)
		}
	})

	if len(records) == 0 {
		return ParseResult{}, fmt.Errorf("no table rows found")
	}

	return parseRecords(records)
}

func emptyRow(cells []string) bool {
	for _, cell := range cells {
		if cell != "" {
			return false
		}
	}
	return true
}
