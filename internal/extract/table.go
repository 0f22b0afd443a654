package extract

import (
	"fmt"
	"strings"

	"golang.org/x/net/html"

	"modemtrack/internal/device"
)

const tableID = "devicelist"

// parseTable walks a rendered page for the device tbody and normalises each
// row. Header rows are skipped; rows with an unexpected cell count are
// dropped with a warning and never abort the batch.
func (e *Extractor) parseTable(source string) ([]device.Device, error) {
	doc, err := html.Parse(strings.NewReader(source))
	if err != nil {
		return nil, fmt.Errorf("parse page: %w", err)
	}
	tbody := findByID(doc, tableID)
	if tbody == nil {
		return nil, fmt.Errorf("device table %q not found in page", tableID)
	}

	rows := collectRows(tbody)
	e.log.Info("device rows found", "rows", len(rows))

	devices := make([]device.Device, 0, len(rows))
	for i, cells := range rows {
		d, err := device.ParseRow(device.Row{Cells: cells})
		if err != nil {
			e.log.Warn("skipping device row", "index", i, "err", err)
			continue
		}
		devices = append(devices, d)
	}
	return devices, nil
}

func findByID(n *html.Node, id string) *html.Node {
	if n.Type == html.ElementNode {
		for _, attr := range n.Attr {
			if attr.Key == "id" && attr.Val == id {
				return n
			}
		}
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if found := findByID(c, id); found != nil {
			return found
		}
	}
	return nil
}

// collectRows returns the td texts of every data row under the table node.
// Rows containing th cells are treated as headers and dropped.
func collectRows(table *html.Node) [][]string {
	var rows [][]string
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && n.Data == "tr" {
			cells, header := rowCells(n)
			if !header {
				rows = append(rows, cells)
			}
			return
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(table)
	return rows
}

func rowCells(tr *html.Node) (cells []string, header bool) {
	for c := tr.FirstChild; c != nil; c = c.NextSibling {
		if c.Type != html.ElementNode {
			continue
		}
		switch c.Data {
		case "th":
			header = true
		case "td":
			cells = append(cells, nodeText(c))
		}
	}
	return cells, header
}

func nodeText(n *html.Node) string {
	var sb strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			sb.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return sb.String()
}
