package pipeline

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/jhillyerd/enmime"
	"github.com/xuri/excelize/v2"

	"proforma/internal"
	"proforma/internal/packlist"
)

var ErrUnsupportedInput = errors.New("unsupported packlist input")

var spaceRun = regexp.MustCompile(`\s+`)

// Packlist is a grouped input together with where it came from.
type Packlist struct {
	Name   string
	Source internal.InputSource
	Orders []internal.Order
}

func (p Packlist) LineCount() int {
	return packlist.LineCount(p.Orders)
}

func ReadPacklistFile(path string) (Packlist, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return Packlist{}, err
	}
	return ExtractPacklist(filepath.Base(path), content)
}

// ExtractPacklist picks a reader by file extension. Every format ends up as
// rows in the delimited column order, header first.
func ExtractPacklist(name string, content []byte) (Packlist, error) {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".csv", ".txt", ".tsv", "":
		return Packlist{
			Name:   name,
			Source: internal.SourceDelimited,
			Orders: packlist.ParseOrders(packlist.Decode(content)),
		}, nil
	case ".xlsx":
		rows, err := parseXLSX(content)
		if err != nil {
			return Packlist{}, fmt.Errorf("read %s: %w", name, err)
		}
		return Packlist{Name: name, Source: internal.SourceXLSX, Orders: groupWithHeader(rows)}, nil
	case ".html", ".htm":
		rows, err := parseHTMLTable(packlist.Decode(content))
		if err != nil {
			return Packlist{}, fmt.Errorf("read %s: %w", name, err)
		}
		return Packlist{Name: name, Source: internal.SourceHTMLTable, Orders: groupWithHeader(rows)}, nil
	case ".eml":
		p, err := ExtractFromEmailRaw(content)
		if err != nil {
			return Packlist{}, err
		}
		p.Name = name
		return p, nil
	default:
		return Packlist{}, fmt.Errorf("%w: %s", ErrUnsupportedInput, filepath.Ext(name))
	}
}

// ExtractFromEmailRaw finds the packlist in a mail. Attachments win over the
// body; an HTML table wins over plain text.
func ExtractFromEmailRaw(raw []byte) (Packlist, error) {
	env, err := enmime.ReadEnvelope(bytes.NewReader(raw))
	if err != nil {
		return Packlist{}, err
	}

	for _, att := range env.Attachments {
		filename := strings.TrimSpace(att.FileName)
		switch strings.ToLower(filepath.Ext(filename)) {
		case ".csv", ".txt", ".tsv", ".xlsx", ".html", ".htm":
		default:
			continue
		}
		p, err := ExtractPacklist(filename, att.Content)
		if err != nil || len(p.Orders) == 0 {
			continue
		}
		p.Source = internal.SourceEmail
		return p, nil
	}

	subject := env.GetHeader("Subject")
	if env.HTML != "" {
		if rows, err := parseHTMLTable(env.HTML); err == nil {
			if orders := groupWithHeader(rows); len(orders) > 0 {
				return Packlist{Name: subject, Source: internal.SourceEmail, Orders: orders}, nil
			}
		}
	}
	if orders := packlist.ParseOrders(env.Text); len(orders) > 0 {
		return Packlist{Name: subject, Source: internal.SourceEmail, Orders: orders}, nil
	}
	return Packlist{}, fmt.Errorf("%w: no packlist in message %q", ErrUnsupportedInput, subject)
}

// parseHTMLTable returns the rows of the first table that has data below its
// header row.
func parseHTMLTable(html string) ([][]string, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, err
	}

	var out [][]string
	doc.Find("table").EachWithBreak(func(_ int, table *goquery.Selection) bool {
		rows := table.Find("tr")
		if rows.Length() < 2 {
			return true
		}
		rows.Each(func(_ int, row *goquery.Selection) {
			cells := []string{}
			row.Find("th,td").Each(func(_ int, cell *goquery.Selection) {
				cells = append(cells, normalizeSpaces(cell.Text()))
			})
			if !blankRow(cells) {
				out = append(out, cells)
			}
		})
		return false
	})
	return out, nil
}

// parseXLSX returns the non-blank rows of the first sheet.
func parseXLSX(content []byte) ([][]string, error) {
	f, err := excelize.OpenReader(bytes.NewReader(content))
	if err != nil {
		return nil, err
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, nil
	}
	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, err
	}

	out := make([][]string, 0, len(rows))
	for _, row := range rows {
		cells := normalizeCells(row)
		if blankRow(cells) {
			continue
		}
		out = append(out, cells)
	}
	return out, nil
}

func groupWithHeader(rows [][]string) []internal.Order {
	if len(rows) < 2 {
		return []internal.Order{}
	}
	return packlist.GroupOrders(rows[1:])
}

func normalizeSpaces(input string) string {
	return strings.TrimSpace(spaceRun.ReplaceAllString(input, " "))
}

func normalizeCells(row []string) []string {
	out := make([]string, 0, len(row))
	for _, c := range row {
		out = append(out, normalizeSpaces(c))
	}
	return out
}

func blankRow(cells []string) bool {
	for _, c := range cells {
		if c != "" {
			return false
		}
	}
	return true
}
