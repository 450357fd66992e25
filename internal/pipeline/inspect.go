package pipeline

import (
	"bytes"
	"os"
	"strings"

	pdf "github.com/ledongthuc/pdf"
)

type PDFInfo struct {
	Pages int
	Text  []string
}

func InspectPDFFile(path string) (PDFInfo, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return PDFInfo{}, err
	}
	return InspectPDF(content)
}

// InspectPDF reports the page count and the plain text of each page.
func InspectPDF(content []byte) (PDFInfo, error) {
	r, err := pdf.NewReader(bytes.NewReader(content), int64(len(content)))
	if err != nil {
		return PDFInfo{}, err
	}

	info := PDFInfo{Pages: r.NumPage()}
	for i := 1; i <= r.NumPage(); i++ {
		p := r.Page(i)
		if p.V.IsNull() {
			info.Text = append(info.Text, "")
			continue
		}
		text, err := p.GetPlainText(nil)
		if err != nil {
			info.Text = append(info.Text, "")
			continue
		}
		info.Text = append(info.Text, strings.TrimSpace(text))
	}
	return info, nil
}
