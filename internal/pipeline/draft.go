package pipeline

import (
	"bytes"
	"errors"
	"fmt"
	"net/mail"
	"strings"
	"time"

	"github.com/jhillyerd/enmime"
)

var (
	errNoRecipient = errors.New("draft needs a recipient")
	errNoSender    = errors.New("draft needs a sender")
)

type Draft struct {
	From     string
	To       string
	Subject  string
	Body     string
	FileName string
	PDF      []byte
	Date     time.Time
}

// BuildDraft encodes a ready-to-send mail with the invoice attached. Addresses
// may carry a display name ("Acme <billing@acme.test>").
func BuildDraft(d Draft) ([]byte, error) {
	to, err := parseAddress(d.To)
	if err != nil {
		return nil, err
	}
	if to == nil {
		return nil, errNoRecipient
	}

	from, err := parseAddress(d.From)
	if err != nil {
		return nil, err
	}
	if from == nil {
		return nil, errNoSender
	}

	b := enmime.Builder().
		From(from.Name, from.Address).
		To(to.Name, to.Address).
		Subject(d.Subject).
		Text([]byte(d.Body))
	if !d.Date.IsZero() {
		b = b.Date(d.Date)
	}
	if len(d.PDF) > 0 {
		b = b.AddAttachment(d.PDF, "application/pdf", d.FileName)
	}

	part, err := b.Build()
	if err != nil {
		return nil, fmt.Errorf("build draft: %w", err)
	}
	var buf bytes.Buffer
	if err := part.Encode(&buf); err != nil {
		return nil, fmt.Errorf("encode draft: %w", err)
	}
	return buf.Bytes(), nil
}

// InvoiceDraft is the standard cover mail for a generated batch.
func InvoiceDraft(from, to, baseNumber, fileName string, pdf []byte, now time.Time) Draft {
	return Draft{
		From:     from,
		To:       to,
		Subject:  "Proforma " + baseNumber,
		Body:     "Please find attached proforma invoice " + baseNumber + ".\n",
		FileName: fileName,
		PDF:      pdf,
		Date:     now,
	}
}

func parseAddress(v string) (*mail.Address, error) {
	v = strings.TrimSpace(v)
	if v == "" {
		return nil, nil
	}
	addr, err := mail.ParseAddress(v)
	if err != nil {
		return nil, fmt.Errorf("parse address %q: %w", v, err)
	}
	return addr, nil
}
