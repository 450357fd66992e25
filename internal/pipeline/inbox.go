package pipeline

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"

	"proforma/internal"
	"proforma/internal/config"
	"proforma/internal/invoice"
	"proforma/internal/logger"
	"proforma/internal/storage"
	"proforma/internal/util"
)

const (
	StatusFetched  = "fetched"
	StatusInvoiced = "invoiced"
	StatusSkipped  = "skipped"
	StatusFailed   = "failed"
)

// InboxProcessor turns stored packlist mails into committed invoices.
type InboxProcessor struct {
	db  *storage.DB
	gen *GenerationService
	cfg config.Config
	log zerolog.Logger
}

func NewInboxProcessor(db *storage.DB, gen *GenerationService, cfg config.Config) *InboxProcessor {
	return &InboxProcessor{db: db, gen: gen, cfg: cfg, log: logger.WithComponent("inbox")}
}

type InboxResult struct {
	Invoiced int
	Skipped  int
	Failed   int
}

// ProcessPending handles up to limit fetched messages. A message that fails
// is marked and the rest of the batch still runs.
func (p *InboxProcessor) ProcessPending(ctx context.Context, limit int, provider string) (InboxResult, error) {
	pending, err := p.db.ListInboxMessagesByStatus(StatusFetched, limit)
	if err != nil {
		return InboxResult{}, err
	}

	var res InboxResult
	for _, msg := range pending {
		if provider != "" && msg.Provider != provider {
			continue
		}
		if err := ctx.Err(); err != nil {
			return res, err
		}
		status, err := p.ProcessMessage(ctx, msg)
		if err != nil {
			p.log.Warn().Err(err).Str("message", msg.MessageID).Str("status", status).Msg("message not invoiced")
		}
		switch status {
		case StatusInvoiced:
			res.Invoiced++
		case StatusSkipped:
			res.Skipped++
		default:
			res.Failed++
		}
	}
	return res, nil
}

// ProcessMessage builds one committed invoice from the message and records
// the outcome on its inbox row. It returns the status it stored.
func (p *InboxProcessor) ProcessMessage(ctx context.Context, msg internal.InboxMessageRow) (string, error) {
	status, number, err := p.invoiceMessage(ctx, msg)
	if uerr := p.db.UpdateInboxStatus(msg.ID, status, number); uerr != nil {
		return StatusFailed, uerr
	}
	return status, err
}

func (p *InboxProcessor) invoiceMessage(ctx context.Context, msg internal.InboxMessageRow) (string, *string, error) {
	raw, err := os.ReadFile(msg.RawRef)
	if err != nil {
		return StatusFailed, nil, err
	}

	pl, err := ExtractFromEmailRaw(raw)
	if errors.Is(err, ErrUnsupportedInput) {
		return StatusSkipped, nil, err
	}
	if err != nil {
		return StatusFailed, nil, err
	}

	out, err := p.gen.Generate(ctx, GenerateRequest{Orders: pl.Orders})
	if errors.Is(err, invoice.ErrNoOrders) {
		return StatusSkipped, nil, err
	}
	if err != nil {
		return StatusFailed, nil, err
	}

	if p.cfg.InboxDraftReply && strings.TrimSpace(p.cfg.MailFrom) != "" && strings.TrimSpace(msg.Sender) != "" {
		if err := p.writeDraft(msg, out); err != nil {
			p.log.Warn().Err(err).Str("invoice", out.BaseNumber).Msg("draft reply not written")
		}
	}

	p.log.Info().Str("message", msg.MessageID).Str("invoice", out.BaseNumber).Int("orders", len(pl.Orders)).Msg("message invoiced")
	return StatusInvoiced, util.StringPtr(out.BaseNumber), nil
}

// writeDraft stores the reply next to the PDF with the same base name.
func (p *InboxProcessor) writeDraft(msg internal.InboxMessageRow, out GenerateResult) error {
	blob, err := BuildDraft(InvoiceDraft(p.cfg.MailFrom, msg.Sender, out.BaseNumber, filepath.Base(out.Path), out.Bytes, out.IssuedAt))
	if err != nil {
		return err
	}
	path := strings.TrimSuffix(out.Path, filepath.Ext(out.Path)) + ".eml"
	return util.WriteFileAtomic(path, blob, 0o644)
}
