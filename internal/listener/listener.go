package listener

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"proforma/internal/config"
	"proforma/internal/connectors"
	gmailconnector "proforma/internal/connectors/gmail"
	imapconnector "proforma/internal/connectors/imap"
	"proforma/internal/logger"
	"proforma/internal/pipeline"
	"proforma/internal/storage"
)

// Service polls the mailbox, stores new packlist mails and invoices them.
type Service struct {
	db        *storage.DB
	cfg       config.Config
	processor *pipeline.InboxProcessor
	log       zerolog.Logger

	connect func(ctx context.Context, provider string) (connectors.MailConnector, error)
}

func NewService(db *storage.DB, cfg config.Config, gen *pipeline.GenerationService) *Service {
	s := &Service{
		db:        db,
		cfg:       cfg,
		processor: pipeline.NewInboxProcessor(db, gen, cfg),
		log:       logger.WithComponent("listener"),
	}
	s.connect = s.makeConnector
	return s
}

// Run repeats cycles until ctx is cancelled. A failed cycle is logged and the
// next one runs on schedule.
func (s *Service) Run(ctx context.Context) error {
	interval := time.Duration(s.cfg.InboxIntervalSec) * time.Second
	if interval <= 0 {
		interval = time.Minute
	}
	for {
		if _, err := s.RunCycle(ctx); err != nil && ctx.Err() == nil {
			s.log.Error().Err(err).Msg("listener cycle failed")
		}

		select {
		case <-ctx.Done():
			return nil
		case <-time.After(interval):
		}
	}
}

type CycleResult struct {
	Fetched int
	Stored  int
	pipeline.InboxResult
}

func (s *Service) RunCycle(ctx context.Context) (CycleResult, error) {
	provider := strings.ToLower(strings.TrimSpace(s.cfg.InboxProvider))
	conn, err := s.connect(ctx, provider)
	if err != nil {
		return CycleResult{}, err
	}

	fetch := connectors.NewFetchService(s.db, s.cfg.InboxDir, conn)
	fetched, err := fetch.FetchAndStore(ctx, s.cfg.InboxLabel, s.cfg.InboxFetchMax)
	if err != nil {
		return CycleResult{}, fmt.Errorf("fetch %s: %w", provider, err)
	}

	processed, err := s.processor.ProcessPending(ctx, s.batchSize(), provider)
	if err != nil {
		return CycleResult{}, err
	}

	res := CycleResult{Fetched: fetched.Fetched, Stored: fetched.Stored, InboxResult: processed}
	s.log.Info().
		Str("provider", provider).
		Int("fetched", res.Fetched).
		Int("stored", res.Stored).
		Int("invoiced", res.Invoiced).
		Int("skipped", res.Skipped).
		Int("failed", res.Failed).
		Msg("listener cycle done")
	return res, nil
}

// batchSize lets a cycle catch up on messages left over from earlier ones.
func (s *Service) batchSize() int {
	if s.cfg.InboxFetchMax > 0 {
		return s.cfg.InboxFetchMax * 2
	}
	return 50
}

func (s *Service) makeConnector(ctx context.Context, provider string) (connectors.MailConnector, error) {
	switch provider {
	case "gmail":
		return gmailconnector.NewConnector(ctx, s.cfg)
	case "imap":
		return imapconnector.NewConnector(s.cfg)
	default:
		return nil, fmt.Errorf("unsupported inbox provider: %s", provider)
	}
}

// NewConnector exposes the provider switch to one-shot commands.
func NewConnector(ctx context.Context, cfg config.Config) (connectors.MailConnector, error) {
	s := &Service{cfg: cfg}
	return s.makeConnector(ctx, strings.ToLower(strings.TrimSpace(cfg.InboxProvider)))
}
