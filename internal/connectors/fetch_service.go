package connectors

import (
	"context"

	"github.com/rs/zerolog"

	"proforma/internal/logger"
	"proforma/internal/storage"
)

type FetchService struct {
	connector MailConnector
	store     *MailStore
	log       zerolog.Logger
}

type FetchResult struct {
	Fetched int
	Stored  int
}

func NewFetchService(db *storage.DB, rawDir string, connector MailConnector) *FetchService {
	return &FetchService{
		connector: connector,
		store:     NewMailStore(db, rawDir),
		log:       logger.WithComponent("fetch"),
	}
}

// FetchAndStore pulls up to max messages and stores them. Messages stored
// before an error are kept.
func (s *FetchService) FetchAndStore(ctx context.Context, label string, max int) (FetchResult, error) {
	messages, err := s.connector.FetchInbox(ctx, label, max)
	if err != nil {
		return FetchResult{}, err
	}

	res := FetchResult{Fetched: len(messages)}
	for _, msg := range messages {
		row, err := s.store.Store(msg)
		if err != nil {
			return res, err
		}
		res.Stored++
		s.log.Debug().Str("provider", msg.Provider).Str("message", msg.MessageID).Str("status", row.Status).Msg("message stored")
	}
	return res, nil
}
