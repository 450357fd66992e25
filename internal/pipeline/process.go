package pipeline

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"proforma/internal"
	"proforma/internal/catalog"
	"proforma/internal/config"
	"proforma/internal/invoice"
	"proforma/internal/logger"
	"proforma/internal/settings"
	"proforma/internal/storage"
	"proforma/internal/util"
)

// DBGuideSource selects the catalog mirrored into the local database.
const DBGuideSource = "db:"

var errNoDatabase = errors.New("guide source db: needs a database")

type GuideFetcher interface {
	FetchGuideURL(ctx context.Context, rawURL string) ([]internal.CatalogProduct, error)
}

// GenerationService ties settings, guide loading, the engine and the ledger
// together. Committed builds are serialized so two of them never draw the
// same number.
type GenerationService struct {
	cfg    config.Config
	store  *settings.Store
	db     *storage.DB
	engine *invoice.Engine
	guides GuideFetcher
	log    zerolog.Logger
	now    func() time.Time

	mu sync.Mutex
}

// NewGenerationService wires the service. db may be nil; the ledger entry and
// the db: guide source are then unavailable.
func NewGenerationService(cfg config.Config, store *settings.Store, db *storage.DB, engine *invoice.Engine) *GenerationService {
	return &GenerationService{
		cfg:    cfg,
		store:  store,
		db:     db,
		engine: engine,
		guides: catalog.NewClient(cfg),
		log:    logger.WithComponent("generate"),
		now:    time.Now,
	}
}

type GenerateRequest struct {
	Orders      []internal.Order
	GuideSource string
	OutPath     string
	Preview     bool
	Overrides   settings.InvoiceOverrides
}

type GenerateResult struct {
	invoice.Result
	Path      string
	Committed bool
	Record    *internal.HistoryRecord
}

// Build renders the document without writing or committing anything.
func (s *GenerationService) Build(ctx context.Context, req GenerateRequest) (invoice.Result, invoice.Config, error) {
	if len(req.Orders) == 0 {
		return invoice.Result{}, invoice.Config{}, invoice.ErrNoOrders
	}
	st, err := s.store.Load()
	if err != nil {
		return invoice.Result{}, invoice.Config{}, err
	}
	cfg := st.ToInvoiceConfig(req.Overrides, s.now())

	products, err := s.LoadGuide(ctx, req.GuideSource)
	if err != nil {
		return invoice.Result{}, invoice.Config{}, err
	}

	res, err := s.engine.BuildInvoiceDocument(req.Orders, cfg, products)
	if err != nil {
		return invoice.Result{}, invoice.Config{}, err
	}
	return res, cfg, nil
}

// Generate builds and writes the PDF. Unless the request is a preview, the
// next number and a history record are persisted and the ledger is updated.
func (s *GenerationService) Generate(ctx context.Context, req GenerateRequest) (GenerateResult, error) {
	if !req.Preview {
		s.mu.Lock()
		defer s.mu.Unlock()
	}

	res, cfg, err := s.Build(ctx, req)
	if err != nil {
		return GenerateResult{}, err
	}

	path := strings.TrimSpace(req.OutPath)
	if path == "" {
		if req.Preview {
			path = filepath.Join(os.TempDir(), fmt.Sprintf("invoices_preview_%d.pdf", res.IssuedAt.UnixMilli()))
		} else {
			st, err := s.store.Load()
			if err != nil {
				return GenerateResult{}, err
			}
			path = s.DefaultOutputPath(st.Invoice.SaveDirectory, res.BaseNumber, res.IssuedAt)
		}
	}
	if err := util.WriteFileAtomic(path, res.Bytes, 0o644); err != nil {
		return GenerateResult{}, fmt.Errorf("write invoice: %w", err)
	}

	out := GenerateResult{Result: res, Path: path}
	log := s.log.With().Str("invoice", res.BaseNumber).Int("orders", len(req.Orders)).Logger()
	if req.Preview {
		log.Info().Str("path", path).Msg("preview written")
		return out, nil
	}

	record := internal.HistoryRecord{
		InvoiceNumber: res.BaseNumber,
		Date:          res.IssuedAt.Format("2006-01-02"),
		IssuedTo:      strings.TrimSpace(cfg.Receiver.Name),
		FilePath:      path,
		OrderCount:    len(req.Orders),
	}
	if _, err := s.store.CommitGeneration(res.NextNumber, record); err != nil {
		return GenerateResult{}, fmt.Errorf("commit invoice number: %w", err)
	}
	if err := s.recordLedger(req.Orders, res, record); err != nil {
		return GenerateResult{}, err
	}

	out.Committed = true
	out.Record = &record
	log.Info().Str("path", path).Int("next", res.NextNumber).Msg("invoice committed")
	return out, nil
}

func (s *GenerationService) recordLedger(orders []internal.Order, res invoice.Result, record internal.HistoryRecord) error {
	if s.db == nil {
		return nil
	}

	agg := invoice.SumTotals(res.Totals)
	row := internal.InvoiceRow{
		InvoiceNumber: record.InvoiceNumber,
		IssuedOn:      record.Date,
		IssuedTo:      record.IssuedTo,
		FilePath:      record.FilePath,
		OrderCount:    record.OrderCount,
		Currency:      res.Currency,
		Subtotal:      agg.Subtotal,
		VATAmount:     agg.VAT,
		Total:         agg.Total,
	}
	rows := make([]internal.InvoiceOrderRow, len(orders))
	for i, o := range orders {
		t := res.Totals[i]
		rows[i] = internal.InvoiceOrderRow{
			Position:       i + 1,
			SubNumber:      res.SubNumbers[i],
			Name:           o.Name,
			Tracking:       o.Tracking,
			LineCount:      len(o.Lines),
			Subtotal:       t.Subtotal,
			ShippingAmount: t.ShippingAmount,
			VATAmount:      t.VATAmount,
			Total:          t.Total,
		}
	}
	if _, err := s.db.RecordInvoice(row, rows); err != nil {
		return fmt.Errorf("record invoice: %w", err)
	}
	return nil
}

// LoadGuide reads the SKU guide from a file, an http(s) URL or the local
// catalog ("db:"). An empty or missing guide falls back to the default guide.
func (s *GenerationService) LoadGuide(ctx context.Context, source string) ([]internal.CatalogProduct, error) {
	source = strings.TrimSpace(source)

	var (
		products []internal.CatalogProduct
		err      error
	)
	switch {
	case source == "":
	case source == DBGuideSource:
		if s.db == nil {
			return nil, errNoDatabase
		}
		products, err = s.db.ListCatalogProducts()
	case strings.HasPrefix(source, "http://"), strings.HasPrefix(source, "https://"):
		products, err = s.guides.FetchGuideURL(ctx, source)
	default:
		products, err = catalog.ReadGuideFile(source)
	}
	if err != nil {
		return nil, fmt.Errorf("load sku guide %s: %w", source, err)
	}

	def := s.cfg.DefaultGuidePath
	if len(products) == 0 && def != "" && source != def {
		products, err = catalog.ReadGuideFile(def)
		if err != nil {
			return nil, fmt.Errorf("load default sku guide: %w", err)
		}
	}
	return products, nil
}

// DefaultOutputPath is <dir>/<date>/<number>.pdf where dir is the save
// directory from settings, else the configured output directory.
func (s *GenerationService) DefaultOutputPath(saveDir, baseNumber string, now time.Time) string {
	dir := strings.TrimSpace(saveDir)
	if dir == "" {
		dir = s.cfg.OutputDir
	}
	return filepath.Join(dir, now.Format("2006-01-02"), util.SanitizeFileName(baseNumber)+".pdf")
}
