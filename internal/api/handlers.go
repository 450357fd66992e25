package api

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"proforma/internal"
	"proforma/internal/invoice"
	"proforma/internal/packlist"
	"proforma/internal/pipeline"
	"proforma/internal/settings"
)

var (
	errNoPacklist = errors.New("packlist or orders required")
	errNoLedger   = errors.New("invoice ledger not configured")
)

// invoiceRequest carries either raw delimited packlist text or already
// grouped orders. Orders win when both are sent.
type invoiceRequest struct {
	Packlist  string                    `json:"packlist"`
	Orders    []internal.Order          `json:"orders"`
	GuidePath string                    `json:"guidePath"`
	Invoice   settings.InvoiceOverrides `json:"invoice"`
}

func (r invoiceRequest) orders() []internal.Order {
	if len(r.Orders) > 0 {
		return r.Orders
	}
	return packlist.ParseOrders(r.Packlist)
}

type invoiceView struct {
	InvoiceNumber string  `json:"invoiceNumber"`
	IssuedOn      string  `json:"issuedOn"`
	IssuedTo      string  `json:"issuedTo"`
	FilePath      string  `json:"filePath"`
	OrderCount    int     `json:"orderCount"`
	Currency      string  `json:"currency,omitempty"`
	Subtotal      float64 `json:"subtotal"`
	VATAmount     float64 `json:"vatAmount"`
	Total         float64 `json:"total"`
}

type orderView struct {
	Position       int     `json:"position"`
	SubNumber      string  `json:"subNumber"`
	Name           string  `json:"name"`
	Tracking       string  `json:"tracking"`
	LineCount      int     `json:"lineCount"`
	Subtotal       float64 `json:"subtotal"`
	ShippingAmount float64 `json:"shippingAmount"`
	VATAmount      float64 `json:"vatAmount"`
	Total          float64 `json:"total"`
}

func viewFromRow(r internal.InvoiceRow) invoiceView {
	return invoiceView{
		InvoiceNumber: r.InvoiceNumber,
		IssuedOn:      r.IssuedOn,
		IssuedTo:      r.IssuedTo,
		FilePath:      r.FilePath,
		OrderCount:    r.OrderCount,
		Currency:      r.Currency,
		Subtotal:      r.Subtotal,
		VATAmount:     r.VATAmount,
		Total:         r.Total,
	}
}

func bindInvoiceRequest(c *gin.Context) (invoiceRequest, error) {
	var req invoiceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		return req, badRequest(err)
	}
	if len(req.Orders) == 0 && req.Packlist == "" {
		return req, badRequest(errNoPacklist)
	}
	return req, nil
}

func (s *Server) health(c *gin.Context) error {
	if s.db != nil {
		if err := s.db.Ping(c.Request.Context()); err != nil {
			return err
		}
	}
	return respond(c, http.StatusOK, gin.H{"status": "ok"})
}

func (s *Server) previewInvoice(c *gin.Context) error {
	req, err := bindInvoiceRequest(c)
	if err != nil {
		return err
	}
	res, _, err := s.gen.Build(c.Request.Context(), pipeline.GenerateRequest{
		Orders:      req.orders(),
		GuideSource: req.GuidePath,
		Preview:     true,
		Overrides:   req.Invoice,
	})
	if err != nil {
		return err
	}
	c.Header("X-Invoice-Number", res.BaseNumber)
	c.Data(http.StatusOK, "application/pdf", res.Bytes)
	return nil
}

func (s *Server) createInvoice(c *gin.Context) error {
	req, err := bindInvoiceRequest(c)
	if err != nil {
		return err
	}
	out, err := s.gen.Generate(c.Request.Context(), pipeline.GenerateRequest{
		Orders:      req.orders(),
		GuideSource: req.GuidePath,
		Overrides:   req.Invoice,
	})
	if err != nil {
		return err
	}

	agg := invoice.SumTotals(out.Totals)
	return respond(c, http.StatusCreated, gin.H{
		"invoice": invoiceView{
			InvoiceNumber: out.BaseNumber,
			IssuedOn:      out.Record.Date,
			IssuedTo:      out.Record.IssuedTo,
			FilePath:      out.Path,
			OrderCount:    out.Record.OrderCount,
			Currency:      out.Currency,
			Subtotal:      agg.Subtotal,
			VATAmount:     agg.VAT,
			Total:         agg.Total,
		},
		"subNumbers": out.SubNumbers,
		"nextNumber": out.NextNumber,
	})
}

// listInvoices reads the ledger, or the settings history when no database
// is configured.
func (s *Server) listInvoices(c *gin.Context) error {
	limit := 50
	if v := c.Query("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			return badRequest(errors.New("limit must be a positive integer"))
		}
		limit = n
	}

	views := []invoiceView{}
	if s.db != nil {
		rows, err := s.db.ListInvoices(limit)
		if err != nil {
			return err
		}
		for _, r := range rows {
			views = append(views, viewFromRow(r))
		}
		return respond(c, http.StatusOK, gin.H{"invoices": views})
	}

	st, err := s.store.Load()
	if err != nil {
		return err
	}
	for i, h := range st.InvoiceHistory {
		if i == limit {
			break
		}
		views = append(views, invoiceView{
			InvoiceNumber: h.InvoiceNumber,
			IssuedOn:      h.Date,
			IssuedTo:      h.IssuedTo,
			FilePath:      h.FilePath,
			OrderCount:    h.OrderCount,
		})
	}
	return respond(c, http.StatusOK, gin.H{"invoices": views})
}

// getInvoice returns one ledger entry with its per-order totals.
func (s *Server) getInvoice(c *gin.Context) error {
	if s.db == nil {
		return notFound(errNoLedger)
	}
	number := c.Param("number")
	row, err := s.db.GetInvoiceByNumber(number)
	if err != nil {
		return err
	}
	if row == nil {
		return notFound(fmt.Errorf("invoice %s not found", number))
	}
	rows, err := s.db.ListInvoiceOrders(row.ID)
	if err != nil {
		return err
	}
	orders := make([]orderView, 0, len(rows))
	for _, o := range rows {
		orders = append(orders, orderView{
			Position:       o.Position,
			SubNumber:      o.SubNumber,
			Name:           o.Name,
			Tracking:       o.Tracking,
			LineCount:      o.LineCount,
			Subtotal:       o.Subtotal,
			ShippingAmount: o.ShippingAmount,
			VATAmount:      o.VATAmount,
			Total:          o.Total,
		})
	}
	return respond(c, http.StatusOK, gin.H{"invoice": viewFromRow(*row), "orders": orders})
}

func (s *Server) parseOrders(c *gin.Context) error {
	var req struct {
		Packlist string `json:"packlist"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		return badRequest(err)
	}
	orders := packlist.ParseOrders(req.Packlist)
	return respond(c, http.StatusOK, gin.H{
		"orders":     orders,
		"orderCount": len(orders),
		"lineCount":  packlist.LineCount(orders),
	})
}
