package api

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"

	"proforma/internal/catalog"
	"proforma/internal/config"
	"proforma/internal/invoice"
	"proforma/internal/pipeline"
	"proforma/internal/render"
	"proforma/internal/settings"
	"proforma/internal/storage"
)

const packlistText = "Name;Tracking;Product;Amount;SKU\n" +
	"Alice;TRK1;Widget;3;SKU1\n" +
	"Bob;TRK2;Gadget;1;SKU2\n"

type response struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   *errorBody      `json:"error"`
}

func newTestServer(t *testing.T, withDB bool) (*gin.Engine, *settings.Store) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	dir := t.TempDir()

	var db *storage.DB
	if withDB {
		var err error
		db, err = storage.Open(filepath.Join(dir, "proforma.db"))
		if err != nil {
			t.Fatal(err)
		}
		t.Cleanup(func() { _ = db.Close() })
	}

	cfg := config.Config{OutputDir: filepath.Join(dir, "out")}
	store := settings.NewStore(filepath.Join(dir, "settings.json"), "")
	gen := pipeline.NewGenerationService(cfg, store, db, invoice.NewEngine(render.New()))
	return NewServer(gen, store, db).Router(), store
}

func do(t *testing.T, r http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatal(err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) response {
	t.Helper()
	var resp response
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("body=%s err=%v", rec.Body.String(), err)
	}
	return resp
}

func TestHealth(t *testing.T) {
	r, _ := newTestServer(t, true)
	rec := do(t, r, http.MethodGet, "/healthz", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("code=%d", rec.Code)
	}
	if rec.Header().Get(requestIDHeader) == "" {
		t.Fatal("missing request id")
	}
	if !decode(t, rec).Success {
		t.Fatal("expected success")
	}
}

func TestRequestIDIsEchoed(t *testing.T) {
	r, _ := newTestServer(t, false)
	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	req.Header.Set(requestIDHeader, "abc-123")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	if got := rec.Header().Get(requestIDHeader); got != "abc-123" {
		t.Fatalf("request id=%q", got)
	}
}

func TestPreviewReturnsPDF(t *testing.T) {
	r, store := newTestServer(t, true)
	rec := do(t, r, http.MethodPost, "/api/v1/invoices/preview", map[string]any{"packlist": packlistText})
	if rec.Code != http.StatusOK {
		t.Fatalf("code=%d body=%s", rec.Code, rec.Body.String())
	}
	if ct := rec.Header().Get("Content-Type"); ct != "application/pdf" {
		t.Fatalf("content-type=%s", ct)
	}
	if !strings.HasPrefix(rec.Header().Get("X-Invoice-Number"), "INV-") {
		t.Fatalf("number=%q", rec.Header().Get("X-Invoice-Number"))
	}
	if !bytes.HasPrefix(rec.Body.Bytes(), []byte("%PDF")) {
		t.Fatal("body is not a pdf")
	}

	s, _ := store.Load()
	if s.Invoice.NextNumber != 1 {
		t.Fatalf("preview advanced number: %v", s.Invoice.NextNumber)
	}
}

func TestCreateAndListInvoices(t *testing.T) {
	r, store := newTestServer(t, true)
	rec := do(t, r, http.MethodPost, "/api/v1/invoices", map[string]any{
		"packlist": packlistText,
		"invoice":  map[string]any{"prefix": "PF", "nextNumber": 40},
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("code=%d body=%s", rec.Code, rec.Body.String())
	}
	var created struct {
		Invoice    invoiceView `json:"invoice"`
		SubNumbers []string    `json:"subNumbers"`
		NextNumber int         `json:"nextNumber"`
	}
	if err := json.Unmarshal(decode(t, rec).Data, &created); err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(created.Invoice.InvoiceNumber, "PF-") || !strings.HasSuffix(created.Invoice.InvoiceNumber, "-00040") {
		t.Fatalf("invoice=%+v", created.Invoice)
	}
	if created.NextNumber != 41 || len(created.SubNumbers) != 2 {
		t.Fatalf("created=%+v", created)
	}

	s, _ := store.Load()
	if s.Invoice.NextNumber != 41 || len(s.InvoiceHistory) != 1 {
		t.Fatalf("next=%v history=%d", s.Invoice.NextNumber, len(s.InvoiceHistory))
	}

	rec = do(t, r, http.MethodGet, "/api/v1/invoices?limit=5", nil)
	var listed struct {
		Invoices []invoiceView `json:"invoices"`
	}
	if err := json.Unmarshal(decode(t, rec).Data, &listed); err != nil {
		t.Fatal(err)
	}
	if len(listed.Invoices) != 1 || listed.Invoices[0].InvoiceNumber != created.Invoice.InvoiceNumber {
		t.Fatalf("listed=%+v", listed)
	}
}

func TestGetInvoiceByNumber(t *testing.T) {
	r, _ := newTestServer(t, true)
	rec := do(t, r, http.MethodPost, "/api/v1/invoices", map[string]any{
		"packlist": packlistText,
		"invoice":  map[string]any{"prefix": "PF", "nextNumber": 3},
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("code=%d body=%s", rec.Code, rec.Body.String())
	}
	var created struct {
		Invoice invoiceView `json:"invoice"`
	}
	if err := json.Unmarshal(decode(t, rec).Data, &created); err != nil {
		t.Fatal(err)
	}

	rec = do(t, r, http.MethodGet, "/api/v1/invoices/"+created.Invoice.InvoiceNumber, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("code=%d body=%s", rec.Code, rec.Body.String())
	}
	var got struct {
		Invoice invoiceView `json:"invoice"`
		Orders  []orderView `json:"orders"`
	}
	if err := json.Unmarshal(decode(t, rec).Data, &got); err != nil {
		t.Fatal(err)
	}
	if got.Invoice.InvoiceNumber != created.Invoice.InvoiceNumber || len(got.Orders) != 2 {
		t.Fatalf("got=%+v", got)
	}
	if got.Orders[1].Position != 2 || got.Orders[1].Name != "Bob" || !strings.HasSuffix(got.Orders[1].SubNumber, "/2") {
		t.Fatalf("order=%+v", got.Orders[1])
	}

	rec = do(t, r, http.MethodGet, "/api/v1/invoices/PF-1999-00001", nil)
	resp := decode(t, rec)
	if rec.Code != http.StatusNotFound || resp.Error == nil || resp.Error.Code != "not_found" {
		t.Fatalf("code=%d body=%s", rec.Code, rec.Body.String())
	}
}

func TestListFallsBackToHistory(t *testing.T) {
	r, _ := newTestServer(t, false)
	rec := do(t, r, http.MethodPost, "/api/v1/invoices", map[string]any{"packlist": packlistText})
	if rec.Code != http.StatusCreated {
		t.Fatalf("code=%d body=%s", rec.Code, rec.Body.String())
	}

	rec = do(t, r, http.MethodGet, "/api/v1/invoices", nil)
	var listed struct {
		Invoices []invoiceView `json:"invoices"`
	}
	if err := json.Unmarshal(decode(t, rec).Data, &listed); err != nil {
		t.Fatal(err)
	}
	if len(listed.Invoices) != 1 || listed.Invoices[0].OrderCount != 2 {
		t.Fatalf("listed=%+v", listed)
	}

	rec = do(t, r, http.MethodGet, "/api/v1/invoices?limit=x", nil)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("code=%d", rec.Code)
	}
}

func TestParseOrders(t *testing.T) {
	r, _ := newTestServer(t, false)
	rec := do(t, r, http.MethodPost, "/api/v1/orders", map[string]any{"packlist": packlistText})
	if rec.Code != http.StatusOK {
		t.Fatalf("code=%d", rec.Code)
	}
	var data struct {
		OrderCount int `json:"orderCount"`
		LineCount  int `json:"lineCount"`
	}
	if err := json.Unmarshal(decode(t, rec).Data, &data); err != nil {
		t.Fatal(err)
	}
	if data.OrderCount != 2 || data.LineCount != 2 {
		t.Fatalf("data=%+v", data)
	}
}

func TestErrorEnvelope(t *testing.T) {
	r, _ := newTestServer(t, false)
	badGuide := filepath.Join(t.TempDir(), "guide.pdf")
	if err := os.WriteFile(badGuide, []byte("%PDF"), 0o644); err != nil {
		t.Fatal(err)
	}

	cases := []struct {
		name   string
		body   any
		status int
		code   string
	}{
		{"missing packlist", map[string]any{}, http.StatusBadRequest, "bad_request"},
		{"header only", map[string]any{"packlist": "Name;Tracking\n"}, http.StatusUnprocessableEntity, "no_orders"},
		{"bad guide", map[string]any{"packlist": packlistText, "guidePath": badGuide}, http.StatusBadRequest, "unsupported_guide"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec := do(t, r, http.MethodPost, "/api/v1/invoices/preview", tc.body)
			if rec.Code != tc.status {
				t.Fatalf("code=%d body=%s", rec.Code, rec.Body.String())
			}
			resp := decode(t, rec)
			if resp.Success || resp.Error == nil || resp.Error.Code != tc.code {
				t.Fatalf("resp=%+v", resp)
			}
		})
	}
}

func TestMapError(t *testing.T) {
	cases := []struct {
		err    error
		status int
	}{
		{fmt.Errorf("build: %w", invoice.ErrNoOrders), http.StatusUnprocessableEntity},
		{fmt.Errorf("read: %w", pipeline.ErrUnsupportedInput), http.StatusUnsupportedMediaType},
		{catalog.ErrUnsupportedGuide, http.StatusBadRequest},
		{settings.ErrProfileNotFound, http.StatusNotFound},
		{errors.New("disk full"), http.StatusInternalServerError},
	}
	for _, tc := range cases {
		if status, _ := mapError(tc.err); status != tc.status {
			t.Fatalf("%v: status=%d want=%d", tc.err, status, tc.status)
		}
	}
}
