package settings

import (
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"

	"proforma/internal"
	"proforma/internal/invoice"
)

var ErrProfileNotFound = errors.New("profile not found")

// ActiveSender picks the selected sender profile, else the first one, else
// the legacy company block. The second result is false when none exists.
func (s Settings) ActiveSender() (internal.SenderProfile, bool) {
	if s.ActiveSenderID != "" {
		for _, p := range s.SenderProfiles {
			if p.ID == s.ActiveSenderID {
				return p, true
			}
		}
	}
	if len(s.SenderProfiles) > 0 {
		return s.SenderProfiles[0], true
	}
	if s.Company != nil {
		return *s.Company, true
	}
	return internal.SenderProfile{}, false
}

func (s Settings) ActiveReceiver() (internal.ReceiverProfile, bool) {
	if s.ActiveReceiverID != "" {
		for _, p := range s.ReceiverProfiles {
			if p.ID == s.ActiveReceiverID {
				return p, true
			}
		}
	}
	if len(s.ReceiverProfiles) > 0 {
		return s.ReceiverProfiles[0], true
	}
	if s.Buyer != nil {
		return *s.Buyer, true
	}
	return internal.ReceiverProfile{}, false
}

func (s *Settings) SetActiveSender(id string) error {
	for _, p := range s.SenderProfiles {
		if p.ID == id {
			s.ActiveSenderID = id
			return nil
		}
	}
	return ErrProfileNotFound
}

func (s *Settings) SetActiveReceiver(id string) error {
	for _, p := range s.ReceiverProfiles {
		if p.ID == id {
			s.ActiveReceiverID = id
			return nil
		}
	}
	return ErrProfileNotFound
}

// Migrate turns the legacy company/buyer blocks into profiles when no
// profiles exist yet. The legacy blocks are kept as they were.
func Migrate(s Settings) Settings {
	out := s
	out.SenderProfiles = append([]internal.SenderProfile{}, s.SenderProfiles...)
	out.ReceiverProfiles = append([]internal.ReceiverProfile{}, s.ReceiverProfiles...)

	if s.Company != nil && len(out.SenderProfiles) == 0 {
		p := *s.Company
		p.ID = "sender-" + uuid.NewString()
		out.SenderProfiles = append(out.SenderProfiles, p)
		out.ActiveSenderID = p.ID
	}

	if b := s.Buyer; b != nil && len(out.ReceiverProfiles) == 0 && (b.Name != "" || b.Address != "" || b.VATNumber != "") {
		p := *b
		p.ID = "receiver-" + uuid.NewString()
		out.ReceiverProfiles = append(out.ReceiverProfiles, p)
		out.ActiveReceiverID = p.ID
	}

	out.normalize()
	return out
}

// InvoiceOverrides are per-request replacements for the invoice block. Empty
// fields keep the stored value.
type InvoiceOverrides struct {
	Currency      string `json:"currency"`
	Prefix        string `json:"prefix"`
	NextNumber    *int   `json:"nextNumber"`
	PaymentTerms  string `json:"paymentTerms"`
	DeliveryTerms string `json:"deliveryTerms"`
	FooterNotes   string `json:"footerNotes"`
	BatchNumber   string `json:"batchNumber"`
}

// ToInvoiceConfig copies everything a build needs into an engine snapshot.
// Later changes to s do not reach the snapshot.
func (s Settings) ToInvoiceConfig(o InvoiceOverrides, now time.Time) invoice.Config {
	sender, _ := s.ActiveSender()
	receiver, _ := s.ActiveReceiver()

	inv := invoice.Settings{
		Currency:      pick(o.Currency, s.Invoice.Currency),
		Prefix:        pick(o.Prefix, s.Invoice.Prefix),
		NextNumber:    s.Invoice.NextNumber.Int(),
		PaymentTerms:  pick(o.PaymentTerms, s.Invoice.PaymentTerms),
		DeliveryTerms: pick(o.DeliveryTerms, s.Invoice.DeliveryTerms),
		FooterNotes:   pick(o.FooterNotes, s.Invoice.FooterNotes),
		BatchNumber:   pick(o.BatchNumber, s.Invoice.BatchNumber),
	}
	if o.NextNumber != nil {
		inv.NextNumber = *o.NextNumber
	}

	prices := make(map[string]float64, len(s.Prices))
	for k, v := range s.Prices {
		prices[k] = v.Float()
	}
	custom := make(map[string]internal.CustomProduct, len(s.CustomProducts))
	for k, v := range s.CustomProducts {
		cp := internal.CustomProduct{
			Title:     v.Title,
			GTIN:      v.GTIN,
			Batch:     v.Batch,
			BBD:       v.BBD,
			ArticleNo: v.ArticleNo,
			Brand:     v.Brand,
		}
		if v.Price != nil {
			price := v.Price.Float()
			cp.Price = &price
		}
		custom[k] = cp
	}
	stock := make(map[string]bool, len(s.InStock))
	for k, v := range s.InStock {
		stock[k] = v
	}

	return invoice.Config{
		Sender:         sender,
		Receiver:       receiver,
		Tax:            invoice.Tax{VATRatePercent: s.Tax.VATRatePercent.Float(), PricesIncludeVAT: s.Tax.PricesIncludeVAT},
		Shipping:       invoice.Shipping{Mode: s.Shipping.Mode, FixedAmount: s.Shipping.FixedAmount.Float()},
		Invoice:        inv,
		Prices:         prices,
		CustomProducts: custom,
		InStock:        stock,
		Now:            now,
	}
}

func pick(override, stored string) string {
	if strings.TrimSpace(override) != "" {
		return override
	}
	return stored
}
