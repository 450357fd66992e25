package settings

import (
	"proforma/internal"
)

type InvoiceBlock struct {
	Currency      string `json:"currency"`
	Prefix        string `json:"prefix"`
	NextNumber    Number `json:"nextNumber"`
	SaveDirectory string `json:"saveDirectory"`
	PaymentTerms  string `json:"paymentTerms"`
	DeliveryTerms string `json:"deliveryTerms"`
	FooterNotes   string `json:"footerNotes"`
	BatchNumber   string `json:"batchNumber"`
}

type TaxBlock struct {
	VATRatePercent   Number `json:"vatRatePercent"`
	PricesIncludeVAT bool   `json:"pricesIncludeVat"`
}

type ShippingBlock struct {
	Mode        string `json:"mode"`
	FixedAmount Number `json:"fixedAmount"`
}

type CustomProduct struct {
	Title     string  `json:"title,omitempty"`
	GTIN      string  `json:"gtin,omitempty"`
	Batch     string  `json:"batch,omitempty"`
	BBD       string  `json:"bbd,omitempty"`
	ArticleNo string  `json:"articleNo,omitempty"`
	Brand     string  `json:"brand,omitempty"`
	Price     *Number `json:"price,omitempty"`
}

// Settings is the persisted invoice configuration document.
type Settings struct {
	SenderProfiles   []internal.SenderProfile   `json:"senderProfiles"`
	ReceiverProfiles []internal.ReceiverProfile `json:"receiverProfiles"`
	ActiveSenderID   string                     `json:"activeSenderId"`
	ActiveReceiverID string                     `json:"activeReceiverId"`
	Invoice          InvoiceBlock               `json:"invoice"`
	InStock          map[string]bool            `json:"inStock"`
	InvoiceHistory   []internal.HistoryRecord   `json:"invoiceHistory"`
	Tax              TaxBlock                   `json:"tax"`
	Shipping         ShippingBlock              `json:"shipping"`
	Prices           map[string]Number          `json:"prices"`
	CustomProducts   map[string]CustomProduct   `json:"customProducts"`

	// Single-profile layout of older files, folded into the profile lists by Migrate.
	Company *internal.SenderProfile   `json:"company,omitempty"`
	Buyer   *internal.ReceiverProfile `json:"buyer,omitempty"`
}

func Defaults() Settings {
	return Settings{
		SenderProfiles:   []internal.SenderProfile{},
		ReceiverProfiles: []internal.ReceiverProfile{},
		Invoice: InvoiceBlock{
			Currency:     "EUR",
			Prefix:       "INV",
			NextNumber:   1,
			PaymentTerms: "Net 30",
		},
		InStock:        map[string]bool{},
		InvoiceHistory: []internal.HistoryRecord{},
		Tax:            TaxBlock{VATRatePercent: 20},
		Shipping:       ShippingBlock{Mode: "fixed"},
		Prices:         map[string]Number{},
		CustomProducts: map[string]CustomProduct{},
	}
}

// normalize replaces nil collections so the document always round-trips with
// empty arrays and objects instead of null.
func (s *Settings) normalize() {
	if s.SenderProfiles == nil {
		s.SenderProfiles = []internal.SenderProfile{}
	}
	if s.ReceiverProfiles == nil {
		s.ReceiverProfiles = []internal.ReceiverProfile{}
	}
	if s.InStock == nil {
		s.InStock = map[string]bool{}
	}
	if s.InvoiceHistory == nil {
		s.InvoiceHistory = []internal.HistoryRecord{}
	}
	if s.Prices == nil {
		s.Prices = map[string]Number{}
	}
	if s.CustomProducts == nil {
		s.CustomProducts = map[string]CustomProduct{}
	}
}
