package invoice

import (
	"time"

	"proforma/internal"
)

const ShippingFixed = "fixed"

type Tax struct {
	VATRatePercent   float64
	PricesIncludeVAT bool
}

type Shipping struct {
	Mode        string
	FixedAmount float64
}

type Settings struct {
	Currency      string
	Prefix        string
	NextNumber    int
	PaymentTerms  string
	DeliveryTerms string
	FooterNotes   string
	BatchNumber   string
}

// Config is the snapshot a single build works from. Nothing in this package
// writes to it; the caller persists NextNumber after a committed build.
type Config struct {
	Sender         internal.SenderProfile
	Receiver       internal.ReceiverProfile
	Tax            Tax
	Shipping       Shipping
	Invoice        Settings
	Prices         map[string]float64
	CustomProducts map[string]internal.CustomProduct
	InStock        map[string]bool
	Now            time.Time
}

func (c Config) now() time.Time {
	if c.Now.IsZero() {
		return time.Now()
	}
	return c.Now
}

func (c Config) currency() string {
	if c.Invoice.Currency == "" {
		return "EUR"
	}
	return c.Invoice.Currency
}
