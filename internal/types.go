package internal

type InputSource string

const (
	SourceDelimited InputSource = "delimited"
	SourceHTMLTable InputSource = "html_table"
	SourceXLSX      InputSource = "xlsx"
	SourceEmail     InputSource = "email"
)

type Order struct {
	Name     string      `json:"name"`
	Tracking string      `json:"tracking"`
	Lines    []OrderLine `json:"lines"`
}

type OrderLine struct {
	Product string `json:"product"`
	SKU     string `json:"sku"`
	Amount  int    `json:"amount"`
	Batch   string `json:"batch"`
}

// CatalogProduct is one SKU guide entry. Price is nil when the guide has no price.
type CatalogProduct struct {
	ID        string   `json:"id"`
	GTIN      string   `json:"gtin"`
	Title     string   `json:"title"`
	Batch     string   `json:"batch,omitempty"`
	Price     *float64 `json:"price,omitempty"`
	BBD       string   `json:"bbd,omitempty"`
	ArticleNo string   `json:"articleNo,omitempty"`
	Brand     string   `json:"brand,omitempty"`
}

type CustomProduct struct {
	Title     string   `json:"title,omitempty"`
	GTIN      string   `json:"gtin,omitempty"`
	Batch     string   `json:"batch,omitempty"`
	BBD       string   `json:"bbd,omitempty"`
	ArticleNo string   `json:"articleNo,omitempty"`
	Brand     string   `json:"brand,omitempty"`
	Price     *float64 `json:"price,omitempty"`
}

type ResolvedProduct struct {
	ID        string
	GTIN      string
	Batch     string
	BBD       string
	ArticleNo string
	Title     string
	Brand     string
	Price     float64
}

type LineTotal struct {
	Title     string  `json:"title"`
	SKU       string  `json:"sku"`
	GTIN      string  `json:"gtin"`
	Brand     string  `json:"brand"`
	Batch     string  `json:"batch"`
	BBD       string  `json:"bbd"`
	ArticleNo string  `json:"articleNo"`
	Qty       int     `json:"qty"`
	UnitPrice float64 `json:"unitPrice"`
	LineTotal float64 `json:"lineTotal"`
}

type OrderTotals struct {
	Lines            []LineTotal `json:"lines"`
	Subtotal         float64     `json:"subtotal"`
	ShippingAmount   float64     `json:"shippingAmount"`
	VATAmount        float64     `json:"vatAmount"`
	Total            float64     `json:"total"`
	VATRate          float64     `json:"vatRate"`
	NoItemsAvailable bool        `json:"noItemsAvailable"`
}

type HistoryRecord struct {
	InvoiceNumber string `json:"invoiceNumber"`
	Date          string `json:"date"`
	IssuedTo      string `json:"issuedTo"`
	FilePath      string `json:"filePath"`
	OrderCount    int    `json:"orderCount"`
}

type InvoiceRow struct {
	ID            int
	InvoiceNumber string
	IssuedOn      string
	IssuedTo      string
	FilePath      string
	OrderCount    int
	Currency      string
	Subtotal      float64
	VATAmount     float64
	Total         float64
	CreatedAt     string
}

type InvoiceOrderRow struct {
	InvoiceID      int
	Position       int
	SubNumber      string
	Name           string
	Tracking       string
	LineCount      int
	Subtotal       float64
	ShippingAmount float64
	VATAmount      float64
	Total          float64
}

type FetchedMailMessage struct {
	Provider   string
	MessageID  string
	Subject    string
	From       string
	ReceivedAt string
	Raw        []byte
}

type InboxMessageRow struct {
	ID            int
	Provider      string
	MessageID     string
	Subject       string
	Sender        string
	ReceivedAt    string
	Hash          string
	Status        string
	RawRef        string
	InvoiceNumber *string
}

type SenderProfile struct {
	ID          string `json:"id,omitempty"`
	Name        string `json:"name"`
	Address     string `json:"address"`
	VATNumber   string `json:"vatNumber"`
	CompanyCode string `json:"companyCode"`
	Phone       string `json:"phone"`
	Email       string `json:"email"`
	CEO         string `json:"ceo"`
	Website     string `json:"website"`
	LogoPath    string `json:"logoPath"`
	BankName    string `json:"bankName"`
	BankAddress string `json:"bankAddress,omitempty"`
	BankAccount string `json:"bankAccount"`
	SWIFT       string `json:"swift"`
}

type ReceiverProfile struct {
	ID        string `json:"id,omitempty"`
	Name      string `json:"name"`
	Address   string `json:"address"`
	VATNumber string `json:"vatNumber"`
}
