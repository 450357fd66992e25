package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"

	"proforma/internal"
)

type DB struct {
	conn *sql.DB
}

func Open(path string) (*DB, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}

	conn, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}

	if _, err := conn.Exec(`PRAGMA journal_mode = WAL;`); err != nil {
		_ = conn.Close()
		return nil, err
	}
	if _, err := conn.Exec(`PRAGMA foreign_keys = ON;`); err != nil {
		_ = conn.Close()
		return nil, err
	}

	db := &DB{conn: conn}
	if err := db.init(); err != nil {
		_ = conn.Close()
		return nil, err
	}

	return db, nil
}

func (d *DB) Close() error {
	return d.conn.Close()
}

func (d *DB) Ping(ctx context.Context) error {
	return d.conn.PingContext(ctx)
}

func (d *DB) init() error {
	schema := `
CREATE TABLE IF NOT EXISTS catalog_products (
  id TEXT PRIMARY KEY,
  gtin TEXT NOT NULL DEFAULT '',
  title TEXT NOT NULL DEFAULT '',
  batch TEXT NOT NULL DEFAULT '',
  price REAL,
  bbd TEXT NOT NULL DEFAULT '',
  articleNo TEXT NOT NULL DEFAULT '',
  brand TEXT NOT NULL DEFAULT '',
  lastSeenAt TEXT NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS invoices (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  invoiceNumber TEXT NOT NULL UNIQUE,
  issuedOn TEXT NOT NULL,
  issuedTo TEXT NOT NULL DEFAULT '',
  filePath TEXT NOT NULL DEFAULT '',
  orderCount INTEGER NOT NULL,
  currency TEXT NOT NULL,
  subtotal REAL NOT NULL,
  vatAmount REAL NOT NULL,
  total REAL NOT NULL,
  createdAt TEXT NOT NULL DEFAULT CURRENT_TIMESTAMP
);
CREATE INDEX IF NOT EXISTS idx_invoices_issuedOn ON invoices(issuedOn);

CREATE TABLE IF NOT EXISTS invoice_orders (
  invoiceId INTEGER NOT NULL,
  position INTEGER NOT NULL,
  subNumber TEXT NOT NULL,
  name TEXT NOT NULL DEFAULT '',
  tracking TEXT NOT NULL DEFAULT '',
  lineCount INTEGER NOT NULL,
  subtotal REAL NOT NULL,
  shippingAmount REAL NOT NULL,
  vatAmount REAL NOT NULL,
  total REAL NOT NULL,
  PRIMARY KEY(invoiceId, position),
  FOREIGN KEY(invoiceId) REFERENCES invoices(id) ON DELETE CASCADE
);

CREATE TABLE IF NOT EXISTS inbox_messages (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  provider TEXT NOT NULL,
  messageId TEXT NOT NULL,
  subject TEXT,
  sender TEXT,
  receivedAt TEXT,
  hash TEXT NOT NULL,
  status TEXT NOT NULL DEFAULT 'fetched',
  rawRef TEXT NOT NULL,
  invoiceNumber TEXT,
  createdAt TEXT NOT NULL DEFAULT CURRENT_TIMESTAMP,
  updatedAt TEXT NOT NULL DEFAULT CURRENT_TIMESTAMP,
  UNIQUE(provider, messageId)
);

CREATE TABLE IF NOT EXISTS metadata (
  key TEXT PRIMARY KEY,
  value TEXT NOT NULL,
  updatedAt TEXT NOT NULL DEFAULT CURRENT_TIMESTAMP
);
`

	_, err := d.conn.Exec(schema)
	return err
}

func (d *DB) UpsertCatalogProducts(products []internal.CatalogProduct) error {
	tx, err := d.conn.Begin()
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.Prepare(`
INSERT INTO catalog_products (id, gtin, title, batch, price, bbd, articleNo, brand, lastSeenAt)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, CURRENT_TIMESTAMP)
ON CONFLICT(id) DO UPDATE SET
  gtin=excluded.gtin,
  title=excluded.title,
  batch=excluded.batch,
  price=excluded.price,
  bbd=excluded.bbd,
  articleNo=excluded.articleNo,
  brand=excluded.brand,
  lastSeenAt=CURRENT_TIMESTAMP
`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, p := range products {
		if _, err := stmt.Exec(p.ID, p.GTIN, p.Title, p.Batch, p.Price, p.BBD, p.ArticleNo, p.Brand); err != nil {
			return fmt.Errorf("upsert catalog product %s: %w", p.ID, err)
		}
	}

	return tx.Commit()
}

func (d *DB) ListCatalogProducts() ([]internal.CatalogProduct, error) {
	rows, err := d.conn.Query(`
SELECT id, gtin, title, batch, price, bbd, articleNo, brand
FROM catalog_products ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []internal.CatalogProduct{}
	for rows.Next() {
		var p internal.CatalogProduct
		if err := rows.Scan(&p.ID, &p.GTIN, &p.Title, &p.Batch, &p.Price, &p.BBD, &p.ArticleNo, &p.Brand); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

// RecordInvoice stores a committed invoice and its per-order totals. Recording
// the same invoice number again replaces the earlier entry.
func (d *DB) RecordInvoice(inv internal.InvoiceRow, orders []internal.InvoiceOrderRow) (int, error) {
	tx, err := d.conn.Begin()
	if err != nil {
		return 0, err
	}
	defer func() { _ = tx.Rollback() }()

	var id int
	err = tx.QueryRow(`
INSERT INTO invoices (invoiceNumber, issuedOn, issuedTo, filePath, orderCount, currency, subtotal, vatAmount, total)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
ON CONFLICT(invoiceNumber) DO UPDATE SET
  issuedOn=excluded.issuedOn,
  issuedTo=excluded.issuedTo,
  filePath=excluded.filePath,
  orderCount=excluded.orderCount,
  currency=excluded.currency,
  subtotal=excluded.subtotal,
  vatAmount=excluded.vatAmount,
  total=excluded.total,
  createdAt=CURRENT_TIMESTAMP
RETURNING id
`, inv.InvoiceNumber, inv.IssuedOn, inv.IssuedTo, inv.FilePath, inv.OrderCount, inv.Currency, inv.Subtotal, inv.VATAmount, inv.Total).Scan(&id)
	if err != nil {
		return 0, err
	}

	if _, err := tx.Exec(`DELETE FROM invoice_orders WHERE invoiceId = ?`, id); err != nil {
		return 0, err
	}

	stmt, err := tx.Prepare(`
INSERT INTO invoice_orders (invoiceId, position, subNumber, name, tracking, lineCount, subtotal, shippingAmount, vatAmount, total)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return 0, err
	}
	defer stmt.Close()

	for _, o := range orders {
		if _, err := stmt.Exec(id, o.Position, o.SubNumber, o.Name, o.Tracking, o.LineCount, o.Subtotal, o.ShippingAmount, o.VATAmount, o.Total); err != nil {
			return 0, err
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, err
	}
	return id, nil
}

const invoiceColumns = `id, invoiceNumber, issuedOn, issuedTo, filePath, orderCount, currency, subtotal, vatAmount, total, createdAt`

func scanInvoice(s interface{ Scan(...any) error }) (internal.InvoiceRow, error) {
	var row internal.InvoiceRow
	err := s.Scan(&row.ID, &row.InvoiceNumber, &row.IssuedOn, &row.IssuedTo, &row.FilePath, &row.OrderCount, &row.Currency, &row.Subtotal, &row.VATAmount, &row.Total, &row.CreatedAt)
	return row, err
}

// ListInvoices returns the newest invoices first.
func (d *DB) ListInvoices(limit int) ([]internal.InvoiceRow, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := d.conn.Query(`SELECT `+invoiceColumns+` FROM invoices ORDER BY id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []internal.InvoiceRow{}
	for rows.Next() {
		row, err := scanInvoice(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, row)
	}
	return out, rows.Err()
}

func (d *DB) GetInvoiceByNumber(number string) (*internal.InvoiceRow, error) {
	row, err := scanInvoice(d.conn.QueryRow(`SELECT `+invoiceColumns+` FROM invoices WHERE invoiceNumber = ?`, number))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &row, nil
}

func (d *DB) ListInvoiceOrders(invoiceID int) ([]internal.InvoiceOrderRow, error) {
	rows, err := d.conn.Query(`
SELECT invoiceId, position, subNumber, name, tracking, lineCount, subtotal, shippingAmount, vatAmount, total
FROM invoice_orders WHERE invoiceId = ? ORDER BY position`, invoiceID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []internal.InvoiceOrderRow{}
	for rows.Next() {
		var o internal.InvoiceOrderRow
		if err := rows.Scan(&o.InvoiceID, &o.Position, &o.SubNumber, &o.Name, &o.Tracking, &o.LineCount, &o.Subtotal, &o.ShippingAmount, &o.VATAmount, &o.Total); err != nil {
			return nil, err
		}
		out = append(out, o)
	}
	return out, rows.Err()
}

func (d *DB) UpsertInboxMessage(provider, messageID, subject, sender, receivedAt, hash, rawRef, status string) (internal.InboxMessageRow, error) {
	_, err := d.conn.Exec(`
INSERT INTO inbox_messages (provider, messageId, subject, sender, receivedAt, hash, status, rawRef)
VALUES (?, ?, ?, ?, ?, ?, ?, ?)
ON CONFLICT(provider, messageId) DO UPDATE SET
  subject=excluded.subject,
  sender=excluded.sender,
  receivedAt=excluded.receivedAt,
  hash=excluded.hash,
  rawRef=excluded.rawRef,
  updatedAt=CURRENT_TIMESTAMP
`, provider, messageID, subject, sender, receivedAt, hash, status, rawRef)
	if err != nil {
		return internal.InboxMessageRow{}, err
	}

	row, err := d.GetInboxMessage(provider, messageID)
	if err != nil {
		return internal.InboxMessageRow{}, err
	}
	if row == nil {
		return internal.InboxMessageRow{}, errors.New("failed to upsert inbox message")
	}
	return *row, nil
}

const inboxColumns = `id, provider, messageId, subject, sender, receivedAt, hash, status, rawRef, invoiceNumber`

func scanInbox(s interface{ Scan(...any) error }) (internal.InboxMessageRow, error) {
	var row internal.InboxMessageRow
	var subject, sender, receivedAt sql.NullString
	err := s.Scan(&row.ID, &row.Provider, &row.MessageID, &subject, &sender, &receivedAt, &row.Hash, &row.Status, &row.RawRef, &row.InvoiceNumber)
	row.Subject = subject.String
	row.Sender = sender.String
	row.ReceivedAt = receivedAt.String
	return row, err
}

func (d *DB) GetInboxMessage(provider, messageID string) (*internal.InboxMessageRow, error) {
	row, err := scanInbox(d.conn.QueryRow(`SELECT `+inboxColumns+` FROM inbox_messages WHERE provider = ? AND messageId = ?`, provider, messageID))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &row, nil
}

func (d *DB) ListInboxMessagesByStatus(status string, limit int) ([]internal.InboxMessageRow, error) {
	rows, err := d.conn.Query(`SELECT `+inboxColumns+` FROM inbox_messages WHERE status = ? ORDER BY receivedAt ASC LIMIT ?`, status, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []internal.InboxMessageRow
	for rows.Next() {
		row, err := scanInbox(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, row)
	}
	return out, rows.Err()
}

func (d *DB) UpdateInboxStatus(id int, status string, invoiceNumber *string) error {
	_, err := d.conn.Exec(`UPDATE inbox_messages SET status = ?, invoiceNumber = COALESCE(?, invoiceNumber), updatedAt = CURRENT_TIMESTAMP WHERE id = ?`, status, invoiceNumber, id)
	return err
}

func (d *DB) GetMetadata(key string) (*string, error) {
	var value string
	err := d.conn.QueryRow(`SELECT value FROM metadata WHERE key = ?`, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &value, nil
}

func (d *DB) SetMetadata(key, value string) error {
	_, err := d.conn.Exec(`
INSERT INTO metadata (key, value, updatedAt) VALUES (?, ?, CURRENT_TIMESTAMP)
ON CONFLICT(key) DO UPDATE SET value=excluded.value, updatedAt=CURRENT_TIMESTAMP
`, key, value)
	return err
}
