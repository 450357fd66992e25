package connectors

import (
	"crypto/sha256"
	"encoding/hex"
	"os"
	"path/filepath"

	"proforma/internal"
	"proforma/internal/storage"
	"proforma/internal/util"
)

// MailStore keeps each raw message once, named by its content hash, and
// registers it in the inbox ledger as fetched.
type MailStore struct {
	db     *storage.DB
	rawDir string
}

func NewMailStore(db *storage.DB, rawDir string) *MailStore {
	return &MailStore{db: db, rawDir: rawDir}
}

// Store is idempotent: a message seen before keeps its processing status.
func (s *MailStore) Store(msg internal.FetchedMailMessage) (internal.InboxMessageRow, error) {
	sum := sha256.Sum256(msg.Raw)
	hash := hex.EncodeToString(sum[:])

	rawPath := filepath.Join(s.rawDir, hash+".eml")
	if _, err := os.Stat(rawPath); os.IsNotExist(err) {
		if err := util.WriteFileAtomic(rawPath, msg.Raw, 0o644); err != nil {
			return internal.InboxMessageRow{}, err
		}
	}

	return s.db.UpsertInboxMessage(msg.Provider, msg.MessageID, msg.Subject, msg.From, msg.ReceivedAt, hash, rawPath, "fetched")
}
