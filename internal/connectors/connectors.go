package connectors

import (
	"context"

	"proforma/internal"
)

// MailConnector pulls raw messages from a mailbox. Implementations return at
// most max messages from label.
type MailConnector interface {
	FetchInbox(ctx context.Context, label string, max int) ([]internal.FetchedMailMessage, error)
}
