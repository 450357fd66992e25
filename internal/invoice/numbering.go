package invoice

import (
	"fmt"
	"strings"
	"time"
)

const defaultPrefix = "INV"

type Numbering struct {
	Base string
	Next int
}

// NewNumbering derives the batch number PREFIX-YEAR-NNNNN from the configured
// sequence value. Next is the value to persist once the batch is committed.
func NewNumbering(prefix string, nextNumber int, now time.Time) Numbering {
	prefix = strings.TrimSpace(prefix)
	if prefix == "" {
		prefix = defaultPrefix
	}
	if nextNumber <= 0 {
		nextNumber = 1
	}
	return Numbering{
		Base: fmt.Sprintf("%s-%d-%05d", prefix, now.Year(), nextNumber),
		Next: nextNumber + 1,
	}
}

// Sub returns the number of the i-th order in the batch, counting from 1.
func (n Numbering) Sub(i int) string {
	return fmt.Sprintf("%s/%d", n.Base, i)
}
