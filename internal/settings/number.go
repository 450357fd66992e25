package settings

import (
	"bytes"
	"encoding/json"
	"strconv"

	"proforma/internal/util"
)

// Number is a numeric settings field that never fails to decode. Numbers,
// numeric strings (decimal comma allowed) and null are accepted; anything
// else reads as 0.
type Number float64

func (n *Number) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	*n = 0
	if len(b) == 0 {
		return nil
	}
	switch b[0] {
	case '"':
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return nil
		}
		if v, ok := util.ParseDecimal(s); ok {
			*n = Number(v)
		}
	case '-', '0', '1', '2', '3', '4', '5', '6', '7', '8', '9':
		if v, err := strconv.ParseFloat(string(b), 64); err == nil {
			*n = Number(v)
		}
	}
	return nil
}

func (n Number) Float() float64 { return float64(n) }

func (n Number) Int() int { return int(n) }
