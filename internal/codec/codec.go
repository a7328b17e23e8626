// Package codec maps tracker records to single lines of text and back.
// Line is the legacy Kind{key='value', ...} encoding; JSONL is a structured
// alternative. Stores depend only on the Codec interface.
package codec

import (
	"fmt"

	"github.com/mesh-intelligence/tracker/pkg/types"
)

// Codec encodes one record per line. Encoded lines never contain a newline
// for records whose text fields do not.
type Codec interface {
	Encode(rec types.Record) (string, error)
	Decode(line string) (types.Record, error)
}

// ForFormat returns the codec registered for a config format name.
func ForFormat(format string) (Codec, error) {
	switch format {
	case "", types.FormatLine:
		return Line{}, nil
	case types.FormatJSONL:
		return JSONL{}, nil
	default:
		return nil, fmt.Errorf("%q: %w", format, types.ErrFormatUnknown)
	}
}

func malformed(line, reason string) error {
	return fmt.Errorf("%w: %s: %q", types.ErrMalformedRecord, reason, line)
}
