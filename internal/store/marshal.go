package store

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/roach88/chipsim/internal/ir"
)

// marshalDefinition converts a definition to JSON TEXT for storage. Code is
// stored in its own column and left out of the document.
func marshalDefinition(def *ir.ChipDefinition) (string, error) {
	stripped := *def
	stripped.Code = ""

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(&stripped); err != nil {
		return "", fmt.Errorf("marshal definition: %w", err)
	}
	// Encoder adds a trailing newline, remove it
	return strings.TrimSpace(buf.String()), nil
}

// unmarshalDefinition parses stored JSON TEXT and restores code.
func unmarshalDefinition(data, code string) (*ir.ChipDefinition, error) {
	var def ir.ChipDefinition
	if err := json.Unmarshal([]byte(data), &def); err != nil {
		return nil, fmt.Errorf("unmarshal definition: %w", err)
	}
	def.Code = code
	return &def, nil
}
