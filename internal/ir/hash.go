package ir

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

// Domain prefixes for content-addressed identity.
// Version suffix enables future algorithm migration.
const (
	DomainDefinition = "chipsim/definition/v1"
	DomainProgram    = "chipsim/program/v1"
)

// hashWithDomain computes SHA256(domain + 0x00 + data).
// The null byte separator prevents domain/data boundary ambiguity.
func hashWithDomain(domain string, data []byte) string {
	h := sha256.New()
	h.Write([]byte(domain))
	h.Write([]byte{0x00})
	h.Write(data)
	return hex.EncodeToString(h.Sum(nil))
}

// DefinitionHash computes the identity of a definition's topology.
//
// Only fields that affect evaluation are hashed: each sub-chip's kind and
// pin count, and each wire's endpoints, in declaration order. Two definitions
// with equal hashes compile to identical programs.
func DefinitionHash(def *ChipDefinition) (string, error) {
	chips := make([]any, len(def.Chips))
	for i, c := range def.Chips {
		chips[i] = map[string]any{
			"kind":      string(c.Kind),
			"pin_count": c.PinCount,
		}
	}
	wires := make([]any, len(def.Wires))
	for i, w := range def.Wires {
		wires[i] = map[string]any{
			"from": []any{w.From.Chip(), w.From.Pin()},
			"to":   []any{w.To.Chip(), w.To.Pin()},
		}
	}

	canonical, err := MarshalCanonical(map[string]any{
		"chips": chips,
		"wires": wires,
	})
	if err != nil {
		return "", fmt.Errorf("DefinitionHash: failed to marshal: %w", err)
	}
	return hashWithDomain(DomainDefinition, canonical), nil
}

// ProgramHash computes the identity of compiled program text.
func ProgramHash(code string) string {
	return hashWithDomain(DomainProgram, []byte(code))
}

// MustDefinitionHash is like DefinitionHash but panics on error.
// Use only in tests or when inputs are known to be valid.
func MustDefinitionHash(def *ChipDefinition) string {
	h, err := DefinitionHash(def)
	if err != nil {
		panic(err)
	}
	return h
}
