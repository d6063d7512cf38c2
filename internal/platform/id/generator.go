package id

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"strings"
)

// Generator creates opaque IDs suitable for external references. The
// optional prefix keeps entity kinds distinguishable in logs and support
// tooling (e.g. TXN_..., TEAM_...).
type Generator interface {
	NewID(prefix string) (string, error)
}

type RandomGenerator struct{}

func NewRandomGenerator() *RandomGenerator {
	return &RandomGenerator{}
}

func (g *RandomGenerator) NewID(prefix string) (string, error) {
	buf := make([]byte, 16)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("read random bytes: %w", err)
	}

	raw := hex.EncodeToString(buf)
	prefix = strings.TrimSpace(prefix)
	if prefix == "" {
		return raw, nil
	}
	return prefix + "_" + raw, nil
}

// Entity prefixes used across the platform.
const (
	PrefixUser        = "USR"
	PrefixMatch       = "MAT"
	PrefixContest     = "CONT"
	PrefixTeam        = "TEAM"
	PrefixTransaction = "TXN"
)
