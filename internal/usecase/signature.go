package usecase

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// SignatureKind tags a backend signature as a success or error variant.
type SignatureKind string

const (
	SignatureProcessed      SignatureKind = "Processed"
	SignatureErrorProcessed SignatureKind = "Error processed"
)

// signatureTimeLayout is ISO-8601 in UTC with millisecond precision.
const signatureTimeLayout = "2006-01-02T15:04:05.000Z07:00"

// Signature is a parsed backendSignature. It is display only and carries no
// uniqueness guarantee.
type Signature struct {
	Kind    SignatureKind
	BotName string
	At      time.Time
}

func (s Signature) String() string {
	return fmt.Sprintf("%s by %s @ %s", s.Kind, s.BotName, s.At.UTC().Format(signatureTimeLayout))
}

// FormatSignature renders the signature string for a response built at t.
func FormatSignature(kind SignatureKind, botName string, t time.Time) string {
	return Signature{Kind: kind, BotName: botName, At: t}.String()
}

// ParseSignature is the inverse of FormatSignature.
func ParseSignature(raw string) (Signature, error) {
	var kind SignatureKind
	var rest string
	switch {
	case strings.HasPrefix(raw, string(SignatureErrorProcessed)+" by "):
		kind = SignatureErrorProcessed
		rest = strings.TrimPrefix(raw, string(SignatureErrorProcessed)+" by ")
	case strings.HasPrefix(raw, string(SignatureProcessed)+" by "):
		kind = SignatureProcessed
		rest = strings.TrimPrefix(raw, string(SignatureProcessed)+" by ")
	default:
		return Signature{}, errors.New("usecase: signature has unknown prefix")
	}

	idx := strings.LastIndex(rest, " @ ")
	if idx < 0 {
		return Signature{}, errors.New("usecase: signature missing timestamp")
	}
	name := rest[:idx]
	if strings.TrimSpace(name) == "" {
		return Signature{}, errors.New("usecase: signature missing bot name")
	}
	at, err := time.Parse(time.RFC3339Nano, rest[idx+3:])
	if err != nil {
		return Signature{}, fmt.Errorf("usecase: parse signature timestamp: %w", err)
	}
	return Signature{Kind: kind, BotName: name, At: at}, nil
}
