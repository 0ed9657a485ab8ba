package usecase

import (
	"bytes"
	"encoding/json"
	"strings"
)

const (
	greetingReply = "Greetings, human! How can I assist you?"
	echoPrefix    = "BOT SAYS: "
)

// greetingTriggers are matched as plain substrings of the lower-cased
// message, so "this" greets as well as "hi".
var greetingTriggers = []string{"hello", "hi"}

// Reply applies the reply rules to an already validated, trimmed message.
// Upper-casing maps each rune on its own, so "ß" and ligatures are kept.
func Reply(message string) string {
	lowered := strings.ToLower(message)
	for _, trigger := range greetingTriggers {
		if strings.Contains(lowered, trigger) {
			return greetingReply
		}
	}
	return echoPrefix + strings.ToUpper(message)
}

// decodeMessage validates the raw "message" field and returns it trimmed.
func decodeMessage(raw json.RawMessage) (string, *Error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return "", newError(ErrorValidation, "missing_message", nil)
	}
	if raw[0] != '"' {
		return "", newError(ErrorValidation, "message_not_string", nil)
	}
	var message string
	if err := json.Unmarshal(raw, &message); err != nil {
		return "", newError(ErrorValidation, "message_not_string", err)
	}
	message = strings.TrimSpace(message)
	if message == "" {
		return "", newError(ErrorValidation, "empty_message", nil)
	}
	return message, nil
}
