package assistant

import (
	"strings"
)

// GuardrailResult is the outcome of the pre-generation input check.
// When Passed is false, Flag names the first matched signature and
// the request must be answered with BlockedResponse(Flag) instead of
// reaching the provider.
type GuardrailResult struct {
	Passed    bool
	Flag      string
	Flags     []string
	Sanitized string
}

const maxMessageLen = 2000

type signatureSet struct {
	category string
	patterns []string
}

// Signature vocabulary is intentionally small; anything subtler is
// the upstream model's problem, not this filter's. Order matters:
// the first matching category becomes the primary flag.
var unsafeSignatures = []signatureSet{
	{"self-harm", []string{
		"kill myself", "hurt myself", "end my life", "suicide",
	}},
	{"violence", []string{
		"how to hurt", "how to kill", "make a weapon", "make a bomb",
	}},
	{"prompt-injection", []string{
		"ignore previous instructions", "ignore all instructions",
		"reveal your system prompt", "you are now dan",
	}},
	{"harassment", []string{
		"write hate", "racist joke",
	}},
}

var blockedResponses = map[string]string{
	"self-harm":        "I'm really sorry you're feeling this way. I'm a career assistant and not equipped to help with this, but please reach out to someone you trust or a local helpline right away.",
	"violence":         "I can't help with that. I'm here to support your career journey. Ask me about jobs, skills, or learning paths instead.",
	"prompt-injection": "Let's keep things on track. Ask me anything about your career, skills, or opportunities and I'll do my best to help.",
	"harassment":       "I can't help with that. I'm here to support your career journey. Ask me about jobs, skills, or learning paths instead.",
	"default":          "I can only help with career-related questions. Ask me about jobs, skills, courses, or your profile.",
}

// SanitizeInput trims, strips control characters and caps the length.
// Returns "" when nothing usable remains.
func SanitizeInput(raw string) string {
	cleaned := strings.Map(func(r rune) rune {
		if r == '\n' || r == '\t' {
			return ' '
		}
		if r < 0x20 || r == 0x7f {
			return -1
		}
		return r
	}, raw)
	cleaned = strings.Join(strings.Fields(cleaned), " ")
	if len(cleaned) > maxMessageLen {
		cleaned = cleaned[:maxMessageLen]
	}
	return cleaned
}

// RunGuardrails validates and sanitizes a raw message. It never calls
// out anywhere; blocked input must not cost a provider round trip.
func RunGuardrails(raw string) GuardrailResult {
	sanitized := SanitizeInput(raw)
	if sanitized == "" {
		return GuardrailResult{Passed: false, Flag: "empty", Flags: []string{"empty"}}
	}

	lower := strings.ToLower(sanitized)
	var flags []string
	for _, set := range unsafeSignatures {
		for _, sig := range set.patterns {
			if strings.Contains(lower, sig) {
				flags = append(flags, set.category)
				break
			}
		}
	}
	if len(flags) > 0 {
		return GuardrailResult{Passed: false, Flag: flags[0], Flags: flags, Sanitized: sanitized}
	}
	return GuardrailResult{Passed: true, Sanitized: sanitized}
}

// BlockedResponse returns the canned answer for a guardrail flag. The
// caller renders it as a normal assistant message, not an error.
func BlockedResponse(flag string) string {
	if msg, ok := blockedResponses[flag]; ok {
		return msg
	}
	return blockedResponses["default"]
}

// ValidateResponse runs post-hoc heuristics over the accumulated
// answer. Flags are logged, never blocking.
func ValidateResponse(text string) []string {
	var flags []string
	lower := strings.ToLower(text)
	for _, set := range unsafeSignatures {
		for _, sig := range set.patterns {
			if strings.Contains(lower, sig) {
				flags = append(flags, "response-"+set.category)
				break
			}
		}
	}
	if strings.Contains(lower, "as an ai language model") {
		flags = append(flags, "persona-break")
	}
	return flags
}
