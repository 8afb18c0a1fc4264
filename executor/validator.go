package executor

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

// Default argument limits
const (
	DefaultMaxArgLength = 65536
	DefaultMaxArgs      = 1024
)

// forbiddenChars have special meaning to a shell
var forbiddenChars = []string{";", "|", "&", "$", "`", "\n", "\r", "\x00"}

var substitutionMarkers = []string{"$(", "${", "`"}

// Validator rejects arguments that could be abused for command injection
// or resource exhaustion before any process is created
type Validator struct {
	maxLength int
	maxArgs   int
}

// NewValidator creates a Validator. Non-positive limits fall back to the defaults.
func NewValidator(maxLength, maxArgs int) *Validator {
	if maxLength <= 0 {
		maxLength = DefaultMaxArgLength
	}
	if maxArgs <= 0 {
		maxArgs = DefaultMaxArgs
	}
	return &Validator{maxLength: maxLength, maxArgs: maxArgs}
}

// MaxLength returns the maximum argument length in characters
func (v *Validator) MaxLength() int {
	return v.maxLength
}

// MaxArgs returns the maximum number of arguments per command
func (v *Validator) MaxArgs() int {
	return v.maxArgs
}

// ValidateArg returns arg unchanged if it is safe to pass to the external binary
func (v *Validator) ValidateArg(arg string) (string, error) {
	// len counts bytes, which is never smaller than the rune count
	if len(arg) > v.maxLength && utf8.RuneCountInString(arg) > v.maxLength {
		return "", fmt.Errorf("argument length %d exceeds maximum of %d characters",
			utf8.RuneCountInString(arg), v.maxLength)
	}

	for _, char := range forbiddenChars {
		if strings.Contains(arg, char) {
			return "", fmt.Errorf("invalid character %q in argument", char)
		}
	}

	if looksLikeSubstitution(arg) {
		return "", fmt.Errorf("argument appears to contain shell command substitution: %s", arg)
	}

	return arg, nil
}

// ValidateArgs validates a whole request. The first failing argument rejects all of them.
func (v *Validator) ValidateArgs(args []string) ([]string, error) {
	if len(args) == 0 {
		return nil, fmt.Errorf("no command arguments provided")
	}
	if len(args) > v.maxArgs {
		return nil, fmt.Errorf("argument count %d exceeds maximum of %d", len(args), v.maxArgs)
	}

	validated := make([]string, 0, len(args))
	for i, arg := range args {
		checked, err := v.ValidateArg(arg)
		if err != nil {
			return nil, fmt.Errorf("argument %d: %w", i, err)
		}
		validated = append(validated, checked)
	}
	return validated, nil
}

func looksLikeSubstitution(arg string) bool {
	if !strings.HasPrefix(strings.TrimSpace(arg), "-") {
		return false
	}
	for _, marker := range substitutionMarkers {
		if strings.Contains(arg, marker) {
			return true
		}
	}
	return false
}
