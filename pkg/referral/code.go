package referral

import (
	"crypto/rand"
	"errors"
	"fmt"
	"strings"
)

// DefaultCodePrefix is the studio tag codes start with
const DefaultCodePrefix = "JLC"

// codeAlphabet excludes visually confusable characters: I, O, 0, 1
const codeAlphabet = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"

const codeSuffixLength = 4

// CodeGenerator synthesizes referral codes of the form PREFIX-II-RRRR,
// where II are the referrer's initials and RRRR is a random suffix.
// It does not guarantee uniqueness; collision retries are the caller's job.
type CodeGenerator struct {
	prefix string
}

// NewCodeGenerator creates a code generator with the given studio prefix
func NewCodeGenerator(prefix string) *CodeGenerator {
	if prefix == "" {
		prefix = DefaultCodePrefix
	}
	return &CodeGenerator{prefix: prefix}
}

// Generate produces a candidate referral code from the referrer's name
func (g *CodeGenerator) Generate(firstName, lastName string) (string, error) {
	firstName = strings.TrimSpace(firstName)
	lastName = strings.TrimSpace(lastName)
	if firstName == "" || lastName == "" {
		return "", errors.New("first and last name are required")
	}

	initials := strings.ToUpper(string([]rune(firstName)[0]) + string([]rune(lastName)[0]))

	buf := make([]byte, codeSuffixLength)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("failed to generate code suffix: %w", err)
	}

	suffix := make([]byte, codeSuffixLength)
	for i, b := range buf {
		suffix[i] = codeAlphabet[int(b)%len(codeAlphabet)]
	}

	return fmt.Sprintf("%s-%s-%s", g.prefix, initials, suffix), nil
}
