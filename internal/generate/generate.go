// Package generate builds random passwords and passphrases.
package generate

import (
	"crypto/rand"
	_ "embed"
	"errors"
	"fmt"
	"io"
	"math/big"
	"strconv"
	"strings"
	"unicode"
)

// Character set constants
const (
	CharsetLowercase = "abcdefghijklmnopqrstuvwxyz"
	CharsetUppercase = "ABCDEFGHIJKLMNOPQRSTUVWXYZ"
	CharsetDigits    = "0123456789"
	CharsetSymbols   = "!@#$%^&*()_+-=[]{}|;:,.<>?"

	MinLength = 5
	MaxLength = 128
	MinWords  = 3
	MaxWords  = 20
)

//go:embed words.txt
var wordsFile string

var wordList = strings.Fields(wordsFile)

var ErrEmptyCharset = errors.New("no character classes enabled")

type PasswordOptions struct {
	Length    int
	Uppercase bool
	Lowercase bool
	Numbers   bool
	Symbols   bool
}

type PassphraseOptions struct {
	Words         int
	Separator     string
	Capitalize    bool
	IncludeNumber bool
}

// Generator draws from Rand, which defaults to crypto/rand. Tests swap in a seeded source.
type Generator struct {
	Rand io.Reader
}

func New() *Generator { return &Generator{Rand: rand.Reader} }

func (g *Generator) intn(n int) (int, error) {
	r := g.Rand
	if r == nil {
		r = rand.Reader
	}
	v, err := rand.Int(r, big.NewInt(int64(n)))
	if err != nil {
		return 0, err
	}
	return int(v.Int64()), nil
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// Charset returns the union of the enabled classes.
func (o PasswordOptions) Charset() string {
	var b strings.Builder
	if o.Lowercase {
		b.WriteString(CharsetLowercase)
	}
	if o.Uppercase {
		b.WriteString(CharsetUppercase)
	}
	if o.Numbers {
		b.WriteString(CharsetDigits)
	}
	if o.Symbols {
		b.WriteString(CharsetSymbols)
	}
	return b.String()
}

// Password returns a random password of exactly the (clamped) length, containing at
// least one character from every enabled class when the length allows it.
func (g *Generator) Password(opts PasswordOptions) (string, error) {
	charset := opts.Charset()
	if charset == "" {
		return "", ErrEmptyCharset
	}
	length := clamp(opts.Length, MinLength, MaxLength)

	var classes []string
	for _, c := range []struct {
		on  bool
		set string
	}{
		{opts.Lowercase, CharsetLowercase},
		{opts.Uppercase, CharsetUppercase},
		{opts.Numbers, CharsetDigits},
		{opts.Symbols, CharsetSymbols},
	} {
		if c.on {
			classes = append(classes, c.set)
		}
	}

	out := make([]byte, 0, length)
	for _, set := range classes {
		if len(out) == length {
			break
		}
		i, err := g.intn(len(set))
		if err != nil {
			return "", fmt.Errorf("generate password: %w", err)
		}
		out = append(out, set[i])
	}
	for len(out) < length {
		i, err := g.intn(len(charset))
		if err != nil {
			return "", fmt.Errorf("generate password: %w", err)
		}
		out = append(out, charset[i])
	}
	// Shuffle so the guaranteed class characters are not always up front.
	for i := len(out) - 1; i > 0; i-- {
		j, err := g.intn(i + 1)
		if err != nil {
			return "", fmt.Errorf("generate password: %w", err)
		}
		out[i], out[j] = out[j], out[i]
	}
	return string(out), nil
}

// Passphrase returns Words (at least MinWords) words joined by Separator.
func (g *Generator) Passphrase(opts PassphraseOptions) (string, error) {
	n := clamp(opts.Words, MinWords, MaxWords)
	words := make([]string, n)
	for i := range words {
		j, err := g.intn(len(wordList))
		if err != nil {
			return "", fmt.Errorf("generate passphrase: %w", err)
		}
		w := wordList[j]
		if opts.Capitalize {
			r := []rune(w)
			r[0] = unicode.ToUpper(r[0])
			w = string(r)
		}
		words[i] = w
	}
	if opts.IncludeNumber {
		i, err := g.intn(n)
		if err != nil {
			return "", fmt.Errorf("generate passphrase: %w", err)
		}
		d, err := g.intn(10)
		if err != nil {
			return "", fmt.Errorf("generate passphrase: %w", err)
		}
		words[i] += strconv.Itoa(d)
	}
	return strings.Join(words, opts.Separator), nil
}
