// Package facts serves random character facts from a yaml book.
package facts

import (
	_ "embed"
	"errors"
	"fmt"
	"math/rand/v2"
	"os"
	"sort"
	"strings"

	yaml "gopkg.in/yaml.v3"
)

var ErrUnknownCharacter = errors.New("unknown character")

//go:embed facts.yaml
var defaultBook []byte

// Book maps a lower-cased character name to its facts.
type Book struct {
	facts map[string][]string
	pick  func(n int) int
}

type Option func(*Book)

// WithPicker replaces the random index source; pick(n) must return a value in [0, n).
func WithPicker(pick func(n int) int) Option {
	return func(b *Book) { b.pick = pick }
}

// Load reads the book from path, or the embedded default when path is empty.
func Load(path string, opts ...Option) (*Book, error) {
	raw := defaultBook
	if p := strings.TrimSpace(path); p != "" {
		b, err := os.ReadFile(p)
		if err != nil {
			return nil, fmt.Errorf("read facts: %w", err)
		}
		raw = b
	}
	return Parse(raw, opts...)
}

func Parse(raw []byte, opts ...Option) (*Book, error) {
	var m map[string][]string
	if err := yaml.Unmarshal(raw, &m); err != nil {
		return nil, fmt.Errorf("parse facts: %w", err)
	}
	b := &Book{facts: make(map[string][]string, len(m)), pick: rand.IntN}
	for name, list := range m {
		key := normalize(name)
		for _, f := range list {
			if f = strings.TrimSpace(f); f != "" {
				b.facts[key] = append(b.facts[key], f)
			}
		}
	}
	for _, opt := range opts {
		opt(b)
	}
	return b, nil
}

// Random returns one fact about character.
func (b *Book) Random(character string) (string, error) {
	list := b.facts[normalize(character)]
	if len(list) == 0 {
		return "", fmt.Errorf("%w: %s", ErrUnknownCharacter, strings.TrimSpace(character))
	}
	return list[b.pick(len(list))], nil
}

func (b *Book) Characters() []string {
	out := make([]string, 0, len(b.facts))
	for name := range b.facts {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

func normalize(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}
