// Package command turns chat text into a command name and arity-checked arguments.
package command

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

var ErrUsage = errors.New("wrong number of arguments")

// UsageError reports an arity violation for a declared Spec.
type UsageError struct {
	Spec Spec
	Got  int
}

func (e *UsageError) Error() string {
	return fmt.Sprintf("%s: got %d arguments, want %s", e.Spec.Name, e.Got, e.Spec.arity())
}

func (e *UsageError) Is(target error) bool {
	return target == ErrUsage
}

// Invocation is a prefixed message split into a lower-cased name and raw arguments.
type Invocation struct {
	Name string
	Args []string
}

// Parse strips prefix from text and tokenizes the rest on whitespace.
// ok is false when text does not start with prefix.
func Parse(prefix, text string) (inv Invocation, ok bool) {
	trimmed := strings.TrimSpace(text)
	if prefix == "" || !strings.HasPrefix(trimmed, prefix) {
		return Invocation{}, false
	}
	parts := strings.Fields(strings.TrimPrefix(trimmed, prefix))
	if len(parts) == 0 {
		return Invocation{}, true
	}
	return Invocation{Name: strings.ToLower(parts[0]), Args: parts[1:]}, true
}

// Shift splits off the first argument as a sub-command name.
func (inv Invocation) Shift() Invocation {
	if len(inv.Args) == 0 {
		return Invocation{}
	}
	return Invocation{Name: strings.ToLower(inv.Args[0]), Args: inv.Args[1:]}
}

// Spec declares a command with its minimum and maximum argument count.
// Max < 0 means no upper bound.
type Spec struct {
	Name  string
	Min   int
	Max   int
	Usage string
}

func (s Spec) arity() string {
	switch {
	case s.Max < 0:
		return fmt.Sprintf("at least %d", s.Min)
	case s.Min == s.Max:
		return strconv.Itoa(s.Min)
	default:
		return fmt.Sprintf("%d to %d", s.Min, s.Max)
	}
}

// Bind checks the argument count of inv against s.
func (s Spec) Bind(inv Invocation) (Args, error) {
	n := len(inv.Args)
	if n < s.Min || (s.Max >= 0 && n > s.Max) {
		return nil, &UsageError{Spec: s, Got: n}
	}
	return Args(inv.Args), nil
}

// Set is a lookup table of specs keyed by name.
type Set map[string]Spec

func NewSet(specs ...Spec) Set {
	set := make(Set, len(specs))
	for _, s := range specs {
		set[strings.ToLower(s.Name)] = s
	}
	return set
}

func (s Set) Lookup(name string) (Spec, bool) {
	spec, ok := s[strings.ToLower(name)]
	return spec, ok
}

// Args is an ordered, already arity-checked argument list.
type Args []string

func (a Args) Len() int {
	return len(a)
}

// At returns argument i, or "" when absent.
func (a Args) At(i int) string {
	if i < 0 || i >= len(a) {
		return ""
	}
	return a[i]
}

// Name returns argument i resolved as a player name.
func (a Args) Name(i int) string {
	return ResolveName(a.At(i))
}

// Int parses argument i as a decimal integer.
func (a Args) Int(i int) (int, error) {
	v, err := strconv.Atoi(a.At(i))
	if err != nil {
		return 0, fmt.Errorf("argument %d: %w", i+1, err)
	}
	return v, nil
}

// ResolveName turns a chat mention ("@name") into a plain player name.
func ResolveName(token string) string {
	return strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(token), "@"))
}
