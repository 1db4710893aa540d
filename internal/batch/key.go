package batch

import (
	"fmt"
	"math/rand"
	"strings"
	"sync"
	"time"
	"unicode"
)

const (
	maxNameAbbrev     = 3
	maxLocationAbbrev = 4
	maxSequence       = 999
)

// KeyGenerator derives human-readable batch keys such as GAI-412-COBA-12252024.
// The sequence part is drawn from math/rand: keys are labels read by people,
// and uniqueness is enforced by the caller against the store.
type KeyGenerator struct {
	mu   sync.Mutex
	rng  *rand.Rand
	now  func() time.Time
	last int64
}

func NewKeyGenerator() *KeyGenerator {
	return &KeyGenerator{
		rng: rand.New(rand.NewSource(time.Now().UnixNano())),
		now: time.Now,
	}
}

// NewKeyGeneratorWithSource is used by tests to pin the sequence and clock.
func NewKeyGeneratorWithSource(src rand.Source, now func() time.Time) *KeyGenerator {
	if now == nil {
		now = time.Now
	}
	return &KeyGenerator{rng: rand.New(src), now: now}
}

// Generate composes {name}-{sequence}-{location}-{MMDDYYYY}.
func (g *KeyGenerator) Generate(name, location string, requestDate time.Time) string {
	g.mu.Lock()
	seq := g.rng.Intn(maxSequence) + 1
	g.mu.Unlock()

	return fmt.Sprintf("%s-%d-%s-%s",
		NameAbbreviation(name),
		seq,
		LocationAbbreviation(location),
		FormatKeyDate(requestDate),
	)
}

// Fallback returns {name}-{timestamp} where the timestamp is strictly
// increasing within the process, even when the clock stalls or steps back.
func (g *KeyGenerator) Fallback(name string) string {
	g.mu.Lock()
	ts := g.now().UnixNano()
	if ts <= g.last {
		ts = g.last + 1
	}
	g.last = ts
	g.mu.Unlock()

	return fmt.Sprintf("%s-%d", NameAbbreviation(name), ts)
}

// NameAbbreviation takes the initial of each whitespace separated word.
func NameAbbreviation(name string) string {
	return initials(strings.Fields(name), maxNameAbbrev)
}

// LocationAbbreviation takes the initial of each token split on whitespace,
// commas, periods and hyphens.
func LocationAbbreviation(location string) string {
	tokens := strings.FieldsFunc(location, func(r rune) bool {
		return unicode.IsSpace(r) || r == ',' || r == '.' || r == '-'
	})
	return initials(tokens, maxLocationAbbrev)
}

func FormatKeyDate(t time.Time) string {
	return t.Format("01022006")
}

func initials(words []string, limit int) string {
	var b strings.Builder
	n := 0
	for _, w := range words {
		if n == limit {
			break
		}
		r := []rune(w)[0]
		b.WriteString(strings.ToUpper(string(r)))
		n++
	}
	return b.String()
}
