// Package spfchain generates randomized SPF include chains: a sequence of
// long random subdomain labels whose TXT records include each other in
// order, entered through the domain's apex SPF record and terminated by a
// caller-supplied directive.
package spfchain

import (
	"crypto/rand"
	"errors"
	"fmt"
	mathrand "math/rand/v2"
	"strings"

	"github.com/yuriy-kovalchuk/yk-dns-bulk/internal/record"
)

const (
	alphabet = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

	// MinChainLength and MaxChainLength bound Spec.ChainLength.
	MinChainLength = 1
	MaxChainLength = 10

	// minLabelLength is the hard floor for randomized labels.
	minLabelLength = 30

	chainTTL = 600
)

// ErrGenerationExhausted is returned when a label cannot be made unique
// within the bounded number of regeneration attempts. It indicates a
// saturated randomness space and is surfaced before any API call.
var ErrGenerationExhausted = errors.New("spfchain: label generation exhausted")

// Spec describes one chain to generate.
type Spec struct {
	Domain           string
	ChainLength      int
	FinalDirective   string // written verbatim as the last link's TXT body
	MinLabelLength   int    // default 32, floor 30
	MaxLabelAttempts int    // regeneration ceiling per label, default 100
}

// Validate checks the spec bounds before any randomness is consumed.
func (s Spec) Validate() error {
	if s.Domain == "" {
		return fmt.Errorf("spfchain: domain required")
	}
	if s.ChainLength < MinChainLength || s.ChainLength > MaxChainLength {
		return fmt.Errorf("spfchain: chain length %d out of range %d-%d",
			s.ChainLength, MinChainLength, MaxChainLength)
	}
	if s.MinLabelLength != 0 && s.MinLabelLength < minLabelLength {
		return fmt.Errorf("spfchain: label length %d below minimum %d", s.MinLabelLength, minLabelLength)
	}
	if strings.TrimSpace(s.FinalDirective) == "" {
		return fmt.Errorf("spfchain: final directive required")
	}
	return nil
}

func (s Spec) labelLength() int {
	if s.MinLabelLength == 0 {
		return 32
	}
	return s.MinLabelLength
}

func (s Spec) labelAttempts() int {
	if s.MaxLabelAttempts == 0 {
		return 100
	}
	return s.MaxLabelAttempts
}

// Generator produces chains from a random source.
type Generator struct {
	rng *mathrand.Rand
}

// New creates a Generator seeded from crypto/rand.
func New() *Generator {
	var seed [32]byte
	if _, err := rand.Read(seed[:]); err != nil {
		panic(fmt.Sprintf("spfchain: reading random seed: %v", err))
	}
	return &Generator{rng: mathrand.New(mathrand.NewChaCha8(seed))}
}

// NewWithRand creates a Generator with a caller-supplied source, which
// makes generation deterministic for tests.
func NewWithRand(r *mathrand.Rand) *Generator {
	return &Generator{rng: r}
}

// Generate produces the chain's records in creation order: link 1 through
// link N first, the apex entry record last (it references link 1, which
// must exist before it). Labels are unique within the call and against
// existing. With ChainLength 1 the single link is the fixed "_spf" label,
// which is not checked against existing: a non-SPF TXT record already
// named "_spf" survives the clear phase and coexists with the new one.
func (g *Generator) Generate(spec Spec, existing map[string]struct{}) ([]record.Record, error) {
	if err := spec.Validate(); err != nil {
		return nil, err
	}

	labels := make([]string, 0, spec.ChainLength)
	if spec.ChainLength == 1 {
		labels = append(labels, "_spf")
	} else {
		seen := make(map[string]struct{}, spec.ChainLength)
		for i := 0; i < spec.ChainLength; i++ {
			label, err := g.uniqueLabel(spec, existing, seen)
			if err != nil {
				return nil, fmt.Errorf("link %d: %w", i+1, err)
			}
			seen[label] = struct{}{}
			labels = append(labels, label)
		}
	}

	records := make([]record.Record, 0, spec.ChainLength+1)
	for i, label := range labels {
		body := spec.FinalDirective
		if i < len(labels)-1 {
			body = includeBody(labels[i+1], spec.Domain)
		}
		records = append(records, record.Record{
			Name:    label,
			Type:    record.TypeTXT,
			Content: body,
			TTL:     chainTTL,
		})
	}

	// Apex entry record, created last.
	records = append(records, record.Record{
		Name:    "",
		Type:    record.TypeTXT,
		Content: includeBody(labels[0], spec.Domain),
		TTL:     chainTTL,
	})
	return records, nil
}

// uniqueLabel draws random labels until one avoids both the caller's
// existing names and the labels already drawn in this call, failing with
// ErrGenerationExhausted once the attempt ceiling is hit.
func (g *Generator) uniqueLabel(spec Spec, existing, seen map[string]struct{}) (string, error) {
	for attempt := 0; attempt < spec.labelAttempts(); attempt++ {
		label := g.randomLabel(spec.labelLength())
		if _, ok := existing[label]; ok {
			continue
		}
		if _, ok := seen[label]; ok {
			continue
		}
		return label, nil
	}
	return "", fmt.Errorf("%w after %d attempts", ErrGenerationExhausted, spec.labelAttempts())
}

func (g *Generator) randomLabel(length int) string {
	var b strings.Builder
	b.Grow(length)
	for i := 0; i < length; i++ {
		b.WriteByte(alphabet[g.rng.IntN(len(alphabet))])
	}
	return b.String()
}

func includeBody(label, domain string) string {
	return fmt.Sprintf("v=spf1 include:%s.%s ~all", label, domain)
}

// SPFLike reports whether a TXT body carries SPF semantics. The chain
// workflow clears every matching TXT record before writing a new chain.
func SPFLike(content string) bool {
	return strings.HasPrefix(strings.ToLower(strings.TrimSpace(content)), "v=spf1")
}
