package filter

import (
	"cmp"
	"fmt"
	"math"
	"strings"
)

// comparatorStrategy defines how a comparator judges one field/literal pair.
// Ordered kinds (instants, measurements) use the three-way comparison; identifier
// kinds (satellites, constellations, bands) only know whether the two are equal.
type comparatorStrategy interface {
	// MatchOrdered handles cmp(field, literal) in {-1, 0, 1}
	MatchOrdered(c int) bool
	// MatchEqual handles equality-only kinds
	MatchEqual(eq bool) bool
}

// comparatorStrategies maps comparators to their strategies.
var comparatorStrategies = map[Comparator]comparatorStrategy{
	Equal:          equalStrategy{},
	NotEqual:       notEqualStrategy{},
	Greater:        greaterStrategy{},
	GreaterOrEqual: greaterEqualStrategy{},
	Less:           lessStrategy{},
	LessOrEqual:    lessEqualStrategy{},
}

// Strategy implementations

type equalStrategy struct{}

func (equalStrategy) MatchOrdered(c int) bool { return c == 0 }
func (equalStrategy) MatchEqual(eq bool) bool { return eq }

type notEqualStrategy struct{}

func (notEqualStrategy) MatchOrdered(c int) bool { return c != 0 }
func (notEqualStrategy) MatchEqual(eq bool) bool { return !eq }

type greaterStrategy struct{}

func (greaterStrategy) MatchOrdered(c int) bool { return c > 0 }
func (greaterStrategy) MatchEqual(bool) bool    { return false } // identifiers are unordered

type greaterEqualStrategy struct{}

func (greaterEqualStrategy) MatchOrdered(c int) bool { return c >= 0 }
func (greaterEqualStrategy) MatchEqual(eq bool) bool { return eq } // implied by equality

type lessStrategy struct{}

func (lessStrategy) MatchOrdered(c int) bool { return c < 0 }
func (lessStrategy) MatchEqual(bool) bool    { return false }

type lessEqualStrategy struct{}

func (lessEqualStrategy) MatchOrdered(c int) bool { return c <= 0 }
func (lessEqualStrategy) MatchEqual(eq bool) bool { return eq }

// outcome of relating a field to a literal
type relation int

const (
	relMismatch relation = iota // kinds or units differ, or a magnitude is NaN
	relOrdered                  // ord holds cmp(field, literal)
	relEquality                 // eq holds field == literal
)

// relate compares field against literal. Every Value kind is handled here.
func relate(field, literal Value) (rel relation, ord int, eq bool) {
	switch l := literal.(type) {
	case Instant:
		f, ok := field.(Instant)
		if !ok {
			return relMismatch, 0, false
		}
		return relOrdered, f.Epoch.Compare(l.Epoch), false
	case Measurement:
		f, ok := field.(Measurement)
		if !ok || f.Unit != l.Unit || math.IsNaN(f.Magnitude) || math.IsNaN(l.Magnitude) {
			return relMismatch, 0, false
		}
		return relOrdered, cmp.Compare(f.Magnitude, l.Magnitude), false
	case SatelliteID:
		f, ok := field.(SatelliteID)
		if !ok {
			return relMismatch, 0, false
		}
		return relEquality, 0, f.Constellation == l.Constellation && f.PRN == l.PRN
	case Constellation:
		f, ok := field.(Constellation)
		if !ok {
			return relMismatch, 0, false
		}
		return relEquality, 0, f == l
	case Band:
		f, ok := field.(Band)
		if !ok {
			return relMismatch, 0, false
		}
		return relEquality, 0, f == l
	default:
		panic(fmt.Sprintf("filter: unhandled value type %T", literal))
	}
}

// match applies comparator c between field and literal under policy p.
func match(c Comparator, field, literal Value, p MismatchPolicy) bool {
	if field == nil {
		return p == MismatchPass
	}

	strategy, ok := comparatorStrategies[c]
	if !ok {
		return false // Unknown comparator
	}

	rel, ord, eq := relate(field, literal)
	switch rel {
	case relOrdered:
		return strategy.MatchOrdered(ord)
	case relEquality:
		return strategy.MatchEqual(eq)
	default:
		return p == MismatchPass
	}
}

// Filter is one comparator applied against one literal.
type Filter struct {
	Comparator Comparator
	Literal    Value
}

// Apply reports whether field satisfies the filter. A field of another kind or unit
// satisfies it vacuously.
func (f Filter) Apply(field Value) bool {
	return f.ApplyPolicy(field, MismatchPass)
}

// ApplyPolicy is Apply with an explicit mismatch policy.
func (f Filter) ApplyPolicy(field Value, p MismatchPolicy) bool {
	return match(f.Comparator, field, f.Literal, p)
}

func (f Filter) String() string {
	return f.Comparator.String() + f.Literal.String()
}

// Record exposes the typed fields of one observation record.
// unit is only meaningful for KindMeasurement and is 0 otherwise.
type Record interface {
	Field(kind Kind, unit Unit) (Value, bool)
}

// Fields is a Record backed by a list of values; the first value of the requested
// kind (and unit, for measurements) wins.
type Fields []Value

// Field implements Record.
func (fs Fields) Field(kind Kind, unit Unit) (Value, bool) {
	for _, v := range fs {
		if v.Kind() == kind && unitOf(v) == unit {
			return v, true
		}
	}
	return nil, false
}

// Set is an ordered list of filters combined with logical AND.
type Set struct {
	filters []Filter
	policy  MismatchPolicy
}

// NewSet builds a set from already parsed filters.
func NewSet(filters ...Filter) *Set {
	return &Set{filters: append([]Filter(nil), filters...)}
}

// WithPolicy returns a copy of s that applies policy p to mismatching and missing fields.
func (s *Set) WithPolicy(p MismatchPolicy) *Set {
	if s == nil {
		return &Set{policy: p}
	}
	return &Set{filters: s.filters, policy: p}
}

// Policy returns the set's mismatch policy.
func (s *Set) Policy() MismatchPolicy {
	if s == nil {
		return MismatchPass
	}
	return s.policy
}

// Filters returns a copy of the filters in parse order.
func (s *Set) Filters() []Filter {
	if s == nil {
		return nil
	}
	return append([]Filter(nil), s.filters...)
}

// Len returns the number of filters.
func (s *Set) Len() int {
	if s == nil {
		return 0
	}
	return len(s.filters)
}

// Apply reports whether r satisfies every filter. An empty or nil set matches everything.
// A field the record does not expose is treated like a kind mismatch.
func (s *Set) Apply(r Record) bool {
	if s == nil {
		return true
	}
	for _, f := range s.filters {
		field, ok := r.Field(f.Literal.Kind(), unitOf(f.Literal))
		if !ok {
			field = nil
		}
		if !f.ApplyPolicy(field, s.policy) {
			return false
		}
	}
	return true
}

// String renders the set as a parseable expression.
func (s *Set) String() string {
	if s == nil {
		return ""
	}
	parts := make([]string, len(s.filters))
	for i, f := range s.filters {
		parts[i] = f.String()
	}
	return strings.Join(parts, ", ")
}

// Item is one comparator applied against a list of candidates of a single kind,
// reduced with a combinator: Or needs one satisfied candidate, And needs all.
type Item struct {
	comparator Comparator
	combinator Combinator
	candidates []Value
}

// NewItem builds an item. candidates must be non-empty and share one kind
// (and one unit, for measurements).
func NewItem(c Comparator, comb Combinator, candidates ...Value) (*Item, error) {
	if _, ok := comparatorStrategies[c]; !ok {
		return nil, fmt.Errorf("%w: unknown comparator %q", ErrMalformedExpression, c)
	}
	if comb != Or && comb != And {
		return nil, fmt.Errorf("%w: unknown combinator %q", ErrMalformedExpression, comb)
	}
	if len(candidates) == 0 {
		return nil, fmt.Errorf("%w: no candidates", ErrMalformedExpression)
	}
	first := candidates[0]
	for i, v := range candidates[1:] {
		if v.Kind() != first.Kind() || unitOf(v) != unitOf(first) {
			return nil, &ExprError{Index: i + 1, Token: v.String(),
				Err: fmt.Errorf("%w: candidate %s is not a %s like %s", ErrMalformedExpression, v, first.Kind(), first)}
		}
	}
	return &Item{
		comparator: c,
		combinator: comb,
		candidates: append([]Value(nil), candidates...),
	}, nil
}

// Comparator returns the item's comparator.
func (it *Item) Comparator() Comparator { return it.comparator }

// Combinator returns the item's combinator.
func (it *Item) Combinator() Combinator { return it.combinator }

// Candidates returns a copy of the candidate list.
func (it *Item) Candidates() []Value { return append([]Value(nil), it.candidates...) }

// Kind returns the kind shared by all candidates.
func (it *Item) Kind() Kind { return it.candidates[0].Kind() }

// Apply evaluates comparator(field, candidate) for every candidate and reduces the
// results with the combinator. Mismatches are vacuously satisfied.
func (it *Item) Apply(field Value) bool {
	return it.ApplyPolicy(field, MismatchPass)
}

// ApplyPolicy is Apply with an explicit mismatch policy.
func (it *Item) ApplyPolicy(field Value, p MismatchPolicy) bool {
	for _, c := range it.candidates {
		ok := match(it.comparator, field, c, p)
		if it.combinator == Or && ok {
			return true
		}
		if it.combinator == And && !ok {
			return false
		}
	}
	return it.combinator == And
}

// ApplyRecord applies the item to the matching field of r.
func (it *Item) ApplyRecord(r Record, p MismatchPolicy) bool {
	field, ok := r.Field(it.Kind(), unitOf(it.candidates[0]))
	if !ok {
		field = nil
	}
	return it.ApplyPolicy(field, p)
}

func (it *Item) String() string {
	parts := make([]string, len(it.candidates))
	for i, c := range it.candidates {
		parts[i] = c.String()
	}
	return it.comparator.String() + strings.Join(parts, it.combinator.String())
}
