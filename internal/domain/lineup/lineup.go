// Package lineup maps the five player slots of a stint to a canonical,
// order-independent lineup identity.
//
// Ordering inside a key: known heights first, tallest first; players without a
// height after them; empty slots last. Ties break on label ascending. Labels
// are joined with Separator.
package lineup

import (
	"sort"
	"strings"
	"unicode"

	"github.com/okian/lineups/internal/domain/model"
)

const (
	// Separator joins member labels in a key.
	Separator = "-"
	// MissingLabel stands in for a slot with neither identifier nor name.
	MissingLabel = "?"
)

// Lineup is the resolved identity of a five-player unit.
type Lineup struct {
	Key     string
	Members []model.PlayerRef // in key order
}

// Labels returns member labels in key order.
func (l Lineup) Labels() []string {
	out := make([]string, len(l.Members))
	for i, m := range l.Members {
		out[i] = m.Label
	}
	return out
}

// Resolver resolves slots against an injected roster.
type Resolver struct {
	roster model.Roster
}

// NewResolver returns a resolver backed by roster.
func NewResolver(roster model.Roster) *Resolver {
	return &Resolver{roster: roster}
}

// Player resolves one slot. Roster hits keep their label and height; misses
// get a synthesized label and no height.
func (r *Resolver) Player(s model.Slot) model.PlayerRef {
	id := strings.TrimSpace(s.ID)
	if p, ok := r.roster.Lookup(id); ok && id != "" {
		if p.Label == "" {
			p.Label = FallbackLabel(p.Name, id)
		}
		return p
	}
	return model.PlayerRef{
		ID:    id,
		Name:  strings.TrimSpace(s.Name),
		Label: FallbackLabel(s.Name, id),
	}
}

// Resolve produces the canonical lineup for a stint's slots.
func (r *Resolver) Resolve(slots [model.SlotCount]model.Slot) Lineup {
	members := make([]model.PlayerRef, 0, model.SlotCount)
	for _, s := range slots {
		members = append(members, r.Player(s))
	}
	sort.SliceStable(members, func(i, j int) bool {
		return less(members[i], members[j])
	})

	labels := make([]string, len(members))
	for i, m := range members {
		labels[i] = m.Label
	}
	return Lineup{Key: strings.Join(labels, Separator), Members: members}
}

func rank(p model.PlayerRef) int {
	switch {
	case p.Label == MissingLabel:
		return 2
	case !p.HasHeight:
		return 1
	default:
		return 0
	}
}

func less(a, b model.PlayerRef) bool {
	ra, rb := rank(a), rank(b)
	if ra != rb {
		return ra < rb
	}
	if ra == 0 && a.Height != b.Height {
		return a.Height > b.Height
	}
	if a.Label != b.Label {
		return a.Label < b.Label
	}
	return a.ID < b.ID
}

// FallbackLabel synthesizes a compact label for a player missing from the
// roster:
//   - one-token name: first two letters, upper-cased ("Smith" -> "SM");
//   - multi-token name: first letter of the first token plus the first two
//     letters of the second ("Jess Lawson" -> "JLA");
//   - no name: the identifier itself;
//   - neither: MissingLabel.
func FallbackLabel(name, id string) string {
	parts := strings.Fields(name)
	switch {
	case len(parts) == 1:
		return upper(prefix(parts[0], 2))
	case len(parts) > 1:
		return upper(prefix(parts[0], 1) + prefix(parts[1], 2))
	}
	if id = strings.TrimSpace(id); id != "" {
		return id
	}
	return MissingLabel
}

func prefix(s string, n int) string {
	r := []rune(s)
	if len(r) > n {
		r = r[:n]
	}
	return string(r)
}

func upper(s string) string {
	return strings.Map(unicode.ToUpper, s)
}
