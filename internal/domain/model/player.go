package model

// PlayerRef is a player's stable identity. Height is in inches and only
// drives canonical ordering inside a lineup key.
type PlayerRef struct {
	ID        string
	Name      string
	Label     string
	Height    float64
	HasHeight bool
}

// Roster is an immutable identifier -> player lookup injected into the
// resolver at construction time.
type Roster struct {
	byID map[string]PlayerRef
}

// NewRoster copies players into a lookup keyed by ID. Later duplicates win.
func NewRoster(players []PlayerRef) Roster {
	byID := make(map[string]PlayerRef, len(players))
	for _, p := range players {
		if p.ID == "" {
			continue
		}
		byID[p.ID] = p
	}
	return Roster{byID: byID}
}

// Lookup returns the roster entry for id.
func (r Roster) Lookup(id string) (PlayerRef, bool) {
	p, ok := r.byID[id]
	return p, ok
}

// Len returns the number of roster entries.
func (r Roster) Len() int { return len(r.byID) }

// Players returns a copy of all roster entries in no particular order.
func (r Roster) Players() []PlayerRef {
	out := make([]PlayerRef, 0, len(r.byID))
	for _, p := range r.byID {
		out = append(out, p)
	}
	return out
}
