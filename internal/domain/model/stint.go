// Package model contains domain models passed between layers.
package model

// SlotCount is the number of players on the floor for one side.
const SlotCount = 5

// BaseStats holds the additive counting statistics of a stint or a group of
// stints. Only these fields may be summed across records.
type BaseStats struct {
	Secs        float64
	PtsFor      float64
	PtsAgainst  float64
	NetPts      float64
	OPoss       float64
	DPoss       float64
	FGM         float64
	FGA         float64
	FGM3        float64
	FGA3        float64
	FTA         float64
	TOV         float64
	ORB         float64
	FGMAllowed  float64
	FGAAllowed  float64
	FGM3Allowed float64
	FGA3Allowed float64
	FTAAllowed  float64
	TOVForced   float64
	ORBAllowed  float64
}

// Add returns the field-wise sum of b and o.
func (b BaseStats) Add(o BaseStats) BaseStats {
	return BaseStats{
		Secs:        b.Secs + o.Secs,
		PtsFor:      b.PtsFor + o.PtsFor,
		PtsAgainst:  b.PtsAgainst + o.PtsAgainst,
		NetPts:      b.NetPts + o.NetPts,
		OPoss:       b.OPoss + o.OPoss,
		DPoss:       b.DPoss + o.DPoss,
		FGM:         b.FGM + o.FGM,
		FGA:         b.FGA + o.FGA,
		FGM3:        b.FGM3 + o.FGM3,
		FGA3:        b.FGA3 + o.FGA3,
		FTA:         b.FTA + o.FTA,
		TOV:         b.TOV + o.TOV,
		ORB:         b.ORB + o.ORB,
		FGMAllowed:  b.FGMAllowed + o.FGMAllowed,
		FGAAllowed:  b.FGAAllowed + o.FGAAllowed,
		FGM3Allowed: b.FGM3Allowed + o.FGM3Allowed,
		FGA3Allowed: b.FGA3Allowed + o.FGA3Allowed,
		FTAAllowed:  b.FTAAllowed + o.FTAAllowed,
		TOVForced:   b.TOVForced + o.TOVForced,
		ORBAllowed:  b.ORBAllowed + o.ORBAllowed,
	}
}

// Slot is one of the five player positions of a stint row as it appears in
// the source file: an identifier and a display name, either may be empty.
type Slot struct {
	ID   string
	Name string
}

// Stint is one row of raw input: a fixed five-player unit over a segment of
// game time, with its counting stats and where it came from.
type Stint struct {
	Slots  [SlotCount]Slot
	TeamID string
	Game   string // provenance: the 6-digit date token of the source file
	Stats  BaseStats
}

// RequiredColumns lists the base-stat columns every stint file must carry.
var RequiredColumns = []string{
	"secs", "ptsScored", "ptsAgst", "netPts", "oPoss", "dPoss",
	"fgm", "fga", "fgm3", "fga3", "fta", "tov", "orb",
	"fgmAgst", "fgaAgst", "fgm3Agst", "fga3Agst", "ftaAgst", "tovAgst", "orbAgst",
}
