// Package synth writes deterministic synthetic roster and per-game stint
// files in the layout the pipeline reads.
package synth

import (
	"context"
	"fmt"
	"math/rand/v2"
	"os"
	"path/filepath"
	"strconv"

	"github.com/google/uuid"

	"github.com/okian/lineups/internal/adapters/tableio"
	"github.com/okian/lineups/pkg/logger"
)

// Generation ranges.
const (
	minStintSecs   = 30
	maxStintSecs   = 360
	secsPerPoss    = 18.0
	fgaPerPoss     = 0.85
	fgPct          = 0.46
	threeShare     = 0.35
	threePct       = 0.34
	ftaPerFGA      = 0.25
	ftPct          = 0.72
	tovPerPoss     = 0.14
	orbPerMiss     = 0.28
	opponentTeamID = "OPP"
)

var (
	firstNames = []string{"Ava", "Bree", "Cara", "Dana", "Eve", "Faye", "Gia", "Hope", "Iris", "Jade", "Kira", "Lena", "Mia", "Nia", "Ola"}
	lastNames  = []string{"Adams", "Brooks", "Cole", "Diaz", "Evans", "Fox", "Gray", "Hale", "Ito", "James", "King", "Lopez", "Moss", "Nash", "Ortiz"}
)

// Result describes a generated data set.
type Result struct {
	DataSetID  string
	RosterPath string
	GamePaths  []string
	Players    int
	Stints     int
}

type rosterRow struct {
	PID     string `csv:"pid"`
	Name    string `csv:"name"`
	Initial string `csv:"initial"`
	Height  string `csv:"height"`
}

type stintRow struct {
	PID1      string `csv:"pId1"`
	PName1    string `csv:"pName1"`
	PID2      string `csv:"pId2"`
	PName2    string `csv:"pName2"`
	PID3      string `csv:"pId3"`
	PName3    string `csv:"pName3"`
	PID4      string `csv:"pId4"`
	PName4    string `csv:"pName4"`
	PID5      string `csv:"pId5"`
	PName5    string `csv:"pName5"`
	TeamID    string `csv:"teamId"`
	Secs      int    `csv:"secs"`
	PtsScored int    `csv:"ptsScored"`
	PtsAgst   int    `csv:"ptsAgst"`
	NetPts    int    `csv:"netPts"`
	OPoss     int    `csv:"oPoss"`
	DPoss     int    `csv:"dPoss"`
	FGM       int    `csv:"fgm"`
	FGA       int    `csv:"fga"`
	FGM3      int    `csv:"fgm3"`
	FGA3      int    `csv:"fga3"`
	FTA       int    `csv:"fta"`
	TOV       int    `csv:"tov"`
	ORB       int    `csv:"orb"`
	FGMAgst   int    `csv:"fgmAgst"`
	FGAAgst   int    `csv:"fgaAgst"`
	FGM3Agst  int    `csv:"fgm3Agst"`
	FGA3Agst  int    `csv:"fga3Agst"`
	FTAAgst   int    `csv:"ftaAgst"`
	TOVAgst   int    `csv:"tovAgst"`
	ORBAgst   int    `csv:"orbAgst"`
}

type player struct {
	id, name string
}

// Generate writes roster.csv and one <YYMMDD>.csv per game into dir.
func Generate(ctx context.Context, dir string, opts ...Option) (Result, error) {
	o := defaults()
	for _, opt := range opts {
		opt(&o)
	}
	if o.games < 1 || o.players < 5 || o.stints < 1 {
		return Result{}, fmt.Errorf("%w: games=%d players=%d stints=%d", ErrInvalidOptions, o.games, o.players, o.stints)
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return Result{}, fmt.Errorf("create %s: %w", dir, err)
	}

	rng := rand.New(rand.NewPCG(o.seed, o.seed^0x9e3779b97f4a7c15))
	res := Result{DataSetID: uuid.NewString(), Players: o.players}
	log := logger.OrNop(o.logger)

	players := make([]player, o.players)
	roster := make([]rosterRow, 0, o.players)
	for i := range players {
		first := firstNames[i%len(firstNames)]
		last := lastNames[(i*7+3)%len(lastNames)]
		players[i] = player{id: strconv.Itoa(1000 + i), name: first + " " + last}
		if i >= o.players-o.unlisted {
			continue
		}
		initial := first[:1] + last[:1]
		if i >= len(firstNames) {
			initial += strconv.Itoa(i / len(firstNames))
		}
		row := rosterRow{
			PID:     players[i].id,
			Name:    players[i].name,
			Initial: initial,
			Height:  strconv.Itoa(66 + rng.IntN(14)),
		}
		roster = append(roster, row)
	}
	res.RosterPath = filepath.Join(dir, "roster.csv")
	if err := tableio.WriteFile(res.RosterPath, roster, tableio.FormatCSV); err != nil {
		return Result{}, err
	}

	for g := 0; g < o.games; g++ {
		if err := ctx.Err(); err != nil {
			return Result{}, err
		}
		day := o.start.AddDate(0, 0, g*o.daysBetween)
		var rows []stintRow
		for s := 0; s < o.stints; s++ {
			rows = append(rows, stint(rng, players, o.teamID))
			if o.opponent {
				rows = append(rows, stint(rng, players, opponentTeamID))
			}
		}
		path := filepath.Join(dir, day.Format("060102")+".csv")
		if err := tableio.WriteFile(path, rows, tableio.FormatCSV); err != nil {
			return Result{}, err
		}
		res.GamePaths = append(res.GamePaths, path)
		res.Stints += len(rows)
	}

	log.Info(ctx, "synthetic data set written",
		logger.String("data_set_id", res.DataSetID),
		logger.String("dir", dir),
		logger.Int("games", len(res.GamePaths)),
		logger.Int("stints", res.Stints),
	)
	return res, nil
}

func stint(rng *rand.Rand, players []player, teamID string) stintRow {
	pick := rng.Perm(len(players))[:5]
	secs := minStintSecs + rng.IntN(maxStintSecs-minStintSecs+1)
	r := stintRow{TeamID: teamID, Secs: secs}

	slots := [][2]*string{
		{&r.PID1, &r.PName1}, {&r.PID2, &r.PName2}, {&r.PID3, &r.PName3},
		{&r.PID4, &r.PName4}, {&r.PID5, &r.PName5},
	}
	for i, p := range pick {
		*slots[i][0] = players[p].id
		*slots[i][1] = players[p].name
	}

	poss := int(float64(secs)/secsPerPoss) + rng.IntN(2)
	var pts, ptsAgst int
	r.OPoss, r.FGM, r.FGA, r.FGM3, r.FGA3, r.FTA, r.TOV, r.ORB, pts = side(rng, poss)
	r.DPoss, r.FGMAgst, r.FGAAgst, r.FGM3Agst, r.FGA3Agst, r.FTAAgst, r.TOVAgst, r.ORBAgst, ptsAgst = side(rng, poss+rng.IntN(3)-1)
	r.PtsScored, r.PtsAgst, r.NetPts = pts, ptsAgst, pts-ptsAgst
	return r
}

// side simulates one team's possessions and returns
// poss, fgm, fga, fgm3, fga3, fta, tov, orb, pts.
func side(rng *rand.Rand, poss int) (int, int, int, int, int, int, int, int, int) {
	if poss < 0 {
		poss = 0
	}
	fga := binomial(rng, poss, fgaPerPoss)
	fga3 := binomial(rng, fga, threeShare)
	fgm3 := binomial(rng, fga3, threePct)
	fgm := fgm3 + binomial(rng, fga-fga3, fgPct)
	fta := binomial(rng, fga, ftaPerFGA)
	ftm := binomial(rng, fta, ftPct)
	tov := binomial(rng, poss, tovPerPoss)
	orb := binomial(rng, fga-fgm, orbPerMiss)
	pts := 2*fgm + fgm3 + ftm
	return poss, fgm, fga, fgm3, fga3, fta, tov, orb, pts
}

func binomial(rng *rand.Rand, n int, p float64) int {
	k := 0
	for i := 0; i < n; i++ {
		if rng.Float64() < p {
			k++
		}
	}
	return k
}
