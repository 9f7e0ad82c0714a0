// Package tableio reads stint and roster CSV files and writes derived tables
// as CSV, JSON or MessagePack.
package tableio

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/gocarina/gocsv"

	"github.com/okian/lineups/internal/domain/interval"
	"github.com/okian/lineups/internal/domain/model"
	"github.com/okian/lineups/pkg/metrics"
)

const teamIDColumn = "teamId"

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// stintRecord is the on-disk layout of one stint row. Player columns are
// optional; absent slots decode as empty strings.
type stintRecord struct {
	PID1   string `csv:"pId1"`
	PID2   string `csv:"pId2"`
	PID3   string `csv:"pId3"`
	PID4   string `csv:"pId4"`
	PID5   string `csv:"pId5"`
	PName1 string `csv:"pName1"`
	PName2 string `csv:"pName2"`
	PName3 string `csv:"pName3"`
	PName4 string `csv:"pName4"`
	PName5 string `csv:"pName5"`
	TeamID string `csv:"teamId"`

	Secs      float64 `csv:"secs"`
	PtsScored float64 `csv:"ptsScored"`
	PtsAgst   float64 `csv:"ptsAgst"`
	NetPts    float64 `csv:"netPts"`
	OPoss     float64 `csv:"oPoss"`
	DPoss     float64 `csv:"dPoss"`
	FGM       float64 `csv:"fgm"`
	FGA       float64 `csv:"fga"`
	FGM3      float64 `csv:"fgm3"`
	FGA3      float64 `csv:"fga3"`
	FTA       float64 `csv:"fta"`
	TOV       float64 `csv:"tov"`
	ORB       float64 `csv:"orb"`
	FGMAgst   float64 `csv:"fgmAgst"`
	FGAAgst   float64 `csv:"fgaAgst"`
	FGM3Agst  float64 `csv:"fgm3Agst"`
	FGA3Agst  float64 `csv:"fga3Agst"`
	FTAAgst   float64 `csv:"ftaAgst"`
	TOVAgst   float64 `csv:"tovAgst"`
	ORBAgst   float64 `csv:"orbAgst"`
}

func (r *stintRecord) stint(game string) model.Stint {
	return model.Stint{
		Slots: [model.SlotCount]model.Slot{
			{ID: r.PID1, Name: r.PName1},
			{ID: r.PID2, Name: r.PName2},
			{ID: r.PID3, Name: r.PName3},
			{ID: r.PID4, Name: r.PName4},
			{ID: r.PID5, Name: r.PName5},
		},
		TeamID: strings.TrimSpace(r.TeamID),
		Game:   game,
		Stats: model.BaseStats{
			Secs:        r.Secs,
			PtsFor:      r.PtsScored,
			PtsAgainst:  r.PtsAgst,
			NetPts:      r.NetPts,
			OPoss:       r.OPoss,
			DPoss:       r.DPoss,
			FGM:         r.FGM,
			FGA:         r.FGA,
			FGM3:        r.FGM3,
			FGA3:        r.FGA3,
			FTA:         r.FTA,
			TOV:         r.TOV,
			ORB:         r.ORB,
			FGMAllowed:  r.FGMAgst,
			FGAAllowed:  r.FGAAgst,
			FGM3Allowed: r.FGM3Agst,
			FGA3Allowed: r.FGA3Agst,
			FTAAllowed:  r.FTAAgst,
			TOVForced:   r.TOVAgst,
			ORBAllowed:  r.ORBAgst,
		},
	}
}

// ReadOption configures ReadStints.
type ReadOption func(*readOptions)

type readOptions struct {
	teamID string
	game   string
}

// WithTeamID keeps only rows for the given team when the file has a teamId
// column. Files without the column are read unfiltered.
func WithTeamID(id string) ReadOption {
	return func(o *readOptions) {
		o.teamID = strings.TrimSpace(id)
	}
}

// WithGame overrides the provenance tag stamped on every stint. By default
// the file's date token is used, or its base name when it has none.
func WithGame(game string) ReadOption {
	return func(o *readOptions) {
		o.game = game
	}
}

// ReadStints reads one stint CSV file. The header must contain every column
// in model.RequiredColumns.
func ReadStints(path string, opts ...ReadOption) ([]model.Stint, error) {
	o := readOptions{}
	for _, opt := range opts {
		opt(&o)
	}
	if o.game == "" {
		if tok, err := interval.DateToken(path); err == nil {
			o.game = tok
		} else {
			o.game = filepath.Base(path)
		}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	data = bytes.TrimPrefix(data, utf8BOM)
	header, err := readHeader(data)
	if err != nil {
		return nil, fmt.Errorf("read header %s: %w", path, err)
	}
	if missing := missingColumns(header, model.RequiredColumns); len(missing) > 0 {
		return nil, &SchemaError{File: filepath.Base(path), Missing: missing, Present: header}
	}

	var records []*stintRecord
	if err := gocsv.UnmarshalBytes(data, &records); err != nil {
		if errors.Is(err, gocsv.ErrEmptyCSVFile) {
			return nil, nil
		}
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}

	filter := o.teamID != "" && contains(header, teamIDColumn)
	stints := make([]model.Stint, 0, len(records))
	for _, r := range records {
		if filter && strings.TrimSpace(r.TeamID) != o.teamID {
			continue
		}
		stints = append(stints, r.stint(o.game))
	}

	metrics.RecordFileRead()
	metrics.RecordStintRows(len(records), len(records)-len(stints))
	return stints, nil
}

// readHeader returns the trimmed header row. An empty file has no columns.
func readHeader(data []byte) ([]string, error) {
	r := csv.NewReader(bytes.NewReader(data))
	r.FieldsPerRecord = -1
	header, err := r.Read()
	if errors.Is(err, io.EOF) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	for i, h := range header {
		header[i] = strings.TrimSpace(h)
	}
	return header, nil
}

func missingColumns(header, required []string) []string {
	var missing []string
	for _, c := range required {
		if !contains(header, c) {
			missing = append(missing, c)
		}
	}
	return missing
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
