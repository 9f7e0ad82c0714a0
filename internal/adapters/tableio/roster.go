package tableio

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/gocarina/gocsv"

	"github.com/okian/lineups/internal/domain/lineup"
	"github.com/okian/lineups/internal/domain/model"
)

var rosterColumns = []string{"pid", "name", "initial", "height"}

type rosterRecord struct {
	PID     string `csv:"pid"`
	Name    string `csv:"name"`
	Initial string `csv:"initial"`
	Height  string `csv:"height"`
}

// ReadRoster reads a pid,name,initial,height CSV. A blank height marks the
// player's height as unknown; a blank initial falls back to a label derived
// from the name.
func ReadRoster(path string) (model.Roster, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return model.Roster{}, fmt.Errorf("read roster %s: %w", path, err)
	}
	data = bytes.TrimPrefix(data, utf8BOM)
	header, err := readHeader(data)
	if err != nil {
		return model.Roster{}, fmt.Errorf("read roster header %s: %w", path, err)
	}
	if missing := missingColumns(header, rosterColumns); len(missing) > 0 {
		return model.Roster{}, &SchemaError{File: filepath.Base(path), Missing: missing, Present: header}
	}

	var records []rosterRecord
	if err := gocsv.UnmarshalBytes(data, &records); err != nil && !errors.Is(err, gocsv.ErrEmptyCSVFile) {
		return model.Roster{}, fmt.Errorf("decode roster %s: %w", path, err)
	}

	players := make([]model.PlayerRef, 0, len(records))
	for i, r := range records {
		p := model.PlayerRef{
			ID:    strings.TrimSpace(r.PID),
			Name:  strings.TrimSpace(r.Name),
			Label: strings.TrimSpace(r.Initial),
		}
		if p.Label == "" {
			p.Label = lineup.FallbackLabel(p.Name, p.ID)
		}
		if h := strings.TrimSpace(r.Height); h != "" {
			v, err := strconv.ParseFloat(h, 64)
			if err != nil {
				return model.Roster{}, fmt.Errorf("roster %s row %d: height %q: %w", path, i+2, h, err)
			}
			p.Height = v
			p.HasHeight = true
		}
		players = append(players, p)
	}
	return model.NewRoster(players), nil
}
