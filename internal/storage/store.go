package storage

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"time"

	"github.com/san-kum/bactsim/internal/culture"
	"github.com/san-kum/bactsim/internal/sim"
)

const (
	metadataFile  = "metadata.json"
	recordsFile   = "records.csv"
	positionsFile = "positions.csv"
)

var recordsHeader = []string{"step", "time", "approx", "analytical", "abs_error", "rel_error"}

type Store struct {
	baseDir string
}

func New(baseDir string) *Store {
	return &Store{baseDir: baseDir}
}

func (s *Store) Init() error {
	return os.MkdirAll(s.baseDir, 0755)
}

type RunMetadata struct {
	ID              string             `json:"id"`
	Timestamp       time.Time          `json:"timestamp"`
	RandSeed        int64              `json:"rand_seed"`
	SeedCount       int                `json:"seed_count"`
	GrowthRate      float64            `json:"growth_rate"`
	Start           float64            `json:"start"`
	End             float64            `json:"end"`
	Steps           int                `json:"steps"`
	Dt              float64            `json:"dt"`
	Integrator      string             `json:"integrator"`
	Width           int                `json:"width"`
	Height          int                `json:"height"`
	FinalCount      int                `json:"final_count"`
	FinalAnalytical float64            `json:"final_analytical"`
	Metrics         map[string]float64 `json:"metrics"`
}

// Save writes metadata, every record and the final agent positions into a
// new run directory and returns its id.
func (s *Store) Save(randSeed int64, result *sim.Result) (string, error) {
	now := time.Now()
	runID := fmt.Sprintf("culture_%s_%09d", now.Format("20060102_150405"), now.Nanosecond())
	runDir := filepath.Join(s.baseDir, runID)

	if err := os.MkdirAll(runDir, 0755); err != nil {
		return "", err
	}

	cfg := result.Config
	last := result.Last()
	meta := RunMetadata{
		ID:              runID,
		Timestamp:       now,
		RandSeed:        randSeed,
		SeedCount:       cfg.SeedCount,
		GrowthRate:      cfg.GrowthRate,
		Start:           cfg.Start,
		End:             cfg.End,
		Steps:           cfg.Steps,
		Dt:              cfg.Dt(),
		Integrator:      result.Integrator,
		Width:           cfg.Width,
		Height:          cfg.Height,
		FinalCount:      last.Approx,
		FinalAnalytical: last.Analytical,
		Metrics:         result.Metrics,
	}

	if err := writeJSON(filepath.Join(runDir, metadataFile), meta); err != nil {
		return "", err
	}
	if err := writeRecords(filepath.Join(runDir, recordsFile), result.Records); err != nil {
		return "", err
	}

	var positions []culture.Position
	if result.Final != nil && result.Final.Env != nil {
		positions = result.Final.Env.Positions()
	}
	if err := writePositions(filepath.Join(runDir, positionsFile), positions); err != nil {
		return "", err
	}

	return runID, nil
}

// List returns every readable run, oldest first.
func (s *Store) List() ([]RunMetadata, error) {
	entries, err := os.ReadDir(s.baseDir)
	if err != nil {
		if os.IsNotExist(err) {
			return []RunMetadata{}, nil
		}
		return nil, err
	}

	runs := make([]RunMetadata, 0)
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}

		meta, err := s.Load(entry.Name())
		if err != nil {
			continue
		}
		runs = append(runs, *meta)
	}

	sort.Slice(runs, func(i, j int) bool { return runs[i].Timestamp.Before(runs[j].Timestamp) })
	return runs, nil
}

func (s *Store) Load(runID string) (*RunMetadata, error) {
	data, err := os.ReadFile(filepath.Join(s.baseDir, runID, metadataFile))
	if err != nil {
		return nil, err
	}

	var meta RunMetadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, err
	}

	return &meta, nil
}

func (s *Store) LoadRecords(runID string) ([]sim.Record, error) {
	rows, err := readCSV(filepath.Join(s.baseDir, runID, recordsFile))
	if err != nil {
		return nil, err
	}

	records := make([]sim.Record, 0, len(rows))
	for i, row := range rows {
		if len(row) < len(recordsHeader) {
			return nil, fmt.Errorf("%s line %d: expected %d fields, got %d", recordsFile, i+2, len(recordsHeader), len(row))
		}
		vals, err := parseFloats(row)
		if err != nil {
			return nil, fmt.Errorf("%s line %d: %w", recordsFile, i+2, err)
		}
		records = append(records, sim.Record{
			Step:       int(vals[0]),
			Time:       vals[1],
			Approx:     int(vals[2]),
			Analytical: vals[3],
			AbsError:   vals[4],
			RelError:   vals[5],
		})
	}

	return records, nil
}

func (s *Store) LoadPositions(runID string) ([]culture.Position, error) {
	rows, err := readCSV(filepath.Join(s.baseDir, runID, positionsFile))
	if err != nil {
		return nil, err
	}

	positions := make([]culture.Position, 0, len(rows))
	for i, row := range rows {
		vals, err := parseFloats(row)
		if err != nil || len(vals) < 2 {
			return nil, fmt.Errorf("%s line %d: malformed position", positionsFile, i+2)
		}
		positions = append(positions, culture.Position{X: vals[0], Y: vals[1]})
	}

	return positions, nil
}

func writeJSON(path string, v any) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func writeRecords(path string, records []sim.Record) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(recordsHeader); err != nil {
		return err
	}
	for _, rec := range records {
		row := []string{
			strconv.Itoa(rec.Step),
			formatFloat(rec.Time),
			strconv.Itoa(rec.Approx),
			formatFloat(rec.Analytical),
			formatFloat(rec.AbsError),
			formatFloat(rec.RelError),
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}
	w.Flush()
	return w.Error()
}

func writePositions(path string, positions []culture.Position) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write([]string{"x", "y"}); err != nil {
		return err
	}
	for _, p := range positions {
		if err := w.Write([]string{formatFloat(p.X), formatFloat(p.Y)}); err != nil {
			return err
		}
	}
	w.Flush()
	return w.Error()
}

// readCSV returns every row after the header.
func readCSV(path string) ([][]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1

	rows, err := r.ReadAll()
	if err != nil {
		return nil, err
	}
	if len(rows) < 2 {
		return [][]string{}, nil
	}
	return rows[1:], nil
}

func parseFloats(row []string) ([]float64, error) {
	vals := make([]float64, len(row))
	for i, field := range row {
		v, err := strconv.ParseFloat(field, 64)
		if err != nil {
			return nil, err
		}
		vals[i] = v
	}
	return vals, nil
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}
