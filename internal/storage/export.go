package storage

import (
	"encoding/csv"
	"encoding/json"
	"io"
	"strconv"

	"github.com/san-kum/bactsim/internal/culture"
	"github.com/san-kum/bactsim/internal/sim"
)

type ExportData struct {
	Run       RunMetadata        `json:"run"`
	Records   []sim.Record       `json:"records"`
	Positions []culture.Position `json:"positions,omitempty"`
}

// ExportJSON loads a stored run and writes it to w as one indented document.
func (s *Store) ExportJSON(w io.Writer, runID string) error {
	meta, err := s.Load(runID)
	if err != nil {
		return err
	}
	records, err := s.LoadRecords(runID)
	if err != nil {
		return err
	}
	positions, err := s.LoadPositions(runID)
	if err != nil {
		return err
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(ExportData{Run: *meta, Records: records, Positions: positions})
}

func ExportCSV(w io.Writer, records []sim.Record) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(recordsHeader); err != nil {
		return err
	}
	for _, rec := range records {
		row := []string{
			strconv.Itoa(rec.Step),
			strconv.FormatFloat(rec.Time, 'f', 6, 64),
			strconv.Itoa(rec.Approx),
			strconv.FormatFloat(rec.Analytical, 'f', 6, 64),
			strconv.FormatFloat(rec.AbsError, 'f', 6, 64),
			strconv.FormatFloat(rec.RelError, 'f', 6, 64),
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}
