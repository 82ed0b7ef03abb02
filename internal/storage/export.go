package storage

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/san-kum/coagsim/internal/sim"
)

type ExportData struct {
	RunMetadata
	Times          []float64   `json:"times"`
	Concentrations [][]float64 `json:"concentrations"`
}

// WriteJSON writes the run as one indented JSON document.
func WriteJSON(w io.Writer, meta RunMetadata, result *sim.Result) error {
	meta.Steps = result.StepsTaken
	meta.LostMass = result.LostMass
	meta.Unstable = result.Unstable
	meta.Metrics = result.Metrics

	data := ExportData{
		RunMetadata:    meta,
		Times:          result.Times,
		Concentrations: result.Concentrations,
	}
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(data)
}

func ExportJSON(path string, meta RunMetadata, result *sim.Result) error {
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()
	return WriteJSON(file, meta, result)
}

func ExportJSONStdout(meta RunMetadata, result *sim.Result) error {
	return WriteJSON(os.Stdout, meta, result)
}

// WriteCSV writes a "time" column followed by one column per radius; the
// header carries the radii in metres.
func WriteCSV(w io.Writer, radii []float64, result *sim.Result) error {
	cw := csv.NewWriter(w)

	header := make([]string, 0, len(radii)+1)
	header = append(header, "time")
	for _, r := range radii {
		header = append(header, formatFloat(r))
	}
	if err := cw.Write(header); err != nil {
		return err
	}

	for i, conc := range result.Concentrations {
		if len(conc) != len(radii) {
			return fmt.Errorf("storage: snapshot %d has %d bins, grid has %d", i, len(conc), len(radii))
		}
		row := make([]string, 0, len(conc)+1)
		row = append(row, formatFloat(result.Times[i]))
		for _, v := range conc {
			row = append(row, formatFloat(v))
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}

	cw.Flush()
	return cw.Error()
}

func ExportCSV(path string, radii []float64, result *sim.Result) error {
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()
	return WriteCSV(file, radii, result)
}
