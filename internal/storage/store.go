package storage

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/san-kum/coagsim/internal/sim"
)

const (
	metadataFile      = "metadata.json"
	concentrationFile = "concentrations.csv"
)

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
	ID           string             `json:"id"`
	Name         string             `json:"name"`
	Strategy     string             `json:"strategy"`
	Distribution string             `json:"distribution"`
	MergePolicy  string             `json:"merge_policy"`
	Integrator   string             `json:"integrator"`
	Timestamp    time.Time          `json:"timestamp"`
	Dt           float64            `json:"dt"`
	Duration     float64            `json:"duration"`
	Temperature  float64            `json:"temperature"`
	Pressure     float64            `json:"pressure"`
	Density      float64            `json:"density"`
	Charge       float64            `json:"charge"`
	Radii        []float64          `json:"radii"`
	Steps        int                `json:"steps"`
	LostMass     float64            `json:"lost_mass"`
	Unstable     int                `json:"unstable_steps"`
	Metrics      map[string]float64 `json:"metrics"`
}

// Save writes meta and the concentration history under a new run
// directory and returns the run ID. Run statistics in meta are filled
// from result.
func (s *Store) Save(meta RunMetadata, result *sim.Result) (string, error) {
	name := meta.Name
	if name == "" {
		name = strings.ReplaceAll(meta.Strategy, "+", "_")
	}
	now := time.Now()
	runID := fmt.Sprintf("%s_%d", name, now.UnixNano())
	runDir := filepath.Join(s.baseDir, runID)

	if err := os.MkdirAll(runDir, 0755); err != nil {
		return "", err
	}

	meta.ID = runID
	meta.Name = name
	meta.Timestamp = now
	meta.Steps = result.StepsTaken
	meta.LostMass = result.LostMass
	meta.Unstable = result.Unstable
	meta.Metrics = result.Metrics

	metaFile, err := os.Create(filepath.Join(runDir, metadataFile))
	if err != nil {
		return "", err
	}
	defer metaFile.Close()

	enc := json.NewEncoder(metaFile)
	enc.SetIndent("", "  ")
	if err := enc.Encode(meta); err != nil {
		return "", err
	}

	csvFile, err := os.Create(filepath.Join(runDir, concentrationFile))
	if err != nil {
		return "", err
	}
	defer csvFile.Close()

	if err := WriteCSV(csvFile, meta.Radii, result); err != nil {
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
	sort.SliceStable(runs, func(i, j int) bool { return runs[i].Timestamp.Before(runs[j].Timestamp) })
	return runs, nil
}

func (s *Store) Load(runID string) (*RunMetadata, error) {
	data, err := os.ReadFile(filepath.Join(s.baseDir, runID, metadataFile))
	if err != nil {
		return nil, err
	}

	var meta RunMetadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, fmt.Errorf("storage: %s: %w", runID, err)
	}
	return &meta, nil
}

// LoadConcentrations reads a run's history back: one row per snapshot
// and the radius grid from the header.
func (s *Store) LoadConcentrations(runID string) (times, radii []float64, conc [][]float64, err error) {
	file, err := os.Open(filepath.Join(s.baseDir, runID, concentrationFile))
	if err != nil {
		return nil, nil, nil, err
	}
	defer file.Close()

	r := csv.NewReader(file)
	records, err := r.ReadAll()
	if err != nil {
		return nil, nil, nil, err
	}
	if len(records) == 0 {
		return []float64{}, []float64{}, [][]float64{}, nil
	}

	radii, err = parseRow(records[0][1:])
	if err != nil {
		return nil, nil, nil, fmt.Errorf("storage: %s header: %w", runID, err)
	}

	times = make([]float64, 0, len(records)-1)
	conc = make([][]float64, 0, len(records)-1)
	for i, record := range records[1:] {
		row, err := parseRow(record)
		if err != nil {
			return nil, nil, nil, fmt.Errorf("storage: %s row %d: %w", runID, i+1, err)
		}
		times = append(times, row[0])
		conc = append(conc, row[1:])
	}
	return times, radii, conc, nil
}

func parseRow(fields []string) ([]float64, error) {
	out := make([]float64, len(fields))
	for i, f := range fields {
		v, err := strconv.ParseFloat(f, 64)
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}
