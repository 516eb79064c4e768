// Package storage persists runs: per-run metadata, episode summaries,
// per-step traces, the diagnostics data files and an episode monitor.
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

	"github.com/google/uuid"

	"github.com/GazzolaLab/Elastica-RL-control/internal/env"
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
	ID             string             `json:"id"`
	Name           string             `json:"name"`
	Timestamp      time.Time          `json:"timestamp"`
	Seed           uint64             `json:"seed"`
	SimDt          float64            `json:"sim_dt"`
	FinalTime      float64            `json:"final_time"`
	StepsPerUpdate int                `json:"steps_per_update"`
	Integrator     string             `json:"integrator"`
	Policy         string             `json:"policy"`
	Dim            string             `json:"dim"`
	ControlPoints  int                `json:"control_points"`
	Episodes       int                `json:"episodes"`
	MeanReturn     float64            `json:"mean_return"`
	Metrics        map[string]float64 `json:"metrics"`
}

// EpisodeRow is one line of episodes.csv.
type EpisodeRow struct {
	Episode        int
	Return         float64
	Length         int
	FinalDistance  float64
	Divergent      bool
	SimulationTime float64
}

func Summarize(episode int, res *env.EpisodeResult) EpisodeRow {
	return EpisodeRow{
		Episode:        episode,
		Return:         res.Return,
		Length:         res.Length,
		FinalDistance:  res.FinalDistance,
		Divergent:      res.Divergent,
		SimulationTime: res.SimulationTime,
	}
}

// NewRunID returns a readable unique run identifier.
func NewRunID(name string) string {
	short, _, _ := strings.Cut(uuid.NewString(), "-")
	if name == "" {
		return short
	}
	return name + "_" + short
}

// Save writes a run directory with metadata.json, episodes.csv and
// steps.csv. An empty meta.ID is filled in; the ID is returned.
func (s *Store) Save(meta RunMetadata, results []*env.EpisodeResult) (string, error) {
	if meta.ID == "" {
		meta.ID = NewRunID(meta.Name)
	}
	if meta.Timestamp.IsZero() {
		meta.Timestamp = time.Now()
	}
	meta.Episodes = len(results)
	if len(results) > 0 {
		sum := 0.0
		for _, r := range results {
			sum += r.Return
		}
		meta.MeanReturn = sum / float64(len(results))
	}

	runDir := filepath.Join(s.baseDir, meta.ID)
	if err := os.MkdirAll(runDir, 0755); err != nil {
		return "", err
	}

	if err := writeJSON(filepath.Join(runDir, "metadata.json"), meta); err != nil {
		return "", err
	}

	rows := make([][]string, 0, len(results)+1)
	rows = append(rows, []string{"episode", "return", "length", "final_distance", "divergent", "sim_time"})
	for i, r := range results {
		row := Summarize(i, r)
		rows = append(rows, []string{
			strconv.Itoa(row.Episode),
			formatFloat(row.Return),
			strconv.Itoa(row.Length),
			formatFloat(row.FinalDistance),
			strconv.FormatBool(row.Divergent),
			formatFloat(row.SimulationTime),
		})
	}
	if err := writeCSV(filepath.Join(runDir, "episodes.csv"), rows); err != nil {
		return "", err
	}

	rows = rows[:0]
	rows = append(rows, []string{"episode", "step", "time", "reward", "distance"})
	for i, r := range results {
		for j := range r.Rewards {
			rows = append(rows, []string{
				strconv.Itoa(i),
				strconv.Itoa(j + 1),
				formatFloat(r.Times[j]),
				formatFloat(r.Rewards[j]),
				formatFloat(r.Distances[j]),
			})
		}
	}
	if err := writeCSV(filepath.Join(runDir, "steps.csv"), rows); err != nil {
		return "", err
	}

	return meta.ID, nil
}

// Dir is the directory of a run.
func (s *Store) Dir(runID string) string {
	return filepath.Join(s.baseDir, runID)
}

// List returns the metadata of every readable run, newest first.
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

	sort.Slice(runs, func(i, j int) bool { return runs[i].Timestamp.After(runs[j].Timestamp) })
	return runs, nil
}

func (s *Store) Load(runID string) (*RunMetadata, error) {
	data, err := os.ReadFile(filepath.Join(s.baseDir, runID, "metadata.json"))
	if err != nil {
		return nil, err
	}

	var meta RunMetadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, err
	}
	return &meta, nil
}

func (s *Store) LoadEpisodes(runID string) ([]EpisodeRow, error) {
	records, err := readCSV(filepath.Join(s.baseDir, runID, "episodes.csv"))
	if err != nil {
		return nil, err
	}

	out := make([]EpisodeRow, 0, len(records))
	for i, rec := range records {
		if len(rec) < 6 {
			return nil, fmt.Errorf("episodes.csv line %d: expected 6 fields, got %d", i+2, len(rec))
		}
		var row EpisodeRow
		var perr error
		row.Episode, perr = strconv.Atoi(rec[0])
		if perr == nil {
			row.Return, perr = strconv.ParseFloat(rec[1], 64)
		}
		if perr == nil {
			row.Length, perr = strconv.Atoi(rec[2])
		}
		if perr == nil {
			row.FinalDistance, perr = strconv.ParseFloat(rec[3], 64)
		}
		if perr == nil {
			row.Divergent, perr = strconv.ParseBool(rec[4])
		}
		if perr == nil {
			row.SimulationTime, perr = strconv.ParseFloat(rec[5], 64)
		}
		if perr != nil {
			return nil, fmt.Errorf("episodes.csv line %d: %w", i+2, perr)
		}
		out = append(out, row)
	}
	return out, nil
}

// StepTrace is the per-step reward and distance of one episode.
type StepTrace struct {
	Times     []float64
	Rewards   []float64
	Distances []float64
}

// LoadSteps returns the traces of every episode in the run, indexed by
// episode number. Episode numbers must lie within the run's metadata.
func (s *Store) LoadSteps(runID string) ([]StepTrace, error) {
	meta, err := s.Load(runID)
	if err != nil {
		return nil, err
	}
	records, err := readCSV(filepath.Join(s.baseDir, runID, "steps.csv"))
	if err != nil {
		return nil, err
	}

	traces := make([]StepTrace, meta.Episodes)
	for i, rec := range records {
		if len(rec) < 5 {
			return nil, fmt.Errorf("steps.csv line %d: expected 5 fields, got %d", i+2, len(rec))
		}
		ep, err := strconv.Atoi(rec[0])
		if err != nil {
			return nil, fmt.Errorf("steps.csv line %d: %w", i+2, err)
		}
		if ep < 0 || ep >= len(traces) {
			return nil, fmt.Errorf("steps.csv line %d: episode %d outside run of %d episodes", i+2, ep, len(traces))
		}
		var vals [3]float64
		for j := range vals {
			if vals[j], err = strconv.ParseFloat(rec[j+2], 64); err != nil {
				return nil, fmt.Errorf("steps.csv line %d: %w", i+2, err)
			}
		}
		traces[ep].Times = append(traces[ep].Times, vals[0])
		traces[ep].Rewards = append(traces[ep].Rewards, vals[1])
		traces[ep].Distances = append(traces[ep].Distances, vals[2])
	}
	return traces, nil
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', 10, 64)
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

func writeCSV(path string, rows [][]string) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.WriteAll(rows); err != nil {
		return err
	}
	return f.Sync()
}

// readCSV returns every record after the header.
func readCSV(path string) ([][]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1
	records, err := r.ReadAll()
	if err != nil {
		return nil, err
	}
	if len(records) < 2 {
		return [][]string{}, nil
	}
	return records[1:], nil
}
