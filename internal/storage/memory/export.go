package memory

import (
	"compress/gzip"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/tal-engine/tal/pkg/core"
)

// Report is the after-action JSON document.
type Report struct {
	MissionID       string               `json:"missionId"`
	MissionName     string               `json:"missionName"`
	Board           string               `json:"board"`
	DieSides        int                  `json:"dieSides"`
	Loiter          int                  `json:"loiter"`
	StartTime       time.Time            `json:"startTime"`
	EndTime         time.Time            `json:"endTime,omitzero"`
	Outcome         string               `json:"outcome"`
	Rounds          int                  `json:"rounds"`
	BattalionHP     int                  `json:"battalionHp"`
	BattalionStatus string               `json:"battalionStatus"`
	Events          []core.Event         `json:"events"`
	RoundStates     []core.RoundSnapshot `json:"roundStates"`
}

// Text renders a short plain-text debrief.
func (r Report) Text() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s (%s board)\n", r.MissionName, r.Board)
	fmt.Fprintf(&b, "Outcome: %s after %d rounds\n", r.Outcome, r.Rounds)
	fmt.Fprintf(&b, "Battalion: %s, %d hp remaining\n", r.BattalionStatus, r.BattalionHP)
	for _, e := range r.Events {
		switch e.Kind {
		case core.EventAttack, core.EventUnitDestroyed, core.EventAircraftDestroyed, core.EventMissionComplete:
			fmt.Fprintf(&b, "  R%d %s\n", e.Round, e.Message)
		}
	}
	return b.String()
}

// sanitize keeps mission names usable as file names.
func sanitize(name string) string {
	r := strings.NewReplacer(" ", "_", ":", "_", "/", "_", "\\", "_")
	return r.Replace(name)
}

// exportJSON writes the mission data to a JSON file, gzipped if configured.
// Callers hold the write lock.
func (b *Backend) exportJSON() error {
	report := b.buildReport()

	timestamp := b.mission.StartTime.Format("20060102_150405")
	filename := fmt.Sprintf("%s_%s.json", sanitize(b.mission.Name), timestamp)
	if b.cfg.CompressOutput {
		filename += ".gz"
	}
	outputPath := filepath.Join(b.cfg.OutputDir, filename)

	if err := os.MkdirAll(b.cfg.OutputDir, 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	var err error
	if b.cfg.CompressOutput {
		err = writeGzipJSON(outputPath, report)
	} else {
		err = writeJSON(outputPath, report)
	}
	if err != nil {
		return err
	}

	b.lastExportPath = outputPath
	return nil
}

func (b *Backend) buildReport() Report {
	return NewReport(b.mission, b.events, b.rounds, b.result)
}

// NewReport assembles a report from mission records. mission and result may be nil.
func NewReport(mission *core.Mission, events []core.Event, rounds []core.RoundSnapshot, result *core.MissionResult) Report {
	r := Report{
		Events:      append([]core.Event{}, events...),
		RoundStates: append([]core.RoundSnapshot{}, rounds...),
	}
	if mission != nil {
		r.MissionID = mission.ID
		r.MissionName = mission.Name
		r.Board = mission.Board
		r.DieSides = mission.DieSides
		r.Loiter = mission.Loiter
		r.StartTime = mission.StartTime
	}
	if result != nil {
		r.EndTime = result.EndTime
		r.Outcome = result.Outcome
		r.Rounds = result.Rounds
		r.BattalionHP = result.BattalionHP
		r.BattalionStatus = result.BattalionStatus
	}
	return r
}

func writeJSON(path string, v any) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}
	defer f.Close()

	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("failed to encode JSON: %w", err)
	}
	return nil
}

func writeGzipJSON(path string, v any) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}
	defer f.Close()

	gz := gzip.NewWriter(f)
	if err := json.NewEncoder(gz).Encode(v); err != nil {
		gz.Close()
		return fmt.Errorf("failed to encode JSON: %w", err)
	}
	if err := gz.Close(); err != nil {
		return fmt.Errorf("failed to close gzip writer: %w", err)
	}
	return nil
}
