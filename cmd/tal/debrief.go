package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/pflag"
	"gorm.io/gorm"

	"github.com/tal-engine/tal/internal/config"
	"github.com/tal-engine/tal/internal/database"
	gormstorage "github.com/tal-engine/tal/internal/storage/gorm"
	"github.com/tal-engine/tal/internal/storage/memory"
)

var errDebriefUsage = errors.New("usage: tal debrief [--json] [--mission id] <file.db|postgres>")

// runDebrief prints the after-action report of a recorded mission, read back
// from a SQLite dump or from the configured Postgres database.
func runDebrief(args []string, out io.Writer) error {
	fs := pflag.NewFlagSet("debrief", pflag.ContinueOnError)
	asJSON := fs.Bool("json", false, "print the full report as JSON")
	missionID := fs.String("mission", "", "mission id, the latest mission when empty")
	configDir := fs.String("config", ".", "directory containing "+config.FileName)
	if err := fs.Parse(args); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return nil
		}
		return err
	}
	if fs.NArg() != 1 {
		return errDebriefUsage
	}

	db, err := openRecording(fs.Arg(0), *configDir)
	if err != nil {
		return err
	}
	if sqlDB, err := db.DB(); err == nil {
		defer sqlDB.Close()
	}

	rec, err := gormstorage.Load(db, *missionID)
	if err != nil {
		return err
	}
	report := memory.NewReport(&rec.Mission, rec.Events, rec.Rounds, rec.Result)
	if rec.Result == nil {
		report.Outcome = "UNFINISHED"
	}

	if *asJSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(report)
	}
	_, err = fmt.Fprint(out, report.Text())
	return err
}

func openRecording(source, configDir string) (*gorm.DB, error) {
	if source == "postgres" {
		// defaults still apply without a file
		_ = config.Load(configDir)
		return database.OpenPostgres(config.GetDBConfig())
	}
	if _, err := os.Stat(source); err != nil {
		return nil, fmt.Errorf("open recording: %w", err)
	}
	return database.OpenSQLite(source)
}
