package main

import (
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/tal-engine/tal/internal/config"
	"github.com/tal-engine/tal/internal/database"
	"github.com/tal-engine/tal/internal/influx"
	"github.com/tal-engine/tal/internal/logging"
	"github.com/tal-engine/tal/internal/storage"
	"github.com/tal-engine/tal/internal/storage/memory"
	pgstorage "github.com/tal-engine/tal/internal/storage/postgres"
	sqlitestorage "github.com/tal-engine/tal/internal/storage/sqlite"
	wsstorage "github.com/tal-engine/tal/internal/storage/websocket"
)

type storageDeps struct {
	logs   *logging.SlogManager
	logger *slog.Logger
	zlog   zerolog.Logger
	start  time.Time
}

// createStorageBackend returns nil for the "none" type.
func createStorageBackend(storageCfg config.StorageConfig, deps storageDeps) (storage.Backend, error) {
	switch strings.ToLower(storageCfg.Type) {
	case "", "memory":
		return memory.New(storageCfg.Memory), nil

	case "sqlite":
		sqliteCfg := storageCfg.SQLite
		sqliteCfg.DumpPath = sessionPath(sqliteCfg.DumpPath, deps.start)
		backend, err := sqlitestorage.New(sqliteCfg, database.NewManager(deps.zlog), deps.logs)
		if err != nil {
			return nil, fmt.Errorf("failed to create SQLite backend: %w", err)
		}
		return backend, nil

	case "postgres":
		return pgstorage.New(pgstorage.Dependencies{
			Manager:    database.NewManager(deps.zlog),
			DBConfig:   config.GetDBConfig(),
			LogManager: deps.logs,
		}), nil

	case "websocket":
		wsCfg := config.GetWebSocketConfig()
		wsCfg.URL = httpToWS(wsCfg.URL)
		return wsstorage.New(wsCfg, deps.logger), nil

	case "none":
		return nil, nil

	default:
		return nil, fmt.Errorf("unknown storage type %q", storageCfg.Type)
	}
}

// withInflux adds the InfluxDB writer next to the primary backend when enabled.
func withInflux(backend storage.Backend, cfg config.InfluxConfig, log zerolog.Logger) storage.Backend {
	if !cfg.Enabled {
		return backend
	}
	return storage.NewFanout(backend, influx.NewManager(log, cfg))
}

// sessionPath stamps the session start into a file name: tal.db becomes
// tal_20060102_150405.db.
func sessionPath(path string, start time.Time) string {
	if path == "" {
		return ""
	}
	ext := filepath.Ext(path)
	return strings.TrimSuffix(path, ext) + "_" + start.Format("20060102_150405") + ext
}

// httpToWS converts an HTTP(S) URL to a WebSocket URL.
func httpToWS(httpURL string) string {
	s := strings.TrimRight(httpURL, "/")
	s = strings.Replace(s, "https://", "wss://", 1)
	s = strings.Replace(s, "http://", "ws://", 1)
	return s
}
