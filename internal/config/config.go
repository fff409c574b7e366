package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
)

// FileName is the configuration file looked up in the config directory.
const FileName = "tal.cfg.json"

// MemoryConfig holds in-memory/JSON storage backend settings
type MemoryConfig struct {
	OutputDir      string `json:"outputDir" mapstructure:"outputDir"`
	CompressOutput bool   `json:"compressOutput" mapstructure:"compressOutput"`
}

// SQLiteConfig holds SQLite storage backend settings
type SQLiteConfig struct {
	DumpInterval time.Duration `json:"dumpInterval" mapstructure:"dumpInterval"`
	DumpPath     string        `json:"dumpPath" mapstructure:"dumpPath"`
}

// StorageConfig selects and configures the recording backend
type StorageConfig struct {
	Type   string       `json:"type" mapstructure:"type"`
	Memory MemoryConfig `json:"memory" mapstructure:"memory"`
	SQLite SQLiteConfig `json:"sqlite" mapstructure:"sqlite"`
}

// DBConfig holds Postgres connection settings
type DBConfig struct {
	Host     string `json:"host" mapstructure:"host"`
	Port     string `json:"port" mapstructure:"port"`
	Username string `json:"username" mapstructure:"username"`
	Password string `json:"password" mapstructure:"password"`
	Database string `json:"database" mapstructure:"database"`
}

// WebSocketConfig holds the stream backend settings
type WebSocketConfig struct {
	URL    string `json:"url" mapstructure:"url"`
	Secret string `json:"secret" mapstructure:"secret"`
}

// OTelConfig holds OpenTelemetry settings
type OTelConfig struct {
	Enabled      bool          `json:"enabled" mapstructure:"enabled"`
	ServiceName  string        `json:"serviceName" mapstructure:"serviceName"`
	BatchTimeout time.Duration `json:"batchTimeout" mapstructure:"batchTimeout"`
	Endpoint     string        `json:"endpoint" mapstructure:"endpoint"`
	Insecure     bool          `json:"insecure" mapstructure:"insecure"`
}

// InfluxConfig holds InfluxDB settings
type InfluxConfig struct {
	Enabled    bool   `json:"enabled" mapstructure:"enabled"`
	Host       string `json:"host" mapstructure:"host"`
	Port       string `json:"port" mapstructure:"port"`
	Protocol   string `json:"protocol" mapstructure:"protocol"`
	Token      string `json:"token" mapstructure:"token"`
	Org        string `json:"org" mapstructure:"org"`
	Bucket     string `json:"bucket" mapstructure:"bucket"`
	BackupPath string `json:"backupPath" mapstructure:"backupPath"`
}

// PilotConfig describes the pilot of one aircraft
type PilotConfig struct {
	Name     string `json:"name" mapstructure:"name"`
	Strike   int    `json:"strike" mapstructure:"strike"`
	Cannon   int    `json:"cannon" mapstructure:"cannon"`
	Coolness int    `json:"coolness" mapstructure:"coolness"`
}

// AircraftConfig places one aircraft
type AircraftConfig struct {
	ID       string      `json:"id" mapstructure:"id"`
	Name     string      `json:"name" mapstructure:"name"`
	Hex      int         `json:"hex" mapstructure:"hex"`
	Altitude string      `json:"altitude" mapstructure:"altitude"`
	Limit    int         `json:"limit" mapstructure:"limit"`
	Pilot    PilotConfig `json:"pilot" mapstructure:"pilot"`
}

// EnemyConfig places one ground unit
type EnemyConfig struct {
	ID      string         `json:"id" mapstructure:"id"`
	Name    string         `json:"name" mapstructure:"name"`
	Hex     int            `json:"hex" mapstructure:"hex"`
	HP      int            `json:"hp" mapstructure:"hp"`
	Defense map[string]int `json:"defense" mapstructure:"defense"`
	Attack  int            `json:"attack" mapstructure:"attack"`
}

// MissionConfig describes the board and forces of a mission.
// RidgesSet distinguishes an explicit empty ridge list from the board defaults.
type MissionConfig struct {
	Name         string           `json:"name" mapstructure:"name"`
	Board        string           `json:"board" mapstructure:"board"`
	DieSides     int              `json:"dieSides" mapstructure:"dieSides"`
	Loiter       int              `json:"loiter" mapstructure:"loiter"`
	StressMargin int              `json:"stressMargin" mapstructure:"stressMargin"`
	Seed         uint64           `json:"seed" mapstructure:"seed"`
	Ridges       [][]int          `json:"ridges" mapstructure:"ridges"`
	RidgesSet    bool             `json:"-" mapstructure:"-"`
	Aircraft     []AircraftConfig `json:"aircraft" mapstructure:"aircraft"`
	Enemies      []EnemyConfig    `json:"enemies" mapstructure:"enemies"`
}

// SetDefaults registers the default value of every known key.
func SetDefaults() {
	viper.SetDefault("logLevel", "info")
	viper.SetDefault("logsDir", "./tallogs")

	viper.SetDefault("graylog.enabled", false)
	viper.SetDefault("graylog.address", "localhost:12201")

	viper.SetDefault("otel.enabled", false)
	viper.SetDefault("otel.serviceName", "tal")
	viper.SetDefault("otel.batchTimeout", "5s")
	viper.SetDefault("otel.endpoint", "")
	viper.SetDefault("otel.insecure", true)

	viper.SetDefault("storage.type", "memory")
	viper.SetDefault("storage.memory.outputDir", "./recordings")
	viper.SetDefault("storage.memory.compressOutput", true)
	viper.SetDefault("storage.sqlite.dumpInterval", "3m")
	viper.SetDefault("storage.sqlite.dumpPath", "./recordings/tal.db")

	viper.SetDefault("db.host", "localhost")
	viper.SetDefault("db.port", "5432")
	viper.SetDefault("db.username", "postgres")
	viper.SetDefault("db.password", "postgres")
	viper.SetDefault("db.database", "tal")

	viper.SetDefault("websocket.url", "ws://localhost:5000/ingest")
	viper.SetDefault("websocket.secret", "")

	viper.SetDefault("influx.enabled", false)
	viper.SetDefault("influx.host", "localhost")
	viper.SetDefault("influx.port", "8086")
	viper.SetDefault("influx.protocol", "http")
	viper.SetDefault("influx.token", "supersecrettoken")
	viper.SetDefault("influx.org", "tal")
	viper.SetDefault("influx.bucket", "missions")
	viper.SetDefault("influx.backupPath", "./tallogs/influx_backup.lp.gz")

	viper.SetDefault("mission.name", "Close Air Support")
	viper.SetDefault("mission.board", "canonical")
	viper.SetDefault("mission.dieSides", 10)
	viper.SetDefault("mission.loiter", 6)
	viper.SetDefault("mission.stressMargin", 3)
	viper.SetDefault("mission.seed", 0)
}

// Load reads configuration from JSON file and sets default values.
// configDir is the directory containing the config file.
func Load(configDir string) error {
	SetDefaults()

	viper.SetConfigName(FileName)
	viper.AddConfigPath(configDir)
	viper.SetConfigType("json")

	err := viper.ReadInConfig()
	if err != nil {
		return fmt.Errorf("error reading config file: %w", err)
	}

	return nil
}

// GetString returns a string config value.
func GetString(key string) string {
	return viper.GetString(key)
}

// GetInt returns an int config value.
func GetInt(key string) int {
	return viper.GetInt(key)
}

// GetBool returns a bool config value.
func GetBool(key string) bool {
	return viper.GetBool(key)
}

// GetStorageConfig returns the recording backend settings.
func GetStorageConfig() StorageConfig {
	return StorageConfig{
		Type: viper.GetString("storage.type"),
		Memory: MemoryConfig{
			OutputDir:      viper.GetString("storage.memory.outputDir"),
			CompressOutput: viper.GetBool("storage.memory.compressOutput"),
		},
		SQLite: SQLiteConfig{
			DumpInterval: viper.GetDuration("storage.sqlite.dumpInterval"),
			DumpPath:     viper.GetString("storage.sqlite.dumpPath"),
		},
	}
}

// GetDBConfig returns the Postgres connection settings.
func GetDBConfig() DBConfig {
	return DBConfig{
		Host:     viper.GetString("db.host"),
		Port:     viper.GetString("db.port"),
		Username: viper.GetString("db.username"),
		Password: viper.GetString("db.password"),
		Database: viper.GetString("db.database"),
	}
}

// GetWebSocketConfig returns the stream backend settings.
func GetWebSocketConfig() WebSocketConfig {
	return WebSocketConfig{
		URL:    viper.GetString("websocket.url"),
		Secret: viper.GetString("websocket.secret"),
	}
}

// GetOTelConfig returns the OpenTelemetry settings.
func GetOTelConfig() OTelConfig {
	return OTelConfig{
		Enabled:      viper.GetBool("otel.enabled"),
		ServiceName:  viper.GetString("otel.serviceName"),
		BatchTimeout: viper.GetDuration("otel.batchTimeout"),
		Endpoint:     viper.GetString("otel.endpoint"),
		Insecure:     viper.GetBool("otel.insecure"),
	}
}

// GetInfluxConfig returns the InfluxDB settings.
func GetInfluxConfig() InfluxConfig {
	return InfluxConfig{
		Enabled:    viper.GetBool("influx.enabled"),
		Host:       viper.GetString("influx.host"),
		Port:       viper.GetString("influx.port"),
		Protocol:   viper.GetString("influx.protocol"),
		Token:      viper.GetString("influx.token"),
		Org:        viper.GetString("influx.org"),
		Bucket:     viper.GetString("influx.bucket"),
		BackupPath: viper.GetString("influx.backupPath"),
	}
}

// GetMissionConfig decodes the mission section. Scalars are read key by key so
// defaults apply even when the file carries a partial mission object.
func GetMissionConfig() (MissionConfig, error) {
	mc := MissionConfig{
		Name:         viper.GetString("mission.name"),
		Board:        viper.GetString("mission.board"),
		DieSides:     viper.GetInt("mission.dieSides"),
		Loiter:       viper.GetInt("mission.loiter"),
		StressMargin: viper.GetInt("mission.stressMargin"),
		Seed:         viper.GetUint64("mission.seed"),
		RidgesSet:    viper.IsSet("mission.ridges"),
	}
	if err := viper.UnmarshalKey("mission.ridges", &mc.Ridges); err != nil {
		return mc, fmt.Errorf("decode mission ridges: %w", err)
	}
	if err := viper.UnmarshalKey("mission.aircraft", &mc.Aircraft); err != nil {
		return mc, fmt.Errorf("decode mission aircraft: %w", err)
	}
	if err := viper.UnmarshalKey("mission.enemies", &mc.Enemies); err != nil {
		return mc, fmt.Errorf("decode mission enemies: %w", err)
	}
	return mc, nil
}
