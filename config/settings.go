package config

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

const (
	DefaultDatabasePath      = "data/database.sqlite"
	DefaultBackupDir         = "backups"
	DefaultKeyFile           = "data/.encryption_key"
	DefaultReportsDir        = "reports"
	DefaultLowStockThreshold = 5
	DefaultPhoneRegion       = "US"
)

// Settings holds the file locations and tunables of one inventory installation.
type Settings struct {
	DatabasePath      string
	BackupDir         string
	KeyFile           string
	ReportsDir        string
	LowStockThreshold int
	PhoneRegion       string
	LogLevel          string
}

func init() {
	// Load env from .env
	godotenv.Load()
}

// LoadSettings reads the settings from the environment.
//
//   - DB_PATH (default data/database.sqlite)
//   - BACKUP_DIR (default backups)
//   - KEY_FILE (default data/.encryption_key)
//   - REPORTS_DIR (default reports)
//   - LOW_STOCK_THRESHOLD (default 5)
//   - PHONE_REGION (default US)
//   - LOG_LEVEL (default info)
func LoadSettings() *Settings {
	return &Settings{
		DatabasePath:      pathFromEnv("DB_PATH", DefaultDatabasePath),
		BackupDir:         pathFromEnv("BACKUP_DIR", DefaultBackupDir),
		KeyFile:           pathFromEnv("KEY_FILE", DefaultKeyFile),
		ReportsDir:        pathFromEnv("REPORTS_DIR", DefaultReportsDir),
		LowStockThreshold: LowStockThreshold(),
		PhoneRegion:       PhoneRegion(),
		LogLevel:          stringFromEnv("LOG_LEVEL", "info"),
	}
}

// LowStockThreshold is the stock level at or below which a product needs restocking.
func LowStockThreshold() int {
	n := intFromEnv("LOW_STOCK_THRESHOLD", DefaultLowStockThreshold)
	if n < 0 {
		return DefaultLowStockThreshold
	}
	return n
}

// PhoneRegion is the default region used to parse supplier phone numbers without a country prefix.
func PhoneRegion() string {
	return strings.ToUpper(stringFromEnv("PHONE_REGION", DefaultPhoneRegion))
}

func stringFromEnv(key string, def string) string {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	return v
}

func pathFromEnv(key string, def string) string {
	return filepath.Clean(stringFromEnv(key, def))
}

func intFromEnv(key string, def int) int {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}
