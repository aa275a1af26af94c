package config

import (
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
	"gorm.io/gorm/schema"
)

var (
	db       *gorm.DB
	dbPath   string
	dbLock   *fileLock
	writeMux sync.Mutex
)

// ErrDatabaseNotConnected is returned by operations that need an open data file.
var ErrDatabaseNotConnected = errors.New("database not connected")

func GetDB() *gorm.DB {
	return db
}

// DatabasePath returns the path of the live data file, empty when not connected.
func DatabasePath() string {
	return dbPath
}

// ConnectDatabase opens the data file at path, creating its directory when missing.
// The file is guarded by an advisory lock so a second process cannot open it.
func ConnectDatabase(path string) error {
	if db != nil {
		if err := CloseDatabase(); err != nil {
			return err
		}
	}
	if path == "" {
		return errors.New("database path is required")
	}
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create database directory: %w", err)
		}
	}

	lock, err := acquireFileLock(path + ".lock")
	if err != nil {
		return err
	}
	conn, err := openDatabase(path)
	if err != nil {
		lock.release()
		return err
	}

	db = conn
	dbPath = path
	dbLock = lock
	LogInfo(GetLogger(), "config", "ConnectDatabase", "connected to database", path)
	return nil
}

// ReopenDatabase closes and reopens the connection to the same data file while
// keeping the advisory lock. Used after the file has been replaced on disk.
// When the file cannot be reopened GetDB returns nil until the next ConnectDatabase.
func ReopenDatabase() error {
	if db == nil {
		return ErrDatabaseNotConnected
	}
	if err := closeConnection(); err != nil {
		return err
	}
	conn, err := openDatabase(dbPath)
	if err != nil {
		db = nil
		return err
	}
	db = conn
	return nil
}

// SuspendDatabase closes the connection but keeps the lock and the path, so the
// data file can be replaced. ReopenDatabase must follow.
func SuspendDatabase() error {
	if db == nil {
		return ErrDatabaseNotConnected
	}
	return closeConnection()
}

func CloseDatabase() error {
	if db == nil && dbLock == nil {
		return nil
	}
	err := closeConnection()
	if dbLock != nil {
		dbLock.release()
	}
	db = nil
	dbPath = ""
	dbLock = nil
	return err
}

func closeConnection() error {
	if db == nil {
		return nil
	}
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

func openDatabase(path string) (*gorm.DB, error) {
	dsn := path + "?_pragma=busy_timeout(5000)&_pragma=journal_mode(DELETE)&_time_format=sqlite"
	conn, err := gorm.Open(sqlite.Open(dsn), initConfig())
	if err != nil {
		return nil, fmt.Errorf("open database %s: %w", path, err)
	}
	sqlDB, err := conn.DB()
	if err != nil {
		return nil, err
	}
	// force the file into existence so backups always have something to read
	if err := sqlDB.Ping(); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("open database %s: %w", path, err)
	}
	return conn, nil
}

// AcquireWriteLock serialises every write path of the process. The returned
// func releases the lock.
func AcquireWriteLock() func() {
	writeMux.Lock()
	return writeMux.Unlock
}

func initConfig() *gorm.Config {
	return &gorm.Config{
		Logger:         initLog(),
		NamingStrategy: initNamingStrategy(),
		NowFunc: func() time.Time {
			return time.Now().UTC()
		},
	}
}

// InitLog Connection Log Configuration
func initLog() logger.Interface {
	newLogger := logger.New(
		log.New(os.Stderr, "\r\n", log.LstdFlags),
		logger.Config{
			Colorful:                  false,
			LogLevel:                  logger.Error,
			SlowThreshold:             time.Second,
			IgnoreRecordNotFoundError: true,
		},
	)
	return newLogger
}

// InitNamingStrategy Init NamingStrategy
func initNamingStrategy() *schema.NamingStrategy {
	return &schema.NamingStrategy{
		SingularTable: false,
		TablePrefix:   "",
	}
}
