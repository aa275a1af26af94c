package backup

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/mmdatafocus/inventory_backend/config"
	"github.com/mmdatafocus/inventory_backend/models"
	"github.com/mmdatafocus/inventory_backend/utils"
	"github.com/sirupsen/logrus"
)

const (
	backupPrefix    = "backup_"
	backupExt       = ".enc"
	snapshotPrefix  = "pre_restore_"
	snapshotExt     = ".db"
	timestampLayout = "20060102150405"
	backupDirMode   = 0o700
	backupFileMode  = 0o400
	privateFileMode = 0o600
)

var (
	ErrDatabaseNotFound = errors.New("database file not found")
	ErrBackupNotFound   = errors.New("backup not found")
	ErrBackupCorrupted  = errors.New("backup cannot be decrypted")
)

// AuditSink records backup lifecycle actions for accountability.
type AuditSink interface {
	Record(ctx context.Context, user string, action models.AuditAction, details string) error
}

type Options struct {
	BackupDir string
	KeyFile   string
	// DatabasePath of the live data file; empty means the connected database.
	DatabasePath string
	// Audit defaults to the audit_logs table.
	Audit AuditSink
	Now   func() time.Time
}

// Info describes one backup file.
type Info struct {
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
	Size      int64     `json:"size"`
}

// Manager snapshots, encrypts and restores the whole data file.
type Manager struct {
	backupDir string
	dbPath    string
	keyring   *Keyring
	cipher    *Cipher
	audit     AuditSink
	now       func() time.Time
	logger    *logrus.Logger
}

func NewManager(opts Options) (*Manager, error) {
	if opts.BackupDir == "" {
		opts.BackupDir = config.DefaultBackupDir
	}
	if opts.KeyFile == "" {
		opts.KeyFile = config.DefaultKeyFile
	}
	if opts.Audit == nil {
		opts.Audit = models.DatabaseAuditSink{}
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if err := os.MkdirAll(opts.BackupDir, backupDirMode); err != nil {
		return nil, fmt.Errorf("create backup directory: %w", err)
	}
	keyring, err := LoadOrCreateKey(opts.KeyFile)
	if err != nil {
		return nil, err
	}
	return &Manager{
		backupDir: opts.BackupDir,
		dbPath:    opts.DatabasePath,
		keyring:   keyring,
		cipher:    NewCipher(keyring),
		audit:     opts.Audit,
		now:       opts.Now,
		logger:    config.GetLogger(),
	}, nil
}

func NewManagerFromSettings(settings *config.Settings) (*Manager, error) {
	return NewManager(Options{
		BackupDir: settings.BackupDir,
		KeyFile:   settings.KeyFile,
	})
}

func (m *Manager) BackupDir() string {
	return m.backupDir
}

func (m *Manager) Close() {
	m.keyring.Release()
}

func (m *Manager) databasePath() string {
	if m.dbPath != "" {
		return m.dbPath
	}
	return config.DatabasePath()
}

func (m *Manager) timestamp() string {
	return m.now().UTC().Format(timestampLayout)
}

// CreateBackup encrypts the current data file into backup_<timestamp>.enc and
// returns its path. The file is made owner read-only.
func (m *Manager) CreateBackup(ctx context.Context) (path string, err error) {
	start := time.Now()
	defer func() { observe(opCreate, start, err) }()

	path, err = m.writeBackup()
	if err != nil {
		if !errors.Is(err, ErrDatabaseNotFound) {
			config.LogError(m.logger, "Backup", "CreateBackup", "writing backup", m.backupDir, err)
		}
		return "", err
	}
	name := filepath.Base(path)
	config.LogInfo(m.logger, "Backup", "CreateBackup", "backup created", name)

	if err := m.record(ctx, models.AuditActionCreateBackup, "Created backup: "+name); err != nil {
		return path, err
	}
	return path, nil
}

func (m *Manager) writeBackup() (string, error) {
	unlock := config.AcquireWriteLock()
	defer unlock()

	dbPath := m.databasePath()
	if dbPath == "" {
		return "", ErrDatabaseNotFound
	}
	data, err := os.ReadFile(dbPath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return "", ErrDatabaseNotFound
		}
		return "", fmt.Errorf("read database file: %w", err)
	}
	sealed, err := m.cipher.Encrypt(data)
	if err != nil {
		return "", fmt.Errorf("encrypt backup: %w", err)
	}

	f, err := createUnique(m.backupDir, backupPrefix+m.timestamp(), backupExt, privateFileMode)
	if err != nil {
		return "", err
	}
	path := f.Name()
	if err := writeAndSync(f, sealed); err != nil {
		os.Remove(path)
		return "", err
	}
	// owner read-only; ignored where the platform has no such notion
	if err := os.Chmod(path, backupFileMode); err != nil {
		config.LogError(m.logger, "Backup", "CreateBackup", "restricting permissions", path, err)
	}
	backupSizeBytes.Observe(float64(len(sealed)))
	return path, nil
}

// RestoreBackup replaces the live data file with the decrypted content of the
// named backup. The current file is first copied to pre_restore_<timestamp>.db
// in the backup directory. A backup that fails to decrypt leaves everything untouched.
func (m *Manager) RestoreBackup(ctx context.Context, name string) (err error) {
	start := time.Now()
	defer func() { observe(opRestore, start, err) }()

	snapshot, err := m.restore(name)
	if err != nil {
		if !errors.Is(err, ErrBackupNotFound) {
			config.LogError(m.logger, "Backup", "RestoreBackup", "restoring backup", name, err)
		}
		return err
	}
	config.LogInfo(m.logger, "Backup", "RestoreBackup", "backup restored", map[string]string{
		"backup":   name,
		"snapshot": snapshot,
	})

	details := "Restored backup: " + name
	if snapshot != "" {
		details += " (safety copy: " + snapshot + ")"
	}
	return m.record(ctx, models.AuditActionRestoreBackup, details)
}

func (m *Manager) restore(name string) (string, error) {
	src, err := m.backupPath(name)
	if err != nil {
		return "", err
	}

	unlock := config.AcquireWriteLock()
	defer unlock()

	sealed, err := os.ReadFile(src)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return "", ErrBackupNotFound
		}
		return "", fmt.Errorf("read backup: %w", err)
	}
	plaintext, err := m.cipher.Decrypt(sealed)
	if err != nil {
		return "", err
	}

	dbPath := m.databasePath()
	if dbPath == "" {
		return "", ErrDatabaseNotFound
	}
	snapshot, err := m.snapshotLiveFile(dbPath)
	if err != nil {
		return "", err
	}

	// the connection must not hold the old file while it is swapped
	connected := config.GetDB() != nil && samePath(config.DatabasePath(), dbPath)
	if connected {
		if err := config.SuspendDatabase(); err != nil {
			return snapshot, fmt.Errorf("close database: %w", err)
		}
	}
	replaceErr := replaceFile(dbPath, plaintext)
	if connected {
		if err := config.ReopenDatabase(); err != nil {
			return snapshot, errors.Join(replaceErr, fmt.Errorf("reopen database: %w", err))
		}
	}
	if replaceErr != nil {
		return snapshot, replaceErr
	}
	return snapshot, nil
}

// snapshotLiveFile copies the live file unchanged; a missing live file needs no copy
func (m *Manager) snapshotLiveFile(dbPath string) (string, error) {
	current, err := os.ReadFile(dbPath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return "", nil
		}
		return "", fmt.Errorf("read database file: %w", err)
	}
	f, err := createUnique(m.backupDir, snapshotPrefix+m.timestamp(), snapshotExt, privateFileMode)
	if err != nil {
		return "", err
	}
	if err := writeAndSync(f, current); err != nil {
		os.Remove(f.Name())
		return "", fmt.Errorf("write pre-restore snapshot: %w", err)
	}
	return filepath.Base(f.Name()), nil
}

// ListBackups returns backup file names newest first. Listing errors yield an empty list.
func (m *Manager) ListBackups() []string {
	entries, err := os.ReadDir(m.backupDir)
	if err != nil {
		return []string{}
	}
	names := []string{}
	for _, e := range entries {
		if e.Type().IsRegular() && isBackupName(e.Name()) {
			names = append(names, e.Name())
		}
	}
	sort.Sort(sort.Reverse(sort.StringSlice(names)))
	return names
}

func (m *Manager) ListBackupInfo() []Info {
	names := m.ListBackups()
	infos := make([]Info, 0, len(names))
	for _, name := range names {
		fi, err := os.Stat(filepath.Join(m.backupDir, name))
		if err != nil {
			continue
		}
		info := Info{Name: name, Size: fi.Size()}
		if ts, ok := backupTime(name); ok {
			info.CreatedAt = ts
		}
		infos = append(infos, info)
	}
	return infos
}

func (m *Manager) DeleteBackup(ctx context.Context, name string) (err error) {
	start := time.Now()
	defer func() { observe(opDelete, start, err) }()

	path, err := m.backupPath(name)
	if err != nil {
		return err
	}
	if err := m.removeBackup(path); err != nil {
		return err
	}
	config.LogInfo(m.logger, "Backup", "DeleteBackup", "backup deleted", name)
	return m.record(ctx, models.AuditActionDeleteBackup, "Deleted backup: "+name)
}

func (m *Manager) removeBackup(path string) error {
	unlock := config.AcquireWriteLock()
	defer unlock()

	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return ErrBackupNotFound
		}
		return err
	}
	// read-only files cannot be removed on every platform
	_ = os.Chmod(path, privateFileMode)
	if err := os.Remove(path); err != nil {
		return fmt.Errorf("remove backup: %w", err)
	}
	return nil
}

// record writes the audit entry after the file action; a failure is logged and
// returned but the file action stands.
func (m *Manager) record(ctx context.Context, action models.AuditAction, details string) error {
	if err := m.audit.Record(ctx, utils.GetAuditUser(ctx), action, details); err != nil {
		config.LogError(m.logger, "Backup", "record", "writing audit entry", details, err)
		return fmt.Errorf("record audit entry: %w", err)
	}
	return nil
}

// backupPath resolves a bare backup name inside the backup directory
func (m *Manager) backupPath(name string) (string, error) {
	name = strings.TrimSpace(name)
	if name != filepath.Base(name) || !isBackupName(name) {
		return "", ErrBackupNotFound
	}
	return filepath.Join(m.backupDir, name), nil
}

func isBackupName(name string) bool {
	return strings.HasPrefix(name, backupPrefix) && strings.HasSuffix(name, backupExt) &&
		len(name) > len(backupPrefix)+len(backupExt)
}

// backupTime parses the timestamp embedded in a backup name
func backupTime(name string) (time.Time, bool) {
	stamp := strings.TrimSuffix(strings.TrimPrefix(name, backupPrefix), backupExt)
	if len(stamp) < len(timestampLayout) {
		return time.Time{}, false
	}
	ts, err := time.ParseInLocation(timestampLayout, stamp[:len(timestampLayout)], time.UTC)
	if err != nil {
		return time.Time{}, false
	}
	return ts, true
}

func samePath(a, b string) bool {
	if a == "" || b == "" {
		return false
	}
	absA, errA := filepath.Abs(a)
	absB, errB := filepath.Abs(b)
	if errA != nil || errB != nil {
		return filepath.Clean(a) == filepath.Clean(b)
	}
	return absA == absB
}
