package backup

import (
	"context"
	"os"
	"path/filepath"
	"runtime"
	"sync"
	"testing"
	"time"

	"github.com/mmdatafocus/inventory_backend/config"
	"github.com/mmdatafocus/inventory_backend/models"
	"github.com/mmdatafocus/inventory_backend/utils"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type auditCall struct {
	user    string
	action  models.AuditAction
	details string
}

type recordingSink struct {
	mu    sync.Mutex
	calls []auditCall
	err   error
}

func (s *recordingSink) Record(_ context.Context, user string, action models.AuditAction, details string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return s.err
	}
	s.calls = append(s.calls, auditCall{user: user, action: action, details: details})
	return nil
}

func (s *recordingSink) actions() []models.AuditAction {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]models.AuditAction, 0, len(s.calls))
	for _, c := range s.calls {
		out = append(out, c.action)
	}
	return out
}

type fixture struct {
	dir       string
	dbPath    string
	backupDir string
	keyFile   string
	sink      *recordingSink
}

func newFixture(t *testing.T, content []byte) *fixture {
	t.Helper()
	config.SetLogLevel("error")
	dir := t.TempDir()
	f := &fixture{
		dir:       dir,
		dbPath:    filepath.Join(dir, "data", "database.sqlite"),
		backupDir: filepath.Join(dir, "backups"),
		keyFile:   filepath.Join(dir, "data", ".encryption_key"),
		sink:      &recordingSink{},
	}
	if content != nil {
		require.NoError(t, os.MkdirAll(filepath.Dir(f.dbPath), 0o755))
		require.NoError(t, os.WriteFile(f.dbPath, content, 0o644))
	}
	return f
}

func (f *fixture) manager(t *testing.T, now func() time.Time) *Manager {
	t.Helper()
	m, err := NewManager(Options{
		BackupDir:    f.backupDir,
		KeyFile:      f.keyFile,
		DatabasePath: f.dbPath,
		Audit:        f.sink,
		Now:          now,
	})
	require.NoError(t, err)
	t.Cleanup(m.Close)
	return m
}

func fixedClock(ts time.Time) func() time.Time {
	return func() time.Time { return ts }
}

func operatorContext() context.Context {
	return utils.SetUsernameInContext(context.Background(), "alice")
}

func TestCreateBackup(t *testing.T) {
	f := newFixture(t, []byte("live database bytes"))
	m := f.manager(t, fixedClock(time.Date(2024, 3, 1, 9, 30, 15, 0, time.UTC)))

	path, err := m.CreateBackup(operatorContext())
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(f.backupDir, "backup_20240301093015.enc"), path)

	if runtime.GOOS != "windows" {
		fi, err := os.Stat(path)
		require.NoError(t, err)
		assert.Equal(t, os.FileMode(0o400), fi.Mode().Perm())
		di, err := os.Stat(f.backupDir)
		require.NoError(t, err)
		assert.Equal(t, os.FileMode(0o700), di.Mode().Perm())
	}

	sealed, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.NotContains(t, string(sealed), "live database bytes")

	assert.True(t, m.VerifyBackup(path))
	assert.True(t, m.VerifyBackup("backup_20240301093015.enc"))

	require.Len(t, f.sink.calls, 1)
	assert.Equal(t, "alice", f.sink.calls[0].user)
	assert.Equal(t, models.AuditActionCreateBackup, f.sink.calls[0].action)
	assert.Equal(t, "Created backup: backup_20240301093015.enc", f.sink.calls[0].details)
}

func TestCreateBackupWithoutDatabase(t *testing.T) {
	f := newFixture(t, nil)
	m := f.manager(t, nil)

	path, err := m.CreateBackup(context.Background())
	assert.ErrorIs(t, err, ErrDatabaseNotFound)
	assert.Empty(t, path)
	assert.Empty(t, f.sink.calls)
	assert.Empty(t, m.ListBackups())
}

func TestCreateBackupAuditFailureKeepsFile(t *testing.T) {
	f := newFixture(t, []byte("data"))
	f.sink.err = assert.AnError
	m := f.manager(t, nil)

	path, err := m.CreateBackup(context.Background())
	assert.ErrorIs(t, err, assert.AnError)
	require.NotEmpty(t, path)
	assert.FileExists(t, path)
	assert.Len(t, m.ListBackups(), 1)
}

func TestBackupNamesWithinSameSecond(t *testing.T) {
	f := newFixture(t, []byte("data"))
	first := time.Date(2024, 3, 1, 9, 30, 15, 0, time.UTC)
	clock := first
	m := f.manager(t, func() time.Time { return clock })

	for i := 0; i < 2; i++ {
		_, err := m.CreateBackup(context.Background())
		require.NoError(t, err)
	}
	clock = first.Add(time.Minute)
	_, err := m.CreateBackup(context.Background())
	require.NoError(t, err)

	// neither is a backup
	require.NoError(t, os.WriteFile(filepath.Join(f.backupDir, "notes.txt"), []byte("x"), 0o600))
	require.NoError(t, os.WriteFile(filepath.Join(f.backupDir, "pre_restore_20240101000000.db"), []byte("x"), 0o600))

	assert.Equal(t, []string{
		"backup_20240301093115.enc",
		"backup_20240301093015_001.enc",
		"backup_20240301093015.enc",
	}, m.ListBackups())

	infos := m.ListBackupInfo()
	require.Len(t, infos, 3)
	assert.Equal(t, first.Add(time.Minute), infos[0].CreatedAt)
	assert.Equal(t, first, infos[1].CreatedAt)
	assert.Equal(t, int64(len("data")+24+16), infos[2].Size)
}

func TestManyBackupsWithinSameSecondStayOrdered(t *testing.T) {
	f := newFixture(t, []byte("data"))
	m := f.manager(t, fixedClock(time.Date(2024, 3, 1, 9, 30, 15, 0, time.UTC)))

	var created []string
	for i := 0; i < 12; i++ {
		path, err := m.CreateBackup(context.Background())
		require.NoError(t, err)
		created = append(created, filepath.Base(path))
	}
	assert.Equal(t, "backup_20240301093015_011.enc", created[11])

	names := m.ListBackups()
	require.Len(t, names, 12)
	for i, name := range names {
		assert.Equal(t, created[11-i], name)
	}
}

func TestListBackupsMissingDirectory(t *testing.T) {
	f := newFixture(t, nil)
	m := f.manager(t, nil)
	require.NoError(t, os.RemoveAll(f.backupDir))

	names := m.ListBackups()
	assert.NotNil(t, names)
	assert.Empty(t, names)
}

func TestRestoreBackup(t *testing.T) {
	original := []byte("original database content")
	f := newFixture(t, original)
	now := time.Date(2024, 3, 1, 9, 30, 15, 0, time.UTC)
	m := f.manager(t, fixedClock(now))

	path, err := m.CreateBackup(operatorContext())
	require.NoError(t, err)

	changed := []byte("changed after the backup")
	require.NoError(t, os.WriteFile(f.dbPath, changed, 0o644))

	require.NoError(t, m.RestoreBackup(operatorContext(), filepath.Base(path)))

	restored, err := os.ReadFile(f.dbPath)
	require.NoError(t, err)
	assert.Equal(t, original, restored)

	snapshot, err := os.ReadFile(filepath.Join(f.backupDir, "pre_restore_20240301093015.db"))
	require.NoError(t, err)
	assert.Equal(t, changed, snapshot)

	assert.Equal(t, []models.AuditAction{
		models.AuditActionCreateBackup,
		models.AuditActionRestoreBackup,
	}, f.sink.actions())
	assert.Contains(t, f.sink.calls[1].details, "pre_restore_20240301093015.db")

	// snapshots never show up as backups
	assert.Equal(t, []string{"backup_20240301093015.enc"}, m.ListBackups())
}

func TestRestoreWithDifferentKey(t *testing.T) {
	original := []byte("original")
	f := newFixture(t, original)
	m := f.manager(t, nil)

	path, err := m.CreateBackup(context.Background())
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(f.dbPath, []byte("current"), 0o644))

	f.keyFile = filepath.Join(f.dir, "other.key")
	other := f.manager(t, nil)

	assert.False(t, other.VerifyBackup(path))
	err = other.RestoreBackup(context.Background(), filepath.Base(path))
	assert.ErrorIs(t, err, ErrBackupCorrupted)

	current, err := os.ReadFile(f.dbPath)
	require.NoError(t, err)
	assert.Equal(t, []byte("current"), current)

	matches, err := filepath.Glob(filepath.Join(f.backupDir, "pre_restore_*"))
	require.NoError(t, err)
	assert.Empty(t, matches)
	assert.Equal(t, []models.AuditAction{models.AuditActionCreateBackup}, f.sink.actions())
}

func TestVerifyCorruptedBackup(t *testing.T) {
	f := newFixture(t, []byte("some bytes to protect"))
	m := f.manager(t, nil)

	path, err := m.CreateBackup(context.Background())
	require.NoError(t, err)
	require.True(t, m.VerifyBackup(path))

	require.NoError(t, os.Chmod(path, 0o600))
	sealed, err := os.ReadFile(path)
	require.NoError(t, err)
	sealed[len(sealed)/2] ^= 0x01
	require.NoError(t, os.WriteFile(path, sealed, 0o600))

	assert.False(t, m.VerifyBackup(path))
	assert.False(t, m.VerifyBackup(filepath.Join(f.backupDir, "backup_missing.enc")))

	err = m.RestoreBackup(context.Background(), filepath.Base(path))
	assert.ErrorIs(t, err, ErrBackupCorrupted)
}

func TestUnknownBackupNames(t *testing.T) {
	f := newFixture(t, []byte("data"))
	m := f.manager(t, nil)
	ctx := context.Background()

	for _, name := range []string{"backup_20240101000000.enc", "../data/database.sqlite", "notes.txt", "backup_.enc"} {
		assert.ErrorIs(t, m.RestoreBackup(ctx, name), ErrBackupNotFound, name)
		assert.ErrorIs(t, m.DeleteBackup(ctx, name), ErrBackupNotFound, name)
	}
	assert.Empty(t, f.sink.calls)
}

func TestDeleteBackup(t *testing.T) {
	f := newFixture(t, []byte("data"))
	m := f.manager(t, nil)

	path, err := m.CreateBackup(operatorContext())
	require.NoError(t, err)
	name := filepath.Base(path)

	require.NoError(t, m.DeleteBackup(operatorContext(), name))
	assert.NoFileExists(t, path)
	assert.Empty(t, m.ListBackups())

	require.Len(t, f.sink.calls, 2)
	assert.Equal(t, models.AuditActionDeleteBackup, f.sink.calls[1].action)
	assert.Equal(t, "Deleted backup: "+name, f.sink.calls[1].details)

	assert.ErrorIs(t, m.DeleteBackup(operatorContext(), name), ErrBackupNotFound)
}

func TestOperationMetrics(t *testing.T) {
	f := newFixture(t, []byte("data"))
	m := f.manager(t, nil)

	created := testutil.ToFloat64(operationsTotal.WithLabelValues(opCreate, "success"))
	failed := testutil.ToFloat64(operationsTotal.WithLabelValues(opRestore, "error"))

	_, err := m.CreateBackup(context.Background())
	require.NoError(t, err)
	assert.Error(t, m.RestoreBackup(context.Background(), "backup_missing.enc"))

	assert.Equal(t, created+1, testutil.ToFloat64(operationsTotal.WithLabelValues(opCreate, "success")))
	assert.Equal(t, failed+1, testutil.ToFloat64(operationsTotal.WithLabelValues(opRestore, "error")))
}

func TestRestoreConnectedDatabase(t *testing.T) {
	config.SetLogLevel("error")
	dir := t.TempDir()
	require.NoError(t, models.Open(filepath.Join(dir, "data", "inventory.sqlite")))
	t.Cleanup(func() { _ = config.CloseDatabase() })

	ctx := operatorContext()
	_, err := models.CreateProduct(ctx, &models.NewProduct{
		Sku: "KEEP001", Name: "Kept", Price: decimal.RequireFromString("10.00"), Category: "General", Stock: 4,
	})
	require.NoError(t, err)

	m, err := NewManager(Options{
		BackupDir: filepath.Join(dir, "backups"),
		KeyFile:   filepath.Join(dir, "data", ".encryption_key"),
	})
	require.NoError(t, err)
	t.Cleanup(m.Close)

	path, err := m.CreateBackup(ctx)
	require.NoError(t, err)

	_, err = models.CreateProduct(ctx, &models.NewProduct{
		Sku: "DROP001", Name: "Dropped", Price: decimal.RequireFromString("5.00"), Category: "General", Stock: 1,
	})
	require.NoError(t, err)

	require.NoError(t, m.RestoreBackup(ctx, filepath.Base(path)))

	products, err := models.GetProducts(ctx)
	require.NoError(t, err)
	require.Len(t, products, 1)
	assert.Equal(t, "KEEP001", products[0].Sku)

	// the restore itself is audited in the restored file
	logs, err := models.GetAuditLogs(ctx, 10)
	require.NoError(t, err)
	require.NotEmpty(t, logs)
	assert.Equal(t, models.AuditActionRestoreBackup, logs[0].Action)
	assert.Equal(t, "alice", logs[0].User)

	snapshots, err := filepath.Glob(filepath.Join(dir, "backups", "pre_restore_*.db"))
	require.NoError(t, err)
	assert.Len(t, snapshots, 1)

	// the reopened connection accepts writes
	_, err = models.CreateProduct(ctx, &models.NewProduct{
		Sku: "NEW001", Name: "After restore", Price: decimal.RequireFromString("1.00"), Category: "General", Stock: 2,
	})
	assert.NoError(t, err)
}
