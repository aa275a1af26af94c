package backup

import (
	"os"
	"path/filepath"
	"time"
)

// VerifyBackup reports whether the backup decrypts under the current key.
// Nothing is restored. A bare name is looked up in the backup directory.
func (m *Manager) VerifyBackup(path string) (ok bool) {
	start := time.Now()
	defer func() {
		var err error
		if !ok {
			err = ErrBackupCorrupted
		}
		observe(opVerify, start, err)
	}()

	if path == filepath.Base(path) {
		path = filepath.Join(m.backupDir, path)
	}
	sealed, err := os.ReadFile(path)
	if err != nil {
		return false
	}
	_, err = m.cipher.Decrypt(sealed)
	return err == nil
}
