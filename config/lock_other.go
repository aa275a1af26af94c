//go:build !unix

package config

import "errors"

// ErrDatabaseLocked means another process already holds the data file.
var ErrDatabaseLocked = errors.New("database is locked by another process")

// advisory locking is only available on unix; elsewhere the write mutex is the only guard
type fileLock struct{}

func acquireFileLock(string) (*fileLock, error) {
	return &fileLock{}, nil
}

func (l *fileLock) release() {}
