//go:build sqlite

package storage

func newSQLiteMonitor(path string) (Monitor, error) {
	return NewSQLiteMonitor(path), nil
}
