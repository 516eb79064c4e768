package storage

import "fmt"

func NewMonitor(kind, sqlitePath string) (Monitor, error) {
	switch kind {
	case "", "memory":
		return NewMemoryMonitor(), nil
	case "sqlite":
		return newSQLiteMonitor(sqlitePath)
	default:
		return nil, fmt.Errorf("unsupported monitor backend: %s", kind)
	}
}

func CloseIfSupported(m Monitor) error {
	closer, ok := m.(interface{ Close() error })
	if !ok {
		return nil
	}
	return closer.Close()
}
