//go:build !sqlite

package storage

import "fmt"

func newSQLiteMonitor(_ string) (Monitor, error) {
	return nil, fmt.Errorf("sqlite backend unavailable in this build; rebuild with -tags sqlite")
}
