//go:build !sqlite

package storage

import "fmt"

func newSQLiteStore(path string) (Store, error) {
	return nil, fmt.Errorf("open %q: %w", path, ErrSQLiteUnavailable)
}
