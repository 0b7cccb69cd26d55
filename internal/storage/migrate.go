// ABOUTME: Data migration between cortitrack storage backends.
// ABOUTME: Copies users, readings, medical history and settings from source to destination.

package storage

import (
	"fmt"
	"os"
)

// MigrateData copies all data from src to dst. Readings are upserted, so a
// reading already present in dst for the same owner and day is overwritten.
func MigrateData(src, dst Repository) (*TransferSummary, error) {
	data, err := GetAllData(src)
	if err != nil {
		return nil, fmt.Errorf("read source: %w", err)
	}
	summary, err := ImportData(dst, data)
	if err != nil {
		return nil, fmt.Errorf("write destination: %w", err)
	}
	return summary, nil
}

// IsDirNonEmpty checks whether a directory exists and contains any files or subdirectories.
// Returns false if the directory does not exist or is empty.
func IsDirNonEmpty(path string) (bool, error) {
	entries, err := os.ReadDir(path)
	if err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, fmt.Errorf("read directory %q: %w", path, err)
	}
	return len(entries) > 0, nil
}
