package store

import (
	"fmt"
	"time"

	"github.com/theirongolddev/cbudget/internal/model"
)

// FileInfo holds the tracked mtime and size for an imported file.
type FileInfo struct {
	MtimeNs      int64
	SizeBytes    int64
	ExpenseCount int
	ImportedAt   time.Time
}

// GetTrackedFiles returns a map of file_path -> FileInfo for all imported files.
func (s *Store) GetTrackedFiles() (map[string]FileInfo, error) {
	rows, err := s.db.Query("SELECT file_path, mtime_ns, size_bytes, expense_count, imported_at FROM file_tracker")
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	result := make(map[string]FileInfo)
	for rows.Next() {
		var path, importedAt string
		var fi FileInfo
		if err := rows.Scan(&path, &fi.MtimeNs, &fi.SizeBytes, &fi.ExpenseCount, &importedAt); err != nil {
			return nil, err
		}
		fi.ImportedAt = parseTime(importedAt)
		result[path] = fi
	}
	return result, rows.Err()
}

// SaveImport replaces every expense previously imported from filePath with
// the given set and records the file's mtime and size, atomically.
func (s *Store) SaveImport(filePath string, expenses []model.Expense, mtimeNs, sizeBytes int64) error {
	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.Exec("DELETE FROM expenses WHERE source_file = ?", filePath); err != nil {
		return fmt.Errorf("clearing previous import of %s: %w", filePath, err)
	}
	if err := insertExpenses(tx, expenses, filePath); err != nil {
		return err
	}

	_, err = tx.Exec(`INSERT OR REPLACE INTO file_tracker
		(file_path, mtime_ns, size_bytes, expense_count, imported_at)
		VALUES (?, ?, ?, ?, ?)`,
		filePath, mtimeNs, sizeBytes, len(expenses), formatTime(time.Now()))
	if err != nil {
		return fmt.Errorf("tracking %s: %w", filePath, err)
	}
	return tx.Commit()
}

// ForgetImport removes the expenses imported from filePath and its tracking entry.
func (s *Store) ForgetImport(filePath string) error {
	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.Exec("DELETE FROM expenses WHERE source_file = ?", filePath); err != nil {
		return err
	}
	if _, err := tx.Exec("DELETE FROM file_tracker WHERE file_path = ?", filePath); err != nil {
		return err
	}
	return tx.Commit()
}
