package migration

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"
)

const (
	upSuffix   = ".up.sql"
	downSuffix = ".down.sql"
)

// MigrationFile describes a generated up/down migration pair.
type MigrationFile struct {
	Version     string
	Name        string
	Description string
	Timestamp   string
	UpPath      string
	DownPath    string
}

// CreateMigration scaffolds a timestamped up/down migration pair under
// migrationsDir. The version prefix sorts lexically so golang-migrate
// applies files in creation order.
func CreateMigration(migrationsDir, name, description string) (*MigrationFile, error) {
	if err := os.MkdirAll(migrationsDir, 0755); err != nil {
		return nil, fmt.Errorf("create migrations directory: %w", err)
	}

	now := time.Now()
	version := now.Format("20060102150405")
	base := version + "_" + sanitizeName(name)

	mf := &MigrationFile{
		Version:     version,
		Name:        name,
		Description: description,
		Timestamp:   now.Format(time.RFC3339),
		UpPath:      filepath.Join(migrationsDir, base+upSuffix),
		DownPath:    filepath.Join(migrationsDir, base+downSuffix),
	}

	if err := writeStub(mf.UpPath, mf.header(false)+"-- Write your UP migration SQL here\n"); err != nil {
		return nil, fmt.Errorf("create up migration: %w", err)
	}
	if err := writeStub(mf.DownPath, mf.header(true)+"-- Write your DOWN migration SQL here\n"); err != nil {
		// Do not leave a half-created pair behind.
		_ = os.Remove(mf.UpPath)
		return nil, fmt.Errorf("create down migration: %w", err)
	}

	return mf, nil
}

func (mf *MigrationFile) header(rollback bool) string {
	var b strings.Builder
	if rollback {
		fmt.Fprintf(&b, "-- Migration: %s (Rollback)\n", mf.Name)
		fmt.Fprintf(&b, "-- Created: %s\n", mf.Timestamp)
		fmt.Fprintf(&b, "-- Description: Rollback for %s\n\n", mf.Description)
	} else {
		fmt.Fprintf(&b, "-- Migration: %s\n", mf.Name)
		fmt.Fprintf(&b, "-- Created: %s\n", mf.Timestamp)
		fmt.Fprintf(&b, "-- Description: %s\n\n", mf.Description)
	}
	return b.String()
}

func writeStub(path, content string) error {
	return os.WriteFile(path, []byte(content), 0644)
}

// sanitizeName lowercases a migration name and collapses everything that is
// not [a-z0-9] into single underscores.
func sanitizeName(name string) string {
	var b strings.Builder
	lastUnderscore := true
	for _, r := range strings.ToLower(name) {
		switch {
		case (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9'):
			b.WriteRune(r)
			lastUnderscore = false
		default:
			if !lastUnderscore {
				b.WriteByte('_')
				lastUnderscore = true
			}
		}
	}
	return strings.TrimSuffix(b.String(), "_")
}

// ListMigrations returns the sorted base names of all migration pairs found
// in migrationsDir. A missing directory yields an empty list.
func ListMigrations(migrationsDir string) ([]string, error) {
	entries, err := os.ReadDir(migrationsDir)
	if err != nil {
		if os.IsNotExist(err) {
			return []string{}, nil
		}
		return nil, fmt.Errorf("read migrations directory: %w", err)
	}

	migrations := make([]string, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), upSuffix) {
			continue
		}
		migrations = append(migrations, strings.TrimSuffix(entry.Name(), upSuffix))
	}
	sort.Strings(migrations)

	return migrations, nil
}
