package migrations

import (
	"fmt"
	"io/fs"
	"sort"
	"strings"
)

// VersionsTable records which migrations a database has applied.
const VersionsTable = "schema_migrations"

// Migration is one embedded SQL file named <version>_<name>.sql.
type Migration struct {
	Version string
	Name    string
	SQL     string
}

// Load reads the .sql files under dir ordered by version. Empty files are
// skipped; a repeated version is an error.
func Load(fsys fs.FS, dir string) ([]Migration, error) {
	entries, err := fs.ReadDir(fsys, dir)
	if err != nil {
		return nil, fmt.Errorf("read embedded %s migrations: %w", dir, err)
	}

	var out []Migration
	seen := make(map[string]string)
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".sql") {
			continue
		}
		file := entry.Name()
		version, name, ok := strings.Cut(strings.TrimSuffix(file, ".sql"), "_")
		if !ok || version == "" || name == "" {
			return nil, fmt.Errorf("migration %s: expected <version>_<name>.sql", file)
		}
		if prev, dup := seen[version]; dup {
			return nil, fmt.Errorf("migration version %s used by %s and %s", version, prev, file)
		}
		seen[version] = file

		data, err := fs.ReadFile(fsys, dir+"/"+file)
		if err != nil {
			return nil, fmt.Errorf("read migration %s: %w", file, err)
		}
		if strings.TrimSpace(string(data)) == "" {
			continue
		}
		out = append(out, Migration{Version: version, Name: name, SQL: string(data)})
	}

	sort.Slice(out, func(i, j int) bool { return out[i].Version < out[j].Version })
	return out, nil
}

// Pending returns the migrations whose version is not in applied.
func Pending(all []Migration, applied map[string]bool) []Migration {
	var out []Migration
	for _, m := range all {
		if !applied[m.Version] {
			out = append(out, m)
		}
	}
	return out
}
