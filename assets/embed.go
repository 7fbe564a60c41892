package assets

import (
	"embed"
	"io/fs"
	"sort"
	"strings"
)

//go:embed wordbank.yaml sql/*.sql
var FS embed.FS

// WordBank returns the embedded default word bank (YAML).
func WordBank() ([]byte, error) {
	return FS.ReadFile("wordbank.yaml")
}

// Migration is one embedded SQL file.
type Migration struct {
	Name string
	SQL  string
}

// Migrations returns sql/*.sql in lexical order.
func Migrations() ([]Migration, error) {
	entries, err := fs.ReadDir(FS, "sql")
	if err != nil {
		return nil, err
	}
	var out []Migration
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(strings.ToLower(e.Name()), ".sql") {
			continue
		}
		b, err := FS.ReadFile("sql/" + e.Name())
		if err != nil {
			return nil, err
		}
		out = append(out, Migration{Name: e.Name(), SQL: string(b)})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}
