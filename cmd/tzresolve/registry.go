package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/tzres/tzengine/tzcore"
	"github.com/tzres/tzengine/tzdata"
	"github.com/tzres/tzengine/zonetab"
)

// loadRegistry parses every tzdata source file in dataDir and compiles them
// into one tzcore.Registry, for the resolve/list subcommands that only
// need the opaque ZoneHandle surface.
func loadRegistry(dataDir string) (*tzcore.Registry, error) {
	tables, err := loadTables(dataDir)
	if err != nil {
		return nil, err
	}
	return tzcore.NewRegistry(tables), nil
}

// loadTables does the compilation loadRegistry builds on, returning the
// underlying Tables rather than the opaque ZoneHandle surface.
//
// A release's data files (africa, europe, northamerica, ...) are
// independent Zone/Rule/Link line sets that the teacher's tzc.Compile
// already treats as a single merged tzdata.File, so this concatenates
// their parsed lines the same way before compiling.
func loadTables(dataDir string) (zonetab.Tables, error) {
	entries, err := os.ReadDir(dataDir)
	if err != nil {
		return zonetab.Tables{}, fmt.Errorf("reading data dir %s: %w", dataDir, err)
	}

	var merged tzdata.File
	found := 0
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		path := filepath.Join(dataDir, e.Name())
		f, err := os.Open(path)
		if err != nil {
			return zonetab.Tables{}, fmt.Errorf("opening %s: %w", path, err)
		}
		parsed, err := tzdata.Parse(f)
		closeErr := f.Close()
		if err != nil {
			// Every file in dataDir must be Zone/Rule/Link text: a
			// leapseconds file or any other non-tzdata file fails to
			// parse, and that failure is fatal here.
			return zonetab.Tables{}, fmt.Errorf("parsing %s: %w", path, err)
		}
		if closeErr != nil {
			return zonetab.Tables{}, fmt.Errorf("closing %s: %w", path, closeErr)
		}
		merged.ZoneLines = append(merged.ZoneLines, parsed.ZoneLines...)
		merged.RuleLines = append(merged.RuleLines, parsed.RuleLines...)
		merged.LinkLines = append(merged.LinkLines, parsed.LinkLines...)
		found++
	}
	if found == 0 {
		return zonetab.Tables{}, fmt.Errorf("no tzdata source files found in %s (populate it with IANA tzdata release files, e.g. africa/europe/northamerica/etcetera)", dataDir)
	}

	tables, err := zonetab.Compile(merged)
	if err != nil {
		return zonetab.Tables{}, fmt.Errorf("compiling tzdata from %s: %w", dataDir, err)
	}
	return tables, nil
}
