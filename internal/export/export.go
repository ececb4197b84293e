// Package export writes a generated table set to disk as a CSV bundle:
// one file per table plus a manifest.yaml. Files are written into a
// staging directory and renamed into place so a bundle is either complete
// or absent, never partial.
package export

import (
	"encoding/csv"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/synthline-labs/synthline/internal/table"
)

const manifestFile = "manifest.yaml"

// TableCount is one table's record count in the manifest.
type TableCount struct {
	Name    string `yaml:"name"`
	Records int    `yaml:"records"`
}

// Manifest describes a finished bundle.
type Manifest struct {
	GeneratedAt  time.Time    `yaml:"generated_at"`
	Seed         int64        `yaml:"seed"`
	TotalRecords int          `yaml:"total_records"`
	Tables       []TableCount `yaml:"tables"`
}

// Exporter writes CSV bundles.
type Exporter struct {
	logger *slog.Logger
}

// New creates an exporter.
func New(logger *slog.Logger) *Exporter {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Exporter{logger: logger}
}

// Export writes every table in order to dir and returns the manifest.
// dir must not already exist. On any failure the staging directory is
// removed and dir is left untouched.
func (e *Exporter) Export(dir string, tables map[string]*table.Table, order []string, seed int64) (*Manifest, error) {
	if _, err := os.Stat(dir); err == nil {
		return nil, fmt.Errorf("output directory already exists: %s", dir)
	} else if !os.IsNotExist(err) {
		return nil, fmt.Errorf("checking output directory: %w", err)
	}

	parent := filepath.Dir(dir)
	if err := os.MkdirAll(parent, 0o755); err != nil {
		return nil, fmt.Errorf("creating output parent: %w", err)
	}

	staging, err := os.MkdirTemp(parent, ".synthline-staging-*")
	if err != nil {
		return nil, fmt.Errorf("creating staging directory: %w", err)
	}
	defer os.RemoveAll(staging)

	manifest := &Manifest{
		GeneratedAt: time.Now().UTC(),
		Seed:        seed,
	}

	for _, name := range order {
		tbl, ok := tables[name]
		if !ok {
			return nil, fmt.Errorf("table %s missing from export set", name)
		}
		if err := writeCSV(filepath.Join(staging, name+".csv"), tbl); err != nil {
			return nil, fmt.Errorf("writing %s: %w", name, err)
		}
		manifest.Tables = append(manifest.Tables, TableCount{Name: name, Records: tbl.NumRows()})
		manifest.TotalRecords += tbl.NumRows()
	}

	if err := writeManifest(filepath.Join(staging, manifestFile), manifest); err != nil {
		return nil, err
	}

	if err := os.Rename(staging, dir); err != nil {
		return nil, fmt.Errorf("finalizing bundle: %w", err)
	}

	e.logger.Info("exported bundle",
		"dir", dir, "tables", len(manifest.Tables), "records", manifest.TotalRecords)
	return manifest, nil
}

func writeCSV(path string, tbl *table.Table) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(tbl.Columns); err != nil {
		return err
	}

	record := make([]string, len(tbl.Columns))
	for _, row := range tbl.Rows {
		for i, v := range row {
			record[i] = table.RenderValue(v)
		}
		if err := w.Write(record); err != nil {
			return err
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return err
	}
	return nil
}

func writeManifest(path string, m *Manifest) error {
	data, err := yaml.Marshal(m)
	if err != nil {
		return fmt.Errorf("marshaling manifest: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing manifest: %w", err)
	}
	return nil
}
