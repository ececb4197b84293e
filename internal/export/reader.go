package export

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/synthline-labs/synthline/internal/schema"
	"github.com/synthline-labs/synthline/internal/table"
)

// ReadManifest loads a bundle's manifest.yaml.
func ReadManifest(dir string) (*Manifest, error) {
	data, err := os.ReadFile(filepath.Join(dir, manifestFile))
	if err != nil {
		return nil, fmt.Errorf("reading manifest: %w", err)
	}
	var m Manifest
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("parsing manifest: %w", err)
	}
	return &m, nil
}

// ReadTable loads one table's CSV from a bundle, coercing cell values
// back to their schema kinds. Empty cells become nil.
func ReadTable(dir string, def *schema.Table) (*table.Table, error) {
	f, err := os.Open(filepath.Join(dir, def.Name+".csv"))
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", def.Name, err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	header, err := r.Read()
	if err != nil {
		return nil, fmt.Errorf("reading %s header: %w", def.Name, err)
	}

	tbl := table.New(def.Name, header)
	for {
		record, err := r.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("reading %s: %w", def.Name, err)
		}
		row := make([]any, len(record))
		for i, cell := range record {
			col, ok := def.Column(header[i])
			if !ok {
				row[i] = cell
				continue
			}
			v, err := parseCell(col.Kind, cell)
			if err != nil {
				return nil, fmt.Errorf("parsing %s.%s: %w", def.Name, header[i], err)
			}
			row[i] = v
		}
		if err := tbl.AppendRow(row); err != nil {
			return nil, err
		}
	}
	return tbl, nil
}

func parseCell(kind schema.Kind, cell string) (any, error) {
	if cell == "" {
		return nil, nil
	}
	switch kind {
	case schema.KindNumeric:
		return strconv.ParseFloat(cell, 64)
	case schema.KindInteger:
		return strconv.Atoi(cell)
	case schema.KindDate:
		return time.Parse("2006-01-02", cell)
	default:
		return cell, nil
	}
}
