// Package backup exports and imports the three collections as a
// single JSONL file. One line per record, each wrapped in an envelope
// naming its collection, so a backup restores without guessing which
// collection a record belongs to.
package backup

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"tilemaster/internal/schema"
	"tilemaster/internal/store"
)

// Line is one JSONL envelope. Record keeps the original payload bytes
// so export and import round-trip unknown fields untouched.
type Line struct {
	Collection string          `json:"collection"`
	ID         string          `json:"id"`
	Record     json.RawMessage `json:"record"`
}

// Snapshot holds the three collections as one unit.
type Snapshot struct {
	Stock     []schema.StockItem
	Customers []schema.CustomerRecord
	Staff     []schema.StaffRecord
}

// ImportResult contains statistics about an import.
type ImportResult struct {
	LinesRead int
	Skipped   []string // per-line problems, import continues past them
}

// Export writes the snapshot to path as JSONL, atomically via a temp
// file. An existing file at path is replaced.
func Export(snap Snapshot, path string) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("create backup directory: %w", err)
		}
	}

	tmpPath := path + ".tmp"
	f, err := os.OpenFile(tmpPath, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0600)
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}

	enc := json.NewEncoder(f)
	write := func(collection, id string, rec any) error {
		payload, err := json.Marshal(rec)
		if err != nil {
			return fmt.Errorf("marshal %s record %s: %w", collection, id, err)
		}
		return enc.Encode(Line{Collection: collection, ID: id, Record: payload})
	}

	var werr error
	for _, item := range snap.Stock {
		if werr = write(store.CollectionTiles, item.ID, item); werr != nil {
			break
		}
	}
	if werr == nil {
		for _, rec := range snap.Customers {
			if werr = write(store.CollectionCustomers, rec.ID, rec); werr != nil {
				break
			}
		}
	}
	if werr == nil {
		for _, rec := range snap.Staff {
			if werr = write(store.CollectionEmployees, rec.ID, rec); werr != nil {
				break
			}
		}
	}
	if werr != nil {
		f.Close()
		_ = os.Remove(tmpPath)
		return werr
	}

	if err := f.Close(); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("close temp file: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("rename temp file: %w", err)
	}
	return nil
}

// Import reads a JSONL backup. Malformed lines and unknown collections
// are recorded in the result and skipped; only unreadable files fail.
func Import(path string) (Snapshot, *ImportResult, error) {
	// #nosec G304 - controlled path from CLI
	f, err := os.Open(path)
	if err != nil {
		return Snapshot{}, nil, fmt.Errorf("open backup file: %w", err)
	}
	defer f.Close()

	var (
		snap   Snapshot
		result = &ImportResult{}
		dec    = json.NewDecoder(f)
	)
	for {
		var line Line
		if err := dec.Decode(&line); err != nil {
			if err == io.EOF {
				break
			}
			return Snapshot{}, nil, fmt.Errorf("invalid JSON at line %d: %w", result.LinesRead+1, err)
		}
		result.LinesRead++

		switch line.Collection {
		case store.CollectionTiles:
			var item schema.StockItem
			if err := json.Unmarshal(line.Record, &item); err != nil {
				result.Skipped = append(result.Skipped,
					fmt.Sprintf("line %d (%s): %v", result.LinesRead, line.ID, err))
				continue
			}
			if line.ID != "" {
				item.ID = line.ID
			}
			snap.Stock = append(snap.Stock, item)
		case store.CollectionCustomers:
			var rec schema.CustomerRecord
			if err := json.Unmarshal(line.Record, &rec); err != nil {
				result.Skipped = append(result.Skipped,
					fmt.Sprintf("line %d (%s): %v", result.LinesRead, line.ID, err))
				continue
			}
			if line.ID != "" {
				rec.ID = line.ID
			}
			snap.Customers = append(snap.Customers, rec)
		case store.CollectionEmployees:
			var rec schema.StaffRecord
			if err := json.Unmarshal(line.Record, &rec); err != nil {
				result.Skipped = append(result.Skipped,
					fmt.Sprintf("line %d (%s): %v", result.LinesRead, line.ID, err))
				continue
			}
			if line.ID != "" {
				rec.ID = line.ID
			}
			rec.SetDefaults()
			snap.Staff = append(snap.Staff, rec)
		default:
			result.Skipped = append(result.Skipped,
				fmt.Sprintf("line %d: unknown collection %q", result.LinesRead, line.Collection))
		}
	}
	return snap, result, nil
}

// TimestampedName returns a backup filename carrying the current time,
// e.g. tilemaster-20260830-151204.jsonl.
func TimestampedName() string {
	return "tilemaster-" + time.Now().Format("20060102-150405") + ".jsonl"
}
