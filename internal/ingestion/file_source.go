package ingestion

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	v1 "github.com/aevon-lab/callstats/internal/api/v1"
	"github.com/aevon-lab/callstats/internal/core/storage"
	"gopkg.in/yaml.v3"
)

// FileSource reads a call-history export. The file is YAML (JSON is
// accepted as a subset) holding either a bare list of records or a
// {records: [...]} document.
type FileSource struct {
	path string
}

func NewFileSource(path string) *FileSource {
	return &FileSource{path: path}
}

func (f *FileSource) Records(_ context.Context) ([]v1.CallRecord, error) {
	raw, err := os.ReadFile(f.path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w: %v", f.path, storage.ErrSourceUnavailable, err)
	}

	var node yaml.Node
	if err := yaml.Unmarshal(raw, &node); err != nil {
		return nil, fmt.Errorf("parse %s: %w: %v", f.path, storage.ErrSourceUnavailable, err)
	}
	if len(node.Content) == 0 {
		return nil, nil
	}

	root := node.Content[0]
	var records []v1.CallRecord
	switch root.Kind {
	case yaml.SequenceNode:
		err = root.Decode(&records)
	case yaml.MappingNode:
		var doc IngestRequest
		err = root.Decode(&doc)
		records = doc.Records
	default:
		err = fmt.Errorf("unexpected document kind")
	}
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w: %v", f.path, storage.ErrSourceUnavailable, err)
	}
	return records, nil
}

// ImportResult reports what ImportFile stored.
type ImportResult struct {
	Read       int `json:"read"`
	Stored     int `json:"stored"`
	Duplicates int `json:"duplicates"`
	Invalid    int `json:"invalid"`
}

// ImportFile copies an export into the call log. Invalid records are
// skipped and counted rather than failing the import.
func (s *Service) ImportFile(ctx context.Context, path string) (ImportResult, error) {
	records, err := NewFileSource(path).Records(ctx)
	if err != nil {
		return ImportResult{}, err
	}

	res := ImportResult{Read: len(records)}
	valid := make([]v1.CallRecord, 0, len(records))
	for i := range records {
		if err := records[i].Validate(); err != nil {
			slog.Warn("[Ingestion] Skipping invalid imported record", "index", i, "record_id", records[i].ID, "error", err)
			res.Invalid++
			continue
		}
		valid = append(valid, records[i])
	}

	for start := 0; start < len(valid); start += s.maxBatch {
		end := min(start+s.maxBatch, len(valid))
		stored, err := s.log.SaveRecords(ctx, valid[start:end])
		if err != nil {
			return res, fmt.Errorf("import %s: %w", path, err)
		}
		res.Stored += stored
	}
	res.Duplicates = len(valid) - res.Stored

	slog.Info("[Ingestion] Imported call history",
		"path", path,
		"read", res.Read,
		"stored", res.Stored,
		"duplicates", res.Duplicates,
		"invalid", res.Invalid)
	return res, nil
}
