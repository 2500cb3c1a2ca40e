package export

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"go.uber.org/zap"

	"github.com/mcintyre94/swapsies/internal/basis"
)

// ExportFormat represents the export file format
type ExportFormat string

const (
	FormatCSV  ExportFormat = "csv"
	FormatJSON ExportFormat = "json"
)

// ExportOptions configures the export behavior
type ExportOptions struct {
	Format       ExportFormat
	MintFilter   string    // Filter by token mint
	UpdatedAfter time.Time // Only records touched after this time
	OutputDir    string
}

// BookExporter handles cost-basis book export and import
type BookExporter struct {
	logger *zap.Logger
}

// NewBookExporter creates a new book exporter
func NewBookExporter(logger *zap.Logger) *BookExporter {
	return &BookExporter{
		logger: logger,
	}
}

// ExportRecords exports cost-basis records based on the provided options
func (be *BookExporter) ExportRecords(records []*basis.Record, options ExportOptions) (string, error) {
	filtered := be.filterRecords(records, options)

	if len(filtered) == 0 {
		return "", fmt.Errorf("no records match the export criteria")
	}

	sort.Slice(filtered, func(i, j int) bool {
		return filtered[i].Mint < filtered[j].Mint
	})

	filename := be.generateFilename(options)
	outputPath := filepath.Join(options.OutputDir, filename)

	if err := os.MkdirAll(options.OutputDir, 0755); err != nil {
		return "", fmt.Errorf("failed to create output directory: %w", err)
	}

	var err error
	switch options.Format {
	case FormatCSV:
		err = be.exportToCSV(filtered, outputPath)
	case FormatJSON:
		err = be.exportToJSON(filtered, outputPath)
	default:
		err = fmt.Errorf("unsupported format: %s", options.Format)
	}

	if err != nil {
		return "", err
	}

	be.logger.Info("Cost basis book exported",
		zap.String("file", outputPath),
		zap.Int("count", len(filtered)),
		zap.String("format", string(options.Format)))

	return outputPath, nil
}

// filterRecords applies filters to the record list
func (be *BookExporter) filterRecords(records []*basis.Record, options ExportOptions) []*basis.Record {
	var filtered []*basis.Record

	for _, rec := range records {
		if options.MintFilter != "" && rec.Mint != options.MintFilter {
			continue
		}
		if !options.UpdatedAfter.IsZero() && rec.UpdatedAt.Before(options.UpdatedAfter) {
			continue
		}
		filtered = append(filtered, rec)
	}

	return filtered
}

// generateFilename creates a filename based on export options
func (be *BookExporter) generateFilename(options ExportOptions) string {
	timestamp := time.Now().Format("20060102_150405")

	prefix := "cost_basis"
	if options.MintFilter != "" && len(options.MintFilter) >= 8 {
		prefix += "_" + options.MintFilter[:8]
	}

	return fmt.Sprintf("%s_%s.%s", prefix, timestamp, options.Format)
}

// exportToCSV writes the records to CSV format
func (be *BookExporter) exportToCSV(records []*basis.Record, outputPath string) error {
	file, err := os.Create(outputPath)
	if err != nil {
		return fmt.Errorf("failed to create CSV file: %w", err)
	}
	defer file.Close()

	writer := csv.NewWriter(file)
	defer writer.Flush()

	if err := writer.Write(basis.CSVHeaders()); err != nil {
		return fmt.Errorf("failed to write CSV headers: %w", err)
	}

	for _, rec := range records {
		if err := writer.Write(rec.ToCSV()); err != nil {
			return fmt.Errorf("failed to write record: %w", err)
		}
	}

	return nil
}

// exportToJSON writes the records to JSON with export metadata
func (be *BookExporter) exportToJSON(records []*basis.Record, outputPath string) error {
	file, err := os.Create(outputPath)
	if err != nil {
		return fmt.Errorf("failed to create JSON file: %w", err)
	}
	defer file.Close()

	encoder := json.NewEncoder(file)
	encoder.SetIndent("", "  ")

	exportData := struct {
		ExportTime  time.Time       `json:"export_time"`
		RecordCount int             `json:"record_count"`
		Records     []*basis.Record `json:"records"`
		Summary     BookSummary     `json:"summary"`
	}{
		ExportTime:  time.Now(),
		RecordCount: len(records),
		Records:     records,
		Summary:     be.calculateSummary(records),
	}

	if err := encoder.Encode(exportData); err != nil {
		return fmt.Errorf("failed to encode JSON: %w", err)
	}

	return nil
}

// calculateSummary calculates summary statistics for the export
func (be *BookExporter) calculateSummary(records []*basis.Record) BookSummary {
	summary := BookSummary{
		TotalRecords: len(records),
	}

	for _, rec := range records {
		if rec.CostPerUnitUSD.IsZero() {
			summary.ZeroCostRecords++
		}
		if rec.UpdatedAt.After(summary.LastUpdated) {
			summary.LastUpdated = rec.UpdatedAt
		}
	}

	return summary
}

// BookSummary contains summary statistics for an exported book
type BookSummary struct {
	TotalRecords    int       `json:"total_records"`
	ZeroCostRecords int       `json:"zero_cost_records"`
	LastUpdated     time.Time `json:"last_updated"`
}

// RowError describes a CSV row that was rejected during import
type RowError struct {
	Row    int
	Reason string
}

// ImportResult summarizes a CSV import
type ImportResult struct {
	Imported int
	Rejected []RowError
}

// ImportCSV reads a cost-basis CSV file and upserts every valid row into the
// store. Invalid rows are rejected with their row number, never silently
// coerced; store failures abort the import.
func (be *BookExporter) ImportCSV(ctx context.Context, path string, store basis.Store) (*ImportResult, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open file error: %w", err)
	}
	defer file.Close()

	reader := csv.NewReader(file)
	reader.FieldsPerRecord = -1
	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read CSV error: %w", err)
	}

	if len(rows) < 2 {
		return nil, fmt.Errorf("no records found (need header + at least one record)")
	}

	result := &ImportResult{}

	// Process rows (skip header)
	for i, row := range rows[1:] {
		rowNum := i + 2

		rec, err := basis.RecordFromCSV(row)
		if err != nil {
			be.logger.Warn("Rejecting cost basis row",
				zap.Int("row", rowNum),
				zap.Error(err))
			result.Rejected = append(result.Rejected, RowError{Row: rowNum, Reason: err.Error()})
			continue
		}

		if err := store.Put(ctx, rec); err != nil {
			return nil, fmt.Errorf("failed to store record from row %d: %w", rowNum, err)
		}
		result.Imported++
	}

	be.logger.Info("Cost basis book imported",
		zap.String("file", path),
		zap.Int("imported", result.Imported),
		zap.Int("rejected", len(result.Rejected)))

	return result, nil
}
