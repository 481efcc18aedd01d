// Package export renders run histories to columnar and CSV files for
// analysis outside evoloop.
package export

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"

	"github.com/apache/arrow/go/v17/arrow"
	"github.com/apache/arrow/go/v17/arrow/array"
	"github.com/apache/arrow/go/v17/arrow/ipc"
	"github.com/apache/arrow/go/v17/arrow/memory"

	"github.com/nvandessel/evoloop/internal/monitor"
)

// Schema returns the Arrow schema for a run history. Cohesion and z-score
// columns are nullable because generations without oracle interactions have
// no cohesion sample.
func Schema() *arrow.Schema {
	return arrow.NewSchema([]arrow.Field{
		{Name: "generation", Type: arrow.PrimitiveTypes.Int64},
		{Name: "average_age", Type: arrow.PrimitiveTypes.Float64},
		{Name: "average_discrepancy", Type: arrow.PrimitiveTypes.Float64},
		{Name: "survivor_count", Type: arrow.PrimitiveTypes.Int64},
		{Name: "cohesion_mean", Type: arrow.PrimitiveTypes.Float64, Nullable: true},
		{Name: "cohesion_median", Type: arrow.PrimitiveTypes.Float64, Nullable: true},
		{Name: "oracle_accuracy", Type: arrow.PrimitiveTypes.Float64},
		{Name: "oracle_interactions", Type: arrow.PrimitiveTypes.Int64},
		{Name: "leap_flag", Type: arrow.FixedWidthTypes.Boolean},
		{Name: "z_score", Type: arrow.PrimitiveTypes.Float64, Nullable: true},
	}, nil)
}

// WriteArrow writes the history as a single-record Arrow IPC file.
func WriteArrow(path string, history []monitor.GenerationMetrics) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("creating export directory: %w", err)
	}

	schema := Schema()
	builder := array.NewRecordBuilder(memory.DefaultAllocator, schema)
	defer builder.Release()

	generation := builder.Field(0).(*array.Int64Builder)
	averageAge := builder.Field(1).(*array.Float64Builder)
	averageDiscrepancy := builder.Field(2).(*array.Float64Builder)
	survivorCount := builder.Field(3).(*array.Int64Builder)
	cohesionMean := builder.Field(4).(*array.Float64Builder)
	cohesionMedian := builder.Field(5).(*array.Float64Builder)
	oracleAccuracy := builder.Field(6).(*array.Float64Builder)
	oracleInteractions := builder.Field(7).(*array.Int64Builder)
	leapFlag := builder.Field(8).(*array.BooleanBuilder)
	zScore := builder.Field(9).(*array.Float64Builder)

	for _, m := range history {
		generation.Append(int64(m.Generation))
		averageAge.Append(m.AverageAge)
		averageDiscrepancy.Append(m.AverageDiscrepancy)
		survivorCount.Append(int64(m.SurvivorCount))
		appendOptional(cohesionMean, m.CohesionMean)
		appendOptional(cohesionMedian, m.CohesionMedian)
		oracleAccuracy.Append(m.OracleAccuracy)
		oracleInteractions.Append(int64(m.OracleInteractions))
		leapFlag.Append(m.LeapFlag)
		appendOptional(zScore, m.ZScore)
	}

	record := builder.NewRecord()
	defer record.Release()

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating export file: %w", err)
	}
	defer f.Close()

	w, err := ipc.NewFileWriter(f, ipc.WithSchema(schema))
	if err != nil {
		return fmt.Errorf("creating arrow writer: %w", err)
	}
	if err := w.Write(record); err != nil {
		w.Close()
		return fmt.Errorf("writing arrow record: %w", err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("closing arrow writer: %w", err)
	}
	return f.Sync()
}

// WriteCSV writes the history as a generation-summary CSV, header included.
func WriteCSV(path string, history []monitor.GenerationMetrics) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("creating export directory: %w", err)
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating export file: %w", err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(monitor.CSVHeader()); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}
	for _, m := range history {
		if err := w.Write(m.CSVRecord()); err != nil {
			return fmt.Errorf("writing row: %w", err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("flushing export: %w", err)
	}
	return nil
}

func appendOptional(b *array.Float64Builder, v *float64) {
	if v == nil {
		b.AppendNull()
		return
	}
	b.Append(*v)
}
