package annotate

import (
	"fmt"
	"slices"
	"strings"

	"go.uber.org/zap"

	"github.com/apaul7/VAtools/internal/csq"
	"github.com/apaul7/VAtools/internal/report"
	"github.com/apaul7/VAtools/internal/vcf"
)

// Absent is written where a row has no annotation value.
const Absent = "-"

// DefaultInfoKey is the INFO field VEP writes its annotations to.
const DefaultInfoKey = "CSQ"

// RowWriter defines the interface for writing merged report lines.
type RowWriter interface {
	WriteHeader(columns, annotationColumns []string) error
	WriteRow(cells []string) error
	Flush() error
}

// Reporter merges VEP annotations from a VCF into a report, appending
// one column per requested CSQ field.
type Reporter struct {
	fields  []string
	infoKey string
	logger  *zap.Logger
}

// NewReporter creates a reporter appending the given CSQ fields, in
// order, to every report row.
func NewReporter(fields []string) *Reporter {
	return &Reporter{
		fields:  fields,
		infoKey: DefaultInfoKey,
		logger:  zap.NewNop(),
	}
}

// SetInfoKey overrides the INFO field annotations are read from.
func (r *Reporter) SetInfoKey(key string) {
	r.infoKey = key
}

// SetLogger sets the logger for progress and warning messages.
func (r *Reporter) SetLogger(l *zap.Logger) {
	r.logger = l
}

// Run indexes the VCF's annotations and streams the report through the
// index, writing every row with the requested fields appended. The VCF
// is read completely before the first row is written.
func (r *Reporter) Run(parser *vcf.Parser, rows *report.Reader, out RowWriter) error {
	info, ok := parser.Header().Info(r.infoKey)
	if !ok {
		return fmt.Errorf("no %s INFO field in VCF header", r.infoKey)
	}
	schema, err := csq.FieldsFromDescription(info.Description)
	if err != nil {
		return fmt.Errorf("parse %s field schema: %w", r.infoKey, err)
	}
	for _, field := range r.fields {
		if !slices.Contains(schema, field) {
			r.logger.Warn("requested field not in annotation schema",
				zap.String("field", field))
		}
	}

	index, err := BuildIndex(parser, schema, r.infoKey)
	if err != nil {
		return fmt.Errorf("index vcf annotations: %w", err)
	}
	r.logger.Info("indexed vcf annotations",
		zap.Int("alleles", len(index)),
		zap.Int("fields", len(schema)))

	if err := out.WriteHeader(rows.Header(), r.fields); err != nil {
		return fmt.Errorf("write report header: %w", err)
	}

	rowCount := 0
	unmatched := 0
	for {
		row, err := rows.Next()
		if err != nil {
			return fmt.Errorf("read report row: %w", err)
		}
		if row == nil {
			break
		}

		alts := row.Alts()
		keys := make([]Key, len(alts))
		for i, alt := range alts {
			keys[i] = Key{Chrom: row.Chrom(), Pos: row.Pos(), Ref: row.Ref(), Alt: alt}
		}
		if !anyIndexed(index, keys) {
			unmatched++
		}

		cells := make([]string, 0, len(row.Values)+len(r.fields))
		cells = append(cells, row.Values...)
		for _, field := range r.fields {
			cells = append(cells, fieldValues(index, keys, field))
		}
		if err := out.WriteRow(cells); err != nil {
			return fmt.Errorf("write report row: %w", err)
		}
		rowCount++
	}

	if unmatched > 0 {
		r.logger.Warn("rows without a matching vcf entry reported as absent",
			zap.Int("rows", unmatched))
	}
	r.logger.Info("report written",
		zap.Int("rows", rowCount),
		zap.Strings("fields", r.fields))

	return out.Flush()
}

func anyIndexed(index Index, keys []Key) bool {
	for _, k := range keys {
		if _, ok := index[k]; ok {
			return true
		}
	}
	return false
}

// fieldValues collects the field's value for each allele key, in ALT
// order, joined with ",". Alleles without a record, and records whose
// entry never carried the field, yield the absent marker; values are
// percent-decoded on the way out.
func fieldValues(index Index, keys []Key, field string) string {
	values := make([]string, len(keys))
	for i, k := range keys {
		values[i] = Absent
		rec, ok := index[k]
		if !ok || rec == nil {
			continue
		}
		if value, ok := rec[field]; ok {
			values[i] = csq.DecodePercent(value)
		}
	}
	return strings.Join(values, ",")
}
