// Package annotate merges per-allele VEP consequence annotations from
// a VCF into tab-delimited variant reports.
package annotate

import (
	"fmt"
	"strconv"

	"github.com/apaul7/VAtools/internal/csq"
	"github.com/apaul7/VAtools/internal/vcf"
)

// Key identifies one (variant, allele) coordinate. Pos is kept as text
// so report cells can be matched without reparsing.
type Key struct {
	Chrom string
	Pos   string
	Ref   string
	Alt   string
}

func (k Key) String() string {
	return fmt.Sprintf("CHROM %s, POS %s, REF %s, ALT %s", k.Chrom, k.Pos, k.Ref, k.Alt)
}

// DuplicateEntryError reports two VCF entries claiming the same
// coordinate, which would make the merge ambiguous.
type DuplicateEntryError struct {
	Key Key
}

func (e *DuplicateEntryError) Error() string {
	return fmt.Sprintf("VCF entry at %s already exists", e.Key)
}

// Index maps each annotated coordinate to the transcript entry selected
// for its allele. A nil record marks a coordinate seen in the VCF with
// no usable annotation; lookups on it report the absent marker.
type Index map[Key]csq.Record

// BuildIndex reads every variant from src and indexes the selected
// transcript entry for each ALT allele. Annotations are parsed from
// the named INFO field against the given schema fields.
func BuildIndex(src vcf.VariantSource, fields []string, infoKey string) (Index, error) {
	index := make(Index)
	for {
		v, err := src.Next()
		if err != nil {
			return nil, err
		}
		if v == nil {
			return index, nil
		}
		if err := indexVariant(index, v, fields, infoKey); err != nil {
			return nil, err
		}
	}
}

func indexVariant(index Index, v *vcf.Variant, fields []string, infoKey string) error {
	pos := strconv.FormatInt(v.Pos, 10)

	raw, annotated := v.Info[infoKey]
	var groups map[string][]csq.Record
	var alleles map[string]string
	if annotated {
		groups = csq.ParseEntries(raw, fields)
		alleles = csq.ResolveAlleles(v, groups)
	}

	for _, alt := range v.Alt {
		key := Key{Chrom: v.Chrom, Pos: pos, Ref: v.Ref, Alt: alt}
		if _, seen := index[key]; seen {
			return &DuplicateEntryError{Key: key}
		}
		index[key] = nil

		token, ok := alleles[alt]
		if !ok {
			continue
		}
		if records := groups[token]; len(records) > 0 {
			index[key] = csq.PickTranscript(records)
		}
	}
	return nil
}
