// Package vcf provides VCF file parsing functionality.
package vcf

// Variant represents a single genomic variant from a VCF file.
type Variant struct {
	Chrom  string            // Chromosome name (e.g., "12", "chr12")
	Pos    int64             // 1-based genomic position
	ID     string            // Variant identifier (e.g., rs ID)
	Ref    string            // Reference allele
	Alt    []string          // Alternate alleles; empty when the ALT column is "."
	Qual   string            // Quality score, "." if missing
	Filter string            // Filter status (PASS or filter name)
	Info   map[string]string // INFO key-value pairs; flag-type keys map to ""
}

// HasInfo reports whether the INFO column carries the given key,
// including flag-type keys without a value.
func (v *Variant) HasInfo(key string) bool {
	_, ok := v.Info[key]
	return ok
}

// IsSV reports whether the variant is a structural variant. Per htslib
// convention a record is structural when its INFO column carries SVTYPE.
func (v *Variant) IsSV() bool {
	return v.HasInfo("SVTYPE")
}

// IsIndel reports whether the variant is an insertion or deletion.
// Structural variants are never classified as indels; otherwise a
// multi-base REF or any ALT whose length differs from REF counts.
func (v *Variant) IsIndel() bool {
	if v.IsSV() {
		return false
	}
	if len(v.Ref) > 1 {
		return true
	}
	for _, alt := range v.Alt {
		if len(alt) != len(v.Ref) {
			return true
		}
	}
	return false
}
