package vcf

// VariantSource is the interface for readers that yield variants.
// The VCF parser implements it; annotation indexing consumes it.
type VariantSource interface {
	// Next reads the next variant.
	// Returns nil, nil when there are no more variants.
	Next() (*Variant, error)
}
