package csq

import "github.com/apaul7/VAtools/internal/vcf"

// Structural variants are annotated under symbolic labels instead of
// sequence tokens.
const (
	svInsertion = "insertion"
	svDeletion  = "deletion"
)

// ResolveAlleles maps each ALT allele of a variant, in its VCF
// spelling, to the token VEP uses to key that allele's CSQ entries.
// Substitution ALTs map to themselves, indel ALTs are normalized to
// VEP's anchor-stripped form, and structural-variant ALTs are matched
// against the symbolic labels present in groups. An ALT whose token
// cannot be deduced is left out of the result and its annotations stay
// unreachable.
func ResolveAlleles(v *vcf.Variant, groups map[string][]Record) map[string]string {
	alleles := make(map[string]string, len(v.Alt))
	switch {
	case v.IsIndel():
		for _, alt := range v.Alt {
			alleles[alt] = indelToken(v.Ref, alt)
		}
	case v.IsSV():
		for _, alt := range v.Alt {
			if token, ok := svToken(v.Ref, alt, groups); ok {
				alleles[alt] = token
			}
		}
	default:
		for _, alt := range v.Alt {
			alleles[alt] = alt
		}
	}
	return alleles
}

// indelToken rewrites an insertion or deletion ALT the way VEP spells
// it: the leading anchor base shared with REF is stripped, and a pure
// deletion becomes "-". An ALT that replaces the anchor base outright
// stays verbatim.
func indelToken(ref, alt string) string {
	if firstByte(alt) != firstByte(ref) {
		return alt
	}
	if len(alt) <= 1 {
		return "-"
	}
	return alt[1:]
}

func firstByte(s string) byte {
	if s == "" {
		return 0
	}
	return s[0]
}

// svToken resolves a structural-variant ALT against the labels the
// annotations were grouped under. A length-consistent "insertion" or
// "deletion" label wins; otherwise a sole remaining label is taken as
// is. An ambiguous label set resolves nothing.
func svToken(ref, alt string, groups map[string][]Record) (string, bool) {
	_, hasInsertion := groups[svInsertion]
	_, hasDeletion := groups[svDeletion]
	switch {
	case hasInsertion && len(alt) > len(ref):
		return svInsertion, true
	case hasDeletion && len(alt) < len(ref):
		return svDeletion, true
	case len(groups) == 1:
		for token := range groups {
			return token, true
		}
	}
	return "", false
}
