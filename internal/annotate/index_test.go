package annotate

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/apaul7/VAtools/internal/vcf"
)

const vcfHeader = `##fileformat=VCFv4.2
##INFO=<ID=CSQ,Number=.,Type=String,Description="Consequence annotations from Ensembl VEP. Format: Allele|Consequence|SYMBOL|PICK">
##INFO=<ID=SVTYPE,Number=1,Type=String,Description="Type of structural variant">
##INFO=<ID=DP,Number=1,Type=Integer,Description="Combined depth">
#CHROM	POS	ID	REF	ALT	QUAL	FILTER	INFO
`

var csqFields = []string{"Allele", "Consequence", "SYMBOL", "PICK"}

func parseVCF(t *testing.T, body string) *vcf.Parser {
	t.Helper()
	p, err := vcf.NewParserFromReader(strings.NewReader(vcfHeader + body))
	require.NoError(t, err)
	return p
}

func buildIndex(t *testing.T, body string) Index {
	t.Helper()
	index, err := BuildIndex(parseVCF(t, body), csqFields, "CSQ")
	require.NoError(t, err)
	return index
}

func TestBuildIndex_PickedTranscript(t *testing.T) {
	index := buildIndex(t, "1	100	.	G	A	.	PASS	CSQ=A|missense_variant|GENE2|,A|synonymous_variant|GENE1|1\n")

	rec := index[Key{Chrom: "1", Pos: "100", Ref: "G", Alt: "A"}]
	require.NotNil(t, rec)
	assert.Equal(t, "GENE1", rec["SYMBOL"])
}

func TestBuildIndex_FirstTranscriptWithoutPick(t *testing.T) {
	index := buildIndex(t, "1	100	.	G	A	.	PASS	CSQ=A|missense_variant|GENE2|,A|synonymous_variant|GENE1|\n")

	rec := index[Key{Chrom: "1", Pos: "100", Ref: "G", Alt: "A"}]
	require.NotNil(t, rec)
	assert.Equal(t, "GENE2", rec["SYMBOL"])
}

func TestBuildIndex_MultiAllelic(t *testing.T) {
	index := buildIndex(t, "1	200	.	G	C,T	.	PASS	CSQ=C|missense_variant|GENE1|1,T|stop_gained|GENE2|1\n")

	require.Len(t, index, 2)
	assert.Equal(t, "GENE1", index[Key{Chrom: "1", Pos: "200", Ref: "G", Alt: "C"}]["SYMBOL"])
	assert.Equal(t, "GENE2", index[Key{Chrom: "1", Pos: "200", Ref: "G", Alt: "T"}]["SYMBOL"])
}

func TestBuildIndex_UnannotatedVariant(t *testing.T) {
	// A variant without the annotation INFO field still claims its
	// coordinate, with no record behind it.
	index := buildIndex(t, "2	300	.	G	A	.	PASS	DP=10\n")

	rec, ok := index[Key{Chrom: "2", Pos: "300", Ref: "G", Alt: "A"}]
	require.True(t, ok)
	assert.Nil(t, rec)
}

func TestBuildIndex_DeletionKeyedByVCFAllele(t *testing.T) {
	// The index key carries the VCF spelling of the ALT, not the
	// annotation token.
	index := buildIndex(t, "2	300	.	AT	A	.	PASS	CSQ=-|frameshift_variant|GENE3|1\n")

	rec := index[Key{Chrom: "2", Pos: "300", Ref: "AT", Alt: "A"}]
	require.NotNil(t, rec)
	assert.Equal(t, "GENE3", rec["SYMBOL"])
}

func TestBuildIndex_InsertionKeyedByVCFAllele(t *testing.T) {
	index := buildIndex(t, "2	400	.	C	CAG	.	PASS	CSQ=AG|inframe_insertion|GENE4|1\n")

	rec := index[Key{Chrom: "2", Pos: "400", Ref: "C", Alt: "CAG"}]
	require.NotNil(t, rec)
	assert.Equal(t, "GENE4", rec["SYMBOL"])
}

func TestBuildIndex_StructuralVariant(t *testing.T) {
	index := buildIndex(t, "3	500	.	T	<DEL>	.	PASS	SVTYPE=DEL;CSQ=deletion|feature_truncation|GENE5|1\n")

	rec := index[Key{Chrom: "3", Pos: "500", Ref: "T", Alt: "<DEL>"}]
	require.NotNil(t, rec)
	assert.Equal(t, "GENE5", rec["SYMBOL"])
}

func TestBuildIndex_UnresolvedStructuralVariant(t *testing.T) {
	// Two candidate tokens, neither length-consistent: the coordinate
	// is claimed but no record is reachable.
	index := buildIndex(t, "3	600	.	T	<CNV>	.	PASS	SVTYPE=CNV;CSQ=duplication|x|GENE6|1,deletion|y|GENE7|1\n")

	rec, ok := index[Key{Chrom: "3", Pos: "600", Ref: "T", Alt: "<CNV>"}]
	require.True(t, ok)
	assert.Nil(t, rec)
}

func TestBuildIndex_DuplicateEntry(t *testing.T) {
	body := "1	100	.	G	A	.	PASS	CSQ=A|missense_variant|GENE1|1\n" +
		"1	100	.	G	A	.	PASS	CSQ=A|synonymous_variant|GENE2|1\n"
	_, err := BuildIndex(parseVCF(t, body), csqFields, "CSQ")

	var dup *DuplicateEntryError
	require.ErrorAs(t, err, &dup)
	assert.Equal(t, Key{Chrom: "1", Pos: "100", Ref: "G", Alt: "A"}, dup.Key)
	assert.Contains(t, err.Error(), "CHROM 1, POS 100, REF G, ALT A")
}

func TestBuildIndex_DuplicateAcrossAnnotationStates(t *testing.T) {
	// An unannotated entry collides with an annotated one at the same
	// coordinate just the same.
	body := "1	100	.	G	A	.	PASS	CSQ=A|missense_variant|GENE1|1\n" +
		"1	100	.	G	A	.	PASS	DP=3\n"
	_, err := BuildIndex(parseVCF(t, body), csqFields, "CSQ")

	var dup *DuplicateEntryError
	require.ErrorAs(t, err, &dup)
}

func TestBuildIndex_RepeatedAltInOneEntry(t *testing.T) {
	body := "1	100	.	G	A,A	.	PASS	CSQ=A|missense_variant|GENE1|1\n"
	_, err := BuildIndex(parseVCF(t, body), csqFields, "CSQ")

	var dup *DuplicateEntryError
	require.ErrorAs(t, err, &dup)
}

func TestBuildIndex_Empty(t *testing.T) {
	assert.Empty(t, buildIndex(t, ""))
}
