// Package csq parses VEP consequence (CSQ) annotations embedded in VCF
// INFO fields: the field schema advertised in the header, the per-allele
// entry blocks carried by each variant, and the allele-token notation
// VEP uses for indels and structural variants.
package csq

import (
	"fmt"
	"regexp"
	"strings"
)

// formatPattern locates the pipe-separated field list inside a CSQ INFO
// description, e.g. Description="... Format: Allele|Gene|PICK".
var formatPattern = regexp.MustCompile(`Format: (.*)"`)

// FieldsFromDescription extracts the ordered CSQ sub-field names from an
// INFO header description. The description must contain a "Format: "
// marker terminated by a closing quote; without one no schema exists and
// the annotation source is unusable.
func FieldsFromDescription(desc string) ([]string, error) {
	m := formatPattern.FindStringSubmatch(desc)
	if m == nil {
		return nil, fmt.Errorf("no \"Format: \" field list in INFO description %s", desc)
	}
	return strings.Split(m[1], "|"), nil
}
