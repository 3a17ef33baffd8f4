package csq

import "strings"

// Record is one transcript entry for one allele, keyed by schema field
// name. Values are raw, still percent-encoded.
type Record map[string]string

// AlleleField names the schema column whose value groups entries by
// allele.
const AlleleField = "Allele"

// PickField names the schema column VEP sets to "1" on the entry it
// flags as canonical.
const PickField = "PICK"

// ParseEntries splits a raw CSQ INFO value into per-allele groups of
// records. Each comma-separated entry is split on "|" and zipped
// positionally against the schema fields. Entries shorter than the
// schema leave the trailing fields unset; values beyond the schema are
// dropped. Entry order within a group follows the input.
func ParseEntries(value string, fields []string) map[string][]Record {
	groups := make(map[string][]Record)
	for _, entry := range strings.Split(value, ",") {
		values := strings.Split(entry, "|")
		rec := make(Record, len(fields))
		for i, name := range fields {
			if i >= len(values) {
				break
			}
			rec[name] = values[i]
		}
		groups[rec[AlleleField]] = append(groups[rec[AlleleField]], rec)
	}
	return groups
}

// PickTranscript returns the entry flagged PICK == "1", falling back to
// the first entry when none is flagged. records must be non-empty.
func PickTranscript(records []Record) Record {
	for _, rec := range records {
		if rec[PickField] == "1" {
			return rec
		}
	}
	return records[0]
}
