package vcf

import (
	"regexp"
	"strings"
)

// InfoHeader describes one ##INFO metadata entry.
type InfoHeader struct {
	ID          string
	Number      string
	Type        string
	Description string // raw value with its surrounding quotes preserved
}

// Header holds the metadata block of a VCF file.
type Header struct {
	Lines   []string              // raw ## lines plus the #CHROM line, in file order
	Infos   map[string]InfoHeader // ##INFO entries keyed by ID
	Samples []string              // sample names from the #CHROM line
}

// Info returns the ##INFO entry for the given ID.
func (h *Header) Info(id string) (InfoHeader, bool) {
	info, ok := h.Infos[id]
	return info, ok
}

// Structured metadata lines look like ##TYPE=<key=value,...>.
var structuredLine = regexp.MustCompile(`^##([^=]+)=<(.*)>$`)

// parseMetaLine folds one ## line into the header metadata. Only INFO
// entries are retained in structured form; everything stays in Lines.
func (h *Header) parseMetaLine(line string) {
	m := structuredLine.FindStringSubmatch(line)
	if m == nil || m[1] != "INFO" {
		return
	}
	kv := splitStructured(m[2])
	id := kv["ID"]
	if id == "" {
		return
	}
	h.Infos[id] = InfoHeader{
		ID:          id,
		Number:      kv["Number"],
		Type:        kv["Type"],
		Description: kv["Description"],
	}
}

// splitStructured splits `ID=CSQ,Number=.,Description="a, b"` into a
// key-value map. Commas and equals signs inside double quotes do not
// split; quoted values keep their quotes.
func splitStructured(s string) map[string]string {
	kv := make(map[string]string)
	var key string
	var val strings.Builder
	inQuotes := false

	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case c == '"':
			inQuotes = !inQuotes
			val.WriteByte(c)
		case c == '=' && !inQuotes && key == "":
			key = val.String()
			val.Reset()
		case c == ',' && !inQuotes:
			if key != "" {
				kv[key] = val.String()
			}
			key = ""
			val.Reset()
		default:
			val.WriteByte(c)
		}
	}
	if key != "" {
		kv[key] = val.String()
	}

	return kv
}
