package vocab

// Gene product type labels and their Sequence Ontology identifiers.
var typeLabelToCurie = map[string]string{
	"gene":                  "SO:0000704",
	"protein_coding_gene":   "SO:0001217",
	"protein":               "PR:000000001",
	"ncRNA_gene":            "SO:0001263",
	"lncRNA_gene":           "SO:0002127",
	"miRNA_gene":            "SO:0001265",
	"snRNA_gene":            "SO:0001268",
	"snoRNA_gene":           "SO:0001267",
	"rRNA_gene":             "SO:0001637",
	"tRNA_gene":             "SO:0001272",
	"scRNA_gene":            "SO:0001266",
	"pseudogene":            "SO:0000336",
	"gene_segment":          "SO:3000000",
	"transcript":            "SO:0000673",
	"ncRNA":                 "SO:0000655",
	"biological_region":     "SO:0001411",
	"protein_complex":       "GO:0032991",
	"RNA":                   "SO:0000356",
}

var typeCurieToLabel = func() map[string]string {
	out := make(map[string]string, len(typeLabelToCurie))
	for label, id := range typeLabelToCurie {
		out[id] = label
	}
	return out
}()

// TypeLabel maps a type identifier (GPI 2.0 column) to its label. Values
// that are already labels are returned unchanged.
func TypeLabel(value string) string {
	if label, ok := typeCurieToLabel[value]; ok {
		return label
	}
	return value
}
