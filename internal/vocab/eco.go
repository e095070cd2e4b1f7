package vocab

import "sort"

// ISO is the ECO term for "inferred from sequence orthology".
const ISO = "ECO:0000266"

// Default GAF evidence code to ECO mappings. IEA uses the generic
// automatic-assertion class.
var gafToECO = map[string]string{
	"EXP": "ECO:0000269",
	"IDA": "ECO:0000314",
	"IPI": "ECO:0000353",
	"IMP": "ECO:0000315",
	"IGI": "ECO:0000316",
	"IEP": "ECO:0000270",
	"HTP": "ECO:0006056",
	"HDA": "ECO:0007005",
	"HMP": "ECO:0007001",
	"HGI": "ECO:0007003",
	"HEP": "ECO:0007007",
	"ISS": "ECO:0000250",
	"ISO": ISO,
	"ISA": "ECO:0000247",
	"ISM": "ECO:0000255",
	"IGC": "ECO:0000317",
	"IBA": "ECO:0000318",
	"IBD": "ECO:0000319",
	"IKR": "ECO:0000320",
	"IRD": "ECO:0000321",
	"RCA": "ECO:0000245",
	"TAS": "ECO:0000304",
	"NAS": "ECO:0000303",
	"IC":  "ECO:0000305",
	"ND":  "ECO:0000307",
	"IEA": "ECO:0000501",
}

var ecoToGAF = func() map[string]string {
	out := make(map[string]string, len(gafToECO))
	for code, eco := range gafToECO {
		out[eco] = code
	}
	return out
}()

// ECOFor returns the ECO id for a GAF evidence code.
func ECOFor(code string) (string, bool) {
	eco, ok := gafToECO[code]
	return eco, ok
}

// CodeFor returns the GAF evidence code for an ECO id.
func CodeFor(eco string) (string, bool) {
	code, ok := ecoToGAF[eco]
	return code, ok
}

// ECOSet maps a list of GAF codes to the set of their ECO ids. Unknown
// codes are returned separately.
func ECOSet(codes []string) (map[string]struct{}, []string) {
	set := make(map[string]struct{}, len(codes))
	var unknown []string
	for _, c := range codes {
		eco, ok := gafToECO[c]
		if !ok {
			unknown = append(unknown, c)
			continue
		}
		set[eco] = struct{}{}
	}
	sort.Strings(unknown)
	return set, unknown
}
