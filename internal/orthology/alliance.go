package orthology

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/geneontology/gopreprocess/internal/apperr"
)

// ScanAlliance streams the "data" array of an Alliance orthology JSON
// export. Entries missing an id or taxon are reported and skipped.
func ScanAlliance(r io.Reader, source string, onPair func(Pair), onParseError func(index int, err error)) (int, error) {
	dec := json.NewDecoder(r)
	if err := seekArray(dec, "data"); err != nil {
		return 0, apperr.New(apperr.Parse, "orthology "+source, err)
	}

	n := 0
	for i := 0; dec.More(); i++ {
		var p Pair
		if err := dec.Decode(&p); err != nil {
			return n, apperr.New(apperr.Parse, "orthology "+source, fmt.Errorf("entry %d: %w", i, err))
		}
		if p.Gene1ID == "" || p.Gene2ID == "" || p.Gene1Taxon == "" || p.Gene2Taxon == "" {
			if onParseError != nil {
				onParseError(i, apperr.Parsef("orthology", "%s entry %d: incomplete pair", source, i))
			}
			continue
		}
		n++
		onPair(p)
	}
	return n, nil
}

// seekArray advances dec to just inside the top-level array named key.
func seekArray(dec *json.Decoder, key string) error {
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return errors.New("expected a JSON object")
	}
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return err
		}
		name, _ := tok.(string)
		if name != key {
			var skip json.RawMessage
			if err := dec.Decode(&skip); err != nil {
				return err
			}
			continue
		}
		tok, err = dec.Token()
		if err != nil {
			return err
		}
		if d, ok := tok.(json.Delim); !ok || d != '[' {
			return fmt.Errorf("%q is not an array", key)
		}
		return nil
	}
	return fmt.Errorf("no %q array", key)
}
