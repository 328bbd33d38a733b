package store

import (
	"encoding/json"
	"fmt"
)

// PublicDocument returns a copy of doc with IDField renamed to
// PublicIDField as a string.
func PublicDocument(doc Document) Document {
	out := make(Document, len(doc))
	for k, v := range doc {
		if k == IDField {
			continue
		}
		out[k] = v
	}
	if id, ok := doc[IDField]; ok && id != nil {
		out[PublicIDField] = idString(id)
	}
	return out
}

// PublicDocuments applies PublicDocument to every element.
func PublicDocuments(docs []Document) []Document {
	out := make([]Document, 0, len(docs))
	for _, d := range docs {
		out = append(out, PublicDocument(d))
	}
	return out
}

func idString(id any) string {
	switch v := id.(type) {
	case string:
		return v
	case interface{ Hex() string }:
		return v.Hex()
	case fmt.Stringer:
		return v.String()
	}
	return fmt.Sprint(id)
}

// deepCopy returns a deep copy of a document by round-tripping through JSON.
func deepCopy(src Document) (Document, error) {
	if src == nil {
		return nil, nil
	}
	b, err := json.Marshal(src)
	if err != nil {
		return nil, err
	}
	var dst Document
	if err := json.Unmarshal(b, &dst); err != nil {
		return nil, err
	}
	return dst, nil
}

// withID returns a copy of doc carrying id under IDField.
func withID(doc Document, id string) (Document, error) {
	out, err := deepCopy(doc)
	if err != nil {
		return nil, err
	}
	if out == nil {
		out = Document{}
	}
	out[IDField] = id
	return out, nil
}

func capacity(limit, n int) int {
	if limit > 0 && limit < n {
		return limit
	}
	return n
}
