package docs

import (
	"crypto/sha256"
	"encoding/hex"
)

// ComputeSetHash returns a hash over the document set: relative paths and raw
// bytes in walk order. It changes whenever a document is added, removed,
// renamed or edited.
func ComputeSetHash(docs []Document) string {
	h := sha256.New()
	if len(docs) == 0 {
		h.Write([]byte("empty-docs-set"))
		return hex.EncodeToString(h.Sum(nil))
	}
	for _, d := range docs {
		h.Write([]byte(d.Path))
		h.Write([]byte{0})
		h.Write(d.FrontMatter)
		h.Write([]byte{0})
		h.Write(d.Body)
		h.Write([]byte("\n"))
	}
	return hex.EncodeToString(h.Sum(nil))
}
