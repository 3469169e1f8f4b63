package syncer

import (
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/entrhq/harvest/pkg/source"
	"github.com/zeebo/blake3"
)

// FingerprintBytes is the size of the corpus prefix that identifies it.
const FingerprintBytes = 5000

// Fingerprint returns the hex BLAKE3-256 digest of the first
// FingerprintBytes bytes of corpus.
func Fingerprint(corpus string) string {
	prefix := corpus
	if len(prefix) > FingerprintBytes {
		prefix = prefix[:FingerprintBytes]
	}
	sum := blake3.Sum256([]byte(prefix))
	return hex.EncodeToString(sum[:])
}

// BuildCorpus concatenates documents into the text handed to the model. Each
// document is preceded by a "--- <source> <label> ---" header line.
func BuildCorpus(docs []source.Document) string {
	var b strings.Builder
	for _, d := range docs {
		fmt.Fprintf(&b, "\n--- %s %s ---\n%s\n", d.Source, d.Label, d.Text)
	}
	return b.String()
}
