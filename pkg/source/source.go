// Package source collects the local content a sync cycle feeds to the model:
// daily memory notes, session logs and chat history exports.
//
// Collectors never fail on missing inputs. A file that does not exist simply
// contributes nothing. Unreadable or malformed files are reported through the
// returned error while the documents that could be read are still returned.
package source

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/tidwall/jsonc"
)

// Document is one unit of collected content.
type Document struct {
	// Source names the collector that produced the document.
	Source string
	// Label identifies the document within its source, such as a date or
	// a file name.
	Label string
	Text  string
}

// Collector gathers documents from one kind of input.
type Collector interface {
	Name() string
	Collect(ctx context.Context) ([]Document, error)
}

// readJSONC reads path as JSON, tolerating comments and trailing commas.
// A missing file yields (nil, false, nil).
func readJSONC(path string) (json.RawMessage, bool, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("reading %s: %w", path, err)
	}

	stripped := jsonc.ToJSON(data)
	if !json.Valid(stripped) {
		return nil, false, fmt.Errorf("parsing %s: invalid JSON", path)
	}
	return json.RawMessage(stripped), true, nil
}

// compact renders raw as single-line JSON.
func compact(raw json.RawMessage) string {
	var buf bytes.Buffer
	if err := json.Compact(&buf, raw); err != nil {
		return string(raw)
	}
	return buf.String()
}
