package source

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
)

// SessionSourceName is the Source of documents produced by SessionLog.
const SessionSourceName = "session"

// SessionLog reads a sessions index file. The file is either an array of
// sessions or an object keyed by session id. An object whose values are not
// all objects is treated as a single session.
type SessionLog struct {
	Path string
}

// Name implements Collector.
func (s *SessionLog) Name() string { return SessionSourceName }

// Collect implements Collector. Documents come out in a stable order so the
// resulting corpus fingerprints the same for unchanged input.
func (s *SessionLog) Collect(ctx context.Context) ([]Document, error) {
	if s.Path == "" {
		return nil, nil
	}
	raw, ok, err := readJSONC(s.Path)
	if err != nil || !ok {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var list []json.RawMessage
	if err := json.Unmarshal(raw, &list); err == nil {
		docs := make([]Document, 0, len(list))
		for i, item := range list {
			docs = append(docs, Document{Source: SessionSourceName, Label: strconv.Itoa(i), Text: compact(item)})
		}
		return docs, nil
	}

	var byID map[string]json.RawMessage
	if err := json.Unmarshal(raw, &byID); err != nil {
		return nil, fmt.Errorf("parsing %s: expected an array or object of sessions", s.Path)
	}
	if !allObjects(byID) {
		return []Document{{Source: SessionSourceName, Label: "0", Text: compact(raw)}}, nil
	}

	ids := make([]string, 0, len(byID))
	for id := range byID {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	docs := make([]Document, 0, len(ids))
	for _, id := range ids {
		docs = append(docs, Document{Source: SessionSourceName, Label: id, Text: compact(byID[id])})
	}
	return docs, nil
}

func allObjects(m map[string]json.RawMessage) bool {
	if len(m) == 0 {
		return false
	}
	for _, v := range m {
		var obj map[string]json.RawMessage
		if json.Unmarshal(v, &obj) != nil {
			return false
		}
	}
	return true
}
