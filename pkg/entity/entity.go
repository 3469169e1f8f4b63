// Package entity keeps the deduplicated store of extracted entities (people)
// and the insert-if-absent merge that feeds it.
package entity

import (
	"strconv"
	"strings"
	"time"
)

// RelationshipType classifies how an entity relates to the user.
type RelationshipType string

const (
	RelationshipFamily   RelationshipType = "family"
	RelationshipBusiness RelationshipType = "business"
	RelationshipFriend   RelationshipType = "friend"
	RelationshipClient   RelationshipType = "client"
	RelationshipUnknown  RelationshipType = "unknown"
)

// Priority is derived from the relationship type.
type Priority string

const (
	PriorityHigh   Priority = "high"
	PriorityMedium Priority = "medium"
)

// StatusActive is the status every record is created with.
const StatusActive = "active"

// dateLayout is the layout of Record.LastContact.
const dateLayout = "2006-01-02"

// Record is a persisted entity.
type Record struct {
	ID               string           `json:"id"`
	Name             string           `json:"name"`
	RelationshipType RelationshipType `json:"relationship_type"`
	Notes            string           `json:"notes"`
	Priority         Priority         `json:"priority"`
	Status           string           `json:"status"`
	LastContact      string           `json:"last_contact"`
}

// Candidate is an entity proposed by extraction, before dedup.
type Candidate struct {
	Name         string
	Relationship string
	Notes        string
}

// ParseRelationship lower-cases r and maps anything outside the known set
// to RelationshipUnknown.
func ParseRelationship(r string) RelationshipType {
	switch rt := RelationshipType(strings.ToLower(strings.TrimSpace(r))); rt {
	case RelationshipFamily, RelationshipBusiness, RelationshipFriend, RelationshipClient:
		return rt
	default:
		return RelationshipUnknown
	}
}

// PriorityFor returns high for family and medium for everything else.
func PriorityFor(rt RelationshipType) Priority {
	if rt == RelationshipFamily {
		return PriorityHigh
	}
	return PriorityMedium
}

// NormalizeName is the dedup key: trimmed and lower-cased.
func NormalizeName(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

// Merge inserts every candidate whose normalized name is not yet present.
// Names are checked against the running set, so a batch naming the same
// person twice inserts once. Each insert gets id len(records)+1 at the time
// of insertion. Existing records are never modified.
func Merge(records []Record, candidates []Candidate, now time.Time) (merged, inserted []Record) {
	merged = make([]Record, len(records), len(records)+len(candidates))
	copy(merged, records)

	names := make(map[string]struct{}, len(merged))
	for _, r := range merged {
		names[NormalizeName(r.Name)] = struct{}{}
	}

	for _, c := range candidates {
		key := NormalizeName(c.Name)
		if key == "" {
			continue
		}
		if _, exists := names[key]; exists {
			continue
		}
		rt := ParseRelationship(c.Relationship)
		rec := Record{
			ID:               strconv.Itoa(len(merged) + 1),
			Name:             strings.TrimSpace(c.Name),
			RelationshipType: rt,
			Notes:            c.Notes,
			Priority:         PriorityFor(rt),
			Status:           StatusActive,
			LastContact:      now.Format(dateLayout),
		}
		merged = append(merged, rec)
		inserted = append(inserted, rec)
		names[key] = struct{}{}
	}
	return merged, inserted
}
