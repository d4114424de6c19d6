package model

import (
	"encoding/json"
	"slices"
	"strings"
)

// ProductSet is an immutable set of product ids. The zero value is empty.
type ProductSet struct {
	ids []string // sorted, unique
}

// NewProductSet builds a set from ids, dropping duplicates and empty strings.
func NewProductSet(ids ...string) ProductSet {
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if id != "" {
			out = append(out, id)
		}
	}
	slices.Sort(out)
	return ProductSet{ids: slices.Compact(out)}
}

// IDs returns a sorted copy of the members.
func (s ProductSet) IDs() []string {
	return slices.Clone(s.ids)
}

// Len returns the cardinality.
func (s ProductSet) Len() int { return len(s.ids) }

// Empty reports whether the set has no members.
func (s ProductSet) Empty() bool { return len(s.ids) == 0 }

// Contains reports membership.
func (s ProductSet) Contains(id string) bool {
	_, ok := slices.BinarySearch(s.ids, id)
	return ok
}

// Equal reports whether both sets hold the same members.
func (s ProductSet) Equal(o ProductSet) bool {
	return slices.Equal(s.ids, o.ids)
}

// SubsetOf reports s ⊆ o.
func (s ProductSet) SubsetOf(o ProductSet) bool {
	if len(s.ids) > len(o.ids) {
		return false
	}
	// both sorted: merge walk
	j := 0
	for _, id := range s.ids {
		for j < len(o.ids) && o.ids[j] < id {
			j++
		}
		if j == len(o.ids) || o.ids[j] != id {
			return false
		}
		j++
	}
	return true
}

// StrictSubsetOf reports s ⊂ o.
func (s ProductSet) StrictSubsetOf(o ProductSet) bool {
	return len(s.ids) < len(o.ids) && s.SubsetOf(o)
}

// Compare orders sets lexicographically by their sorted members.
func (s ProductSet) Compare(o ProductSet) int {
	return slices.Compare(s.ids, o.ids)
}

// Key is a canonical string form, suitable for map keys.
func (s ProductSet) Key() string {
	return strings.Join(s.ids, "\x00")
}

func (s ProductSet) String() string {
	return "{" + strings.Join(s.ids, ",") + "}"
}

// MarshalJSON encodes the set as a sorted array.
func (s ProductSet) MarshalJSON() ([]byte, error) {
	if s.ids == nil {
		return []byte("[]"), nil
	}
	return json.Marshal(s.ids)
}

// UnmarshalJSON decodes an array of ids.
func (s *ProductSet) UnmarshalJSON(b []byte) error {
	var ids []string
	if err := json.Unmarshal(b, &ids); err != nil {
		return err
	}
	*s = NewProductSet(ids...)
	return nil
}
