package eval

import (
	"encoding/json"
	"slices"
)

// ResultSet is the set of entity ids satisfying a query.
// Membership, not order, is meaningful; IDs returns a sorted view.
type ResultSet struct {
	ids map[string]struct{}
}

// NewResultSet returns a set holding ids. Duplicates collapse.
func NewResultSet(ids ...string) ResultSet {
	rs := ResultSet{ids: make(map[string]struct{}, len(ids))}
	for _, id := range ids {
		rs.ids[id] = struct{}{}
	}
	return rs
}

func (rs *ResultSet) add(id string) {
	if rs.ids == nil {
		rs.ids = make(map[string]struct{})
	}
	rs.ids[id] = struct{}{}
}

// Contains reports whether id is in the set.
func (rs ResultSet) Contains(id string) bool {
	_, ok := rs.ids[id]
	return ok
}

// Len returns the number of ids.
func (rs ResultSet) Len() int {
	return len(rs.ids)
}

// IDs returns the ids in ascending order. The result is never nil.
func (rs ResultSet) IDs() []string {
	out := make([]string, 0, len(rs.ids))
	for id := range rs.ids {
		out = append(out, id)
	}
	slices.Sort(out)
	return out
}

// Equal reports whether both sets hold the same ids.
func (rs ResultSet) Equal(other ResultSet) bool {
	if rs.Len() != other.Len() {
		return false
	}
	for id := range rs.ids {
		if !other.Contains(id) {
			return false
		}
	}
	return true
}

// MarshalJSON encodes the set as a sorted array of ids.
func (rs ResultSet) MarshalJSON() ([]byte, error) {
	return json.Marshal(rs.IDs())
}

// UnmarshalJSON decodes an array of ids.
func (rs *ResultSet) UnmarshalJSON(data []byte) error {
	var ids []string
	if err := json.Unmarshal(data, &ids); err != nil {
		return err
	}
	*rs = NewResultSet(ids...)
	return nil
}
