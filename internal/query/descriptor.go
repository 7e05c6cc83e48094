package query

import (
	"encoding/json"
	"fmt"
)

// Operator is a comparison understood by the store adapter.
type Operator string

const (
	OpEq  Operator = "="
	OpGte Operator = ">="
	OpGt  Operator = ">"
	OpLte Operator = "<="
	OpLt  Operator = "<"
)

// Condition compares an API field name against a raw request value.
type Condition struct {
	Field string
	Op    Operator
	Value string
}

type SortField struct {
	Field string
	Desc  bool
}

// Descriptor is the filter, sort, projection and pagination of one list request.
// Field names are the API (JSON) names; the store maps them onto columns.
type Descriptor struct {
	Conditions []Condition
	Sort       []SortField
	// Fields is the explicit projection; empty means the store default.
	Fields []string
	Page   int
	Limit  int
	Skip   int
}

// Project trims the JSON form of v, a struct or a slice of structs, down to
// the projected fields plus "id". With no projection v is returned unchanged.
func (d *Descriptor) Project(v any) (any, error) {
	if d == nil || len(d.Fields) == 0 {
		return v, nil
	}

	raw, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("project: %w", err)
	}

	keep := map[string]struct{}{"id": {}}
	for _, f := range d.Fields {
		keep[f] = struct{}{}
	}

	if len(raw) > 0 && raw[0] == '[' {
		var items []map[string]any
		if err := json.Unmarshal(raw, &items); err != nil {
			return nil, fmt.Errorf("project: %w", err)
		}
		for _, item := range items {
			trim(item, keep)
		}
		return items, nil
	}

	var item map[string]any
	if err := json.Unmarshal(raw, &item); err != nil {
		return nil, fmt.Errorf("project: %w", err)
	}
	trim(item, keep)
	return item, nil
}

func trim(item map[string]any, keep map[string]struct{}) {
	for k := range item {
		if _, ok := keep[k]; !ok {
			delete(item, k)
		}
	}
}
