package models

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Patch is a server response to an employee update. Fields present in it replace the
// cached values; fields it omits keep their previous values.
type Patch json.RawMessage

// ApplyTo overlays the patch on prev and returns the merged record. prev is not modified.
func (p Patch) ApplyTo(prev Employee) (Employee, error) {
	if len(strings.TrimSpace(string(p))) == 0 || strings.TrimSpace(string(p)) == "null" {
		return prev.Clone(), nil
	}

	base, err := json.Marshal(prev)
	if err != nil {
		return Employee{}, fmt.Errorf("failed to encode cached employee: %w", err)
	}

	fields := map[string]json.RawMessage{}
	if err = json.Unmarshal(base, &fields); err != nil {
		return Employee{}, fmt.Errorf("failed to split cached employee: %w", err)
	}

	overlay := map[string]json.RawMessage{}
	if err = json.Unmarshal(p, &overlay); err != nil {
		return Employee{}, fmt.Errorf("failed to decode update response: %w", err)
	}

	// keys match case-insensitively, like json.Unmarshal does for struct fields
	for key, value := range overlay {
		if string(value) == "null" {
			continue
		}
		if field, ok := fieldFor(fields, key); ok {
			fields[field] = value
		}
	}

	merged, err := json.Marshal(fields)
	if err != nil {
		return Employee{}, fmt.Errorf("failed to encode merged employee: %w", err)
	}

	var out Employee
	if err = json.Unmarshal(merged, &out); err != nil {
		return Employee{}, fmt.Errorf("failed to decode merged employee: %w", err)
	}

	return out, nil
}

func fieldFor(fields map[string]json.RawMessage, key string) (string, bool) {
	if _, ok := fields[key]; ok {
		return key, true
	}

	for field := range fields {
		if strings.EqualFold(field, key) {
			return field, true
		}
	}

	return "", false
}
