package models

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Qualification is a skill that can be attached to employees.
type Qualification struct {
	ID    ID     `json:"id"`
	Skill string `json:"skill"`
}

// SkillBody is the request body for qualification writes and attach/detach calls.
type SkillBody struct {
	Skill string `json:"skill"`
}

// QualificationRef is one entry of an employee's qualification list.
//
// The API sends either a bare skill name or a {id, skill} record. Both are decoded
// into the same shape here; Named reports which form was received.
type QualificationRef struct {
	ID    ID     `json:"id,omitempty"`
	Skill string `json:"skill"`
	Named bool   `json:"-"`
}

// SkillRef builds a reference that only carries a skill name.
func SkillRef(skill string) QualificationRef {
	return QualificationRef{Skill: skill, Named: true}
}

// UnmarshalJSON decodes both the string and the object form.
func (q *QualificationRef) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '"' {
		var skill string
		if err := json.Unmarshal(data, &skill); err != nil {
			return fmt.Errorf("failed to decode qualification name: %w", err)
		}
		*q = SkillRef(skill)
		return nil
	}

	var rec Qualification
	if err := json.Unmarshal(data, &rec); err != nil {
		return fmt.Errorf("failed to decode qualification record: %w", err)
	}
	*q = QualificationRef{ID: rec.ID, Skill: rec.Skill}

	return nil
}

// MarshalJSON writes the form that was received, so a skill name stays a skill name.
func (q QualificationRef) MarshalJSON() ([]byte, error) {
	if q.Named {
		return json.Marshal(q.Skill)
	}

	return json.Marshal(Qualification{ID: q.ID, Skill: q.Skill})
}
