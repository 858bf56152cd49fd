package models

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
)

// ID is a server-assigned identifier. The API is not consistent about its JSON type,
// so ID accepts both string and numeric encodings and keeps the textual form.
type ID string

// UnmarshalJSON accepts `"42"`, `42` and `null`.
func (id *ID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*id = ""
		return nil
	}

	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return fmt.Errorf("failed to decode id: %w", err)
		}
		*id = ID(s)
		return nil
	}

	var num json.Number
	if err := json.Unmarshal(data, &num); err != nil {
		return fmt.Errorf("failed to decode id %s: %w", string(data), err)
	}
	*id = ID(num.String())

	return nil
}

// String returns the textual form of the identifier.
func (id ID) String() string {
	return string(id)
}

// Employee represents an employee record as served by the API.
type Employee struct {
	ID             ID                 `json:"id"`
	FirstName      string             `json:"firstName"`
	LastName       string             `json:"lastName"`
	Phone          string             `json:"phone"`
	Street         string             `json:"street"`
	Postcode       string             `json:"postcode"`
	City           string             `json:"city"`
	Qualifications []QualificationRef `json:"qualifications"`
}

// FullName joins first and last name.
func (e Employee) FullName() string {
	return strings.TrimSpace(e.FirstName + " " + e.LastName)
}

// Address formats the address the way the employee table shows it.
func (e Employee) Address() string {
	return fmt.Sprintf("%s, %s %s", e.Street, e.Postcode, e.City)
}

// Skills returns the skill names of the attached qualifications, in order.
func (e Employee) Skills() []string {
	skills := make([]string, 0, len(e.Qualifications))
	for _, q := range e.Qualifications {
		skills = append(skills, q.Skill)
	}

	return skills
}

// Clone returns a deep copy so cached records never share a qualification slice.
func (e Employee) Clone() Employee {
	cp := e
	if e.Qualifications != nil {
		cp.Qualifications = make([]QualificationRef, len(e.Qualifications))
		copy(cp.Qualifications, e.Qualifications)
	}

	return cp
}

// EmployeeDraft holds the mutable fields sent on create and update.
type EmployeeDraft struct {
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Phone     string `json:"phone"`
	Street    string `json:"street"`
	Postcode  string `json:"postcode"`
	City      string `json:"city"`
}

// Draft extracts the mutable fields of an employee.
func (e Employee) Draft() EmployeeDraft {
	return EmployeeDraft{
		FirstName: e.FirstName,
		LastName:  e.LastName,
		Phone:     e.Phone,
		Street:    e.Street,
		Postcode:  e.Postcode,
		City:      e.City,
	}
}

// EmployeeRef is an entry of the reverse lookup response.
type EmployeeRef struct {
	ID ID `json:"id"`
}

// QualificationEmployees is the body of GET /qualifications/{id}/employees.
type QualificationEmployees struct {
	Employees []EmployeeRef `json:"employees"`
}
