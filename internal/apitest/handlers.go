package apitest

import (
	"encoding/json"
	"net/http"
	"slices"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/UnknownOlympus/athena/internal/models"
)

type reverseEntry struct {
	ID        json.RawMessage `json:"id"`
	FirstName string          `json:"firstName"`
	LastName  string          `json:"lastName"`
}

func newEmployee(id string, draft models.EmployeeDraft) *employee {
	return &employee{
		ID:        id,
		FirstName: draft.FirstName,
		LastName:  draft.LastName,
		Phone:     draft.Phone,
		Street:    draft.Street,
		Postcode:  draft.Postcode,
		City:      draft.City,
	}
}

func (s *Server) toModel(emp *employee) models.Employee {
	out := models.Employee{
		ID:             models.ID(emp.ID),
		FirstName:      emp.FirstName,
		LastName:       emp.LastName,
		Phone:          emp.Phone,
		Street:         emp.Street,
		Postcode:       emp.Postcode,
		City:           emp.City,
		Qualifications: make([]models.QualificationRef, 0, len(emp.Skills)),
	}

	for _, skill := range emp.Skills {
		if !s.records {
			out.Qualifications = append(out.Qualifications, models.SkillRef(skill))
			continue
		}

		ref := models.QualificationRef{Skill: skill}
		if q, ok := s.qualificationBySkill(skill); ok {
			ref.ID = q.ID
		}
		out.Qualifications = append(out.Qualifications, ref)
	}

	return out
}

func (s *Server) listEmployees(w http.ResponseWriter, _ *http.Request) {
	s.mu.Lock()
	out := make([]models.Employee, 0, len(s.employees))
	for _, emp := range s.employees {
		out = append(out, s.toModel(emp))
	}
	s.mu.Unlock()

	writeJSON(w, http.StatusOK, out)
}

func (s *Server) createEmployee(w http.ResponseWriter, r *http.Request) {
	var draft models.EmployeeDraft
	if err := json.NewDecoder(r.Body).Decode(&draft); err != nil {
		http.Error(w, "malformed employee", http.StatusBadRequest)
		return
	}

	s.mu.Lock()
	emp := newEmployee(s.nextID(), draft)
	s.employees = append(s.employees, emp)
	s.mu.Unlock()

	// the creation response never carries qualifications
	writeJSON(w, http.StatusCreated, emp)
}

func (s *Server) updateEmployee(w http.ResponseWriter, r *http.Request) {
	var draft models.EmployeeDraft
	if err := json.NewDecoder(r.Body).Decode(&draft); err != nil {
		http.Error(w, "malformed employee", http.StatusBadRequest)
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	emp, ok := s.employeeByID(chi.URLParam(r, "id"))
	if !ok {
		http.Error(w, "employee not found", http.StatusNotFound)
		return
	}

	skills := emp.Skills
	*emp = *newEmployee(emp.ID, draft)
	emp.Skills = skills

	writeJSON(w, http.StatusOK, s.toModel(emp))
}

func (s *Server) deleteEmployee(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := chi.URLParam(r, "id")
	idx := slices.IndexFunc(s.employees, func(e *employee) bool { return e.ID == id })
	if idx < 0 {
		http.Error(w, "employee not found", http.StatusNotFound)
		return
	}

	s.employees = slices.Delete(s.employees, idx, idx+1)
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) attachQualification(w http.ResponseWriter, r *http.Request) {
	s.changeSkill(w, r, func(emp *employee, skill string) {
		if !slices.Contains(emp.Skills, skill) {
			emp.Skills = append(emp.Skills, skill)
		}
	})
}

func (s *Server) detachQualification(w http.ResponseWriter, r *http.Request) {
	s.changeSkill(w, r, func(emp *employee, skill string) {
		emp.Skills = slices.DeleteFunc(emp.Skills, func(held string) bool { return held == skill })
	})
}

func (s *Server) changeSkill(w http.ResponseWriter, r *http.Request, apply func(*employee, string)) {
	var body models.SkillBody
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil || body.Skill == "" {
		http.Error(w, "skill is required", http.StatusBadRequest)
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	emp, ok := s.employeeByID(chi.URLParam(r, "id"))
	if !ok {
		http.Error(w, "employee not found", http.StatusNotFound)
		return
	}
	if _, known := s.qualificationBySkill(body.Skill); !known {
		http.Error(w, "qualification not found", http.StatusNotFound)
		return
	}

	apply(emp, body.Skill)

	type skillSet struct {
		ID             string                 `json:"id"`
		FirstName      string                 `json:"firstName"`
		LastName       string                 `json:"lastName"`
		Qualifications []models.Qualification `json:"qualifications"`
	}

	resp := skillSet{ID: emp.ID, FirstName: emp.FirstName, LastName: emp.LastName}
	for _, skill := range emp.Skills {
		q, _ := s.qualificationBySkill(skill)
		resp.Qualifications = append(resp.Qualifications, q)
	}

	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) listQualifications(w http.ResponseWriter, _ *http.Request) {
	s.mu.Lock()
	out := slices.Clone(s.qualifications)
	s.mu.Unlock()

	if out == nil {
		out = []models.Qualification{}
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) createQualification(w http.ResponseWriter, r *http.Request) {
	var body models.SkillBody
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil || body.Skill == "" {
		http.Error(w, "skill is required", http.StatusBadRequest)
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.qualificationBySkill(body.Skill); exists {
		http.Error(w, "qualification already exists", http.StatusConflict)
		return
	}

	q := models.Qualification{ID: models.ID(s.nextID()), Skill: body.Skill}
	s.qualifications = append(s.qualifications, q)

	writeJSON(w, http.StatusCreated, q)
}

func (s *Server) updateQualification(w http.ResponseWriter, r *http.Request) {
	var body models.SkillBody
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil || body.Skill == "" {
		http.Error(w, "skill is required", http.StatusBadRequest)
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	idx := s.qualificationIndex(chi.URLParam(r, "id"))
	if idx < 0 {
		http.Error(w, "qualification not found", http.StatusNotFound)
		return
	}

	old := s.qualifications[idx].Skill
	s.qualifications[idx].Skill = body.Skill
	for _, emp := range s.employees {
		for i, skill := range emp.Skills {
			if skill == old {
				emp.Skills[i] = body.Skill
			}
		}
	}

	writeJSON(w, http.StatusOK, s.qualifications[idx])
}

func (s *Server) deleteQualification(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := s.qualificationIndex(chi.URLParam(r, "id"))
	if idx < 0 {
		http.Error(w, "qualification not found", http.StatusNotFound)
		return
	}

	s.qualifications = slices.Delete(s.qualifications, idx, idx+1)
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) employeesByQualification(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := s.qualificationIndex(chi.URLParam(r, "id"))
	if idx < 0 {
		http.Error(w, "qualification not found", http.StatusNotFound)
		return
	}
	q := s.qualifications[idx]

	entries := make([]reverseEntry, 0)
	for _, emp := range s.employees {
		if !slices.Contains(emp.Skills, q.Skill) {
			continue
		}
		entries = append(entries, reverseEntry{ID: s.encodeID(emp.ID), FirstName: emp.FirstName, LastName: emp.LastName})
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"qualification": q,
		"employees":     entries,
	})
}

func (s *Server) encodeID(id string) json.RawMessage {
	if _, err := strconv.Atoi(id); err == nil && s.sequential {
		return json.RawMessage(id)
	}

	encoded, _ := json.Marshal(id)
	return encoded
}

func (s *Server) employeeByID(id string) (*employee, bool) {
	for _, emp := range s.employees {
		if emp.ID == id {
			return emp, true
		}
	}

	return nil, false
}

func (s *Server) qualificationIndex(id string) int {
	return slices.IndexFunc(s.qualifications, func(q models.Qualification) bool { return q.ID.String() == id })
}

func (s *Server) qualificationBySkill(skill string) (models.Qualification, bool) {
	for _, q := range s.qualifications {
		if q.Skill == skill {
			return q, true
		}
	}

	return models.Qualification{}, false
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
