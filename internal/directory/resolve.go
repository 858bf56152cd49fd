package directory

import "github.com/UnknownOlympus/athena/internal/models"

// canonicalize resolves each employee's qualification entries against the qualification
// cache so every entry carries both id and skill. Callers hold mu.
func (d *Directory) canonicalize(list []models.Employee) []models.Employee {
	out := make([]models.Employee, 0, len(list))
	for _, emp := range list {
		emp = emp.Clone()
		for i, ref := range emp.Qualifications {
			emp.Qualifications[i] = resolveRef(d.qualifications, ref)
		}
		out = append(out, emp)
	}

	return out
}

// resolveRef matches by skill name first, then by id. An entry the cache does not know
// keeps its own data; a bare skill name then doubles as its id.
func resolveRef(qualifications []models.Qualification, ref models.QualificationRef) models.QualificationRef {
	for _, q := range qualifications {
		if q.Skill == ref.Skill {
			return models.QualificationRef{ID: q.ID, Skill: q.Skill, Named: ref.Named}
		}
	}

	if ref.ID != "" {
		key := NormalizeID(ref.ID)
		for _, q := range qualifications {
			if NormalizeID(q.ID) == key {
				return models.QualificationRef{ID: q.ID, Skill: q.Skill, Named: ref.Named}
			}
		}
		return ref
	}

	return models.QualificationRef{ID: models.ID(ref.Skill), Skill: ref.Skill, Named: ref.Named}
}

// QualificationsOf returns the qualifications held by a cached employee, resolved
// against the qualification cache.
func (d *Directory) QualificationsOf(id models.ID) ([]models.Qualification, bool) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	idx := d.indexOf(id)
	if idx < 0 {
		return nil, false
	}

	refs := d.all[idx].Qualifications
	out := make([]models.Qualification, 0, len(refs))
	for _, ref := range refs {
		resolved := resolveRef(d.qualifications, ref)
		out = append(out, models.Qualification{ID: resolved.ID, Skill: resolved.Skill})
	}

	return out, true
}

func skillRefs(selected []models.Qualification) []models.QualificationRef {
	refs := make([]models.QualificationRef, 0, len(selected))
	for _, q := range selected {
		refs = append(refs, models.QualificationRef{ID: q.ID, Skill: q.Skill, Named: true})
	}

	return refs
}
