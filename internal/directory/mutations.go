package directory

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/UnknownOlympus/athena/internal/client"
	"github.com/UnknownOlympus/athena/internal/lib/logger/sl"
	"github.com/UnknownOlympus/athena/internal/models"
)

// CreateEmployee creates the record, attaches each selected qualification in order and
// appends the employee with those skills to the cache.
//
// If the create response is unreadable or an attach call fails, the employee already exists
// remotely, so the employee cache is re-fetched instead of patched and the error is returned.
func (d *Directory) CreateEmployee(
	ctx context.Context,
	draft models.EmployeeDraft,
	selected []models.Qualification,
) (models.Employee, error) {
	const opn = "Directory.CreateEmployee"
	log := d.initLogger(opn)

	created, err := d.employees.Create(ctx, draft)
	if err != nil {
		if errors.Is(err, client.ErrDecode) {
			log.ErrorContext(ctx, "Unreadable create response, re-fetching employees", sl.Err(err))
			d.RefreshEmployees(ctx)
		}
		return models.Employee{}, err
	}

	for _, q := range selected {
		if _, err = d.employees.AttachQualification(ctx, created.ID, q.Skill); err != nil {
			log.ErrorContext(ctx, "Attach failed after create, re-fetching employees",
				"employee", created.ID, "skill", q.Skill, sl.Err(err))
			d.RefreshEmployees(ctx)
			return models.Employee{}, err
		}
	}

	// the creation response carries no qualifications
	created.Qualifications = skillRefs(selected)

	d.mu.Lock()
	d.all = append(d.all, created.Clone())
	d.mu.Unlock()

	d.reapply(ctx)

	log.InfoContext(ctx, "Employee created", "employee", created.ID, "qualifications", len(selected))
	return created, nil
}

// UpdateEmployee replaces the mutable fields of a cached employee and merges the server
// response over the cached record.
//
// When selected is not nil it is the complete new qualification set: skills missing from
// the record are attached, skills no longer selected are detached.
func (d *Directory) UpdateEmployee(
	ctx context.Context,
	id models.ID,
	draft models.EmployeeDraft,
	selected []models.Qualification,
) (models.Employee, error) {
	const opn = "Directory.UpdateEmployee"
	log := d.initLogger(opn)

	prev, ok := d.Employee(id)
	if !ok {
		return models.Employee{}, fmt.Errorf("%w: %s", ErrUnknownEmployee, id)
	}

	patch, err := d.employees.Update(ctx, prev.ID, draft)
	if err != nil {
		return models.Employee{}, err
	}

	merged, err := patch.ApplyTo(prev)
	if err != nil {
		log.ErrorContext(ctx, "Unreadable update response, re-fetching employees", sl.Err(err))
		d.RefreshEmployees(ctx)
		return models.Employee{}, err
	}

	if selected != nil {
		if err = d.syncSkills(ctx, prev, selected); err != nil {
			log.ErrorContext(ctx, "Qualification change failed after update, re-fetching employees",
				"employee", id, sl.Err(err))
			d.RefreshEmployees(ctx)
			return models.Employee{}, err
		}
		merged.Qualifications = skillRefs(selected)
	}

	d.mu.Lock()
	merged.Qualifications = d.canonicalize([]models.Employee{merged})[0].Qualifications
	if idx := d.indexOf(id); idx >= 0 {
		d.all[idx] = merged.Clone()
	}
	d.mu.Unlock()

	d.reapply(ctx)

	log.InfoContext(ctx, "Employee updated", "employee", id)
	return merged, nil
}

func (d *Directory) syncSkills(ctx context.Context, prev models.Employee, selected []models.Qualification) error {
	held := prev.Skills()
	wanted := make([]string, 0, len(selected))
	for _, q := range selected {
		wanted = append(wanted, q.Skill)
	}

	for _, skill := range wanted {
		if slices.Contains(held, skill) {
			continue
		}
		if _, err := d.employees.AttachQualification(ctx, prev.ID, skill); err != nil {
			return err
		}
	}

	for _, skill := range held {
		if slices.Contains(wanted, skill) {
			continue
		}
		if _, err := d.employees.DetachQualification(ctx, prev.ID, skill); err != nil {
			return err
		}
	}

	return nil
}

// DeleteEmployees deletes every id concurrently and waits for all calls. Ids whose call
// succeeded are removed from the cache even when others fail; the first failure is
// returned.
func (d *Directory) DeleteEmployees(ctx context.Context, ids ...models.ID) ([]models.ID, error) {
	const opn = "Directory.DeleteEmployees"
	log := d.initLogger(opn)

	var (
		mu      sync.Mutex
		deleted = make([]models.ID, 0, len(ids))
		group   errgroup.Group
	)

	for _, id := range ids {
		group.Go(func() error {
			if _, err := d.employees.Remove(ctx, id); err != nil {
				return err
			}

			mu.Lock()
			deleted = append(deleted, id)
			mu.Unlock()

			return nil
		})
	}

	err := group.Wait()

	if len(deleted) > 0 {
		gone := idSet(deleted)

		d.mu.Lock()
		d.all = slices.DeleteFunc(d.all, func(e models.Employee) bool {
			_, ok := gone[NormalizeID(e.ID)]
			return ok
		})
		d.mu.Unlock()

		d.reapply(ctx)
	}

	if err != nil {
		log.ErrorContext(ctx, "Bulk delete partially failed",
			"requested", len(ids), "deleted", len(deleted), sl.Err(err))
		return deleted, err
	}

	log.InfoContext(ctx, "Employees deleted", "count", len(deleted))
	return deleted, nil
}

// CreateQualification creates a qualification and re-fetches the qualification cache.
// It returns nil when the create failed; the reason is in Status.
func (d *Directory) CreateQualification(ctx context.Context, skill string) *models.Qualification {
	created := d.quals.Create(ctx, skill)
	if created == nil {
		return nil
	}

	d.RefreshQualifications(ctx)

	return created
}

// UpdateQualification changes the skill text and re-fetches the qualification cache.
// Employees keep the old skill name until the employee cache is refreshed.
func (d *Directory) UpdateQualification(ctx context.Context, id models.ID, skill string) *models.Qualification {
	updated := d.quals.Update(ctx, id, skill)
	if updated == nil {
		return nil
	}

	d.RefreshQualifications(ctx)

	return updated
}

// DeleteQualification deletes a qualification and re-fetches the qualification cache.
// Employees are not touched. If it was the active filter, the filter is cleared.
func (d *Directory) DeleteQualification(ctx context.Context, id models.ID) bool {
	if !d.quals.Remove(ctx, id) {
		return false
	}

	d.mu.Lock()
	if d.selection != None && NormalizeID(d.selection) == NormalizeID(id) {
		d.selection = None
		d.members = nil
		d.derive()
	}
	d.qualifications = slices.DeleteFunc(d.qualifications, func(q models.Qualification) bool {
		return NormalizeID(q.ID) == NormalizeID(id)
	})
	d.mu.Unlock()

	d.RefreshQualifications(ctx)

	return true
}
