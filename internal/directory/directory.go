package directory

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"slices"
	"strings"
	"sync"

	"github.com/UnknownOlympus/athena/internal/client"
	"github.com/UnknownOlympus/athena/internal/lib/logger/sl"
	"github.com/UnknownOlympus/athena/internal/metrics"
	"github.com/UnknownOlympus/athena/internal/models"
)

var (
	ErrUnknownEmployee      = errors.New("employee is not in the cache")
	ErrUnknownQualification = errors.New("qualification is not in the cache")
)

// None is the selection that disables the qualification filter.
const None models.ID = ""

// EmployeeAPI is the employee collection client.
type EmployeeAPI interface {
	List(ctx context.Context) ([]models.Employee, bool)
	Create(ctx context.Context, draft models.EmployeeDraft) (models.Employee, error)
	Update(ctx context.Context, id models.ID, draft models.EmployeeDraft) (models.Patch, error)
	Remove(ctx context.Context, id models.ID) (bool, error)
	AttachQualification(ctx context.Context, id models.ID, skill string) (json.RawMessage, error)
	DetachQualification(ctx context.Context, id models.ID, skill string) (json.RawMessage, error)
	Status() client.Status
}

// QualificationAPI is the qualification collection client.
type QualificationAPI interface {
	List(ctx context.Context) ([]models.Qualification, bool)
	Create(ctx context.Context, skill string) *models.Qualification
	Update(ctx context.Context, id models.ID, skill string) *models.Qualification
	Remove(ctx context.Context, id models.ID) bool
	EmployeesFor(ctx context.Context, id models.ID) ([]models.ID, bool)
	Status() client.Status
}

// Status combines the flags of both collection clients.
type Status struct {
	Employees      client.Status
	Qualifications client.Status
}

// Stats are the counters shown on the dashboard.
type Stats struct {
	Employees      int
	Qualifications int
	Filtered       int
	Selection      models.ID
}

// Directory owns the employee and qualification caches and derives the filtered
// employee view for the selected qualification.
//
// The filtered view always equals the cached employees whose id is in the latest
// reverse lookup for the selection, or the whole cache when nothing is selected.
// It is recomputed after every change of the employee cache.
type Directory struct {
	log       *slog.Logger
	employees EmployeeAPI
	quals     QualificationAPI
	metrics   *metrics.Metrics

	mu             sync.RWMutex
	all            []models.Employee
	qualifications []models.Qualification
	selection      models.ID
	members        map[string]struct{}
	filtered       []models.Employee
}

// New creates an empty directory. metrics may be nil.
func New(log *slog.Logger, employees EmployeeAPI, quals QualificationAPI, m *metrics.Metrics) *Directory {
	return &Directory{
		log:       log,
		employees: employees,
		quals:     quals,
		metrics:   m,
		filtered:  []models.Employee{},
	}
}

func (d *Directory) initLogger(opn string) *slog.Logger {
	return d.log.With(
		sl.Op(opn),
		slog.String("division", "directory"),
	)
}

// Status returns the loading/error flags of both clients.
func (d *Directory) Status() Status {
	return Status{Employees: d.employees.Status(), Qualifications: d.quals.Status()}
}

// Selection returns the active qualification filter, or None.
func (d *Directory) Selection() models.ID {
	d.mu.RLock()
	defer d.mu.RUnlock()

	return d.selection
}

// Employees returns a copy of the full employee cache.
func (d *Directory) Employees() []models.Employee {
	d.mu.RLock()
	defer d.mu.RUnlock()

	return cloneEmployees(d.all)
}

// Filtered returns a copy of the current filtered view.
func (d *Directory) Filtered() []models.Employee {
	d.mu.RLock()
	defer d.mu.RUnlock()

	return cloneEmployees(d.filtered)
}

// Qualifications returns a copy of the qualification cache.
func (d *Directory) Qualifications() []models.Qualification {
	d.mu.RLock()
	defer d.mu.RUnlock()

	return slices.Clone(d.qualifications)
}

// Employee looks up a cached employee by id.
func (d *Directory) Employee(id models.ID) (models.Employee, bool) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	idx := d.indexOf(id)
	if idx < 0 {
		return models.Employee{}, false
	}

	return d.all[idx].Clone(), true
}

// Qualification looks up a cached qualification by id.
func (d *Directory) Qualification(id models.ID) (models.Qualification, bool) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	key := NormalizeID(id)
	for _, q := range d.qualifications {
		if NormalizeID(q.ID) == key {
			return q, true
		}
	}

	return models.Qualification{}, false
}

// Stats returns the dashboard counters.
func (d *Directory) Stats() Stats {
	d.mu.RLock()
	defer d.mu.RUnlock()

	return Stats{
		Employees:      len(d.all),
		Qualifications: len(d.qualifications),
		Filtered:       len(d.filtered),
		Selection:      d.selection,
	}
}

// Refresh re-fetches both collections and re-derives the filtered view.
// A failed read keeps the previous cache. ok reports whether both reads succeeded.
func (d *Directory) Refresh(ctx context.Context) bool {
	const opn = "Directory.Refresh"
	log := d.initLogger(opn)

	// qualifications first, employee references are resolved against them
	qualsOK := d.RefreshQualifications(ctx)
	employeesOK := d.RefreshEmployees(ctx)

	if !qualsOK || !employeesOK {
		log.WarnContext(ctx, "Refresh incomplete, keeping previous cache",
			"employees_ok", employeesOK, "qualifications_ok", qualsOK)
		return false
	}

	log.DebugContext(ctx, "Refresh complete", "employees", len(d.Employees()), "qualifications", len(d.Qualifications()))
	return true
}

// RefreshEmployees re-fetches the employee collection and re-derives the filtered view.
func (d *Directory) RefreshEmployees(ctx context.Context) bool {
	list, ok := d.employees.List(ctx)
	if !ok {
		return false
	}

	d.mu.Lock()
	d.all = d.canonicalize(list)
	d.mu.Unlock()

	d.reapply(ctx)

	return true
}

// RefreshQualifications re-fetches the qualification collection. A selection that no
// longer exists is cleared.
func (d *Directory) RefreshQualifications(ctx context.Context) bool {
	list, ok := d.quals.List(ctx)
	if !ok {
		return false
	}

	d.mu.Lock()
	d.qualifications = list
	d.all = d.canonicalize(d.all)
	stale := d.selection != None && !containsQualification(list, d.selection)
	if stale {
		d.selection = None
		d.members = nil
		d.derive()
	}
	d.mu.Unlock()

	if stale {
		d.initLogger("Directory.RefreshQualifications").InfoContext(ctx, "Selected qualification is gone, filter cleared")
	}

	return true
}

// ApplyFilter selects a qualification (or None) and returns the new filtered view.
// A failed reverse lookup yields an empty view, never the unfiltered one.
func (d *Directory) ApplyFilter(ctx context.Context, selection models.ID) []models.Employee {
	const opn = "Directory.ApplyFilter"
	log := d.initLogger(opn)

	d.mu.Lock()
	d.selection = selection
	d.members = nil
	if selection == None {
		d.derive()
		view := cloneEmployees(d.filtered)
		d.mu.Unlock()
		return view
	}
	d.mu.Unlock()

	ids, ok := d.quals.EmployeesFor(ctx, selection)
	if !ok {
		log.WarnContext(ctx, "Reverse lookup failed, showing no employees", "qualification", selection)
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	// a newer selection owns the view now
	if d.selection != selection {
		return cloneEmployees(d.filtered)
	}

	if ok {
		d.members = idSet(ids)
	} else {
		d.members = map[string]struct{}{}
	}
	d.derive()

	return cloneEmployees(d.filtered)
}

// reapply recomputes the filtered view for the current selection after the employee
// cache changed.
func (d *Directory) reapply(ctx context.Context) {
	selection := d.Selection()
	if selection == None {
		d.mu.Lock()
		d.derive()
		d.mu.Unlock()
		return
	}

	d.ApplyFilter(ctx, selection)
}

// derive rebuilds the filtered view from the cache and the membership. Callers hold mu.
func (d *Directory) derive() {
	if d.selection == None {
		d.filtered = cloneEmployees(d.all)
	} else {
		filtered := make([]models.Employee, 0, len(d.members))
		for _, emp := range d.all {
			if _, ok := d.members[NormalizeID(emp.ID)]; ok {
				filtered = append(filtered, emp.Clone())
			}
		}
		d.filtered = filtered
	}

	if d.metrics != nil {
		d.metrics.CachedItems.WithLabelValues("employees").Set(float64(len(d.all)))
		d.metrics.CachedItems.WithLabelValues("qualifications").Set(float64(len(d.qualifications)))
		d.metrics.CachedItems.WithLabelValues("filtered").Set(float64(len(d.filtered)))
	}
}

func (d *Directory) indexOf(id models.ID) int {
	key := NormalizeID(id)

	return slices.IndexFunc(d.all, func(e models.Employee) bool { return NormalizeID(e.ID) == key })
}

func containsQualification(list []models.Qualification, id models.ID) bool {
	key := NormalizeID(id)

	return slices.ContainsFunc(list, func(q models.Qualification) bool { return NormalizeID(q.ID) == key })
}

func cloneEmployees(list []models.Employee) []models.Employee {
	out := make([]models.Employee, 0, len(list))
	for _, emp := range list {
		out = append(out, emp.Clone())
	}

	return out
}

// FilterByName keeps employees whose first name contains needle, ignoring case.
// View callers apply it on top of the filtered view.
func FilterByName(view []models.Employee, needle string) []models.Employee {
	needle = strings.ToLower(strings.TrimSpace(needle))
	if needle == "" {
		return view
	}

	out := make([]models.Employee, 0, len(view))
	for _, emp := range view {
		if strings.Contains(strings.ToLower(emp.FirstName), needle) {
			out = append(out, emp)
		}
	}

	return out
}
