package directory_test

import (
	"fmt"
	"log/slog"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/UnknownOlympus/athena/internal/apitest"
	"github.com/UnknownOlympus/athena/internal/client"
	"github.com/UnknownOlympus/athena/internal/directory"
	"github.com/UnknownOlympus/athena/internal/models"
)

func TestCreateEmployee_WithQualifications(t *testing.T) {
	srv := apitest.NewServer()
	defer srv.Close()

	java := srv.AddQualification("Java")
	golang := srv.AddQualification("Go")
	dir, _ := newDirectory(t, srv)

	created, err := dir.CreateEmployee(t.Context(), draft("Anna"), []models.Qualification{java, golang})
	require.NoError(t, err)

	cached, ok := dir.Employee(created.ID)
	require.True(t, ok)
	assert.Equal(t, []string{"Java", "Go"}, cached.Skills())
	assert.Equal(t, []string{"Java", "Go"}, srv.Employees()[0].Skills())
	assert.Equal(t, []string{
		"POST /employees",
		"POST /employees/" + created.ID.String() + "/qualifications",
		"POST /employees/" + created.ID.String() + "/qualifications",
	}, srv.Requests()[2:5])
}

func TestCreateEmployee_JoinsActiveFilter(t *testing.T) {
	srv := apitest.NewServer()
	defer srv.Close()

	java := srv.AddQualification("Java")
	srv.AddEmployee(draft("Ben"))
	dir, _ := newDirectory(t, srv)

	require.Empty(t, dir.ApplyFilter(t.Context(), java.ID))

	created, err := dir.CreateEmployee(t.Context(), draft("Anna"), []models.Qualification{java})
	require.NoError(t, err)

	assert.Equal(t, []models.ID{created.ID}, ids(dir.Filtered()))
}

func TestCreateEmployee_CreateFailureLeavesCache(t *testing.T) {
	srv := apitest.NewServer()
	defer srv.Close()

	srv.AddEmployee(draft("Ben"))
	dir, _ := newDirectory(t, srv)
	before := dir.Employees()

	srv.Fail(http.MethodPost, "/employees", http.StatusBadRequest, "postcode is invalid")

	_, err := dir.CreateEmployee(t.Context(), draft("Anna"), nil)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "postcode is invalid")
	assert.Equal(t, before, dir.Employees())
}

func TestCreateEmployee_AttachFailureRefetches(t *testing.T) {
	srv := apitest.NewServer()
	defer srv.Close()

	java := srv.AddQualification("Java")
	dir, _ := newDirectory(t, srv)

	srv.Fail(http.MethodPost, "/employees/{id}/qualifications", http.StatusInternalServerError, "attach failed")

	_, err := dir.CreateEmployee(t.Context(), draft("Anna"), []models.Qualification{java})

	require.Error(t, err)
	assert.Equal(t, http.StatusInternalServerError, client.StatusCode(err))

	// the record exists remotely, so the cache shows it without the skill
	cached := dir.Employees()
	require.Len(t, cached, 1)
	assert.Equal(t, "Anna", cached[0].FirstName)
	assert.Empty(t, cached[0].Skills())
}

func TestCreateEmployee_UnreadableResponseRefetches(t *testing.T) {
	emp := &stubEmployees{list: []models.Employee{{ID: "1", FirstName: "Ben"}}}
	emp.create = func(d models.EmployeeDraft) (models.Employee, error) {
		// stored remotely, but the answer is garbage
		emp.list = append(emp.list, models.Employee{ID: "2", FirstName: d.FirstName})
		_, err := client.Decode[models.Employee]([]byte(`<html>`))
		return models.Employee{}, fmt.Errorf("failed to create employee: %w", err)
	}
	dir := directory.New(slog.New(slog.DiscardHandler), emp, &stubQualifications{}, nil)
	require.True(t, dir.Refresh(t.Context()))

	_, err := dir.CreateEmployee(t.Context(), draft("Anna"), nil)

	require.ErrorIs(t, err, client.ErrDecode)
	assert.Equal(t, 2, emp.lists)
	assert.Equal(t, []models.ID{"1", "2"}, ids(dir.Employees()))
}

func TestCreateEmployee_RejectedCreateDoesNotRefetch(t *testing.T) {
	emp := &stubEmployees{list: []models.Employee{{ID: "1", FirstName: "Ben"}}}
	dir := directory.New(slog.New(slog.DiscardHandler), emp, &stubQualifications{}, nil)
	require.True(t, dir.Refresh(t.Context()))

	_, err := dir.CreateEmployee(t.Context(), draft("Anna"), nil)

	require.ErrorIs(t, err, assert.AnError)
	assert.Equal(t, 1, emp.lists)
}

func TestUpdateEmployee_MergesResponse(t *testing.T) {
	srv := apitest.NewServer()
	defer srv.Close()

	srv.AddQualification("Java")
	anna := srv.AddEmployee(draft("Anna"), "Java")
	dir, _ := newDirectory(t, srv)

	changes := draft("Anne")
	changes.City = "Hamburg"

	updated, err := dir.UpdateEmployee(t.Context(), anna.ID, changes, nil)
	require.NoError(t, err)

	assert.Equal(t, "Anne", updated.FirstName)
	assert.Equal(t, "Hamburg", updated.City)
	assert.Equal(t, []string{"Java"}, updated.Skills())

	cached, ok := dir.Employee(anna.ID)
	require.True(t, ok)
	assert.Equal(t, updated, cached)
}

func TestUpdateEmployee_ChangesQualifications(t *testing.T) {
	srv := apitest.NewServer()
	defer srv.Close()

	srv.AddQualification("Java")
	golang := srv.AddQualification("Go")
	anna := srv.AddEmployee(draft("Anna"), "Java")
	dir, _ := newDirectory(t, srv)

	updated, err := dir.UpdateEmployee(t.Context(), anna.ID, anna.Draft(), []models.Qualification{golang})
	require.NoError(t, err)

	assert.Equal(t, []string{"Go"}, updated.Skills())
	assert.Equal(t, golang.ID, updated.Qualifications[0].ID)
	assert.Equal(t, []string{"Go"}, srv.Employees()[0].Skills())
}

func TestUpdateEmployee_FailureLeavesCacheUnchanged(t *testing.T) {
	srv := apitest.NewServer()
	defer srv.Close()

	srv.AddQualification("Java")
	anna := srv.AddEmployee(draft("Anna"), "Java")
	srv.AddEmployee(draft("Ben"))
	dir, _ := newDirectory(t, srv)
	before := dir.Employees()

	srv.Fail(http.MethodPut, "/employees/"+anna.ID.String(), http.StatusBadRequest, "phone is invalid")

	_, err := dir.UpdateEmployee(t.Context(), anna.ID, draft("Anne"), nil)

	require.Error(t, err)
	assert.Equal(t, http.StatusBadRequest, client.StatusCode(err))
	assert.Equal(t, before, dir.Employees())
	assert.Equal(t, "phone is invalid", dir.Status().Employees.Err)
}

func TestUpdateEmployee_UnknownEmployee(t *testing.T) {
	srv := apitest.NewServer()
	defer srv.Close()

	dir, _ := newDirectory(t, srv)

	_, err := dir.UpdateEmployee(t.Context(), "missing", draft("Anna"), nil)

	require.ErrorIs(t, err, directory.ErrUnknownEmployee)
}

func TestDeleteEmployees(t *testing.T) {
	srv := apitest.NewServer()
	defer srv.Close()

	a := srv.AddEmployee(draft("Anna"))
	b := srv.AddEmployee(draft("Ben"))
	c := srv.AddEmployee(draft("Carl"))
	dir, _ := newDirectory(t, srv)

	deleted, err := dir.DeleteEmployees(t.Context(), a.ID, b.ID)

	require.NoError(t, err)
	assert.ElementsMatch(t, []models.ID{a.ID, b.ID}, deleted)
	assert.Equal(t, []models.ID{c.ID}, ids(dir.Employees()))
	assert.Equal(t, []models.ID{c.ID}, ids(dir.Filtered()))
}

func TestDeleteEmployees_PartialFailure(t *testing.T) {
	srv := apitest.NewServer(apitest.WithSequentialIDs())
	defer srv.Close()

	srv.AddEmployee(draft("Anna"))
	srv.AddEmployee(draft("Ben"))
	srv.AddEmployee(draft("Carl"))
	dir, _ := newDirectory(t, srv)

	srv.Fail(http.MethodDelete, "/employees/2", http.StatusConflict, "employee is locked")

	deleted, err := dir.DeleteEmployees(t.Context(), "1", "2")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "employee is locked")
	assert.Equal(t, []models.ID{"1"}, deleted)
	assert.Equal(t, []models.ID{"2", "3"}, ids(dir.Employees()))
}

func TestCreateQualification(t *testing.T) {
	srv := apitest.NewServer()
	defer srv.Close()

	dir, _ := newDirectory(t, srv)

	created := dir.CreateQualification(t.Context(), "Rust")
	require.NotNil(t, created)

	got, ok := dir.Qualification(created.ID)
	require.True(t, ok)
	assert.Equal(t, "Rust", got.Skill)

	assert.Nil(t, dir.CreateQualification(t.Context(), "Rust"))
	assert.NotEmpty(t, dir.Status().Qualifications.Err)
	assert.Len(t, dir.Qualifications(), 1)
}

func TestUpdateQualification(t *testing.T) {
	srv := apitest.NewServer()
	defer srv.Close()

	java := srv.AddQualification("Java")
	anna := srv.AddEmployee(draft("Anna"), "Java")
	dir, _ := newDirectory(t, srv)

	updated := dir.UpdateQualification(t.Context(), java.ID, "Java 21")
	require.NotNil(t, updated)

	got, ok := dir.Qualification(java.ID)
	require.True(t, ok)
	assert.Equal(t, "Java 21", got.Skill)

	// employees pick up the new name on their next refresh
	require.True(t, dir.RefreshEmployees(t.Context()))
	quals, ok := dir.QualificationsOf(anna.ID)
	require.True(t, ok)
	assert.Equal(t, []models.Qualification{{ID: java.ID, Skill: "Java 21"}}, quals)
}

func TestDeleteQualification_ClearsSelectedFilter(t *testing.T) {
	srv := apitest.NewServer()
	defer srv.Close()

	java := srv.AddQualification("Java")
	srv.AddEmployee(draft("Anna"), "Java")
	srv.AddEmployee(draft("Ben"))
	dir, _ := newDirectory(t, srv)

	require.Len(t, dir.ApplyFilter(t.Context(), java.ID), 1)

	require.True(t, dir.DeleteQualification(t.Context(), java.ID))

	assert.Equal(t, directory.None, dir.Selection())
	assert.Len(t, dir.Filtered(), 2)
	assert.Empty(t, dir.Qualifications())
	// employees are not touched
	assert.Equal(t, []string{"Java"}, dir.Employees()[0].Skills())
}

func TestDeleteQualification_Failure(t *testing.T) {
	srv := apitest.NewServer()
	defer srv.Close()

	srv.AddQualification("Java")
	dir, _ := newDirectory(t, srv)

	assert.False(t, dir.DeleteQualification(t.Context(), "missing"))
	assert.Len(t, dir.Qualifications(), 1)
	assert.Contains(t, dir.Status().Qualifications.Err, "failed to delete qualification")
}
