package employees

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"

	"github.com/UnknownOlympus/athena/internal/auth"
	"github.com/UnknownOlympus/athena/internal/client"
	"github.com/UnknownOlympus/athena/internal/lib/logger/sl"
	"github.com/UnknownOlympus/athena/internal/models"
)

// API is the transport the client sends its requests through.
type API interface {
	Do(ctx context.Context, method, path string, body any, token string) ([]byte, error)
}

// Client performs CRUD and qualification attach/detach calls on the employee resource.
//
// Reads never return errors: a failure is recorded in Status and List reports ok=false.
// Writes return the error so the caller does not patch its cache.
type Client struct {
	log    *slog.Logger
	api    API
	tokens auth.TokenProvider
	status client.Tracker
}

func NewClient(log *slog.Logger, api API, tokens auth.TokenProvider) *Client {
	return &Client{log: log, api: api, tokens: tokens}
}

func (c *Client) initLogger(opn string) *slog.Logger {
	return c.log.With(
		sl.Op(opn),
		slog.String("division", "employee"),
	)
}

// Status returns the loading/error state shared by all operations of this client.
func (c *Client) Status() client.Status {
	return c.status.Snapshot()
}

// List fetches all employees. ok is false when the request failed.
func (c *Client) List(ctx context.Context) ([]models.Employee, bool) {
	const opn = "Employee.List"
	log := c.initLogger(opn)

	c.status.Begin()
	defer c.status.End()

	data, err := c.send(ctx, http.MethodGet, "/employees", nil)
	if err != nil {
		c.status.Fail("failed to load employees: " + err.Error())
		log.WarnContext(ctx, "Failed to load employees", sl.Err(err))
		return nil, false
	}

	employees, err := client.Decode[[]models.Employee](data)
	if err != nil {
		c.status.Fail("failed to load employees: " + err.Error())
		log.WarnContext(ctx, "Failed to decode employees", sl.Err(err))
		return nil, false
	}

	log.DebugContext(ctx, "Employees loaded", "count", len(employees))
	return employees, true
}

// Create posts a new employee. The returned record carries no qualifications yet.
func (c *Client) Create(ctx context.Context, draft models.EmployeeDraft) (models.Employee, error) {
	const opn = "Employee.Create"

	data, err := c.write(ctx, opn, http.MethodPost, "/employees", draft)
	if err != nil {
		return models.Employee{}, fmt.Errorf("failed to create employee: %w", err)
	}

	created, err := client.Decode[models.Employee](data)
	if err != nil {
		c.status.Fail(err.Error())
		return models.Employee{}, fmt.Errorf("failed to create employee: %w", err)
	}

	return created, nil
}

// Update replaces the mutable fields of an employee.
func (c *Client) Update(ctx context.Context, id models.ID, draft models.EmployeeDraft) (models.Patch, error) {
	const opn = "Employee.Update"

	data, err := c.write(ctx, opn, http.MethodPut, employeePath(id), draft)
	if err != nil {
		return nil, fmt.Errorf("failed to update employee %s: %w", id, err)
	}

	return models.Patch(data), nil
}

// Remove deletes an employee. It reports true on success.
func (c *Client) Remove(ctx context.Context, id models.ID) (bool, error) {
	const opn = "Employee.Remove"

	if _, err := c.write(ctx, opn, http.MethodDelete, employeePath(id), nil); err != nil {
		return false, fmt.Errorf("failed to delete employee %s: %w", id, err)
	}

	return true, nil
}

// AttachQualification adds a skill to the employee's qualification set.
func (c *Client) AttachQualification(ctx context.Context, id models.ID, skill string) (json.RawMessage, error) {
	const opn = "Employee.AttachQualification"

	data, err := c.write(ctx, opn, http.MethodPost, employeePath(id)+"/qualifications", models.SkillBody{Skill: skill})
	if err != nil {
		return nil, fmt.Errorf("failed to attach qualification %q to employee %s: %w", skill, id, err)
	}

	return json.RawMessage(data), nil
}

// DetachQualification removes a skill from the employee's qualification set.
func (c *Client) DetachQualification(ctx context.Context, id models.ID, skill string) (json.RawMessage, error) {
	const opn = "Employee.DetachQualification"

	data, err := c.write(ctx, opn, http.MethodDelete, employeePath(id)+"/qualifications", models.SkillBody{Skill: skill})
	if err != nil {
		return nil, fmt.Errorf("failed to detach qualification %q from employee %s: %w", skill, id, err)
	}

	return json.RawMessage(data), nil
}

func (c *Client) write(ctx context.Context, opn, method, path string, body any) ([]byte, error) {
	log := c.initLogger(opn)

	c.status.Begin()
	defer c.status.End()

	data, err := c.send(ctx, method, path, body)
	if err != nil {
		c.status.Fail(err.Error())
		log.ErrorContext(ctx, "Employee write failed", "method", method, "path", path, sl.Err(err))
		return nil, err
	}

	log.DebugContext(ctx, "Employee write completed", "method", method, "path", path)
	return data, nil
}

func (c *Client) send(ctx context.Context, method, path string, body any) ([]byte, error) {
	token, err := c.tokens.Token(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get bearer token: %w", err)
	}

	return c.api.Do(ctx, method, path, body, token)
}

func employeePath(id models.ID) string {
	return "/employees/" + url.PathEscape(id.String())
}
