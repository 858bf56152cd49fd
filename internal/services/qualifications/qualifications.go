package qualifications

import (
	"context"
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

// Client performs CRUD calls on the qualification resource and the reverse lookup of
// employees holding a qualification.
//
// No operation returns an error. Failures are recorded in Status and the operation
// returns a nil record, false or ok=false.
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
		slog.String("division", "qualification"),
	)
}

// Status returns the loading/error state shared by all operations of this client.
func (c *Client) Status() client.Status {
	return c.status.Snapshot()
}

// List fetches all qualifications. ok is false when the request failed.
func (c *Client) List(ctx context.Context) ([]models.Qualification, bool) {
	data, ok := c.call(ctx, "Qualification.List", http.MethodGet, "/qualifications", nil,
		"failed to load qualifications")
	if !ok {
		return nil, false
	}

	list, ok := decode[[]models.Qualification](c, "failed to load qualifications", data)
	if !ok {
		return nil, false
	}

	return list, true
}

// Create posts a new qualification and returns the stored record, or nil on failure.
func (c *Client) Create(ctx context.Context, skill string) *models.Qualification {
	data, ok := c.call(ctx, "Qualification.Create", http.MethodPost, "/qualifications",
		models.SkillBody{Skill: skill}, "failed to create qualification")
	if !ok {
		return nil
	}

	created, ok := decode[models.Qualification](c, "failed to create qualification", data)
	if !ok {
		return nil
	}

	return &created
}

// Update changes the skill text of a qualification and returns the stored record, or nil on failure.
func (c *Client) Update(ctx context.Context, id models.ID, skill string) *models.Qualification {
	data, ok := c.call(ctx, "Qualification.Update", http.MethodPut, qualificationPath(id),
		models.SkillBody{Skill: skill}, "failed to update qualification")
	if !ok {
		return nil
	}

	updated, ok := decode[models.Qualification](c, "failed to update qualification", data)
	if !ok {
		return nil
	}

	return &updated
}

// Remove deletes a qualification. It does not touch employees holding it.
func (c *Client) Remove(ctx context.Context, id models.ID) bool {
	_, ok := c.call(ctx, "Qualification.Remove", http.MethodDelete, qualificationPath(id), nil,
		"failed to delete qualification")

	return ok
}

// EmployeesFor returns the ids of the employees holding the qualification. ok is false
// when the lookup failed.
func (c *Client) EmployeesFor(ctx context.Context, id models.ID) ([]models.ID, bool) {
	data, ok := c.call(ctx, "Qualification.EmployeesFor", http.MethodGet, qualificationPath(id)+"/employees", nil,
		"failed to load employees for qualification")
	if !ok {
		return nil, false
	}

	resp, ok := decode[models.QualificationEmployees](c, "failed to load employees for qualification", data)
	if !ok {
		return nil, false
	}

	ids := make([]models.ID, 0, len(resp.Employees))
	for _, ref := range resp.Employees {
		ids = append(ids, ref.ID)
	}

	return ids, true
}

func (c *Client) call(ctx context.Context, opn, method, path string, body any, failMsg string) ([]byte, bool) {
	log := c.initLogger(opn)

	c.status.Begin()
	defer c.status.End()

	token, err := c.tokens.Token(ctx)
	if err == nil {
		var data []byte
		data, err = c.api.Do(ctx, method, path, body, token)
		if err == nil {
			log.DebugContext(ctx, "Qualification request completed", "method", method, "path", path)
			return data, true
		}
	}

	c.status.Fail(fmt.Sprintf("%s: %v", failMsg, err))
	log.WarnContext(ctx, "Qualification request failed", "method", method, "path", path, sl.Err(err))

	return nil, false
}

func decode[T any](c *Client, failMsg string, data []byte) (T, bool) {
	out, err := client.Decode[T](data)
	if err != nil {
		c.status.Fail(fmt.Sprintf("%s: %v", failMsg, err))
		return out, false
	}

	return out, true
}

func qualificationPath(id models.ID) string {
	return "/qualifications/" + url.PathEscape(id.String())
}
