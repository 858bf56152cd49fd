// Package apitest runs an in-memory implementation of the employee management API
// for tests. It supports failure injection per route, artificial latency, numeric ids
// in reverse lookups and bearer token enforcement.
package apitest

import (
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"slices"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/UnknownOlympus/athena/internal/models"
)

type failure struct {
	status int
	body   string
}

type employee struct {
	ID        string   `json:"id"`
	FirstName string   `json:"firstName"`
	LastName  string   `json:"lastName"`
	Phone     string   `json:"phone"`
	Street    string   `json:"street"`
	Postcode  string   `json:"postcode"`
	City      string   `json:"city"`
	Skills    []string `json:"-"`
}

// Server is a fake of the remote API.
type Server struct {
	*httptest.Server

	mu             sync.Mutex
	employees      []*employee
	qualifications []models.Qualification
	failures       map[string]failure
	delays         map[string]time.Duration
	requests       []string
	secret         []byte
	sequential     bool
	records        bool
	seq            int
}

// Option configures the fake.
type Option func(*Server)

// WithSequentialIDs assigns "1", "2", ... instead of UUIDs. Reverse lookups then
// encode ids as JSON numbers, like the real backend does.
func WithSequentialIDs() Option {
	return func(s *Server) { s.sequential = true }
}

// WithQualificationRecords makes employee listings carry {id, skill} records instead
// of bare skill names.
func WithQualificationRecords() Option {
	return func(s *Server) { s.records = true }
}

// WithAuth requires an HS256 bearer token signed with secret on every request.
func WithAuth(secret []byte) Option {
	return func(s *Server) { s.secret = secret }
}

// NewServer starts the fake. Callers must Close it.
func NewServer(opts ...Option) *Server {
	srv := &Server{
		failures: make(map[string]failure),
		delays:   make(map[string]time.Duration),
	}
	for _, opt := range opts {
		opt(srv)
	}

	router := chi.NewRouter()
	router.Use(srv.record, srv.authenticate)

	router.Head("/", func(w http.ResponseWriter, _ *http.Request) { w.WriteHeader(http.StatusOK) })

	router.Route("/employees", func(r chi.Router) {
		r.Get("/", srv.handle(srv.listEmployees))
		r.Post("/", srv.handle(srv.createEmployee))
		r.Put("/{id}", srv.handle(srv.updateEmployee))
		r.Delete("/{id}", srv.handle(srv.deleteEmployee))
		r.Post("/{id}/qualifications", srv.handle(srv.attachQualification))
		r.Delete("/{id}/qualifications", srv.handle(srv.detachQualification))
	})

	router.Route("/qualifications", func(r chi.Router) {
		r.Get("/", srv.handle(srv.listQualifications))
		r.Post("/", srv.handle(srv.createQualification))
		r.Put("/{id}", srv.handle(srv.updateQualification))
		r.Delete("/{id}", srv.handle(srv.deleteQualification))
		r.Get("/{id}/employees", srv.handle(srv.employeesByQualification))
	})

	srv.Server = httptest.NewServer(router)

	return srv
}

// Token mints a bearer token accepted by a server created WithAuth(secret).
func Token(secret []byte, subject string) string {
	claims := jwt.RegisteredClaims{
		Subject:   subject,
		IssuedAt:  jwt.NewNumericDate(time.Now()),
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(secret)
	if err != nil {
		panic(fmt.Sprintf("failed to sign test token: %v", err))
	}

	return signed
}

// Fail makes requests matching method and path answer with status and body.
// path is either a concrete path ("/employees/2") or a route pattern ("/employees/{id}").
func (s *Server) Fail(method, path string, status int, body string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failures[method+" "+path] = failure{status: status, body: body}
}

// Delay holds requests matching method and path for d before they are served.
func (s *Server) Delay(method, path string, d time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.delays[method+" "+path] = d
}

// Reset clears injected failures and delays.
func (s *Server) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failures = make(map[string]failure)
	s.delays = make(map[string]time.Duration)
}

// Requests returns "METHOD path" for every request served so far.
func (s *Server) Requests() []string {
	s.mu.Lock()
	defer s.mu.Unlock()

	return slices.Clone(s.requests)
}

// AddQualification seeds a qualification.
func (s *Server) AddQualification(skill string) models.Qualification {
	s.mu.Lock()
	defer s.mu.Unlock()

	q := models.Qualification{ID: models.ID(s.nextID()), Skill: skill}
	s.qualifications = append(s.qualifications, q)

	return q
}

// AddEmployee seeds an employee holding the given skills.
func (s *Server) AddEmployee(draft models.EmployeeDraft, skills ...string) models.Employee {
	s.mu.Lock()
	defer s.mu.Unlock()

	emp := newEmployee(s.nextID(), draft)
	emp.Skills = slices.Clone(skills)
	s.employees = append(s.employees, emp)

	return s.toModel(emp)
}

// Employees returns the stored employees in insertion order.
func (s *Server) Employees() []models.Employee {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]models.Employee, 0, len(s.employees))
	for _, emp := range s.employees {
		out = append(out, s.toModel(emp))
	}

	return out
}

// Qualifications returns the stored qualifications in insertion order.
func (s *Server) Qualifications() []models.Qualification {
	s.mu.Lock()
	defer s.mu.Unlock()

	return slices.Clone(s.qualifications)
}

func (s *Server) nextID() string {
	if s.sequential {
		s.seq++
		return strconv.Itoa(s.seq)
	}

	return uuid.NewString()
}

func (s *Server) record(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.mu.Lock()
		s.requests = append(s.requests, r.Method+" "+r.URL.Path)
		s.mu.Unlock()
		next.ServeHTTP(w, r)
	})
}

func (s *Server) authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if s.secret == nil || r.Method == http.MethodHead {
			next.ServeHTTP(w, r)
			return
		}

		raw, found := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
		if !found {
			http.Error(w, "missing bearer token", http.StatusUnauthorized)
			return
		}

		_, err := jwt.ParseWithClaims(raw, &jwt.RegisteredClaims{}, func(token *jwt.Token) (any, error) {
			if token.Method != jwt.SigningMethodHS256 {
				return nil, errors.New("unexpected signing method")
			}
			return s.secret, nil
		})
		if err != nil {
			http.Error(w, "invalid bearer token", http.StatusUnauthorized)
			return
		}

		next.ServeHTTP(w, r)
	})
}

func (s *Server) handle(fn http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		pattern := chi.RouteContext(r.Context()).RoutePattern()
		exact := r.Method + " " + r.URL.Path
		byPattern := r.Method + " " + pattern

		s.mu.Lock()
		delay, delayed := s.delays[exact]
		if !delayed {
			delay, delayed = s.delays[byPattern]
		}
		fail, failed := s.failures[exact]
		if !failed {
			fail, failed = s.failures[byPattern]
		}
		s.mu.Unlock()

		if delayed {
			time.Sleep(delay)
		}
		if failed {
			w.WriteHeader(fail.status)
			_, _ = w.Write([]byte(fail.body))
			return
		}

		fn(w, r)
	}
}
