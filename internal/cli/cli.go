// Package cli holds the command line views over the employee directory.
package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/fatih/color"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"github.com/UnknownOlympus/athena/internal/auth"
	"github.com/UnknownOlympus/athena/internal/client"
	"github.com/UnknownOlympus/athena/internal/config"
	"github.com/UnknownOlympus/athena/internal/directory"
	"github.com/UnknownOlympus/athena/internal/metrics"
	"github.com/UnknownOlympus/athena/internal/services/employees"
	"github.com/UnknownOlympus/athena/internal/services/qualifications"
)

// Deps are the process-wide objects the commands share.
type Deps struct {
	Config   *config.Config
	Logger   *slog.Logger
	Registry *prometheus.Registry
	Metrics  *metrics.Metrics
}

type commandline struct {
	deps      Deps
	api       *client.API
	employees *employees.Client
	quals     *qualifications.Client
	dir       *directory.Directory
}

// NewRootCommand builds the athena command tree.
func NewRootCommand(deps Deps) *cobra.Command {
	cl := &commandline{deps: deps}

	root := &cobra.Command{
		Use:           "athena",
		Short:         "Manage employees and their qualifications",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(_ *cobra.Command, _ []string) error {
			return cl.connect()
		},
	}

	root.AddCommand(
		cl.employeesCommand(),
		cl.qualificationsCommand(),
		cl.statsCommand(),
		cl.syncCommand(),
	)

	return root
}

// Execute runs the command tree and prints a failure in red on stderr.
func Execute(ctx context.Context, root *cobra.Command) error {
	err := root.ExecuteContext(ctx)
	if err != nil {
		_, _ = color.New(color.FgRed).Fprintln(root.ErrOrStderr(), "Error:", err)
	}

	return err
}

func (cl *commandline) connect() error {
	if cl.dir != nil {
		return nil
	}

	cfg := cl.deps.Config
	httpClient := client.CreateHTTPClient(cl.deps.Logger, cfg.API.Timeout)
	tokens := auth.NewProvider(cfg.Auth.Token, cfg.Auth.TokenFile)

	cl.api = client.NewAPI(cl.deps.Logger, httpClient, cfg.API.URL, cl.deps.Metrics)
	cl.employees = employees.NewClient(cl.deps.Logger, cl.api, tokens)
	cl.quals = qualifications.NewClient(cl.deps.Logger, cl.api, tokens)
	cl.dir = directory.New(cl.deps.Logger, cl.employees, cl.quals, cl.deps.Metrics)

	return nil
}

// load fills the caches. A failed read is reported, not silently rendered as "no data".
func (cl *commandline) load(ctx context.Context) error {
	if cl.dir.Refresh(ctx) {
		return nil
	}

	return statusError(cl.dir.Status())
}

func statusError(status directory.Status) error {
	var errs []error
	if status.Employees.Err != "" {
		errs = append(errs, errors.New(status.Employees.Err))
	}
	if status.Qualifications.Err != "" {
		errs = append(errs, errors.New(status.Qualifications.Err))
	}
	if len(errs) == 0 {
		return errors.New("operation failed")
	}

	return errors.Join(errs...)
}

func success(w io.Writer, format string, args ...any) {
	_, _ = color.New(color.FgGreen).Fprintf(w, format+"\n", args...)
}

func warn(w io.Writer, format string, args ...any) {
	_, _ = color.New(color.FgYellow).Fprintln(w, fmt.Sprintf(format, args...))
}
