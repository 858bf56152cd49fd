package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/UnknownOlympus/athena/internal/directory"
	"github.com/UnknownOlympus/athena/internal/models"
	"github.com/UnknownOlympus/athena/internal/services/employees"
)

type employeeFlags struct {
	draft          models.EmployeeDraft
	qualifications []string
	clearQuals     bool
}

func (f *employeeFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.draft.FirstName, "first-name", "", "first name")
	cmd.Flags().StringVar(&f.draft.LastName, "last-name", "", "last name")
	cmd.Flags().StringVar(&f.draft.Phone, "phone", "", "phone number")
	cmd.Flags().StringVar(&f.draft.Street, "street", "", "street and house number")
	cmd.Flags().StringVar(&f.draft.Postcode, "postcode", "", "5 digit postcode")
	cmd.Flags().StringVar(&f.draft.City, "city", "", "city")
	cmd.Flags().StringArrayVarP(&f.qualifications, "qualification", "q", nil, "qualification id (repeatable)")
}

func (cl *commandline) employeesCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "employees",
		Short:   "List and manage employees",
		Aliases: []string{"emp"},
	}

	cmd.AddCommand(
		cl.employeesList(),
		cl.employeesShow(),
		cl.employeesCreate(),
		cl.employeesUpdate(),
		cl.employeesDelete(),
	)

	return cmd
}

func (cl *commandline) employeesList() *cobra.Command {
	var (
		qualification string
		name          string
	)

	cmd := &cobra.Command{
		Use:     "list",
		Short:   "List employees, optionally only those holding a qualification",
		Aliases: []string{"ls"},
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := cl.load(cmd.Context()); err != nil {
				return err
			}

			view := cl.dir.ApplyFilter(cmd.Context(), models.ID(qualification))
			if qualification != "" && cl.dir.Status().Qualifications.Err != "" {
				warn(cmd.ErrOrStderr(), "filter lookup failed: %s", cl.dir.Status().Qualifications.Err)
			}

			printEmployees(cmd.OutOrStdout(), directory.FilterByName(view, name))
			return nil
		},
	}

	cmd.Flags().StringVarP(&qualification, "qualification", "q", "", "only employees holding this qualification id")
	cmd.Flags().StringVarP(&name, "name", "n", "", "only employees whose first name contains this text")

	return cmd
}

func (cl *commandline) employeesShow() *cobra.Command {
	return &cobra.Command{
		Use:   "show ID",
		Short: "Show one employee with resolved qualifications",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := cl.load(cmd.Context()); err != nil {
				return err
			}

			id := models.ID(args[0])
			emp, ok := cl.dir.Employee(id)
			if !ok {
				return fmt.Errorf("%w: %s", directory.ErrUnknownEmployee, id)
			}
			quals, _ := cl.dir.QualificationsOf(id)

			printEmployee(cmd.OutOrStdout(), emp, quals)
			return nil
		},
	}
}

func (cl *commandline) employeesCreate() *cobra.Command {
	var flags employeeFlags

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create an employee and attach qualifications",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := employees.ValidateDraft(flags.draft); err != nil {
				return err
			}
			if err := cl.load(cmd.Context()); err != nil {
				return err
			}

			selected, err := cl.selectQualifications(flags.qualifications)
			if err != nil {
				return err
			}

			created, err := cl.dir.CreateEmployee(cmd.Context(), flags.draft, selected)
			if err != nil {
				return err
			}

			success(cmd.OutOrStdout(), "Created employee %s (%s)", created.ID, created.FullName())
			return nil
		},
	}

	flags.register(cmd)

	return cmd
}

func (cl *commandline) employeesUpdate() *cobra.Command {
	var flags employeeFlags

	cmd := &cobra.Command{
		Use:   "update ID",
		Short: "Update an employee; omitted fields keep their value",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := cl.load(cmd.Context()); err != nil {
				return err
			}

			id := models.ID(args[0])
			current, ok := cl.dir.Employee(id)
			if !ok {
				return fmt.Errorf("%w: %s", directory.ErrUnknownEmployee, id)
			}

			draft := mergeDraft(current.Draft(), flags.draft)
			if err := employees.ValidateDraft(draft); err != nil {
				return err
			}

			var selected []models.Qualification
			switch {
			case flags.clearQuals:
				selected = []models.Qualification{}
			case len(flags.qualifications) > 0:
				var err error
				if selected, err = cl.selectQualifications(flags.qualifications); err != nil {
					return err
				}
			}

			updated, err := cl.dir.UpdateEmployee(cmd.Context(), id, draft, selected)
			if err != nil {
				return err
			}

			success(cmd.OutOrStdout(), "Updated employee %s (%s)", updated.ID, updated.FullName())
			return nil
		},
	}

	flags.register(cmd)
	cmd.Flags().BoolVar(&flags.clearQuals, "clear-qualifications", false, "detach every qualification")

	return cmd
}

func (cl *commandline) employeesDelete() *cobra.Command {
	return &cobra.Command{
		Use:     "delete ID...",
		Short:   "Delete one or more employees",
		Aliases: []string{"rm"},
		Args:    cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := cl.load(cmd.Context()); err != nil {
				return err
			}

			ids := make([]models.ID, 0, len(args))
			for _, arg := range args {
				ids = append(ids, models.ID(arg))
			}

			deleted, err := cl.dir.DeleteEmployees(cmd.Context(), ids...)
			if len(deleted) > 0 {
				success(cmd.OutOrStdout(), "Deleted %d of %d employee(s)", len(deleted), len(ids))
			}

			return err
		},
	}
}

// selectQualifications maps qualification ids given on the command line to cached records.
func (cl *commandline) selectQualifications(ids []string) ([]models.Qualification, error) {
	selected := make([]models.Qualification, 0, len(ids))
	for _, raw := range ids {
		q, ok := cl.dir.Qualification(models.ID(raw))
		if !ok {
			return nil, fmt.Errorf("%w: %s", directory.ErrUnknownQualification, raw)
		}
		selected = append(selected, q)
	}

	return selected, nil
}

func mergeDraft(current, changes models.EmployeeDraft) models.EmployeeDraft {
	pick := func(cur, change string) string {
		if change != "" {
			return change
		}
		return cur
	}

	return models.EmployeeDraft{
		FirstName: pick(current.FirstName, changes.FirstName),
		LastName:  pick(current.LastName, changes.LastName),
		Phone:     pick(current.Phone, changes.Phone),
		Street:    pick(current.Street, changes.Street),
		Postcode:  pick(current.Postcode, changes.Postcode),
		City:      pick(current.City, changes.City),
	}
}
