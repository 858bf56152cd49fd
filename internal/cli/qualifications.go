package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/UnknownOlympus/athena/internal/directory"
	"github.com/UnknownOlympus/athena/internal/models"
)

func (cl *commandline) qualificationsCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "qualifications",
		Short:   "List and manage qualifications",
		Aliases: []string{"qual"},
	}

	cmd.AddCommand(
		&cobra.Command{
			Use:     "list",
			Short:   "List qualifications",
			Aliases: []string{"ls"},
			Args:    cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				if !cl.dir.RefreshQualifications(cmd.Context()) {
					return statusError(cl.dir.Status())
				}
				printQualifications(cmd.OutOrStdout(), cl.dir.Qualifications())
				return nil
			},
		},
		&cobra.Command{
			Use:   "create SKILL",
			Short: "Create a qualification",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				created := cl.dir.CreateQualification(cmd.Context(), args[0])
				if created == nil {
					return statusError(cl.dir.Status())
				}
				success(cmd.OutOrStdout(), "Created qualification %s (%s)", created.ID, created.Skill)
				return nil
			},
		},
		&cobra.Command{
			Use:   "update ID SKILL",
			Short: "Rename a qualification",
			Args:  cobra.ExactArgs(2), //nolint:mnd // id and skill
			RunE: func(cmd *cobra.Command, args []string) error {
				updated := cl.dir.UpdateQualification(cmd.Context(), models.ID(args[0]), args[1])
				if updated == nil {
					return statusError(cl.dir.Status())
				}
				success(cmd.OutOrStdout(), "Updated qualification %s (%s)", updated.ID, updated.Skill)
				return nil
			},
		},
		&cobra.Command{
			Use:     "delete ID",
			Short:   "Delete a qualification; employees keep the skill name until refreshed",
			Aliases: []string{"rm"},
			Args:    cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				if !cl.dir.DeleteQualification(cmd.Context(), models.ID(args[0])) {
					return statusError(cl.dir.Status())
				}
				success(cmd.OutOrStdout(), "Deleted qualification %s", args[0])
				return nil
			},
		},
		&cobra.Command{
			Use:   "employees ID",
			Short: "List the employees holding a qualification",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				if err := cl.load(cmd.Context()); err != nil {
					return err
				}

				id := models.ID(args[0])
				if _, ok := cl.dir.Qualification(id); !ok {
					return fmt.Errorf("%w: %s", directory.ErrUnknownQualification, id)
				}

				view := cl.dir.ApplyFilter(cmd.Context(), id)
				if status := cl.dir.Status().Qualifications; status.Err != "" {
					return errors.New(status.Err)
				}

				printEmployees(cmd.OutOrStdout(), view)
				return nil
			},
		},
	)

	return cmd
}
