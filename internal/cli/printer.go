package cli

import (
	"io"
	"strconv"
	"strings"

	"github.com/olekukonko/tablewriter"

	"github.com/UnknownOlympus/athena/internal/models"
)

func printEmployees(w io.Writer, list []models.Employee) {
	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"ID", "First Name", "Last Name", "Phone", "Address", "Qualifications"})
	table.SetAutoWrapText(false)

	for _, emp := range list {
		table.Append([]string{
			emp.ID.String(),
			emp.FirstName,
			emp.LastName,
			emp.Phone,
			emp.Address(),
			strings.Join(emp.Skills(), ", "),
		})
	}

	table.SetFooter([]string{"", "", "", "", "Total", strconv.Itoa(len(list))})
	table.Render()
}

func printQualifications(w io.Writer, list []models.Qualification) {
	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"ID", "Skill"})

	for _, q := range list {
		table.Append([]string{q.ID.String(), q.Skill})
	}

	table.Render()
}

func printEmployee(w io.Writer, emp models.Employee, quals []models.Qualification) {
	table := tablewriter.NewWriter(w)
	table.SetAutoWrapText(false)

	skills := make([]string, 0, len(quals))
	for _, q := range quals {
		skills = append(skills, q.Skill)
	}

	table.AppendBulk([][]string{
		{"ID", emp.ID.String()},
		{"Name", emp.FullName()},
		{"Phone", emp.Phone},
		{"Address", emp.Address()},
		{"Qualifications", strings.Join(skills, ", ")},
	})
	table.Render()
}
