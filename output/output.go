package output

import (
	"fmt"
	"io"
	"os"

	"github.com/fatih/color"
	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"

	"civicconnect-be/models"
	"civicconnect-be/policy"
)

// UI is the operator-facing printer used by the CLI.
type UI struct {
	Verbose bool
	Out     io.Writer
	ErrOut  io.Writer
}

func New() *UI {
	return &UI{
		Out:    os.Stdout,
		ErrOut: os.Stderr,
	}
}

var (
	infoPrefix    = color.New(color.FgHiBlue).Sprint("i")
	successPrefix = color.New(color.FgHiGreen).Sprint("✓")
	warningPrefix = color.New(color.FgHiYellow).Sprint("⚠")
	errorPrefix   = color.New(color.FgHiRed).Sprint("✗")
	verbosePrefix = color.New(color.FgHiBlue).Sprint("  →")
	cyan          = color.New(color.FgHiCyan).SprintFunc()
	green         = color.New(color.FgHiGreen).SprintFunc()
	yellow        = color.New(color.FgHiYellow).SprintFunc()
	red           = color.New(color.FgHiRed).SprintFunc()
)

// StatusColor colors an issue status the way the dashboard badges do.
func StatusColor(status models.IssueStatus) string {
	s := string(status)
	switch status {
	case models.Pending:
		return yellow(s)
	case models.InProgress:
		return cyan(s)
	case models.Resolved:
		return green(s)
	default:
		return s
	}
}

// PriorityColor colors a priority; high stands out.
func PriorityColor(priority models.IssuePriority) string {
	s := string(priority)
	if priority == models.High {
		return red(s)
	}
	return s
}

func (u *UI) Info(format string, a ...any) {
	fmt.Fprintf(u.Out, "%s %s\n", infoPrefix, fmt.Sprintf(format, a...))
}

func (u *UI) Success(format string, a ...any) {
	fmt.Fprintf(u.Out, "%s %s\n", successPrefix, fmt.Sprintf(format, a...))
}

func (u *UI) Warning(format string, a ...any) {
	fmt.Fprintf(u.ErrOut, "%s %s\n", warningPrefix, fmt.Sprintf(format, a...))
}

func (u *UI) Error(format string, a ...any) {
	fmt.Fprintf(u.ErrOut, "%s %s\n", errorPrefix, fmt.Sprintf(format, a...))
}

func (u *UI) VerboseLog(format string, a ...any) {
	if u.Verbose {
		fmt.Fprintf(u.Out, "%s %s\n", verbosePrefix, fmt.Sprintf(format, a...))
	}
}

// Table creates a new tablewriter configured with consistent styling.
func (u *UI) Table(headers []string) *tablewriter.Table {
	table := tablewriter.NewTable(u.Out,
		tablewriter.WithHeaderAlignment(tw.AlignLeft),
		tablewriter.WithRowAlignment(tw.AlignLeft),
		tablewriter.WithRendition(tw.Rendition{
			Borders: tw.BorderNone,
			Settings: tw.Settings{
				Lines:      tw.LinesNone,
				Separators: tw.SeparatorsNone,
			},
		}),
		tablewriter.WithPadding(tw.Padding{Left: "", Right: "  "}),
	)
	table.Header(headers)
	return table
}

// Issues prints one row per issue. Contact info is shown only when the
// caller passed it through unredacted.
func (u *UI) Issues(issues []models.Issue) {
	if len(issues) == 0 {
		u.Info("No issues found")
		return
	}

	table := u.Table([]string{"ID", "Created", "Category", "Status", "Priority", "Title", "Location", "Contact"})
	for _, i := range issues {
		contact := "-"
		if i.ContactInfo != nil {
			contact = *i.ContactInfo
		}
		_ = table.Append([]string{
			i.ID,
			i.CreatedAt.Format("2006-01-02 15:04"),
			i.Category,
			StatusColor(i.Status),
			PriorityColor(i.Priority),
			i.Title,
			i.Location,
			contact,
		})
	}
	_ = table.Render()
}

// Stats prints the dashboard summary cards as a table.
func (u *UI) Stats(counts policy.StatusCounts) {
	table := u.Table([]string{"Total", "Pending", "In Progress", "Resolved"})
	_ = table.Append([]string{
		fmt.Sprint(counts.Total),
		yellow(fmt.Sprint(counts.Pending)),
		cyan(fmt.Sprint(counts.InProgress)),
		green(fmt.Sprint(counts.Resolved)),
	})
	_ = table.Render()
}
