package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/muesli/reflow/truncate"

	"github.com/labctl/labctl/internal/labapi"
	"github.com/labctl/labctl/internal/view"
)

const (
	outputTable = "table"
	outputJSON  = "json"

	descriptionWidth = 40
	commandWidth     = 48
)

func checkOutput(format string) error {
	switch format {
	case outputTable, outputJSON:
		return nil
	default:
		return fmt.Errorf("unknown output format %q (want table or json)", format)
	}
}

func newTable(w io.Writer) table.Writer {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleLight)
	return t
}

func statusLabel(active bool) string {
	if active {
		return "Active"
	}
	return "Inactive"
}

func createdLabel(lab labapi.Lab) string {
	ts := lab.ParsedCreatedAt()
	if ts.IsZero() {
		return lab.CreatedAt
	}
	return ts.Local().Format("2006-01-02 15:04")
}

func clip(s string, width uint) string {
	return truncate.StringWithTail(strings.Join(strings.Fields(s), " "), width, "…")
}

// listPayload is the JSON shape of `labctl list -o json`.
type listPayload struct {
	Filter     string       `json:"filter"`
	Search     string       `json:"search,omitempty"`
	Page       int          `json:"page"`
	TotalPages int          `json:"totalPages"`
	Total      int          `json:"total"`
	Labs       []labapi.Lab `json:"labs"`
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("encode output: %w", err)
	}
	return nil
}

func renderPage(w io.Writer, page view.Page, filter labapi.FilterKey, search string) {
	if page.Empty {
		if strings.TrimSpace(search) != "" {
			fmt.Fprintf(w, "No labs match %q (%s).\n", search, filter.Label())
		} else {
			fmt.Fprintf(w, "No labs found (%s).\n", filter.Label())
		}
		return
	}

	t := newTable(w)
	t.AppendHeader(table.Row{"ID", "Name", "Description", "Base Image", "Time", "Status", "Created"})
	for _, lab := range page.Rows {
		t.AppendRow(table.Row{
			lab.ID,
			lab.Name,
			clip(lab.Description, descriptionWidth),
			lab.BaseImage,
			strconv.Itoa(lab.EstimatedTime) + "m",
			statusLabel(lab.IsActive),
			createdLabel(lab),
		})
	}
	first, last := page.Range()
	t.SetCaption("%s · showing %d-%d of %d · page %d of %d", filter.Label(), first, last, page.Total, page.Page, page.TotalPages)
	t.Render()
}

func renderLab(w io.Writer, lab labapi.Lab) {
	t := newTable(w)
	t.AppendRows([]table.Row{
		{"ID", lab.ID},
		{"Name", lab.Name},
		{"Description", lab.Description},
		{"Base Image", lab.BaseImage},
		{"Estimated Time", fmt.Sprintf("%d min", lab.EstimatedTime)},
		{"Status", statusLabel(lab.IsActive)},
		{"Created", createdLabel(lab)},
	})
	t.Render()

	steps := lab.OrderedSteps()
	if len(steps) == 0 {
		return
	}
	fmt.Fprintln(w)
	st := newTable(w)
	st.AppendHeader(table.Row{"#", "Title", "Command", "Expected Output"})
	for _, step := range steps {
		st.AppendRow(table.Row{step.StepOrder, step.Title, clip(step.Command, commandWidth), clip(step.ExpectedOutput, descriptionWidth)})
	}
	st.Render()
}
