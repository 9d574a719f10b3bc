package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/studiowebux/tokenctl/internal/filter"
	"github.com/studiowebux/tokenctl/internal/types"
	"gopkg.in/yaml.v3"
)

// Output formats
const (
	FormatJSON  = "json"
	FormatYAML  = "yaml"
	FormatTable = "table"
)

var (
	successStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	headerStyle  = lipgloss.NewStyle().Bold(true).Padding(0, 1)
	cellStyle    = lipgloss.NewStyle().Padding(0, 1)
)

// rowsFunc builds the table rendition of a value
type rowsFunc func() (headers []string, rows [][]string)

// print renders v in the configured format. A filter or query always
// produces JSON (or YAML when asked), since the result has no fixed shape.
func (r *Runner) print(v any, rows rowsFunc) error {
	out, err := r.format(v, rows)
	if err != nil {
		return err
	}
	if !strings.HasSuffix(out, "\n") {
		out += "\n"
	}
	_, err = fmt.Fprint(r.opts.Out, out)
	return err
}

func (r *Runner) format(v any, rows rowsFunc) (string, error) {
	format := strings.ToLower(r.opts.OutputFormat)
	if format == "" {
		format = FormatTable
	}

	pipeline, err := filter.Compile(r.opts.Filter, r.opts.Query)
	if err != nil {
		return "", err
	}

	switch {
	case format == FormatYAML && !pipeline.Shell():
		if !pipeline.Empty() {
			if v, err = pipeline.Value(v); err != nil {
				return "", err
			}
		}
		return marshalYAML(v)

	case format == FormatJSON || !pipeline.Empty():
		return pipeline.Render(context.Background(), v)

	case format == FormatTable:
		headers, body := rows()
		return renderTable(headers, body), nil
	}

	return "", fmt.Errorf("unsupported output format: %s (use json, yaml or table)", r.opts.OutputFormat)
}

func marshalYAML(v any) (string, error) {
	data, err := yaml.Marshal(v)
	if err != nil {
		return "", fmt.Errorf("failed to encode output: %w", err)
	}
	return string(data), nil
}

func renderTable(headers []string, rows [][]string) string {
	t := table.New().
		Border(lipgloss.NormalBorder()).
		Headers(headers...).
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			return cellStyle
		})
	return t.Render()
}

func (r *Runner) printUnits(units []types.Unit) error {
	if units == nil {
		units = []types.Unit{}
	}
	return r.print(units, func() ([]string, [][]string) {
		return UnitHeaders, UnitRows(units)
	})
}

// UnitHeaders are the columns shown for unit listings
var UnitHeaders = []string{"Unit", "Project", "Registry ID", "Vintage", "Count", "Owner", "Status"}

// UnitRows renders units as table rows in UnitHeaders order
func UnitRows(units []types.Unit) [][]string {
	rows := make([][]string, 0, len(units))
	for _, u := range units {
		project := u.ProjectName
		if project == "" {
			project = u.WarehouseProjectID()
		}
		rows = append(rows, []string{
			u.WarehouseUnitID,
			project,
			u.RegistryProjectID,
			fmt.Sprint(u.VintageYear),
			fmt.Sprint(u.UnitCount),
			u.UnitOwner,
			u.UnitStatus,
		})
	}
	return rows
}

func (r *Runner) printDetok(d types.DetokenizationResult) error {
	keys := make([]string, 0, len(d))
	generic := make(map[string]any, len(d))
	for k, raw := range d {
		var v any
		if err := json.Unmarshal(raw, &v); err != nil {
			return fmt.Errorf("failed to decode field %s: %w", k, err)
		}
		generic[k] = v
		keys = append(keys, k)
	}
	sort.Strings(keys)

	return r.print(generic, func() ([]string, [][]string) {
		rows := make([][]string, 0, len(keys))
		for _, k := range keys {
			rows = append(rows, []string{k, string(d[k])})
		}
		return []string{"Field", "Value"}, rows
	})
}
