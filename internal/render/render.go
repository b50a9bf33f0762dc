// Package render writes document diffs as text tables, JSON or YAML
package render

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/fatih/color"
	"github.com/olekukonko/tablewriter"
	"gopkg.in/yaml.v3"

	"github.com/nainya/docdiff/pkg/model"
)

// Format is an output format
type Format string

const (
	FormatText Format = "text"
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// ParseFormat validates a format name
func ParseFormat(name string) (Format, error) {
	switch f := Format(strings.ToLower(name)); f {
	case FormatText, FormatJSON, FormatYAML:
		return f, nil
	}
	return "", fmt.Errorf("unknown output format %q (want text, json or yaml)", name)
}

// Row is one leaf difference: where it is and both sides of it
type Row struct {
	Path  string
	Type  string
	Left  *string
	Right *string
}

// Rows flattens a document diff into leaf rows ordered by schema, field
// and then list index or member name.
func Rows(diff *model.DocumentDiff) []Row {
	var rows []Row
	for _, schemaName := range diff.SchemaNames() {
		schema := diff.Schema(schemaName)
		for _, field := range schema.FieldNames() {
			rows = appendRows(rows, schemaName+":"+field, schema.Field(field))
		}
	}
	return rows
}

func appendRows(rows []Row, path string, diff model.PropertyDiff) []Row {
	switch d := diff.(type) {
	case *model.SimplePropertyDiff:
		rows = append(rows, Row{Path: path, Type: string(d.Type), Left: d.Left, Right: d.Right})
	case *model.ListPropertyDiff:
		for _, index := range d.Indexes() {
			rows = appendRows(rows, path+"["+strconv.Itoa(index)+"]", d.Get(index))
		}
	case *model.ComplexPropertyDiff:
		for _, name := range d.Names() {
			rows = appendRows(rows, path+"/"+name, d.Get(name))
		}
	case *model.ContentPropertyDiff:
		for _, name := range model.SubPropertyNames() {
			left, right := d.Left.SubProperty(name), d.Right.SubProperty(name)
			if left == nil && right == nil {
				continue
			}
			rows = append(rows, Row{
				Path:  path + "/" + name,
				Type:  string(d.DifferenceType),
				Left:  left,
				Right: right,
			})
		}
	}
	return rows
}

// Renderer writes diffs in one format
type Renderer struct {
	Format Format
	// NoColor disables ANSI colors in text output
	NoColor bool
}

// Render writes diff to w
func (r Renderer) Render(w io.Writer, diff *model.DocumentDiff) error {
	switch r.Format {
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(diff)
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(diff.Map()); err != nil {
			return err
		}
		return enc.Close()
	default:
		return r.renderText(w, diff)
	}
}

func (r Renderer) renderText(w io.Writer, diff *model.DocumentDiff) error {
	if diff.IsEmpty() {
		_, err := fmt.Fprintln(w, "No differences")
		return err
	}

	left := color.New(color.FgRed)
	right := color.New(color.FgGreen)
	if r.NoColor {
		left.DisableColor()
		right.DisableColor()
	}

	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"Property", "Type", "Left", "Right"})
	table.SetAutoWrapText(false)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	table.SetBorder(false)

	for _, row := range Rows(diff) {
		table.Append([]string{
			row.Path,
			row.Type,
			left.Sprint(value(row.Left)),
			right.Sprint(value(row.Right)),
		})
	}
	table.Render()
	return nil
}

func value(s *string) string {
	if s == nil {
		return "-"
	}
	return *s
}
