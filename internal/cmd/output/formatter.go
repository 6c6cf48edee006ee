// Package output renders command results as tables, JSON or YAML.
package output

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"reflect"
	"strings"

	"github.com/goccy/go-yaml"
	"github.com/mattn/go-isatty"
	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Format types for output.
type Format string

const (
	// FormatTable represents table output format.
	FormatTable Format = "table"
	// FormatJSON represents JSON output format.
	FormatJSON Format = "json"
	// FormatYAML represents YAML output format.
	FormatYAML Format = "yaml"
)

// Align is a column alignment for table output.
type Align int

// Column alignments.
const (
	AlignDefault Align = iota
	AlignLeft
	AlignCenter
	AlignRight
)

// Formatter interface for all output types.
type Formatter interface {
	Format(w io.Writer, data any) error
}

// FormatterFunc allows functions to implement Formatter.
type FormatterFunc func(io.Writer, any) error

// Format implements the Formatter interface.
func (f FormatterFunc) Format(w io.Writer, data any) error {
	return f(w, data)
}

// NewFormatter creates appropriate formatter based on format.
func NewFormatter(format Format) Formatter {
	switch format {
	case FormatJSON:
		return &JSONFormatter{Indent: "  "}
	case FormatYAML:
		return &YAMLFormatter{}
	default:
		return &TableFormatter{}
	}
}

// JSONFormatter outputs JSON format.
type JSONFormatter struct {
	Indent string
}

// Format implements the Formatter interface for JSON output.
func (f *JSONFormatter) Format(w io.Writer, data any) error {
	encoder := json.NewEncoder(w)
	if f.Indent != "" {
		encoder.SetIndent("", f.Indent)
	}
	return encoder.Encode(data)
}

// YAMLFormatter outputs YAML format.
type YAMLFormatter struct{}

// Format outputs data in YAML format.
func (f *YAMLFormatter) Format(w io.Writer, data any) error {
	yamlData, err := yaml.MarshalWithOptions(data,
		yaml.Indent(2),
		yaml.IndentSequence(false),
	)
	if err != nil {
		return err
	}
	_, err = w.Write(yamlData)
	return err
}

// TableFormatter outputs table format.
type TableFormatter struct{}

// Format outputs data in table format. Data is rendered as given; struct
// values and slices of structs are converted by reflection. Anything else
// falls back to JSON.
func (f *TableFormatter) Format(w io.Writer, data any) error {
	switch v := data.(type) {
	case Data:
		return f.formatTable(w, v)
	case *Data:
		return f.formatTable(w, *v)
	default:
		if tableData := toTableData(data); tableData != nil {
			return f.formatTable(w, *tableData)
		}
		return (&JSONFormatter{Indent: "  "}).Format(w, data)
	}
}

func (f *TableFormatter) formatTable(w io.Writer, data Data) error {
	config := tablewriter.Config{}

	if len(data.ColumnAlignment) > 0 {
		twAlign := make([]tw.Align, len(data.ColumnAlignment))
		for i, align := range data.ColumnAlignment {
			twAlign[i] = align.tw()
		}
		config.Header.Alignment = tw.CellAlignment{PerColumn: twAlign}
		config.Row.Alignment = tw.CellAlignment{PerColumn: twAlign}
	}

	table := tablewriter.NewTable(w, tablewriter.WithConfig(config))

	if len(data.Headers) > 0 {
		headers := make([]any, len(data.Headers))
		for i, h := range data.Headers {
			headers[i] = h
		}
		table.Header(headers...)
	}

	for _, row := range data.Rows {
		cells := make([]any, len(row))
		for i, cell := range row {
			cells[i] = cell
		}
		if err := table.Append(cells...); err != nil {
			return err
		}
	}

	return table.Render()
}

func (a Align) tw() tw.Align {
	switch a {
	case AlignLeft:
		return tw.AlignLeft
	case AlignCenter:
		return tw.AlignCenter
	case AlignRight:
		return tw.AlignRight
	default:
		return tw.Skip
	}
}

// Data represents data formatted for table output.
type Data struct {
	Headers         []string
	Rows            [][]string
	ColumnAlignment []Align // optional, one per column
}

// Write renders data in the given format. Structs and slices of structs
// become tables through their json tags.
func Write(w io.Writer, format Format, data any) error {
	return NewFormatter(format).Format(w, data)
}

// DetectFormat returns the explicit format when set, table on a terminal,
// and JSON for pipes and redirects.
func DetectFormat(explicitFormat string) Format {
	if explicitFormat != "" {
		return Format(strings.ToLower(explicitFormat))
	}
	return detectFromFile(os.Stdout)
}

func detectFromFile(f *os.File) Format {
	if f != nil && (isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())) {
		return FormatTable
	}
	return FormatJSON
}

// ParseFormat converts string to Format with validation.
func ParseFormat(s string) (Format, error) {
	format := Format(strings.ToLower(strings.TrimSpace(s)))
	switch format {
	case FormatTable, FormatJSON, FormatYAML, "":
		return format, nil
	default:
		return "", fmt.Errorf("invalid format %q: must be one of: table, json, yaml", s)
	}
}

// Resolve detects the format when explicit is empty and validates it.
func Resolve(explicit string) (Format, error) {
	return ParseFormat(string(DetectFormat(explicit)))
}

// toTableData converts a struct or a non-empty slice of structs.
func toTableData(data any) *Data {
	v := reflect.ValueOf(data)
	if v.Kind() == reflect.Pointer && !v.IsNil() {
		v = v.Elem()
	}

	switch {
	case v.Kind() == reflect.Slice && v.Len() > 0 && v.Index(0).Kind() == reflect.Struct:
		return structSliceToTableData(v)
	case v.Kind() == reflect.Struct:
		return singleStructToTableData(v)
	}
	return nil
}

// structSliceToTableData renders one row per element. Numeric columns are
// right-aligned.
func structSliceToTableData(v reflect.Value) *Data {
	elemType := v.Index(0).Type()

	var headers []string
	var fields []int
	var align []Align
	for _, i := range tableFields(elemType) {
		field := elemType.Field(i)
		headers = append(headers, columnName(field))
		fields = append(fields, i)
		align = append(align, columnAlign(field.Type.Kind()))
	}

	rows := make([][]string, 0, v.Len())
	for i := 0; i < v.Len(); i++ {
		elem := v.Index(i)
		row := make([]string, 0, len(fields))
		for _, j := range fields {
			row = append(row, cellValue(elem.Field(j)))
		}
		rows = append(rows, row)
	}

	return &Data{Headers: headers, Rows: rows, ColumnAlignment: align}
}

// singleStructToTableData renders a struct as property/value pairs.
func singleStructToTableData(v reflect.Value) *Data {
	elemType := v.Type()

	var rows [][]string
	for _, i := range tableFields(elemType) {
		rows = append(rows, []string{columnName(elemType.Field(i)), cellValue(v.Field(i))})
	}

	return &Data{
		Headers: []string{"Property", "Value"},
		Rows:    rows,
	}
}

// tableFields lists exported fields not tagged json:"-".
func tableFields(t reflect.Type) []int {
	var fields []int
	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		if !field.IsExported() || field.Tag.Get("json") == "-" {
			continue
		}
		fields = append(fields, i)
	}
	return fields
}

func columnAlign(kind reflect.Kind) Align {
	switch kind {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64:
		return AlignRight
	default:
		return AlignLeft
	}
}

// columnName titles the json tag ("content_type" -> "Content Type"), or
// falls back to the field name.
func columnName(field reflect.StructField) string {
	tag := field.Tag.Get("json")
	if name, _, _ := strings.Cut(tag, ","); name != "" {
		return cases.Title(language.English).String(strings.ReplaceAll(name, "_", " "))
	}
	return field.Name
}

func cellValue(v reflect.Value) string {
	if v.Kind() == reflect.Slice {
		parts := make([]string, v.Len())
		for i := range parts {
			parts[i] = fmt.Sprintf("%v", v.Index(i).Interface())
		}
		return strings.Join(parts, ",")
	}
	return fmt.Sprintf("%v", v.Interface())
}
