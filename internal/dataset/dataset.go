// Package dataset provides the tabular event representation the
// pipeline stages operate on, plus CSV/JSON load and save.
//
// Every cell is a string. The loaders accept three input shapes: a CSV
// file, a JSON list of event objects, or a JSON object with an
// "events" key wrapping such a list.
package dataset

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
)

// Derived columns the pipeline stages add to a table. The mapped
// input columns (title, start, ...) are configurable; these are not.
const (
	ColLabelSource    = "label_source"
	ColPredictedLabel = "predicted_label"
	ColMargin         = "svm_margin"
	ColConfidence     = "confidence"
	ColNeedsReview    = "needs_review"
	ColWeakLabel      = "weak_label"
)

// Columns maps the canonical roles the pipeline needs to the column
// names actually present in an input table. Overridable per stage via
// CLI flags; the trained model artifact binds the mapping it was
// fitted with.
type Columns struct {
	ID    string `json:"id" yaml:"id"`
	URL   string `json:"url" yaml:"url"`
	Title string `json:"title" yaml:"title"`
	Desc  string `json:"desc" yaml:"desc"`
	Start string `json:"start" yaml:"start"`
	Loc   string `json:"loc" yaml:"loc"`
	Label string `json:"label" yaml:"label"`
}

// DefaultColumns returns the column names the scraper emits.
func DefaultColumns() Columns {
	return Columns{
		ID:    "uid",
		URL:   "url",
		Title: "title",
		Desc:  "description",
		Start: "start",
		Loc:   "location",
		Label: "label",
	}
}

// Normalize fills empty role names with the defaults so partially
// overridden mappings still resolve.
func (c *Columns) Normalize() {
	def := DefaultColumns()
	if c.ID == "" {
		c.ID = def.ID
	}
	if c.URL == "" {
		c.URL = def.URL
	}
	if c.Title == "" {
		c.Title = def.Title
	}
	if c.Desc == "" {
		c.Desc = def.Desc
	}
	if c.Start == "" {
		c.Start = def.Start
	}
	if c.Loc == "" {
		c.Loc = def.Loc
	}
	if c.Label == "" {
		c.Label = def.Label
	}
}

// Row is one event record; missing cells read as "".
type Row map[string]string

// Get returns the cell value for a column, or "" if absent.
func (r Row) Get(col string) string {
	return r[col]
}

// Table is an ordered collection of rows with a stable column order.
type Table struct {
	Columns []string
	Rows    []Row
}

// FormatError reports an unsupported file extension or a malformed
// structure. It is surfaced immediately and never recovered.
type FormatError struct {
	Path   string
	Reason string
}

func (e *FormatError) Error() string {
	return fmt.Sprintf("dataset: %s: %s", e.Path, e.Reason)
}

// HasColumn reports whether the table declares the named column.
func (t *Table) HasColumn(name string) bool {
	for _, c := range t.Columns {
		if c == name {
			return true
		}
	}
	return false
}

// AddColumn declares a column if it is not already present. Existing
// rows read "" for it until set.
func (t *Table) AddColumn(name string) {
	if !t.HasColumn(name) {
		t.Columns = append(t.Columns, name)
	}
}

// EnsureColumns pre-fills the named columns with the empty string on
// every row. Downstream feature building treats missing columns as a
// caller precondition rather than an error, so every stage calls this
// before handing a table to the core.
func (t *Table) EnsureColumns(names ...string) {
	for _, name := range names {
		if name == "" {
			continue
		}
		t.AddColumn(name)
		for _, row := range t.Rows {
			if _, ok := row[name]; !ok {
				row[name] = ""
			}
		}
	}
}

// Column returns the values of one column in row order.
func (t *Table) Column(name string) []string {
	out := make([]string, len(t.Rows))
	for i, row := range t.Rows {
		out[i] = row.Get(name)
	}
	return out
}

// Set writes a cell, declaring the column if needed.
func (t *Table) Set(i int, col, val string) {
	t.AddColumn(col)
	t.Rows[i][col] = val
}

// Load reads a CSV or JSON event table. JSON may be a bare list of
// objects or an {"events": [...]} wrapper; any other shape or
// extension is a *FormatError.
func Load(path string) (*Table, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		return loadCSV(path)
	case ".json":
		return loadJSON(path)
	default:
		return nil, &FormatError{Path: path, Reason: "input must be .csv or .json"}
	}
}

func loadCSV(path string) (*Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1
	records, err := r.ReadAll()
	if err != nil {
		return nil, &FormatError{Path: path, Reason: "malformed CSV: " + err.Error()}
	}
	if len(records) == 0 {
		return nil, &FormatError{Path: path, Reason: "empty CSV (no header row)"}
	}

	t := &Table{Columns: records[0]}
	for _, rec := range records[1:] {
		row := make(Row, len(t.Columns))
		for i, col := range t.Columns {
			if i < len(rec) {
				row[col] = rec[i]
			} else {
				row[col] = ""
			}
		}
		t.Rows = append(t.Rows, row)
	}
	return t, nil
}

func loadJSON(path string) (*Table, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var parsed any
	if err := json.Unmarshal(data, &parsed); err != nil {
		return nil, &FormatError{Path: path, Reason: "malformed JSON: " + err.Error()}
	}

	// Unwrap {"events": [...]}.
	if obj, ok := parsed.(map[string]any); ok {
		inner, ok := obj["events"]
		if !ok {
			return nil, &FormatError{Path: path, Reason: `JSON object must have an "events" key`}
		}
		parsed = inner
	}

	list, ok := parsed.([]any)
	if !ok {
		return nil, &FormatError{Path: path, Reason: `JSON must be a list or an object with an "events" key`}
	}

	t := &Table{}
	for _, item := range list {
		obj, ok := item.(map[string]any)
		if !ok {
			return nil, &FormatError{Path: path, Reason: "JSON event entries must be objects"}
		}
		row := Row{}
		flattenInto(row, "", obj)
		// Register columns in first-appearance order; within one row,
		// sorted for determinism (JSON object order is not preserved).
		keys := make([]string, 0, len(row))
		for k := range row {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			t.AddColumn(k)
		}
		t.Rows = append(t.Rows, row)
	}
	// All rows see all columns.
	t.EnsureColumns(t.Columns...)
	return t, nil
}

// flattenInto stringifies a JSON object into row cells, flattening
// nested objects with dotted keys. Lists are joined with ", "
// (categories are the only list field in practice).
func flattenInto(row Row, prefix string, obj map[string]any) {
	for k, v := range obj {
		key := k
		if prefix != "" {
			key = prefix + "." + k
		}
		switch val := v.(type) {
		case nil:
			row[key] = ""
		case string:
			row[key] = val
		case bool:
			row[key] = strconv.FormatBool(val)
		case float64:
			row[key] = strconv.FormatFloat(val, 'f', -1, 64)
		case map[string]any:
			flattenInto(row, key, val)
		case []any:
			parts := make([]string, 0, len(val))
			for _, item := range val {
				parts = append(parts, fmt.Sprint(item))
			}
			row[key] = strings.Join(parts, ", ")
		default:
			row[key] = fmt.Sprint(val)
		}
	}
}

// Save writes the table as CSV or JSON depending on the extension.
func Save(t *Table, path string) error {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		return saveCSV(t, path)
	case ".json":
		return saveJSON(t, path)
	default:
		return &FormatError{Path: path, Reason: "output must be .csv or .json"}
	}
}

func saveCSV(t *Table, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(t.Columns); err != nil {
		return err
	}
	rec := make([]string, len(t.Columns))
	for _, row := range t.Rows {
		for i, col := range t.Columns {
			rec[i] = row.Get(col)
		}
		if err := w.Write(rec); err != nil {
			return err
		}
	}
	w.Flush()
	return w.Error()
}

func saveJSON(t *Table, path string) error {
	out := make([]map[string]string, 0, len(t.Rows))
	for _, row := range t.Rows {
		obj := make(map[string]string, len(t.Columns))
		for _, col := range t.Columns {
			obj[col] = row.Get(col)
		}
		out = append(out, obj)
	}
	data, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

// DerivedPath builds the default output path for a stage: the input
// path with suffix appended to the stem, keeping the extension
// (events.csv + "_tagged" -> events_tagged.csv).
func DerivedPath(input, suffix string) string {
	ext := filepath.Ext(input)
	stem := strings.TrimSuffix(input, ext)
	return stem + suffix + ext
}
