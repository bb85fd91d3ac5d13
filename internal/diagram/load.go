package diagram

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// timestampFormats are tried in order for CSV start and end columns that
// are not plain numbers.
var timestampFormats = []string{
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	"2006-01-02",
	"01/02/2006 15:04:05",
	"01/02/2006 15:04",
	"01/02/2006",
	"02/01/2006 15:04:05",
	"02/01/2006 15:04",
	"02/01/2006",
}

// Load reads a diagram from a .yaml/.yml or .csv file.
func Load(path string) (*Diagram, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return LoadYAML(path)
	case ".csv":
		return LoadCSV(path)
	default:
		return nil, fmt.Errorf("unsupported diagram format %q", filepath.Ext(path))
	}
}

// LoadYAML reads a diagram from a YAML file.
func LoadYAML(path string) (*Diagram, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("error reading diagram file: %w", err)
	}
	return ParseYAML(data, strings.TrimSuffix(filepath.Base(path), filepath.Ext(path)))
}

// ParseYAML decodes a diagram. fallbackName is used when the document has
// no name.
func ParseYAML(data []byte, fallbackName string) (*Diagram, error) {
	var d Diagram
	if err := yaml.Unmarshal(data, &d); err != nil {
		return nil, fmt.Errorf("error parsing diagram: %w", err)
	}
	if d.Name == "" {
		d.Name = fallbackName
	}
	if err := d.Validate(); err != nil {
		return nil, fmt.Errorf("invalid diagram: %w", err)
	}
	return &d, nil
}

// SaveYAML writes the diagram as YAML.
func SaveYAML(d *Diagram, path string) error {
	data, err := yaml.Marshal(d)
	if err != nil {
		return fmt.Errorf("error encoding diagram: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("error writing diagram file: %w", err)
	}
	return nil
}

// LoadCSV reads a diagram from a CSV file with a header row. Required
// columns are lane and start, plus either duration or end. Optional
// columns are id, label and color. Column names are case-insensitive.
//
// start and end may be milliseconds or timestamps; timestamps become
// offsets from the earliest timestamp in the file.
func LoadCSV(path string) (*Diagram, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("error opening CSV file: %w", err)
	}
	defer file.Close()

	d, err := ParseCSV(file)
	if err != nil {
		return nil, err
	}
	d.Name = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	return d, nil
}

type csvRow struct {
	line     int
	id       string
	lane     string
	label    string
	color    string
	start    timeValue
	end      timeValue
	duration float64
	hasEnd   bool
}

// timeValue is either a plain number of milliseconds or an absolute
// timestamp that still needs an origin.
type timeValue struct {
	ms    float64
	stamp time.Time
	isAbs bool
}

// ParseCSV decodes diagram rows from r.
func ParseCSV(r io.Reader) (*Diagram, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("error reading CSV header: %w", err)
	}

	columnMap := make(map[string]int)
	for i, col := range header {
		columnMap[strings.ToLower(strings.TrimSpace(col))] = i
	}
	for _, required := range []string{"lane", "start"} {
		if _, ok := columnMap[required]; !ok {
			return nil, fmt.Errorf("column '%s' not found in CSV. Available columns: %v", required, header)
		}
	}
	_, hasDuration := columnMap["duration"]
	_, hasEnd := columnMap["end"]
	if !hasDuration && !hasEnd {
		return nil, fmt.Errorf("CSV needs a 'duration' or 'end' column. Available columns: %v", header)
	}

	field := func(record []string, name string) string {
		i, ok := columnMap[name]
		if !ok || i >= len(record) {
			return ""
		}
		return strings.TrimSpace(record[i])
	}

	var rows []csvRow
	var origin time.Time
	line := 1
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("error reading CSV: %w", err)
		}
		line++

		row := csvRow{
			line:  line,
			id:    field(record, "id"),
			lane:  field(record, "lane"),
			label: field(record, "label"),
			color: field(record, "color"),
		}
		if row.lane == "" {
			return nil, fmt.Errorf("line %d: empty lane", line)
		}

		row.start, err = parseTimeValue(field(record, "start"))
		if err != nil {
			return nil, fmt.Errorf("line %d: start: %w", line, err)
		}
		if endText := field(record, "end"); hasEnd && endText != "" {
			row.end, err = parseTimeValue(endText)
			if err != nil {
				return nil, fmt.Errorf("line %d: end: %w", line, err)
			}
			row.hasEnd = true
		} else {
			row.duration, err = strconv.ParseFloat(field(record, "duration"), 64)
			if err != nil {
				return nil, fmt.Errorf("line %d: duration: %w", line, err)
			}
		}

		for _, v := range []timeValue{row.start, row.end} {
			if v.isAbs && (origin.IsZero() || v.stamp.Before(origin)) {
				origin = v.stamp
			}
		}
		rows = append(rows, row)
	}

	d := &Diagram{}
	for _, row := range rows {
		if _, ok := d.Lane(row.lane); !ok {
			d.Lanes = append(d.Lanes, Lane{ID: row.lane, Name: row.lane})
		}

		start := row.start.offset(origin)
		duration := row.duration
		if row.hasEnd {
			duration = row.end.offset(origin) - start
		}

		id := row.id
		if id == "" {
			id = d.generateID()
		}
		d.Boxes = append(d.Boxes, Box{
			ID:       id,
			LaneID:   row.lane,
			Label:    row.label,
			Start:    start,
			Duration: duration,
			Color:    row.color,
		})
	}

	if err := d.Validate(); err != nil {
		return nil, fmt.Errorf("invalid diagram: %w", err)
	}
	return d, nil
}

func parseTimeValue(s string) (timeValue, error) {
	if v, err := strconv.ParseFloat(s, 64); err == nil {
		return timeValue{ms: v}, nil
	}

	var stamp time.Time
	var err error
	for _, format := range timestampFormats {
		stamp, err = time.Parse(format, s)
		if err == nil {
			return timeValue{stamp: stamp, isAbs: true}, nil
		}
	}
	return timeValue{}, fmt.Errorf("unable to parse time '%s': %w", s, err)
}

func (v timeValue) offset(origin time.Time) float64 {
	if !v.isAbs {
		return v.ms
	}
	return float64(v.stamp.Sub(origin).Milliseconds())
}
