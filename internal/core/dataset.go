package core

// dataset.go converts between the stored CSV text and []Person.
//
// Nothing in this file performs I/O. Reading is tolerant of the things
// other writers of the same object produce: a UTF-8 BOM, any column order,
// and the Spanish header names (nombre, edad, altura) of the earliest
// version of the file. Writing always emits the canonical header.

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"
)

// Header is the canonical column order written to storage.
var Header = []string{"name", "age", "height"}

// headerAliases maps accepted header names (lowercase) to canonical ones.
var headerAliases = map[string]string{
	"name":   "name",
	"nombre": "name",
	"age":    "age",
	"edad":   "age",
	"height": "height",
	"altura": "height",
}

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// Dataset is the ordered list of stored people.
type Dataset []Person

// ParseDataset decodes CSV text. Empty input is an empty dataset.
// A header without the name, age and height columns, a ragged row, or a
// non-numeric age or height yields an error wrapping ErrMalformedData.
func ParseDataset(data []byte) (Dataset, error) {
	data = bytes.TrimPrefix(data, utf8BOM)
	if len(bytes.TrimSpace(data)) == 0 {
		return Dataset{}, nil
	}

	r := csv.NewReader(bytes.NewReader(data))
	header, err := r.Read()
	if err != nil {
		return nil, fmt.Errorf("%w: read header: %v", ErrMalformedData, err)
	}

	pos, err := headerPositions(header)
	if err != nil {
		return nil, err
	}

	ds := Dataset{}
	for {
		row, err := r.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrMalformedData, err)
		}

		line, _ := r.FieldPos(0)
		p, err := parseRow(row, pos)
		if err != nil {
			return nil, fmt.Errorf("%w: line %d: %v", ErrMalformedData, line, err)
		}
		ds = append(ds, p)
	}

	return ds, nil
}

// headerPositions locates each canonical column in header.
func headerPositions(header []string) (map[string]int, error) {
	pos := make(map[string]int, len(Header))
	for i, h := range header {
		canonical, ok := headerAliases[strings.ToLower(strings.TrimSpace(h))]
		if !ok {
			continue
		}
		if _, seen := pos[canonical]; !seen {
			pos[canonical] = i
		}
	}

	var missing []string
	for _, col := range Header {
		if _, ok := pos[col]; !ok {
			missing = append(missing, col)
		}
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("%w: header %q is missing columns: %s",
			ErrMalformedData, strings.Join(header, ","), strings.Join(missing, ", "))
	}
	return pos, nil
}

func parseRow(row []string, pos map[string]int) (Person, error) {
	age, err := parseAge(row[pos["age"]])
	if err != nil {
		return Person{}, err
	}

	rawHeight := strings.TrimSpace(row[pos["height"]])
	height, err := strconv.ParseFloat(rawHeight, 64)
	if err != nil {
		return Person{}, fmt.Errorf("invalid height %q", rawHeight)
	}

	return Person{
		Name:   row[pos["name"]],
		Age:    age,
		Height: height,
	}, nil
}

// parseAge accepts integers and integral floats such as "30.0".
func parseAge(raw string) (int, error) {
	raw = strings.TrimSpace(raw)
	if n, err := strconv.Atoi(raw); err == nil {
		return n, nil
	}
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil || f != math.Trunc(f) || math.IsInf(f, 0) {
		return 0, fmt.Errorf("invalid age %q", raw)
	}
	return int(f), nil
}

// Encode writes the dataset as CSV with the canonical header and LF line endings.
func (d Dataset) Encode() []byte {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	// Writes to a bytes.Buffer cannot fail.
	_ = w.Write(Header)
	for _, p := range d {
		_ = w.Write([]string{p.Name, strconv.Itoa(p.Age), formatHeight(p.Height)})
	}
	w.Flush()

	return buf.Bytes()
}

func formatHeight(h float64) string {
	return strconv.FormatFloat(h, 'f', -1, 64)
}

// AppendRecord parses existing, appends p as the last row and re-encodes.
// It returns the new text and the resulting row count.
func AppendRecord(existing []byte, p Person) ([]byte, int, error) {
	ds, err := ParseDataset(existing)
	if err != nil {
		return nil, 0, err
	}
	ds = append(ds, p)
	return ds.Encode(), len(ds), nil
}

// CountRows returns the number of data rows in data, excluding the header.
func CountRows(data []byte) (int, error) {
	ds, err := ParseDataset(data)
	if err != nil {
		return 0, err
	}
	return len(ds), nil
}
