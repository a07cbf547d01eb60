// Package intake reads item manifests from CSV and XLSX files and turns
// rows into inventory items ready for research.
package intake

import (
	"encoding/csv"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	"github.com/tealeg/xlsx/v2"

	"github.com/resellkit/research-core/internal/model"
)

// Options configures manifest parsing.
type Options struct {
	SheetName string // XLSX only; default is the first sheet
	Delimiter rune   // CSV only; default ','
}

// Column aliases accepted in manifest headers, keyed by canonical name.
// Headers are matched case-insensitively with spaces folded to underscores.
var columnAliases = map[string][]string{
	"id":          {"id", "item_id", "sku"},
	"name":        {"name", "title", "item"},
	"category":    {"category"},
	"brand":       {"brand", "manufacturer"},
	"model":       {"model", "model_number"},
	"barcode":     {"barcode", "upc", "ean"},
	"condition":   {"condition"},
	"image_count": {"image_count", "images", "photos"},
	"notes":       {"notes", "comments"},
}

// ReadManifest reads an item manifest, dispatching on the file extension.
func ReadManifest(path string, opts Options) ([]model.Item, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		f, err := os.Open(path)
		if err != nil {
			return nil, eris.Wrap(err, "intake: open manifest")
		}
		defer f.Close()
		return ParseCSV(f, opts)
	case ".xlsx":
		return ReadXLSX(path, opts)
	default:
		return nil, eris.Errorf("intake: unsupported manifest format %q", filepath.Ext(path))
	}
}

// ParseCSV reads a CSV manifest. The first row must be a header naming
// at least a name column.
func ParseCSV(r io.Reader, opts Options) ([]model.Item, error) {
	reader := csv.NewReader(r)
	if opts.Delimiter != 0 {
		reader.Comma = opts.Delimiter
	}
	reader.FieldsPerRecord = -1 // allow variable fields

	var (
		cols  map[string]int
		items []model.Item
		seen  = map[string]int{}
		line  int
	)
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, eris.Wrap(err, "intake: read csv row")
		}
		line++

		for i, field := range record {
			record[i] = strings.TrimSpace(field)
		}

		if cols == nil {
			cols, err = columnIndex(record)
			if err != nil {
				return nil, err
			}
			continue
		}
		if blankRow(record) {
			continue
		}

		item, err := itemFromRow(cols, record, line)
		if err != nil {
			return nil, err
		}
		if prev, dup := seen[item.ID]; dup {
			return nil, eris.Errorf("intake: row %d: duplicate item id %q (first seen at row %d)", line, item.ID, prev)
		}
		seen[item.ID] = line
		items = append(items, item)
	}

	return items, nil
}

// ReadXLSX reads an XLSX manifest. The first row of the selected sheet
// must be a header naming at least a name column.
func ReadXLSX(path string, opts Options) ([]model.Item, error) {
	f, err := xlsx.OpenFile(path)
	if err != nil {
		return nil, eris.Wrap(err, "intake: open xlsx")
	}

	sheet, err := pickSheet(f, opts.SheetName)
	if err != nil {
		return nil, err
	}

	var (
		cols  map[string]int
		items []model.Item
		seen  = map[string]int{}
	)
	for i, row := range sheet.Rows {
		cells := make([]string, len(row.Cells))
		for j, cell := range row.Cells {
			cells[j] = strings.TrimSpace(cell.String())
		}

		if i == 0 {
			cols, err = columnIndex(cells)
			if err != nil {
				return nil, err
			}
			continue
		}
		if blankRow(cells) {
			continue
		}

		item, err := itemFromRow(cols, cells, i+1)
		if err != nil {
			return nil, err
		}
		if prev, dup := seen[item.ID]; dup {
			return nil, eris.Errorf("intake: row %d: duplicate item id %q (first seen at row %d)", i+1, item.ID, prev)
		}
		seen[item.ID] = i + 1
		items = append(items, item)
	}

	return items, nil
}

func pickSheet(f *xlsx.File, name string) (*xlsx.Sheet, error) {
	if name != "" {
		sheet, ok := f.Sheet[name]
		if !ok {
			return nil, eris.Errorf("intake: sheet %q not found", name)
		}
		return sheet, nil
	}
	if len(f.Sheets) == 0 {
		return nil, eris.New("intake: xlsx file has no sheets")
	}
	return f.Sheets[0], nil
}

// columnIndex maps canonical column names to positions in the header row.
func columnIndex(header []string) (map[string]int, error) {
	byAlias := map[string]string{}
	for canonical, aliases := range columnAliases {
		for _, a := range aliases {
			byAlias[a] = canonical
		}
	}

	cols := map[string]int{}
	for i, h := range header {
		key := strings.ReplaceAll(strings.ToLower(strings.TrimSpace(h)), " ", "_")
		if canonical, ok := byAlias[key]; ok {
			if _, taken := cols[canonical]; !taken {
				cols[canonical] = i
			}
		}
	}

	if _, ok := cols["name"]; !ok {
		return nil, eris.New("intake: manifest has no name column")
	}
	return cols, nil
}

func itemFromRow(cols map[string]int, row []string, line int) (model.Item, error) {
	cell := func(key string) string {
		i, ok := cols[key]
		if !ok || i >= len(row) {
			return ""
		}
		return row[i]
	}

	item := model.Item{
		ID:        cell("id"),
		Name:      cell("name"),
		Category:  strings.ToLower(cell("category")),
		Brand:     cell("brand"),
		Model:     cell("model"),
		Barcode:   cell("barcode"),
		Condition: strings.ToLower(cell("condition")),
		Notes:     cell("notes"),
	}
	if item.Name == "" {
		return model.Item{}, eris.Errorf("intake: row %d: name is required", line)
	}
	if item.ID == "" {
		item.ID = uuid.NewString()
	}

	if raw := cell("image_count"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			return model.Item{}, eris.Wrapf(err, "intake: row %d: image_count %q", line, raw)
		}
		if n < 0 {
			return model.Item{}, eris.Errorf("intake: row %d: image_count must be >= 0", line)
		}
		item.ImageCount = n
	}

	return item, nil
}

func blankRow(cells []string) bool {
	for _, c := range cells {
		if c != "" {
			return false
		}
	}
	return true
}
