package geometry

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"
)

// Format 几何数据文件格式
type Format string

const (
	FormatCSV  Format = "CSV"
	FormatXLSX Format = "XLSX"
)

var (
	ErrUnsupportedFormat = errors.New("unsupported geometry format")
	ErrMissingColumn     = errors.New("missing required column")
	ErrNoSheet           = errors.New("workbook has no sheets")
)

// 必需列（表头大小写不敏感），ID 列可选
var requiredColumns = []string{"name", "x", "y", "z"}

// Import 按格式解析实测点
func Import(r io.Reader, format Format) ([]MeasuredPoint, error) {
	switch Format(strings.ToUpper(string(format))) {
	case FormatCSV:
		return ImportCSV(r)
	case FormatXLSX:
		return ImportXLSX(r)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, format)
	}
}

// ImportCSV 解析 CSV，首行为表头 Name/X/Y/Z
func ImportCSV(r io.Reader) ([]MeasuredPoint, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true
	reader.FieldsPerRecord = -1

	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to read csv: %w", err)
	}
	return parseRows(rows)
}

// ImportXLSX 解析工作簿第一个工作表，首行为表头 Name/X/Y/Z
func ImportXLSX(r io.Reader) ([]MeasuredPoint, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("failed to parse Excel file: %w", err)
	}
	defer f.Close()

	sheetName := f.GetSheetName(0)
	if sheetName == "" {
		return nil, ErrNoSheet
	}

	rows, err := f.GetRows(sheetName)
	if err != nil {
		return nil, fmt.Errorf("failed to read rows: %w", err)
	}
	return parseRows(rows)
}

func parseRows(rows [][]string) ([]MeasuredPoint, error) {
	if len(rows) == 0 {
		return []MeasuredPoint{}, nil
	}

	header := make(map[string]int)
	for i, h := range rows[0] {
		header[strings.ToLower(strings.TrimSpace(h))] = i
	}
	for _, col := range requiredColumns {
		if _, ok := header[col]; !ok {
			return nil, fmt.Errorf("%w: %s", ErrMissingColumn, col)
		}
	}
	idCol, hasID := header["id"]

	cell := func(row []string, idx int) string {
		if idx < len(row) {
			return strings.TrimSpace(row[idx])
		}
		return ""
	}

	points := make([]MeasuredPoint, 0, len(rows)-1)
	for rowIdx := 1; rowIdx < len(rows); rowIdx++ {
		row := rows[rowIdx]
		name := cell(row, header["name"])
		if name == "" {
			continue
		}

		var coords [3]float64
		for i, col := range []string{"x", "y", "z"} {
			v, err := strconv.ParseFloat(cell(row, header[col]), 64)
			if err != nil {
				return nil, fmt.Errorf("row %d column %s: %w", rowIdx+1, col, err)
			}
			coords[i] = v
		}

		p := MeasuredPoint{
			Name:  name,
			Coord: Coord{X: coords[0], Y: coords[1], Z: coords[2]},
		}
		if hasID {
			p.ID = cell(row, idCol)
		}
		if p.ID == "" {
			p.ID = strconv.Itoa(rowIdx)
		}
		points = append(points, p)
	}
	return points, nil
}
