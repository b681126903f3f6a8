package parser

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/gocarina/gocsv"
	"github.com/rs/zerolog/log"
	"github.com/sourcegraph/conc/iter"
	"github.com/xuri/excelize/v2"

	"route-planning-report/internal/models"
)

// Column names of the depot planning exports
const (
	ColRouteID          = "routeId"
	ColDriverName       = "vehicleDriverName"
	ColLocationName     = "locationName"
	ColLocationFunction = "locationFunction"
	ColLicensePlate     = "vehicleLicensePlate"
	ColLoadingMeters    = "vehicleLoadingMeters"
	ColCostPerHour      = "vehicleCostPerHour"
	ColCostPerKm        = "vehicleCostPerKm"
	ColDistanceToNext   = "distanceToNextInKilometres"
	ColFillRate         = "fillRate"
	ColArrivalTime      = "arrivalTime"
	ColDepartureTime    = "departureTime"
)

// Columns lists every column a planning export must carry
var Columns = []string{
	ColRouteID, ColDriverName, ColLocationName, ColLocationFunction,
	ColLicensePlate, ColLoadingMeters, ColCostPerHour, ColCostPerKm,
	ColDistanceToNext, ColFillRate, ColArrivalTime, ColDepartureTime,
}

// Parser reads stop records from planning exports
type Parser struct {
	format string
}

// NewParser creates a new parser with the specified format.
// An empty format or "auto" selects the format from the file extension.
func NewParser(format string) *Parser {
	return &Parser{format: format}
}

// Source is one depot planning export to load
type Source struct {
	Name   string
	Path   string
	Format string
}

// LoadSources reads all sources concurrently and returns them in input order
func LoadSources(sources []Source) ([]models.SourceBatch, error) {
	return iter.MapErr(sources, func(s *Source) (models.SourceBatch, error) {
		start := time.Now()
		records, err := NewParser(s.Format).ParseFile(s.Name, s.Path)
		if err != nil {
			return models.SourceBatch{}, fmt.Errorf("load source %s: %w", s.Name, err)
		}
		log.Info().
			Str("source", s.Name).
			Str("file", s.Path).
			Int("records", len(records)).
			Dur("elapsed", time.Since(start)).
			Msg("Loaded source")
		return models.SourceBatch{Name: s.Name, Records: records}, nil
	})
}

// ParseFile parses a planning export. source names the depot in errors.
func (p *Parser) ParseFile(source, filename string) ([]models.StopRecord, error) {
	format := strings.ToLower(p.format)
	if format == "" || format == "auto" {
		format = strings.TrimPrefix(strings.ToLower(filepath.Ext(filename)), ".")
	}

	file, err := os.Open(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	defer file.Close()

	return p.parse(source, format, file)
}

// Parse reads a planning export of the parser's format from r
func (p *Parser) Parse(source string, r io.Reader) ([]models.StopRecord, error) {
	return p.parse(source, strings.ToLower(p.format), r)
}

func (p *Parser) parse(source, format string, r io.Reader) ([]models.StopRecord, error) {
	var rows []map[string]string
	var err error

	switch format {
	case "csv":
		rows, err = readCSV(r)
	case "xlsx":
		rows, err = readXLSX(r)
	case "json":
		rows, err = readJSON(r)
	default:
		return nil, fmt.Errorf("%w: %q", models.ErrUnsupportedFormat, format)
	}
	if err != nil {
		return nil, err
	}

	return DecodeRows(source, rows)
}

// readCSV parses a CSV export with a header row
func readCSV(r io.Reader) ([]map[string]string, error) {
	rows, err := gocsv.CSVToMaps(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read csv: %w", err)
	}
	return rows, nil
}

// readXLSX parses the first sheet of a workbook; the first row is the header.
// Cells are read as stored, not as displayed, so number formats such as
// percentages or h:mm do not leak into the values.
func readXLSX(r io.Reader) ([]map[string]string, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("failed to open workbook: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, nil
	}
	cells, err := f.GetRows(sheets[0], excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet %s: %w", sheets[0], err)
	}
	if len(cells) == 0 {
		return nil, nil
	}

	header := cells[0]
	var rows []map[string]string
	for _, record := range cells[1:] {
		if blank(record) {
			continue
		}
		row := make(map[string]string, len(header))
		for i, h := range header {
			if i < len(record) {
				row[h] = record[i]
			} else {
				row[h] = ""
			}
		}
		rows = append(rows, row)
	}
	return rows, nil
}

// readJSON parses an array of objects keyed by column name
func readJSON(r io.Reader) ([]map[string]string, error) {
	decoder := json.NewDecoder(r)
	decoder.UseNumber()

	var objects []map[string]interface{}
	if err := decoder.Decode(&objects); err != nil {
		return nil, fmt.Errorf("failed to decode json: %w", err)
	}
	return Stringify(objects), nil
}

// Stringify converts decoded JSON objects into string cells
func Stringify(objects []map[string]interface{}) []map[string]string {
	rows := make([]map[string]string, len(objects))
	for i, obj := range objects {
		row := make(map[string]string, len(obj))
		for k, v := range obj {
			switch val := v.(type) {
			case nil:
				row[k] = ""
			case string:
				row[k] = val
			case json.Number:
				row[k] = val.String()
			case float64:
				row[k] = strconv.FormatFloat(val, 'f', -1, 64)
			case bool:
				row[k] = strconv.FormatBool(val)
			default:
				row[k] = fmt.Sprint(val)
			}
		}
		rows[i] = row
	}
	return rows
}

func blank(record []string) bool {
	for _, c := range record {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}
