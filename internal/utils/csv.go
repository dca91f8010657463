package utils

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"tradingengine/internal/domain"
	"tradingengine/internal/ports"
)

var csvHeader = []string{"open_time", "close_time", "symbol", "interval", "open", "high", "low", "close", "volume"}

// Accepted names for the bar timestamp column, in order of preference.
var timeColumns = []string{"open_time", "timestamp", "time", "date", "datetime"}

var timeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	"2006-01-02",
}

// WriteKlinesToCSV writes klines to filename, creating parent directories.
func WriteKlinesToCSV(klines []*domain.Kline, filename string) error {
	if dir := filepath.Dir(filename); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
	}
	file, err := os.Create(filename)
	if err != nil {
		return err
	}
	defer file.Close()

	return WriteKlines(file, klines)
}

// WriteKlines writes klines as CSV with a header row.
func WriteKlines(w io.Writer, klines []*domain.Kline) error {
	writer := csv.NewWriter(w)

	if err := writer.Write(csvHeader); err != nil {
		return err
	}
	for _, k := range klines {
		if err := writer.Write([]string{
			k.OpenTime.UTC().Format(time.RFC3339),
			k.CloseTime.UTC().Format(time.RFC3339),
			k.Symbol,
			k.Interval,
			strconv.FormatFloat(k.Open, 'f', -1, 64),
			strconv.FormatFloat(k.High, 'f', -1, 64),
			strconv.FormatFloat(k.Low, 'f', -1, 64),
			strconv.FormatFloat(k.Close, 'f', -1, 64),
			strconv.FormatFloat(k.Volume, 'f', -1, 64),
		}); err != nil {
			return err
		}
	}
	writer.Flush()
	return writer.Error()
}

// ReadKlinesFromCSV reads a kline CSV file. See ReadKlines.
func ReadKlinesFromCSV(filename string) ([]*domain.Kline, error) {
	file, err := os.Open(filename)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	klines, err := ReadKlines(file)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", filename, err)
	}
	return klines, nil
}

// ReadKlines parses CSV with a header row. Columns are matched by name,
// case-insensitively; open, high, low, close, volume and a time column are
// required, symbol, interval and close_time are optional. Times may be
// RFC3339, "2006-01-02 15:04:05", a date, or unix milliseconds. Rows are
// returned in time order.
func ReadKlines(r io.Reader) ([]*domain.Kline, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("%w: empty csv", ports.ErrInsufficientData)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: reading header: %w", ports.ErrInvalidRequest, err)
	}

	cols, err := mapColumns(header)
	if err != nil {
		return nil, err
	}

	var klines []*domain.Kline
	for line := 2; ; line++ {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%w: line %d: %w", ports.ErrInvalidRequest, line, err)
		}
		k, err := parseRecord(record, cols)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		klines = append(klines, k)
	}

	sort.SliceStable(klines, func(i, j int) bool {
		return klines[i].OpenTime.Before(klines[j].OpenTime)
	})
	return klines, nil
}

type columns struct {
	time, closeTime, symbol, interval int
	open, high, low, close, volume    int
}

func mapColumns(header []string) (columns, error) {
	index := make(map[string]int, len(header))
	for i, name := range header {
		name = strings.ToLower(strings.TrimSpace(strings.TrimPrefix(name, "\ufeff")))
		if _, dup := index[name]; !dup {
			index[name] = i
		}
	}
	find := func(names ...string) int {
		for _, n := range names {
			if i, ok := index[n]; ok {
				return i
			}
		}
		return -1
	}

	cols := columns{
		time:      find(timeColumns...),
		closeTime: find("close_time"),
		symbol:    find("symbol"),
		interval:  find("interval"),
		open:      find("open"),
		high:      find("high"),
		low:       find("low"),
		close:     find("close"),
		volume:    find("volume"),
	}

	var missing []string
	for _, req := range []struct {
		name string
		idx  int
	}{
		{"time", cols.time},
		{"open", cols.open},
		{"high", cols.high},
		{"low", cols.low},
		{"close", cols.close},
		{"volume", cols.volume},
	} {
		if req.idx < 0 {
			missing = append(missing, req.name)
		}
	}
	if len(missing) > 0 {
		return cols, fmt.Errorf("%w: csv has no %s column", ports.ErrMissingColumn, strings.Join(missing, ", "))
	}
	return cols, nil
}

func parseRecord(record []string, cols columns) (*domain.Kline, error) {
	field := func(idx int) string {
		if idx < 0 || idx >= len(record) {
			return ""
		}
		return strings.TrimSpace(record[idx])
	}

	openTime, err := parseTime(field(cols.time))
	if err != nil {
		return nil, err
	}
	k := &domain.Kline{
		OpenTime: openTime,
		Symbol:   field(cols.symbol),
		Interval: field(cols.interval),
	}
	if raw := field(cols.closeTime); raw != "" {
		if k.CloseTime, err = parseTime(raw); err != nil {
			return nil, err
		}
	}

	for _, f := range []struct {
		name string
		idx  int
		dst  *float64
	}{
		{"open", cols.open, &k.Open},
		{"high", cols.high, &k.High},
		{"low", cols.low, &k.Low},
		{"close", cols.close, &k.Close},
		{"volume", cols.volume, &k.Volume},
	} {
		raw := field(f.idx)
		if raw == "" {
			return nil, fmt.Errorf("%w: empty %s value", ports.ErrMissingColumn, f.name)
		}
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return nil, fmt.Errorf("%w: invalid %s value %q", ports.ErrInvalidRequest, f.name, raw)
		}
		*f.dst = v
	}
	return k, nil
}

func parseTime(raw string) (time.Time, error) {
	if raw == "" {
		return time.Time{}, fmt.Errorf("%w: empty time value", ports.ErrMissingColumn)
	}
	if ms, err := strconv.ParseInt(raw, 10, 64); err == nil {
		return time.UnixMilli(ms).UTC(), nil
	}
	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("%w: unrecognized time value %q", ports.ErrInvalidRequest, raw)
}
