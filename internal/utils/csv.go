package utils

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"time"

	"stoxxBacktester/internal/domain"
)

const barDateLayout = "2006-01-02"

// WriteBarsToCSV writes daily bars to a CSV file with a header row.
func WriteBarsToCSV(bars []*domain.Bar, filename string) error {
	file, err := os.Create(filename)
	if err != nil {
		return err
	}
	defer file.Close()

	writer := csv.NewWriter(file)
	defer writer.Flush()

	// Write header
	writer.Write([]string{"date", "ticker", "open", "high", "low", "close", "volume"})

	for _, b := range bars {
		writer.Write([]string{
			b.Date.UTC().Format(barDateLayout),
			b.Ticker,
			strconv.FormatFloat(b.Open, 'f', -1, 64),
			strconv.FormatFloat(b.High, 'f', -1, 64),
			strconv.FormatFloat(b.Low, 'f', -1, 64),
			strconv.FormatFloat(b.Close, 'f', -1, 64),
			strconv.FormatFloat(b.Volume, 'f', -1, 64),
		})
	}
	return writer.Error()
}

// ReadBarsFromCSV reads daily bars from a CSV file written by WriteBarsToCSV.
func ReadBarsFromCSV(filename string) ([]*domain.Bar, error) {
	file, err := os.Open(filename)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	reader := csv.NewReader(file)
	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("failed to read CSV header from %s: %w", filename, err)
	}
	if len(header) < 7 {
		return nil, fmt.Errorf("unexpected CSV header in %s: %v", filename, header)
	}

	var bars []*domain.Bar
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read CSV record from %s: %w", filename, err)
		}

		date, err := time.Parse(barDateLayout, record[0])
		if err != nil {
			return nil, fmt.Errorf("invalid date %q in %s: %w", record[0], filename, err)
		}
		open, err := strconv.ParseFloat(record[2], 64)
		if err != nil {
			return nil, fmt.Errorf("invalid open %q in %s: %w", record[2], filename, err)
		}
		high, err := strconv.ParseFloat(record[3], 64)
		if err != nil {
			return nil, fmt.Errorf("invalid high %q in %s: %w", record[3], filename, err)
		}
		low, err := strconv.ParseFloat(record[4], 64)
		if err != nil {
			return nil, fmt.Errorf("invalid low %q in %s: %w", record[4], filename, err)
		}
		closePrice, err := strconv.ParseFloat(record[5], 64)
		if err != nil {
			return nil, fmt.Errorf("invalid close %q in %s: %w", record[5], filename, err)
		}
		volume, err := strconv.ParseFloat(record[6], 64)
		if err != nil {
			return nil, fmt.Errorf("invalid volume %q in %s: %w", record[6], filename, err)
		}

		bars = append(bars, &domain.Bar{
			Date:   date.UTC(),
			Ticker: record[1],
			Open:   open,
			High:   high,
			Low:    low,
			Close:  closePrice,
			Volume: volume,
		})
	}
	return bars, nil
}
