package assign

import (
	"encoding/csv"
	"fmt"
	"io"

	"github.com/evroutex/fleet-dispatch/internal/models"
)

// ParseCSV reads a row-oriented order table. The first record is the
// header; every column is preserved verbatim into the resulting rows.
// Coordinate presence and numeric validity are checked at assignment
// time, not here, so malformed rows are reported against the operation
// that needs them.
func ParseCSV(r io.Reader) ([]models.Order, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err == io.EOF {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("%w: read header: %v", ErrMalformedInput, err)
	}

	var orders []models.Order
	for line := 2; ; line++ {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%w: line %d: %v", ErrMalformedInput, line, err)
		}

		order := make(models.Order, len(header))
		for i, column := range header {
			order[column] = record[i]
		}
		orders = append(orders, order)
	}
	return orders, nil
}
