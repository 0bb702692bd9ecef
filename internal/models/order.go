package models

import (
	"fmt"
	"strconv"
)

// Column names every order row must carry. All other columns are
// passthrough data preserved verbatim into the assignment output.
const (
	ColumnLatitude  = "latitude"
	ColumnLongitude = "longitude"
)

// Order is a single row of an uploaded order table. Values are kept as
// the raw strings they arrived as; only the coordinate columns are ever
// interpreted, and only at clustering time.
type Order map[string]string

// Coordinates parses the row's latitude/longitude columns.
func (o Order) Coordinates() (lat, lon float64, err error) {
	lat, err = o.coordinate(ColumnLatitude)
	if err != nil {
		return 0, 0, err
	}
	lon, err = o.coordinate(ColumnLongitude)
	if err != nil {
		return 0, 0, err
	}
	return lat, lon, nil
}

func (o Order) coordinate(column string) (float64, error) {
	raw, ok := o[column]
	if !ok {
		return 0, fmt.Errorf("missing %s column", column)
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, fmt.Errorf("non-numeric %s %q", column, raw)
	}
	return v, nil
}
