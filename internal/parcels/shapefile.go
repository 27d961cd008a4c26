package parcels

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"

	shp "github.com/jonas-p/go-shp"
	"irea.valuation/internal/apperr"
)

// LoadShapefile reads a parcel layer from an ESRI shapefile. DBF attributes
// become record values. When the attribute table has no LATITUDE/LONGITUDE
// columns they are taken from the geometry: the point itself, or the centre of
// the bounding box for polygons. Geometry must be in WGS-84 degrees.
// The .dbf attribute file must sit next to the .shp.
func LoadShapefile(path string, columns []string) (*Table, error) {
	// go-shp opens the .dbf lazily and drops the error, so check it up front.
	dbf := strings.TrimSuffix(path, filepath.Ext(path)) + ".dbf"
	if _, err := os.Stat(dbf); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("parcel shapefile attributes %s: %w", dbf, apperr.ErrNotFound)
		}
		return nil, fmt.Errorf("error opening parcel shapefile attributes: %w", err)
	}

	r, err := shp.Open(path)
	if err != nil {
		return nil, fmt.Errorf("error opening parcel shapefile: %w", err)
	}
	defer r.Close() // nolint:errcheck

	fields := r.Fields()
	names := make([]string, len(fields))
	for i, f := range fields {
		names[i] = strings.TrimSpace(f.String())
	}

	keep := func(name string) bool {
		return len(columns) == 0 || slices.Contains(columns, name)
	}

	var selected []string
	for _, name := range names {
		if keep(name) {
			selected = append(selected, name)
		}
	}
	for _, name := range []string{ColumnLatitude, ColumnLongitude} {
		if !slices.Contains(selected, name) {
			selected = append(selected, name)
		}
	}

	var out []Record
	for r.Next() {
		idx, shape := r.Shape()

		rec := make(Record, len(selected))
		for i, name := range names {
			if !keep(name) {
				continue
			}
			rec[name] = cellValue(r.ReadAttribute(idx, i))
		}

		if isBlankCoordinate(rec[ColumnLatitude]) || isBlankCoordinate(rec[ColumnLongitude]) {
			lat, lng, ok := shapeCoordinates(shape)
			if ok {
				rec[ColumnLatitude] = lat
				rec[ColumnLongitude] = lng
			}
		}
		out = append(out, rec)
	}
	if err := r.Err(); err != nil {
		return nil, fmt.Errorf("error reading parcel shapefile: %w", err)
	}
	// A .shp cut at a record boundary ends cleanly; the attribute count still
	// says how many shapes there should have been.
	if want := r.AttributeCount(); len(out) != want {
		return nil, fmt.Errorf("error reading parcel shapefile: %d shapes for %d attribute records", len(out), want)
	}

	return NewTable(out, selected), nil
}

func isBlankCoordinate(v any) bool {
	if v == nil {
		return true
	}
	s, ok := v.(string)
	if !ok {
		return false
	}
	_, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	return err != nil
}

func shapeCoordinates(shape shp.Shape) (lat, lng float64, ok bool) {
	switch s := shape.(type) {
	case nil:
		return 0, 0, false
	case *shp.Null:
		return 0, 0, false
	case *shp.Point:
		return s.Y, s.X, true
	default:
		box := shape.BBox()
		return (box.MinY + box.MaxY) / 2, (box.MinX + box.MaxX) / 2, true
	}
}
