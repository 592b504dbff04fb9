package tiger

import (
	"strings"

	"github.com/jonas-p/go-shp"
	"github.com/rotisserie/eris"
	"github.com/twpayne/go-geom"
	"go.uber.org/zap"
	"golang.org/x/text/encoding/charmap"
)

// record is one shapefile row: its DBF attributes keyed by lower-cased
// field name, and its geometry as a multi-polygon.
type record struct {
	attrs map[string]string
	geom  *geom.MultiPolygon
}

// parseShapefile reads a polygon shapefile and returns one record per shape
// carrying the requested DBF fields. TIGER DBF attributes are ISO-8859-1;
// they are decoded to UTF-8 here (border water bodies carry French names).
// Records without usable geometry are skipped and counted.
func parseShapefile(shpPath string, layer Layer) ([]record, error) {
	reader, err := shp.Open(shpPath)
	if err != nil {
		return nil, eris.Wrapf(err, "tiger: open shapefile %s", shpPath)
	}
	defer func() { _ = reader.Close() }()

	fields := reader.Fields()
	fieldIdx := make(map[string]int, len(fields))
	for i, f := range fields {
		name := strings.TrimRight(f.String(), "\x00")
		fieldIdx[strings.ToLower(name)] = i
	}

	latin1 := charmap.ISO8859_1.NewDecoder()
	var records []record
	var skipped int

	for reader.Next() {
		_, shape := reader.Shape()

		poly, ok := shape.(*shp.Polygon)
		if !ok || poly == nil {
			skipped++
			continue
		}
		mp := polygonToMultiPolygon(poly)
		if mp == nil {
			skipped++
			continue
		}

		attrs := make(map[string]string, len(layer.Fields))
		for _, col := range layer.Fields {
			idx, ok := fieldIdx[col]
			if !ok {
				continue
			}
			val := strings.TrimRight(reader.Attribute(idx), "\x00")
			val = strings.TrimSpace(val)
			if val == "" {
				continue
			}
			if decoded, decErr := latin1.String(val); decErr == nil {
				val = decoded
			}
			attrs[col] = val
		}

		records = append(records, record{attrs: attrs, geom: mp})
	}

	if skipped > 0 {
		zap.L().Debug("tiger: skipped shapefile records",
			zap.String("layer", layer.Name),
			zap.String("path", shpPath),
			zap.Int("skipped", skipped),
		)
	}

	return records, nil
}

// polygonToMultiPolygon converts a shapefile Polygon to a geom.MultiPolygon.
// Shapefile polygons store rings as flat parts; each part becomes its own
// single-ring polygon, which is what the planar measures and GEOS
// operations expect. Malformed parts are skipped.
func polygonToMultiPolygon(p *shp.Polygon) *geom.MultiPolygon {
	if p == nil || p.NumParts == 0 || len(p.Points) == 0 {
		return nil
	}

	mp := geom.NewMultiPolygon(geom.XY).SetSRID(4326)

	for i := int32(0); i < p.NumParts; i++ {
		start := p.Parts[i]
		var end int32
		if i+1 < p.NumParts {
			end = p.Parts[i+1]
		} else {
			end = int32(len(p.Points))
		}

		flat := make([]float64, 0, (end-start)*2)
		for j := start; j < end; j++ {
			flat = append(flat, p.Points[j].X, p.Points[j].Y)
		}

		ring := geom.NewLinearRingFlat(geom.XY, flat)
		poly := geom.NewPolygon(geom.XY)
		if err := poly.Push(ring); err != nil {
			zap.L().Debug("tiger: skipping malformed polygon ring", zap.Int32("part", i), zap.Error(err))
			continue
		}
		if err := mp.Push(poly); err != nil {
			zap.L().Debug("tiger: skipping malformed polygon part", zap.Int32("part", i), zap.Error(err))
			continue
		}
	}

	if mp.NumPolygons() == 0 {
		return nil
	}
	return mp
}
