package geo

import (
	"github.com/rotisserie/eris"
	"github.com/twpayne/go-geom"
	"github.com/twpayne/go-geom/encoding/geojson"
	"github.com/twpayne/go-geos"
)

// ErrGeometryOp indicates a planar set operation failed inside GEOS.
var ErrGeometryOp = eris.New("geometry operation failed")

// UnionAll dissolves gs into a single geometry. Invalid members are
// repaired before they join the union.
func UnionAll(gs []geom.T) (geom.T, error) {
	u, err := unionGEOS(gs)
	if err != nil {
		return nil, err
	}
	defer u.Destroy()
	return fromGEOS(u)
}

// Difference returns minuend with every part covered by subtrahend removed.
// A fully covered minuend comes back as an empty geometry, not nil.
func Difference(minuend, subtrahend geom.T) (geom.T, error) {
	a, err := repairedGEOS(minuend)
	if err != nil {
		return nil, err
	}
	defer a.Destroy()
	b, err := repairedGEOS(subtrahend)
	if err != nil {
		return nil, err
	}
	defer b.Destroy()
	return diffGEOS(a, b)
}

// Repair rebuilds g as a valid geometry, splitting self-intersecting rings
// along their linework. Valid input round-trips unchanged.
func Repair(g geom.T) (geom.T, error) {
	gg, err := repairedGEOS(g)
	if err != nil {
		return nil, err
	}
	defer gg.Destroy()
	return fromGEOS(gg)
}

// Subtractor holds a dissolved water union on the GEOS side for repeated
// difference calls against many boundaries.
type Subtractor struct {
	union *geos.Geom
}

// NewSubtractor unions gs once and keeps the result. Close releases it.
func NewSubtractor(gs []geom.T) (*Subtractor, error) {
	u, err := unionGEOS(gs)
	if err != nil {
		return nil, err
	}
	return &Subtractor{union: u}, nil
}

// Difference returns minuend with the held union removed.
func (s *Subtractor) Difference(minuend geom.T) (geom.T, error) {
	if s.union == nil {
		return nil, eris.Wrap(ErrGeometryOp, "geo: subtractor is closed")
	}
	a, err := repairedGEOS(minuend)
	if err != nil {
		return nil, err
	}
	defer a.Destroy()
	return diffGEOS(a, s.union)
}

// Close releases the held union. The subtractor is unusable afterwards.
func (s *Subtractor) Close() {
	if s.union != nil {
		s.union.Destroy()
		s.union = nil
	}
}

// unionGEOS accumulates gs into one GEOS geometry. The caller owns the
// result and must Destroy it.
func unionGEOS(gs []geom.T) (*geos.Geom, error) {
	if len(gs) == 0 {
		return nil, eris.Wrap(ErrGeometryOp, "geo: union of empty geometry set")
	}
	acc, err := repairedGEOS(gs[0])
	if err != nil {
		return nil, err
	}
	for _, g := range gs[1:] {
		next, err := repairedGEOS(g)
		if err != nil {
			acc.Destroy()
			return nil, err
		}
		var merged *geos.Geom
		opErr := safely("union", func() { merged = acc.Union(next) })
		next.Destroy()
		acc.Destroy()
		if opErr != nil {
			return nil, opErr
		}
		if merged == nil {
			return nil, eris.Wrap(ErrGeometryOp, "geo: union produced no geometry")
		}
		acc = merged
	}
	return acc, nil
}

func diffGEOS(a, b *geos.Geom) (geom.T, error) {
	var diff *geos.Geom
	if err := safely("difference", func() { diff = a.Difference(b) }); err != nil {
		return nil, err
	}
	if diff == nil {
		return nil, eris.Wrap(ErrGeometryOp, "geo: difference produced no geometry")
	}
	defer diff.Destroy()
	return fromGEOS(diff)
}

// repairedGEOS converts g into a GEOS geometry, running MakeValid when the
// input is invalid. The caller owns the result and must Destroy it.
func repairedGEOS(g geom.T) (*geos.Geom, error) {
	gg, err := toGEOS(g)
	if err != nil {
		return nil, err
	}
	valid := false
	if err := safely("validate", func() { valid = gg.IsValid() }); err != nil {
		gg.Destroy()
		return nil, err
	}
	if valid {
		return gg, nil
	}
	var fixed *geos.Geom
	opErr := safely("make valid", func() {
		fixed = gg.MakeValidWithParams(geos.MakeValidLinework, geos.MakeValidDiscardCollapsed)
	})
	gg.Destroy()
	if opErr != nil {
		return nil, opErr
	}
	if fixed == nil {
		return nil, eris.Wrap(ErrGeometryOp, "geo: make valid produced no geometry")
	}
	return fixed, nil
}

// toGEOS bridges a go-geom geometry into GEOS through GeoJSON. The caller
// owns the result and must Destroy it.
func toGEOS(g geom.T) (*geos.Geom, error) {
	raw, err := geojson.Marshal(g)
	if err != nil {
		return nil, eris.Wrapf(ErrDataShape, "geo: encode geometry: %v", err)
	}
	gg, err := geos.NewGeomFromGeoJSON(string(raw))
	if err != nil {
		return nil, eris.Wrapf(ErrGeometryOp, "geo: read geometry into GEOS: %v", err)
	}
	return gg, nil
}

// fromGEOS bridges a GEOS geometry back into go-geom through GeoJSON.
func fromGEOS(gg *geos.Geom) (geom.T, error) {
	var out string
	if err := safely("encode", func() { out = gg.ToGeoJSON(-1) }); err != nil {
		return nil, err
	}
	var g geom.T
	if err := geojson.Unmarshal([]byte(out), &g); err != nil {
		return nil, eris.Wrapf(ErrGeometryOp, "geo: decode GEOS geometry: %v", err)
	}
	return g, nil
}

// safely runs fn and converts go-geos panics into ErrGeometryOp errors.
func safely(op string, fn func()) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = eris.Wrapf(ErrGeometryOp, "geo: %s: %v", op, r)
		}
	}()
	fn()
	return nil
}
