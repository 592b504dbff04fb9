package water

// Stats summarizes one tier of a partition.
type Stats struct {
	Count         int
	TotalAreaSqKm float64
	AvgAreaSqKm   float64
}

// Partition holds classified features, grouped by tier and indexed by
// HYDROID. A feature belongs to exactly one tier at a time.
type Partition struct {
	thresholds Thresholds
	tiers      map[Category][]Feature
	index      map[string]Category
}

// NewPartition returns an empty partition carrying the cutoffs it was
// built with.
func NewPartition(th Thresholds) *Partition {
	return &Partition{
		thresholds: th,
		tiers:      make(map[Category][]Feature),
		index:      make(map[string]Category),
	}
}

// Thresholds returns the cutoffs the partition was built with.
func (p *Partition) Thresholds() Thresholds { return p.thresholds }

// Add places f in tier cat. A HYDROID already present keeps its first
// placement.
func (p *Partition) Add(f Feature, cat Category) {
	if _, ok := p.index[f.HydroID]; ok {
		return
	}
	p.tiers[cat] = append(p.tiers[cat], f)
	p.index[f.HydroID] = cat
}

// Features returns the members of tier cat in insertion order.
func (p *Partition) Features(cat Category) []Feature {
	return p.tiers[cat]
}

// Category reports the tier currently holding the feature.
func (p *Partition) Category(hydroID string) (Category, bool) {
	cat, ok := p.index[hydroID]
	return cat, ok
}

// Size returns the number of features across all tiers.
func (p *Partition) Size() int {
	return len(p.index)
}

// Move reassigns a feature to tier to. Unknown HYDROIDs and moves onto the
// current tier are no-ops; the destination never gains a second copy.
func (p *Partition) Move(hydroID string, to Category) bool {
	from, ok := p.index[hydroID]
	if !ok || from == to {
		return false
	}
	src := p.tiers[from]
	for i, f := range src {
		if f.HydroID != hydroID {
			continue
		}
		p.tiers[from] = append(src[:i], src[i+1:]...)
		p.tiers[to] = append(p.tiers[to], f)
		p.index[hydroID] = to
		return true
	}
	return false
}

// Stats recomputes the summary for tier cat from its current members.
func (p *Partition) Stats(cat Category) Stats {
	fs := p.tiers[cat]
	s := Stats{Count: len(fs)}
	for _, f := range fs {
		s.TotalAreaSqKm += f.AreaSqKm
	}
	if s.Count > 0 {
		s.AvgAreaSqKm = s.TotalAreaSqKm / float64(s.Count)
	}
	return s
}
