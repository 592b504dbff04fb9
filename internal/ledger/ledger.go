// Package ledger maintains the durable, mergeable record of manual water
// reclassifications and replays it over classified partitions.
package ledger

import (
	"encoding/json"
	"os"
	"sort"
	"time"

	"github.com/rotisserie/eris"
)

// ErrEditReference indicates an edit that names no known tier.
var ErrEditReference = eris.New("edit references unknown category")

// EditRecord is one manual reclassification of a water feature.
type EditRecord struct {
	HydroID      string    `json:"hydroid"`
	FromCategory string    `json:"from_category"`
	ToCategory   string    `json:"to_category"`
	DisplayName  string    `json:"display_name,omitempty"`
	Timestamp    time.Time `json:"timestamp"`
}

// Metadata describes the ledger as a whole. LastUpdated tracks the maximum
// edit timestamp, not wall-clock time of the merge.
type Metadata struct {
	Created     time.Time `json:"created"`
	LastUpdated time.Time `json:"last_updated"`
	TotalEdits  int       `json:"total_edits"`
}

// MergeResult counts what a merge did with the incoming batch.
type MergeResult struct {
	Added   int
	Updated int
	Skipped int
}

// Ledger holds the latest edit per HYDROID.
type Ledger struct {
	edits map[string]EditRecord
	meta  Metadata
}

// New returns an empty ledger stamped with the current time.
func New() *Ledger {
	return &Ledger{
		edits: make(map[string]EditRecord),
		meta:  Metadata{Created: time.Now().UTC()},
	}
}

// Rebuild reconstructs a ledger from stored edits, keeping the original
// created timestamp. Duplicate HYDROIDs collapse by the merge rule.
func Rebuild(edits []EditRecord, created time.Time) *Ledger {
	l := New()
	if !created.IsZero() {
		l.meta.Created = created
	}
	l.Merge(edits)
	return l
}

// Merge folds batch into the ledger, last write wins per HYDROID. An
// incoming edit replaces the stored one unless the stored timestamp is
// strictly later; equal timestamps fall back to a stable field comparison,
// so merge order never changes the survivor. Records without a HYDROID are
// skipped.
func (l *Ledger) Merge(batch []EditRecord) MergeResult {
	var res MergeResult
	for _, e := range batch {
		if e.HydroID == "" {
			res.Skipped++
			continue
		}
		stored, exists := l.edits[e.HydroID]
		if !exists {
			l.edits[e.HydroID] = e
			res.Added++
			continue
		}
		if !wins(e, stored) {
			res.Skipped++
			continue
		}
		l.edits[e.HydroID] = e
		res.Updated++
	}
	l.refreshMeta()
	return res
}

// wins reports whether the incoming edit replaces the stored one.
func wins(incoming, stored EditRecord) bool {
	if incoming.Timestamp.After(stored.Timestamp) {
		return true
	}
	if stored.Timestamp.After(incoming.Timestamp) {
		return false
	}
	if incoming.ToCategory != stored.ToCategory {
		return incoming.ToCategory > stored.ToCategory
	}
	if incoming.FromCategory != stored.FromCategory {
		return incoming.FromCategory > stored.FromCategory
	}
	return incoming.DisplayName > stored.DisplayName
}

func (l *Ledger) refreshMeta() {
	l.meta.TotalEdits = len(l.edits)
	var latest time.Time
	for _, e := range l.edits {
		if e.Timestamp.After(latest) {
			latest = e.Timestamp
		}
	}
	l.meta.LastUpdated = latest
}

// Get returns the stored edit for a HYDROID.
func (l *Ledger) Get(hydroID string) (EditRecord, bool) {
	e, ok := l.edits[hydroID]
	return e, ok
}

// Len returns the number of stored edits.
func (l *Ledger) Len() int { return len(l.edits) }

// Metadata returns the ledger metadata.
func (l *Ledger) Metadata() Metadata { return l.meta }

// Edits returns the stored edits ordered by timestamp, HYDROID breaking
// ties.
func (l *Ledger) Edits() []EditRecord {
	out := make([]EditRecord, 0, len(l.edits))
	for _, e := range l.edits {
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].Timestamp.Equal(out[j].Timestamp) {
			return out[i].Timestamp.Before(out[j].Timestamp)
		}
		return out[i].HydroID < out[j].HydroID
	})
	return out
}

// fileLedger is the JSON interchange shape.
type fileLedger struct {
	Edits    []EditRecord `json:"edits"`
	Metadata Metadata     `json:"metadata"`
}

// Decode reads a ledger from its JSON interchange form. Duplicate HYDROIDs
// in the file collapse by the merge rule; totals are recomputed from
// content.
func Decode(data []byte) (*Ledger, error) {
	var f fileLedger
	if err := json.Unmarshal(data, &f); err != nil {
		return nil, eris.Wrap(err, "ledger: decode ledger JSON")
	}
	l := New()
	if !f.Metadata.Created.IsZero() {
		l.meta.Created = f.Metadata.Created
	}
	l.Merge(f.Edits)
	return l, nil
}

// Encode renders the ledger in its JSON interchange form, edits ordered by
// timestamp.
func (l *Ledger) Encode() ([]byte, error) {
	f := fileLedger{Edits: l.Edits(), Metadata: l.meta}
	if f.Edits == nil {
		f.Edits = []EditRecord{}
	}
	data, err := json.MarshalIndent(f, "", "  ")
	if err != nil {
		return nil, eris.Wrap(err, "ledger: encode ledger JSON")
	}
	return data, nil
}

// Load reads a ledger JSON file.
func Load(path string) (*Ledger, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, eris.Wrapf(err, "ledger: read %s", path)
	}
	return Decode(data)
}

// Save writes the ledger JSON file.
func (l *Ledger) Save(path string) error {
	data, err := l.Encode()
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return eris.Wrapf(err, "ledger: write %s", path)
	}
	return nil
}

// ParseBatch reads an edit batch: either a bare JSON array of edits or an
// object carrying them under "edits".
func ParseBatch(data []byte) ([]EditRecord, error) {
	var arr []EditRecord
	if err := json.Unmarshal(data, &arr); err == nil {
		return arr, nil
	}
	var wrapped struct {
		Edits []EditRecord `json:"edits"`
	}
	if err := json.Unmarshal(data, &wrapped); err != nil {
		return nil, eris.Wrap(err, "ledger: parse edit batch")
	}
	return wrapped.Edits, nil
}

// LoadBatch reads an edit batch JSON file.
func LoadBatch(path string) ([]EditRecord, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, eris.Wrapf(err, "ledger: read batch %s", path)
	}
	batch, err := ParseBatch(data)
	if err != nil {
		return nil, eris.Wrapf(err, "ledger: parse batch %s", path)
	}
	return batch, nil
}
