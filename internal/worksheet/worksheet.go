// Package worksheet exports classified water features to an XLSX review
// workbook, one sheet per tier, and reads corrected rows back as edit
// batches for the ledger.
package worksheet

import (
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"github.com/tealeg/xlsx/v2"
	"go.uber.org/zap"

	"github.com/dirtybirdnj/vt-geodata/internal/ledger"
	"github.com/dirtybirdnj/vt-geodata/internal/water"
)

// Review workbook column headers. ReadBatch matches them
// case-insensitively, so reviewers may restyle the header row.
const (
	colHydroID   = "HYDROID"
	colName      = "Name"
	colArea      = "Area (sq km)"
	colElong     = "Elongation"
	colCategory  = "Category"
	colCorrected = "Corrected Category"
	colTimestamp = "Corrected At"
)

var header = []string{colHydroID, colName, colArea, colElong, colCategory, colCorrected, colTimestamp}

// Export writes the partition to an XLSX workbook at path, one sheet per
// tier. Reviewers fill the Corrected Category column; everything else is
// informational.
func Export(p *water.Partition, path string) error {
	log := zap.L().With(zap.String("component", "worksheet.export"))

	f := xlsx.NewFile()
	for _, cat := range water.Categories {
		sheet, err := f.AddSheet(string(cat))
		if err != nil {
			return eris.Wrapf(err, "worksheet: add sheet %q", cat)
		}

		hdr := sheet.AddRow()
		for _, h := range header {
			hdr.AddCell().SetString(h)
		}

		for _, feature := range p.Features(cat) {
			row := sheet.AddRow()
			row.AddCell().SetString(feature.HydroID)
			row.AddCell().SetString(feature.Name)
			row.AddCell().SetFloat(feature.AreaSqKm)
			row.AddCell().SetFloat(feature.Elongation)
			row.AddCell().SetString(string(cat))
			row.AddCell().SetString("") // corrected category
			row.AddCell().SetString("") // corrected at
		}
	}

	if err := f.Save(path); err != nil {
		return eris.Wrapf(err, "worksheet: save %s", path)
	}
	log.Info("review workbook written",
		zap.String("path", path),
		zap.Int("features", p.Size()),
	)
	return nil
}

// ReadBatch collects edit records from a reviewed workbook: every row on
// any sheet whose Corrected Category cell is filled and differs from the
// current category. Rows without a Corrected At value are stamped with the
// read time, so re-reading the same workbook later produces later edits.
func ReadBatch(path string) ([]ledger.EditRecord, error) {
	log := zap.L().With(zap.String("component", "worksheet.read"))

	f, err := xlsx.OpenFile(path)
	if err != nil {
		return nil, eris.Wrapf(err, "worksheet: open %s", path)
	}

	readAt := time.Now().UTC()
	var batch []ledger.EditRecord
	for _, sheet := range f.Sheets {
		edits, err := readSheet(sheet, readAt)
		if err != nil {
			return nil, eris.Wrapf(err, "worksheet: sheet %q", sheet.Name)
		}
		batch = append(batch, edits...)
	}

	log.Info("reviewed workbook read",
		zap.String("path", path),
		zap.Int("edits", len(batch)),
	)
	return batch, nil
}

func readSheet(sheet *xlsx.Sheet, readAt time.Time) ([]ledger.EditRecord, error) {
	if len(sheet.Rows) == 0 {
		return nil, nil
	}

	cols := indexColumns(sheet.Rows[0])
	for _, required := range []string{colHydroID, colCategory, colCorrected} {
		if _, ok := cols[normalizeHeader(required)]; !ok {
			return nil, eris.Errorf("missing %q column", required)
		}
	}

	var edits []ledger.EditRecord
	for i, row := range sheet.Rows[1:] {
		corrected := strings.TrimSpace(cellAt(row, cols[normalizeHeader(colCorrected)]))
		if corrected == "" {
			continue
		}

		hydroID := strings.TrimSpace(cellAt(row, cols[normalizeHeader(colHydroID)]))
		if hydroID == "" {
			return nil, eris.Errorf("row %d: corrected category without a HYDROID", i+2)
		}

		to, ok := water.NormalizeCategory(corrected)
		if !ok {
			return nil, eris.Errorf("row %d: unknown category %q", i+2, corrected)
		}

		from := strings.TrimSpace(cellAt(row, cols[normalizeHeader(colCategory)]))
		if current, ok := water.NormalizeCategory(from); ok && current == to {
			continue
		}

		ts := readAt
		if idx, ok := cols[normalizeHeader(colTimestamp)]; ok {
			if raw := strings.TrimSpace(cellAt(row, idx)); raw != "" {
				parsed, err := parseTimestamp(raw)
				if err != nil {
					return nil, eris.Wrapf(err, "row %d: corrected-at value %q", i+2, raw)
				}
				ts = parsed
			}
		}

		var displayName string
		if idx, ok := cols[normalizeHeader(colName)]; ok {
			displayName = strings.TrimSpace(cellAt(row, idx))
		}

		edits = append(edits, ledger.EditRecord{
			HydroID:      hydroID,
			FromCategory: from,
			ToCategory:   string(to),
			DisplayName:  displayName,
			Timestamp:    ts,
		})
	}
	return edits, nil
}

// indexColumns maps normalized header labels to column positions.
func indexColumns(hdr *xlsx.Row) map[string]int {
	cols := make(map[string]int, len(hdr.Cells))
	for i, cell := range hdr.Cells {
		label := normalizeHeader(cell.String())
		if label == "" {
			continue
		}
		if _, exists := cols[label]; !exists {
			cols[label] = i
		}
	}
	return cols
}

func normalizeHeader(label string) string {
	return strings.ToLower(strings.TrimSpace(label))
}

// cellAt tolerates short rows; trailing empty cells are often absent.
func cellAt(row *xlsx.Row, idx int) string {
	if idx < 0 || idx >= len(row.Cells) {
		return ""
	}
	return row.Cells[idx].String()
}

func parseTimestamp(raw string) (time.Time, error) {
	for _, layout := range []string{time.RFC3339, "2006-01-02 15:04:05", "2006-01-02"} {
		if ts, err := time.Parse(layout, raw); err == nil {
			return ts.UTC(), nil
		}
	}
	return time.Time{}, eris.New("unrecognized timestamp format")
}
