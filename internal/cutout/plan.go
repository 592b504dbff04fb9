package cutout

import (
	"os"

	"github.com/rotisserie/eris"
	"gopkg.in/yaml.v3"
)

// Plan maps named water sources onto the towns they trim.
type Plan struct {
	Sources []Source `yaml:"sources"`
}

// Source is one water union and its target towns. Water comes from a
// curated selection name or an explicit GeoJSON dataset path.
type Source struct {
	Name      string   `yaml:"name"`
	Selection string   `yaml:"selection,omitempty"`
	WaterPath string   `yaml:"water,omitempty"`
	GEOIDs    []string `yaml:"geoids"`
}

// LoadPlan reads a trim plan from a YAML file.
func LoadPlan(path string) (*Plan, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, eris.Wrapf(err, "cutout: read plan %s", path)
	}

	// The YAML has a top-level "cutout" key.
	var wrapper struct {
		Cutout Plan `yaml:"cutout"`
	}
	if err := yaml.Unmarshal(data, &wrapper); err != nil {
		return nil, eris.Wrap(err, "cutout: parse plan")
	}

	plan := &wrapper.Cutout
	for i, src := range plan.Sources {
		if src.Name == "" {
			return nil, eris.Errorf("cutout: plan source %d has no name", i)
		}
		if src.Selection == "" && src.WaterPath == "" {
			return nil, eris.Errorf("cutout: plan source %q names no water selection or dataset", src.Name)
		}
		if len(src.GEOIDs) == 0 {
			return nil, eris.Errorf("cutout: plan source %q lists no towns", src.Name)
		}
	}
	return plan, nil
}

// DefaultPlan returns the shipped plan: the Champlain shoreline towns
// trimmed with the curated Vermont selection, and the Memphremagog towns
// with the name-matched lake.
func DefaultPlan() *Plan {
	return &Plan{
		Sources: []Source{
			{
				Name:      "champlain",
				Selection: "champlain-vt",
				GEOIDs:    ChamplainTownGEOIDs,
			},
			{
				Name:      "memphremagog",
				Selection: "memphremagog",
				GEOIDs:    MemphremagogTownGEOIDs,
			},
		},
	}
}

// ChamplainTownGEOIDs lists the Lake Champlain shoreline and watershed
// towns whose boundaries are trimmed with the Champlain water union.
var ChamplainTownGEOIDs = []string{
	// Grand Isle County (Champlain Islands)
	"5001300860", // Alburgh
	"5001335875", // Isle La Motte
	"5001350650", // North Hero
	"5001329275", // Grand Isle
	"5001367000", // South Hero
	// Chittenden County
	"5000714875", // Colchester
	"5000766175", // South Burlington
	"5000764300", // Shelburne
	"5000713300", // Charlotte
	"5000710675", // Burlington
	// Franklin County
	"5001127700", // Georgia
	"5000745250", // Milton
	"5001161750", // St. Albans
	"5001171725", // Swanton
	"5001133025", // Highgate
	// Addison County
	"5000126300", // Ferrisburgh
	"5000153950", // Panton
	"5000100325", // Addison
	"5000108575", // Bridport
	"5000165050", // Shoreham
	"5000153725", // Orwell
	// Rutland County
	"5002105200", // Benson
	"5002180875", // West Haven
	"5002125375", // Fair Haven
	"5002156875", // Poultney
	"5002177950", // Wells
	"5002154250", // Pawlet
	// Bennington County (western border)
	"5000361000", // Rupert
	"5000362875", // Sandgate
	"5000301450", // Arlington
	"5000363550", // Shaftsbury
	"5000304825", // Bennington
	"5000357025", // Pownal
}

// MemphremagogTownGEOIDs lists the towns on the Vermont shore of Lake
// Memphremagog.
var MemphremagogTownGEOIDs = []string{
	"5001948925", // Newport (city)
	"5001917350", // Derby
	"5001948850", // Newport (town)
}
