package water

import "strings"

// Selection is a curated, named set of water features: explicit HYDROID
// members, a case-insensitive name fragment, or both.
type Selection struct {
	Name     string
	State    string
	HydroIDs []string
	NameLike string
}

// Selections lists the curated sets shipped with the pipeline.
var Selections = []Selection{
	{Name: "champlain-vt", State: "VT", HydroIDs: ChamplainHydroIDsVT},
	{Name: "champlain-ny", State: "NY", HydroIDs: ChamplainHydroIDsNY},
	{Name: "memphremagog", State: "VT", NameLike: "Memphremagog"},
}

// SelectionByName looks up a curated selection, case-insensitively.
func SelectionByName(name string) (Selection, bool) {
	for _, s := range Selections {
		if strings.EqualFold(s.Name, name) {
			return s, true
		}
	}
	return Selection{}, false
}

// Apply filters features down to the selection. Explicit HYDROIDs are
// returned in list order; ids with no matching feature come back in
// missing. Name matches follow, in input order, skipping features already
// selected by id.
func (s Selection) Apply(features []Feature) (selected []Feature, missing []string) {
	byID := make(map[string]Feature, len(features))
	for _, f := range features {
		if _, ok := byID[f.HydroID]; !ok {
			byID[f.HydroID] = f
		}
	}

	seen := make(map[string]bool, len(s.HydroIDs))
	for _, id := range s.HydroIDs {
		if seen[id] {
			continue
		}
		f, ok := byID[id]
		if !ok {
			missing = append(missing, id)
			continue
		}
		seen[id] = true
		selected = append(selected, f)
	}

	if s.NameLike != "" {
		frag := strings.ToLower(s.NameLike)
		for _, f := range features {
			if seen[f.HydroID] {
				continue
			}
			if strings.Contains(strings.ToLower(f.Name), frag) {
				seen[f.HydroID] = true
				selected = append(selected, f)
			}
		}
	}
	return selected, missing
}

// ChamplainHydroIDsVT lists the Vermont water features that touch Lake
// Champlain or the Champlain Islands, collected by hand from the published
// interactive maps.
var ChamplainHydroIDsVT = []string{
	"11026263037025", // Unnamed
	"110492575435",   // Lk Champlain
	"11026263036983", // Lk Champlain
	"11026263036993", // Lk Champlain
	"11026263036991", // Lk Champlain
	"11026263036992", // Lk Champlain
	"110492575713",   // Unnamed
	"110492575436",   // Lk Champlain
	"110492575437",   // Lk Champlain
	"11026263036994", // Lk Champlain
	"11026263036982", // Lk Champlain
	"11026263036990", // Lk Champlain
	"110804867027",   // Lk Champlain
	"110322409845",   // Lk Champlain
	"110492575428",   // Mud Crk
	"110492575429",   // Mud Crk
	"110325943935",   // Missisquoi Bay
	"110325943898",   // First Crk
	"110491164105",   // Unnamed
	"110491164111",   // Unnamed
	"110491163695",   // Unnamed
	"11026263037031", // Unnamed
	"11026263037029", // Unnamed
	"110325943908",   // Jewett Brk
	"110491164114",   // Unnamed
	"110491163652",   // Lamoille Riv
	"110491164117",   // Unnamed
	"110491164112",   // Unnamed
	"110491164107",   // Unnamed
	"110491164087",   // Unnamed
	"110491164312",   // Unnamed
	"110491164078",   // Unnamed
	"110491164315",   // Unnamed
	"110491164314",   // Unnamed
	"11026263037131", // Arrowhead Mountain Lk
	"11026263037132", // Arrowhead Mountain Lk
	"110325943925",   // Lamoille Riv
	"110804869121",   // Unnamed
	"110804867056",   // Little Otter Crk
	"110804867054",   // South Slang
	"110804866991",   // Lewis Crk
	"110804866989",   // Lewis Crk
	"110804869798",   // Unnamed
	"110491164088",   // Unnamed
	"110804866996",   // Otter Crk
}

// ChamplainHydroIDsNY lists the New York side of the lake, collected the
// same way.
var ChamplainHydroIDsNY = []string{
	"110449409804",   // Unnamed
	"110449409787",   // Unnamed
	"11027899510961", // Lk Champlain
	"110449409693",   // Treadwell Bay
	"110449409644",   // Allens Bay
	"110449409695",   // Cumberland Bay
	"11027899510959", // Lk Champlain
	"110782060212",   // Lk Champlain
	"11027899510960", // Lk Champlain
	"11027899510956", // Lk Champlain
	"110795959087",   // Lk Champlain
	"110795959016",   // South Bay
}
