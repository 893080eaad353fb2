package reconcile

// TerritoryAssignment is one row of the categorized ownership hierarchy.
type TerritoryAssignment struct {
	CategoryID     string `json:"catId"`
	TerritoryName  string `json:"territoryName"`
	TerritoryOwner string `json:"territoryOwner"`
	GroupName      string `json:"groupName"`
	GroupOwner     string `json:"groupOwner"`
}

// PersonnelAssignment is one row of the assigned-person list.
type PersonnelAssignment struct {
	CategoryID string `json:"catId"`
	Name       string `json:"name"`
}

type TerritoryDisplay struct {
	Owner      string
	GroupOwner string
}

type track func(TerritoryAssignment) (name, owner string)

func territoryTrack(row TerritoryAssignment) (string, string) {
	return row.TerritoryName, row.TerritoryOwner
}

func groupTrack(row TerritoryAssignment) (string, string) {
	return row.GroupName, row.GroupOwner
}

// ResolveTerritory builds the owner and group-owner display strings from the
// rows of the given category. Rows are visited in order and every matching row
// overwrites the previous label, so the last match wins.
func ResolveTerritory(rows []TerritoryAssignment, category string, table Table) TerritoryDisplay {
	return TerritoryDisplay{
		Owner:      resolveTrack(rows, category, table, territoryTrack),
		GroupOwner: resolveTrack(rows, category, table, groupTrack),
	}
}

func resolveTrack(rows []TerritoryAssignment, category string, table Table, pick track) string {
	label := ""
	for _, row := range rows {
		if row.CategoryID != category {
			continue
		}
		name, owner := pick(row)
		if table.isGeneral(name) {
			label = table.GeneralLabel
			continue
		}
		label = joinLabel(name, owner)
	}
	return label
}

func joinLabel(name, owner string) string {
	if name != "" && owner != "" {
		return name + "-" + owner
	}
	return name + owner
}

// LastMatch returns the row of the given category that ResolveTerritory reads last.
func LastMatch(rows []TerritoryAssignment, category string) (TerritoryAssignment, bool) {
	var (
		match TerritoryAssignment
		found bool
	)
	for _, row := range rows {
		if row.CategoryID == category {
			match, found = row, true
		}
	}
	return match, found
}

func firstPersonnel(rows []PersonnelAssignment, category string) string {
	for _, row := range rows {
		if row.CategoryID == category {
			return row.Name
		}
	}
	return ""
}
