package reconcile

import "strings"

// PermissionScope lists the organizations whose records a caller may see
// unmasked, per field group. A nil scope or a nil list masks everything.
type PermissionScope struct {
	CustomerNameOrgIDs []string `json:"customerNameOrgIds"`
	PersonalInfoOrgIDs []string `json:"personalInfoOrgIds"`
	MapOrgIDs          []string `json:"mapOrgIds"`
}

func (s *PermissionScope) customerName() []string {
	if s == nil {
		return nil
	}
	return s.CustomerNameOrgIDs
}

func (s *PermissionScope) personalInfo() []string {
	if s == nil {
		return nil
	}
	return s.PersonalInfoOrgIDs
}

func (s *PermissionScope) mapView() []string {
	if s == nil {
		return nil
	}
	return s.MapOrgIDs
}

// IsEmpty reports whether no field group grants anything.
func (s *PermissionScope) IsEmpty() bool {
	return len(s.customerName()) == 0 && len(s.personalInfo()) == 0 && len(s.mapView()) == 0
}

func contains(orgIDs []string, orgID string) bool {
	for _, id := range orgIDs {
		if strings.EqualFold(id, orgID) {
			return true
		}
	}
	return false
}

// Mask redacts customer name, PSSR name and coordinates of info for every
// field group whose scope does not include orgID. Masking is idempotent.
func Mask(scope *PermissionScope, orgID string, info MachineInfo, table Table) MachineInfo {
	if !contains(scope.customerName(), orgID) {
		info.CustomerName = maskText(info.CustomerName, table.MaskSentinel)
	}
	if !contains(scope.personalInfo(), orgID) {
		info.PssrName = maskText(info.PssrName, table.MaskSentinel)
	}
	if !contains(scope.mapView(), orgID) {
		info.Latitude = 0.0
		info.Longitude = 0.0
	}
	return info
}

// maskText keeps the last three characters and stars the rest. Values shorter
// than that are replaced by the sentinel.
func maskText(value, sentinel string) string {
	runes := []rune(value)
	if len(runes) < 3 {
		return sentinel
	}
	return strings.Repeat("*", len(runes)-3) + string(runes[len(runes)-3:])
}
