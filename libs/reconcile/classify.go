package reconcile

import (
	"strconv"
	"strings"
)

// ClassifyMachineType maps the raw type code to its display value. Machines of
// other manufacturers show their OEM name when known.
func ClassifyMachineType(raw, oem string, table Table) string {
	if raw == "" {
		return ""
	}
	if raw == table.NonOEMType {
		if oem == "" {
			return raw
		}
		return oem
	}
	for _, code := range table.ProductLines {
		if raw == code {
			return raw
		}
	}
	return ""
}

// ValidateMachineID returns the canonical decimal form of a nonzero integer id
// and an empty string for anything else.
func ValidateMachineID(raw string) string {
	n, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
	if err != nil || n == 0 {
		return ""
	}
	return strconv.FormatInt(n, 10)
}
