package reconcile

import "encoding/json"

type AlertRecord struct {
	Type    string          `json:"alertType"`
	Payload json.RawMessage `json:"alertData,omitempty"`
}

// TallyAlerts counts alerts whose trimmed, case-folded type equals target.
func TallyAlerts(alerts []AlertRecord, target string) int {
	count := 0
	for _, alert := range alerts {
		if sameText(alert.Type, target) {
			count++
		}
	}
	return count
}
