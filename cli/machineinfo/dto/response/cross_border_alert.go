package response

import (
	"encoding/json"
	"time"
)

type CrossBorderAlert struct {
	FullModel string          `json:"fullModel"`
	Serial    string          `json:"serial"`
	AlertType string          `json:"alertType"`
	OrgID     string          `json:"orgId"`
	AlertData json.RawMessage `json:"alertData,omitempty"`
	RaisedAt  time.Time       `json:"raisedAt"`
}

type Error struct {
	Error     string `json:"error"`
	RequestID string `json:"requestId,omitempty"`
}
