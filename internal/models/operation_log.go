package models

import "time"

// OperationLogEntry is one row of the append-only audit trail. Every unsupervised
// remote operation records its outcome here; for those channels this table is the
// only record of what happened.
type OperationLogEntry struct {
	ID                int64     `json:"id"`
	OperationDatetime time.Time `json:"operation_datetime"`
	EventTrigger      string    `json:"event_trigger"`
	EventType         string    `json:"event_type"`
	Identifier        string    `json:"identifier"`
	Message           string    `json:"message"`
	ResultCode        string    `json:"result_code"`
}

const (
	ResultInfo    = "info"
	ResultSuccess = "success"
	ResultWarning = "warning"
	ResultError   = "error"
)

// ValidResultCode reports whether code is one of the four recognized result codes.
func ValidResultCode(code string) bool {
	switch code {
	case ResultInfo, ResultSuccess, ResultWarning, ResultError:
		return true
	}
	return false
}
