package events

import "encoding/json"

// EventData is the interface that all event data types must implement
type EventData interface {
	// EventType returns the event type this data is associated with
	EventType() EventType
}

// ReportCreatedData contains data for ReportCreated events
type ReportCreatedData struct {
	ReportID string `json:"report_id"`
	Name     string `json:"name"`
	Schedule string `json:"schedule,omitempty"`
}

// EventType returns the event type for ReportCreatedData
func (d *ReportCreatedData) EventType() EventType {
	return ReportCreated
}

// ReportDeletedData contains data for ReportDeleted events
type ReportDeletedData struct {
	ReportID string `json:"report_id"`
}

// EventType returns the event type for ReportDeletedData
func (d *ReportDeletedData) EventType() EventType {
	return ReportDeleted
}

// ReportCompletedData contains data for ReportCompleted events
type ReportCompletedData struct {
	ReportID string  `json:"report_id"`
	ResultID string  `json:"result_id"`
	Kind     string  `json:"kind"`
	Overall  float64 `json:"overall"`
	Clusters int     `json:"clusters"`
}

// EventType returns the event type for ReportCompletedData
func (d *ReportCompletedData) EventType() EventType {
	return ReportCompleted
}

// ReportFailedData contains data for ReportFailed events
type ReportFailedData struct {
	ReportID string `json:"report_id"`
	Error    string `json:"error"`
}

// EventType returns the event type for ReportFailedData
func (d *ReportFailedData) EventType() EventType {
	return ReportFailed
}

// ErrorEventData contains data for ErrorOccurred events
type ErrorEventData struct {
	Error   string                 `json:"error"`
	Context map[string]interface{} `json:"context,omitempty"`
}

// EventType returns the event type for ErrorEventData
func (d *ErrorEventData) EventType() EventType {
	return ErrorOccurred
}

// GetTypedData converts the event's data map back into its typed form.
// Returns nil for unknown types or undecodable data.
func (e *Event) GetTypedData() EventData {
	if e.Data == nil {
		return nil
	}

	var data EventData
	switch e.Type {
	case ReportCreated:
		data = &ReportCreatedData{}
	case ReportDeleted:
		data = &ReportDeletedData{}
	case ReportCompleted:
		data = &ReportCompletedData{}
	case ReportFailed:
		data = &ReportFailedData{}
	case ErrorOccurred:
		data = &ErrorEventData{}
	default:
		return nil
	}

	if err := convertMapToStruct(e.Data, data); err != nil {
		return nil
	}
	return data
}

func convertMapToStruct(m map[string]interface{}, v interface{}) error {
	jsonBytes, err := json.Marshal(m)
	if err != nil {
		return err
	}
	return json.Unmarshal(jsonBytes, v)
}

func convertEventDataToMap(data EventData) map[string]interface{} {
	if data == nil {
		return nil
	}

	jsonBytes, err := json.Marshal(data)
	if err != nil {
		return nil
	}

	var result map[string]interface{}
	if err := json.Unmarshal(jsonBytes, &result); err != nil {
		return nil
	}
	return result
}
