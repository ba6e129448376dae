package dto

// SyncResponseDTO keeps the field names the frontend already reads
// (fetched_from_api, ai_selected, new_in_db) and adds the full run report.
type SyncResponseDTO struct {
	FetchedFromAPI int           `json:"fetched_from_api"`
	AISelected     int           `json:"ai_selected"`
	NewInDB        int           `json:"new_in_db"`
	Message        string        `json:"message"`
	Report         SyncReportDTO `json:"report"`
}

type SyncReportDTO struct {
	Fetched    int    `json:"fetched"`
	Normalized int    `json:"normalized"`
	Enriched   int    `json:"enriched"`
	Curated    int    `json:"curated"`
	Dropped    int    `json:"dropped"`
	Created    int    `json:"created"`
	Updated    int    `json:"updated"`
	Failed     int    `json:"failed"`
	Duration   string `json:"duration" example:"12.5s"`
}

// SyncAcceptedDTO answers an async sync request.
type SyncAcceptedDTO struct {
	EventID   string `json:"event_id"`
	RequestID string `json:"request_id"`
	Count     int    `json:"count"`
	Message   string `json:"message"`
}

// SyncErrorDTO is returned when a run fails; the counts reached so far are kept.
type SyncErrorDTO struct {
	Error   string        `json:"error"`
	Stage   string        `json:"stage,omitempty"`
	Fetched int           `json:"fetched"`
	Curated int           `json:"curated"`
	Report  SyncReportDTO `json:"report"`
}
