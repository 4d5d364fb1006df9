package report

type vehicleReportRequest struct {
	Economical  string `json:"economical"  validate:"required,numeric,max=10"`
	Status      string `json:"status"      validate:"required,max=32"`
	FailTypeID  int64  `json:"failTypeId"  validate:"omitempty,gt=0"`
	OtherReason string `json:"otherReason" validate:"omitempty,max=255"`
	Mileage     int    `json:"mileage"     validate:"gte=0,lte=999999"`
}

type deviceReportRequest struct {
	SerialNumber string `json:"serialNumber" validate:"required,alphanum,min=4,max=32"`
	Status       string `json:"status"       validate:"required,max=32"`
	FailTypeID   int64  `json:"failTypeId"   validate:"omitempty,gt=0"`
	OtherReason  string `json:"otherReason"  validate:"omitempty,max=255"`
}

type reportAccepted struct {
	Reported bool `json:"reported"`
}

// historyRow is one status-history entry with the live elapsed reading at
// response time.
type historyRow struct {
	ID             int64  `json:"id"`
	Economical     string `json:"economical,omitempty"`
	SerialNumber   string `json:"serialNumber,omitempty"`
	Status         string `json:"status"`
	FailType       string `json:"failType,omitempty"`
	WorkCenter     string `json:"workCenter"`
	Elapsed        string `json:"elapsed"`
	ElapsedSeconds int64  `json:"elapsedSeconds"`
}

type historyView struct {
	Entries []historyRow `json:"entries"`
}

type suggestionsResponse struct {
	Suggestions []string `json:"suggestions"`
}
