package vehicle

import "github.com/gerefleet/console/internal/upstream"

type createVehicleRequest struct {
	Economical   string `json:"economical"   validate:"required,numeric,max=10"`
	Badge        string `json:"badge"        validate:"required,max=7"`
	Property     string `json:"property"     validate:"required,max=32"`
	Mileage      int    `json:"mileage"      validate:"gte=0,lte=999999"`
	Brand        string `json:"brand"        validate:"required,max=32"`
	Model        string `json:"model"        validate:"required,max=32"`
	Year         int    `json:"year"         validate:"required,gte=1990"`
	WorkCenterID int64  `json:"workCenterId" validate:"required"`
	ProcessID    int64  `json:"processId"    validate:"required"`
}

type deleteResponse struct {
	Economical string `json:"economical"`
	Deleted    bool   `json:"deleted"`
}

// statusRow is one workshop/yard table row: identity, place, failure and the
// live elapsed reading at response time.
type statusRow struct {
	Economical     string `json:"economical"`
	Badge          string `json:"badge"`
	WorkCenter     string `json:"workCenter"`
	Fail           string `json:"fail"`
	Elapsed        string `json:"elapsed"`
	ElapsedSeconds int64  `json:"elapsedSeconds"`
}

type statusView struct {
	Vehicles []statusRow `json:"vehicles"`
}

type suggestionsResponse struct {
	Vehicles []upstream.Vehicle `json:"vehicles"`
}
