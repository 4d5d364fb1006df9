package device

import (
	"strings"

	"github.com/gerefleet/console/internal/upstream"
)

type createDeviceRequest struct {
	SerialNumber string `json:"serialNumber" validate:"required,alphanum,min=4,max=32"`
	DeviceType   string `json:"deviceType"   validate:"required,oneof=TP LECTOR TP_LECTOR"`
	WorkCenterID int64  `json:"workCenterId" validate:"required"`
}

type deleteResponse struct {
	SerialNumber string `json:"serialNumber"`
	Deleted      bool   `json:"deleted"`
}

// damagedRow is one damaged-devices table row with the live elapsed reading
// at response time.
type damagedRow struct {
	SerialNumber   string `json:"serialNumber"`
	DeviceType     string `json:"deviceType"`
	WorkCenter     string `json:"workCenter"`
	Fail           string `json:"fail"`
	Elapsed        string `json:"elapsed"`
	ElapsedSeconds int64  `json:"elapsedSeconds"`
}

type damagedView struct {
	Devices []damagedRow `json:"devices"`
}

type suggestionsResponse struct {
	Devices []upstream.Device `json:"devices"`
}

// displayDeviceType renders the enum for humans: "TP_LECTOR" -> "Tp Lector",
// keeping short words (<= 2 chars) uppercased.
func displayDeviceType(deviceType string) string {
	if deviceType == "" {
		return ""
	}
	words := strings.Split(strings.ToUpper(deviceType), "_")
	for i, w := range words {
		if len(w) > 2 {
			words[i] = w[:1] + strings.ToLower(w[1:])
		}
	}
	return strings.Join(words, " ")
}
