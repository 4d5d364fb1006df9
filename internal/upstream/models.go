package upstream

import (
	"encoding/json"
	"strconv"

	"github.com/gerefleet/console/internal/elapsed"
)

type LoginResult struct {
	Token string `json:"token"`
	Name  string `json:"name"`
}

// WorkCenterRef tolerates the backend's drift: the work center arrives as a
// plain string in some list payloads and as an object (with "name" or
// "nombre") in others.
type WorkCenterRef struct {
	ID   int64
	Name string
}

func (w *WorkCenterRef) UnmarshalJSON(b []byte) error {
	if string(b) == "null" {
		return nil
	}
	var s string
	if err := json.Unmarshal(b, &s); err == nil {
		w.Name = s
		return nil
	}
	var obj struct {
		ID     int64  `json:"id"`
		Name   string `json:"name"`
		Nombre string `json:"nombre"`
	}
	if err := json.Unmarshal(b, &obj); err != nil {
		return err
	}
	w.ID = obj.ID
	w.Name = obj.Name
	if w.Name == "" {
		w.Name = obj.Nombre
	}
	return nil
}

func (w WorkCenterRef) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		ID   int64  `json:"id,omitempty"`
		Name string `json:"name"`
	}{ID: w.ID, Name: w.Name})
}

type Vehicle struct {
	Economical string        `json:"economical"`
	Badge      string        `json:"badge"`
	Property   string        `json:"property,omitempty"`
	Mileage    int           `json:"mileage,omitempty"`
	Brand      string        `json:"brand,omitempty"`
	Model      string        `json:"model,omitempty"`
	Year       int           `json:"year,omitempty"`
	WorkCenter WorkCenterRef `json:"workCenter"`
	Process    string        `json:"process,omitempty"`
	Status     string        `json:"status,omitempty"`
}

// VehicleRequest mirrors the backend's creation payload.
type VehicleRequest struct {
	Economical   string `json:"economical"`
	Badge        string `json:"badge"`
	Property     string `json:"property"`
	Mileage      int    `json:"mileage"`
	Brand        string `json:"brand"`
	Model        string `json:"model"`
	Year         int    `json:"year"`
	WorkCenterID int64  `json:"workCenterId"`
	ProcessID    int64  `json:"processId"`
}

type Device struct {
	SerialNumber string        `json:"serialNumber"`
	DeviceType   string        `json:"deviceType"`
	Status       string        `json:"status,omitempty"`
	WorkCenter   WorkCenterRef `json:"workCenter"`

	FailType            string `json:"failType,omitempty"`
	PersonalizedFailure string `json:"personalizedFailure,omitempty"`
	Fail                string `json:"fail,omitempty"`

	elapsed.StartFields
}

func (d Device) TimerID() string            { return d.SerialNumber }
func (d Device) Start() elapsed.StartFields { return d.StartFields }

// FailText picks the first populated failure description variant.
func (d Device) FailText() string {
	switch {
	case d.FailType != "":
		return d.FailType
	case d.PersonalizedFailure != "":
		return d.PersonalizedFailure
	case d.Fail != "":
		return d.Fail
	}
	return ""
}

type DeviceRequest struct {
	SerialNumber string `json:"serialNumber"`
	DeviceType   string `json:"deviceType"`
	WorkCenterID int64  `json:"workCenterId"`
	Status       string `json:"status"`
}

// StatusVehicle is a vehicle sitting in a bad or waiting state (workshop or
// yard), carrying the report instant its timer counts from.
type StatusVehicle struct {
	Economical string        `json:"economical"`
	Badge      string        `json:"badge"`
	WorkCenter WorkCenterRef `json:"workCenter"`

	FailType            string `json:"failType,omitempty"`
	PersonalizedFailure string `json:"personalizedFailure,omitempty"`

	elapsed.StartFields
}

func (v StatusVehicle) TimerID() string            { return v.Economical }
func (v StatusVehicle) Start() elapsed.StartFields { return v.StartFields }

func (v StatusVehicle) FailText() string {
	if v.FailType != "" {
		return v.FailType
	}
	return v.PersonalizedFailure
}

type HistoryEntry struct {
	ID         int64         `json:"id"`
	Economical string        `json:"economical,omitempty"`
	Serial     string        `json:"serialNumber,omitempty"`
	Status     string        `json:"status,omitempty"`
	FailType   string        `json:"failType,omitempty"`
	WorkCenter WorkCenterRef `json:"workCenter"`

	elapsed.StartFields
}

func (h HistoryEntry) TimerID() string            { return strconv.FormatInt(h.ID, 10) }
func (h HistoryEntry) Start() elapsed.StartFields { return h.StartFields }

// ReportRequest is a status-change report for a vehicle or a device. FailTypeID
// references the failure catalog; OtherReason is the free-text escape hatch.
type ReportRequest struct {
	Economical   string `json:"economical,omitempty"`
	SerialNumber string `json:"serialNumber,omitempty"`
	Status       string `json:"status"`
	FailTypeID   int64  `json:"failTypeId,omitempty"`
	OtherReason  string `json:"otherReason,omitempty"`
	Mileage      int    `json:"mileage,omitempty"`
}

type WorkCenter struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

type Process struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

type FailType struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

type Role struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

type User struct {
	RPE  string `json:"rpe"`
	Name string `json:"name"`
	Role string `json:"role,omitempty"`
}

type UserRequest struct {
	RPE      string `json:"rpe"`
	Name     string `json:"name"`
	Password string `json:"password"`
	RoleID   int64  `json:"roleId"`
}
