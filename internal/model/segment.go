package model

import "encoding/json"

// Service type values for a segment
const (
	ServiceTypeGlass        = "glass"
	ServiceTypeInstallation = "installation"
)

// Segment is a top-level grouping of the company's offerings,
// e.g. glass fabrication vs. aluminum and installation works
type Segment struct {
	ID          uint      `json:"id" gorm:"primarykey"`
	Name        string    `json:"name" gorm:"type:varchar(255);not null"`
	Slug        string    `json:"slug" gorm:"type:varchar(255);unique;not null"`
	Overview    string    `json:"overview" gorm:"type:text"`
	ServiceType string    `json:"service_type" gorm:"type:varchar(50);not null"`
	Services    []Service `json:"-" gorm:"foreignKey:SegmentID"`
}

// SegmentView is the aggregated shape returned by the segment API.
// Its services land under a key chosen by the segment's service type,
// so one services table serves both catalogs without a type hierarchy.
type SegmentView struct {
	SegmentID   uint      `json:"segmentId"`
	Name        string    `json:"name"`
	Slug        string    `json:"slug"`
	Overview    string    `json:"overview"`
	ServiceType string    `json:"-"`
	Services    []Service `json:"-"`
}

// MarshalJSON picks the services key from the service type: "glass"
// segments key them under glassServices, anything else under
// installationServices. Exactly one of the two keys is ever emitted.
func (v SegmentView) MarshalJSON() ([]byte, error) {
	services := v.Services
	if services == nil {
		services = []Service{}
	}

	out := map[string]interface{}{
		"segmentId": v.SegmentID,
		"name":      v.Name,
		"slug":      v.Slug,
		"overview":  v.Overview,
	}
	if v.ServiceType == ServiceTypeGlass {
		out["glassServices"] = services
	} else {
		out["installationServices"] = services
	}
	return json.Marshal(out)
}
