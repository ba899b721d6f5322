package interfaces

// LandMetadata describes the real-world parcel a certificate represents.
// Values are descriptive and are not validated beyond their type.
type LandMetadata struct {
	Name           string `json:"name"`
	Description    string `json:"description"`
	Location       string `json:"location"`
	GPSCoordinates string `json:"gpsCoordinates"`
	Area           string `json:"area"`
	SoilType       string `json:"soilType"`
	Ownership      string `json:"ownership"`
	WaterSource    string `json:"waterSource"`
	// YieldPotential is expressed in kilograms per year.
	YieldPotential uint64 `json:"yieldPotential"`
	// LastSurveyDate is expressed in seconds since the unix epoch.
	LastSurveyDate uint64 `json:"lastSurveyDate"`
	ImageURI       string `json:"imageURI"`
	ExternalURL    string `json:"externalURL"`
}

// CreatedEvent is emitted once per successful issuance and carries the full record.
type CreatedEvent struct {
	ID       CertificateID `json:"id"`
	Metadata LandMetadata  `json:"metadata"`
}

// MetadataUpdatedEvent is emitted once per successful update. It carries only the
// descriptive parcel fields; display name, description, image and external url are
// not part of the event.
type MetadataUpdatedEvent struct {
	ID             CertificateID `json:"id"`
	Location       string        `json:"location"`
	GPSCoordinates string        `json:"gpsCoordinates"`
	Area           string        `json:"area"`
	SoilType       string        `json:"soilType"`
	Ownership      string        `json:"ownership"`
	WaterSource    string        `json:"waterSource"`
	YieldPotential uint64        `json:"yieldPotential"`
	LastSurveyDate uint64        `json:"lastSurveyDate"`
}

// NewMetadataUpdatedEvent projects a metadata record onto the update event shape.
func NewMetadataUpdatedEvent(id CertificateID, m LandMetadata) MetadataUpdatedEvent {
	return MetadataUpdatedEvent{
		ID:             id,
		Location:       m.Location,
		GPSCoordinates: m.GPSCoordinates,
		Area:           m.Area,
		SoilType:       m.SoilType,
		Ownership:      m.Ownership,
		WaterSource:    m.WaterSource,
		YieldPotential: m.YieldPotential,
		LastSurveyDate: m.LastSurveyDate,
	}
}
