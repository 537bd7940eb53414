package model

// LumaGeoAddress is the structured address Luma attaches to in-person events.
type LumaGeoAddress struct {
	Address     string `json:"address,omitempty"`
	City        string `json:"city,omitempty"`
	Region      string `json:"region,omitempty"`
	Country     string `json:"country,omitempty"`
	CityState   string `json:"city_state,omitempty"`
	FullAddress string `json:"full_address,omitempty"`
}

// LumaEvent is an event managed by the Luma calendar associated with the API key.
type LumaEvent struct {
	APIID         string          `json:"api_id"`
	Name          string          `json:"name"`
	Description   string          `json:"description"`
	DescriptionMD string          `json:"description_md"`
	StartAt       string          `json:"start_at"`
	EndAt         string          `json:"end_at"`
	Timezone      string          `json:"timezone"`
	URL           string          `json:"url"`
	CoverURL      string          `json:"cover_url"`
	MeetingURL    string          `json:"meeting_url,omitempty"`
	GeoAddress    *LumaGeoAddress `json:"geo_address_json,omitempty"`
	Visibility    string          `json:"visibility"`
}

// LocationText flattens the structured address into a single display string.
// Returns "" for online-only events.
func (e LumaEvent) LocationText() string {
	addr := e.GeoAddress
	if addr == nil {
		return ""
	}
	if addr.FullAddress != "" {
		return addr.FullAddress
	}
	if addr.Address != "" {
		return addr.Address
	}
	if addr.CityState != "" {
		return addr.CityState
	}
	var parts []string
	for _, p := range []string{addr.City, addr.Region, addr.Country} {
		if p != "" {
			parts = append(parts, p)
		}
	}
	if len(parts) == 0 {
		return ""
	}
	joined := parts[0]
	for _, p := range parts[1:] {
		joined += ", " + p
	}
	return joined
}

// LumaEventCreate is the payload for creating an event in Luma.
type LumaEventCreate struct {
	Name          string `json:"name"`
	StartAt       string `json:"start_at"`
	Timezone      string `json:"timezone"`
	DescriptionMD string `json:"description_md,omitempty"`
	EndAt         string `json:"end_at,omitempty"`
	MeetingURL    string `json:"meeting_url,omitempty"`
	CoverURL      string `json:"cover_url,omitempty"`
	Visibility    string `json:"visibility,omitempty"`
	Slug          string `json:"slug,omitempty"`
}

// Validate checks the required creation fields.
func (c LumaEventCreate) Validate() error {
	if c.Name == "" {
		return &ValidationError{Field: "name", Message: "must not be empty"}
	}
	if c.StartAt == "" {
		return &ValidationError{Field: "start_at", Message: "must not be empty"}
	}
	if c.Timezone == "" {
		return &ValidationError{Field: "timezone", Message: "must not be empty"}
	}
	return nil
}

// PublicLumaEvent is the safe subset of a Luma event exposed on the public
// events endpoint.
type PublicLumaEvent struct {
	EventAPIID   string `json:"eventApiId"`
	Name         string `json:"name"`
	Description  string `json:"description"`
	StartAt      string `json:"startAt"`
	EndAt        string `json:"endAt"`
	Timezone     string `json:"timezone"`
	URL          string `json:"url"`
	CoverURL     string `json:"coverUrl"`
	MeetingURL   string `json:"meetingUrl,omitempty"`
	LocationText string `json:"locationText,omitempty"`
}
