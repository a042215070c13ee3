package models

// LocationRecord is what a geolocation provider knows about an IP address
// The IP field is excluded from JSON; providers key their storage by it
type LocationRecord struct {
	IP         string `json:"-"`           // The IP address that was looked up
	City       string `json:"city"`        // City name, e.g. "San Francisco"
	State      string `json:"state"`       // State or region code, e.g. "CA"
	PostalCode string `json:"postal_code"` // Postal/ZIP code, e.g. "94108"
}

// VoterLocationResponse is the success body of the voter location endpoint
type VoterLocationResponse struct {
	Success       bool   `json:"success"`
	VoterLocation string `json:"voter_location" example:"San Francisco, CA 94108"`
}

// ErrorResponse is the JSON error format used by middleware (rate limiting)
type ErrorResponse struct {
	Error string `json:"error"` // Error message
}
