// Package tracking provides a DHL shipment tracking client. Without an API
// key it serves deterministic mock shipments so the rest of the system can
// run against realistic data.
package tracking

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"chakancha/internal/logging"
)

// DefaultBaseURL is the DHL unified tracking endpoint.
const DefaultBaseURL = "https://api-eu.dhl.com/track/shipments"

// Shipment is the standardized tracking information returned to callers.
type Shipment struct {
	TrackingNumber    string  `json:"tracking_number"`
	Status            string  `json:"status"`
	StatusDescription string  `json:"status_description"`
	CurrentLocation   string  `json:"current_location"`
	EstimatedDelivery string  `json:"estimated_delivery,omitempty"`
	Origin            Place   `json:"origin"`
	Destination       Place   `json:"destination"`
	Events            []Event `json:"events,omitempty"`
	LastUpdated       string  `json:"last_updated"`
}

// Place is an origin or destination.
type Place struct {
	City    string `json:"city"`
	Country string `json:"country"`
}

// Event is one entry in the shipment's tracking history.
type Event struct {
	Timestamp   string `json:"timestamp"`
	Description string `json:"description"`
	Location    string `json:"location"`
}

// TrackingError reports a shipment lookup that failed for a known reason.
type TrackingError struct {
	TrackingNumber string
	Reason         string
}

func (e *TrackingError) Error() string {
	return fmt.Sprintf("tracking %s: %s", e.TrackingNumber, e.Reason)
}

// Client talks to the DHL tracking API. With no API key configured it runs
// in mock mode.
type Client struct {
	apiKey   string
	baseURL  string
	http     *http.Client
	mockMode bool
}

// NewClient builds a tracking client. An empty apiKey enables mock mode.
func NewClient(apiKey, baseURL string, timeout time.Duration) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	mockMode := apiKey == ""
	if mockMode {
		logging.Tracking("DHL API key not set, running in mock mode")
	} else {
		logging.Tracking("DHL client initialized with real credentials")
	}

	return &Client{
		apiKey:   apiKey,
		baseURL:  baseURL,
		http:     &http.Client{Timeout: timeout},
		mockMode: mockMode,
	}
}

// MockMode reports whether the client serves canned data.
func (c *Client) MockMode() bool {
	return c.mockMode
}

// ValidateTrackingNumber checks the basic shape of a DHL tracking number.
func ValidateTrackingNumber(trackingNumber string) bool {
	trackingNumber = strings.TrimSpace(trackingNumber)
	return len(trackingNumber) >= 8 && len(trackingNumber) <= 39
}

// Track looks up a shipment by tracking number.
func (c *Client) Track(ctx context.Context, trackingNumber string) (*Shipment, error) {
	timer := logging.StartTimer(logging.CategoryTracking, "tracking.Track")
	defer timer.Stop()

	trackingNumber = strings.TrimSpace(trackingNumber)
	if !ValidateTrackingNumber(trackingNumber) {
		return nil, &TrackingError{TrackingNumber: trackingNumber, Reason: "invalid tracking number format"}
	}

	if c.mockMode {
		logging.TrackingDebug("Serving mock data for %s", trackingNumber)
		return mockShipment(trackingNumber), nil
	}

	logging.Tracking("Fetching DHL data for %s", trackingNumber)
	return c.fetch(ctx, trackingNumber)
}

func (c *Client) fetch(ctx context.Context, trackingNumber string) (*Shipment, error) {
	u, err := url.Parse(c.baseURL)
	if err != nil {
		return nil, fmt.Errorf("bad tracking base URL: %w", err)
	}
	q := u.Query()
	q.Set("trackingNumber", trackingNumber)
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("build tracking request: %w", err)
	}
	req.Header.Set("DHL-API-Key", c.apiKey)
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		logging.TrackingError("DHL request failed for %s: %v", trackingNumber, err)
		return nil, &TrackingError{TrackingNumber: trackingNumber, Reason: "DHL API request failed"}
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return nil, &TrackingError{TrackingNumber: trackingNumber, Reason: "tracking number not found"}
	case resp.StatusCode != http.StatusOK:
		logging.TrackingError("DHL API returned %d for %s", resp.StatusCode, trackingNumber)
		return nil, &TrackingError{
			TrackingNumber: trackingNumber,
			Reason:         fmt.Sprintf("DHL API error: %d", resp.StatusCode),
		}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read tracking response: %w", err)
	}

	var raw dhlResponse
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, &TrackingError{TrackingNumber: trackingNumber, Reason: "failed to parse tracking data"}
	}
	return parseResponse(&raw, trackingNumber)
}

// dhlResponse mirrors the fields we use from the DHL unified tracking API.
type dhlResponse struct {
	Shipments []struct {
		Status struct {
			StatusCode  string `json:"statusCode"`
			Description string `json:"description"`
		} `json:"status"`
		EstimatedTimeOfDelivery    string `json:"estimatedTimeOfDelivery"`
		EstimatedDeliveryTimeFrame struct {
			EstimatedFrom string `json:"estimatedFrom"`
		} `json:"estimatedDeliveryTimeFrame"`
		Origin      dhlPlace   `json:"origin"`
		Destination dhlPlace   `json:"destination"`
		Events      []dhlEvent `json:"events"`
	} `json:"shipments"`
}

type dhlPlace struct {
	Address struct {
		AddressLocality string `json:"addressLocality"`
		CountryCode     string `json:"countryCode"`
	} `json:"address"`
}

type dhlEvent struct {
	Timestamp   string   `json:"timestamp"`
	Description string   `json:"description"`
	Location    dhlPlace `json:"location"`
}

func parseResponse(raw *dhlResponse, trackingNumber string) (*Shipment, error) {
	if len(raw.Shipments) == 0 {
		return nil, &TrackingError{TrackingNumber: trackingNumber, Reason: "no shipment data found"}
	}
	sh := raw.Shipments[0]

	status := sh.Status.StatusCode
	if status == "" {
		status = "unknown"
	}
	description := sh.Status.Description
	if description == "" {
		description = "Status unknown"
	}

	estimated := sh.EstimatedTimeOfDelivery
	if estimated == "" {
		estimated = sh.EstimatedDeliveryTimeFrame.EstimatedFrom
	}

	currentLocation := "Unknown"
	if len(sh.Events) > 0 && sh.Events[0].Location.Address.AddressLocality != "" {
		currentLocation = sh.Events[0].Location.Address.AddressLocality
	}

	// Keep only the five most recent events.
	events := sh.Events
	if len(events) > 5 {
		events = events[:5]
	}
	out := make([]Event, 0, len(events))
	for _, ev := range events {
		out = append(out, Event{
			Timestamp:   ev.Timestamp,
			Description: ev.Description,
			Location:    ev.Location.Address.AddressLocality,
		})
	}

	return &Shipment{
		TrackingNumber:    trackingNumber,
		Status:            status,
		StatusDescription: description,
		CurrentLocation:   currentLocation,
		EstimatedDelivery: estimated,
		Origin: Place{
			City:    sh.Origin.Address.AddressLocality,
			Country: sh.Origin.Address.CountryCode,
		},
		Destination: Place{
			City:    sh.Destination.Address.AddressLocality,
			Country: sh.Destination.Address.CountryCode,
		},
		Events:      out,
		LastUpdated: time.Now().UTC().Format(time.RFC3339),
	}, nil
}
