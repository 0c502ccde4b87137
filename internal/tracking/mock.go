package tracking

import (
	"strings"
	"time"
)

// mockShipment returns canned tracking data keyed by well-known test
// numbers, with a generic in-transit shipment for everything else.
func mockShipment(trackingNumber string) *Shipment {
	now := time.Now().UTC().Format(time.RFC3339)

	switch strings.ToUpper(trackingNumber) {
	case "TEST123":
		return &Shipment{
			TrackingNumber:    trackingNumber,
			Status:            "transit",
			StatusDescription: "Shipment in transit",
			CurrentLocation:   "Nairobi Sorting Facility",
			EstimatedDelivery: "2026-03-05",
			Origin:            Place{City: "Nandi Hills", Country: "KE"},
			Destination:       Place{City: "New York", Country: "US"},
			Events: []Event{
				{Timestamp: "2026-02-28T14:30:00Z", Description: "Shipment picked up", Location: "Nandi Hills"},
				{Timestamp: "2026-02-28T18:45:00Z", Description: "Arrived at sorting facility", Location: "Nairobi"},
				{Timestamp: "2026-02-28T20:15:00Z", Description: "Departed sorting facility", Location: "Nairobi"},
			},
			LastUpdated: now,
		}
	case "DELIVERED456":
		return &Shipment{
			TrackingNumber:    trackingNumber,
			Status:            "delivered",
			StatusDescription: "Shipment delivered",
			CurrentLocation:   "New York, NY",
			EstimatedDelivery: "2026-02-25",
			Origin:            Place{City: "Nandi Hills", Country: "KE"},
			Destination:       Place{City: "New York", Country: "US"},
			Events: []Event{
				{Timestamp: "2026-02-25T10:30:00Z", Description: "Delivered", Location: "New York, NY"},
				{Timestamp: "2026-02-25T08:15:00Z", Description: "Out for delivery", Location: "New York, NY"},
			},
			LastUpdated: now,
		}
	}

	return &Shipment{
		TrackingNumber:    trackingNumber,
		Status:            "transit",
		StatusDescription: "Shipment in transit to destination",
		CurrentLocation:   "Frankfurt Sorting Facility",
		EstimatedDelivery: "2026-03-10",
		Origin:            Place{City: "Nairobi", Country: "KE"},
		Destination:       Place{City: "London", Country: "GB"},
		Events: []Event{
			{Timestamp: now, Description: "Package in transit", Location: "Frankfurt"},
		},
		LastUpdated: now,
	}
}
