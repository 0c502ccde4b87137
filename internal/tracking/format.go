package tracking

import (
	"fmt"
	"strings"
	"time"
)

// FormatShipment renders tracking data as markdown for chat replies.
func FormatShipment(sh *Shipment) string {
	var b strings.Builder

	fmt.Fprintf(&b, "**Tracking Number:** %s\n\n", sh.TrackingNumber)
	fmt.Fprintf(&b, "**Status:** %s\n", sh.StatusDescription)
	fmt.Fprintf(&b, "**Current Location:** %s\n", sh.CurrentLocation)

	estimated := sh.EstimatedDelivery
	if estimated == "" {
		estimated = "Not available"
	}
	fmt.Fprintf(&b, "**Estimated Delivery:** %s\n", estimated)

	if sh.Origin.City != "" {
		fmt.Fprintf(&b, "\n**From:** %s, %s", sh.Origin.City, sh.Origin.Country)
	}
	if sh.Destination.City != "" {
		fmt.Fprintf(&b, "\n**To:** %s, %s", sh.Destination.City, sh.Destination.Country)
	}

	events := sh.Events
	if len(events) > 3 {
		events = events[:3]
	}
	if len(events) > 0 {
		b.WriteString("\n\n**Recent Activity:**\n")
		for _, ev := range events {
			fmt.Fprintf(&b, "- %s - %s", formatTimestamp(ev.Timestamp), ev.Description)
			if ev.Location != "" {
				fmt.Fprintf(&b, " (%s)", ev.Location)
			}
			b.WriteString("\n")
		}
	}
	return b.String()
}

func formatTimestamp(ts string) string {
	t, err := time.Parse(time.RFC3339, ts)
	if err != nil {
		return ts
	}
	return t.Format("Jan 02, 3:04 PM")
}
