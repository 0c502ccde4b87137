package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"chakancha/internal/tracking"
)

var trackCmd = &cobra.Command{
	Use:   "track [tracking-number]",
	Short: "Track a DHL shipment",
	Long: `Looks up a DHL shipment by tracking number and prints its status,
location and recent activity. Without a DHL API key configured, well-known
test numbers (TEST123, DELIVERED456) return mock shipments.`,
	Args: cobra.ExactArgs(1),
	RunE: runTrack,
}

func runTrack(cmd *cobra.Command, args []string) error {
	client := buildTracker()
	if client.MockMode() {
		fmt.Println("(mock mode: no DHL API key configured)")
	}

	shipment, err := client.Track(cmd.Context(), args[0])
	if err != nil {
		return err
	}

	fmt.Println(renderMarkdown(tracking.FormatShipment(shipment)))
	return nil
}
