package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
)

var stationJSON bool

var stationCmd = &cobra.Command{
	Use:   "station [name]",
	Short: "Resolve a station name or alias",
	Long: `Resolves free text against the TRA station directory and prints
ranked candidates with confidence scores.

Examples:
  smart-tra station 北車
  smart-tra station Taipei
  smart-tra station 臺`,
	Args: cobra.ExactArgs(1),
	RunE: runStation,
}

func init() {
	stationCmd.Flags().BoolVar(&stationJSON, "json", false, "output candidates as JSON")
	rootCmd.AddCommand(stationCmd)
}

func runStation(cmd *cobra.Command, args []string) error {
	candidates := stationIndex.Resolve(args[0])

	if stationJSON {
		data, err := json.MarshalIndent(candidates, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal candidates: %w", err)
		}
		cmd.Println(string(data))
		return nil
	}

	if len(candidates) == 0 {
		cmd.Printf("No station matches %q.\n", args[0])
		return nil
	}

	for i, c := range candidates {
		cmd.Printf("  [%d] %s (%s)  %.2f\n", i+1, c.DisplayName, c.StationID, c.Confidence)
	}
	return nil
}
