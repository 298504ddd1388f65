package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/lis186/smart-tra-mcp-server/internal/core/domain"
)

var queryJSON bool

var queryCmd = &cobra.Command{
	Use:   "query [utterance]",
	Short: "Answer a natural-language train query",
	Long: `Parses a plain Chinese or English utterance, resolves stations and
train numbers, and prints matching departures.

Examples:
  smart-tra query "台北到台中明天早上八點"
  smart-tra query "北車去高雄最快"
  smart-tra query "152"`,
	Args: cobra.ExactArgs(1),
	RunE: runQuery,
}

func init() {
	queryCmd.Flags().BoolVar(&queryJSON, "json", false, "output the response as JSON")
	rootCmd.AddCommand(queryCmd)
}

func runQuery(cmd *cobra.Command, args []string) error {
	resp, err := queryService.Search(cmd.Context(), args[0])
	if err != nil {
		return fmt.Errorf("search failed: %w", err)
	}

	if queryJSON {
		data, err := json.MarshalIndent(resp, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal response: %w", err)
		}
		cmd.Println(string(data))
		return nil
	}

	switch resp.Outcome {
	case domain.OutcomeResults:
		printResults(cmd, resp)
	case domain.OutcomeStationChoice:
		printStationChoice(cmd, resp)
	case domain.OutcomeTrainChoice:
		printTrainChoice(cmd, resp)
	case domain.OutcomeIncomplete:
		cmd.Println("I couldn't find a route or train number in that query.")
		cmd.Println("Try something like: 台北到台中明天早上八點")
	}
	return nil
}

func printResults(cmd *cobra.Command, resp *domain.SearchResponse) {
	cmd.Printf("%s → %s\n\n", resp.Origin.DisplayName, resp.Destination.DisplayName)
	if len(resp.Results) == 0 {
		cmd.Println("No trains in the requested time window.")
		return
	}

	for i, r := range resp.Results {
		marker := " "
		if r.IsBackupOption {
			marker = "*"
		}
		cmd.Printf("%s [%d] %s %s  %s → %s  (%d min, %d stops)\n",
			marker, i+1, r.TrainType, r.TrainNo,
			r.DepartureTime, r.ArrivalTime,
			r.TravelTimeMinutes, r.IntermediateStopCount)
		if r.DelayMinutes > 0 {
			cmd.Printf("       delayed %d min, now departing %s\n", r.DelayMinutes, r.AdjustedDepartureTime)
		}
		if r.IsImminent {
			cmd.Printf("       departs in %d min\n", r.MinutesUntilDeparture)
		}
	}
	cmd.Println()
	cmd.Println("* not covered by the TPASS monthly pass")
}

func printStationChoice(cmd *cobra.Command, resp *domain.SearchResponse) {
	cmd.Println("Which station did you mean?")
	if len(resp.OriginCandidates) > 0 {
		cmd.Printf("\nOrigin %q:\n", resp.Query.OriginText)
		for i, c := range resp.OriginCandidates {
			cmd.Printf("  [%d] %s (%s)\n", i+1, c.DisplayName, c.StationID)
		}
	} else if resp.Query.OriginText != "" {
		cmd.Printf("\nNo station matches %q.\n", resp.Query.OriginText)
	}
	if len(resp.DestinationCandidates) > 0 {
		cmd.Printf("\nDestination %q:\n", resp.Query.DestinationText)
		for i, c := range resp.DestinationCandidates {
			cmd.Printf("  [%d] %s (%s)\n", i+1, c.DisplayName, c.StationID)
		}
	} else if resp.Query.DestinationText != "" {
		cmd.Printf("\nNo station matches %q.\n", resp.Query.DestinationText)
	}
}

func printTrainChoice(cmd *cobra.Command, resp *domain.SearchResponse) {
	match := resp.TrainMatch
	if match == nil || len(match.Candidates) == 0 {
		cmd.Printf("No train matches %q.\n", resp.Query.TrainNumber)
		return
	}
	cmd.Printf("Trains matching %q (%s):\n", resp.Query.TrainNumber, match.Strategy)
	for i, c := range match.Candidates {
		cmd.Printf("  [%d] %s %s\n", i+1, c.TrainTypeName, c.TrainNo)
	}
}
