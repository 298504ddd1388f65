// Package cli implements the smart-tra command-line interface.
package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	configfile "github.com/lis186/smart-tra-mcp-server/internal/adapters/driven/config/file"
	"github.com/lis186/smart-tra-mcp-server/internal/adapters/driven/storage/sqlite"
	"github.com/lis186/smart-tra-mcp-server/internal/adapters/driven/tdx"
	"github.com/lis186/smart-tra-mcp-server/internal/core/domain"
	"github.com/lis186/smart-tra-mcp-server/internal/core/ports/driven"
	"github.com/lis186/smart-tra-mcp-server/internal/core/services"
	"github.com/lis186/smart-tra-mcp-server/internal/logger"
)

// version is set at build time via ldflags.
var version = "dev"

// Shared services, wired once by initServices and used by the
// subcommands and the MCP server.
var (
	configStore  *configfile.ConfigStore
	aliasSource  *configfile.AliasSource
	cacheStore   *sqlite.Store
	tdxClient    *tdx.Client
	appClock     driven.Clock
	stationIndex *services.StationIndex
	trainCatalog *services.TrainCatalogResolver
	queryService *services.TrainSearch
	tripPlanner  *services.BranchLinePlanner
)

var (
	flagVerbose   bool
	flagConfigDir string
	flagDataDir   string
)

var rootCmd = &cobra.Command{
	Use:   "smart-tra",
	Short: "Natural-language Taiwan Railway timetable queries",
	Long: `smart-tra answers Taiwan Railway (TRA) questions asked in plain
Chinese or English: routes, departure windows, train numbers and
branch-line transfers. It runs standalone or as an MCP server for AI
assistants.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
		logger.SetVerbose(flagVerbose)
		if cmd.Name() == "version" {
			return nil
		}
		return initServices(cmd.Context())
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&flagVerbose, "verbose", "v", false, "verbose logging to stderr")
	rootCmd.PersistentFlags().StringVar(&flagConfigDir, "config-dir", "", "config directory (default ~/.smart-tra)")
	rootCmd.PersistentFlags().StringVar(&flagDataDir, "data-dir", "", "data directory (default ~/.smart-tra/data)")
}

// Execute runs the root command until completion or interrupt.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

// initServices wires the full service graph: config, caches, the TDX
// client when credentials are present, and the core query services.
// Without credentials the app still runs off cached snapshots.
func initServices(ctx context.Context) error {
	// A .env in the working directory is a convenience for local runs;
	// missing is the normal case.
	_ = godotenv.Load()

	var err error
	configStore, err = configfile.NewConfigStore(flagConfigDir)
	if err != nil {
		return fmt.Errorf("opening config: %w", err)
	}

	aliasSource, err = configfile.NewAliasSource(flagConfigDir)
	if err != nil {
		return fmt.Errorf("opening alias table: %w", err)
	}
	aliases, err := aliasSource.Load()
	if err != nil {
		return fmt.Errorf("loading alias table: %w", err)
	}

	cacheStore, err = sqlite.NewStore(flagDataDir)
	if err != nil {
		return fmt.Errorf("opening cache: %w", err)
	}

	tz := configStore.GetString("timezone")
	if tz == "" {
		tz = "Asia/Taipei"
	}
	loc, err := time.LoadLocation(tz)
	if err != nil {
		return fmt.Errorf("loading timezone %q: %w", tz, err)
	}
	appClock = services.NewSystemClock(loc)

	clientID := firstNonEmpty(os.Getenv("TDX_CLIENT_ID"), configStore.GetString("tdx.client_id"))
	clientSecret := firstNonEmpty(os.Getenv("TDX_CLIENT_SECRET"), configStore.GetString("tdx.client_secret"))
	if clientID != "" && clientSecret != "" {
		tdxClient, err = tdx.New(tdx.Config{ClientID: clientID, ClientSecret: clientSecret})
		if err != nil {
			return fmt.Errorf("creating TDX client: %w", err)
		}
	} else {
		logger.Warn("TDX credentials not configured; running from cached data only")
	}

	stations, err := loadStations(ctx)
	if err != nil {
		return err
	}
	stationIndex = services.NewStationIndex(aliases)
	stationIndex.Rebuild(stations)

	trainCatalog = services.NewTrainCatalogResolver(loadCatalog(ctx))

	parser := services.NewQueryParser(appClock)
	filter := services.NewTemporalFilter(appClock)

	var timetable driven.TimetableSource
	if tdxClient != nil {
		timetable = tdxClient
	} else {
		timetable = unavailableTimetable{}
	}

	queryService = services.NewTrainSearch(parser, stationIndex, trainCatalog, timetable, filter, appClock)
	tripPlanner = services.NewBranchLinePlanner(domain.DefaultBranchLines, queryService)
	return nil
}

// loadStations prefers the local snapshot and falls back to a TDX
// fetch, caching the result for the next offline start.
func loadStations(ctx context.Context) ([]domain.StationRecord, error) {
	stations, err := cacheStore.LoadStations(ctx)
	if err == nil && len(stations) > 0 {
		logger.Debug("loaded %d stations from cache", len(stations))
		return stations, nil
	}

	if tdxClient == nil {
		return nil, fmt.Errorf("no cached station data and no TDX credentials; set TDX_CLIENT_ID and TDX_CLIENT_SECRET")
	}

	stations, err = tdxClient.FetchStations(ctx)
	if err != nil {
		return nil, fmt.Errorf("fetching station directory: %w", err)
	}
	if err := cacheStore.SaveStations(ctx, stations); err != nil {
		logger.Warn("caching stations failed: %v", err)
	}
	return stations, nil
}

// loadCatalog is best-effort: without a catalog the train-number
// resolver just finds nothing.
func loadCatalog(ctx context.Context) []domain.TrainCandidate {
	catalog, err := cacheStore.LoadTrainCatalog(ctx)
	if err == nil && len(catalog) > 0 {
		logger.Debug("loaded %d trains from cache", len(catalog))
		return catalog
	}

	if tdxClient == nil {
		return nil
	}
	catalog, err = tdxClient.TrainCatalog(ctx)
	if err != nil {
		logger.Warn("fetching train catalog failed: %v", err)
		return nil
	}
	if err := cacheStore.SaveTrainCatalog(ctx, catalog); err != nil {
		logger.Warn("caching train catalog failed: %v", err)
	}
	return catalog
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

// unavailableTimetable fails route searches cleanly when no TDX client
// is configured; station and train-number resolution keep working.
type unavailableTimetable struct{}

func (unavailableTimetable) DailyTimetable(context.Context, string, string, string) ([]domain.TimetableRow, error) {
	return nil, domain.ErrTimetableUnavailable
}

func (unavailableTimetable) LiveDelays(context.Context) (map[string]domain.LiveDelay, error) {
	return nil, domain.ErrTimetableUnavailable
}

func (unavailableTimetable) TrainCatalog(context.Context) ([]domain.TrainCandidate, error) {
	return nil, domain.ErrTimetableUnavailable
}
