package main

import (
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/MK-Dev-Coder/BUSINESS-INTELLIGENCE-Project/internal/analytics"
	"github.com/MK-Dev-Coder/BUSINESS-INTELLIGENCE-Project/internal/config"
	"github.com/MK-Dev-Coder/BUSINESS-INTELLIGENCE-Project/internal/fetch"
	"github.com/MK-Dev-Coder/BUSINESS-INTELLIGENCE-Project/internal/load"
	"github.com/MK-Dev-Coder/BUSINESS-INTELLIGENCE-Project/internal/pipeline"
	"github.com/MK-Dev-Coder/BUSINESS-INTELLIGENCE-Project/internal/report"
	"github.com/MK-Dev-Coder/BUSINESS-INTELLIGENCE-Project/internal/server"
	"github.com/MK-Dev-Coder/BUSINESS-INTELLIGENCE-Project/internal/staging"
	"github.com/MK-Dev-Coder/BUSINESS-INTELLIGENCE-Project/internal/warehouse"
)

var version = "dev"

var (
	verbose    bool
	configPath string
	cfg        *config.Config
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:     "vetdw",
	Short:   "Veterinary adverse event warehouse",
	Long:    "vetdw fetches openFDA veterinary adverse event reports, stages them, and loads a star-schema warehouse for breed safety analytics.",
	Version: version,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if verbose {
			log.SetFlags(log.LstdFlags | log.Lshortfile)
		} else {
			log.SetFlags(log.LstdFlags)
		}

		// Skip config loading for init and version
		if cmd.Name() == "init" || cmd.Name() == "version" {
			return nil
		}

		path, err := config.ResolveConfigPath(configPath)
		if err != nil {
			return err
		}
		cfg, err = config.Load(path)
		if err != nil {
			return fmt.Errorf("loading config: %w", err)
		}
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose output")
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Path to config file")

	rootCmd.AddCommand(initCmd)
	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(fetchCmd)
	rootCmd.AddCommand(stageCmd)
	rootCmd.AddCommand(loadCmd)
	rootCmd.AddCommand(rebuildCmd)
	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(reportCmd)
	rootCmd.AddCommand(serveCmd)
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println("vetdw", version)
	},
}

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize configuration in ~/.config/vetdw/",
	RunE: func(cmd *cobra.Command, args []string) error {
		target := filepath.Join(config.ConfigDir(), "config.yaml")
		if _, err := os.Stat(target); err == nil {
			fmt.Printf("Config already exists: %s\n", target)
			return nil
		}

		if err := os.MkdirAll(config.ConfigDir(), 0o755); err != nil {
			return fmt.Errorf("creating config directory: %w", err)
		}

		if err := os.WriteFile(target, config.DefaultConfigYAML, 0o644); err != nil {
			return fmt.Errorf("writing config: %w", err)
		}

		fmt.Printf("Created config: %s\n", target)
		fmt.Println("Edit it to configure data sources, API keys, and load settings.")
		return nil
	},
}

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show warehouse and staging status",
	RunE: func(cmd *cobra.Command, args []string) error {
		wh, err := openWarehouse()
		if err != nil {
			return err
		}
		defer wh.Close()

		stats, err := wh.Stats()
		if err != nil {
			return fmt.Errorf("getting stats: %w", err)
		}

		fmt.Printf("Warehouse: %s\n\n", wh.Path())
		fmt.Println("Facts:")
		fmt.Printf("  Adverse events: %d\n", stats.Events)
		fmt.Println("\nDimensions:")
		fmt.Printf("  Breeds: %d\n", stats.Breeds)
		fmt.Printf("  Reactions: %d\n", stats.Reactions)
		fmt.Printf("  Outcomes: %d\n", stats.Outcomes)
		fmt.Printf("  Active ingredients: %d\n", stats.Ingredients)
		fmt.Printf("  Geographies: %d\n", stats.Geographies)
		fmt.Println("\nBridges:")
		fmt.Printf("  Event-reaction links: %d\n", stats.ReactionLinks)
		fmt.Printf("  Event-outcome links: %d\n", stats.OutcomeLinks)
		fmt.Printf("  Event-ingredient links: %d\n", stats.IngredientLinks)

		st, err := openStaging()
		if err != nil {
			return err
		}
		defer st.Close()

		events, _ := st.Count(staging.TableEvents)
		dogs, _ := st.Count(staging.TableDogBreeds)
		cats, _ := st.Count(staging.TableCatBreeds)
		fmt.Println("\nStaging:")
		fmt.Printf("  Raw events: %d\n", events)
		fmt.Printf("  Dog breeds: %d\n", dogs)
		fmt.Printf("  Cat breeds: %d\n", cats)
		return nil
	},
}

// --- fetch command ---

var fetchCmd = &cobra.Command{
	Use:   "fetch",
	Short: "Fetch raw adverse events and breed references",
	RunE: func(cmd *cobra.Command, args []string) error {
		dataDir, err := ensureDataDir()
		if err != nil {
			return err
		}

		fetcher := fetch.New(cfg, dataDir)
		result, err := fetcher.FetchAll()
		if err != nil {
			return err
		}

		fmt.Println("Fetch complete:")
		fmt.Printf("  Adverse events: %d\n", result.Events)
		fmt.Printf("  Dog breeds: %d\n", result.DogBreeds)
		fmt.Printf("  Cat breeds: %d\n", result.CatBreeds)
		return nil
	},
}

// --- stage command ---

var stageCmd = &cobra.Command{
	Use:   "stage",
	Short: "Stage raw files into the staging store",
	RunE: func(cmd *cobra.Command, args []string) error {
		dataDir, err := ensureDataDir()
		if err != nil {
			return err
		}

		st, err := openStaging()
		if err != nil {
			return err
		}
		defer st.Close()

		events, err := st.LoadJSONL(staging.TableEvents, fetch.EventsPath(dataDir))
		if err != nil {
			return err
		}
		dogs, err := st.LoadJSONArray(staging.TableDogBreeds, fetch.DogBreedsPath(dataDir))
		if err != nil {
			return err
		}
		cats, err := st.LoadJSONArray(staging.TableCatBreeds, fetch.CatBreedsPath(dataDir))
		if err != nil {
			return err
		}

		fmt.Println("Staging complete:")
		fmt.Printf("  Events: %d\n", events)
		fmt.Printf("  Dog breeds: %d\n", dogs)
		fmt.Printf("  Cat breeds: %d\n", cats)
		return nil
	},
}

// --- load command ---

var loadCmd = &cobra.Command{
	Use:   "load",
	Short: "Load staged payloads into the star schema",
	RunE: func(cmd *cobra.Command, args []string) error {
		st, err := openStaging()
		if err != nil {
			return err
		}
		defer st.Close()

		wh, err := openWarehouse()
		if err != nil {
			return err
		}
		defer wh.Close()

		loader := load.New(st, wh, cfg.Load.Checkpoint, cfg.Load.FuzzyThreshold)

		breeds, err := loader.LoadBreeds()
		if err != nil {
			return fmt.Errorf("loading breeds: %w", err)
		}
		fmt.Printf("Loaded %d reference breeds\n", breeds)

		result, err := loader.LoadEvents()
		if err != nil {
			return fmt.Errorf("loading events: %w", err)
		}
		fmt.Printf("Processed %d events: %d new, %d skipped\n", result.Processed, result.Created, result.Skipped)
		return nil
	},
}

// --- rebuild command ---

var rebuildCmd = &cobra.Command{
	Use:   "rebuild",
	Short: "Drop and recreate the star schema",
	Long:  "Drops every warehouse table and recreates the schema empty. Staged payloads are kept; run 'vetdw load' to repopulate.",
	RunE: func(cmd *cobra.Command, args []string) error {
		wh, err := openWarehouse()
		if err != nil {
			return err
		}
		defer wh.Close()

		if err := wh.Rebuild(); err != nil {
			return fmt.Errorf("rebuilding warehouse: %w", err)
		}

		fmt.Println("Warehouse rebuilt. Run 'vetdw load' to repopulate from staging.")
		return nil
	},
}

// --- run command ---

var skipFetch bool

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the full pipeline: fetch -> stage -> load",
	RunE: func(cmd *cobra.Command, args []string) error {
		dataDir, err := ensureDataDir()
		if err != nil {
			return err
		}

		st, err := openStaging()
		if err != nil {
			return err
		}
		defer st.Close()

		wh, err := openWarehouse()
		if err != nil {
			return err
		}
		defer wh.Close()

		pipe := pipeline.New(cfg, st, wh, dataDir)
		result := pipe.Run(skipFetch)

		for i, step := range result.Steps {
			fmt.Printf("\nStep %d/%d: %s\n", i+1, len(result.Steps), step.Name)
			if step.Err != nil {
				fmt.Printf("  Error: %v\n", step.Err)
			} else {
				fmt.Printf("  %s\n", step.Summary)
			}
		}

		if result.Failed() {
			return fmt.Errorf("pipeline failed")
		}
		fmt.Println("\nPipeline complete! Run 'vetdw serve' to explore the warehouse.")
		return nil
	},
}

func init() {
	runCmd.Flags().BoolVar(&skipFetch, "skip-fetch", false, "Stage and load raw files already on disk without fetching")
}

// --- report command ---

var (
	reportSpecies string
	reportLimit   int
	reportOut     string
)

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Generate markdown reports from the warehouse",
}

var reportSummaryCmd = &cobra.Command{
	Use:   "summary",
	Short: "Generate the executive summary report",
	RunE: func(cmd *cobra.Command, args []string) error {
		return writeReport(func(g *report.Generator) (string, error) {
			return g.ExecutiveSummary()
		})
	},
}

var reportBreedCmd = &cobra.Command{
	Use:   "breed [name]",
	Short: "Generate a safety report for one breed",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return writeReport(func(g *report.Generator) (string, error) {
			return g.BreedSafetyReport(args[0], reportSpecies)
		})
	},
}

var reportIngredientsCmd = &cobra.Command{
	Use:   "ingredients",
	Short: "Generate the active ingredient risk report",
	RunE: func(cmd *cobra.Command, args []string) error {
		return writeReport(func(g *report.Generator) (string, error) {
			return g.IngredientRiskReport(reportLimit)
		})
	},
}

func init() {
	reportCmd.PersistentFlags().StringVarP(&reportOut, "output", "o", "", "Write the report to a file instead of stdout")
	reportBreedCmd.Flags().StringVar(&reportSpecies, "species", "dog", "Species of the breed")
	reportIngredientsCmd.Flags().IntVar(&reportLimit, "limit", 50, "Number of ingredients to include")

	reportCmd.AddCommand(reportSummaryCmd)
	reportCmd.AddCommand(reportBreedCmd)
	reportCmd.AddCommand(reportIngredientsCmd)
}

func writeReport(generate func(*report.Generator) (string, error)) error {
	wh, err := openWarehouse()
	if err != nil {
		return err
	}
	defer wh.Close()

	g := report.New(analytics.New(wh))
	md, err := generate(g)
	if err != nil {
		return err
	}

	if reportOut == "" {
		fmt.Print(md)
		return nil
	}
	if err := os.WriteFile(reportOut, []byte(md), 0o644); err != nil {
		return fmt.Errorf("writing report: %w", err)
	}
	fmt.Printf("Report written to %s\n", reportOut)
	return nil
}

// --- serve command ---

var servePort int

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the local dashboard server",
	RunE: func(cmd *cobra.Command, args []string) error {
		wh, err := openWarehouse()
		if err != nil {
			return err
		}
		defer wh.Close()

		port := servePort
		if port == 0 {
			port = cfg.Server.Port
		}

		fmt.Printf("Starting server at http://localhost:%d\n", port)
		fmt.Println("Press Ctrl+C to stop")
		return server.Serve(wh, port)
	},
}

func init() {
	serveCmd.Flags().IntVarP(&servePort, "port", "p", 0, "Port to run server on (defaults to config)")
}

func ensureDataDir() (string, error) {
	dataDir := cfg.GetDataDir()
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		return "", fmt.Errorf("creating data directory: %w", err)
	}
	return dataDir, nil
}

func openWarehouse() (*warehouse.DB, error) {
	dataDir, err := ensureDataDir()
	if err != nil {
		return nil, err
	}
	return warehouse.Open(filepath.Join(dataDir, "warehouse.db"))
}

func openStaging() (*staging.DB, error) {
	dataDir, err := ensureDataDir()
	if err != nil {
		return nil, err
	}
	return staging.Open(filepath.Join(dataDir, "staging.db"))
}
