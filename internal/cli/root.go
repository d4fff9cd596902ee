package cli

import (
	"fmt"
	"os"

	"github.com/lazypower/cony/internal/config"
	"github.com/lazypower/cony/internal/logging"
	"github.com/lazypower/cony/internal/store"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var rootCmd = &cobra.Command{
	Use:   "cony",
	Short: "Mental-health journal with streaks and CBT analytics",
	Long: "Cony tracks emotion check-ins and CBT thought records, derives streaks and " +
		"trends from them, and lets psychologists follow their patients. Single Go binary, SQLite storage.",
	SilenceUsage: true,
}

var (
	configPath string
	verbose    bool
)

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "config file (default ~/.cony/config.toml, or $CONY_CONFIG)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "log at the configured level instead of warn")

	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(configCmd)
	rootCmd.AddCommand(userCmd)
	rootCmd.AddCommand(emotionCmd)
	rootCmd.AddCommand(thoughtCmd)
	rootCmd.AddCommand(dashboardCmd)
	rootCmd.AddCommand(resourcesCmd)
	rootCmd.AddCommand(sweepCmd)
}

// resolveConfigPath returns the config path and whether the user named it.
func resolveConfigPath() (string, bool, error) {
	if configPath != "" {
		return configPath, true, nil
	}
	if p := os.Getenv("CONY_CONFIG"); p != "" {
		return p, true, nil
	}
	p, err := config.DefaultPath()
	return p, false, err
}

func loadConfig() (*config.Config, error) {
	path, explicit, err := resolveConfigPath()
	if err != nil {
		return nil, err
	}
	cfg, err := config.Load(path, explicit)
	if err != nil {
		return nil, fmt.Errorf("%w (run 'cony config init' or set CONY_JWT_SECRET)", err)
	}
	return cfg, nil
}

// app is what local commands share: config, database and a logger.
type app struct {
	cfg *config.Config
	db  *store.DB
	log *zap.Logger
}

func (a *app) Close() {
	a.log.Sync()
	a.db.Close()
}

// openApp loads config and opens the database. Local commands log at warn
// unless --verbose is set.
func openApp(quiet bool) (*app, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}

	lc := cfg.Log
	if quiet && !verbose {
		lc.Level = "warn"
	}
	logger, err := logging.New(lc)
	if err != nil {
		return nil, fmt.Errorf("build logger: %w", err)
	}

	db, err := openDB(cfg)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	return &app{cfg: cfg, db: db, log: logger}, nil
}

// openDB opens the configured database, falling back to ~/.cony/cony.db.
func openDB(cfg *config.Config) (*store.DB, error) {
	dbPath := cfg.Database.Path
	if dbPath == "" {
		var err error
		dbPath, err = store.DefaultDBPath()
		if err != nil {
			return nil, err
		}
	}
	return store.Open(dbPath)
}
