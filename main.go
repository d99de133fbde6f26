package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/yeremiapane/catering-app/config"
	"github.com/yeremiapane/catering-app/database"
	"github.com/yeremiapane/catering-app/router"
	"github.com/yeremiapane/catering-app/utils"
	"gorm.io/gorm"
)

func main() {
	if err := newRootCommand().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	var (
		envFile string
		cfg     *config.Config
	)

	root := &cobra.Command{
		Use:           "catering",
		Short:         "Catering establishments discovery and booking backend",
		SilenceUsage:  true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			loaded, err := config.Load(envFile)
			if err != nil {
				return err
			}
			cfg = loaded
			if err := applyFlagOverrides(cmd.Flags(), cfg); err != nil {
				return err
			}
			utils.InitLogger(cfg.LogLevel)
			return nil
		},
	}
	root.PersistentFlags().StringVar(&envFile, "env-file", ".env", "dotenv file loaded before the environment")
	root.PersistentFlags().String("log-level", "", "log level, overrides LOG_LEVEL")
	root.PersistentFlags().String("gin-mode", "", "gin mode, overrides GIN_MODE")
	root.PersistentFlags().String("media-root", "", "uploaded photos directory, overrides MEDIA_ROOT")
	root.PersistentFlags().String("db-driver", "", "postgres, mysql or sqlite, overrides DB_DRIVER")
	root.PersistentFlags().String("db-path", "", "sqlite database file, overrides DB_PATH")

	current := func() *config.Config { return cfg }
	root.AddCommand(newServeCommand(current), newMigrateCommand(current), newSeedCommand(current))
	return root
}

// flagOverrides maps command line flags onto the config fields they replace.
var flagOverrides = map[string]func(*config.Config, string){
	"port":       func(c *config.Config, v string) { c.Port = v },
	"log-level":  func(c *config.Config, v string) { c.LogLevel = v },
	"gin-mode":   func(c *config.Config, v string) { c.GinMode = v },
	"media-root": func(c *config.Config, v string) { c.MediaRoot = v },
	"db-driver":  func(c *config.Config, v string) { c.DB.Driver = strings.ToLower(v) },
	"db-path":    func(c *config.Config, v string) { c.DB.Path = v },
}

// applyFlagOverrides copies every explicitly set flag over the loaded config
// and validates the result.
func applyFlagOverrides(flags *pflag.FlagSet, cfg *config.Config) error {
	flags.Visit(func(flag *pflag.Flag) {
		if set, ok := flagOverrides[flag.Name]; ok {
			set(cfg, flag.Value.String())
		}
	})
	return cfg.Validate()
}

func openDB(cfg *config.Config) (*gorm.DB, error) {
	db, err := config.InitDB(cfg.DB)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	return db, nil
}

func newServeCommand(cfg func() *config.Config) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Migrate the schema and run the HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			c := cfg()
			if c.GinMode == gin.ReleaseMode {
				gin.SetMode(gin.ReleaseMode)
			}

			db, err := openDB(c)
			if err != nil {
				return err
			}
			if err := database.Migrate(db); err != nil {
				return err
			}

			r := router.SetupRouter(router.NewApp(db, c))
			if err := r.SetTrustedProxies([]string{"127.0.0.1"}); err != nil {
				return err
			}

			utils.InfoLogger.Printf("Listening on port %s", c.Port)
			return r.Run(":" + c.Port)
		},
	}
	cmd.Flags().StringP("port", "p", "", "listen port, overrides PORT")
	return cmd
}

func newMigrateCommand(cfg func() *config.Config) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create or update the database schema",
		RunE: func(cmd *cobra.Command, args []string) error {
			db, err := openDB(cfg())
			if err != nil {
				return err
			}
			return database.Migrate(db)
		},
	}
}

func newSeedCommand(cfg func() *config.Config) *cobra.Command {
	var file string

	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Load reference data (locations, dish catalog) from a YAML file",
		RunE: func(cmd *cobra.Command, args []string) error {
			seed, err := database.LoadSeedFile(file)
			if err != nil {
				return err
			}
			db, err := openDB(cfg())
			if err != nil {
				return err
			}
			if err := database.Migrate(db); err != nil {
				return err
			}
			if err := database.Seed(db, seed); err != nil {
				return err
			}
			utils.InfoLogger.Printf("Seeded reference data from %s", file)
			return nil
		},
	}
	cmd.Flags().StringVarP(&file, "file", "f", "database/seeds/reference.yaml", "seed file")
	return cmd
}
