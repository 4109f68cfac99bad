package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/hirehub/hirehub-server/internal/app"
	"github.com/hirehub/hirehub-server/internal/config"
	"github.com/hirehub/hirehub-server/internal/log"
	"github.com/hirehub/hirehub-server/internal/store/sqlite"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var configPath string

	root := &cobra.Command{
		Use:           "hirehub",
		Short:         "HireHub freelance marketplace server",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&configPath, "config", "", "path to config file")

	root.AddCommand(newServeCmd(&configPath))
	root.AddCommand(newLoadSkillsCmd(&configPath))

	return root
}

func newServeCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the API and chat server",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, logger, err := loadConfig(*configPath)
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			application, err := app.New(&cfg, logger)
			if err != nil {
				return fmt.Errorf("init app: %w", err)
			}

			logger.Info().Str("addr", cfg.Addr).Msg("starting hirehub server")
			if err := application.Run(ctx); err != nil {
				return fmt.Errorf("server exited: %w", err)
			}
			logger.Info().Msg("server stopped")
			return nil
		},
	}
}

// skillSeed is the YAML shape consumed by load-skills.
type skillSeed struct {
	Categories []struct {
		Name        string   `yaml:"name"`
		Description string   `yaml:"description"`
		Skills      []string `yaml:"skills"`
	} `yaml:"categories"`
}

func newLoadSkillsCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "load-skills <seed.yaml>",
		Short: "Seed categories and skills from a YAML file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := loadConfig(*configPath)
			if err != nil {
				return err
			}

			raw, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("read seed file: %w", err)
			}

			var seed skillSeed
			if err := yaml.Unmarshal(raw, &seed); err != nil {
				return fmt.Errorf("parse seed file: %w", err)
			}

			st, err := sqlite.New(cfg.DatabasePath)
			if err != nil {
				return fmt.Errorf("init store: %w", err)
			}
			defer st.Close()

			ctx := cmd.Context()
			var loaded int
			for _, c := range seed.Categories {
				category, err := st.CreateCategory(ctx, c.Name, c.Description)
				if err != nil {
					return fmt.Errorf("create category %q: %w", c.Name, err)
				}
				for _, name := range c.Skills {
					if _, err := st.CreateSkill(ctx, name, category.ID); err != nil {
						return fmt.Errorf("create skill %q: %w", name, err)
					}
					loaded++
				}
			}

			logger.Info().
				Int("categories", len(seed.Categories)).
				Int("skills", loaded).
				Msg("catalog seeded")
			return nil
		},
	}
}

func loadConfig(path string) (config.Config, *zerolog.Logger, error) {
	bootLogger := log.New("info")
	cfg, source, err := config.Load(bootLogger, path)
	if err != nil {
		return config.Config{}, nil, fmt.Errorf("load config: %w", err)
	}

	logger := log.New(cfg.LogLevel)
	logger.Debug().Str("source", source).Msg("configuration loaded")
	return cfg, logger, nil
}
