package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/fredcamaral/vidwatch/internal/adapters/secondary/config"
	"github.com/fredcamaral/vidwatch/internal/adapters/secondary/logging"
	"github.com/fredcamaral/vidwatch/internal/adapters/secondary/youtube"
	"github.com/fredcamaral/vidwatch/internal/domain/entities"
	"github.com/fredcamaral/vidwatch/internal/domain/services"
)

// collectFlags gathers the override flags the user actually set
func collectFlags(cmd *cobra.Command) map[string]interface{} {
	flags := make(map[string]interface{})

	if f := cmd.Flags().Lookup("port"); f != nil && f.Changed {
		if v, err := cmd.Flags().GetInt("port"); err == nil {
			flags["port"] = v
		}
	}
	for _, name := range []string{"host", "region"} {
		if f := cmd.Flags().Lookup(name); f != nil && f.Changed {
			if v, err := cmd.Flags().GetString(name); err == nil {
				flags[name] = v
			}
		}
	}
	for _, name := range []string{"fixtures", "verbose"} {
		if f := cmd.Flags().Lookup(name); f != nil && f.Changed {
			if v, err := cmd.Flags().GetBool(name); err == nil {
				flags[name] = v
			}
		}
	}

	return flags
}

// loadConfig resolves the effective configuration:
// defaults, global file, local file, environment, then flags
func loadConfig(ctx context.Context, cmd *cobra.Command) (*entities.Config, error) {
	loader := config.NewTOMLLoader()
	if path, _ := cmd.Flags().GetString("config"); path != "" {
		loader = config.NewTOMLLoaderWithPath(path)
	}

	workingDir, err := os.Getwd()
	if err != nil {
		return nil, fmt.Errorf("resolving working directory: %w", err)
	}

	svc := services.NewConfigService(loader, config.NewConfigMerger())
	cfg, err := svc.LoadConfig(ctx, workingDir, collectFlags(cmd))
	if err != nil {
		return nil, fmt.Errorf("loading configuration: %w", err)
	}
	return cfg, nil
}

// newCatalog picks the video sources. Without an API key, or when fixtures
// are requested, the bundled fixtures serve everything; otherwise they back
// up the live API.
func newCatalog(cfg *entities.Config, logger *logging.Logger) (*services.Catalog, error) {
	fixtures, err := youtube.NewFixtures()
	if err != nil {
		return nil, fmt.Errorf("loading fixtures: %w", err)
	}

	if cfg.YouTube.UseFixtures || cfg.YouTube.APIKey == "" {
		logger.Info("Serving videos from bundled fixtures")
		return services.NewCatalog(fixtures, nil, cfg.YouTube, logger.With("catalog")), nil
	}

	client := youtube.NewClient(cfg.YouTube, nil, logger.With("youtube"))
	return services.NewCatalog(client, fixtures, cfg.YouTube, logger.With("catalog")), nil
}
