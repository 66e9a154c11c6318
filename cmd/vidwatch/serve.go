package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	httpserver "github.com/fredcamaral/vidwatch/internal/adapters/primary/http"
	"github.com/fredcamaral/vidwatch/internal/adapters/secondary/browser"
	"github.com/fredcamaral/vidwatch/internal/adapters/secondary/description"
	"github.com/fredcamaral/vidwatch/internal/adapters/secondary/logging"
	"github.com/fredcamaral/vidwatch/internal/domain/entities"
	"github.com/fredcamaral/vidwatch/internal/domain/ports"
	"github.com/fredcamaral/vidwatch/internal/domain/services"
)

// serveCmd represents the serve command
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the video site",
	Long: `Start the HTTP server: the browsing pages, the JSON API and the
WebSocket endpoint watch pages use to drive the embedded player.

Without a YouTube API key (youtube.api_key or YOUTUBE_API_KEY) the
bundled fixtures are served.

Example:
  vidwatch serve
  vidwatch serve --port 9000 --region GB
  vidwatch serve --fixtures --open`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)

	// Defaults come from config; flags only override when set
	serveCmd.Flags().IntP("port", "p", 0, "Port to serve on (overrides config)")
	serveCmd.Flags().String("host", "", "Host to bind to (overrides config)")
	serveCmd.Flags().String("region", "", "Region for charts and categories (overrides config)")
	serveCmd.Flags().Bool("fixtures", false, "Serve bundled fixtures instead of the live API")
	serveCmd.Flags().Bool("open", false, "Open the home page in a browser once the server is up")
}

// validateServeConfig checks what the server needs beyond Config.Validate
func validateServeConfig(config *entities.Config) error {
	if config.Server.Port <= 0 || config.Server.Port > 65535 {
		return fmt.Errorf("invalid port number: %d", config.Server.Port)
	}

	if strings.ContainsAny(config.Server.Host, " !") {
		return fmt.Errorf("invalid host: %s", config.Server.Host)
	}

	return nil
}

// openBrowser shows the site; failing to open it never stops the server
func openBrowser(launcher ports.BrowserLauncher, siteURL string, logger ports.Logger) {
	if err := launcher.Open(siteURL); err != nil {
		logger.Warn("Failed to open browser: %v", err)
	}
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx := commandContext(cmd)

	cfg, err := loadConfig(ctx, cmd)
	if err != nil {
		return err
	}
	if err := validateServeConfig(cfg); err != nil {
		return err
	}

	logger := logging.FromConfig("vidwatch", &cfg.Logging)
	logger.Info("Embed origin: %s", cfg.Player.GetEmbedOrigin())
	logger.Info("Region: %s", cfg.YouTube.GetRegionCode())

	catalog, err := newCatalog(cfg, logger)
	if err != nil {
		return err
	}

	sessions := services.NewSessionManager(cfg.Player, nil, logger.With("player"))
	defer sessions.UnmountAll()

	server := httpserver.NewServer(cfg, catalog, sessions, description.NewRenderer(), logger.With("http"))
	if err := server.Start(ctx, cfg.Server.Port, cfg.Server.Host); err != nil {
		return fmt.Errorf("starting server: %w", err)
	}
	siteURL := "http://" + server.Addr() + "/"
	logger.Success("Server running at: %s", siteURL)

	if open, _ := cmd.Flags().GetBool("open"); open {
		openBrowser(browser.NewLauncher(), siteURL, logger)
	}

	<-ctx.Done()
	logger.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.GetShutdownTimeout())
	defer cancel()

	if err := server.Stop(shutdownCtx); err != nil {
		logger.Error("Error during shutdown: %v", err)
	}

	mounted := sessions.Count()
	sessions.UnmountAll()
	logger.Info("Closed %d player sessions", mounted)

	return nil
}
