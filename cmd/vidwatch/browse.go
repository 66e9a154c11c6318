package main

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/spf13/cobra"

	"github.com/fredcamaral/vidwatch/internal/adapters/secondary/logging"
	"github.com/fredcamaral/vidwatch/internal/domain/entities"
)

// maxTitleWidth keeps rows on one line in a normal terminal
const maxTitleWidth = 60

var popularCmd = &cobra.Command{
	Use:   "popular",
	Short: "List the most popular videos",
	Long: `Print the most-popular chart for a region, optionally narrowed to
one category (see the categories listed on the home page).`,
	Args: cobra.NoArgs,
	RunE: runPopular,
}

var searchCmd = &cobra.Command{
	Use:   "search <query>",
	Short: "Search for videos",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runSearch,
}

func init() {
	popularCmd.Flags().String("region", "", "Chart region (overrides config)")
	popularCmd.Flags().String("category", "", "Category id to filter by")
	popularCmd.Flags().Int("max", 0, "Maximum number of videos (default from config)")
	popularCmd.Flags().Bool("fixtures", false, "Use bundled fixtures instead of the live API")

	searchCmd.Flags().Int("max", 0, "Maximum number of videos (default from config)")
	searchCmd.Flags().Bool("fixtures", false, "Use bundled fixtures instead of the live API")

	rootCmd.AddCommand(popularCmd)
	rootCmd.AddCommand(searchCmd)
}

func runPopular(cmd *cobra.Command, args []string) error {
	ctx := commandContext(cmd)

	cfg, err := loadConfig(ctx, cmd)
	if err != nil {
		return err
	}

	catalog, err := newCatalog(cfg, logging.FromConfig("vidwatch", &cfg.Logging))
	if err != nil {
		return err
	}

	category, _ := cmd.Flags().GetString("category")
	maxResults, _ := cmd.Flags().GetInt("max")

	list := catalog.Popular(ctx, entities.PopularQuery{
		RegionCode: cfg.YouTube.GetRegionCode(),
		CategoryID: category,
		MaxResults: maxResults,
	})

	renderVideoTable(cmd.OutOrStdout(), list.Items, time.Now())
	return nil
}

func runSearch(cmd *cobra.Command, args []string) error {
	ctx := commandContext(cmd)

	cfg, err := loadConfig(ctx, cmd)
	if err != nil {
		return err
	}

	catalog, err := newCatalog(cfg, logging.FromConfig("vidwatch", &cfg.Logging))
	if err != nil {
		return err
	}

	maxResults, _ := cmd.Flags().GetInt("max")
	list := catalog.Search(ctx, entities.SearchQuery{
		Query:      strings.Join(args, " "),
		MaxResults: maxResults,
	})

	renderVideoTable(cmd.OutOrStdout(), list.Items, time.Now())
	return nil
}

func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}

// renderVideoTable prints videos the way the home grid labels them
func renderVideoTable(out io.Writer, videos []entities.Video, now time.Time) {
	if len(videos) == 0 {
		_, _ = fmt.Fprintln(out, "No videos found")
		return
	}

	t := table.NewWriter()
	t.SetOutputMirror(out)
	t.SetStyle(table.StyleLight)
	t.AppendHeader(table.Row{"#", "ID", "Title", "Channel", "Length", "Views", "Published"})
	t.SetColumnConfigs([]table.ColumnConfig{
		{Number: 1, Align: text.AlignRight},
		{Number: 3, WidthMax: maxTitleWidth},
		{Number: 5, Align: text.AlignRight},
		{Number: 6, Align: text.AlignRight},
	})

	for i, v := range videos {
		length := ""
		if v.DurationSeconds > 0 {
			length = entities.FormatClock(float64(v.DurationSeconds))
		}
		t.AppendRow(table.Row{
			i + 1,
			v.ID,
			v.Title,
			v.ChannelTitle,
			length,
			v.ViewsLabel(),
			entities.FormatPublishedAgo(v.PublishedAt, now),
		})
	}

	t.Render()
}
