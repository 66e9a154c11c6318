package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/samber/lo"

	"github.com/fredcamaral/vidwatch/internal/domain/entities"
	"github.com/fredcamaral/vidwatch/internal/domain/ports"
)

// ErrUnknownTab is returned for a trending tab that does not exist
var ErrUnknownTab = errors.New("unknown trending tab")

// Catalog serves the pages' listings. Source failures never reach the
// caller: a failing primary degrades to the fallback, and a failing
// fallback yields an empty result.
type Catalog struct {
	primary  ports.VideoSource
	fallback ports.VideoSource
	cfg      entities.YouTubeConfig
	logger   ports.Logger
}

// NewCatalog creates a catalog; fallback may be nil
func NewCatalog(primary, fallback ports.VideoSource, cfg entities.YouTubeConfig, logger ports.Logger) *Catalog {
	return &Catalog{
		primary:  primary,
		fallback: fallback,
		cfg:      cfg,
		logger:   orDiscard(logger),
	}
}

// HomeCategories returns the feed filter: "All" followed by the region's
// categories minus the hidden ones
func (c *Catalog) HomeCategories(ctx context.Context, region string) []entities.Category {
	if region == "" {
		region = c.cfg.GetRegionCode()
	}
	categories := fetch(ctx, c, "categories", func(src ports.VideoSource) ([]entities.Category, error) {
		return src.FetchVideoCategories(ctx, region)
	})

	visible := lo.Filter(categories, func(cat entities.Category, _ int) bool {
		return !lo.Contains(entities.HiddenHomeCategories, cat.ID)
	})
	visible = lo.UniqBy(visible, func(cat entities.Category) string { return cat.ID })
	visible = lo.Map(visible, func(cat entities.Category, _ int) entities.Category {
		cat.Title = entities.TitleCase(cat.Title)
		return cat
	})

	return append([]entities.Category{{ID: entities.AllCategoryID, Title: "All"}}, visible...)
}

// Popular returns a page of the most-popular chart. Category "0" means
// no category filter.
func (c *Catalog) Popular(ctx context.Context, q entities.PopularQuery) entities.VideoList {
	if q.RegionCode == "" {
		q.RegionCode = c.cfg.GetRegionCode()
	}
	if q.MaxResults <= 0 {
		q.MaxResults = c.cfg.GetMaxResults()
	}
	if q.CategoryID == entities.AllCategoryID {
		q.CategoryID = ""
	}

	list := fetch(ctx, c, "popular", func(src ports.VideoSource) (*entities.VideoList, error) {
		return src.FetchPopularVideos(ctx, q)
	})
	return deref(list)
}

// HomeFeed returns the home page grid for a category
func (c *Catalog) HomeFeed(ctx context.Context, categoryID, pageToken string) entities.VideoList {
	return c.Popular(ctx, entities.PopularQuery{
		PageToken:  pageToken,
		MaxResults: entities.HomeFeedSize,
		CategoryID: categoryID,
	})
}

// Trending returns the videos of a trending tab; an empty key means "all"
func (c *Catalog) Trending(ctx context.Context, tab string) ([]entities.Video, error) {
	if tab == "" {
		tab = entities.TrendingTabs[0].Key
	}
	t, ok := lo.Find(entities.TrendingTabs, func(t entities.TrendingTab) bool { return t.Key == tab })
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownTab, tab)
	}

	list := c.Popular(ctx, entities.PopularQuery{
		MaxResults: entities.TrendingFeedSize,
		CategoryID: t.CategoryID,
	})
	return list.Items, nil
}

// Music returns the music page grid
func (c *Catalog) Music(ctx context.Context) []entities.Video {
	return c.Popular(ctx, entities.PopularQuery{
		MaxResults: entities.MusicFeedSize,
		CategoryID: entities.MusicCategoryID,
	}).Items
}

// Search returns a page of results; a blank query returns nothing
func (c *Catalog) Search(ctx context.Context, q entities.SearchQuery) entities.VideoList {
	if q.Query == "" {
		return entities.VideoList{Items: []entities.Video{}}
	}
	if q.MaxResults <= 0 {
		q.MaxResults = c.cfg.GetMaxResults()
	}

	list := fetch(ctx, c, "search", func(src ports.VideoSource) (*entities.VideoList, error) {
		return src.SearchVideos(ctx, q)
	})
	return deref(list)
}

// Video returns a video's details, or nil when unknown
func (c *Catalog) Video(ctx context.Context, id string) *entities.Video {
	return fetch(ctx, c, "video details", func(src ports.VideoSource) (*entities.Video, error) {
		return src.FetchVideoDetails(ctx, id)
	})
}

// Related returns videos related to id
func (c *Catalog) Related(ctx context.Context, id string, maxResults int) []entities.Video {
	if maxResults <= 0 {
		maxResults = entities.RelatedVideosSize
	}
	videos := fetch(ctx, c, "related videos", func(src ports.VideoSource) ([]entities.Video, error) {
		return src.FetchRelatedVideos(ctx, id, maxResults)
	})
	return lo.Filter(videos, func(v entities.Video, _ int) bool { return v.ID != id })
}

// Channel returns a channel's details, or nil when unknown
func (c *Catalog) Channel(ctx context.Context, id string) *entities.Channel {
	return fetch(ctx, c, "channel details", func(src ports.VideoSource) (*entities.Channel, error) {
		return src.FetchChannelDetails(ctx, id)
	})
}

// fetch runs call against the primary source, then the fallback. A source
// that errors is logged and skipped; the zero value comes back when both fail.
func fetch[T any](ctx context.Context, c *Catalog, op string, call func(ports.VideoSource) (T, error)) T {
	var zero T
	for i, src := range []ports.VideoSource{c.primary, c.fallback} {
		if src == nil {
			continue
		}
		if err := ctx.Err(); err != nil {
			c.logger.Debug("Skipping %s: %v", op, err)
			return zero
		}

		result, err := call(src)
		if err == nil {
			return result
		}
		if i == 0 && c.fallback != nil {
			c.logger.Warn("Fetching %s failed, using fallback: %v", op, err)
			continue
		}
		c.logger.Error("Fetching %s failed: %v", op, err)
	}
	return zero
}

func deref(list *entities.VideoList) entities.VideoList {
	if list == nil {
		return entities.VideoList{Items: []entities.Video{}}
	}
	out := *list
	if out.Items == nil {
		out.Items = []entities.Video{}
	}
	return out
}
