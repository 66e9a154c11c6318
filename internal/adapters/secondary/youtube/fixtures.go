package youtube

import (
	"context"
	_ "embed"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/samber/lo"
	"gopkg.in/yaml.v3"

	"github.com/fredcamaral/vidwatch/internal/domain/entities"
	"github.com/fredcamaral/vidwatch/internal/domain/ports"
)

//go:embed fixtures.yaml
var defaultFixtures []byte

type fixtureData struct {
	Categories []entities.Category `yaml:"categories"`
	Channels   []entities.Channel  `yaml:"channels"`
	Videos     []entities.Video    `yaml:"videos"`
}

// Fixtures serves canned listings. It backs the catalog when the Data API
// is unreachable or no key is configured. Page tokens are item offsets.
type Fixtures struct {
	data fixtureData
}

// NewFixtures loads the built-in fixture set
func NewFixtures() (*Fixtures, error) {
	return ParseFixtures(defaultFixtures)
}

// ParseFixtures loads a fixture set from YAML
func ParseFixtures(raw []byte) (*Fixtures, error) {
	var data fixtureData
	if err := yaml.Unmarshal(raw, &data); err != nil {
		return nil, fmt.Errorf("parsing fixtures: %w", err)
	}
	return &Fixtures{data: data}, nil
}

// FetchPopularVideos returns fixture videos, most viewed first
func (f *Fixtures) FetchPopularVideos(ctx context.Context, q entities.PopularQuery) (*entities.VideoList, error) {
	videos := f.data.Videos
	if q.CategoryID != "" && q.CategoryID != entities.AllCategoryID {
		videos = lo.Filter(videos, func(v entities.Video, _ int) bool { return v.CategoryID == q.CategoryID })
	}
	videos = sortByViews(videos)
	return page(videos, q.PageToken, q.MaxResults)
}

// FetchVideoCategories returns every fixture category
func (f *Fixtures) FetchVideoCategories(ctx context.Context, regionCode string) ([]entities.Category, error) {
	return append([]entities.Category(nil), f.data.Categories...), nil
}

// SearchVideos matches the query against titles, ignoring case
func (f *Fixtures) SearchVideos(ctx context.Context, q entities.SearchQuery) (*entities.VideoList, error) {
	needle := strings.ToLower(strings.TrimSpace(q.Query))
	matches := lo.Filter(f.data.Videos, func(v entities.Video, _ int) bool {
		return needle != "" && strings.Contains(strings.ToLower(v.Title), needle)
	})
	return page(matches, q.PageToken, q.MaxResults)
}

// FetchVideoDetails returns the fixture video with id, or nil
func (f *Fixtures) FetchVideoDetails(ctx context.Context, id string) (*entities.Video, error) {
	v, ok := lo.Find(f.data.Videos, func(v entities.Video) bool { return v.ID == id })
	if !ok {
		return nil, nil
	}
	return &v, nil
}

// FetchRelatedVideos returns same-category videos first, then the rest
func (f *Fixtures) FetchRelatedVideos(ctx context.Context, id string, maxResults int) ([]entities.Video, error) {
	if maxResults <= 0 {
		maxResults = entities.RelatedVideosSize
	}
	self, _ := lo.Find(f.data.Videos, func(v entities.Video) bool { return v.ID == id })

	others := lo.Reject(f.data.Videos, func(v entities.Video, _ int) bool { return v.ID == id })
	same, rest := lo.FilterReject(others, func(v entities.Video, _ int) bool {
		return self.CategoryID != "" && v.CategoryID == self.CategoryID
	})
	related := append(same, rest...)
	if len(related) > maxResults {
		related = related[:maxResults]
	}
	return related, nil
}

// FetchChannelDetails returns the fixture channel with id, or nil
func (f *Fixtures) FetchChannelDetails(ctx context.Context, id string) (*entities.Channel, error) {
	ch, ok := lo.Find(f.data.Channels, func(c entities.Channel) bool { return c.ID == id })
	if !ok {
		return nil, nil
	}
	return &ch, nil
}

func sortByViews(videos []entities.Video) []entities.Video {
	out := append([]entities.Video(nil), videos...)
	views := func(v entities.Video) uint64 {
		if v.Statistics == nil {
			return 0
		}
		return v.Statistics.ViewCount
	}
	sort.SliceStable(out, func(i, j int) bool {
		return views(out[i]) > views(out[j])
	})
	return out
}

func page(videos []entities.Video, token string, size int) (*entities.VideoList, error) {
	offset := 0
	if token != "" {
		n, err := strconv.Atoi(token)
		if err != nil || n < 0 {
			return nil, fmt.Errorf("invalid page token %q", token)
		}
		offset = n
	}
	if size <= 0 {
		size = len(videos)
	}

	list := &entities.VideoList{Items: []entities.Video{}}
	if offset >= len(videos) {
		return list, nil
	}
	end := offset + size
	if end < len(videos) {
		list.NextPageToken = strconv.Itoa(end)
	} else {
		end = len(videos)
	}
	list.Items = append(list.Items, videos[offset:end]...)
	return list, nil
}

var _ ports.VideoSource = (*Fixtures)(nil)
