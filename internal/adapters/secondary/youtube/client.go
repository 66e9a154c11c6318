// Package youtube implements ports.VideoSource against the YouTube Data API
// and against canned fixtures for offline use.
package youtube

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
	"github.com/samber/lo"

	"github.com/fredcamaral/vidwatch/internal/domain/entities"
	"github.com/fredcamaral/vidwatch/internal/domain/ports"
)

// ErrNoAPIKey is returned by every call when no API key is configured
var ErrNoAPIKey = errors.New("youtube: no API key configured")

const maxResponseBytes = 8 << 20

// APIError is a non-200 answer from the Data API
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("youtube: HTTP %d", e.StatusCode)
	}
	return fmt.Sprintf("youtube: HTTP %d: %s", e.StatusCode, e.Message)
}

// Client talks to the Data API v3. Responses are cached by request URL.
type Client struct {
	cfg        entities.YouTubeConfig
	httpClient *http.Client
	cache      *expirable.LRU[string, []byte]
	logger     ports.Logger
}

// NewClient creates a client; a nil httpClient gets the configured timeout
func NewClient(cfg entities.YouTubeConfig, httpClient *http.Client, logger ports.Logger) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: cfg.GetTimeout()}
	}
	return &Client{
		cfg:        cfg,
		httpClient: httpClient,
		cache:      expirable.NewLRU[string, []byte](cfg.GetCacheSize(), nil, cfg.GetCacheTTL()),
		logger:     logger,
	}
}

// FetchPopularVideos returns a page of the most-popular chart
func (c *Client) FetchPopularVideos(ctx context.Context, q entities.PopularQuery) (*entities.VideoList, error) {
	params := url.Values{}
	params.Set("part", "snippet,statistics,contentDetails")
	params.Set("chart", "mostPopular")
	params.Set("regionCode", lo.Ternary(q.RegionCode != "", q.RegionCode, c.cfg.GetRegionCode()))
	params.Set("maxResults", strconv.Itoa(lo.Ternary(q.MaxResults > 0, q.MaxResults, c.cfg.GetMaxResults())))
	if q.PageToken != "" {
		params.Set("pageToken", q.PageToken)
	}
	if q.CategoryID != "" && q.CategoryID != entities.AllCategoryID {
		params.Set("videoCategoryId", q.CategoryID)
	}

	var resp videoListResponse
	if err := c.get(ctx, "videos", params, &resp); err != nil {
		return nil, fmt.Errorf("fetching popular videos: %w", err)
	}
	return &entities.VideoList{
		Items:         lo.Map(resp.Items, func(it videoItem, _ int) entities.Video { return it.toVideo() }),
		NextPageToken: resp.NextPageToken,
	}, nil
}

// FetchVideoCategories returns the categories of a region
func (c *Client) FetchVideoCategories(ctx context.Context, regionCode string) ([]entities.Category, error) {
	params := url.Values{}
	params.Set("part", "snippet")
	params.Set("regionCode", lo.Ternary(regionCode != "", regionCode, c.cfg.GetRegionCode()))

	var resp categoryListResponse
	if err := c.get(ctx, "videoCategories", params, &resp); err != nil {
		return nil, fmt.Errorf("fetching video categories: %w", err)
	}
	return lo.Map(resp.Items, func(it categoryItem, _ int) entities.Category {
		return entities.Category{ID: it.ID, Title: it.Snippet.Title}
	}), nil
}

// SearchVideos searches for videos, then loads their statistics
func (c *Client) SearchVideos(ctx context.Context, q entities.SearchQuery) (*entities.VideoList, error) {
	params := url.Values{}
	params.Set("part", "snippet")
	params.Set("q", q.Query)
	params.Set("type", "video")
	params.Set("maxResults", strconv.Itoa(lo.Ternary(q.MaxResults > 0, q.MaxResults, c.cfg.GetMaxResults())))
	if q.PageToken != "" {
		params.Set("pageToken", q.PageToken)
	}

	var found searchListResponse
	if err := c.get(ctx, "search", params, &found); err != nil {
		return nil, fmt.Errorf("searching videos: %w", err)
	}

	ids := lo.FilterMap(found.Items, func(it searchItem, _ int) (string, bool) {
		return it.ID.VideoID, it.ID.VideoID != ""
	})
	if len(ids) == 0 {
		return &entities.VideoList{Items: []entities.Video{}, NextPageToken: found.NextPageToken}, nil
	}

	videos, err := c.videosByID(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("loading search result details: %w", err)
	}
	return &entities.VideoList{Items: videos, NextPageToken: found.NextPageToken}, nil
}

// FetchVideoDetails returns one video, or nil when it does not exist
func (c *Client) FetchVideoDetails(ctx context.Context, id string) (*entities.Video, error) {
	videos, err := c.videosByID(ctx, []string{id})
	if err != nil {
		return nil, fmt.Errorf("fetching video %s: %w", id, err)
	}
	if len(videos) == 0 {
		return nil, nil
	}
	return &videos[0], nil
}

// FetchRelatedVideos returns videos related to id
func (c *Client) FetchRelatedVideos(ctx context.Context, id string, maxResults int) ([]entities.Video, error) {
	params := url.Values{}
	params.Set("part", "snippet")
	params.Set("relatedToVideoId", id)
	params.Set("type", "video")
	params.Set("maxResults", strconv.Itoa(lo.Ternary(maxResults > 0, maxResults, entities.RelatedVideosSize)))

	var resp searchListResponse
	if err := c.get(ctx, "search", params, &resp); err != nil {
		return nil, fmt.Errorf("fetching related videos for %s: %w", id, err)
	}
	return lo.FilterMap(resp.Items, func(it searchItem, _ int) (entities.Video, bool) {
		if it.ID.VideoID == "" {
			return entities.Video{}, false
		}
		return it.Snippet.toVideo(it.ID.VideoID), true
	}), nil
}

// FetchChannelDetails returns one channel, or nil when it does not exist
func (c *Client) FetchChannelDetails(ctx context.Context, id string) (*entities.Channel, error) {
	params := url.Values{}
	params.Set("part", "snippet,statistics")
	params.Set("id", id)

	var resp channelListResponse
	if err := c.get(ctx, "channels", params, &resp); err != nil {
		return nil, fmt.Errorf("fetching channel %s: %w", id, err)
	}
	if len(resp.Items) == 0 {
		return nil, nil
	}
	ch := resp.Items[0].toChannel()
	return &ch, nil
}

func (c *Client) videosByID(ctx context.Context, ids []string) ([]entities.Video, error) {
	params := url.Values{}
	params.Set("part", "snippet,statistics,contentDetails")
	params.Set("id", strings.Join(ids, ","))

	var resp videoListResponse
	if err := c.get(ctx, "videos", params, &resp); err != nil {
		return nil, err
	}
	return lo.Map(resp.Items, func(it videoItem, _ int) entities.Video { return it.toVideo() }), nil
}

// get fetches endpoint and decodes the JSON body into out
func (c *Client) get(ctx context.Context, endpoint string, params url.Values, out interface{}) error {
	if c.cfg.APIKey == "" {
		return ErrNoAPIKey
	}

	// the cache key leaves the API key out
	cacheKey := endpoint + "?" + params.Encode()
	if body, ok := c.cache.Get(cacheKey); ok {
		return json.Unmarshal(body, out)
	}

	withKey := url.Values{}
	for k, v := range params {
		withKey[k] = v
	}
	withKey.Set("key", c.cfg.APIKey)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.cfg.GetBaseURL()+"/"+endpoint+"?"+withKey.Encode(), nil)
	if err != nil {
		return fmt.Errorf("building request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", "vidwatch/1.0")

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("requesting %s: %w", endpoint, err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return fmt.Errorf("reading %s response: %w", endpoint, err)
	}
	if c.logger != nil {
		c.logger.Debug("GET %s -> %d (%s)", endpoint, resp.StatusCode, time.Since(start))
	}

	if resp.StatusCode != http.StatusOK {
		apiErr := &APIError{StatusCode: resp.StatusCode}
		var e errorResponse
		if json.Unmarshal(body, &e) == nil {
			apiErr.Message = e.Error.Message
		}
		return apiErr
	}

	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("decoding %s response: %w", endpoint, err)
	}
	c.cache.Add(cacheKey, body)
	return nil
}

var _ ports.VideoSource = (*Client)(nil)
