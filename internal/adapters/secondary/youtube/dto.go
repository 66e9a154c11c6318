package youtube

import (
	"strconv"
	"time"

	"github.com/fredcamaral/vidwatch/internal/domain/entities"
)

// Wire shapes of the Data API v3 responses. Counters arrive as strings.

type thumbnail struct {
	URL    string `json:"url"`
	Width  int    `json:"width"`
	Height int    `json:"height"`
}

type thumbnails struct {
	Default thumbnail `json:"default"`
	Medium  thumbnail `json:"medium"`
	High    thumbnail `json:"high"`
}

func (t thumbnails) toEntity() entities.Thumbnails {
	return entities.Thumbnails{
		Default: entities.Thumbnail(t.Default),
		Medium:  entities.Thumbnail(t.Medium),
		High:    entities.Thumbnail(t.High),
	}
}

type snippet struct {
	Title        string     `json:"title"`
	Description  string     `json:"description"`
	ChannelID    string     `json:"channelId"`
	ChannelTitle string     `json:"channelTitle"`
	CategoryID   string     `json:"categoryId"`
	PublishedAt  string     `json:"publishedAt"`
	Thumbnails   thumbnails `json:"thumbnails"`
}

func (s snippet) toVideo(id string) entities.Video {
	published, _ := time.Parse(time.RFC3339, s.PublishedAt)
	return entities.Video{
		ID:           id,
		Title:        s.Title,
		Description:  s.Description,
		ChannelID:    s.ChannelID,
		ChannelTitle: s.ChannelTitle,
		CategoryID:   s.CategoryID,
		PublishedAt:  published,
		Thumbnails:   s.Thumbnails.toEntity(),
	}
}

type statistics struct {
	ViewCount    string `json:"viewCount"`
	LikeCount    string `json:"likeCount"`
	CommentCount string `json:"commentCount"`
}

type contentDetails struct {
	Duration string `json:"duration"`
}

type videoItem struct {
	ID             string          `json:"id"`
	Snippet        snippet         `json:"snippet"`
	Statistics     *statistics     `json:"statistics"`
	ContentDetails *contentDetails `json:"contentDetails"`
}

func (it videoItem) toVideo() entities.Video {
	v := it.Snippet.toVideo(it.ID)
	if it.Statistics != nil {
		v.Statistics = &entities.VideoStatistics{
			ViewCount:    parseCount(it.Statistics.ViewCount),
			LikeCount:    parseCount(it.Statistics.LikeCount),
			CommentCount: parseCount(it.Statistics.CommentCount),
		}
	}
	if it.ContentDetails != nil && it.ContentDetails.Duration != "" {
		if secs, err := entities.ParseISODuration(it.ContentDetails.Duration); err == nil {
			v.DurationSeconds = secs
		}
	}
	return v
}

type videoListResponse struct {
	Items         []videoItem `json:"items"`
	NextPageToken string      `json:"nextPageToken"`
}

type searchItem struct {
	ID struct {
		VideoID string `json:"videoId"`
	} `json:"id"`
	Snippet snippet `json:"snippet"`
}

type searchListResponse struct {
	Items         []searchItem `json:"items"`
	NextPageToken string       `json:"nextPageToken"`
}

type categoryItem struct {
	ID      string `json:"id"`
	Snippet struct {
		Title string `json:"title"`
	} `json:"snippet"`
}

type categoryListResponse struct {
	Items []categoryItem `json:"items"`
}

type channelItem struct {
	ID      string `json:"id"`
	Snippet struct {
		Title       string     `json:"title"`
		Description string     `json:"description"`
		CustomURL   string     `json:"customUrl"`
		Thumbnails  thumbnails `json:"thumbnails"`
	} `json:"snippet"`
	Statistics struct {
		SubscriberCount string `json:"subscriberCount"`
		VideoCount      string `json:"videoCount"`
		ViewCount       string `json:"viewCount"`
	} `json:"statistics"`
}

func (it channelItem) toChannel() entities.Channel {
	return entities.Channel{
		ID:              it.ID,
		Title:           it.Snippet.Title,
		Description:     it.Snippet.Description,
		CustomURL:       it.Snippet.CustomURL,
		Thumbnails:      it.Snippet.Thumbnails.toEntity(),
		SubscriberCount: parseCount(it.Statistics.SubscriberCount),
		VideoCount:      parseCount(it.Statistics.VideoCount),
		ViewCount:       parseCount(it.Statistics.ViewCount),
	}
}

type channelListResponse struct {
	Items []channelItem `json:"items"`
}

type errorResponse struct {
	Error struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

// parseCount reads a decimal counter; hidden or malformed counters are 0
func parseCount(s string) uint64 {
	n, err := strconv.ParseUint(s, 10, 64)
	if err != nil {
		return 0
	}
	return n
}
