package entities

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// Thumbnail is a single preview image
type Thumbnail struct {
	URL    string `json:"url" yaml:"url"`
	Width  int    `json:"width" yaml:"width"`
	Height int    `json:"height" yaml:"height"`
}

// Thumbnails holds the preview sizes the feed uses
type Thumbnails struct {
	Default Thumbnail `json:"default" yaml:"default"`
	Medium  Thumbnail `json:"medium" yaml:"medium"`
	High    Thumbnail `json:"high" yaml:"high"`
}

// VideoStatistics holds the public counters of a video
type VideoStatistics struct {
	ViewCount    uint64 `json:"view_count" yaml:"view_count"`
	LikeCount    uint64 `json:"like_count" yaml:"like_count"`
	CommentCount uint64 `json:"comment_count" yaml:"comment_count"`
}

// Video is the view model for a single video listing
type Video struct {
	ID              string           `json:"id" yaml:"id"`
	Title           string           `json:"title" yaml:"title"`
	Description     string           `json:"description" yaml:"description"`
	ChannelID       string           `json:"channel_id" yaml:"channel_id"`
	ChannelTitle    string           `json:"channel_title" yaml:"channel_title"`
	CategoryID      string           `json:"category_id,omitempty" yaml:"category_id"`
	PublishedAt     time.Time        `json:"published_at" yaml:"published_at"`
	Thumbnails      Thumbnails       `json:"thumbnails" yaml:"thumbnails"`
	Statistics      *VideoStatistics `json:"statistics,omitempty" yaml:"statistics"`
	DurationSeconds int              `json:"duration_seconds,omitempty" yaml:"duration_seconds"`
}

// ViewsLabel returns the abbreviated view count, empty when unknown
func (v Video) ViewsLabel() string {
	if v.Statistics == nil {
		return ""
	}
	return FormatCount(v.Statistics.ViewCount, "views")
}

// Channel is the view model for a channel header
type Channel struct {
	ID              string     `json:"id" yaml:"id"`
	Title           string     `json:"title" yaml:"title"`
	Description     string     `json:"description" yaml:"description"`
	CustomURL       string     `json:"custom_url,omitempty" yaml:"custom_url"`
	Thumbnails      Thumbnails `json:"thumbnails" yaml:"thumbnails"`
	SubscriberCount uint64     `json:"subscriber_count" yaml:"subscriber_count"`
	VideoCount      uint64     `json:"video_count" yaml:"video_count"`
	ViewCount       uint64     `json:"view_count" yaml:"view_count"`
}

// SubscribersLabel returns the abbreviated subscriber count
func (c Channel) SubscribersLabel() string {
	return FormatCount(c.SubscriberCount, "subscribers")
}

// Category is a video category used by the feed filter
type Category struct {
	ID    string `json:"id" yaml:"id"`
	Title string `json:"title" yaml:"title"`
}

// AllCategoryID selects the unfiltered feed
const AllCategoryID = "0"

// VideoList is a page of videos
type VideoList struct {
	Items         []Video `json:"items"`
	NextPageToken string  `json:"next_page_token,omitempty"`
}

// PopularQuery selects a page of the most-popular chart
type PopularQuery struct {
	PageToken  string
	RegionCode string
	MaxResults int
	CategoryID string
}

// SearchQuery selects a page of search results
type SearchQuery struct {
	Query      string
	PageToken  string
	MaxResults int
}

// FormatCount abbreviates n the way the feed does: 1.2M, 3.4K or the plain number
func FormatCount(n uint64, noun string) string {
	switch {
	case n >= 1_000_000:
		return fmt.Sprintf("%.1fM %s", float64(n)/1_000_000, noun)
	case n >= 1_000:
		return fmt.Sprintf("%.1fK %s", float64(n)/1_000, noun)
	default:
		return fmt.Sprintf("%d %s", n, noun)
	}
}

var countPrinter = message.NewPrinter(language.English)

// FormatExactCount renders n with digit grouping, e.g. 1,234,567
func FormatExactCount(n uint64) string {
	return countPrinter.Sprintf("%d", n)
}

// FormatPublishedDate renders t as "Jan 2, 2006"
func FormatPublishedDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format("Jan 2, 2006")
}

// FormatPublishedAgo renders the distance between t and now, e.g. "3 days ago"
func FormatPublishedAgo(t, now time.Time) string {
	if t.IsZero() {
		return ""
	}
	d := now.Sub(t)
	if d < time.Minute {
		return "less than a minute ago"
	}

	units := []struct {
		size time.Duration
		name string
	}{
		{365 * 24 * time.Hour, "year"},
		{30 * 24 * time.Hour, "month"},
		{24 * time.Hour, "day"},
		{time.Hour, "hour"},
		{time.Minute, "minute"},
	}
	for _, u := range units {
		if d >= u.size {
			n := int(d / u.size)
			if n == 1 {
				return fmt.Sprintf("1 %s ago", u.name)
			}
			return fmt.Sprintf("%d %ss ago", n, u.name)
		}
	}
	return "less than a minute ago"
}

var titleCaser = cases.Title(language.English)

// TitleCase normalises a category title for display
func TitleCase(s string) string {
	return titleCaser.String(strings.ToLower(strings.TrimSpace(s)))
}

var isoDurationPattern = regexp.MustCompile(`^P(?:(\d+)D)?(?:T(?:(\d+)H)?(?:(\d+)M)?(?:(\d+)S)?)?$`)

// ParseISODuration converts a Data API duration such as PT7M3S to seconds
func ParseISODuration(s string) (int, error) {
	m := isoDurationPattern.FindStringSubmatch(s)
	if m == nil || s == "P" || s == "PT" {
		return 0, fmt.Errorf("invalid ISO-8601 duration: %q", s)
	}
	multipliers := []int{24 * 3600, 3600, 60, 1}
	total := 0
	for i, mult := range multipliers {
		if m[i+1] == "" {
			continue
		}
		n, err := strconv.Atoi(m[i+1])
		if err != nil {
			return 0, fmt.Errorf("invalid ISO-8601 duration: %q: %w", s, err)
		}
		total += n * mult
	}
	return total, nil
}
