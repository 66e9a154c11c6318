package ports

import (
	"context"

	"github.com/fredcamaral/vidwatch/internal/domain/entities"
)

// VideoSource fetches listings from the video platform or a stand-in for it
type VideoSource interface {
	FetchPopularVideos(ctx context.Context, q entities.PopularQuery) (*entities.VideoList, error)
	FetchVideoCategories(ctx context.Context, regionCode string) ([]entities.Category, error)
	SearchVideos(ctx context.Context, q entities.SearchQuery) (*entities.VideoList, error)
	FetchVideoDetails(ctx context.Context, id string) (*entities.Video, error)
	FetchRelatedVideos(ctx context.Context, id string, maxResults int) ([]entities.Video, error)
	FetchChannelDetails(ctx context.Context, id string) (*entities.Channel, error)
}

// DescriptionRenderer turns a plain-text video description into safe HTML
type DescriptionRenderer interface {
	Render(description string) (string, error)
	Summary(description string, lines int) string
}
