package entities

// Feed sizes used by the pages
const (
	HomeFeedSize      = 24
	MusicFeedSize     = 24
	TrendingFeedSize  = 20
	RelatedVideosSize = 10
	MusicCategoryID   = "10"
)

// HiddenHomeCategories are never offered by the home feed filter
var HiddenHomeCategories = []string{"21", "22", "25", "42", "43", "44"}

// TrendingTab is one tab of the trending page
type TrendingTab struct {
	Key        string `json:"key"`
	Title      string `json:"title"`
	CategoryID string `json:"category_id,omitempty"`
}

// TrendingTabs lists the trending page tabs in display order
var TrendingTabs = []TrendingTab{
	{Key: "all", Title: "Now"},
	{Key: "music", Title: "Music", CategoryID: "10"},
	{Key: "gaming", Title: "Gaming", CategoryID: "20"},
	{Key: "movies", Title: "Movies", CategoryID: "1"},
}

// ExploreTile is a static destination on the explore page
type ExploreTile struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Path  string `json:"path"`
	Color string `json:"color"`
}

// ExploreTiles lists the explore page destinations
var ExploreTiles = []ExploreTile{
	{ID: "trending", Name: "Trending", Path: "/trending", Color: "red"},
	{ID: "music", Name: "Music", Path: "/music", Color: "pink"},
	{ID: "movies", Name: "Movies & TV", Path: "/movies", Color: "blue"},
	{ID: "gaming", Name: "Gaming", Path: "/gaming", Color: "green"},
	{ID: "news", Name: "News", Path: "/news", Color: "yellow"},
	{ID: "sports", Name: "Sports", Path: "/sports", Color: "purple"},
	{ID: "learning", Name: "Learning", Path: "/learning", Color: "indigo"},
	{ID: "fashion", Name: "Fashion", Path: "/fashion", Color: "cyan"},
	{ID: "shopping", Name: "Shopping", Path: "/shopping", Color: "emerald"},
	{ID: "premieres", Name: "Premieres", Path: "/premieres", Color: "amber"},
	{ID: "live", Name: "Live", Path: "/live", Color: "rose"},
}
