package models

// ArtistMeta describes one exhibiting artist as it appears in share previews.
type ArtistMeta struct {
	ID          string `json:"id" toml:"id" yaml:"id"`
	Name        string `json:"name" toml:"name" yaml:"name"`
	ImageURL    string `json:"imageUrl" toml:"image_url" yaml:"image_url"`
	Description string `json:"description" toml:"description" yaml:"description"`
}

// Embed action types understood by Farcaster clients
const (
	ActionLaunchMiniApp = "launch_miniapp"
	ActionLaunchFrame   = "launch_frame" // legacy fc:frame duplicate
)

// EmbedPayload is the JSON document carried in the fc:miniapp and fc:frame meta tags
type EmbedPayload struct {
	Version  string      `json:"version"`
	ImageURL string      `json:"imageUrl"`
	Button   EmbedButton `json:"button"`
}

// EmbedButton is the call to action rendered under the preview card
type EmbedButton struct {
	Title  string      `json:"title"`
	Action EmbedAction `json:"action"`
}

// EmbedAction tells the client what a tap on the button launches
type EmbedAction struct {
	Type                  string `json:"type"`
	URL                   string `json:"url"`
	Name                  string `json:"name"`
	SplashImageURL        string `json:"splashImageUrl"`
	SplashBackgroundColor string `json:"splashBackgroundColor"`
}
