package extractor

import (
	"context"
	"strings"
	"time"

	"github.com/m-mizutani/ctxlog"
	"github.com/m-mizutani/goerr/v2"
	"github.com/ytget/clipforge/internal/model"
	"github.com/ytget/clipforge/internal/platform"
	ytget "github.com/ytget/ytdlp/v2"
)

// Playlist listing defaults
const (
	DefaultListTimeout  = 60 * time.Second
	DefaultPlaylistName = "Unknown Playlist"
	PlaylistSuffix      = " Playlist"
	MinPrefixLength     = 10
)

// PlaylistItem is one listed video
type PlaylistItem struct {
	VideoID string
	Title   string
}

// ItemSource fetches every item of a playlist by ID
type ItemSource interface {
	PlaylistItems(ctx context.Context, playlistID string) ([]PlaylistItem, error)
}

type ytdlpSource struct{}

func (ytdlpSource) PlaylistItems(ctx context.Context, playlistID string) ([]PlaylistItem, error) {
	items, err := ytget.New().GetPlaylistItemsAll(ctx, playlistID, 0)
	if err != nil {
		return nil, err
	}
	out := make([]PlaylistItem, 0, len(items))
	for _, it := range items {
		out = append(out, PlaylistItem{VideoID: it.VideoID, Title: it.Title})
	}
	return out, nil
}

// PlaylistLister lists YouTube playlists without starting yt-dlp
type PlaylistLister struct {
	source  ItemSource
	timeout time.Duration
}

// NewPlaylistLister creates a lister backed by github.com/ytget/ytdlp
func NewPlaylistLister() *PlaylistLister {
	return &PlaylistLister{source: ytdlpSource{}, timeout: DefaultListTimeout}
}

// NewPlaylistListerWithSource creates a lister over an arbitrary source
func NewPlaylistListerWithSource(source ItemSource) *PlaylistLister {
	return &PlaylistLister{source: source, timeout: DefaultListTimeout}
}

// SetTimeout sets the timeout for listing operations
func (l *PlaylistLister) SetTimeout(timeout time.Duration) {
	if timeout > 0 {
		l.timeout = timeout
	}
}

// List returns the videos of the playlist addressed by url
func (l *PlaylistLister) List(ctx context.Context, url string) (*model.Playlist, error) {
	playlistID := platform.ExtractPlaylistID(url)
	if playlistID == "" {
		return nil, goerr.New("not a playlist URL", goerr.V("url", url), goerr.T(model.ErrTagValidation))
	}

	ctx, cancel := context.WithTimeout(ctx, l.timeout)
	defer cancel()

	items, err := l.source.PlaylistItems(ctx, playlistID)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to list playlist", goerr.V("playlist_id", playlistID), goerr.T(model.ErrTagExtraction))
	}

	playlist := model.NewPlaylist(playlistID, url)
	for _, it := range items {
		if it.VideoID == "" {
			continue
		}
		playlist.AddVideo(&model.PlaylistVideo{
			ID:    it.VideoID,
			Title: it.Title,
			URL:   platform.YouTubeVideoURL(it.VideoID),
		})
	}
	playlist.Title = playlistTitle(playlist.Videos)

	ctxlog.From(ctx).Debug("playlist listed", "playlist_id", playlistID, "videos", playlist.Len())
	return playlist, nil
}

// playlistTitle guesses a title from the common prefix of the first two videos
func playlistTitle(videos []*model.PlaylistVideo) string {
	if len(videos) == 0 {
		return DefaultPlaylistName
	}
	if len(videos) > 1 {
		prefix := commonPrefix(videos[0].Title, videos[1].Title)
		if len(prefix) > MinPrefixLength {
			return strings.TrimSpace(prefix) + PlaylistSuffix
		}
	}
	return videos[0].Title + PlaylistSuffix
}

func commonPrefix(s1, s2 string) string {
	n := min(len(s1), len(s2))
	for i := 0; i < n; i++ {
		if s1[i] != s2[i] {
			return s1[:i]
		}
	}
	return s1[:n]
}
