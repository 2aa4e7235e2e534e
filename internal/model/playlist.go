package model

// PlaylistVideo is one entry of a listed playlist
type PlaylistVideo struct {
	Index int    `json:"index"`
	ID    string `json:"id"`
	Title string `json:"title"`
	URL   string `json:"url"`
}

// Playlist is a listed YouTube playlist
type Playlist struct {
	ID     string           `json:"id"`
	Title  string           `json:"title"`
	URL    string           `json:"url"`
	Videos []*PlaylistVideo `json:"videos"`
}

// NewPlaylist creates an empty playlist for url
func NewPlaylist(id, url string) *Playlist {
	return &Playlist{
		ID:     id,
		URL:    url,
		Videos: make([]*PlaylistVideo, 0),
	}
}

// AddVideo appends a video and numbers it
func (p *Playlist) AddVideo(video *PlaylistVideo) {
	video.Index = len(p.Videos) + 1
	p.Videos = append(p.Videos, video)
}

// Len returns the number of videos
func (p *Playlist) Len() int {
	return len(p.Videos)
}

// Head returns at most n videos; n <= 0 returns all of them
func (p *Playlist) Head(n int) []*PlaylistVideo {
	if n <= 0 || n >= len(p.Videos) {
		return p.Videos
	}
	return p.Videos[:n]
}
