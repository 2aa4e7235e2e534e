// Package extractor drives yt-dlp. Callers describe a call with a typed
// Options value; the adapter translates it onto the go-ytdlp command builder
// and parses the final metadata document yt-dlp prints on stdout.
package extractor

import (
	"context"
	"strings"

	"github.com/tidwall/gjson"
)

// Extractor runs extraction calls
type Extractor interface {
	// Download extracts and downloads target. Info may be non-nil together
	// with an error when some items of a collection failed.
	Download(ctx context.Context, target string, opts Options) (*Info, error)

	// Probe extracts metadata only
	Probe(ctx context.Context, target string, opts Options) (*Info, error)
}

// Entry is one item of a collection
type Entry struct {
	ID         string
	Title      string
	Filepath   string
	Downloaded bool
}

// Info is the subset of yt-dlp's metadata document used by the services
type Info struct {
	ID         string
	Title      string
	Uploader   string
	UploaderID string
	Channel    string
	ChannelID  string
	Duration   float64
	Filepath   string
	Downloaded bool

	IsCollection bool
	Entries      []Entry
}

// Succeeded counts collection entries that produced a file
func (i *Info) Succeeded() int {
	n := 0
	for _, e := range i.Entries {
		if e.Downloaded {
			n++
		}
	}
	return n
}

// Total returns the number of collection entries reported
func (i *Info) Total() int {
	return len(i.Entries)
}

// ChannelName returns the first non-empty of channel, uploader and id
func (i *Info) ChannelName() string {
	for _, v := range []string{i.Channel, i.Uploader, i.ID} {
		if v != "" {
			return v
		}
	}
	return ""
}

// StableUserID returns channel_id, else uploader_id
func (i *Info) StableUserID() string {
	if i.ChannelID != "" {
		return i.ChannelID
	}
	return i.UploaderID
}

// ParseInfo reads the last JSON document in stdout. ok is false when no
// document is present.
func ParseInfo(stdout string) (*Info, bool) {
	lines := strings.Split(strings.TrimSpace(stdout), "\n")
	for i := len(lines) - 1; i >= 0; i-- {
		line := strings.TrimSpace(lines[i])
		if line == "" || !gjson.Valid(line) {
			continue
		}
		doc := gjson.Parse(line)
		if !doc.IsObject() {
			continue
		}
		return parseDocument(doc), true
	}
	return nil, false
}

func parseDocument(doc gjson.Result) *Info {
	info := &Info{
		ID:         doc.Get("id").String(),
		Title:      doc.Get("title").String(),
		Uploader:   doc.Get("uploader").String(),
		UploaderID: doc.Get("uploader_id").String(),
		Channel:    doc.Get("channel").String(),
		ChannelID:  doc.Get("channel_id").String(),
		Duration:   doc.Get("duration").Float(),
	}
	info.Filepath, info.Downloaded = filepathOf(doc)

	entries := doc.Get("entries")
	if doc.Get("_type").String() == "playlist" || entries.Exists() {
		info.IsCollection = true
		for _, e := range entries.Array() {
			entry := Entry{ID: e.Get("id").String(), Title: e.Get("title").String()}
			if e.IsObject() {
				entry.Filepath, entry.Downloaded = filepathOf(e)
			}
			info.Entries = append(info.Entries, entry)
		}
	}
	return info
}

// filepathOf returns the produced file path. downloaded is true only when
// yt-dlp recorded a finished download for the document.
func filepathOf(doc gjson.Result) (string, bool) {
	for _, rd := range doc.Get("requested_downloads").Array() {
		if p := rd.Get("filepath").String(); p != "" {
			return p, true
		}
	}
	for _, key := range []string{"filepath", "_filename", "filename"} {
		if p := doc.Get(key).String(); p != "" {
			return p, false
		}
	}
	return "", false
}
