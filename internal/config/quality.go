package config

// QualityPreset is a download quality label
type QualityPreset string

const (
	QualityBest  QualityPreset = "best"
	Quality2160p QualityPreset = "2160p"
	Quality1440p QualityPreset = "1440p"
	Quality1080p QualityPreset = "1080p"
	Quality720p  QualityPreset = "720p"
	Quality480p  QualityPreset = "480p"
	Quality360p  QualityPreset = "360p"
	QualityAudio QualityPreset = "audio"
)

// TikTokFormat is the selector used for every TikTok download
const TikTokFormat = "bestvideo+bestaudio/best"

var qualityFormats = map[QualityPreset]string{
	QualityBest:  "bestvideo*+bestaudio*/best*",
	Quality2160p: "bestvideo*[height<=2160]+bestaudio*/best*[height<=2160]",
	Quality1440p: "bestvideo*[height<=1440]+bestaudio*/best*[height<=1440]",
	Quality1080p: "bestvideo*[height<=1080]+bestaudio*/best*[height<=1080]",
	Quality720p:  "bestvideo*[height<=720]+bestaudio*/best*[height<=720]",
	Quality480p:  "bestvideo*[height<=480]+bestaudio*/best*[height<=480]",
	Quality360p:  "bestvideo*[height<=360]+bestaudio*/best*[height<=360]",
	QualityAudio: "bestaudio[ext=m4a]/bestaudio*/best*",
}

// QualityPresets returns the labels in menu order
func QualityPresets() []QualityPreset {
	return []QualityPreset{
		QualityBest, Quality2160p, Quality1440p, Quality1080p,
		Quality720p, Quality480p, Quality360p, QualityAudio,
	}
}

// ParseQuality maps a label to a preset; unknown labels become best
func ParseQuality(label string) QualityPreset {
	q := QualityPreset(label)
	if _, ok := qualityFormats[q]; ok {
		return q
	}
	return QualityBest
}

// FormatSelector returns the yt-dlp format selector for the preset
func (q QualityPreset) FormatSelector() string {
	if f, ok := qualityFormats[q]; ok {
		return f
	}
	return qualityFormats[QualityBest]
}

// IsAudio reports whether the preset downloads audio only
func (q QualityPreset) IsAudio() bool {
	return q == QualityAudio
}
