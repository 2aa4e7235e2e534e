package config

import (
	"testing"

	"github.com/m-mizutani/gt"
)

func TestParseQuality(t *testing.T) {
	tests := []struct {
		label string
		want  QualityPreset
	}{
		{"best", QualityBest},
		{"1080p", Quality1080p},
		{"audio", QualityAudio},
		{"", QualityBest},
		{"8k", QualityBest},
		{"BEST", QualityBest},
	}

	for _, tt := range tests {
		t.Run(tt.label, func(t *testing.T) {
			gt.Equal(t, ParseQuality(tt.label), tt.want)
		})
	}
}

func TestFormatSelector(t *testing.T) {
	gt.Equal(t, QualityBest.FormatSelector(), "bestvideo*+bestaudio*/best*")
	gt.Equal(t, Quality720p.FormatSelector(), "bestvideo*[height<=720]+bestaudio*/best*[height<=720]")
	gt.Equal(t, QualityAudio.FormatSelector(), "bestaudio[ext=m4a]/bestaudio*/best*")
	gt.Equal(t, QualityPreset("unknown").FormatSelector(), QualityBest.FormatSelector())
}

func TestQualityPresets(t *testing.T) {
	presets := QualityPresets()
	gt.Equal(t, len(presets), 8)
	for _, p := range presets {
		gt.V(t, p.FormatSelector()).NotEqual("")
	}
	gt.True(t, QualityAudio.IsAudio())
	gt.Equal(t, Quality360p.IsAudio(), false)
}
