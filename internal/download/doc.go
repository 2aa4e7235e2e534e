package download

// Package download orchestrates TikTok and YouTube downloads on top of the
// extractor adapter. Per-item failures never escape as errors: every call
// returns a model.DownloadResult and reports progress through a Reporter.
