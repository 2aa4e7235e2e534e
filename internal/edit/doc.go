package edit

// Package edit implements the video editing operations on top of ffmpeg.
// Every operation is a pure argument builder plus one ffmpeg invocation;
// ffprobe supplies durations for progress and trim validation.
