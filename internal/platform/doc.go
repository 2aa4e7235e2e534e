package platform

// Package platform contains OS/platform integration and external tooling glue:
// filesystem helpers, URL helpers, cookie sources and tool lookup.
