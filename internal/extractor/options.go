package extractor

import (
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/ytget/clipforge/internal/model"
)

// Network robustness defaults shared by every download
const (
	DefaultRetries         = 10
	DefaultFragmentRetries = 10
	DefaultHTTPChunkSize   = 10 * 1024 * 1024
	DefaultSocketTimeout   = 30 * time.Second
	MaxConcurrentFragments = 64
)

// Options is the typed set of extraction settings. Only the keys listed in
// KnownOptions can be changed from configuration.
type Options struct {
	Format                 string
	OutputTemplate         string
	Quiet                  bool
	NoWarnings             bool
	IgnoreErrors           bool
	MergeOutputFormat      string
	NoCheckCertificates    bool
	Retries                int
	FragmentRetries        int
	HTTPChunkSize          int64
	SocketTimeout          time.Duration
	ConcurrentFragments    int
	FormatSort             []string
	ExternalDownloader     string
	ExternalDownloaderArgs []string
	PlaylistEnd            int
	ExtractorArgs          string
	ExtractAudio           bool
	AudioFormat            string
	AudioQuality           string
	Continue               bool
	FlatPlaylist           bool

	Cookies  model.CookieOption
	Progress func(model.ProgressEvent)
}

// DefaultOptions returns the options every download starts from
func DefaultOptions() Options {
	return Options{
		Quiet:               true,
		NoWarnings:          true,
		NoCheckCertificates: true,
		Retries:             DefaultRetries,
		FragmentRetries:     DefaultFragmentRetries,
		HTTPChunkSize:       DefaultHTTPChunkSize,
		SocketTimeout:       DefaultSocketTimeout,
	}
}

type setter func(o *Options, v string) error

// knownOptions is the allow-list of configuration keys
var knownOptions = map[string]setter{
	"format":                   func(o *Options, v string) error { o.Format = v; return nil },
	"output":                   func(o *Options, v string) error { o.OutputTemplate = v; return nil },
	"quiet":                    boolSetter(func(o *Options, b bool) { o.Quiet = b }),
	"no_warnings":              boolSetter(func(o *Options, b bool) { o.NoWarnings = b }),
	"ignore_errors":            boolSetter(func(o *Options, b bool) { o.IgnoreErrors = b }),
	"merge_output_format":      func(o *Options, v string) error { o.MergeOutputFormat = v; return nil },
	"no_check_certificates":    boolSetter(func(o *Options, b bool) { o.NoCheckCertificates = b }),
	"retries":                  intSetter(func(o *Options, n int) { o.Retries = n }),
	"fragment_retries":         intSetter(func(o *Options, n int) { o.FragmentRetries = n }),
	"http_chunk_size":          intSetter(func(o *Options, n int) { o.HTTPChunkSize = int64(n) }),
	"socket_timeout":           durationSetter(func(o *Options, d time.Duration) { o.SocketTimeout = d }),
	"concurrent_fragments":     intSetter(func(o *Options, n int) { o.ConcurrentFragments = n }),
	"format_sort":              listSetter(func(o *Options, l []string) { o.FormatSort = l }),
	"external_downloader":      func(o *Options, v string) error { o.ExternalDownloader = v; return nil },
	"external_downloader_args": listSetter(func(o *Options, l []string) { o.ExternalDownloaderArgs = l }),
	"playlist_end":             intSetter(func(o *Options, n int) { o.PlaylistEnd = n }),
	"extractor_args":           func(o *Options, v string) error { o.ExtractorArgs = v; return nil },
	"audio_format":             func(o *Options, v string) error { o.AudioFormat = v; return nil },
	"audio_quality":            func(o *Options, v string) error { o.AudioQuality = v; return nil },
	"continue":                 boolSetter(func(o *Options, b bool) { o.Continue = b }),
}

// KnownOptions returns the recognized configuration keys in sorted order
func KnownOptions() []string {
	keys := make([]string, 0, len(knownOptions))
	for k := range knownOptions {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Set assigns one option from its string form. Unknown keys are rejected.
func (o *Options) Set(key, value string) error {
	fn, ok := knownOptions[key]
	if !ok {
		return goerr.New("unknown extractor option", goerr.V("key", key), goerr.T(model.ErrTagValidation))
	}
	if err := fn(o, strings.TrimSpace(value)); err != nil {
		return goerr.Wrap(err, "invalid extractor option value", goerr.V("key", key), goerr.V("value", value), goerr.T(model.ErrTagValidation))
	}
	return nil
}

// Apply sets every override in key order and validates the result
func (o *Options) Apply(overrides map[string]string) error {
	keys := make([]string, 0, len(overrides))
	for k := range overrides {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		if err := o.Set(k, overrides[k]); err != nil {
			return err
		}
	}
	return o.Validate()
}

// Validate checks value ranges
func (o Options) Validate() error {
	bad := func(key string, v any) error {
		return goerr.New("extractor option out of range", goerr.V("key", key), goerr.V("value", v), goerr.T(model.ErrTagValidation))
	}
	switch {
	case o.Retries < 0:
		return bad("retries", o.Retries)
	case o.FragmentRetries < 0:
		return bad("fragment_retries", o.FragmentRetries)
	case o.HTTPChunkSize < 0:
		return bad("http_chunk_size", o.HTTPChunkSize)
	case o.SocketTimeout < 0:
		return bad("socket_timeout", o.SocketTimeout)
	case o.ConcurrentFragments < 0 || o.ConcurrentFragments > MaxConcurrentFragments:
		return bad("concurrent_fragments", o.ConcurrentFragments)
	case o.PlaylistEnd < 0:
		return bad("playlist_end", o.PlaylistEnd)
	case strings.ContainsAny(o.ExternalDownloader, " \t"):
		return bad("external_downloader", o.ExternalDownloader)
	case len(o.ExternalDownloaderArgs) > 0 && o.ExternalDownloader == "":
		return bad("external_downloader_args", o.ExternalDownloaderArgs)
	}

	switch o.Cookies.Kind {
	case model.CookieFile:
		if o.Cookies.Path == "" {
			return bad("cookies", "file without path")
		}
	case model.CookieBrowser:
		if o.Cookies.Browser == "" {
			return bad("cookies", "browser without name")
		}
	}
	return nil
}

// Clone returns a copy whose slices can be changed independently
func (o Options) Clone() Options {
	c := o
	c.FormatSort = append([]string(nil), o.FormatSort...)
	c.ExternalDownloaderArgs = append([]string(nil), o.ExternalDownloaderArgs...)
	return c
}

func boolSetter(fn func(*Options, bool)) setter {
	return func(o *Options, v string) error {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return err
		}
		fn(o, b)
		return nil
	}
}

func intSetter(fn func(*Options, int)) setter {
	return func(o *Options, v string) error {
		n, err := strconv.Atoi(v)
		if err != nil {
			return err
		}
		fn(o, n)
		return nil
	}
}

func durationSetter(fn func(*Options, time.Duration)) setter {
	return func(o *Options, v string) error {
		d, err := time.ParseDuration(v)
		if err != nil {
			secs, ferr := strconv.ParseFloat(v, 64)
			if ferr != nil {
				return err
			}
			d = time.Duration(secs * float64(time.Second))
		}
		fn(o, d)
		return nil
	}
}

func listSetter(fn func(*Options, []string)) setter {
	return func(o *Options, v string) error {
		var out []string
		for _, item := range strings.Split(v, ",") {
			if item = strings.TrimSpace(item); item != "" {
				out = append(out, item)
			}
		}
		fn(o, out)
		return nil
	}
}
