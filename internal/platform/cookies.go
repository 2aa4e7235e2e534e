package platform

import (
	"context"
	"log/slog"
	"os"
	"sync"
	"time"

	"github.com/m-mizutani/ctxlog"
	"github.com/ytget/clipforge/internal/model"
)

// DefaultBrowsers is the order in which browser cookie stores are tried
var DefaultBrowsers = []string{"chrome", "edge", "firefox", "brave", "chromium", "opera", "vivaldi"}

// BrowserProbe checks whether cookies can be loaded from a browser profile
type BrowserProbe interface {
	ProbeBrowser(ctx context.Context, browser string) error
}

// BrowserProbeFunc adapts a function to BrowserProbe
type BrowserProbeFunc func(ctx context.Context, browser string) error

// ProbeBrowser calls f
func (f BrowserProbeFunc) ProbeBrowser(ctx context.Context, browser string) error {
	return f(ctx, browser)
}

type fileStamp struct {
	exists bool
	size   int64
	mtime  time.Time
}

func stampOf(path string) fileStamp {
	info, err := os.Stat(path)
	if err != nil {
		return fileStamp{}
	}
	return fileStamp{exists: true, size: info.Size(), mtime: info.ModTime()}
}

// CookieResolver picks the cookie source for extraction calls: a valid
// cookie file, then the first browser whose store loads, then none. The
// result is memoized until the cookie file's modification state changes.
type CookieResolver struct {
	path     string
	browsers []string
	probe    BrowserProbe

	// resolving serializes browser lookups; mu only guards the cache
	resolving sync.Mutex

	mu     sync.Mutex
	cached *model.CookieOption
	stamp  fileStamp
	gen    uint64
}

// CookieResolverOption configures a CookieResolver
type CookieResolverOption func(*CookieResolver)

// WithBrowsers overrides the browser probe order
func WithBrowsers(browsers ...string) CookieResolverOption {
	return func(r *CookieResolver) {
		r.browsers = browsers
	}
}

// NewCookieResolver creates a resolver for the cookie file at path. probe may
// be nil, in which case browsers are never tried.
func NewCookieResolver(path string, probe BrowserProbe, opts ...CookieResolverOption) *CookieResolver {
	r := &CookieResolver{
		path:     path,
		browsers: DefaultBrowsers,
		probe:    probe,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Path returns the cookie file path
func (r *CookieResolver) Path() string {
	return r.path
}

// Resolve returns the cookie option to use
func (r *CookieResolver) Resolve(ctx context.Context) model.CookieOption {
	st := stampOf(r.path)
	if opt, _, ok := r.lookup(st); ok {
		return opt
	}

	r.resolving.Lock()
	defer r.resolving.Unlock()

	st = stampOf(r.path)
	opt, gen, ok := r.lookup(st)
	if ok {
		return opt
	}

	opt = r.resolve(ctx, st)

	r.mu.Lock()
	if r.gen == gen {
		r.cached = &opt
		r.stamp = st
	}
	r.mu.Unlock()

	ctxlog.From(ctx).Debug("resolved cookie source", slog.String("source", opt.String()), slog.String("cookie_file", r.path))
	return opt
}

// lookup returns the cached option when it was resolved for st, along with
// the cache generation observed
func (r *CookieResolver) lookup(st fileStamp) (model.CookieOption, uint64, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.cached != nil && st == r.stamp {
		return *r.cached, r.gen, true
	}
	return model.CookieOption{}, r.gen, false
}

// Invalidate drops the memoized result
func (r *CookieResolver) Invalidate() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.cached = nil
	r.gen++
}

func (r *CookieResolver) resolve(ctx context.Context, st fileStamp) model.CookieOption {
	if st.exists && st.size > 0 && IsValidCookieFile(r.path) {
		return model.CookiesFromFile(r.path)
	}

	if r.probe != nil {
		for _, browser := range r.browsers {
			if ctx.Err() != nil {
				break
			}
			if err := r.probe.ProbeBrowser(ctx, browser); err != nil {
				ctxlog.From(ctx).Debug("browser cookie store unavailable", slog.String("browser", browser), slog.Any("error", err))
				continue
			}
			return model.CookiesFromBrowser(browser)
		}
	}

	return model.NoCookies()
}
