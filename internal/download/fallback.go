package download

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"regexp"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/m-mizutani/ctxlog"
	"github.com/m-mizutani/goerr/v2"
	"github.com/ytget/clipforge/internal/extractor"
	"github.com/ytget/clipforge/internal/model"
	"github.com/ytget/clipforge/internal/platform"
)

// Profile page lookup defaults
const (
	DefaultFetchTimeout  = 15 * time.Second
	DefaultMaxCandidates = 10
	maxPageBytes         = 8 << 20
)

// DesktopUserAgent is sent with every profile page request
const DesktopUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/124.0.0.0 Safari/537.36"

// secondaryIDMarker is the extractor message that triggers the fallback
const secondaryIDMarker = "Unable to extract secondary user ID"

var (
	secUIDPattern    = regexp.MustCompile(`"secUid":"([^"]+)"`)
	videoPathPattern = regexp.MustCompile(`/@[\w.-]+/video/\d+`)
)

// IsSecondaryIDError reports whether err is the extractor failure that the
// profile fallback can recover from
func IsSecondaryIDError(err error) bool {
	if err == nil {
		return false
	}
	if goerr.HasTag(err, model.ErrTagSecondaryID) {
		return true
	}
	return strings.Contains(err.Error(), secondaryIDMarker)
}

// ProfileResolver finds the stable identifier of a TikTok profile
type ProfileResolver struct {
	client        *http.Client
	prober        extractor.Extractor
	userAgent     string
	timeout       time.Duration
	maxCandidates int
}

// ResolverOption configures a ProfileResolver
type ResolverOption func(*ProfileResolver)

// WithHTTPClient sets the client used to fetch profile pages
func WithHTTPClient(c *http.Client) ResolverOption {
	return func(r *ProfileResolver) { r.client = c }
}

// WithFetchTimeout sets the profile page fetch timeout
func WithFetchTimeout(d time.Duration) ResolverOption {
	return func(r *ProfileResolver) {
		if d > 0 {
			r.timeout = d
		}
	}
}

// WithMaxCandidates caps how many video pages are probed
func WithMaxCandidates(n int) ResolverOption {
	return func(r *ProfileResolver) {
		if n > 0 {
			r.maxCandidates = n
		}
	}
}

// NewProfileResolver creates a resolver probing candidate videos with prober
func NewProfileResolver(prober extractor.Extractor, opts ...ResolverOption) *ProfileResolver {
	r := &ProfileResolver{
		client:        &http.Client{},
		prober:        prober,
		userAgent:     DesktopUserAgent,
		timeout:       DefaultFetchTimeout,
		maxCandidates: DefaultMaxCandidates,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Resolve returns the profile's secUid, or the channel/uploader id of the
// first candidate video that reports one
func (r *ProfileResolver) Resolve(ctx context.Context, profileURL string, cookies model.CookieOption) (string, error) {
	body, err := r.fetch(ctx, profileURL, cookies)
	if err != nil {
		return "", err
	}

	if m := secUIDPattern.FindStringSubmatch(body); len(m) == 2 {
		ctxlog.From(ctx).Debug("found secUid in profile page")
		return m[1], nil
	}

	candidates := videoCandidates(profileURL, body)
	if len(candidates) > r.maxCandidates {
		candidates = candidates[:r.maxCandidates]
	}
	ctxlog.From(ctx).Debug("probing candidate videos", slog.Int("count", len(candidates)))

	opts := extractor.DefaultOptions()
	opts.Quiet = true
	opts.NoWarnings = true
	opts.Cookies = cookies
	for _, c := range candidates {
		if ctx.Err() != nil {
			return "", goerr.Wrap(ctx.Err(), "profile lookup cancelled")
		}
		info, err := r.prober.Probe(ctx, c, opts)
		if err != nil || info == nil {
			continue
		}
		if id := info.StableUserID(); id != "" {
			return id, nil
		}
	}

	return "", goerr.New("no stable user id found on profile page",
		goerr.V("url", profileURL), goerr.V("candidates", len(candidates)), goerr.T(model.ErrTagSecondaryID))
}

func (r *ProfileResolver) fetch(ctx context.Context, profileURL string, cookies model.CookieOption) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, profileURL, nil)
	if err != nil {
		return "", goerr.Wrap(err, "invalid profile URL", goerr.V("url", profileURL), goerr.T(model.ErrTagValidation))
	}
	req.Header.Set("User-Agent", r.userAgent)
	req.Header.Set("Accept-Language", "en-US,en;q=0.9")

	client := *r.client
	if cookies.Kind == model.CookieFile {
		if jar, jerr := platform.LoadCookieJar(cookies.Path); jerr == nil {
			client.Jar = jar
		} else {
			ctxlog.From(ctx).Debug("cookie jar not loaded", slog.Any("error", jerr))
		}
	}

	resp, err := client.Do(req)
	if err != nil {
		return "", goerr.Wrap(err, "failed to fetch profile page", goerr.V("url", profileURL), goerr.T(model.ErrTagNetwork))
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", goerr.New("unexpected profile page status",
			goerr.V("url", profileURL), goerr.V("status", resp.StatusCode), goerr.T(model.ErrTagNetwork))
	}

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxPageBytes))
	if err != nil && !errors.Is(err, io.EOF) {
		return "", goerr.Wrap(err, "failed to read profile page", goerr.T(model.ErrTagNetwork))
	}
	return string(raw), nil
}

// videoCandidates collects video page URLs from anchors and raw markup,
// deduplicated in first-seen order
func videoCandidates(profileURL, body string) []string {
	base, err := url.Parse(profileURL)
	if err != nil {
		return nil
	}

	seen := make(map[string]struct{})
	var out []string
	add := func(ref string) {
		m := videoPathPattern.FindString(ref)
		if m == "" {
			return
		}
		u, err := base.Parse(m)
		if err != nil {
			return
		}
		abs := u.String()
		if _, ok := seen[abs]; ok {
			return
		}
		seen[abs] = struct{}{}
		out = append(out, abs)
	}

	if doc, err := goquery.NewDocumentFromReader(strings.NewReader(body)); err == nil {
		doc.Find("a[href]").Each(func(_ int, sel *goquery.Selection) {
			if href, ok := sel.Attr("href"); ok {
				add(href)
			}
		})
	}
	for _, m := range videoPathPattern.FindAllString(body, -1) {
		add(m)
	}
	return out
}
