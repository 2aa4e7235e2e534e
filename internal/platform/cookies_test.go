package platform

import (
	"context"
	"errors"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/m-mizutani/gt"
	"github.com/ytget/clipforge/internal/model"
)

const sampleCookies = "# Netscape HTTP Cookie File\n" +
	"# comment line\n" +
	".tiktok.com\tTRUE\t/\tTRUE\t1999999999\tsessionid\tabc123\n" +
	"#HttpOnly_.youtube.com\tTRUE\t/\tTRUE\t0\tSID\txyz\n"

func writeCookieFile(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "cookies.txt")
	gt.NoError(t, os.WriteFile(path, []byte(body), 0600))
	return path
}

type recordingProbe struct {
	mu    sync.Mutex
	calls []string
	ok    map[string]bool
}

func (p *recordingProbe) ProbeBrowser(_ context.Context, browser string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.calls = append(p.calls, browser)
	if p.ok[browser] {
		return nil
	}
	return errors.New("no cookie store")
}

func TestParseNetscapeCookies(t *testing.T) {
	cookies, err := ParseNetscapeCookies(strings.NewReader(sampleCookies + "broken\tline\n"))
	gt.NoError(t, err)
	gt.Equal(t, len(cookies), 2)

	gt.Equal(t, cookies[0].Name, "sessionid")
	gt.Equal(t, cookies[0].Value, "abc123")
	gt.Equal(t, cookies[0].Domain, ".tiktok.com")
	gt.True(t, cookies[0].Secure)
	gt.Equal(t, cookies[0].HttpOnly, false)
	gt.Equal(t, cookies[0].Expires.Unix(), int64(1999999999))

	gt.Equal(t, cookies[1].Name, "SID")
	gt.True(t, cookies[1].HttpOnly)
	gt.True(t, cookies[1].Expires.IsZero())
}

func TestIsValidCookieFile(t *testing.T) {
	tests := []struct {
		name string
		body string
		want bool
	}{
		{"valid", sampleCookies, true},
		{"only httponly record", "#HttpOnly_.x.com\tTRUE\t/\tFALSE\t0\tk\tv\n", true},
		{"comments only", "# Netscape HTTP Cookie File\n# nothing\n", false},
		{"six fields", ".x.com\tTRUE\t/\tFALSE\t0\tk\n", false},
		{"bad flag", ".x.com\tYES\t/\tFALSE\t0\tk\tv\n", false},
		{"bad expiry", ".x.com\tTRUE\t/\tFALSE\tsoon\tk\tv\n", false},
		{"empty", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gt.Equal(t, IsValidCookieFile(writeCookieFile(t, tt.body)), tt.want)
		})
	}

	gt.Equal(t, IsValidCookieFile(filepath.Join(t.TempDir(), "missing.txt")), false)
}

func TestLoadCookieJar(t *testing.T) {
	jar, err := LoadCookieJar(writeCookieFile(t, sampleCookies))
	gt.NoError(t, err)

	u, _ := url.Parse("https://www.tiktok.com/@someone")
	got := jar.Cookies(u)
	gt.Equal(t, len(got), 1)
	gt.Equal(t, got[0].Name, "sessionid")

	_, err = LoadCookieJar(filepath.Join(t.TempDir(), "missing.txt"))
	gt.Error(t, err)
}

func TestCookieResolver_PrefersValidFile(t *testing.T) {
	path := writeCookieFile(t, sampleCookies)
	probe := &recordingProbe{ok: map[string]bool{"chrome": true}}

	r := NewCookieResolver(path, probe)
	opt := r.Resolve(context.Background())

	gt.Equal(t, opt.Kind, model.CookieFile)
	gt.Equal(t, opt.Path, path)
	gt.Equal(t, len(probe.calls), 0)
}

func TestCookieResolver_BrowserOrder(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cookies.txt")
	probe := &recordingProbe{ok: map[string]bool{"firefox": true, "brave": true}}

	r := NewCookieResolver(path, probe)
	opt := r.Resolve(context.Background())

	gt.Equal(t, opt, model.CookiesFromBrowser("firefox"))
	gt.Equal(t, strings.Join(probe.calls, ","), "chrome,edge,firefox")

	// cached: no further probing while the file state is unchanged
	gt.Equal(t, r.Resolve(context.Background()), model.CookiesFromBrowser("firefox"))
	gt.Equal(t, len(probe.calls), 3)
}

func TestCookieResolver_NoneWhenNothingWorks(t *testing.T) {
	path := writeCookieFile(t, "# empty jar\n")
	probe := &recordingProbe{}

	r := NewCookieResolver(path, probe, WithBrowsers("firefox", "chrome"))
	gt.Equal(t, r.Resolve(context.Background()), model.NoCookies())
	gt.Equal(t, strings.Join(probe.calls, ","), "firefox,chrome")

	gt.Equal(t, NewCookieResolver(path, nil).Resolve(context.Background()), model.NoCookies())
}

func TestCookieResolver_ReResolvesOnFileChange(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cookies.txt")
	var probes atomic.Int32
	probe := BrowserProbeFunc(func(_ context.Context, browser string) error {
		probes.Add(1)
		if browser == "edge" {
			return nil
		}
		return errors.New("locked")
	})

	r := NewCookieResolver(path, probe)
	gt.Equal(t, r.Resolve(context.Background()), model.CookiesFromBrowser("edge"))
	gt.Equal(t, probes.Load(), int32(2))

	gt.NoError(t, os.WriteFile(path, []byte(sampleCookies), 0600))
	future := time.Now().Add(time.Hour)
	gt.NoError(t, os.Chtimes(path, future, future))

	gt.Equal(t, r.Resolve(context.Background()), model.CookiesFromFile(path))
	gt.Equal(t, r.Resolve(context.Background()), model.CookiesFromFile(path))
	gt.Equal(t, probes.Load(), int32(2))
}

func TestCookieResolver_Invalidate(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cookies.txt")
	probe := &recordingProbe{ok: map[string]bool{"chrome": true}}

	r := NewCookieResolver(path, probe)
	r.Resolve(context.Background())
	r.Invalidate()
	r.Resolve(context.Background())

	gt.Equal(t, len(probe.calls), 2)
}

func TestCookieResolver_Concurrent(t *testing.T) {
	path := writeCookieFile(t, sampleCookies)
	r := NewCookieResolver(path, nil)

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			gt.Equal(t, r.Resolve(context.Background()).Kind, model.CookieFile)
		}()
	}
	wg.Wait()
}

func TestCookieResolver_SlowBrowserLookup(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cookies.txt")
	entered := make(chan struct{})
	release := make(chan struct{})
	var calls atomic.Int32
	probe := BrowserProbeFunc(func(_ context.Context, browser string) error {
		if calls.Add(1) == 1 {
			close(entered)
		}
		<-release
		return nil
	})
	r := NewCookieResolver(path, probe)

	results := make(chan model.CookieOption, 8)
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		results <- r.Resolve(context.Background())
	}()
	<-entered

	for i := 0; i < 7; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			results <- r.Resolve(context.Background())
		}()
	}

	// the cache stays reachable while a lookup is in flight
	done := make(chan struct{})
	go func() {
		_ = r.Path()
		r.mu.Lock()
		r.mu.Unlock()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("cache lock held during browser lookup")
	}

	close(release)
	wg.Wait()
	close(results)

	for opt := range results {
		gt.Equal(t, opt, model.CookiesFromBrowser("chrome"))
	}
	gt.Equal(t, calls.Load(), int32(1))
}

func TestCookieResolver_InvalidateDuringLookup(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cookies.txt")
	entered := make(chan struct{}, 1)
	release := make(chan struct{})
	var calls atomic.Int32
	probe := BrowserProbeFunc(func(_ context.Context, browser string) error {
		calls.Add(1)
		select {
		case entered <- struct{}{}:
		default:
		}
		<-release
		return nil
	})
	r := NewCookieResolver(path, probe)

	first := make(chan model.CookieOption, 1)
	go func() { first <- r.Resolve(context.Background()) }()
	<-entered
	r.Invalidate()
	close(release)

	gt.Equal(t, <-first, model.CookiesFromBrowser("chrome"))
	gt.Equal(t, r.Resolve(context.Background()), model.CookiesFromBrowser("chrome"))
	gt.Equal(t, calls.Load(), int32(2))
}
