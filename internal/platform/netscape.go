package platform

import (
	"bufio"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/ytget/clipforge/internal/model"
)

// Netscape cookie file layout
const (
	netscapeFieldCount = 7
	httpOnlyPrefix     = "#HttpOnly_"
)

// parseNetscapeLine parses one record. ok is false for comments, blank
// lines and malformed records.
func parseNetscapeLine(line string) (*http.Cookie, bool) {
	line = strings.TrimRight(line, "\r\n")
	httpOnly := false
	if strings.HasPrefix(line, httpOnlyPrefix) {
		httpOnly = true
		line = strings.TrimPrefix(line, httpOnlyPrefix)
	}
	if line == "" || strings.HasPrefix(line, "#") {
		return nil, false
	}

	fields := strings.Split(line, "\t")
	if len(fields) != netscapeFieldCount {
		return nil, false
	}
	domain, includeSub, path, secure, expires, name, value := fields[0], fields[1], fields[2], fields[3], fields[4], fields[5], fields[6]
	if domain == "" || name == "" || !isNetscapeBool(includeSub) || !isNetscapeBool(secure) {
		return nil, false
	}
	exp, err := strconv.ParseInt(expires, 10, 64)
	if err != nil {
		return nil, false
	}

	c := &http.Cookie{
		Name:     name,
		Value:    value,
		Domain:   domain,
		Path:     path,
		Secure:   strings.EqualFold(secure, "TRUE"),
		HttpOnly: httpOnly,
	}
	if exp > 0 {
		c.Expires = time.Unix(exp, 0)
	}
	return c, true
}

func isNetscapeBool(v string) bool {
	return strings.EqualFold(v, "TRUE") || strings.EqualFold(v, "FALSE")
}

// ParseNetscapeCookies reads every well-formed record of a Netscape cookie file
func ParseNetscapeCookies(r io.Reader) ([]*http.Cookie, error) {
	var cookies []*http.Cookie
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		if c, ok := parseNetscapeLine(scanner.Text()); ok {
			cookies = append(cookies, c)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, goerr.Wrap(err, "failed to read cookie file", goerr.T(model.ErrTagFilesystem))
	}
	return cookies, nil
}

// IsValidCookieFile reports whether path exists, is non-empty and holds at
// least one well-formed Netscape record
func IsValidCookieFile(path string) bool {
	info, err := os.Stat(path)
	if err != nil || info.IsDir() || info.Size() == 0 {
		return false
	}
	f, err := os.Open(path)
	if err != nil {
		return false
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		if _, ok := parseNetscapeLine(scanner.Text()); ok {
			return true
		}
	}
	return false
}

// LoadCookieJar builds a cookie jar from a Netscape cookie file
func LoadCookieJar(path string) (http.CookieJar, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to open cookie file", goerr.V("cookie_file", path), goerr.T(model.ErrTagFilesystem))
	}
	defer f.Close()

	cookies, err := ParseNetscapeCookies(f)
	if err != nil {
		return nil, err
	}

	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create cookie jar")
	}
	for _, c := range cookies {
		host := strings.TrimPrefix(c.Domain, ".")
		scheme := "http"
		if c.Secure {
			scheme = "https"
		}
		jar.SetCookies(&url.URL{Scheme: scheme, Host: host, Path: "/"}, []*http.Cookie{c})
	}
	return jar, nil
}
