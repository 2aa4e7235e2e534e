package model

// CookieKind is the variant of a CookieOption
type CookieKind int

const (
	CookieNone CookieKind = iota
	CookieFile
	CookieBrowser
)

// CookieOption is the authentication source handed to the extraction library
type CookieOption struct {
	Kind    CookieKind
	Path    string // CookieFile
	Browser string // CookieBrowser
}

// NoCookies is the empty option
func NoCookies() CookieOption { return CookieOption{Kind: CookieNone} }

// CookiesFromFile uses a Netscape cookie file
func CookiesFromFile(path string) CookieOption {
	return CookieOption{Kind: CookieFile, Path: path}
}

// CookiesFromBrowser reads cookies from a local browser profile
func CookiesFromBrowser(name string) CookieOption {
	return CookieOption{Kind: CookieBrowser, Browser: name}
}

// IsSet is true unless the option is CookieNone
func (c CookieOption) IsSet() bool {
	return c.Kind != CookieNone
}

// String returns a short label used in activity lines
func (c CookieOption) String() string {
	switch c.Kind {
	case CookieFile:
		return "file"
	case CookieBrowser:
		return "browser:" + c.Browser
	default:
		return "none"
	}
}
