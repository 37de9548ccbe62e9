// Package cover finds a preview image for a web page by reading its
// og:image (or twitter:image) meta tag.
package cover

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/netip"
	"net/url"
	"strings"
	"syscall"
	"time"

	"golang.org/x/net/html"

	"github.com/MrSnakeDoc/shelf/internal/logger"
	"github.com/MrSnakeDoc/shelf/internal/utils"
)

const (
	DefaultTimeout   = 6 * time.Second
	DefaultUserAgent = "Mozilla/5.0 (compatible; Shelf/1.0; +https://github.com/MrSnakeDoc/shelf)"

	// maxBodyBytes bounds how much of a page is parsed.
	maxBodyBytes = 2 << 20
)

var (
	ErrUnsupportedURL = errors.New("only absolute http(s) URLs can be fetched")
	ErrNoCover        = errors.New("no cover image found")
	ErrBlockedAddress = errors.New("refusing to fetch from a non-public address")
)

// Options configures a Fetcher. Zero values pick the defaults.
//
// The default client only dials public addresses, redirects included.
// A caller-supplied Client is used as is.
type Options struct {
	Timeout   time.Duration
	UserAgent string
	Client    *http.Client

	// AllowPrivateHosts lifts the public-address restriction of the default client.
	AllowPrivateHosts bool
}

// Fetcher downloads pages and extracts their cover image URL.
type Fetcher struct {
	client    *http.Client
	timeout   time.Duration
	userAgent string
	log       logger.Logger
}

// NewFetcher creates a cover fetcher.
func NewFetcher(opts Options, log logger.Logger) *Fetcher {
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultTimeout
	}
	if opts.UserAgent == "" {
		opts.UserAgent = DefaultUserAgent
	}
	if opts.Client == nil {
		opts.Client = newClient(opts.AllowPrivateHosts)
	}
	return &Fetcher{
		client:    opts.Client,
		timeout:   opts.Timeout,
		userAgent: opts.UserAgent,
		log:       log,
	}
}

func newClient(allowPrivate bool) *http.Client {
	dialer := &net.Dialer{Timeout: 5 * time.Second, KeepAlive: 30 * time.Second}
	if !allowPrivate {
		dialer.Control = publicOnly
	}

	transport := http.DefaultTransport.(*http.Transport).Clone()
	transport.Proxy = nil
	transport.DialContext = dialer.DialContext
	return &http.Client{Transport: transport}
}

// publicOnly runs after DNS resolution, so it sees the address actually dialed.
func publicOnly(_, address string, _ syscall.RawConn) error {
	ap, err := netip.ParseAddrPort(address)
	if err != nil {
		return fmt.Errorf("%w: %s", ErrBlockedAddress, address)
	}
	if !utils.IsPublicIP(ap.Addr()) {
		return fmt.Errorf("%w: %s", ErrBlockedAddress, ap.Addr())
	}
	return nil
}

// Resolve returns the cover URL for pageURL, or "" on any failure.
func (f *Fetcher) Resolve(ctx context.Context, pageURL string) string {
	cover, err := f.Lookup(ctx, pageURL)
	if err != nil {
		f.log.Debug("cover lookup failed",
			logger.String("url", pageURL),
			logger.Error(err))
		return ""
	}
	return cover
}

// Lookup fetches pageURL and returns the absolute cover image URL.
func (f *Fetcher) Lookup(ctx context.Context, pageURL string) (string, error) {
	u, err := url.Parse(strings.TrimSpace(pageURL))
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return "", ErrUnsupportedURL
	}

	ctx, cancel := context.WithTimeout(ctx, f.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", f.userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml")

	resp, err := f.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("fetch: %w", err)
	}
	defer utils.Close(resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", fmt.Errorf("HTTP %d: %s", resp.StatusCode, resp.Status)
	}

	doc, err := html.Parse(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return "", fmt.Errorf("parse html: %w", err)
	}

	raw := extractCover(doc)
	if raw == "" {
		return "", ErrNoCover
	}

	// relative to the final URL after redirects
	base := u
	if resp.Request != nil && resp.Request.URL != nil {
		base = resp.Request.URL
	}
	ref, err := url.Parse(raw)
	if err != nil {
		return "", fmt.Errorf("invalid cover url %q: %w", raw, err)
	}
	return base.ResolveReference(ref).String(), nil
}

// extractCover walks the document and prefers og:image over twitter:image.
func extractCover(doc *html.Node) string {
	var og, twitter string

	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if og != "" {
			return
		}
		if n.Type == html.ElementNode && n.Data == "meta" {
			key, content := metaPair(n)
			switch {
			case key == "og:image" && content != "":
				og = content
			case key == "twitter:image" && content != "" && twitter == "":
				twitter = content
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)

	if og != "" {
		return og
	}
	return twitter
}

// metaPair returns the lowercased property (or name) and the trimmed content of a meta tag.
func metaPair(n *html.Node) (key, content string) {
	for _, a := range n.Attr {
		switch strings.ToLower(a.Key) {
		case "property", "name":
			if key == "" {
				key = strings.ToLower(strings.TrimSpace(a.Val))
			}
		case "content":
			content = strings.TrimSpace(a.Val)
		}
	}
	return key, content
}
