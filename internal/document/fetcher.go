package document

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
)

// ErrHostNotAllowed is returned for locators outside the configured object-storage hosts.
var ErrHostNotAllowed = errors.New("document host is not allowed")

const maxRedirects = 5

// HTTPFetcher downloads documents from object-storage URLs. Only hosts on the
// allowlist are contacted, including after redirects; an empty allowlist
// fetches nothing.
type HTTPFetcher struct {
	client   *resty.Client
	maxBytes int64
	hosts    hostList
}

func NewHTTPFetcher(timeout time.Duration, maxBytes int64, allowedHosts []string) *HTTPFetcher {
	hosts := newHostList(allowedHosts)

	c := resty.New().
		SetTimeout(timeout).
		SetRetryCount(0).
		SetHeader("Accept", "*/*").
		SetDoNotParseResponse(true).
		SetRedirectPolicy(resty.RedirectPolicyFunc(func(req *http.Request, via []*http.Request) error {
			if len(via) >= maxRedirects {
				return fmt.Errorf("stopped after %d redirects", maxRedirects)
			}
			if !hosts.allows(req.URL) {
				return fmt.Errorf("redirect to %s: %w", req.URL.Hostname(), ErrHostNotAllowed)
			}
			return nil
		}))

	return &HTTPFetcher{client: c, maxBytes: maxBytes, hosts: hosts}
}

func (f *HTTPFetcher) Fetch(ctx context.Context, rawURL string) ([]byte, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, fmt.Errorf("parse url: %w", err)
	}
	if !f.hosts.allows(u) {
		return nil, fmt.Errorf("get %s: %w", u.Hostname(), ErrHostNotAllowed)
	}

	resp, err := f.client.R().
		SetContext(ctx).
		Get(rawURL)
	if resp != nil && resp.RawBody() != nil {
		defer resp.RawBody().Close()
	}
	if err != nil {
		return nil, fmt.Errorf("get %s: %w", u.Hostname(), err)
	}
	if resp.StatusCode() != http.StatusOK {
		return nil, fmt.Errorf("get %s: status %d", u.Hostname(), resp.StatusCode())
	}
	if f.maxBytes > 0 && resp.RawResponse.ContentLength > f.maxBytes {
		return nil, fmt.Errorf("document is %d bytes, limit is %d bytes", resp.RawResponse.ContentLength, f.maxBytes)
	}

	var r io.Reader = resp.RawBody()
	if f.maxBytes > 0 {
		// one byte past the limit is enough to know it was exceeded
		r = io.LimitReader(r, f.maxBytes+1)
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", u.Hostname(), err)
	}
	if f.maxBytes > 0 && int64(len(data)) > f.maxBytes {
		return nil, fmt.Errorf("document exceeds size limit, limit is %d bytes", f.maxBytes)
	}
	return data, nil
}

// hostList matches exact hostnames, and subdomains for entries written as
// ".example.com" or "*.example.com".
type hostList struct {
	exact    map[string]bool
	suffixes []string
}

func newHostList(hosts []string) hostList {
	l := hostList{exact: make(map[string]bool)}
	for _, h := range hosts {
		h = strings.ToLower(strings.TrimSpace(h))
		h = strings.TrimPrefix(h, "*")
		switch {
		case h == "" || h == ".":
		case strings.HasPrefix(h, "."):
			l.suffixes = append(l.suffixes, h)
		default:
			l.exact[h] = true
		}
	}
	return l
}

func (l hostList) allows(u *url.URL) bool {
	if u == nil || (u.Scheme != "http" && u.Scheme != "https") {
		return false
	}
	host := strings.ToLower(u.Hostname())
	if host == "" {
		return false
	}
	if l.exact[host] {
		return true
	}
	for _, s := range l.suffixes {
		if strings.HasSuffix(host, s) {
			return true
		}
	}
	return false
}
