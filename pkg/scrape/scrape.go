package scrape

import (
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/gocolly/colly/v2"
	"github.com/themanforfree/jwglxt/pkg/config"
)

const defaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/91.0.4472.124 Safari/537.36"

type Options struct {
	BaseURL   string
	UserAgent string
	Timeout   time.Duration
}

// Session is one login to the portal. The collector's cookie jar carries the
// session cookies from Login to the requests that follow it.
type Session struct {
	collector *colly.Collector
	creds     config.Credentials
	baseURL   string
}

func NewSession(creds config.Credentials, opts Options) *Session {
	if opts.BaseURL == "" {
		opts.BaseURL = DefaultBaseURL
	}
	if opts.UserAgent == "" {
		opts.UserAgent = defaultUserAgent
	}

	c := colly.NewCollector()
	c.UserAgent = opts.UserAgent
	c.AllowURLRevisit = true
	// The portal answers login attempts with arbitrary status codes; the body
	// decides what happened.
	c.ParseHTTPErrorResponse = true
	if opts.Timeout > 0 {
		c.SetRequestTimeout(opts.Timeout)
	}

	return &Session{
		collector: c,
		creds:     creds,
		baseURL:   strings.TrimSuffix(opts.BaseURL, "/"),
	}
}

// fetch sends one request and returns the response body. Form bodies are
// sent already encoded.
func (s *Session) fetch(method, path, form string) ([]byte, error) {
	var body []byte
	received := false
	c := s.collector.Clone() // same collector but without old callbacks
	c.OnResponse(func(res *colly.Response) {
		body = res.Body
		received = true
	})

	hdr := http.Header{}
	hdr.Set("User-Agent", c.UserAgent)
	var data io.Reader
	if method == http.MethodPost {
		hdr.Set("Content-Type", "application/x-www-form-urlencoded")
		hdr.Set("Referer", s.baseURL+loginPath)
		data = strings.NewReader(form)
	}

	if err := c.Request(method, s.baseURL+path, data, nil, hdr); err != nil {
		return nil, fmt.Errorf("%w: %s %s: %v", ErrFetch, method, path, err)
	}
	if !received {
		return nil, fmt.Errorf("%w: %s %s: no response", ErrFetch, method, path)
	}
	return body, nil
}
