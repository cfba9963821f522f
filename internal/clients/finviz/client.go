// Package finviz fetches the news listing of a ticker's finviz quote page.
package finviz

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/ternarybob/arbor"
	"golang.org/x/time/rate"

	"github.com/bobmcallan/vista/internal/interfaces"
	"github.com/bobmcallan/vista/internal/models"
)

const (
	DefaultBaseURL   = "https://finviz.com"
	DefaultTimeout   = 30 * time.Second
	DefaultRateLimit = 1 // requests per second
	DefaultUserAgent = "vista/1.0"
)

// Client implements interfaces.NewsFetcher
type Client struct {
	baseURL    string
	userAgent  string
	httpClient *http.Client
	logger     arbor.ILogger
	limiter    *rate.Limiter
}

// ClientOption configures the client
type ClientOption func(*Client)

// WithBaseURL sets the base URL
func WithBaseURL(baseURL string) ClientOption {
	return func(c *Client) {
		c.baseURL = baseURL
	}
}

// WithLogger sets the logger
func WithLogger(logger arbor.ILogger) ClientOption {
	return func(c *Client) {
		c.logger = logger
	}
}

// WithRateLimit sets the rate limit
func WithRateLimit(requestsPerSecond int) ClientOption {
	return func(c *Client) {
		c.limiter = rate.NewLimiter(rate.Limit(requestsPerSecond), requestsPerSecond)
	}
}

// WithTimeout sets the HTTP timeout
func WithTimeout(timeout time.Duration) ClientOption {
	return func(c *Client) {
		c.httpClient.Timeout = timeout
	}
}

// WithUserAgent sets the User-Agent header. finviz rejects requests
// without one.
func WithUserAgent(userAgent string) ClientOption {
	return func(c *Client) {
		c.userAgent = userAgent
	}
}

// NewClient creates a new finviz client
func NewClient(opts ...ClientOption) *Client {
	c := &Client{
		baseURL:   DefaultBaseURL,
		userAgent: DefaultUserAgent,
		httpClient: &http.Client{
			Timeout: DefaultTimeout,
		},
		limiter: rate.NewLimiter(rate.Limit(DefaultRateLimit), DefaultRateLimit),
		logger:  arbor.NewNoOpLogger(),
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// APIError represents a failed page fetch
type APIError struct {
	StatusCode int
	Message    string
	Endpoint   string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("finviz error: %s (status: %d, endpoint: %s)", e.Message, e.StatusCode, e.Endpoint)
}

// FetchNews downloads the quote page and returns the rows of its news
// table in page order (newest first).
func (c *Client) FetchNews(ctx context.Context, ticker string) ([]models.ScrapedRow, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limit wait: %w", err)
	}

	params := url.Values{}
	params.Set("t", ticker)
	path := "/quote.ashx"
	reqURL := fmt.Sprintf("%s%s?%s", c.baseURL, path, params.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", c.userAgent)

	c.logger.Debug().Str("url", reqURL).Msg("finviz request")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return nil, &APIError{
			StatusCode: resp.StatusCode,
			Message:    strings.TrimSpace(string(body)),
			Endpoint:   path,
		}
	}

	rows, err := ParseNewsTable(resp.Body)
	if err != nil {
		return nil, err
	}

	c.logger.Debug().Str("ticker", ticker).Int("rows", len(rows)).Msg("finviz news table parsed")

	return rows, nil
}

// ParseNewsTable extracts the rows of the #news-table element. The date
// cell is the row's first td; the headline is the first anchor.
func ParseNewsTable(r io.Reader) ([]models.ScrapedRow, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, fmt.Errorf("failed to parse news page: %w", err)
	}

	table := doc.Find("#news-table")
	if table.Length() == 0 {
		return nil, &APIError{StatusCode: http.StatusOK, Message: "news table not found", Endpoint: "/quote.ashx"}
	}

	rows := []models.ScrapedRow{}
	table.Find("tr").Each(func(i int, tr *goquery.Selection) {
		link := tr.Find("a").First()
		href, _ := link.Attr("href")
		rows = append(rows, models.ScrapedRow{
			DateCell: strings.TrimSpace(tr.Find("td").First().Text()),
			Headline: strings.TrimSpace(link.Text()),
			URL:      href,
		})
	})
	return rows, nil
}

// Ensure Client implements NewsFetcher
var _ interfaces.NewsFetcher = (*Client)(nil)
