// Package marsapi talks to the USDA MARS API
// (https://marsapi.ams.usda.gov). Authentication is HTTP Basic with the
// API key in the username field and an empty password - that is how the
// upstream service works, the key is not a password.
//
// The package implements mmn.Source. Every failure comes back as a
// classified *mmn.RequestError so callers can tell a rejected credential
// from quota exhaustion from a transient outage.
package marsapi

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/hashicorp/go-cleanhttp"
	"github.com/hashicorp/go-retryablehttp"
	"github.com/tidwall/gjson"

	"github.com/openproduce/mmn"
)

// DefaultBaseURL is the production MARS endpoint.
const DefaultBaseURL = "https://marsapi.ams.usda.gov/services/v1.2"

const (
	defaultTimeout  = 30 * time.Second
	defaultRetryMax = 2
	errBodySnippet  = 200 // bytes of response body echoed into errors
)

// Config tunes the client. Only APIKey is required.
type Config struct {
	APIKey  string
	BaseURL string        // "" => DefaultBaseURL
	Timeout time.Duration // 0 => 30s
	// RetryMax caps transient retries in the transport.
	// 0 => 2; negative disables retrying.
	RetryMax int
	Logger   mmn.Logger
}

type Client struct {
	http *retryablehttp.Client
	base string
	key  string
	log  mmn.Logger
}

var _ mmn.Source = (*Client)(nil)

// New validates the credential and builds the HTTP client. A missing key
// is a fatal *mmn.ConfigError, reported before any fetch is attempted.
func New(cfg Config) (*Client, error) {
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, &mmn.ConfigError{Reason: "missing MARS API key (set USDA_MARS_API_KEY)"}
	}

	rc := retryablehttp.NewClient()
	rc.HTTPClient = cleanhttp.DefaultPooledClient()
	rc.HTTPClient.Timeout = cfg.Timeout
	if rc.HTTPClient.Timeout == 0 {
		rc.HTTPClient.Timeout = defaultTimeout
	}
	switch {
	case cfg.RetryMax < 0:
		rc.RetryMax = 0
	case cfg.RetryMax == 0:
		rc.RetryMax = defaultRetryMax
	default:
		rc.RetryMax = cfg.RetryMax
	}
	rc.Logger = nil // the mmn.Logger below covers what we want logged

	// A 429 is quota exhaustion, not a blip: retrying burns more of the
	// daily budget, so it must reach the classifier immediately. The
	// passthrough handler hands exhausted retries (e.g. a persistent 5xx)
	// back as a response so they get classified by status too.
	rc.CheckRetry = func(ctx context.Context, resp *http.Response, err error) (bool, error) {
		if resp != nil && resp.StatusCode == http.StatusTooManyRequests {
			return false, nil
		}
		return retryablehttp.DefaultRetryPolicy(ctx, resp, err)
	}
	rc.ErrorHandler = retryablehttp.PassthroughErrorHandler

	log := cfg.Logger
	if log == nil {
		log = mmn.NopLogger{}
	}
	base := cfg.BaseURL
	if base == "" {
		base = DefaultBaseURL
	}

	return &Client{
		http: rc,
		base: strings.TrimRight(base, "/"),
		key:  cfg.APIKey,
		log:  log,
	}, nil
}

// Prices fetches all report rows for the query's market and year range.
// The commodity filter is omitted when q.Commodity is empty, returning the
// full market (the unfiltered payload is only a few MB per year).
func (c *Client) Prices(ctx context.Context, q mmn.Query) (mmn.ResultSet, error) {
	var clauses []string
	if q.Commodity != "" {
		clauses = append(clauses, "commodity="+q.Commodity)
	}
	clauses = append(clauses,
		fmt.Sprintf("report_begin_date=01/01/%d:12/31/%d", q.StartYear, q.EndYear))

	params := url.Values{}
	params.Set("q", strings.Join(clauses, ";"))
	params.Set("allSections", "true")
	u := c.base + "/reports/" + url.PathEscape(q.SlugID) + "?" + params.Encode()

	body, err := c.get(ctx, u)
	if err != nil {
		return nil, err
	}

	// the report endpoint answers with a two-element array:
	// [0] report metadata, [1] {"results": [...rows...]}
	rows := gjson.GetBytes(body, "1.results")
	if !rows.Exists() || !rows.IsArray() {
		return nil, &mmn.RequestError{
			Kind: mmn.KindMalformed,
			URL:  u,
			Err:  fmt.Errorf("no results array in report response"),
		}
	}

	arr := rows.Array()
	rs := make(mmn.ResultSet, 0, len(arr))
	for _, r := range arr {
		rs = append(rs, mmn.PriceRecord{
			ReportDate: r.Get("report_date").String(),
			SlugID:     r.Get("slug_id").String(),
			Commodity:  r.Get("commodity").String(),
			Variety:    r.Get("variety").String(),
			Package:    r.Get("package").String(),
			ItemSize:   r.Get("item_size").String(),
			Properties: r.Get("properties").String(),
			Grade:      r.Get("grade").String(),
			Organic:    r.Get("organic").String(),
			Origin:     r.Get("origin").String(),
			LowPrice:   r.Get("low_price").Float(),
			HighPrice:  r.Get("high_price").Float(),
			UnitSales:  r.Get("unit_sales").String(),
		})
	}
	c.log.Debug("fetched price report", mmn.Fields{"slug": q.SlugID, "rows": len(rs)})
	return rs, nil
}

// Reports fetches the report listing and reduces it to Terminal produce
// markets with proprietary names (cattle auctions and the like are not
// of interest here).
func (c *Client) Reports(ctx context.Context) ([]mmn.Market, error) {
	u := c.base + "/reports"
	body, err := c.get(ctx, u)
	if err != nil {
		return nil, err
	}

	listing := gjson.ParseBytes(body)
	if !listing.IsArray() {
		return nil, &mmn.RequestError{
			Kind: mmn.KindMalformed,
			URL:  u,
			Err:  fmt.Errorf("report listing is not an array"),
		}
	}

	var out []mmn.Market
	for _, r := range listing.Array() {
		if r.Get("market_types.0").String() != "Terminal" {
			continue
		}
		title := r.Get("report_title").String()
		city := strings.TrimSpace(
			strings.ReplaceAll(r.Get("markets.0").String(), "Terminal Market", ""))
		out = append(out, mmn.Market{
			SlugID:      r.Get("slug_id").String(),
			Name:        marketName(city, title),
			ReportTitle: title,
		})
	}
	c.log.Debug("fetched market listing", mmn.Fields{"terminal_markets": len(out)})
	return out, nil
}

// marketName derives the proprietary market name used throughout this
// module from the MARS report title, e.g. "Atlanta fruits".
func marketName(city, title string) string {
	var category string
	switch {
	case strings.Contains(title, "Fruit"):
		category = "fruits"
	case strings.Contains(title, "Nuts"):
		category = "nuts"
	case strings.Contains(title, "Onions and Potatoes"):
		category = "onions and potatoes"
	case strings.Contains(title, "Asian Vegetable"):
		category = "asian vegetables"
	case strings.Contains(title, "Herbs"):
		category = "herbs"
	case strings.Contains(title, "Tropical F&V"):
		category = "tropical f&v"
	case strings.Contains(title, "Vegetable"):
		category = "vegetables"
	}
	if category == "" {
		return city
	}
	if city == "" {
		return category
	}
	return city + " " + category
}

// get runs one authenticated GET and classifies every failure mode.
func (c *Client) get(ctx context.Context, u string) ([]byte, error) {
	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, &mmn.RequestError{Kind: mmn.KindBadRequest, URL: u, Err: err}
	}
	req.SetBasicAuth(c.key, "")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, &mmn.RequestError{Kind: mmn.KindTransient, URL: u, Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &mmn.RequestError{Kind: mmn.KindTransient, Status: resp.StatusCode, URL: u, Err: err}
	}

	switch {
	case resp.StatusCode >= 200 && resp.StatusCode < 300:
		return body, nil
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return nil, c.statusErr(mmn.KindAuth, resp.StatusCode, u, body)
	case resp.StatusCode == http.StatusTooManyRequests:
		return nil, c.statusErr(mmn.KindQuota, resp.StatusCode, u, body)
	case resp.StatusCode >= 500:
		return nil, c.statusErr(mmn.KindTransient, resp.StatusCode, u, body)
	default:
		return nil, c.statusErr(mmn.KindBadRequest, resp.StatusCode, u, body)
	}
}

func (c *Client) statusErr(kind mmn.RequestKind, status int, u string, body []byte) error {
	snippet := strings.TrimSpace(string(body))
	if len(snippet) > errBodySnippet {
		snippet = snippet[:errBodySnippet] + "..."
	}
	c.log.Warn("mars request rejected", mmn.Fields{"status": status, "kind": string(kind), "url": u})
	return &mmn.RequestError{
		Kind:   kind,
		Status: status,
		URL:    u,
		Err:    fmt.Errorf("server said: %s", snippet),
	}
}
