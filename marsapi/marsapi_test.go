package marsapi

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/openproduce/mmn"
)

const testKey = "test-api-key"

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	c, err := New(Config{APIKey: testKey, BaseURL: srv.URL, RetryMax: -1})
	require.NoError(t, err)
	return c
}

const sampleReport = `[
  {"slug_id": "1058", "report_title": "Atlanta Vegetables Terminal Market"},
  {"results": [
    {"report_date": "01/02/2020", "slug_id": "1058", "commodity": "Tomatoes",
     "variety": "Roma", "package": "25 lb cartons", "origin": "MEXICO",
     "low_price": 10.5, "high_price": 12, "organic": "N", "unit_sales": "per carton"},
    {"report_date": "01/03/2020", "slug_id": "1058", "commodity": "Tomatoes",
     "variety": "Grape", "origin": "FLORIDA", "low_price": 16, "high_price": 18}
  ]}
]`

func TestNewRequiresAPIKey(t *testing.T) {
	var cfgErr *mmn.ConfigError
	_, err := New(Config{APIKey: "  "})
	require.ErrorAs(t, err, &cfgErr)
}

func TestPricesRequestShapeAndParsing(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		user, pass, ok := r.BasicAuth()
		assert.True(t, ok, "request must carry basic auth")
		assert.Equal(t, testKey, user, "key goes in the username field")
		assert.Empty(t, pass)

		assert.Equal(t, "/reports/1058", r.URL.Path)
		assert.Equal(t, "commodity=Tomatoes;report_begin_date=01/01/2020:12/31/2021", r.URL.Query().Get("q"))
		assert.Equal(t, "true", r.URL.Query().Get("allSections"))

		fmt.Fprint(w, sampleReport)
	})

	rs, err := c.Prices(context.Background(), mmn.Query{
		Commodity: "Tomatoes", SlugID: "1058", StartYear: 2020, EndYear: 2021,
	})
	require.NoError(t, err)
	require.Len(t, rs, 2)

	first := rs[0]
	assert.Equal(t, "01/02/2020", first.ReportDate)
	assert.Equal(t, "Tomatoes", first.Commodity)
	assert.Equal(t, "Roma", first.Variety)
	assert.Equal(t, "25 lb cartons", first.Package)
	assert.Equal(t, "MEXICO", first.Origin)
	assert.Equal(t, 10.5, first.LowPrice)
	assert.Equal(t, float64(12), first.HighPrice)
}

func TestPricesOmitsEmptyCommodityClause(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "report_begin_date=01/01/2020:12/31/2020", r.URL.Query().Get("q"))
		fmt.Fprint(w, sampleReport)
	})

	_, err := c.Prices(context.Background(), mmn.Query{SlugID: "1058", StartYear: 2020, EndYear: 2020})
	require.NoError(t, err)
}

func TestPricesMalformedResponse(t *testing.T) {
	cases := map[string]string{
		"not json":          "<html>gateway</html>",
		"object not array":  `{"results": []}`,
		"missing results":   `[{"meta": 1}, {"rows": []}]`,
		"results not array": `[{}, {"results": {"oops": true}}]`,
	}
	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			c := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
				fmt.Fprint(w, body)
			})
			_, err := c.Prices(context.Background(), mmn.Query{SlugID: "1058", StartYear: 2020, EndYear: 2020})

			var reqErr *mmn.RequestError
			require.ErrorAs(t, err, &reqErr)
			assert.Equal(t, mmn.KindMalformed, reqErr.Kind)
		})
	}
}

func TestErrorClassificationByStatus(t *testing.T) {
	cases := []struct {
		status int
		kind   mmn.RequestKind
	}{
		{http.StatusUnauthorized, mmn.KindAuth},
		{http.StatusForbidden, mmn.KindAuth},
		{http.StatusTooManyRequests, mmn.KindQuota},
		{http.StatusInternalServerError, mmn.KindTransient},
		{http.StatusBadGateway, mmn.KindTransient},
		{http.StatusNotFound, mmn.KindBadRequest},
	}
	for _, tc := range cases {
		t.Run(fmt.Sprintf("%d", tc.status), func(t *testing.T) {
			c := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
				http.Error(w, "no dice", tc.status)
			})
			_, err := c.Prices(context.Background(), mmn.Query{SlugID: "1058", StartYear: 2020, EndYear: 2020})

			var reqErr *mmn.RequestError
			require.ErrorAs(t, err, &reqErr)
			assert.Equal(t, tc.kind, reqErr.Kind)
			assert.Equal(t, tc.status, reqErr.Status)
			assert.Contains(t, reqErr.Error(), "no dice")
		})
	}
}

func TestQuotaResponseIsNotRetried(t *testing.T) {
	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls++
		http.Error(w, "over quota", http.StatusTooManyRequests)
	}))
	defer srv.Close()

	// retries enabled; the 429 must still short-circuit
	c, err := New(Config{APIKey: testKey, BaseURL: srv.URL, RetryMax: 3})
	require.NoError(t, err)

	_, err = c.Prices(context.Background(), mmn.Query{SlugID: "1058", StartYear: 2020, EndYear: 2020})
	assert.True(t, mmn.IsQuota(err), "got %v", err)
	assert.Equal(t, 1, calls)
}

func TestTransportFailureIsTransient(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	srv.Close() // refuse all connections

	c, err := New(Config{APIKey: testKey, BaseURL: srv.URL, RetryMax: -1})
	require.NoError(t, err)

	_, err = c.Prices(context.Background(), mmn.Query{SlugID: "1058", StartYear: 2020, EndYear: 2020})
	assert.True(t, mmn.IsTransient(err), "got %v", err)
}

const sampleListing = `[
  {"slug_id": "1058", "market_types": ["Terminal"],
   "markets": ["Atlanta Terminal Market"],
   "report_title": "Atlanta Vegetables Terminal Market"},
  {"slug_id": "1477", "market_types": ["Terminal"],
   "markets": ["Chicago Terminal Market"],
   "report_title": "Chicago Fruit Terminal Market"},
  {"slug_id": "2001", "market_types": ["Auction"],
   "markets": ["Oklahoma City Stockyards"],
   "report_title": "Oklahoma National Stockyards Feeder Cattle"},
  {"slug_id": "1332", "market_types": ["Terminal"],
   "markets": ["Los Angeles Terminal Market"],
   "report_title": "Los Angeles Asian Vegetable Terminal Market"}
]`

func TestReportsFiltersAndNamesTerminalMarkets(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/reports", r.URL.Path)
		fmt.Fprint(w, sampleListing)
	})

	ms, err := c.Reports(context.Background())
	require.NoError(t, err)
	require.Len(t, ms, 3, "auction reports must be dropped")

	assert.Equal(t, mmn.Market{SlugID: "1058", Name: "Atlanta vegetables", ReportTitle: "Atlanta Vegetables Terminal Market"}, ms[0])
	assert.Equal(t, "Chicago fruits", ms[1].Name)
	// "Asian Vegetable" must not collapse into plain vegetables
	assert.Equal(t, "Los Angeles asian vegetables", ms[2].Name)
}

func TestMarketNameDerivation(t *testing.T) {
	cases := []struct {
		city, title, want string
	}{
		{"Atlanta", "Atlanta Fruit and Nut Terminal Market", "Atlanta fruits"},
		{"Dallas", "Dallas Onions and Potatoes Terminal Market", "Dallas onions and potatoes"},
		{"Miami", "Miami Tropical F&V Terminal Market", "Miami tropical f&v"},
		{"San Francisco", "San Francisco Herbs Terminal Market", "San Francisco herbs"},
		{"Boston", "Boston Vegetables Terminal Market", "Boston vegetables"},
		{"Somewhere", "Unrecognized Commodity Report", "Somewhere"},
		{"", "Chicago Vegetables Terminal Market", "vegetables"},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, marketName(tc.city, tc.title), "title %q", tc.title)
	}
}

func TestContextCancellation(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprint(w, sampleReport)
	})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := c.Prices(ctx, mmn.Query{SlugID: "1058", StartYear: 2020, EndYear: 2020})
	require.Error(t, err)
	var reqErr *mmn.RequestError
	require.ErrorAs(t, err, &reqErr)
	assert.True(t, errors.Is(reqErr.Err, context.Canceled) || reqErr.Kind == mmn.KindTransient)
}
