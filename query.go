package mmn

import (
	"fmt"
	"strconv"

	"github.com/openproduce/mmn/internal/canon"
)

// Query identifies one price report: a commodity (optional; empty means all
// commodities), a terminal market (SlugID or MarketName, mutually exclusive)
// and a year range. Two queries are equivalent iff every normalized
// parameter matches; equivalence is stable across process runs.
type Query struct {
	Commodity  string
	SlugID     string
	MarketName string // resolved to SlugID before keying; ignored if SlugID is set
	StartYear  int
	EndYear    int // 0 => StartYear
}

// normalized materializes all implicit defaults so the canonical form never
// depends on code-version defaulting. The caller must have resolved
// MarketName to SlugID already.
func (q Query) normalized() (Query, error) {
	if q.SlugID == "" {
		return Query{}, &ConfigError{Reason: "query needs a slug id or a market name"}
	}
	if q.StartYear <= 0 {
		return Query{}, &ConfigError{Reason: "query needs a start year"}
	}
	if q.EndYear == 0 {
		q.EndYear = q.StartYear
	}
	if q.EndYear < q.StartYear {
		return Query{}, &ConfigError{Reason: fmt.Sprintf("end year %d precedes start year %d", q.EndYear, q.StartYear)}
	}
	q.MarketName = ""
	return q, nil
}

// key derives the cache key for a normalized query.
func (q Query) key() string {
	return canon.Key(
		canon.Pair{K: "op", V: "prices"},
		canon.Pair{K: "commodity", V: q.Commodity},
		canon.Pair{K: "slug", V: q.SlugID},
		canon.Pair{K: "start", V: strconv.Itoa(q.StartYear)},
		canon.Pair{K: "end", V: strconv.Itoa(q.EndYear)},
	)
}

// marketsKey is the cache key for the terminal-markets listing. It lives in
// the same keyspace as price reports; the "op" pair keeps them disjoint.
func marketsKey() string {
	return canon.Key(canon.Pair{K: "op", V: "markets"})
}
