// internal/app/system/paging/paging.go
package paging

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/dalemusser/himatika/internal/app/system/search"
	"github.com/dalemusser/waffle/pantry/query"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// DefaultPerPage is the page size used when perPage is absent.
const DefaultPerPage = 20

// MaxPerPage caps perPage so a single request cannot pull a whole collection.
const MaxPerPage = 100

// MaxPage caps page so (page-1)*perPage always fits in an int64 skip.
const MaxPage = 1 << 20

// Spec whitelists what a list endpoint accepts. Keys of SortFields and
// FilterFields are the public parameter names; values are bson paths.
type Spec struct {
	SortFields    map[string]string
	DefaultSort   string // public name
	DefaultOrder  int    // 1 or -1
	SearchFields  []string
	NumericSearch string // bson path matched exactly when search is an integer
	FilterFields  map[string]string
}

// Params holds the parsed page/perPage/sort/order/search/filter parameters.
type Params struct {
	Page    int
	PerPage int
	Sort    string // bson path
	Order   int
	Search  string
	Filters map[string]interface{} // bson path -> value
}

// Parse reads list parameters from r, dropping anything spec does not allow.
func Parse(r *http.Request, spec Spec) Params {
	p := Params{
		Page:    positiveInt(query.Get(r, "page"), 1),
		PerPage: positiveInt(query.Get(r, "perPage"), DefaultPerPage),
		Order:   spec.DefaultOrder,
		Search:  strings.TrimSpace(query.Get(r, "search")),
		Filters: map[string]interface{}{},
	}
	if p.PerPage > MaxPerPage {
		p.PerPage = MaxPerPage
	}
	if p.Page > MaxPage {
		p.Page = MaxPage
	}
	if p.Order == 0 {
		p.Order = 1
	}

	sortName := query.Get(r, "sort")
	if _, ok := spec.SortFields[sortName]; !ok {
		sortName = spec.DefaultSort
	}
	p.Sort = spec.SortFields[sortName]

	switch strings.ToLower(query.Get(r, "order")) {
	case "asc":
		p.Order = 1
	case "desc":
		p.Order = -1
	}

	// filter=status:active,semester:3
	for _, pair := range strings.Split(query.Get(r, "filter"), ",") {
		k, v, ok := strings.Cut(pair, ":")
		if !ok {
			continue
		}
		field, allowed := spec.FilterFields[strings.TrimSpace(k)]
		v = strings.TrimSpace(v)
		if !allowed || v == "" {
			continue
		}
		p.Filters[field] = search.Value(v)
	}
	return p
}

// Apply merges the search and filter clauses into base and returns the
// combined Mongo filter. base is not modified.
func (p Params) Apply(base bson.M, spec Spec) bson.M {
	and := []bson.M{}
	if len(base) > 0 {
		and = append(and, base)
	}
	if len(p.Filters) > 0 {
		f := bson.M{}
		for k, v := range p.Filters {
			f[k] = v
		}
		and = append(and, f)
	}
	if s := search.WithNumeric(search.Filter(p.Search, spec.SearchFields...), p.Search, spec.NumericSearch); s != nil {
		and = append(and, s)
	}
	switch len(and) {
	case 0:
		return bson.M{}
	case 1:
		return and[0]
	}
	return bson.M{"$and": and}
}

// Skip returns the number of documents before the current page. Params
// built by hand are clamped the same way Parse clamps them.
func (p Params) Skip() int64 {
	page, perPage := int64(p.Page), int64(p.PerPage)
	if page < 1 || perPage < 1 {
		return 0
	}
	if page > MaxPage {
		page = MaxPage
	}
	if perPage > MaxPerPage {
		perPage = MaxPerPage
	}
	return (page - 1) * perPage
}

// FindOptions returns sort, skip and limit for the current page. _id breaks
// ties so pages are stable.
func (p Params) FindOptions() *options.FindOptions {
	sort := bson.D{}
	if p.Sort != "" && p.Sort != "_id" {
		sort = append(sort, bson.E{Key: p.Sort, Value: p.Order})
	}
	sort = append(sort, bson.E{Key: "_id", Value: p.Order})
	return options.Find().
		SetSort(sort).
		SetSkip(p.Skip()).
		SetLimit(int64(p.PerPage))
}

// Meta describes the page returned to the client.
type Meta struct {
	Page       int   `json:"page"`
	PerPage    int   `json:"perPage"`
	Total      int64 `json:"total"`
	TotalPages int   `json:"totalPages"`
}

// NewMeta computes page metadata for total matching documents.
func NewMeta(p Params, total int64) Meta {
	pages := 0
	if p.PerPage > 0 {
		pages = int((total + int64(p.PerPage) - 1) / int64(p.PerPage))
	}
	return Meta{Page: p.Page, PerPage: p.PerPage, Total: total, TotalPages: pages}
}

func positiveInt(s string, def int) int {
	if s == "" {
		return def
	}
	n, err := strconv.Atoi(s)
	if err != nil || n < 1 {
		return def
	}
	return n
}
