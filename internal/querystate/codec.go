// Package querystate maps a list ViewState to and from its URL query string.
//
// Decoding is lenient: every parameter is validated on its own and an invalid
// value only resets that field to its default. Encoding omits parameters that
// equal their defaults so the default view lives at the bare path.
package querystate

import (
	"errors"
	"net/url"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/google/go-querystring/query"

	"github.com/yt-dashboard/internal/models"
)

// Query parameter names
const (
	ParamPage   = "page"
	ParamSearch = "search"
	ParamSort   = "sort"
	ParamOrder  = "order"
)

var validate = validator.New()

// params is the decoded form, checked field by field
type params struct {
	Page   int    `validate:"gte=1"`
	Search string
	Sort   string `validate:"oneof=id title published_at"`
	Order  string `validate:"oneof=asc desc"`
}

// encoded is the written form; zero values are left out of the query
type encoded struct {
	Page   int    `url:"page,omitempty"`
	Search string `url:"search,omitempty"`
	Sort   string `url:"sort,omitempty"`
	Order  string `url:"order,omitempty"`
}

// Decode parses a query string into a ViewState. A leading '?' is allowed.
// Unknown parameters are ignored and invalid ones fall back to defaults.
func Decode(rawQuery string) models.ViewState {
	// ParseQuery keeps every pair it managed to parse alongside the first error.
	values, _ := url.ParseQuery(strings.TrimPrefix(rawQuery, "?"))

	p := params{
		Search: values.Get(ParamSearch),
		Sort:   values.Get(ParamSort),
		Order:  values.Get(ParamOrder),
	}
	if raw := values.Get(ParamPage); raw != "" {
		if n, convErr := strconv.Atoi(strings.TrimSpace(raw)); convErr == nil {
			p.Page = n
		}
	}

	if err := validate.Struct(p); err != nil {
		var fieldErrs validator.ValidationErrors
		if errors.As(err, &fieldErrs) {
			for _, fe := range fieldErrs {
				p.reset(fe.StructField())
			}
		} else {
			return models.DefaultViewState()
		}
	}

	return models.ViewState{
		Page:       p.Page,
		SearchTerm: p.Search,
		SortKey:    models.SortKey(p.Sort),
		SortOrder:  models.SortOrder(p.Order),
	}
}

func (p *params) reset(field string) {
	switch field {
	case "Page":
		p.Page = models.DefaultPage
	case "Sort":
		p.Sort = string(models.DefaultSortKey)
	case "Order":
		p.Order = string(models.DefaultSortOrder)
	}
}

// Encode writes the minimal query string for v, without a leading '?'.
// The default view encodes to the empty string.
func Encode(v models.ViewState) string {
	e := encoded{Search: v.SearchTerm}
	if v.Page != models.DefaultPage && v.Page > 0 {
		e.Page = v.Page
	}
	if v.SortKey != models.DefaultSortKey && v.SortKey.Valid() {
		e.Sort = string(v.SortKey)
	}
	if v.SortOrder != models.DefaultSortOrder && v.SortOrder.Valid() {
		e.Order = string(v.SortOrder)
	}

	values, err := query.Values(e)
	if err != nil {
		return ""
	}
	return values.Encode()
}
