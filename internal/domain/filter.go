package domain

import (
	"fmt"
	"math"
	"strings"

	"github.com/Antony-QP/React-Ecommerce-Backend/pkg/pagination"
	"github.com/Antony-QP/React-Ecommerce-Backend/pkg/validator"
)

// FilterKind names the single criterion a search applies.
type FilterKind string

// Filter kinds in dispatch precedence order.
const (
	FilterText     FilterKind = "query"
	FilterPrice    FilterKind = "price"
	FilterCategory FilterKind = "category"
	FilterStars    FilterKind = "stars"
	FilterShipping FilterKind = "shipping"
	FilterColor    FilterKind = "color"
	FilterBrand    FilterKind = "brand"
)

// FilterKinds lists every kind in precedence order.
func FilterKinds() []FilterKind {
	return []FilterKind{
		FilterText, FilterPrice, FilterCategory, FilterStars,
		FilterShipping, FilterColor, FilterBrand,
	}
}

const maxQueryLength = 200

// PriceRange is an inclusive [Min, Max] bound.
type PriceRange struct {
	Min float64 `json:"min"`
	Max float64 `json:"max"`
}

// Contains reports whether price lies inside the range.
func (r PriceRange) Contains(price float64) bool {
	return price >= r.Min && price <= r.Max
}

// Filter is a validated search request. Exactly one criterion is set and
// Kind says which; the other value fields are zero.
type Filter struct {
	Kind       FilterKind
	Query      string
	Price      PriceRange
	CategoryID string
	Stars      int
	Shipping   bool
	Color      string
	Brand      string
	Limit      int
}

// Value returns the criterion selected by Kind.
func (f Filter) Value() any {
	switch f.Kind {
	case FilterText:
		return f.Query
	case FilterPrice:
		return f.Price
	case FilterCategory:
		return f.CategoryID
	case FilterStars:
		return f.Stars
	case FilterShipping:
		return f.Shipping
	case FilterColor:
		return f.Color
	case FilterBrand:
		return f.Brand
	}
	return nil
}

// Key is a stable textual identity of the filter, used for caching.
func (f Filter) Key() string {
	switch v := f.Value().(type) {
	case string:
		return fmt.Sprintf("%s=%q;limit=%d", f.Kind, v, f.Limit)
	case PriceRange:
		return fmt.Sprintf("%s=%g..%g;limit=%d", f.Kind, v.Min, v.Max, f.Limit)
	default:
		return fmt.Sprintf("%s=%v;limit=%d", f.Kind, v, f.Limit)
	}
}

// FilterRequest is the decoded search body. A field counts as present when
// its key carries a non-null value, so price [0,0] and shipping false are
// real criteria.
type FilterRequest struct {
	Query    *string   `json:"query"`
	Price    []float64 `json:"price"`
	Category *string   `json:"category"`
	Stars    *int      `json:"stars"`
	Shipping *bool     `json:"shipping"`
	Color    *string   `json:"color"`
	Brand    *string   `json:"brand"`
	Limit    *int      `json:"limit"`
}

// Present lists the criteria set on the request in precedence order.
func (r FilterRequest) Present() []FilterKind {
	var kinds []FilterKind
	if r.Query != nil {
		kinds = append(kinds, FilterText)
	}
	if r.Price != nil {
		kinds = append(kinds, FilterPrice)
	}
	if r.Category != nil {
		kinds = append(kinds, FilterCategory)
	}
	if r.Stars != nil {
		kinds = append(kinds, FilterStars)
	}
	if r.Shipping != nil {
		kinds = append(kinds, FilterShipping)
	}
	if r.Color != nil {
		kinds = append(kinds, FilterColor)
	}
	if r.Brand != nil {
		kinds = append(kinds, FilterBrand)
	}
	return kinds
}

// Filter validates the request and converts it to a Filter. Failures are
// returned as validator.FieldErrors keyed by request field.
func (r FilterRequest) Filter(policy pagination.Policy) (Filter, error) {
	kinds := r.Present()
	switch len(kinds) {
	case 0:
		return Filter{}, validator.FieldErrors{"filter": "one filter field is required"}
	case 1:
	default:
		errs := validator.FieldErrors{}
		for _, k := range kinds {
			errs[string(k)] = "only one filter may be applied per request"
		}
		return Filter{}, errs
	}

	errs := validator.FieldErrors{}
	f := Filter{Kind: kinds[0]}

	limit, err := policy.Limit(r.Limit)
	if err != nil {
		errs["limit"] = err.Error()
	}
	f.Limit = limit

	switch f.Kind {
	case FilterText:
		q := strings.TrimSpace(*r.Query)
		switch {
		case q == "":
			errs["query"] = "must not be blank"
		case len(q) > maxQueryLength:
			errs["query"] = fmt.Sprintf("must be at most %d characters", maxQueryLength)
		}
		f.Query = q
	case FilterPrice:
		if msg := checkPrice(r.Price); msg != "" {
			errs["price"] = msg
		} else {
			f.Price = PriceRange{Min: r.Price[0], Max: r.Price[1]}
		}
	case FilterCategory:
		if !IsObjectID(*r.Category) {
			errs["category"] = "must be a valid object id"
		}
		f.CategoryID = *r.Category
	case FilterStars:
		if !ValidStar(*r.Stars) {
			errs["stars"] = fmt.Sprintf("must be between %d and %d", MinStars, MaxStars)
		}
		f.Stars = *r.Stars
	case FilterShipping:
		f.Shipping = *r.Shipping
	case FilterColor:
		f.Color = strings.TrimSpace(*r.Color)
		if f.Color == "" {
			errs["color"] = "must not be blank"
		}
	case FilterBrand:
		f.Brand = strings.TrimSpace(*r.Brand)
		if f.Brand == "" {
			errs["brand"] = "must not be blank"
		}
	}

	if len(errs) > 0 {
		return Filter{}, errs
	}
	return f, nil
}

func checkPrice(p []float64) string {
	if len(p) != 2 {
		return "must have exactly 2 elements"
	}
	for _, v := range p {
		if math.IsNaN(v) || math.IsInf(v, 0) || v < 0 {
			return "bounds must be non-negative numbers"
		}
	}
	if p[0] > p[1] {
		return "minimum must not exceed maximum"
	}
	return ""
}
