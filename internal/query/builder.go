// Package query turns list request parameters into a Descriptor.
//
// Filters use the bracket syntax produced by nested query strings:
//
//	?difficulty=easy&price[gte]=100&duration[lt]=10&sort=-price,ratingsAverage&fields=name,price&page=2&limit=10
//
// Only gte, gt, lte and lt are accepted inside brackets; any other operator
// fails the request instead of reaching the store.
package query

import (
	"fmt"
	"math"
	"net/url"
	"sort"
	"strconv"
	"strings"

	appErrors "tour-booking/pkg/errors"
)

const (
	DefaultPage     = 1
	DefaultLimit    = 100
	DefaultMaxLimit = 1000
	DefaultSort     = "-createdAt"
)

var reservedKeys = map[string]struct{}{
	"page":   {},
	"sort":   {},
	"limit":  {},
	"fields": {},
}

var operators = map[string]Operator{
	"gte": OpGte,
	"gt":  OpGt,
	"lte": OpLte,
	"lt":  OpLt,
}

// Builder accumulates a Descriptor step by step. Each step returns the
// builder so calls chain; the first failing step wins.
type Builder struct {
	params   url.Values
	maxLimit int
	desc     Descriptor
	err      error
}

type Option func(*Builder)

// WithMaxLimit caps the page size. Zero or negative disables the cap.
func WithMaxLimit(n int) Option {
	return func(b *Builder) { b.maxLimit = n }
}

func New(params url.Values, opts ...Option) *Builder {
	if params == nil {
		params = url.Values{}
	}
	b := &Builder{
		params: params,
		desc: Descriptor{
			Page:  DefaultPage,
			Limit: DefaultLimit,
		},
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Parse runs every step in order.
func Parse(params url.Values, opts ...Option) (*Descriptor, error) {
	return New(params, opts...).Filter().Sort().LimitFields().Paginate().Descriptor()
}

func (b *Builder) Filter() *Builder {
	if b.err != nil {
		return b
	}

	keys := make([]string, 0, len(b.params))
	for k := range b.params {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, key := range keys {
		if _, reserved := reservedKeys[key]; reserved {
			continue
		}
		value := b.params.Get(key)

		field, opName, nested, err := splitKey(key)
		if err != nil {
			b.err = err
			return b
		}
		if !nested {
			b.desc.Conditions = append(b.desc.Conditions, Condition{Field: field, Op: OpEq, Value: value})
			continue
		}

		op, ok := operators[opName]
		if !ok {
			b.err = appErrors.Validation(fmt.Sprintf("unsupported filter operator %q on %s", opName, field), nil)
			return b
		}
		b.desc.Conditions = append(b.desc.Conditions, Condition{Field: field, Op: op, Value: value})
	}

	return b
}

// splitKey splits "price[gte]" into ("price", "gte", true).
func splitKey(key string) (field, op string, nested bool, err error) {
	open := strings.IndexByte(key, '[')
	if open < 0 {
		if strings.ContainsRune(key, ']') {
			return "", "", false, appErrors.Validation(fmt.Sprintf("malformed filter key %q", key), nil)
		}
		return key, "", false, nil
	}
	if open == 0 || !strings.HasSuffix(key, "]") || strings.Count(key, "[") != 1 {
		return "", "", false, appErrors.Validation(fmt.Sprintf("malformed filter key %q", key), nil)
	}
	return key[:open], key[open+1 : len(key)-1], true, nil
}

func (b *Builder) Sort() *Builder {
	if b.err != nil {
		return b
	}

	raw := b.params.Get("sort")
	if raw == "" {
		raw = DefaultSort
	}

	b.desc.Sort = b.desc.Sort[:0]
	for _, part := range splitList(raw) {
		desc := strings.HasPrefix(part, "-")
		name := strings.TrimLeft(part, "-+")
		if name == "" {
			continue
		}
		b.desc.Sort = append(b.desc.Sort, SortField{Field: name, Desc: desc})
	}
	return b
}

func (b *Builder) LimitFields() *Builder {
	if b.err != nil {
		return b
	}
	b.desc.Fields = splitList(b.params.Get("fields"))
	return b
}

func (b *Builder) Paginate() *Builder {
	if b.err != nil {
		return b
	}

	page := positiveInt(b.params.Get("page"), DefaultPage)
	limit := positiveInt(b.params.Get("limit"), DefaultLimit)
	if b.maxLimit > 0 && limit > b.maxLimit {
		limit = b.maxLimit
	}

	if page-1 > math.MaxInt/limit {
		b.err = appErrors.Validation(fmt.Sprintf("page out of range: %d", page), nil)
		return b
	}

	b.desc.Page = page
	b.desc.Limit = limit
	b.desc.Skip = (page - 1) * limit
	return b
}

// Descriptor returns the built descriptor, or the first error hit while building.
func (b *Builder) Descriptor() (*Descriptor, error) {
	if b.err != nil {
		return nil, b.err
	}
	d := b.desc
	return &d, nil
}

func splitList(raw string) []string {
	if raw == "" {
		return nil
	}
	var out []string
	for _, p := range strings.Split(raw, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func positiveInt(raw string, def int) int {
	n, err := strconv.Atoi(raw)
	if err != nil || n < 1 {
		return def
	}
	return n
}
