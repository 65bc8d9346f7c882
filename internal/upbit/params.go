package upbit

import (
	"fmt"
	"net/url"
	"reflect"
	"sort"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

// Params is the set of query or body parameters for one request. Key order is
// irrelevant; a nil value means the parameter is absent and it is left out of
// both the canonical encoding and the request itself.
type Params map[string]any

// FormatValue renders a scalar parameter value the one way it is hashed and
// sent. The boolean result is false for absent values.
func FormatValue(v any) (string, bool) {
	switch val := v.(type) {
	case nil:
		return "", false
	case string:
		return val, true
	case bool:
		return strconv.FormatBool(val), true
	case int:
		return strconv.Itoa(val), true
	case int64:
		return strconv.FormatInt(val, 10), true
	case int32:
		return strconv.FormatInt(int64(val), 10), true
	case uint:
		return strconv.FormatUint(uint64(val), 10), true
	case uint64:
		return strconv.FormatUint(val, 10), true
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64), true
	case float32:
		return strconv.FormatFloat(float64(val), 'f', -1, 32), true
	case decimal.Decimal:
		return val.String(), true
	case *string:
		if val == nil {
			return "", false
		}
		return *val, true
	case fmt.Stringer:
		if rv := reflect.ValueOf(val); rv.Kind() == reflect.Pointer && rv.IsNil() {
			return "", false
		}
		return val.String(), true
	}

	rv := reflect.ValueOf(v)
	if rv.Kind() == reflect.Pointer {
		if rv.IsNil() {
			return "", false
		}
		return FormatValue(rv.Elem().Interface())
	}
	return fmt.Sprint(v), true
}

// Keys returns the present keys in lexicographic order.
func (p Params) Keys() []string {
	keys := make([]string, 0, len(p))
	for k, v := range p {
		if _, ok := FormatValue(v); ok {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)
	return keys
}

// Empty reports whether no parameter carries a value.
func (p Params) Empty() bool {
	return len(p.Keys()) == 0
}

// Encode is the canonical form of the parameter set: keys sorted, key=value
// pairs form-url-encoded and joined with '&'. The same string is hashed by
// Sign and used verbatim as the request query string.
func (p Params) Encode() string {
	var b strings.Builder
	for i, k := range p.Keys() {
		v, _ := FormatValue(p[k])
		if i > 0 {
			b.WriteByte('&')
		}
		b.WriteString(url.QueryEscape(k))
		b.WriteByte('=')
		b.WriteString(url.QueryEscape(v))
	}
	return b.String()
}

// Compact returns a copy holding only present values, suitable as a JSON body.
func (p Params) Compact() Params {
	out := make(Params, len(p))
	for _, k := range p.Keys() {
		v := p[k]
		if d, ok := v.(decimal.Decimal); ok {
			v = d.String()
		}
		out[k] = v
	}
	return out
}
