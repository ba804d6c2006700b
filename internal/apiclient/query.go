package apiclient

import (
	"fmt"
	"net/url"
	"strconv"
)

// Query is a flat list-endpoint parameter mapping. Values are strings,
// booleans, integers or floats; nested values are not supported and are
// formatted with fmt.
type Query map[string]any

// Encode renders q as key=value&... with standard URL escaping. Keys are
// sorted so the output is deterministic.
func (q Query) Encode() string {
	if len(q) == 0 {
		return ""
	}

	values := url.Values{}
	for key, value := range q {
		values.Set(key, formatValue(value))
	}

	return values.Encode()
}

// AppendTo appends the encoded query to path. An empty query leaves the
// path untouched.
func (q Query) AppendTo(path string) string {
	encoded := q.Encode()
	if encoded == "" {
		return path
	}
	return path + "?" + encoded
}

// QueryFromValues converts inbound URL values into a Query, keeping the
// first value of each key.
func QueryFromValues(values url.Values) Query {
	q := Query{}
	for key, vals := range values {
		if len(vals) == 0 {
			continue
		}
		q[key] = vals[0]
	}
	return q
}

func formatValue(value any) string {
	switch v := value.(type) {
	case nil:
		return ""
	case string:
		return v
	case bool:
		return strconv.FormatBool(v)
	case int:
		return strconv.Itoa(v)
	case int32:
		return strconv.FormatInt(int64(v), 10)
	case int64:
		return strconv.FormatInt(v, 10)
	case uint:
		return strconv.FormatUint(uint64(v), 10)
	case uint64:
		return strconv.FormatUint(v, 10)
	case float32:
		return strconv.FormatFloat(float64(v), 'f', -1, 32)
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case fmt.Stringer:
		return v.String()
	default:
		return fmt.Sprint(v)
	}
}
