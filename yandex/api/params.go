package api

import (
	"net/url"
	"strconv"
	"strings"

	"github.com/samber/lo"
)

// NormalizeQuery converts params to their wire form. Scalars are stringified,
// booleans are lower-cased, and slices are joined into a single comma
// separated value, which is how the API accepts batched ids (track-ids=1,2,3).
func NormalizeQuery(params Params) (url.Values, error) {
	out := make(url.Values, len(params))
	for k, v := range params {
		s, err := paramValue(k, v)
		if nil != err {
			return nil, err
		}
		out.Set(k, s)
	}
	return out, nil
}

func paramValue(key string, v any) (string, error) {
	switch v := v.(type) {
	case string:
		return v, nil
	case ID:
		return string(v), nil
	case bool:
		return strings.ToLower(strconv.FormatBool(v)), nil
	case []string:
		return strings.Join(v, ","), nil
	case []ID:
		return strings.Join(lo.Map(v, func(id ID, _ int) string { return string(id) }), ","), nil
	case []int:
		return strings.Join(lo.Map(v, func(n int, _ int) string { return strconv.Itoa(n) }), ","), nil
	case []int64:
		return strings.Join(lo.Map(v, func(n int64, _ int) string { return strconv.FormatInt(n, 10) }), ","), nil
	default:
		if s, ok := intText(v); ok {
			return s, nil
		}
		return "", &ParamError{Key: key, Value: v}
	}
}
