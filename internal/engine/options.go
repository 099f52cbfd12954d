package engine

import (
	"fmt"
	"net/url"
	"strconv"

	cerrdefs "github.com/containerd/errdefs"
	"github.com/spf13/cast"
)

// MaxLimit is the largest page a query may return.
const MaxLimit = 200

// Options are the raw query parameters of one request.
type Options struct {
	Where     string `yaml:"where,omitempty" json:"where,omitempty"`
	Search    string `yaml:"search,omitempty" json:"search,omitempty"`
	OrderBy   string `yaml:"orderby,omitempty" json:"orderby,omitempty"`
	OrderDesc bool   `yaml:"orderdesc,omitempty" json:"orderdesc,omitempty"`
	Offset    int    `yaml:"offset,omitempty" json:"offset,omitempty"`
	Limit     int    `yaml:"limit,omitempty" json:"limit,omitempty"`
}

// DefaultOptions returns options selecting the first MaxLimit records.
func DefaultOptions() Options {
	return Options{Limit: MaxLimit}
}

// Normalize clamps the window: a negative offset becomes 0 and a limit
// outside [0, MaxLimit] becomes MaxLimit.
func (o Options) Normalize() Options {
	if o.Offset < 0 {
		o.Offset = 0
	}
	if o.Limit < 0 || o.Limit > MaxLimit {
		o.Limit = MaxLimit
	}
	return o
}

// OptionsFromValues decodes query-string parameters. Absent parameters keep
// their DefaultOptions value. Malformed numbers or booleans are errors.
func OptionsFromValues(v url.Values) (Options, error) {
	opts := DefaultOptions()
	opts.Where = v.Get("where")
	opts.Search = v.Get("search")
	opts.OrderBy = v.Get("orderby")

	if s := v.Get("orderdesc"); s != "" {
		b, err := cast.ToBoolE(s)
		if err != nil {
			return Options{}, invalidOption("orderdesc", s, err)
		}
		opts.OrderDesc = b
	}
	if s := v.Get("offset"); s != "" {
		n, err := parseWindow(s)
		if err != nil {
			return Options{}, invalidOption("offset", s, err)
		}
		opts.Offset = n
	}
	if s := v.Get("limit"); s != "" {
		n, err := parseWindow(s)
		if err != nil {
			return Options{}, invalidOption("limit", s, err)
		}
		opts.Limit = n
	}
	return opts.Normalize(), nil
}

// parseWindow reads a decimal 32-bit integer. Leading zeros do not mean
// octal and 0x prefixes are rejected.
func parseWindow(s string) (int, error) {
	n, err := strconv.ParseInt(s, 10, 32)
	if err != nil {
		return 0, err
	}
	return int(n), nil
}

func invalidOption(name, raw string, err error) error {
	return fmt.Errorf("%w: %s=%q: %v", cerrdefs.ErrInvalidArgument, name, raw, err)
}
