package observable

import (
	"strings"

	"gofit/internal/errors"
)

// Options holds string-valued option overrides parsed from an observable
// name's ",key=value" suffixes.
type Options map[string]string

// Get returns the value for key, or def when the key is absent
func (o Options) Get(key, def string) string {
	if v, ok := o[key]; ok {
		return v
	}
	return def
}

// Has reports whether key is present
func (o Options) Has(key string) bool {
	_, ok := o[key]
	return ok
}

// ParseName splits a raw observable name of the form
//
//	Base::Name@Tag[,key=value]*
//
// into the bare name and its option overrides. Suffixes are stripped
// right-to-left; on duplicate keys the rightmost override wins. A clause
// without '=' or with an empty key is a name-format error.
func ParseName(raw string) (string, Options, error) {
	name := raw
	opts := make(Options)

	for {
		idx := strings.LastIndex(name, ",")
		if idx < 0 {
			break
		}

		clause := name[idx+1:]
		eq := strings.Index(clause, "=")
		if eq < 0 {
			return "", nil, errors.NameFormat("option clause \"" + clause + "\" in observable name \"" + raw + "\" lacks '='")
		}
		key, value := clause[:eq], clause[eq+1:]
		if key == "" {
			return "", nil, errors.NameFormat("option clause \"" + clause + "\" in observable name \"" + raw + "\" has an empty key")
		}

		// rightmost override wins; earlier-stripped clauses are outermost
		if _, ok := opts[key]; !ok {
			opts[key] = value
		}

		name = name[:idx]
	}

	if name == "" {
		return "", nil, errors.NameFormat("observable name \"" + raw + "\" is empty after stripping options")
	}

	return name, opts, nil
}
