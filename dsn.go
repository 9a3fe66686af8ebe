package dbrec

import (
	"fmt"
	"strings"
)

// DSNParam is one key/value pair from the parameter section of a DSN.
// Pairs without a value, such as a sqlite file path, keep an empty Value.
type DSNParam struct {
	Key   string
	Value string
}

// DSN is the parsed form of a data source name like
//
//	postgres:username=app;password=secret;host=localhost;dbname=app
//
// Credentials are lifted out of the parameter list, everything else is
// kept in declaration order for the dialector to translate.
type DSN struct {
	Driver   string
	Username string
	Password string
	Params   []DSNParam
}

// ParseDSN parses a `driver:key=value[;key=value...]` data source name.
func ParseDSN(dsn string) (*DSN, error) {
	driver, rest, ok := strings.Cut(dsn, ":")
	if !ok || driver == "" {
		return nil, fmt.Errorf("%w: missing driver prefix in %q", ErrInvalidDSN, dsn)
	}

	out := &DSN{Driver: driver}
	for _, pair := range strings.Split(rest, ";") {
		if pair == "" {
			continue
		}

		key, value, found := strings.Cut(pair, "=")
		if !found {
			out.Params = append(out.Params, DSNParam{Key: pair})
			continue
		}

		switch key {
		case "username", "user":
			if out.Username == "" {
				out.Username = value
				continue
			}
		case "password", "pass":
			if out.Password == "" {
				out.Password = value
				continue
			}
		}

		out.Params = append(out.Params, DSNParam{Key: key, Value: value})
	}

	return out, nil
}

// Get returns the value of the first parameter named key.
func (d *DSN) Get(key string) (string, bool) {
	for _, p := range d.Params {
		if p.Key == key {
			return p.Value, true
		}
	}
	return "", false
}

func (d *DSN) String() string {
	pairs := make([]string, 0, len(d.Params)+2)
	if d.Username != "" {
		pairs = append(pairs, "username="+d.Username)
	}
	if d.Password != "" {
		pairs = append(pairs, "password="+d.Password)
	}
	for _, p := range d.Params {
		if p.Value == "" {
			pairs = append(pairs, p.Key)
		} else {
			pairs = append(pairs, p.Key+"="+p.Value)
		}
	}
	return d.Driver + ":" + strings.Join(pairs, ";")
}
