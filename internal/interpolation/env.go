// Package interpolation expands `${VAR}` and `${VAR:default}` references in settings
// values from the process environment.
package interpolation

import (
	"errors"
	"fmt"
	"os"
	"regexp"
)

var ErrUndefinedVariable = errors.New("environment variable not defined")

// groups: name, colon, default
var envVarPattern = regexp.MustCompile(`\$\{([A-Za-z_][A-Za-z0-9_]*)(:)?([^}]*)\}`)

// LookupFunc resolves a variable name, like os.LookupEnv.
type LookupFunc func(name string) (string, bool)

// ExpandEnvVars expands references against the process environment.
func ExpandEnvVars(input string) (string, error) {
	return Expand(input, os.LookupEnv)
}

// Expand replaces each `${NAME}` with its value from lookup and each `${NAME:default}` with
// the value or the default. `${NAME:}` defaults to the empty string. Every undefined name
// without a default is reported; its reference is left in place.
func Expand(input string, lookup LookupFunc) (string, error) {
	if input == "" {
		return "", nil
	}

	var missing []error
	out := envVarPattern.ReplaceAllStringFunc(input, func(match string) string {
		sub := envVarPattern.FindStringSubmatch(match)
		name, hasDefault, def := sub[1], sub[2] == ":", sub[3]

		if value, ok := lookup(name); ok {
			return value
		}
		if hasDefault {
			return def
		}
		missing = append(missing, fmt.Errorf("%w: %s", ErrUndefinedVariable, name))
		return match
	})

	return out, errors.Join(missing...)
}
