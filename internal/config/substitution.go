package config

import (
	"fmt"
	"os"
	"regexp"
	"strings"
)

// envRefPattern matches ${env://VAR} and ${env://VAR:-default}.
var envRefPattern = regexp.MustCompile(`\$\{env://([A-Za-z_][A-Za-z0-9_]*)(:-([^}]*))?\}`)

// splitDefault splits "VAR:-default" into its parts.
func splitDefault(ref string) (name, def string, hasDefault bool) {
	name, def, hasDefault = strings.Cut(ref, ":-")
	return name, def, hasDefault
}

// Expander replaces environment references in config file contents before
// they are handed to viper, so a config can say
//
//	source: ${env://LLMPRICES_SOURCE:-embedded}
type Expander struct {
	// Lookup resolves a variable. Defaults to os.LookupEnv.
	Lookup func(string) (string, bool)
}

// Expand substitutes every reference. A variable that is unset (or empty)
// takes its default; without a default it is an error, and all such
// variables are reported together.
func (e Expander) Expand(content string) (string, error) {
	lookup := e.Lookup
	if lookup == nil {
		lookup = os.LookupEnv
	}

	var missing []string
	result := envRefPattern.ReplaceAllStringFunc(content, func(match string) string {
		ref := strings.TrimSuffix(strings.TrimPrefix(match, "${env://"), "}")
		name, def, hasDefault := splitDefault(ref)

		if v, ok := lookup(name); ok && v != "" {
			return v
		}
		if hasDefault {
			return def
		}

		missing = append(missing, name)
		return match
	})

	if len(missing) > 0 {
		return "", fmt.Errorf("environment variable substitution failed: %s not set", strings.Join(missing, ", "))
	}
	return result, nil
}

// HasEnvRefs reports whether content contains any ${env://...} reference.
func HasEnvRefs(content string) bool {
	return envRefPattern.MatchString(content)
}
