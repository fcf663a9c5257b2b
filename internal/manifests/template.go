// Package manifests templates scenario manifests and applies them to the
// cluster
package manifests

import "os"

// Expand substitutes ${VAR} and $VAR placeholders using the given variable
// set, with envsubst semantics: a variable that is not present substitutes
// to the empty string, never an error. Tokens that are not valid shell
// identifiers ($$, $1, ...) pass through verbatim, so manifests can embed
// shell snippets in container args.
func Expand(src string, vars map[string]string) string {
	return os.Expand(src, func(name string) string {
		if !validIdentifier(name) {
			return "$" + name
		}
		return vars[name]
	})
}

func validIdentifier(name string) bool {
	if name == "" {
		return false
	}
	for i, r := range name {
		switch {
		case r == '_' || (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z'):
		case r >= '0' && r <= '9':
			if i == 0 {
				return false
			}
		default:
			return false
		}
	}
	return true
}

// EnvironFrom merges the process environment under the explicit variable
// set, so exported values take precedence the way the shell tooling worked
func EnvironFrom(explicit map[string]string) map[string]string {
	vars := map[string]string{}
	for _, kv := range os.Environ() {
		for i := 0; i < len(kv); i++ {
			if kv[i] == '=' {
				vars[kv[:i]] = kv[i+1:]
				break
			}
		}
	}
	for k, v := range explicit {
		vars[k] = v
	}
	return vars
}
