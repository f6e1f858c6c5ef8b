package secret

import (
	"fmt"
	"os"
	"regexp"
	"sort"
	"strings"
)

// envRefPattern matches the ${NAME} references strict expansion must be
// able to satisfy.
var envRefPattern = regexp.MustCompile(`\$\{([A-Za-z_][A-Za-z0-9_]*)\}`)

// ExpandEnvStrict expands $VAR and ${VAR} references in s against the
// process environment. Unlike os.ExpandEnv it refuses to substitute an
// empty string for an unset ${VAR}: configuration that names a variable
// gets its value or an error listing every absent name, so a missing
// encryption key cannot silently become "". A doubled dollar ($$) produces
// a literal dollar sign.
func ExpandEnvStrict(s string) (string, error) {
	const dollarSentinel = "\x00ODOOGATE_SECRET_DOLLAR\x00"
	s = strings.ReplaceAll(s, "$$", dollarSentinel)

	var missing []string
	seen := make(map[string]bool)
	for _, match := range envRefPattern.FindAllStringSubmatch(s, -1) {
		name := match[1]
		if seen[name] {
			continue
		}
		seen[name] = true
		if _, ok := os.LookupEnv(name); !ok {
			missing = append(missing, name)
		}
	}
	if len(missing) > 0 {
		sort.Strings(missing)
		return "", fmt.Errorf("missing required environment variables: %s", strings.Join(missing, ", "))
	}

	s = os.ExpandEnv(s)
	return strings.ReplaceAll(s, dollarSentinel, "$"), nil
}
