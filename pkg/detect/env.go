// SPDX-License-Identifier: MPL-2.0

package detect

import (
	"os"
	"strings"
)

// userAgentEnv is set by npm-family package managers for the processes they
// spawn, e.g. "pnpm/6.14.0 npm/? node/v18.0.0 linux x64".
const userAgentEnv = "npm_config_user_agent"

// specifierFromEnv converts the first token of the user-agent string into a
// name[@version] specifier for the parser. Placeholder versions ("?") are
// dropped so the name alone drives resolution. Returns "" when the variable
// is unset or blank.
func specifierFromEnv() string {
	ua := strings.TrimSpace(os.Getenv(userAgentEnv))
	if ua == "" {
		return ""
	}
	first, _, _ := strings.Cut(ua, " ")
	name, version, ok := strings.Cut(first, "/")
	if !ok || version == "" || version == "?" {
		return name
	}
	return name + "@" + version
}
