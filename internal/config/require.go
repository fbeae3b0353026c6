package config

import "log"

// MustNonEmpty aborts startup on a missing required setting. An unconfigured
// signing secret is a deployment error, not something to limp along with.
func MustNonEmpty(value, envName string) {
	if value == "" {
		log.Fatalf("missing required env %s", envName)
	}
}
