package favourites

import (
	"fmt"
	"strconv"
	"strings"
)

// Title generation defaults. Both are configurable through service options.
const (
	// DefaultTitleFormat decorates an owner's display name into a list title.
	DefaultTitleFormat = "%s's Favourites"

	// DefaultListTitle is used when no display name can be resolved.
	DefaultListTitle = "Favourites"
)

// titlePrefix builds the undecorated title for an owner display name.
func titlePrefix(format, name, fallback string) string {
	if name == "" {
		return fallback
	}
	return fmt.Sprintf(format, name)
}

// nextTitle derives the title for a new list from the prefix and the most
// recent existing title sharing it: no match keeps the bare prefix, a bare
// match appends 1, and a trailing integer N becomes N+1.
func nextTitle(prefix, latest string) string {
	if latest == "" {
		return prefix
	}
	suffix := strings.TrimSpace(strings.TrimPrefix(latest, prefix))
	if suffix == "" {
		return fmt.Sprintf("%s 1", prefix)
	}
	if n, err := strconv.Atoi(suffix); err == nil {
		return fmt.Sprintf("%s %d", prefix, n+1)
	}
	return fmt.Sprintf("%s 1", prefix)
}
