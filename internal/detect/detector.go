// Package detect classifies free-form driver-app UI text into an
// online/offline/unknown status signal. Classification is pure string
// matching over per-language phrase tables; no state, no I/O, safe for
// concurrent use from multiple observation sources.
package detect

import (
	"sort"
	"strings"

	"github.com/bandarsiri8/ubertimetracker/pkg/models"
)

func init() {
	// Longest-first within each language so specific phrases are checked
	// before short generic ones ("you're online" before "online").
	for i := range languages {
		sortByLengthDesc(languages[i].Online)
		sortByLengthDesc(languages[i].Offline)
	}
}

func sortByLengthDesc(patterns []string) {
	sort.SliceStable(patterns, func(a, b int) bool {
		return len(patterns[a]) > len(patterns[b])
	})
}

// Classify maps raw UI or notification text to a status. The ONLINE tables
// are evaluated first; a match is discarded when the text also contains a
// "go online" call-to-action phrase, since that label is only visible while
// the driver is offline. If no ONLINE match survives, the OFFLINE tables are
// evaluated with no exception layer. No match at all yields StatusUnknown.
func Classify(text string) models.Status {
	if strings.TrimSpace(text) == "" {
		return models.StatusUnknown
	}
	lower := strings.ToLower(text)

	for _, lang := range languages {
		for _, pattern := range lang.Online {
			if !strings.Contains(lower, strings.ToLower(pattern)) {
				continue
			}
			if containsGoOnlinePhrase(lower) {
				// "Go Online" button on screen: this online-colored match
				// actually indicates the current state is offline.
				break
			}
			return models.StatusOnline
		}
	}

	for _, lang := range languages {
		for _, pattern := range lang.Offline {
			if strings.Contains(lower, strings.ToLower(pattern)) {
				return models.StatusOffline
			}
		}
	}

	return models.StatusUnknown
}

func containsGoOnlinePhrase(lower string) bool {
	for _, phrase := range goOnlinePhrases {
		if strings.Contains(lower, strings.ToLower(phrase)) {
			return true
		}
	}
	return false
}

// DetectLanguage reports which language block matched the text, best-effort.
// The longest matching pattern wins, so "du bist online" attributes to German
// even though the generic "online" also matches English. It powers the
// detected-language readout only and has no bearing on classification.
// Returns ("", "") when nothing matches.
func DetectLanguage(text string) (code, name string) {
	if strings.TrimSpace(text) == "" {
		return "", ""
	}
	lower := strings.ToLower(text)

	best := -1
	for _, lang := range languages {
		for _, pattern := range append(append([]string{}, lang.Online...), lang.Offline...) {
			if len(pattern) > best && strings.Contains(lower, strings.ToLower(pattern)) {
				best = len(pattern)
				code, name = lang.Code, lang.Name
			}
		}
	}
	return code, name
}

// IsDriverApp reports whether the package name belongs to one of the
// driver-partner apps we track.
func IsDriverApp(packageName string) bool {
	if packageName == "" {
		return false
	}
	lower := strings.ToLower(packageName)
	for _, pkg := range driverAppPackages {
		if strings.Contains(lower, pkg) {
			return true
		}
	}
	return false
}
