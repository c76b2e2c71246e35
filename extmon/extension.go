package extmon

import (
	"regexp"
	"strings"
)

// ExtensionScheme is the origin prefix identifying code running as part of a
// browser extension.
const ExtensionScheme = "chrome-extension://"

var extensionIDRe = regexp.MustCompile(`(?i)chrome-extension://([a-z]+)`)

// IsExtensionURL returns true if the URL belongs to an extension origin
func IsExtensionURL(url string) bool {
	return strings.Contains(url, ExtensionScheme)
}

// ExtensionIDFromURL extracts the extension identifier from the origin
// authority segment, empty string when the URL is not extension scoped.
func ExtensionIDFromURL(url string) string {
	m := extensionIDRe.FindStringSubmatch(url)
	if m == nil {
		return ""
	}
	return strings.ToLower(m[1])
}
