package classpath

import (
	"path/filepath"
	"regexp"
	"strings"
)

// versionSuffix strips a trailing "-1.2.3"-style version from a jar's base
// name, matching the JDK's own automatic module name derivation rule
// (JEP 261 / ModuleFinder.of javadoc).
var versionSuffix = regexp.MustCompile(`-(\d+(\.\d+)*([._-][A-Za-z0-9]+)*)$`)

var nonAlnum = regexp.MustCompile(`[^A-Za-z0-9]+`)

// AutomaticModuleName derives the automatic module name the JDK's module
// system would assign to a plain (non-modular) jar lacking both a
// module-info.class and an Automatic-Module-Name manifest entry: strip the
// extension and any trailing version, replace runs of non-alphanumeric
// characters with single dots, and collapse leading/trailing/duplicate dots.
func AutomaticModuleName(jarPath string) (name string, automatic bool) {
	base := strings.TrimSuffix(filepath.Base(jarPath), ".jar")
	base = versionSuffix.ReplaceAllString(base, "")
	base = nonAlnum.ReplaceAllString(base, ".")
	base = strings.Trim(base, ".")
	base = collapseDots(base)
	if base == "" {
		return "", false
	}
	return base, true
}

func collapseDots(s string) string {
	var out strings.Builder
	lastDot := false
	for _, r := range s {
		if r == '.' {
			if lastDot {
				continue
			}
			lastDot = true
		} else {
			lastDot = false
		}
		out.WriteRune(r)
	}
	return out.String()
}
