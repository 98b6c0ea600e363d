package negotiation

import (
	"golang.org/x/mod/semver"
)

// Compatible reports whether a client speaking clientVersion can be served by
// a server speaking serverVersion.
// Majors must match and the client may not be newer than the server; an older
// minor or patch is always accepted.
func Compatible(serverVersion, clientVersion string) bool {
	sv := normalizeVersion(serverVersion)
	cv := normalizeVersion(clientVersion)

	if !semver.IsValid(sv) || !semver.IsValid(cv) {
		return false
	}
	if semver.Major(sv) != semver.Major(cv) {
		return false
	}
	return semver.Compare(cv, sv) <= 0
}

// normalizeVersion adds "v" prefix if needed for semver parsing.
func normalizeVersion(v string) string {
	if v == "" {
		return "v0.0.0"
	}
	if v[0] != 'v' {
		return "v" + v
	}
	return v
}
