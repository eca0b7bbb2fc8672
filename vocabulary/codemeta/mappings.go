package codemeta

import "strings"

// LicenseRule maps a license text fragment onto an SPDX identifier.
type LicenseRule struct {
	// Fragment is matched case-insensitively on word boundaries.
	Fragment string

	// SPDX is the SPDX license identifier.
	SPDX string
}

// LicenseRules is the ordered rule table used by LicenseIRI; the first match
// wins, so more specific fragments precede the fragments they contain.
var LicenseRules = []LicenseRule{
	{"agpl-3", "AGPL-3.0-or-later"},
	{"agplv3", "AGPL-3.0-or-later"},
	{"affero", "AGPL-3.0-or-later"},
	{"lgpl-3", "LGPL-3.0-or-later"},
	{"lgplv3", "LGPL-3.0-or-later"},
	{"lesser general public license v3", "LGPL-3.0-or-later"},
	{"lgpl-2", "LGPL-2.1-or-later"},
	{"lgplv2", "LGPL-2.1-or-later"},
	{"lesser general public license v2", "LGPL-2.1-or-later"},
	{"gpl-3", "GPL-3.0-or-later"},
	{"gplv3", "GPL-3.0-or-later"},
	{"gpl3", "GPL-3.0-or-later"},
	{"general public license v3", "GPL-3.0-or-later"},
	{"gpl-2", "GPL-2.0-or-later"},
	{"gplv2", "GPL-2.0-or-later"},
	{"gpl2", "GPL-2.0-or-later"},
	{"general public license v2", "GPL-2.0-or-later"},
	{"mpl-2", "MPL-2.0"},
	{"mozilla public license 2", "MPL-2.0"},
	{"epl-2", "EPL-2.0"},
	{"eclipse public license 2", "EPL-2.0"},
	{"eupl-1.2", "EUPL-1.2"},
	{"apache", "Apache-2.0"},
	{"bsd-3", "BSD-3-Clause"},
	{"bsd 3", "BSD-3-Clause"},
	{"new bsd", "BSD-3-Clause"},
	{"modified bsd", "BSD-3-Clause"},
	{"bsd-2", "BSD-2-Clause"},
	{"bsd 2", "BSD-2-Clause"},
	{"simplified bsd", "BSD-2-Clause"},
	{"freebsd", "BSD-2-Clause"},
	{"artistic-2", "Artistic-2.0"},
	{"artistic license 2", "Artistic-2.0"},
	{"boost", "BSL-1.0"},
	{"cc0", "CC0-1.0"},
	{"cc-by-sa-4", "CC-BY-SA-4.0"},
	{"cc-by-4", "CC-BY-4.0"},
	{"unlicense", "Unlicense"},
	{"wtfpl", "WTFPL"},
	{"zlib", "Zlib"},
	{"isc", "ISC"},
	{"expat", "MIT"},
	{"mit", "MIT"},
}

// spdxIDs lists the SPDX identifiers that LicenseIRI accepts verbatim. The
// deprecated bare GPL family ids ("GPL-3.0") are left to LicenseRules.
var spdxIDs = []string{
	"0BSD", "AFL-3.0", "AGPL-3.0-only", "AGPL-3.0-or-later", "Apache-1.0",
	"Apache-1.1", "Apache-2.0", "APSL-2.0", "Artistic-1.0", "Artistic-2.0",
	"BlueOak-1.0.0", "BSD-1-Clause", "BSD-2-Clause", "BSD-2-Clause-Patent",
	"BSD-3-Clause", "BSD-3-Clause-Clear", "BSD-4-Clause", "BSL-1.0",
	"CC-BY-3.0", "CC-BY-4.0", "CC-BY-SA-3.0", "CC-BY-SA-4.0", "CC-BY-NC-4.0",
	"CC-BY-NC-SA-4.0", "CC0-1.0", "CDDL-1.0", "CDDL-1.1", "CECILL-2.1",
	"CECILL-B", "CECILL-C", "ECL-2.0", "EPL-1.0", "EPL-2.0", "EUPL-1.1",
	"EUPL-1.2", "GFDL-1.3-only", "GFDL-1.3-or-later", "GPL-1.0-only",
	"GPL-1.0-or-later", "GPL-2.0-only", "GPL-2.0-or-later", "GPL-3.0-only",
	"GPL-3.0-or-later", "HPND", "ISC", "LGPL-2.0-only", "LGPL-2.0-or-later",
	"LGPL-2.1-only", "LGPL-2.1-or-later", "LGPL-3.0-only", "LGPL-3.0-or-later",
	"LPPL-1.3c", "MIT", "MIT-0", "MPL-1.1", "MPL-2.0",
	"MPL-2.0-no-copyleft-exception", "MS-PL", "MS-RL", "MulanPSL-2.0",
	"NCSA", "ODbL-1.0", "OFL-1.1", "OSL-3.0", "PostgreSQL", "PSF-2.0",
	"Python-2.0", "Ruby", "Unlicense", "UPL-1.0", "Vim", "W3C", "WTFPL",
	"X11", "Zlib", "ZPL-2.1",
}

var spdxByLower = func() map[string]string {
	m := make(map[string]string, len(spdxIDs))
	for _, id := range spdxIDs {
		m[strings.ToLower(id)] = id
	}
	return m
}()

// LicenseIRI resolves a license value onto an SPDX license IRI.
// Values already under an SPDX namespace are normalized and accepted, and a
// known SPDX identifier is kept as is in its canonical case.
func LicenseIRI(value string) (string, bool) {
	v := strings.TrimSpace(value)
	if v == "" {
		return "", false
	}
	for _, ns := range []string{SPDXNamespace, "https://spdx.org/licenses/"} {
		if id, ok := strings.CutPrefix(v, ns); ok && id != "" {
			return SPDXNamespace + strings.TrimSuffix(id, ".html"), true
		}
	}

	lower := strings.ToLower(v)
	if id, ok := spdxByLower[lower]; ok {
		return SPDXNamespace + id, true
	}
	for _, rule := range LicenseRules {
		if containsWord(lower, rule.Fragment) {
			return SPDXNamespace + rule.SPDX, true
		}
	}
	return "", false
}

// containsWord reports whether fragment occurs in s without alphanumeric
// characters directly before or after it.
func containsWord(s, fragment string) bool {
	for offset := 0; offset < len(s); {
		i := strings.Index(s[offset:], fragment)
		if i < 0 {
			return false
		}
		start := offset + i
		end := start + len(fragment)
		if (start == 0 || !isAlnum(s[start-1])) && (end == len(s) || !isAlnum(s[end])) {
			return true
		}
		offset = start + 1
	}
	return false
}

func isAlnum(b byte) bool {
	return b >= 'a' && b <= 'z' || b >= 'A' && b <= 'Z' || b >= '0' && b <= '9'
}
