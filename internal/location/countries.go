package location

import "strings"

// countryAliases maps lower-cased country names, common aliases and ISO
// 2-letter codes to a canonical ISO 3166-1 alpha-2 code.
var countryAliases = map[string]string{
	"united states": "US", "united states of america": "US", "usa": "US",
	"u s": "US", "u s a": "US", "us": "US", "america": "US",
	"united kingdom": "GB", "uk": "GB", "gb": "GB", "great britain": "GB",
	"england": "GB", "scotland": "GB", "wales": "GB",
	"canada": "CA",
	"germany": "DE", "de": "DE", "deutschland": "DE",
	"france": "FR", "fr": "FR",
	"netherlands": "NL", "nl": "NL", "the netherlands": "NL", "holland": "NL",
	"spain": "ES", "es": "ES",
	"portugal": "PT", "pt": "PT",
	"italy": "IT", "it": "IT",
	"ireland": "IE", "ie": "IE",
	"poland": "PL", "pl": "PL",
	"sweden": "SE", "se": "SE",
	"norway": "NO", "no": "NO",
	"denmark": "DK", "dk": "DK",
	"finland": "FI", "fi": "FI",
	"switzerland": "CH", "ch": "CH",
	"austria": "AT", "at": "AT",
	"belgium": "BE", "be": "BE",
	"australia": "AU", "au": "AU",
	"new zealand": "NZ", "nz": "NZ",
	"india": "IN",
	"singapore": "SG", "sg": "SG",
	"japan": "JP", "jp": "JP",
	"brazil": "BR", "br": "BR", "brasil": "BR",
	"mexico": "MX", "mx": "MX",
	"argentina": "AR",
	"romania": "RO", "ro": "RO",
	"czech republic": "CZ", "czechia": "CZ", "cz": "CZ",
	"hungary": "HU", "hu": "HU",
	"greece": "GR", "gr": "GR",
	"israel": "IL",
	"united arab emirates": "AE", "uae": "AE", "ae": "AE",
	"south africa": "ZA", "za": "ZA",
	"nigeria": "NG", "ng": "NG",
	"kenya": "KE", "ke": "KE",
	"philippines": "PH", "ph": "PH",
	"indonesia": "ID",
	"vietnam": "VN", "viet nam": "VN", "vn": "VN",
	"thailand": "TH", "th": "TH",
	"south korea": "KR", "korea": "KR", "kr": "KR",
	"china": "CN", "cn": "CN",
	"hong kong": "HK", "hk": "HK",
	"taiwan": "TW", "tw": "TW",
	"turkey": "TR", "tr": "TR",
	"ukraine": "UA", "ua": "UA",
	"estonia": "EE", "ee": "EE",
	"latvia": "LV", "lv": "LV",
	"lithuania": "LT", "lt": "LT",
	"colombia": "CO", "co": "CO",
	"chile": "CL", "cl": "CL",
	"peru": "PE", "pe": "PE",
}

// regionalLabels are broad hiring regions. They are explicitly rejected as
// countries but can qualify a remote posting's region.
var regionalLabels = map[string]string{
	"emea":          "EMEA",
	"apac":          "APAC",
	"latam":         "LATAM",
	"americas":      "Americas",
	"north america": "North America",
	"europe":        "Europe",
	"asia":          "Asia",
	"asia pacific":  "APAC",
	"worldwide":     "Worldwide",
}

// usStateCodes guards the 2-letter alias lookup: "San Francisco, CA" means
// California, not Canada. Any final segment matching a US state code is a
// region, never a country.
var usStateCodes = map[string]bool{
	"al": true, "ak": true, "az": true, "ar": true, "ca": true, "co": true,
	"ct": true, "de": true, "fl": true, "ga": true, "hi": true, "id": true,
	"il": true, "in": true, "ia": true, "ks": true, "ky": true, "la": true,
	"me": true, "md": true, "ma": true, "mi": true, "mn": true, "ms": true,
	"mo": true, "mt": true, "ne": true, "nv": true, "nh": true, "nj": true,
	"nm": true, "ny": true, "nc": true, "nd": true, "oh": true, "ok": true,
	"or": true, "pa": true, "ri": true, "sc": true, "sd": true, "tn": true,
	"tx": true, "ut": true, "vt": true, "va": true, "wa": true, "wv": true,
	"wi": true, "wy": true, "dc": true,
}

// lookupCountry tests a display segment against the alias table. Two-letter
// segments that collide with US state codes are not countries.
func lookupCountry(segment string) (string, bool) {
	key := strings.ToLower(strings.TrimSpace(segment))
	key = strings.Trim(key, ".")
	if key == "" {
		return "", false
	}
	if len(key) == 2 && usStateCodes[key] {
		return "", false
	}
	code, ok := countryAliases[key]
	return code, ok
}
