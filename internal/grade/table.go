package grade

import (
	"fmt"
	"strings"
)

type entry struct {
	grade     Grade
	matchedBy string
}

var lookup = map[string]entry{}

// titles maps service titles and abbreviations to grades. Ambiguous titles
// resolve to their Army/Marine Corps reading ("CAPTAIN" is O-3); the Navy
// abbreviation "CAPT" is O-6.
var titles = map[Grade][]string{
	"E-1": {"PRIVATE", "PVT", "AIRMAN BASIC", "AB", "SEAMAN RECRUIT", "SR"},
	"E-2": {"PRIVATE SECOND CLASS", "PV2", "AIRMAN", "AMN", "SEAMAN APPRENTICE", "SA"},
	"E-3": {"PRIVATE FIRST CLASS", "PFC", "AIRMAN FIRST CLASS", "A1C", "SEAMAN", "SN", "LANCE CORPORAL", "LCPL"},
	"E-4": {"SPECIALIST", "SPC", "CORPORAL", "CPL", "SENIOR AIRMAN", "SRA", "PETTY OFFICER THIRD CLASS", "PO3"},
	"E-5": {"SERGEANT", "SGT", "STAFF SERGEANT USAF", "PETTY OFFICER SECOND CLASS", "PO2"},
	"E-6": {"STAFF SERGEANT", "SSG", "SSGT", "TECHNICAL SERGEANT", "TSGT", "PETTY OFFICER FIRST CLASS", "PO1"},
	"E-7": {"SERGEANT FIRST CLASS", "SFC", "GUNNERY SERGEANT", "GYSGT", "MASTER SERGEANT USAF", "CHIEF PETTY OFFICER", "CPO"},
	"E-8": {"MASTER SERGEANT", "MSG", "MSGT", "FIRST SERGEANT", "1SG", "1STSGT", "SENIOR MASTER SERGEANT", "SMSGT", "SENIOR CHIEF PETTY OFFICER", "SCPO"},
	"E-9": {"SERGEANT MAJOR", "SGM", "SGTMAJ", "COMMAND SERGEANT MAJOR", "CSM", "MASTER GUNNERY SERGEANT", "MGYSGT", "CHIEF MASTER SERGEANT", "CMSGT", "MASTER CHIEF PETTY OFFICER", "MCPO"},

	"W-1": {"WARRANT OFFICER", "WO1", "WO"},
	"W-2": {"CHIEF WARRANT OFFICER 2", "CW2", "CWO2"},
	"W-3": {"CHIEF WARRANT OFFICER 3", "CW3", "CWO3"},
	"W-4": {"CHIEF WARRANT OFFICER 4", "CW4", "CWO4"},
	"W-5": {"CHIEF WARRANT OFFICER 5", "CW5", "CWO5"},

	"O-1":  {"SECOND LIEUTENANT", "2LT", "2NDLT", "ENSIGN", "ENS"},
	"O-2":  {"FIRST LIEUTENANT", "1LT", "1STLT", "LIEUTENANT JUNIOR GRADE", "LTJG"},
	"O-3":  {"CAPTAIN", "CPT", "LIEUTENANT", "LT"},
	"O-4":  {"MAJOR", "MAJ", "LIEUTENANT COMMANDER", "LCDR"},
	"O-5":  {"LIEUTENANT COLONEL", "LTC", "LTCOL", "LT COL", "COMMANDER", "CDR"},
	"O-6":  {"COLONEL", "COL", "CAPT"},
	"O-7":  {"BRIGADIER GENERAL", "BG", "BGEN", "REAR ADMIRAL LOWER HALF", "RDML"},
	"O-8":  {"MAJOR GENERAL", "MG", "MAJGEN", "REAR ADMIRAL", "RADM"},
	"O-9":  {"LIEUTENANT GENERAL", "LTG", "LTGEN", "VICE ADMIRAL", "VADM"},
	"O-10": {"GENERAL", "GEN", "ADMIRAL", "ADM"},
}

// buildLookup registers the canonical codes, their spelling variants and the
// title table. Codes are registered first so titles can never shadow them.
func buildLookup() {
	for _, g := range canonical {
		for _, variant := range codeVariants(g) {
			register(variant, g, "code")
		}
	}
	for g, names := range titles {
		for _, name := range names {
			register(normalizeKey(name), g, "title")
		}
	}
}

func register(key string, g Grade, matchedBy string) {
	if _, exists := lookup[key]; exists {
		return
	}
	lookup[key] = entry{grade: g, matchedBy: matchedBy}
}

// codeVariants returns the accepted spellings of a canonical code, e.g.
// E-5, E5, E05, E-05, E 5, E_5 and for prior-enlisted officers O-1E, O1E.
func codeVariants(g Grade) []string {
	s := string(g)
	prefix := s[:1]
	rest := s[2:]
	suffix := ""
	if strings.HasSuffix(rest, "E") {
		suffix = "E"
		rest = strings.TrimSuffix(rest, "E")
	}

	numbers := []string{rest}
	if len(rest) == 1 {
		numbers = append(numbers, "0"+rest)
	}

	var out []string
	for _, n := range numbers {
		for _, sep := range []string{"-", "", " ", "_"} {
			out = append(out, fmt.Sprintf("%s%s%s%s", prefix, sep, n, suffix))
		}
	}
	return out
}
