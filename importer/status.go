package importer

import (
	"regexp"
	"strconv"
	"strings"

	"pointage/internal/textutil"
	"pointage/roster"
)

// Tokens that assert a status when they appear alone in a cell, compared
// after folding ("Présent" and "present" are the same token).
var affirmativeTokens = map[string]bool{
	"x":       true,
	"1":       true,
	"yes":     true,
	"y":       true,
	"p":       true,
	"present": true,
}

var allDigitsRe = regexp.MustCompile(`^\d+$`)

// CellAsserted decides whether a cell value asserts its column's status.
// Blank is false; numbers must be strictly positive (a -1 sentinel asserts
// nothing); text must be an affirmative token or a digit string > 0.
func CellAsserted(cell Cell) bool {
	switch cell.Kind {
	case CellEmpty:
		return false
	case CellNumber:
		return cell.Number > 0
	}

	token := textutil.Fold(cell.Text)
	if affirmativeTokens[token] {
		return true
	}
	if allDigitsRe.MatchString(token) {
		if value, err := strconv.Atoi(token); err == nil {
			return value > 0
		}
	}
	return false
}

// FlagForLabel classifies a free-text status label by substring containment,
// first match wins. Labels matching no rule contribute no flag even when
// their cell asserts.
func FlagForLabel(label string) (roster.Flag, bool) {
	token := textutil.Fold(label)
	if token == "" {
		return 0, false
	}

	switch {
	case strings.Contains(token, "pres"):
		return roster.Present, true
	case strings.Contains(token, "absen"):
		return roster.Absent, true
	case strings.Contains(token, "cong"):
		return roster.Conge, true
	case strings.Contains(token, "tour") && strings.Contains(token, "rep"):
		return roster.TourRepos, true
	case strings.Contains(token, "repos") || strings.Contains(token, "med"):
		return roster.ReposMed, true
	case strings.Contains(token, "sans") && strings.Contains(token, "ph"):
		return roster.SansPh, true
	}
	return 0, false
}
