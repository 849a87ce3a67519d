// Package classifier routes bulletin PDFs to a parser by looking at their
// file names only.
package classifier

import (
	"path/filepath"
	"strings"

	"kpss-tercih/internal/models"
	"kpss-tercih/internal/textutils"
)

// Classification is the verdict for one file name.
type Classification struct {
	Kind  models.BulletinKind
	Level models.EducationLevel
	Rule  string
}

// Classified reports whether a rule matched.
func (c Classification) Classified() bool {
	return c.Kind != models.KindUnclassified
}

// Rule is a substring test on the folded file name. A rule matches when at
// least one AnyOf token (if any are given) and every AllOf token are present
// and no NoneOf token is. A token ending in a digit only matches when no
// further digit follows, so "tablo1" does not match "tablo12".
type Rule struct {
	Name   string
	AnyOf  []string
	AllOf  []string
	NoneOf []string
	Kind   models.BulletinKind
	Level  models.EducationLevel
}

func (r Rule) matches(name string) bool {
	if len(r.AnyOf) > 0 {
		found := false
		for _, tok := range r.AnyOf {
			if containsToken(name, tok) {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	for _, tok := range r.AllOf {
		if !containsToken(name, tok) {
			return false
		}
	}
	for _, tok := range r.NoneOf {
		if containsToken(name, tok) {
			return false
		}
	}
	return true
}

func containsToken(name, tok string) bool {
	if tok == "" || !isDigit(tok[len(tok)-1]) {
		return strings.Contains(name, tok)
	}
	for from := 0; ; {
		i := strings.Index(name[from:], tok)
		if i < 0 {
			return false
		}
		next := from + i + len(tok)
		if next == len(name) || !isDigit(name[next]) {
			return true
		}
		from += i + 1
	}
}

func isDigit(b byte) bool {
	return b >= '0' && b <= '9'
}

// DefaultRules is the ordered rule table for ÖSYM file names such as
// "tablo3_lisans18122025.pdf" or "onlisans_nitelik_18122025.pdf". Order
// matters: an explicit table number wins over level keywords, and
// "onlisans" contains "lisans", so the associate-degree keyword rules come
// before the bachelor ones. "_ort" also prefixes "_ortak", which is excluded.
var DefaultRules = []Rule{
	{Name: "secondary-table-qualification", AllOf: []string{"tablo1", "nitelik"}, Kind: models.KindQualification, Level: models.LevelSecondary},
	{Name: "associate-table-qualification", AllOf: []string{"tablo2", "nitelik"}, Kind: models.KindQualification, Level: models.LevelAssociate},
	{Name: "bachelor-table-qualification", AllOf: []string{"tablo3", "nitelik"}, Kind: models.KindQualification, Level: models.LevelBachelor},
	{Name: "secondary-table", AllOf: []string{"tablo1"}, Kind: models.KindPosition, Level: models.LevelSecondary},
	{Name: "associate-table", AllOf: []string{"tablo2"}, Kind: models.KindPosition, Level: models.LevelAssociate},
	{Name: "bachelor-table", AllOf: []string{"tablo3"}, Kind: models.KindPosition, Level: models.LevelBachelor},
	{Name: "secondary-qualification", AnyOf: []string{"ortaogr", "_ort"}, AllOf: []string{"nitelik"}, NoneOf: []string{"_ortak"}, Kind: models.KindQualification, Level: models.LevelSecondary},
	{Name: "associate-qualification", AllOf: []string{"onlisans", "nitelik"}, Kind: models.KindQualification, Level: models.LevelAssociate},
	{Name: "bachelor-qualification", AllOf: []string{"lisans", "nitelik"}, NoneOf: []string{"onlisans"}, Kind: models.KindQualification, Level: models.LevelBachelor},
	{Name: "secondary-table-keyword", AnyOf: []string{"ortaogr", "_ort"}, AllOf: []string{"tablo"}, NoneOf: []string{"_ortak"}, Kind: models.KindPosition, Level: models.LevelSecondary},
	{Name: "associate-table-keyword", AllOf: []string{"onlisans", "tablo"}, Kind: models.KindPosition, Level: models.LevelAssociate},
	{Name: "bachelor-table-keyword", AllOf: []string{"lisans", "tablo"}, NoneOf: []string{"onlisans"}, Kind: models.KindPosition, Level: models.LevelBachelor},
	{Name: "special-conditions", AllOf: []string{"ozel", "kosul"}, Kind: models.KindQualification, Level: models.LevelSpecial},
}

// Classifier applies an ordered rule table; the first matching rule wins.
// It holds no mutable state and is safe for concurrent use.
type Classifier struct {
	rules []Rule
}

// New creates a classifier over rules. With no rules, DefaultRules is used.
func New(rules ...Rule) *Classifier {
	if len(rules) == 0 {
		rules = DefaultRules
	}
	cp := make([]Rule, len(rules))
	copy(cp, rules)
	return &Classifier{rules: cp}
}

// Classify decides the kind and level of filename. Directories in the path
// are ignored. An unknown name is reported as unclassified, never guessed.
func (c *Classifier) Classify(filename string) Classification {
	name := textutils.FoldASCII(filepath.Base(filename))
	for _, r := range c.rules {
		if r.matches(name) {
			return Classification{Kind: r.Kind, Level: r.Level, Rule: r.Name}
		}
	}
	return Classification{Kind: models.KindUnclassified}
}

var defaultClassifier = New()

// Classify uses the default rule table.
func Classify(filename string) Classification {
	return defaultClassifier.Classify(filename)
}
