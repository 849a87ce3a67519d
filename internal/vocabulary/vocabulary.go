// Package vocabulary holds the closed word lists the position parser matches
// against: the 81 provinces, the employment types and the generic
// qualification code of each education level.
package vocabulary

import (
	"fmt"
	"regexp"
	"strings"

	"kpss-tercih/internal/models"
	"kpss-tercih/internal/parsererror"
)

// Cities is the canonical, upper-case UTF-8 list of Turkish provinces in
// alphabetical order. Matching is exact, so the Turkish dotted capitals
// must be preserved.
var Cities = []string{
	"ADANA", "ADIYAMAN", "AFYONKARAHİSAR", "AĞRI", "AKSARAY", "AMASYA", "ANKARA", "ANTALYA",
	"ARTVİN", "AYDIN", "BALIKESİR", "BARTIN", "BATMAN", "BAYBURT", "BİLECİK", "BİNGÖL", "BİTLİS",
	"BOLU", "BURDUR", "BURSA", "ÇANAKKALE", "ÇANKIRI", "ÇORUM", "DENİZLİ", "DİYARBAKIR", "DÜZCE",
	"EDİRNE", "ELAZIĞ", "ERZİNCAN", "ERZURUM", "ESKİŞEHİR", "GAZİANTEP", "GİRESUN", "GÜMÜŞHANE",
	"HAKKARİ", "HATAY", "IĞDIR", "ISPARTA", "İSTANBUL", "İZMİR", "KAHRAMANMARAŞ", "KARABÜK",
	"KARAMAN", "KARS", "KASTAMONU", "KAYSERİ", "KIRIKKALE", "KIRKLARELİ", "KIRŞEHİR", "KİLİS",
	"KOCAELİ", "KONYA", "KÜTAHYA", "MALATYA", "MANİSA", "MARDİN", "MERSİN", "MUĞLA", "MUŞ",
	"NEVŞEHİR", "NİĞDE", "ORDU", "OSMANİYE", "RİZE", "SAKARYA", "SAMSUN", "SİİRT", "SİNOP",
	"SİVAS", "ŞANLIURFA", "ŞIRNAK", "TEKİRDAĞ", "TOKAT", "TRABZON", "TUNCELİ", "UŞAK", "VAN",
	"YALOVA", "YOZGAT", "ZONGULDAK",
}

// EmploymentTypes are checked in this order; the first one found bounds the
// institution name.
var EmploymentTypes = []string{"SÖZLEŞMELİ PERSONEL", "MEMUR", "İŞÇİ"}

// GenericCodes maps a level to the code meaning "any graduate of this level".
var GenericCodes = map[models.EducationLevel]string{
	models.LevelSecondary: "2001",
	models.LevelAssociate: "3001",
	models.LevelBachelor:  "4001",
}

// QualificationCodePattern matches a qualification code referenced from a
// position row. Codes outside 2000–7999 are row numbers or years.
var QualificationCodePattern = regexp.MustCompile(`\b([234567]\d{3})\b`)

// Vocabulary is the set of word lists handed to the parsers. It is read-only
// once built and may be shared between goroutines.
type Vocabulary struct {
	Cities          []string
	EmploymentTypes []string
	GenericCodes    map[models.EducationLevel]string

	citySet map[string]struct{}
}

// Default returns the built-in vocabulary.
func Default() *Vocabulary {
	v, _ := New(Cities, EmploymentTypes, GenericCodes)
	return v
}

// New builds a vocabulary from explicit lists. Entries are trimmed only;
// matching is byte exact, so cities must use canonical Turkish capitals.
func New(cities, employmentTypes []string, genericCodes map[models.EducationLevel]string) (*Vocabulary, error) {
	v := &Vocabulary{
		Cities:          cleanList(cities),
		EmploymentTypes: cleanList(employmentTypes),
		GenericCodes:    make(map[models.EducationLevel]string, len(genericCodes)),
	}
	for level, code := range genericCodes {
		v.GenericCodes[level] = code
	}
	if err := v.Validate(); err != nil {
		return nil, err
	}
	v.citySet = make(map[string]struct{}, len(v.Cities))
	for _, c := range v.Cities {
		v.citySet[c] = struct{}{}
	}
	return v, nil
}

// Validate checks that the lists are usable by the parsers.
func (v *Vocabulary) Validate() error {
	if len(v.Cities) == 0 {
		return &parsererror.ValidationError{Source: "vocabulary", Reason: "city list is empty"}
	}
	if len(v.EmploymentTypes) == 0 {
		return &parsererror.ValidationError{Source: "vocabulary", Reason: "employment type list is empty"}
	}
	seen := make(map[string]struct{}, len(v.Cities))
	for _, c := range v.Cities {
		if _, dup := seen[c]; dup {
			return &parsererror.ValidationError{Source: "vocabulary", Reason: fmt.Sprintf("city %q listed twice", c)}
		}
		seen[c] = struct{}{}
	}
	for level, code := range v.GenericCodes {
		if !level.Valid() {
			return &parsererror.ValidationError{Source: "vocabulary", Reason: fmt.Sprintf("unknown education level %q", level)}
		}
		if !QualificationCodePattern.MatchString(code) || len(code) != 4 {
			return &parsererror.ValidationError{Source: "vocabulary", Reason: fmt.Sprintf("generic code %q for %s is not a qualification code", code, level)}
		}
	}
	return nil
}

// IsCity reports whether name is one of the vocabulary's cities.
func (v *Vocabulary) IsCity(name string) bool {
	_, ok := v.citySet[name]
	return ok
}

// GenericCode returns the generic qualification code of level, if any.
func (v *Vocabulary) GenericCode(level models.EducationLevel) (string, bool) {
	code, ok := v.GenericCodes[level]
	return code, ok
}

func cleanList(in []string) []string {
	out := make([]string, 0, len(in))
	for _, s := range in {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}
