package alphabet

import (
	"fmt"
	"strings"
)

// MappingVersion identifies the revision of the mapping tables below. It is
// embedded in every prompt so results can be traced to the table they used.
const MappingVersion = "cta-map/2"

// Language is a transliteration source language.
type Language string

const (
	Turkish          Language = "Turkish"
	UzbekLatin       Language = "Uzbek Latin"
	KazakhCyrillic   Language = "Kazakh Cyrillic"
	AzerbaijaniLatin Language = "Azerbaijani Latin"
	TurkmenLatin     Language = "Turkmen Latin"
	KyrgyzCyrillic   Language = "Kyrgyz Cyrillic"
)

// Languages lists the supported source languages in display order.
var Languages = []Language{Turkish, UzbekLatin, KazakhCyrillic, AzerbaijaniLatin, TurkmenLatin, KyrgyzCyrillic}

var languageAliases = map[string]Language{
	"tr":                Turkish,
	"turkish":           Turkish,
	"uz":                UzbekLatin,
	"uzbek":             UzbekLatin,
	"uzbek latin":       UzbekLatin,
	"kk":                KazakhCyrillic,
	"kazakh":            KazakhCyrillic,
	"kazakh cyrillic":   KazakhCyrillic,
	"az":                AzerbaijaniLatin,
	"azerbaijani":       AzerbaijaniLatin,
	"azerbaijani latin": AzerbaijaniLatin,
	"tk":                TurkmenLatin,
	"turkmen":           TurkmenLatin,
	"turkmen latin":     TurkmenLatin,
	"ky":                KyrgyzCyrillic,
	"kyrgyz":            KyrgyzCyrillic,
	"kyrgyz cyrillic":   KyrgyzCyrillic,
}

// ParseLanguage resolves a language display name or short code
// (case-insensitive) to a supported source language.
func ParseLanguage(s string) (Language, error) {
	key := strings.ToLower(strings.Join(strings.Fields(s), " "))
	key = strings.ReplaceAll(key, "_", " ")
	if l, ok := languageAliases[key]; ok {
		return l, nil
	}
	return "", fmt.Errorf("unsupported source language %q (supported: %s)", s, languageList())
}

func languageList() string {
	names := make([]string, len(Languages))
	for i, l := range Languages {
		names[i] = string(l)
	}
	return strings.Join(names, ", ")
}

// Pair maps one source-alphabet sequence to its CTA form. An empty To means
// the source symbol is dropped.
type Pair struct {
	From string
	To   string
}

// Mapping returns the ordered mapping table for a source language.
func Mapping(l Language) []Pair {
	return mappings[l]
}

// FormatMapping renders a table as "a→b" pairs, lowercase entries only, for
// embedding in prompt text.
func FormatMapping(pairs []Pair) string {
	parts := make([]string, 0, len(pairs))
	for _, p := range pairs {
		if strings.ToLower(p.From) != p.From {
			continue
		}
		to := p.To
		if to == "" {
			to = "∅"
		}
		parts = append(parts, p.From+"→"+to)
	}
	return strings.Join(parts, ", ")
}

// cyrillicCommon is shared by the Kazakh and Kyrgyz tables.
var cyrillicCommon = []Pair{
	{"а", "a"}, {"А", "A"}, {"б", "b"}, {"Б", "B"}, {"в", "v"}, {"В", "V"},
	{"г", "g"}, {"Г", "G"}, {"д", "d"}, {"Д", "D"}, {"е", "e"}, {"Е", "E"},
	{"ж", "j"}, {"Ж", "J"}, {"з", "z"}, {"З", "Z"}, {"й", "y"}, {"Й", "Y"},
	{"к", "k"}, {"К", "K"}, {"л", "l"}, {"Л", "L"}, {"м", "m"}, {"М", "M"},
	{"н", "n"}, {"Н", "N"}, {"о", "o"}, {"О", "O"}, {"п", "p"}, {"П", "P"},
	{"р", "r"}, {"Р", "R"}, {"с", "s"}, {"С", "S"}, {"т", "t"}, {"Т", "T"},
	{"у", "u"}, {"У", "U"}, {"ф", "f"}, {"Ф", "F"}, {"х", "x"}, {"Х", "X"},
	{"ц", "ts"}, {"Ц", "Ts"}, {"ч", "ç"}, {"Ч", "Ç"}, {"ш", "ş"}, {"Ш", "Ş"},
	{"щ", "şç"}, {"Щ", "Şç"}, {"ъ", ""}, {"Ъ", ""}, {"ы", "ı"}, {"Ы", "I"},
	{"ь", ""}, {"Ь", ""}, {"э", "e"}, {"Э", "E"}, {"ю", "yu"}, {"Ю", "Yu"},
	{"я", "ya"}, {"Я", "Ya"},
}

func join(tables ...[]Pair) []Pair {
	var out []Pair
	for _, t := range tables {
		out = append(out, t...)
	}
	return out
}

var mappings = map[Language][]Pair{
	// Turkish is the CTA base; the identities document what is preserved.
	Turkish: {
		{"ğ", "ğ"}, {"Ğ", "Ğ"}, {"ç", "ç"}, {"Ç", "Ç"}, {"ş", "ş"}, {"Ş", "Ş"},
		{"ı", "ı"}, {"I", "I"}, {"i", "i"}, {"İ", "İ"}, {"ö", "ö"}, {"Ö", "Ö"},
		{"ü", "ü"}, {"Ü", "Ü"},
	},
	UzbekLatin: {
		{"sh", "ş"}, {"Sh", "Ş"}, {"SH", "Ş"}, {"ch", "ç"}, {"Ch", "Ç"}, {"CH", "Ç"},
		{"o'", "ò"}, {"O'", "Ò"}, {"g'", "ğ"}, {"G'", "Ğ"}, {"ng", "ñ"}, {"Ng", "Ñ"},
		{"NG", "Ñ"}, {"q", "q"}, {"Q", "Q"}, {"x", "x"}, {"X", "X"},
	},
	KazakhCyrillic: join([]Pair{
		{"қ", "q"}, {"Қ", "Q"}, {"ғ", "ğ"}, {"Ғ", "Ğ"}, {"ң", "ñ"}, {"Ң", "Ñ"},
		{"ә", "ä"}, {"Ә", "Ä"}, {"ө", "ö"}, {"Ө", "Ö"}, {"ү", "ü"}, {"Ү", "Ü"},
		{"і", "i"}, {"І", "I"},
	}, cyrillicCommon),
	AzerbaijaniLatin: {
		{"ə", "ä"}, {"Ə", "Ä"}, {"ğ", "ğ"}, {"Ğ", "Ğ"}, {"ı", "ı"}, {"I", "I"},
		{"ö", "ö"}, {"Ö", "Ö"}, {"ü", "ü"}, {"Ü", "Ü"}, {"ç", "ç"}, {"Ç", "Ç"},
		{"ş", "ş"}, {"Ş", "Ş"}, {"x", "x"}, {"X", "X"},
	},
	TurkmenLatin: {
		{"ä", "ä"}, {"Ä", "Ä"}, {"ç", "ç"}, {"Ç", "Ç"}, {"ž", "j"}, {"Ž", "J"},
		{"ň", "ñ"}, {"Ň", "Ñ"}, {"ö", "ö"}, {"Ö", "Ö"}, {"ş", "ş"}, {"Ş", "Ş"},
		{"ü", "ü"}, {"Ü", "Ü"}, {"ý", "y"}, {"Ý", "Y"},
	},
	KyrgyzCyrillic: join([]Pair{
		{"ё", "yo"}, {"Ё", "Yo"}, {"и", "i"}, {"И", "I"}, {"ң", "ñ"}, {"Ң", "Ñ"},
		{"ө", "ö"}, {"Ө", "Ö"}, {"ү", "ü"}, {"Ү", "Ü"},
	}, cyrillicCommon),
}

// CognateLanguages maps the short codes accepted in cognate candidate input
// to their display names.
var CognateLanguages = map[string]string{
	"tr":  "Turkish",
	"az":  "Azerbaijani",
	"uz":  "Uzbek",
	"kk":  "Kazakh",
	"ky":  "Kyrgyz",
	"tk":  "Turkmen",
	"tt":  "Tatar",
	"ba":  "Bashkir",
	"cv":  "Chuvash",
	"sah": "Sakha",
	"ug":  "Uyghur",
}

// CognateLanguageName returns the display name for a code, or the
// upper-cased code itself when it is not one of the known languages.
func CognateLanguageName(code string) string {
	if name, ok := CognateLanguages[code]; ok {
		return name
	}
	return strings.ToUpper(code)
}
