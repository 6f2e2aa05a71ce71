package usecase

import (
	"strings"
	"unicode/utf8"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// placeLowerWords stay lower-case unless they open the place name
var placeLowerWords = map[string]struct{}{
	"di": {}, "del": {}, "della": {}, "degli": {}, "dei": {}, "de": {}, "da": {}, "dal": {},
	"dalla": {}, "dai": {}, "dagli": {}, "su": {}, "sul": {}, "sulla": {}, "sui": {},
	"sugli": {}, "a": {}, "al": {}, "alla": {}, "ai": {}, "agli": {}, "in": {}, "nel": {},
	"nella": {}, "nei": {}, "negli": {}, "per": {}, "con": {}, "e": {}, "il": {}, "lo": {},
	"la": {}, "gli": {}, "le": {}, "d'": {}, "l'": {}, "de'": {}, "val": {}, "meno": {},
	"all'": {},
}

// elidedArticles keep their lower-case form before an apostrophe, e.g. "Sant'Angelo dell'Abate"
var elidedArticles = map[string]struct{}{
	"d'": {}, "l'": {}, "all'": {}, "dell'": {}, "nell'": {},
}

// Casers hold state, so a new one is built per call
func toLower(s string) string {
	return cases.Lower(language.Italian).String(s)
}

func toUpper(s string) string {
	return cases.Upper(language.Italian).String(s)
}

// capitalize upper-cases the first letter and lower-cases the rest
func capitalize(word string) string {
	if word == "" {
		return word
	}
	_, size := utf8.DecodeRuneInString(word)
	return toUpper(word[:size]) + toLower(word[size:])
}

// FormatPlaceName capitalizes an Italian place name, keeping prepositions,
// articles and elided articles lower-case when they are not the first word.
func FormatPlaceName(place string) string {
	words := strings.Fields(toLower(place))
	out := make([]string, 0, len(words))

	for i, word := range words {
		if _, ok := placeLowerWords[word]; ok && i > 0 {
			out = append(out, word)
			continue
		}

		if idx := strings.Index(word, "'"); idx >= 0 {
			prefix, suffix := word[:idx+1], word[idx+1:]
			if _, ok := elidedArticles[prefix]; ok && i > 0 {
				out = append(out, prefix+capitalize(suffix))
			} else {
				out = append(out, capitalize(prefix)+capitalize(suffix))
			}
			continue
		}

		out = append(out, capitalize(word))
	}

	return strings.Join(out, " ")
}

// FormatPersonName capitalizes each word of a name. A word marked with a
// leading '%' is kept lower-case without the marker ("%de" -> "de").
func FormatPersonName(name string) string {
	words := strings.Fields(name)
	out := make([]string, 0, len(words))

	for _, word := range words {
		if rest, ok := strings.CutPrefix(word, "%"); ok {
			out = append(out, toLower(rest))
			continue
		}
		out = append(out, capitalize(word))
	}

	return strings.Join(out, " ")
}
