package dialogue

import "strings"

// Input classification is deliberately keyword-based. The intake dialogue
// asks closed questions, so a small affirmative/negative vocabulary is more
// predictable than routing every turn through a model.

var affirmativeWords = map[string]bool{
	"yes": true, "y": true, "yeah": true, "yep": true, "yup": true,
	"sure": true, "ok": true, "okay": true, "definitely": true,
	"absolutely": true, "please": true,
}

var negativeWords = map[string]bool{
	"no": true, "n": true, "nope": true, "nah": true, "none": true,
	"skip": true, "pass": true,
}

var goBackPhrases = map[string]bool{
	"back": true, "go back": true, "undo": true, "previous": true,
}

// isAffirmative reports whether the input reads as a positive response.
func isAffirmative(input string) bool {
	return firstWordIn(input, affirmativeWords)
}

// isNegative reports whether the input reads as a decline/skip response.
func isNegative(input string) bool {
	return firstWordIn(input, negativeWords)
}

// isGoBack reports whether the input is the go-back sentinel.
func isGoBack(input string) bool {
	return goBackPhrases[strings.ToLower(strings.TrimSpace(input))]
}

func firstWordIn(input string, words map[string]bool) bool {
	norm := strings.ToLower(strings.TrimSpace(input))
	norm = strings.TrimRight(norm, ".,!")
	if words[norm] {
		return true
	}
	first, _, _ := strings.Cut(norm, " ")
	return words[strings.TrimRight(first, ".,!")]
}
