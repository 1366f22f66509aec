package query

var stopwords = map[string]struct{}{
	"a": {}, "an": {}, "and": {}, "are": {}, "as": {}, "at": {}, "be": {}, "by": {},
	"for": {}, "from": {}, "in": {}, "is": {}, "it": {}, "of": {}, "on": {}, "or": {},
	"that": {}, "the": {}, "to": {}, "was": {}, "what": {}, "when": {}, "where": {},
	"which": {}, "who": {}, "with": {}, "how": {}, "does": {}, "do": {}, "my": {},
	"i": {}, "can": {}, "under": {},
}

// IsStopword reports whether t is too common to carry meaning on its own.
func IsStopword(t string) bool {
	_, ok := stopwords[t]
	return ok
}
