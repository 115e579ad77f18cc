package score

import (
	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

// newNameCollator builds a pt-BR collator so accented names sort with their
// base letter instead of after "z". Collators buffer state internally and are
// not safe for concurrent use; callers create one per sort.
func newNameCollator() *collate.Collator {
	return collate.New(language.BrazilianPortuguese, collate.IgnoreCase)
}
