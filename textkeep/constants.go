package textkeep

const (
	// DefaultTokenizer is the fts5 tokenizer used when Options leaves
	// it unset.
	DefaultTokenizer = "unicode61"

	// DefaultSearchLimit is the page size applied when a search does
	// not specify one.
	DefaultSearchLimit = 50
)
