package phpdoc

// Documented is implemented by declaration sites that may be preceded by a
// documentation block. DocText returns the raw block, or "" when only
// whitespace and code precede the declaration.
type Documented interface {
	DocText() string
}

// Associate returns the comment attached to site. A site without a
// documentation block yields an empty, non-nil Comment.
func Associate(site Documented) *Comment {
	if site == nil {
		return &Comment{}
	}
	if doc := Parse(site.DocText()); doc != nil {
		return doc
	}
	return &Comment{}
}
