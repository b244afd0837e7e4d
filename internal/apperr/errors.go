// Package apperr holds the typed errors shared across the pipeline.
// Callers discriminate with errors.As; expected per-item conditions are
// returned, never raised past a package boundary as a panic.
package apperr

// EmptyIndexError reports a cursor lookup against an index that has
// never been populated. This is distinct from "no cursor stored for
// this subscription yet" and is fatal to the calling harvest run.
type EmptyIndexError struct {
	Index string
}

func (e *EmptyIndexError) Error() string {
	return "index has no content: " + e.Index
}

func NewEmptyIndex(index string) *EmptyIndexError {
	return &EmptyIndexError{Index: index}
}

// NoRedirectError reports that resolving an identifier produced no
// redirect, meaning it does not point at reachable publisher content.
// It is a per-identifier failure, never fatal to a whole drain.
type NoRedirectError struct {
	DOI string
}

func (e *NoRedirectError) Error() string {
	return "doi did not redirect to publisher content: " + e.DOI
}

func NewNoRedirect(doi string) *NoRedirectError {
	return &NoRedirectError{DOI: doi}
}

// UnsupportedContentError reports that no extractor variant is
// registered for a subscription key. Permanent for that key until a
// variant is added.
type UnsupportedContentError struct {
	ISSN string
}

func (e *UnsupportedContentError) Error() string {
	return "no extractor registered for subscription: " + e.ISSN
}

func NewUnsupportedContent(issn string) *UnsupportedContentError {
	return &UnsupportedContentError{ISSN: issn}
}

// NotImplementedError marks an extractor variant that is registered but
// not built yet.
type NotImplementedError struct {
	Variant string
}

func (e *NotImplementedError) Error() string {
	return "extractor not implemented: " + e.Variant
}

func NewNotImplemented(variant string) *NotImplementedError {
	return &NotImplementedError{Variant: variant}
}
