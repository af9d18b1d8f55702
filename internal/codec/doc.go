// Package codec converts document content to and from JSON, HTML, Markdown
// and plain text.
//
// JSON is the only lossless format: DecodeJSON(EncodeJSON(c)) returns
// content equal to c. The other formats keep text and as much structure as
// they can express.
//
// Decoders never return partially built content. Any failure is reported as
// an *Error wrapping ErrMalformed or ErrUnsupportedVersion.
package codec
