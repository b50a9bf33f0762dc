// ABOUTME: Blob descriptor sub-properties and content difference types
// ABOUTME: Filename and digest changes are told apart from other changes

package model

// Blob descriptor sub-property names.
const (
	SubPropertyEncoding = "encoding"
	SubPropertyMimeType = "mime-type"
	SubPropertyFilename = "filename"
	SubPropertyDigest   = "digest"
)

// DifferenceType qualifies a content diff.
type DifferenceType string

const (
	// Different is the default: any change, or both filename and digest.
	Different DifferenceType = "different"
	// DifferentFilename means only the filename changed among filename and digest.
	DifferentFilename DifferenceType = "differentFilename"
	// DifferentDigest means only the digest changed among filename and digest.
	DifferentDigest DifferenceType = "differentDigest"
)

// ContentProperty is one side of a blob descriptor. Nil fields are absent.
type ContentProperty struct {
	Encoding *string `json:"encoding,omitempty" yaml:"encoding,omitempty"`
	MimeType *string `json:"mime-type,omitempty" yaml:"mime-type,omitempty"`
	Filename *string `json:"filename,omitempty" yaml:"filename,omitempty"`
	Digest   *string `json:"digest,omitempty" yaml:"digest,omitempty"`
}

// NewContentProperty builds a fully populated descriptor.
func NewContentProperty(encoding, mimeType, filename, digest string) ContentProperty {
	return ContentProperty{
		Encoding: Str(encoding),
		MimeType: Str(mimeType),
		Filename: Str(filename),
		Digest:   Str(digest),
	}
}

func (c *ContentProperty) field(name string) **string {
	switch name {
	case SubPropertyEncoding:
		return &c.Encoding
	case SubPropertyMimeType:
		return &c.MimeType
	case SubPropertyFilename:
		return &c.Filename
	case SubPropertyDigest:
		return &c.Digest
	}
	return nil
}

// SubProperty returns the value of a sub-property, or nil.
func (c *ContentProperty) SubProperty(name string) *string {
	if f := c.field(name); f != nil {
		return *f
	}
	return nil
}

// SetSubProperty sets a sub-property and reports whether the name is known.
// Unknown names are ignored.
func (c *ContentProperty) SetSubProperty(name string, value *string) bool {
	f := c.field(name)
	if f == nil {
		return false
	}
	*f = value
	return true
}

// IsEmpty reports whether no sub-property is set.
func (c ContentProperty) IsEmpty() bool {
	return c.Encoding == nil && c.MimeType == nil && c.Filename == nil && c.Digest == nil
}

// SubPropertyNames lists the known sub-properties in export order.
func SubPropertyNames() []string {
	return []string{SubPropertyEncoding, SubPropertyMimeType, SubPropertyFilename, SubPropertyDigest}
}
