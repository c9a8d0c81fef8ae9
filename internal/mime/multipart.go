// Package mime holds the compose-side MIME body model used when building
// outgoing messages. Parsing of received mail goes through go-message
// directly; this package only models the tree a reply is assembled from.
package mime

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/emersion/go-message"
)

const (
	Encoding7Bit = "7bit"
	Encoding8Bit = "8bit"

	headerContentTransferEncoding = "Content-Transfer-Encoding"
	headerContentType             = "Content-Type"
)

// Body is the content of a message part: either a TextBody leaf or a
// nested Multipart.
type Body interface {
	writeTo(mw *message.Writer) error
}

// TextBody is a leaf text part with charset and transfer-encoding
// attributes mirrored from its part header.
type TextBody struct {
	Text     string
	Charset  string
	Encoding string
}

func (b *TextBody) writeTo(mw *message.Writer) error {
	_, err := io.WriteString(mw, b.Text)
	return err
}

// Part couples a header with a body.
type Part struct {
	Header message.Header

	body   Body
	parent *Multipart
}

// NewPart creates a part with the given body. The caller populates the
// header; NewTextPart covers the common text case.
func NewPart(body Body) *Part {
	return &Part{body: body}
}

// NewTextPart creates a text part with its Content-Type header set.
func NewTextPart(contentType, charset, text string) *Part {
	p := &Part{body: &TextBody{Text: text, Charset: charset}}
	p.Header.SetContentType(contentType, map[string]string{"charset": charset})
	return p
}

// Body returns the part's content.
func (p *Part) Body() Body { return p.body }

// Encode serializes the part tree, letting go-message pick multipart
// boundaries and apply transfer encodings.
func (p *Part) Encode(w io.Writer) error {
	mw, err := message.CreateWriter(w, p.Header)
	if err != nil {
		return fmt.Errorf("writing part header: %w", err)
	}
	if p.body != nil {
		if err := p.body.writeTo(mw); err != nil {
			mw.Close()
			return err
		}
	}
	return mw.Close()
}

// Multipart is an ordered container of parts sharing a multipart content
// type.
type Multipart struct {
	contentType string
	parent      *Part
	parts       []*Part
}

// NewMultipart creates an empty container for the given multipart
// subtype (e.g. "alternative", "mixed").
func NewMultipart(subtype string) *Multipart {
	return &Multipart{contentType: "multipart/" + subtype}
}

// ContentType returns the container's multipart content type.
func (m *Multipart) ContentType() string { return m.contentType }

// Len returns the number of immediate child parts.
func (m *Multipart) Len() int { return len(m.parts) }

// Part returns the child at index i.
func (m *Multipart) Part(i int) *Part { return m.parts[i] }

// AddPart appends a child part.
func (m *Multipart) AddPart(p *Part) {
	m.parts = append(m.parts, p)
	p.parent = m
}

// InsertPart inserts a child part at index i.
func (m *Multipart) InsertPart(i int, p *Part) {
	m.parts = append(m.parts, nil)
	copy(m.parts[i+1:], m.parts[i:])
	m.parts[i] = p
	p.parent = m
}

// RemovePart removes the given child and reports whether it was present.
func (m *Multipart) RemovePart(p *Part) bool {
	for i, q := range m.parts {
		if q == p {
			m.RemovePartAt(i)
			return true
		}
	}
	return false
}

// RemovePartAt removes the child at index i.
func (m *Multipart) RemovePartAt(i int) {
	m.parts[i].parent = nil
	m.parts = append(m.parts[:i], m.parts[i+1:]...)
}

// Parent returns the part this container is the body of, if any.
func (m *Multipart) Parent() *Part { return m.parent }

// SetParent records the part this container is the body of.
func (m *Multipart) SetParent(p *Part) { m.parent = p }

// ErrIncompatibleEncoding is returned when a transfer encoding other than
// 7bit or 8bit is applied to a composite body.
var ErrIncompatibleEncoding = errors.New(
	"incompatible content-transfer-encoding applied to a composite body")

// SetEncoding applies a transfer encoding to the container's text parts.
// Only 7bit and 8bit are valid for a composite body. text/plain parts get
// the requested encoding; text/html parts are always forced to 8bit.
// Subparts carry their own encodings and are left alone otherwise.
func (m *Multipart) SetEncoding(encoding string) error {
	if !strings.EqualFold(encoding, Encoding7Bit) && !strings.EqualFold(encoding, Encoding8Bit) {
		return ErrIncompatibleEncoding
	}

	for _, part := range m.parts {
		text, ok := part.body.(*TextBody)
		if !ok {
			continue
		}

		contentType := part.Header.Get(headerContentType)
		switch {
		case strings.Contains(contentType, "text/plain"):
			part.Header.Set(headerContentTransferEncoding, encoding)
			text.Encoding = encoding
		case strings.Contains(contentType, "text/html"):
			part.Header.Set(headerContentTransferEncoding, Encoding8Bit)
			text.Encoding = Encoding8Bit
		}
	}
	return nil
}

// SetCharset applies a charset to the first part when it carries a text
// body. Containers with no parts are left unchanged.
func (m *Multipart) SetCharset(charset string) error {
	if len(m.parts) == 0 {
		return nil
	}

	part := m.parts[0]
	text, ok := part.body.(*TextBody)
	if !ok {
		return nil
	}

	mediaType, params, err := part.Header.ContentType()
	if err != nil {
		return fmt.Errorf("reading first part content type: %w", err)
	}
	if params == nil {
		params = make(map[string]string)
	}
	params["charset"] = charset
	part.Header.SetContentType(mediaType, params)
	text.Charset = charset
	return nil
}

func (m *Multipart) writeTo(mw *message.Writer) error {
	for _, part := range m.parts {
		pw, err := mw.CreatePart(part.Header)
		if err != nil {
			return fmt.Errorf("creating subpart: %w", err)
		}
		if part.body != nil {
			if err := part.body.writeTo(pw); err != nil {
				pw.Close()
				return err
			}
		}
		if err := pw.Close(); err != nil {
			return fmt.Errorf("closing subpart: %w", err)
		}
	}
	return nil
}

// NewMultipartPart wraps a Multipart in a Part whose header carries the
// container's content type, ready for serialization.
func NewMultipartPart(m *Multipart) *Part {
	p := &Part{body: m}
	p.Header.SetContentType(m.contentType, nil)
	m.parent = p
	return p
}
