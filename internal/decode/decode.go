// Package decode turns raw RFC 5322 messages into decoded header fields,
// a cleaned plain-text body and attachment metadata.
package decode

import (
	"bufio"
	"bytes"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"mime"
	"mime/quotedprintable"
	"strings"

	"github.com/emersion/go-message"
	"github.com/emersion/go-message/mail"
	"github.com/emersion/go-message/textproto"

	"github.com/nhle/mailscore/internal/model"
)

// BodyErrorMarker replaces a body whose selected part could not be read.
const BodyErrorMarker = "Error decoding email body"

// maxDepth bounds multipart nesting.
const maxDepth = 32

// Issue records a field that was replaced by a safe default while decoding.
type Issue struct {
	// Field names the affected field (subject, from, to, body, attachment).
	Field string

	// Value is the raw text that could not be decoded, when there is one.
	Value string

	Err error
}

func (i Issue) String() string {
	return fmt.Sprintf("%s: %v", i.Field, i.Err)
}

// Decoded holds the decoded parts of one message.
type Decoded struct {
	Subject    string
	From       string
	To         string
	MessageID  string
	InReplyTo  string
	References []string

	// DateHeader is the raw Date header, resolved later by the caller.
	DateHeader string

	Body        string
	Attachments []model.Attachment

	// Issues lists every field that fell back to a default.
	Issues []Issue
}

// HTMLConverter renders an HTML body as lightweight markup text.
type HTMLConverter func(html string) (string, error)

// Option configures a Decoder.
type Option func(*Decoder)

// WithHTMLConverter replaces the HTML to text conversion.
func WithHTMLConverter(fn HTMLConverter) Option {
	return func(d *Decoder) { d.html = fn }
}

// Decoder decodes raw messages. It holds no per-message state and is safe
// for concurrent use.
type Decoder struct {
	html HTMLConverter
}

// NewDecoder creates a Decoder that converts HTML bodies to markdown.
func NewDecoder(opts ...Option) *Decoder {
	d := &Decoder{html: HTMLToText}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// walkState collects body candidates and attachments during the walk.
type walkState struct {
	plain     string
	havePlain bool
	html      string
	haveHTML  bool
	attach    []model.Attachment
	issues    []Issue
}

// Decode parses raw. It returns an error only when the header block cannot
// be read at all; every other problem is recorded in Decoded.Issues.
func (d *Decoder) Decode(raw []byte) (*Decoded, error) {
	br := bufio.NewReader(bytes.NewReader(raw))
	h, err := textproto.ReadHeader(br)
	if err != nil {
		return nil, fmt.Errorf("reading message header: %w", err)
	}

	out := &Decoded{
		MessageID:  unfold(h.Get("Message-Id")),
		InReplyTo:  unfold(h.Get("In-Reply-To")),
		References: strings.Fields(unfold(h.Get("References"))),
		DateHeader: unfold(h.Get("Date")),
	}
	out.Subject = out.header("subject", h.Get("Subject"))
	out.From = out.header("from", h.Get("From"))
	out.To = out.header("to", h.Get("To"))

	st := &walkState{}
	d.walk(h, br, 0, st)

	out.Attachments = st.attach
	out.Issues = append(out.Issues, st.issues...)

	switch {
	case st.havePlain:
		out.Body = st.plain
	case st.haveHTML:
		text, err := d.html(st.html)
		if err != nil {
			out.Issues = append(out.Issues, Issue{Field: "body", Err: fmt.Errorf("converting html: %w", err)})
			break
		}
		out.Body = CleanText(text)
	}

	return out, nil
}

func (out *Decoded) header(field, raw string) string {
	v, err := Header(raw)
	if err != nil {
		out.Issues = append(out.Issues, Issue{Field: field, Value: raw, Err: err})
	}
	return v
}

// walk visits the MIME tree depth first, in document order.
func (d *Decoder) walk(h textproto.Header, body io.Reader, depth int, st *walkState) {
	mediaType, params := contentType(h)

	if strings.HasPrefix(mediaType, "multipart/") && params["boundary"] != "" {
		if depth >= maxDepth {
			st.issues = append(st.issues, Issue{Field: "body", Err: errors.New("multipart nesting too deep")})
			return
		}
		mr := textproto.NewMultipartReader(body, params["boundary"])
		for {
			p, err := mr.NextPart()
			if err == io.EOF {
				return
			}
			if err != nil {
				st.issues = append(st.issues, Issue{Field: "body", Err: fmt.Errorf("reading multipart: %w", err)})
				return
			}
			d.walk(p.Header, p, depth+1, st)
		}
	}

	switch {
	case mediaType == "text/plain":
		if st.havePlain {
			return
		}
		data, err := readPart(h, body)
		if err != nil {
			st.issues = append(st.issues, Issue{Field: "body", Err: err})
			st.plain, st.havePlain = BodyErrorMarker, true
			return
		}
		if text := CleanText(Text(data, params["charset"])); text != "" {
			st.plain, st.havePlain = text, true
		}

	case mediaType == "text/html":
		if st.haveHTML {
			return
		}
		data, err := readPart(h, body)
		if err != nil {
			st.issues = append(st.issues, Issue{Field: "body", Err: err})
			return
		}
		st.html, st.haveHTML = Text(data, params["charset"]), true

	case strings.HasPrefix(mediaType, "application/"):
		ah := mail.AttachmentHeader{Header: message.Header{Header: h}}
		filename, err := ah.Filename()
		if err != nil {
			st.issues = append(st.issues, Issue{Field: "attachment", Value: filename, Err: err})
		}
		if filename == "" {
			return
		}
		data, err := readPart(h, body)
		if err != nil {
			st.issues = append(st.issues, Issue{Field: "attachment", Value: filename, Err: err})
		}
		st.attach = append(st.attach, model.Attachment{
			Filename:    filename,
			ContentType: mediaType,
			SizeBytes:   len(data),
		})
	}
}

// contentType parses the Content-Type header. A missing or unparseable
// value means text/plain.
func contentType(h textproto.Header) (string, map[string]string) {
	v := h.Get("Content-Type")
	if v == "" {
		return "text/plain", nil
	}
	mediaType, params, err := mime.ParseMediaType(v)
	if err != nil && !errors.Is(err, mime.ErrInvalidMediaParameter) {
		return "text/plain", nil
	}
	return strings.ToLower(mediaType), params
}

// readPart reads a leaf part and undoes its transfer encoding. A payload
// whose encoding is damaged is returned as read.
func readPart(h textproto.Header, body io.Reader) ([]byte, error) {
	raw, err := io.ReadAll(body)
	if err != nil {
		return nil, fmt.Errorf("reading part: %w", err)
	}

	var r io.Reader
	switch strings.ToLower(strings.TrimSpace(h.Get("Content-Transfer-Encoding"))) {
	case "base64":
		r = base64.NewDecoder(base64.StdEncoding, bytes.NewReader(bytes.TrimSpace(raw)))
	case "quoted-printable":
		r = quotedprintable.NewReader(bytes.NewReader(raw))
	default:
		return raw, nil
	}

	decoded, err := io.ReadAll(r)
	if err != nil {
		return raw, nil
	}
	return decoded, nil
}
