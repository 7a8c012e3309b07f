package gmail

import (
	"encoding/base64"
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// attachment is one file carried by an outgoing message. Data holds the
// raw bytes, already decoded from the caller's base64.
type attachment struct {
	Filename string
	MimeType string
	Data     []byte
}

// outgoingMessage is the input to buildRFC822.
type outgoingMessage struct {
	To        []string
	Cc        []string
	Bcc       []string
	Subject   string
	TextBody  string
	HTMLBody  string
	InReplyTo string

	Attachments []attachment
}

// buildRFC822 renders the message as an RFC 822 string with CRLF line
// endings, ready for base64url wrapping into the API's raw field. The
// From header is omitted; Gmail fills in the authenticated sender.
func buildRFC822(m outgoingMessage) string {
	var sb strings.Builder
	writeHeader := func(name, value string) {
		if value != "" {
			sb.WriteString(name)
			sb.WriteString(": ")
			sb.WriteString(value)
			sb.WriteString("\r\n")
		}
	}

	writeHeader("To", strings.Join(m.To, ", "))
	writeHeader("Cc", strings.Join(m.Cc, ", "))
	writeHeader("Bcc", strings.Join(m.Bcc, ", "))
	writeHeader("Subject", encodeHeaderWord(m.Subject))
	if m.InReplyTo != "" {
		writeHeader("In-Reply-To", m.InReplyTo)
		writeHeader("References", m.InReplyTo)
	}
	writeHeader("MIME-Version", "1.0")

	switch {
	case len(m.Attachments) > 0:
		boundary := "mixed-" + uuid.NewString()
		writeHeader("Content-Type", fmt.Sprintf("multipart/mixed; boundary=%q", boundary))
		sb.WriteString("\r\n")

		fmt.Fprintf(&sb, "--%s\r\n", boundary)
		writeBodyPart(&sb, m.TextBody, m.HTMLBody)
		for _, a := range m.Attachments {
			writeAttachmentPart(&sb, boundary, a)
		}
		fmt.Fprintf(&sb, "--%s--\r\n", boundary)

	default:
		writeBodyPart(&sb, m.TextBody, m.HTMLBody)
	}

	return sb.String()
}

// writeBodyPart writes the text body, or a multipart/alternative pair when
// an HTML variant is present. Headers here are part headers when nested
// under multipart/mixed and top-level headers otherwise; the syntax is the
// same either way.
func writeBodyPart(sb *strings.Builder, textBody, htmlBody string) {
	if htmlBody == "" {
		sb.WriteString("Content-Type: text/plain; charset=\"UTF-8\"\r\n\r\n")
		sb.WriteString(textBody)
		sb.WriteString("\r\n")
		return
	}

	boundary := "alt-" + uuid.NewString()
	fmt.Fprintf(sb, "Content-Type: multipart/alternative; boundary=%q\r\n\r\n", boundary)
	fmt.Fprintf(sb, "--%s\r\nContent-Type: text/plain; charset=\"UTF-8\"\r\n\r\n%s\r\n",
		boundary, textBody)
	fmt.Fprintf(sb, "--%s\r\nContent-Type: text/html; charset=\"UTF-8\"\r\n\r\n%s\r\n",
		boundary, htmlBody)
	fmt.Fprintf(sb, "--%s--\r\n", boundary)
}

func writeAttachmentPart(sb *strings.Builder, boundary string, a attachment) {
	mimeType := a.MimeType
	if mimeType == "" {
		mimeType = "application/octet-stream"
	}
	fmt.Fprintf(sb, "--%s\r\n", boundary)
	fmt.Fprintf(sb, "Content-Type: %s; name=%q\r\n", mimeType, a.Filename)
	fmt.Fprintf(sb, "Content-Disposition: attachment; filename=%q\r\n", a.Filename)
	sb.WriteString("Content-Transfer-Encoding: base64\r\n\r\n")
	sb.WriteString(wrapBase64(a.Data))
	sb.WriteString("\r\n")
}

// encodeHeaderWord applies RFC 2047 B encoding when the value contains
// non-ASCII characters; plain ASCII passes through untouched.
func encodeHeaderWord(s string) string {
	ascii := true
	for i := 0; i < len(s); i++ {
		if s[i] > 127 {
			ascii = false
			break
		}
	}
	if ascii {
		return s
	}
	return "=?UTF-8?B?" + base64.StdEncoding.EncodeToString([]byte(s)) + "?="
}

// wrapBase64 encodes data as standard base64 folded at 76 columns.
func wrapBase64(data []byte) string {
	encoded := base64.StdEncoding.EncodeToString(data)
	var sb strings.Builder
	for len(encoded) > 76 {
		sb.WriteString(encoded[:76])
		sb.WriteString("\r\n")
		encoded = encoded[76:]
	}
	sb.WriteString(encoded)
	return sb.String()
}

// encodeRaw produces the API's raw field: unpadded base64url over the
// full RFC 822 bytes.
func encodeRaw(rfc822 string) string {
	return base64.RawURLEncoding.EncodeToString([]byte(rfc822))
}

// decodeBodyData decodes a Gmail body.data field, which is base64url with
// or without padding depending on the producing client.
func decodeBodyData(data string) ([]byte, error) {
	return base64.RawURLEncoding.DecodeString(strings.TrimRight(data, "="))
}
