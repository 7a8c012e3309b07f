package gmail

import (
	"strings"

	"github.com/tidwall/gjson"
)

// attachmentRef points at an attachment body stored separately by the API.
type attachmentRef struct {
	AttachmentID string
	Filename     string
	MimeType     string
}

// messageContent is the flattened view of a message's MIME tree.
type messageContent struct {
	PlainText   string
	HTML        string
	Attachments []attachmentRef
}

// flattenPayload walks the payload part tree depth-first, concatenating
// text parts and collecting attachment references.
func flattenPayload(payload gjson.Result) messageContent {
	var content messageContent
	var walk func(part gjson.Result)
	walk = func(part gjson.Result) {
		mimeType := part.Get("mimeType").Str

		if strings.HasPrefix(mimeType, "multipart/") {
			for _, child := range part.Get("parts").Array() {
				walk(child)
			}
			return
		}

		if id := part.Get("body.attachmentId").Str; id != "" {
			content.Attachments = append(content.Attachments, attachmentRef{
				AttachmentID: id,
				Filename:     part.Get("filename").Str,
				MimeType:     mimeType,
			})
			return
		}

		data := part.Get("body.data").Str
		if data == "" {
			return
		}
		decoded, err := decodeBodyData(data)
		if err != nil {
			return
		}
		switch mimeType {
		case "text/plain":
			content.PlainText += string(decoded)
		case "text/html":
			content.HTML += string(decoded)
		}
	}
	walk(payload)
	return content
}

// header returns the named header from a message payload, case-insensitively.
func header(payload gjson.Result, name string) string {
	for _, h := range payload.Get("headers").Array() {
		if strings.EqualFold(h.Get("name").Str, name) {
			return h.Get("value").Str
		}
	}
	return ""
}
