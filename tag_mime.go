package cbor

import (
	"io"
	"net/mail"
	"strings"
)

// MIMEMessage is the decoded form of tag 36: a parsed MIME message, header
// plus fully-read body (spec.md §4.4).
type MIMEMessage struct {
	Header mail.Header
	Body   string
}

// decodeMIME handles tag 36.
func decodeMIME(child interface{}) (interface{}, error) {
	s, ok := child.(string)
	if !ok {
		return nil, ErrTagPayloadMismatch
	}
	msg, err := mail.ReadMessage(strings.NewReader(s))
	if err != nil {
		return nil, NewCborError(err, 0, "invalid tag-36 MIME message")
	}
	body, err := io.ReadAll(msg.Body)
	if err != nil {
		return nil, NewCborError(err, 0, "invalid tag-36 MIME message body")
	}
	return MIMEMessage{Header: msg.Header, Body: string(body)}, nil
}
