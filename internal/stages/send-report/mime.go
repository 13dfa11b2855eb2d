package sendreport

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"mime"
	"mime/multipart"
	"net/mail"
	"net/textproto"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	composedelivery "maturity-report/internal/stages/compose-delivery"
)

// base64 lines are wrapped at 76 characters.
const base64LineLength = 76

// NewMessageID returns an RFC 5322 message id on the sender's domain.
func NewMessageID(from string) string {
	domain := "localhost"
	if addr, err := mail.ParseAddress(from); err == nil {
		if at := strings.LastIndex(addr.Address, "@"); at >= 0 {
			domain = addr.Address[at+1:]
		}
	}
	return fmt.Sprintf("<%s@%s>", uuid.NewString(), domain)
}

// envelopeAddress strips the display name from an address header value.
func envelopeAddress(value string) (string, error) {
	addr, err := mail.ParseAddress(value)
	if err != nil {
		return "", fmt.Errorf("invalid address %q: %w", value, err)
	}
	return addr.Address, nil
}

// formatAddress parses an address header value and re-serializes it, so
// only a single well formed address reaches the header.
func formatAddress(field, value string) (string, error) {
	addr, err := mail.ParseAddress(value)
	if err != nil {
		return "", fmt.Errorf("invalid %s address %q: %w", field, value, err)
	}
	return addr.String(), nil
}

// checkHeader rejects names and values that would end the header line.
func checkHeader(name, value string) error {
	if strings.ContainsAny(name, "\r\n:") || strings.ContainsAny(value, "\r\n") {
		return fmt.Errorf("header %q contains a line break", name)
	}
	return nil
}

// BuildMIME renders msg as a multipart/mixed message with a text/html
// alternative part and base64 attachments.
func BuildMIME(msg *composedelivery.Message, messageID string, date time.Time) ([]byte, error) {
	from, err := formatAddress("From", msg.From)
	if err != nil {
		return nil, err
	}
	to, err := formatAddress("To", msg.To)
	if err != nil {
		return nil, err
	}
	var replyTo string
	if msg.ReplyTo != "" {
		if replyTo, err = formatAddress("Reply-To", msg.ReplyTo); err != nil {
			return nil, err
		}
	}
	if err := checkHeader("Message-ID", messageID); err != nil {
		return nil, err
	}
	for k, v := range msg.Headers {
		if err := checkHeader(k, v); err != nil {
			return nil, err
		}
	}

	var buf bytes.Buffer

	writeHeader := func(k, v string) {
		fmt.Fprintf(&buf, "%s: %s\r\n", k, v)
	}

	writeHeader("From", from)
	writeHeader("To", to)
	if replyTo != "" {
		writeHeader("Reply-To", replyTo)
	}
	writeHeader("Subject", mime.QEncoding.Encode("utf-8", msg.Subject))
	writeHeader("Date", date.Format(time.RFC1123Z))
	writeHeader("Message-ID", messageID)
	writeHeader("MIME-Version", "1.0")

	for _, k := range sortedKeys(msg.Headers) {
		writeHeader(textproto.CanonicalMIMEHeaderKey(k), msg.Headers[k])
	}
	if len(msg.Variables) > 0 {
		vars, err := json.Marshal(msg.Variables)
		if err != nil {
			return nil, fmt.Errorf("encode variables: %w", err)
		}
		writeHeader(composedelivery.HeaderVariables, string(vars))
	}

	mixed := multipart.NewWriter(&buf)
	writeHeader("Content-Type", "multipart/mixed; boundary="+mixed.Boundary())
	buf.WriteString("\r\n")

	var altBody bytes.Buffer
	alt := multipart.NewWriter(&altBody)
	if msg.Text != "" {
		if err := writeBodyPart(alt, "text/plain; charset=UTF-8", msg.Text); err != nil {
			return nil, err
		}
	}
	if err := writeBodyPart(alt, "text/html; charset=UTF-8", msg.HTML); err != nil {
		return nil, err
	}
	if err := alt.Close(); err != nil {
		return nil, err
	}

	altHeader := textproto.MIMEHeader{}
	altHeader.Set("Content-Type", "multipart/alternative; boundary="+alt.Boundary())
	altPart, err := mixed.CreatePart(altHeader)
	if err != nil {
		return nil, err
	}
	if _, err := altPart.Write(altBody.Bytes()); err != nil {
		return nil, err
	}

	for _, att := range msg.Attachments {
		h := textproto.MIMEHeader{}
		h.Set("Content-Type", fmt.Sprintf("%s; name=%q", att.ContentType, att.Filename))
		h.Set("Content-Transfer-Encoding", "base64")
		h.Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", att.Filename))
		part, err := mixed.CreatePart(h)
		if err != nil {
			return nil, err
		}
		if err := writeBase64(part, att.Data); err != nil {
			return nil, fmt.Errorf("encode attachment %s: %w", att.Filename, err)
		}
	}

	if err := mixed.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func writeBodyPart(w *multipart.Writer, contentType, body string) error {
	h := textproto.MIMEHeader{}
	h.Set("Content-Type", contentType)
	h.Set("Content-Transfer-Encoding", "base64")
	part, err := w.CreatePart(h)
	if err != nil {
		return err
	}
	return writeBase64(part, []byte(body))
}

func writeBase64(w io.Writer, data []byte) error {
	encoded := base64.StdEncoding.EncodeToString(data)
	for len(encoded) > base64LineLength {
		if _, err := fmt.Fprintf(w, "%s\r\n", encoded[:base64LineLength]); err != nil {
			return err
		}
		encoded = encoded[base64LineLength:]
	}
	_, err := fmt.Fprintf(w, "%s\r\n", encoded)
	return err
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
