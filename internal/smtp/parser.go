package smtp

import (
	"io"
	"net/mail"
	"regexp"
	"strings"
	"time"

	"github.com/jhillyerd/enmime"
	"github.com/welldanyogia/webrana-voicemail-backend/internal/models"
	"github.com/welldanyogia/webrana-voicemail-backend/internal/validator"
)

// Fallback values for notifications that omit a field
const (
	DefaultToName   = "Voicemail"
	UnknownCaller   = "Unknown"
	CallerNumberKey = "X-Caller-Number"
)

var (
	// 10 or 11 digit North American numbers with the usual separators
	phonePattern = regexp.MustCompile(`(?:\+?1[\s.\-]?)?\(?\d{3}\)?[\s.\-]?\d{3}[\s.\-]?\d{4}`)
	scriptStyle  = regexp.MustCompile(`(?is)<script[^>]*>.*?</script>|<style[^>]*>.*?</style>`)
	htmlTag      = regexp.MustCompile(`<[^>]*>`)
	fromPattern  = regexp.MustCompile(`^(?:"?([^"<]*)"?\s*)?<?([^<>]+@[^<>]+)>?$`)
)

// ParsedEmail is a voicemail notification as delivered by a phone system
type ParsedEmail struct {
	SenderEmail  string
	SenderName   string
	ToName       string
	Subject      string
	CallerNumber string
	BodyText     string
	BodyHTML     string
	Date         time.Time
}

// ParseEmail parses a notification from an io.Reader
func ParseEmail(r io.Reader) (*ParsedEmail, error) {
	env, err := enmime.ReadEnvelope(r)
	if err != nil {
		return nil, err
	}

	parsed := &ParsedEmail{
		Subject:      strings.TrimSpace(env.GetHeader("Subject")),
		CallerNumber: strings.TrimSpace(env.GetHeader(CallerNumberKey)),
		BodyText:     env.Text,
		BodyHTML:     env.HTML,
	}

	if from, err := env.AddressList("From"); err == nil && len(from) > 0 {
		parsed.SenderName, parsed.SenderEmail = from[0].Name, from[0].Address
	} else {
		parsed.SenderName, parsed.SenderEmail = parseFromHeader(env.GetHeader("From"))
	}

	if to, err := env.AddressList("To"); err == nil && len(to) > 0 {
		parsed.ToName = strings.TrimSpace(to[0].Name)
	}

	if date, err := mail.ParseDate(env.GetHeader("Date")); err == nil {
		parsed.Date = date.UTC()
	}

	return parsed, nil
}

// VoicemailInput maps the notification onto a voicemail record.
// now stands in for a missing Date header.
func (p *ParsedEmail) VoicemailInput(takenBy string, now time.Time) models.VoicemailInput {
	fromName := strings.TrimSpace(p.SenderName)
	if fromName == "" {
		fromName = p.SenderEmail
	}

	toName := p.ToName
	if toName == "" {
		toName = DefaultToName
	}

	dateTime := p.Date
	if dateTime.IsZero() {
		dateTime = now.UTC()
	}

	return models.VoicemailInput{
		FromName:       validator.SanitizeString(fromName, validator.MaxNameLength),
		ToName:         validator.SanitizeString(toName, validator.MaxNameLength),
		PhoneNumber:    p.PhoneNumber(),
		MessageContent: validator.SanitizeMultiline(p.Message(), validator.MaxMessageLength),
		DateTime:       dateTime,
		TakenBy:        takenBy,
	}
}

// PhoneNumber returns the caller's number from the X-Caller-Number header,
// else the first phone-like run in the subject or body
func (p *ParsedEmail) PhoneNumber() string {
	if p.CallerNumber != "" {
		return validator.SanitizeString(p.CallerNumber, validator.MaxPhoneLength)
	}
	for _, s := range []string{p.Subject, p.BodyText, stripHTMLTags(p.BodyHTML)} {
		if m := phonePattern.FindString(s); m != "" {
			return strings.TrimSpace(m)
		}
	}
	return UnknownCaller
}

// Message returns the text body, else the stripped HTML body, else the subject
func (p *ParsedEmail) Message() string {
	if text := strings.TrimSpace(p.BodyText); text != "" {
		return text
	}
	if html := collapseWhitespace(stripHTMLTags(p.BodyHTML)); html != "" {
		return html
	}
	return p.Subject
}

// parseFromHeader extracts name and email from a From header that
// net/mail could not parse
func parseFromHeader(from string) (name, email string) {
	from = strings.TrimSpace(from)
	if from == "" {
		return "", ""
	}

	matches := fromPattern.FindStringSubmatch(from)
	if len(matches) >= 3 {
		name = strings.Trim(strings.TrimSpace(matches[1]), `"`)
		email = strings.TrimSpace(matches[2])
	} else {
		email = from
	}

	return name, email
}

func collapseWhitespace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// stripHTMLTags removes HTML tags from a string
func stripHTMLTags(html string) string {
	if html == "" {
		return ""
	}
	html = scriptStyle.ReplaceAllString(html, "")
	html = htmlTag.ReplaceAllString(html, " ")

	// Decode common HTML entities
	html = strings.ReplaceAll(html, "&nbsp;", " ")
	html = strings.ReplaceAll(html, "&lt;", "<")
	html = strings.ReplaceAll(html, "&gt;", ">")
	html = strings.ReplaceAll(html, "&quot;", `"`)
	html = strings.ReplaceAll(html, "&#39;", "'")
	html = strings.ReplaceAll(html, "&amp;", "&")

	return html
}
