package smtp

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ==================== ParseEmail Tests ====================

// TestParseEmail_PhoneSystemNotification tests a typical PBX notification
func TestParseEmail_PhoneSystemNotification(t *testing.T) {
	// Arrange
	emailContent := "From: \"Alice Smith\" <alice@pbx.example.com>\r\n" +
		"To: \"Front Desk\" <6f1c1c9e-4a7e-4d0b-9b8e-0f6f0b1a2c3d@voicemail.local>\r\n" +
		"Subject: New voicemail from (555) 123-4567\r\n" +
		"Date: Fri, 01 Mar 2024 09:30:00 -0500\r\n" +
		"X-Caller-Number: 555.123.4567\r\n" +
		"Content-Type: text/plain; charset=utf-8\r\n" +
		"\r\n" +
		"Please call me back about the invoice.\r\n"

	// Act
	parsed, err := ParseEmail(strings.NewReader(emailContent))

	// Assert
	require.NoError(t, err)
	assert.Equal(t, "Alice Smith", parsed.SenderName)
	assert.Equal(t, "alice@pbx.example.com", parsed.SenderEmail)
	assert.Equal(t, "Front Desk", parsed.ToName)
	assert.Equal(t, "555.123.4567", parsed.CallerNumber)
	assert.Equal(t, "New voicemail from (555) 123-4567", parsed.Subject)
	assert.Contains(t, parsed.BodyText, "Please call me back")
	assert.True(t, parsed.Date.Equal(time.Date(2024, 3, 1, 14, 30, 0, 0, time.UTC)))
	assert.Equal(t, time.UTC, parsed.Date.Location())
}

// TestParseEmail_MissingHeaders tests that absent headers leave zero values
func TestParseEmail_MissingHeaders(t *testing.T) {
	emailContent := "From: pbx@example.com\r\n" +
		"Content-Type: text/plain\r\n" +
		"\r\n" +
		"hello\r\n"

	parsed, err := ParseEmail(strings.NewReader(emailContent))

	require.NoError(t, err)
	assert.Empty(t, parsed.SenderName)
	assert.Equal(t, "pbx@example.com", parsed.SenderEmail)
	assert.Empty(t, parsed.ToName)
	assert.Empty(t, parsed.CallerNumber)
	assert.True(t, parsed.Date.IsZero())
}

// TestParseEmail_MultipartAlternative tests that both bodies are captured
func TestParseEmail_MultipartAlternative(t *testing.T) {
	emailContent := "From: pbx@example.com\r\n" +
		"Subject: Voicemail\r\n" +
		"MIME-Version: 1.0\r\n" +
		"Content-Type: multipart/alternative; boundary=\"b1\"\r\n" +
		"\r\n" +
		"--b1\r\n" +
		"Content-Type: text/plain; charset=utf-8\r\n" +
		"\r\n" +
		"Plain body\r\n" +
		"--b1\r\n" +
		"Content-Type: text/html; charset=utf-8\r\n" +
		"\r\n" +
		"<p>HTML body</p>\r\n" +
		"--b1--\r\n"

	parsed, err := ParseEmail(strings.NewReader(emailContent))

	require.NoError(t, err)
	assert.Contains(t, parsed.BodyText, "Plain body")
	assert.Contains(t, parsed.BodyHTML, "<p>HTML body</p>")
}

// ==================== Field Mapping Tests ====================

func TestParsedEmail_PhoneNumber(t *testing.T) {
	tests := []struct {
		name     string
		email    ParsedEmail
		expected string
	}{
		{"header wins", ParsedEmail{CallerNumber: "+1 555 000 1111", Subject: "from 555-123-4567"}, "+1 555 000 1111"},
		{"subject", ParsedEmail{Subject: "Voicemail from (555) 123-4567"}, "(555) 123-4567"},
		{"body", ParsedEmail{Subject: "Voicemail", BodyText: "Caller: 555.987.6543\nDuration: 0:42"}, "555.987.6543"},
		{"eleven digits", ParsedEmail{Subject: "Call from +1-555-123-4567"}, "+1-555-123-4567"},
		{"html body", ParsedEmail{BodyHTML: "<b>Caller</b> <span>5551234567</span>"}, "5551234567"},
		{"nothing found", ParsedEmail{Subject: "Voicemail", BodyText: "Extension 42"}, UnknownCaller},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.email.PhoneNumber())
		})
	}
}

func TestParsedEmail_Message(t *testing.T) {
	tests := []struct {
		name     string
		email    ParsedEmail
		expected string
	}{
		{"text body", ParsedEmail{BodyText: "  Call me back \n", BodyHTML: "<p>ignored</p>", Subject: "s"}, "Call me back"},
		{"stripped html", ParsedEmail{BodyHTML: "<style>p{}</style><p>Call &amp; confirm</p>\n<p>today</p>", Subject: "s"}, "Call & confirm today"},
		{"subject", ParsedEmail{Subject: "Voicemail from front desk"}, "Voicemail from front desk"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.email.Message())
		})
	}
}

// TestParsedEmail_VoicemailInput tests the full mapping onto a voicemail
func TestParsedEmail_VoicemailInput(t *testing.T) {
	// Arrange
	date := time.Date(2024, 3, 1, 14, 30, 0, 0, time.UTC)
	parsed := &ParsedEmail{
		SenderName:   "Alice Smith",
		SenderEmail:  "alice@pbx.example.com",
		ToName:       "Front Desk",
		CallerNumber: "555-123-4567",
		BodyText:     "Call back",
		Date:         date,
	}

	// Act
	input := parsed.VoicemailInput("Voicemail System", time.Now())

	// Assert
	assert.Equal(t, "Alice Smith", input.FromName)
	assert.Equal(t, "Front Desk", input.ToName)
	assert.Equal(t, "555-123-4567", input.PhoneNumber)
	assert.Equal(t, "Call back", input.MessageContent)
	assert.Equal(t, date, input.DateTime)
	assert.Equal(t, "Voicemail System", input.TakenBy)
}

// TestParsedEmail_VoicemailInputFallbacks tests defaults for missing fields
func TestParsedEmail_VoicemailInputFallbacks(t *testing.T) {
	now := time.Date(2024, 3, 2, 8, 0, 0, 0, time.FixedZone("EST", -5*3600))
	parsed := &ParsedEmail{
		SenderEmail: "pbx@example.com",
		Subject:     "Voicemail",
	}

	input := parsed.VoicemailInput("Front Desk", now)

	assert.Equal(t, "pbx@example.com", input.FromName)
	assert.Equal(t, DefaultToName, input.ToName)
	assert.Equal(t, UnknownCaller, input.PhoneNumber)
	assert.Equal(t, "Voicemail", input.MessageContent)
	assert.True(t, input.DateTime.Equal(now))
	assert.Equal(t, time.UTC, input.DateTime.Location())
}

// TestParsedEmail_VoicemailInputSanitizes tests control characters and length limits
func TestParsedEmail_VoicemailInputSanitizes(t *testing.T) {
	parsed := &ParsedEmail{
		SenderName: "Alice\x00 Smith" + strings.Repeat("x", 200),
		BodyText:   strings.Repeat("a", 6000),
		Subject:    "s",
	}

	input := parsed.VoicemailInput("Front Desk", time.Now())

	assert.NotContains(t, input.FromName, "\x00")
	assert.LessOrEqual(t, len([]rune(input.FromName)), 100)
	assert.LessOrEqual(t, len([]rune(input.MessageContent)), 5000)
}

// ==================== Helper Tests ====================

func TestParseFromHeader(t *testing.T) {
	tests := []struct {
		input         string
		expectedName  string
		expectedEmail string
	}{
		{`"John Doe" <john@example.com>`, "John Doe", "john@example.com"},
		{`John Doe <john@example.com>`, "John Doe", "john@example.com"},
		{`<john@example.com>`, "", "john@example.com"},
		{`john@example.com`, "", "john@example.com"},
		{``, "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			name, email := parseFromHeader(tt.input)
			assert.Equal(t, tt.expectedName, name)
			assert.Equal(t, tt.expectedEmail, email)
		})
	}
}

func TestStripHTMLTags(t *testing.T) {
	html := `<html><head><script>alert("x")</script><style>p{color:red}</style></head>` +
		`<body><p>Hello &lt;World&gt; &amp; &quot;friends&quot;</p></body></html>`

	result := collapseWhitespace(stripHTMLTags(html))

	assert.Equal(t, `Hello <World> & "friends"`, result)
}

func TestParseEmailAddress(t *testing.T) {
	tests := []struct {
		input     string
		localPart string
		domain    string
		wantErr   bool
	}{
		{"<ABC@Voicemail.Local>", "abc", "voicemail.local", false},
		{"user@example.com", "user", "example.com", false},
		{"no-at-sign", "", "", true},
		{"@example.com", "", "", true},
		{"a@b@c", "", "", true},
		{"two words@voicemail.local", "", "", true},
		{"user@", "", "", true},
		{"", "", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			localPart, domain, err := parseEmailAddress(tt.input)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.localPart, localPart)
			assert.Equal(t, tt.domain, domain)
		})
	}
}
