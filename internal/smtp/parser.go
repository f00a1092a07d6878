package smtp

import (
	"io"
	"regexp"
	"strings"

	"github.com/jhillyerd/enmime"
)

var (
	fromHeaderPattern = regexp.MustCompile(`^(?:"?([^"<]*)"?\s*)?<?([^<>]+@[^<>]+)>?$`)
	scriptPattern     = regexp.MustCompile(`(?i)<(script|style)[^>]*>[\s\S]*?</(script|style)>`)
	blockTagPattern   = regexp.MustCompile(`(?i)<\s*(br|/p|/div|/li|/h[1-6])[^>]*>`)
	tagPattern        = regexp.MustCompile(`<[^>]*>`)
	blankLinesPattern = regexp.MustCompile(`\n{3,}`)
)

// ParsedEmail represents a parsed email message
type ParsedEmail struct {
	SenderEmail     string
	SenderName      string
	Subject         string
	Body            string
	AttachmentNames []string
}

// ParseEmail parses an email from an io.Reader.
// The plain-text part is preferred; HTML-only mail is reduced to text.
func ParseEmail(r io.Reader) (*ParsedEmail, error) {
	env, err := enmime.ReadEnvelope(r)
	if err != nil {
		return nil, err
	}

	parsed := &ParsedEmail{
		Subject: strings.TrimSpace(env.GetHeader("Subject")),
		Body:    strings.TrimSpace(env.Text),
	}

	if parsed.Body == "" && env.HTML != "" {
		parsed.Body = strings.TrimSpace(stripHTMLTags(env.HTML))
	}

	if addrs, err := env.AddressList("From"); err == nil && len(addrs) > 0 {
		parsed.SenderName = strings.TrimSpace(addrs[0].Name)
		parsed.SenderEmail = strings.ToLower(addrs[0].Address)
	} else {
		parsed.SenderName, parsed.SenderEmail = parseFromHeader(env.GetHeader("From"))
		parsed.SenderEmail = strings.ToLower(parsed.SenderEmail)
	}

	for _, att := range env.Attachments {
		if att.FileName != "" {
			parsed.AttachmentNames = append(parsed.AttachmentNames, att.FileName)
		}
	}
	for _, att := range env.Inlines {
		if att.FileName != "" {
			parsed.AttachmentNames = append(parsed.AttachmentNames, att.FileName)
		}
	}

	return parsed, nil
}

// ComposeBody folds the subject and attachment names into the message text.
// Attachments themselves are not stored.
func ComposeBody(email *ParsedEmail) string {
	var b strings.Builder

	if email.Subject != "" {
		b.WriteString("Subject: ")
		b.WriteString(email.Subject)
		b.WriteString("\n\n")
	}

	b.WriteString(email.Body)

	if len(email.AttachmentNames) > 0 {
		b.WriteString("\n\n[attachments not stored: ")
		b.WriteString(strings.Join(email.AttachmentNames, ", "))
		b.WriteString("]")
	}

	return strings.TrimSpace(b.String())
}

// parseFromHeader extracts name and email from a From header
func parseFromHeader(from string) (name, email string) {
	from = strings.TrimSpace(from)
	if from == "" {
		return "", ""
	}

	// Pattern: "Name" <email@example.com> or Name <email@example.com>
	matches := fromHeaderPattern.FindStringSubmatch(from)

	if len(matches) >= 3 {
		name = strings.Trim(strings.TrimSpace(matches[1]), `"`)
		email = strings.TrimSpace(matches[2])
	} else {
		// Fallback: treat entire string as email
		email = from
	}

	return name, email
}

// stripHTMLTags reduces HTML to plain text, keeping paragraph breaks
func stripHTMLTags(html string) string {
	html = scriptPattern.ReplaceAllString(html, "")
	html = blockTagPattern.ReplaceAllString(html, "\n")
	html = tagPattern.ReplaceAllString(html, "")

	// Decode common HTML entities
	html = strings.NewReplacer(
		"&nbsp;", " ",
		"&lt;", "<",
		"&gt;", ">",
		"&quot;", `"`,
		"&#39;", "'",
		"&amp;", "&",
	).Replace(html)

	lines := strings.Split(html, "\n")
	for i, line := range lines {
		lines[i] = strings.Join(strings.Fields(line), " ")
	}

	return blankLinesPattern.ReplaceAllString(strings.Join(lines, "\n"), "\n\n")
}
