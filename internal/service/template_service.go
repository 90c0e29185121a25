// internal/service/template_service.go
package service

import (
	"net/url"
	"strings"

	"github.com/unclebandit/mailto-campaigns/internal/model"
)

// CampaignTemplate is the part of a campaign the composer reads.
type CampaignTemplate struct {
	To      []string
	CC      []string
	Subject string
	Body    string
}

func TemplateOf(c *model.Campaign) CampaignTemplate {
	return CampaignTemplate{To: c.ToEmail, CC: c.CCEmail, Subject: c.Subject, Body: c.Body}
}

// Answers are the visitor-declared form fields.
type Answers struct {
	Name  string
	Place string
	Email string
}

// Mailto is a rendered message and the URL that opens it in a mail client.
type Mailto struct {
	To      []string `json:"to"`
	CC      []string `json:"cc,omitempty"`
	Subject string   `json:"subject"`
	Body    string   `json:"body"`
	URL     string   `json:"url"`
}

// ComposeMailto renders the campaign template with the visitor's answers.
func ComposeMailto(t CampaignTemplate, a Answers) Mailto {
	subject := t.Subject + " - From " + a.Name
	body := t.Body + "\n\n\n" +
		"Name: " + a.Name + "\n" +
		"Place: " + a.Place + "\n" +
		"Email: " + a.Email + "\n"

	return Mailto{
		To:      t.To,
		CC:      t.CC,
		Subject: subject,
		Body:    body,
		URL:     MailtoURL(t.To, t.CC, subject, body),
	}
}

// MailtoURL encodes an already rendered message. Spaces become %20 since
// several mail clients show a literal "+".
func MailtoURL(to, cc []string, subject, body string) string {
	var b strings.Builder
	b.WriteString("mailto:")
	b.WriteString(joinAddrs(to))
	b.WriteString("?subject=")
	b.WriteString(escape(subject))
	b.WriteString("&body=")
	b.WriteString(escape(body))
	if len(cc) > 0 {
		b.WriteString("&cc=")
		b.WriteString(joinAddrs(cc))
	}
	return b.String()
}

// ThanksURL points at the confirmation page with enough context to rebuild
// a "send again" link.
func ThanksURL(slug, name, campaignName string, m Mailto) string {
	q := url.Values{}
	q.Set("name", name)
	q.Set("campaign", campaignName)
	q.Set("to", strings.Join(m.To, ","))
	if len(m.CC) > 0 {
		q.Set("cc", strings.Join(m.CC, ","))
	}
	q.Set("subject", m.Subject)
	q.Set("body", m.Body)
	return "/" + url.PathEscape(slug) + "/thanks?" + q.Encode()
}

func escape(s string) string {
	return strings.ReplaceAll(url.QueryEscape(s), "+", "%20")
}

func joinAddrs(addrs []string) string {
	parts := make([]string, 0, len(addrs))
	for _, a := range addrs {
		parts = append(parts, strings.ReplaceAll(escape(a), "%40", "@"))
	}
	return strings.Join(parts, ",")
}

// SplitAddrs parses a comma separated address list, dropping blanks.
func SplitAddrs(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
