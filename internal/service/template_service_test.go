package service_test

import (
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/unclebandit/mailto-campaigns/internal/service"
)

func decodeMailto(t *testing.T, raw string) (string, url.Values) {
	t.Helper()
	require.True(t, strings.HasPrefix(raw, "mailto:"))
	to, query, ok := strings.Cut(strings.TrimPrefix(raw, "mailto:"), "?")
	require.True(t, ok)
	values, err := url.ParseQuery(query)
	require.NoError(t, err)
	return to, values
}

func TestComposeMailto(t *testing.T) {
	m := service.ComposeMailto(
		service.CampaignTemplate{To: []string{"x@y.com"}, Subject: "Support Us", Body: "Please help"},
		service.Answers{Name: "Raj", Place: "Pune", Email: "raj@x.com"},
	)

	to, q := decodeMailto(t, m.URL)
	assert.Equal(t, "x@y.com", to)
	assert.Equal(t, "Support Us - From Raj", q.Get("subject"))
	assert.Equal(t, "Please help\n\n\nName: Raj\nPlace: Pune\nEmail: raj@x.com\n", q.Get("body"))
	assert.Equal(t, "Support Us - From Raj", m.Subject)
	assert.Empty(t, q.Get("cc"))
}

func TestComposeMailtoEncodesSpacesAsPercent20(t *testing.T) {
	m := service.ComposeMailto(
		service.CampaignTemplate{To: []string{"x@y.com"}, Subject: "A & B = C?", Body: "1 + 1"},
		service.Answers{Name: "Ann Lee", Place: "Goa", Email: "a@b.co"},
	)

	assert.NotContains(t, m.URL, "+")
	assert.NotContains(t, m.URL, " ")
	assert.Contains(t, m.URL, "%20")

	_, q := decodeMailto(t, m.URL)
	assert.Equal(t, "A & B = C? - From Ann Lee", q.Get("subject"))
	assert.True(t, strings.HasPrefix(q.Get("body"), "1 + 1\n\n\n"))
}

func TestComposeMailtoRecipients(t *testing.T) {
	m := service.ComposeMailto(
		service.CampaignTemplate{
			To:      []string{"one@y.com", "two@y.com"},
			CC:      []string{"cc@y.com"},
			Subject: "S",
			Body:    "B",
		},
		service.Answers{Name: "N", Place: "P", Email: "e@x.io"},
	)

	to, q := decodeMailto(t, m.URL)
	assert.Equal(t, "one@y.com,two@y.com", to)
	assert.Equal(t, "cc@y.com", q.Get("cc"))
}

func TestComposeMailtoIsDeterministic(t *testing.T) {
	tmpl := service.CampaignTemplate{To: []string{"x@y.com"}, Subject: "S", Body: "B"}
	a := service.Answers{Name: "N", Place: "P", Email: "e@x.io"}
	assert.Equal(t, service.ComposeMailto(tmpl, a), service.ComposeMailto(tmpl, a))
}

func TestThanksURL(t *testing.T) {
	m := service.ComposeMailto(
		service.CampaignTemplate{To: []string{"x@y.com"}, Subject: "Support Us", Body: "Please help"},
		service.Answers{Name: "Raj", Place: "Pune", Email: "raj@x.com"},
	)

	u, err := url.Parse(service.ThanksURL("save-trees", "Raj", "Save Trees", m))
	require.NoError(t, err)
	assert.Equal(t, "/save-trees/thanks", u.Path)

	q := u.Query()
	assert.Equal(t, "Raj", q.Get("name"))
	assert.Equal(t, "Save Trees", q.Get("campaign"))
	assert.Equal(t, "x@y.com", q.Get("to"))

	again := service.MailtoURL(service.SplitAddrs(q.Get("to")), nil, q.Get("subject"), q.Get("body"))
	assert.Equal(t, m.URL, again)
}

func TestSplitAddrs(t *testing.T) {
	assert.Equal(t, []string{"a@b.co", "c@d.io"}, service.SplitAddrs(" a@b.co, ,c@d.io "))
	assert.Nil(t, service.SplitAddrs(""))
}
