package pageread

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apierrors "github.com/sidebuddy/sidebuddy/internal/errors"
	"github.com/sidebuddy/sidebuddy/internal/models"
)

const articleHTML = `<!doctype html>
<html>
<head><title>  Photosynthesis
  for kids </title><style>p{color:red}</style></head>
<body>
<header><h1>Site header</h1></header>
<nav><ul><li>Home</li><li>About</li></ul></nav>
<article>
  <h1>How plants eat</h1>
  <p>Plants   use
     sunlight to make food.</p>
  <ul><li>Water <b>in</b></li><li>Oxygen out</li></ul>
  <blockquote><p>Leaves are tiny kitchens.</p></blockquote>
  <script>var tracking = true;</script>
</article>
<footer><p>Copyright</p></footer>
</body>
</html>`

func TestExtract(t *testing.T) {
	page, err := Extract(strings.NewReader(articleHTML))
	require.NoError(t, err)

	assert.Equal(t, "Photosynthesis for kids", page.Title)
	assert.Equal(t, strings.Join([]string{
		"How plants eat",
		"Plants use sunlight to make food.",
		"Water in",
		"Oxygen out",
		"Leaves are tiny kitchens.",
	}, "\n"), page.Text)

	for _, noise := range []string{"Site header", "Home", "Copyright", "tracking", "color:red"} {
		assert.NotContains(t, page.Text, noise)
	}
}

func TestExtract_FallsBackToBody(t *testing.T) {
	page, err := Extract(strings.NewReader(`<html><body><div>Just   a div</div></body></html>`))
	require.NoError(t, err)
	assert.Equal(t, "Just a div", page.Text)
}

func TestTruncate(t *testing.T) {
	tests := []struct {
		name string
		in   string
		max  int
		want string
	}{
		{"short", "abc", 5, "abc"},
		{"exact", "abc", 3, "abc"},
		{"ascii cut", "abcdef", 4, "abcd"},
		{"multibyte cut", "Nội dung", 3, "Nội"},
		{"zero", "abc", 0, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Truncate(tt.in, tt.max)
			assert.Equal(t, tt.want, got)
			assert.True(t, utf8.ValidString(got))
		})
	}
}

func TestExtract_TruncatesLongPages(t *testing.T) {
	long := strings.Repeat("ấ", models.MaxMessageLength+50)
	page, err := Extract(strings.NewReader("<p>" + long + "</p>"))
	require.NoError(t, err)
	assert.Equal(t, models.MaxMessageLength, utf8.RuneCountInString(page.Text))
}

func TestNewURLProvider(t *testing.T) {
	_, err := NewURLProvider("https://example.com/article")
	assert.NoError(t, err)

	for _, bad := range []string{"ftp://example.com", "example.com", "http://"} {
		_, err := NewURLProvider(bad)
		assert.Error(t, err, bad)
	}
}

func TestURLProvider_Fetch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, userAgent, r.Header.Get("User-Agent"))
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		_, _ = w.Write([]byte(articleHTML))
	}))
	defer srv.Close()

	p, err := NewURLProvider(srv.URL + "/plants")
	require.NoError(t, err)

	page, err := p.Fetch(context.Background())
	require.NoError(t, err)
	assert.Equal(t, srv.URL+"/plants", page.URL)
	assert.Equal(t, "Photosynthesis for kids", page.Title)

	text, err := p.PageContent(context.Background())
	require.NoError(t, err)
	assert.Equal(t, page.Text, text)
}

func TestURLProvider_FetchLegacyCharset(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=iso-8859-1")
		_, _ = w.Write([]byte("<html><body><p>caf\xe9 au lait</p></body></html>"))
	}))
	defer srv.Close()

	p, err := NewURLProvider(srv.URL)
	require.NoError(t, err)

	page, err := p.Fetch(context.Background())
	require.NoError(t, err)
	assert.Contains(t, page.Text, "café au lait")
}

func TestURLProvider_FetchStatusError(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	defer srv.Close()

	p, err := NewURLProvider(srv.URL)
	require.NoError(t, err)

	_, err = p.PageContent(context.Background())
	require.Error(t, err)
	assert.Equal(t, http.StatusNotFound, apierrors.GetHTTPStatus(err))
}

func TestTextProvider(t *testing.T) {
	text, err := TextProvider("  hello page \n").PageContent(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "hello page", text)

	provider, err := ReadText(strings.NewReader("from stdin"))
	require.NoError(t, err)
	text, err = provider.PageContent(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "from stdin", text)
}
