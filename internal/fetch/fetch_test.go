package fetch

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestFetchWithContactPage_FollowsContactLink(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`<html><body>
			<h1>Acme Drones</h1>
			<p>We build quadcopters.</p>
			<a href="/pricing">Pricing</a>
			<a href="/contact-us">Contact Us</a>
		</body></html>`))
	})
	mux.HandleFunc("/contact-us", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`<html><body><p>Email: info@acme.example</p></body></html>`))
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	f := New(5 * time.Second)
	text := f.FetchWithContactPage(context.Background(), srv.URL)

	assert.Contains(t, text, "Acme Drones")
	assert.Contains(t, text, "quadcopters")
	assert.Contains(t, text, "info@acme.example")
}

func TestFetchWithContactPage_NoContactLink(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`<html><body><p>Just a landing page</p></body></html>`))
	}))
	defer srv.Close()

	f := New(5 * time.Second)
	text := f.FetchWithContactPage(context.Background(), srv.URL)
	assert.Contains(t, text, "Just a landing page")
}

func TestFetchWithContactPage_PrimaryFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	f := New(5 * time.Second)
	assert.Equal(t, "", f.FetchWithContactPage(context.Background(), srv.URL))
}

func TestFetchWithContactPage_Unreachable(t *testing.T) {
	f := New(1 * time.Second)
	assert.Equal(t, "", f.FetchWithContactPage(context.Background(), "http://127.0.0.1:1/nope"))
}

func TestFetchWithContactPage_ContactFailureSwallowed(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`<html><body><p>Home page text</p><a href="/about">About</a></body></html>`))
	})
	mux.HandleFunc("/about", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	f := New(5 * time.Second)
	text := f.FetchWithContactPage(context.Background(), srv.URL)
	assert.Contains(t, text, "Home page text")
}

func TestFindContactLink(t *testing.T) {
	tests := []struct {
		name string
		html string
		want string
	}{
		{
			name: "first matching label wins",
			html: `<a href="/about">About Us</a><a href="/contact">Contact</a>`,
			want: "/about",
		},
		{
			name: "case insensitive",
			html: `<a href="/x">Products</a><a href="/support">SUPPORT CENTER</a>`,
			want: "/support",
		},
		{
			name: "label with nested tags",
			html: `<a href="/reach"><span>Reach</span> out</a>`,
			want: "/reach",
		},
		{
			name: "no match",
			html: `<a href="/shop">Shop</a><a href="/blog">Blog</a>`,
			want: "",
		},
		{
			name: "no anchors",
			html: `<p>plain</p>`,
			want: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, findContactLink(tt.html))
		})
	}
}

func TestResolveLink(t *testing.T) {
	assert.Equal(t, "https://other.example/page", resolveLink("https://acme.example", "https://other.example/page"))
	assert.Equal(t, "https://acme.example/contact", resolveLink("https://acme.example/", "/contact"))
	assert.Equal(t, "https://acme.example/contact", resolveLink("https://acme.example", "contact"))
}

func TestStripHTML(t *testing.T) {
	html := `<html><head><style>body{}</style><script>var x;</script></head>
	<body><nav>menu</nav><p>Real   content</p><footer>foot</footer></body></html>`

	text := stripHTML(html)
	assert.Contains(t, text, "Real content")
	assert.NotContains(t, text, "var x")
	assert.NotContains(t, text, "menu")
	assert.NotContains(t, text, "foot")
}
