package server

import (
	"bytes"
	"html/template"
	"net/http"

	"github.com/desertthunder/spotauth/internal/formatter"
)

const layout = `{{define "layout"}}<!DOCTYPE html>
<html>
<head>
    <meta charset="utf-8">
    <title>{{.Title}}</title>
    <style>
        body { font-family: Arial, sans-serif; max-width: 800px; margin: 0 auto; padding: 20px; }
        textarea { width: 100%; padding: 10px; margin-bottom: 20px; }
        h1, h2 { color: #1DB954; }
        .button { display: inline-block; background-color: #1DB954; color: white; padding: 10px 20px;
                  text-decoration: none; border-radius: 30px; font-weight: bold; }
    </style>
</head>
<body>
{{template "content" .}}
<script>
    document.querySelectorAll('textarea').forEach(el => {
        el.addEventListener('click', function() {
            this.select();
            document.execCommand('copy');
            const original = this.style.border;
            this.style.border = '2px solid green';
            setTimeout(() => { this.style.border = original; }, 1000);
        });
    });
</script>
</body>
</html>
{{end}}`

const homeContent = `{{define "content"}}
<h1>Spotify Authorization</h1>
<p>Click the button below to authorize this application with your Spotify account.</p>
<p>This will allow the application to access your Spotify data according to the requested scopes.</p>
<a class="button" href="/login">Authorize with Spotify</a>
{{end}}`

const tokenContent = `{{define "content"}}
<h1>{{.Title}}</h1>
<h2>{{if .Refreshed}}New Access Token:{{else}}Access Token:{{end}}</h2>
<textarea rows="5" cols="70" readonly>{{.AccessToken}}</textarea>
{{if .RefreshToken}}
<h2>Refresh Token:</h2>
<textarea rows="5" cols="70" readonly>{{.RefreshToken}}</textarea>
{{end}}
<h2>Token Information:</h2>
<p>Expires in: {{.Expiry}}</p>
{{if not .Refreshed}}
<h2>What's Next?</h2>
<p>You can use this access token to make requests to the Spotify API.</p>
<p>When the token expires, use the refresh token to get a new access token.</p>
{{end}}
{{end}}`

const errorContent = `{{define "content"}}
<h1>{{.Title}}</h1>
<p>{{.Message}}</p>
{{if .Retry}}<a href="/login">Try Again</a>{{end}}
{{end}}`

var pages = map[string]*template.Template{
	"home":  mustPage(homeContent),
	"token": mustPage(tokenContent),
	"error": mustPage(errorContent),
}

func mustPage(content string) *template.Template {
	return template.Must(template.Must(template.New("layout").Parse(layout)).Parse(content))
}

type tokenPage struct {
	Title        string
	AccessToken  string
	RefreshToken string
	Expiry       string
	Refreshed    bool
}

type errorPage struct {
	Title   string
	Message string
	Retry   bool
}

func newTokenPage(title, access, refresh string, expiresIn int, refreshed bool) tokenPage {
	return tokenPage{
		Title:        title,
		AccessToken:  access,
		RefreshToken: refresh,
		Expiry:       formatter.FormatExpiry(expiresIn),
		Refreshed:    refreshed,
	}
}

// render executes a page into a buffer first so a template failure still produces a clean 500.
func render(w http.ResponseWriter, status int, name string, data any) error {
	var buf bytes.Buffer
	if err := pages[name].ExecuteTemplate(&buf, "layout", data); err != nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return err
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(status)
	_, err := buf.WriteTo(w)
	return err
}
