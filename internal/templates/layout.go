// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package templates

import (
	"context"
	"io"

	"github.com/a-h/templ"
)

// Layout wraps body in the HTML document shell that loads the application
// stylesheet and javascript.
func Layout(title string, body templ.Component) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		if _, err := io.WriteString(w, "<!doctype html>\n<html lang=\"en\">\n<head>\n<meta charset=\"utf-8\" />\n<title>"+templ.EscapeString(title)+"</title>\n"); err != nil {
			return err
		}
		if err := StylesheetLinkTag(nil, "application").Render(ctx, w); err != nil {
			return err
		}
		if _, err := io.WriteString(w, "\n</head>\n<body>\n"); err != nil {
			return err
		}
		if err := body.Render(ctx, w); err != nil {
			return err
		}
		if _, err := io.WriteString(w, "\n"); err != nil {
			return err
		}
		if err := JavascriptIncludeTag(nil, "application").Render(ctx, w); err != nil {
			return err
		}
		_, err := io.WriteString(w, "\n</body>\n</html>\n")
		return err
	})
}

// Home is the demo page.
func Home() templ.Component {
	return Layout("Assets", templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		if _, err := io.WriteString(w, "<main>\n<h1>Assets</h1>\n"); err != nil {
			return err
		}
		if err := ImageTag("logo.png", "Logo").Render(ctx, w); err != nil {
			return err
		}
		_, err := io.WriteString(w, "\n</main>")
		return err
	}))
}

// Error renders an error page.
func Error(code, title, message string) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		_, err := io.WriteString(w, "<!doctype html>\n<html lang=\"en\">\n<head>\n<meta charset=\"utf-8\" />\n<title>"+
			templ.EscapeString(code+" "+title)+"</title>\n</head>\n<body>\n<main>\n<h1>"+
			templ.EscapeString(title)+"</h1>\n<p>"+templ.EscapeString(message)+"</p>\n</main>\n</body>\n</html>\n")
		return err
	})
}
