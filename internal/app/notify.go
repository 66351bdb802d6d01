package app

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"strings"

	"github.com/fatih/color"

	"recdocs/internal/docs"
)

var (
	successStyle = color.New(color.FgGreen, color.Bold)
	errorStyle   = color.New(color.FgRed, color.Bold)
)

// consoleNotifier prints notifications as colored one-line toasts.
type consoleNotifier struct {
	w io.Writer
}

func (n consoleNotifier) Notify(note docs.Notification) {
	style := successStyle
	if note.Variant == docs.VariantError {
		style = errorStyle
	}
	style.Fprintf(n.w, "%s:", note.Title)
	fmt.Fprintf(n.w, " %s\n", note.Message)
}

// mailtoComposer prints a mailto link pre-filled with the request.
type mailtoComposer struct {
	w         io.Writer
	recipient string
}

func (c mailtoComposer) Compose(_ context.Context, req docs.ComposeRequest) error {
	link := mailtoLink(c.recipient, req)
	fmt.Fprintf(c.w, "Request for record %s:\n  %s\n", req.RecordID, link)
	return nil
}

func mailtoLink(recipient string, req docs.ComposeRequest) string {
	q := url.Values{}
	q.Set("subject", req.Subject)
	q.Set("body", fmt.Sprintf("%s (record %s)", req.HTMLBody, req.RecordID))
	u := url.URL{Scheme: "mailto", Opaque: recipient, RawQuery: strings.ReplaceAll(q.Encode(), "+", "%20")}
	return u.String()
}
