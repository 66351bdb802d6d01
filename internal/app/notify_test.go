package app

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"recdocs/internal/docs"
)

func TestConsoleNotifier(t *testing.T) {
	var buf bytes.Buffer
	n := consoleNotifier{w: &buf}

	n.Notify(docs.Notification{Title: "Success", Message: "File Uploaded", Variant: docs.VariantSuccess})
	n.Notify(docs.Notification{Title: "Error", Message: "Please select Type for all files", Variant: docs.VariantError})

	got := buf.String()
	for _, want := range []string{"Success:", "File Uploaded\n", "Error:", "Please select Type for all files\n"} {
		if !strings.Contains(got, want) {
			t.Errorf("output %q missing %q", got, want)
		}
	}
}

func TestMailtoLink(t *testing.T) {
	req := docs.ComposeRequest{
		RecordID: "006A",
		Subject:  docs.AdditionalDocumentsSubject,
		HTMLBody: docs.AdditionalDocumentsSubject,
	}

	got := mailtoLink("ops@example.com", req)
	want := "mailto:ops@example.com?body=Need%20Additional%20Documents%20%28record%20006A%29&subject=Need%20Additional%20Documents"
	if got != want {
		t.Errorf("mailtoLink() =\n%q\nwant\n%q", got, want)
	}
}

func TestMailtoComposer(t *testing.T) {
	var buf bytes.Buffer
	c := mailtoComposer{w: &buf}

	if err := c.Compose(context.Background(), docs.ComposeRequest{RecordID: "006A", Subject: "s", HTMLBody: "b"}); err != nil {
		t.Fatalf("Compose() error = %v", err)
	}
	if !strings.Contains(buf.String(), "mailto:?body=") {
		t.Errorf("output = %q", buf.String())
	}
}
