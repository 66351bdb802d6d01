package docs

import "context"

// Variant is the severity of a user notification.
type Variant string

const (
	VariantSuccess Variant = "success"
	VariantError   Variant = "error"
)

// Notification is a short message shown to the user.
type Notification struct {
	Title   string
	Message string
	Variant Variant
}

// Notifier presents notifications to the user.
type Notifier interface {
	Notify(n Notification)
}

// NopNotifier drops every notification.
type NopNotifier struct{}

func (NopNotifier) Notify(Notification) {}

var (
	notifyUploaded = Notification{Title: "Success", Message: "File Uploaded", Variant: VariantSuccess}
	notifyDeleted  = Notification{Title: "Success", Message: "File Deleted", Variant: VariantSuccess}
	notifyNoType   = Notification{Title: "Error", Message: "Please select Type for all files", Variant: VariantError}
)

// AdditionalDocumentsSubject is the subject and body used when asking for more documents.
const AdditionalDocumentsSubject = "Need Additional Documents"

// ComposeRequest asks an external compose view to open pre-filled.
type ComposeRequest struct {
	RecordID OwnerRef
	Subject  string
	HTMLBody string
}

// Composer opens an external communication view.
type Composer interface {
	Compose(ctx context.Context, req ComposeRequest) error
}
