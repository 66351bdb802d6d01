package docs

import "fmt"

// DefaultCategories are the document categories offered for project records.
var DefaultCategories = []string{
	"Pre-Project",
	"Project-Initiation-Documents",
	"RFI",
	"Requirements-Design",
	"ITT",
	"Project-Financial-Accounting",
	"Contracts",
	"Project-Plan",
	"Work-Packages",
	"QA-Integration-Testing",
	"Change-Control-Requests",
	"Stakeholder-Communications",
	"Service-Transition-to-BaU",
	"Project-Logs",
	"Project-Closure",
}

// DefaultSingleCategory is the category given to every file in a single-folder layout.
const DefaultSingleCategory = "Documents"

// LayoutMode selects how a folder hierarchy is organised.
type LayoutMode string

const (
	// LayoutCategorized creates one subfolder per category.
	LayoutCategorized LayoutMode = "categorized"
	// LayoutSingle stores every file in the root folder.
	LayoutSingle LayoutMode = "single"
)

// Layout describes the folder hierarchy created for an owner.
type Layout struct {
	Mode       LayoutMode
	Categories []string
}

// CategorizedLayout returns a layout with one subfolder per category.
func CategorizedLayout(categories []string) Layout {
	return Layout{Mode: LayoutCategorized, Categories: append([]string(nil), categories...)}
}

// SingleFolderLayout returns a layout where every file lands in the root folder.
func SingleFolderLayout() Layout {
	return Layout{Mode: LayoutSingle, Categories: []string{DefaultSingleCategory}}
}

// ParseLayout builds a Layout from its configured mode name.
// An empty category list falls back to DefaultCategories.
func ParseLayout(mode string, categories []string) (Layout, error) {
	switch LayoutMode(mode) {
	case LayoutCategorized, "":
		if len(categories) == 0 {
			categories = DefaultCategories
		}
		return CategorizedLayout(categories), nil
	case LayoutSingle:
		return SingleFolderLayout(), nil
	default:
		return Layout{}, fmt.Errorf("unknown layout mode: %q", mode)
	}
}

// Single reports whether files skip category assignment.
func (l Layout) Single() bool {
	return l.Mode == LayoutSingle
}

// HasCategory reports whether category is one of the layout's categories.
func (l Layout) HasCategory(category string) bool {
	for _, c := range l.Categories {
		if c == category {
			return true
		}
	}
	return false
}

// Destination returns the folder id a file of the given category is uploaded to.
// In a categorized layout a category without a subfolder yields "" and false;
// the backend rejects such files at upload time.
func (l Layout) Destination(folder FolderContext, category string) (string, bool) {
	if l.Single() {
		return folder.FolderID, folder.Populated()
	}
	id, ok := folder.SubFolderIDs[category]
	return id, ok && id != ""
}
