package main

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/fatih/color"
	"github.com/olekukonko/tablewriter"

	"recdocs/internal/docs"
	"recdocs/internal/fs"
)

var (
	dimStyle  = color.New(color.Faint)
	warnStyle = color.New(color.FgYellow)
)

// session binds CLI actions to one controller and an output stream.
// One-shot commands and the interactive shell share it.
type session struct {
	c   *docs.Controller
	out io.Writer
}

func renderTable(w io.Writer, header []string, rows [][]string) {
	table := tablewriter.NewWriter(w)
	table.SetHeader(header)
	table.SetAutoWrapText(false)
	table.SetBorder(false)
	table.AppendBulk(rows)
	table.Render()
}

func (s session) status() error {
	v, err := s.c.View()
	if err != nil {
		return err
	}
	fmt.Fprintf(s.out, "Record:   %s\n", v.Owner)
	fmt.Fprintf(s.out, "State:    %s\n", v.State)
	if v.Folder.Populated() {
		fmt.Fprintf(s.out, "Folder:   %s (%d subfolders)\n", v.Folder.FolderID, len(v.Folder.SubFolderIDs))
	} else {
		fmt.Fprintln(s.out, "Folder:   none")
	}
	fmt.Fprintf(s.out, "Staged:   %d\n", len(v.Staged))
	fmt.Fprintf(s.out, "Uploaded: %d\n", len(v.Uploaded))
	if v.ShowCreateFolder {
		dimStyle.Fprintln(s.out, "Run `folder create` before adding files.")
	}
	return nil
}

func (s session) createFolder(ctx context.Context) error {
	if err := s.c.CreateFolder(ctx); err != nil {
		return err
	}
	v, err := s.c.View()
	if err != nil {
		return err
	}
	fmt.Fprintf(s.out, "Created folder %s\n", v.Folder.FolderID)
	return nil
}

func fileSources(paths []string, recursive bool) ([]docs.FileSource, error) {
	files, err := fs.Collector{Recursive: recursive}.Collect(paths)
	if err != nil {
		return nil, err
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("no files found")
	}
	sources := make([]docs.FileSource, 0, len(files))
	for _, f := range files {
		sources = append(sources, docs.PathSource(f))
	}
	return sources, nil
}

// add stages files, expanding directories. With wait unset it returns once
// indices are assigned and reports completion in the background.
func (s session) add(ctx context.Context, paths []string, recursive, wait bool) error {
	if len(paths) == 0 {
		return fmt.Errorf("no files given")
	}
	sources, err := fileSources(paths, recursive)
	if err != nil {
		return err
	}

	sel, err := s.c.SelectFiles(ctx, sources)
	if err != nil {
		return err
	}

	report := func() error {
		staged, err := sel.Wait(ctx)
		for _, f := range staged {
			fmt.Fprintf(s.out, "  #%d %s\n", f.Index, f.DisplayName)
		}
		fmt.Fprintf(s.out, "Staged %d file(s)\n", len(staged))
		if err != nil {
			warnStyle.Fprintf(s.out, "Some files could not be read: %v\n", err)
		}
		return err
	}

	if wait {
		return report()
	}
	indices := sel.Indices()
	dimStyle.Fprintf(s.out, "Reading %d file(s) as #%d..#%d\n", len(indices), indices[0], indices[len(indices)-1])
	go report()
	return nil
}

func (s session) staged() error {
	v, err := s.c.View()
	if err != nil {
		return err
	}
	if !v.ShowStaged {
		fmt.Fprintln(s.out, "No files staged.")
		return nil
	}

	rows := make([][]string, len(v.Staged))
	for i, f := range v.Staged {
		category := f.Category
		if category == "" {
			category = warnStyle.Sprint("(none)")
		}
		rows[i] = []string{strconv.FormatInt(f.Index, 10), f.DisplayName, category}
	}
	renderTable(s.out, []string{"#", "Name", "Type"}, rows)
	return nil
}

func (s session) categories() error {
	rows := make([][]string, len(s.c.Layout().Categories))
	for i, c := range s.c.Layout().Categories {
		rows[i] = []string{strconv.Itoa(i + 1), c}
	}
	renderTable(s.out, []string{"#", "Type"}, rows)
	return nil
}

// resolveCategory accepts a category name or its 1-based position.
func (s session) resolveCategory(arg string) string {
	categories := s.c.Layout().Categories
	if n, err := strconv.Atoi(arg); err == nil && n >= 1 && n <= len(categories) {
		return categories[n-1]
	}
	for _, c := range categories {
		if strings.EqualFold(c, arg) {
			return c
		}
	}
	return arg
}

func parseIndex(arg string) (int64, error) {
	n, err := strconv.ParseInt(strings.TrimPrefix(arg, "#"), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid index %q: must be an integer", arg)
	}
	return n, nil
}

func (s session) categorize(indexArg, categoryArg string) error {
	index, err := parseIndex(indexArg)
	if err != nil {
		return err
	}
	category := s.resolveCategory(categoryArg)
	if !s.c.Layout().HasCategory(category) {
		warnStyle.Fprintf(s.out, "%q is not a known type; the file has no destination folder\n", category)
	}
	if err := s.c.AssignCategory(index, category); err != nil {
		return err
	}
	fmt.Fprintf(s.out, "#%d -> %s\n", index, category)
	return nil
}

func (s session) unstage(indexArg string) error {
	index, err := parseIndex(indexArg)
	if err != nil {
		return err
	}
	if err := s.c.RemoveStaged(index); err != nil {
		return err
	}
	fmt.Fprintf(s.out, "Removed #%d\n", index)
	return nil
}

func (s session) attach(ctx context.Context) error {
	uploaded, err := s.c.Attach(ctx)
	if err != nil {
		return err
	}
	renderUploaded(s.out, uploaded)
	return nil
}

func renderUploaded(w io.Writer, files []docs.UploadedFile) {
	rows := make([][]string, len(files))
	for i, f := range files {
		rows[i] = []string{f.FileID, f.FileName}
	}
	renderTable(w, []string{"ID", "Name"}, rows)
}

func (s session) list() error {
	v, err := s.c.View()
	if err != nil {
		return err
	}
	if !v.ShowUploaded {
		fmt.Fprintln(s.out, "No files uploaded.")
		return nil
	}
	renderUploaded(s.out, v.Uploaded)
	return nil
}

func (s session) link(fileID string, download bool) error {
	var (
		url string
		err error
	)
	if download {
		url, err = s.c.DownloadURL(fileID)
	} else {
		url, err = s.c.PreviewURL(fileID)
	}
	if err != nil {
		return err
	}
	fmt.Fprintln(s.out, url)
	return nil
}

func (s session) remove(ctx context.Context, fileID string) error {
	return s.c.Delete(ctx, fileID)
}

func (s session) request(ctx context.Context) error {
	return s.c.RequestAdditionalDocuments(ctx)
}
