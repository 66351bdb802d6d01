package main

import (
	"context"
	"os"

	"github.com/spf13/cobra"

	"recdocs/internal/docs"
	"recdocs/internal/fs"
)

func sessionFor(c *docs.Controller) session {
	return session{c: c, out: os.Stdout}
}

// folder command
var folderCmd = &cobra.Command{
	Use:   "folder",
	Short: "Manage the record folder",
}

var folderCheckCmd = &cobra.Command{
	Use:   "check",
	Short: "Show the folder and file status of a record",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withController(cmd, "CheckFolder", true, func(ctx context.Context, c *docs.Controller) error {
			return sessionFor(c).status()
		})
	},
}

var folderCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Create the folder hierarchy of a record",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withController(cmd, "CreateFolder", true, func(ctx context.Context, c *docs.Controller) error {
			return sessionFor(c).createFolder(ctx)
		})
	},
}

var addCmd = &cobra.Command{
	Use:   "add PATH...",
	Short: "Stage files for upload",
	Long:  "Stage files for upload. Folders are expanded, skipping names listed in their " + fs.IgnoreFileName + ".",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		recursive, _ := cmd.Flags().GetBool("recursive")
		return withController(cmd, "SelectFiles", false, func(ctx context.Context, c *docs.Controller) error {
			return sessionFor(c).add(ctx, args, recursive, true)
		})
	},
}

var stagedCmd = &cobra.Command{
	Use:   "staged",
	Short: "List staged files",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withController(cmd, "ListStaged", false, func(ctx context.Context, c *docs.Controller) error {
			return sessionFor(c).staged()
		})
	},
}

var categoriesCmd = &cobra.Command{
	Use:   "types",
	Short: "List the document types",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withController(cmd, "ListTypes", true, func(ctx context.Context, c *docs.Controller) error {
			return sessionFor(c).categories()
		})
	},
}

var categorizeCmd = &cobra.Command{
	Use:   "categorize INDEX TYPE",
	Short: "Assign a document type to a staged file",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withController(cmd, "AssignCategory", false, func(ctx context.Context, c *docs.Controller) error {
			return sessionFor(c).categorize(args[0], args[1])
		})
	},
}

var unstageCmd = &cobra.Command{
	Use:   "unstage INDEX",
	Short: "Remove a staged file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withController(cmd, "RemoveStaged", false, func(ctx context.Context, c *docs.Controller) error {
			return sessionFor(c).unstage(args[0])
		})
	},
}

var attachCmd = &cobra.Command{
	Use:   "attach",
	Short: "Upload every staged file",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withController(cmd, "Attach", false, func(ctx context.Context, c *docs.Controller) error {
			return sessionFor(c).attach(ctx)
		})
	},
}

var lsCmd = &cobra.Command{
	Use:   "ls",
	Short: "List uploaded files",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withController(cmd, "ListUploaded", false, func(ctx context.Context, c *docs.Controller) error {
			return sessionFor(c).list()
		})
	},
}

var previewCmd = &cobra.Command{
	Use:   "preview ID",
	Short: "Print the preview link of an uploaded file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withController(cmd, "Preview", false, func(ctx context.Context, c *docs.Controller) error {
			return sessionFor(c).link(args[0], false)
		})
	},
}

var downloadCmd = &cobra.Command{
	Use:   "download ID",
	Short: "Print the download link of an uploaded file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withController(cmd, "Download", false, func(ctx context.Context, c *docs.Controller) error {
			return sessionFor(c).link(args[0], true)
		})
	},
}

var rmCmd = &cobra.Command{
	Use:   "rm ID",
	Short: "Delete an uploaded file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withController(cmd, "Delete", false, func(ctx context.Context, c *docs.Controller) error {
			return sessionFor(c).remove(ctx, args[0])
		})
	},
}

var requestDocsCmd = &cobra.Command{
	Use:   "request-docs",
	Short: "Compose a request for additional documents",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withController(cmd, "RequestDocuments", true, func(ctx context.Context, c *docs.Controller) error {
			return sessionFor(c).request(ctx)
		})
	},
}

func init() {
	folderCmd.AddCommand(folderCheckCmd)
	folderCmd.AddCommand(folderCreateCmd)

	rootCmd.AddCommand(folderCmd)
	addCmd.Flags().BoolP("recursive", "r", false, "Include files in subfolders")
	rootCmd.AddCommand(addCmd)
	rootCmd.AddCommand(stagedCmd)
	rootCmd.AddCommand(categoriesCmd)
	rootCmd.AddCommand(categorizeCmd)
	rootCmd.AddCommand(unstageCmd)
	rootCmd.AddCommand(attachCmd)
	rootCmd.AddCommand(lsCmd)
	rootCmd.AddCommand(previewCmd)
	rootCmd.AddCommand(downloadCmd)
	rootCmd.AddCommand(rmCmd)
	rootCmd.AddCommand(requestDocsCmd)
}
