package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/chzyer/readline"
	"github.com/spf13/cobra"

	"recdocs/internal/app"
	"recdocs/internal/docs"
)

const shellHelp = `Commands:
  status                  folder and file counts
  create-folder           create the record folder
  add [-r] PATH...        stage files or folders (read in the background)
  staged                  list staged files
  types                   list document types
  categorize INDEX TYPE   assign a type by name or number
  unstage INDEX           remove a staged file
  attach                  upload every staged file
  ls                      list uploaded files
  preview ID              print the preview link
  download ID             print the download link
  rm ID                   delete an uploaded file
  request-docs            compose a request for more documents
  exit                    leave the shell`

var shellCmd = &cobra.Command{
	Use:   "shell",
	Short: "Work on one record interactively",
	RunE: func(cmd *cobra.Command, args []string) error {
		owner, err := resolveOwner()
		if err != nil {
			return err
		}
		return withApp(cmd, "Shell", func(ctx context.Context, a *app.RecDocsApp) error {
			c, err := a.Open(ctx, owner)
			if c == nil {
				return err
			}
			if err != nil {
				warnStyle.Printf("Folder lookup failed: %v\n", err)
			}
			return runShell(ctx, session{c: c, out: os.Stdout})
		})
	},
}

func shellCompleter() *readline.PrefixCompleter {
	return readline.NewPrefixCompleter(
		readline.PcItem("status"),
		readline.PcItem("create-folder"),
		readline.PcItem("add", readline.PcItemDynamic(listFiles)),
		readline.PcItem("staged"),
		readline.PcItem("types"),
		readline.PcItem("categorize"),
		readline.PcItem("unstage"),
		readline.PcItem("attach"),
		readline.PcItem("ls"),
		readline.PcItem("preview"),
		readline.PcItem("download"),
		readline.PcItem("rm"),
		readline.PcItem("request-docs"),
		readline.PcItem("help"),
		readline.PcItem("exit"),
	)
}

// listFiles completes file names in the working directory.
func listFiles(string) []string {
	entries, err := os.ReadDir(".")
	if err != nil {
		return nil
	}
	var names []string
	for _, e := range entries {
		if !e.IsDir() {
			names = append(names, e.Name())
		}
	}
	return names
}

func runShell(ctx context.Context, s session) error {
	homeDir, _ := os.UserHomeDir()
	rl, err := readline.NewEx(&readline.Config{
		Prompt:            fmt.Sprintf("%s> ", s.c.Owner()),
		HistoryFile:       filepath.Join(homeDir, ".recdocs-history"),
		InterruptPrompt:   "^C",
		EOFPrompt:         "exit",
		HistorySearchFold: true,
		AutoComplete:      shellCompleter(),
		Stdin:             readline.NewCancelableStdin(os.Stdin),
		Stdout:            os.Stdout,
		Stderr:            os.Stderr,
	})
	if err != nil {
		return fmt.Errorf("failed to initialize readline: %w", err)
	}
	defer rl.Close()

	// Background selection reports go through readline so they do not garble the prompt.
	s.out = rl.Stdout()

	if err := s.status(); err != nil {
		return err
	}
	for {
		line, err := rl.Readline()
		if errors.Is(err, readline.ErrInterrupt) {
			if len(line) == 0 {
				return nil
			}
			continue
		} else if errors.Is(err, io.EOF) {
			return nil
		}

		fields := strings.Fields(line)
		if len(fields) == 0 {
			continue
		}
		if fields[0] == "exit" || fields[0] == "quit" {
			return nil
		}
		if err := dispatch(ctx, s, fields[0], fields[1:]); err != nil {
			errorLine(s.out, err)
		}
		if ctx.Err() != nil {
			return nil
		}
	}
}

func errorLine(w io.Writer, err error) {
	// Validation failures were already shown as a notification.
	if docs.IsKind(err, docs.ValidationFailure) {
		return
	}
	warnStyle.Fprintf(w, "Error: %v\n", err)
}

func dispatch(ctx context.Context, s session, name string, args []string) error {
	need := func(n int) error {
		if len(args) != n {
			return fmt.Errorf("%s takes %d argument(s), see help", name, n)
		}
		return nil
	}

	switch name {
	case "help":
		fmt.Fprintln(s.out, shellHelp)
		return nil
	case "status":
		return s.status()
	case "create-folder":
		return s.createFolder(ctx)
	case "add":
		recursive := len(args) > 0 && args[0] == "-r"
		if recursive {
			args = args[1:]
		}
		return s.add(ctx, args, recursive, false)
	case "staged":
		return s.staged()
	case "types":
		return s.categories()
	case "categorize":
		if err := need(2); err != nil {
			return err
		}
		return s.categorize(args[0], args[1])
	case "unstage":
		if err := need(1); err != nil {
			return err
		}
		return s.unstage(args[0])
	case "attach":
		return s.attach(ctx)
	case "ls":
		return s.list()
	case "preview", "download":
		if err := need(1); err != nil {
			return err
		}
		return s.link(args[0], name == "download")
	case "rm":
		if err := need(1); err != nil {
			return err
		}
		return s.remove(ctx, args[0])
	case "request-docs":
		return s.request(ctx)
	default:
		return fmt.Errorf("unknown command %q, see help", name)
	}
}

func init() {
	rootCmd.AddCommand(shellCmd)
}
