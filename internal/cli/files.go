package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"

	"weekboard/internal/model"
	"weekboard/internal/mutate"
	"weekboard/internal/preview"
	"weekboard/internal/render"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
)

type fileOut struct {
	ID        model.FileID `json:"id"`
	Name      string       `json:"name"`
	Type      string       `json:"type"`
	Kind      preview.Kind `json:"kind"`
	Size      int64        `json:"size"`
	SizeHuman string       `json:"sizeHuman"`
}

// fileView summarizes a file without its data URL payload.
func fileView(f model.File) fileOut {
	p := preview.Build(f)
	return fileOut{
		ID:        f.ID,
		Name:      f.Name,
		Type:      f.Type,
		Kind:      p.Kind,
		Size:      p.Size,
		SizeHuman: p.HumanSz,
	}
}

func filesView(files []model.File) []fileOut {
	out := make([]fileOut, 0, len(files))
	for _, f := range files {
		out = append(out, fileView(f))
	}
	return out
}

func newFilesCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "files",
		Short: "Files attached to tasks and initiatives",
	}
	cmd.AddCommand(newFilesAttachCmd(app))
	cmd.AddCommand(newFilesListCmd(app))
	cmd.AddCommand(newFilesDeleteCmd(app))
	cmd.AddCommand(newFilesPreviewCmd(app))
	cmd.AddCommand(newFilesExportCmd(app))
	return cmd
}

func parseRefArgs(args []string) (mutate.EntityRef, error) {
	return mutate.ParseEntityRef(args[0], args[1])
}

func newFilesAttachCmd(app *App) *cobra.Command {
	var typ string

	cmd := &cobra.Command{
		Use:   "attach <task|initiative> <id> <path>...",
		Short: "Attach one or more files (read concurrently)",
		Args:  cobra.MinimumNArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			ref, err := parseRefArgs(args)
			if err != nil {
				return writeErr(cmd, err)
			}
			db, s, err := loadDB(app)
			if err != nil {
				return writeErr(cmd, err)
			}

			uploads := make([]mutate.Upload, 0, len(args)-2)
			for _, p := range args[2:] {
				uploads = append(uploads, mutate.Upload{
					Name: filepath.Base(p),
					Type: strings.TrimSpace(typ),
					Open: func() (io.ReadCloser, error) { return os.Open(p) },
				})
			}

			results, err := mutate.AttachUploads(context.Background(), db, ref, uploads, app.maxAttachmentBytes())
			if mutate.IsNotFound(err) {
				return lookupFailed(cmd, app, err)
			}
			if err != nil {
				app.logger().Warn("upload interrupted", "entity", ref.String(), "err", err)
			}

			attached := []fileOut{}
			failed := []map[string]any{}
			for _, r := range results {
				if r.Err != nil {
					app.logger().Warn("upload failed", "entity", ref.String(), "file", r.Name, "err", r.Err)
					failed = append(failed, map[string]any{"name": r.Name, "error": r.Err.Error()})
					continue
				}
				if err := commit(app, s, db, "file.attach", idString(ref.ID), map[string]any{
					"fileId": string(r.File.ID),
					"name":   r.File.Name,
					"type":   r.File.Type,
				}); err != nil {
					return writeErr(cmd, err)
				}
				attached = append(attached, fileView(r.File))
			}

			if err := writeOut(cmd, app, map[string]any{
				"data": map[string]any{"attached": attached, "failed": failed},
			}); err != nil {
				return err
			}
			if len(failed) > 0 {
				return writeErr(cmd, fmt.Errorf("%d of %d files failed to attach", len(failed), len(uploads)))
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&typ, "type", "", "MIME type for every file (default: guess from name/content)")
	return cmd
}

func newFilesListCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "list <task|initiative> <id>",
		Short: "List files of a task or initiative",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ref, err := parseRefArgs(args)
			if err != nil {
				return writeErr(cmd, err)
			}
			db, _, err := loadDB(app)
			if err != nil {
				return writeErr(cmd, err)
			}
			files, err := mutate.ListFiles(db, ref)
			if err != nil {
				return lookupFailed(cmd, app, err)
			}
			return writeOut(cmd, app, map[string]any{"data": filesView(files)})
		},
	}
}

func newFilesDeleteCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <task|initiative> <id> <file-id>",
		Short: "Remove a file",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			ref, err := parseRefArgs(args)
			if err != nil {
				return writeErr(cmd, err)
			}
			db, s, err := loadDB(app)
			if err != nil {
				return writeErr(cmd, err)
			}
			res, err := mutate.DeleteFile(db, ref, model.FileID(strings.TrimSpace(args[2])))
			if err != nil {
				return lookupFailed(cmd, app, err)
			}
			if err := commit(app, s, db, "file.delete", idString(ref.ID), res.EventPayload); err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, map[string]any{"data": map[string]any{"id": res.File.ID, "deleted": true}})
		},
	}
}

type previewOut struct {
	File         fileOut `json:"file"`
	Icon         string  `json:"icon"`
	TypeName     string  `json:"typeName"`
	Text         string  `json:"text,omitempty"`
	Failure      string  `json:"failure,omitempty"`
	DownloadOnly bool    `json:"downloadOnly"`
	Message      string  `json:"message,omitempty"`
}

func newFilesPreviewCmd(app *App) *cobra.Command {
	var asHTML bool

	cmd := &cobra.Command{
		Use:   "preview <task|initiative> <id> <file-id>",
		Short: "Show what the preview panel shows for a file",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			ref, err := parseRefArgs(args)
			if err != nil {
				return writeErr(cmd, err)
			}
			db, _, err := loadDB(app)
			if err != nil {
				return writeErr(cmd, err)
			}
			f, err := mutate.FindFile(db, ref, model.FileID(strings.TrimSpace(args[2])))
			if err != nil {
				return lookupFailed(cmd, app, err)
			}
			p := preview.Build(f)

			if asHTML {
				r, err := render.New()
				if err != nil {
					return writeErr(cmd, err)
				}
				return r.Preview(cmd.OutOrStdout(), ref.Kind.Plural(), ref.ID, p)
			}
			return writeOut(cmd, app, map[string]any{"data": previewOut{
				File:         fileView(f),
				Icon:         p.Icon,
				TypeName:     p.TypeName,
				Text:         p.Text,
				Failure:      p.Failure,
				DownloadOnly: p.DownloadOnly,
				Message:      p.Message,
			}})
		},
	}
	cmd.Flags().BoolVar(&asHTML, "html", false, "Print the preview panel markup instead of JSON")
	return cmd
}

func newFilesExportCmd(app *App) *cobra.Command {
	var out string
	var open bool

	cmd := &cobra.Command{
		Use:   "export <task|initiative> <id> <file-id>",
		Short: "Write a file's bytes to disk (the download action)",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			ref, err := parseRefArgs(args)
			if err != nil {
				return writeErr(cmd, err)
			}
			db, _, err := loadDB(app)
			if err != nil {
				return writeErr(cmd, err)
			}
			f, err := mutate.FindFile(db, ref, model.FileID(strings.TrimSpace(args[2])))
			if err != nil {
				return lookupFailed(cmd, app, err)
			}
			_, b, err := preview.DecodeDataURL(f.Data)
			if err != nil {
				return writeErr(cmd, fmt.Errorf("file %s: %w", f.ID, err))
			}

			path := strings.TrimSpace(out)
			if path == "" {
				path = filepath.Base(f.Name)
			}
			if err := os.WriteFile(path, b, 0o644); err != nil {
				return writeErr(cmd, err)
			}

			opened := false
			openErr := ""
			if open {
				if err := openPath(path); err != nil {
					openErr = err.Error()
				} else {
					opened = true
				}
			}
			return writeOut(cmd, app, map[string]any{"data": map[string]any{
				"path":      path,
				"size":      len(b),
				"sizeHuman": humanize.IBytes(uint64(len(b))),
				"opened":    opened,
				"openError": openErr,
			}})
		},
	}
	cmd.Flags().StringVarP(&out, "out", "o", "", "Destination path (default: the file name in the current dir)")
	cmd.Flags().BoolVar(&open, "open", false, "Open the written file with the system viewer")
	return cmd
}

func openPath(path string) error {
	path = strings.TrimSpace(path)
	if path == "" {
		return errors.New("empty path")
	}
	switch runtime.GOOS {
	case "darwin":
		return exec.Command("open", path).Run()
	case "windows":
		return exec.Command("cmd", "/c", "start", "", path).Run()
	default:
		return exec.Command("xdg-open", path).Run()
	}
}
