package main

import (
	"errors"
	"io/fs"
	"log/slog"
	"os"
	"strings"

	"weekboard/internal/cli"

	"github.com/joho/godotenv"
)

// directRef reports the show command for a "task:<id>" or
// "initiative:<id>" token.
func directRef(s string) (group, id string, ok bool) {
	kind, id, found := strings.Cut(strings.TrimSpace(s), ":")
	if !found || strings.TrimSpace(id) == "" {
		return "", "", false
	}
	switch kind {
	case "task":
		return "tasks", id, true
	case "initiative":
		return "initiatives", id, true
	}
	return "", "", false
}

// rewriteDirectLookupArgs turns `weekboard task:<id>` into
// `weekboard tasks show <id>`. Cobra treats the first positional token as a
// subcommand, so the rewrite happens before parsing and has to skip over
// persistent flags.
func rewriteDirectLookupArgs(argv []string) []string {
	if len(argv) < 2 {
		return argv
	}

	valueFlags := map[string]bool{
		"--dir":    true,
		"--format": true,
	}

	rewrite := func(i int) []string {
		group, id, ok := directRef(argv[i])
		if !ok {
			return argv
		}
		out := make([]string, 0, len(argv)+2)
		out = append(out, argv[:i]...)
		out = append(out, group, "show", id)
		out = append(out, argv[i+1:]...)
		return out
	}

	for i := 1; i < len(argv); i++ {
		a := strings.TrimSpace(argv[i])
		if a == "" {
			continue
		}
		if a == "--" {
			if i+1 < len(argv) {
				out := rewrite(i + 1)
				if len(out) != len(argv) {
					// Drop the separator so cobra sees the subcommand.
					return append(out[:i:i], out[i+1:]...)
				}
			}
			return argv
		}
		if strings.HasPrefix(a, "-") {
			if !strings.Contains(a, "=") && valueFlags[a] {
				i++
			}
			continue
		}
		return rewrite(i)
	}
	return argv
}

func main() {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		slog.Warn("ignoring .env", "err", err)
	}

	os.Args = rewriteDirectLookupArgs(os.Args)

	cmd := cli.NewRootCmd()
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
