package commitmsg

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"
)

// DefaultMessage is committed when no message is given.
const DefaultMessage = "make it better"

var prefixes = []struct {
	flag, label, emoji string
}{
	{"-t ", "TEST: ", "🧪"},
	{"-c ", "CODE: ", "💻"},
	{"-d ", "DOCUMENTATION: ", "📝"},
}

// Format expands a leading -t, -c or -d flag into a labelled message.
// Every occurrence of the flag text is replaced, not just the leading one.
func Format(msg string) string {
	for _, p := range prefixes {
		if strings.HasPrefix(msg, p.flag) {
			return strings.ReplaceAll(msg, p.flag, p.label) + p.emoji
		}
	}
	return msg
}

// ExecFunc runs one external command.
type ExecFunc func(ctx context.Context, name string, args ...string) error

// Runner formats the tree, stages everything, commits and pushes.
type Runner struct {
	Exec ExecFunc
	Out  io.Writer
	// Formatter is run before staging; empty skips it.
	Formatter []string
}

// NewRunner returns a Runner that shells out to gofmt and git.
func NewRunner(out io.Writer) *Runner {
	return &Runner{
		Exec:      execCommand,
		Out:       out,
		Formatter: []string{"gofmt", "-w", "."},
	}
}

// Run commits with Format(args[0]), or DefaultMessage when args is empty.
func (r *Runner) Run(ctx context.Context, args []string) error {
	if len(r.Formatter) > 0 {
		if err := r.Exec(ctx, r.Formatter[0], r.Formatter[1:]...); err != nil {
			return fmt.Errorf("format: %w", err)
		}
	}
	if err := r.Exec(ctx, "git", "add", "."); err != nil {
		return fmt.Errorf("git add: %w", err)
	}
	fmt.Fprintln(r.Out, "staging all files ... 📦")

	msg := DefaultMessage
	if len(args) > 0 && args[0] != "" {
		msg = Format(args[0])
	}
	if err := r.Exec(ctx, "git", "commit", "-m", msg); err != nil {
		return fmt.Errorf("git commit: %w", err)
	}
	fmt.Fprintf(r.Out, "commit %q\n", msg)

	if err := r.Exec(ctx, "git", "push"); err != nil {
		return fmt.Errorf("git push: %w", err)
	}
	return nil
}

func execCommand(ctx context.Context, name string, args ...string) error {
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	return cmd.Run()
}
