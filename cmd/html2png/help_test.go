package main

// Notes:
// - Help text is checked for required content, not exact layout.
// - Every render flag must be documented in printRenderUsage; the FlagSet is
//   the source of truth.

import (
	"bytes"
	"io"
	"strings"
	"testing"

	flag "github.com/spf13/pflag"
)

func TestPrintUsage(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	printUsage(&buf)

	for _, want := range []string{"Usage: html2png", "Commands:", "render", "doctor", "completion", "version", "help"} {
		if !strings.Contains(buf.String(), want) {
			t.Errorf("printUsage output should contain %q", want)
		}
	}
}

func TestPrintRenderUsage_DocumentsEveryFlag(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	printRenderUsage(&buf)
	usage := buf.String()

	fs := newRenderFlagSet(&renderFlags{}, io.Discard)
	fs.VisitAll(func(f *flag.Flag) {
		if !strings.Contains(usage, "--"+f.Name) {
			t.Errorf("render usage does not document --%s", f.Name)
		}
		if f.Shorthand != "" && !strings.Contains(usage, "-"+f.Shorthand+", --"+f.Name) {
			t.Errorf("render usage does not document -%s for --%s", f.Shorthand, f.Name)
		}
	})
}

func TestRunHelp(t *testing.T) {
	t.Parallel()

	tests := []struct {
		args       []string
		wantStdout string
		wantStderr string
	}{
		{nil, "Commands:", ""},
		{[]string{"render"}, "Usage: html2png render", ""},
		{[]string{"doctor"}, "Usage: html2png doctor", ""},
		{[]string{"completion"}, "Usage: html2png completion", ""},
		{[]string{"version"}, "Usage: html2png version", ""},
		{[]string{"help"}, "Usage: html2png help", ""},
		{[]string{"convert"}, "", "Unknown command: convert"},
	}

	for _, tt := range tests {
		t.Run(strings.Join(tt.args, "_"), func(t *testing.T) {
			t.Parallel()

			te := newTestEnv()
			runHelp(tt.args, te.Environment)

			if tt.wantStdout != "" && !strings.Contains(te.stdout.String(), tt.wantStdout) {
				t.Errorf("stdout = %q, want %q", te.stdout, tt.wantStdout)
			}
			if tt.wantStderr != "" && !strings.Contains(te.stderr.String(), tt.wantStderr) {
				t.Errorf("stderr = %q, want %q", te.stderr, tt.wantStderr)
			}
		})
	}
}
