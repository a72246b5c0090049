package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/arafura-lang/arafura/internal/cgen"
	"github.com/arafura-lang/arafura/internal/diag"
	"github.com/arafura-lang/arafura/internal/parser"
)

const version = "0.1.0"

// errReported marks failures whose diagnostics already went to stderr; the
// driver only has to set the exit code.
var errReported = errors.New("translation failed")

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var (
		output string
		check  bool
	)

	cmd := &cobra.Command{
		Use:   "arafura [flags] <input>",
		Short: "Translate SurfaceLang sources into C",
		Long: `arafura reads a SurfaceLang source file (Python syntax, C semantics)
and lowers it to C99/C11 text.

Examples:
  arafura input.py                print C code on stdout
  arafura input.py -o output.c    write C code to a file
  arafura input.py --check        verify the input without emitting output`,
		Args:          cobra.ExactArgs(1),
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, args[0], output, check)
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "output C file (default: stdout)")
	cmd.Flags().BoolVarP(&check, "check", "c", false, "check the input without generating output")
	return cmd
}

func run(cmd *cobra.Command, input, output string, check bool) error {
	formatter := diag.NewFormatter()
	formatter.SetOutput(cmd.ErrOrStderr())

	data, err := os.ReadFile(input)
	if err != nil {
		formatter.Format(diag.Diagnostic{
			Stage:    diag.StageDriver,
			Severity: diag.SeverityError,
			Code:     diag.CodeIOFailure,
			Message:  fmt.Sprintf("cannot read %s: %v", input, err),
		})
		return errReported
	}
	source := string(data)
	formatter.AddSource(input, source)

	p := parser.New(source, parser.WithFilename(input))
	module := p.ParseModule()
	if p.Failed() {
		for _, d := range p.Diagnostics() {
			formatter.Format(d)
		}
		return errReported
	}

	cCode, err := cgen.Translate(module)
	if err != nil {
		var lowering *cgen.Error
		if errors.As(err, &lowering) {
			formatter.Format(lowering.Diagnostic())
		} else {
			formatter.Format(diag.Diagnostic{
				Stage:    diag.StageLowering,
				Severity: diag.SeverityError,
				Code:     diag.CodeUnrecognisedPattern,
				Message:  err.Error(),
			})
		}
		return errReported
	}

	if check {
		fmt.Fprintf(cmd.OutOrStdout(), "OK: %s translates cleanly\n", input)
		return nil
	}

	if output != "" {
		if err := os.WriteFile(output, []byte(cCode), 0o644); err != nil {
			formatter.Format(diag.Diagnostic{
				Stage:    diag.StageDriver,
				Severity: diag.SeverityError,
				Code:     diag.CodeIOFailure,
				Message:  fmt.Sprintf("cannot write %s: %v", output, err),
			})
			return errReported
		}
		fmt.Fprintf(cmd.OutOrStdout(), "OK: generated %s\n", output)
		return nil
	}

	fmt.Fprint(cmd.OutOrStdout(), cCode)
	return nil
}
