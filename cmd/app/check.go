package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/urfave/cli/v3"

	"github.com/starford/fitch/internal/parser"
	"github.com/starford/fitch/internal/proofservice"
	"github.com/starford/fitch/internal/sentence"
	"github.com/starford/fitch/internal/verify"
)

func checkCommand() *cli.Command {
	return &cli.Command{
		Name:      "check",
		Usage:     "Verify proof files and print their diagnostics",
		ArgsUsage: "FILE...",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "system", Usage: "Modal system overriding the front matter (none, K, T, S4, S5)"},
			&cli.BoolFlag{Name: "json", Usage: "Print reports as JSON"},
		},
		Action: func(_ context.Context, cmd *cli.Command) error {
			files := cmd.Args().Slice()
			if len(files) == 0 {
				return cli.Exit("check: at least one file is required", 2)
			}
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			def := cfg.Checker.Defaults()

			failed := false
			for _, f := range files {
				report, err := checkFile(f, cmd.String("system"), def)
				if err != nil {
					fmt.Fprintf(os.Stderr, "%s: %v\n", f, err)
					failed = true
					continue
				}
				if cmd.Bool("json") {
					enc := json.NewEncoder(os.Stdout)
					enc.SetIndent("", "  ")
					_ = enc.Encode(map[string]any{"file": f, "report": report})
				} else {
					printReport(os.Stdout, f, report)
				}
				if !report.Valid() {
					failed = true
				}
			}
			if failed {
				return cli.Exit("", 1)
			}
			return nil
		},
	}
}

func checkFile(path, system string, def verify.Config) (*verify.Report, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	res, err := parser.Parse(data)
	if err != nil {
		return nil, err
	}
	if system != "" {
		res.Header.System = system
	}
	cfg, err := res.Header.Config(def)
	if err != nil {
		return nil, err
	}
	doc, err := res.Document()
	if err != nil {
		return nil, err
	}
	return verify.Verify(doc, cfg), nil
}

// printReport writes one line per invalid step followed by a verdict.
func printReport(w io.Writer, file string, r *verify.Report) {
	for _, d := range r.Invalid() {
		msg := string(d.Reason)
		if d.Detail != "" {
			msg += ": " + d.Detail
		}
		fmt.Fprintf(w, "%s:%d: %s\n", file, d.Line, msg)
	}
	verdict := "invalid"
	switch {
	case r.Complete():
		verdict = "complete"
	case r.Valid() && len(r.Placeholders) > 0:
		verdict = fmt.Sprintf("valid, %d placeholder(s)", len(r.Placeholders))
	case r.Valid():
		verdict = "valid, conclusion not reached"
	}
	fmt.Fprintf(w, "%s: %s (%s)\n", file, verdict, r.System)
}

func parseCommand() *cli.Command {
	return &cli.Command{
		Name:      "parse",
		Usage:     "Parse a sentence and print its canonical forms",
		ArgsUsage: "SENTENCE",
		Action: func(_ context.Context, cmd *cli.Command) error {
			text := strings.Join(cmd.Args().Slice(), " ")
			s, err := sentence.Parse(text)
			if err != nil {
				return cli.Exit(err.Error(), 1)
			}
			fmt.Println(sentence.Format(s, sentence.StyleUnicode))
			fmt.Println(sentence.Format(s, sentence.StyleASCII))
			return nil
		},
	}
}

func rulesCommand() *cli.Command {
	return &cli.Command{
		Name:  "rules",
		Usage: "List the rule catalog",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "ruleset", Usage: "Restrict to one ruleset"},
		},
		Action: func(_ context.Context, cmd *cli.Command) error {
			list, err := proofservice.ListRules(cmd.String("ruleset"))
			if err != nil {
				return cli.Exit(err.Error(), 2)
			}
			tw := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "SYMBOL\tRULESET\tFORMS")
			for _, r := range list {
				fmt.Fprintf(tw, "%s\t%s\t%s\n", r.Symbol, r.Ruleset, strings.Join(r.Forms, "; "))
			}
			return tw.Flush()
		},
	}
}
