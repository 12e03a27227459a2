package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/mattn/go-runewidth"
	"github.com/spf13/cobra"

	"krait/internal/rule"
	"krait/internal/settings"
)

var ruleCmd = &cobra.Command{
	Use:   "rule [flags] <code|name>",
	Short: "Explain a rule",
	Args: func(cmd *cobra.Command, args []string) error {
		all, _ := cmd.Flags().GetBool("all")
		if all {
			return cobra.NoArgs(cmd, args)
		}
		return cobra.ExactArgs(1)(cmd, args)
	},
	RunE: runRule,
}

var rulesCmd = &cobra.Command{
	Use:   "rules [selector...]",
	Short: "List rules, optionally filtered by selectors",
	RunE:  runRules,
}

func init() {
	ruleCmd.Flags().Bool("all", false, "explain every rule")
	ruleCmd.Flags().String("output-format", "text", "output format (text|json)")
	rulesCmd.Flags().String("output-format", "text", "output format (text|json)")
}

type rulePayload struct {
	Code         string `json:"code"`
	Name         string `json:"name"`
	Linter       string `json:"linter"`
	Summary      string `json:"summary"`
	Fix          string `json:"fix"`
	Suppressible bool   `json:"suppressible"`
}

func newRulePayload(r rule.Rule) rulePayload {
	m := r.Meta()
	return rulePayload{
		Code:         m.Code,
		Name:         m.Name,
		Linter:       m.Linter.String(),
		Summary:      m.Summary,
		Fix:          m.Fix.String(),
		Suppressible: r.Suppressible(),
	}
}

// lookupRule accepts a code in any case or a kebab-case name.
func lookupRule(arg string) (rule.Rule, error) {
	if r, ok := rule.FromCode(arg); ok {
		return r, nil
	}
	if r, ok := rule.FromName(strings.ToLower(strings.TrimSpace(arg))); ok {
		return r, nil
	}
	if hint := settings.Suggest(arg); len(hint) > 0 {
		return rule.Invalid, fmt.Errorf("unknown rule %q (did you mean %s?)", arg, strings.Join(hint, ", "))
	}
	return rule.Invalid, fmt.Errorf("unknown rule %q", arg)
}

func outputFormat(cmd *cobra.Command) (string, error) {
	format, err := cmd.Flags().GetString("output-format")
	if err != nil {
		return "", fmt.Errorf("failed to get output-format flag: %w", err)
	}
	format = strings.ToLower(format)
	switch format {
	case "text", "json":
		return format, nil
	}
	return "", fmt.Errorf("unsupported format %q (must be text or json)", format)
}

func runRule(cmd *cobra.Command, args []string) error {
	format, err := outputFormat(cmd)
	if err != nil {
		return err
	}
	all, err := cmd.Flags().GetBool("all")
	if err != nil {
		return fmt.Errorf("failed to get all flag: %w", err)
	}
	var list []rule.Rule
	if all {
		list = rule.All()
	} else {
		r, err := lookupRule(args[0])
		if err != nil {
			return err
		}
		list = []rule.Rule{r}
	}

	out := cmd.OutOrStdout()
	if format == "json" {
		payload := make([]rulePayload, 0, len(list))
		for _, r := range list {
			payload = append(payload, newRulePayload(r))
		}
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		if all {
			return enc.Encode(payload)
		}
		return enc.Encode(payload[0])
	}
	for i, r := range list {
		if i > 0 {
			fmt.Fprintln(out)
		}
		explainRule(out, r)
	}
	return nil
}

func explainRule(out io.Writer, r rule.Rule) {
	m := r.Meta()
	fmt.Fprintf(out, "# %s (%s)\n\n", m.Name, m.Code)
	fmt.Fprintf(out, "Derived from the %s linter.\n\n", m.Linter)
	switch m.Fix {
	case rule.FixAlways:
		fmt.Fprint(out, "Fix is always available.\n\n")
	case rule.FixSometimes:
		fmt.Fprint(out, "Fix is sometimes available.\n\n")
	}
	if !r.Suppressible() {
		fmt.Fprint(out, "This rule cannot be suppressed with noqa.\n\n")
	}
	fmt.Fprintln(out, m.Summary)
}

func runRules(cmd *cobra.Command, args []string) error {
	format, err := outputFormat(cmd)
	if err != nil {
		return err
	}
	set := rule.AllRules()
	if len(args) > 0 {
		if set, err = rule.SelectAll(args); err != nil {
			return err
		}
	}
	list := set.Rules()

	out := cmd.OutOrStdout()
	if format == "json" {
		payload := make([]rulePayload, 0, len(list))
		for _, r := range list {
			payload = append(payload, newRulePayload(r))
		}
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(payload)
	}

	codeWidth, nameWidth := 0, 0
	for _, r := range list {
		codeWidth = max(codeWidth, runewidth.StringWidth(r.Code()))
		nameWidth = max(nameWidth, runewidth.StringWidth(r.Name()))
	}
	for _, r := range list {
		marker := "   "
		if r.Meta().Fix != rule.FixNone {
			marker = "[*]"
		}
		fmt.Fprintf(out, "%s %s %s  %s\n",
			runewidth.FillRight(r.Code(), codeWidth), marker,
			runewidth.FillRight(r.Name(), nameWidth), r.Linter())
	}
	return nil
}
