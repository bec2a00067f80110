package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/mattn/go-runewidth"
	"github.com/spf13/cobra"

	"ebacheck/internal/profile"
	"ebacheck/internal/rules"
)

var rulesCmd = &cobra.Command{
	Use:   "rules",
	Short: "List the rule catalogue",
	Long:  `List every rule with its code, name, default severity and scope. With --profile the profile's view is listed.`,
	Args:  cobra.NoArgs,
	RunE:  runRules,
}

func init() {
	rulesCmd.Flags().String("format", "pretty", "output format (pretty|json)")
	rulesCmd.Flags().String("profile", "", "list the rules a profile selects")
}

type ruleJSON struct {
	Code     string `json:"code"`
	Name     string `json:"name"`
	Severity string `json:"severity"`
	Scope    string `json:"scope"`
	Title    string `json:"title"`
	Detail   string `json:"detail,omitempty"`
}

func runRules(cmd *cobra.Command, args []string) error {
	format, err := cmd.Flags().GetString("format")
	if err != nil {
		return fmt.Errorf("failed to get format flag: %w", err)
	}
	profilePath, err := cmd.Flags().GetString("profile")
	if err != nil {
		return fmt.Errorf("failed to get profile flag: %w", err)
	}

	reg := rules.Default()
	if profilePath != "" {
		prof, err := profile.Load(profilePath)
		if err != nil {
			return err
		}
		if reg, err = prof.Registry(reg); err != nil {
			return err
		}
	}

	switch strings.ToLower(format) {
	case "json":
		return renderRulesJSON(cmd.OutOrStdout(), reg)
	case "pretty":
		renderRulesPretty(cmd.OutOrStdout(), reg)
		return nil
	default:
		return fmt.Errorf("unsupported format %q (must be pretty or json)", format)
	}
}

func ruleTitle(r *rules.Rule) string {
	if r.Title != "" {
		return r.Title
	}
	return r.Code.Title()
}

func renderRulesPretty(out io.Writer, reg *rules.Registry) {
	widths := [3]int{len("CODE"), len("NAME"), len("SEVERITY")}
	for _, r := range reg.Rules() {
		widths[0] = max(widths[0], runewidth.StringWidth(r.Code.ID()))
		widths[1] = max(widths[1], runewidth.StringWidth(r.Name))
		widths[2] = max(widths[2], runewidth.StringWidth(r.Severity.Label()))
	}
	row := func(code, name, sev, scope, title string) {
		fmt.Fprintf(out, "%s  %s  %s  %s  %s\n",
			runewidth.FillRight(code, widths[0]),
			runewidth.FillRight(name, widths[1]),
			runewidth.FillRight(sev, widths[2]),
			runewidth.FillRight(scope, 5),
			title)
	}
	row("CODE", "NAME", "SEVERITY", "SCOPE", "TITLE")
	for _, r := range reg.Rules() {
		row(r.Code.ID(), r.Name, r.Severity.Label(), r.Scope.String(), ruleTitle(r))
	}
	fmt.Fprintf(out, "\n%d rules, EBA filing rules %s\n", reg.Len(), rules.RulebookVersion)
}

func renderRulesJSON(out io.Writer, reg *rules.Registry) error {
	payload := make([]ruleJSON, 0, reg.Len())
	for _, r := range reg.Rules() {
		payload = append(payload, ruleJSON{
			Code:     r.Code.ID(),
			Name:     r.Name,
			Severity: r.Severity.Label(),
			Scope:    r.Scope.String(),
			Title:    ruleTitle(r),
			Detail:   r.Detail,
		})
	}
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(payload)
}
