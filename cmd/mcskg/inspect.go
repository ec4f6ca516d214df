package main

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/c360studio/mcskg/rule"
	"github.com/c360studio/mcskg/sparql"
)

func classifyCmd(a *app) *cobra.Command {
	var specialize bool

	cmd := &cobra.Command{
		Use:   "classify <statement>",
		Short: "Show which rule template a statement matches",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			statement := strings.Join(args, " ")
			w := cmd.OutOrStdout()

			tmpl, err := rule.Classify(statement)
			if err != nil {
				return err
			}
			fmt.Fprintf(w, "template %d (%s)\n", tmpl.ID, tmpl.Name)
			fmt.Fprintf(w, "  trigger:  %q\n", tmpl.Trigger)
			fmt.Fprintf(w, "  template: %s\n", tmpl.Expression)

			if !specialize {
				return nil
			}
			cr, err := rule.Specialize(tmpl, statement)
			if err != nil {
				return err
			}
			fact, err := cr.Resolve()
			if err != nil {
				return err
			}
			fmt.Fprintf(w, "  rule:     %s\n", cr.Expression)
			for _, slot := range fact.Slots() {
				fmt.Fprintf(w, "  %-9s %s (%s)\n", slot.Name+":", slot.Value, slot.Kind)
			}
			a.logger.Debug("Classified statement", "template", tmpl.ID, "rule", cr.UUID())
			return nil
		},
	}

	cmd.Flags().BoolVarP(&specialize, "specialize", "s", false, "Also extract entities and print the concrete rule")
	return cmd
}

func templatesCmd(a *app) *cobra.Command {
	var verbose bool

	cmd := &cobra.Command{
		Use:   "templates",
		Short: "List rule templates in classification order",
		RunE: func(cmd *cobra.Command, args []string) error {
			tr := sparql.NewTranslator(a.cfg.TranslatorOptions()...)
			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			if verbose {
				fmt.Fprintln(tw, "ID\tNAME\tTRIGGER\tRELATION\tEXPRESSION")
			} else {
				fmt.Fprintln(tw, "ID\tNAME\tTRIGGER\tRELATION")
			}
			for _, t := range rule.Templates() {
				if verbose {
					fmt.Fprintf(tw, "%d\t%s\t%q\t%s\t%s\n", t.ID, t.Name, t.Trigger, tr.Predicate(t.Relation), t.Expression)
					continue
				}
				fmt.Fprintf(tw, "%d\t%s\t%q\t%s\n", t.ID, t.Name, t.Trigger, t.Relation)
			}
			return tw.Flush()
		},
	}

	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "Show predicate IRIs and expressions")
	return cmd
}
