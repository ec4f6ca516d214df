package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"slices"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/c360studio/mcskg/export"
	"github.com/c360studio/mcskg/graph"
	"github.com/c360studio/mcskg/storage"
)

func rulesCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "rules",
		Short: "Inspect rules saved in the NATS KV rule bucket",
	}

	var listFormat string
	list := &cobra.Command{
		Use:   "list",
		Short: "List stored rules",
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withRuleStore(cmd.Context(), func(ctx context.Context, store *storage.RuleStore) error {
				rules, err := store.List(ctx)
				if err != nil {
					return err
				}
				return writeStoredRules(cmd.OutOrStdout(), listFormat, rules)
			})
		},
	}
	list.Flags().StringVarP(&listFormat, "format", "f", outputText, "Output format (text, json)")

	show := &cobra.Command{
		Use:   "show <id>",
		Short: "Show one stored rule with its statement and query",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withRuleStore(cmd.Context(), func(ctx context.Context, store *storage.RuleStore) error {
				r, err := store.Get(ctx, args[0])
				if err != nil {
					return err
				}
				return writeStoredRules(cmd.OutOrStdout(), outputJSON, []*storage.StoredRule{r})
			})
		},
	}

	del := &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a stored rule",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withRuleStore(cmd.Context(), func(ctx context.Context, store *storage.RuleStore) error {
				if err := store.Delete(ctx, args[0]); err != nil {
					return err
				}
				a.logger.Info("Deleted rule", "id", args[0])
				return nil
			})
		},
	}

	var (
		exportFormat  string
		exportProfile string
	)
	exp := &cobra.Command{
		Use:   "export",
		Short: "Export stored rules as RDF",
		RunE: func(cmd *cobra.Command, args []string) error {
			format, err := export.ParseFormat(exportFormat)
			if err != nil {
				return err
			}
			profile := a.cfg.Export.Profile
			if exportProfile != "" {
				profile = exportProfile
			}
			p, err := export.ParseProfile(profile)
			if err != nil {
				return err
			}
			return a.withRuleStore(cmd.Context(), func(ctx context.Context, store *storage.RuleStore) error {
				rules, err := store.List(ctx)
				if err != nil {
					return err
				}
				return a.exportStoredRules(cmd.OutOrStdout(), format, p, rules)
			})
		},
	}
	exp.Flags().StringVarP(&exportFormat, "format", "f", string(export.FormatTurtle), "RDF format (turtle, ntriples, jsonld)")
	exp.Flags().StringVar(&exportProfile, "profile", "", "RDF export profile (minimal, bfo)")

	cmd.AddCommand(list, show, del, exp)
	return cmd
}

func (a *app) withRuleStore(ctx context.Context, fn func(context.Context, *storage.RuleStore) error) error {
	conn, err := graph.Connect(a.cfg.NATS.URL)
	if err != nil {
		return err
	}
	defer conn.Close()

	store, err := a.openRuleStore(ctx, conn)
	if err != nil {
		return err
	}
	return fn(ctx, store)
}

func writeStoredRules(w io.Writer, format string, rules []*storage.StoredRule) error {
	if !slices.Contains([]string{outputText, outputJSON}, format) {
		return fmt.Errorf("unsupported format: %s", format)
	}
	if format == outputJSON {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		if len(rules) == 1 {
			return enc.Encode(rules[0])
		}
		return enc.Encode(rules)
	}

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tTEMPLATE\tUPDATED\tEXPRESSION")
	for _, r := range rules {
		fmt.Fprintf(tw, "%s\t%d\t%s\t%s\n", r.ID, r.TemplateID, r.UpdatedAt.Format(time.RFC3339), r.Expression)
	}
	return tw.Flush()
}

// exportStoredRules serializes stored rules. Their facts are recovered by
// parsing the stored expressions.
func (a *app) exportStoredRules(w io.Writer, format export.Format, profile export.Profile, rules []*storage.StoredRule) error {
	exporter := a.cfg.NewExporter(profile)
	for _, r := range rules {
		if err := exporter.Add(r.Statement, r.ConcreteRule(), r.Query); err != nil {
			a.logger.Warn("Skipping stored rule", "id", r.ID, "error", err)
		}
	}
	data, err := exporter.Export(format)
	if err != nil {
		return err
	}
	_, err = io.WriteString(w, data)
	return err
}
