package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/hanko-field/configurator/internal/domain"
	"github.com/hanko-field/configurator/internal/nodemap"
	"github.com/hanko-field/configurator/internal/paramset"
)

var errInvalidParameterSet = errors.New("parameter set has validation errors")

type rootOptions struct {
	rulesFile   string
	sceneLabels map[string]string
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}
	root := &cobra.Command{
		Use:           "nodemapctl",
		Short:         "Inspect and validate configurator parameter sets",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&opts.rulesFile, "rules", "", "YAML path correction table (defaults to the built-in table)")
	root.PersistentFlags().StringToStringVar(&opts.sceneLabels, "scene-label", nil, "scene prefix label, e.g. --scene-label doos=Box")

	root.AddCommand(
		newMapCmd(opts),
		newValidateCmd(opts),
		newNormalizeCmd(opts),
		newKeysCmd(),
	)
	return root
}

func (o *rootOptions) engineOptions() ([]nodemap.Option, error) {
	n, err := o.normalizer()
	if err != nil {
		return nil, err
	}
	var opts []nodemap.Option
	if n != nil {
		opts = append(opts, nodemap.WithNormalizer(n))
	}
	if len(o.sceneLabels) > 0 {
		labels := make(map[string]string, len(o.sceneLabels))
		for k, v := range o.sceneLabels {
			labels[strings.ToLower(strings.TrimSpace(k))] = strings.TrimSpace(v)
		}
		opts = append(opts, nodemap.WithSceneLabels(labels))
	}
	return opts, nil
}

func (o *rootOptions) normalizer() (*nodemap.Normalizer, error) {
	if strings.TrimSpace(o.rulesFile) == "" {
		return nil, nil
	}
	f, err := os.Open(o.rulesFile)
	if err != nil {
		return nil, fmt.Errorf("failed to open rules: %w", err)
	}
	defer f.Close()

	rules, err := nodemap.LoadRules(f)
	if err != nil {
		return nil, err
	}
	return nodemap.NewNormalizer(rules)
}

func newMapCmd(opts *rootOptions) *cobra.Command {
	var format string
	cmd := &cobra.Command{
		Use:   "map FILE",
		Short: "Compile a parameter set into its node mapping",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			doc, err := paramset.LoadFile(args[0])
			if err != nil {
				return err
			}
			engineOpts, err := opts.engineOptions()
			if err != nil {
				return err
			}

			stderr := cmd.ErrOrStderr()
			engineOpts = append(engineOpts, nodemap.WithSkipHook(func(p domain.Parameter, err error) {
				fmt.Fprintf(stderr, "skipped %q: %v\n", p.NodeID, err)
			}))
			mapping := nodemap.New(engineOpts...).Assemble(doc.DomainParameters())
			return writeStructured(cmd.OutOrStdout(), format, mapping)
		},
	}
	cmd.Flags().StringVarP(&format, "format", "f", "json", "output format: json or yaml")
	return cmd
}

func newValidateCmd(opts *rootOptions) *cobra.Command {
	var format string
	cmd := &cobra.Command{
		Use:   "validate FILE",
		Short: "Report errors, warnings and suggestions for a parameter set",
		Long:  "Report errors, warnings and suggestions for a parameter set. Exits with status 1 when the set has errors.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			doc, err := paramset.LoadFile(args[0])
			if err != nil {
				return err
			}
			engineOpts, err := opts.engineOptions()
			if err != nil {
				return err
			}

			report := nodemap.New(engineOpts...).Validate(doc.DomainParameters())
			out := cmd.OutOrStdout()
			if format == "text" {
				writeReport(out, report)
			} else if err := writeStructured(out, format, report); err != nil {
				return err
			}
			if !report.Valid {
				return errInvalidParameterSet
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&format, "format", "f", "text", "output format: text, json or yaml")
	return cmd
}

func newNormalizeCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "normalize PATH...",
		Short: "Apply the path correction table to node paths",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			n, err := opts.normalizer()
			if err != nil {
				return err
			}
			if n == nil {
				n = nodemap.DefaultNormalizer()
			}
			for _, path := range args {
				fmt.Fprintln(cmd.OutOrStdout(), n.Normalize(path))
			}
			return nil
		},
	}
}

func newKeysCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "keys IDENTIFIER",
		Short: "Show how an identifier decomposes and the lookup keys it registers",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			d := nodemap.Decompose(args[0])
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "path:  %s\n", d.Path)
			fmt.Fprintf(out, "leaf:  %s\n", d.LeafParam)
			fmt.Fprintf(out, "label: %s\n", d.DisplayNameGuess)
			seen := make(map[string]bool, 4)
			for _, key := range nodemap.KeyVariants(args[0]) {
				if seen[key] {
					continue
				}
				seen[key] = true
				fmt.Fprintf(out, "key:   %s\n", key)
			}
			return nil
		},
	}
}

func writeStructured(w io.Writer, format string, v any) error {
	switch strings.ToLower(format) {
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	case "yaml":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(v); err != nil {
			return err
		}
		return enc.Close()
	}
	return fmt.Errorf("unsupported format %q", format)
}

func writeReport(w io.Writer, report nodemap.Report) {
	for _, issue := range report.Issues {
		fmt.Fprintf(w, "%-10s %-20s %s\n", issue.Severity, issue.Code, issue.Message)
	}
	status := "valid"
	if !report.Valid {
		status = "invalid"
	}
	fmt.Fprintf(w, "%s: %d error(s), %d warning(s), %d suggestion(s)\n",
		status, len(report.Errors), len(report.Warnings), len(report.Suggestions))
}
