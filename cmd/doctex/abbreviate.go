package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/dgallion1/doctex/internal/abbrev"
	"github.com/dgallion1/doctex/internal/config"
	"github.com/dgallion1/doctex/internal/doctree"
	"github.com/dgallion1/doctex/internal/parser"
)

// treeDocument is the JSON form the json parser reads back.
type treeDocument struct {
	Title       string              `json:"title"`
	Root        *doctree.Node       `json:"root"`
	Frontmatter doctree.Frontmatter `json:"frontmatter"`
}

func (a *app) newAbbreviateCmd() *cobra.Command {
	var abbreviations string
	cmd := &cobra.Command{
		Use:   "abbreviate <file>",
		Short: "Mark abbreviations and print the node tree as JSON",
		Long: `Parse a document, mark every configured abbreviation and print the tree.
Frontmatter abbreviations take precedence over the file given with --abbreviations.
The output can be fed back to "doctex render".`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := args[0]
			defaults, err := config.LoadStringMap(abbreviations)
			if err != nil {
				return err
			}
			p, err := parser.ForFile(path, parser.Options{PDFFallbackPdftotext: true})
			if err != nil {
				return err
			}
			data, err := os.ReadFile(path)
			if err != nil {
				return err
			}
			tree, err := p.Parse(bytes.NewReader(data), path)
			if err != nil {
				return fmt.Errorf("%s: %w", path, err)
			}

			abbrev.Transform(tree.Root, abbrev.Merge(defaults, tree.Meta.Abbreviations))
			a.log.Info("abbreviated", "file", path,
				"abbreviations", len(doctree.SelectAll(tree.Root, doctree.KindAbbreviation)))

			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(treeDocument{Title: tree.Title, Root: tree.Root, Frontmatter: tree.Meta})
		},
	}
	cmd.Flags().StringVar(&abbreviations, "abbreviations", "", "abbreviation file (YAML, TOML or JSON)")
	return cmd
}
