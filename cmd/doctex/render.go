package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/dgallion1/doctex/internal/config"
	"github.com/dgallion1/doctex/internal/parser"
	"github.com/dgallion1/doctex/internal/pipeline"
)

type renderFlags struct {
	abbreviations string
	math          string
	title         string
	output        string
	standalone    bool
	strict        bool
	pdftotext     bool
}

func (a *app) newRenderCmd() *cobra.Command {
	var f renderFlags
	cmd := &cobra.Command{
		Use:   "render <file>",
		Short: "Render a document to LaTeX",
		Example: `  doctex render notes.md --abbreviations abbr.yaml
  doctex render report.docx --standalone -o report.tex`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.render(cmd, args[0], f)
		},
	}
	cmd.Flags().StringVar(&f.abbreviations, "abbreviations", "", "abbreviation file (YAML, TOML or JSON)")
	cmd.Flags().StringVar(&f.math, "math", "", "math macro file (YAML, TOML or JSON)")
	cmd.Flags().StringVar(&f.title, "title", "", "override the document title")
	cmd.Flags().StringVarP(&f.output, "output", "o", "", "write to a file instead of stdout")
	cmd.Flags().BoolVar(&f.standalone, "standalone", false, "emit a complete document with preamble")
	cmd.Flags().BoolVar(&f.strict, "strict", false, "fail on node kinds that cannot be rendered")
	cmd.Flags().BoolVar(&f.pdftotext, "pdftotext", true, "fall back to pdftotext for PDFs")
	return cmd
}

func (a *app) render(cmd *cobra.Command, path string, f renderFlags) error {
	log := a.log
	abbreviations, err := config.LoadStringMap(f.abbreviations)
	if err != nil {
		return err
	}
	macros, err := config.LoadStringMap(f.math)
	if err != nil {
		return err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	r := &pipeline.Renderer{
		Abbreviations: abbreviations,
		Math:          macros,
		Parser:        parser.Options{PDFFallbackPdftotext: f.pdftotext},
		Log:           log,
	}
	out, err := r.Render(data, path, pipeline.RenderOptions{
		Title:      f.title,
		Strict:     f.strict,
		Standalone: f.standalone,
	}, func(s pipeline.JobStatus) {
		log.Debug("phase", "file", path, "status", s)
	})
	if err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}
	log.Info("rendered", "file", path,
		"title", out.Title,
		"abbreviations", out.Abbreviations,
		"warnings", len(out.Warnings))

	if f.output == "" {
		_, err = fmt.Fprint(cmd.OutOrStdout(), out.Tex())
		return err
	}
	return os.WriteFile(f.output, []byte(out.Tex()), 0o644)
}
