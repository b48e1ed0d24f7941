// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"doclens/internal/core"
	"doclens/internal/document"
)

func newExtractCmd(root *rootOptions) *cobra.Command {
	var (
		ocr    bool
		asJSON bool
	)

	cmd := &cobra.Command{
		Use:   "extract <file>",
		Short: "Print the normalized text and tables of a document without analyzing it",
		Args: func(cmd *cobra.Command, args []string) error {
			if len(args) != 1 {
				return usagef("extract takes exactly one file, got %d", len(args))
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := root.load(cmd)
			if err != nil {
				return err
			}
			if !cmd.Flags().Changed("ocr") {
				ocr = a.cfg.Defaults.EnableOCR
			}

			data, err := os.ReadFile(filepath.Clean(args[0]))
			if err != nil {
				return err
			}

			analyzer, err := core.NewAnalyzerFromConfig(cmd.Context(), a.cfg, a.logger)
			if err != nil {
				return err
			}
			defer analyzer.Close()
			if observer := a.observer(cmd); observer != nil {
				analyzer.SetObserver(observer)
			}

			doc, err := analyzer.Extract(cmd.Context(), args[0], data, ocr)
			if err != nil {
				return err
			}
			for _, w := range doc.Warnings {
				a.logger.Warn().Str("file", args[0]).Msg(w)
			}

			if asJSON {
				out, err := json.MarshalIndent(doc, "", "  ")
				if err != nil {
					return err
				}
				_, err = fmt.Fprintf(cmd.OutOrStdout(), "%s\n", out)
				return err
			}
			return writeExtracted(cmd.OutOrStdout(), doc)
		},
	}

	cmd.Flags().BoolVar(&ocr, "ocr", true, "OCR PDF pages without a text layer")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the extracted document as JSON")
	return cmd
}

func writeExtracted(w io.Writer, doc *document.Document) error {
	var b strings.Builder
	b.WriteString(doc.Text)
	if !strings.HasSuffix(doc.Text, "\n") {
		b.WriteByte('\n')
	}
	for i, t := range doc.Tables {
		if t.Page > 0 {
			fmt.Fprintf(&b, "\n--- Table %d (page %d) ---\n", i+1, t.Page)
		} else {
			fmt.Fprintf(&b, "\n--- Table %d ---\n", i+1)
		}
		for _, row := range t.Rows {
			b.WriteString(strings.Join(row, " | "))
			b.WriteByte('\n')
		}
	}
	_, err := io.WriteString(w, b.String())
	return err
}
