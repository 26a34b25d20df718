package commands

import (
	"fmt"
	"io"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/sana-a-khan/fabrix/internal/domain"
	"github.com/sana-a-khan/fabrix/internal/usecase"
)

func newGradeCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "grade <extraction.json|->",
		Short: "Parses an extraction JSON document, reassigns sections and grades the main fibers.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			in, err := openInput(cmd, args[0])
			if err != nil {
				return err
			}
			defer in.Close()

			raw, err := io.ReadAll(in)
			if err != nil {
				return err
			}

			parsed, err := usecase.ParseExtraction(string(raw))
			if err != nil {
				return err
			}
			record := usecase.NewSectionClassifier(zerolog.Nop()).Classify(parsed)

			out := cmd.OutOrStdout()
			t := table.NewWriter()
			t.SetOutputMirror(out)
			t.AppendHeader(table.Row{"Section", "Fiber", "%", "Category"})
			appendSection(t, "main", record.Fibers)
			appendSection(t, "lining", record.Lining)
			appendSection(t, "trim", record.Trim)
			for _, other := range record.Other {
				appendSection(t, other.Label, other.Fibers)
			}
			t.SetStyle(table.StyleRounded)
			t.Render()

			fmt.Fprintf(out, "Grade: %s\n", record.CompositionGrade)
			return nil
		},
	}
}

func appendSection(t table.Writer, section string, fibers []domain.FiberEntry) {
	for _, f := range fibers {
		t.AppendRow(table.Row{section, f.Name, f.Percentage, usecase.ClassifyFiber(f.Name).String()})
	}
}
