package commands

import (
	"fmt"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/sana-a-khan/fabrix/internal/infrastructure/htmltext"
	"github.com/sana-a-khan/fabrix/internal/usecase"
)

func newSelectCommand() *cobra.Command {
	var showText bool

	cmd := &cobra.Command{
		Use:   "select <page.html|->",
		Short: "Ranks the composition candidates found in an HTML page.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			in, err := openInput(cmd, args[0])
			if err != nil {
				return err
			}
			defer in.Close()

			blocks, err := htmltext.Blocks(in)
			if err != nil {
				return err
			}

			result := usecase.NewCandidateSelector().Select(blocks)
			out := cmd.OutOrStdout()

			if len(result.Blocks) == 0 {
				fmt.Fprintln(out, "no composition candidates found")
				return nil
			}

			t := table.NewWriter()
			t.SetOutputMirror(out)
			t.AppendHeader(table.Row{"#", "Score", "Text"})
			for i, block := range result.Blocks {
				t.AppendRow(table.Row{i + 1, block.Score, preview(block.Text, 80)})
			}
			t.SetStyle(table.StyleRounded)
			t.Render()

			if showText {
				fmt.Fprintln(out)
				fmt.Fprintln(out, result.Text)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&showText, "text", false, "also print the concatenated candidate text")
	return cmd
}

func preview(s string, limit int) string {
	runes := []rune(strings.TrimSpace(s))
	if len(runes) <= limit {
		return string(runes)
	}
	return string(runes[:limit-3]) + "..."
}
