package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/scribeworks/redline/internal/diff"
	"github.com/scribeworks/redline/internal/patchfile"
)

var diffCmd = &cobra.Command{
	Use:   "diff <old-file> <new-file>",
	Short: "Compute and print changes without opening a review",
	Args:  cobra.ExactArgs(2),
	RunE:  runDiff,
}

func init() {
	diffCmd.Flags().Bool("json", false, "print diff records as JSON")
	diffCmd.Flags().Bool("patch", false, "print a unified diff")
}

func runDiff(cmd *cobra.Command, args []string) error {
	oldContent, err := os.ReadFile(args[0])
	if err != nil {
		return fmt.Errorf("reading old file: %w", err)
	}
	newContent, err := os.ReadFile(args[1])
	if err != nil {
		return fmt.Errorf("reading new file: %w", err)
	}

	asJSON, _ := cmd.Flags().GetBool("json")
	asPatch, _ := cmd.Flags().GetBool("patch")

	if asJSON || asPatch {
		proposal, err := diff.BuildProposal(args[0], string(oldContent), string(newContent), loadedConfig.ContextChars)
		if err != nil {
			return err
		}
		if asPatch {
			fmt.Print(patchfile.Format(&proposal))
			return nil
		}
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(proposal)
	}

	changes := diff.Merge(diff.Compute(string(oldContent), string(newContent)))
	if len(changes) == 0 {
		fmt.Println("No changes.")
		return nil
	}

	paragraphs := diff.Group(changes, loadedConfig.ParagraphGap)
	for _, p := range paragraphs {
		fmt.Printf("¶ %s  lines %d–%d\n", p.ID, p.StartLine, p.EndLine)
		for _, c := range p.Changes {
			switch {
			case len(c.OldLines) > 0 && len(c.NewLines) > 0:
				fmt.Printf("  ~ %d: %s → %s\n", c.Line, strings.Join(c.OldLines, "⏎"), strings.Join(c.NewLines, "⏎"))
			case len(c.OldLines) > 0:
				fmt.Printf("  - %d: %s\n", c.Line, strings.Join(c.OldLines, "⏎"))
			default:
				fmt.Printf("  + %d: %s\n", c.Line, strings.Join(c.NewLines, "⏎"))
			}
		}
	}
	return nil
}
