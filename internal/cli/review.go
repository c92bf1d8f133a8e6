package cli

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/scribeworks/redline/internal/diff"
	"github.com/scribeworks/redline/internal/editor"
	"github.com/scribeworks/redline/internal/model"
	"github.com/scribeworks/redline/internal/patchfile"
	"github.com/scribeworks/redline/internal/session"
	"github.com/scribeworks/redline/internal/tui"
)

var reviewCmd = &cobra.Command{
	Use:   "review [old-file new-file]",
	Short: "Open an interactive review session",
	Long: `Open an interactive TUI for reviewing proposed edits. By default,
diffs two document versions. A pre-computed proposal or a unified patch
can be supplied instead.

Examples:
  redline review draft.html revised.html      # diff two versions
  redline review --proposal edit.json         # AI tool-call proposal
  redline review --patch edit.diff draft.html # unified patch vs a base`,
	Args: cobra.MaximumNArgs(2),
	RunE: runReview,
}

func init() {
	reviewCmd.Flags().StringP("proposal", "P", "", "path to a proposal JSON file")
	reviewCmd.Flags().String("patch", "", "path to a unified diff to review against the base file")
	reviewCmd.Flags().StringP("output", "o", "", "write applied content to file instead of stdout")
}

func runReview(cmd *cobra.Command, args []string) error {
	proposal, err := loadProposal(cmd, args)
	if err != nil {
		return err
	}

	doc := proposal.FilePath
	if doc == "" {
		doc = "document"
	}

	buf := editor.NewBuffer(proposal.OldContent)
	buf.MarkArea(proposal.DiffAreaID)
	mgr := session.NewManager(buf, loadedConfig.ParagraphGap, loadedConfig.ContextChars)
	if _, err := mgr.Open(doc, proposal); err != nil {
		return err
	}

	state, err := tui.Run(mgr, doc)
	if err != nil {
		return err
	}

	switch state {
	case session.StateApplied:
		return writeApplied(cmd, buf.Content())
	case session.StateDiscarded:
		fmt.Println("Proposal discarded; document unchanged.")
	default:
		fmt.Println("Review left pending; no changes applied.")
	}
	return nil
}

func loadProposal(cmd *cobra.Command, args []string) (model.Proposal, error) {
	proposalPath, _ := cmd.Flags().GetString("proposal")
	patchPath, _ := cmd.Flags().GetString("patch")

	switch {
	case proposalPath != "":
		data, err := os.ReadFile(proposalPath)
		if err != nil {
			return model.Proposal{}, fmt.Errorf("reading proposal: %w", err)
		}
		var p model.Proposal
		if err := json.Unmarshal(data, &p); err != nil {
			return model.Proposal{}, fmt.Errorf("parsing proposal: %w", err)
		}
		return p, nil

	case patchPath != "":
		if len(args) != 1 {
			return model.Proposal{}, fmt.Errorf("--patch requires the base file as argument")
		}
		base, err := os.ReadFile(args[0])
		if err != nil {
			return model.Proposal{}, fmt.Errorf("reading base file: %w", err)
		}
		raw, err := os.ReadFile(patchPath)
		if err != nil {
			return model.Proposal{}, fmt.Errorf("reading patch: %w", err)
		}
		areaID := diff.NewAreaID()
		diffs, err := patchfile.Parse(string(raw), areaID)
		if err != nil {
			return model.Proposal{}, err
		}
		return model.Proposal{
			DiffAreaID: areaID,
			Diffs:      diffs,
			OldContent: string(base),
			FilePath:   args[0],
		}, nil

	case len(args) == 2:
		oldContent, err := os.ReadFile(args[0])
		if err != nil {
			return model.Proposal{}, fmt.Errorf("reading old file: %w", err)
		}
		newContent, err := os.ReadFile(args[1])
		if err != nil {
			return model.Proposal{}, fmt.Errorf("reading new file: %w", err)
		}
		return diff.BuildProposal(args[0], string(oldContent), string(newContent), loadedConfig.ContextChars)

	default:
		return model.Proposal{}, fmt.Errorf("provide two files, --proposal, or --patch")
	}
}

func writeApplied(cmd *cobra.Command, content string) error {
	output, _ := cmd.Flags().GetString("output")
	if output == "" {
		fmt.Print(content)
		return nil
	}
	if err := os.WriteFile(output, []byte(content), 0o644); err != nil {
		return fmt.Errorf("writing output: %w", err)
	}
	fmt.Printf("Applied content written to %s\n", output)
	return nil
}
