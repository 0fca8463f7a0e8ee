package commands

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/benvon/life-rpg/internal/models"
	"github.com/benvon/life-rpg/internal/services/braindump"
	"github.com/benvon/life-rpg/internal/services/quests"
	"github.com/benvon/life-rpg/internal/validation"
)

// NewClassifyCmd creates a command that runs the brain dump classifier
// locally, without a database, so keyword changes can be checked by hand.
func NewClassifyCmd() *cobra.Command {
	var (
		text   string
		output string
	)

	cmd := &cobra.Command{
		Use:   "classify",
		Short: "Classify a brain dump locally",
		Long:  "Run the keyword classifier on --text (or stdin) and print the classification plus the quests or journal entries it would create",
		RunE: func(cmd *cobra.Command, args []string) error {
			if text == "" {
				raw, err := io.ReadAll(io.LimitReader(cmd.InOrStdin(), int64(validation.MaxBrainDumpLength)*4))
				if err != nil {
					return fmt.Errorf("read stdin: %w", err)
				}
				text = string(raw)
			}
			text = validation.SanitizeText(text)
			if text == "" {
				return fmt.Errorf("nothing to classify: pass --text or pipe text on stdin")
			}
			if n := len([]rune(text)); n > validation.MaxBrainDumpLength {
				return fmt.Errorf("text is %d characters, limit is %d", n, validation.MaxBrainDumpLength)
			}

			dump := &models.BrainDump{
				ID:             uuid.New(),
				RawText:        text,
				Status:         models.BrainDumpStatusClassified,
				Classification: braindump.Classify(text),
			}
			plan, err := quests.NewMaterializer(nil, nil).Plan(dump)
			if err != nil {
				return err
			}

			return writeReport(cmd.OutOrStdout(), output, classifyReport{
				Classification: dump.Classification,
				Plan:           plan,
			})
		},
	}

	cmd.Flags().StringVar(&text, "text", "", "Brain dump text (reads stdin when empty)")
	cmd.Flags().StringVarP(&output, "output", "o", "yaml", "Output format: yaml or json")
	return cmd
}

type classifyReport struct {
	Classification *models.ClassificationResult `json:"classification" yaml:"classification"`
	Plan           *quests.Result               `json:"plan" yaml:"plan"`
}

// writeReport encodes v as yaml or json. YAML goes through a JSON round trip
// so both formats share the json field names.
func writeReport(w io.Writer, format string, v any) error {
	switch strings.ToLower(format) {
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	case "yaml", "":
		raw, err := json.Marshal(v)
		if err != nil {
			return fmt.Errorf("encode report: %w", err)
		}
		var generic any
		if err := yaml.Unmarshal(raw, &generic); err != nil {
			return fmt.Errorf("encode report: %w", err)
		}
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(generic); err != nil {
			return fmt.Errorf("encode report: %w", err)
		}
		return enc.Close()
	default:
		return fmt.Errorf("unknown output format %q (want yaml or json)", format)
	}
}
