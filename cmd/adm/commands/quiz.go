package commands

import (
	"encoding/json"
	"fmt"

	"culturology/internal/observability"
	contextutils "culturology/internal/utils"

	"github.com/spf13/cobra"
)

// QuizCommands returns commands for previewing generated quizzes
func QuizCommands(open ContainerOpener, logger *observability.Logger) *cobra.Command {
	quizCmd := &cobra.Command{
		Use:   "quiz",
		Short: "Quiz generation tools",
	}

	var asJSON bool
	generateCmd := &cobra.Command{
		Use:   "generate <slug>",
		Short: "Generate a quiz for a culture, as the API would",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			container, err := open(ctx)
			if err != nil {
				return err
			}
			generator, err := container.GetQuizGenerator()
			if err != nil {
				return err
			}

			result, err := generator.Generate(ctx, args[0])
			if err != nil {
				logger.Error(ctx, "Quiz generation failed", err, map[string]interface{}{"culture_slug": args[0]})
				return err
			}

			if asJSON {
				raw, err := json.MarshalIndent(result.Items, "", "  ")
				if err != nil {
					return contextutils.WrapError(err, "failed to encode quiz")
				}
				fmt.Println(string(raw))
				return nil
			}

			fmt.Printf("Source: %s\n\n", result.Source)
			for _, item := range result.Items {
				fmt.Printf("%d. %s\n", item.ID, item.Question)
				for _, key := range []string{"A", "B", "C", "D"} {
					if opt, ok := item.Options[key]; ok {
						marker := " "
						if key == item.Correct {
							marker = "*"
						}
						fmt.Printf("   %s %s) %s\n", marker, key, opt)
					}
				}
				if item.Answer != nil {
					fmt.Printf("   Answer: %s\n", *item.Answer)
				}
			}
			return nil
		},
	}
	generateCmd.Flags().BoolVar(&asJSON, "json", false, "Print the raw JSON array")

	quizCmd.AddCommand(generateCmd)
	return quizCmd
}
