package commands

import (
	"fmt"
	"os"

	"culturology/internal/config"
	"culturology/internal/models"
	"culturology/internal/observability"
	contextutils "culturology/internal/utils"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

// CultureCommands returns the culture data commands
func CultureCommands(open ContainerOpener, logger *observability.Logger) *cobra.Command {
	culturesCmd := &cobra.Command{
		Use:   "cultures",
		Short: "Manage culture records",
	}

	culturesCmd.AddCommand(listCulturesCmd(open, logger))
	culturesCmd.AddCommand(importCulturesCmd(open, logger))

	return culturesCmd
}

func listCulturesCmd(open ContainerOpener, logger *observability.Logger) *cobra.Command {
	var skip, limit int

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List cultures ordered by name",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			container, err := open(ctx)
			if err != nil {
				return err
			}
			cultureService, err := container.GetCultureService()
			if err != nil {
				return err
			}

			cultures, err := cultureService.ListCultures(ctx, skip, limit)
			if err != nil {
				logger.Error(ctx, "Failed to list cultures", err, nil)
				return err
			}
			if len(cultures) == 0 {
				fmt.Println("No cultures found")
				return nil
			}

			fmt.Printf("%-5s %-24s %-28s %-16s %-8s\n", "ID", "Slug", "Name", "Region", "Images")
			printRule(85)
			for _, c := range cultures {
				fmt.Printf("%-5d %-24s %-28s %-16s %-8d\n", c.ID, c.Slug, c.Name, orDash(c.Region), len(c.Gallery))
			}
			return nil
		},
	}

	cmd.Flags().IntVar(&skip, "skip", 0, "Number of cultures to skip")
	cmd.Flags().IntVar(&limit, "limit", config.MaxPageLimit, "Maximum number of cultures to show")
	return cmd
}

func importCulturesCmd(open ContainerOpener, logger *observability.Logger) *cobra.Command {
	var skipExisting bool

	cmd := &cobra.Command{
		Use:   "import <file>",
		Short: "Import cultures from a JSON or YAML list",
		Long: `Import cultures from a file holding a list of culture objects.

JSON is accepted as well as YAML. Each entry uses the same fields as POST /api/cultures.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			inputs, err := readCultureInputs(args[0])
			if err != nil {
				return err
			}

			container, err := open(ctx)
			if err != nil {
				return err
			}
			cultureService, err := container.GetCultureService()
			if err != nil {
				return err
			}

			created, skipped := 0, 0
			for _, in := range inputs {
				if _, err := cultureService.CreateCulture(ctx, in); err != nil {
					if skipExisting && contextutils.IsError(err, contextutils.ErrRecordExists) {
						skipped++
						continue
					}
					logger.Error(ctx, "Failed to import culture", err, map[string]interface{}{"slug": in.Slug})
					return contextutils.WrapErrorf(err, "failed to import culture %q", in.Slug)
				}
				created++
			}

			logger.Info(ctx, "Imported cultures", map[string]interface{}{"created": created, "skipped": skipped})
			fmt.Printf("Imported %d cultures (%d skipped)\n", created, skipped)
			return nil
		},
	}

	cmd.Flags().BoolVar(&skipExisting, "skip-existing", false, "Skip entries whose slug already exists")
	return cmd
}

// readCultureInputs decodes a culture list; yaml.v3 reads JSON documents too
func readCultureInputs(path string) ([]models.CultureInput, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, contextutils.WrapErrorf(err, "failed to read %s", path)
	}

	var inputs []models.CultureInput
	if err := yaml.Unmarshal(data, &inputs); err != nil {
		return nil, contextutils.NewAppErrorWithCause(
			contextutils.ErrorCodeInvalidFormat,
			contextutils.SeverityError,
			"Invalid culture file",
			err.Error(),
			err,
		)
	}
	return inputs, nil
}
