package app

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/stacklok/envsync/internal/promotion"
	"github.com/stacklok/envsync/internal/usecase"
)

// promoteFlags are shared by diff and publish
type promoteFlags struct {
	v *viper.Viper
}

func bindPromoteFlags(cmd *cobra.Command) promoteFlags {
	v := viper.New()
	cmd.Flags().String("org", "", "Organization id (required)")
	cmd.Flags().String("user", "envsync-cli", "User id recorded as the author of changes")
	cmd.Flags().String("source", "", "Source environment id (default: the development environment)")
	cmd.Flags().String("target", "", "Target environment id (required)")
	cmd.Flags().StringP("output", "o", outputTable, "Output format (table, json)")
	_ = cmd.MarkFlagRequired("org")
	_ = cmd.MarkFlagRequired("target")

	for _, name := range []string{"org", "user", "source", "target", "output"} {
		if err := v.BindPFlag(name, cmd.Flags().Lookup(name)); err != nil {
			panic(err)
		}
	}
	return promoteFlags{v: v}
}

func (f promoteFlags) user() promotion.UserContext {
	return promotion.UserContext{
		UserID:         f.v.GetString("user"),
		OrganizationID: f.v.GetString("org"),
		EnvironmentID:  f.v.GetString("target"),
	}
}

func (f promoteFlags) output() (string, error) {
	switch format := f.v.GetString("output"); format {
	case outputTable, outputJSON:
		return format, nil
	default:
		return "", fmt.Errorf("unsupported output format %q", format)
	}
}

// withComponents loads configuration, wires the components and runs fn
func withComponents(cmd *cobra.Command, fn func(ctx context.Context, c *components) error) error {
	configPath, err := cmd.Flags().GetString("config")
	if err != nil {
		return err
	}
	cfg, err := loadConfig(configPath)
	if err != nil {
		return err
	}
	ctx := cmd.Context()
	c, err := buildComponents(ctx, cfg)
	if err != nil {
		return err
	}
	defer c.close(context.WithoutCancel(ctx))
	return fn(ctx, c)
}

func newDiffCmd() *cobra.Command {
	var flags promoteFlags
	cmd := &cobra.Command{
		Use:   "diff",
		Short: "Show the changes a publish would apply",
		RunE: func(cmd *cobra.Command, _ []string) error {
			format, err := flags.output()
			if err != nil {
				return err
			}
			return withComponents(cmd, func(ctx context.Context, c *components) error {
				resp, err := c.diff.Execute(ctx, usecase.DiffCommand{
					User:                flags.user(),
					SourceEnvironmentID: flags.v.GetString("source"),
					TargetEnvironmentID: flags.v.GetString("target"),
				})
				if err != nil {
					return err
				}
				return renderDiff(cmd.OutOrStdout(), resp, format)
			})
		},
	}
	flags = bindPromoteFlags(cmd)
	return cmd
}

func newPublishCmd() *cobra.Command {
	var flags promoteFlags
	cmd := &cobra.Command{
		Use:   "publish",
		Short: "Publish the source environment into the target",
		Long: `Publish creates, updates and deletes target resources so the target matches
the source. Use --resource type:identifier (repeatable) to publish a subset and
--dry-run to report what would change without writing.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			format, err := flags.output()
			if err != nil {
				return err
			}
			selectors, err := parseSelectors(flags.v.GetStringSlice("resource"))
			if err != nil {
				return err
			}
			return withComponents(cmd, func(ctx context.Context, c *components) error {
				transactional := c.cfg.Promotion.Transactional
				if cmd.Flags().Changed("transactional") {
					transactional = flags.v.GetBool("transactional")
				}
				batchSize := flags.v.GetInt("batch-size")
				if batchSize == 0 {
					batchSize = c.cfg.Promotion.BatchSize
				}

				resp, err := c.publish.Execute(ctx, usecase.PublishCommand{
					User:                flags.user(),
					SourceEnvironmentID: flags.v.GetString("source"),
					TargetEnvironmentID: flags.v.GetString("target"),
					Options: promotion.SyncOptions{
						DryRun:    flags.v.GetBool("dry-run"),
						BatchSize: batchSize,
						Resources: selectors,
					},
					Transactional: transactional,
				})
				if err != nil {
					return err
				}
				return renderPublish(cmd.OutOrStdout(), resp, format)
			})
		},
	}
	flags = bindPromoteFlags(cmd)
	cmd.Flags().Bool("dry-run", false, "Report what would change without writing")
	cmd.Flags().Int("batch-size", 0, "Deletion batch size (default from configuration)")
	cmd.Flags().StringSlice("resource", nil, "Publish only this resource, as type:identifier (repeatable)")
	cmd.Flags().Bool("transactional", false, "Roll back every write when any resource fails")
	for _, name := range []string{"dry-run", "batch-size", "resource", "transactional"} {
		if err := flags.v.BindPFlag(name, cmd.Flags().Lookup(name)); err != nil {
			panic(err)
		}
	}
	return cmd
}

// parseSelectors parses type:identifier pairs
func parseSelectors(values []string) ([]promotion.ResourceSelector, error) {
	selectors := make([]promotion.ResourceSelector, 0, len(values))
	for _, value := range values {
		rt, id, ok := strings.Cut(value, ":")
		if !ok || rt == "" || id == "" {
			return nil, fmt.Errorf("invalid resource %q, expected type:identifier", value)
		}
		selectors = append(selectors, promotion.ResourceSelector{
			ResourceType: promotion.ResourceType(rt),
			ResourceID:   id,
		})
	}
	return selectors, nil
}
