package main

import (
	"context"
	"fmt"
	"sort"

	"github.com/goliatone/go-metadata-cache/metadata"
	"github.com/goliatone/go-metadata-cache/pkg/di"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

func newRootCmd() *cobra.Command {
	v := viper.New()

	rootCmd := &cobra.Command{
		Use:           "metadatactl",
		Short:         "Inspect and reset the shared ORM metadata cache",
		SilenceUsage:  true,
		SilenceErrors: true,
		Version:       fmt.Sprintf("%s (%s)", Version, GitCommit),
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return readConfigFile(v)
		},
	}
	if err := bindFlags(v, rootCmd.PersistentFlags()); err != nil {
		panic(err)
	}

	rootCmd.AddCommand(newAdaptersCmd())
	rootCmd.AddCommand(newKindsCmd())
	rootCmd.AddCommand(newInspectCmd(v))
	rootCmd.AddCommand(newResetCmd(v))
	return rootCmd
}

// withContainer builds a container from the bound settings, runs fn and
// releases the backend.
func withContainer(ctx context.Context, v *viper.Viper, fn func(*di.Container) error) error {
	logger, err := newLogger(v.GetBool("verbose"))
	if err != nil {
		return fmt.Errorf("failed to create logger: %w", err)
	}
	defer logger.Sync()

	config, err := loadConfig(v)
	if err != nil {
		return err
	}
	container, err := di.NewContainer(ctx, config, logger)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := container.Close(); cerr != nil {
			logger.Warn("close failed", zap.Error(cerr))
		}
	}()
	return fn(container)
}

func newAdaptersCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "adapters",
		Short: "List the supported cache adapters",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			names := append(di.NewAdapterFactory().Names(), di.AdapterLocal)
			sort.Strings(names)
			for _, name := range names {
				fmt.Fprintln(cmd.OutOrStdout(), name)
			}
			return nil
		},
	}
}

func newKindsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "kinds",
		Short: "List the metadata kinds stored per model",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			for _, kind := range metadata.Kinds() {
				fmt.Fprintf(cmd.OutOrStdout(), "%-3d %s\n", int(kind), kind)
			}
			return nil
		},
	}
}

func newInspectCmd(v *viper.Viper) *cobra.Command {
	return &cobra.Command{
		Use:   "inspect <model>",
		Short: "Print the cached metadata row of a model as JSON",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withContainer(cmd.Context(), v, func(c *di.Container) error {
				model := metadata.ModelIdentity(args[0])
				row, ok := c.Store().Read(cmd.Context(), model)
				if !ok {
					return fmt.Errorf("%s: %w", model, errNotCached)
				}
				data, err := metadata.JSONSerializer().EncodeRow(row)
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), string(data))
				return nil
			})
		},
	}
}

func newResetCmd(v *viper.Viper) *cobra.Command {
	return &cobra.Command{
		Use:   "reset",
		Short: "Drop every cached metadata row",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withContainer(cmd.Context(), v, func(c *di.Container) error {
				if err := c.Store().Reset(cmd.Context()); err != nil {
					return fmt.Errorf("reset failed: %w", err)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "reset %s cache\n", c.Config().Adapter)
				return nil
			})
		},
	}
}
