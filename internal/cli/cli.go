package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/specialistvlad/robogrid/internal/app"
	"github.com/specialistvlad/robogrid/internal/config"
	"github.com/specialistvlad/robogrid/internal/registry"
	"github.com/spf13/cobra"
)

// Execute runs the command line given by args. Every returned error is an
// *ExitError.
func Execute(ctx context.Context, args []string, outW, errW io.Writer, opts ...app.Option) error {
	root := NewRootCommand(outW, errW, opts...)
	root.SetArgs(args)
	err := root.ExecuteContext(ctx)
	if err == nil {
		return nil
	}
	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return exitErr
	}
	// cobra reports unknown commands and argument count errors as plain errors.
	return usageError("%s", err)
}

// NewRootCommand builds the robogrid command tree. Command output goes to outW,
// logs to errW. opts are passed to every App the commands create.
func NewRootCommand(outW, errW io.Writer, opts ...app.Option) *cobra.Command {
	var global globalFlags

	root := &cobra.Command{
		Use:   "robogrid",
		Short: "Build, run and compile robot node graphs",
		Long: `robogrid executes node graphs against a simulated or remote robot and
compiles them into standalone Python scripts.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.SetOut(outW)
	root.SetErr(errW)
	root.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		return usageError("%s", err)
	})
	global.register(root.PersistentFlags())

	newApp := func(cmd *cobra.Command, extra func(*config.Config)) (*app.App, error) {
		cfg := config.Default()
		if global.configPath != "" {
			loaded, err := config.LoadFile(global.configPath, cfg)
			if err != nil {
				return nil, usageError("%s", err)
			}
			cfg = loaded
		}
		global.apply(cmd, &cfg)
		if extra != nil {
			extra(&cfg)
		}
		if err := cfg.Validate(); err != nil {
			return nil, usageError("invalid configuration: %s", err)
		}
		a, err := app.NewApp(outW, errW, cfg, append([]app.Option{app.WithVariables(global.variables())}, opts...)...)
		if err != nil {
			return nil, failure(err)
		}
		return a, nil
	}

	root.AddCommand(
		runCommand(newApp),
		generateCommand(newApp),
		validateCommand(newApp),
		formatCommand(newApp),
		nodesCommand(newApp),
	)
	return root
}

type appFactory func(cmd *cobra.Command, extra func(*config.Config)) (*app.App, error)

func graphArg(cmd *cobra.Command, args []string) error {
	if len(args) != 1 {
		return usageError("%s expects exactly one graph file, got %d arguments", cmd.CommandPath(), len(args))
	}
	return nil
}

func runCommand(newApp appFactory) *cobra.Command {
	var flags runFlags
	cmd := &cobra.Command{
		Use:   "run GRAPH.hcl",
		Short: "Execute a graph against the robot session",
		Args:  graphArg,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd, func(cfg *config.Config) { flags.apply(cmd, cfg) })
			if err != nil {
				return err
			}
			if _, err := a.Run(cmd.Context(), args[0]); err != nil {
				return failure(err)
			}
			return nil
		},
	}
	flags.register(cmd.Flags())
	return cmd
}

func generateCommand(newApp appFactory) *cobra.Command {
	var output string
	var indent int
	cmd := &cobra.Command{
		Use:   "generate GRAPH.hcl",
		Short: "Compile a graph into a standalone Python script",
		Args:  graphArg,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd, func(cfg *config.Config) {
				if cmd.Flags().Changed("indent") {
					cfg.Codegen.Indent = indent
				}
			})
			if err != nil {
				return err
			}

			w := cmd.OutOrStdout()
			if output != "" && output != "-" {
				f, err := os.Create(output)
				if err != nil {
					return failure(err)
				}
				defer f.Close()
				w = f
			}
			if err := a.Generate(cmd.Context(), args[0], w); err != nil {
				return failure(err)
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "", "Write the script to this file instead of stdout.")
	cmd.Flags().IntVar(&indent, "indent", config.Default().Codegen.Indent, "Spaces per indentation level.")
	return cmd
}

func validateCommand(newApp appFactory) *cobra.Command {
	return &cobra.Command{
		Use:   "validate GRAPH.hcl",
		Short: "Check a graph and print its execution plan",
		Args:  graphArg,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd, nil)
			if err != nil {
				return err
			}
			if _, err := a.Validate(cmd.Context(), args[0]); err != nil {
				return failure(err)
			}
			return nil
		},
	}
}

func formatCommand(newApp appFactory) *cobra.Command {
	return &cobra.Command{
		Use:   "fmt GRAPH.hcl",
		Short: "Print a graph file in canonical form",
		Args:  graphArg,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd, nil)
			if err != nil {
				return err
			}
			if err := a.Format(cmd.Context(), args[0], cmd.OutOrStdout()); err != nil {
				return failure(err)
			}
			return nil
		},
	}
}

func nodesCommand(newApp appFactory) *cobra.Command {
	var scope string
	cmd := &cobra.Command{
		Use:   "nodes",
		Short: "List the registered node types",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			s, err := registry.ParseScope(scope)
			if err != nil {
				return usageError("%s", err)
			}
			a, err := newApp(cmd, nil)
			if err != nil {
				return err
			}
			if report := a.LoadReport(); len(report.Skipped) > 0 {
				fmt.Fprintf(cmd.ErrOrStderr(), "%d extension node types were skipped; see the log for details\n", len(report.Skipped))
			}
			if err := a.PrintNodeTypes(s); err != nil {
				return failure(err)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&scope, "scope", "all", "Which types to list: 'all', 'builtin' or 'extension'.")
	return cmd
}
