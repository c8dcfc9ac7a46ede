package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"text/tabwriter"
	"time"

	"github.com/denismitr/mversion/internal/cli"
	"github.com/joho/godotenv"
	"github.com/logrusorgru/aurora/v3"
	"github.com/spf13/cobra"
)

const version = "1.0.0"

var (
	configPath string
	namespace  string
	debug      bool
	timeout    time.Duration
)

func main() {
	_ = godotenv.Load()

	rootCmd := &cobra.Command{
		Use:           "mversion",
		Short:         "Versioned schema migrations per application and plugin namespace",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().StringVar(&configPath, "config", cli.DefaultConfigPath, "path to the config file")
	rootCmd.PersistentFlags().StringVar(&namespace, "namespace", "", "namespace to operate on, app or a plugin name")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "print executed SQL and debug messages")
	rootCmd.PersistentFlags().DurationVar(&timeout, "timeout", 120*time.Second, "timeout of a single command")

	rootCmd.AddCommand(runCmd())
	rootCmd.AddCommand(statusCmd())
	rootCmd.AddCommand(currentCmd())
	rootCmd.AddCommand(initCmd())
	rootCmd.AddCommand(versionCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Println(aurora.Red("mversion: "), err.Error())
		os.Exit(1)
	}
}

func withApp(fn func(ctx context.Context, app *cli.App) error) (err error) {
	app, closer, createErr := cli.NewFromYaml(configPath, log.New(os.Stdout, "", 0), debug)
	if createErr != nil {
		return createErr
	}

	defer func() {
		if closeErr := closer(); closeErr != nil && err == nil {
			err = closeErr
		}
	}()

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	return fn(ctx, app)
}

func runCmd() *cobra.Command {
	var targetVersion, direction string

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Migrate a namespace up or down",
		Long: "Migrate a namespace to --version. Without a version, --direction up applies every " +
			"pending migration and --direction down reverts the current one.",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(func(ctx context.Context, app *cli.App) error {
				report, err := app.Run(ctx, cli.ActionConfig{
					Namespace: namespace,
					Version:   targetVersion,
					Direction: direction,
				})
				if err != nil {
					return err
				}

				if len(report.Executed) == 0 {
					fmt.Println(aurora.Green("mversion: "), "nothing to migrate in", report.Namespace)
					return nil
				}

				fmt.Println(
					aurora.Green("mversion: "),
					fmt.Sprintf("%s migrated %s from %d to %d", report.Namespace, report.Direction, report.From, report.To),
				)

				return nil
			})
		},
	}

	cmd.Flags().StringVar(&targetVersion, "version", "", "target version")
	cmd.Flags().StringVar(&direction, "direction", "", "up or down")

	return cmd
}

func statusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show applied and pending migrations of a namespace",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(func(ctx context.Context, app *cli.App) error {
				mapping, err := app.Status(ctx, namespace)
				if err != nil {
					return err
				}

				if len(mapping) == 0 {
					fmt.Println(aurora.Green("mversion: "), "no migrations found")
					return nil
				}

				w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
				fmt.Fprintln(w, "VERSION\tCLASS\tSTATUS\tMIGRATED AT")

				for _, v := range mapping.Versions() {
					entry := mapping[v]
					if entry.Migrated() {
						fmt.Fprintf(w, "%d\t%s\t%s\t%s\n", v, entry.ClassName, aurora.Green("applied"), entry.MigratedAt.Format(time.RFC3339))
					} else {
						fmt.Fprintf(w, "%d\t%s\t%s\t-\n", v, entry.ClassName, aurora.Yellow("pending"))
					}
				}

				return w.Flush()
			})
		},
	}
}

func currentCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "current",
		Short: "Print the current version of a namespace",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(func(ctx context.Context, app *cli.App) error {
				v, err := app.Version(ctx, namespace)
				if err != nil {
					return err
				}

				fmt.Println(v)
				return nil
			})
		},
	}
}

func initCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Create a config file stub",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := cli.InitCfg(configPath); err != nil {
				return err
			}

			fmt.Println(aurora.Green("mversion: "), "config file created at", configPath)
			return nil
		},
	}
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("mversion version %s\n", version)
		},
	}
}
