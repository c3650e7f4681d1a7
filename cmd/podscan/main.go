package main

import (
	"fmt"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/container-tools/podscan/cmd/cmdutils"
	"github.com/container-tools/podscan/cmd/images"
	"github.com/container-tools/podscan/cmd/scan"
	"github.com/container-tools/podscan/cmd/tool"
	"github.com/container-tools/podscan/internal/config"
	"github.com/container-tools/podscan/internal/style"
	"github.com/container-tools/podscan/internal/terminal"
)

// version is set via ldflags during build
var version = "dev"

func main() {
	var (
		configPath string
		connection string
		debug      bool
		noColor    bool
		jsonFlag   bool
	)

	factory := &cmdutils.Factory{}

	rootCmd := &cobra.Command{
		Use:           "podscan",
		Short:         "Scan podman images with syft and grype",
		SilenceUsage:  true,
		SilenceErrors: true, //prevent duplicate printing of errors
		Long: `podscan manages the syft and grype scanner binaries and runs them
against images from a podman engine, caching every generated artifact
in a local store.`,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			termInfo := terminal.Detect(noColor, false, jsonFlag)
			style.Init(termInfo.ColorEnabled)

			if debug {
				logWriter := zerolog.ConsoleWriter{
					Out:        os.Stderr,
					TimeFormat: time.RFC3339,
					NoColor:    noColor,
				}
				log.Logger = log.Output(logWriter)
			} else {
				log.Logger = zerolog.Nop()
			}

			cfg := config.Default()
			if configPath != "" {
				loaded, err := config.Load(configPath)
				if err != nil {
					return err
				}
				cfg = loaded
			}

			*factory = *cmdutils.NewFactory(cfg, log.Logger)
			factory.ConnectionName = connection
			factory.JSON = termInfo.ForceJSON
			return nil
		},
	}

	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Path to the config file")
	rootCmd.PersistentFlags().StringVar(&connection, "connection", "", "Engine connection name from containers.conf")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "Enable debug logging to console")
	rootCmd.PersistentFlags().BoolVar(&noColor, "no-color", false, "Disable colour output (also respects NO_COLOR env)")
	rootCmd.PersistentFlags().BoolVar(&jsonFlag, "json", false, "Output results as JSON where supported")

	rootCmd.AddCommand(tool.GetRootCmd(factory))
	rootCmd.AddCommand(images.GetRootCmd(factory))
	rootCmd.AddCommand(scan.GetRootCmd(factory))
	rootCmd.AddCommand(versionCmd())

	if err := rootCmd.Execute(); err != nil {
		termInfo := terminal.Detect(noColor, false, false)
		if termInfo.IsTerminal && termInfo.ColorEnabled {
			fmt.Fprintln(os.Stderr, style.Error.Render("Error: "+err.Error()))
		} else {
			fmt.Fprintln(os.Stderr, err)
		}
		os.Exit(1)
	}
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the podscan version",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Println("podscan", version)
		},
	}
}
