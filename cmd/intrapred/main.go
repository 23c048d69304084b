// Command intrapred runs the HEVC intra mode decision over an image and
// reports the chosen modes, the rate estimate and the reconstruction PSNR.
//
// Usage:
//
//	intrapred analyze [flags] <image>   analyze PNG/JPEG/GIF/BMP/TIFF/WebP ("-" for stdin)
//	intrapred options                   list engine options and defaults
//	intrapred version                   print the version
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

const (
	appName    = "intrapred"
	appVersion = "0.1.0"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "%s: %v\n", appName, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           appName,
		Short:         "HEVC intra prediction mode decision",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(newAnalyzeCmd(), newOptionsCmd(), newVersionCmd())
	return root
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "%s version %s\n", appName, appVersion)
		},
	}
}
