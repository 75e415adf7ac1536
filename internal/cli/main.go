package cli

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

func Main() {
	_ = godotenv.Load() // best-effort: load .env if present

	root := &cobra.Command{
		Use:          "capgen <input>",
		Short:        "Generate word-synced animated captions for a local video",
		Args:         cobra.ExactArgs(1),
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, args[0])
		},
	}

	root.SetOut(os.Stdout)
	root.SetErr(os.Stderr)
	root.SilenceErrors = true

	// Visible flags
	root.Flags().String("out", "out", "Output directory")
	root.Flags().String("config", "", "TOML config file")
	root.Flags().String("style", "", "YAML style preset")
	root.Flags().Bool("no-silence-cut", false, "Keep silent stretches in the video")
	root.Flags().Bool("llm-groups", false, "Ask an LLM for semantic caption groups")
	root.Flags().Bool("burn", false, "Burn captions into the output video")

	// Hidden tuning flags (internal)
	root.Flags().Int("min-silence-ms", 700, "Minimum silence gap to cut, milliseconds")
	root.Flags().Int("padding-ms", 150, "Padding kept around speech, milliseconds")
	_ = root.Flags().MarkHidden("min-silence-ms")
	_ = root.Flags().MarkHidden("padding-ms")

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
