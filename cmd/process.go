package main

import (
	"encoding/json"
	"io"
	"os"
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/synapse-labs/lead-intake/internal/model"
)

var (
	processChannel string
	processFile    string
)

var processCmd = &cobra.Command{
	Use:   "process [text]",
	Short: "Process a single inquiry through the pipeline",
	Long:  "Runs one inquiry end to end: extraction, action planning, enrichment, CRM persistence, and notifications. Text comes from the argument, --file, or stdin.",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		text, err := inquiryText(args)
		if err != nil {
			return err
		}

		channel, err := model.ParseChannel(processChannel)
		if err != nil {
			return err
		}

		env, err := initPipeline(ctx)
		if err != nil {
			return err
		}
		defer env.Close()

		outcome, err := env.Orchestrator.Process(ctx, model.Inquiry{
			Text:       text,
			Channel:    channel,
			ReceivedAt: time.Now().UTC(),
		})
		if err != nil {
			return eris.Wrap(err, "process inquiry")
		}

		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(outcome)
	},
}

func inquiryText(args []string) (string, error) {
	if len(args) == 1 && args[0] != "" {
		return args[0], nil
	}
	if processFile != "" {
		data, err := os.ReadFile(processFile)
		if err != nil {
			return "", eris.Wrapf(err, "read inquiry file %s", processFile)
		}
		return strings.TrimSpace(string(data)), nil
	}

	data, err := io.ReadAll(os.Stdin)
	if err != nil {
		return "", eris.Wrap(err, "read inquiry from stdin")
	}
	text := strings.TrimSpace(string(data))
	if text == "" {
		return "", eris.New("no inquiry text provided")
	}
	return text, nil
}

func init() {
	processCmd.Flags().StringVar(&processChannel, "channel", "email", "inquiry channel (email, chat, form)")
	processCmd.Flags().StringVar(&processFile, "file", "", "read inquiry text from a file")
	rootCmd.AddCommand(processCmd)
}
