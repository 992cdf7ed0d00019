package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var askCmd = &cobra.Command{
	Use:   "ask [question]",
	Short: "Answer one question and exit",
	Long: `Resolves a single question with an empty conversation, exactly as the
first message of a chat would be.

Example:
  dermora ask "How often should I use retinol?"`,
	Args: cobra.MinimumNArgs(1),
	RunE: runAsk,
}

func runAsk(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	a, err := buildApp(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer a.Close()

	res := a.resolver.Resolve(ctx, strings.Join(args, " "), nil)
	logger.Debug("resolved",
		zap.String("source", string(res.Source)),
		zap.String("outcome", string(res.Outcome)))

	fmt.Fprintln(cmd.OutOrStdout(), res.Text)
	return nil
}
