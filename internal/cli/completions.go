package cli

import (
	"context"
	"strings"

	"github.com/spf13/cobra"

	"github.com/darwinyusef/termsim/internal/config"
)

// completeExerciseIDs provides shell completion for exercise ids from the
// configured source.
func completeExerciseIDs(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	if len(args) > 0 {
		return nil, cobra.ShellCompDirectiveNoFileComp
	}

	cfg, err := config.Discover(rootFlags.configPath)
	if err != nil {
		return nil, cobra.ShellCompDirectiveError
	}
	source, err := newSource(cfg)
	if err != nil {
		return nil, cobra.ShellCompDirectiveError
	}
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	list, err := source.List(ctx)
	if err != nil {
		return nil, cobra.ShellCompDirectiveError
	}

	var matches []string
	for _, s := range list {
		if strings.HasPrefix(s.ID, toComplete) {
			matches = append(matches, s.ID+"\t"+s.Title)
		}
	}
	return matches, cobra.ShellCompDirectiveNoFileComp
}

// fixedCompletions completes a flag from a fixed set of values.
func fixedCompletions(values ...string) func(*cobra.Command, []string, string) ([]string, cobra.ShellCompDirective) {
	return func(_ *cobra.Command, _ []string, toComplete string) ([]string, cobra.ShellCompDirective) {
		var matches []string
		for _, v := range values {
			if strings.HasPrefix(v, toComplete) {
				matches = append(matches, v)
			}
		}
		return matches, cobra.ShellCompDirectiveNoFileComp
	}
}
