package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/sells-group/netusage/internal/antenna"
)

var antennasCmd = &cobra.Command{
	Use:   "antennas",
	Short: "Resolve and discover antennas",
}

var antennasDiscoverCmd = &cobra.Command{
	Use:   "discover",
	Short: "Scan antenna ids above the highest stored id",
	Long:  "Fetches antennas upward from max(id)+1 and stores each one with coordinates. Stops at the first id the remote source cannot serve.",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()

		start, _ := cmd.Flags().GetInt64("start")
		limit, _ := cmd.Flags().GetInt("limit")

		env, err := initEnv(ctx)
		if err != nil {
			return err
		}
		defer env.Close()

		res, err := env.Resolver.Discover(ctx, antenna.DiscoverOptions{StartID: start, Limit: limit})
		if err != nil {
			return eris.Wrap(err, "antennas discover")
		}

		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(res)
	},
}

var antennasResolveCmd = &cobra.Command{
	Use:   "resolve <antenna-id>",
	Short: "Make sure one antenna is stored",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		id, err := strconv.ParseInt(args[0], 10, 64)
		if err != nil {
			return eris.Wrapf(err, "invalid antenna id %q", args[0])
		}

		env, err := initEnv(ctx)
		if err != nil {
			return err
		}
		defer env.Close()

		outcome, err := env.Resolver.Resolve(ctx, id)
		if err != nil {
			return eris.Wrap(err, "antennas resolve")
		}
		fmt.Fprintf(os.Stdout, "antenna %d: %s\n", id, outcome)
		return nil
	},
}

func init() {
	antennasDiscoverCmd.Flags().Int64("start", 0, "first id to scan (default: max stored id + 1)")
	antennasDiscoverCmd.Flags().Int("limit", 0, "maximum ids to scan (0 = until the first unreachable id)")

	antennasCmd.AddCommand(antennasDiscoverCmd)
	antennasCmd.AddCommand(antennasResolveCmd)
	rootCmd.AddCommand(antennasCmd)
}
