package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/unifai-network/unifai-toolkits/internal/pools"
	"github.com/unifai-network/unifai-toolkits/internal/record"
)

var (
	flagPoolsSort     string
	flagPoolsSymbols  []string
	flagPoolsChains   []string
	flagPoolsProjects []string
	flagPoolsMinTvl   float64
	flagPoolsMaxTvl   float64
	flagPoolsMinApy   float64
	flagPoolsMaxApy   float64
	flagPoolsLimit    int
	flagPoolsFormat   string
)

var poolsCmd = &cobra.Command{
	Use:   "pools",
	Short: "Query DefiLlama yield pools",
	Long: `Filter, sort and limit the DefiLlama yield pool list.

Filters combine: --min-tvl 1e6 --chain ethereum --symbol USDC returns USDC
pools on Ethereum with at least $1M TVL. Symbols, chains and projects match
case-insensitively. --sort accepts tvl, apy or apyMean30d (default apy).`,
	Example: "  unifai-toolkits pools --chain ethereum --min-tvl 1000000 --sort tvl --limit 5",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := checkFormat(flagPoolsFormat); err != nil {
			return err
		}
		payload := poolsPayload(cmd.Flags())

		t, err := newToolkit(cmd.ErrOrStderr())
		if err != nil {
			return err
		}
		defer t.Close()

		ctx := cmd.Context()
		if ctx == nil {
			ctx = context.Background()
		}
		if err := t.prime(ctx, t.pools.Collection()); err != nil {
			return err
		}

		results, err := t.pools.GetPools(ctx, payload)
		if err != nil {
			return err
		}
		if flagPoolsFormat == formatJSON {
			return writeJSON(cmd.OutOrStdout(), results)
		}
		return writeTable(cmd.OutOrStdout(), poolHeaders, poolRows(results))
	},
}

func init() {
	f := poolsCmd.Flags()
	f.StringVar(&flagPoolsSort, "sort", pools.DefaultSort, "sort by tvl, apy or apyMean30d")
	f.StringSliceVar(&flagPoolsSymbols, "symbol", nil, "only pools with these symbols (repeatable)")
	f.StringSliceVar(&flagPoolsChains, "chain", nil, "only pools on these chains (repeatable)")
	f.StringSliceVar(&flagPoolsProjects, "project", nil, "only pools of these projects (repeatable)")
	f.Float64Var(&flagPoolsMinTvl, "min-tvl", 0, "minimum TVL in USD")
	f.Float64Var(&flagPoolsMaxTvl, "max-tvl", 0, "maximum TVL in USD")
	f.Float64Var(&flagPoolsMinApy, "min-apy", 0, "minimum APY percentage")
	f.Float64Var(&flagPoolsMaxApy, "max-apy", 0, "maximum APY percentage")
	f.IntVar(&flagPoolsLimit, "limit", pools.DefaultLimit, fmt.Sprintf("number of pools to return (1-%d)", pools.MaxLimit))
	f.StringVar(&flagPoolsFormat, "format", formatTable, "output format: table or json")
}

// poolsPayload maps flags to a payload. Unset bounds stay nil so that an
// explicit --min-tvl 0 and an absent one are distinguishable.
func poolsPayload(fs *pflag.FlagSet) pools.Payload {
	p := pools.Payload{
		SortBy:   flagPoolsSort,
		Symbols:  flagPoolsSymbols,
		Chains:   flagPoolsChains,
		Projects: flagPoolsProjects,
	}
	bound := func(name string, v float64) *float64 {
		if !fs.Changed(name) {
			return nil
		}
		return &v
	}
	p.MinTvl = bound("min-tvl", flagPoolsMinTvl)
	p.MaxTvl = bound("max-tvl", flagPoolsMaxTvl)
	p.MinApy = bound("min-apy", flagPoolsMinApy)
	p.MaxApy = bound("max-apy", flagPoolsMaxApy)
	if fs.Changed("limit") {
		limit := flagPoolsLimit
		p.Limit = &limit
	}
	return p
}

var poolHeaders = []string{"#", "SYMBOL", "PROJECT", "CHAIN", "TVL", "APY", "APY 30D"}

func poolRows(rs []record.Record) [][]string {
	rows := make([][]string, 0, len(rs))
	for i, r := range rs {
		rows = append(rows, []string{
			fmt.Sprint(i + 1),
			r.Text("symbol"),
			r.Text("project"),
			r.Text("chain"),
			"$" + formatNumber(r.Number("tvlUsd")),
			formatPercent(r.Number("apy")),
			formatPercent(r.Number("apyMean30d")),
		})
	}
	return rows
}
