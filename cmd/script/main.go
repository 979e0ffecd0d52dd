package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"quantlab/internal/calculator"
	"quantlab/internal/domain"
	"quantlab/internal/loader"
	"quantlab/internal/marketdata"
	"quantlab/internal/sandbox"
	"quantlab/internal/util"

	"github.com/spf13/cobra"
)

// dev tool: run a strategy expression against a local CSV price file
// without a database or the scheduler in the way.

var rootCmd = &cobra.Command{
	Use:   "quantlab-script",
	Short: "local strategy tooling",
}

var validateCmd = &cobra.Command{
	Use:   "validate [source-file]",
	Short: "load-check a strategy source file",
	Args:  cobra.ExactArgs(1),
	RunE: func(c *cobra.Command, args []string) error {
		source, err := os.ReadFile(args[0])
		if err != nil {
			return err
		}

		cache := loader.NewCache()
		unit, err := cache.Load(domain.HashSource(string(source)), string(source))
		if err != nil {
			return err
		}
		unit.Release()

		fmt.Println("ok")
		return nil
	},
}

var (
	pricesPath string
	startDate  string
	endDate    string
	params     map[string]string
)

var backtestCmd = &cobra.Command{
	Use:   "backtest [source-file]",
	Short: "run one backtest against a CSV price file",
	Args:  cobra.ExactArgs(1),
	RunE: func(c *cobra.Command, args []string) error {
		source, err := os.ReadFile(args[0])
		if err != nil {
			return err
		}

		start, err := util.ParseDate(startDate)
		if err != nil {
			return err
		}
		end, err := util.ParseDate(endDate)
		if err != nil {
			return err
		}

		binding := domain.ParamBinding{}
		for name, raw := range params {
			var value float64
			if _, err := fmt.Sscanf(raw, "%g", &value); err != nil {
				return fmt.Errorf("parameter %s=%q is not numeric", name, raw)
			}
			binding[name] = value
		}

		provider, err := marketdata.NewCsvProvider(pricesPath)
		if err != nil {
			return err
		}

		ctx := context.Background()
		window, err := provider.Fetch(ctx, domain.DateRange{Start: start, End: end})
		if err != nil {
			return err
		}

		cache := loader.NewCache()
		unit, err := cache.Load(domain.HashSource(string(source)), string(source))
		if err != nil {
			return err
		}
		defer unit.Release()

		raw, err := sandbox.New().Execute(ctx, unit, binding, window, sandbox.DefaultBudget())
		if err != nil {
			return err
		}

		records, err := calculator.BuildPeriodRecords(raw, window)
		if err != nil {
			return err
		}
		summary, err := calculator.CalculateSummary(records)
		if err != nil {
			return err
		}

		fmt.Printf("periods:      %d\n", len(records))
		fmt.Printf("total return: %.4f\n", summary.TotalReturn)
		fmt.Printf("max drawdown: %.4f\n", summary.MaxDrawdown)
		fmt.Printf("sharpe:       %.4f\n", summary.SharpeRatio)
		fmt.Printf("trades:       %d\n", summary.TradeCount)
		return nil
	},
}

func main() {
	backtestCmd.Flags().StringVar(&pricesPath, "prices", "prices.csv", "CSV price file (date,close,volume)")
	backtestCmd.Flags().StringVar(&startDate, "start", "", "window start (YYYY-MM-DD)")
	backtestCmd.Flags().StringVar(&endDate, "end", "", "window end (YYYY-MM-DD)")
	backtestCmd.Flags().StringToStringVar(&params, "param", nil, "parameter bindings, e.g. --param lookback=20")

	rootCmd.AddCommand(validateCmd)
	rootCmd.AddCommand(backtestCmd)

	if err := rootCmd.Execute(); err != nil {
		log.Fatal(err)
	}
}
