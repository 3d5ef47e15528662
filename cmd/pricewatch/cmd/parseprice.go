package cmd

import (
	"fmt"
	"os"

	"pricewatch/lib/priceparse"

	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(parsePriceCmd)
}

var parsePriceCmd = &cobra.Command{
	Use:   "parse-price <text>",
	Short: "Parses a price out of arbitrary listing text, for debugging selector output.",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		price, ok := priceparse.Parse(args[0])
		if !ok {
			fmt.Fprintln(os.Stderr, "no price found")
			os.Exit(1)
		}
		fmt.Printf("%.2f\n", price)
	},
}
