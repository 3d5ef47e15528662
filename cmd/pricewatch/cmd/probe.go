package cmd

import (
	"fmt"
	"os"

	"pricewatch/lib/page"
	"pricewatch/lib/probe"
	"pricewatch/lib/siteprofile"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

var probeFlags struct {
	profiles string
	dumpHTTP string
}

func init() {
	probeCmd.Flags().StringVar(&probeFlags.profiles, "profiles", "", "site profile file (built-in table when empty)")
	probeCmd.Flags().StringVar(&probeFlags.dumpHTTP, "dump-http", "", "write raw request/response transcripts to this directory")
	rootCmd.AddCommand(probeCmd)
}

var probeCmd = &cobra.Command{
	Use:   "probe <url>...",
	Short: "Probes listing urls and prints what a run would see.",
	Args:  cobra.MinimumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		registry := siteprofile.Default()
		if probeFlags.profiles != "" {
			var err error
			registry, err = siteprofile.Load(probeFlags.profiles)
			if err != nil {
				fatalerr("failed to load site profiles", err)
			}
		}

		client, err := page.NewClient(page.ClientOptions{})
		if err != nil {
			fatalerr("failed to build page client", err)
		}
		if probeFlags.dumpHTTP != "" {
			recorder, err := page.NewTranscriptRecorder(probeFlags.dumpHTTP)
			if err != nil {
				fatalerr("failed to set up http transcripts", err)
			}
			recorder.Attach(client)
		}
		prober := probe.New(probe.Options{Registry: registry})

		t := table.NewWriter()
		t.SetStyle(table.StyleRounded)
		t.SetOutputMirror(os.Stdout)
		t.AppendHeader(table.Row{"Supplier", "Price", "Shipping", "Availability", "Failure", "URL"})

		for _, url := range args {
			result := prober.Probe(cmd.Context(), page.NewStatic(client), url)

			price, shipping := "-", "-"
			if result.HasPrice {
				price = fmt.Sprintf("%.2f", result.Price)
			}
			if result.HasShipping {
				shipping = fmt.Sprintf("%.2f", result.ShippingFee)
			}
			failure := result.Failure.String()
			if result.Detail != "" {
				failure = fmt.Sprintf("%s (%s)", failure, result.Detail)
			}
			t.AppendRow(table.Row{
				result.SupplierName,
				price,
				shipping,
				result.Availability.String(),
				failure,
				result.URL,
			})
		}
		t.Render()
	},
}
