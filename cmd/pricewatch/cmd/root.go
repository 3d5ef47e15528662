package cmd

import (
	"fmt"
	"os"

	"pricewatch/lib/notify"
	"pricewatch/lib/osutil"
	"pricewatch/lib/sheetstore"
	"pricewatch/services/watch"

	"github.com/spf13/cobra"
)

// PricewatchConfig is the top-level config.json5 shape. Exactly one of
// Store.Http and Store.Db should be set.
type PricewatchConfig struct {
	Store struct {
		Http *sheetstore.HTTPConfig `json:"http"`
		Db   *sheetstore.DBConfig   `json:"db"`
	} `json:"store"`
	// optional site profile file; the built-in table is used when empty
	Profiles string `json:"profiles"`
	// directory for audit and error logs, defaults to "logs"
	AuditDir string        `json:"audit_dir"`
	Watch    watch.Config  `json:"watch"`
	Email    notify.Config `json:"email"`
}

func (c PricewatchConfig) openStore() (sheetstore.Store, func() error, error) {
	switch {
	case c.Store.Http != nil:
		return sheetstore.NewHTTP(*c.Store.Http), func() error { return nil }, nil
	case c.Store.Db != nil:
		store, err := c.Store.Db.Open()
		if err != nil {
			return nil, nil, err
		}
		return store, store.Close, nil
	default:
		return nil, nil, fmt.Errorf("config: no store configured, set store.http or store.db")
	}
}

var rootCmd = &cobra.Command{
	Use:   "pricewatch",
	Short: "pricewatch keeps the supplier price sheet in sync with live listings.",
}

func Execute() {
	if err := rootCmd.ExecuteContext(osutil.SignalContext()); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
