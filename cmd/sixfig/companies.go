package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
)

var companiesCmd = &cobra.Command{
	Use:   "companies",
	Short: "List companies in the catalog",
	Long:  "Prints a table of all companies known to the catalog, with their ATS provider and board URL.",
	RunE:  runCompanies,
}

func init() {
	rootCmd.AddCommand(companiesCmd)
}

func runCompanies(cmd *cobra.Command, args []string) error {
	logger := setupLogger(debug)

	cfg, err := loadConfig(cfgPath)
	if err != nil {
		logger.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	st, closeStore, err := openStore(ctx, cfg)
	if err != nil {
		logger.Error("failed to open store", "error", err)
		os.Exit(1)
	}
	defer closeStore()

	companies, err := st.Companies().List(ctx)
	if err != nil {
		logger.Error("failed to list companies", "error", err)
		os.Exit(1)
	}

	fmt.Printf("%-30s %-12s %s\n", "Company", "Provider", "ATS URL")
	fmt.Println(strings.Repeat("─", 70))

	withBoard := 0
	for _, c := range companies {
		provider := string(c.ATSProvider)
		if provider == "" {
			provider = "-"
		}
		url := c.ATSURL
		if url == "" {
			url = "-"
		} else {
			withBoard++
		}
		fmt.Printf("%-30s %-12s %s\n", c.Name, provider, url)
	}

	fmt.Printf("\nTotal: %d companies (%d with a scrapeable board)\n", len(companies), withBoard)
	return nil
}
