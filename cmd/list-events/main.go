package main

import (
	"context"
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"eventos-web/internal/api"
	"eventos-web/internal/config"
	"eventos-web/internal/models"
	"eventos-web/internal/services"

	"github.com/spf13/pflag"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	var backendURL string
	var category string

	flagSet := pflag.NewFlagSet("list-events", pflag.ContinueOnError)
	flagSet.StringVar(&backendURL, "backend", "", "backend base URL (default BACKEND_URL)")
	flagSet.StringVarP(&category, "category", "c", "", "only list events of this category key")
	if err := flagSet.Parse(os.Args[1:]); err != nil {
		if err == pflag.ErrHelp {
			return nil
		}
		return err
	}

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	if backendURL != "" {
		cfg.Backend.URL = backendURL
	}

	client := api.NewClient(api.Config{BaseURL: cfg.Backend.URL, Timeout: cfg.Backend.Timeout})
	catalog := services.NewCatalogService(services.BindClient(client))

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Backend.Timeout)
	defer cancel()

	if category == "" {
		categories, err := catalog.Categories(ctx)
		if err != nil {
			return err
		}
		fmt.Println("Categories")
		for _, c := range categories {
			fmt.Printf("  %-12s %-20s %d\n", c.Key, c.Name, c.Count)
		}
		fmt.Println()
	}

	events, err := listEvents(ctx, catalog, category)
	if err != nil {
		return err
	}

	fmt.Printf("Events: %d\n", len(events))
	tw := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tNAME\tSTARTS\tLOCATION")
	for _, e := range events {
		starts := "-"
		if !e.StartDate.IsZero() {
			starts = e.StartDate.Local().Format(time.DateTime)
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", e.ID, e.Name, starts, e.Location)
	}
	return tw.Flush()
}

func listEvents(ctx context.Context, catalog *services.CatalogService, category string) ([]*models.Event, error) {
	if category == "" {
		return catalog.ListEvents(ctx)
	}

	_, events, err := catalog.EventsByCategory(ctx, category)
	if err != nil {
		return nil, fmt.Errorf("category %q: %w", category, err)
	}
	return events, nil
}
