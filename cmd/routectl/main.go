package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/gyaneshwarpardhi/trafficmap/internal/config"
	"github.com/gyaneshwarpardhi/trafficmap/internal/engine"
	"github.com/gyaneshwarpardhi/trafficmap/internal/graph"
	"github.com/gyaneshwarpardhi/trafficmap/internal/query"
)

func main() {
	if err := newRootCmd(os.Stdout).Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd(out io.Writer) *cobra.Command {
	var configPath string

	rootCmd := &cobra.Command{
		Use:           "routectl",
		Short:         "Query a traffic map offline",
		SilenceUsage:  true,
		SilenceErrors: false,
	}
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "configs/map.yaml", "Map config file path")
	rootCmd.SetOut(out)

	var (
		from, to, traffic, pal string
		jsonOut                bool
	)
	routeCmd := &cobra.Command{
		Use:   "route",
		Short: "Compute and annotate routes from one node",
		RunE: func(cmd *cobra.Command, args []string) error {
			m, err := loadMap(configPath)
			if err != nil {
				return err
			}
			res, err := routeOnce(m, &query.Query{ID: "cli", Source: from, Destination: to, Traffic: traffic, Palette: pal})
			if err != nil {
				return err
			}
			if jsonOut {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(res)
			}
			fmt.Fprint(cmd.OutOrStdout(), renderRoute(m, res))
			return nil
		},
	}
	routeCmd.Flags().StringVar(&from, "from", "", "Source node id")
	routeCmd.Flags().StringVar(&to, "to", "", "Destination node id (optional)")
	routeCmd.Flags().StringVar(&traffic, "traffic", "medium", "Traffic level: low, medium or high")
	routeCmd.Flags().StringVar(&pal, "palette", "", "Palette name (default from config)")
	routeCmd.Flags().BoolVar(&jsonOut, "json", false, "Output the result as JSON")
	_ = routeCmd.MarkFlagRequired("from")

	compareCmd := &cobra.Command{
		Use:   "compare",
		Short: "Compare arrival times under every traffic level",
		RunE: func(cmd *cobra.Command, args []string) error {
			m, err := loadMap(configPath)
			if err != nil {
				return err
			}
			results, err := compareLevels(cmd.Context(), m, from, to)
			if err != nil {
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), renderComparison(m, results))
			return nil
		},
	}
	compareCmd.Flags().StringVar(&from, "from", "", "Source node id")
	compareCmd.Flags().StringVar(&to, "to", "", "Destination node id (optional)")
	_ = compareCmd.MarkFlagRequired("from")

	validateCmd := &cobra.Command{
		Use:   "validate",
		Short: "Validate a map config",
		RunE: func(cmd *cobra.Command, args []string) error {
			m, err := loadMap(configPath)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s: ok (version %s, %d nodes, %d edges)\n",
				configPath, m.Version, m.Graph.NodeCount(), m.Graph.EdgeCount())
			return nil
		},
	}

	rootCmd.AddCommand(routeCmd, compareCmd, validateCmd)
	return rootCmd
}

func loadMap(path string) (*engine.Map, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}
	cfg, err := config.Parse(data)
	if err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	if err := config.Validate(cfg); err != nil {
		return nil, err
	}
	return engine.BuildMap(cfg, nil)
}

// routeOnce answers q directly against m, without a worker pool.
func routeOnce(m *engine.Map, q *query.Query) (*engine.RouteResult, error) {
	if err := query.Validate(q); err != nil {
		return nil, err
	}
	return m.Route(q)
}

// compareLevels routes the same query under every traffic level concurrently.
func compareLevels(ctx context.Context, m *engine.Map, from, to string) ([]*engine.RouteResult, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	results := make([]*engine.RouteResult, len(graph.TrafficLevels))
	g, _ := errgroup.WithContext(ctx)
	for i, level := range graph.TrafficLevels {
		g.Go(func() error {
			res, err := routeOnce(m, &query.Query{
				ID:          "cli-" + level.String(),
				Source:      from,
				Destination: to,
				Traffic:     level.String(),
			})
			if err != nil {
				return fmt.Errorf("%s traffic: %w", level, err)
			}
			results[i] = res
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}
