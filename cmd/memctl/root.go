package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"

	"github.com/spf13/cobra"
)

// buildRootCmd constructs the Cobra command tree wired to the memd HTTP API.
func buildRootCmd() *cobra.Command {
	defaultAddr := "http://127.0.0.1:8080"
	if v := os.Getenv("MEMD_ADDR"); v != "" {
		defaultAddr = v
	}

	var addr string
	root := &cobra.Command{
		Use:           "memctl",
		Short:         "Client for the memd adaptive memory manager",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&addr, "addr", defaultAddr, "memd base URL (defaults MEMD_ADDR)")

	client := func() *apiClient { return newAPIClient(addr) }

	statusCmd := &cobra.Command{Use: "status", Short: "Show allocations and memory usage", RunE: func(cmd *cobra.Command, args []string) error {
		out, err := client().do("GET", "/status", nil)
		if err != nil {
			return err
		}
		return printJSON(out)
	}}

	statsCmd := &cobra.Command{Use: "stats", Short: "Show detailed manager, cache and GC statistics", RunE: func(cmd *cobra.Command, args []string) error {
		out, err := client().do("GET", "/stats", nil)
		if err != nil {
			return err
		}
		return printJSON(out)
	}}

	componentsCmd := &cobra.Command{Use: "components", Short: "List registered components", RunE: func(cmd *cobra.Command, args []string) error {
		out, err := client().do("GET", "/components", nil)
		if err != nil {
			return err
		}
		return printJSON(out)
	}}

	var allocPriority int
	allocCmd := &cobra.Command{Use: "alloc <component> <bytes>", Short: "Request a memory allocation", Example: "  memctl alloc image-cache 10485760 --priority 7", Args: cobra.ExactArgs(2), RunE: func(cmd *cobra.Command, args []string) error {
		size, err := strconv.ParseInt(args[1], 10, 64)
		if err != nil {
			return fmt.Errorf("invalid size %q: %w", args[1], err)
		}
		out, err := client().do("POST", "/allocate", map[string]any{
			"component_id": args[0],
			"size_bytes":   size,
			"priority":     allocPriority,
		})
		if err != nil {
			return err
		}
		return printJSON(out)
	}}
	allocCmd.Flags().IntVar(&allocPriority, "priority", 5, "Allocation priority 1..10 (higher survives reclamation longer)")

	freeCmd := &cobra.Command{Use: "free <component>", Short: "Release a component's allocation", Args: cobra.ExactArgs(1), RunE: func(cmd *cobra.Command, args []string) error {
		out, err := client().do("POST", "/deallocate", map[string]any{"component_id": args[0]})
		if err != nil {
			return err
		}
		return printJSON(out)
	}}

	touchCmd := &cobra.Command{Use: "touch <component>", Short: "Record an access on an allocation", Args: cobra.ExactArgs(1), RunE: func(cmd *cobra.Command, args []string) error {
		out, err := client().do("POST", "/touch", map[string]any{"component_id": args[0]})
		if err != nil {
			return err
		}
		return printJSON(out)
	}}

	var putImportance float64
	cachePutCmd := &cobra.Command{Use: "cache-put <key> <value>", Short: "Store a JSON value in the smart cache", Example: "  memctl cache-put user:42 '{\"name\":\"a\"}' --importance 0.9", Args: cobra.ExactArgs(2), RunE: func(cmd *cobra.Command, args []string) error {
		value := json.RawMessage(args[1])
		if !json.Valid(value) {
			// treat plain text as a JSON string
			enc, err := json.Marshal(args[1])
			if err != nil {
				return err
			}
			value = enc
		}
		out, err := client().do("PUT", "/cache/"+args[0], map[string]any{
			"value":      value,
			"importance": putImportance,
		})
		if err != nil {
			return err
		}
		return printJSON(out)
	}}
	cachePutCmd.Flags().Float64Var(&putImportance, "importance", 0.5, "Importance 0..1; high values resist eviction")

	cacheGetCmd := &cobra.Command{Use: "cache-get <key>", Short: "Fetch a value from the smart cache", Args: cobra.ExactArgs(1), RunE: func(cmd *cobra.Command, args []string) error {
		out, err := client().do("GET", "/cache/"+args[0], nil)
		if err != nil {
			return err
		}
		return printJSON(out)
	}}

	optimizeCmd := &cobra.Command{Use: "optimize", Short: "Run a predictive optimization cycle now", RunE: func(cmd *cobra.Command, args []string) error {
		out, err := client().do("POST", "/optimize", nil)
		if err != nil {
			return err
		}
		return printJSON(out)
	}}

	root.AddCommand(statusCmd, statsCmd, componentsCmd, allocCmd, freeCmd, touchCmd, cachePutCmd, cacheGetCmd, optimizeCmd)

	completionCmd := &cobra.Command{Use: "completion", Short: "Generate the autocompletion script for the specified shell"}
	completionCmd.AddCommand(&cobra.Command{Use: "bash", Short: "Bash completion", RunE: func(cmd *cobra.Command, args []string) error { return root.GenBashCompletion(os.Stdout) }})
	completionCmd.AddCommand(&cobra.Command{Use: "zsh", Short: "Zsh completion", RunE: func(cmd *cobra.Command, args []string) error { return root.GenZshCompletion(os.Stdout) }})
	root.AddCommand(completionCmd)

	return root
}
