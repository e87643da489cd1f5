package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"paperwatch/internal/store"
)

var cacheCmd = &cobra.Command{
	Use:   "cache",
	Short: "Inspect or clear the AI result cache",
}

var cacheStatsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show cache size and location",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		cache := store.New(cfg.Storage.CacheFile, cfg.Storage.CacheMaxItems, true)
		if err := cache.Load(); err != nil {
			return err
		}

		fmt.Printf("Cache file:  %s\n", cfg.Storage.CacheFile)
		fmt.Printf("Entries:     %d\n", cache.Len())
		fmt.Printf("Max entries: %d\n", cfg.Storage.CacheMaxItems)
		return nil
	},
}

var cacheClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Delete all cached AI results",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		if err := os.Remove(cfg.Storage.CacheFile); err != nil {
			if os.IsNotExist(err) {
				fmt.Println("Cache is already empty.")
				return nil
			}
			return fmt.Errorf("failed to remove cache: %w", err)
		}
		fmt.Println("Cache cleared.")
		return nil
	},
}

func init() {
	cacheCmd.AddCommand(cacheStatsCmd)
	cacheCmd.AddCommand(cacheClearCmd)
	rootCmd.AddCommand(cacheCmd)
}
