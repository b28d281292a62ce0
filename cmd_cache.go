package main

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/yashrajoria/storefront/cache"
	"github.com/yashrajoria/storefront/config"
	"github.com/yashrajoria/storefront/database"
)

var cacheCmd = &cobra.Command{
	Use:   "cache",
	Short: "Category cache maintenance",
}

var cacheClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Drop the cached category list so the next page view refetches it",
	Args:  cobra.NoArgs,
	RunE:  runCacheClear,
}

func runCacheClear(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if cfg.Redis.URL == "" {
		return errors.New("REDIS_URL is not set; the in-memory cache lives in the server process")
	}

	ctx, cancel := context.WithTimeout(cmd.Context(), 10*time.Second)
	defer cancel()

	client, err := database.NewRedisClient(ctx, cfg.Redis.URL)
	if err != nil {
		return err
	}
	defer client.Close()

	if err := cache.NewRedisCategoryCache(client, cfg.Redis.CategoryTTL).Invalidate(ctx); err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), "category cache cleared")
	return nil
}
