package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/thinkscotty/stylebot/internal/auth"
)

var collectCmd = &cobra.Command{
	Use:   "collect <@channel[#keyword]>",
	Short: "Print the example posts a style source yields",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		src, set, err := newCollector(cfg).Collect(context.Background(), strings.Join(args, " "))
		if err != nil {
			return err
		}
		fmt.Printf("%d examples from %s\n", len(set), src)
		for _, ex := range set {
			fmt.Printf("\nExample %d: %s\n", ex.Ordinal, ex.Text)
		}
		return nil
	},
}

var extractCmd = &cobra.Command{
	Use:   "extract <url|text>",
	Short: "Print the source text extracted from a link or text",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		text, err := newExtractor(cfg).Extract(context.Background(), strings.Join(args, " "))
		if err != nil {
			return err
		}
		fmt.Println(text)
		return nil
	},
}

var hashKeyCmd = &cobra.Command{
	Use:   "hash-key",
	Short: "Generate a stats API key and its bcrypt hash",
	RunE: func(cmd *cobra.Command, args []string) error {
		key, err := auth.GenerateKey()
		if err != nil {
			return err
		}
		hash, err := auth.HashKey(key)
		if err != nil {
			return err
		}
		fmt.Printf("key:  %s\nhash: %s\n\nSet server.stats_key_hash (or STYLEBOT_STATS_KEY_HASH) to the hash.\n", key, hash)
		return nil
	},
}
