/*
Copyright © 2026 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"fmt"

	"github.com/micromarket/apiserver/config"
	"github.com/micromarket/apiserver/internal/db"
	"github.com/micromarket/apiserver/internal/store"
	"github.com/micromarket/apiserver/types"
	"github.com/spf13/cobra"
)

// seedCmd represents the seed command.
var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Insert sample catalog data",
	Long:  `Inserts a small set of sample products. Does nothing if the catalog is not empty.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := config.LoadConfig()

		dbConn, err := db.Open(cmd.Context(), cfg)
		if err != nil {
			return fmt.Errorf("connect database: %w", err)
		}
		defer func() {
			_ = dbConn.Close()
		}()

		repo := store.NewProductRepository(dbConn)

		_, total, err := repo.List(cmd.Context(), 0, 1, "")
		if err != nil {
			return fmt.Errorf("check catalog: %w", err)
		}
		if total > 0 {
			fmt.Fprintf(cmd.OutOrStdout(), "catalog already has %d products, skipping seed\n", total)
			return nil
		}

		for _, product := range sampleProducts {
			if _, err := repo.Create(cmd.Context(), product); err != nil {
				return fmt.Errorf("seed product %q: %w", product.Title, err)
			}
		}
		fmt.Fprintf(cmd.OutOrStdout(), "seeded %d products\n", len(sampleProducts))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(seedCmd)
}

var sampleProducts = []types.Product{
	{
		Title:       "Vintage Leather Journal",
		Price:       24.99,
		Description: "Hand-stitched leather journal for notes, sketches, and ideas.",
		Image:       "https://images.unsplash.com/photo-1455390582262-044cdead277a?auto=format&fit=crop&w=900&q=80",
		Images: []string{
			"https://images.unsplash.com/photo-1517842645767-c639042777db?auto=format&fit=crop&w=900&q=80",
			"https://images.unsplash.com/photo-1470790376778-a9fbc86d70e2?auto=format&fit=crop&w=900&q=80",
		},
	},
	{
		Title:       "Minimal Desk Lamp",
		Price:       39.5,
		Description: "Soft warm LED desk lamp with adjustable arm and matte finish.",
		Image:       "https://images.unsplash.com/photo-1507473885765-e6ed057f782c?auto=format&fit=crop&w=900&q=80",
	},
	{
		Title:       "Ceramic Pour-Over Set",
		Price:       54.0,
		Description: "Two-piece ceramic pour-over brewer with matching mug.",
		Image:       "https://images.unsplash.com/photo-1495474472287-4d71bcdd2085?auto=format&fit=crop&w=900&q=80",
	},
	{
		Title:       "Canvas Weekender Bag",
		Price:       79.0,
		Description: "Water-resistant waxed canvas bag sized for a two-day trip.",
		Image:       "https://images.unsplash.com/photo-1553062407-98eeb64c6a62?auto=format&fit=crop&w=900&q=80",
	},
	{
		Title:       "Walnut Phone Stand",
		Price:       18.75,
		Description: "Solid walnut stand with cable cutout, fits any phone.",
		Image:       "https://images.unsplash.com/photo-1586953208448-b95a79798f07?auto=format&fit=crop&w=900&q=80",
	},
	{
		Title:       "Wool Throw Blanket",
		Price:       65.0,
		Description: "Heavyweight merino wool throw in a herringbone weave.",
		Image:       "https://images.unsplash.com/photo-1519710164239-da123dc03ef4?auto=format&fit=crop&w=900&q=80",
	},
}
