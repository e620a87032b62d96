package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
)

func newProductsCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "products",
		Short: "List available products",
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := ctx.apiClient()
			if err != nil {
				return err
			}
			products, err := client.Products(cmd.Context())
			if err != nil {
				return fmt.Errorf("list products: %w", err)
			}
			if len(products) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No products available.")
				return nil
			}

			rows := make([][]string, 0, len(products))
			for _, product := range products {
				rows = append(rows, []string{strconv.FormatInt(product.ID, 10), product.Name, product.Slug})
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderTable(
				[]string{"ID", "Name", "Slug"},
				rows,
				[]columnAlignment{alignRight, alignLeft, alignLeft},
			))
			return nil
		},
	}
}
