package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/otterhq/intent-sdk-go/services/coinselect"
	"github.com/otterhq/intent-sdk-go/token"
)

// newBalancesCmd balances 子命令：白名单代币余额总览
func newBalancesCmd() *cobra.Command {
	var address string

	cmd := &cobra.Command{
		Use:   "balances",
		Short: "Show whitelisted token balances for an address",
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := setup()
			if err != nil {
				return err
			}
			defer rt.close()

			selector := coinselect.NewService(rt.client, rt.logger)
			balances, err := selector.Balances(context.Background(), address)
			if err != nil {
				return err
			}

			for _, symbol := range token.Symbols() {
				info, err := token.Resolve(symbol)
				if err != nil {
					return err
				}
				fmt.Printf("%-6s %s\n", symbol, token.FormatAmount(balances[symbol], info))
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&address, "address", "", "owner address (0x + 64 hex)")
	_ = cmd.MarkFlagRequired("address")
	return cmd
}
