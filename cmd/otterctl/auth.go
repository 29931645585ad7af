package main

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/otterhq/intent-sdk-go/bundle"
	"github.com/otterhq/intent-sdk-go/services/authorization"
	"github.com/otterhq/intent-sdk-go/token"
	"github.com/otterhq/intent-sdk-go/utils"
)

// newAuthCmd auth 子命令组：授权对象查询、本地资格预判与管理调用
func newAuthCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "auth",
		Short: "Inspect and manage delegated-execution authorizations",
	}
	cmd.AddCommand(newAuthStatusCmd())
	cmd.AddCommand(newAuthManageCmd("revoke", "Build a draft that revokes an authorization",
		authorization.Service.BuildRevoke))
	cmd.AddCommand(newAuthManageCmd("disable", "Build a draft that disables an authorization",
		authorization.Service.BuildDisable))
	cmd.AddCommand(newAuthManageCmd("enable", "Build a draft that re-enables an authorization",
		authorization.Service.BuildEnable))
	return cmd
}

// newAuthManageCmd 生成 revoke / disable / enable 三个同构的管理子命令
//
// 管理调用的类型参数取自授权对象自身记录的 token_type，
// 产出的草稿与 compile 一样交给外部签名器。
func newAuthManageCmd(use, short string, build func(authorization.Service, *bundle.Bundle, string, string)) *cobra.Command {
	var (
		authID string
		sender string
	)

	cmd := &cobra.Command{
		Use:   use,
		Short: short,
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := setup()
			if err != nil {
				return err
			}
			defer rt.close()

			owner, err := utils.NormalizeAddress(sender)
			if err != nil {
				return err
			}

			svc := authorization.NewService(rt.client, rt.svcCfg.AuthPackageID, rt.logger)
			state, err := svc.GetState(context.Background(), authID)
			if err != nil {
				return err
			}

			b := bundle.New(owner)
			build(svc, b, authID, state.TokenType)

			draft, err := b.MarshalDraft()
			if err != nil {
				return err
			}
			fmt.Println(string(draft))
			return nil
		},
	}

	cmd.Flags().StringVar(&authID, "id", "", "authorization object ID")
	cmd.Flags().StringVar(&sender, "sender", "", "owner address signing the draft (0x + 64 hex)")
	_ = cmd.MarkFlagRequired("id")
	_ = cmd.MarkFlagRequired("sender")
	return cmd
}

// newAuthStatusCmd auth status：读取授权快照并做本地预判
func newAuthStatusCmd() *cobra.Command {
	var (
		authID string
		amount string
	)

	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show an authorization snapshot and locally predict eligibility",
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := setup()
			if err != nil {
				return err
			}
			defer rt.close()

			svc := authorization.NewService(rt.client, rt.svcCfg.AuthPackageID, rt.logger)
			state, err := svc.GetState(context.Background(), authID)
			if err != nil {
				return err
			}

			now := time.Now()
			fmt.Printf("authorization %s\n", state.ObjectID)
			fmt.Printf("  owner:        %s\n", utils.ShortenAddress(state.Owner))
			fmt.Printf("  agent:        %s\n", utils.ShortenAddress(state.Agent))
			fmt.Printf("  token:        %s\n", state.TokenType)
			fmt.Printf("  daily limit:  %d (used today: %d, effective: %d)\n",
				state.DailyLimit, state.UsedToday, authorization.EffectiveUsedToday(state, now))
			fmt.Printf("  per-tx limit: %d\n", state.PerTxLimit)
			fmt.Printf("  expiry:       %s\n", time.UnixMilli(int64(state.Expiry)).UTC().Format(time.RFC3339))
			fmt.Printf("  enabled:      %v\n", state.Enabled)

			if amount != "" {
				info, err := tokenInfoForType(state.TokenType)
				if err != nil {
					return err
				}
				requested, err := token.ParseAmount(amount, info)
				if err != nil {
					return err
				}
				if err := authorization.CheckDelegate(state, requested, now); err != nil {
					fmt.Printf("  delegate %s: NO (%v)\n", amount, err)
				} else {
					fmt.Printf("  delegate %s: OK\n", amount)
				}
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&authID, "id", "", "authorization object ID")
	cmd.Flags().StringVar(&amount, "amount", "", "optional amount to test eligibility for")
	_ = cmd.MarkFlagRequired("id")
	return cmd
}

// tokenInfoForType 按类型标签反查白名单代币
func tokenInfoForType(typeTag string) (token.Info, error) {
	for _, symbol := range token.Symbols() {
		info, err := token.Resolve(symbol)
		if err != nil {
			return token.Info{}, err
		}
		if info.TypeTag == typeTag {
			return info, nil
		}
	}
	return token.Info{}, fmt.Errorf("authorization token %s is not in the allow-list", typeTag)
}
