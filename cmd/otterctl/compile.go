package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/otterhq/intent-sdk-go/services/classifier"
	"github.com/otterhq/intent-sdk-go/services/compiler"
	"github.com/otterhq/intent-sdk-go/types"
)

// newClassifyCmd classify 子命令：自由文本 → 结构化意图
func newClassifyCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "classify <text>",
		Short: "Send free text to the classifier and print the structured intents",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := setup()
			if err != nil {
				return err
			}
			defer rt.close()

			svc := classifier.NewService(rt.cfg.Classifier.Endpoint, rt.cfg.Classifier.TimeoutSeconds, rt.logger)
			outcome, err := svc.Classify(context.Background(), args[0])
			if err != nil {
				return err
			}
			if !outcome.Understood {
				fmt.Println(outcome.Summary)
				return nil
			}

			fmt.Printf("summary: %s (confidence %.2f)\n", outcome.Summary, outcome.Confidence)
			encoded, err := json.MarshalIndent(outcome.Intents, "", "  ")
			if err != nil {
				return err
			}
			fmt.Println(string(encoded))
			return nil
		},
	}
}

// newCompileCmd compile 子命令：意图 JSON → 待签名草稿
func newCompileCmd() *cobra.Command {
	var (
		sender    string
		authID    string
		intentsIn string
	)

	cmd := &cobra.Command{
		Use:   "compile",
		Short: "Compile an intent batch into a signable operation bundle draft",
		RunE: func(cmd *cobra.Command, args []string) error {
			data := []byte(intentsIn)
			if intentsIn == "-" {
				var err error
				data, err = os.ReadFile("/dev/stdin")
				if err != nil {
					return err
				}
			}

			var intents []*types.Intent
			if err := json.Unmarshal(data, &intents); err != nil {
				return fmt.Errorf("parse intents JSON failed: %w", err)
			}

			rt, err := setup()
			if err != nil {
				return err
			}
			defer rt.close()

			var authCtx *compiler.AuthContext
			if authID != "" {
				authCtx = &compiler.AuthContext{AuthorizationID: authID}
			}

			svc := compiler.NewService(rt.client, rt.svcCfg, rt.logger)
			bundle, err := svc.Compile(context.Background(), intents, sender, authCtx)
			if err != nil {
				return err
			}

			draft, err := bundle.MarshalDraft()
			if err != nil {
				return err
			}
			fmt.Println(string(draft))
			return nil
		},
	}

	cmd.Flags().StringVar(&sender, "sender", "", "sender address (0x + 64 hex)")
	cmd.Flags().StringVar(&authID, "auth", "", "authorization object ID for delegated execution")
	cmd.Flags().StringVar(&intentsIn, "intents", "-", "intent batch JSON array, or - for stdin")
	_ = cmd.MarkFlagRequired("sender")
	return cmd
}
