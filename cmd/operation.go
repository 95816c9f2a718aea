package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"os"
	"sort"
	"strings"

	"registry/usecase"

	"github.com/spf13/cobra"
)

type operationHandler func(ctx context.Context, body []byte) error

func decodeAndRun[T any](run func(ctx context.Context, req T) error) operationHandler {
	return func(ctx context.Context, body []byte) error {
		var req T
		if err := json.Unmarshal(body, &req); err != nil {
			return err
		}
		return run(ctx, req)
	}
}

func operationHandlers() map[string]operationHandler {
	r := registryInteractor
	return map[string]operationHandler{
		usecase.OperationInitialize:           decodeAndRun(r.Initialize),
		usecase.OperationRegisterCapability:   decodeAndRun(r.RegisterCapability),
		usecase.OperationCreateEntity:         decodeAndRun(r.CreateEntity),
		usecase.OperationUpdateEntity:         decodeAndRun(r.UpdateEntity),
		usecase.OperationSwitchEntity:         decodeAndRun(r.SwitchEntity),
		usecase.OperationCreateMember:         decodeAndRun(r.CreateMember),
		usecase.OperationUpdateMember:         decodeAndRun(r.UpdateMember),
		usecase.OperationDeposit:              decodeAndRun(r.Deposit),
		usecase.OperationWithdraw:             decodeAndRun(r.Withdraw),
		usecase.OperationStake:                decodeAndRun(r.Stake),
		usecase.OperationTransferStakeIntent:  decodeAndRun(r.TransferStakeIntent),
		usecase.OperationStartStakeWithdrawal: decodeAndRun(r.StartStakeWithdrawal),
		usecase.OperationEndStakeWithdrawal:   decodeAndRun(r.EndStakeWithdrawal),
		usecase.OperationRefresh: func(ctx context.Context, body []byte) error {
			var req usecase.RefreshRequest
			if err := json.Unmarshal(body, &req); err != nil {
				return err
			}
			count, err := r.Refresh(ctx, req)
			if err == nil {
				fmt.Printf("🔵 Refreshed %v entities\n", count)
			}
			return err
		},
	}
}

var requestFile string

// execCmd represents the exec command
var execCmd = &cobra.Command{
	Use:   "exec <operation>",
	Short: "Executes one registry operation",
	Long: `Executes one registry operation with a json request read from --request,
or from stdin when it is '-'. Run 'exec list' to see the operations.`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		defaultDependencyInject()

		handlers := operationHandlers()
		if args[0] == "list" {
			kinds := make([]string, 0, len(handlers))
			for kind := range handlers {
				kinds = append(kinds, kind)
			}
			sort.Strings(kinds)
			fmt.Println(strings.Join(kinds, "\n"))
			return
		}

		handler, ok := handlers[args[0]]
		if !ok {
			log.Fatalf("❌ Unknown operation '%v'\n", args[0])
		}

		body, err := readRequest(requestFile)
		if err != nil {
			log.Fatalf("❌ Unable to read request - %v\n", err.Error())
		}

		if err := handler(context.Background(), body); err != nil {
			log.Fatalf("❌ %v failed - %v\n", args[0], err.Error())
		}
		fmt.Printf("✅ %v done.\n", args[0])
	},
}

func readRequest(filePath string) ([]byte, error) {
	if filePath == "-" {
		return io.ReadAll(os.Stdin)
	}
	return os.ReadFile(filePath)
}

func init() {
	rootCmd.AddCommand(execCmd)

	execCmd.Flags().StringVar(&requestFile, "request", "-", "json request file")
}
