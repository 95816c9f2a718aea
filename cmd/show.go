package cmd

import (
	"context"
	"fmt"
	"log"
	"time"

	"registry/domain"
	"registry/domain/config"
	"registry/domain/util"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
)

var operationsLimit int

// showCmd represents the show command
var showCmd = &cobra.Command{
	Use:   "show",
	Short: "Shows registry records",
}

func addressArg(args []string) domain.Address {
	if len(args) == 0 {
		address := config.GetRegistrarAddress()
		if address.IsZero() {
			log.Fatalf("❌ An address is required\n")
		}
		return address
	}
	address, err := domain.ParseAddress(args[0])
	if err != nil {
		log.Fatalf("❌ Invalid address '%v' - %v\n", args[0], err.Error())
	}
	return address
}

func showCommand(use, short string, maxArgs int, run func(ctx context.Context, args []string) error) *cobra.Command {
	return &cobra.Command{
		Use:   use,
		Short: short,
		Args:  cobra.MaximumNArgs(maxArgs),
		Run: func(cmd *cobra.Command, args []string) {
			defaultDependencyInject()
			if err := run(context.Background(), args); err != nil {
				log.Fatalf("❌ %v\n", err.Error())
			}
		},
	}
}

func showRegistrar(ctx context.Context, args []string) error {
	address := addressArg(args)
	registrar, err := registryInteractor.GetRegistrar(ctx, address)
	if err != nil {
		return err
	}
	fmt.Printf("Registrar %v\n", config.FormatAddress(address))
	fmt.Printf("  authority:             %v\n", config.FormatAddress(registrar.Authority))
	fmt.Printf("  activation threshold:  %v\n", util.AmountString(registrar.RewardActivationThreshold))
	fmt.Printf("  withdrawal timelock:   %v\n", util.TimelockString(registrar.WithdrawalTimelock))
	if timelock, err := registrar.DeactivationTimelock(); err == nil {
		fmt.Printf("  deactivation timelock: %v\n", util.TimelockString(timelock))
	}
	fmt.Printf("  pools:                 %v, %v\n", config.FormatAddress(registrar.Pool), config.FormatAddress(registrar.MegaPool))

	if memo, err := memoInteractor.GetLastRefresh(address); err == nil && memo != nil {
		fmt.Printf("  last refresh:          %v (%v entities)\n", humanize.Time(time.Unix(memo.LastRefreshTs, 0)), memo.Entities)
	}
	return nil
}

func showEntity(ctx context.Context, args []string) error {
	status, err := registryInteractor.GetEntity(ctx, addressArg(args))
	if err != nil {
		return err
	}
	entity := status.Entity
	fmt.Printf("Entity %v\n", config.FormatAddress(status.Address))
	fmt.Printf("  leader:            %v\n", config.FormatAddress(entity.Leader))
	fmt.Printf("  stake kind:        %v\n", entity.StakeKind)
	fmt.Printf("  capabilities:      %032b\n", entity.Capabilities)
	fmt.Printf("  state:             %v\n", entity.State)
	fmt.Printf("  generation:        %v\n", entity.Generation)
	fmt.Printf("  activation amount: %v (meets requirements: %v)\n", util.AmountString(status.ActivationAmount), status.Meets)
	fmt.Printf("  balances:          %v\n", util.BalancesString(entity.Balances))
	return nil
}

func showEntities(ctx context.Context, args []string) error {
	entities, err := registryInteractor.ListEntities(ctx, addressArg(args))
	if err != nil {
		return err
	}
	fmt.Printf("------------- ENTITY LIST -----------------\n")
	for i, address := range entities {
		fmt.Printf("#%03d - %v\n", i+1, config.FormatAddress(address))
	}
	return nil
}

func showMember(ctx context.Context, args []string) error {
	address := addressArg(args)
	member, err := registryInteractor.GetMember(ctx, address)
	if err != nil {
		return err
	}
	fmt.Printf("Member %v\n", config.FormatAddress(address))
	fmt.Printf("  entity:        %v\n", config.FormatAddress(member.Entity))
	fmt.Printf("  beneficiary:   %v\n", config.FormatAddress(member.Beneficiary))
	fmt.Printf("  generation:    %v\n", member.Generation)
	fmt.Printf("  main:          %v\n", util.BalancesString(member.Books.Main.Balances))
	fmt.Printf("  delegate:      %v (%v)\n", util.BalancesString(member.Books.Delegate.Balances), config.FormatAddress(member.Books.Delegate.Owner))
	if member.Watchtower.IsSet() {
		fmt.Printf("  watchtower:    %v\n", config.FormatAddress(member.Watchtower.Authority))
	}
	return nil
}

func showWithdrawal(ctx context.Context, args []string) error {
	pw, err := registryInteractor.GetPendingWithdrawal(ctx, addressArg(args))
	if err != nil {
		return err
	}
	state := "pending"
	if pw.Burned {
		state = "paid"
	} else if pw.Matured(time.Now().Unix()) {
		state = "matured"
	}
	fmt.Printf("Pending withdrawal of %v\n", config.FormatAddress(pw.Member))
	fmt.Printf("  state:    %v, ends %v\n", state, humanize.Time(time.Unix(pw.EndTs, 0)))
	fmt.Printf("  redeemed: %v\n", util.SptString(pw.SptAmount, pw.Mega))
	fmt.Printf("  payment:  %v + %v mega\n", util.AmountString(pw.Payment.AssetAmount), util.AmountString(pw.Payment.MegaAssetAmount))
	if pw.Delegate {
		fmt.Printf("  delegate: %v + %v mega\n", util.AmountString(pw.DelegatePayment.AssetAmount), util.AmountString(pw.DelegatePayment.MegaAssetAmount))
	}
	return nil
}

func showAccount(ctx context.Context, args []string) error {
	account, err := registryInteractor.GetTokenAccount(ctx, addressArg(args))
	if err != nil {
		return err
	}
	fmt.Printf("%v of mint %v, owned by %v\n", util.AmountString(account.Amount), config.FormatAddress(account.Mint), config.FormatAddress(account.Owner))
	return nil
}

func showOperations(ctx context.Context, args []string) error {
	operations, err := registryInteractor.Operations(operationsLimit)
	if err != nil {
		return err
	}
	for _, op := range operations {
		line := fmt.Sprintf("#%v %v %v %v", op.Id, humanize.Time(op.CreateTime), op.Kind, op.State)
		if op.Error != "" {
			line += " - " + op.Error
		}
		fmt.Println(line)
	}
	return nil
}

func init() {
	rootCmd.AddCommand(showCmd)

	operationsCmd := showCommand("operations", "Shows the latest operations", 0, showOperations)
	operationsCmd.Flags().IntVar(&operationsLimit, "limit", 20, "number of operations")

	showCmd.AddCommand(
		showCommand("registrar [address]", "Shows a registrar, the configured one by default", 1, showRegistrar),
		showCommand("entity <address>", "Shows an entity and its activation", 1, showEntity),
		showCommand("entities [registrar]", "Lists the entities of a registrar", 1, showEntities),
		showCommand("member <address>", "Shows a member", 1, showMember),
		showCommand("withdrawal <address>", "Shows a pending withdrawal", 1, showWithdrawal),
		showCommand("account <address>", "Shows a token account", 1, showAccount),
		operationsCmd,
	)
}
