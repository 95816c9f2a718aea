package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"log"

	"registry/domain/config"
	"registry/usecase"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var genesisFile string

// bootstrapCmd represents the bootstrap command
var bootstrapCmd = &cobra.Command{
	Use:   "bootstrap",
	Short: "Creates a registrar from a genesis file",
	Long: `Creates both staking pools, the funded genesis token accounts and the
registrar described by the genesis file, in a single operation.`,
	Run: func(cmd *cobra.Command, args []string) {
		req, err := readGenesis(genesisFile)
		if err != nil {
			log.Fatalf("❌ Invalid genesis file - %v\n", err.Error())
		}

		defaultDependencyInject()

		if err := registryInteractor.Bootstrap(context.Background(), *req); err != nil {
			log.Fatalf("❌ Bootstrap failed - %v\n", err.Error())
		}
		fmt.Printf("✅ Registrar %v is bootstrapped.\n", config.FormatAddress(req.Initialize.Registrar))
	},
}

// readGenesis accepts any format viper reads. Settings are re-encoded as
// json so addresses decode through their text unmarshaler.
func readGenesis(filePath string) (*usecase.BootstrapRequest, error) {
	v := viper.New()
	v.SetConfigFile(filePath)
	if err := v.ReadInConfig(); err != nil {
		return nil, err
	}

	jstr, err := json.Marshal(v.AllSettings())
	if err != nil {
		return nil, err
	}

	var req usecase.BootstrapRequest
	if err := json.Unmarshal(jstr, &req); err != nil {
		return nil, err
	}
	return &req, nil
}

func init() {
	rootCmd.AddCommand(bootstrapCmd)

	bootstrapCmd.Flags().StringVar(&genesisFile, "genesis", "genesis.yaml", "genesis file")
}
