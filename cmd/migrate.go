package cmd

import (
	"fmt"
	"log"

	"registry/domain/config"
	"registry/interface/repository"

	"github.com/spf13/cobra"
)

// migrateCmd represents the migrate command
var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Creates the registry tables",
	Long:  `Creates the records, operations and memos tables of the postgres store. It is safe to run more than once.`,
	Run: func(cmd *cobra.Command, args []string) {
		if config.GetStore() != config.PostgresStore {
			fmt.Println("⚠️ Nothing to migrate, the store is not postgres.")
			return
		}

		defaultDependencyInject()

		if err := repository.Migrate(dbHandler); err != nil {
			log.Fatalf("❌ Migration failed - %v\n", err.Error())
		}
		fmt.Println("✅ Migration done.")
	},
}

func init() {
	rootCmd.AddCommand(migrateCmd)
}
