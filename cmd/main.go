package main

import (
	"fmt"
	"log"
	"os"

	"github.com/spf13/cobra"

	"renohub/internal/app"
	"renohub/internal/config"
	"renohub/internal/repository"
)

func main() {
	root := &cobra.Command{
		Use:   "renohub",
		Short: "Renovation marketplace backend",
	}

	root.AddCommand(serveCmd(), migrateCmd())

	// bare invocation serves
	root.RunE = serveCmd().RunE

	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP server",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := app.NewApp()
			if err != nil {
				return err
			}

			a.Run()
			return nil
		},
	}
}

func migrateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:       "migrate [up|down]",
		Short:     "Apply or roll back database migrations",
		Args:      cobra.ExactValidArgs(1),
		ValidArgs: []string{"up", "down"},
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.NewPostgresConfig()
			if err != nil {
				return err
			}
			cfg.AutoMigrateUp = "false"
			cfg.AutoMigrateDown = "false"

			repo, err := repository.NewRepository(nil, cfg)
			if err != nil {
				return err
			}
			defer func() {
				if err := repo.Close(); err != nil {
					log.Println("migrate:", err)
				}
			}()

			switch args[0] {
			case "up":
				return repo.MigrateUp()
			case "down":
				return repo.MigrateDown()
			default:
				return fmt.Errorf("unknown migrate direction: %s", args[0])
			}
		},
	}
	return cmd
}
