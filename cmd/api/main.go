package main

import (
	"fmt"
	"os"

	_ "github.com/joho/godotenv/autoload"
	"github.com/spf13/cobra"

	"marketapi/internal/config"
)

var Version = "dev"

// @title Market API
// @version 1.0
// @BasePath /
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	rootCmd := &cobra.Command{
		Use:     "api",
		Short:   "User, product and media services",
		Version: Version,
	}

	rootCmd.AddCommand(serveCmd(config.ServiceUser, "Run the user service (registration, login, profiles)"))
	rootCmd.AddCommand(serveCmd(config.ServiceProduct, "Run the product service (catalog, seller listings)"))
	rootCmd.AddCommand(serveCmd(config.ServiceMedia, "Run the media service (image uploads)"))
	rootCmd.AddCommand(migrateCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
