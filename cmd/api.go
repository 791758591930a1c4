package cmd

import (
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/sw33tLie/covidboard/internal/server"
	"github.com/sw33tLie/covidboard/internal/utils"
	"github.com/sw33tLie/covidboard/pkg/screen"
)

// apiCmd represents the api command
var apiCmd = &cobra.Command{
	Use:   "api",
	Short: "Start the JSON API only",
	Long:  `Start a web server that serves the dashboard data as JSON, without the HTML pages.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		gw, err := newGateway(cmd)
		if err != nil {
			return err
		}

		user, _ := cmd.Flags().GetString("username")
		pass, _ := cmd.Flags().GetString("password")
		addr, _ := cmd.Flags().GetString("bind")
		if user == "" {
			user = viper.GetString("server.username")
		}
		if pass == "" {
			pass = viper.GetString("server.password")
		}

		controller := screen.NewController()
		if err := controller.Load(cmd.Context(), gw); err != nil {
			// The API answers 503 until POST /api/refresh succeeds.
			utils.Log.WithError(err).Warn("Initial load failed")
		}

		srv := server.New(controller, gw, user, pass)
		if top := viper.GetInt("display.top"); top > 0 {
			srv.Top = top
		}
		return srv.Start(addr)
	},
}

func init() {
	rootCmd.AddCommand(apiCmd)

	apiCmd.Flags().StringP("bind", "b", ":9999", "Address to bind the server to")
	apiCmd.Flags().StringP("username", "u", "", "Username for basic auth (optional)")
	apiCmd.Flags().StringP("password", "p", "", "Password for basic auth (optional)")
}
