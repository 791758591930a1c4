package cmd

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/sw33tLie/covidboard/internal/server"
	"github.com/sw33tLie/covidboard/internal/utils"
	"github.com/sw33tLie/covidboard/pkg/gateway"

	homedir "github.com/mitchellh/go-homedir"
	"github.com/spf13/viper"
)

var cfgFile string

const (
	LOGO = `                    _     _ _                         _
   ___ _____   _(_) __| | |__   ___   __ _ _ __ __| |
  / __/ _ \ \ / / |/ _' | '_ \ / _ \ / _' | '__/ _' |
 | (_| (_) \ V /| | (_| | |_) | (_) | (_| | | | (_| |
  \___\___/ \_/ |_|\__,_|_.__/ \___/ \__,_|_|  \__,_|

`
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "covidboard",
	Short: "Global and per-country COVID-19 statistics in your terminal and browser.",
	Long: LOGO + `covidboard fetches COVID-19 statistics from disease.sh and shows them as a
web dashboard, a JSON API or plain tables on the command line.`,
	CompletionOptions: cobra.CompletionOptions{
		DisableDefaultCmd: true,
	},
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.covidboard.yaml)")

	// Global flags
	rootCmd.PersistentFlags().StringP("proxy", "", "", "HTTP Proxy (Useful for debugging. Example: http://127.0.0.1:8080)")
	rootCmd.PersistentFlags().StringP("loglevel", "l", "info", "Set log level. Available: debug, info, warn, error, fatal")
}

// initConfig reads in config file and ENV variables if set.
func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := homedir.Dir()
		if err != nil {
			fmt.Println(err)
			os.Exit(1)
		}
		viper.AddConfigPath(home)
		viper.SetConfigName(".covidboard")
		viper.SetConfigType("yaml")
	}

	viper.SetEnvPrefix("covidboard")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	viper.SetDefault("api.base_url", gateway.DefaultBaseURL)
	viper.SetDefault("api.timeout", gateway.DefaultTimeout.String())
	viper.SetDefault("api.retries", 0)
	viper.SetDefault("display.timezone", "UTC")
	viper.SetDefault("display.top", server.DefaultTop)
	viper.SetDefault("server.username", "")
	viper.SetDefault("server.password", "")

	// If a config file is found, read it in.
	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			// Config file not found; create it with defaults.
			home, _ := homedir.Dir()
			configPath := home + "/.covidboard.yaml"
			if err := viper.SafeWriteConfigAs(configPath); err != nil {
				fmt.Printf("Error creating config file: %s", err)
			}
		}
	}

	// Init log library
	levelString, _ := rootCmd.PersistentFlags().GetString("loglevel")
	if err := utils.SetLogLevel(levelString); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

// newGateway builds the API client from the config and the global flags.
func newGateway(cmd *cobra.Command) (*gateway.Client, error) {
	proxy, _ := cmd.Flags().GetString("proxy")
	timeout, err := time.ParseDuration(viper.GetString("api.timeout"))
	if err != nil {
		return nil, fmt.Errorf("invalid api.timeout: %w", err)
	}
	return gateway.New(gateway.Config{
		BaseURL: viper.GetString("api.base_url"),
		Timeout: timeout,
		Retries: viper.GetInt("api.retries"),
		Proxy:   proxy,
	})
}

// displayLocation is the time zone timestamps are shown in.
func displayLocation() (*time.Location, error) {
	name := viper.GetString("display.timezone")
	if name == "" {
		return time.UTC, nil
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		return nil, fmt.Errorf("invalid display.timezone: %w", err)
	}
	return loc, nil
}
