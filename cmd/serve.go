package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/sw33tLie/covidboard/internal/utils"
	"github.com/sw33tLie/covidboard/pkg/screen"
	"github.com/sw33tLie/covidboard/pkg/storage"
	"github.com/sw33tLie/covidboard/website/pkg/core"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the dashboard web server",
	RunE: func(cmd *cobra.Command, args []string) error {
		listenAddr, _ := cmd.Flags().GetString("listen")
		refresh, _ := cmd.Flags().GetDuration("refresh")
		domain, _ := cmd.Flags().GetString("domain")
		dbFile, _ := cmd.Flags().GetString("db")

		gw, err := newGateway(cmd)
		if err != nil {
			return err
		}
		loc, err := displayLocation()
		if err != nil {
			return err
		}

		controller := screen.NewController()

		if dbFile != "" {
			db, err := storage.Open(dbFile)
			if err != nil {
				return err
			}
			defer db.Close()
			rec, err := storage.NewRecorder(db, dbFile)
			if err != nil {
				return err
			}
			controller.Subscribe(recordSnapshots(cmd.Context(), rec))
			utils.Log.Infof("Recording snapshots to %s", dbFile)
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		return core.Run(ctx, controller, gw, core.ServerConfig{
			ListenAddr:      listenAddr,
			Domain:          domain,
			RefreshInterval: refresh,
			Top:             viper.GetInt("display.top"),
			Location:        loc,
			Username:        viper.GetString("server.username"),
			Password:        viper.GetString("server.password"),
		})
	},
}

// recordSnapshots stores every newly loaded generation.
func recordSnapshots(ctx context.Context, rec *storage.Recorder) func(screen.State) {
	return func(st screen.State) {
		if st.Status != screen.Ready || st.Data == nil {
			return
		}
		id, err := rec.Record(context.WithoutCancel(ctx), st.Data)
		if err != nil {
			utils.Log.WithError(err).Error("Failed to record snapshot")
			return
		}
		utils.Log.WithField("generation", st.Generation).Infof("Recorded snapshot #%d", id)
	}
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().String("listen", ":8080", "HTTP listen address")
	serveCmd.Flags().Duration("refresh", 0, "Reload the data at this interval (0 to disable); paused after a failed load until a manual refresh succeeds")
	serveCmd.Flags().String("domain", "", "Domain name for sitemap/robots.txt")
	serveCmd.Flags().String("db", "", "Record every successful load to this SQLite file")
}
