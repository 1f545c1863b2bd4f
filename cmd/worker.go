package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/frahmantamala/evaluation-criteria/internal/notification"
	"github.com/frahmantamala/evaluation-criteria/pkg/logger"
	"github.com/spf13/cobra"
)

var workerCmd = &cobra.Command{
	Use:   "worker",
	Short: "Start background workers",
	Long:  `Start background workers that consume what the server emits.`,
}

var notificationWorkerCmd = &cobra.Command{
	Use:   "notifications",
	Short: "Consume category notifications from redis",
	Long:  `Subscribe to the redis notification channel and log every forwarded category event.`,
	Run: func(cmd *cobra.Command, args []string) {
		if err := startNotificationWorker(); err != nil {
			fmt.Fprintf(os.Stderr, "%v\n", err)
			os.Exit(1)
		}
	},
}

var channelOverride string

func startNotificationWorker() error {
	config, err := loadConfig(configDir)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	logger.Init(config.Logging.Level, config.Logging.Format)
	lg := logger.LoggerWrapper()

	redisCfg := config.Notification.Redis
	channel := getStringFlag(channelOverride, redisCfg.Channel)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	rdb, err := notification.NewRedisClient(ctx, redisCfg.Addr, redisCfg.Password, redisCfg.DB)
	if err != nil {
		return err
	}
	defer rdb.Close()

	lg.Info("notification worker is running. Press Ctrl+C to stop.", "addr", redisCfg.Addr, "channel", channel)

	err = notification.Listen(ctx, rdb, channel, lg, func(ctx context.Context, msg notification.Message) {
		lg.Info("category notification received",
			"event_id", msg.ID,
			"event_type", msg.Type,
			"occurred_at", msg.OccurredAt,
			"payload", msg.Payload)
	})

	lg.Info("notification worker stopped")
	return err
}

func getStringFlag(flagValue, configValue string) string {
	if flagValue != "" {
		return flagValue
	}
	return configValue
}

func init() {
	notificationWorkerCmd.Flags().StringVar(&channelOverride, "channel", "", "Redis channel to subscribe to (overrides config)")

	workerCmd.AddCommand(notificationWorkerCmd)

	rootCmd.AddCommand(workerCmd)
}
