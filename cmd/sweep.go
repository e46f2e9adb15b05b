package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/circa10a/appointment-reminder/internal/reminder"
	"github.com/spf13/cobra"
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Create the appointments table if it does not exist",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		svc, err := newService()
		if err != nil {
			return err
		}

		return svc.Init()
	},
}

var sweepCmd = &cobra.Command{
	Use:   "sweep",
	Short: "Send reminders for appointments due tomorrow, once",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		svc, err := newService()
		if err != nil {
			return err
		}

		err = svc.Init()
		if err != nil {
			return err
		}

		summary, err := svc.Sweep()
		if err != nil {
			return err
		}

		reminder.PrintSummary(cmd.OutOrStdout(), summary)
		return nil
	},
}

var scheduleCmd = &cobra.Command{
	Use:   "schedule",
	Short: "Run reminder sweeps on the configured cron expression until interrupted",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		svc, err := newService()
		if err != nil {
			return err
		}

		err = svc.Init()
		if err != nil {
			return err
		}

		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		stop := make(chan os.Signal, 1)
		signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
		defer signal.Stop(stop)

		go func() {
			select {
			case <-stop:
				cancel()
			case <-ctx.Done():
			}
		}()

		return svc.Schedule(ctx)
	},
}

func init() {
	rootCmd.AddCommand(initCmd, sweepCmd, scheduleCmd)
}
