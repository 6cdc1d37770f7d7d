package main

import (
	"context"
	"fmt"
	"text/tabwriter"

	"fishcare_notifier/internal/app"
	"fishcare_notifier/internal/domain/sms"
	idb "fishcare_notifier/internal/infra/database"
	"fishcare_notifier/internal/infra/logger"

	"github.com/spf13/cobra"
)

// --------------------------------------------------------------------------
// records command
// --------------------------------------------------------------------------

func recordsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "records",
		Short: "Manage feeding schedules",
	}
	cmd.AddCommand(recordsAddCmd())
	cmd.AddCommand(recordsListCmd())
	cmd.AddCommand(recordsDeleteCmd())
	return cmd
}

func recordsAddCmd() *cobra.Command {
	var userID int64
	var in app.NewFeedingRecord
	cmd := &cobra.Command{
		Use:   "add",
		Short: "Add a daily feeding schedule for a user",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withDeps(func(ctx context.Context, rt *deps) error {
				svc := app.NewScheduleService(idb.NewPostgresFeedingRepository(rt.db))
				rec, err := svc.AddRecord(ctx, userID, in)
				if err != nil {
					return err
				}
				logger.WithComponent("records").WithField("record_id", rec.ID).Info("Feeding record created")
				fmt.Fprintf(cmd.OutOrStdout(), "Created feeding record %d (%s %s at %s)\n", rec.ID, rec.FishSize, rec.FoodType, rec.FeedingTime)
				return nil
			})
		},
	}
	cmd.Flags().Int64Var(&userID, "user", 0, "Owner user ID")
	cmd.Flags().StringVar(&in.FishSize, "size", "", "Fish size (Small, Medium, Large)")
	cmd.Flags().StringVar(&in.FoodType, "food", "", "Food type")
	cmd.Flags().StringVar(&in.FeedingTime, "time", "", "Feeding time, HH:MM or HH:MM:SS")
	cmd.Flags().StringVar(&in.Quantity, "quantity", "", "Optional quantity, e.g. \"2 scoops\"")
	cmd.Flags().StringVar(&in.Notes, "notes", "", "Optional notes")
	_ = cmd.MarkFlagRequired("user")
	return cmd
}

func recordsListCmd() *cobra.Command {
	var userID int64
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List a user's feeding schedules",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withDeps(func(ctx context.Context, rt *deps) error {
				svc := app.NewScheduleService(idb.NewPostgresFeedingRepository(rt.db))
				records, err := svc.ListRecords(ctx, userID)
				if err != nil {
					return err
				}
				w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
				fmt.Fprintln(w, "ID\tTIME\tSIZE\tFOOD\tQUANTITY\tNOTES")
				for _, r := range records {
					fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\t%s\n", r.ID, r.FeedingTime, r.FishSize, r.FoodType, r.Quantity.String, r.Notes.String)
				}
				return w.Flush()
			})
		},
	}
	cmd.Flags().Int64Var(&userID, "user", 0, "Owner user ID")
	_ = cmd.MarkFlagRequired("user")
	return cmd
}

func recordsDeleteCmd() *cobra.Command {
	var userID, recordID int64
	cmd := &cobra.Command{
		Use:   "delete",
		Short: "Delete one of a user's feeding schedules",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withDeps(func(ctx context.Context, rt *deps) error {
				svc := app.NewScheduleService(idb.NewPostgresFeedingRepository(rt.db))
				if err := svc.DeleteRecord(ctx, userID, recordID); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Deleted feeding record %d\n", recordID)
				return nil
			})
		},
	}
	cmd.Flags().Int64Var(&userID, "user", 0, "Owner user ID")
	cmd.Flags().Int64Var(&recordID, "id", 0, "Feeding record ID")
	_ = cmd.MarkFlagRequired("user")
	_ = cmd.MarkFlagRequired("id")
	return cmd
}

// --------------------------------------------------------------------------
// sms command
// --------------------------------------------------------------------------

func smsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sms",
		Short: "Send ad-hoc SMS messages",
	}
	cmd.AddCommand(smsSendCmd())
	return cmd
}

func smsSendCmd() *cobra.Command {
	var userID int64
	var phone, message string
	cmd := &cobra.Command{
		Use:   "send",
		Short: "Send a message to a user's phone, falling back to the default number",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withDeps(func(ctx context.Context, rt *deps) error {
				svc := app.NewSMSService(
					idb.NewPostgresUserRepository(rt.db),
					rt.gateway(),
					rt.cfg.DefaultPhoneNumber,
					logger.WithComponent("sms"),
				)
				used, err := svc.SendToUser(ctx, userID, phone, message)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "SMS sent to %s\n", sms.MaskPhone(used))
				return nil
			})
		},
	}
	cmd.Flags().Int64Var(&userID, "user", 0, "User whose profile number is used when --phone is empty")
	cmd.Flags().StringVar(&phone, "phone", "", "Explicit destination number")
	cmd.Flags().StringVarP(&message, "message", "m", "", "Message text")
	return cmd
}
