// Command inspect prints the content of a chat-sync BadgerDB for debugging.
// It opens the database read-only, so it can run next to a live server.
package main

import (
	"chat-sync/docstore"
	"chat-sync/domain"
	"chat-sync/repositories"
	"chat-sync/session"
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/joho/godotenv"
	"github.com/mama165/sdk-go/logs"
	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"
)

func main() {
	_ = godotenv.Load()
	if err := rootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	var dbPath string
	log := logs.GetLoggerFromLevel(slog.LevelWarn)

	cmd := &cobra.Command{
		Use:   "inspect",
		Short: "Inspect users, rooms and messages stored by chat-sync",
	}
	cmd.PersistentFlags().StringVar(&dbPath, "db", os.Getenv("BADGER_FILEPATH"), "Path to badger DB")

	withStore := func(fn func(ctx context.Context, store *docstore.Store, out io.Writer) error) func(*cobra.Command, []string) error {
		return func(cmd *cobra.Command, _ []string) error {
			db, err := openDB(dbPath)
			if err != nil {
				return fmt.Errorf("opening badger at %q: %w", dbPath, err)
			}
			defer db.Close()
			return fn(cmd.Context(), docstore.NewStore(db, log), cmd.OutOrStdout())
		}
	}

	var limit int
	usersCmd := &cobra.Command{
		Use:   "users [prefix]",
		Short: "List users by username",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			prefix := ""
			if len(args) == 1 {
				prefix = args[0]
			}
			return withStore(func(ctx context.Context, store *docstore.Store, out io.Writer) error {
				users, err := repositories.NewUserRepository(store, log).SearchByUsername(ctx, prefix, limit)
				if err != nil {
					return err
				}
				table := newTable(out, "User ID", "Username", "Phone", "Push token", "Created")
				for _, u := range users {
					table.Append([]string{u.ID, u.DisplayName, u.Phone, shorten(u.PushToken, 12), formatTime(u.CreatedAt)})
				}
				table.Render()
				return nil
			})(cmd, args)
		},
	}
	usersCmd.Flags().IntVar(&limit, "limit", 100, "Maximum number of users")

	roomsCmd := &cobra.Command{
		Use:   "rooms",
		Short: "List rooms, most recently active first",
		Args:  cobra.NoArgs,
		RunE: withStore(func(ctx context.Context, store *docstore.Store, out io.Writer) error {
			rooms, err := repositories.NewRoomRepository(store, log).All(ctx)
			if err != nil {
				return err
			}
			table := newTable(out, "Room", "Participants", "Last message", "From", "At")
			for _, r := range rooms {
				at := ""
				if r.HasSummary() {
					at = domain.FormatClock(r.LastMessageAt)
				}
				table.Append([]string{
					r.ID.String(),
					r.ParticipantIDs[0] + ", " + r.ParticipantIDs[1],
					shorten(r.LastMessage, 40),
					r.LastMessageSenderID,
					at,
				})
			}
			table.Render()
			return nil
		}),
	}

	var history int
	messagesCmd := &cobra.Command{
		Use:   "messages <roomID>",
		Short: "Print the latest messages of a room, newest first",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withStore(func(ctx context.Context, store *docstore.Store, out io.Writer) error {
				messages, err := repositories.NewMessageRepository(store, log).History(ctx, domain.RoomID(args[0]), history)
				if err != nil {
					return err
				}
				table := newTable(out, "ID", "Sender", "Sent at", "Body")
				for _, m := range messages {
					table.Append([]string{shorten(m.ID, 8), m.SenderID, formatTime(m.SentAt), m.Body})
				}
				table.Render()
				return nil
			})(cmd, args)
		},
	}
	messagesCmd.Flags().IntVar(&history, "limit", 50, "Maximum number of messages")

	var secret string
	var ttl time.Duration
	tokenCmd := &cobra.Command{
		Use:   "token <userID>",
		Short: "Issue an access token for a user, for manual API calls",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := domain.ValidateUserID(args[0]); err != nil {
				return err
			}
			token, err := session.NewIssuer(secret, ttl).Generate(args[0])
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), token)
			return err
		},
	}
	tokenCmd.Flags().StringVar(&secret, "secret", os.Getenv("JWT_SECRET"), "HMAC secret shared with the server")
	tokenCmd.Flags().DurationVar(&ttl, "ttl", time.Hour, "Token validity")

	cmd.AddCommand(usersCmd, roomsCmd, messagesCmd, tokenCmd)
	return cmd
}

func openDB(path string) (*badger.DB, error) {
	return badger.Open(badger.DefaultOptions(path).
		WithReadOnly(true).
		WithLogger(nil).
		WithBypassLockGuard(true))
}

func newTable(out io.Writer, header ...string) *tablewriter.Table {
	table := tablewriter.NewWriter(out)
	table.SetHeader(header)
	table.SetAutoWrapText(false)
	table.SetHeaderAlignment(tablewriter.ALIGN_LEFT)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	table.SetCenterSeparator("")
	table.SetColumnSeparator("")
	table.SetRowSeparator("")
	table.SetHeaderLine(false)
	table.SetBorder(false)
	table.SetTablePadding("\t")
	return table
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Local().Format(time.DateTime)
}

func shorten(s string, n int) string {
	if len([]rune(s)) <= n {
		return s
	}
	return string([]rune(s)[:n]) + "…"
}
