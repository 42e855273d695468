package main

import (
	websocketPkg "FaceAttendance/pkg/websocket"
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

func newWatchCommand(opts *kioskOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "watch",
		Short: "Print the server's live recognition and attendance events",
		RunE: func(cmd *cobra.Command, args []string) error {
			feed := websocketPkg.NewFeedClient(websocketPkg.Config{URL: opts.feedURL()}, opts.logger(cmd.ErrOrStderr()))
			defer feed.Close()

			fmt.Fprintf(cmd.OutOrStdout(), "Watching %s\n", opts.feedURL())

			err := feed.Subscribe(cmd.Context(), func(event websocketPkg.FeedEvent) {
				fmt.Fprintf(cmd.OutOrStdout(), "%s  %-12s %s\n",
					event.Timestamp.Local().Format(time.TimeOnly), event.Type, string(event.Payload))
			})
			if errors.Is(err, context.Canceled) {
				return nil
			}
			return err
		},
	}
}
