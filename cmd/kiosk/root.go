package main

import (
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

func newRootCommand() *cobra.Command {
	opts := &kioskOptions{}

	rootCmd := &cobra.Command{
		Use:           "kiosk",
		Short:         "Face attendance kiosk",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			_ = godotenv.Load()
			opts.applyEnv(cmd)
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&opts.serverURL, "server", "http://localhost:3000", "Attendance server base URL")
	flags.StringVar(&opts.roomID, "room", "", "Room the kiosk reports for")
	flags.StringVar(&opts.snapshotURL, "snapshot-url", "", "IP camera JPEG snapshot URL")
	flags.StringVar(&opts.framesDir, "frames-dir", "", "Directory of still images used as the camera")
	flags.StringVar(&opts.player, "player", "mpg123", "Audio player reading MP3 from stdin; empty disables speech")
	flags.StringVar(&opts.audioDir, "audio-dir", "", "Write greeting audio here instead of playing it")
	flags.BoolVar(&opts.verbose, "verbose", false, "Enable debug logging")

	rootCmd.AddCommand(newRunCommand(opts))
	rootCmd.AddCommand(newDetectCommand(opts))
	rootCmd.AddCommand(newRegisterCommand(opts))
	rootCmd.AddCommand(newAttendanceCommand(opts))
	rootCmd.AddCommand(newWatchCommand(opts))

	return rootCmd
}
