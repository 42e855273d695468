package main

import (
	"FaceAttendance/internal/api/attendance"
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

func newAttendanceCommand(opts *kioskOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "attendance",
		Short: "List recent attendance records",
		RunE: func(cmd *cobra.Command, args []string) error {
			resp, err := opts.apiClient().Attendance(cmd.Context(), opts.roomID)
			if err != nil {
				return fmt.Errorf("list attendance: %w", err)
			}

			if len(resp.AttendanceRecords) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No attendance records")
				return nil
			}

			fmt.Fprintln(cmd.OutOrStdout(), renderAttendance(resp.AttendanceRecords))
			fmt.Fprintf(cmd.OutOrStdout(), "%d record(s)\n", resp.Count)
			return nil
		},
	}

	return cmd
}

func renderAttendance(records []attendance.AttendanceRecord) string {
	rows := make([][]string, 0, len(records))
	for _, r := range records {
		kind := attendance.RoomTypeCheckIn
		if r.IsCheckOut {
			kind = attendance.RoomTypeCheckOut
		}
		room := r.RoomID
		if room == "" {
			room = "-"
		}
		rows = append(rows, []string{
			r.CheckinTime.Local().Format(time.DateTime),
			r.UserName,
			room,
			kind,
			r.Note,
		})
	}
	return renderTable([]string{"Time", "Name", "Room", "Type", "Note"}, rows)
}
