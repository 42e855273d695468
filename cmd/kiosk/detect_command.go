package main

import (
	"FaceAttendance/internal/kiosk"
	"FaceAttendance/pkg/utils"
	"encoding/base64"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func newDetectCommand(opts *kioskOptions) *cobra.Command {
	var imagePath string

	cmd := &cobra.Command{
		Use:   "detect",
		Short: "Capture one frame and run recognition",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			presenter := kiosk.NewConsolePresenter(cmd.OutOrStdout())

			if imagePath != "" {
				img, err := readImage(imagePath)
				if err != nil {
					return err
				}
				result, err := opts.apiClient().Detect(ctx, utils.New().EncodeDataURL(img), opts.roomID)
				if err != nil {
					return fmt.Errorf("detect: %w", err)
				}
				switch {
				case result.Recognized:
					presenter.ShowRecognized(result)
				default:
					presenter.ShowNoFace(result.Message)
				}
				return nil
			}

			source, err := opts.frameSource()
			if err != nil {
				return err
			}
			shell := kiosk.NewShell(opts.logger(cmd.ErrOrStderr()), source, opts.apiClient(), presenter, opts.audioPlayer(), kiosk.ShellConfig{
				RoomID: opts.roomID,
			})

			if err := shell.StartCamera(ctx); err != nil {
				return fmt.Errorf("start camera: %w", err)
			}
			defer shell.StopCamera()

			if _, err := shell.DetectNow(ctx); err != nil {
				return fmt.Errorf("detect: %w", err)
			}
			if _, ok := shell.Pending(); ok {
				fmt.Fprintln(cmd.OutOrStdout(), "Use `kiosk register --image <file> --name <name>` to enrol this face.")
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&imagePath, "image", "", "Submit this image file instead of capturing from the camera")
	return cmd
}

func readImage(path string) (utils.Image, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return utils.Image{}, fmt.Errorf("read image: %w", err)
	}
	// Same validation the server applies to submitted frames.
	img, err := utils.New().DecodeImagePayload(base64.StdEncoding.EncodeToString(data))
	if err != nil {
		return utils.Image{}, fmt.Errorf("%s: %w", path, err)
	}
	return img, nil
}
