package main

import (
	"FaceAttendance/internal/api/face"
	"FaceAttendance/pkg/utils"
	"errors"
	"fmt"

	"github.com/spf13/cobra"
)

func newRegisterCommand(opts *kioskOptions) *cobra.Command {
	var name, email, imagePath string

	cmd := &cobra.Command{
		Use:   "register",
		Short: "Register a face from an image file",
		RunE: func(cmd *cobra.Command, args []string) error {
			if imagePath == "" {
				return errors.New("--image is required")
			}

			img, err := readImage(imagePath)
			if err != nil {
				return err
			}

			resp, err := opts.apiClient().Register(cmd.Context(), face.RegisterFaceRequest{
				Image: utils.New().EncodeDataURL(img),
				Name:  name,
				Email: email,
			})
			if err != nil {
				return fmt.Errorf("register: %w", err)
			}

			fmt.Fprintf(cmd.OutOrStdout(), "%s\n  id:     %s\n  person: %s\n", resp.Message, resp.User.ID, resp.User.LuxandPersonID)
			return nil
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "Display name")
	cmd.Flags().StringVar(&email, "email", "", "Contact email")
	cmd.Flags().StringVar(&imagePath, "image", "", "Image file containing the face")
	return cmd
}
