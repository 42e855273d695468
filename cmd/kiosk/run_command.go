package main

import (
	"FaceAttendance/internal/kiosk"
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/spf13/cobra"
)

// promptingPresenter forwards registration prompts to the input loop.
type promptingPresenter struct {
	*kiosk.ConsolePresenter
	prompts chan kiosk.PendingRegistration
}

func (p *promptingPresenter) PromptRegistration(pending kiosk.PendingRegistration) {
	p.ConsolePresenter.PromptRegistration(pending)
	select {
	case p.prompts <- pending:
	default:
	}
}

func newRunCommand(opts *kioskOptions) *cobra.Command {
	var interval time.Duration
	var manual bool

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run the interactive kiosk loop",
		Long: "Captures frames, recognizes faces and greets them. Commands on stdin:\n" +
			"  d  detect now\n  a  toggle auto-detect\n  s  stop camera\n  c  start camera\n  q  quit",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := context.WithCancel(cmd.Context())
			defer cancel()

			source, err := opts.frameSource()
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			presenter := &promptingPresenter{
				ConsolePresenter: kiosk.NewConsolePresenter(out),
				prompts:          make(chan kiosk.PendingRegistration, 1),
			}
			shell := kiosk.NewShell(opts.logger(cmd.ErrOrStderr()), source, opts.apiClient(), presenter, opts.audioPlayer(), kiosk.ShellConfig{
				RoomID:   opts.roomID,
				Interval: interval,
			})

			if err := shell.StartCamera(ctx); err != nil {
				return fmt.Errorf("start camera: %w", err)
			}
			defer shell.StopCamera()

			if !manual {
				if err := shell.SetAutoDetect(ctx, true); err != nil {
					return err
				}
			}

			lines := readLines(ctx, cmd.InOrStdin())
			return runLoop(ctx, shell, presenter, lines, out)
		},
	}

	cmd.Flags().DurationVar(&interval, "interval", kiosk.DefaultAutoDetectInterval, "Auto-detect interval")
	cmd.Flags().BoolVar(&manual, "manual", false, "Start with auto-detect off")
	return cmd
}

func runLoop(ctx context.Context, shell *kiosk.Shell, presenter *promptingPresenter, lines <-chan string, out io.Writer) error {
	for {
		select {
		case <-ctx.Done():
			return nil

		case <-presenter.prompts:
			fmt.Fprint(out, "Name (empty to skip): ")
			name, ok := <-lines
			if !ok {
				return nil
			}
			name = strings.TrimSpace(name)
			if name == "" {
				shell.DiscardPending()
				continue
			}
			fmt.Fprint(out, "Email (optional): ")
			email, ok := <-lines
			if !ok {
				return nil
			}
			if _, err := shell.Register(ctx, name, strings.TrimSpace(email)); err != nil {
				presenter.ShowError(err)
			}

		case line, ok := <-lines:
			if !ok {
				return nil
			}
			switch strings.TrimSpace(line) {
			case "d":
				if _, err := shell.DetectNow(ctx); err != nil {
					presenter.ShowError(err)
				}
			case "a":
				on := !shell.AutoDetecting()
				if err := shell.SetAutoDetect(ctx, on); err != nil {
					presenter.ShowError(err)
					continue
				}
				fmt.Fprintf(out, "Auto-detect %s\n", onOff(on))
			case "s":
				if err := shell.StopCamera(); err != nil {
					presenter.ShowError(err)
				}
			case "c":
				if err := shell.StartCamera(ctx); err != nil {
					presenter.ShowError(err)
				}
			case "q":
				return nil
			case "":
			default:
				presenter.ShowError(errors.New("unknown command " + strings.TrimSpace(line)))
			}
		}
	}
}

func readLines(ctx context.Context, in io.Reader) <-chan string {
	lines := make(chan string)
	go func() {
		defer close(lines)
		scanner := bufio.NewScanner(in)
		for scanner.Scan() {
			select {
			case lines <- scanner.Text():
			case <-ctx.Done():
				return
			}
		}
	}()
	return lines
}

func onOff(on bool) string {
	if on {
		return "on"
	}
	return "off"
}
