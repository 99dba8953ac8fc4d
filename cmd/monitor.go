package cmd

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/davzula/blinkwatch/internal/blink"
	"github.com/davzula/blinkwatch/internal/capture"
	"github.com/davzula/blinkwatch/internal/dashboard"
	"github.com/davzula/blinkwatch/internal/landmark"
	"github.com/davzula/blinkwatch/internal/store"
	"github.com/davzula/blinkwatch/internal/utils"
)

const megabyte = 1024 * 1024

var monitorOpts Options

var monitorCmd = &cobra.Command{
	Use:   "monitor",
	Short: "Start a live blink-monitoring session from the webcam",
	RunE: func(cmd *cobra.Command, args []string) error {
		cmd.SilenceUsage = true
		return runMonitor(cmd.Context(), monitorOpts)
	},
}

func init() {
	monitorCmd.Flags().StringVarP(&monitorOpts.Device, "device", "i", "/dev/video0", "Camera device (e.g. /dev/video0, or the avfoundation index on macOS)")
	monitorCmd.Flags().StringVarP(&monitorOpts.UserName, "user", "u", "", "Name to attach to saved records (default: $BLINKWATCH_USER or a prompt)")
	rootCmd.AddCommand(monitorCmd)
}

func runMonitor(ctx context.Context, opts Options) error {
	userName := resolveUserName(opts.UserName)

	fmt.Fprintf(os.Stderr, "Hello %s! Starting blink detection...\n", userName)
	fmt.Fprintf(os.Stderr, "Healthy blink rate: %d-%d blinks per minute\n", blink.MinHealthyRate, blink.MaxHealthyRate)
	fmt.Fprintln(os.Stderr, "• Look at the camera  • Blink naturally  • Press Ctrl+C to quit")
	fmt.Fprintln(os.Stderr, "• Your data will be saved automatically")

	cloud := openCloud(ctx)
	if cloud != nil {
		defer cloud.Close()
	}
	recorder := store.NewRecorder(cloud, Archive, logger)

	now := time.Now()
	session := blink.NewSession(userName, now)
	if Archive != nil {
		if err := Archive.EnsureSession(ctx, session.ID, userName, now); err != nil {
			utils.ShowError("Failed to register session in archive", err, nil)
		}
	}

	fmt.Fprintln(os.Stderr, "🚀 Starting face-mesh engine...")
	mesh, err := landmark.NewMeshWorker(0)
	if err != nil {
		utils.ShowError("Face-mesh worker failed to start", err, nil)
		return err
	}
	defer mesh.Close()

	ffmpeg := capture.NewCameraCmd(ctx, opts.Device)
	ffmpegOut, err := ffmpeg.StdoutPipe()
	if err != nil {
		utils.ShowError("Failed to create FFmpeg stdout pipe", err, nil)
		return err
	}
	defer ffmpegOut.Close()

	if err := ffmpeg.Start(); err != nil {
		utils.ShowError("Failed to start FFmpeg camera capture", err, nil)
		return err
	}

	scanner := bufio.NewScanner(ffmpegOut)
	scanner.Buffer(make([]byte, megabyte), 64*megabyte)
	scanner.Split(capture.SplitJpeg)

	reducer := blink.NewReducer()
	panel := dashboard.New(os.Stderr, userName)

	for scanner.Scan() {
		if ctx.Err() != nil {
			break
		}

		frame, err := mesh.ProcessFrame(scanner.Bytes())
		if err != nil {
			mesh.Close()
			utils.ShowError("Face-mesh worker crashed", err, mesh.Cmd)
			return err
		}

		var ratio float64
		faceVisible := frame != nil
		if faceVisible {
			ratio, err = reducer.Reduce(frame)
			if err != nil {
				utils.ShowError("Landmark geometry violated reducer preconditions", err, nil)
				return err
			}
		}

		res := session.Update(ratio, faceVisible, time.Now())
		if res.Record != nil {
			recorder.Save(ctx, res.Record)
		}
		panel.Render(res, faceVisible)
	}
	if err := scanner.Err(); err != nil && ctx.Err() == nil {
		utils.ShowError("Frame scanner failed", err, nil)
		return err
	}

	// Ctrl+C lands here: one final classification and record before exit.
	// The session context is already cancelled, so persistence gets its own.
	final := session.Finish(time.Now())
	recorder.Save(context.Background(), final)

	fmt.Fprintf(os.Stderr, "\n👋 Session ended for %s. Final stats: %d total blinks, %d blinks/min (%s)\n",
		userName, final.TotalBlinks, final.BlinksPerMinute, final.HealthStatus)
	return nil
}
