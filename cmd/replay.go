package cmd

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"time"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"github.com/davzula/blinkwatch/internal/blink"
	"github.com/davzula/blinkwatch/internal/capture"
	"github.com/davzula/blinkwatch/internal/landmark"
	"github.com/davzula/blinkwatch/internal/store"
	"github.com/davzula/blinkwatch/internal/utils"
)

var replayOpts Options

var replayCmd = &cobra.Command{
	Use:   "replay <video_path>",
	Short: "Run a blink analysis over a recorded clip",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cmd.SilenceUsage = true
		replayOpts.InputPath = args[0]
		return runReplay(cmd.Context(), replayOpts)
	},
}

func init() {
	replayCmd.Flags().StringVarP(&replayOpts.UserName, "user", "u", "", "Name to attach to saved records")
	rootCmd.AddCommand(replayCmd)
}

// runReplay drives the same reducer and state machine as a live session,
// but the clock is simulated from the clip's frame rate so a 5-minute
// recording produces the same records it would have produced live.
func runReplay(ctx context.Context, opts Options) error {
	info, err := os.Stat(opts.InputPath)
	if err != nil {
		utils.ShowError("Unable to access input file", err, nil)
		return err
	}
	if info.IsDir() {
		err := fmt.Errorf("%s is a directory, expected a video file", opts.InputPath)
		utils.ShowError("Invalid input path", err, nil)
		return err
	}

	userName := resolveUserName(opts.UserName)

	fps, err := capture.VideoFPS(opts.InputPath)
	if err != nil {
		utils.ShowError("Failed to determine video FPS", err, nil)
		return err
	}

	totalFrames := capture.TotalFrames(opts.InputPath)
	if totalFrames <= 0 {
		// Fallback to a spinner if ffprobe can't count
		totalFrames = -1
	}
	bar := progressbar.NewOptions(totalFrames,
		progressbar.OptionSetDescription("👁  Analyzing blinks"),
		progressbar.OptionSetWriter(os.Stderr),
		progressbar.OptionShowCount(),
	)

	cloud := openCloud(ctx)
	if cloud != nil {
		defer cloud.Close()
	}
	recorder := store.NewRecorder(cloud, Archive, logger)

	start := time.Now()
	session := blink.NewSession(userName, start)
	if Archive != nil {
		if err := Archive.EnsureSession(ctx, session.ID, userName, start); err != nil {
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

	ffmpeg := capture.NewFileCmd(ctx, opts.InputPath)
	ffmpegOut, err := ffmpeg.StdoutPipe()
	if err != nil {
		utils.ShowError("Failed to create FFmpeg stdout pipe", err, nil)
		return err
	}
	defer ffmpegOut.Close()

	if err := ffmpeg.Start(); err != nil {
		utils.ShowError("Failed to start FFmpeg", err, nil)
		return err
	}

	scanner := bufio.NewScanner(ffmpegOut)
	scanner.Buffer(make([]byte, megabyte), 64*megabyte)
	scanner.Split(capture.SplitJpeg)

	reducer := blink.NewReducer()
	frameIdx := 0
	missedFrames := 0

	for scanner.Scan() {
		if ctx.Err() != nil {
			break
		}
		bar.Add(1)

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
		} else {
			missedFrames++
		}

		// Simulated clock: frame N happens N/fps seconds into the session
		now := start.Add(time.Duration(float64(frameIdx) / fps * float64(time.Second)))
		res := session.Update(ratio, faceVisible, now)
		if res.Record != nil {
			recorder.Save(ctx, res.Record)
		}
		frameIdx++
	}
	if err := scanner.Err(); err != nil {
		utils.ShowError("Frame scanner failed", err, nil)
		return err
	}
	if err := ffmpeg.Wait(); err != nil && ctx.Err() == nil {
		utils.ShowError("FFmpeg execution failed", err, nil)
		return err
	}
	bar.Finish()

	end := start.Add(time.Duration(float64(frameIdx) / fps * float64(time.Second)))
	final := session.Finish(end)
	recorder.Save(context.Background(), final)

	fmt.Fprintf(os.Stderr, "\n🏁 Analysis complete: %d frames (%d without a visible face).\n", frameIdx, missedFrames)
	fmt.Fprintf(os.Stderr, "📊 %s: %d total blinks, %d blinks/min - %s\n",
		userName, final.TotalBlinks, final.BlinksPerMinute, final.HealthStatus)
	return nil
}
