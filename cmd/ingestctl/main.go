package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"
	"weokto/course-app/internal/domain"
	"weokto/course-app/internal/ingest"
)

// ingestctl uploads a local video, waits for the remote transcode and
// creates the lesson record in one go:
//
//	ingestctl -server http://localhost:8080 -token $JWT \
//	    -module 66b2... -file intro.mp4 -title "Intro Module" -free
func main() {
	var (
		serverURL   = flag.String("server", "http://localhost:8080", "course platform base URL")
		token       = flag.String("token", os.Getenv("COURSE_APP_TOKEN"), "supplier JWT (defaults to COURSE_APP_TOKEN)")
		moduleID    = flag.String("module", "", "course module ID to attach the lesson to")
		filePath    = flag.String("file", "", "path to the video file")
		title       = flag.String("title", "", "lesson title (defaults to the file name)")
		description = flag.String("desc", "", "lesson description")
		isFree      = flag.Bool("free", false, "mark the lesson as a free preview")
		interval    = flag.Duration("poll-interval", ingest.DefaultPollPolicy.Interval, "initial status poll interval")
		maxAttempts = flag.Int("poll-attempts", ingest.DefaultPollPolicy.MaxAttempts, "status polls before giving up")
	)
	flag.Parse()

	if *filePath == "" || *moduleID == "" {
		fmt.Fprintln(os.Stderr, "both -file and -module are required")
		flag.Usage()
		os.Exit(2)
	}
	if *token == "" {
		fmt.Fprintln(os.Stderr, "no token: pass -token or set COURSE_APP_TOKEN")
		os.Exit(2)
	}

	// Ctrl-C cancels the workflow, aborting an in-flight upload cleanly.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	asset, err := ingest.SelectFile(*filePath)
	if err != nil {
		log.Fatalf("FATAL: %v", err)
	}
	defer asset.Close()

	policy := ingest.DefaultPollPolicy
	policy.Interval = *interval
	policy.MaxAttempts = *maxAttempts

	client := ingest.NewClient(*serverURL, *token)
	workflow := ingest.NewWorkflow(client, policy, ingest.Events{
		UploadProgress: func(percent int) {
			fmt.Printf("\ruploading %s: %3d%%", asset.FileName, percent)
			if percent == 100 {
				fmt.Println()
			}
		},
		StatusChanged: func(status domain.AssetStatus) {
			fmt.Printf("remote status: %s\n", status)
		},
	})

	draft := ingest.LessonDraft{
		Title:       *title,
		Description: *description,
		IsFree:      *isFree,
	}

	started := time.Now()
	lesson, remote, err := workflow.Run(ctx, asset, *moduleID, draft)
	if err != nil {
		switch {
		case errors.Is(err, ingest.ErrSizeExceeded), errors.Is(err, ingest.ErrUnsupportedFormat):
			log.Fatalf("FATAL: file rejected: %v", err)
		case errors.Is(err, ingest.ErrProcessingTimeout):
			log.Fatalf("FATAL: %v (remote asset %s may still finish later)", err, remote.RemoteAssetID)
		case errors.Is(err, ingest.ErrLessonRejected):
			// The upload and transcode are done; only the metadata was
			// refused. Point at the asset so the user can resubmit.
			log.Fatalf("FATAL: %v (fix the draft and resubmit against asset %s)", err, remote.RemoteAssetID)
		default:
			log.Fatalf("FATAL: %v", err)
		}
	}

	fmt.Printf("lesson %q created (id %s, position %d) in %s\n",
		lesson.Title, lesson.ID, lesson.Position, time.Since(started).Round(time.Second))
}
