package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/akamensky/argparse"
	"github.com/chimpcam/chimpcam/pkg/nn"
	"github.com/chimpcam/chimpcam/pkg/nnload"
	"github.com/chimpcam/chimpcam/pkg/pipeline"
	"github.com/chimpcam/chimpcam/pkg/resultdb"
	"github.com/cyclopcam/logs"
)

func check(err error) {
	if err != nil {
		panic(err)
	}
}

func main() {
	parser := argparse.NewParser("chimpcam", "Identify chimpanzees in a directory of camera trap videos and images")
	input := parser.String("i", "input", &argparse.Options{Help: "Input directory of videos and images", Required: true})
	output := parser.String("o", "output", &argparse.Options{Help: "Output directory for crops, annotated frames and reports", Required: true})
	cascade := parser.String("f", "cascade", &argparse.Options{Help: "Path to face detection cascade file", Required: true})
	modelDir := parser.String("d", "modeldir", &argparse.Options{Help: "Directory containing the identity model", Required: true})
	modelName := parser.String("n", "model", &argparse.Options{Help: "Identity model name (stub of .param/.bin/.json/.classes)", Required: true})
	dbPath := parser.String("", "db", &argparse.Options{Help: "Sqlite file to record results in (empty disables)", Required: false, Default: ""})
	minConfidence := parser.Float("", "minconfidence", &argparse.Options{Help: "Minimum face detection confidence", Required: false, Default: 0.35})
	minFaceSize := parser.Int("m", "minsize", &argparse.Options{Help: "Minimum face size, in pixels", Required: false, Default: 20})
	frameStride := parser.Int("s", "stride", &argparse.Options{Help: "Analyze every Nth video frame", Required: false, Default: 10})
	window := parser.Int("w", "window", &argparse.Options{Help: "Identity estimate window, in analyzed frames", Required: false, Default: 30})
	writeVideo := parser.Flag("", "video", &argparse.Options{Help: "Re-encode videos with annotations", Required: false})
	verbose := parser.Flag("v", "verbose", &argparse.Options{Help: "Per-frame logging", Required: false})
	err := parser.Parse(os.Args)
	if err != nil {
		fmt.Print(parser.Usage(err))
		os.Exit(1)
	}

	logger, err := logs.NewLog()
	check(err)

	detector, err := nnload.LoadFaceDetector(logger, *cascade)
	check(err)
	classifier, err := nnload.LoadClassifier(logger, *modelDir, *modelName, nn.ThreadingModeParallel)
	check(err)

	cfg := pipeline.DefaultConfig()
	cfg.MinConfidence = float32(*minConfidence)
	cfg.MinFaceSizePx = *minFaceSize
	cfg.FrameStride = *frameStride
	cfg.WindowSize = *window
	cfg.OutputDir = *output
	cfg.SaveCrops = true
	cfg.SaveAnnotated = true
	cfg.WriteVideo = *writeVideo
	cfg.Verbose = *verbose

	pipe := pipeline.NewPipeline(logger, cfg, detector, classifier)
	defer pipe.Close()

	if *dbPath != "" {
		db, err := resultdb.Open(logger, *dbPath)
		check(err)
		pipe.Results = db
	}

	// SIGINT/SIGTERM abort the run between frames
	ctx, cancel := context.WithCancel(context.Background())
	signals := make(chan os.Signal, 1)
	signal.Notify(signals, os.Interrupt, syscall.SIGTERM)
	go func() {
		sig := <-signals
		logger.Infof("Received %v, stopping", sig)
		cancel()
	}()

	run, err := pipe.ProcessDirectory(ctx, *input)
	check(err)
	if len(run.Failures) != 0 {
		os.Exit(1)
	}
}
