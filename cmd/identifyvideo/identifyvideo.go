package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/akamensky/argparse"
	"github.com/chimpcam/chimpcam/pkg/nn"
	"github.com/chimpcam/chimpcam/pkg/nnload"
	"github.com/chimpcam/chimpcam/pkg/pipeline"
	"github.com/cyclopcam/logs"
)

func check(err error) {
	if err != nil {
		panic(err)
	}
}

func main() {
	parser := argparse.NewParser("identifyvideo", "Identify the chimpanzees in one video, and write the per-frame labels as JSON")
	input := parser.String("i", "input", &argparse.Options{Help: "Input video file", Required: true})
	output := parser.File("o", "output", os.O_RDWR|os.O_CREATE|os.O_TRUNC, 0664, &argparse.Options{Help: "Output label file", Required: true})
	cascade := parser.String("f", "cascade", &argparse.Options{Help: "Path to face detection cascade file", Required: true})
	modelDir := parser.String("d", "modeldir", &argparse.Options{Help: "Directory containing the identity model", Required: true})
	modelName := parser.String("n", "model", &argparse.Options{Help: "Identity model name (stub of .param/.bin/.json/.classes)", Required: true})
	minFaceSize := parser.Int("m", "minsize", &argparse.Options{Help: "Minimum face size, in pixels", Required: false, Default: 20})
	frameStride := parser.Int("s", "stride", &argparse.Options{Help: "Analyze every Nth frame", Required: false, Default: 10})
	window := parser.Int("w", "window", &argparse.Options{Help: "Identity estimate window, in analyzed frames", Required: false, Default: 30})
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
	cfg.MinFaceSizePx = *minFaceSize
	cfg.FrameStride = *frameStride
	cfg.WindowSize = *window

	pipe := pipeline.NewPipeline(logger, cfg, detector, classifier)
	defer pipe.Close()

	result, err := pipe.ProcessVideo(context.Background(), *input)
	check(err)

	encoder := json.NewEncoder(output)
	encoder.SetIndent("", "  ")
	err = encoder.Encode(result.Labels)
	check(err)
}
