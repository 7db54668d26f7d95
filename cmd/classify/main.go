// Command classify runs the trained model against a single image file and
// prints the result as JSON. With -stages it also writes a four-panel PNG of
// the preprocessing intermediates next to the prediction.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"image"
	"image/draw"
	"image/png"
	"log"
	"os"

	"go-fracture-classifier/internal/config"
	"go-fracture-classifier/internal/container"
	"go-fracture-classifier/internal/pipeline"
	"go-fracture-classifier/internal/preprocess"
	"go-fracture-classifier/internal/storage"
	"go-fracture-classifier/internal/texture"
)

func main() {
	modelDir := flag.String("model-dir", "", "artifact directory (overrides MODEL_DIR)")
	stagesPath := flag.String("stages", "", "write a four-panel PNG of the preprocessing stages to this path")
	flag.Parse()

	if flag.NArg() != 1 {
		fmt.Fprintf(os.Stderr, "usage: %s [flags] <image-path>\n", os.Args[0])
		flag.PrintDefaults()
		os.Exit(2)
	}
	imagePath := flag.Arg(0)

	cfg, err := config.LoadFromEnv()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	if *modelDir != "" {
		cfg.ModelDir = *modelDir
	}

	c, err := container.NewContainer(cfg)
	if err != nil {
		log.Fatalf("Failed to initialize container: %v", err)
	}

	ctx := context.Background()
	model, err := pipeline.LoadTrainedModel(ctx, c.ModelStore())
	if err != nil {
		log.Fatalf("Failed to load trained model (run the train command first): %v", err)
	}

	// Local files, not URLs, so build an inference pipeline over the file
	// fetcher instead of the container's HTTP one.
	inference := pipeline.NewInferencePipeline(
		storage.NewFileImageFetcher(),
		preprocess.NewPreprocessor(cfg.ImageSize),
		texture.NewExtractor(),
	)

	result, stages, err := inference.ClassifyRef(ctx, imagePath, model)
	if err != nil {
		log.Fatalf("Classification failed: %v", err)
	}

	if *stagesPath != "" {
		if err := writeStagePanel(*stagesPath, stages); err != nil {
			log.Fatalf("Failed to write stages image: %v", err)
		}
	}

	out, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		log.Fatalf("Failed to encode result: %v", err)
	}
	fmt.Println(string(out))
}

// writeStagePanel renders the four preprocessing stages side by side in the
// order the chain computes them.
func writeStagePanel(path string, stages *preprocess.Stages) error {
	panels := []image.Image{stages.Original, stages.Gray, stages.Smoothed, stages.Edges}

	size := stages.Edges.Bounds().Dx()
	panel := image.NewRGBA(image.Rect(0, 0, size*len(panels), size))
	for i, img := range panels {
		dst := image.Rect(i*size, 0, (i+1)*size, size)
		draw.Draw(panel, dst, img, img.Bounds().Min, draw.Src)
	}

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return png.Encode(f, panel)
}
