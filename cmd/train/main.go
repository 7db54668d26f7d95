// Command train runs the offline training job: it scans the labeled corpus,
// extracts texture features, fits the scaler and the voting ensemble,
// persists both artifacts and prints the evaluation report.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"go-fracture-classifier/internal/config"
	"go-fracture-classifier/internal/container"
)

func main() {
	corpusRoot := flag.String("corpus", "", "corpus root directory (overrides CORPUS_ROOT)")
	modelDir := flag.String("model-dir", "", "artifact output directory (overrides MODEL_DIR)")
	seed := flag.Int64("seed", -1, "random seed (overrides RANDOM_SEED)")
	flag.Parse()

	cfg, err := config.LoadFromEnv()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	if *corpusRoot != "" {
		cfg.CorpusRoot = *corpusRoot
	}
	if *modelDir != "" {
		cfg.ModelDir = *modelDir
	}
	if *seed >= 0 {
		cfg.Seed = *seed
	}

	c, err := container.NewContainer(cfg)
	if err != nil {
		log.Fatalf("Failed to initialize container: %v", err)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	p := c.TrainingPipeline()
	p.ShowProgress = true

	report, err := p.Run(ctx)
	if err != nil {
		log.Fatalf("Training failed: %v", err)
	}

	fmt.Fprintln(os.Stdout, report.String())
}
