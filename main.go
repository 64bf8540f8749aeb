package main

import (
	"flag"
	"fmt"
	"log"
	"time"

	"github.com/Tutortoise/gerald-loader/batch"
	"github.com/Tutortoise/gerald-loader/config"
	"github.com/Tutortoise/gerald-loader/dataset"
	"github.com/Tutortoise/gerald-loader/frame"
	"github.com/Tutortoise/gerald-loader/labels"
	"github.com/Tutortoise/gerald-loader/models"
	"github.com/Tutortoise/gerald-loader/transforms"

	"github.com/disintegration/imaging"
	"github.com/google/uuid"
	"github.com/joho/godotenv"
	ort "github.com/yalue/onnxruntime_go"
)

func init() {
	log.SetFlags(log.LstdFlags | log.Lshortfile)
}

type cliOptions struct {
	dumpPath string
	onnxLib  string
	resize   bool
}

// parseFlags registers flags whose defaults come from cfg, so flags win over
// the environment.
func parseFlags(cfg *config.DatasetConfig) cliOptions {
	var opts cliOptions

	flag.StringVar(&cfg.Path, "path", cfg.Path, "GERALD dataset root")
	flag.StringVar(&cfg.Subset, "subset", cfg.Subset, "subset name (all, train, val, test, <weather>, <light>, val_<condition>)")
	flag.BoolVar(&cfg.Shuffle, "shuffle", cfg.Shuffle, "shuffle the file list with the fixed seed")
	flag.BoolVar(&cfg.RandomAugment, "augment", cfg.RandomAugment, "apply random augmentation")
	flag.IntVar(&cfg.ModelInputWidth, "width", cfg.ModelInputWidth, "model input width")
	flag.IntVar(&cfg.ModelInputHeight, "height", cfg.ModelInputHeight, "model input height")
	flag.Float64Var(&cfg.Split, "split", cfg.Split, "train fraction")
	flag.Float64Var(&cfg.Test, "test", cfg.Test, "test fraction")
	flag.IntVar(&cfg.BatchSize, "batch-size", cfg.BatchSize, "samples per batch")
	flag.Int64Var(&cfg.Seed, "seed", cfg.Seed, "shuffle and test draw seed")
	flag.BoolVar(&cfg.Debug, "debug", cfg.Debug, "log per-sample timings")

	flag.StringVar(&opts.dumpPath, "dump", "", "save the first sample as an image file")
	flag.StringVar(&opts.onnxLib, "onnx-lib", "", "ONNX Runtime shared library; exports the first batch as a model input tensor")
	flag.BoolVar(&opts.resize, "resize", true, "rescale samples to the model input size")
	flag.Parse()

	return opts
}

func main() {
	if err := godotenv.Load(); err != nil {
		log.Printf("No .env file loaded: %v", err)
	}

	cfg := config.NewDatasetConfig()
	cli := parseFlags(cfg)
	if err := cfg.Validate(); err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	runID := uuid.New().String()
	log.Printf("Run %s: loading %s subset from %s", runID, cfg.Subset, cfg.Path)
	start := time.Now()

	table, err := dataset.LoadTable(cfg.Path, dataset.TableOptions{Shuffle: cfg.Shuffle, Seed: cfg.Seed})
	if err != nil {
		log.Fatalf("Failed to load annotations: %v", err)
	}

	opts := dataset.Options{
		Subset:         cfg.Subset,
		RandomAugment:  cfg.RandomAugment,
		ModelInputSize: cfg.ModelInputSize(),
		Split:          cfg.Split,
		Test:           cfg.Test,
		Seed:           cfg.Seed,
		Debug:          cfg.Debug,
	}
	if cli.resize {
		opts.Transform = transforms.NewRescale(cfg.ModelInputWidth, cfg.ModelInputHeight)
	}

	ds, err := dataset.New(table, opts)
	if err != nil {
		log.Fatalf("Failed to create dataset: %v", err)
	}
	if ds.Len() == 0 {
		log.Println(MsgEmptySubset)
		return
	}

	collator := batch.NewCollator()
	first := batch.Indices(ds.Len(), cfg.BatchSize)[0]
	b, err := collator.Load(ds, first)
	if err != nil {
		log.Fatalf("Failed to collate batch: %v", err)
	}
	defer collator.Release(b)

	printBatch(ds, b)

	if cli.dumpPath != "" {
		if err := dumpSample(ds, first[0], cli.dumpPath); err != nil {
			log.Fatalf("Failed to dump sample: %v", err)
		}
		log.Printf(MsgSampleDumped, cli.dumpPath)
	}

	if cli.onnxLib != "" {
		if err := exportBatch(cli.onnxLib, b); err != nil {
			log.Fatalf("Failed to export batch: %v", err)
		}
	}

	log.Printf("Run %s finished in %v", runID, time.Since(start))
}

func printBatch(ds *dataset.Dataset, b *batch.Batch) {
	fmt.Printf("Subset %q: %d images, %d classes\n", ds.Subset(), ds.Len(), ds.NumClasses())
	fmt.Printf("Batch images: %v\n", b.Images.Shape())
	fmt.Printf("Batch indices: %v\n", b.Indices)

	if len(b.Targets) == 0 {
		fmt.Println(MsgNoTargets)
		return
	}
	fmt.Printf("%-5s %-16s %7s %7s %7s %7s\n", "slot", "label", "x_c", "y_c", "w", "h")
	for _, row := range b.Targets {
		fmt.Printf("%-5d %-16s %7.0f %7.0f %7.0f %7.0f\n",
			int(row[models.ColSlot]),
			labels.Label(row[models.ColLabel]),
			row[models.ColX], row[models.ColY], row[models.ColW], row[models.ColH])
	}
}

func dumpSample(ds *dataset.Dataset, i int, path string) error {
	s, err := ds.Get(i)
	if err != nil {
		return err
	}
	f, ok := s.Image.(*frame.Frame)
	if !ok {
		return fmt.Errorf("%w: %T", transforms.ErrUnsupportedImageType, s.Image)
	}
	return imaging.Save(f.NRGBA(), path)
}

func exportBatch(libPath string, b *batch.Batch) error {
	ort.SetSharedLibraryPath(libPath)
	if err := ort.InitializeEnvironment(); err != nil {
		return fmt.Errorf("initialize ONNX environment: %w", err)
	}
	defer ort.DestroyEnvironment()

	input, err := b.InputTensor()
	if err != nil {
		return err
	}
	defer input.Destroy()

	log.Printf("Exported batch as input tensor %v", input.GetShape())
	return nil
}
