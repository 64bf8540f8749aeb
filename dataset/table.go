package dataset

import (
	"log"
	"math/rand"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/Tutortoise/gerald-loader/models"

	"github.com/pkg/errors"
)

// Table is the full, ordered list of annotations under a dataset root.
// It is built once and shared read-only between datasets.
type Table struct {
	Root        string
	Stems       []string
	Annotations []*models.Annotation

	loader *Loader
}

// TableOptions controls how the file list is ordered.
type TableOptions struct {
	Shuffle bool
	Seed    int64
}

// LoadTable reads info.json, lists the annotation files in lexicographic
// order, optionally shuffles them with a fixed seed and parses every
// annotation.
func LoadTable(root string, opts TableOptions) (*Table, error) {
	start := time.Now()

	info, err := LoadInfo(filepath.Join(root, InfoFile))
	if err != nil {
		return nil, err
	}

	stems, err := ListStems(filepath.Join(root, AnnotationsDir))
	if err != nil {
		return nil, err
	}
	if opts.Shuffle {
		ShuffleStems(stems, opts.Seed)
	}

	loader := NewLoader(root, info)
	log.Printf("Importing %d XML annotations from %s", len(stems), root)

	annotations := make([]*models.Annotation, len(stems))
	for i, stem := range stems {
		an, err := loader.Load(stem)
		if err != nil {
			return nil, err
		}
		annotations[i] = an

		if (i+1)%loadLogInterval == 0 {
			log.Printf("Imported %d/%d annotations", i+1, len(stems))
		}
	}

	log.Printf("Imported %d annotations in %v (%d objects skipped)", len(stems), time.Since(start), loader.SkippedObjects())

	return &Table{
		Root:        root,
		Stems:       stems,
		Annotations: annotations,
		loader:      loader,
	}, nil
}

// Len is the number of images in the table.
func (t *Table) Len() int {
	return len(t.Stems)
}

// Loader gives access to the parser the table was built with, for
// per-sample re-parsing.
func (t *Table) Loader() *Loader {
	return t.loader
}

// ListStems returns the sorted file names in dir with their extensions
// stripped.
func ListStems(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, errors.Wrap(err, "list annotations")
	}

	names := make([]string, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		names = append(names, e.Name())
	}
	sort.Strings(names)

	stems := make([]string, len(names))
	for i, name := range names {
		stems[i] = strings.TrimSuffix(name, filepath.Ext(name))
	}
	return stems, nil
}

// ShuffleStems permutes stems in place. The same seed always gives the
// same order.
func ShuffleStems(stems []string, seed int64) {
	rng := rand.New(rand.NewSource(seed))
	rng.Shuffle(len(stems), func(i, j int) {
		stems[i], stems[j] = stems[j], stems[i]
	})
}
