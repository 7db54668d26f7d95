// Package corpus enumerates the labeled training images. The corpus layout
// is a root directory with one subfolder per label; every decodable file
// inside a label folder is a sample.
package corpus

import (
	"os"
	"path/filepath"
	"sort"

	"github.com/sirupsen/logrus"

	apperrors "go-fracture-classifier/internal/errors"
	"go-fracture-classifier/internal/logger"
	"go-fracture-classifier/pkg/models"
)

// Entry is one corpus file awaiting decoding.
type Entry struct {
	Path  string
	Label models.Label
}

// Loader lists corpus entries from a configured root.
type Loader struct {
	root      string
	labelDirs map[models.Label]string
}

// NewLoader creates a loader for the given root and label subfolder names.
func NewLoader(root, fracturedDir, notFracturedDir string) *Loader {
	return &Loader{
		root: root,
		labelDirs: map[models.Label]string{
			models.LabelFractured:    fracturedDir,
			models.LabelNotFractured: notFracturedDir,
		},
	}
}

// Scan walks both label folders and returns every candidate file in a
// deterministic order. A missing label folder is logged and contributes zero
// samples; dataset validation catches the empty class before training.
// Decoding is left to the caller, which skips undecodable files.
func (l *Loader) Scan() ([]Entry, error) {
	if _, err := os.Stat(l.root); err != nil {
		return nil, apperrors.NewValidationError("corpus root "+l.root+" is not accessible", err)
	}

	var entries []Entry
	counts := map[models.Label]int{}
	for _, label := range []models.Label{models.LabelFractured, models.LabelNotFractured} {
		dir := filepath.Join(l.root, l.labelDirs[label])
		files, err := os.ReadDir(dir)
		if err != nil {
			missing := apperrors.NewMissingLabelDirectoryError("label directory "+dir+" is missing", err)
			logger.WithError(missing).WithFields(logrus.Fields{
				"label":     label.String(),
				"directory": dir,
			}).Warn("Skipping absent label directory")
			continue
		}

		names := make([]string, 0, len(files))
		for _, f := range files {
			if !f.IsDir() {
				names = append(names, f.Name())
			}
		}
		sort.Strings(names)
		for _, name := range names {
			entries = append(entries, Entry{Path: filepath.Join(dir, name), Label: label})
			counts[label]++
		}
	}

	logger.WithFields(logrus.Fields{
		"total":         len(entries),
		"fractured":     counts[models.LabelFractured],
		"not_fractured": counts[models.LabelNotFractured],
	}).Info("Scanned corpus")
	return entries, nil
}
