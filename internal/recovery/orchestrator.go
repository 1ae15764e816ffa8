// Package recovery turns a surviving deleted inode into an output file: it
// writes a probe block, classifies it, applies include/exclude filters,
// and copies the rest of the file.
package recovery

import (
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/zap"
	"golang.org/x/xerrors"

	"github.com/bkdwt/xfs-undelete/internal/config"
	"github.com/bkdwt/xfs-undelete/xfs"
)

// Copier is the abstract byte-range copier an Orchestrator delegates all
// actual disk I/O to.
type Copier interface {
	// CopyBlocks reads count blocks starting at srcBlock from the source
	// image and writes them into dstPath at dstOffset, without
	// truncating bytes already present.
	CopyBlocks(dstPath string, srcBlock uint64, dstOffset int64, count uint32) error

	// ReadProbe reads up to len(buf) bytes starting at srcBlock, for
	// content-type sniffing.
	ReadProbe(srcBlock uint64, buf []byte) (int, error)
}

// Classifier is the abstract content-type classifier an Orchestrator
// consults to pick an extension for a recovered file.
type Classifier interface {
	Sniff(data []byte) string
	Extension(mediaType string) string
}

// httpClassifier adapts internal/classify's package functions to the
// Classifier interface.
type httpClassifier struct {
	sniff func([]byte) string
	ext   func(string) string
}

func (c httpClassifier) Sniff(data []byte) string   { return c.sniff(data) }
func (c httpClassifier) Extension(mt string) string { return c.ext(mt) }

// NewHTTPClassifier builds a Classifier backed by the given sniff and
// extension functions (internal/classify.Sniff and .Extension in
// production).
func NewHTTPClassifier(sniff func([]byte) string, ext func(string) string) Classifier {
	return httpClassifier{sniff: sniff, ext: ext}
}

// Orchestrator turns each surviving inode the scanner hands it into a
// recovered output file.
type Orchestrator struct {
	Copier     Copier
	Classifier Classifier
	Config     config.Config
	Log        *zap.Logger
	BlockSize  uint32
}

// probeBufferSize matches the content sniff window classify.Sniff uses.
const probeBufferSize = 512

// Recover writes out one surviving inode: a probe block, classification
// and filtering, then the remaining extents.
func (o *Orchestrator) Recover(inode xfs.RecoveredInode) error {
	if len(inode.Extents) == 0 {
		return xerrors.New("recover called with no extents")
	}

	path := o.outputPath(inode)

	first := inode.Extents[0]
	if err := o.Copier.CopyBlocks(path, first.AbsoluteBlock, 0, 1); err != nil {
		os.Remove(path)
		return nil // abandon silently rather than emit a partial file
	}

	probe := make([]byte, probeBufferSize)
	n, err := o.Copier.ReadProbe(first.AbsoluteBlock, probe)
	ext := ""
	if err == nil {
		mediaType := o.Classifier.Sniff(probe[:n])
		ext = o.Classifier.Extension(mediaType)
	}

	finalPath := path
	if ext != "" {
		finalPath = path + "." + ext
		if err := os.Rename(path, finalPath); err != nil {
			return xerrors.Errorf("failed to rename recovered file: %w", err)
		}
	}

	if !o.Config.Allows(ext) {
		os.Remove(finalPath)
		return nil
	}

	for _, e := range inode.Extents[1:] {
		dstOffset := int64(e.LogicalOffset) * int64(o.BlockSize)
		if err := o.Copier.CopyBlocks(finalPath, e.AbsoluteBlock, dstOffset, e.Count); err != nil {
			if o.Log != nil {
				o.Log.Warn("partial extent copy failed", zap.Uint64("inode", inode.Ino), zap.Error(err))
			}
		}
	}

	if o.Log != nil {
		o.Log.Info(fmt.Sprintf("Recovered file -> %s", finalPath))
	}
	return nil
}

// outputPath names a recovered file <out_dir>/<YYYY-MM-DD-HH:MM>_<inode>,
// using the inode's change time as the timestamp.
func (o *Orchestrator) outputPath(inode xfs.RecoveredInode) string {
	stamp := inode.Ctime.Format("2006-01-02-15:04")
	name := fmt.Sprintf("%s_%d", stamp, inode.Ino)
	return filepath.Join(o.Config.OutputDir, name)
}
