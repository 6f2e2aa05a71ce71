package archive

import (
	"context"
	"os"
	"path/filepath"

	"github.com/m-mizutani/goerr/v2"
	"github.com/pergamene/pergamene/pkg/domain/interfaces"
	"github.com/pergamene/pergamene/pkg/utils/fsutil"
)

// Directory stores archives in a local or mounted directory
type Directory struct {
	dir string
}

var _ interfaces.ArchiveDestination = (*Directory)(nil)

// NewDirectory creates a destination for dir
func NewDirectory(dir string) *Directory {
	return &Directory{dir: dir}
}

func (d *Directory) Name() string {
	return d.dir
}

func (d *Directory) Store(ctx context.Context, path, name string) error {
	if err := os.MkdirAll(d.dir, 0755); err != nil {
		return goerr.Wrap(err, "failed to create archive directory", goerr.V("dir", d.dir))
	}
	if err := fsutil.CopyFile(path, filepath.Join(d.dir, name)); err != nil {
		return goerr.Wrap(err, "failed to copy archive", goerr.V("dir", d.dir))
	}
	return nil
}
