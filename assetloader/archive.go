package assetloader

import (
	"archive/tar"
	"archive/zip"
	"compress/gzip"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/bodgit/sevenzip"
	"github.com/nwaples/rardecode/v2"
)

// openedFile is the member interface shared by zip and sevenzip.
type openedFile interface {
	FileInfo() os.FileInfo
	Open() (io.ReadCloser, error)
}

func visitOpened(name string, f openedFile, visit memberFunc) (bool, error) {
	if f.FileInfo().IsDir() {
		return false, nil
	}
	rc, err := f.Open()
	if err != nil {
		return true, fmt.Errorf("failed to open %s in archive: %w", name, err)
	}
	defer rc.Close()
	return visit(name, rc)
}

func walkZIP(path string, visit memberFunc) error {
	r, err := zip.OpenReader(path)
	if err != nil {
		return fmt.Errorf("failed to open zip: %w", err)
	}
	defer r.Close()

	for _, f := range r.File {
		done, err := visitOpened(f.Name, f, visit)
		if err != nil || done {
			return err
		}
	}
	return nil
}

func walk7z(path string, visit memberFunc) error {
	r, err := sevenzip.OpenReader(path)
	if err != nil {
		return fmt.Errorf("failed to open 7z: %w", err)
	}
	defer r.Close()

	for _, f := range r.File {
		done, err := visitOpened(f.Name, f, visit)
		if err != nil || done {
			return err
		}
	}
	return nil
}

func walkRAR(path string, visit memberFunc) error {
	r, err := rardecode.OpenReader(path)
	if err != nil {
		return fmt.Errorf("failed to open rar: %w", err)
	}
	defer r.Close()

	for {
		header, err := r.Next()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return fmt.Errorf("failed to read rar entry: %w", err)
		}
		if header.IsDir {
			continue
		}
		if done, err := visit(header.Name, r); err != nil || done {
			return err
		}
	}
}

// walkGzip treats a tarball as an archive and a plain .gz as a single
// member named after the file without its .gz suffix.
func walkGzip(path string, visit memberFunc) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("failed to open gzip: %w", err)
	}
	defer f.Close()

	gr, err := gzip.NewReader(f)
	if err != nil {
		return fmt.Errorf("failed to create gzip reader: %w", err)
	}
	defer gr.Close()

	lower := strings.ToLower(path)
	if strings.HasSuffix(lower, ".tar.gz") || strings.HasSuffix(lower, ".tgz") {
		return walkTar(gr, visit)
	}

	name := filepath.Base(path)
	if strings.HasSuffix(strings.ToLower(name), ".gz") {
		name = name[:len(name)-3]
	}
	_, err = visit(name, gr)
	return err
}

func walkTar(r io.Reader, visit memberFunc) error {
	tr := tar.NewReader(r)
	for {
		header, err := tr.Next()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return fmt.Errorf("failed to read tar entry: %w", err)
		}
		if header.Typeflag != tar.TypeReg {
			continue
		}
		if done, err := visit(header.Name, tr); err != nil || done {
			return err
		}
	}
}
