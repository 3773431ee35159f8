package file

import (
	"archive/zip"
	"fmt"
	"io"
	"path"
)

// Unpacker extracts the mscx document from a compressed mscz archive.
type Unpacker interface {
	Unpack(mscz io.ReaderAt, size int64) (io.ReadCloser, error)
}

// Converter turns a score in a foreign format into mscx.
type Converter interface {
	Convert(in io.Reader, format string) (io.ReadCloser, error)
}

// ZipUnpacker reads the first mscx file at the top level of an mscz archive.
type ZipUnpacker struct{}

// Unpack implements Unpacker.
func (ZipUnpacker) Unpack(mscz io.ReaderAt, size int64) (io.ReadCloser, error) {
	z, err := zip.NewReader(mscz, size)
	if err != nil {
		return nil, fmt.Errorf("could not open archive: %w", err)
	}
	for _, f := range z.File {
		if path.Dir(f.Name) != "." || path.Ext(f.Name) != ".mscx" {
			continue
		}
		return f.Open()
	}
	return nil, fmt.Errorf("archive contains no mscx file")
}
