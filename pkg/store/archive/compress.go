package archive

import (
	"bufio"
	"bytes"
	"compress/bzip2"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/klauspost/compress/zstd"
	gzip "github.com/klauspost/pgzip"
	"github.com/pierrec/lz4/v4"
	"github.com/ulikunitz/xz"
)

// Compression identifies the codec wrapping a tar stream.
type Compression string

const (
	Auto  Compression = "auto"
	None  Compression = "none"
	Gzip  Compression = "gzip"
	Bzip2 Compression = "bzip2"
	Xz    Compression = "xz"
	Zstd  Compression = "zstd"
	Lz4   Compression = "lz4"
)

// ParseCompression maps a name to a Compression. Unknown names are an error;
// the empty string means Auto.
func ParseCompression(v string) (Compression, error) {
	switch strings.ToLower(v) {
	case "", "auto":
		return Auto, nil
	case "none", "tar":
		return None, nil
	case "gzip", "gz":
		return Gzip, nil
	case "bzip2", "bz2":
		return Bzip2, nil
	case "xz":
		return Xz, nil
	case "zstd", "zst":
		return Zstd, nil
	case "lz4":
		return Lz4, nil
	default:
		return "", fmt.Errorf("unsupported compression %q", v)
	}
}

// FromExtension guesses the compression from a file name, returning Auto
// when the extension is not recognized.
func FromExtension(name string) Compression {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".gz", ".tgz":
		return Gzip
	case ".bz2", ".tbz2", ".tbz":
		return Bzip2
	case ".xz", ".txz":
		return Xz
	case ".zst", ".tzst", ".zstd":
		return Zstd
	case ".lz4":
		return Lz4
	case ".tar":
		return None
	default:
		return Auto
	}
}

func detectByMagic(magic []byte) Compression {
	switch {
	case bytes.HasPrefix(magic, []byte{0x1f, 0x8b}):
		return Gzip
	case bytes.HasPrefix(magic, []byte{'B', 'Z', 'h'}):
		return Bzip2
	case bytes.HasPrefix(magic, []byte{0xfd, '7', 'z', 'X', 'Z', 0x00}):
		return Xz
	case bytes.HasPrefix(magic, []byte{0x28, 0xb5, 0x2f, 0xfd}):
		return Zstd
	case bytes.HasPrefix(magic, []byte{0x04, 0x22, 0x4d, 0x18}):
		return Lz4
	default:
		return Auto
	}
}

// newReader wraps src in the decompressor for c. With Auto the codec is
// sniffed from the magic bytes, then from the hint's extension, and
// defaults to None.
func newReader(src io.Reader, c Compression, hint string) (io.ReadCloser, Compression, error) {
	br := bufio.NewReader(src)

	if c == Auto {
		magic, _ := br.Peek(8)
		c = detectByMagic(magic)
		if c == Auto {
			c = FromExtension(hint)
		}
		if c == Auto {
			c = None
		}
	}

	switch c {
	case None:
		return io.NopCloser(br), c, nil
	case Gzip:
		zr, err := gzip.NewReader(br)
		if err != nil {
			return nil, c, err
		}
		return zr, c, nil
	case Bzip2:
		return io.NopCloser(bzip2.NewReader(br)), c, nil
	case Xz:
		zr, err := xz.NewReader(br)
		if err != nil {
			return nil, c, err
		}
		return io.NopCloser(zr), c, nil
	case Zstd:
		zr, err := zstd.NewReader(br)
		if err != nil {
			return nil, c, err
		}
		return zr.IOReadCloser(), c, nil
	case Lz4:
		return io.NopCloser(lz4.NewReader(br)), c, nil
	default:
		return nil, c, fmt.Errorf("unsupported compression %q", c)
	}
}

// newWriter wraps dst in the compressor for c. Closing the returned writer
// flushes the codec but leaves dst open.
func newWriter(dst io.Writer, c Compression) (io.WriteCloser, error) {
	switch c {
	case Auto, None:
		return nopWriteCloser{dst}, nil
	case Gzip:
		return gzip.NewWriter(dst), nil
	case Xz:
		return xz.NewWriter(dst)
	case Zstd:
		return zstd.NewWriter(dst)
	case Lz4:
		return lz4.NewWriter(dst), nil
	case Bzip2:
		return nil, fmt.Errorf("bzip2 archives are read-only")
	default:
		return nil, fmt.Errorf("unsupported compression %q", c)
	}
}

type nopWriteCloser struct {
	io.Writer
}

func (nopWriteCloser) Close() error { return nil }
