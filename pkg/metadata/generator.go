package metadata

import (
	"bytes"
	"encoding/hex"
	"hash"
	"io"
	"time"

	"github.com/gabriel-vasile/mimetype"

	"github.com/marmos91/tulipfs/pkg/store"
)

// sniffLimit is how many leading bytes are kept for content type detection.
const sniffLimit = 3072

// Generator produces descriptors. It is pure apart from the injected clock
// and the hashing of content.
type Generator struct {
	clock             Clock
	digests           []string
	detectContentType bool
}

// GeneratorOption configures a Generator.
type GeneratorOption func(*Generator)

// WithClock sets the clock used for created_at and updated_at.
func WithClock(c Clock) GeneratorOption {
	return func(g *Generator) { g.clock = c }
}

// WithDigests adds digest algorithms computed next to sha256.
func WithDigests(algos ...string) GeneratorOption {
	return func(g *Generator) { g.digests = append(g.digests, algos...) }
}

// WithContentTypeDetection enables MIME sniffing of file content.
func WithContentTypeDetection(enabled bool) GeneratorOption {
	return func(g *Generator) { g.detectContentType = enabled }
}

// NewGenerator creates a Generator. It fails with ErrUnknownDigest when an
// unsupported digest algorithm is requested.
func NewGenerator(opts ...GeneratorOption) (*Generator, error) {
	g := &Generator{clock: SystemClock{}}
	for _, opt := range opts {
		opt(g)
	}

	digests, err := normalizeDigests(g.digests)
	if err != nil {
		return nil, err
	}
	g.digests = digests
	return g, nil
}

// Digests returns the algorithms stamped into file descriptors.
func (g *Generator) Digests() []string {
	return append([]string(nil), g.digests...)
}

// Now returns the generator clock's current time in UTC.
func (g *Generator) Now() time.Time {
	return g.clock.Now().UTC()
}

func (g *Generator) base(kind Kind, p string) *Descriptor {
	now := g.Now()
	return &Descriptor{
		Type:      kind,
		Path:      p,
		Name:      store.Base(p),
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// GenerateObject returns the descriptor of a directory-entity at p.
func (g *Generator) GenerateObject(p string) *Descriptor {
	return g.base(KindObject, p)
}

// GenerateFile returns the descriptor of a file-entity at p whose content is
// known.
func (g *Generator) GenerateFile(p string, content []byte) (*Descriptor, error) {
	return g.GenerateFileFromReader(p, bytes.NewReader(content))
}

// GenerateFileFromReader streams r through the configured digests and
// returns the descriptor of a file-entity at p.
func (g *Generator) GenerateFileFromReader(p string, r io.Reader) (*Descriptor, error) {
	hashes := make([]hash.Hash, len(g.digests))
	writers := make([]io.Writer, 0, len(g.digests)+1)
	for i, algo := range g.digests {
		hashes[i] = hashers[algo]()
		writers = append(writers, hashes[i])
	}

	var head *prefixBuffer
	if g.detectContentType {
		head = &prefixBuffer{limit: sniffLimit}
		writers = append(writers, head)
	}

	size, err := io.Copy(io.MultiWriter(writers...), r)
	if err != nil {
		return nil, err
	}

	d := g.base(KindFile, p)
	d.Size = size
	d.Digests = make(map[string]*string, len(g.digests))
	for i, algo := range g.digests {
		sum := hex.EncodeToString(hashes[i].Sum(nil))
		d.Digests[algo] = &sum
	}
	if head != nil {
		d.ContentType = mimetype.Detect(head.Bytes()).String()
	}
	return d, nil
}

// GeneratePlaceholderFile returns the descriptor of a file-entity at p whose
// content is unknown: size 0 and null digests.
func (g *Generator) GeneratePlaceholderFile(p string) *Descriptor {
	d := g.base(KindFile, p)
	d.Digests = make(map[string]*string, len(g.digests))
	for _, algo := range g.digests {
		d.Digests[algo] = nil
	}
	return d
}

// prefixBuffer keeps the first limit bytes written to it.
type prefixBuffer struct {
	bytes.Buffer
	limit int
}

func (b *prefixBuffer) Write(p []byte) (int, error) {
	if room := b.limit - b.Len(); room > 0 {
		if len(p) > room {
			b.Buffer.Write(p[:room])
		} else {
			b.Buffer.Write(p)
		}
	}
	return len(p), nil
}
