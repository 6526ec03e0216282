package lib

import (
	"bytes"
	"io"

	"github.com/aclements/go-rabin/rabin"
	"github.com/opencontainers/go-digest"
)

// Constants for the Rabin chunker configuration.
const (
	minChunkSize = 4 * 1024  // 4KB
	avgChunkSize = 8 * 1024  // 8KB
	maxChunkSize = 16 * 1024 // 16KB

	// A 64-bit irreducible polynomial over GF(2).
	defaultPoly = rabin.Poly64
	// The size of the rolling hash window.
	defaultWindowSize = 64
)

// rabinTable is expensive to build, so it is shared.
var rabinTable = rabin.NewTable(defaultPoly, defaultWindowSize)

// Chunk is one content-defined slice of a stream.
type Chunk struct {
	Digest digest.Digest
	Size   int64
}

// ChunkStream reads r fully and splits it into variable-sized chunks using
// Rabin fingerprinting.
func ChunkStream(r io.Reader) ([]Chunk, error) {
	content, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	if len(content) == 0 {
		return []Chunk{}, nil
	}

	chunker := rabin.NewChunker(rabinTable, bytes.NewReader(content), minChunkSize, avgChunkSize, maxChunkSize)
	var chunks []Chunk
	var offset int
	for {
		length, err := chunker.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		data := content[offset : offset+length]
		offset += length
		chunks = append(chunks, Chunk{Digest: GetHash(data), Size: int64(length)})
	}

	// Streams shorter than the minimum chunk size may yield no chunk at all.
	if len(chunks) == 0 {
		chunks = append(chunks, Chunk{Digest: GetHash(content), Size: int64(len(content))})
	}
	return chunks, nil
}

// Similarity returns the fraction of next's bytes that fall in chunks also
// present in prev. An empty next is fully similar.
func Similarity(prev, next io.Reader) (float64, error) {
	prevChunks, err := ChunkStream(prev)
	if err != nil {
		return 0, err
	}
	known := make(map[digest.Digest]struct{}, len(prevChunks))
	for _, c := range prevChunks {
		known[c.Digest] = struct{}{}
	}

	nextChunks, err := ChunkStream(next)
	if err != nil {
		return 0, err
	}
	var total, reused int64
	for _, c := range nextChunks {
		total += c.Size
		if _, ok := known[c.Digest]; ok {
			reused += c.Size
		}
	}
	if total == 0 {
		return 1, nil
	}
	return float64(reused) / float64(total), nil
}
