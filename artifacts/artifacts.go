// Package artifacts writes the files an action run leaves behind, most
// notably the aggregated scan result. The writer in use travels in the
// context so that any step can reach it.
package artifacts

import (
	"context"
	"io"
)

// ResultFilename is the fixed name of the aggregated scan result.
const ResultFilename = "result.txt"

// TempDirPrefix prefixes the per-run artifacts directory.
const TempDirPrefix = "docker-scout-action-"

// ContextWithWriter adds ArtifactWriter w to the context ctx.
func ContextWithWriter(ctx context.Context, w ArtifactWriter) context.Context {
	return context.WithValue(ctx, artifactWriterContextKey, w)
}

// WriterFromContext returns the writer from the context, or nil.
func WriterFromContext(ctx context.Context) ArtifactWriter {
	w := ctx.Value(artifactWriterContextKey)
	if writer, ok := w.(ArtifactWriter); ok {
		return writer
	}

	return nil
}

type contextKey string

const artifactWriterContextKey contextKey = "ArtifactWriter"

// ArtifactWriter is the functionality required by all implementations.
type ArtifactWriter interface {
	// WriteFile creates or truncates filename with contents.
	WriteFile(filename string, contents io.Reader) (fullpathToFile string, err error)
	// AppendFile adds contents to the end of filename, creating it if needed.
	AppendFile(filename string, contents io.Reader) (fullpathToFile string, err error)
	// Path is the directory files are written into.
	Path() string
}
