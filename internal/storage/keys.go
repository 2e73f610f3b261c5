package storage

import (
	"fmt"
	"io"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
)

const (
	localPrefix    = "project-documents"
	remotePrefix   = "documents"
	unassignedSlug = "unassigned"
)

// extension returns the lower-cased extension of filename, dot included, or "".
func extension(filename string) string {
	ext := strings.ToLower(filepath.Ext(filename))
	if ext == "." || strings.ContainsAny(ext, `/\ `) {
		return ""
	}
	return ext
}

// flatKey is the local layout: project-documents/{uuid}.{ext}.
func flatKey(filename string) string {
	return path.Join(localPrefix, uuid.NewString()+extension(filename))
}

// scopedKey is the remote layout: documents/{company}/{project}/{unixMillis}-{random}.{ext}.
func scopedKey(scope Scope, filename string, now time.Time) string {
	company := scope.CompanySlug
	if company == "" {
		company = unassignedSlug
	}
	project := scope.ProjectSlug
	if project == "" {
		project = unassignedSlug
	}
	random := strings.ReplaceAll(uuid.NewString(), "-", "")[:12]
	name := fmt.Sprintf("%d-%s%s", now.UnixMilli(), random, extension(filename))
	return path.Join(remotePrefix, company, project, name)
}

// countingReader records how many bytes were read through it.
type countingReader struct {
	r io.Reader
	n int64
}

func (c *countingReader) Read(p []byte) (int, error) {
	n, err := c.r.Read(p)
	c.n += int64(n)
	return n, err
}
