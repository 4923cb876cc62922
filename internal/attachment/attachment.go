// Package attachment maps user-selected files to display metadata and
// an ephemeral, process-local display reference. References resolve
// only for the lifetime of the process and are released when the last
// message showing them is destroyed.
package attachment

import (
	"mime"
	"net/http"
	"os"
	"os/user"
	"path/filepath"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/pkg/errors"
)

const displayRefScheme = "mem://"

// File is a user-selected file: the binary content alongside the
// metadata the generation collaborator needs.
type File struct {
	Name      string
	MediaType string
	Content   []byte
}

// Descriptor is the display-only view of an attachment. DisplayRef is
// an ephemeral locator resolvable through the Registry that built it;
// it is never persisted.
type Descriptor struct {
	Name       string
	MediaType  string
	DisplayRef string
}

// Load reads the files at the given paths. Media types are detected
// from the extension, falling back to content sniffing.
func Load(paths []string) ([]*File, error) {
	files := make([]*File, 0, len(paths))
	for _, path := range paths {
		expanded, err := expandPath(path)
		if err != nil {
			return nil, errors.Wrap(err, "expanding path")
		}
		content, err := os.ReadFile(expanded)
		if err != nil {
			return nil, errors.Wrap(err, "reading file")
		}
		mediaType := mime.TypeByExtension(filepath.Ext(expanded))
		if mediaType == "" {
			mediaType = http.DetectContentType(content)
		}
		files = append(files, &File{
			Name:      filepath.Base(expanded),
			MediaType: mediaType,
			Content:   content,
		})
	}
	return files, nil
}

// Registry hands out display references for attachments and resolves
// them back to their content while they are alive.
type Registry struct {
	mu    sync.Mutex
	blobs map[string]*File
}

// NewRegistry instantiates and returns a new registry.
func NewRegistry() *Registry {
	return &Registry{blobs: map[string]*File{}}
}

// Build maps files to descriptors one-to-one, preserving order. It
// never fails: a nil file yields a descriptor with an empty display
// reference rather than an error.
func (r *Registry) Build(files []*File) []*Descriptor {
	r.mu.Lock()
	defer r.mu.Unlock()
	descriptors := make([]*Descriptor, 0, len(files))
	for _, file := range files {
		if file == nil {
			descriptors = append(descriptors, &Descriptor{})
			continue
		}
		ref := displayRefScheme + uuid.New().String()
		r.blobs[ref] = file
		descriptors = append(descriptors, &Descriptor{
			Name:       file.Name,
			MediaType:  file.MediaType,
			DisplayRef: ref,
		})
	}
	return descriptors
}

// Resolve returns the file behind a display reference, if it is still
// alive.
func (r *Registry) Resolve(ref string) (*File, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	file, ok := r.blobs[ref]
	return file, ok
}

// Release frees the given display references.
func (r *Registry) Release(refs ...string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, ref := range refs {
		delete(r.blobs, ref)
	}
}

// Live returns the set of display references currently resolvable.
func (r *Registry) Live() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	refs := make([]string, 0, len(r.blobs))
	for ref := range r.blobs {
		refs = append(refs, ref)
	}
	return refs
}

// expandPath escapes a leading `~`.
func expandPath(path string) (string, error) {
	if !strings.HasPrefix(path, "~") {
		return path, nil
	}
	usr, err := user.Current()
	if err != nil {
		return "", errors.Wrap(err, "getting current user")
	}
	return filepath.Join(usr.HomeDir, path[1:]), nil
}
