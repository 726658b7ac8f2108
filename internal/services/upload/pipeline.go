// Package upload validates, stores, and reports on batches of uploaded
// files, feeding successful uploads into the notification dispatcher.
package upload

import (
	"context"
	"fmt"
	"io"
	"log"
	"sync"

	"github.com/aylalah/ag-rms-sub000/internal/db/bunx"
	"github.com/aylalah/ag-rms-sub000/internal/services/notify"
	"github.com/aylalah/ag-rms-sub000/internal/telemetry"
)

// allowedMediaTypes is the fixed allow-list: images, PDF, zip/rar archives,
// CSV, and Office documents.
var allowedMediaTypes = map[string]bool{
	"image/png":          true,
	"image/jpeg":         true,
	"image/gif":          true,
	"image/webp":         true,
	"application/pdf":    true,
	"application/zip":    true,
	"application/x-rar-compressed": true,
	"application/vnd.rar":          true,
	"text/csv":                     true,
	"application/msword":           true,
	"application/vnd.ms-excel":     true,
	"application/vnd.ms-powerpoint": true,
	"application/vnd.openxmlformats-officedocument.wordprocessingml.document":   true,
	"application/vnd.openxmlformats-officedocument.spreadsheetml.sheet":         true,
	"application/vnd.openxmlformats-officedocument.presentationml.presentation": true,
}

// MediaTypeAllowed reports whether a declared media type passes the allow-list.
func MediaTypeAllowed(mediaType string) bool {
	return allowedMediaTypes[mediaType]
}

// File is one entry in an upload batch, keyed by a caller-chosen key.
type File struct {
	Key       string
	Name      string
	MediaType string
	Size      int64
	Body      io.Reader
}

// Outcome is the per-file result handed back to the caller so it can
// reconcile upload status and persist the stored subset in a follow-up
// update. Accepted=false means the allow-list rejected the file and no
// storage write was attempted; Accepted=true with an empty StoredURL means
// the storage write itself failed.
type Outcome struct {
	Key       string `json:"key"`
	Name      string `json:"name"`
	Accepted  bool   `json:"accepted"`
	StoredURL string `json:"storedUrl,omitempty"`
	Error     string `json:"error,omitempty"`
}

// Pipeline pushes accepted files to object storage and feeds the
// notification dispatcher with the files that actually made it.
type Pipeline struct {
	storage    ObjectStorage
	dispatcher *notify.Dispatcher
}

// NewPipeline creates a new upload pipeline
func NewPipeline(storage ObjectStorage, dispatcher *notify.Dispatcher) *Pipeline {
	return &Pipeline{storage: storage, dispatcher: dispatcher}
}

// Submit processes one batch. Accepted files are written to object storage
// concurrently; one slow or failing file never blocks its siblings, and the
// call returns only after every outcome has settled. Outcomes preserve the
// batch order. After the join, the successfully stored file names go to the
// dispatcher keyed by the primary recipient.
func (p *Pipeline) Submit(ctx context.Context, files []File, recipient notify.Recipient) []Outcome {
	outcomes := make([]Outcome, len(files))

	var wg sync.WaitGroup
	for i, f := range files {
		outcomes[i] = Outcome{Key: f.Key, Name: f.Name}

		if !MediaTypeAllowed(f.MediaType) {
			outcomes[i].Error = fmt.Sprintf("media type %q is not allowed", f.MediaType)
			telemetry.UploadFilesTotal.WithLabelValues("rejected").Inc()
			continue
		}
		outcomes[i].Accepted = true

		wg.Add(1)
		go func(i int, f File) {
			defer wg.Done()
			url, err := p.storage.Store(ctx, storageKey(f), f.MediaType, f.Body)
			if err != nil {
				log.Printf("upload: failed to store %s: %v", f.Name, err)
				outcomes[i].Error = "storage write failed"
				telemetry.UploadFilesTotal.WithLabelValues("failed").Inc()
				return
			}
			outcomes[i].StoredURL = url
			telemetry.UploadFilesTotal.WithLabelValues("stored").Inc()
		}(i, f)
	}
	wg.Wait()

	var stored []string
	for _, o := range outcomes {
		if o.Accepted && o.StoredURL != "" {
			stored = append(stored, o.Name)
		}
	}
	if len(stored) > 0 && p.dispatcher != nil {
		p.dispatcher.Notify(recipient, stored)
	}

	return outcomes
}

// storageKey namespaces object keys with a fresh UUID so same-named files
// from different batches never collide.
func storageKey(f File) string {
	return bunx.NewUUIDv7() + "-" + f.Name
}
