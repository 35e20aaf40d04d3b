// Package store persists preset documents under folder/name keys.
//
// Three backends share one interface: file storage for the CLI, Redis for
// multi-instance deployments that want shared hot presets, and MongoDB for
// durable server-side libraries. Documents are stored as their verbatim wire
// JSON; the store never normalizes or re-validates what it holds, so a saved
// document reads back byte-for-byte.
package store

import (
	"context"
	"encoding/json"
	"time"

	"github.com/sandfall/strata/pkg/errors"
)

// Record is one stored preset document.
type Record struct {
	// ID uniquely identifies the record inside its backend. Backends that
	// key purely by folder/name leave it empty.
	ID string `json:"id,omitempty" bson:"_id,omitempty"`

	Folder string `json:"folder" bson:"folder"`
	Name   string `json:"name" bson:"name"`

	// Data is the preset's wire JSON, stored verbatim.
	Data json.RawMessage `json:"data" bson:"data"`

	UpdatedAt time.Time `json:"updatedAt" bson:"updatedAt"`
}

// Info identifies a stored preset without carrying its document.
type Info struct {
	Folder    string    `json:"folder"`
	Name      string    `json:"name"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Store is a preset library backend. Folder and name arguments must satisfy
// errors.ValidateFolderName and errors.ValidatePresetName; backends reject
// anything else before touching storage.
type Store interface {
	// List returns the presets in a folder, name-sorted. An empty folder
	// means DefaultFolder. A folder that does not exist lists as empty,
	// not as an error.
	List(ctx context.Context, folder string) ([]Info, error)

	// Load returns a stored preset or a PRESET_NOT_FOUND error.
	Load(ctx context.Context, folder, name string) (*Record, error)

	// Save stores a preset, replacing any existing document under the same
	// folder/name.
	Save(ctx context.Context, rec *Record) error

	// Delete removes a stored preset. Deleting a missing preset is a
	// PRESET_NOT_FOUND error.
	Delete(ctx context.Context, folder, name string) error

	// Close releases backend resources.
	Close() error
}

// DefaultFolder is where presets land when no folder is given.
const DefaultFolder = "default"

// normalizeFolder maps the empty folder to DefaultFolder.
func normalizeFolder(folder string) string {
	if folder == "" {
		return DefaultFolder
	}
	return folder
}

// checkKey validates the folder/name pair every operation receives.
func checkKey(folder, name string) error {
	if err := errors.ValidateFolderName(folder); err != nil {
		return err
	}
	return errors.ValidatePresetName(name)
}

func notFound(folder, name string) error {
	return errors.New(errors.ErrCodePresetNotFound, "preset %s/%s not found", folder, name)
}
