package mutate

import (
	"errors"
	"slices"
	"strings"

	"weekboard/internal/model"
	"weekboard/internal/store"
)

type FileResult struct {
	File         model.File
	Changed      bool
	EventPayload map[string]any
}

// AttachFile appends f to the referenced entity's file list.
// A missing file id is filled with a fresh one.
// Callers are responsible for saving db and appending the file.attach event.
func AttachFile(db *store.DB, ref EntityRef, f model.File) (FileResult, error) {
	if db == nil {
		return FileResult{}, errors.New("nil db")
	}
	files, err := filesOf(db, ref)
	if err != nil {
		return FileResult{}, err
	}
	if strings.TrimSpace(string(f.ID)) == "" || slices.ContainsFunc(*files, func(x model.File) bool { return x.ID == f.ID }) {
		f.ID = store.NewFileID()
	}
	*files = append(*files, f)
	return FileResult{
		File:    f,
		Changed: true,
		EventPayload: map[string]any{
			"fileId": string(f.ID),
			"name":   f.Name,
			"type":   f.Type,
		},
	}, nil
}

// DeleteFile removes the file with fileID from the referenced entity.
func DeleteFile(db *store.DB, ref EntityRef, fileID model.FileID) (FileResult, error) {
	if db == nil {
		return FileResult{}, errors.New("nil db")
	}
	files, err := filesOf(db, ref)
	if err != nil {
		return FileResult{}, err
	}
	idx := slices.IndexFunc(*files, func(x model.File) bool { return x.ID == fileID })
	if idx < 0 {
		return FileResult{}, NotFoundError{Kind: "file", ID: string(fileID)}
	}
	removed := (*files)[idx]
	*files = slices.Delete(*files, idx, idx+1)
	return FileResult{
		File:    removed,
		Changed: true,
		EventPayload: map[string]any{
			"fileId": string(removed.ID),
			"name":   removed.Name,
		},
	}, nil
}

// FindFile returns a copy of one file record.
func FindFile(db *store.DB, ref EntityRef, fileID model.FileID) (model.File, error) {
	if db == nil {
		return model.File{}, errors.New("nil db")
	}
	files, err := filesOf(db, ref)
	if err != nil {
		return model.File{}, err
	}
	for _, f := range *files {
		if f.ID == fileID {
			return f, nil
		}
	}
	return model.File{}, NotFoundError{Kind: "file", ID: string(fileID)}
}

// ListFiles returns the referenced entity's files in stored order.
func ListFiles(db *store.DB, ref EntityRef) ([]model.File, error) {
	if db == nil {
		return nil, errors.New("nil db")
	}
	files, err := filesOf(db, ref)
	if err != nil {
		return nil, err
	}
	return slices.Clone(*files), nil
}
