package dataset

import (
	"errors"
	"fmt"
)

// ErrNoDataset indicates the store has nothing to serve.
var ErrNoDataset = errors.New("no processed data loaded")

// ClusterNotFoundError indicates the requested id is not among the dataset's clusters.
type ClusterNotFoundError struct{ ID int }

func (e *ClusterNotFoundError) Error() string {
	return fmt.Sprintf("cluster %d not found", e.ID)
}

// MissingColumnError indicates a loaded dataset lacks a required column.
type MissingColumnError struct{ Column string }

func (e *MissingColumnError) Error() string {
	return fmt.Sprintf("dataset has no %q column", e.Column)
}

// UnknownDatasetError indicates the viewer was asked for a name outside the whitelist.
type UnknownDatasetError struct{ Name string }

func (e *UnknownDatasetError) Error() string {
	return fmt.Sprintf("unknown dataset: %s", e.Name)
}
