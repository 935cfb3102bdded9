// Package location defines the interface for canon location persistence
package location

//go:generate mockgen -destination=mock/mock_repository.go -package=locationmock github.com/contentcraft/canon-api/internal/repositories/location Repository

import (
	"context"

	"github.com/contentcraft/canon-api/internal/entities"
)

// Repository defines the interface for location persistence
type Repository interface {
	// Create stores a new location
	// Returns errors.InvalidArgument for validation failures
	// Returns errors.AlreadyExists if the ID is taken
	// Returns errors.Internal for storage failures
	Create(ctx context.Context, input CreateInput) (*CreateOutput, error)

	// Get retrieves a location by ID
	// Returns errors.InvalidArgument for empty IDs
	// Returns errors.NotFound if the location doesn't exist
	// Returns errors.Internal for storage failures
	Get(ctx context.Context, input GetInput) (*GetOutput, error)

	// Update replaces an existing location
	// Returns errors.InvalidArgument for validation failures
	// Returns errors.NotFound if the location doesn't exist
	// Returns errors.Internal for storage failures
	Update(ctx context.Context, input UpdateInput) (*UpdateOutput, error)

	// Delete removes a location by ID
	// Returns errors.InvalidArgument for empty IDs
	// Returns errors.NotFound if the location doesn't exist
	// Returns errors.Internal for storage failures
	Delete(ctx context.Context, input DeleteInput) (*DeleteOutput, error)

	// List returns all stored locations
	// Returns errors.Internal for storage failures
	List(ctx context.Context, input ListInput) (*ListOutput, error)
}

// CreateInput defines the input for creating a location
type CreateInput struct {
	Location *entities.Location
}

// CreateOutput defines the output for creating a location
type CreateOutput struct {
	Location *entities.Location
}

// GetInput defines the input for getting a location
type GetInput struct {
	ID string
}

// GetOutput defines the output for getting a location
type GetOutput struct {
	Location *entities.Location
}

// UpdateInput defines the input for updating a location
type UpdateInput struct {
	Location *entities.Location
}

// UpdateOutput defines the output for updating a location
type UpdateOutput struct {
	Location *entities.Location
}

// DeleteInput defines the input for deleting a location
type DeleteInput struct {
	ID string
}

// DeleteOutput defines the output for deleting a location
type DeleteOutput struct{}

// ListInput defines the input for listing locations
type ListInput struct{}

// ListOutput defines the output for listing locations
type ListOutput struct {
	Locations []*entities.Location
}
