// Package canon implements the orchestrator for canon content
// validation: schema checks, geometry conflict detection, and door
// synchronization over stored locations.
package canon

//go:generate mockgen -destination=mock/mock_service.go -package=canonmock github.com/contentcraft/canon-api/internal/orchestrators/canon Service

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/contentcraft/canon-api/internal/doorsync"
	"github.com/contentcraft/canon-api/internal/entities"
	"github.com/contentcraft/canon-api/internal/errors"
	"github.com/contentcraft/canon-api/internal/geometry"
	"github.com/contentcraft/canon-api/internal/pkg/clock"
	"github.com/contentcraft/canon-api/internal/pkg/idgen"
	"github.com/contentcraft/canon-api/internal/pkg/version"
	"github.com/contentcraft/canon-api/internal/repositories/location"
	"github.com/contentcraft/canon-api/internal/schema"
)

// Service defines the interface for canon content operations
type Service interface {
	// ValidateEntity runs schema validation for any canon family
	ValidateEntity(ctx context.Context, input *ValidateEntityInput) (*ValidateEntityOutput, error)

	// ValidateLocation runs schema validation plus geometry conflict
	// detection for a location document
	ValidateLocation(ctx context.Context, input *ValidateLocationInput) (*ValidateLocationOutput, error)

	// SaveLocation validates a location document, synchronizes its
	// doors, and persists it
	SaveLocation(ctx context.Context, input *SaveLocationInput) (*SaveLocationOutput, error)

	// SyncDoors re-runs door synchronization on a stored location
	SyncDoors(ctx context.Context, input *SyncDoorsInput) (*SyncDoorsOutput, error)

	// NormalizeVersion rewrites a document's schema_version to its
	// canonical form so variant spellings validate against the intended
	// schema
	NormalizeVersion(ctx context.Context, input *NormalizeVersionInput) (*NormalizeVersionOutput, error)

	// BackfillReciprocals runs the one-shot reciprocal-flag migration
	// over stored locations
	BackfillReciprocals(ctx context.Context, input *BackfillReciprocalsInput) (*BackfillReciprocalsOutput, error)
}

// Config holds the dependencies for the canon orchestrator
type Config struct {
	Registry     *schema.Registry
	LocationRepo location.Repository
	IDGenerator  idgen.Generator
	Clock        clock.Clock
}

// Validate ensures all required dependencies are provided
func (c *Config) Validate() error {
	vb := errors.NewValidationBuilder()

	if c.Registry == nil {
		vb.RequiredField("Registry")
	}
	if c.LocationRepo == nil {
		vb.RequiredField("LocationRepo")
	}
	if c.IDGenerator == nil {
		vb.RequiredField("IDGenerator")
	}
	if c.Clock == nil {
		vb.RequiredField("Clock")
	}

	return vb.Build()
}

type orchestrator struct {
	registry     *schema.Registry
	locationRepo location.Repository
	idGen        idgen.Generator
	clock        clock.Clock
}

// NewOrchestrator creates a new canon orchestrator with the provided dependencies
func NewOrchestrator(cfg *Config) (Service, error) {
	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrap(err, "invalid config")
	}

	return &orchestrator{
		registry:     cfg.Registry,
		locationRepo: cfg.LocationRepo,
		idGen:        cfg.IDGenerator,
		clock:        cfg.Clock,
	}, nil
}

func (o *orchestrator) ValidateEntity(ctx context.Context, input *ValidateEntityInput) (*ValidateEntityOutput, error) {
	if input == nil {
		return nil, errors.InvalidArgument("input cannot be nil")
	}

	result, err := o.registry.Validate(input.Family, input.Document)
	if err != nil {
		return nil, err
	}

	return &ValidateEntityOutput{Result: result}, nil
}

func (o *orchestrator) ValidateLocation(ctx context.Context, input *ValidateLocationInput) (*ValidateLocationOutput, error) {
	if input == nil {
		return nil, errors.InvalidArgument("input cannot be nil")
	}

	result, err := o.registry.Validate(schema.FamilyLocation, input.Document)
	if err != nil {
		return nil, err
	}

	// A document that fails its schema cannot be decoded reliably, so
	// geometry checks do not run.
	if !result.Valid {
		return &ValidateLocationOutput{Valid: false, SchemaResult: result}, nil
	}

	loc, err := decodeLocation(input.Document)
	if err != nil {
		return nil, err
	}

	conflicts := geometry.DetectConflicts(loc)
	proposals := geometry.GenerateProposals(conflicts)

	return &ValidateLocationOutput{
		Valid:        !geometry.HasBlocking(conflicts),
		SchemaResult: result,
		Conflicts:    conflicts,
		Proposals:    proposals,
		Location:     loc,
	}, nil
}

func (o *orchestrator) SaveLocation(ctx context.Context, input *SaveLocationInput) (*SaveLocationOutput, error) {
	if input == nil {
		return nil, errors.InvalidArgument("input cannot be nil")
	}

	validated, err := o.ValidateLocation(ctx, &ValidateLocationInput{Document: input.Document})
	if err != nil {
		return nil, err
	}
	if !validated.Valid {
		if !validated.SchemaResult.Valid {
			return nil, errors.InvalidArgumentf("location failed schema validation:\n%s", validated.SchemaResult.Details)
		}
		return nil, errors.FailedPreconditionf("location has %d blocking geometry conflicts", countBlocking(validated.Conflicts))
	}

	loc := validated.Location
	synced, anomalies := doorsync.Synchronize(loc.Spaces)
	loc.Spaces = synced

	now := o.clock.Now()
	loc.UpdatedAt = now

	if loc.ID == "" {
		loc.ID = o.idGen.Generate()
		loc.CreatedAt = now
		if _, err := o.locationRepo.Create(ctx, location.CreateInput{Location: loc}); err != nil {
			return nil, err
		}
		return &SaveLocationOutput{Location: loc, Anomalies: anomalies}, nil
	}

	_, err = o.locationRepo.Update(ctx, location.UpdateInput{Location: loc})
	if errors.IsNotFound(err) {
		loc.CreatedAt = now
		_, err = o.locationRepo.Create(ctx, location.CreateInput{Location: loc})
	}
	if err != nil {
		return nil, err
	}

	return &SaveLocationOutput{Location: loc, Anomalies: anomalies}, nil
}

func (o *orchestrator) SyncDoors(ctx context.Context, input *SyncDoorsInput) (*SyncDoorsOutput, error) {
	if input == nil || input.LocationID == "" {
		return nil, errors.InvalidArgument("location ID cannot be empty")
	}

	got, err := o.locationRepo.Get(ctx, location.GetInput{ID: input.LocationID})
	if err != nil {
		return nil, err
	}

	loc := got.Location
	synced, anomalies := doorsync.Synchronize(loc.Spaces)
	loc.Spaces = synced
	loc.UpdatedAt = o.clock.Now()

	if _, err := o.locationRepo.Update(ctx, location.UpdateInput{Location: loc}); err != nil {
		return nil, err
	}

	return &SyncDoorsOutput{Location: loc, Anomalies: anomalies}, nil
}

func (o *orchestrator) NormalizeVersion(ctx context.Context, input *NormalizeVersionInput) (*NormalizeVersionOutput, error) {
	if input == nil || input.Document == nil {
		return nil, errors.InvalidArgument("document cannot be nil")
	}

	normalized := version.NormalizeDocument(input.Document)

	ver := ""
	if v, err := version.ParseValue(normalized["schema_version"]); err == nil {
		ver = v.Canonical()
	}

	return &NormalizeVersionOutput{Document: normalized, SchemaVersion: ver}, nil
}

func (o *orchestrator) BackfillReciprocals(ctx context.Context, input *BackfillReciprocalsInput) (*BackfillReciprocalsOutput, error) {
	if input == nil {
		input = &BackfillReciprocalsInput{}
	}

	var targets []*entities.Location
	if input.LocationID != "" {
		got, err := o.locationRepo.Get(ctx, location.GetInput{ID: input.LocationID})
		if err != nil {
			return nil, err
		}
		targets = []*entities.Location{got.Location}
	} else {
		listed, err := o.locationRepo.List(ctx, location.ListInput{})
		if err != nil {
			return nil, err
		}
		targets = listed.Locations
	}

	out := &BackfillReciprocalsOutput{}
	for _, loc := range targets {
		fixed, anomalies := doorsync.Backfill(loc.Spaces)
		loc.Spaces = fixed
		loc.UpdatedAt = o.clock.Now()

		if _, err := o.locationRepo.Update(ctx, location.UpdateInput{Location: loc}); err != nil {
			return nil, errors.Wrapf(err, "failed to update location %s", loc.ID)
		}

		slog.Info("backfilled door reciprocals",
			"location_id", loc.ID, "anomalies", len(anomalies))

		out.Migrated++
		out.Anomalies = append(out.Anomalies, anomalies...)
	}

	return out, nil
}

// decodeLocation converts a schema-valid document into the typed entity.
// The document is normalized first so namespaced versions like
// "location/v1.1" decode to their canonical form.
func decodeLocation(doc map[string]any) (*entities.Location, error) {
	normalized := version.NormalizeDocument(doc)

	data, err := json.Marshal(normalized)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to re-encode location document")
	}

	var loc entities.Location
	if err := json.Unmarshal(data, &loc); err != nil {
		return nil, errors.Wrapf(err, "failed to decode location document")
	}

	return &loc, nil
}

func countBlocking(conflicts []entities.GeometryConflict) int {
	n := 0
	for _, c := range conflicts {
		if c.Severity == entities.SeverityBlocking {
			n++
		}
	}
	return n
}
