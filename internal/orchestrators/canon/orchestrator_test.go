package canon_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"

	"github.com/contentcraft/canon-api/internal/entities"
	"github.com/contentcraft/canon-api/internal/errors"
	"github.com/contentcraft/canon-api/internal/orchestrators/canon"
	"github.com/contentcraft/canon-api/internal/pkg/clock"
	"github.com/contentcraft/canon-api/internal/pkg/idgen"
	"github.com/contentcraft/canon-api/internal/repositories/location"
	locationmock "github.com/contentcraft/canon-api/internal/repositories/location/mock"
	"github.com/contentcraft/canon-api/internal/schema"
)

var fixedNow = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

type OrchestratorTestSuite struct {
	suite.Suite
	ctrl     *gomock.Controller
	mockRepo *locationmock.MockRepository
	service  canon.Service
	ctx      context.Context
}

func (s *OrchestratorTestSuite) SetupTest() {
	s.ctrl = gomock.NewController(s.T())
	s.mockRepo = locationmock.NewMockRepository(s.ctrl)
	s.ctx = context.Background()

	registry, err := schema.NewRegistry()
	s.Require().NoError(err)

	svc, err := canon.NewOrchestrator(&canon.Config{
		Registry:     registry,
		LocationRepo: s.mockRepo,
		IDGenerator:  idgen.NewSequential("loc"),
		Clock:        &clock.Fixed{T: fixedNow},
	})
	s.Require().NoError(err)
	s.service = svc
}

func (s *OrchestratorTestSuite) TearDownTest() {
	s.ctrl.Finish()
}

// validLocationDoc is a schema-valid tavern with one declared door and
// no reciprocal yet.
func validLocationDoc() map[string]any {
	return map[string]any{
		"schema_version": "1.1",
		"name":           "The Rusty Anchor",
		"location_type":  "tavern",
		"spaces": []any{
			map[string]any{
				"id":   "space_hall",
				"name": "Common Room",
				"geometry": map[string]any{
					"dimensions": map[string]any{"width_ft": 40.0, "height_ft": 30.0},
				},
				"doors": []any{
					map[string]any{
						"wall":                "south",
						"position_on_wall_ft": 10.0,
						"width_ft":            4.0,
						"leads_to":            "Kitchen",
					},
				},
			},
			map[string]any{
				"id":   "space_kitchen",
				"name": "Kitchen",
				"geometry": map[string]any{
					"dimensions": map[string]any{"width_ft": 40.0, "height_ft": 20.0},
				},
			},
		},
	}
}

func (s *OrchestratorTestSuite) TestNewOrchestratorValidatesConfig() {
	_, err := canon.NewOrchestrator(&canon.Config{})
	s.Require().Error(err)
	s.Contains(err.Error(), "Registry")
	s.Contains(err.Error(), "LocationRepo")
}

func (s *OrchestratorTestSuite) TestValidateEntity() {
	out, err := s.service.ValidateEntity(s.ctx, &canon.ValidateEntityInput{
		Family: schema.FamilyNPC,
		Document: map[string]any{
			"schema_version": "1.1",
			"name":           "Mira the Innkeeper",
			"description":    "A retired sailor who keeps the taproom spotless.",
		},
	})
	s.Require().NoError(err)
	s.True(out.Result.Valid)
	s.Equal("1.1", out.Result.SchemaVersion)
}

func (s *OrchestratorTestSuite) TestValidateEntityReportsFailures() {
	out, err := s.service.ValidateEntity(s.ctx, &canon.ValidateEntityInput{
		Family: schema.FamilyMonster,
		Document: map[string]any{
			"schema_version": "1.1",
			"name":           "Gelatinous Cube",
			"size":           "Large",
			"creature_type":  "ooze",
			"armor_class":    true,
		},
	})
	s.Require().NoError(err)
	s.False(out.Result.Valid)
	s.Contains(out.Result.Details, "armor_class")
}

func (s *OrchestratorTestSuite) TestValidateLocation() {
	out, err := s.service.ValidateLocation(s.ctx, &canon.ValidateLocationInput{
		Document: validLocationDoc(),
	})
	s.Require().NoError(err)
	s.True(out.Valid)
	s.True(out.SchemaResult.Valid)
	s.Require().NotNil(out.Location)
	s.Equal("The Rusty Anchor", out.Location.Name)
	s.Len(out.Proposals, len(out.Conflicts))
}

func (s *OrchestratorTestSuite) TestValidateLocationSchemaFailureSkipsGeometry() {
	out, err := s.service.ValidateLocation(s.ctx, &canon.ValidateLocationInput{
		Document: map[string]any{"schema_version": "1.1"},
	})
	s.Require().NoError(err)
	s.False(out.Valid)
	s.False(out.SchemaResult.Valid)
	s.Nil(out.Location)
	s.Empty(out.Conflicts, "geometry must not run on schema-invalid documents")
}

func (s *OrchestratorTestSuite) TestValidateLocationBlockingConflict() {
	doc := validLocationDoc()
	doc["scale"] = "complex"
	// Complex scale demands geometry on every space.
	spaces := doc["spaces"].([]any)
	delete(spaces[1].(map[string]any), "geometry")

	out, err := s.service.ValidateLocation(s.ctx, &canon.ValidateLocationInput{Document: doc})
	s.Require().NoError(err)
	s.False(out.Valid)
	s.True(out.SchemaResult.Valid)
	s.NotEmpty(out.Conflicts)
	s.NotEmpty(out.Proposals)
}

func (s *OrchestratorTestSuite) TestSaveLocationCreatesWithGeneratedID() {
	var saved *entities.Location
	s.mockRepo.EXPECT().
		Create(s.ctx, gomock.Any()).
		DoAndReturn(func(_ context.Context, input location.CreateInput) (*location.CreateOutput, error) {
			saved = input.Location
			return &location.CreateOutput{Location: input.Location}, nil
		})

	out, err := s.service.SaveLocation(s.ctx, &canon.SaveLocationInput{
		Document: validLocationDoc(),
	})
	s.Require().NoError(err)
	s.Empty(out.Anomalies)

	s.Require().NotNil(saved)
	s.Equal("loc_1", saved.ID)
	s.Equal(fixedNow, saved.CreatedAt)
	s.Equal(fixedNow, saved.UpdatedAt)

	// The kitchen gained its reciprocal door before persistence.
	s.Require().Len(saved.Spaces, 2)
	s.Require().Len(saved.Spaces[1].Doors, 1)
	s.True(saved.Spaces[1].Doors[0].IsReciprocal)
	s.Equal(entities.WallNorth, saved.Spaces[1].Doors[0].Wall)
}

func (s *OrchestratorTestSuite) TestSaveLocationRejectsSchemaInvalid() {
	_, err := s.service.SaveLocation(s.ctx, &canon.SaveLocationInput{
		Document: map[string]any{"name": 42},
	})
	s.True(errors.IsInvalidArgument(err))
}

func (s *OrchestratorTestSuite) TestSaveLocationRejectsBlockingConflicts() {
	doc := validLocationDoc()
	doc["scale"] = "massive"
	spaces := doc["spaces"].([]any)
	delete(spaces[0].(map[string]any), "geometry")
	delete(spaces[1].(map[string]any), "geometry")

	_, err := s.service.SaveLocation(s.ctx, &canon.SaveLocationInput{Document: doc})
	s.True(errors.IsFailedPrecondition(err))
}

func (s *OrchestratorTestSuite) TestSyncDoors() {
	stored := &entities.Location{
		ID:            "loc_9",
		SchemaVersion: "1.1",
		Name:          "Keep",
		Spaces: []entities.Space{
			{
				ID: "hall", Name: "Hall",
				Geometry: &entities.Geometry{
					Dimensions: &entities.Dimensions{WidthFt: 40, HeightFt: 30},
				},
				Doors: []entities.Door{{
					Wall: entities.WallSouth, PositionOnWallFt: 10, WidthFt: 4, LeadsTo: "Cellar",
				}},
			},
			{
				ID: "cellar", Name: "Cellar",
				Geometry: &entities.Geometry{
					Dimensions: &entities.Dimensions{WidthFt: 20, HeightFt: 20},
				},
			},
		},
	}

	s.mockRepo.EXPECT().
		Get(s.ctx, location.GetInput{ID: "loc_9"}).
		Return(&location.GetOutput{Location: stored}, nil)
	s.mockRepo.EXPECT().
		Update(s.ctx, gomock.Any()).
		Return(&location.UpdateOutput{}, nil)

	out, err := s.service.SyncDoors(s.ctx, &canon.SyncDoorsInput{LocationID: "loc_9"})
	s.Require().NoError(err)
	s.Empty(out.Anomalies)
	s.Len(out.Location.Spaces[1].Doors, 1)
	s.Equal(fixedNow, out.Location.UpdatedAt)
}

func (s *OrchestratorTestSuite) TestSyncDoorsRequiresID() {
	_, err := s.service.SyncDoors(s.ctx, &canon.SyncDoorsInput{})
	s.True(errors.IsInvalidArgument(err))
}

func (s *OrchestratorTestSuite) TestNormalizeVersion() {
	out, err := s.service.NormalizeVersion(s.ctx, &canon.NormalizeVersionInput{
		Document: map[string]any{"schema_version": "npc/v1.1", "name": "Mira"},
	})
	s.Require().NoError(err)
	s.Equal("1.1", out.SchemaVersion)
	s.Equal("1.1", out.Document["schema_version"])

	// The input document is untouched.
	validated, err := s.service.ValidateEntity(s.ctx, &canon.ValidateEntityInput{
		Family:   schema.FamilyNPC,
		Document: out.Document,
	})
	s.Require().NoError(err)
	s.Equal("1.1", validated.Result.SchemaVersion)
}

func (s *OrchestratorTestSuite) TestNormalizeVersionLeavesUnparseable() {
	out, err := s.service.NormalizeVersion(s.ctx, &canon.NormalizeVersionInput{
		Document: map[string]any{"schema_version": "latest"},
	})
	s.Require().NoError(err)
	s.Empty(out.SchemaVersion)
	s.Equal("latest", out.Document["schema_version"])
}

func (s *OrchestratorTestSuite) TestBackfillReciprocalsAllLocations() {
	locA := &entities.Location{ID: "loc_a", Name: "A"}
	locB := &entities.Location{ID: "loc_b", Name: "B"}

	s.mockRepo.EXPECT().
		List(s.ctx, location.ListInput{}).
		Return(&location.ListOutput{Locations: []*entities.Location{locA, locB}}, nil)
	s.mockRepo.EXPECT().
		Update(s.ctx, gomock.Any()).
		Return(&location.UpdateOutput{}, nil).
		Times(2)

	out, err := s.service.BackfillReciprocals(s.ctx, &canon.BackfillReciprocalsInput{})
	s.Require().NoError(err)
	s.Equal(2, out.Migrated)
}

func (s *OrchestratorTestSuite) TestBackfillReciprocalsSingleLocation() {
	stale := entities.Door{
		Wall: entities.WallNorth, PositionOnWallFt: 5, WidthFt: 4,
		LeadsTo: "Outside", IsReciprocal: true,
	}
	loc := &entities.Location{
		ID:   "loc_a",
		Name: "A",
		Spaces: []entities.Space{{
			ID: "porch", Name: "Porch",
			Geometry: &entities.Geometry{
				Dimensions: &entities.Dimensions{WidthFt: 10, HeightFt: 10},
			},
			Doors: []entities.Door{stale},
		}},
	}

	s.mockRepo.EXPECT().
		Get(s.ctx, location.GetInput{ID: "loc_a"}).
		Return(&location.GetOutput{Location: loc}, nil)

	var updated *entities.Location
	s.mockRepo.EXPECT().
		Update(s.ctx, gomock.Any()).
		DoAndReturn(func(_ context.Context, input location.UpdateInput) (*location.UpdateOutput, error) {
			updated = input.Location
			return &location.UpdateOutput{}, nil
		})

	out, err := s.service.BackfillReciprocals(s.ctx, &canon.BackfillReciprocalsInput{LocationID: "loc_a"})
	s.Require().NoError(err)
	s.Equal(1, out.Migrated)

	s.Require().NotNil(updated)
	s.False(updated.Spaces[0].Doors[0].IsReciprocal, "terminal doors never keep the reciprocal flag")
}

func TestOrchestratorSuite(t *testing.T) {
	suite.Run(t, new(OrchestratorTestSuite))
}
