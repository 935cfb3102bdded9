package location

import (
	"context"
	"encoding/json"

	redis "github.com/redis/go-redis/v9"

	"github.com/contentcraft/canon-api/internal/entities"
	"github.com/contentcraft/canon-api/internal/errors"
	redisclient "github.com/contentcraft/canon-api/internal/redis"
)

const (
	locationKeyPrefix = "location:"
	locationIndexKey  = "location:ids"

	errLocationNil     = "location cannot be nil"
	errLocationIDEmpty = "location ID cannot be empty"
)

type redisRepository struct {
	client redisclient.Client
}

// NewRedisRepository creates a new Redis-backed location repository
func NewRedisRepository(client redisclient.Client) Repository {
	return &redisRepository{
		client: client,
	}
}

func (r *redisRepository) Create(ctx context.Context, input CreateInput) (*CreateOutput, error) {
	if input.Location == nil {
		return nil, errors.InvalidArgument(errLocationNil)
	}
	if input.Location.ID == "" {
		return nil, errors.InvalidArgument(errLocationIDEmpty)
	}

	key := locationKeyPrefix + input.Location.ID
	exists, err := r.client.Exists(ctx, key).Result()
	if err != nil {
		return nil, errors.Wrapf(err, "failed to check existence")
	}
	if exists > 0 {
		return nil, errors.AlreadyExistsf("location with ID %s already exists", input.Location.ID)
	}

	data, err := json.Marshal(input.Location)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to marshal location")
	}

	pipe := r.client.TxPipeline()
	pipe.Set(ctx, key, data, 0)
	pipe.SAdd(ctx, locationIndexKey, input.Location.ID)
	if _, err := pipe.Exec(ctx); err != nil {
		return nil, errors.Wrapf(err, "failed to create location")
	}

	return &CreateOutput{Location: input.Location}, nil
}

func (r *redisRepository) Get(ctx context.Context, input GetInput) (*GetOutput, error) {
	if input.ID == "" {
		return nil, errors.InvalidArgument(errLocationIDEmpty)
	}

	key := locationKeyPrefix + input.ID
	result, err := r.client.Get(ctx, key).Result()
	if err != nil {
		if err == redis.Nil {
			return nil, errors.NotFoundf("location with ID %s not found", input.ID)
		}
		return nil, errors.Wrapf(err, "failed to get location")
	}

	var loc entities.Location
	if err := json.Unmarshal([]byte(result), &loc); err != nil {
		return nil, errors.Wrapf(err, "failed to unmarshal location")
	}

	return &GetOutput{Location: &loc}, nil
}

func (r *redisRepository) Update(ctx context.Context, input UpdateInput) (*UpdateOutput, error) {
	if input.Location == nil {
		return nil, errors.InvalidArgument(errLocationNil)
	}
	if input.Location.ID == "" {
		return nil, errors.InvalidArgument(errLocationIDEmpty)
	}

	key := locationKeyPrefix + input.Location.ID
	exists, err := r.client.Exists(ctx, key).Result()
	if err != nil {
		return nil, errors.Wrapf(err, "failed to check existence")
	}
	if exists == 0 {
		return nil, errors.NotFoundf("location with ID %s not found", input.Location.ID)
	}

	data, err := json.Marshal(input.Location)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to marshal location")
	}

	if err := r.client.Set(ctx, key, data, 0).Err(); err != nil {
		return nil, errors.Wrapf(err, "failed to update location")
	}

	return &UpdateOutput{Location: input.Location}, nil
}

func (r *redisRepository) Delete(ctx context.Context, input DeleteInput) (*DeleteOutput, error) {
	if input.ID == "" {
		return nil, errors.InvalidArgument(errLocationIDEmpty)
	}

	key := locationKeyPrefix + input.ID

	pipe := r.client.TxPipeline()
	delCmd := pipe.Del(ctx, key)
	pipe.SRem(ctx, locationIndexKey, input.ID)
	if _, err := pipe.Exec(ctx); err != nil {
		return nil, errors.Wrapf(err, "failed to delete location")
	}

	if delCmd.Val() == 0 {
		return nil, errors.NotFoundf("location with ID %s not found", input.ID)
	}

	return &DeleteOutput{}, nil
}

func (r *redisRepository) List(ctx context.Context, input ListInput) (*ListOutput, error) {
	ids, err := r.client.SMembers(ctx, locationIndexKey).Result()
	if err != nil {
		return nil, errors.Wrapf(err, "failed to list location IDs")
	}

	locations := make([]*entities.Location, 0, len(ids))
	for _, id := range ids {
		out, err := r.Get(ctx, GetInput{ID: id})
		if err != nil {
			// Index entries can outlive their keys; skip the stale ones.
			if errors.IsNotFound(err) {
				continue
			}
			return nil, err
		}
		locations = append(locations, out.Location)
	}

	return &ListOutput{Locations: locations}, nil
}
