package db

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/itzfoxbrz/KamikaZL2/internal/game/fence"
)

// FenceRepository handles fence CRUD operations
type FenceRepository struct {
	pool *pgxpool.Pool
}

// NewFenceRepository creates a new fence repository
func NewFenceRepository(pool *pgxpool.Pool) *FenceRepository {
	return &FenceRepository{pool: pool}
}

// LoadAll loads all fences ordered by ID
func (r *FenceRepository) LoadAll(ctx context.Context) ([]*fence.Fence, error) {
	query := `
		SELECT fence_id, name, x, y, z, width, length, height, instance_id, state
		FROM fences
		ORDER BY fence_id
	`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("loading all fences: %w", err)
	}
	defer rows.Close()

	var fences []*fence.Fence
	for rows.Next() {
		var (
			id, instanceID        int32
			name, stateName       string
			x, y, z               int32
			width, length, height int32
		)

		if err := rows.Scan(&id, &name, &x, &y, &z, &width, &length, &height, &instanceID, &stateName); err != nil {
			return nil, fmt.Errorf("scanning fence row: %w", err)
		}

		state, err := fence.ParseState(stateName)
		if err != nil {
			return nil, fmt.Errorf("fence %d: %w", id, err)
		}

		f := fence.New(id, x, y, z, width, length, height, state)
		f.Name = name
		f.InstanceID = instanceID
		fences = append(fences, f)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating fence rows: %w", err)
	}

	return fences, nil
}

// LoadInto registers every stored fence in table and returns the count.
func (r *FenceRepository) LoadInto(ctx context.Context, table *fence.Table) (int, error) {
	fences, err := r.LoadAll(ctx)
	if err != nil {
		return 0, err
	}
	for _, f := range fences {
		if err := table.Add(f); err != nil {
			return 0, err
		}
	}
	return len(fences), nil
}

// Save inserts or replaces a fence
func (r *FenceRepository) Save(ctx context.Context, f *fence.Fence) error {
	query := `
		INSERT INTO fences (fence_id, name, x, y, z, width, length, height, instance_id, state)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		ON CONFLICT (fence_id) DO UPDATE SET
			name = EXCLUDED.name,
			x = EXCLUDED.x,
			y = EXCLUDED.y,
			z = EXCLUDED.z,
			width = EXCLUDED.width,
			length = EXCLUDED.length,
			height = EXCLUDED.height,
			instance_id = EXCLUDED.instance_id,
			state = EXCLUDED.state,
			updated_at = now()
	`

	_, err := r.pool.Exec(ctx, query,
		f.ID, f.Name, f.X, f.Y, f.Z, f.Width, f.Length, f.Height, f.InstanceID, f.State().String(),
	)
	if err != nil {
		return fmt.Errorf("saving fence %d: %w", f.ID, err)
	}
	return nil
}

// UpdateState stores a new state for an existing fence
func (r *FenceRepository) UpdateState(ctx context.Context, id int32, state fence.State) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE fences SET state = $1, updated_at = now() WHERE fence_id = $2`,
		state.String(), id,
	)
	if err != nil {
		return fmt.Errorf("updating fence %d state: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("updating fence %d state: %w", id, fence.ErrFenceNotFound)
	}
	return nil
}

// Delete removes a fence
func (r *FenceRepository) Delete(ctx context.Context, id int32) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM fences WHERE fence_id = $1`, id)
	if err != nil {
		return fmt.Errorf("deleting fence %d: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("deleting fence %d: %w", id, fence.ErrFenceNotFound)
	}
	return nil
}
