package warehouse

import (
	"context"
	"fmt"
)

// UpsertProject writes a Projects V2 board row (§3, §9).
func (s *Store) UpsertProject(ctx context.Context, p Project) error {
	const q = `
		INSERT INTO projects (node_id, organization, number, title, description, url, closed, total_items, created_at, updated_at, synced_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, now())
		ON CONFLICT (node_id) DO UPDATE SET
			title = EXCLUDED.title,
			description = EXCLUDED.description,
			url = EXCLUDED.url,
			closed = EXCLUDED.closed,
			total_items = EXCLUDED.total_items,
			updated_at = EXCLUDED.updated_at,
			synced_at = now()
	`
	if _, err := s.querier(ctx).ExecContext(ctx, q,
		p.NodeID, p.Organization, p.Number, p.Title, p.Description, p.URL, p.Closed,
		p.TotalItems, p.CreatedAt, p.UpdatedAt); err != nil {
		return fmt.Errorf("upsert project %s#%d: %w", p.Organization, p.Number, err)
	}
	return nil
}

// UpsertProjectField writes a typed field configured on a project.
func (s *Store) UpsertProjectField(ctx context.Context, f ProjectField) error {
	const q = `
		INSERT INTO project_fields (node_id, project_id, name, field_type, config_json, synced_at)
		VALUES ($1, $2, $3, $4, $5, now())
		ON CONFLICT (node_id) DO UPDATE SET
			name = EXCLUDED.name,
			field_type = EXCLUDED.field_type,
			config_json = EXCLUDED.config_json,
			synced_at = now()
	`
	if _, err := s.querier(ctx).ExecContext(ctx, q, f.NodeID, f.ProjectID, f.Name, f.FieldType, f.ConfigJSON); err != nil {
		return fmt.Errorf("upsert project field %s: %w", f.Name, err)
	}
	return nil
}

// UpsertProjectItem writes a card on a project board, including the opaque
// content and field-value JSON blobs projected by the Derivation Layer via
// gjson (§4.5, §9).
func (s *Store) UpsertProjectItem(ctx context.Context, item ProjectItem) error {
	const q = `
		INSERT INTO project_items (node_id, project_id, content_type, content_number, title, state, url, repository_full_name, content_json, field_values_json, created_at, updated_at, synced_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, now())
		ON CONFLICT (node_id) DO UPDATE SET
			content_type = EXCLUDED.content_type,
			content_number = EXCLUDED.content_number,
			title = EXCLUDED.title,
			state = EXCLUDED.state,
			url = EXCLUDED.url,
			repository_full_name = EXCLUDED.repository_full_name,
			content_json = EXCLUDED.content_json,
			field_values_json = EXCLUDED.field_values_json,
			updated_at = EXCLUDED.updated_at,
			synced_at = now()
	`
	if _, err := s.querier(ctx).ExecContext(ctx, q,
		item.NodeID, item.ProjectID, item.ContentType, item.ContentNumber, item.Title, item.State,
		item.URL, item.RepositoryFullName, item.ContentJSON, item.FieldValuesJSON,
		item.CreatedAt, item.UpdatedAt); err != nil {
		return fmt.Errorf("upsert project item %s: %w", item.NodeID, err)
	}
	return nil
}

// ListProjects returns every project belonging to an organization.
func (s *Store) ListProjects(ctx context.Context, organization string) ([]Project, error) {
	var out []Project
	err := s.querier(ctx).SelectContext(ctx, &out, `
		SELECT * FROM projects WHERE organization = $1 ORDER BY number
	`, organization)
	if err != nil {
		return nil, fmt.Errorf("list projects for org %s: %w", organization, err)
	}
	return out, nil
}

// GetProject looks up a project by organization + board number.
func (s *Store) GetProject(ctx context.Context, organization string, number int) (Project, error) {
	var p Project
	err := s.querier(ctx).GetContext(ctx, &p, `
		SELECT * FROM projects WHERE organization = $1 AND number = $2
	`, organization, number)
	if isNoRows(err) {
		return Project{}, fmt.Errorf("project %s#%d: %w", organization, number, ErrNotFound)
	}
	if err != nil {
		return Project{}, fmt.Errorf("get project %s#%d: %w", organization, number, err)
	}
	return p, nil
}

// ListProjectFields returns every field configured on a project.
func (s *Store) ListProjectFields(ctx context.Context, projectID string) ([]ProjectField, error) {
	var out []ProjectField
	err := s.querier(ctx).SelectContext(ctx, &out, `
		SELECT * FROM project_fields WHERE project_id = $1 ORDER BY name
	`, projectID)
	if err != nil {
		return nil, fmt.Errorf("list fields for project %s: %w", projectID, err)
	}
	return out, nil
}

// ListProjectItems returns every card on a project's board.
func (s *Store) ListProjectItems(ctx context.Context, projectID string) ([]ProjectItem, error) {
	var out []ProjectItem
	err := s.querier(ctx).SelectContext(ctx, &out, `
		SELECT * FROM project_items WHERE project_id = $1 ORDER BY content_number
	`, projectID)
	if err != nil {
		return nil, fmt.Errorf("list items for project %s: %w", projectID, err)
	}
	return out, nil
}
