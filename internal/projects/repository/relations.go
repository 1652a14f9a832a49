package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/climate-finance-tracker/cft-backend/internal/projects/domain"
	"github.com/climate-finance-tracker/cft-backend/internal/storage/postgres"
)

// relation describes one many-to-many kind linked to projects through a pure
// join table.
type relation struct {
	label      string
	joinTable  string
	idColumn   string
	refTable   string
	nameColumn string
	// pendingColumn is the TEXT[] column holding the ids on pending rows.
	pendingColumn string
	ids           func(*domain.RelationIDs) *[]string
	refs          func(*domain.Project) *[]domain.Ref
}

var relations = []relation{
	{
		label: "agencies", joinTable: "project_agencies", idColumn: "agency_id",
		refTable: "agencies", nameColumn: "name", pendingColumn: "agency_ids",
		ids:  func(r *domain.RelationIDs) *[]string { return &r.AgencyIDs },
		refs: func(p *domain.Project) *[]domain.Ref { return &p.Agencies },
	},
	{
		label: "executing agencies", joinTable: "project_executing_agencies", idColumn: "executing_agency_id",
		refTable: "executing_agencies", nameColumn: "name", pendingColumn: "executing_agency_ids",
		ids:  func(r *domain.RelationIDs) *[]string { return &r.ExecutingAgencyIDs },
		refs: func(p *domain.Project) *[]domain.Ref { return &p.ExecutingAgencies },
	},
	{
		label: "implementing entities", joinTable: "project_implementing_entities", idColumn: "implementing_entity_id",
		refTable: "implementing_entities", nameColumn: "name", pendingColumn: "implementing_entity_ids",
		ids:  func(r *domain.RelationIDs) *[]string { return &r.ImplementingEntityIDs },
		refs: func(p *domain.Project) *[]domain.Ref { return &p.ImplementingEntities },
	},
	{
		label: "delivery partners", joinTable: "project_delivery_partners", idColumn: "delivery_partner_id",
		refTable: "delivery_partners", nameColumn: "name", pendingColumn: "delivery_partner_ids",
		ids:  func(r *domain.RelationIDs) *[]string { return &r.DeliveryPartnerIDs },
		refs: func(p *domain.Project) *[]domain.Ref { return &p.DeliveryPartners },
	},
	{
		label: "funding sources", joinTable: "project_funding_sources", idColumn: "funding_source_id",
		refTable: "funding_sources", nameColumn: "name", pendingColumn: "funding_source_ids",
		ids:  func(r *domain.RelationIDs) *[]string { return &r.FundingSourceIDs },
		refs: func(p *domain.Project) *[]domain.Ref { return &p.FundingSources },
	},
	{
		label: "sdgs", joinTable: "project_sdgs", idColumn: "sdg_id",
		refTable: "sdg_alignments", nameColumn: "title", pendingColumn: "sdg_ids",
		ids:  func(r *domain.RelationIDs) *[]string { return &r.SDGIDs },
		refs: func(p *domain.Project) *[]domain.Ref { return &p.SDGs },
	},
	{
		label: "locations", joinTable: "project_locations", idColumn: "location_id",
		refTable: "locations", nameColumn: "name", pendingColumn: "location_ids",
		ids:  func(r *domain.RelationIDs) *[]string { return &r.LocationIDs },
		refs: func(p *domain.Project) *[]domain.Ref { return &p.Locations },
	},
}

// insertRelations writes one join row per id for every relation kind.
func insertRelations(ctx context.Context, q postgres.DBTX, projectID string, ids *domain.RelationIDs) error {
	for _, rel := range relations {
		query := fmt.Sprintf(`
INSERT INTO %s (project_id, %s)
VALUES ($1, $2)
ON CONFLICT DO NOTHING;
`, rel.joinTable, rel.idColumn)

		for _, id := range *rel.ids(ids) {
			id = strings.TrimSpace(id)
			if id == "" {
				continue
			}
			if _, err := q.ExecContext(ctx, query, projectID, id); err != nil {
				return fmt.Errorf("failed to link %s: %w", rel.label, err)
			}
		}
	}
	return nil
}

// replaceRelations clears every join table for the project and re-inserts the
// submitted ids. An empty list leaves the kind with no rows.
func replaceRelations(ctx context.Context, q postgres.DBTX, projectID string, ids *domain.RelationIDs) error {
	if err := deleteRelations(ctx, q, projectID); err != nil {
		return err
	}
	return insertRelations(ctx, q, projectID, ids)
}

func deleteRelations(ctx context.Context, q postgres.DBTX, projectID string) error {
	for _, rel := range relations {
		query := fmt.Sprintf(`DELETE FROM %s WHERE project_id = $1;`, rel.joinTable)
		if _, err := q.ExecContext(ctx, query, projectID); err != nil {
			return fmt.Errorf("failed to clear %s: %w", rel.label, err)
		}
	}
	return nil
}

// loadRelations fills the nested refs of every project in byID. When
// projectID is set only that project's rows are read.
func loadRelations(ctx context.Context, q postgres.DBTX, projectID string, byID map[string]*domain.Project) error {
	for _, rel := range relations {
		query := fmt.Sprintf(`
SELECT j.project_id, j.%[2]s, COALESCE(r.%[4]s, '')
FROM %[1]s j
LEFT JOIN %[3]s r ON r.%[2]s = j.%[2]s
`, rel.joinTable, rel.idColumn, rel.refTable, rel.nameColumn)

		args := []any{}
		if projectID != "" {
			query += "WHERE j.project_id = $1\n"
			args = append(args, projectID)
		}
		query += "ORDER BY 3 ASC;"

		if err := scanRelation(ctx, q, rel, query, args, byID); err != nil {
			return err
		}
	}
	return nil
}

func scanRelation(ctx context.Context, q postgres.DBTX, rel relation, query string, args []any, byID map[string]*domain.Project) error {
	rows, err := q.QueryContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to load %s: %w", rel.label, err)
	}
	defer rows.Close()

	for rows.Next() {
		var pid string
		var ref domain.Ref
		if err := rows.Scan(&pid, &ref.ID, &ref.Name); err != nil {
			return err
		}
		if p, ok := byID[pid]; ok {
			refs := rel.refs(p)
			*refs = append(*refs, ref)
		}
	}
	return rows.Err()
}

// idsFromRefs rebuilds the raw id lists from loaded refs.
func idsFromRefs(p *domain.Project) domain.RelationIDs {
	var out domain.RelationIDs
	for _, rel := range relations {
		refs := *rel.refs(p)
		ids := make([]string, 0, len(refs))
		for _, ref := range refs {
			ids = append(ids, ref.ID)
		}
		*rel.ids(&out) = ids
	}
	return out
}

// emptyRefs makes every relation serialize as [] rather than null.
func emptyRefs(p *domain.Project) {
	for _, rel := range relations {
		if refs := rel.refs(p); *refs == nil {
			*refs = []domain.Ref{}
		}
	}
}
