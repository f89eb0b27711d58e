package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"

	"github.com/albarami/idis/internal/domain/sanad"
	"github.com/albarami/idis/internal/platform/apperr"
	"github.com/albarami/idis/internal/platform/idgen"
)

const sanadColumns = `
	sanad_id, tenant_id, claim_id, nodes, edges, root_node_id,
	grade, corroboration_level, independent_chain_count, grade_rationale,
	created_at, updated_at
`

// SaveSanad implements storage.SanadStore as an upsert, since a Sanad is
// re-derived (and re-saved) every time its transmission DAG changes.
func (s *Store) SaveSanad(ctx context.Context, sn sanad.Sanad) (sanad.Sanad, error) {
	if sn.SanadID == "" {
		sn.SanadID = idgen.New()
	}

	nodesJSON, err := json.Marshal(sn.Nodes)
	if err != nil {
		return sanad.Sanad{}, err
	}
	edgesJSON, err := json.Marshal(sn.Edges)
	if err != nil {
		return sanad.Sanad{}, err
	}
	rationaleJSON, err := json.Marshal(sn.GradeRationale)
	if err != nil {
		return sanad.Sanad{}, err
	}

	_, err = DBTXFromContext(ctx, s.db).ExecContext(ctx, `
		INSERT INTO idis_sanads (`+sanadColumns+`)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12)
		ON CONFLICT (sanad_id) DO UPDATE SET
			nodes = EXCLUDED.nodes,
			edges = EXCLUDED.edges,
			root_node_id = EXCLUDED.root_node_id,
			grade = EXCLUDED.grade,
			corroboration_level = EXCLUDED.corroboration_level,
			independent_chain_count = EXCLUDED.independent_chain_count,
			grade_rationale = EXCLUDED.grade_rationale,
			updated_at = EXCLUDED.updated_at
	`, sn.SanadID, sn.TenantID, sn.ClaimID, nodesJSON, edgesJSON, sn.RootNodeID,
		sn.Grade, sn.CorroborationLevel, sn.IndependentChainCount, rationaleJSON,
		sn.CreatedAt, sn.UpdatedAt)
	if err != nil {
		return sanad.Sanad{}, err
	}
	return sn, nil
}

func scanSanad(row interface{ Scan(...interface{}) error }) (sanad.Sanad, error) {
	var (
		sn            sanad.Sanad
		nodesJSON     []byte
		edgesJSON     []byte
		rationaleJSON []byte
	)
	if err := row.Scan(
		&sn.SanadID, &sn.TenantID, &sn.ClaimID, &nodesJSON, &edgesJSON, &sn.RootNodeID,
		&sn.Grade, &sn.CorroborationLevel, &sn.IndependentChainCount, &rationaleJSON,
		&sn.CreatedAt, &sn.UpdatedAt,
	); err != nil {
		return sanad.Sanad{}, err
	}
	if len(nodesJSON) > 0 {
		if err := json.Unmarshal(nodesJSON, &sn.Nodes); err != nil {
			return sanad.Sanad{}, err
		}
	}
	if len(edgesJSON) > 0 {
		if err := json.Unmarshal(edgesJSON, &sn.Edges); err != nil {
			return sanad.Sanad{}, err
		}
	}
	if len(rationaleJSON) > 0 {
		if err := json.Unmarshal(rationaleJSON, &sn.GradeRationale); err != nil {
			return sanad.Sanad{}, err
		}
	}
	return sn, nil
}

// GetSanad implements storage.SanadStore.
func (s *Store) GetSanad(ctx context.Context, tenantID, sanadID string) (sanad.Sanad, error) {
	row := DBTXFromContext(ctx, s.db).QueryRowContext(ctx, `
		SELECT `+sanadColumns+`
		FROM idis_sanads
		WHERE sanad_id = $1 AND tenant_id = $2
	`, sanadID, tenantID)

	sn, err := scanSanad(row)
	if errors.Is(err, sql.ErrNoRows) {
		return sanad.Sanad{}, apperr.NotFound("sanad", sanadID)
	}
	return sn, err
}

// GetSanadForClaim implements storage.SanadStore.
func (s *Store) GetSanadForClaim(ctx context.Context, tenantID, claimID string) (sanad.Sanad, error) {
	row := DBTXFromContext(ctx, s.db).QueryRowContext(ctx, `
		SELECT `+sanadColumns+`
		FROM idis_sanads
		WHERE tenant_id = $1 AND claim_id = $2
	`, tenantID, claimID)

	sn, err := scanSanad(row)
	if errors.Is(err, sql.ErrNoRows) {
		return sanad.Sanad{}, apperr.NotFound("sanad", claimID)
	}
	return sn, err
}
