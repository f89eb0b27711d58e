package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"

	"github.com/albarami/idis/internal/domain/calc"
	"github.com/albarami/idis/internal/platform/apperr"
	"github.com/albarami/idis/internal/platform/idgen"
)

const calcColumns = `
	calc_id, tenant_id, deal_id, calc_type, input_claim_ids, inputs,
	formula_hash, code_version, output, reproducibility_hash, created_at
`

// SaveCalculation implements storage.CalcStore.
func (s *Store) SaveCalculation(ctx context.Context, c calc.DeterministicCalculation) (calc.DeterministicCalculation, error) {
	if c.CalcID == "" {
		c.CalcID = idgen.New()
	}

	claimIDsJSON, err := json.Marshal(c.InputClaimIDs)
	if err != nil {
		return calc.DeterministicCalculation{}, err
	}
	inputsJSON, err := json.Marshal(c.Inputs)
	if err != nil {
		return calc.DeterministicCalculation{}, err
	}
	outputJSON, err := json.Marshal(c.Output)
	if err != nil {
		return calc.DeterministicCalculation{}, err
	}

	_, err = DBTXFromContext(ctx, s.db).ExecContext(ctx, `
		INSERT INTO idis_calculations (`+calcColumns+`)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11)
	`, c.CalcID, c.TenantID, c.DealID, c.CalcType, claimIDsJSON, inputsJSON,
		c.FormulaHash, c.CodeVersion, outputJSON, c.ReproducibilityHash, c.CreatedAt)
	if err != nil {
		return calc.DeterministicCalculation{}, err
	}
	return c, nil
}

// GetCalculation implements storage.CalcStore.
func (s *Store) GetCalculation(ctx context.Context, tenantID, calcID string) (calc.DeterministicCalculation, error) {
	row := DBTXFromContext(ctx, s.db).QueryRowContext(ctx, `
		SELECT `+calcColumns+`
		FROM idis_calculations
		WHERE calc_id = $1 AND tenant_id = $2
	`, calcID, tenantID)

	var (
		c            calc.DeterministicCalculation
		claimIDsJSON []byte
		inputsJSON   []byte
		outputJSON   []byte
	)
	err := row.Scan(&c.CalcID, &c.TenantID, &c.DealID, &c.CalcType, &claimIDsJSON, &inputsJSON,
		&c.FormulaHash, &c.CodeVersion, &outputJSON, &c.ReproducibilityHash, &c.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return calc.DeterministicCalculation{}, apperr.NotFound("calculation", calcID)
		}
		return calc.DeterministicCalculation{}, err
	}
	if len(claimIDsJSON) > 0 {
		if err := json.Unmarshal(claimIDsJSON, &c.InputClaimIDs); err != nil {
			return calc.DeterministicCalculation{}, err
		}
	}
	if len(inputsJSON) > 0 {
		if err := json.Unmarshal(inputsJSON, &c.Inputs); err != nil {
			return calc.DeterministicCalculation{}, err
		}
	}
	if len(outputJSON) > 0 {
		if err := json.Unmarshal(outputJSON, &c.Output); err != nil {
			return calc.DeterministicCalculation{}, err
		}
	}
	return c, nil
}

// SaveCalcSanad implements storage.CalcStore.
func (s *Store) SaveCalcSanad(ctx context.Context, cs calc.CalcSanad) (calc.CalcSanad, error) {
	if cs.CalcSanadID == "" {
		cs.CalcSanadID = idgen.New()
	}
	materialJSON, err := json.Marshal(cs.MaterialInputClaimIDs)
	if err != nil {
		return calc.CalcSanad{}, err
	}
	_, err = DBTXFromContext(ctx, s.db).ExecContext(ctx, `
		INSERT INTO idis_calc_sanads (calc_sanad_id, tenant_id, calc_id, calc_grade, input_min_grade, material_input_claim_ids, created_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7)
		ON CONFLICT (calc_id) DO UPDATE SET
			calc_grade = EXCLUDED.calc_grade,
			input_min_grade = EXCLUDED.input_min_grade,
			material_input_claim_ids = EXCLUDED.material_input_claim_ids
	`, cs.CalcSanadID, cs.TenantID, cs.CalcID, cs.CalcGrade, cs.InputMinGrade, materialJSON, cs.CreatedAt)
	if err != nil {
		return calc.CalcSanad{}, err
	}
	return cs, nil
}

// GetCalcSanad implements storage.CalcStore.
func (s *Store) GetCalcSanad(ctx context.Context, tenantID, calcID string) (calc.CalcSanad, error) {
	row := DBTXFromContext(ctx, s.db).QueryRowContext(ctx, `
		SELECT calc_sanad_id, tenant_id, calc_id, calc_grade, input_min_grade, material_input_claim_ids, created_at
		FROM idis_calc_sanads
		WHERE calc_id = $1 AND tenant_id = $2
	`, calcID, tenantID)

	var (
		cs           calc.CalcSanad
		materialJSON []byte
	)
	err := row.Scan(&cs.CalcSanadID, &cs.TenantID, &cs.CalcID, &cs.CalcGrade, &cs.InputMinGrade, &materialJSON, &cs.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return calc.CalcSanad{}, apperr.NotFound("calc_sanad", calcID)
		}
		return calc.CalcSanad{}, err
	}
	if len(materialJSON) > 0 {
		if err := json.Unmarshal(materialJSON, &cs.MaterialInputClaimIDs); err != nil {
			return calc.CalcSanad{}, err
		}
	}
	return cs, nil
}
