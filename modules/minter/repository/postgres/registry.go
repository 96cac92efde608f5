package postgres

import (
	"context"

	"github.com/cockroachdb/errors"
	"github.com/jackc/pgx/v5"
	"github.com/questline/mint-console/common/errs"
	"github.com/questline/mint-console/modules/minter/entity"
	"github.com/questline/mint-console/pkg/cardano"
)

func (r *Repository) GetPolicy(ctx context.Context, policyId cardano.PolicyID) (*entity.Policy, error) {
	row := r.db.QueryRow(ctx, `
		SELECT policy_id, name, notes, script, expiry_date, royalty_address, royalty_percent, metadata_template, created_at, updated_at
		FROM minter_policies WHERE policy_id = $1
	`, policyId.String())
	policy, err := scanPolicy(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, errors.WithStack(errs.NotFound)
		}
		return nil, errors.Wrap(err, "error during query")
	}
	return policy, nil
}

func (r *Repository) GetPolicies(ctx context.Context) ([]*entity.Policy, error) {
	rows, err := r.db.Query(ctx, `
		SELECT policy_id, name, notes, script, expiry_date, royalty_address, royalty_percent, metadata_template, created_at, updated_at
		FROM minter_policies ORDER BY created_at DESC
	`)
	if err != nil {
		return nil, errors.Wrap(err, "error during query")
	}
	defer rows.Close()

	var policies []*entity.Policy
	for rows.Next() {
		policy, err := scanPolicy(rows)
		if err != nil {
			return nil, errors.Wrap(err, "error during scan")
		}
		policies = append(policies, policy)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, "error during iteration")
	}
	return policies, nil
}

func scanPolicy(row pgx.Row) (*entity.Policy, error) {
	var (
		policy      entity.Policy
		policyIdHex string
		scriptRaw   []byte
		templateRaw []byte
	)
	if err := row.Scan(&policyIdHex, &policy.Name, &policy.Notes, &scriptRaw, &policy.ExpiryDate, &policy.RoyaltyAddress, &policy.RoyaltyPercent, &templateRaw, &policy.CreatedAt, &policy.UpdatedAt); err != nil {
		return nil, err
	}
	policyId, err := cardano.NewPolicyIDFromHex(policyIdHex)
	if err != nil {
		return nil, errors.Wrap(err, "stored policy id is unusable")
	}
	policy.PolicyId = policyId
	if policy.Script, err = unmarshalScript(scriptRaw); err != nil {
		return nil, errors.WithStack(err)
	}
	if policy.MetadataTemplate, err = unmarshalTemplate(templateRaw); err != nil {
		return nil, errors.WithStack(err)
	}
	return &policy, nil
}

func (r *Repository) CreatePolicy(ctx context.Context, policy *entity.Policy) error {
	scriptRaw, err := marshalScript(policy.Script)
	if err != nil {
		return errors.WithStack(err)
	}
	templateRaw, err := marshalTemplate(policy.MetadataTemplate)
	if err != nil {
		return errors.WithStack(err)
	}
	if _, err := r.db.Exec(ctx, `
		INSERT INTO minter_policies (policy_id, name, notes, script, expiry_date, royalty_address, royalty_percent, metadata_template, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, now(), now())
	`, policy.PolicyId.String(), policy.Name, policy.Notes, scriptRaw, policy.ExpiryDate, policy.RoyaltyAddress, policy.RoyaltyPercent, templateRaw); err != nil {
		return errors.Wrap(err, "error during exec")
	}
	return nil
}

func (r *Repository) GetDesign(ctx context.Context, tokenType string) (*entity.Design, error) {
	row := r.db.QueryRow(ctx, `
		SELECT token_type, display_name, description, image_url, media_type, asset_name_prefix, policy_id, custom_attributes, total_minted, created_at, updated_at
		FROM minter_designs WHERE token_type = $1
	`, tokenType)
	design, err := scanDesign(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, errors.WithStack(errs.NotFound)
		}
		return nil, errors.Wrap(err, "error during query")
	}
	return design, nil
}

func (r *Repository) GetDesigns(ctx context.Context) ([]*entity.Design, error) {
	rows, err := r.db.Query(ctx, `
		SELECT token_type, display_name, description, image_url, media_type, asset_name_prefix, policy_id, custom_attributes, total_minted, created_at, updated_at
		FROM minter_designs ORDER BY created_at DESC
	`)
	if err != nil {
		return nil, errors.Wrap(err, "error during query")
	}
	defer rows.Close()

	var designs []*entity.Design
	for rows.Next() {
		design, err := scanDesign(rows)
		if err != nil {
			return nil, errors.Wrap(err, "error during scan")
		}
		designs = append(designs, design)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, "error during iteration")
	}
	return designs, nil
}

func scanDesign(row pgx.Row) (*entity.Design, error) {
	var (
		design        entity.Design
		policyIdHex   string
		attributesRaw []byte
		totalMinted   int64
	)
	if err := row.Scan(&design.TokenType, &design.DisplayName, &design.Description, &design.ImageUrl, &design.MediaType, &design.AssetNamePrefix, &policyIdHex, &attributesRaw, &totalMinted, &design.CreatedAt, &design.UpdatedAt); err != nil {
		return nil, err
	}
	policyId, err := cardano.NewPolicyIDFromHex(policyIdHex)
	if err != nil {
		return nil, errors.Wrap(err, "stored policy id is unusable")
	}
	design.PolicyId = policyId
	design.TotalMinted = uint64(totalMinted)
	if design.CustomAttributes, err = unmarshalAttributes(attributesRaw); err != nil {
		return nil, errors.WithStack(err)
	}
	return &design, nil
}

func (r *Repository) CreateDesign(ctx context.Context, design *entity.Design) error {
	attributesRaw, err := marshalAttributes(design.CustomAttributes)
	if err != nil {
		return errors.WithStack(err)
	}
	if _, err := r.db.Exec(ctx, `
		INSERT INTO minter_designs (token_type, display_name, description, image_url, media_type, asset_name_prefix, policy_id, custom_attributes, total_minted, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, now(), now())
	`, design.TokenType, design.DisplayName, design.Description, design.ImageUrl, design.MediaType, design.AssetNamePrefix, design.PolicyId.String(), attributesRaw, int64(design.TotalMinted)); err != nil {
		return errors.Wrap(err, "error during exec")
	}
	return nil
}

func (r *Repository) GetSnapshot(ctx context.Context, id string) (*entity.Snapshot, error) {
	var (
		snapshot      entity.Snapshot
		recipientsRaw []byte
	)
	err := r.db.QueryRow(ctx, `
		SELECT id, rule, recipients, taken_at FROM minter_snapshots WHERE id = $1
	`, id).Scan(&snapshot.Id, &snapshot.Rule, &recipientsRaw, &snapshot.TakenAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, errors.WithStack(errs.NotFound)
		}
		return nil, errors.Wrap(err, "error during query")
	}
	if snapshot.Recipients, err = unmarshalRecipients(recipientsRaw); err != nil {
		return nil, errors.WithStack(err)
	}
	return &snapshot, nil
}

func (r *Repository) ReplaceSnapshot(ctx context.Context, snapshot *entity.Snapshot) error {
	recipientsRaw, err := marshalRecipients(snapshot.Recipients)
	if err != nil {
		return errors.WithStack(err)
	}
	if _, err := r.db.Exec(ctx, `
		INSERT INTO minter_snapshots (id, rule, recipients, taken_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (id) DO UPDATE SET rule = EXCLUDED.rule, recipients = EXCLUDED.recipients, taken_at = EXCLUDED.taken_at
	`, snapshot.Id, snapshot.Rule, recipientsRaw, snapshot.TakenAt); err != nil {
		return errors.Wrap(err, "error during exec")
	}
	return nil
}

func (r *Repository) AllocateSequence(ctx context.Context, tokenType string) (uint64, error) {
	var totalMinted int64
	err := r.db.QueryRow(ctx, `
		SELECT total_minted FROM minter_designs WHERE token_type = $1
	`, tokenType).Scan(&totalMinted)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, errors.WithStack(errs.NotFound)
		}
		return 0, errors.Wrap(err, "error during query")
	}
	return uint64(totalMinted) + 1, nil
}

func (r *Repository) AdvanceSequence(ctx context.Context, tokenType string, confirmed uint64) error {
	tag, err := r.db.Exec(ctx, `
		UPDATE minter_designs SET total_minted = total_minted + $2, updated_at = now() WHERE token_type = $1
	`, tokenType, int64(confirmed))
	if err != nil {
		return errors.Wrap(err, "error during exec")
	}
	if tag.RowsAffected() == 0 {
		return errors.WithStack(errs.NotFound)
	}
	return nil
}
