package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"merchant-backoffice/internal/models"
)

// SignatureParty resolves the company and agent display names for a
// signature from its originating merchant application or prospect record.
// Absent records fall back to "Merchant Application" / "Agent".
func (d *DB) SignatureParty(ctx context.Context, sig models.SignatureCapture) (models.SignatureParty, error) {
	party := models.SignatureParty{CompanyName: "Merchant Application", AgentName: "Agent"}

	if sig.MerchantApplicationID != nil {
		query := `SELECT business_name, agent_name FROM merchant_applications WHERE id = $1`
		var business, agent sql.NullString
		err := d.Pool.QueryRow(ctx, query, *sig.MerchantApplicationID).Scan(&business, &agent)
		if err != nil && !errors.Is(err, pgx.ErrNoRows) {
			return party, fmt.Errorf("failed to look up merchant application: %w", err)
		}
		if business.Valid && business.String != "" {
			party.CompanyName = business.String
		}
		if agent.Valid && agent.String != "" {
			party.AgentName = agent.String
		}
		return party, nil
	}

	if sig.ProspectID != nil {
		query := `SELECT company_name, assigned_agent FROM prospects WHERE id = $1`
		var company, agent sql.NullString
		err := d.Pool.QueryRow(ctx, query, *sig.ProspectID).Scan(&company, &agent)
		if err != nil && !errors.Is(err, pgx.ErrNoRows) {
			return party, fmt.Errorf("failed to look up prospect: %w", err)
		}
		if company.Valid && company.String != "" {
			party.CompanyName = company.String
		}
		if agent.Valid && agent.String != "" {
			party.AgentName = agent.String
		}
	}

	return party, nil
}
