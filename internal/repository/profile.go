package repository

import (
	"context"
	"database/sql"
	"fmt"

	"billing/internal/domain"
)

const (
	profileName    = "name"
	profileAddress = "address"
	profilePhone   = "phone"
	profileTaxID   = "gstin"
)

func (c conn) LoadProfile(ctx context.Context) (domain.BusinessProfile, error) {
	rows, err := c.query(ctx, `SELECT key, value FROM business_profile`)
	if err != nil {
		return domain.BusinessProfile{}, fmt.Errorf("load business profile: %w", err)
	}
	defer rows.Close()

	var profile domain.BusinessProfile
	for rows.Next() {
		var (
			key   string
			value sql.NullString
		)
		if err := rows.Scan(&key, &value); err != nil {
			return domain.BusinessProfile{}, fmt.Errorf("scan business profile: %w", err)
		}
		switch key {
		case profileName:
			profile.Name = value.String
		case profileAddress:
			profile.Address = value.String
		case profilePhone:
			profile.Phone = value.String
		case profileTaxID:
			profile.TaxID = value.String
		}
	}
	if err := rows.Err(); err != nil {
		return domain.BusinessProfile{}, fmt.Errorf("iterate business profile: %w", err)
	}
	return profile, nil
}

func (c conn) SaveProfile(ctx context.Context, profile domain.BusinessProfile) error {
	values := []struct{ key, value string }{
		{profileName, profile.Name},
		{profileAddress, profile.Address},
		{profilePhone, profile.Phone},
		{profileTaxID, profile.TaxID},
	}
	for _, kv := range values {
		if _, err := c.exec(ctx, `
			INSERT INTO business_profile (key, value) VALUES (?, ?)
			ON CONFLICT (key) DO UPDATE SET value = excluded.value
		`, kv.key, kv.value); err != nil {
			return fmt.Errorf("save business profile %s: %w", kv.key, err)
		}
	}
	return nil
}
