package main

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"

	"consignhub/backend/internal/config"
	"consignhub/backend/internal/domain"
	"consignhub/backend/internal/store"
	"consignhub/backend/internal/xid"
)

type shopBootstrapper interface {
	GetOrganizationBySlug(ctx context.Context, slug string) (*domain.Organization, error)
	CreateOrganization(ctx context.Context, org domain.Organization) (*domain.Organization, error)
	CreateUser(ctx context.Context, user domain.UserAccount) error
}

// bootstrapShop creates the first shop and its admin account in an empty
// database. It does nothing when BOOTSTRAP_SHOP_SLUG is unset or the shop
// already exists.
func bootstrapShop(ctx context.Context, st shopBootstrapper, cfg config.Config, now time.Time) error {
	if cfg.BootstrapShopSlug == "" {
		return nil
	}
	_, err := st.GetOrganizationBySlug(ctx, cfg.BootstrapShopSlug)
	if err == nil {
		return nil
	}
	if !errors.Is(err, store.ErrNotFound) {
		return err
	}
	if len(cfg.BootstrapAdminPassword) < 8 {
		return fmt.Errorf("BOOTSTRAP_ADMIN_PASSWORD must be at least 8 characters")
	}
	if len(cfg.BootstrapAdminUser) < 4 {
		return fmt.Errorf("BOOTSTRAP_ADMIN_USER must be at least 4 characters")
	}

	name := cfg.BootstrapShopName
	if name == "" {
		name = cfg.BootstrapShopSlug
	}
	org, err := st.CreateOrganization(ctx, domain.Organization{
		ID:                  xid.New("org"),
		Name:                name,
		Slug:                cfg.BootstrapShopSlug,
		DefaultSplitPercent: decimal.NewFromInt(50),
		Currency:            "USD",
		CreatedAt:           now,
	})
	if err != nil {
		return fmt.Errorf("create shop: %w", err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(cfg.BootstrapAdminPassword), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hash admin password: %w", err)
	}
	if err := st.CreateUser(ctx, domain.UserAccount{
		Username:       cfg.BootstrapAdminUser,
		Password:       string(hash),
		Role:           domain.RoleAdmin,
		OrganizationID: org.ID,
		Active:         true,
		CreatedAt:      now,
	}); err != nil {
		return fmt.Errorf("create admin: %w", err)
	}

	logrus.WithFields(logrus.Fields{
		"component": "bootstrap",
		"shop":      org.Slug,
		"admin":     cfg.BootstrapAdminUser,
	}).Info("created shop")
	return nil
}
