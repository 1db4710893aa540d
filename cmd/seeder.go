package cmd

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/frahmantamala/ewaste-management/internal/auth"
	"github.com/frahmantamala/ewaste-management/internal/batch"
	batchPostgres "github.com/frahmantamala/ewaste-management/internal/batch/postgres"
	"github.com/frahmantamala/ewaste-management/internal/core/catalog"
	userDatamodel "github.com/frahmantamala/ewaste-management/internal/core/datamodel/user"
	coreuser "github.com/frahmantamala/ewaste-management/internal/core/user"
	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
	"gorm.io/gorm"
)

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Seed the database with sample data",
	Long:  `Seed the database with sample data for development and testing purposes.`,
	Run: func(cmd *cobra.Command, args []string) {
		cfg, err := loadConfig(configPath)
		if err != nil {
			log.Fatalf("failed to load config: %v", err)
		}

		db, err := initDB(cfg.Database)
		if err != nil {
			log.Fatalf("failed to init db: %v", err)
		}
		defer db.Close()

		gdb, err := initGorm(db)
		if err != nil {
			log.Fatalf("failed to init gorm: %v", err)
		}

		if err := seed(context.Background(), gdb, cfg.Security.BCryptCost, clearData); err != nil {
			log.Fatalf("seed failed: %v", err)
		}
	},
}

type seedUser struct {
	Email       string
	FirstName   string
	LastName    string
	Role        coreuser.Role
	Org         string
	Permissions []coreuser.Permission
}

var seedUsers = []seedUser{
	{Email: "partner@ewaste.local", FirstName: "Dana", LastName: "Partner", Role: coreuser.RolePartner, Org: "GE Aviation"},
	{Email: "admin@ewaste.local", FirstName: "Alex", LastName: "Admin", Role: coreuser.RoleAdmin,
		Permissions: []coreuser.Permission{coreuser.PermManageItems, coreuser.PermManageBatches, coreuser.PermSchedulePickups, coreuser.PermViewReports}},
	{Email: "super@ewaste.local", FirstName: "Sam", LastName: "Super", Role: coreuser.RoleSuperAdmin},
}

const seedPassword = "password"

func seed(ctx context.Context, db *gorm.DB, cost int, clear bool) error {
	if clear {
		for _, table := range []string{"batch_items", "batches", "user_permissions", "users"} {
			if err := db.WithContext(ctx).Exec("DELETE FROM " + table).Error; err != nil {
				return fmt.Errorf("clear %s: %w", table, err)
			}
		}
		fmt.Println("Cleared existing users and batches")
	}

	permIDs, err := seedPermissions(ctx, db)
	if err != nil {
		return err
	}

	hash, err := auth.HashPassword(seedPassword, cost)
	if err != nil {
		return fmt.Errorf("hash seed password: %w", err)
	}

	var partnerID, adminID int64
	for _, su := range seedUsers {
		id, err := seedAccount(ctx, db, su, hash, permIDs)
		if err != nil {
			return err
		}
		switch su.Role {
		case coreuser.RolePartner:
			partnerID = id
		case coreuser.RoleAdmin:
			adminID = id
		}
	}

	return seedBatches(ctx, db, partnerID, adminID)
}

func seedPermissions(ctx context.Context, db *gorm.DB) (map[coreuser.Permission]int64, error) {
	ids := make(map[coreuser.Permission]int64, len(coreuser.Permissions))
	for _, p := range coreuser.Permissions {
		row := userDatamodel.Permission{Name: string(p), Description: string(p)}
		if err := db.WithContext(ctx).Where("name = ?", row.Name).FirstOrCreate(&row).Error; err != nil {
			return nil, fmt.Errorf("seed permission %s: %w", p, err)
		}
		ids[p] = row.ID
	}
	return ids, nil
}

func seedAccount(ctx context.Context, db *gorm.DB, su seedUser, hash string, permIDs map[coreuser.Permission]int64) (int64, error) {
	var row userDatamodel.User
	err := db.WithContext(ctx).Where("email = ?", su.Email).First(&row).Error
	switch {
	case err == nil:
		fmt.Println("user already exists; will ensure permissions:", su.Email)
	case errors.Is(err, gorm.ErrRecordNotFound):
		row = userDatamodel.User{
			Email:            su.Email,
			PasswordHash:     hash,
			FirstName:        su.FirstName,
			LastName:         su.LastName,
			Role:             string(su.Role),
			OrganizationName: su.Org,
			OrganizationType: string(coreuser.OrgCorporate),
			IsActive:         true,
		}
		if err := db.WithContext(ctx).Create(&row).Error; err != nil {
			return 0, fmt.Errorf("insert user %s: %w", su.Email, err)
		}
		fmt.Println("Seeded user:", su.Email)
	default:
		return 0, fmt.Errorf("lookup user %s: %w", su.Email, err)
	}

	for _, p := range su.Permissions {
		grant := userDatamodel.UserPermission{UserID: row.ID, PermissionID: permIDs[p]}
		if err := db.WithContext(ctx).
			Where("user_id = ? AND permission_id = ?", grant.UserID, grant.PermissionID).
			FirstOrCreate(&grant).Error; err != nil {
			return 0, fmt.Errorf("grant %s to %s: %w", p, su.Email, err)
		}
	}
	return row.ID, nil
}

func seedBatches(ctx context.Context, db *gorm.DB, partnerID, adminID int64) error {
	var count int64
	if err := db.WithContext(ctx).Table("batches").Count(&count).Error; err != nil {
		return fmt.Errorf("count batches: %w", err)
	}
	if count > 0 {
		fmt.Println("batches already present; skipping sample batches")
		return nil
	}

	repo := batchPostgres.NewBatchRepository(db)
	keys := batch.NewKeyGenerator()
	now := time.Now().UTC()

	samples := []struct {
		dto   batch.CreateBatchDTO
		items []batch.Item
	}{
		{
			dto: batch.CreateBatchDTO{Name: "GE Aviation IT", ContactPerson: "Dana Partner", PickupLocation: "Cincinnati, OH", Department: "IT"},
			items: []batch.Item{
				sampleItem("ThinkPad T14", 12, catalog.ConditionNonWorking, catalog.StockTypeIT, "60", "2.5", catalog.HazardLow),
				sampleItem("Dell UltraSharp 27", 4, catalog.ConditionBroken, catalog.StockTypeElectronic, "15", "1.2", catalog.HazardMedium),
			},
		},
		{
			dto: batch.CreateBatchDTO{Name: "Mercy Health Lab", ContactPerson: "Dana Partner", PickupLocation: "Dayton, OH", Department: "Lab"},
		},
	}

	for _, s := range samples {
		requestDate := now.Truncate(24 * time.Hour)
		b := batch.NewBatch(keys.Generate(s.dto.Name, s.dto.PickupLocation, requestDate), partnerID, s.dto, requestDate)
		if err := repo.Create(ctx, b); err != nil {
			return fmt.Errorf("create sample batch %s: %w", s.dto.Name, err)
		}
		if len(s.items) > 0 {
			if err := b.AddItems(adminID, s.items, now); err != nil {
				return err
			}
			if err := repo.Save(ctx, b); err != nil {
				return fmt.Errorf("add sample items to %s: %w", b.BatchKey, err)
			}
		}
		fmt.Println("Seeded batch:", b.BatchKey)
	}
	return nil
}

func sampleItem(name string, qty int, cond catalog.Condition, stock catalog.StockType, value, co2 string, hazard catalog.HazardLevel) batch.Item {
	return batch.Item{
		Name:           name,
		Quantity:       qty,
		Condition:      cond,
		StockType:      stock,
		EstimatedValue: decimal.RequireFromString(value),
		CO2Estimate:    decimal.RequireFromString(co2),
		HazardLevel:    hazard,
		Priority:       catalog.PriorityMedium,
	}
}
