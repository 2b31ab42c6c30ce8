// seed-admin creates or updates the bootstrap manager account so a fresh
// deployment has a working manager session before any other data exists.
//
// Usage:
//
//	DB_USER=... DB_PASSWORD=... DB_HOST=... DB_PORT=... DB_NAME=... \
//	  SEED_MANAGER_PASSWORD=... go run ./cmd/seed-admin
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/storeops/shiftdesk_backend/config"
	"github.com/storeops/shiftdesk_backend/models"
	"github.com/storeops/shiftdesk_backend/utils"
	"gorm.io/gorm"
)

const managerName = "ShiftDesk Admin"

func main() {
	ctx := context.Background()
	config.ConnectDatabaseWithRetry()
	db := config.GetDB()
	if db == nil {
		fmt.Fprintln(os.Stderr, "database not initialized (config.GetDB returned nil). Set DB_* env vars.")
		os.Exit(1)
	}

	password := os.Getenv("SEED_MANAGER_PASSWORD")
	if password == "" {
		fmt.Fprintln(os.Stderr, "SEED_MANAGER_PASSWORD is required")
		os.Exit(1)
	}

	// Store-scope callbacks are bypassed; this runs before any store exists.
	ctx = utils.SetSkipStoreScopeInContext(ctx, true)

	models.MigrateTable()

	hashed, err := utils.HashPin(password)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to hash password: %v\n", err)
		os.Exit(1)
	}

	var existing models.Profile
	err = db.WithContext(ctx).Where("display_name = ? AND is_manager = 1", managerName).First(&existing).Error
	if err != nil {
		if err != gorm.ErrRecordNotFound {
			fmt.Fprintf(os.Stderr, "failed to lookup profile: %v\n", err)
			os.Exit(1)
		}
		profile := models.Profile{
			DisplayName:  managerName,
			IsActive:     true,
			IsManager:    true,
			PasswordHash: string(hashed),
		}
		if err := db.WithContext(ctx).Create(&profile).Error; err != nil {
			fmt.Fprintf(os.Stderr, "failed to create manager: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("created manager profile id=%d\n", profile.ID)
		return
	}

	if err := db.WithContext(ctx).Model(&existing).
		Update("password_hash", string(hashed)).Error; err != nil {
		fmt.Fprintf(os.Stderr, "failed to update manager password: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("updated manager profile id=%d\n", existing.ID)
}
