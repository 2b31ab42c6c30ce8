package models

import (
	"log"

	"github.com/storeops/shiftdesk_backend/config"
)

func MigrateTable() {
	db := config.GetDB()

	err := db.AutoMigrate(
		&Store{}, &StoreRolloverDay{}, &StoreShiftTemplate{},
		&Profile{}, &StoreMembership{},
		&Schedule{}, &ScheduledShift{},
		&Shift{}, &DrawerCount{},
		&DailySalesRecord{},
		&SafeCloseout{}, &CloseoutExpense{}, &CloseoutPhoto{},
		&OutboxEvent{},
	)
	if err != nil {
		log.Fatal(err)
	}
}
