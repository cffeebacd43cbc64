package db

import (
	"fmt"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

type Store struct {
	DB *gorm.DB
}

func NewStore(dsn string) (*Store, error) {
	if dsn == "" {
		return nil, fmt.Errorf("postgres dsn is required")
	}
	gdb, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}
	if err := Migrate(gdb); err != nil {
		return nil, err
	}
	return &Store{DB: gdb}, nil
}

func Migrate(gdb *gorm.DB) error {
	return gdb.AutoMigrate(
		&VendorModel{},
		&VendorProductModel{},
		&AeoAuditModel{},
		&AIMentionScanModel{},
		&AeoReportModel{},
		&DigestSendModel{},
	)
}
