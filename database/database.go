package database

import (
	"time"

	config "github.com/anjiri1684/matrix_mlm/configs"
	"github.com/anjiri1684/matrix_mlm/models"
	log "github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var DB *gorm.DB

// GormConfig is shared by the postgres connection and the test stores.
func GormConfig() *gorm.Config {
	return &gorm.Config{
		PrepareStmt:                              false,
		SkipDefaultTransaction:                   true,
		DisableForeignKeyConstraintWhenMigrating: true,
		DisableNestedTransaction:                 true,
		TranslateError:                           true,
	}
}

func ConnectDB() {
	var err error
	dsn := config.Config("DATABASE_URL")

	DB, err = gorm.Open(postgres.Open(dsn), GormConfig())
	if err != nil {
		log.Fatalf("🔥 Failed to connect to database: %v", err)
	}

	log.Info("✅ Database connected successfully")
}

func Migrate() {
	if err := AutoMigrate(DB); err != nil {
		log.Fatalf("🔥 Failed to migrate database: %v", err)
	}
	log.Info("✅ Database migration successful")
}

func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.Member{},
		&models.Counter{},
		&models.Wallet{},
		&models.WalletEntry{},
		&models.Withdrawal{},
		&models.RankHistory{},
		&models.Reward{},
		&models.ActivationPayment{},
	)
}

// SeedRoot creates the root of the matrix: an active admin member holding the
// base sequence code, plus the member counter starting at that base.
func SeedRoot() {
	if err := SeedRootMember(DB, config.Config("ADMIN_FULL_NAME"), config.Config("ADMIN_EMAIL"),
		config.Config("ADMIN_MOBILE"), config.Config("ADMIN_PASSWORD")); err != nil {
		log.Fatalf("🔥 Failed to seed root member: %v", err)
	}
}

func SeedRootMember(db *gorm.DB, fullName, email, mobile, password string) error {
	biz := config.Business
	rootCode := biz.RootMemberCode()

	return db.Transaction(func(tx *gorm.DB) error {
		counter := models.Counter{Name: models.MemberCounter, Seq: biz.SequenceBase}
		if err := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&counter).Error; err != nil {
			return err
		}

		var count int64
		if err := tx.Model(&models.Member{}).Where("member_code = ?", rootCode).Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			log.WithField("member_code", rootCode).Info("Root member already exists.")
			return nil
		}

		hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
		if err != nil {
			return err
		}

		now := time.Now()
		root := models.Member{
			MemberCode:  rootCode,
			Seq:         biz.SequenceBase,
			FullName:    fullName,
			Email:       email,
			Mobile:      mobile,
			Password:    string(hashedPassword),
			Role:        models.RoleAdmin,
			IsActive:    true,
			ActivatedAt: &now,
			Rank:        biz.InitialRank().Name,
		}
		if err := tx.Create(&root).Error; err != nil {
			return err
		}

		log.WithField("member_code", rootCode).Info("✅ Root member seeded successfully")
		return nil
	})
}
