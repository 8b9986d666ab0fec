package postgres

import (
	"github.com/atelierhq/atelier/internal/domain"
	"github.com/atelierhq/atelier/internal/repository"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func NewConnection(databaseURL string) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(databaseURL), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		return nil, err
	}

	if err := Migrate(db); err != nil {
		return nil, err
	}

	return db, nil
}

// Migrate creates or updates the entity tables. Shared with the test
// database setup so both run the same schema.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&domain.User{},
		&domain.UserSession{},
		&domain.ClientProfile{},
		&domain.CreativeProfile{},
		&domain.Service{},
		&domain.PortfolioItem{},
		&domain.Booking{},
		&domain.Conversation{},
		&domain.Message{},
		&domain.Notification{},
		&domain.Review{},
	)
}

func NewRepositories(db *gorm.DB) *repository.Repositories {
	return &repository.Repositories{
		User:            NewUserRepository(db),
		Session:         NewSessionRepository(db),
		ClientProfile:   NewClientProfileRepository(db),
		CreativeProfile: NewCreativeProfileRepository(db),
		Service:         NewServiceRepository(db),
		Portfolio:       NewPortfolioRepository(db),
		Booking:         NewBookingRepository(db),
		Conversation:    NewConversationRepository(db),
		Message:         NewMessageRepository(db),
		Notification:    NewNotificationRepository(db),
		Review:          NewReviewRepository(db),
	}
}
