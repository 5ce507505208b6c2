package http

import (
	"gorm.io/gorm"

	"github.com/orris-inc/tracksync/internal/domain/customerrequest"
	"github.com/orris-inc/tracksync/internal/infrastructure/repository"
	"github.com/orris-inc/tracksync/internal/shared/logger"
)

// repositories holds all repository instances used by the application.
type repositories struct {
	customerRequestRepo customerrequest.Repository
}

func newRepositories(db *gorm.DB, log logger.Interface) *repositories {
	return &repositories{
		customerRequestRepo: repository.NewCustomerRequestRepository(db, log),
	}
}
