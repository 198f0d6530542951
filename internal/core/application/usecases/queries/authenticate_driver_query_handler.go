package queries

import (
	"context"
	"errors"
	"time"

	"dispatch/internal/core/domain/model/driver"

	"gorm.io/gorm"
)

// AuthenticateDriverQueryHandler checks a token against the stored hash.
// Unknown drivers and wrong secrets fail the same way.
type AuthenticateDriverQueryHandler struct {
	db *gorm.DB
}

func NewAuthenticateDriverQueryHandler(db *gorm.DB) AuthenticateDriverQueryHandler {
	return AuthenticateDriverQueryHandler{db: db}
}

func (h AuthenticateDriverQueryHandler) Handle(ctx context.Context, query AuthenticateDriverQuery) (DriverView, error) {
	if err := query.Validate(); err != nil {
		return DriverView{}, err
	}

	driverID, secret, err := driver.ParseAccessToken(query.Token())
	if err != nil {
		return DriverView{}, err
	}

	var row struct {
		Name      string
		Phone     string
		TokenHash []byte
		CreatedAt time.Time
	}
	err = h.db.WithContext(ctx).Table("drivers").
		Select("name, phone, token_hash, created_at").
		Where("id = ?", driverID.Bytes()).
		Take(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return DriverView{}, driver.ErrInvalidAccessToken
	}
	if err != nil {
		return DriverView{}, err
	}

	d, err := driver.RestoreDriver(driverID, row.Name, row.Phone, row.TokenHash, row.CreatedAt.UTC())
	if err != nil {
		return DriverView{}, err
	}
	if err = d.Authenticate(secret); err != nil {
		return DriverView{}, err
	}

	return DriverView{ID: d.ID(), Name: d.Name(), Phone: d.Phone(), CreatedAt: d.CreatedAt()}, nil
}
