package repository

import (
	"time"

	"github.com/finboard/warehouse-etl/internal/model"
)

// CustomerEntity is a dimension row. The business key is the customer id;
// the warehouse enforces uniqueness on it.
type CustomerEntity struct {
	CustomerID       string    `db:"customer_id"       gorm:"primaryKey;column:customer_id"`
	Name             string    `db:"customer_name"     gorm:"column:customer_name"`
	RegistrationDate time.Time `db:"registration_date" gorm:"column:registration_date;not null"`
	Tier             string    `db:"customer_tier"     gorm:"column:customer_tier"`
	Email            string    `db:"email"             gorm:"column:email"`
	IsActive         bool      `db:"is_active"         gorm:"column:is_active;default:true"`
}

func (CustomerEntity) TableName() string {
	return "dim_customers"
}

func toCustomerEntity(m *model.Customer) *CustomerEntity {
	if m == nil {
		return nil
	}
	return &CustomerEntity{
		CustomerID:       m.CustomerID,
		Name:             m.Name,
		RegistrationDate: m.RegistrationDate,
		Tier:             string(m.Tier),
		Email:            m.Email,
		IsActive:         m.Active,
	}
}

func toCustomerModel(e *CustomerEntity) *model.Customer {
	if e == nil {
		return nil
	}
	return &model.Customer{
		CustomerID:       e.CustomerID,
		Name:             e.Name,
		RegistrationDate: e.RegistrationDate,
		Tier:             model.CustomerTier(e.Tier),
		Email:            e.Email,
		Active:           e.IsActive,
	}
}
