package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/shubhamchhangani/hindu-matrimony/pkg/enums"
)

// Profile holds the matrimonial biodata for a single user.
type Profile struct {
	ID            uuid.UUID    `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	UserID        uuid.UUID    `gorm:"column:user_id;type:uuid;not null;uniqueIndex"`
	FullName      string       `gorm:"column:full_name;not null"`
	Gender        enums.Gender `gorm:"column:gender;type:text;not null"`
	DateOfBirth   time.Time    `gorm:"column:date_of_birth;type:date;not null"`
	Gotra         string       `gorm:"column:gotra;not null"`
	Caste         *string      `gorm:"column:caste"`
	Phone         *string      `gorm:"column:phone"`
	City          *string      `gorm:"column:city"`
	State         *string      `gorm:"column:state"`
	Address       *string      `gorm:"column:address"`
	Education     *string      `gorm:"column:education"`
	Occupation    *string      `gorm:"column:occupation"`
	AnnualIncome  *string      `gorm:"column:annual_income"`
	FatherName    *string      `gorm:"column:father_name"`
	MotherName    *string      `gorm:"column:mother_name"`
	MaritalStatus *string      `gorm:"column:marital_status"`
	About         *string      `gorm:"column:about"`
	CreatedAt     time.Time    `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt     time.Time    `gorm:"column:updated_at;autoUpdateTime"`
}
