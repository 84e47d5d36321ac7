package domain

import "time"

// Contact is one named contact role on a dealer account.
type Contact struct {
	Name   string `json:"name" gorm:"type:varchar(191)"`
	Email  string `json:"email" gorm:"type:varchar(191)" binding:"omitempty,email"`
	Mobile string `json:"mobile" gorm:"type:varchar(50)"`
	Phone  string `json:"phone" gorm:"type:varchar(50)"`
}

type DealerProfile struct {
	UserID                 uint64    `json:"-" gorm:"primaryKey;autoIncrement:false"`
	DealerGroup            string    `json:"dealerGroup" gorm:"type:varchar(191)"`
	CompanyName            string    `json:"companyName" gorm:"type:varchar(191)"`
	BusinessName           string    `json:"businessName" gorm:"type:varchar(191)"`
	DeliveryAddress        string    `json:"deliveryAddress" gorm:"type:text"`
	Suburb                 string    `json:"suburb" gorm:"type:varchar(100)"`
	State                  string    `json:"state" gorm:"type:varchar(50)"`
	PostCode               string    `json:"postCode" gorm:"type:varchar(20)"`
	OperatingHoursWeekday  string    `json:"operatingHoursWeekday" gorm:"type:varchar(100)"`
	OperatingHoursSaturday string    `json:"operatingHoursSaturday" gorm:"type:varchar(100)"`
	AccountsPayable        Contact   `json:"accountsPayable" gorm:"embedded;embeddedPrefix:accounts_payable_"`
	PartsManager           Contact   `json:"partsManager" gorm:"embedded;embeddedPrefix:parts_manager_"`
	PartsInterpreterFront  Contact   `json:"partsInterpreterFront" gorm:"embedded;embeddedPrefix:parts_interpreter_front_"`
	PartsInterpreterBack   Contact   `json:"partsInterpreterBack" gorm:"embedded;embeddedPrefix:parts_interpreter_back_"`
	PartsGroup             Contact   `json:"partsGroup" gorm:"embedded;embeddedPrefix:parts_group_"`
	UpdatedAt              time.Time `json:"updatedAt" gorm:"autoUpdateTime"`
}
