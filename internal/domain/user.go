package domain

import "time"

type User struct {
	ID          uint64    `json:"id" gorm:"primaryKey;autoIncrement"`
	Email       string    `json:"email" gorm:"type:varchar(191);not null;uniqueIndex"`
	DisplayName string    `json:"displayName" gorm:"type:varchar(191);not null"`
	Phone       string    `json:"phone" gorm:"type:varchar(50)"`
	Role        Role      `json:"role" gorm:"type:enum('dealer','warehouse_manager','administrator');not null;index"`
	CreatedAt   time.Time `json:"createdAt" gorm:"autoCreateTime"`
}

// Session is an authenticated request identity. The cart belongs to the
// session, orders belong to the user.
type Session struct {
	ID   string
	User User
}
