package models

import (
	"time"
)

type User struct {
	ID          uint      `json:"id" gorm:"primaryKey"`
	Username    string    `json:"username" gorm:"uniqueIndex;not null"`
	FullName    string    `json:"full_name" gorm:"not null"`
	PhoneNumber string    `json:"phone_number" gorm:"uniqueIndex;not null"`
	Password    string    `json:"-" gorm:"not null"`
	Disabled    bool      `json:"disabled" gorm:"default:false"`
	CreatedAt   time.Time `json:"created_at" gorm:"autoCreateTime"`
}

type UserStats struct {
	ID                    uint    `json:"-" gorm:"primaryKey"`
	UserID                uint    `json:"-" gorm:"uniqueIndex;not null"`
	TotalInvoicesSent     int     `json:"total_invoices_sent"`
	TotalInvoicesReceived int     `json:"total_invoices_received"`
	TotalAmountPaidIn     float64 `json:"total_amount_paid_in"`
	TotalAmountPaidOut    float64 `json:"total_amount_paid_out"`
}

type RegisterRequest struct {
	FullName    string `json:"full_name"`
	PhoneNumber string `json:"phone_number"`
	Password    string `json:"password"`
}

type LoginRequest struct {
	PhoneNumber string `json:"phone_number"`
	Password    string `json:"password"`
}

type LoginResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	Username    string `json:"username"`
	PhoneNumber string `json:"phone_number"`
}

type UserResponse struct {
	ID          uint   `json:"id"`
	Username    string `json:"username"`
	FullName    string `json:"full_name"`
	PhoneNumber string `json:"phone_number"`
}
