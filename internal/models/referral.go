package models

import "time"

type Referral struct {
	ID          int64      `json:"id"`
	Name        string     `json:"name"`
	NationalID  string     `json:"nationalId"`
	Phone       string     `json:"phone"`
	Email       string     `json:"email"`
	Code        string     `json:"code"`
	ActiveFrom  *time.Time `json:"activeFrom,omitempty"`
	ActiveUntil *time.Time `json:"activeUntil,omitempty"`
	CreatedAt   time.Time  `json:"createdAt"`
}

type ReferralCheck struct {
	Valid  bool   `json:"valid"`
	Reason string `json:"reason,omitempty"`
}
