package models

import "time"

type NotificationKind string

const (
	NotificationPurchaseConfirmed NotificationKind = "purchase_confirmed"
	NotificationPurchaseRejected  NotificationKind = "purchase_rejected"
	NotificationReferralConfirmed NotificationKind = "referral_purchase_confirmed"
	NotificationReferralRejected  NotificationKind = "referral_purchase_rejected"
)

// Notification is a plain-text email handed to the mail worker.
type Notification struct {
	ID         string           `json:"id"`
	Kind       NotificationKind `json:"kind"`
	PurchaseID int64            `json:"purchase_id"`
	To         string           `json:"to"`
	Subject    string           `json:"subject"`
	Body       string           `json:"body"`
	CreatedAt  time.Time        `json:"created_at"`
}
