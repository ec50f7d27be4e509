package notify

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/honeynil/raffle-service/internal/models"
)

// ReferralCommissionPercent is the share owed to a referral owner per sale.
const ReferralCommissionPercent = 18

type Templates struct {
	Brand   string
	Contact string
	now     func() time.Time
}

func NewTemplates(brand, contact string) Templates {
	return Templates{Brand: brand, Contact: contact, now: time.Now}
}

func (t Templates) Confirmed(p *models.Purchase, raffleTitle string, ref *models.Referral) (models.Notification, *models.Notification) {
	title := orUntitled(raffleTitle)
	tickets := "-"
	if len(p.Tickets) > 0 {
		tickets = strings.Join(p.Tickets, ", ")
	}

	body := fmt.Sprintf(`Hello %s,

Your payment has been confirmed.
You are now taking part in the raffle: %s.
Ticket numbers: %s.
Amount paid: S/. %s
Registered on: %s

Thank you for trusting %s. Good luck in the draw, we will announce the date soon.
%s`, p.Name, title, tickets, p.Amount.StringFixed(2), formatDate(p.CreatedAt), t.Brand, t.signature())
	buyer := t.build(models.NotificationPurchaseConfirmed, p, p.Email, "Purchase confirmed - "+t.Brand, body)

	if ref == nil {
		return buyer, nil
	}
	refBody := fmt.Sprintf(`Congratulations %s,

Customer %s bought raffle tickets using your referral code, earning you %d%% of this sale.
Raffle: %s.
Tickets bought: %d.
Registered on: %s

You will be rewarded soon.
%s`, ref.Name, p.Name, ReferralCommissionPercent, title, p.Quantity, formatDate(p.CreatedAt), t.signature())
	referral := t.build(models.NotificationReferralConfirmed, p, ref.Email, "Purchase confirmed (referral) - "+t.Brand, refBody)
	return buyer, &referral
}

func (t Templates) Rejected(p *models.Purchase, raffleTitle string, ref *models.Referral) (models.Notification, *models.Notification) {
	title := orUntitled(raffleTitle)

	body := fmt.Sprintf(`Dear %s,

Your ticket purchase for the raffle %s could not be processed because the operation number and/or the paid amount did not match.

You can review it and try again. Our team is ready to help if you need it.
%s`, p.Name, title, t.signature())
	buyer := t.build(models.NotificationPurchaseRejected, p, p.Email, "Purchase rejected - "+t.Brand, body)

	if ref == nil {
		return buyer, nil
	}
	refBody := fmt.Sprintf(`Hello %s,

The ticket purchase for the raffle %s made with your referral code was rejected because the operation number and/or the paid amount did not match.
Customer: %s
Tickets: %d.
Registered on: %s
%s`, ref.Name, title, p.Name, p.Quantity, formatDate(p.CreatedAt), t.signature())
	referral := t.build(models.NotificationReferralRejected, p, ref.Email, "Referral purchase rejected - "+t.Brand, refBody)
	return buyer, &referral
}

func (t Templates) build(kind models.NotificationKind, p *models.Purchase, to, subject, body string) models.Notification {
	now := time.Now
	if t.now != nil {
		now = t.now
	}
	return models.Notification{
		ID:         uuid.NewString(),
		Kind:       kind,
		PurchaseID: p.ID,
		To:         to,
		Subject:    subject,
		Body:       body,
		CreatedAt:  now().UTC(),
	}
}

func (t Templates) signature() string {
	if t.Contact == "" {
		return "\n" + t.Brand
	}
	return fmt.Sprintf("\n%s\n%s", t.Brand, t.Contact)
}

func orUntitled(title string) string {
	if title == "" {
		return "Untitled"
	}
	return title
}

func formatDate(t time.Time) string {
	return t.Format("02/01/2006")
}
