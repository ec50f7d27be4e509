package handler

import (
	"net/mail"
	"regexp"
	"strings"

	"github.com/honeynil/raffle-service/internal/models"
	pkgerrors "github.com/honeynil/raffle-service/pkg/errors"
)

var (
	nationalIDPattern = regexp.MustCompile(`^\d{8,9}$`)
	phonePattern      = regexp.MustCompile(`^\d{9}$`)
)

// validatePurchase checks the request shape and normalizes it into a
// service request. Business rules are left to the service.
func validatePurchase(raffleID int64, req purchaseRequest) (models.PurchaseRequest, error) {
	name := strings.ToUpper(strings.TrimSpace(req.Name))
	nationalID := strings.TrimSpace(req.NationalID)
	phone := strings.TrimSpace(req.Phone)
	email := strings.TrimSpace(req.Email)
	operationNumber := strings.TrimSpace(req.OperationNumber)

	switch {
	case name == "":
		return models.PurchaseRequest{}, pkgerrors.NewFieldError("name", pkgerrors.ErrValidationFailed)
	case !nationalIDPattern.MatchString(nationalID):
		return models.PurchaseRequest{}, pkgerrors.NewFieldError("nationalId", pkgerrors.ErrValidationFailed)
	case !phonePattern.MatchString(phone):
		return models.PurchaseRequest{}, pkgerrors.NewFieldError("phone", pkgerrors.ErrValidationFailed)
	case !validEmail(email):
		return models.PurchaseRequest{}, pkgerrors.NewFieldError("email", pkgerrors.ErrValidationFailed)
	case req.Quantity < 1:
		return models.PurchaseRequest{}, pkgerrors.NewFieldError("quantity", pkgerrors.ErrValidationFailed)
	case operationNumber == "":
		return models.PurchaseRequest{}, pkgerrors.NewFieldError("operationNumber", pkgerrors.ErrValidationFailed)
	}

	return models.PurchaseRequest{
		RaffleID:        raffleID,
		Name:            name,
		NationalID:      nationalID,
		Phone:           phone,
		Email:           email,
		Quantity:        req.Quantity,
		OperationNumber: operationNumber,
		ReferralCode:    req.ReferralCode,
	}, nil
}

func validEmail(addr string) bool {
	if addr == "" {
		return false
	}
	parsed, err := mail.ParseAddress(addr)
	return err == nil && parsed.Address == addr
}
