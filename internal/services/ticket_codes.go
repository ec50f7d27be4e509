package service

import (
	"strconv"
	"unicode/utf8"

	pkgerrors "github.com/honeynil/raffle-service/pkg/errors"
)

// ticketBase offsets every raffle's correlatives so codes start at 1001.
const ticketBase = 1000

// TicketCodes builds quantity codes for a purchase whose issuance starts
// right after issuedBefore. Codes are the first character of the national id,
// the last character of the operation number and the correlative.
func TicketCodes(nationalID, operationNumber string, issuedBefore, quantity int) ([]string, error) {
	if nationalID == "" {
		return nil, pkgerrors.NewFieldError("nationalId", pkgerrors.ErrValidationFailed)
	}
	if operationNumber == "" {
		return nil, pkgerrors.NewFieldError("operationNumber", pkgerrors.ErrValidationFailed)
	}
	if quantity < 1 || issuedBefore < 0 {
		return nil, pkgerrors.NewFieldError("quantity", pkgerrors.ErrValidationFailed)
	}

	first, _ := utf8.DecodeRuneInString(nationalID)
	last, _ := utf8.DecodeLastRuneInString(operationNumber)
	prefix := string(first) + string(last)

	base := ticketBase + issuedBefore
	codes := make([]string, 0, quantity)
	for i := 0; i < quantity; i++ {
		codes = append(codes, prefix+strconv.Itoa(base+1+i))
	}
	return codes, nil
}
