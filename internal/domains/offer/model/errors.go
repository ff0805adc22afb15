package model

import "errors"

const (
	ErrCodeOfferNotFound = "OFR001"
	ErrCodeOfferInvalid  = "OFR002"
)

var (
	ErrOfferNotFound = errors.New("offer not found")
)
