package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// SkidInfo is everything the verification screen needs about one skid.
type SkidInfo struct {
	SkidID       string          `json:"skidId"`
	TxnID        string          `json:"txnId"`
	FBPN         string          `json:"fbpn"`
	MFPN         string          `json:"mfpn"`
	Project      string          `json:"project"`
	SKU          string          `json:"sku"`
	ExpectedQty  decimal.Decimal `json:"expectedQty"`
	PONumber     string          `json:"poNumber"`
	BOLNumber    string          `json:"bolNumber"`
	Manufacturer string          `json:"manufacturer"`
	PushNumber   string          `json:"pushNumber"`
	UOM          string          `json:"uom"`
	AssetType    string          `json:"assetType"`
	// Sources records which table supplied each enriched field.
	Sources map[string]string `json:"sources,omitempty"`
}

// ItemDetails is the Item_Master resolution for a SKU/FBPN pair.
type ItemDetails struct {
	UOM       string `json:"uom"`
	AssetType string `json:"assetType"`
	MatchedBy string `json:"matchedBy"` // "sku", "fbpn" or "" for the default
}

// Box is one physical box on a skid; it only lives for label rendering.
type Box struct {
	SkidID       string          `json:"skidId"`
	FBPN         string          `json:"fbpn"`
	Manufacturer string          `json:"manufacturer"`
	Project      string          `json:"project"`
	Qty          decimal.Decimal `json:"qty"`
	ContainerID  string          `json:"containerId" validate:"required"`
	PushNumber   string          `json:"pushNumber"`
	UOM          string          `json:"uom"`
}

// VerificationPayload is what the client submits for one verification.
// The acting user and the timestamp are never taken from here.
type VerificationPayload struct {
	SkidID         string          `json:"skidId" validate:"required"`
	TxnID          string          `json:"txnId"`
	BOLNumber      string          `json:"bolNumber"`
	PONumber       string          `json:"poNumber"`
	SKU            string          `json:"sku"`
	FBPN           string          `json:"fbpn"`
	MFPN           string          `json:"mfpn"`
	Manufacturer   string          `json:"manufacturer"`
	AssetType      string          `json:"assetType"`
	UOM            string          `json:"uom"`
	ExpectedQty    decimal.Decimal `json:"expectedQty"`
	ActualQty      decimal.Decimal `json:"actualQty"`
	BoxLabels      int             `json:"boxLabels" validate:"gte=0"`
	GenerateLabels bool            `json:"generateLabels"`
	Boxes          []Box           `json:"boxes"`
}

// VerificationRecord is one appended Verification_Log row.
type VerificationRecord struct {
	Timestamp    time.Time       `json:"timestamp"`
	BOLNumber    string          `json:"bolNumber"`
	PONumber     string          `json:"poNumber"`
	AssetType    string          `json:"assetType"`
	Manufacturer string          `json:"manufacturer"`
	MFPN         string          `json:"mfpn"`
	FBPN         string          `json:"fbpn"`
	UOM          string          `json:"uom"`
	ExpectedQty  decimal.Decimal `json:"expectedQty"`
	ActualQty    decimal.Decimal `json:"actualQty"`
	Variance     decimal.Decimal `json:"variance"`
	BoxLabels    int             `json:"boxLabels"`
	VerifiedBy   string          `json:"verifiedBy"`
	SkidID       string          `json:"skidId"`
	TxnID        string          `json:"txnId"`
	Status       string          `json:"status"`
}

const (
	StatusMatch    = "MATCH"
	StatusOverage  = "OVERAGE"
	StatusShortage = "SHORTAGE"
)

// StatusForVariance classifies a signed variance (actual - expected).
func StatusForVariance(v decimal.Decimal) string {
	switch v.Sign() {
	case 1:
		return StatusOverage
	case -1:
		return StatusShortage
	default:
		return StatusMatch
	}
}
