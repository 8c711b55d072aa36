package funding

import "github.com/shopspring/decimal"

// RechargeRequest injects liquidity into a bank's technical account.
type RechargeRequest struct {
	BIC           string          `json:"bic"`
	InstructionID string          `json:"instruction_id"`
	Amount        decimal.Decimal `json:"amount"`
}

// AvailabilityResponse is the boolean sufficient-funds check result.
type AvailabilityResponse struct {
	BIC            string `json:"bic"`
	Available      bool   `json:"available"`
	RequiredAmount string `json:"required_amount"`
}
