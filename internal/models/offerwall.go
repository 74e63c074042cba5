package models

// MaxOfferwallReward caps a single client-reported offerwall credit. The
// amount itself is still trusted as reported; there is no provider-side
// verification of individual completions.
const MaxOfferwallReward int64 = 100000

type OfferwallCompleteRequest struct {
	Provider string `json:"provider"`
	OfferID  string `json:"offer_id"`
	Title    string `json:"title"`
	Amount   int64  `json:"amount"`
}

type OfferwallEarningsRequest struct {
	Provider      string `json:"provider"`
	TransactionID string `json:"transaction_id"`
	Amount        int64  `json:"amount"`
}
